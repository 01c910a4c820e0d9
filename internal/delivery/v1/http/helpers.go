package http

import (
	"encoding/json"
	"errors"
	"io"
	"mime"
	"net/http"
	"strings"

	"github.com/DRSN-tech/supplier-imports/pkg/e"
)

const maxJSONBodySize = 10 << 20

type ErrorResponse struct {
	Error string `json:"error"`
	Code  int    `json:"code"`
}

func NewErrorResponse(code int, message string) *ErrorResponse {
	return &ErrorResponse{
		Code:  code,
		Error: message,
	}
}

// ToHTTPResponse сопоставляет ошибку статусу и сообщению для клиента.
// Внутренние детали 500-х наружу не отдаются.
func ToHTTPResponse(err error) (int, string) {
	switch {
	case errors.Is(err, e.ErrUnauthorized):
		return http.StatusUnauthorized, e.ErrUnauthorized.Error()
	case errors.Is(err, e.ErrDuplicateItem):
		return http.StatusConflict, e.ErrDuplicateItem.Error()
	case errors.Is(err, e.ErrUnsupportedMediaType):
		return http.StatusUnsupportedMediaType, e.ErrUnsupportedMediaType.Error()
	case errors.Is(err, e.ErrValidation):
		return http.StatusBadRequest, messageFrom(err, e.ErrValidation)
	case errors.Is(err, e.ErrUnsupportedProvider):
		return http.StatusBadRequest, messageFrom(err, e.ErrUnsupportedProvider)
	case errors.Is(err, e.ErrNotFound):
		return http.StatusNotFound, messageFrom(err, e.ErrNotFound)
	default:
		return http.StatusInternalServerError, e.ErrInternalServerError.Error()
	}
}

// messageFrom отрезает от текста ошибки префиксы операций, оставляя сообщение,
// начиная с сентинела. "ImportUseCase.ImportByURL: validation error: url is required"
// превращается в "validation error: url is required".
func messageFrom(err, sentinel error) string {
	msg := err.Error()
	if i := strings.Index(msg, sentinel.Error()); i >= 0 {
		return msg[i:]
	}
	return sentinel.Error()
}

func WriteError(w http.ResponseWriter, err error) {
	code, msg := ToHTTPResponse(err)
	WriteSuccess(w, code, NewErrorResponse(code, msg))
}

func WriteSuccess(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// decodeJSON читает тело запроса в dst. Пустое тело, мусор или превышение лимита — e.ErrInvalidJSON.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	if ct := r.Header.Get("Content-Type"); ct != "" {
		mediaType, _, err := mime.ParseMediaType(ct)
		if err != nil || mediaType != "application/json" {
			return e.ErrUnsupportedMediaType
		}
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBodySize)
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return e.Wrap("empty body", e.ErrInvalidJSON)
		}
		return e.Wrap(err.Error(), e.ErrInvalidJSON)
	}

	return nil
}

// bearerToken извлекает токен из заголовка Authorization: Bearer <token>.
func bearerToken(r *http.Request) string {
	h := strings.TrimSpace(r.Header.Get("Authorization"))
	if len(h) < 7 || !strings.EqualFold(h[:7], "bearer ") {
		return ""
	}
	return strings.TrimSpace(h[7:])
}
