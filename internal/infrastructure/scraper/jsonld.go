package scraper

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/shopspring/decimal"
)

// ldField - пара ключ/значение JSON-объекта.
type ldField struct {
	Key   string
	Value any
}

// ldObject хранит поля объекта в порядке документа: "первое" значение определяет автор страницы.
type ldObject []ldField

func (o ldObject) get(key string) (any, bool) {
	for _, f := range o {
		if f.Key == key {
			return f.Value, true
		}
	}

	return nil, false
}

// decodeJSONLD разбирает содержимое одного <script type="application/ld+json">.
// В одном блоке может быть несколько JSON-значений подряд.
// Объекты становятся ldObject, массивы - []any, числа - json.Number.
func decodeJSONLD(text string) ([]any, error) {
	dec := json.NewDecoder(strings.NewReader(strings.TrimSpace(text)))
	dec.UseNumber()

	var out []any
	for dec.More() {
		v, err := decodeValue(dec)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}

	return out, nil
}

func decodeValue(dec *json.Decoder) (any, error) {
	tok, err := nextToken(dec)
	if err != nil {
		return nil, err
	}

	delim, ok := tok.(json.Delim)
	if !ok {
		return tok, nil
	}

	switch delim {
	case '{':
		obj := ldObject{}
		for dec.More() {
			keyTok, err := nextToken(dec)
			if err != nil {
				return nil, err
			}
			key, ok := keyTok.(string)
			if !ok {
				return nil, fmt.Errorf("unexpected object key %v", keyTok)
			}
			v, err := decodeValue(dec)
			if err != nil {
				return nil, err
			}
			obj = append(obj, ldField{Key: key, Value: v})
		}
		if _, err := nextToken(dec); err != nil {
			return nil, err
		}
		return obj, nil
	case '[':
		arr := []any{}
		for dec.More() {
			v, err := decodeValue(dec)
			if err != nil {
				return nil, err
			}
			arr = append(arr, v)
		}
		if _, err := nextToken(dec); err != nil {
			return nil, err
		}
		return arr, nil
	}

	return nil, fmt.Errorf("unexpected delimiter %q", delim)
}

// nextToken не даёт обрыву документа выглядеть как штатный конец потока.
func nextToken(dec *json.Decoder) (json.Token, error) {
	tok, err := dec.Token()
	if errors.Is(err, io.EOF) {
		return nil, io.ErrUnexpectedEOF
	}

	return tok, err
}

// findScalar ищет в глубину первое скалярное значение по ключу.
// На каждом уровне сначала проверяется сам ключ, потом вложенные значения в порядке документа.
func findScalar(v any, key string) (string, bool) {
	switch node := v.(type) {
	case ldObject:
		if val, present := node.get(key); present {
			if s, ok := scalar(val); ok {
				return s, true
			}
		}
		for _, f := range node {
			if s, ok := findScalar(f.Value, key); ok {
				return s, true
			}
		}
	case []any:
		for _, item := range node {
			if s, ok := findScalar(item, key); ok {
				return s, true
			}
		}
	}

	return "", false
}

// findImage ищет первое поле image: строка, первый элемент массива или объект с url.
func findImage(v any) (string, bool) {
	switch node := v.(type) {
	case ldObject:
		if img, present := node.get("image"); present {
			if s, ok := resolveImage(img); ok {
				return s, true
			}
		}
		for _, f := range node {
			if s, ok := findImage(f.Value); ok {
				return s, true
			}
		}
	case []any:
		for _, item := range node {
			if s, ok := findImage(item); ok {
				return s, true
			}
		}
	}

	return "", false
}

func resolveImage(v any) (string, bool) {
	switch img := v.(type) {
	case string:
		s := strings.TrimSpace(img)
		return s, s != ""
	case []any:
		if len(img) == 0 {
			return "", false
		}
		return resolveImage(img[0])
	case ldObject:
		if u, present := img.get("url"); present {
			if s, ok := scalar(u); ok {
				return s, true
			}
		}
		u, _ := img.get("contentUrl")
		return scalar(u)
	}

	return "", false
}

func scalar(v any) (string, bool) {
	switch s := v.(type) {
	case string:
		t := strings.TrimSpace(s)
		return t, t != ""
	case json.Number:
		return s.String(), true
	}

	return "", false
}

// parsePrice приводит строку цены к целым единицам с округлением вниз ("49.99" -> 49).
// Символы валют и пробелы отбрасываются, разделители разбирает normalizeSeparators.
func parsePrice(raw string) (int64, bool) {
	var b bytes.Buffer
	for _, r := range raw {
		if (r >= '0' && r <= '9') || r == '.' || r == ',' {
			b.WriteRune(r)
		}
	}

	s := b.String()
	if s == "" {
		return 0, false
	}

	d, err := decimal.NewFromString(normalizeSeparators(s))
	if err != nil || !d.IsPositive() {
		return 0, false
	}

	return d.Floor().IntPart(), true
}

// normalizeSeparators оставляет в числе только десятичную точку.
// Если встречаются и точка, и запятая, десятичным считается последний из них ("1.299,99", "1,299.99").
// Одиночный вид разделителя с ровно тремя цифрами после последнего вхождения - группировка разрядов ("12.500", "12,000").
func normalizeSeparators(s string) string {
	dot, comma := strings.LastIndex(s, "."), strings.LastIndex(s, ",")

	switch {
	case dot >= 0 && comma >= 0:
		if dot > comma {
			return strings.ReplaceAll(s, ",", "")
		}
		return strings.ReplaceAll(strings.ReplaceAll(s, ".", ""), ",", ".")
	case comma >= 0:
		return singleSeparator(s, ",", comma)
	case dot >= 0:
		return singleSeparator(s, ".", dot)
	}

	return s
}

func singleSeparator(s, sep string, last int) string {
	frac := s[last+1:]
	if len(frac) == 3 {
		return strings.ReplaceAll(s, sep, "")
	}

	return strings.ReplaceAll(s[:last], sep, "") + "." + frac
}
