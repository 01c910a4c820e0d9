package domain

import (
	"fmt"
	"hash/fnv"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Slugify приводит строку к нижнему регистру и заменяет пробельные последовательности дефисом.
// Остальные символы сохраняются, уникальность не проверяется.
func Slugify(s string) string {
	// cases.Caser хранит состояние, поэтому создаётся на каждый вызов
	lowered := cases.Lower(language.Und).String(strings.TrimSpace(s))
	return strings.Join(strings.FieldsFunc(lowered, unicode.IsSpace), "-")
}

// ProductSlug добавляет к slug имени короткий хэш external_id, чтобы импортированные товары
// с одинаковыми названиями не конфликтовали.
func ProductSlug(name, externalID string) string {
	h := fnv.New32a()
	h.Write([]byte(externalID))
	suffix := fmt.Sprintf("%08x", h.Sum32())

	if base := Slugify(name); base != "" {
		return base + "-" + suffix
	}
	return suffix
}
