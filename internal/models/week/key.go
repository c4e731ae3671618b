package week

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// Key - идентификатор недели в формате YYYY-Www (неделя всегда две цифры).
// Благодаря нулям в начале строковый порядок совпадает с хронологическим,
// поэтому сравнение и поиск максимума делаются обычным strings.Compare.
type Key string

var ErrFormat = errors.New("неверный формат недели, ожидается YYYY-Www")

// недели 01-53, однозначные номера недель запрещены
var keyPattern = regexp.MustCompile(`^\d{4}-W(0[1-9]|[1-4]\d|5[0-3])$`)

func Parse(s string) (Key, error) {
	if !keyPattern.MatchString(s) {
		return "", fmt.Errorf("%q: %w", s, ErrFormat)
	}
	return Key(s), nil
}

func Compare(a, b Key) int {
	return strings.Compare(string(a), string(b))
}

// ContainsFold - частичное совпадение без учёта регистра.
// Паттерн "2025" находит все недели 2025 года, "w01" - первые недели любого года.
func (k Key) ContainsFold(pattern string) bool {
	return strings.Contains(strings.ToLower(string(k)), strings.ToLower(pattern))
}
