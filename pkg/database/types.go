package database

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// StringArray stores a string slice as a JSON text column. Values written by
// PostgreSQL TEXT[] columns ({a,b}) are still readable.
type StringArray []string

// Scan implements the sql.Scanner interface for reading from the database.
func (a *StringArray) Scan(value interface{}) error {
	if value == nil {
		*a = nil
		return nil
	}

	switch v := value.(type) {
	case []byte:
		return a.scanBytes(v)
	case string:
		return a.scanBytes([]byte(v))
	default:
		return errors.New("StringArray: unsupported scan type")
	}
}

func (a *StringArray) scanBytes(data []byte) error {
	str := string(data)

	if strings.HasPrefix(str, "[") {
		return json.Unmarshal(data, a)
	}

	if strings.HasPrefix(str, "{") && strings.HasSuffix(str, "}") {
		str = strings.TrimSuffix(strings.TrimPrefix(str, "{"), "}")
		if str == "" {
			*a = []string{}
			return nil
		}
		*a = parsePostgresArray(str)
		return nil
	}

	*a = []string{str}
	return nil
}

// parsePostgresArray parses PostgreSQL array format, handling quoted strings.
func parsePostgresArray(s string) []string {
	var result []string
	var current strings.Builder
	inQuotes := false
	escaped := false

	for _, r := range s {
		if escaped {
			current.WriteRune(r)
			escaped = false
			continue
		}

		switch r {
		case '\\':
			escaped = true
		case '"':
			inQuotes = !inQuotes
		case ',':
			if inQuotes {
				current.WriteRune(r)
			} else {
				result = append(result, current.String())
				current.Reset()
			}
		default:
			current.WriteRune(r)
		}
	}

	if current.Len() > 0 {
		result = append(result, current.String())
	}

	return result
}

// Value implements the driver.Valuer interface. An empty (non-nil) slice is
// written as "[]" so it reads back as empty rather than NULL.
func (a StringArray) Value() (driver.Value, error) {
	if a == nil {
		return "[]", nil
	}
	data, err := json.Marshal([]string(a))
	if err != nil {
		return nil, err
	}
	return string(data), nil
}

// GormDataType returns the GORM data type hint.
func (StringArray) GormDataType() string {
	return "text"
}

// JSON stores any JSON-encodable value in a text column.
type JSON[T any] struct {
	Data T
}

// NewJSON wraps v for storage.
func NewJSON[T any](v T) JSON[T] {
	return JSON[T]{Data: v}
}

// Scan implements the sql.Scanner interface.
func (j *JSON[T]) Scan(value interface{}) error {
	var zero T
	switch v := value.(type) {
	case nil:
		j.Data = zero
		return nil
	case []byte:
		return j.unmarshal(v)
	case string:
		return j.unmarshal([]byte(v))
	default:
		return fmt.Errorf("JSON: unsupported scan type %T", value)
	}
}

func (j *JSON[T]) unmarshal(data []byte) error {
	if len(data) == 0 {
		var zero T
		j.Data = zero
		return nil
	}
	return json.Unmarshal(data, &j.Data)
}

// Value implements the driver.Valuer interface.
func (j JSON[T]) Value() (driver.Value, error) {
	data, err := json.Marshal(j.Data)
	if err != nil {
		return nil, err
	}
	return string(data), nil
}

// GormDataType returns the GORM data type hint.
func (JSON[T]) GormDataType() string {
	return "text"
}
