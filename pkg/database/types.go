package database

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
)

// StringArray stores a list of strings as a JSON text column, which all
// three supported drivers accept. Postgres array literals ({a,b}) written
// by older rows are still readable.
type StringArray []string

// Scan implements sql.Scanner.
func (a *StringArray) Scan(value interface{}) error {
	var raw string
	switch v := value.(type) {
	case nil:
		*a = nil
		return nil
	case []byte:
		raw = string(v)
	case string:
		raw = v
	default:
		return fmt.Errorf("StringArray: unsupported scan type %T", value)
	}

	raw = strings.TrimSpace(raw)
	switch {
	case raw == "":
		*a = StringArray{}
		return nil
	case strings.HasPrefix(raw, "["):
		return json.Unmarshal([]byte(raw), (*[]string)(a))
	case strings.HasPrefix(raw, "{") && strings.HasSuffix(raw, "}"):
		inner := raw[1 : len(raw)-1]
		if inner == "" {
			*a = StringArray{}
			return nil
		}
		parts := strings.Split(inner, ",")
		for i, p := range parts {
			parts[i] = strings.Trim(p, `"`)
		}
		*a = parts
		return nil
	}
	*a = StringArray{raw}
	return nil
}

// Value implements driver.Valuer.
func (a StringArray) Value() (driver.Value, error) {
	if a == nil {
		return nil, nil
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
