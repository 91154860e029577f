package model

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
)

// JSON JSONB 字段类型
type JSON map[string]interface{}

// Value 实现 driver.Valuer
func (j JSON) Value() (driver.Value, error) {
	if j == nil {
		return nil, nil
	}
	return json.Marshal(j)
}

// Scan 实现 sql.Scanner
func (j *JSON) Scan(value interface{}) error {
	if value == nil {
		*j = nil
		return nil
	}

	var data []byte
	switch v := value.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return errors.New("unsupported type for JSON scan")
	}

	return json.Unmarshal(data, j)
}
