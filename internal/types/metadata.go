package types

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// Metadata represents a JSONB field for storing free-form key-value pairs
type Metadata map[string]string

func (m *Metadata) Scan(value interface{}) error {
	result, err := scanStringMap(value)
	*m = result
	return err
}

func (m Metadata) Value() (driver.Value, error) {
	return valueStringMap(m)
}

// Variations is the chosen product options of a line (size, colour).
// Stored as JSONB and compared as an unordered set.
type Variations map[string]string

func (v *Variations) Scan(value interface{}) error {
	result, err := scanStringMap(value)
	*v = result
	return err
}

func (v Variations) Value() (driver.Value, error) {
	return valueStringMap(v)
}

func scanStringMap(value interface{}) (map[string]string, error) {
	result := make(map[string]string)
	if value == nil {
		return result, nil
	}

	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return result, fmt.Errorf("failed to unmarshal JSONB value: %v", value)
	}

	err := json.Unmarshal(bytes, &result)
	return result, err
}

func valueStringMap(m map[string]string) (driver.Value, error) {
	if m == nil {
		return json.Marshal(map[string]string{})
	}
	return json.Marshal(m)
}
