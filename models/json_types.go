package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// GPSLocation is stored as a JSON text column so the same model works on
// postgres, mysql and sqlserver.
type GPSLocation struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

func (g GPSLocation) Value() (driver.Value, error) {
	b, err := json.Marshal(g)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (g *GPSLocation) Scan(value interface{}) error {
	if value == nil {
		*g = GPSLocation{}
		return nil
	}
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, g)
	case string:
		return json.Unmarshal([]byte(v), g)
	default:
		return fmt.Errorf("cannot convert %v to GPSLocation", value)
	}
}

// IsZero reports whether no fix was captured. A crate without a GPS fix is
// rejected before it reaches the database.
func (g GPSLocation) IsZero() bool {
	return g.Lat == 0 && g.Lng == 0
}

// JSONMap holds free-form contact details for farms and packhouses.
type JSONMap map[string]interface{}

func (m JSONMap) Value() (driver.Value, error) {
	if m == nil {
		return nil, nil
	}
	b, err := json.Marshal(m)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (m *JSONMap) Scan(value interface{}) error {
	if value == nil {
		*m = nil
		return nil
	}
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, m)
	case string:
		return json.Unmarshal([]byte(v), m)
	default:
		return fmt.Errorf("cannot convert %v to JSONMap", value)
	}
}
