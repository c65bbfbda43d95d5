package types

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
)

// ShippingAddress is stored as a jsonb column on orders.
type ShippingAddress struct {
	Address    string `json:"address"`
	City       string `json:"city"`
	PostalCode string `json:"postal_code"`
	Country    string `json:"country"`
	Phone      string `json:"phone,omitempty"`
}

// Validate checks the required fields.
func (s ShippingAddress) Validate() error {
	if strings.TrimSpace(s.Address) == "" {
		return fmt.Errorf("shipping address: missing address")
	}
	if strings.TrimSpace(s.City) == "" {
		return fmt.Errorf("shipping address: missing city")
	}
	if strings.TrimSpace(s.PostalCode) == "" {
		return fmt.Errorf("shipping address: missing postal_code")
	}
	if strings.TrimSpace(s.Country) == "" {
		return fmt.Errorf("shipping address: missing country")
	}
	return nil
}

// Value marshals the address into a jsonb literal. Field validation happens
// in the services; the driver hook only encodes.
func (s ShippingAddress) Value() (driver.Value, error) {
	raw, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("shipping address: marshal %w", err)
	}
	return string(raw), nil
}

// Scan decodes the jsonb column.
func (s *ShippingAddress) Scan(value interface{}) error {
	if value == nil {
		*s = ShippingAddress{}
		return nil
	}

	var raw []byte
	switch v := value.(type) {
	case string:
		raw = []byte(v)
	case []byte:
		raw = v
	default:
		return fmt.Errorf("shipping address: unsupported scan type %T", value)
	}

	return json.Unmarshal(raw, s)
}
