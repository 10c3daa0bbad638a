package model

import (
	"bytes"
	"database/sql/driver"
	"encoding/json"

	"github.com/shopspring/decimal"
)

var (
	jsonNull        = []byte("null")
	jsonEmptyString = []byte(`""`)
)

// Numeric is a nullable decimal column value. The venue reports numeric fields
// as JSON strings and uses the empty string for "no value"; both the empty
// string and JSON null decode to an invalid (NULL) Numeric, so downstream
// numeric columns never see an empty-string value.
type Numeric struct {
	Decimal decimal.Decimal
	Valid   bool
}

// NewNumeric returns a valid Numeric holding d.
func NewNumeric(d decimal.Decimal) Numeric {
	return Numeric{Decimal: d, Valid: true}
}

func (n *Numeric) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, jsonNull) || bytes.Equal(data, jsonEmptyString) {
		*n = Numeric{}
		return nil
	}

	var d decimal.Decimal
	if err := d.UnmarshalJSON(data); err != nil {
		return err
	}
	*n = Numeric{Decimal: d, Valid: true}
	return nil
}

func (n Numeric) MarshalJSON() ([]byte, error) {
	if !n.Valid {
		return jsonNull, nil
	}
	return n.Decimal.MarshalJSON()
}

// Value implements driver.Valuer so Numeric binds as NULL or a numeric literal.
func (n Numeric) Value() (driver.Value, error) {
	if !n.Valid {
		return nil, nil
	}
	return n.Decimal.Value()
}

// NullString is a nullable text column value with the same empty-string
// normalization contract as Numeric.
type NullString struct {
	String string
	Valid  bool
}

func (s *NullString) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, jsonNull) || bytes.Equal(data, jsonEmptyString) {
		*s = NullString{}
		return nil
	}

	var v string
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*s = NullString{String: v, Valid: true}
	return nil
}

func (s NullString) MarshalJSON() ([]byte, error) {
	if !s.Valid {
		return jsonNull, nil
	}
	return json.Marshal(s.String)
}

// Value implements driver.Valuer.
func (s NullString) Value() (driver.Value, error) {
	if !s.Valid {
		return nil, nil
	}
	return s.String, nil
}

// EmptyToNull maps an empty (or nil) string pointer to nil, leaving other
// values untouched. It is idempotent: applying it twice yields the same
// result as applying it once.
func EmptyToNull(s *string) *string {
	if s == nil || *s == "" {
		return nil
	}
	return s
}
