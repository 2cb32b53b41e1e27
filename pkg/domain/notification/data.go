package notification

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
)

type valueKind uint8

const (
	kindNull valueKind = iota
	kindString
	kindNumber
	kindBool
)

// Value is a template variable. Only strings, numbers and booleans are
// representable; the zero Value is null and renders as an empty string.
type Value struct {
	kind valueKind
	str  string
	num  float64
	b    bool
}

func String(s string) Value  { return Value{kind: kindString, str: s} }
func Number(n float64) Value { return Value{kind: kindNumber, num: n} }
func Int(n int) Value        { return Value{kind: kindNumber, num: float64(n)} }
func Bool(b bool) Value      { return Value{kind: kindBool, b: b} }

func (v Value) IsNull() bool {
	return v.kind == kindNull
}

// String renders the value for substitution into a template.
func (v Value) String() string {
	switch v.kind {
	case kindString:
		return v.str
	case kindNumber:
		return strconv.FormatFloat(v.num, 'f', -1, 64)
	case kindBool:
		return strconv.FormatBool(v.b)
	default:
		return ""
	}
}

func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case kindString:
		return json.Marshal(v.str)
	case kindNumber:
		return json.Marshal(v.num)
	case kindBool:
		return json.Marshal(v.b)
	default:
		return []byte("null"), nil
	}
}

func (v *Value) UnmarshalJSON(raw []byte) error {
	var decoded interface{}
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return err
	}
	switch t := decoded.(type) {
	case nil:
		*v = Value{}
	case string:
		*v = String(t)
	case float64:
		*v = Number(t)
	case bool:
		*v = Bool(t)
	default:
		return fmt.Errorf("template values must be a string, number or boolean, got %T", decoded)
	}
	return nil
}

// Data maps template variable names to values.
type Data map[string]Value

// Lookup returns the rendered value for name, or "" when absent or null.
func (d Data) Lookup(name string) string {
	v, ok := d[name]
	if !ok {
		return ""
	}
	return v.String()
}

func (d Data) Value() (driver.Value, error) {
	if d == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(d)
}

func (d *Data) Scan(src interface{}) error {
	var raw []byte
	switch t := src.(type) {
	case nil:
		*d = Data{}
		return nil
	case []byte:
		raw = t
	case string:
		raw = []byte(t)
	default:
		return errors.New("notification data: unsupported column type")
	}
	out := Data{}
	if err := json.Unmarshal(raw, &out); err != nil {
		return fmt.Errorf("notification data: %w", err)
	}
	*d = out
	return nil
}
