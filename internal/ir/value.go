package ir

import (
	"bytes"
	"encoding/json"
	"fmt"
	"slices"
	"time"
	"unicode/utf16"

	"github.com/shopspring/decimal"
)

// IRValue is a sealed interface representing the values that can flow
// through the statement core: literal constants in the AST, entity field
// values in a Tuple, and values read back from a result row.
type IRValue interface {
	irValue() // Sealed - only the types below implement it
}

// IRNull represents SQL NULL.
type IRNull struct{}

func (IRNull) irValue() {}

// MarshalJSON implements json.Marshaler for IRNull.
func (IRNull) MarshalJSON() ([]byte, error) {
	return []byte("null"), nil
}

// IRString represents a character value.
type IRString string

func (IRString) irValue() {}

// IRInt represents any integral value. Always int64.
type IRInt int64

func (IRInt) irValue() {}

// IRBool represents a boolean value.
type IRBool bool

func (IRBool) irValue() {}

// IRFloat represents an approximate numeric value.
// Floats are rejected by MarshalCanonical; they never take part in hashing.
type IRFloat float64

func (IRFloat) irValue() {}

// IRDecimal represents an exact numeric value.
type IRDecimal struct {
	decimal.Decimal
}

func (IRDecimal) irValue() {}

// Text formats d keeping the scale it was parsed with, so "1.50" stays
// "1.50" where String would give "1.5".
func (d IRDecimal) Text() string {
	if exp := d.Exponent(); exp < 0 {
		return d.StringFixed(-exp)
	}
	return d.String()
}

// IRTime represents a date/time value.
type IRTime time.Time

func (IRTime) irValue() {}

// IRBytes represents a binary value.
type IRBytes []byte

func (IRBytes) irValue() {}

// IRArray represents an array of IRValue elements.
type IRArray []IRValue

func (IRArray) irValue() {}

// IRObject represents a map of string keys to IRValue elements.
// Use SortedKeys() for deterministic iteration.
type IRObject map[string]IRValue

func (IRObject) irValue() {}

// NewIRDecimal parses s as an exact decimal.
func NewIRDecimal(s string) (IRDecimal, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return IRDecimal{}, fmt.Errorf("invalid decimal %q: %w", s, err)
	}
	return IRDecimal{d}, nil
}

// MustIRDecimal is like NewIRDecimal but panics on error.
// Use only in tests or for constants.
func MustIRDecimal(s string) IRDecimal {
	d, err := NewIRDecimal(s)
	if err != nil {
		panic(err)
	}
	return d
}

// IsNull reports whether v is nil or IRNull.
func IsNull(v IRValue) bool {
	if v == nil {
		return true
	}
	_, ok := v.(IRNull)
	return ok
}

// Tuple is the flat value vector of one entity. Field indexes of the
// persistent model address positions in it.
type Tuple []IRValue

// Get returns the value at index i, or IRNull if i is out of range.
func (t Tuple) Get(i int) IRValue {
	if i < 0 || i >= len(t) || t[i] == nil {
		return IRNull{}
	}
	return t[i]
}

// FromNative converts a Go value (as returned by database/sql drivers or
// handed in by callers) to an IRValue.
func FromNative(v any) (IRValue, error) {
	switch val := v.(type) {
	case nil:
		return IRNull{}, nil
	case IRValue:
		return val, nil
	case string:
		return IRString(val), nil
	case []byte:
		return IRBytes(slices.Clone(val)), nil
	case bool:
		return IRBool(val), nil
	case int:
		return IRInt(val), nil
	case int8:
		return IRInt(val), nil
	case int16:
		return IRInt(val), nil
	case int32:
		return IRInt(val), nil
	case int64:
		return IRInt(val), nil
	case uint8:
		return IRInt(val), nil
	case uint16:
		return IRInt(val), nil
	case uint32:
		return IRInt(val), nil
	case float32:
		return IRFloat(val), nil
	case float64:
		return IRFloat(val), nil
	case decimal.Decimal:
		return IRDecimal{val}, nil
	case time.Time:
		return IRTime(val), nil
	case []any:
		arr := make(IRArray, len(val))
		for i, elem := range val {
			irElem, err := FromNative(elem)
			if err != nil {
				return nil, fmt.Errorf("[%d]: %w", i, err)
			}
			arr[i] = irElem
		}
		return arr, nil
	default:
		return nil, fmt.Errorf("unsupported native type: %T", v)
	}
}

// ToNative converts an IRValue to a Go value acceptable as a database/sql
// argument. Decimals travel as strings so no precision is lost in the driver.
func ToNative(v IRValue) (any, error) {
	switch val := v.(type) {
	case nil, IRNull:
		return nil, nil
	case IRString:
		return string(val), nil
	case IRInt:
		return int64(val), nil
	case IRBool:
		return bool(val), nil
	case IRFloat:
		return float64(val), nil
	case IRDecimal:
		return val.Text(), nil
	case IRTime:
		return time.Time(val), nil
	case IRBytes:
		return []byte(val), nil
	case IRArray:
		return nil, fmt.Errorf("IRArray cannot be used as SQL parameter directly")
	case IRObject:
		return nil, fmt.Errorf("IRObject cannot be used as SQL parameter directly")
	default:
		return nil, fmt.Errorf("unsupported IRValue type for SQL parameter: %T", v)
	}
}

// SortedKeys returns keys in RFC 8785 canonical order (UTF-16 code units).
func (obj IRObject) SortedKeys() []string {
	keys := make([]string, 0, len(obj))
	for k := range obj {
		keys = append(keys, k)
	}
	slices.SortFunc(keys, compareKeysRFC8785)
	return keys
}

// compareKeysRFC8785 compares strings using UTF-16 code unit ordering.
// Go's default string comparison uses UTF-8 which produces a different order
// outside the BMP.
func compareKeysRFC8785(a, b string) int {
	a16 := utf16.Encode([]rune(a))
	b16 := utf16.Encode([]rune(b))
	return slices.Compare(a16, b16)
}

// MarshalJSON implements json.Marshaler for IRObject with sorted keys.
// This is not canonical marshaling; use MarshalCanonical for hashing.
func (obj IRObject) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')

	for i, k := range obj.SortedKeys() {
		if i > 0 {
			buf.WriteByte(',')
		}
		keyBytes, err := json.Marshal(k)
		if err != nil {
			return nil, fmt.Errorf("marshal key %q: %w", k, err)
		}
		buf.Write(keyBytes)
		buf.WriteByte(':')

		valBytes, err := MarshalIRValue(obj[k])
		if err != nil {
			return nil, fmt.Errorf("marshal value for key %q: %w", k, err)
		}
		buf.Write(valBytes)
	}

	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// MarshalIRValue marshals an IRValue to JSON bytes for display.
func MarshalIRValue(v IRValue) ([]byte, error) {
	switch val := v.(type) {
	case nil, IRNull:
		return []byte("null"), nil
	case IRString:
		return json.Marshal(string(val))
	case IRInt:
		return json.Marshal(int64(val))
	case IRBool:
		return json.Marshal(bool(val))
	case IRFloat:
		return json.Marshal(float64(val))
	case IRDecimal:
		return json.Marshal(val.Text())
	case IRTime:
		return json.Marshal(time.Time(val).UTC().Format(time.RFC3339Nano))
	case IRBytes:
		return json.Marshal([]byte(val))
	case IRArray:
		var buf bytes.Buffer
		buf.WriteByte('[')
		for i, elem := range val {
			if i > 0 {
				buf.WriteByte(',')
			}
			b, err := MarshalIRValue(elem)
			if err != nil {
				return nil, fmt.Errorf("array[%d]: %w", i, err)
			}
			buf.Write(b)
		}
		buf.WriteByte(']')
		return buf.Bytes(), nil
	case IRObject:
		return val.MarshalJSON()
	default:
		return nil, fmt.Errorf("unknown IRValue type: %T", v)
	}
}

// String renders v for logs and debugging output.
func String(v IRValue) string {
	b, err := MarshalIRValue(v)
	if err != nil {
		return fmt.Sprintf("<%T>", v)
	}
	return string(b)
}
