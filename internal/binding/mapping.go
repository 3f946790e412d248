package binding

import (
	"time"

	"github.com/roach88/sqlcore/internal/ir"
	"github.com/shopspring/decimal"
	"github.com/spf13/cast"
)

// TypeMapping converts values bound to one column type into driver
// arguments.
type TypeMapping struct {
	Type ir.ColumnType
}

// MappingFor returns the mapping of a column type.
func MappingFor(t ir.ColumnType) TypeMapping {
	return TypeMapping{Type: t}
}

// Convert turns v into a database/sql argument of the column's type. Null
// stays nil. Values of a compatible kind are coerced, so an IRString "42"
// bound to an integer column becomes int64(42).
func (m TypeMapping) Convert(v ir.IRValue) (any, error) {
	if ir.IsNull(v) {
		return nil, nil
	}
	native, err := ir.ToNative(v)
	if err != nil {
		return nil, ErrConversion.New(ir.String(v), m.Type, err.Error())
	}

	var out any
	switch m.Type.Kind {
	case ir.KindBool:
		out, err = cast.ToBoolE(native)
	case ir.KindInt16, ir.KindInt32, ir.KindInt64:
		out, err = cast.ToInt64E(native)
	case ir.KindFloat, ir.KindDouble:
		out, err = cast.ToFloat64E(native)
	case ir.KindDecimal:
		out, err = decimalString(native)
	case ir.KindString, ir.KindText, ir.KindGUID:
		out, err = cast.ToStringE(native)
	case ir.KindDateTime, ir.KindDate, ir.KindTime:
		var t time.Time
		t, err = cast.ToTimeE(native)
		out = t.UTC()
	case ir.KindBinary, ir.KindBlob:
		if b, ok := native.([]byte); ok {
			return b, nil
		}
		var s string
		s, err = cast.ToStringE(native)
		out = []byte(s)
	default:
		out = native
	}
	if err != nil {
		return nil, ErrConversion.New(ir.String(v), m.Type, err.Error())
	}
	return out, nil
}

// decimalString keeps decimals exact by sending them as text.
func decimalString(native any) (string, error) {
	switch n := native.(type) {
	case string:
		d, err := decimal.NewFromString(n)
		if err != nil {
			return "", err
		}
		return d.String(), nil
	case float64:
		return decimal.NewFromFloat(n).String(), nil
	default:
		i, err := cast.ToInt64E(n)
		if err != nil {
			return "", err
		}
		return decimal.NewFromInt(i).String(), nil
	}
}
