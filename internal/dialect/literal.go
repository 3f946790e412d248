package dialect

import (
	"encoding/hex"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/roach88/sqlcore/internal/ir"
)

// DateTimeLayout is the fixed pattern for inline date/time literals.
const DateTimeLayout = "2006-01-02 15:04:05.999999"

// typeNames maps a column kind to its CAST target. Sized kinds carry a
// format verb for the length or precision.
type typeNames struct {
	names map[ir.TypeKind]string
	// sized variants, used when Length or Precision is set
	withLength    map[ir.TypeKind]string // e.g. "varchar(%d)"
	withPrecision string                 // e.g. "numeric(%d,%d)"
}

func (d *ansi) TypeName(t ir.ColumnType) (string, error) {
	if t.Kind == ir.KindDecimal && t.Precision > 0 && d.types.withPrecision != "" {
		return fmt.Sprintf(d.types.withPrecision, t.Precision, t.Scale), nil
	}
	if t.Length > 0 {
		if format, ok := d.types.withLength[t.Kind]; ok {
			return fmt.Sprintf(format, t.Length), nil
		}
	}
	if name, ok := d.types.names[t.Kind]; ok {
		return name, nil
	}
	return "", unsupported("type "+t.String(), d.name)
}

// Literal renders v with invariant formatting.
func (d *ansi) Literal(v ir.IRValue) (string, error) {
	switch val := v.(type) {
	case nil, ir.IRNull:
		return "NULL", nil
	case ir.IRString:
		return d.stringLiteral(string(val)), nil
	case ir.IRInt:
		return strconv.FormatInt(int64(val), 10), nil
	case ir.IRBool:
		return d.boolLiteral(bool(val)), nil
	case ir.IRFloat:
		f := float64(val)
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return "", unsupported(fmt.Sprintf("float literal %v", f), d.name)
		}
		return strconv.FormatFloat(f, 'g', -1, 64), nil
	case ir.IRDecimal:
		return val.String(), nil
	case ir.IRTime:
		return "TIMESTAMP '" + time.Time(val).Format(DateTimeLayout) + "'", nil
	case ir.IRBytes:
		return "X'" + strings.ToUpper(hex.EncodeToString(val)) + "'", nil
	}
	return "", unsupported(fmt.Sprintf("literal of type %T", v), d.name)
}

func (d *ansi) boolLiteral(b bool) string {
	if d.caps.BooleanLiterals {
		if b {
			return "TRUE"
		}
		return "FALSE"
	}
	if b {
		return "1"
	}
	return "0"
}

func (d *ansi) stringLiteral(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}
