package request

import (
	"fmt"
	"slices"

	"github.com/roach88/sqlcore/internal/ir"
	"github.com/shopspring/decimal"
	"github.com/spf13/cast"
)

// RowDescriptor lists the column types of a result row.
type RowDescriptor struct {
	Columns []ir.ColumnType
}

// RowReader decodes driver rows into tuples.
type RowReader struct {
	types []ir.ColumnType
}

// NewRowReader returns a reader for d.
func NewRowReader(d RowDescriptor) (*RowReader, error) {
	if len(d.Columns) == 0 {
		return nil, fmt.Errorf("row descriptor has no columns")
	}
	for i, t := range d.Columns {
		if t.Kind == ir.KindUnknown {
			return nil, fmt.Errorf("row descriptor column %d has no type", i)
		}
	}
	return &RowReader{types: slices.Clone(d.Columns)}, nil
}

// Width returns the number of columns per row.
func (r *RowReader) Width() int {
	return len(r.types)
}

// Read decodes one row of driver values.
func (r *RowReader) Read(raw []any) (ir.Tuple, error) {
	if len(raw) != len(r.types) {
		return nil, fmt.Errorf("row has %d values, want %d", len(raw), len(r.types))
	}
	row := make(ir.Tuple, len(raw))
	for i, v := range raw {
		val, err := decode(r.types[i], v)
		if err != nil {
			return nil, fmt.Errorf("column %d: %w", i, err)
		}
		row[i] = val
	}
	return row, nil
}

func decode(t ir.ColumnType, v any) (ir.IRValue, error) {
	if v == nil {
		return ir.IRNull{}, nil
	}
	if b, ok := v.([]byte); ok && t.Kind != ir.KindBinary && t.Kind != ir.KindBlob {
		v = string(b)
	}
	switch t.Kind {
	case ir.KindBool:
		b, err := cast.ToBoolE(v)
		return ir.IRBool(b), err
	case ir.KindInt16, ir.KindInt32, ir.KindInt64:
		n, err := cast.ToInt64E(v)
		return ir.IRInt(n), err
	case ir.KindFloat, ir.KindDouble:
		f, err := cast.ToFloat64E(v)
		return ir.IRFloat(f), err
	case ir.KindDecimal:
		switch n := v.(type) {
		case float64:
			return ir.IRDecimal{Decimal: decimal.NewFromFloat(n)}, nil
		case int64:
			return ir.IRDecimal{Decimal: decimal.NewFromInt(n)}, nil
		}
		s, err := cast.ToStringE(v)
		if err != nil {
			return nil, err
		}
		return ir.NewIRDecimal(s)
	case ir.KindString, ir.KindText, ir.KindGUID:
		s, err := cast.ToStringE(v)
		return ir.IRString(s), err
	case ir.KindDateTime, ir.KindDate, ir.KindTime:
		ts, err := cast.ToTimeE(v)
		return ir.IRTime(ts.UTC()), err
	case ir.KindBinary, ir.KindBlob:
		if b, ok := v.([]byte); ok {
			return ir.IRBytes(slices.Clone(b)), nil
		}
		s, err := cast.ToStringE(v)
		return ir.IRBytes(s), err
	}
	return ir.FromNative(v)
}
