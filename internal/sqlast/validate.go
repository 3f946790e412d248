package sqlast

import (
	"fmt"

	errors "gopkg.in/src-d/go-errors.v1"
)

// ErrStructure is returned when a node lacks a required part or carries
// contradictory settings.
var ErrStructure = errors.NewKind("invalid %s: %s")

// Validate checks the structure of n itself, not its children. The
// compiler calls it on entering each node.
func Validate(n Node) error {
	switch node := n.(type) {
	case nil:
		return ErrStructure.New("node", "missing node")
	case *TableRef:
		if node.Table == nil || node.Table.Name == "" {
			return ErrStructure.New(KindName(n), "no base table")
		}
	case *QueryRef:
		if node.Query == nil {
			return ErrStructure.New(KindName(n), "no query")
		}
		if node.Name == "" {
			return ErrStructure.New(KindName(n), "derived table needs a name")
		}
	case *Join:
		if node.Left == nil || node.Right == nil {
			return ErrStructure.New(KindName(n), "missing side")
		}
		if node.Kind != CrossJoin && node.On == nil {
			return ErrStructure.New(KindName(n), "missing join condition")
		}
	case *Literal:
		if node.Value == nil {
			return ErrStructure.New(KindName(n), "no value")
		}
	case *ParamRef:
		if node.Binding == nil {
			return ErrStructure.New(KindName(n), "no binding")
		}
	case *Placeholder:
		if node.Key == nil {
			return ErrStructure.New(KindName(n), "no key")
		}
	case *Variant:
		if node.Key == nil {
			return ErrStructure.New(KindName(n), "no key")
		}
		if node.Main == nil && node.Alt == nil {
			return ErrStructure.New(KindName(n), "both branches empty")
		}
	case *Column:
		if node.Name == "" {
			return ErrStructure.New(KindName(n), "no name")
		}
	case *ColumnAlias:
		if node.Expr == nil || node.Alias == "" {
			return ErrStructure.New(KindName(n), "needs expression and alias")
		}
	case *Binary:
		if node.Left == nil || node.Right == nil {
			return ErrStructure.New(KindName(n), fmt.Sprintf("missing operand for %s", node.Op))
		}
	case *Unary:
		if node.Operand == nil {
			return ErrStructure.New(KindName(n), fmt.Sprintf("missing operand for %s", node.Op))
		}
	case *Like:
		if node.Expr == nil || node.Pattern == nil {
			return ErrStructure.New(KindName(n), "missing operand")
		}
	case *Between:
		if node.Expr == nil || node.Low == nil || node.High == nil {
			return ErrStructure.New(KindName(n), "missing operand")
		}
	case *Func:
		return validateFunc(node)
	case *Aggregate:
		if node.Arg == nil && node.Kind != AggCount {
			return ErrStructure.New(KindName(n), fmt.Sprintf("%s needs an argument", node.Kind))
		}
	case *Case:
		if len(node.Whens) == 0 {
			return ErrStructure.New(KindName(n), "no branches")
		}
		for i, w := range node.Whens {
			if w == nil || w.Cond == nil || w.Result == nil {
				return ErrStructure.New(KindName(n), fmt.Sprintf("branch %d incomplete", i))
			}
		}
	case *Cast:
		if node.Expr == nil {
			return ErrStructure.New(KindName(n), "no expression")
		}
	case *Row:
		if len(node.Items) == 0 {
			return ErrStructure.New(KindName(n), "empty row")
		}
	case *SubQuery:
		if node.Query == nil {
			return ErrStructure.New(KindName(n), "no query")
		}
	case *OrderItem:
		if node.Expr == nil {
			return ErrStructure.New(KindName(n), "no expression")
		}
	case *Select:
		if len(node.Columns) == 0 {
			return ErrStructure.New(KindName(n), "empty column list")
		}
		if node.Having != nil && len(node.GroupBy) == 0 {
			return ErrStructure.New(KindName(n), "having without group by")
		}
	case *SetOp:
		if node.Left == nil || node.Right == nil {
			return ErrStructure.New(KindName(n), "missing operand")
		}
	case *Insert:
		if node.Into == nil {
			return ErrStructure.New(KindName(n), "no target table")
		}
		if len(node.Columns) != len(node.Values) {
			return ErrStructure.New(KindName(n),
				fmt.Sprintf("%d columns but %d values", len(node.Columns), len(node.Values)))
		}
	case *Update:
		if node.Table == nil {
			return ErrStructure.New(KindName(n), "no target table")
		}
		if len(node.Set) == 0 {
			return ErrStructure.New(KindName(n), "empty assignment list")
		}
		for i, a := range node.Set {
			if a == nil || a.Column == nil || a.Value == nil {
				return ErrStructure.New(KindName(n), fmt.Sprintf("assignment %d incomplete", i))
			}
		}
	case *Delete:
		if node.From == nil {
			return ErrStructure.New(KindName(n), "no target table")
		}
	case *Batch:
		if len(node.Statements) == 0 {
			return ErrStructure.New(KindName(n), "no statements")
		}
	case *CreateSequence:
		return validateSequence(n, node.Sequence)
	case *AlterSequence:
		if err := validateSequence(n, node.Sequence); err != nil {
			return err
		}
		d := node.Sequence.Descriptor
		if node.Restart != nil && !inRange(*node.Restart, d.Min, d.Max) {
			return ErrStructure.New(KindName(n), "restart value outside min/max")
		}
	case *DropSequence:
		if node.Sequence == nil || node.Sequence.Name == "" {
			return ErrStructure.New(KindName(n), "no sequence name")
		}
	case *CreateIndex:
		if node.Name == "" || node.Table == nil {
			return ErrStructure.New(KindName(n), "needs name and table")
		}
		if len(node.Columns) == 0 {
			return ErrStructure.New(KindName(n), "no columns")
		}
		if node.Kind == IndexFiltered && node.Where == nil {
			return ErrStructure.New(KindName(n), "filtered index without condition")
		}
	case *DropIndex:
		if node.Name == "" {
			return ErrStructure.New(KindName(n), "no index name")
		}
	case *Null, *Default, *Star, *Native:
	default:
		return ErrStructure.New("node", fmt.Sprintf("unknown node type %T", n))
	}
	return nil
}

func validateFunc(f *Func) error {
	lo, hi := 0, -1
	switch f.Kind {
	case FuncUser:
		if f.Name == "" {
			return ErrStructure.New(KindName(f), "user function without name")
		}
		return nil
	case FuncSubstring:
		lo, hi = 2, 3
	case FuncPosition, FuncRound:
		lo, hi = 2, 2
	case FuncLength, FuncUpper, FuncLower, FuncTrim, FuncAbs:
		lo, hi = 1, 1
	case FuncConcat, FuncCoalesce:
		lo = 2
	case FuncCurrentTimestamp, FuncCurrentDate:
		hi = 0
	case FuncNextValue:
		if f.Name == "" {
			return ErrStructure.New(KindName(f), "next value without sequence name")
		}
		hi = 0
	}
	n := len(f.Args)
	if n < lo || (hi >= 0 && n > hi) {
		return ErrStructure.New(KindName(f), fmt.Sprintf("%s takes %s arguments, got %d", f.Kind, arity(lo, hi), n))
	}
	for i, a := range f.Args {
		if a == nil {
			return ErrStructure.New(KindName(f), fmt.Sprintf("%s argument %d missing", f.Kind, i))
		}
	}
	return nil
}

func arity(lo, hi int) string {
	switch {
	case hi < 0:
		return fmt.Sprintf("at least %d", lo)
	case lo == hi:
		return fmt.Sprint(lo)
	default:
		return fmt.Sprintf("%d to %d", lo, hi)
	}
}

func validateSequence(n Node, s *Sequence) error {
	if s == nil || s.Name == "" {
		return ErrStructure.New(KindName(n), "no sequence name")
	}
	d := s.Descriptor
	if d.Increment != nil && *d.Increment == 0 {
		return ErrStructure.New(KindName(n), "increment must not be zero")
	}
	if d.Min != nil && d.Max != nil && *d.Min > *d.Max {
		return ErrStructure.New(KindName(n), "min greater than max")
	}
	if d.Start != nil && !inRange(*d.Start, d.Min, d.Max) {
		return ErrStructure.New(KindName(n), "start outside min/max")
	}
	return nil
}

func inRange(v int64, lo, hi *int64) bool {
	return (lo == nil || v >= *lo) && (hi == nil || v <= *hi)
}

// KindName returns a short lowercase name for the node type, used in error
// messages.
func KindName(n Node) string {
	switch node := n.(type) {
	case *TableRef:
		return "table reference"
	case *QueryRef:
		return "query reference"
	case *Join:
		return node.Kind.String()
	case *Literal:
		return "literal"
	case *Null:
		return "null"
	case *Default:
		return "default"
	case *ParamRef:
		return "parameter"
	case *Placeholder:
		return "placeholder"
	case *Variant:
		return "variant"
	case *Column:
		return "column"
	case *Star:
		return "star"
	case *ColumnAlias:
		return "column alias"
	case *Native:
		return "native"
	case *Binary:
		return "binary " + node.Op.String()
	case *Unary:
		return "unary " + node.Op.String()
	case *Like:
		return "like"
	case *Between:
		return "between"
	case *Func:
		if node.Kind == FuncUser {
			return "function " + node.Name
		}
		return "function " + node.Kind.String()
	case *Aggregate:
		return "aggregate " + node.Kind.String()
	case *Case:
		return "case"
	case *Cast:
		return "cast"
	case *Row:
		return "row"
	case *SubQuery:
		return "subquery"
	case *OrderItem:
		return "order item"
	case *Select:
		return "select"
	case *SetOp:
		return node.Kind.String()
	case *Insert:
		return "insert"
	case *Update:
		return "update"
	case *Delete:
		return "delete"
	case *Batch:
		return "batch"
	case *CreateSequence:
		return "create sequence"
	case *AlterSequence:
		return "alter sequence"
	case *DropSequence:
		return "drop sequence"
	case *CreateIndex:
		return "create index"
	case *DropIndex:
		return "drop index"
	default:
		return fmt.Sprintf("%T", n)
	}
}
