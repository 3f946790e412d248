package sqlast

import "github.com/roach88/sqlcore/internal/ir"

// Node is any element of a statement tree.
//
// This is a sealed interface: only pointer types in this package implement
// it, so the compiler and validator can switch over the complete set.
// Nodes are identified by pointer. The same node may appear in several
// places of a tree, but a node must never be reachable from itself.
type Node interface {
	sqlNode()
}

// Expression is a node that yields a value.
type Expression interface {
	Node
	expression()
}

// Statement is a node that can be compiled on its own.
type Statement interface {
	Node
	statement()
}

// Table is a node that can appear in a FROM clause.
type Table interface {
	Node
	table()
}

// BaseTable names a physical table. It is model data, not a tree node;
// TableRef points at it.
type BaseTable struct {
	Schema string
	Name   string
}

// ---------------------------------------------------------------------------
// Tables

// TableRef references a base table. Name is the reference name used for
// aliasing; when empty the base name is used.
type TableRef struct {
	Table *BaseTable
	Name  string
}

func (*TableRef) sqlNode() {}
func (*TableRef) table()   {}

// RefName returns the reference name, falling back to the base name.
func (t *TableRef) RefName() string {
	if t.Name != "" {
		return t.Name
	}
	if t.Table != nil {
		return t.Table.Name
	}
	return ""
}

// Ref returns a fresh reference to base under the base name.
func Ref(base *BaseTable) *TableRef {
	return &TableRef{Table: base}
}

// QueryRef is a derived table: a query used in FROM.
type QueryRef struct {
	Query Statement
	Name  string
}

func (*QueryRef) sqlNode() {}
func (*QueryRef) table()   {}

// JoinKind enumerates join flavors.
type JoinKind uint8

const (
	InnerJoin JoinKind = iota
	LeftOuterJoin
	RightOuterJoin
	FullOuterJoin
	CrossJoin
)

var joinKindNames = [...]string{
	InnerJoin:      "inner join",
	LeftOuterJoin:  "left outer join",
	RightOuterJoin: "right outer join",
	FullOuterJoin:  "full outer join",
	CrossJoin:      "cross join",
}

func (k JoinKind) String() string { return joinKindNames[k] }

// Join combines two tables. On is required except for CrossJoin.
type Join struct {
	Kind  JoinKind
	Left  Table
	Right Table
	On    Expression
}

func (*Join) sqlNode() {}
func (*Join) table()   {}

// ---------------------------------------------------------------------------
// Leaf expressions

// Literal is a constant rendered inline by the dialect.
type Literal struct {
	Value ir.IRValue
}

func (*Literal) sqlNode()    {}
func (*Literal) expression() {}

// Null is the NULL keyword.
type Null struct{}

func (*Null) sqlNode()    {}
func (*Null) expression() {}

// Default is the DEFAULT keyword in INSERT values.
type Default struct{}

func (*Default) sqlNode()    {}
func (*Default) expression() {}

// ParamRef is a reference to a bound parameter. Binding is the identity of
// the parameter; every occurrence of the same Binding renders the same
// parameter.
type ParamRef struct {
	Binding any
}

func (*ParamRef) sqlNode()    {}
func (*ParamRef) expression() {}

// Placeholder is a hole for a constant supplied when the compiled text is
// rendered, e.g. an inline boolean or a paging count.
type Placeholder struct {
	Key any
}

func (*Placeholder) sqlNode()    {}
func (*Placeholder) expression() {}

// Variant chooses between two expressions at render time. Main renders when
// Key is active.
type Variant struct {
	Key  any
	Main Expression
	Alt  Expression
}

func (*Variant) sqlNode()    {}
func (*Variant) expression() {}

// Column references a column. Table may be nil for an unqualified name.
type Column struct {
	Table Table
	Name  string
}

func (*Column) sqlNode()    {}
func (*Column) expression() {}

// Col is shorthand for &Column{Table: t, Name: name}.
func Col(t Table, name string) *Column {
	return &Column{Table: t, Name: name}
}

// Star is "*" or "t.*".
type Star struct {
	Table Table
}

func (*Star) sqlNode()    {}
func (*Star) expression() {}

// ColumnAlias names a select-list expression.
type ColumnAlias struct {
	Expr  Expression
	Alias string
}

func (*ColumnAlias) sqlNode()    {}
func (*ColumnAlias) expression() {}

// Native is dialect text passed through verbatim.
type Native struct {
	Text string
}

func (*Native) sqlNode()    {}
func (*Native) expression() {}

// ---------------------------------------------------------------------------
// Operators

// BinaryOp enumerates binary operators.
type BinaryOp uint8

const (
	OpEq BinaryOp = iota
	OpNotEq
	OpLt
	OpLtEq
	OpGt
	OpGtEq
	OpAnd
	OpOr
	OpAdd
	OpSub
	OpMul
	OpDiv
	OpMod
	OpConcat
	OpIn
	OpNotIn
	OpBitAnd
	OpBitOr
	OpBitXor
)

var binaryOpNames = [...]string{
	OpEq: "=", OpNotEq: "<>", OpLt: "<", OpLtEq: "<=", OpGt: ">", OpGtEq: ">=",
	OpAnd: "and", OpOr: "or", OpAdd: "+", OpSub: "-", OpMul: "*", OpDiv: "/",
	OpMod: "%", OpConcat: "||", OpIn: "in", OpNotIn: "not in",
	OpBitAnd: "&", OpBitOr: "|", OpBitXor: "^",
}

func (op BinaryOp) String() string { return binaryOpNames[op] }

// Binary is "left op right".
type Binary struct {
	Op    BinaryOp
	Left  Expression
	Right Expression
}

func (*Binary) sqlNode()    {}
func (*Binary) expression() {}

// Eq is shorthand for an equality comparison.
func Eq(left, right Expression) *Binary {
	return &Binary{Op: OpEq, Left: left, Right: right}
}

// And folds conditions with AND, skipping nils. It returns nil when no
// condition remains.
func And(conds ...Expression) Expression {
	var out Expression
	for _, c := range conds {
		if c == nil {
			continue
		}
		if out == nil {
			out = c
			continue
		}
		out = &Binary{Op: OpAnd, Left: out, Right: c}
	}
	return out
}

// UnaryOp enumerates unary operators.
type UnaryOp uint8

const (
	OpNot UnaryOp = iota
	OpNegate
	OpBitNot
	OpIsNull
	OpIsNotNull
	OpExists
)

var unaryOpNames = [...]string{
	OpNot: "not", OpNegate: "-", OpBitNot: "~",
	OpIsNull: "is null", OpIsNotNull: "is not null", OpExists: "exists",
}

func (op UnaryOp) String() string { return unaryOpNames[op] }

// Unary applies a prefix or postfix operator.
type Unary struct {
	Op      UnaryOp
	Operand Expression
}

func (*Unary) sqlNode()    {}
func (*Unary) expression() {}

// IsNull is shorthand for "e IS NULL".
func IsNull(e Expression) *Unary {
	return &Unary{Op: OpIsNull, Operand: e}
}

// Like is "expr [NOT] LIKE pattern [ESCAPE 'c']".
type Like struct {
	Expr    Expression
	Pattern Expression
	Escape  rune // 0 = none
	Not     bool
}

func (*Like) sqlNode()    {}
func (*Like) expression() {}

// Between is "expr [NOT] BETWEEN low AND high".
type Between struct {
	Expr Expression
	Low  Expression
	High Expression
	Not  bool
}

func (*Between) sqlNode()    {}
func (*Between) expression() {}

// ---------------------------------------------------------------------------
// Functions

// FuncKind enumerates the portable scalar functions.
type FuncKind uint8

const (
	FuncUser FuncKind = iota // user function; name in Func.Name
	FuncSubstring
	FuncPosition
	FuncLength
	FuncUpper
	FuncLower
	FuncTrim
	FuncConcat
	FuncCoalesce
	FuncAbs
	FuncRound
	FuncCurrentTimestamp
	FuncCurrentDate
	FuncNextValue
)

var funcKindNames = [...]string{
	FuncUser: "user", FuncSubstring: "substring", FuncPosition: "position",
	FuncLength: "length", FuncUpper: "upper", FuncLower: "lower", FuncTrim: "trim",
	FuncConcat: "concat", FuncCoalesce: "coalesce", FuncAbs: "abs", FuncRound: "round",
	FuncCurrentTimestamp: "current_timestamp", FuncCurrentDate: "current_date",
	FuncNextValue: "next value",
}

func (k FuncKind) String() string { return funcKindNames[k] }

// Func is a scalar function call.
//
// Substring takes (string, start[, length]) with a zero-based start.
// Position takes (needle, haystack) and yields a zero-based index, -1 when
// not found. The dialect translates both to its own index base.
// NextValue takes no arguments and reads the sequence named by Name.
type Func struct {
	Kind FuncKind
	Name string
	Args []Expression
}

func (*Func) sqlNode()    {}
func (*Func) expression() {}

// AggregateKind enumerates aggregate functions.
type AggregateKind uint8

const (
	AggCount AggregateKind = iota
	AggSum
	AggAvg
	AggMin
	AggMax
)

var aggregateNames = [...]string{
	AggCount: "count", AggSum: "sum", AggAvg: "avg", AggMin: "min", AggMax: "max",
}

func (k AggregateKind) String() string { return aggregateNames[k] }

// Aggregate is an aggregate call. A nil Arg with AggCount is COUNT(*).
type Aggregate struct {
	Kind     AggregateKind
	Distinct bool
	Arg      Expression
}

func (*Aggregate) sqlNode()    {}
func (*Aggregate) expression() {}

// When is one branch of a Case.
type When struct {
	Cond   Expression
	Result Expression
}

// Case is a searched CASE (Operand nil) or a simple CASE.
type Case struct {
	Operand Expression
	Whens   []*When
	Else    Expression
}

func (*Case) sqlNode()    {}
func (*Case) expression() {}

// Cast converts Expr to a column type.
type Cast struct {
	Expr Expression
	Type ir.ColumnType
}

func (*Cast) sqlNode()    {}
func (*Cast) expression() {}

// Row is a parenthesized list of expressions, as in "(a, b)" or the right
// side of IN.
type Row struct {
	Items []Expression
}

func (*Row) sqlNode()    {}
func (*Row) expression() {}

// SubQuery uses a query as a value.
type SubQuery struct {
	Query Statement
}

func (*SubQuery) sqlNode()    {}
func (*SubQuery) expression() {}

// OrderItem is one ORDER BY term.
type OrderItem struct {
	Expr Expression
	Desc bool
}

func (*OrderItem) sqlNode() {}
