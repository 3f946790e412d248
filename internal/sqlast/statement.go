package sqlast

// LockMode selects row locking for a SELECT.
type LockMode uint8

const (
	NoLock LockMode = iota
	LockForUpdate
	LockForShare
)

// Select is a SELECT query.
type Select struct {
	Distinct bool
	Columns  []Expression // required; use &Star{} for "*"
	From     Table
	Where    Expression
	GroupBy  []Expression
	Having   Expression
	OrderBy  []*OrderItem
	Limit    Expression
	Offset   Expression
	Lock     LockMode

	// ForceJoinOrder asks the dialect to keep the written join order.
	// Dialects without join-order hints ignore it.
	ForceJoinOrder bool
}

func (*Select) sqlNode()   {}
func (*Select) statement() {}

// SetOpKind enumerates set operations.
type SetOpKind uint8

const (
	Union SetOpKind = iota
	Intersect
	Except
)

var setOpNames = [...]string{Union: "union", Intersect: "intersect", Except: "except"}

func (k SetOpKind) String() string { return setOpNames[k] }

// SetOp combines two queries.
type SetOp struct {
	Kind  SetOpKind
	All   bool
	Left  Statement
	Right Statement
}

func (*SetOp) sqlNode()   {}
func (*SetOp) statement() {}

// Insert is a single-row INSERT. With no columns it inserts defaults.
type Insert struct {
	Into    *TableRef
	Columns []*Column
	Values  []Expression
}

func (*Insert) sqlNode()   {}
func (*Insert) statement() {}

// Assignment is one SET item of an UPDATE.
type Assignment struct {
	Column *Column
	Value  Expression
}

// Update is an UPDATE of one table.
type Update struct {
	Table *TableRef
	Set   []*Assignment
	Where Expression
}

func (*Update) sqlNode()   {}
func (*Update) statement() {}

// Delete is a DELETE from one table.
type Delete struct {
	From  *TableRef
	Where Expression
}

func (*Delete) sqlNode()   {}
func (*Delete) statement() {}

// Batch is several statements compiled into one unit.
type Batch struct {
	Statements []Statement
}

func (*Batch) sqlNode()   {}
func (*Batch) statement() {}

// ---------------------------------------------------------------------------
// DDL

// SequenceDescriptor holds the numeric settings of a sequence. Nil fields
// keep the dialect default.
type SequenceDescriptor struct {
	Start     *int64
	Increment *int64
	Min       *int64
	Max       *int64
	Cycle     bool
}

// Sequence names a sequence.
type Sequence struct {
	Schema     string
	Name       string
	Descriptor SequenceDescriptor
}

// CreateSequence is CREATE SEQUENCE.
type CreateSequence struct {
	Sequence *Sequence
}

func (*CreateSequence) sqlNode()   {}
func (*CreateSequence) statement() {}

// AlterSequence is ALTER SEQUENCE. Restart, when set, restarts the
// sequence at that value.
type AlterSequence struct {
	Sequence *Sequence
	Restart  *int64
}

func (*AlterSequence) sqlNode()   {}
func (*AlterSequence) statement() {}

// DropSequence is DROP SEQUENCE.
type DropSequence struct {
	Sequence *Sequence
}

func (*DropSequence) sqlNode()   {}
func (*DropSequence) statement() {}

// IndexKind enumerates index flavors. Support varies by dialect.
type IndexKind uint8

const (
	IndexBTree IndexKind = iota
	IndexHash
	IndexFullText
	IndexFiltered // partial index; requires CreateIndex.Where
)

var indexKindNames = [...]string{
	IndexBTree: "btree", IndexHash: "hash", IndexFullText: "fulltext", IndexFiltered: "filtered",
}

func (k IndexKind) String() string { return indexKindNames[k] }

// IndexColumn is one key column of an index.
type IndexColumn struct {
	Name string
	Desc bool
}

// CreateIndex is CREATE INDEX.
type CreateIndex struct {
	Name    string
	Table   *BaseTable
	Kind    IndexKind
	Unique  bool
	Columns []*IndexColumn
	Where   Expression
}

func (*CreateIndex) sqlNode()   {}
func (*CreateIndex) statement() {}

// DropIndex is DROP INDEX.
type DropIndex struct {
	Name  string
	Table *BaseTable
}

func (*DropIndex) sqlNode()   {}
func (*DropIndex) statement() {}

// Int64 returns a pointer to v, for sequence descriptors.
func Int64(v int64) *int64 {
	return &v
}
