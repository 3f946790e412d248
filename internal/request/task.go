package request

import (
	"fmt"

	"github.com/roach88/sqlcore/internal/ir"
	errors "gopkg.in/src-d/go-errors.v1"
)

var (
	// ErrInvalidTask is returned by NewTask and Build for a task no builder
	// can serve.
	ErrInvalidTask = errors.NewKind("invalid persist task: %s")

	// ErrNotPrepared is returned when a request's compiled form is read
	// before Prepare.
	ErrNotPrepared = errors.NewKind("%s request is not prepared")
)

// Operation is the kind of change a persist task writes.
type Operation uint8

const (
	Insert Operation = iota
	Update
	Delete
)

var operationNames = [...]string{Insert: "insert", Update: "update", Delete: "delete"}

func (op Operation) String() string {
	if int(op) < len(operationNames) {
		return operationNames[op]
	}
	return fmt.Sprintf("Operation(%d)", int(op))
}

// ParseOperation resolves "insert", "update" or "delete".
func ParseOperation(s string) (Operation, error) {
	for op, name := range operationNames {
		if name == s {
			return Operation(op), nil
		}
	}
	return 0, ErrInvalidTask.New(fmt.Sprintf("unknown operation %q", s))
}

// Task describes one persist statement shape. Two tasks are equal when
// they would build the same statements, which makes Task the key of the
// persist request cache.
type Task struct {
	Type            *ir.TypeInfo
	Operation       Operation
	Changed         ir.FieldSet
	Available       ir.FieldSet
	ValidateVersion bool
}

// NewTask checks and returns a task.
func NewTask(t *ir.TypeInfo, op Operation, changed, available ir.FieldSet, validateVersion bool) (Task, error) {
	task := Task{
		Type:            t,
		Operation:       op,
		Changed:         changed.Clone(),
		Available:       available.Clone(),
		ValidateVersion: validateVersion,
	}
	if err := task.validate(); err != nil {
		return Task{}, err
	}
	return task, nil
}

// validate reports the first reason no builder can serve t.
//
// Updates and deletes locate rows by key, so every table they touch needs
// key columns, and an update cannot change a key field.
func (t Task) validate() error {
	if t.Type == nil {
		return ErrInvalidTask.New("no type")
	}
	if int(t.Operation) >= len(operationNames) {
		return ErrInvalidTask.New(fmt.Sprintf("unknown operation %d", t.Operation))
	}
	if t.ValidateVersion && t.Operation == Insert {
		return ErrInvalidTask.New("version validation requested for insert")
	}
	for _, fs := range []ir.FieldSet{t.Changed, t.Available} {
		if idx := fs.Indexes(); len(idx) > 0 && idx[len(idx)-1] >= t.Type.FieldCount {
			return ErrInvalidTask.New(fmt.Sprintf("field %d out of range for %s", idx[len(idx)-1], t.Type.Name))
		}
	}
	if t.Operation == Insert {
		return nil
	}
	for _, tbl := range t.Type.Tables {
		keys := tbl.KeyColumns()
		if len(keys) == 0 {
			return ErrInvalidTask.New(fmt.Sprintf("table %s has no key columns", tbl.QualifiedName()))
		}
		if t.Operation != Update {
			continue
		}
		for _, k := range keys {
			if t.Changed.Has(k.FieldIndex) {
				return ErrInvalidTask.New(fmt.Sprintf("key field %d of %s cannot change", k.FieldIndex, t.Type.Name))
			}
		}
	}
	return nil
}

// Equal reports structural equality.
func (t Task) Equal(o Task) bool {
	return t.Type == o.Type &&
		t.Operation == o.Operation &&
		t.ValidateVersion == o.ValidateVersion &&
		t.Changed.Equal(o.Changed) &&
		t.Available.Equal(o.Available)
}

// Hash is consistent with Equal. Only the first 32 bits of each field set
// contribute, so wide types share buckets and rely on Equal to tell
// entries apart.
func (t Task) Hash() uint32 {
	h := uint32(2166136261)
	mix := func(v uint32) {
		h ^= v
		h *= 16777619
	}
	if t.Type != nil {
		mix(uint32(t.Type.TypeID))
		mix(uint32(t.Type.TypeID >> 32))
	}
	mix(uint32(t.Operation))
	mix(t.Changed.Low32())
	mix(t.Available.Low32())
	if t.ValidateVersion {
		mix(1)
	}
	return h
}

func (t Task) String() string {
	name := "<nil>"
	if t.Type != nil {
		name = t.Type.Name
	}
	s := fmt.Sprintf("%s %s changed=%s available=%s", t.Operation, name, t.Changed, t.Available)
	if t.ValidateVersion {
		s += " validate"
	}
	return s
}
