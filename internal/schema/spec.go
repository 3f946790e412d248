package schema

import (
	"strconv"
)

// TypeSpec is one entity type as written in a model file.
type TypeSpec struct {
	Name   string      `yaml:"name"`
	Parent string      `yaml:"parent,omitempty"`
	Table  string      `yaml:"table"`
	Schema string      `yaml:"schema,omitempty"`
	TypeID int64       `yaml:"type_id,omitempty"`
	Fields []FieldSpec `yaml:"fields"`

	// Source is "file:line" of the declaration, when known.
	Source string `yaml:"-"`
}

// FieldSpec is one persisted field. Column defaults to Name.
type FieldSpec struct {
	Name      string `yaml:"name"`
	Column    string `yaml:"column,omitempty"`
	Type      string `yaml:"type"`
	Length    int    `yaml:"length,omitempty"`
	Precision int    `yaml:"precision,omitempty"`
	Scale     int    `yaml:"scale,omitempty"`
	Key       bool   `yaml:"key,omitempty"`
	Version   bool   `yaml:"version,omitempty"`
	Nullable  bool   `yaml:"nullable,omitempty"`
}

// ColumnName returns the column the field is stored in.
func (f FieldSpec) ColumnName() string {
	if f.Column != "" {
		return f.Column
	}
	return f.Name
}

// modelFile is the top level of a YAML model file.
type modelFile struct {
	Types []TypeSpec `yaml:"types"`
}

func position(file string, line int) string {
	if line <= 0 {
		return file
	}
	return file + ":" + strconv.Itoa(line)
}
