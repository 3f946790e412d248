package schema

import (
	"os"
	"path/filepath"
	"testing"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0644))
}

func TestLoadDir_Mixed(t *testing.T) {
	res, errs := LoadDir(filepath.Join("testdata", "model"), LoadModeCollectAll)
	require.Empty(t, errs)
	require.Len(t, res.Types, 2)
	assert.Len(t, res.Files, 2)

	doc := res.Types[0]
	assert.Equal(t, "Document", doc.Name)
	assert.Equal(t, "documents", doc.Table)
	assert.Equal(t, int64(1), doc.TypeID)
	assert.Equal(t, []string{"id", "version", "title", "body"}, fieldNames(doc))

	inv := res.Types[1]
	assert.Equal(t, "Document", inv.Parent)
	assert.Equal(t, FieldSpec{Name: "stamp", Type: "decimal", Precision: 28, Scale: 10, Version: true, Nullable: true}, inv.Fields[1])
	assert.Equal(t, filepath.Join("testdata", "model", "invoices.yaml")+":2", inv.Source)
}

func fieldNames(t TypeSpec) []string {
	var out []string
	for _, f := range t.Fields {
		out = append(out, f.Name)
	}
	return out
}

func TestLoadDir_Errors(t *testing.T) {
	_, errs := LoadDir("/nonexistent/model/dir", LoadModeFailFast)
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0].Error(), ErrCodeNotFound)

	empty := t.TempDir()
	writeFile(t, empty, "README.md", "not a model")
	_, errs = LoadDir(empty, LoadModeFailFast)
	require.Len(t, errs, 1)
	assert.Equal(t, "E003: no model files found in "+empty, errs[0].Error())
}

func TestLoadDir_CollectAll(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.yaml", "types:\n  - name: A\n    tabel: a\n")
	writeFile(t, dir, "b.yaml", "types: [\n")
	writeFile(t, dir, "c.yml", "types:\n  - name: C\n    table: c\n    fields:\n      - {name: id, type: int64, key: true}\n")

	res, errs := LoadDir(dir, LoadModeCollectAll)
	require.Len(t, errs, 2)
	for _, err := range errs {
		var le *LoadError
		require.ErrorAs(t, err, &le)
		assert.Equal(t, ErrCodeYAML, le.Code)
	}
	assert.Contains(t, errs[0].Error(), "tabel")
	require.Len(t, res.Types, 1)
	assert.Equal(t, "C", res.Types[0].Name)

	_, errs = LoadDir(dir, LoadModeFailFast)
	assert.Len(t, errs, 1)
}

func TestLoadDir_NoTypes(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "empty.cue", "package model\n\nother: 1\n")

	_, errs := LoadDir(dir, LoadModeFailFast)
	require.Len(t, errs, 1)
	assert.Equal(t, "E001: no types found in model files", errs[0].Error())
}

func TestCompileType(t *testing.T) {
	ctx := cuecontext.New()
	v := ctx.CompileString(`
type: Note: {
	table: "notes"
	schema: "app"
	fields: {
		id: {type: "guid", key: true, column: "note_id"}
		text: "text"
		size: {type: "decimal", precision: 10, scale: 3, nullable: true}
	}
}
`)
	require.NoError(t, v.Err())

	spec, err := CompileType(v.LookupPath(cue.ParsePath("type.Note")))
	require.NoError(t, err)
	assert.Equal(t, "Note", spec.Name)
	assert.Equal(t, "app", spec.Schema)
	assert.Equal(t, []FieldSpec{
		{Name: "id", Column: "note_id", Type: "guid", Key: true},
		{Name: "text", Type: "text"},
		{Name: "size", Type: "decimal", Precision: 10, Scale: 3, Nullable: true},
	}, spec.Fields)
	assert.Equal(t, "note_id", spec.Fields[0].ColumnName())
	assert.Equal(t, "text", spec.Fields[1].ColumnName())
}

func TestCompileType_Errors(t *testing.T) {
	ctx := cuecontext.New()

	v := ctx.CompileString(`type: Bad: {table: "bad", fields: {n: 5}}`)
	_, err := CompileType(v.LookupPath(cue.ParsePath("type.Bad")))
	var ce *CompileError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, "fields.n", ce.Field)

	v = ctx.CompileString(`type: Bad: {table: 7}`)
	_, err = CompileType(v.LookupPath(cue.ParsePath("type.Bad")))
	require.Error(t, err)

	types, errs := TypesFromCUE(ctx.CompileString(`type: {
	Ok: {table: "ok", fields: id: {type: "int64", key: true}}
	Bad: {table: "bad", fields: {n: true}}
}`))
	require.Len(t, types, 1)
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0].Error(), "type.Bad: fields.n")
}
