package testutil

import (
	"io"
	"log/slog"

	"github.com/roach88/sqlcore/internal/ir"
)

// Field indexes of the Document/Invoice model.
const (
	FieldID = iota
	FieldVersion
	FieldTitle
	FieldBody
	FieldAmount
	FieldStamp
)

// Model is a two-level hierarchy used across package tests.
//
//	Document (documents: id, version, title, body)
//	  Invoice (invoices: id, amount, stamp)
//
// documents.version is an int64 version column; invoices.stamp is a
// decimal(28,10) version column, which needs a CAST in version filters.
type Model struct {
	Document *ir.TypeInfo
	Invoice  *ir.TypeInfo

	Documents *ir.TableInfo
	Invoices  *ir.TableInfo
}

// NewModel returns a fresh model. Each call allocates new TypeInfo values.
func NewModel() *Model {
	documents := &ir.TableInfo{
		Name: "documents",
		Columns: []*ir.ColumnInfo{
			{Name: "id", FieldIndex: FieldID, Type: ir.ColumnType{Kind: ir.KindInt64}, PrimaryKey: true},
			{Name: "version", FieldIndex: FieldVersion, Type: ir.ColumnType{Kind: ir.KindInt64}, Version: true, Nullable: true},
			{Name: "title", FieldIndex: FieldTitle, Type: ir.ColumnType{Kind: ir.KindString, Length: 100}},
			{Name: "body", FieldIndex: FieldBody, Type: ir.ColumnType{Kind: ir.KindText}, Nullable: true},
		},
	}
	invoices := &ir.TableInfo{
		Name:   "invoices",
		Parent: documents,
		Columns: []*ir.ColumnInfo{
			{Name: "id", FieldIndex: FieldID, Type: ir.ColumnType{Kind: ir.KindInt64}, PrimaryKey: true},
			{Name: "amount", FieldIndex: FieldAmount, Type: ir.ColumnType{Kind: ir.KindDecimal, Precision: 18, Scale: 2}},
			{Name: "stamp", FieldIndex: FieldStamp, Type: ir.ColumnType{Kind: ir.KindDecimal, Precision: 28, Scale: 10}, Version: true, Nullable: true},
		},
	}
	document := &ir.TypeInfo{Name: "Document", TypeID: 1, Tables: []*ir.TableInfo{documents}, FieldCount: 4}
	invoice := &ir.TypeInfo{
		Name:       "Invoice",
		TypeID:     2,
		Parent:     document,
		Tables:     []*ir.TableInfo{documents, invoices},
		FieldCount: 6,
	}
	return &Model{Document: document, Invoice: invoice, Documents: documents, Invoices: invoices}
}

// InvoiceState returns a tuple for an Invoice row.
func InvoiceState(id int64, version ir.IRValue, title string, amount, stamp string) ir.Tuple {
	return ir.Tuple{
		ir.IRInt(id),
		version,
		ir.IRString(title),
		ir.IRNull{},
		ir.MustIRDecimal(amount),
		ir.MustIRDecimal(stamp),
	}
}

// DiscardLogger returns a logger that drops everything.
func DiscardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
