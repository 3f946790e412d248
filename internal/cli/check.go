package cli

import (
	"errors"
	"fmt"
	"io"

	"github.com/roach88/sqlcore/internal/ir"
	"github.com/roach88/sqlcore/internal/schema"
	"github.com/spf13/cobra"
)

// CheckResult is the outcome of the check command.
type CheckResult struct {
	Valid  bool                     `json:"valid"`
	Hash   string                   `json:"hash,omitempty"`
	Types  []TypeSummary            `json:"types,omitempty"`
	Errors []schema.ValidationError `json:"errors,omitempty"`
}

// TypeSummary describes one built type.
type TypeSummary struct {
	Name   string   `json:"name"`
	Parent string   `json:"parent,omitempty"`
	TypeID int64    `json:"type_id"`
	Tables []string `json:"tables"`
	Fields int      `json:"fields"`
}

// NewCheckCommand creates the check command.
func NewCheckCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "check <model-dir>",
		Short: "Validate a model directory",
		Long: `Load the CUE and YAML type declarations in a directory and report
every problem: parse errors, unknown types, missing keys, inheritance
cycles, bad decimals and duplicate fields.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(rootOpts.formatter(cmd), args[0])
		},
	}
}

func runCheck(f *OutputFormatter, dir string) error {
	log := f.Logger()

	res, loadErrs := schema.LoadDir(dir, schema.LoadModeCollectAll)
	if res == nil {
		return commandError(f, loadErrs[0])
	}
	log.Debug("model files loaded", "dir", dir, "files", len(res.Files), "types", len(res.Types))

	var errs []schema.ValidationError
	for _, err := range loadErrs {
		errs = append(errs, loadValidationError(err))
	}
	if len(res.Types) > 0 {
		errs = append(errs, schema.Validate(res.Types)...)
	}
	if len(errs) > 0 {
		return checkFailed(f, errs)
	}

	model, err := schema.Build(res.Types)
	if err != nil {
		return WrapExitError(ExitFailure, "build failed", err)
	}
	hash, err := model.Hash()
	if err != nil {
		return WrapExitError(ExitFailure, "model hash", err)
	}
	result := CheckResult{Valid: true, Hash: hash}
	for _, t := range model.Types {
		result.Types = append(result.Types, summarize(t))
	}

	return f.Success(result, func(w io.Writer) error {
		fmt.Fprintf(w, "\u2713 Model valid: %d type(s)\n", len(result.Types))
		for _, t := range result.Types {
			fmt.Fprintf(w, "  %s (id %d, %d fields) -> %v\n", t.Name, t.TypeID, t.Fields, t.Tables)
		}
		return nil
	})
}

func summarize(t *ir.TypeInfo) TypeSummary {
	s := TypeSummary{Name: t.Name, TypeID: t.TypeID, Fields: t.FieldCount}
	if t.Parent != nil {
		s.Parent = t.Parent.Name
	}
	for _, tbl := range t.Tables {
		s.Tables = append(s.Tables, tbl.QualifiedName())
	}
	return s
}

func loadValidationError(err error) schema.ValidationError {
	var le *schema.LoadError
	if !errors.As(err, &le) {
		return schema.ValidationError{Field: "load", Message: err.Error(), Code: schema.ErrCodeGeneric}
	}
	ve := schema.ValidationError{Field: "load", Message: le.Message, Code: le.Code}
	if le.Pos.IsValid() {
		ve.Source = fmt.Sprintf("%s:%d", le.Pos.Filename(), le.Pos.Line())
	}
	return ve
}

// commandError reports a load failure that prevented checking at all.
func commandError(f *OutputFormatter, err error) error {
	code, message := schema.ErrCodeGeneric, err.Error()
	var le *schema.LoadError
	if errors.As(err, &le) {
		code, message = le.Code, le.Message
	}
	_ = f.Error(code, message, nil)
	return NewExitError(ExitCommandError, fmt.Sprintf("%s: %s", code, message))
}

func checkFailed(f *OutputFormatter, errs []schema.ValidationError) error {
	failure := NewExitError(ExitFailure, fmt.Sprintf("validation failed with %d error(s)", len(errs)))
	if f.isJSON() {
		if err := f.encode(CLIResponse{
			Status: "error",
			Data:   CheckResult{Valid: false, Errors: errs},
			Error:  &CLIError{Code: errs[0].Code, Message: errs[0].Message},
		}); err != nil {
			return err
		}
		return failure
	}

	fmt.Fprintln(f.Writer, "\u2717 Validation failed")
	fmt.Fprintln(f.Writer)
	for _, e := range errs {
		if e.Source != "" {
			fmt.Fprintln(f.Writer, e.Source)
		}
		fmt.Fprintf(f.Writer, "  %s: %s: %s\n\n", e.Code, e.Field, e.Message)
	}
	return failure
}
