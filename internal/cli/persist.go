package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/roach88/sqlcore/internal/binding"
	"github.com/roach88/sqlcore/internal/compiler"
	"github.com/roach88/sqlcore/internal/dialect"
	"github.com/roach88/sqlcore/internal/ir"
	"github.com/roach88/sqlcore/internal/request"
	"github.com/roach88/sqlcore/internal/schema"
	"github.com/spf13/cast"
	"github.com/spf13/cobra"
)

// PersistOptions holds the flags of the persist command.
type PersistOptions struct {
	Type      string
	Operation string
	Changed   string
	Available string
	Validate  bool
	Dialect   string
	Deferred  bool
}

// PersistOutput is the result of the persist command.
type PersistOutput struct {
	Task       string            `json:"task"`
	Dialect    string            `json:"dialect"`
	Statements []StatementOutput `json:"statements"`
}

// StatementOutput is one compiled request.
type StatementOutput struct {
	SQL           string        `json:"sql"`
	Template      string        `json:"template"`
	ChecksVersion bool          `json:"checks_version"`
	Parameters    []ParamOutput `json:"parameters"`
}

// ParamOutput is one parameter slot of a statement.
type ParamOutput struct {
	Name    string `json:"name"`
	Binding string `json:"binding"`
}

// NewPersistCommand creates the persist command.
func NewPersistCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &PersistOptions{}

	cmd := &cobra.Command{
		Use:   "persist <model-dir>",
		Short: "Print the statements that persist an entity",
		Long: `Build the INSERT, UPDATE or DELETE requests for one type of the model
and print their SQL together with the parameter table.

Field sets are comma-separated field names or indexes, with ranges such as
0-5, or "all".`,
		Example: `  sqlcore persist ./model --type Invoice --op update --changed title,amount --validate --dialect sqlserver`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPersist(rootOpts.formatter(cmd), args[0], opts)
		},
	}

	cmd.Flags().StringVarP(&opts.Type, "type", "t", "", "entity type name (required)")
	cmd.Flags().StringVar(&opts.Operation, "op", "insert", "operation (insert|update|delete)")
	cmd.Flags().StringVar(&opts.Changed, "changed", "", "changed fields")
	cmd.Flags().StringVar(&opts.Available, "available", "all", "available fields")
	cmd.Flags().BoolVar(&opts.Validate, "validate", false, "filter on original version values")
	cmd.Flags().StringVarP(&opts.Dialect, "dialect", "d", "postgres", "target dialect")
	cmd.Flags().BoolVar(&opts.Deferred, "deferred", false, "assign parameter names at render time")
	_ = cmd.MarkFlagRequired("type")

	return cmd
}

func runPersist(f *OutputFormatter, dir string, opts *PersistOptions) error {
	log := f.Logger()

	tr, err := dialect.Lookup(opts.Dialect)
	if err != nil {
		return WrapExitError(ExitCommandError, "dialect", err)
	}
	op, err := request.ParseOperation(opts.Operation)
	if err != nil {
		return WrapExitError(ExitCommandError, "operation", err)
	}

	model, err := schema.LoadModel(dir)
	if err != nil {
		return WrapExitError(ExitFailure, "load model", err)
	}
	typ, ok := model.Type(opts.Type)
	if !ok {
		return NewExitError(ExitCommandError, fmt.Sprintf("unknown type %q (have %s)", opts.Type, strings.Join(model.Names(), ", ")))
	}
	changed, err := parseFieldSet(model, typ, opts.Changed)
	if err != nil {
		return WrapExitError(ExitCommandError, "--changed", err)
	}
	available, err := parseFieldSet(model, typ, opts.Available)
	if err != nil {
		return WrapExitError(ExitCommandError, "--available", err)
	}
	task, err := request.NewTask(typ, op, changed, available, opts.Validate)
	if err != nil {
		return WrapExitError(ExitCommandError, "task", err)
	}

	copts := []compiler.Option{compiler.WithLogger(log)}
	if opts.Deferred {
		copts = append(copts, compiler.WithDeferredNaming())
	}
	builder := request.NewPersistRequestBuilder(compiler.New(tr, copts...), request.WithLogger(log))
	reqs, err := builder.Build(task)
	if err != nil {
		return WrapExitError(ExitFailure, "build", err)
	}
	log.Debug("requests built", "task", task.String(), "requests", len(reqs))

	out := PersistOutput{Task: task.String(), Dialect: tr.Name()}
	for _, r := range reqs {
		st, err := describeRequest(r)
		if err != nil {
			return WrapExitError(ExitFailure, "render", err)
		}
		out.Statements = append(out.Statements, st)
	}

	return f.Success(out, func(w io.Writer) error {
		fmt.Fprintf(w, "-- %s (%s)\n", out.Task, out.Dialect)
		if len(out.Statements) == 0 {
			fmt.Fprintln(w, "-- nothing to write")
		}
		for i, st := range out.Statements {
			fmt.Fprintf(w, "\n-- statement %d", i+1)
			if st.ChecksVersion {
				fmt.Fprint(w, " (checks version)")
			}
			fmt.Fprintln(w)
			fmt.Fprintln(w, st.SQL)
			for _, p := range st.Parameters {
				fmt.Fprintf(w, "--   %-6s %s\n", p.Name, p.Binding)
			}
		}
		return nil
	})
}

func describeRequest(r *request.PersistRequest) (StatementOutput, error) {
	res, err := r.Compiled()
	if err != nil {
		return StatementOutput{}, err
	}
	names := make(map[any]string)
	rendered, err := res.Render(compiler.RenderOptions{Namer: func(b any) (string, error) {
		if _, ok := names[b]; !ok {
			names[b] = fmt.Sprintf("p%d", len(names))
		}
		return names[b], nil
	}})
	if err != nil {
		return StatementOutput{}, err
	}
	st := StatementOutput{SQL: rendered.SQL, Template: res.Dump(), ChecksVersion: r.ChecksVersion()}
	seen := make(map[string]bool)
	for _, p := range rendered.Params {
		if seen[p.Name] {
			continue
		}
		seen[p.Name] = true
		desc := fmt.Sprint(p.Binding)
		if b, ok := p.Binding.(*binding.Binding); ok {
			desc = b.String()
		}
		st.Parameters = append(st.Parameters, ParamOutput{Name: p.Name, Binding: desc})
	}
	return st, nil
}

// parseFieldSet reads a field list such as "title,2,4-5" or "all".
func parseFieldSet(model *schema.Model, typ *ir.TypeInfo, s string) (ir.FieldSet, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return ir.FieldSet{}, nil
	}
	if s == "all" {
		return ir.FieldRange(typ.FieldCount), nil
	}
	var fs ir.FieldSet
	for _, item := range strings.Split(s, ",") {
		item = strings.TrimSpace(item)
		if lo, hi, ok := strings.Cut(item, "-"); ok {
			from, err := cast.ToIntE(lo)
			if err != nil {
				return ir.FieldSet{}, fmt.Errorf("bad range %q", item)
			}
			to, err := cast.ToIntE(hi)
			if err != nil || to < from {
				return ir.FieldSet{}, fmt.Errorf("bad range %q", item)
			}
			for i := from; i <= to; i++ {
				fs.Set(i)
			}
			continue
		}
		if i, err := cast.ToIntE(item); err == nil {
			fs.Set(i)
			continue
		}
		i, ok := model.FieldIndex(typ, item)
		if !ok {
			return ir.FieldSet{}, fmt.Errorf("type %s has no field %q", typ.Name, item)
		}
		fs.Set(i)
	}
	return fs, nil
}
