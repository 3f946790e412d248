package cli

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/roach88/sqlcore/internal/dialect"
	"github.com/spf13/cobra"
)

// DialectInfo is one row of the dialects listing.
type DialectInfo struct {
	Name            string `json:"name"`
	Parameters      string `json:"parameters"`
	Paging          string `json:"paging"`
	Indexes         string `json:"indexes"`
	Intersect       bool   `json:"intersect"`
	Except          bool   `json:"except"`
	Batches         bool   `json:"batches"`
	Sequences       bool   `json:"sequences"`
	RowLocking      bool   `json:"row_locking"`
	FullOuterJoin   bool   `json:"full_outer_join"`
	BooleanLiterals bool   `json:"boolean_literals"`
}

// NewDialectsCommand creates the dialects command.
func NewDialectsCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "dialects",
		Short: "List supported dialects and their capabilities",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDialects(rootOpts.formatter(cmd))
		},
	}
}

func describeDialects() []DialectInfo {
	var out []DialectInfo
	for _, name := range dialect.Names() {
		caps := dialect.MustLookup(name).Capabilities()
		out = append(out, DialectInfo{
			Name:            name,
			Parameters:      caps.Parameters.String(),
			Paging:          caps.Paging.String(),
			Indexes:         caps.IndexKindNames(),
			Intersect:       caps.SetOperations&dialect.SetIntersect != 0,
			Except:          caps.SetOperations&dialect.SetExcept != 0,
			Batches:         caps.Batches,
			Sequences:       caps.Sequences,
			RowLocking:      caps.RowLocking,
			FullOuterJoin:   caps.FullOuterJoin,
			BooleanLiterals: caps.BooleanLiterals,
		})
	}
	return out
}

func runDialects(f *OutputFormatter) error {
	infos := describeDialects()
	return f.Success(infos, func(w io.Writer) error {
		tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "DIALECT\tPARAMS\tPAGING\tINDEXES\tINTERSECT\tEXCEPT\tBATCHES\tSEQUENCES")
		for _, d := range infos {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
				d.Name, d.Parameters, d.Paging, d.Indexes,
				yesNo(d.Intersect), yesNo(d.Except), yesNo(d.Batches), yesNo(d.Sequences))
		}
		return tw.Flush()
	})
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
