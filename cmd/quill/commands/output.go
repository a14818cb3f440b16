package commands

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.trai.ch/quill/internal/ui/output"
	"go.trai.ch/quill/internal/ui/style"
)

const dateLayout = "2006-01-02"

// printer writes command results either as JSON or as a styled table.
type printer struct {
	cmd     *cobra.Command
	json    bool
	palette style.Palette
}

func (c *CLI) printer(cmd *cobra.Command) printer {
	return printer{
		cmd:     cmd,
		json:    c.json,
		palette: style.NewPalette(output.NewRenderer(cmd.OutOrStdout())),
	}
}

// result prints v as JSON, or as a table whose header cells are styled.
func (p printer) result(v any, header []string, rows [][]string) error {
	if p.json {
		return p.encode(v)
	}
	styled := make([]string, len(header))
	for i, h := range header {
		styled[i] = p.palette.Header(h)
	}
	if len(rows) == 0 {
		_, err := fmt.Fprintln(p.cmd.OutOrStdout(), p.palette.Muted("nothing to show"))
		return err
	}
	return output.Table(p.cmd.OutOrStdout(), styled, rows)
}

// done confirms a mutation. In JSON mode v is printed instead.
func (p printer) done(v any, msg string) error {
	if p.json {
		return p.encode(v)
	}
	_, err := fmt.Fprintln(p.cmd.OutOrStdout(), p.palette.Success(msg))
	return err
}

func (p printer) encode(v any) error {
	enc := json.NewEncoder(p.cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Format(dateLayout)
}
