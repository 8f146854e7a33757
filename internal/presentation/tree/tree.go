// Package tree prints hierarchies and build reports for terminals.
package tree

import (
	"fmt"
	"io"

	"github.com/aretw0/bitrig/pkg/domain"
	"github.com/aretw0/bitrig/pkg/ports"
	"github.com/ddddddO/gtree"
	"github.com/muesli/termenv"
)

// Render writes the hierarchy below root as a text tree.
func Render(w io.Writer, h ports.Hierarchy, root domain.BitID) error {
	name, err := h.Name(root)
	if err != nil {
		return err
	}
	top := gtree.NewRoot(name)
	if err := add(h, root, top); err != nil {
		return err
	}
	return gtree.OutputProgrammably(w, top)
}

func add(h ports.Hierarchy, bit domain.BitID, node *gtree.Node) error {
	children, err := h.Children(bit)
	if err != nil {
		return err
	}
	for _, c := range children {
		name, err := h.Name(c)
		if err != nil {
			return err
		}
		if err := add(h, c, node.Add(name)); err != nil {
			return err
		}
	}
	return nil
}

// Summary writes one line per module of report, coloured by outcome when
// out supports colour.
func Summary(out *termenv.Output, report *domain.BuildReport) {
	ok := out.Color("#22c55e")
	bad := out.Color("#ef4444")
	dim := out.Color("#9ca3af")

	fmt.Fprintf(out, "%s\n", out.String("character "+report.Character).Bold())
	for _, m := range report.Modules {
		mark := out.String("✔").Foreground(ok)
		if m.Err != nil {
			mark = out.String("✘").Foreground(bad)
		}
		counts := out.String(fmt.Sprintf("created %d, reused %d, reparented %d", m.Created, m.Reused, m.Reparented)).Foreground(dim)
		fmt.Fprintf(out, "  %s %-16s %s\n", mark, m.Module, counts)
		if m.Err != nil {
			fmt.Fprintf(out, "      %s\n", out.String(m.Err.Error()).Foreground(bad))
		}
	}
	fmt.Fprintf(out, "  %d created, %d reparented, %d failed\n", report.Created(), report.Reparented(), len(report.Failed()))
}
