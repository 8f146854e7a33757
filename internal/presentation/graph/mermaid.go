package graph

import (
	"fmt"
	"strings"

	"github.com/aretw0/bitrig/pkg/domain"
	"github.com/aretw0/bitrig/pkg/ports"
)

// Overlay contains build state to visualize on the graph.
type Overlay struct {
	Touched []domain.BitID // nodes created or moved by the last build
	Current domain.BitID
}

// Options controls what GenerateMermaid draws.
type Options struct {
	// Modules maps authoring bits to their module name. Bits of one module are
	// grouped in a subgraph and edges crossing modules are dotted.
	Modules map[domain.BitID]string
	Overlay *Overlay
}

// GenerateMermaid produces a Mermaid flowchart of the hierarchies below roots.
// It applies semantic styling:
// - Joint: ((Circle))
// - Control: [[Subroutine]]
// - Group: [/Parallelogram/]
// - Default: [Rectangle]
func GenerateMermaid(h ports.Hierarchy, roots []domain.BitID, opts Options) (string, error) {
	var sb strings.Builder
	sb.WriteString("graph TD\n")

	var order []domain.BitID
	inScope := make(map[domain.BitID]bool)
	for _, root := range roots {
		desc, err := h.Descendants(root)
		if err != nil {
			return "", err
		}
		for _, id := range append([]domain.BitID{root}, desc...) {
			if !inScope[id] {
				inScope[id] = true
				order = append(order, id)
			}
		}
	}

	byModule := make(map[string][]domain.BitID)
	var moduleOrder []string
	var loose []domain.BitID
	for _, id := range order {
		m, ok := opts.Modules[id]
		if !ok {
			loose = append(loose, id)
			continue
		}
		if _, seen := byModule[m]; !seen {
			moduleOrder = append(moduleOrder, m)
		}
		byModule[m] = append(byModule[m], id)
	}

	for _, m := range moduleOrder {
		sb.WriteString(fmt.Sprintf("    subgraph %s[\"%s\"]\n", sanitizeMermaidID("module_"+m), m))
		for _, id := range byModule[m] {
			if err := writeNode(&sb, h, id, "        "); err != nil {
				return "", err
			}
		}
		sb.WriteString("    end\n")
	}
	for _, id := range loose {
		if err := writeNode(&sb, h, id, "    "); err != nil {
			return "", err
		}
	}

	for _, id := range order {
		parent, err := h.Parent(id)
		if err != nil {
			return "", err
		}
		if !inScope[parent] {
			continue
		}
		arrow := "-->"
		from, fok := opts.Modules[parent]
		to, tok := opts.Modules[id]
		if fok && tok && from != to {
			arrow = "-.->"
		}
		sb.WriteString(fmt.Sprintf("    %s %s %s\n", sanitizeMermaidID(string(parent)), arrow, sanitizeMermaidID(string(id))))
	}

	if o := opts.Overlay; o != nil {
		sb.WriteString("\n    %% Overlay Styles\n")
		// Force black text (color:#000) for high-contrast on light backgrounds, regardless of theme (Light/Dark)
		sb.WriteString("    classDef touched fill:#e1f5fe,stroke:#01579b,stroke-width:2px,color:#000;\n")
		sb.WriteString("    classDef current fill:#ffeb3b,stroke:#fbc02d,stroke-width:4px,color:#000;\n")

		seen := make(map[string]bool)
		for _, id := range o.Touched {
			safeID := sanitizeMermaidID(string(id))
			if !seen[safeID] && safeID != "" {
				seen[safeID] = true
				sb.WriteString(fmt.Sprintf("    class %s touched;\n", safeID))
			}
		}
		if o.Current != domain.NoBit {
			sb.WriteString(fmt.Sprintf("    class %s current;\n", sanitizeMermaidID(string(o.Current))))
		}
	}

	return sb.String(), nil
}

func writeNode(sb *strings.Builder, h ports.Hierarchy, id domain.BitID, indent string) error {
	name, err := h.Name(id)
	if err != nil {
		return err
	}
	kind, err := h.Kind(id)
	if err != nil {
		return err
	}
	opener, closer := "[", "]"
	switch kind {
	case domain.KindJoint:
		opener, closer = "((", "))"
	case domain.KindControl:
		opener, closer = "[[", "]]"
	case domain.KindGroup:
		opener, closer = "[/", "/]"
	}
	label := strings.ReplaceAll(name, "\"", "'")
	sb.WriteString(fmt.Sprintf("%s%s%s\"%s\"%s\n", indent, sanitizeMermaidID(string(id)), opener, label, closer))
	return nil
}

func sanitizeMermaidID(id string) string {
	s := strings.ReplaceAll(id, ".", "_")
	s = strings.ReplaceAll(s, "-", "_")
	s = strings.ReplaceAll(s, "/", "_")
	s = strings.ReplaceAll(s, "\\", "_")
	s = strings.ReplaceAll(s, "|", "_")
	return s
}
