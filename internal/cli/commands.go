package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/aretw0/bitrig"
	"github.com/aretw0/bitrig/internal/presentation/graph"
	"github.com/aretw0/bitrig/internal/presentation/tree"
	"github.com/aretw0/bitrig/pkg/domain"
)

// Build builds character in scene, or every character when character is
// empty, and stores the result. Modules built before a failure are stored too.
func (a *App) Build(ctx context.Context, scene, character string, showTree bool) error {
	var (
		eng      *bitrig.Engine
		reports  []*domain.BuildReport
		buildErr error
	)
	opts := a.EngineOptions()
	if a.debug {
		opts = append(opts, bitrig.WithHooks(debugHooks(a.Logger)))
	}
	err := a.Scenes.Update(ctx, scene, func(ctx context.Context, doc *domain.SceneDocument) (*domain.SceneDocument, error) {
		var err error
		if eng, err = bitrig.OpenDocument(doc, opts...); err != nil {
			return nil, err
		}
		if character == "" {
			reports, buildErr = eng.BuildAll(ctx)
		} else {
			var report *domain.BuildReport
			report, buildErr = eng.Build(ctx, character)
			if report != nil {
				reports = append(reports, report)
			}
		}
		if len(reports) == 0 {
			return nil, buildErr
		}
		return eng.Snapshot(scene)
	})
	if err != nil {
		return err
	}
	if len(reports) == 0 {
		printSystemMessage(a.Out, "No characters in scene %q.", scene)
		return nil
	}

	for _, r := range reports {
		tree.Summary(a.Out, r)
		if !showTree {
			continue
		}
		for _, root := range []domain.BitID{r.SkeletonGroup, r.RigGroup} {
			if err := tree.Render(a.Out, eng.Scene(), root); err != nil {
				return err
			}
		}
	}
	return buildErr
}

// Modules prints the character's modules in build order with the bits each owns.
func (a *App) Modules(ctx context.Context, scene, character string) error {
	eng, err := bitrig.Open(ctx, a.Scenes, scene, a.EngineOptions()...)
	if err != nil {
		return err
	}
	sets, err := eng.Modules(character)
	if err != nil {
		return err
	}
	for i, m := range sets {
		label := fmt.Sprintf("%d. %s (priority %d)", i+1, m.Name, m.Priority)
		if m.Implicit {
			label += " root"
		}
		fmt.Fprintln(a.Out, a.Out.String(label).Bold())
		for _, bit := range m.Bits {
			name, err := eng.Scene().Name(bit)
			if err != nil {
				return err
			}
			fmt.Fprintf(a.Out, "   %s\n", name)
		}
	}
	return nil
}

// Graph writes a Mermaid diagram of the character. By default it draws the
// authoring bits grouped by module; built draws the skeleton and rig groups.
func (a *App) Graph(ctx context.Context, scene, character string, built bool) error {
	eng, err := bitrig.Open(ctx, a.Scenes, scene, a.EngineOptions()...)
	if err != nil {
		return err
	}
	ch, err := eng.Character(character)
	if err != nil {
		return err
	}

	var out string
	if built {
		var roots []domain.BitID
		for _, name := range []string{ch.SkeletonGroup, ch.RigGroup} {
			if id, ok := eng.Scene().Exists(name); ok {
				roots = append(roots, id)
			}
		}
		if len(roots) == 0 {
			return fmt.Errorf("character %q has not been built", character)
		}
		out, err = graph.GenerateMermaid(eng.Scene(), roots, graph.Options{})
	} else {
		sets, perr := eng.Modules(character)
		if perr != nil {
			return perr
		}
		modules := make(map[domain.BitID]string)
		for _, m := range sets {
			for _, bit := range m.Bits {
				modules[bit] = m.Name
			}
		}
		out, err = graph.GenerateMermaid(eng.Scene(), []domain.BitID{ch.Bit}, graph.Options{Modules: modules})
	}
	if err != nil {
		return err
	}
	fmt.Fprint(a.Out, out)
	return nil
}

// Validate checks character, or every character when empty, without building.
// It reports each character and returns the failures together.
func (a *App) Validate(ctx context.Context, scene, character string) error {
	eng, err := bitrig.Open(ctx, a.Scenes, scene, a.EngineOptions()...)
	if err != nil {
		return err
	}
	names := []string{character}
	if character == "" {
		chars, err := eng.Characters()
		if err != nil {
			return err
		}
		names = names[:0]
		for _, ch := range chars {
			names = append(names, ch.Name)
		}
	}
	if len(names) == 0 {
		return fmt.Errorf("scene %q has no characters", scene)
	}

	var errs []error
	for _, name := range names {
		if err := eng.Validate(name); err != nil {
			fmt.Fprintf(a.Out, "%s %s\n", a.Out.String("✘").Foreground(a.Out.Color("#ef4444")), name)
			var agg *domain.AggregateError
			if errors.As(err, &agg) {
				for _, e := range agg.Errors {
					fmt.Fprintf(a.Out, "    %v\n", e)
				}
			} else {
				fmt.Fprintf(a.Out, "    %v\n", err)
			}
			errs = append(errs, fmt.Errorf("character %q: %w", name, err))
			continue
		}
		fmt.Fprintf(a.Out, "%s %s\n", a.Out.String("✔").Foreground(a.Out.Color("#22c55e")), name)
	}
	return domain.Join(errs)
}

// List prints the stored scene names.
func (a *App) List(ctx context.Context) error {
	names, err := a.Scenes.List(ctx)
	if err != nil {
		return err
	}
	for _, n := range names {
		fmt.Fprintln(a.Out, n)
	}
	return nil
}
