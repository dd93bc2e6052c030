package app

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/dshills/imstr/internal/imstr"
	"github.com/dshills/imstr/internal/jsonview"
	"github.com/dshills/imstr/internal/luabind"
	"github.com/dshills/imstr/internal/scan"
	"github.com/dshills/imstr/internal/storage"
)

// cancelCheckLines is how many lines are processed between context checks.
const cancelCheckLines = 1024

func (a *Application) processFile(ctx context.Context, name string) error {
	if a.opts.Mode == ModeLua {
		return a.runLua(name)
	}
	switch a.cfg.Strategy {
	case storage.StrategyLocal:
		return process[storage.Local](ctx, a, name)
	case storage.StrategyCloned:
		return process[storage.Cloned](ctx, a, name)
	default:
		return process[storage.Atomic](ctx, a, name)
	}
}

// load maps name, or reads standard input for "-".
func load[H storage.Handle[H]](a *Application, name string) (*imstr.String[H], error) {
	if name == "-" {
		return imstr.FromReader[H](a.opts.Stdin)
	}
	return imstr.FromFile[H](name)
}

func process[H storage.Handle[H]](ctx context.Context, a *Application, name string) error {
	doc, err := load[H](a, name)
	if err != nil {
		return err
	}
	defer doc.Release()

	switch a.opts.Mode {
	case ModeLines:
		return writeLines(ctx, a, doc)
	case ModeFields:
		return writeFields(ctx, a, name, doc)
	case ModeJSON:
		return writeJSON(a, name, doc)
	default:
		return writeStats(a, name, doc)
	}
}

func writeLines[H storage.Handle[H]](ctx context.Context, a *Application, doc *imstr.String[H]) error {
	it := doc.Lines()
	for it.Next() {
		if it.Line()%cancelCheckLines == 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
		}
		fmt.Fprintf(a.out, "%6d  ", it.Line()+1)
		line := it.Value()
		writeClipped(a.out, line, a.width-8)
		line.Release()
		a.out.WriteByte('\n')
	}
	return nil
}

// writeClipped writes s cut to width display columns, marking a cut with an
// ellipsis. A width <= 0 writes s whole.
func writeClipped[H storage.Handle[H]](w *bufio.Writer, s *imstr.String[H], width int) {
	if width <= 0 || s.Width() <= width {
		w.WriteString(s.AsText())
		return
	}
	used := 0
	g := s.Graphemes()
	for g.Next() {
		if used+g.Width() > width-1 {
			break
		}
		used += g.Width()
		w.WriteString(g.Text())
	}
	w.WriteString("…")
}

func writeFields[H storage.Handle[H]](ctx context.Context, a *Application, name string, doc *imstr.String[H]) error {
	opts := scan.FieldOptions{
		Delimiter: a.cfg.Split.Delimiter,
		TrimSpace: a.cfg.Split.TrimSpace,
	}

	it := doc.Lines()
	for it.Next() {
		if it.Line()%cancelCheckLines == 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
		}

		line := it.Value()
		fields, err := scan.ParseFields(line, opts)
		line.Release()
		if err != nil {
			var syn *scan.SyntaxError
			if errors.As(err, &syn) {
				return &InputError{Path: name, Line: it.Line() + 1, Column: syn.Point.Column + 1, Msg: syn.Msg, Err: err}
			}
			return err
		}
		writeRecord(a, fields)
		scan.ReleaseFields(fields)
	}
	return nil
}

// writeRecord writes the value of the selected key, or the whole record as
// tab-separated key=value pairs when no key is selected.
func writeRecord[H storage.Handle[H]](a *Application, fields []scan.Field[H]) {
	if len(fields) == 0 {
		return
	}
	if a.opts.Path != "" {
		for _, f := range fields {
			if f.Key.EqualString(a.opts.Path) {
				a.out.WriteString(f.Value.AsText())
				a.out.WriteByte('\n')
				return
			}
		}
		return
	}
	for i, f := range fields {
		if i > 0 {
			a.out.WriteByte('\t')
		}
		a.out.WriteString(f.Key.AsText())
		a.out.WriteByte('=')
		a.out.WriteString(f.Value.AsText())
	}
	a.out.WriteByte('\n')
}

func writeJSON[H storage.Handle[H]](a *Application, name string, doc *imstr.String[H]) error {
	if !jsonview.Valid(doc) {
		return &InputError{Path: name, Msg: "invalid JSON", Err: jsonview.ErrInvalidJSON}
	}
	path := a.opts.Path

	switch {
	case path == "":
		doc.WriteTo(a.out)
	case a.opts.Delete:
		if err := jsonview.Delete(doc, path); err != nil {
			return err
		}
		doc.WriteTo(a.out)
	case a.opts.Set != "":
		if err := jsonview.SetRaw(doc, path, a.opts.Set); err != nil {
			return err
		}
		doc.WriteTo(a.out)
	default:
		v, ok := jsonview.GetString(doc, path)
		if !ok {
			v, ok = jsonview.Get(doc, path)
		}
		if !ok {
			return fmt.Errorf("%s: %w: %s", name, ErrPathNotFound, path)
		}
		v.WriteTo(a.out)
		v.Release()
	}
	a.out.WriteByte('\n')
	return nil
}

func writeStats[H storage.Handle[H]](a *Application, name string, doc *imstr.String[H]) error {
	sum := doc.Summary()
	m := storage.ReadMetrics()
	st := imstr.ReadStats()

	row := func(label string, format string, args ...any) {
		fmt.Fprintf(a.out, "%-16s"+format+"\n", append([]any{label + ":"}, args...)...)
	}
	row("file", "%s", name)
	row("strategy", "%s", a.cfg.Strategy)
	row("bytes", "%d", sum.Bytes)
	row("runes", "%d", sum.Runes)
	row("graphemes", "%d", doc.GraphemeCount())
	row("utf16 units", "%d", sum.UTF16Units)
	row("lines", "%d", sum.Lines)
	row("longest line", "%d", sum.LongestLine)
	row("ascii", "%t", sum.Flags&imstr.FlagASCII != 0)
	row("hash", "%016x", doc.Hash())
	row("buffers", "%d allocated, %d released, %d live", m.Allocs, m.Releases, m.LiveBuffers)
	row("pool hit rate", "%.2f", m.PoolHitRate())
	row("writes", "%d in place, %d forked", st.InPlace, st.Forks)
	row("views", "%d clones, %d slices", st.Clones, st.Slices)
	return nil
}

// runLua runs the script with the input bound to the global "input" and
// writes the global "output" if the script sets one. Scripts always use
// the Local strategy.
func (a *Application) runLua(name string) error {
	script, err := os.ReadFile(a.opts.Script)
	if err != nil {
		return fmt.Errorf("reading script %s: %w", a.opts.Script, err)
	}
	doc, err := load[storage.Local](a, name)
	if err != nil {
		return err
	}
	defer doc.Release()

	state := luabind.NewState(
		luabind.WithInstructionLimit(a.cfg.Lua.InstructionLimit),
		luabind.WithExecutionTimeout(a.cfg.Lua.Timeout.Duration),
		luabind.WithLogger(a.logger.WithComponent("lua")),
	)
	defer state.Close()

	state.SetString("input", doc)
	if err := state.DoString(string(script)); err != nil {
		return fmt.Errorf("running %s: %w", a.opts.Script, err)
	}
	if out, ok := state.GetString("output"); ok {
		out.WriteTo(a.out)
		if !out.HasSuffix("\n") {
			a.out.WriteByte('\n')
		}
		out.Release()
	}
	return nil
}
