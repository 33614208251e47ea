package ui

import (
	"context"
	"errors"
	"os"

	tea "charm.land/bubbletea/v2"
	"golang.org/x/term"
)

// Run starts the browser and blocks until the user quits or ctx is done.
// Extra ProgramOptions (e.g., custom IO) are passed to tea.NewProgram.
func Run(ctx context.Context, build PageBuilder, opts Options, progOpts ...tea.ProgramOption) error {
	m, err := NewModel(ctx, build, opts)
	if err != nil {
		return err
	}

	all := []tea.ProgramOption{tea.WithContext(ctx)}
	if w, h, err := term.GetSize(int(os.Stdout.Fd())); err == nil && w > 0 && h > 0 {
		all = append(all, tea.WithWindowSize(w, h))
	}
	all = append(all, progOpts...)

	_, err = tea.NewProgram(m, all...).Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return ctx.Err()
	}
	return err
}
