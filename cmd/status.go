package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/oakwood-commons/trainctl/internal/page"
	"github.com/oakwood-commons/trainctl/internal/status"
)

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status <table> <id> <value>",
		Short: "Change a row's status, role or permission",
		Long: `Change the editable status cell of a row.

For tables with a plain status the value is written directly. Tables with a
confirmed status (e.g. plans) ask for confirmation first. For permission
tables (users) <value> names a permission, which is toggled.

Setting the current value does nothing. Rows holding the table's protected
value (e.g. Admin) cannot be changed.`,
		Example: `  trainctl status needs 1 Soumis
  trainctl status plans 2 "Validé" --yes
  trainctl status users 3 needs.write`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStatus(cmd, args[0], args[1], args[2])
		},
	}
}

func runStatus(cmd *cobra.Command, name, id, value string) error {
	e, err := loadEnv(cmd)
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	p, err := e.loadedPage(ctx, name, page.Options{}, nil)
	if err != nil {
		return err
	}
	ed := p.Status
	if ed == nil {
		return fmt.Errorf("%s has no editable status", name)
	}
	row, err := findRow(p, id)
	if err != nil {
		return err
	}

	if err := ed.Open(row); err != nil {
		if errors.Is(err, status.ErrSentinel) {
			return errors.New(ed.Notice())
		}
		return err
	}
	out := cmd.OutOrStdout()
	quiet := runSettings(cmd).IsQuiet

	if ed.Variant() == status.Permission {
		if err := ed.Toggle(ctx, value); err != nil {
			ed.Cancel()
			return err
		}
		fresh, _ := ed.Row()
		ed.Cancel()
		if !quiet {
			state := "revoked"
			if fresh != nil && ed.Granted(fresh, value) {
				state = "granted"
			}
			_, err = fmt.Fprintf(out, "%s #%s: %s %s\n", name, id, value, state)
		}
		return err
	}

	previous := ed.Value(row)
	if err := ed.Select(ctx, value); err != nil {
		ed.Cancel()
		return err
	}
	if ed.Phase() == status.ConfirmOpen {
		if !runSettings(cmd).AssumeYes {
			ok, err := prompt(cmd.InOrStdin(), out, fmt.Sprintf("Change %s of %s #%s from %q to %q?", ed.Field(), name, id, previous, value))
			if err != nil || !ok {
				ed.Cancel()
				if err != nil {
					return err
				}
				return errAborted
			}
		}
		if err := ed.ConfirmChange(ctx); err != nil {
			return err
		}
	}
	if quiet {
		return nil
	}
	if previous == value {
		_, err = fmt.Fprintf(out, "%s #%s: %s is already %q\n", name, id, ed.Field(), value)
	} else {
		_, err = fmt.Fprintf(out, "%s #%s: %s %q -> %q\n", name, id, ed.Field(), previous, value)
	}
	return err
}
