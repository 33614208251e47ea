package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/oakwood-commons/trainctl/internal/action"
	"github.com/oakwood-commons/trainctl/internal/confirm"
	"github.com/oakwood-commons/trainctl/internal/page"
	"github.com/oakwood-commons/trainctl/internal/record"
)

// errAborted is returned when the user declines a confirmation prompt.
var errAborted = errors.New("aborted")

func newDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <table> <id>",
		Short: "Delete a row after confirmation",
		Long: `Delete a row through the same confirmation flow as the browser.

The row's delete action must be enabled by the table's policy. The table is
refetched after a successful delete.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfirmAction(cmd, action.Delete, args[0], args[1])
		},
	}
}

func newCancelCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "cancel <table> <id>",
		Short: "Cancel a row (mark it with the table's cancelled value)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfirmAction(cmd, action.Cancel, args[0], args[1])
		},
	}
}

func runConfirmAction(cmd *cobra.Command, kind action.Kind, name, id string) error {
	e, err := loadEnv(cmd)
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	p, err := e.loadedPage(ctx, name, page.Options{}, nil)
	if err != nil {
		return err
	}
	row, err := findRow(p, id)
	if err != nil {
		return err
	}

	outcome, err := p.Actions.Activate(ctx, kind, row)
	if errors.Is(err, action.ErrNotOffered) {
		return fmt.Errorf("%s is not available on %s", kind, name)
	}
	if err != nil {
		return fmt.Errorf("%s %s #%s: %w", kind, name, id, err)
	}
	var flow *confirm.Flow
	switch outcome {
	case action.OutcomeConfirmRequested:
		flow = p.Delete
	case action.OutcomeCancelOpened:
		flow = p.Cancel
	case action.OutcomeInert:
		return fmt.Errorf("%s is disabled for %s #%s", kind, name, id)
	default:
		return fmt.Errorf("%s is not available on %s", kind, name)
	}

	out := cmd.OutOrStdout()
	if !runSettings(cmd).AssumeYes {
		ok, err := prompt(cmd.InOrStdin(), out, fmt.Sprintf("%s #%s\n%s", flow.Title(), id, flow.Message()))
		if err != nil {
			flow.Cancel()
			return err
		}
		if !ok {
			flow.Cancel()
			return errAborted
		}
	}
	if err := flow.Confirm(ctx); err != nil {
		flow.Cancel()
		return fmt.Errorf("%s %s #%s: %w", kind, name, id, err)
	}
	if !runSettings(cmd).IsQuiet {
		verb := "Deleted"
		if kind == action.Cancel {
			verb = "Cancelled"
		}
		_, err = fmt.Fprintf(out, "%s %s #%s\n", verb, name, id)
	}
	return err
}

func findRow(p *page.Page, id string) (record.Record, error) {
	row, ok := p.Engine.Find(id)
	if !ok {
		return nil, fmt.Errorf("%s: no row with id %q", p.Name, id)
	}
	return row, nil
}

// prompt asks a yes/no question; only y or yes accepts.
func prompt(in io.Reader, out io.Writer, question string) (bool, error) {
	if _, err := fmt.Fprintf(out, "%s [y/N]: ", question); err != nil {
		return false, err
	}
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return false, err
	}
	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes", nil
}
