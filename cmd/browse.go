package cmd

import (
	"github.com/spf13/cobra"

	"github.com/oakwood-commons/trainctl/internal/page"
	"github.com/oakwood-commons/trainctl/internal/ui"
	"github.com/oakwood-commons/trainctl/pkg/logger"
)

func newBrowseCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "browse <table>",
		Short: "Browse a table interactively",
		Long: `Open a table in the terminal browser.

Keys: ↑/↓ move, n/p next/previous page, </> move column focus, s sort by the
focused column, c choose columns, v/e/d/x view/edit/delete/cancel the selected
row, t change its status, y copy its id, r refresh, q quit.

Logs are discarded unless --log-file is given.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := args[0]
			e, err := loadEnv(cmd)
			if err != nil {
				return err
			}
			if _, err := e.cfg.Table(name); err != nil {
				return err
			}
			lgr := e.log.WithValues(logger.TableKey, name)
			return ui.Run(cmd.Context(), func(opts page.Options) (*page.Page, error) {
				return e.page(name, opts, nil)
			}, ui.Options{
				WebURL:  e.cfg.API.WebURL,
				NoColor: runSettings(cmd).NoColor,
				Logger:  lgr,
			})
		},
	}
}
