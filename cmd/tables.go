package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/oakwood-commons/trainctl/internal/formatter"
)

func newTablesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tables",
		Short: "List the configured tables",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			run := runSettings(cmd)
			cfg, err := loadMergedConfig(run.ConfigFile, cmd.Flags())
			if err != nil {
				return err
			}
			headers := []string{"Name", "Title", "Endpoint", "Page size", "Actions"}
			rows := make([][]string, 0, len(cfg.Tables))
			for _, name := range cfg.TableNames() {
				t := cfg.Tables[name]
				rows = append(rows, []string{
					name,
					t.Title,
					t.Endpoint,
					strconv.Itoa(t.EffectivePageSize()),
					strings.Join(t.Actions, ","),
				})
			}
			out := cmd.OutOrStdout()
			_, err = fmt.Fprint(out, formatter.RenderColumnar(headers, rows, formatter.ColumnarOptions{
				NoColor:    run.NoColor || !isTerminal(out),
				TotalWidth: outputWidth(out, 0),
			}))
			return err
		},
	}
}
