package cmd

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

func newConfigCmd() *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Print the merged configuration",
		Long: `Print the configuration after merging the embedded defaults, the user
config file, TRAINCTL_* environment variables and flags. The API token is masked.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadMergedConfig(runSettings(cmd).ConfigFile, cmd.Flags())
			if err != nil {
				return err
			}
			cfg = redacted(cfg)
			out := cmd.OutOrStdout()
			switch strings.ToLower(output) {
			case "yaml", "yml", "":
				enc := yaml.NewEncoder(out)
				enc.SetIndent(2)
				if err := enc.Encode(cfg); err != nil {
					return err
				}
				return enc.Close()
			case "json":
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(cfg)
			}
			return fmt.Errorf("unsupported output format %q (use yaml|json)", output)
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "yaml", "output format: yaml|json")
	return cmd
}
