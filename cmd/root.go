// Package cmd implements the trainctl command line.
package cmd

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/go-logr/logr"
	"github.com/spf13/cobra"

	"github.com/oakwood-commons/trainctl/internal/api"
	"github.com/oakwood-commons/trainctl/internal/config"
	"github.com/oakwood-commons/trainctl/internal/page"
	"github.com/oakwood-commons/trainctl/internal/sorter"
	"github.com/oakwood-commons/trainctl/pkg/logger"
	"github.com/oakwood-commons/trainctl/pkg/settings"
)

const rootLong = `trainctl browses and manages the tables of a training-management API:
training needs, campaigns, annual plans, groups, sessions, invoices and users.

Tables, columns, actions and the rules that disable them are described in the
configuration (see 'trainctl config'). Override it with --config-file, a file at
$XDG_CONFIG_HOME/trainctl/config.yaml, or TRAINCTL_* environment variables.`

const rootExample = `  trainctl list needs --sort Date --order desc
  trainctl list invoices -o json
  trainctl browse needs
  trainctl delete needs 12
  trainctl status plans 2 "Validé" --yes
  trainctl demo serve --addr :8080`

// Execute runs the root command with run as the invocation settings. The
// caller closes run after flushing the logger.
func Execute(run *settings.Run) error {
	return newRootCmd(run).Execute()
}

func newRootCmd(run *settings.Run) *cobra.Command {
	var debug bool

	root := &cobra.Command{
		Use:           settings.CliBinaryName,
		Short:         "Browse and manage training-management tables",
		Long:          rootLong,
		Example:       rootExample,
		Version:       cliVersionString(),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			// Map CLI debug flag to log level: debug => zap.DebugLevel (-1), else zap.InfoLevel (0)
			if debug {
				run.MinLogLevel = -1
			}
			sink, err := logSink(cmd, run)
			if err != nil {
				return err
			}
			lgr := logger.GetWithSink(run.MinLogLevel, sink)
			lgr = logger.WithValues(lgr, logger.RootCommandKey, settings.CliBinaryName, logger.SubCommandKey, cmd.Name())

			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			ctx = logger.WithLogger(ctx, lgr)
			cmd.SetContext(settings.IntoContext(ctx, run))
			return nil
		},
	}
	root.SetVersionTemplate("{{.Version}}\n")

	pf := root.PersistentFlags()
	pf.StringVar(&run.ConfigFile, "config-file", "", "path to a YAML config file")
	pf.String("api-url", "", "API base URL (overrides api.base_url)")
	pf.String("locale", "", "collation locale for text sorting, e.g. fr or en")
	pf.BoolVar(&debug, "debug", false, "enable debug logging")
	pf.BoolVar(&run.NoColor, "no-color", false, "disable color output")
	pf.StringVar(&run.LogFile, "log-file", "", "write logs to this file instead of stderr")
	pf.BoolVarP(&run.IsQuiet, "quiet", "q", false, "suppress informational output")
	pf.BoolVarP(&run.AssumeYes, "yes", "y", false, "answer yes to confirmation prompts")

	root.AddCommand(
		newListCmd(),
		newTablesCmd(),
		newDeleteCmd(),
		newCancelCmd(),
		newStatusCmd(),
		newBrowseCmd(),
		newConfigCmd(),
		newDemoCmd(),
		newVersionCmd(),
	)
	return root
}

// logSink picks the log destination. The browser owns the terminal, so it
// logs nowhere unless --log-file is given.
func logSink(cmd *cobra.Command, run *settings.Run) (io.Writer, error) {
	if run.LogFile != "" {
		f, err := os.OpenFile(run.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
		if err != nil {
			return nil, fmt.Errorf("open log file: %w", err)
		}
		run.AttachLogFile(f)
		return f, nil
	}
	if cmd.Name() == "browse" {
		return io.Discard, nil
	}
	return cmd.ErrOrStderr(), nil
}

func runSettings(cmd *cobra.Command) *settings.Run {
	return settings.Current(cmd.Context())
}

// env is what every table command needs: merged config, API client and collator.
type env struct {
	cfg    config.Config
	client *api.Client
	sorter *sorter.Sorter
	log    logr.Logger
}

func loadEnv(cmd *cobra.Command) (*env, error) {
	run := runSettings(cmd)
	cfg, err := loadMergedConfig(run.ConfigFile, cmd.Flags())
	if err != nil {
		return nil, err
	}
	srt, err := sorter.NewForLocale(cfg.Locale)
	if err != nil {
		return nil, err
	}
	opts := []api.Option{api.WithTimeout(cfg.API.Timeout())}
	if cfg.API.Token != "" {
		opts = append(opts, api.WithToken(cfg.API.Token))
	}
	return &env{
		cfg:    cfg,
		client: api.NewClient(cfg.API.BaseURL, opts...),
		sorter: srt,
		log:    *logger.FromContext(cmd.Context()),
	}, nil
}

// table resolves a table by name, letting edit adjust it before the page is built.
func (e *env) page(name string, opts page.Options, edit func(*config.Table)) (*page.Page, error) {
	tbl, err := e.cfg.Table(name)
	if err != nil {
		return nil, err
	}
	if edit != nil {
		edit(&tbl)
	}
	opts.Sorter = e.sorter
	if opts.Logger.GetSink() == nil {
		opts.Logger = e.log.WithValues(logger.TableKey, name)
	}
	return page.Build(name, tbl, e.client, opts)
}

// loadedPage builds and fetches a page.
func (e *env) loadedPage(ctx context.Context, name string, opts page.Options, edit func(*config.Table)) (*page.Page, error) {
	p, err := e.page(name, opts, edit)
	if err != nil {
		return nil, err
	}
	if err := p.Load(ctx); err != nil {
		return nil, fmt.Errorf("load %s: %w", name, err)
	}
	return p, nil
}

func cliVersionString() string {
	v := settings.VersionInformation
	return fmt.Sprintf("%s %s (commit %s, built %s)", settings.CliBinaryName, v.BuildVersion, v.Commit, v.BuildTime)
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print trainctl version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, err := fmt.Fprintln(cmd.OutOrStdout(), cliVersionString())
			return err
		},
	}
}
