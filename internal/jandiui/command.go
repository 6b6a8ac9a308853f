package jandiui

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/blogjandi/jandi/internal/calendar"
	"github.com/blogjandi/jandi/internal/config"
	"github.com/blogjandi/jandi/internal/jandiui/state"
	"github.com/blogjandi/jandi/internal/logging"
	"github.com/blogjandi/jandi/internal/source"
)

// Execute runs the jandi command tree.
func Execute(version string) error {
	return newRootCmd(version).Execute()
}

// rootOptions are the persistent flags shared by every command.
type rootOptions struct {
	configFile string
	theme      string
	sourceKind string
	locale     string
	months     int
	logLevel   string

	cfg *config.Config
	// logFile is closed when the command finishes.
	logFile io.Closer
}

func newRootCmd(version string) *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:           "jandi",
		Short:         "Blog activity calendar",
		Long:          "jandi renders a blog's posting history as a week-aligned activity calendar with per-topic statistics.",
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       version,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.load(cmd, cmd == cmd.Root())
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if opts.logFile != nil {
				return opts.logFile.Close()
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTUI(cmd.Context(), opts)
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&opts.configFile, "config", "", "config file (default: $XDG_CONFIG_HOME/jandi/config.yaml)")
	flags.StringVar(&opts.theme, "theme", "", "theme: default|high-contrast")
	flags.StringVar(&opts.sourceKind, "source", "", "data source: http|sqlite")
	flags.StringVar(&opts.locale, "locale", "", "label locale (ko, en)")
	flags.IntVar(&opts.months, "months", 0, "months of history to show")
	flags.StringVar(&opts.logLevel, "log-level", "", "log level: debug|info|warn|error")

	cmd.AddCommand(
		newGridCmd(opts),
		newStatsCmd(opts),
		newImportCmd(opts),
	)
	return cmd
}

// load reads configuration with flag overrides and sets up logging. The TUI
// owns the terminal, so its logs go to logging.file or nowhere.
func (o *rootOptions) load(cmd *cobra.Command, tui bool) error {
	loader := config.NewLoader()
	if o.configFile != "" {
		loader.SetConfigFile(o.configFile)
	}
	flags := cmd.Flags()
	if flags.Changed("theme") {
		loader.Set("tui.theme", o.theme)
	}
	if flags.Changed("source") {
		loader.Set("source.kind", o.sourceKind)
	}
	if flags.Changed("locale") {
		loader.Set("calendar.locale", o.locale)
	}
	if flags.Changed("months") {
		loader.Set("calendar.months", o.months)
	}
	if flags.Changed("log-level") {
		loader.Set("logging.level", o.logLevel)
	}

	cfg, err := loader.Load()
	if err != nil {
		return err
	}
	o.cfg = cfg

	logCfg := logging.Config{
		Level:        cfg.Logging.Level,
		Format:       cfg.Logging.Format,
		Output:       cmd.ErrOrStderr(),
		EnableCaller: cfg.Logging.EnableCaller,
	}
	switch {
	case cfg.Logging.File != "":
		f, err := logging.OpenFile(cfg.Logging.File)
		if err != nil {
			return err
		}
		o.logFile = f
		logCfg.Output = f
		logCfg.NoColor = true
	case tui:
		logCfg.Output = io.Discard
	}
	logging.Init(logCfg)

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	ctx = logging.WithContext(ctx, logging.Logger.With().Str("command", cmd.CommandPath()).Logger())
	cmd.SetContext(ctx)

	log := logging.ComponentFrom(ctx, "cli")
	log.Debug().
		Str("config", loader.ConfigFileUsed()).
		Str("source", string(cfg.Source.Kind)).
		Msg("configuration loaded")
	return nil
}

func (o *rootOptions) calendarLocale() calendar.Locale {
	return calendar.ParseLocale(o.cfg.Calendar.Locale)
}

// openSource builds the configured data source.
func openSource(ctx context.Context, cfg *config.Config) (source.Source, error) {
	switch cfg.Source.Kind {
	case config.SourceSQLite:
		archive, err := openArchive(ctx, cfg)
		if err != nil {
			return nil, err
		}
		return archive, nil
	case config.SourceHTTP:
		client, err := source.NewHTTPSource(source.HTTPConfig{
			BaseURL: cfg.API.BaseURL,
			Token:   cfg.API.Token,
			Timeout: cfg.API.Timeout,
		})
		if err != nil {
			return nil, err
		}
		return client, nil
	default:
		return nil, fmt.Errorf("unknown source kind %q", cfg.Source.Kind)
	}
}

func openArchive(ctx context.Context, cfg *config.Config) (*source.ArchiveSource, error) {
	userID, err := cfg.UserUUID()
	if err != nil {
		return nil, fmt.Errorf("source.user_id: %w", err)
	}
	return source.NewArchiveSource(ctx, cfg.Source.DBPath, userID, cfg.Calendar.Months)
}

func runTUI(ctx context.Context, opts *rootOptions) error {
	if ctx == nil {
		ctx = context.Background()
	}
	src, err := openSource(ctx, opts.cfg)
	if err != nil {
		return err
	}
	defer src.Close()

	session := state.New(opts.cfg.TUI.StateFile)
	if err := session.Load(); err != nil {
		// A broken state file only loses the restored position.
		log := logging.ComponentFrom(ctx, "tui")
		log.Warn().Err(err).Str("path", session.Path()).Msg("ignoring saved state")
	}

	return Run(Config{
		Source: src,
		Locale: opts.calendarLocale(),
		Months: opts.cfg.Calendar.Months,
		Theme:  opts.cfg.TUI.Theme,
		State:  session,
	})
}

func writeLines(w io.Writer, lines ...string) error {
	_, err := fmt.Fprintln(w, strings.Join(lines, "\n"))
	return err
}
