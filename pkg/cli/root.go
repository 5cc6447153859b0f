package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"taskflow/pkg/api"
	"taskflow/pkg/config"
	"taskflow/pkg/database"
	"taskflow/pkg/session"
	"taskflow/pkg/tasks"
	"taskflow/pkg/translator"
	"taskflow/pkg/ui"
	"taskflow/pkg/utils"
)

// closeLogger flushes the global logger once a command is done with it
var closeLogger = utils.CloseLogger

// rootOptions holds the persistent flags
type rootOptions struct {
	configPath string
	verbose    bool
}

// app is everything a command needs, opened from the configuration
type app struct {
	cfg     config.Config
	styles  config.Styles
	session *session.Session
	client  *api.Client
	db      *sqlx.DB
	loc     *translator.Localizer
	now     func() time.Time
}

// NewRootCmd builds the taskflow command tree
func NewRootCmd(version string) *cobra.Command {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:   "taskflow",
		Short: "TaskFlow - recurring and one-off tasks in your terminal",
		Long: `TaskFlow is a terminal client for the TaskFlow API.

Without a subcommand it starts the interactive task list. The API owns
scheduling; this client shows what is due and sends completions.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTUI(cmd, opts)
		},
	}

	// Global flags
	rootCmd.PersistentFlags().StringVar(&opts.configPath, "config", "", "Path to configuration file")
	rootCmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "Enable verbose logging")

	rootCmd.AddCommand(newLoginCmd(opts))
	rootCmd.AddCommand(newLogoutCmd(opts))
	rootCmd.AddCommand(newRegisterCmd(opts))
	rootCmd.AddCommand(newListCmd(opts))
	rootCmd.AddCommand(newAddCmd(opts))
	rootCmd.AddCommand(newEditCmd(opts))
	rootCmd.AddCommand(newCompleteCmd(opts))
	rootCmd.AddCommand(newToggleCmd(opts))
	rootCmd.AddCommand(newDeleteCmd(opts))
	rootCmd.AddCommand(newExportCmd(opts))
	rootCmd.AddCommand(newImportCmd(opts))
	rootCmd.AddCommand(newCacheCmd(opts))

	return rootCmd
}

// Execute runs the root command
func Execute(version string) error {
	if err := NewRootCmd(version).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return err
	}
	return nil
}

// open loads config and connects every dependency
func (o *rootOptions) open() (_ *app, err error) {
	cfg, styles, err := config.Load(o.configPath)
	if err != nil {
		return nil, fmt.Errorf("error loading config: %w", err)
	}

	if _, err := utils.InitLogger(o.verbose); err != nil {
		return nil, err
	}
	defer func() {
		if err != nil {
			zap.L().Error("open failed", zap.Error(err))
			closeLogger()
		}
	}()

	if err := translator.InitTranslator(); err != nil {
		return nil, fmt.Errorf("error loading translations: %w", err)
	}

	sess, err := session.Load(cfg.SessionFile)
	if err != nil {
		return nil, err
	}

	client, err := api.NewClient(cfg.APIURL, cfg.Timeout, sess)
	if err != nil {
		return nil, err
	}

	db, err := database.ConnectDB(cfg.Cache.Driver, cfg.Cache.DSN)
	if err != nil {
		return nil, fmt.Errorf("error opening cache: %w", err)
	}
	if err := database.EnsureSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("error creating cache schema: %w", err)
	}

	zap.L().Debug("app opened",
		zap.String("api_url", cfg.APIURL),
		zap.String("cache_driver", cfg.Cache.Driver),
		zap.Bool("logged_in", sess.LoggedIn()))

	return &app{
		cfg:     cfg,
		styles:  styles,
		session: sess,
		client:  client,
		db:      db,
		loc:     translator.NewLocalizer(cfg.Language),
		now:     time.Now,
	}, nil
}

func (a *app) Close() {
	if err := a.db.Close(); err != nil {
		zap.L().Warn("closing cache", zap.Error(err))
	}
	closeLogger()
}

func (a *app) today() tasks.Date {
	return tasks.Today(a.now())
}

// context bounds one command's API traffic
func (a *app) context(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	return context.WithTimeout(cmd.Context(), a.cfg.Timeout)
}

// withApp opens the app around fn
func withApp(opts *rootOptions, fn func(a *app) error) error {
	a, err := opts.open()
	if err != nil {
		return err
	}
	defer a.Close()
	return fn(a)
}

func runTUI(cmd *cobra.Command, opts *rootOptions) error {
	return withApp(opts, func(a *app) error {
		m := ui.NewModel(ui.Deps{
			Service: a.client,
			Session: a.session,
			DB:      a.db,
			Config:  a.cfg,
			Styles:  a.styles,
			Now:     a.now,
		})

		p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(cmd.Context()))
		if _, err := p.Run(); err != nil {
			return fmt.Errorf("error running program: %w", err)
		}
		return nil
	})
}
