package main

import (
	"os"

	"focuspulse/internal/config"
	"focuspulse/internal/core/scheduler"
	"focuspulse/internal/feedback"
	"focuspulse/internal/logging"
	"focuspulse/internal/session"
	"focuspulse/internal/storage"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	// Global flags
	configFile string
	verbose    bool

	app *application
)

// application is the wired object graph shared by every subcommand.
type application struct {
	config      *config.Config
	logger      *zap.Logger
	store       *storage.FileStore
	scheduler   *scheduler.Scheduler
	coordinator *session.Coordinator
}

var rootCmd = &cobra.Command{
	Use:   config.AppName,
	Short: "Focus pulses tuned to your energy and distraction",
	Long: `focuspulse plans short focus pulses separated by micro-breaks, with a
longer macro-break after every full set. Plans adapt to the task type, how
energetic and how distracted you feel, and how your last session went.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		app, err = newApplication(configFile, verbose, feedback.NewBell(cmd.ErrOrStderr()))
		return err
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		app.close()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file (default: <user config dir>/focuspulse/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	rootCmd.AddCommand(planCmd, taskCmd, slidersCmd, intentCmd, themeCmd, soundCmd, statsCmd, runCmd, trayCmd)
}

func newApplication(configFile string, verbose bool, notifier feedback.Notifier) (*application, error) {
	v, err := config.NewViper(configFile)
	if err != nil {
		return nil, err
	}
	if verbose {
		v.Set("log.level", "debug")
	}
	cfg, err := config.Load(v)
	if err != nil {
		return nil, err
	}

	logger, err := logging.New(cfg.Log.Level, cfg.Log.Development)
	if err != nil {
		return nil, err
	}

	dataDir, err := cfg.ResolveDataDir()
	if err != nil {
		return nil, err
	}
	store, err := storage.NewFileStore(dataDir, config.AppName, logger)
	if err != nil {
		return nil, err
	}

	sched := scheduler.New(scheduler.Config{
		TickInterval: cfg.TickInterval(),
		Logger:       logger,
	})
	coordinator := session.New(session.Options{
		Store:     store,
		Scheduler: sched,
		Notifier:  feedback.Multi{notifier, feedback.NewLog(logger)},
		Logger:    logger,
	})

	logger.Debug("application ready", zap.String("data_dir", dataDir))
	return &application{
		config:      cfg,
		logger:      logger,
		store:       store,
		scheduler:   sched,
		coordinator: coordinator,
	}, nil
}

func (a *application) close() {
	if a == nil {
		return
	}
	a.scheduler.Close()
	a.coordinator.Close()
	_ = a.logger.Sync()
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
