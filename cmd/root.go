package cmd

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/abhisek/irtcat/internal/config"
	"github.com/abhisek/irtcat/internal/irt"
	"github.com/abhisek/irtcat/internal/logging"
	"github.com/abhisek/irtcat/internal/metrics"
	"github.com/abhisek/irtcat/internal/scoring"
	"github.com/abhisek/irtcat/internal/store"
)

var rootCmd = &cobra.Command{
	Use:   "irtcat",
	Short: "Adaptive test scoring with the 2PL IRT model",
	Long: "irtcat estimates latent traits from response patterns and picks the most\n" +
		"informative next item for computerized adaptive tests.",
	SilenceUsage: true,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "Path to YAML config file (default ~/.config/irtcat/config.yaml)")
	rootCmd.PersistentFlags().String("db", "", "SQLite path or postgres:// DSN for the event log (overrides store.dsn)")
	rootCmd.PersistentFlags().String("log-level", "", "Log level: debug, info, warn, error (overrides log.level)")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(estimateCmd)
	rootCmd.AddCommand(selectCmd)
	rootCmd.AddCommand(curveCmd)
	rootCmd.AddCommand(simulateCmd)
	rootCmd.AddCommand(takeCmd)
	rootCmd.AddCommand(eventsCmd)
	rootCmd.AddCommand(versionCmd)
}

// loadConfig reads the config file and environment, then applies the
// persistent flag overrides.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	if dsn, _ := cmd.Flags().GetString("db"); dsn != "" {
		cfg.Store.DSN = dsn
		cfg.Store.Enabled = true
	}
	if lvl, _ := cmd.Flags().GetString("log-level"); lvl != "" {
		cfg.Log.Level = lvl
		if err := cfg.Log.Validate(); err != nil {
			return nil, fmt.Errorf("invalid --log-level: %w", err)
		}
	}
	return cfg, nil
}

// resolveDSN returns the configured DSN, falling back to the default
// SQLite path.
func resolveDSN(cfg *config.Config) (string, error) {
	if cfg.Store.DSN != "" {
		if !store.IsPostgres(cfg.Store.DSN) {
			return cfg.Store.DSN, store.EnsureDir(cfg.Store.DSN)
		}
		return cfg.Store.DSN, nil
	}
	return store.DefaultDBPath()
}

// openStore opens the event log. It returns a nil store when recording is
// disabled.
func openStore(cfg *config.Config) (*store.Store, error) {
	if !cfg.Store.Enabled {
		return nil, nil
	}
	dsn, err := resolveDSN(cfg)
	if err != nil {
		return nil, fmt.Errorf("resolve database path: %w", err)
	}
	st, err := store.Open(dsn)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	return st, nil
}

// deps bundles what the scoring commands share.
type deps struct {
	cfg       *config.Config
	logger    *zap.Logger
	store     *store.Store
	estimator *irt.Estimator
	service   scoring.Service
}

func (d *deps) Close() {
	if d.store != nil {
		if err := d.store.Close(); err != nil {
			d.logger.Warn("close store", zap.Error(err))
		}
	}
	_ = d.logger.Sync()
}

// buildDeps wires config, logging, the event log and the scoring service.
// With record set and the store enabled, the service appends every call to
// the event log. Metrics go to reg when it is non-nil.
func buildDeps(cmd *cobra.Command, reg prometheus.Registerer, record bool) (*deps, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	logger, err := logging.New(cfg.Log)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	est, err := irt.NewEstimator(cfg.Estimator)
	if err != nil {
		return nil, fmt.Errorf("invalid estimator policy: %w", err)
	}

	var st *store.Store
	if record {
		if st, err = openStore(cfg); err != nil {
			return nil, err
		}
	}

	svc := scoring.New(est, irt.NewSelector(irt.EntropySource()))
	if st != nil {
		svc = scoring.WithRecording(svc, st.EventRepo(), logger)
	}
	if reg != nil {
		svc = scoring.WithMetrics(svc, metrics.New(reg))
	}

	return &deps{
		cfg:       cfg,
		logger:    logger,
		store:     st,
		estimator: est,
		service:   svc,
	}, nil
}
