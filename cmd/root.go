package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/abhisek/calcmaster/internal/config"
	"github.com/abhisek/calcmaster/internal/logging"
	"github.com/abhisek/calcmaster/internal/store"
)

var rootCmd = &cobra.Command{
	Use:   "calcmaster",
	Short: "Calculus multiple-choice practice",
	Long: "CalcMaster generates multiple-choice calculus questions on derivatives, integrals,\n" +
		"limits and critical points, in the terminal or over an HTTP API.",
	SilenceUsage: true,
	RunE:         runPractice,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().String("db", "", "Path to SQLite database file (overrides CALCMASTER_DB env var)")
	rootCmd.PersistentFlags().String("config", "", "Path to YAML config file (overrides CALCMASTER_CONFIG env var)")
	addUserFlag(rootCmd)

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(practiceCmd)
	rootCmd.AddCommand(previewCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(resetCmd)
	rootCmd.AddCommand(versionCmd)
}

// loadConfig reads the config file and environment, then applies --db,
// which takes priority over both.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return cfg, err
	}
	if p, _ := cmd.Flags().GetString("db"); p != "" {
		cfg.DBPath = p
	}
	return cfg, nil
}

func openStore(cfg config.Config) (*store.Store, string, error) {
	dbPath, err := cfg.DatabasePath()
	if err != nil {
		return nil, "", fmt.Errorf("resolve DB path: %w", err)
	}
	st, err := store.Open(dbPath)
	if err != nil {
		return nil, "", fmt.Errorf("open store: %w", err)
	}
	return st, dbPath, nil
}

// fileLogger logs next to the database, for commands that own the
// terminal.
func fileLogger(cfg config.Config, dbPath string) (*logging.Logger, error) {
	return logging.New(cfg.LogMode, filepath.Join(filepath.Dir(dbPath), "calcmaster.log"))
}
