package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/setavenger/blindbit-chainstore/internal/config"
	"github.com/setavenger/blindbit-chainstore/internal/logging"
	"github.com/setavenger/blindbit-chainstore/internal/query"
	"github.com/setavenger/blindbit-chainstore/internal/store"
	"github.com/spf13/cobra"
)

var (
	Version = "0.0.0"

	// Global flags
	datadir    string
	configFile string

	// Export flags
	exportFormat string
	exportDir    string

	// Sync flags
	follow bool
)

func init() {
	rootCmd.PersistentFlags().StringVar(
		&datadir,
		"datadir",
		config.DefaultBaseDirectory,
		"Set the base directory for the chain store. Default directory is ~/.blindbit-chainstore",
	)
	rootCmd.PersistentFlags().StringVar(
		&configFile,
		"config",
		"",
		"Path to config file (default: datadir/chainstore.toml)",
	)

	exportCmd.Flags().StringVar(
		&exportFormat,
		"format",
		"sqlite",
		"Export format: sqlite or csv",
	)
	exportCmd.Flags().StringVar(
		&exportDir,
		"out",
		"",
		"Directory to export into (default: datadir/export)",
	)

	syncCmd.Flags().BoolVar(
		&follow,
		"follow",
		false,
		"Keep polling the node for new blocks after reaching its tip",
	)

	rootCmd.AddCommand(createCmd, infoCmd, confirmableCmd, importCmd, exportCmd, serveCmd, syncCmd, snapshotCmd, restoreCmd)
}

var rootCmd = &cobra.Command{
	Use:   "chainstore",
	Short: "BlindBit chain store",
	Long: `BlindBit chain store keeps headers, transactions, spends and outputs in
append only regions and decides from the stored facts which blocks can be
confirmed.`,
	Version:      Version,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		config.BaseDirectory = datadir
		config.SetDirectories()

		if err := os.MkdirAll(config.DBPath, 0750); err != nil {
			return fmt.Errorf("error creating db path: %w", err)
		}
		logging.L.Info().Msgf("base directory %s", config.BaseDirectory)

		if configFile == "" {
			configFile = filepath.Join(config.BaseDirectory, config.ConfigFileName)
		}
		return config.LoadConfigs(configFile)
	},
}

// openStore opens an existing store with the configured backend.
func openStore() (*store.Store, *query.Query, error) {
	be, err := config.OpenBackend()
	if err != nil {
		return nil, nil, fmt.Errorf("error opening backend: %w", err)
	}

	s := store.New(config.StoreSettings(), be)
	err = s.Open()
	if errors.Is(err, store.ErrCorrupt) {
		logging.L.Warn().Err(err).Msg("store failed verification, restoring snapshot")
		s = store.New(config.StoreSettings(), be)
		err = restoreStore(s)
	}
	if err != nil {
		_ = be.Close()
		if errors.Is(err, store.ErrNotCreated) {
			return nil, nil, fmt.Errorf("%w, run create first", err)
		}
		return nil, nil, fmt.Errorf("error opening store: %w", err)
	}
	return s, query.New(s, config.ChainParams()), nil
}

// restoreStore restores the unloaded s from the snapshot under BackupPath.
func restoreStore(s *store.Store) error {
	backup, err := config.OpenBackupBackend()
	if err != nil {
		return fmt.Errorf("error opening backup: %w", err)
	}
	defer backup.Close()
	return s.Restore(backup)
}

func closeStore(s *store.Store) {
	if err := s.Close(); err != nil {
		logging.L.Err(err).Msg("store close failed")
		return
	}
	logging.L.Debug().Msg("store closed successfully")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		logging.L.Fatal().Err(err).Msg("command failed")
	}
}
