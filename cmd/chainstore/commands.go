package main

import (
	"bufio"
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/setavenger/blindbit-chainstore/internal/config"
	"github.com/setavenger/blindbit-chainstore/internal/dataexport"
	"github.com/setavenger/blindbit-chainstore/internal/indexer"
	"github.com/setavenger/blindbit-chainstore/internal/logging"
	"github.com/setavenger/blindbit-chainstore/internal/query"
	"github.com/setavenger/blindbit-chainstore/internal/rpc"
	"github.com/setavenger/blindbit-chainstore/internal/server"
	"github.com/setavenger/blindbit-chainstore/internal/store"
	"github.com/spf13/cobra"
)

var createCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a new store seeded with the chain's genesis block",
	RunE: func(cmd *cobra.Command, args []string) error {
		be, err := config.OpenBackend()
		if err != nil {
			return fmt.Errorf("error opening backend: %w", err)
		}

		s := store.New(config.StoreSettings(), be)
		if err = s.Create(); err != nil {
			_ = be.Close()
			return fmt.Errorf("error creating store: %w", err)
		}
		defer closeStore(s)

		params := config.ChainParams()
		if !query.New(s, params).Initialize(params.GenesisBlock) {
			return fmt.Errorf("failed to initialize store with %s genesis", params.Name)
		}

		fmt.Printf("created store %s on %s\n", s.ID, params.Name)
		return nil
	},
}

var infoCmd = &cobra.Command{
	Use:   "info",
	Short: "Show chain tops and table sizes",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, q, err := openStore()
		if err != nil {
			return err
		}
		defer closeStore(s)

		candidate, _ := q.GetTopCandidate()
		confirmed, _ := q.GetTopConfirmed()
		fork, _ := q.GetFork()

		fmt.Printf("store:     %s\n", s.ID)
		fmt.Printf("network:   %s\n", config.ChainToString(config.Chain))
		fmt.Printf("candidate: %d\n", candidate)
		fmt.Printf("confirmed: %d\n", confirmed)
		fmt.Printf("fork:      %d\n", fork)
		fmt.Printf("headers:   %d\n", s.Header.Count())
		fmt.Printf("txs:       %d\n", s.Tx.Count())
		fmt.Printf("spends:    %d\n", s.Spend.Count())
		if fault := s.Fault(); fault != nil {
			fmt.Printf("fault:     %v\n", fault)
		}
		fmt.Println("regions (bytes):")
		for name, size := range s.Sizes() {
			fmt.Printf("  %-16s %d\n", name, size)
		}
		return nil
	},
}

var confirmableCmd = &cobra.Command{
	Use:   "confirmable <block-hash>",
	Short: "Check whether an archived block can be confirmed",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		hash, err := chainhash.NewHashFromStr(args[0])
		if err != nil {
			return fmt.Errorf("invalid block hash: %w", err)
		}

		s, q, err := openStore()
		if err != nil {
			return err
		}
		defer closeStore(s)

		header := q.ToHeader(hash)
		if header.IsTerminal() {
			return fmt.Errorf("block %s not found", hash)
		}
		fmt.Printf("%s: %s\n", hash, q.BlockConfirmable(header))
		return nil
	},
}

var importCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Organize hex encoded blocks, one per line, onto the confirmed chain",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		file, err := os.Open(args[0])
		if err != nil {
			return err
		}
		defer file.Close()

		s, q, err := openStore()
		if err != nil {
			return err
		}
		defer closeStore(s)

		scanner := bufio.NewScanner(file)
		scanner.Buffer(make([]byte, 0, 1<<20), 1<<28)
		for line := 1; scanner.Scan(); line++ {
			raw, err := hex.DecodeString(strings.TrimSpace(scanner.Text()))
			if err != nil {
				return fmt.Errorf("line %d: %w", line, err)
			}
			block, err := btcutil.NewBlockFromBytes(raw)
			if err != nil {
				return fmt.Errorf("line %d: %w", line, err)
			}

			_, code := q.Organize(block.MsgBlock())
			if code != query.Success {
				logging.L.Warn().
					Int("line", line).
					Str("block", block.Hash().String()).
					Str("code", code.String()).
					Msg("block not organized")
			}
		}
		if err = scanner.Err(); err != nil {
			return err
		}
		return s.Flush()
	},
}

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the confirmed chain",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, q, err := openStore()
		if err != nil {
			return err
		}
		defer closeStore(s)

		dir := exportDir
		if dir == "" {
			dir = config.ExportPath
		}
		path, err := dataexport.ExportAll(cmd.Context(), q, dir, exportFormat)
		if err != nil {
			return err
		}
		fmt.Println(path)
		return nil
	},
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the store over http",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, q, err := openStore()
		if err != nil {
			return err
		}
		defer closeStore(s)

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		errChan := make(chan error, 1)
		go func() {
			errChan <- server.RunServer(&server.ApiHandler{Query: q})
		}()

		select {
		case <-ctx.Done():
			logging.L.Info().Msg("Program interrupted")
			return nil
		case err := <-errChan:
			return err
		}
	},
}

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Organize blocks from a node until the store reaches its tip",
	RunE: func(cmd *cobra.Command, args []string) error {
		user, pass, err := config.RpcCredentials()
		if err != nil {
			return err
		}

		s, q, err := openStore()
		if err != nil {
			return err
		}
		defer closeStore(s)

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		client := rpc.NewClient(config.RpcEndpoint, user, pass)
		syncer := indexer.NewSyncer(q, client, config.SyncBatchSize, config.MaxParallelRequests)

		if follow {
			err = syncer.Run(ctx, config.SyncInterval)
		} else {
			var n int
			n, err = syncer.Sync(ctx)
			logging.L.Info().Int("blocks", n).Msg("sync finished")
		}
		if errors.Is(err, context.Canceled) {
			logging.L.Info().Msg("Program interrupted")
			err = nil
		}
		if err != nil {
			return err
		}
		return s.Flush()
	},
}

var snapshotCmd = &cobra.Command{
	Use:   "snapshot",
	Short: "Copy the store into the backup directory",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, _, err := openStore()
		if err != nil {
			return err
		}
		defer closeStore(s)

		if err = os.MkdirAll(config.BackupPath, 0750); err != nil {
			return fmt.Errorf("error creating backup path: %w", err)
		}
		backup, err := config.OpenBackupBackend()
		if err != nil {
			return fmt.Errorf("error opening backup: %w", err)
		}
		defer backup.Close()

		if err = s.Snapshot(backup); err != nil {
			return fmt.Errorf("snapshot failed: %w", err)
		}
		fmt.Printf("snapshot written to %s\n", config.BackupPath)
		return nil
	},
}

var restoreCmd = &cobra.Command{
	Use:   "restore",
	Short: "Replace the store with the snapshot in the backup directory",
	RunE: func(cmd *cobra.Command, args []string) error {
		be, err := config.OpenBackend()
		if err != nil {
			return fmt.Errorf("error opening backend: %w", err)
		}

		s := store.New(config.StoreSettings(), be)
		if err = restoreStore(s); err != nil {
			_ = be.Close()
			return fmt.Errorf("restore failed: %w", err)
		}
		defer closeStore(s)

		confirmed, _ := query.New(s, config.ChainParams()).GetTopConfirmed()
		fmt.Printf("restored store %s at height %d\n", s.ID, confirmed)
		return nil
	},
}
