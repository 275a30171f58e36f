package dataexport

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"time"

	"github.com/setavenger/blindbit-chainstore/internal/logging"
	"github.com/setavenger/blindbit-chainstore/internal/query"
	_ "modernc.org/sqlite" // driver
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS headers (
  block_hash BLOB PRIMARY KEY,
  wire_size  INTEGER NOT NULL,
  state      TEXT NOT NULL,
  fees       INTEGER NOT NULL
) STRICT, WITHOUT ROWID;

-- confirmed chain: height -> block_hash
CREATE TABLE IF NOT EXISTS chain_index (
  block_height INTEGER PRIMARY KEY,
  block_hash   BLOB NOT NULL REFERENCES headers(block_hash)
) STRICT, WITHOUT ROWID;

-- block -> ordered tx list, 0 = coinbase
CREATE TABLE IF NOT EXISTS block_txs (
  block_hash BLOB NOT NULL REFERENCES headers(block_hash),
  position   INTEGER NOT NULL,
  txid       BLOB NOT NULL,

  PRIMARY KEY (block_hash, position)
) STRICT, WITHOUT ROWID;

CREATE INDEX IF NOT EXISTS ix_block_txs_txid ON block_txs(txid);
`

func OpenDB(path string) (*sql.DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
		return nil, err
	}

	dsn := "file:" + path +
		"?_txlock=immediate" +
		"&_pragma=foreign_keys(ON)" +
		"&_pragma=journal_mode(WAL)" +
		"&_pragma=busy_timeout(5000)"

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}

	// single writer
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if _, err := db.ExecContext(ctx, schemaSQL); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

// BlockBatcher inserts blocks within one sql transaction.
type BlockBatcher struct {
	tx       *sql.Tx
	insHdr   *sql.Stmt
	insChain *sql.Stmt
	insBlkTx *sql.Stmt
}

// BeginBatch opens the transaction and prepares the statements once.
func BeginBatch(ctx context.Context, db *sql.DB) (*BlockBatcher, error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}

	// FK checks run at COMMIT
	if _, err = tx.ExecContext(ctx, "PRAGMA defer_foreign_keys=ON"); err != nil {
		_ = tx.Rollback()
		return nil, err
	}

	insHdr, err := tx.PrepareContext(ctx, "INSERT OR REPLACE INTO headers(block_hash,wire_size,state,fees) VALUES (?,?,?,?)")
	if err != nil {
		_ = tx.Rollback()
		return nil, err
	}
	insChain, err := tx.PrepareContext(ctx, `
		INSERT INTO chain_index(block_height, block_hash) VALUES (?,?)
		ON CONFLICT(block_height) DO UPDATE SET block_hash=excluded.block_hash`)
	if err != nil {
		_ = tx.Rollback()
		return nil, err
	}
	insBlkTx, err := tx.PrepareContext(ctx, "INSERT OR IGNORE INTO block_txs(block_hash,position,txid) VALUES (?,?,?)")
	if err != nil {
		_ = tx.Rollback()
		return nil, err
	}

	return &BlockBatcher{tx, insHdr, insChain, insBlkTx}, nil
}

func (b *BlockBatcher) InsertBlock(ctx context.Context, row ChainRow) error {
	blockHash := row.BlockHash[:]
	if _, err := b.insHdr.ExecContext(ctx, blockHash, row.Wire, row.State, int64(row.Fees)); err != nil {
		return err
	}
	if _, err := b.insChain.ExecContext(ctx, row.Height, blockHash); err != nil {
		return err
	}
	for i, txid := range row.Txids {
		if _, err := b.insBlkTx.ExecContext(ctx, blockHash, i, txid[:]); err != nil {
			return err
		}
	}
	return nil
}

func (b *BlockBatcher) close() {
	_ = b.insHdr.Close()
	_ = b.insChain.Close()
	_ = b.insBlkTx.Close()
}

func (b *BlockBatcher) Commit() error {
	defer b.close()
	return b.tx.Commit()
}

func (b *BlockBatcher) Rollback() error {
	defer b.close()
	return b.tx.Rollback()
}

// ExportSQLite writes the confirmed chain into the sqlite database at path.
func ExportSQLite(ctx context.Context, q *query.Query, path string) error {
	rows, err := CollectConfirmed(q)
	if err != nil {
		logging.L.Err(err).Msg("error collecting confirmed chain")
		return err
	}

	db, err := OpenDB(path)
	if err != nil {
		logging.L.Err(err).Msg("failed to open sqlite")
		return err
	}
	defer db.Close()

	batch, err := BeginBatch(ctx, db)
	if err != nil {
		logging.L.Err(err).Msg("failed to begin batch")
		return err
	}
	for _, row := range rows {
		if err = batch.InsertBlock(ctx, row); err != nil {
			logging.L.Err(err).Uint32("height", row.Height).Msg("failed to insert block")
			_ = batch.Rollback()
			return err
		}
	}
	if err = batch.Commit(); err != nil {
		logging.L.Err(err).Msg("failed to commit batch")
		return err
	}

	logging.L.Info().Int("blocks", len(rows)).Str("path", path).Msg("exported sqlite")
	return nil
}
