package dataexport

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/setavenger/blindbit-chainstore/internal/logging"
	"github.com/setavenger/blindbit-chainstore/internal/query"
)

const (
	FormatCSV    = "csv"
	FormatSQLite = "sqlite"
)

// ExportAll writes the confirmed chain in format to a timestamped file in
// dir and returns its path.
func ExportAll(ctx context.Context, q *query.Query, dir, format string) (string, error) {
	logging.L.Info().Str("format", format).Msg("Exporting data")
	timestamp := time.Now().Unix()

	var (
		path string
		err  error
	)
	switch format {
	case FormatCSV:
		path = filepath.Join(dir, fmt.Sprintf("chain-%d.csv", timestamp))
		err = ExportCSV(q, path)
	case FormatSQLite:
		path = filepath.Join(dir, fmt.Sprintf("chain-%d.sqlite", timestamp))
		err = ExportSQLite(ctx, q, path)
	default:
		return "", fmt.Errorf("unknown export format %q", format)
	}
	if err != nil {
		return "", err
	}

	logging.L.Info().Msg("Export Done")
	return path, nil
}
