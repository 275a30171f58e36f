package dataexport

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"strconv"

	"github.com/setavenger/blindbit-chainstore/internal/logging"
	"github.com/setavenger/blindbit-chainstore/internal/query"
)

func writeToCSV(path string, records [][]string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
		return err
	}
	logging.L.Info().Msgf("Writing to %s", path)
	file, err := os.Create(path)
	if err != nil {
		logging.L.Err(err).Msg("failed creating file")
		return err
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	if err = writer.WriteAll(records); err != nil {
		return err
	}
	return file.Sync()
}

// ExportCSV writes one line per confirmed block.
func ExportCSV(q *query.Query, path string) error {
	rows, err := CollectConfirmed(q)
	if err != nil {
		logging.L.Err(err).Msg("error collecting confirmed chain")
		return err
	}
	return writeToCSV(path, convertRowsToRecords(rows))
}

func convertRowsToRecords(rows []ChainRow) [][]string {
	records := [][]string{{
		"blockHeight",
		"blockHash",
		"txCount",
		"wireSize",
		"state",
		"fees",
	}}
	for _, row := range rows {
		records = append(records, []string{
			strconv.FormatUint(uint64(row.Height), 10),
			row.BlockHash.String(),
			strconv.Itoa(len(row.Txids)),
			strconv.FormatUint(uint64(row.Wire), 10),
			row.State,
			strconv.FormatUint(row.Fees, 10),
		})
	}
	return records
}
