package store

import (
	"github.com/setavenger/blindbit-chainstore/internal/memory"
	"github.com/setavenger/blindbit-chainstore/internal/primitives"
)

// Settings sizes the regions and bucket tables of a store. Bucket counts are
// fixed at creation, changing them for an existing store fails verification.
type Settings struct {
	// Expansion is the percent a region over-allocates when it grows.
	Expansion int
	// Limit caps every region in bytes, zero is unbounded.
	Limit int

	HeaderBuckets      primitives.Link
	TxBuckets          primitives.Link
	TxsBuckets         primitives.Link
	PointBuckets       primitives.Link
	SpendBuckets       primitives.Link
	StrongTxBuckets    primitives.Link
	ValidatedBkBuckets primitives.Link
	ValidatedTxBuckets primitives.Link
	InputBuckets       primitives.Link

	// Optional tables are left out of the store when their buckets are zero.
	AddressBuckets  primitives.Link
	NeutrinoBuckets primitives.Link
}

func DefaultSettings() Settings {
	return Settings{
		Expansion:          memory.DefaultExpansion,
		HeaderBuckets:      1 << 16,
		TxBuckets:          1 << 20,
		TxsBuckets:         1 << 16,
		PointBuckets:       1 << 20,
		SpendBuckets:       1 << 20,
		StrongTxBuckets:    1 << 20,
		ValidatedBkBuckets: 1 << 16,
		ValidatedTxBuckets: 1 << 20,
		InputBuckets:       1 << 20,
		NeutrinoBuckets:    1 << 16,
	}
}

// TestSettings keeps bucket tables tiny so chains are actually exercised.
func TestSettings() Settings {
	return Settings{
		Expansion:          memory.DefaultExpansion,
		HeaderBuckets:      7,
		TxBuckets:          11,
		TxsBuckets:         7,
		PointBuckets:       11,
		SpendBuckets:       11,
		StrongTxBuckets:    11,
		ValidatedBkBuckets: 7,
		ValidatedTxBuckets: 11,
		InputBuckets:       11,
		AddressBuckets:     11,
		NeutrinoBuckets:    7,
	}
}
