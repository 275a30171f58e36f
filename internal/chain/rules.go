package chain

import "github.com/btcsuite/btcd/wire"

// IsCoinbaseMature is false until height reaches coinbaseHeight + maturity.
func IsCoinbaseMature(coinbaseHeight, height uint32, maturity uint16) bool {
	return uint64(height) >= uint64(coinbaseHeight)+uint64(maturity)
}

// IsRelativeLocktimeApplied is the BIP68 applicability test for one input.
func IsRelativeLocktimeApplied(coinbase bool, version, sequence uint32) bool {
	return !coinbase &&
		version >= 2 &&
		sequence&wire.SequenceLockTimeDisabled == 0
}

// IsRelativeLocked reports whether an input with sequence spending an output
// confirmed at prevHeight/prevMTP is still locked at height/mtp.
func IsRelativeLocked(sequence, height, mtp, prevHeight, prevMTP uint32) bool {
	value := sequence & wire.SequenceLockTimeMask

	if sequence&wire.SequenceLockTimeIsSeconds != 0 {
		required := uint64(value) << wire.SequenceLockTimeGranularity
		elapsed := uint64(0)
		if mtp > prevMTP {
			elapsed = uint64(mtp - prevMTP)
		}
		return elapsed < required
	}

	elapsed := uint64(0)
	if height > prevHeight {
		elapsed = uint64(height - prevHeight)
	}
	return elapsed < uint64(value)
}
