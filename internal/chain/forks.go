package chain

import "github.com/btcsuite/btcd/chaincfg"

// activation heights of soft forks that chaincfg does not carry as heights
type activations struct {
	csv     int32
	segwit  int32
	taproot int32
}

const never int32 = -1

var forkHeights = map[string]activations{
	chaincfg.MainNetParams.Name:       {csv: 419328, segwit: 481824, taproot: 709632},
	chaincfg.TestNet3Params.Name:      {csv: 770112, segwit: 834624, taproot: never},
	chaincfg.SigNetParams.Name:        {csv: 1, segwit: 1, taproot: 1},
	chaincfg.RegressionNetParams.Name: {csv: 0, segwit: 0, taproot: 0},
}

func active(activation, height int32) bool {
	return activation != never && height >= activation
}

// FlagsAt returns the rule forks active for a block at height on params.
func FlagsAt(params *chaincfg.Params, height uint32) Flags {
	h := int32(height)
	flags := BIP16 | BIP42

	if active(params.BIP0034Height, h) {
		flags |= BIP34 | BIP90
	} else {
		flags |= BIP30
	}
	if active(params.BIP0065Height, h) {
		flags |= BIP65
	}
	if active(params.BIP0066Height, h) {
		flags |= BIP66
	}

	forks, ok := forkHeights[params.Name]
	if !ok {
		return flags
	}
	if active(forks.csv, h) {
		flags |= BIP68 | BIP112 | BIP113
	}
	if active(forks.segwit, h) {
		flags |= BIP141 | BIP143 | BIP147
	}
	if active(forks.taproot, h) {
		flags |= BIP341 | BIP342
	}
	return flags
}
