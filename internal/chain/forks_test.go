package chain

import (
	"testing"

	"github.com/btcsuite/btcd/chaincfg"
	"github.com/stretchr/testify/require"
)

func TestFlagsAtMainnet(t *testing.T) {
	params := &chaincfg.MainNetParams

	early := FlagsAt(params, 1000)
	require.True(t, Context{Flags: early}.IsEnabled(BIP30))
	require.False(t, Context{Flags: early}.IsEnabled(BIP34))
	require.False(t, Context{Flags: early}.IsEnabled(BIP68))

	csv := FlagsAt(params, 419328)
	require.True(t, Context{Flags: csv}.IsEnabled(BIP68|BIP112|BIP113))
	require.True(t, Context{Flags: csv}.IsEnabled(BIP34))
	require.False(t, Context{Flags: csv}.IsEnabled(BIP30))
	require.False(t, Context{Flags: csv}.IsEnabled(BIP141))

	require.Zero(t, FlagsAt(params, 709631)&BIP341)
	require.NotZero(t, FlagsAt(params, 709632)&BIP341)
}

func TestFlagsAtRegtest(t *testing.T) {
	flags := FlagsAt(&chaincfg.RegressionNetParams, 1)
	require.NotZero(t, flags&BIP68)
	require.NotZero(t, flags&BIP141)
	require.NotZero(t, flags&BIP342)
}
