package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/btcsuite/btcd/chaincfg"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), ConfigFileName)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadConfigs(t *testing.T) {
	viper.Reset()
	path := writeConfig(t, `
chain = "regtest"
backend = "memory"
log_level = "debug"
header_buckets = 101
region_limit = 4096
address_buckets = 13
`)

	require.NoError(t, LoadConfigs(path))
	require.Equal(t, Regtest, Chain)
	require.Equal(t, BackendMemory, Backend)
	require.Same(t, &chaincfg.RegressionNetParams, ChainParams())

	settings := StoreSettings()
	require.EqualValues(t, 101, settings.HeaderBuckets)
	require.Equal(t, 4096, settings.Limit)
	require.EqualValues(t, 13, settings.AddressBuckets)
	require.EqualValues(t, NeutrinoBuckets, settings.NeutrinoBuckets)

	be, err := OpenBackend()
	require.NoError(t, err)
	require.NoError(t, be.Close())
}

func TestLoadConfigsEnv(t *testing.T) {
	viper.Reset()
	t.Setenv("CHAIN", "main")
	t.Setenv("BACKEND", "leveldb")

	require.NoError(t, LoadConfigs(filepath.Join(t.TempDir(), "missing.toml")))
	require.Equal(t, Mainnet, Chain)
	require.Equal(t, BackendLevel, Backend)
	require.Equal(t, "main", ChainToString(Chain))
}

func TestLoadConfigsUnknownChain(t *testing.T) {
	viper.Reset()
	path := writeConfig(t, `chain = "moon"`)
	require.Error(t, LoadConfigs(path))
}

func TestSetDirectories(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	BaseDirectory = "~/store"
	SetDirectories()
	require.Equal(t, filepath.Join(home, "store"), BaseDirectory)
	require.Equal(t, filepath.Join(home, "store", "data"), DBPath)
	require.Equal(t, filepath.Join(home, "store", "export"), ExportPath)
	require.Equal(t, filepath.Join(home, "store", "backup"), BackupPath)

	require.Equal(t, "/abs/path", ResolvePath("/abs/path"))
}

func TestRpcCredentials(t *testing.T) {
	CookiePath = ""
	RpcUser, RpcPass = "alice", ""
	_, _, err := RpcCredentials()
	require.Error(t, err)

	RpcPass = "secret"
	user, pass, err := RpcCredentials()
	require.NoError(t, err)
	require.Equal(t, "alice", user)
	require.Equal(t, "secret", pass)

	cookie := filepath.Join(t.TempDir(), ".cookie")
	require.NoError(t, os.WriteFile(cookie, []byte("__cookie__:abc123\n"), 0o600))
	CookiePath = cookie
	defer func() { CookiePath = "" }()

	user, pass, err = RpcCredentials()
	require.NoError(t, err)
	require.Equal(t, "__cookie__", user)
	require.Equal(t, "abc123", pass)
}
