package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/btcsuite/btcd/chaincfg"
	"github.com/setavenger/blindbit-chainstore/internal/logging"
	"github.com/setavenger/blindbit-chainstore/internal/memory/backend"
	"github.com/setavenger/blindbit-chainstore/internal/primitives"
	"github.com/setavenger/blindbit-chainstore/internal/store"
	"github.com/spf13/viper"
)

func LoadConfigs(pathToConfig string) error {
	// Set the file name of the configurations file
	viper.SetConfigFile(pathToConfig)

	// Handle errors reading the config file
	if err := viper.ReadInConfig(); err != nil {
		logging.L.Warn().Err(err).Msg("No config file detected")
	}

	/* set defaults */
	viper.SetDefault("chain", "signet")
	viper.SetDefault("backend", "pebble")
	viper.SetDefault("log_level", LogLevel)
	viper.SetDefault("http_host", HTTPHost)
	viper.SetDefault("rpc_endpoint", RpcEndpoint)
	viper.SetDefault("cookie_path", CookiePath)
	viper.SetDefault("sync_batch_size", SyncBatchSize)
	viper.SetDefault("max_parallel_requests", MaxParallelRequests)
	viper.SetDefault("sync_interval", SyncInterval)
	viper.SetDefault("expansion_percent", ExpansionPercent)
	viper.SetDefault("region_limit", RegionLimit)

	viper.SetDefault("header_buckets", HeaderBuckets)
	viper.SetDefault("tx_buckets", TxBuckets)
	viper.SetDefault("txs_buckets", TxsBuckets)
	viper.SetDefault("point_buckets", PointBuckets)
	viper.SetDefault("spend_buckets", SpendBuckets)
	viper.SetDefault("strong_tx_buckets", StrongTxBuckets)
	viper.SetDefault("validated_bk_buckets", ValidatedBkBuckets)
	viper.SetDefault("validated_tx_buckets", ValidatedTxBuckets)
	viper.SetDefault("input_buckets", InputBuckets)
	viper.SetDefault("address_buckets", AddressBuckets)
	viper.SetDefault("neutrino_buckets", NeutrinoBuckets)

	// Bind viper keys to environment variables (optional, for backup)
	viper.AutomaticEnv()
	viper.BindEnv("chain", "CHAIN")
	viper.BindEnv("backend", "BACKEND")
	viper.BindEnv("log_level", "LOG_LEVEL")
	viper.BindEnv("http_host", "HTTP_HOST")
	viper.BindEnv("expansion_percent", "EXPANSION_PERCENT")
	viper.BindEnv("region_limit", "REGION_LIMIT")
	viper.BindEnv("rpc_endpoint", "RPC_ENDPOINT")
	viper.BindEnv("cookie_path", "COOKIE_PATH")
	viper.BindEnv("rpc_pass", "RPC_PASS")
	viper.BindEnv("rpc_user", "RPC_USER")

	/* read and set config variables */
	LogLevel = viper.GetString("log_level")
	HTTPHost = viper.GetString("http_host")
	RpcEndpoint = viper.GetString("rpc_endpoint")
	CookiePath = viper.GetString("cookie_path")
	RpcUser = viper.GetString("rpc_user")
	RpcPass = viper.GetString("rpc_pass")
	SyncBatchSize = viper.GetInt("sync_batch_size")
	MaxParallelRequests = viper.GetInt("max_parallel_requests")
	SyncInterval = viper.GetDuration("sync_interval")
	ExpansionPercent = viper.GetInt("expansion_percent")
	RegionLimit = viper.GetInt("region_limit")

	HeaderBuckets = viper.GetUint32("header_buckets")
	TxBuckets = viper.GetUint32("tx_buckets")
	TxsBuckets = viper.GetUint32("txs_buckets")
	PointBuckets = viper.GetUint32("point_buckets")
	SpendBuckets = viper.GetUint32("spend_buckets")
	StrongTxBuckets = viper.GetUint32("strong_tx_buckets")
	ValidatedBkBuckets = viper.GetUint32("validated_bk_buckets")
	ValidatedTxBuckets = viper.GetUint32("validated_tx_buckets")
	InputBuckets = viper.GetUint32("input_buckets")
	AddressBuckets = viper.GetUint32("address_buckets")
	NeutrinoBuckets = viper.GetUint32("neutrino_buckets")

	switch viper.GetString("chain") {
	case "main":
		Chain = Mainnet
	case "signet":
		Chain = Signet
	case "regtest":
		Chain = Regtest
	case "testnet":
		Chain = Testnet3
	default:
		return fmt.Errorf("chain undefined: %q", viper.GetString("chain"))
	}

	switch viper.GetString("backend") {
	case "pebble":
		Backend = BackendPebble
	case "leveldb":
		Backend = BackendLevel
	case "memory":
		Backend = BackendMemory
	default:
		return fmt.Errorf("backend undefined: %q", viper.GetString("backend"))
	}

	logging.SetLogLevel(logging.ParseLevel(LogLevel))

	logging.L.Info().
		Str("chain", ChainToString(Chain)).
		Str("backend", viper.GetString("backend")).
		Int("expansion_percent", ExpansionPercent).
		Int("region_limit", RegionLimit).
		Msg("loaded config")
	return nil
}

// RpcCredentials returns the node credentials, the cookie file wins over user and pass.
func RpcCredentials() (user, pass string, err error) {
	if CookiePath != "" {
		data, err := os.ReadFile(ResolvePath(CookiePath))
		if err != nil {
			return "", "", fmt.Errorf("error reading cookie file: %w", err)
		}
		credentials := strings.Split(strings.TrimSpace(string(data)), ":")
		if len(credentials) != 2 {
			return "", "", errors.New("cookie file is invalid")
		}
		return credentials[0], credentials[1], nil
	}

	if RpcUser == "" {
		return "", "", errors.New("rpc user not set")
	}
	if RpcPass == "" {
		return "", "", errors.New("rpc pass not set")
	}
	return RpcUser, RpcPass, nil
}

// SetDirectories has to be called before DBPath, ExportPath or BackupPath
// are used.
func SetDirectories() {
	BaseDirectory = ResolvePath(BaseDirectory)

	DBPath = filepath.Join(BaseDirectory, "data")
	ExportPath = filepath.Join(BaseDirectory, "export")
	BackupPath = filepath.Join(BaseDirectory, "backup")
}

// ResolvePath expands a leading ~ to the home directory.
func ResolvePath(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		logging.L.Err(err).Msg("failed to resolve home directory")
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}

func ChainParams() *chaincfg.Params {
	switch Chain {
	case Mainnet:
		return &chaincfg.MainNetParams
	case Signet:
		return &chaincfg.SigNetParams
	case Regtest:
		return &chaincfg.RegressionNetParams
	case Testnet3:
		return &chaincfg.TestNet3Params
	default:
		return nil
	}
}

func ChainToString(c chain) string {
	switch c {
	case Mainnet:
		return "main"
	case Signet:
		return "signet"
	case Regtest:
		return "regtest"
	case Testnet3:
		return "testnet"
	default:
		return "unknown"
	}
}

func StoreSettings() store.Settings {
	return store.Settings{
		Expansion:          ExpansionPercent,
		Limit:              RegionLimit,
		HeaderBuckets:      primitives.Link(HeaderBuckets),
		TxBuckets:          primitives.Link(TxBuckets),
		TxsBuckets:         primitives.Link(TxsBuckets),
		PointBuckets:       primitives.Link(PointBuckets),
		SpendBuckets:       primitives.Link(SpendBuckets),
		StrongTxBuckets:    primitives.Link(StrongTxBuckets),
		ValidatedBkBuckets: primitives.Link(ValidatedBkBuckets),
		ValidatedTxBuckets: primitives.Link(ValidatedTxBuckets),
		InputBuckets:       primitives.Link(InputBuckets),
		AddressBuckets:     primitives.Link(AddressBuckets),
		NeutrinoBuckets:    primitives.Link(NeutrinoBuckets),
	}
}

// OpenBackend opens the configured region backend under DBPath.
func OpenBackend() (backend.Backend, error) {
	return openBackend(DBPath)
}

// OpenBackupBackend opens the backend holding the snapshot under BackupPath,
// it is of the same kind as the live one.
func OpenBackupBackend() (backend.Backend, error) {
	return openBackend(BackupPath)
}

func openBackend(dir string) (backend.Backend, error) {
	switch Backend {
	case BackendPebble:
		return backend.OpenPebble(filepath.Join(dir, "pebble"))
	case BackendLevel:
		return backend.OpenLevel(filepath.Join(dir, "leveldb"))
	case BackendMemory:
		return backend.NewVolatile(), nil
	default:
		return nil, fmt.Errorf("backend undefined: %d", Backend)
	}
}
