package config

import (
	"time"

	"github.com/setavenger/blindbit-chainstore/internal/memory"
)

const (
	ConfigFileName       string = "chainstore.toml"
	DefaultBaseDirectory string = "~/.blindbit-chainstore"
)

var (
	LogLevel = "info"

	BaseDirectory = ""
	DBPath        = ""
	ExportPath    = ""
	BackupPath    = ""

	HTTPHost = "127.0.0.1:8000"

	RpcEndpoint = "http://127.0.0.1:8332" // default local node
	CookiePath  = ""
	RpcUser     = ""
	RpcPass     = ""

	// SyncBatchSize is the number of block hashes requested per rpc batch
	SyncBatchSize = 100
	// MaxParallelRequests bounds concurrent getblock calls
	MaxParallelRequests = 4
	SyncInterval        = 30 * time.Second
)

type chain int

const (
	Unknown chain = iota
	Mainnet
	Signet
	Regtest
	Testnet3
)

type backendKind int

const (
	BackendPebble backendKind = iota
	BackendLevel
	BackendMemory
)

var (
	Chain   = Unknown
	Backend = BackendPebble

	// ExpansionPercent is how much a region over-allocates when it grows
	ExpansionPercent = memory.DefaultExpansion
	// RegionLimit caps every region in bytes, 0 means no cap
	RegionLimit = 0
)

// bucket counts, fixed once a store is created
var (
	HeaderBuckets      uint32 = 1 << 16
	TxBuckets          uint32 = 1 << 20
	TxsBuckets         uint32 = 1 << 16
	PointBuckets       uint32 = 1 << 20
	SpendBuckets       uint32 = 1 << 20
	StrongTxBuckets    uint32 = 1 << 20
	ValidatedBkBuckets uint32 = 1 << 16
	ValidatedTxBuckets uint32 = 1 << 20
	InputBuckets       uint32 = 1 << 20

	// optional tables, 0 leaves them out of the store
	AddressBuckets  uint32 = 0
	NeutrinoBuckets uint32 = 1 << 16
)
