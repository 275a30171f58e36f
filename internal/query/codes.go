package query

// Code is the outcome of an engine rule or state lookup.
type Code uint8

const (
	Success Code = iota
	Integrity
	UnknownState
	Unvalidated
	Unassociated

	BlockValid
	BlockConfirmable
	BlockUnconfirmable

	TxPreconnected
	TxConnected
	TxDisconnected

	MissingPreviousOutput
	UnconfirmedSpend
	CoinbaseMaturity
	RelativeTimeLocked
	ConfirmedDoubleSpend
	UnspentCoinbaseCollision
)

var codeNames = [...]string{
	Success:                  "success",
	Integrity:                "integrity",
	UnknownState:             "unknown state",
	Unvalidated:              "unvalidated",
	Unassociated:             "unassociated",
	BlockValid:               "block valid",
	BlockConfirmable:         "block confirmable",
	BlockUnconfirmable:       "block unconfirmable",
	TxPreconnected:           "tx preconnected",
	TxConnected:              "tx connected",
	TxDisconnected:           "tx disconnected",
	MissingPreviousOutput:    "missing previous output",
	UnconfirmedSpend:         "unconfirmed spend",
	CoinbaseMaturity:         "coinbase maturity",
	RelativeTimeLocked:       "relative time locked",
	ConfirmedDoubleSpend:     "confirmed double spend",
	UnspentCoinbaseCollision: "unspent coinbase collision",
}

func (c Code) String() string {
	if int(c) < len(codeNames) {
		return codeNames[c]
	}
	return "unknown code"
}

func (c Code) Error() string {
	return c.String()
}

// Err is nil for Success and the code otherwise.
func (c Code) Err() error {
	if c == Success {
		return nil
	}
	return c
}
