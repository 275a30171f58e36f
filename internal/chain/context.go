// chain holds the consensus rule context and the maturity/locktime rules the
// query engine enforces. These are the only copies of the rules.
package chain

// Flags is the set of active consensus rule forks.
type Flags uint32

const (
	BIP16 Flags = 1 << iota
	BIP30
	BIP34
	BIP42
	BIP65
	BIP66
	BIP68
	BIP90
	BIP112
	BIP113
	BIP141
	BIP143
	BIP147
	BIP341
	BIP342

	None Flags = 0
)

// Context is the rule context a block is validated under.
type Context struct {
	Flags  Flags
	Height uint32
	MTP    uint32
}

func (c Context) IsEnabled(flag Flags) bool {
	return c.Flags&flag != 0
}

// IsSufficient reports whether a verdict stored under stored can be reused
// for a query under query. Rules must match exactly and the stored context
// must not be later than the query, otherwise a verdict computed under
// looser rules could certify a stricter context.
func IsSufficient(stored, query Context) bool {
	return stored.Flags == query.Flags &&
		stored.Height <= query.Height &&
		stored.MTP <= query.MTP
}
