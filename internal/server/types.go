package server

type InfoResponse struct {
	Network         string `json:"network"`
	StoreID         string `json:"store_id"`
	CandidateHeight uint32 `json:"candidate_height"`
	ConfirmedHeight uint32 `json:"confirmed_height"`
	ForkHeight      uint32 `json:"fork_height"`
	Headers         uint32 `json:"headers"`
	Txs             uint32 `json:"txs"`
}

type BlockHeightResponse struct {
	BlockHeight uint32 `json:"block_height"`
}

type BlockHashResponse struct {
	BlockHash string `json:"block_hash"`
}

type BlockResponse struct {
	BlockHash  string   `json:"block_hash"`
	ParentHash string   `json:"parent_hash,omitempty"`
	Height     uint32   `json:"height"`
	Candidate  bool     `json:"candidate"`
	Confirmed  bool     `json:"confirmed"`
	State      string   `json:"state"`
	Fees       uint64   `json:"fees"`
	WireSize   uint32   `json:"wire_size"`
	Txids      []string `json:"txids"`
}

type ConfirmableResponse struct {
	BlockHash   string `json:"block_hash"`
	Confirmable bool   `json:"confirmable"`
	Code        string `json:"code"`
}

type TxResponse struct {
	Txid      string `json:"txid"`
	BlockHash string `json:"block_hash,omitempty"`
	Strong    bool   `json:"strong"`
	Confirmed bool   `json:"confirmed"`
	Inputs    uint32 `json:"inputs"`
	Outputs   uint32 `json:"outputs"`
}

type FilterResponse struct {
	FilterType  uint8  `json:"filter_type"`
	BlockHeight uint32 `json:"block_height"`
	BlockHash   string `json:"block_hash"`
	Data        string `json:"data"`
	// FilterHeader is empty when the neutrino table is disabled
	FilterHeader string `json:"filter_header,omitempty"`
}
