package server

import (
	"encoding/hex"
	"net/http"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/gin-gonic/gin"
	"github.com/setavenger/blindbit-chainstore/internal/config"
	"github.com/setavenger/blindbit-chainstore/internal/logging"
	"github.com/setavenger/blindbit-chainstore/internal/query"
)

// ApiHandler serves read only views of the store.
type ApiHandler struct {
	Query *query.Query
}

func (h *ApiHandler) GetInfo(c *gin.Context) {
	candidate, ok := h.Query.GetTopCandidate()
	if !ok {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "store is not initialized"})
		return
	}
	confirmed, _ := h.Query.GetTopConfirmed()
	fork, _ := h.Query.GetFork()

	s := h.Query.Store()
	c.JSON(http.StatusOK, InfoResponse{
		Network:         config.ChainToString(config.Chain),
		StoreID:         s.ID.String(),
		CandidateHeight: candidate,
		ConfirmedHeight: confirmed,
		ForkHeight:      fork,
		Headers:         uint32(s.Header.Count()),
		Txs:             uint32(s.Tx.Count()),
	})
}

func (h *ApiHandler) GetBestBlockHeight(c *gin.Context) {
	height, ok := h.Query.GetTopConfirmed()
	if !ok {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "store is not initialized"})
		return
	}
	c.JSON(http.StatusOK, BlockHeightResponse{BlockHeight: height})
}

func (h *ApiHandler) GetBlockHashByHeight(c *gin.Context) {
	header, ok := headerFromContext(c)
	if !ok {
		return
	}
	hash, ok := h.Query.GetHeaderHash(header)
	if !ok {
		logging.L.Error().Uint32("header", uint32(header)).Msg("header without hash")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not retrieve data from store"})
		return
	}
	c.JSON(http.StatusOK, BlockHashResponse{BlockHash: hash.String()})
}

func (h *ApiHandler) GetBlock(c *gin.Context) {
	header, ok := headerFromContext(c)
	if !ok {
		return
	}

	hash, _ := h.Query.GetHeaderHash(header)
	height, _ := h.Query.GetHeight(header)
	resp := BlockResponse{
		BlockHash: hash.String(),
		Height:    height,
		Candidate: h.Query.IsCandidateBlock(header),
		Confirmed: h.Query.IsConfirmedBlock(header),
		State:     h.Query.GetBlockState(header).String(),
		Txids:     []string{},
	}
	if parent, ok := h.Query.GetHeaderHash(h.Query.ToParent(header)); ok {
		resp.ParentHash = parent.String()
	}
	resp.Fees, _ = h.Query.GetBlockFees(header)
	resp.WireSize, _ = h.Query.GetBlockWire(header)

	txs, _ := h.Query.ToTransactions(header)
	for _, tx := range txs {
		txid, ok := h.Query.GetTxHash(tx)
		if !ok {
			logging.L.Error().Str("block", resp.BlockHash).Msg("tx without hash")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not retrieve data from store"})
			return
		}
		resp.Txids = append(resp.Txids, txid.String())
	}

	c.JSON(http.StatusOK, resp)
}

func (h *ApiHandler) GetBlockConfirmable(c *gin.Context) {
	header, ok := headerFromContext(c)
	if !ok {
		return
	}
	hash, _ := h.Query.GetHeaderHash(header)
	code := h.Query.BlockConfirmable(header)
	c.JSON(http.StatusOK, ConfirmableResponse{
		BlockHash:   hash.String(),
		Confirmable: code == query.Success,
		Code:        code.String(),
	})
}

func (h *ApiHandler) GetTx(c *gin.Context) {
	hash, err := chainhash.NewHashFromStr(c.Param("hash"))
	if err != nil {
		logging.L.Err(err).Msg("could not parse txid")
		c.JSON(http.StatusBadRequest, gin.H{"error": "could not parse txid"})
		return
	}

	strong := h.Query.ToStrong(hash[:])
	tx := strong.Tx
	if tx.IsTerminal() {
		tx = h.Query.ToTx(hash)
	}
	if tx.IsTerminal() {
		c.JSON(http.StatusNotFound, gin.H{"error": "tx not found"})
		return
	}

	resp := TxResponse{
		Txid:      hash.String(),
		Strong:    !strong.Block.IsTerminal(),
		Confirmed: h.Query.IsConfirmedTx(tx),
	}
	if block, ok := h.Query.GetHeaderHash(strong.Block); ok {
		resp.BlockHash = block.String()
	}
	resp.Inputs, resp.Outputs, _ = h.Query.GetPutCounts(tx)

	c.JSON(http.StatusOK, resp)
}

// basicFilterType is the BIP157 type byte of the basic filter.
const basicFilterType = 0

func (h *ApiHandler) GetBlockFilter(c *gin.Context) {
	header, ok := headerFromContext(c)
	if !ok {
		return
	}

	filter, ok := h.Query.GetBlockFilter(header)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not build filter"})
		return
	}
	data, err := filter.NBytes()
	if err != nil {
		logging.L.Err(err).Msg("error serialising filter")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not build filter"})
		return
	}

	hash, _ := h.Query.GetHeaderHash(header)
	height, _ := h.Query.GetHeight(header)
	resp := FilterResponse{
		FilterType:  basicFilterType,
		BlockHeight: height,
		BlockHash:   hash.String(),
		Data:        hex.EncodeToString(data),
	}
	if filterHeader, ok := h.Query.GetFilterHeader(header); ok {
		resp.FilterHeader = filterHeader.String()
	}
	c.JSON(http.StatusOK, resp)
}
