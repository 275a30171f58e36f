package server

import (
	"net/http"
	"strconv"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/gin-gonic/gin"
	"github.com/setavenger/blindbit-chainstore/internal/logging"
	"github.com/setavenger/blindbit-chainstore/internal/query"
)

const headerKey = "header"

// FetchConfirmedHeaderMiddleware resolves :blockheight on the confirmed chain.
func FetchConfirmedHeaderMiddleware(api *ApiHandler) gin.HandlerFunc {
	return func(c *gin.Context) {
		heightStr := c.Param("blockheight")
		if heightStr == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "block height is required"})
			c.Abort()
			return
		}

		height, err := strconv.ParseUint(heightStr, 10, 32)
		if err != nil {
			logging.L.Err(err).Msg("could not parse block height")
			c.JSON(http.StatusBadRequest, gin.H{"error": "could not parse block height"})
			c.Abort()
			return
		}

		header := api.Query.ToConfirmed(uint32(height))
		if header.IsTerminal() {
			c.JSON(http.StatusNotFound, gin.H{"error": "no confirmed block at height"})
			c.Abort()
			return
		}

		c.Set(headerKey, header)
		c.Next()
	}
}

// FetchHeaderMiddleware resolves :hash to an archived header.
func FetchHeaderMiddleware(api *ApiHandler) gin.HandlerFunc {
	return func(c *gin.Context) {
		hash, err := chainhash.NewHashFromStr(c.Param("hash"))
		if err != nil {
			logging.L.Err(err).Msg("could not parse block hash")
			c.JSON(http.StatusBadRequest, gin.H{"error": "could not parse block hash"})
			c.Abort()
			return
		}

		header := api.Query.ToHeader(hash)
		if header.IsTerminal() {
			c.JSON(http.StatusNotFound, gin.H{"error": "block not found"})
			c.Abort()
			return
		}

		c.Set(headerKey, header)
		c.Next()
	}
}

func headerFromContext(c *gin.Context) (query.Link, bool) {
	value, exists := c.Get(headerKey)
	if !exists {
		logging.L.Error().Msg("header not found in context")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "header not found"})
		return 0, false
	}
	header, ok := value.(query.Link)
	if !ok {
		logging.L.Error().Msg("invalid header type")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "invalid header type"})
		return 0, false
	}
	return header, true
}
