// rpc talks json-rpc to a bitcoin node.
package rpc

import (
	"bytes"
	"context"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/wire"
	"github.com/setavenger/blindbit-chainstore/internal/logging"
)

const requestID = "blindbit-chainstore"

var ErrRequestFailed = errors.New("request failed")

type Client struct {
	Endpoint string
	User     string
	Pass     string

	http *http.Client
}

func NewClient(endpoint, user, pass string) *Client {
	return &Client{
		Endpoint: endpoint,
		User:     user,
		Pass:     pass,
		http:     &http.Client{},
	}
}

type request struct {
	JSONRPC string `json:"jsonrpc"`
	ID      string `json:"id"`
	Method  string `json:"method"`
	Params  []any  `json:"params"`
}

type response struct {
	ID     string          `json:"id"`
	Result json.RawMessage `json:"result"`
	Error  *Error          `json:"error"`
}

// Error is an error object returned by the node.
type Error struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *Error) Error() string {
	return fmt.Sprintf("rpc error %d: %s", e.Code, e.Message)
}

func newRequest(method string, params ...any) request {
	if params == nil {
		params = []any{}
	}
	return request{JSONRPC: "1.0", ID: requestID, Method: method, Params: params}
}

// post sends payload, a request or a batch of them, and decodes the reply into result.
func (c *Client) post(ctx context.Context, payload, result any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("error marshaling rpc data: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.Endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("error creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.SetBasicAuth(c.User, c.Pass)

	logging.L.Trace().Any("req", payload).Msg("")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("error performing request: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	// the node answers rpc errors with 500 and a json body
	if resp.StatusCode >= 400 && resp.StatusCode != http.StatusInternalServerError {
		logging.L.Err(ErrRequestFailed).
			Int("status_code", resp.StatusCode).
			Str("body", string(data)).
			Msg("rpc call failed")
		return fmt.Errorf("%w: status %d", ErrRequestFailed, resp.StatusCode)
	}

	if err = json.Unmarshal(data, result); err != nil {
		logging.L.Err(err).
			Int("status_code", resp.StatusCode).
			Str("body", string(data)).
			Msg("error unmarshaling response")
		return err
	}
	return nil
}

func (c *Client) call(ctx context.Context, result any, method string, params ...any) error {
	var resp response
	if err := c.post(ctx, newRequest(method, params...), &resp); err != nil {
		return err
	}
	if resp.Error != nil {
		return resp.Error
	}
	return json.Unmarshal(resp.Result, result)
}

func (c *Client) GetBlockCount(ctx context.Context) (uint32, error) {
	var count uint32
	err := c.call(ctx, &count, "getblockcount")
	return count, err
}

func (c *Client) GetBestBlockHash(ctx context.Context) (*chainhash.Hash, error) {
	var hash string
	if err := c.call(ctx, &hash, "getbestblockhash"); err != nil {
		return nil, err
	}
	return chainhash.NewHashFromStr(hash)
}

func (c *Client) GetBlockHash(ctx context.Context, height uint32) (*chainhash.Hash, error) {
	hashes, err := c.GetBlockHashes(ctx, []uint32{height})
	if err != nil {
		return nil, err
	}
	return hashes[0], nil
}

// GetBlockHashes resolves heights in one batched call, in the order given.
func (c *Client) GetBlockHashes(ctx context.Context, heights []uint32) ([]*chainhash.Hash, error) {
	if len(heights) == 0 {
		return nil, nil
	}

	batch := make([]request, len(heights))
	for i, height := range heights {
		batch[i] = newRequest("getblockhash", height)
	}

	responses := make([]response, 0, len(heights))
	if err := c.post(ctx, batch, &responses); err != nil {
		return nil, fmt.Errorf("error fetching block hashes: %w", err)
	}
	if len(responses) != len(heights) {
		return nil, fmt.Errorf("expected %d hashes, got %d", len(heights), len(responses))
	}

	hashes := make([]*chainhash.Hash, len(heights))
	for i, resp := range responses {
		if resp.Error != nil {
			return nil, fmt.Errorf("height %d: %w", heights[i], resp.Error)
		}
		var str string
		if err := json.Unmarshal(resp.Result, &str); err != nil {
			return nil, err
		}
		hash, err := chainhash.NewHashFromStr(str)
		if err != nil {
			return nil, err
		}
		hashes[i] = hash
	}
	return hashes, nil
}

// GetBlock fetches the serialized block, verbosity 0.
func (c *Client) GetBlock(ctx context.Context, hash *chainhash.Hash) (*wire.MsgBlock, error) {
	var raw string
	if err := c.call(ctx, &raw, "getblock", hash.String(), 0); err != nil {
		return nil, err
	}
	data, err := hex.DecodeString(raw)
	if err != nil {
		return nil, err
	}
	block, err := btcutil.NewBlockFromBytes(data)
	if err != nil {
		return nil, err
	}
	if !block.Hash().IsEqual(hash) {
		return nil, fmt.Errorf("node returned block %s for %s", block.Hash(), hash)
	}
	return block.MsgBlock(), nil
}
