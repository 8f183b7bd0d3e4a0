// Package client provides access to the public api of a ledger node.
package client

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/ardanlabs/ledger/business/web/errs"
	"github.com/ardanlabs/ledger/foundation/blockchain/database"
	"github.com/ardanlabs/ledger/foundation/blockchain/peer"
	"github.com/go-resty/resty/v2"
	"github.com/pkg/errors"
)

// Status is the simple acknowledgement returned by several endpoints.
type Status struct {
	Status string `json:"status"`
}

// MineRequest selects the block to mine and the difficulty. Nil fields let
// the node apply its defaults.
type MineRequest struct {
	Index      *uint64 `json:"index,omitempty"`
	Difficulty *uint   `json:"difficulty,omitempty"`
}

// Client talks to a node's public api.
type Client struct {
	rc *resty.Client
}

// New constructs a client for the node at the specified url.
func New(url string, timeout time.Duration) *Client {
	rc := resty.New().
		SetBaseURL(url).
		SetTimeout(timeout).
		SetHeader("Accept", "application/json").
		SetError(&errs.Response{})

	return &Client{rc: rc}
}

// AddPeer registers a host with the node.
func (c *Client) AddPeer(ctx context.Context, host string) (Status, error) {
	var status Status
	body := struct {
		Host string `json:"host"`
	}{
		Host: host,
	}

	if err := c.do(ctx, http.MethodPost, "/v1/peers/add", body, &status); err != nil {
		return Status{}, errors.WithMessage(err, "add peer")
	}

	return status, nil
}

// RemovePeer drops a host from the node's known peers.
func (c *Client) RemovePeer(ctx context.Context, host string) (Status, error) {
	var status Status
	body := struct {
		Host string `json:"host"`
	}{
		Host: host,
	}

	if err := c.do(ctx, http.MethodPost, "/v1/peers/remove", body, &status); err != nil {
		return Status{}, errors.WithMessage(err, "remove peer")
	}

	return status, nil
}

// Peers returns the node's known peers.
func (c *Client) Peers(ctx context.Context) ([]peer.Peer, error) {
	var peers []peer.Peer
	if err := c.do(ctx, http.MethodGet, "/v1/peers/list", nil, &peers); err != nil {
		return nil, errors.WithMessage(err, "list peers")
	}

	return peers, nil
}

// SubmitTx adds a transaction to the node's pending buffer.
func (c *Client) SubmitTx(ctx context.Context, tx database.Tx) (Status, error) {
	var status Status
	if err := c.do(ctx, http.MethodPost, "/v1/tx/submit", tx, &status); err != nil {
		return Status{}, errors.WithMessage(err, "submit tx")
	}

	return status, nil
}

// Pending returns the transactions waiting for the next block.
func (c *Client) Pending(ctx context.Context) ([]database.Tx, error) {
	var txs []database.Tx
	if err := c.do(ctx, http.MethodGet, "/v1/tx/pending", nil, &txs); err != nil {
		return nil, errors.WithMessage(err, "pending txs")
	}

	return txs, nil
}

// NewBlock seals the pending transactions with the given previous hash and
// nonce, both of which may be empty.
func (c *Client) NewBlock(ctx context.Context, previousHash string, nonce string) (database.Block, error) {
	body := struct {
		PreviousHash string `json:"previous_hash"`
		Nonce        string `json:"nonce"`
	}{
		PreviousHash: previousHash,
		Nonce:        nonce,
	}

	var blk database.Block
	if err := c.do(ctx, http.MethodPost, "/v1/blocks/new", body, &blk); err != nil {
		return database.Block{}, errors.WithMessage(err, "new block")
	}

	return blk, nil
}

// Seal seals the pending transactions into a block linked to the latest.
func (c *Client) Seal(ctx context.Context) (database.Block, error) {
	var blk database.Block
	if err := c.do(ctx, http.MethodPost, "/v1/blocks/seal", nil, &blk); err != nil {
		return database.Block{}, errors.WithMessage(err, "seal")
	}

	return blk, nil
}

// Blocks returns the blocks between from and to inclusive. Use "latest"
// for either bound to mean the end of the chain.
func (c *Client) Blocks(ctx context.Context, from string, to string) ([]database.Block, error) {
	var blocks []database.Block
	path := fmt.Sprintf("/v1/blocks/list/%s/%s", from, to)
	if err := c.do(ctx, http.MethodGet, path, nil, &blocks); err != nil {
		return nil, errors.WithMessage(err, "list blocks")
	}

	return blocks, nil
}

// Latest returns the node's latest block.
func (c *Client) Latest(ctx context.Context) (database.Block, error) {
	var blk database.Block
	if err := c.do(ctx, http.MethodGet, "/v1/blocks/latest", nil, &blk); err != nil {
		return database.Block{}, errors.WithMessage(err, "latest block")
	}

	return blk, nil
}

// Verify asks the node to verify its chain.
func (c *Client) Verify(ctx context.Context) (Status, error) {
	var status Status
	if err := c.do(ctx, http.MethodGet, "/v1/blocks/verify", nil, &status); err != nil {
		return Status{}, errors.WithMessage(err, "verify chain")
	}

	return status, nil
}

// Mine asks the node to perform the proof of work search.
func (c *Client) Mine(ctx context.Context, mr MineRequest) (database.Block, error) {
	var blk database.Block
	if err := c.do(ctx, http.MethodPost, "/v1/mining/mine", mr, &blk); err != nil {
		return database.Block{}, errors.WithMessage(err, "mine")
	}

	return blk, nil
}

// SignalMining asks the node's background worker to seal and mine.
func (c *Client) SignalMining(ctx context.Context) (Status, error) {
	var status Status
	if err := c.do(ctx, http.MethodGet, "/v1/mining/signal", nil, &status); err != nil {
		return Status{}, errors.WithMessage(err, "signal mining")
	}

	return status, nil
}

// =============================================================================

func (c *Client) do(ctx context.Context, method string, path string, body any, result any) error {
	req := c.rc.R().SetContext(ctx)
	if body != nil {
		req.SetHeader("Content-Type", "application/json").SetBody(body)
	}
	if result != nil {
		req.SetResult(result)
	}

	resp, err := req.Execute(method, path)
	if err != nil {
		return errors.Wrapf(err, "%s %s", method, path)
	}

	if resp.IsError() {
		if er, ok := resp.Error().(*errs.Response); ok && er.Error != "" {
			return errors.Errorf("%s: %s", resp.Status(), formatError(*er))
		}
		return errors.Errorf("%s", resp.Status())
	}

	return nil
}

func formatError(er errs.Response) string {
	if len(er.Fields) == 0 {
		return er.Error
	}

	return fmt.Sprintf("%s %v", er.Error, er.Fields)
}
