// Package public maintains the group of handlers for public access.
package public

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/ardanlabs/ledger/business/sys/validate"
	"github.com/ardanlabs/ledger/business/web/errs"
	"github.com/ardanlabs/ledger/foundation/blockchain/database"
	"github.com/ardanlabs/ledger/foundation/blockchain/miner"
	"github.com/ardanlabs/ledger/foundation/blockchain/state"
	"github.com/ardanlabs/ledger/foundation/events"
	"github.com/ardanlabs/ledger/foundation/web"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// Handlers manages the set of ledger endpoints.
type Handlers struct {
	Log           *zap.SugaredLogger
	State         *state.State
	WS            websocket.Upgrader
	Evts          *events.Events
	MiningTimeout time.Duration
}

// Events handles a web socket to provide events to a client.
func (h Handlers) Events(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	v, err := web.GetValues(ctx)
	if err != nil {
		return web.NewShutdownError("web value missing from context")
	}

	h.WS.CheckOrigin = func(r *http.Request) bool { return true }

	c, err := h.WS.Upgrade(w, r, nil)
	if err != nil {
		return err
	}
	defer c.Close()

	ch := h.Evts.Acquire(v.TraceID)
	defer h.Evts.Release(v.TraceID)

	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case msg, wd := <-ch:
			if !wd {
				return nil
			}

			if err := c.WriteMessage(websocket.TextMessage, []byte(msg)); err != nil {
				return nil
			}

		case <-ticker.C:
			if err := c.WriteMessage(websocket.PingMessage, []byte("ping")); err != nil {
				return nil
			}
		}
	}
}

// Peers returns the set of known peers.
func (h Handlers) Peers(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	return web.Respond(ctx, w, h.State.RetrieveKnownPeers(), http.StatusOK)
}

// AddPeer adds a host to the set of known peers.
func (h Handlers) AddPeer(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	var np newPeer
	if err := web.Decode(r, &np); err != nil {
		return errs.NewTrusted(err, http.StatusBadRequest)
	}

	if err := validate.Check(np); err != nil {
		return err
	}

	status := "peer already known"
	if h.State.AddKnownPeer(np.Host) {
		status = "peer added"
	}

	resp := struct {
		Status string `json:"status"`
	}{
		Status: status,
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}

// RemovePeer drops a host from the set of known peers.
func (h Handlers) RemovePeer(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	var np newPeer
	if err := web.Decode(r, &np); err != nil {
		return errs.NewTrusted(err, http.StatusBadRequest)
	}

	if err := validate.Check(np); err != nil {
		return err
	}

	if !h.State.RemoveKnownPeer(np.Host) {
		return errs.NewTrusted(fmt.Errorf("peer %q not known", np.Host), http.StatusNotFound)
	}

	resp := struct {
		Status string `json:"status"`
	}{
		Status: "peer removed",
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}

// SubmitTransaction adds a new transaction to the pending buffer.
func (h Handlers) SubmitTransaction(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	v, err := web.GetValues(ctx)
	if err != nil {
		return web.NewShutdownError("web value missing from context")
	}

	var ntx newTx
	if err := web.Decode(r, &ntx); err != nil {
		return errs.NewTrusted(err, http.StatusBadRequest)
	}

	if err := validate.Check(ntx); err != nil {
		return err
	}

	h.Log.Infow("submit tran", "traceid", v.TraceID, "sender", ntx.Sender, "recipient", ntx.Recipient, "data", len(ntx.Data))
	h.State.SubmitTransaction(database.NewTx(ntx.Sender, ntx.Recipient, ntx.Data))

	resp := struct {
		Status string `json:"status"`
	}{
		Status: "transaction added to pending",
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}

// Pending returns the set of transactions waiting for the next block.
func (h Handlers) Pending(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	return web.Respond(ctx, w, toTxs(h.State.RetrievePending()), http.StatusOK)
}

// NewBlock seals the pending transactions into a new block using the
// previous hash and nonce provided by the caller.
func (h Handlers) NewBlock(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	var nb newBlock
	if err := web.Decode(r, &nb); err != nil {
		return errs.NewTrusted(err, http.StatusBadRequest)
	}

	blk := h.State.NewBlock(nb.PreviousHash, nb.Nonce)

	return web.Respond(ctx, w, toBlock(blk), http.StatusCreated)
}

// SealPending seals the pending transactions into a new block linked to the
// latest block.
func (h Handlers) SealPending(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	blk, err := h.State.SealPending()
	if err != nil {
		if errors.Is(err, state.ErrNoTransactions) {
			return errs.NewTrusted(err, http.StatusConflict)
		}
		return fmt.Errorf("seal pending: %w", err)
	}

	return web.Respond(ctx, w, toBlock(blk), http.StatusCreated)
}

// BlocksByNumber returns all the blocks based on the specified to/from values.
func (h Handlers) BlocksByNumber(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	fromStr := web.Param(r, "from")
	if fromStr == "" {
		fromStr = "0"
	}
	if fromStr == "latest" {
		fromStr = fmt.Sprintf("%d", state.QueryLatest)
	}

	toStr := web.Param(r, "to")
	if toStr == "latest" || toStr == "" {
		toStr = fmt.Sprintf("%d", state.QueryLatest)
	}

	from, err := strconv.ParseUint(fromStr, 10, 64)
	if err != nil {
		return errs.NewTrusted(err, http.StatusBadRequest)
	}
	to, err := strconv.ParseUint(toStr, 10, 64)
	if err != nil {
		return errs.NewTrusted(err, http.StatusBadRequest)
	}

	if from > to {
		return errs.NewTrusted(errors.New("from greater than to"), http.StatusBadRequest)
	}

	blocks := h.State.QueryBlocksByNumber(from, to)
	if len(blocks) == 0 {
		return web.Respond(ctx, w, nil, http.StatusNoContent)
	}

	return web.Respond(ctx, w, toBlocks(blocks), http.StatusOK)
}

// LatestBlock returns the most recently appended block.
func (h Handlers) LatestBlock(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	return web.Respond(ctx, w, toBlock(h.State.RetrieveLatestBlock()), http.StatusOK)
}

// VerifyChain checks every block still carries the hash of its content and
// links to its parent.
func (h Handlers) VerifyChain(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	if err := h.State.VerifyChain(); err != nil {
		return errs.NewTrusted(err, http.StatusConflict)
	}

	resp := struct {
		Status string `json:"status"`
	}{
		Status: "chain verified",
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}

// Mine performs the proof of work search on a block. With no index the
// latest block is mined; with no difficulty the node's default is used.
func (h Handlers) Mine(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	v, err := web.GetValues(ctx)
	if err != nil {
		return web.NewShutdownError("web value missing from context")
	}

	var mr mineRequest
	if err := web.Decode(r, &mr); err != nil {
		return errs.NewTrusted(err, http.StatusBadRequest)
	}

	if err := validate.Check(mr); err != nil {
		return err
	}

	difficulty := h.State.RetrieveDifficulty()
	if mr.Difficulty != nil {
		difficulty = *mr.Difficulty
	}

	if h.MiningTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.MiningTimeout)
		defer cancel()
	}

	h.Log.Infow("mine", "traceid", v.TraceID, "index", mr.Index, "difficulty", difficulty)

	var blk database.Block
	switch mr.Index {
	case nil:
		blk, err = h.State.MineLatest(ctx, difficulty)
	default:
		blk, err = h.State.MineBlock(ctx, *mr.Index, difficulty)
	}

	if err != nil {
		switch {
		case errors.Is(err, state.ErrBlockNotFound):
			return errs.NewTrusted(err, http.StatusNotFound)
		case errors.Is(err, miner.ErrAttemptsExhausted), errors.Is(err, context.DeadlineExceeded):
			return errs.NewTrusted(fmt.Errorf("no solution found: %w", err), http.StatusServiceUnavailable)
		}
		return fmt.Errorf("mine: %w", err)
	}

	return web.Respond(ctx, w, toBlock(blk), http.StatusOK)
}

// SignalMining asks the background worker to seal and mine the pending
// transactions.
func (h Handlers) SignalMining(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	if h.State.Worker == nil {
		return errs.NewTrusted(errors.New("background mining is not running"), http.StatusServiceUnavailable)
	}

	h.State.Worker.SignalStartMining()

	resp := struct {
		Status string `json:"status"`
	}{
		Status: "mining signalled",
	}

	return web.Respond(ctx, w, resp, http.StatusAccepted)
}
