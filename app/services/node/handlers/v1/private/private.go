// Package private maintains the group of handlers for node to node access.
package private

import (
	"context"
	"net/http"

	"github.com/ardanlabs/ledger/business/sys/validate"
	"github.com/ardanlabs/ledger/business/web/errs"
	"github.com/ardanlabs/ledger/foundation/blockchain/peer"
	"github.com/ardanlabs/ledger/foundation/blockchain/state"
	"github.com/ardanlabs/ledger/foundation/web"
	"go.uber.org/zap"
)

// Handlers manages the set of node to node endpoints.
type Handlers struct {
	Log   *zap.SugaredLogger
	State *state.State
}

// Status returns the current status of the node.
func (h Handlers) Status(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	return web.Respond(ctx, w, h.State.RetrieveStatus(), http.StatusOK)
}

// SubmitPeer records a node announcing itself to this node.
func (h Handlers) SubmitPeer(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	v, err := web.GetValues(ctx)
	if err != nil {
		return web.NewShutdownError("web value missing from context")
	}

	var pr struct {
		Host string `json:"host" validate:"required"`
	}
	if err := web.Decode(r, &pr); err != nil {
		return errs.NewTrusted(err, http.StatusBadRequest)
	}

	if err := validate.Check(pr); err != nil {
		return err
	}

	if !h.State.AddKnownPeer(pr.Host) {
		return web.Respond(ctx, w, nil, http.StatusNoContent)
	}

	h.Log.Infow("submit peer", "traceid", v.TraceID, "host", pr.Host)

	return web.Respond(ctx, w, peer.New(pr.Host), http.StatusCreated)
}
