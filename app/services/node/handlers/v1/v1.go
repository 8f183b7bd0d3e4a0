// Package v1 contains the full set of handler functions and routes
// supported by the v1 web api.
package v1

import (
	"net/http"
	"time"

	"github.com/ardanlabs/ledger/app/services/node/handlers/v1/private"
	"github.com/ardanlabs/ledger/app/services/node/handlers/v1/public"
	"github.com/ardanlabs/ledger/foundation/blockchain/state"
	"github.com/ardanlabs/ledger/foundation/events"
	"github.com/ardanlabs/ledger/foundation/web"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const version = "v1"

// Config contains all the mandatory systems required by handlers.
type Config struct {
	Log           *zap.SugaredLogger
	State         *state.State
	Evts          *events.Events
	MiningTimeout time.Duration
}

// PublicRoutes binds all the version 1 public routes.
func PublicRoutes(app *web.App, cfg Config) {
	pbl := public.Handlers{
		Log:           cfg.Log,
		State:         cfg.State,
		WS:            websocket.Upgrader{},
		Evts:          cfg.Evts,
		MiningTimeout: cfg.MiningTimeout,
	}

	app.Handle(http.MethodGet, version, "/events", pbl.Events)
	app.Handle(http.MethodGet, version, "/peers/list", pbl.Peers)
	app.Handle(http.MethodPost, version, "/peers/add", pbl.AddPeer)
	app.Handle(http.MethodPost, version, "/peers/remove", pbl.RemovePeer)
	app.Handle(http.MethodPost, version, "/tx/submit", pbl.SubmitTransaction)
	app.Handle(http.MethodGet, version, "/tx/pending", pbl.Pending)
	app.Handle(http.MethodPost, version, "/blocks/new", pbl.NewBlock)
	app.Handle(http.MethodPost, version, "/blocks/seal", pbl.SealPending)
	app.Handle(http.MethodGet, version, "/blocks/list", pbl.BlocksByNumber)
	app.Handle(http.MethodGet, version, "/blocks/list/:from/:to", pbl.BlocksByNumber)
	app.Handle(http.MethodGet, version, "/blocks/latest", pbl.LatestBlock)
	app.Handle(http.MethodGet, version, "/blocks/verify", pbl.VerifyChain)
	app.Handle(http.MethodPost, version, "/mining/mine", pbl.Mine)
	app.Handle(http.MethodGet, version, "/mining/signal", pbl.SignalMining)
}

// PrivateRoutes binds all the version 1 private routes.
func PrivateRoutes(app *web.App, cfg Config) {
	prv := private.Handlers{
		Log:   cfg.Log,
		State: cfg.State,
	}

	app.Handle(http.MethodGet, version, "/node/status", prv.Status)
	app.Handle(http.MethodPost, version, "/node/peers", prv.SubmitPeer)
}
