package mid_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/ardanlabs/ledger/business/sys/metrics"
	"github.com/ardanlabs/ledger/business/sys/validate"
	"github.com/ardanlabs/ledger/business/web/errs"
	"github.com/ardanlabs/ledger/business/web/mid"
	"github.com/ardanlabs/ledger/foundation/logger"
	"github.com/ardanlabs/ledger/foundation/web"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestErrors(t *testing.T) {
	log, err := logger.New("TEST")
	require.NoError(t, err)
	defer log.Sync()

	m := metrics.New()
	app := web.NewApp(make(chan os.Signal, 1), mid.Logger(log), mid.Errors(log), mid.Metrics(m), mid.Panics(m), mid.Cors("*"))

	type input struct {
		Host string `json:"host" validate:"required"`
	}

	handlers := map[string]web.Handler{
		"/trusted": func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
			return errs.NewTrusted(errors.New("block not found"), http.StatusNotFound)
		},
		"/fields": func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
			return validate.Check(input{})
		},
		"/internal": func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
			return errors.New("secret detail")
		},
		"/panic": func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
			panic("boom")
		},
	}
	for path, h := range handlers {
		app.Handle(http.MethodGet, "", path, h)
	}

	type table struct {
		path   string
		status int
		msg    string
	}

	tt := []table{
		{path: "/trusted", status: http.StatusNotFound, msg: "block not found"},
		{path: "/fields", status: http.StatusBadRequest, msg: "data validation error"},
		{path: "/internal", status: http.StatusInternalServerError, msg: http.StatusText(http.StatusInternalServerError)},
		{path: "/panic", status: http.StatusInternalServerError, msg: http.StatusText(http.StatusInternalServerError)},
	}

	for _, tst := range tt {
		t.Run(tst.path, func(t *testing.T) {
			w := httptest.NewRecorder()
			app.ServeHTTP(w, httptest.NewRequest(http.MethodGet, tst.path, nil))

			require.Equal(t, tst.status, w.Code)
			require.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))

			var resp errs.Response
			require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
			require.Equal(t, tst.msg, resp.Error)
		})
	}

	require.Equal(t, float64(len(tt)), testutil.ToFloat64(m.Requests))
	require.Equal(t, float64(len(tt)), testutil.ToFloat64(m.Errors))
	require.Equal(t, float64(1), testutil.ToFloat64(m.Panics))
}
