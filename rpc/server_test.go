package rpc

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/holiman/uint256"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"

	"tokenledger/core"
	"tokenledger/crypto"
	"tokenledger/native/admin"
	"tokenledger/observability/metrics"
)

var (
	owner = crypto.ActorIDFromUint64(1)
	alice = crypto.ActorIDFromUint64(2)
)

func newTestServer(t *testing.T) (*httptest.Server, *core.Program, *prometheus.Registry) {
	t.Helper()
	reg := prometheus.NewRegistry()
	m := metrics.NewLedgerMetrics(reg)
	p, err := core.New(admin.Init{
		Name:          "Vara Network",
		Symbol:        "VARA",
		Decimals:      12,
		InitialSupply: uint256.NewInt(100),
		MaxSupply:     uint256.NewInt(1000),
		Admin:         owner,
	}, core.WithMetrics(m))
	require.NoError(t, err)
	srv := httptest.NewServer(NewRouter(Config{Program: p, Metrics: m, Gatherer: reg}))
	t.Cleanup(srv.Close)
	return srv, p, reg
}

func getJSON(t *testing.T, url string, out any) int {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

func TestHealthz(t *testing.T) {
	srv, _, _ := newTestServer(t)
	resp, err := http.Get(srv.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestStatusAndBalances(t *testing.T) {
	srv, p, _ := newTestServer(t)
	_, err := p.Transfer(owner, alice, uint256.NewInt(40))
	require.NoError(t, err)

	var status statusResponse
	require.Equal(t, http.StatusOK, getJSON(t, srv.URL+"/status", &status))
	require.Equal(t, "VARA", status.Symbol)
	require.Equal(t, "100", status.TotalSupply)
	require.Equal(t, "1000", status.MaxSupply)
	require.Equal(t, 2, status.Holders)

	var balance holdingResponse
	require.Equal(t, http.StatusOK, getJSON(t, srv.URL+"/balances/"+alice.String(), &balance))
	require.Equal(t, "40", balance.Amount)

	var page []holdingResponse
	require.Equal(t, http.StatusOK, getJSON(t, srv.URL+"/balances?take=1", &page))
	require.Len(t, page, 1)

	var errBody map[string]string
	require.Equal(t, http.StatusBadRequest, getJSON(t, srv.URL+"/balances/nope", &errBody))
	require.NotEmpty(t, errBody["error"])
	require.Equal(t, http.StatusBadRequest, getJSON(t, srv.URL+"/balances?skip=-1", &errBody))
}

func TestAllowanceAndRoles(t *testing.T) {
	srv, p, _ := newTestServer(t)
	_, err := p.Approve(owner, alice, uint256.NewInt(7))
	require.NoError(t, err)

	var allowance map[string]string
	url := srv.URL + "/allowances/" + owner.String() + "/" + alice.String()
	require.Equal(t, http.StatusOK, getJSON(t, url, &allowance))
	require.Equal(t, "7", allowance["amount"])

	var roles struct {
		Roles []string `json:"roles"`
	}
	require.Equal(t, http.StatusOK, getJSON(t, srv.URL+"/roles/"+alice.String(), &roles))
	require.Empty(t, roles.Roles)
	require.Equal(t, http.StatusOK, getJSON(t, srv.URL+"/roles/"+owner.String(), &roles))
	require.Contains(t, roles.Roles, "FungibleAdmin")
}

func TestKilledProgram(t *testing.T) {
	srv, p, _ := newTestServer(t)
	require.NoError(t, p.Kill(owner, alice))

	var status statusResponse
	require.Equal(t, http.StatusOK, getJSON(t, srv.URL+"/status", &status))
	require.True(t, status.Killed)
	require.Equal(t, alice.String(), status.Inheritor)

	var errBody map[string]string
	require.Equal(t, http.StatusGone, getJSON(t, srv.URL+"/balances/"+alice.String(), &errBody))
}

func TestMetricsEndpointCountsRequests(t *testing.T) {
	srv, _, _ := newTestServer(t)
	getJSON(t, srv.URL+"/status", &statusResponse{})

	resp, err := http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	body := new(strings.Builder)
	_, err = io.Copy(body, resp.Body)
	require.NoError(t, err)
	require.Contains(t, body.String(), `tokenledger_http_requests_total{route="/status",status="2xx"} 1`)
	require.Contains(t, body.String(), "tokenledger_total_supply 100")
}
