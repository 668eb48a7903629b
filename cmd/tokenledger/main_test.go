package main

import (
	"bytes"
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"tokenledger/config"
	"tokenledger/crypto"
	"tokenledger/storage"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.Token.Name = "Vara Network"
	cfg.Token.Symbol = "VARA"
	cfg.Token.InitialSupply = "250"
	cfg.Token.MaxSupply = "1000"
	cfg.Token.Admin = crypto.ActorIDFromUint64(1).String()
	cfg.Storage = config.Storage{Backend: storage.BackendBolt, Path: filepath.Join(t.TempDir(), "ledger.db")}
	require.NoError(t, cfg.Validate())
	return cfg
}

func discard() *slog.Logger { return slog.New(slog.NewTextHandler(io.Discard, nil)) }

func TestInitThenInspect(t *testing.T) {
	cfg := testConfig(t)
	require.NoError(t, initLedger(cfg, discard(), false))

	var out bytes.Buffer
	require.NoError(t, inspectLedger(cfg, discard(), &out))
	require.Contains(t, out.String(), "Vara Network (VARA)")
	require.Contains(t, out.String(), "250 / 1000")
	require.Contains(t, out.String(), "holders:      1")
}

func TestInitRefusesToOverwrite(t *testing.T) {
	cfg := testConfig(t)
	require.NoError(t, initLedger(cfg, discard(), false))
	require.Error(t, initLedger(cfg, discard(), false))
	require.NoError(t, initLedger(cfg, discard(), true))
}

func TestInspectWithoutLedger(t *testing.T) {
	cfg := testConfig(t)
	err := inspectLedger(cfg, discard(), io.Discard)
	require.ErrorContains(t, err, "tokenledger init")
}
