package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"tokenledger/config"
	"tokenledger/core"
	"tokenledger/core/events"
	"tokenledger/core/state"
	"tokenledger/crypto"
	"tokenledger/observability/logging"
	"tokenledger/observability/metrics"
	"tokenledger/rpc"
	"tokenledger/storage"
)

const (
	defaultConfig   = "./config.toml"
	defaultKeystore = "admin.keystore"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	var err error
	switch os.Args[1] {
	case "keygen":
		err = runKeygen(os.Args[2:])
	case "init":
		err = runInit(os.Args[2:])
	case "inspect":
		err = runInspect(os.Args[2:], os.Stdout)
	case "serve":
		err = runServe(os.Args[2:])
	default:
		usage()
		os.Exit(1)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "Usage: tokenledger <command> [flags]")
	fmt.Fprintln(os.Stderr, "")
	fmt.Fprintln(os.Stderr, "Commands:")
	fmt.Fprintln(os.Stderr, "  keygen    generate an admin keystore and print its actor id")
	fmt.Fprintln(os.Stderr, "  init      build the genesis ledger from config and persist its snapshot")
	fmt.Fprintln(os.Stderr, "  inspect   print the persisted ledger summary and digest")
	fmt.Fprintln(os.Stderr, "  serve     restore the ledger and expose the read-only status API")
}

func runKeygen(args []string) error {
	fs := flag.NewFlagSet("keygen", flag.ExitOnError)
	out := fs.String("out", defaultKeystore, "Output path for the generated keystore file")
	passEnv := fs.String("pass-env", config.PassphraseEnv, "Environment variable containing the keystore passphrase")
	force := fs.Bool("force", false, "Overwrite an existing keystore file")
	fs.Parse(args)

	if !*force {
		if _, err := os.Stat(*out); err == nil {
			return fmt.Errorf("keystore file %s already exists (use --force to overwrite)", *out)
		} else if !os.IsNotExist(err) {
			return err
		}
	}
	passphrase, ok := os.LookupEnv(*passEnv)
	if !ok {
		return fmt.Errorf("environment variable %s is not set", *passEnv)
	}
	key, err := crypto.GeneratePrivateKey()
	if err != nil {
		return err
	}
	if err := crypto.SaveToKeystore(*out, key, passphrase); err != nil {
		return fmt.Errorf("failed to write keystore: %w", err)
	}
	logger := logging.Setup("tokenledger", "")
	logger.Info("keystore written",
		slog.String("path", *out),
		slog.String("actor", key.PubKey().ActorID().String()),
		logging.MaskField("passphrase", passphrase))
	return nil
}

// setup loads the config and the process logger built from it.
func setup(path string) (*config.Config, *slog.Logger, io.Closer, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return nil, nil, nil, err
	}
	logger, closer := logging.SetupWithOptions(logging.Options{
		Service:    "tokenledger",
		Env:        cfg.Logging.Env,
		Level:      logging.ParseLevel(cfg.Logging.Level),
		File:       cfg.Logging.File,
		MaxSizeMB:  cfg.Logging.MaxSizeMB,
		MaxBackups: cfg.Logging.MaxBackups,
		MaxAgeDays: cfg.Logging.MaxAgeDays,
	})
	return cfg, logger, closer, nil
}

func runInit(args []string) error {
	fs := flag.NewFlagSet("init", flag.ExitOnError)
	configPath := fs.String("config", defaultConfig, "Path to the ledger config file")
	force := fs.Bool("force", false, "Replace an existing snapshot")
	fs.Parse(args)

	cfg, logger, closer, err := setup(*configPath)
	if err != nil {
		return err
	}
	defer closer.Close()
	return initLedger(cfg, logger, *force)
}

// initLedger builds the genesis ledger described by cfg and stores its
// snapshot. An existing snapshot is kept unless force is set.
func initLedger(cfg *config.Config, logger *slog.Logger, force bool) error {
	params, err := cfg.Init()
	if err != nil {
		return err
	}
	db, err := storage.Open(cfg.Storage.Backend, cfg.Storage.Path)
	if err != nil {
		return err
	}
	defer db.Close()
	manager := state.NewManager(db)

	if !force {
		if _, err := manager.LoadSnapshot(); err == nil {
			return fmt.Errorf("ledger already initialised at %s (use --force to replace)", cfg.Storage.Path)
		} else if !errors.Is(err, state.ErrNoSnapshot) {
			return err
		}
	}
	program, err := core.New(params,
		core.WithLogger(logger),
		core.WithEmitter(events.LogEmitter{Logger: logger}),
		core.WithCapacity(cfg.Capacity))
	if err != nil {
		return err
	}
	snap, err := program.Snapshot()
	if err != nil {
		return err
	}
	if err := manager.SaveSnapshot(snap); err != nil {
		return fmt.Errorf("persist snapshot: %w", err)
	}
	digest, err := snap.Digest()
	if err != nil {
		return err
	}
	logger.Info("genesis snapshot written",
		slog.String("backend", cfg.Storage.Backend),
		slog.String("path", cfg.Storage.Path),
		slog.String("digest", digest.Hex()))
	return nil
}

func runInspect(args []string, out io.Writer) error {
	fs := flag.NewFlagSet("inspect", flag.ExitOnError)
	configPath := fs.String("config", defaultConfig, "Path to the ledger config file")
	fs.Parse(args)

	cfg, logger, closer, err := setup(*configPath)
	if err != nil {
		return err
	}
	defer closer.Close()
	return inspectLedger(cfg, logger, out)
}

func inspectLedger(cfg *config.Config, logger *slog.Logger, out io.Writer) error {
	snap, err := loadSnapshot(cfg)
	if err != nil {
		return err
	}
	digest, err := snap.Digest()
	if err != nil {
		return err
	}
	program, err := core.Restore(snap, core.WithLogger(logger))
	if err != nil {
		return err
	}
	if heir, killed := program.Inheritor(); killed {
		fmt.Fprintf(out, "terminated in favour of %s\n", heir)
		fmt.Fprintf(out, "digest: %s\n", digest.Hex())
		return nil
	}
	info, err := program.Info()
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "token:        %s (%s), %d decimals\n", info.Name, info.Symbol, info.Decimals)
	fmt.Fprintf(out, "total supply: %s / %s\n", info.TotalSupply.Dec(), info.MaxSupply.Dec())
	fmt.Fprintf(out, "holders:      %d\n", info.Holders)
	fmt.Fprintf(out, "paused:       %t\n", info.Paused)
	fmt.Fprintf(out, "digest:       %s\n", digest.Hex())
	return nil
}

func loadSnapshot(cfg *config.Config) (*state.Snapshot, error) {
	db, err := storage.Open(cfg.Storage.Backend, cfg.Storage.Path)
	if err != nil {
		return nil, err
	}
	defer db.Close()
	snap, err := state.NewManager(db).LoadSnapshot()
	if errors.Is(err, state.ErrNoSnapshot) {
		return nil, fmt.Errorf("no ledger at %s (run `tokenledger init` first)", cfg.Storage.Path)
	}
	return snap, err
}

func runServe(args []string) error {
	fs := flag.NewFlagSet("serve", flag.ExitOnError)
	configPath := fs.String("config", defaultConfig, "Path to the ledger config file")
	listen := fs.String("listen", "", "Override the configured listen address")
	fs.Parse(args)

	cfg, logger, closer, err := setup(*configPath)
	if err != nil {
		return err
	}
	defer closer.Close()
	if *listen != "" {
		cfg.Server.ListenAddress = *listen
	}

	snap, err := loadSnapshot(cfg)
	if err != nil {
		return err
	}
	ledgerMetrics := metrics.Ledger()
	program, err := core.Restore(snap, core.WithLogger(logger), core.WithMetrics(ledgerMetrics))
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	handler := rpc.NewRouter(rpc.Config{Program: program, Metrics: ledgerMetrics, Logger: logger})
	if err := rpc.Serve(ctx, cfg.Server.ListenAddress, handler, logger); err != nil {
		return err
	}
	logger.Info("status server stopped")
	return nil
}
