package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"tokenledger/crypto"
	"tokenledger/storage"
)

// PassphraseEnv names the environment variable holding the admin keystore
// passphrase.
const PassphraseEnv = "TOKENLEDGER_KEYSTORE_PASSPHRASE"

// keystoreScrypt is the cost used for keystores generated by Load.
var keystoreScrypt = crypto.StandardScrypt

// Default returns the configuration used for any field a file leaves empty.
func Default() *Config {
	return &Config{
		Token: Token{
			Name:          "Ledger Token",
			Symbol:        "LDG",
			Decimals:      12,
			InitialSupply: "0",
			MaxSupply:     "1000000000000000000000",
		},
		Storage: Storage{Backend: storage.BackendBolt, Path: "./tokenledger-data/ledger.db"},
		Logging: Logging{Env: "local", Level: "info", MaxSizeMB: 100, MaxBackups: 3, MaxAgeDays: 28},
		Server:  Server{ListenAddress: ":8080"},
	}
}

// Load reads the file at path. Files ending in .yaml or .yml are YAML,
// anything else is TOML. A missing TOML file is created with defaults and a
// fresh admin keystore. Unknown keys are rejected.
func Load(path string) (*Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) && !isYAML(path) {
		return createDefault(path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	cfg := Default()
	if isYAML(path) {
		decoder := yaml.NewDecoder(bytes.NewReader(data))
		decoder.KnownFields(true)
		if err := decoder.Decode(cfg); err != nil {
			return nil, fmt.Errorf("decode config %s: %w", path, err)
		}
	} else {
		meta, err := toml.Decode(string(data), cfg)
		if err != nil {
			return nil, fmt.Errorf("decode config %s: %w", path, err)
		}
		if undecoded := meta.Undecoded(); len(undecoded) > 0 {
			return nil, fmt.Errorf("config file %s has unknown key %s", path, undecoded[0])
		}
	}
	cfg.applyDefaults(path)
	if err := ensureAdmin(cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func isYAML(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return true
	}
	return false
}

func (c *Config) applyDefaults(path string) {
	defaults := Default()
	if strings.TrimSpace(c.Storage.Backend) == "" {
		c.Storage.Backend = defaults.Storage.Backend
	}
	if strings.TrimSpace(c.Storage.Path) == "" && c.Storage.Backend != storage.BackendMemory {
		c.Storage.Path = defaults.Storage.Path
	}
	if strings.TrimSpace(c.Server.ListenAddress) == "" {
		c.Server.ListenAddress = defaults.Server.ListenAddress
	}
	if strings.TrimSpace(c.Logging.Level) == "" {
		c.Logging.Level = defaults.Logging.Level
	}
	if strings.TrimSpace(c.Token.InitialSupply) == "" {
		c.Token.InitialSupply = "0"
	}
	if c.Token.Admin == "" && c.AdminKeystorePath == "" {
		c.AdminKeystorePath = defaultKeystorePath(path)
	}
}

// ensureAdmin derives the admin actor from the keystore when the file names
// none, generating the keystore on first use.
func ensureAdmin(cfg *Config) error {
	if strings.TrimSpace(cfg.Token.Admin) != "" {
		return nil
	}
	passphrase := os.Getenv(PassphraseEnv)
	if _, err := os.Stat(cfg.AdminKeystorePath); os.IsNotExist(err) {
		key, genErr := crypto.GeneratePrivateKey()
		if genErr != nil {
			return genErr
		}
		if err := crypto.SaveToKeystoreWithParams(cfg.AdminKeystorePath, key, passphrase, keystoreScrypt); err != nil {
			return err
		}
	} else if err != nil {
		return err
	}
	actor, err := crypto.LoadActor(cfg.AdminKeystorePath, passphrase)
	if err != nil {
		return fmt.Errorf("load admin keystore %s: %w", cfg.AdminKeystorePath, err)
	}
	cfg.Token.Admin = actor.String()
	return nil
}

// createDefault creates and saves a default configuration file.
func createDefault(path string) (*Config, error) {
	cfg := Default()
	cfg.AdminKeystorePath = defaultKeystorePath(path)
	if err := ensureAdmin(cfg); err != nil {
		return nil, err
	}
	if err := persist(path, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func persist(path string, cfg *Config) error {
	dir := filepath.Dir(path)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_TRUNC|os.O_CREATE, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()

	return toml.NewEncoder(f).Encode(cfg)
}

func defaultKeystorePath(configPath string) string {
	dir := filepath.Dir(configPath)
	if dir == "." || dir == "" {
		dir = ""
	}
	return filepath.Join(dir, "admin.keystore")
}
