package config

import "tokenledger/native/admin"

// Token holds the genesis parameters. Amounts are decimal strings in base
// units.
type Token struct {
	Name             string              `toml:"Name" yaml:"name"`
	Symbol           string              `toml:"Symbol" yaml:"symbol"`
	Decimals         uint8               `toml:"Decimals" yaml:"decimals"`
	Description      string              `toml:"Description" yaml:"description"`
	InitialSupply    string              `toml:"InitialSupply" yaml:"initial_supply"`
	MaxSupply        string              `toml:"MaxSupply" yaml:"max_supply"`
	Admin            string              `toml:"Admin" yaml:"admin"`
	EnableSetBalance bool                `toml:"EnableSetBalance" yaml:"enable_set_balance"`
	Links            admin.ExternalLinks `toml:"Links" yaml:"links"`
}

// Storage selects the snapshot backend.
type Storage struct {
	Backend string `toml:"Backend" yaml:"backend"`
	Path    string `toml:"Path" yaml:"path"`
}

// Logging configures observability/logging.
type Logging struct {
	Env        string `toml:"Env" yaml:"env"`
	Level      string `toml:"Level" yaml:"level"`
	File       string `toml:"File" yaml:"file"`
	MaxSizeMB  int    `toml:"MaxSizeMB" yaml:"max_size_mb"`
	MaxBackups int    `toml:"MaxBackups" yaml:"max_backups"`
	MaxAgeDays int    `toml:"MaxAgeDays" yaml:"max_age_days"`
}

// Server configures the status endpoint started by `tokenledger serve`.
type Server struct {
	ListenAddress string `toml:"ListenAddress" yaml:"listen"`
}

// Config is the whole file.
type Config struct {
	Token             Token   `toml:"Token" yaml:"token"`
	Storage           Storage `toml:"Storage" yaml:"storage"`
	Logging           Logging `toml:"Logging" yaml:"logging"`
	Server            Server  `toml:"Server" yaml:"server"`
	Capacity          int     `toml:"Capacity" yaml:"capacity"`
	AdminKeystorePath string  `toml:"AdminKeystorePath" yaml:"admin_keystore"`
}
