package config

import (
	"fmt"
	"strings"

	"github.com/holiman/uint256"

	ledgererrors "tokenledger/core/errors"
	"tokenledger/crypto"
	"tokenledger/native/admin"
	"tokenledger/native/token"
	"tokenledger/storage"
)

// Validate checks the file-level constraints and that the token section
// converts into valid initialisation parameters.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Token.Name) == "" {
		return fmt.Errorf("%w: token: name required", ledgererrors.ErrInvalidConfig)
	}
	if strings.TrimSpace(c.Token.Symbol) == "" {
		return fmt.Errorf("%w: token: symbol required", ledgererrors.ErrInvalidConfig)
	}
	switch c.Storage.Backend {
	case storage.BackendMemory, storage.BackendLevelDB, storage.BackendBolt:
	default:
		return fmt.Errorf("%w: storage: unknown backend %q", ledgererrors.ErrInvalidConfig, c.Storage.Backend)
	}
	if c.Storage.Backend != storage.BackendMemory && strings.TrimSpace(c.Storage.Path) == "" {
		return fmt.Errorf("%w: storage: path required for %s", ledgererrors.ErrInvalidConfig, c.Storage.Backend)
	}
	if c.Capacity < 0 || c.Capacity > token.MaxCapacity {
		return fmt.Errorf("%w: capacity must be between 0 and %d", ledgererrors.ErrInvalidConfig, token.MaxCapacity)
	}
	params, err := c.Init()
	if err != nil {
		return err
	}
	return params.Validate()
}

// Init converts the token section into initialisation parameters.
func (c *Config) Init() (admin.Init, error) {
	initial, err := parseAmount("initial_supply", c.Token.InitialSupply)
	if err != nil {
		return admin.Init{}, err
	}
	maxSupply, err := parseAmount("max_supply", c.Token.MaxSupply)
	if err != nil {
		return admin.Init{}, err
	}
	adminActor, err := crypto.ParseActorID(strings.TrimSpace(c.Token.Admin))
	if err != nil {
		return admin.Init{}, fmt.Errorf("%w: token: admin: %v", ledgererrors.ErrInvalidConfig, err)
	}
	return admin.Init{
		Name:             c.Token.Name,
		Symbol:           c.Token.Symbol,
		Decimals:         c.Token.Decimals,
		Description:      c.Token.Description,
		ExternalLinks:    c.Token.Links,
		InitialSupply:    initial,
		MaxSupply:        maxSupply,
		Admin:            adminActor,
		EnableSetBalance: c.Token.EnableSetBalance,
	}, nil
}

func parseAmount(field, value string) (*uint256.Int, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return nil, fmt.Errorf("%w: token: %s required", ledgererrors.ErrInvalidConfig, field)
	}
	if trimmed[0] < '0' || trimmed[0] > '9' {
		return nil, fmt.Errorf("%w: token: %s: %q is not an unsigned decimal", ledgererrors.ErrInvalidConfig, field, trimmed)
	}
	amount, err := uint256.FromDecimal(trimmed)
	if err != nil {
		return nil, fmt.Errorf("%w: token: %s: %v", ledgererrors.ErrInvalidConfig, field, err)
	}
	return amount, nil
}
