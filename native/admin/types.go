package admin

import (
	"fmt"
	"unicode/utf8"

	"github.com/holiman/uint256"

	ledgererrors "tokenledger/core/errors"
	"tokenledger/crypto"
	"tokenledger/native/roles"
)

// MaxDescriptionLength bounds the token description, counted in characters.
const MaxDescriptionLength = 500

// Roles administered by this package.
var (
	FungibleAdmin  = roles.Declare("FungibleAdmin")
	FungibleBurner = roles.Declare("FungibleBurner")
	FungibleMinter = roles.Declare("FungibleMinter")
)

// RoleName is the caller-facing selector for the roles an admin may grant.
type RoleName string

const (
	RoleAdmin  RoleName = "Admin"
	RoleBurner RoleName = "Burner"
	RoleMinter RoleName = "Minter"
)

func (r RoleName) role() (roles.Role, error) {
	switch r {
	case RoleAdmin:
		return FungibleAdmin, nil
	case RoleBurner:
		return FungibleBurner, nil
	case RoleMinter:
		return FungibleMinter, nil
	default:
		return roles.Role{}, fmt.Errorf("admin: role %q: %w", string(r), ledgererrors.ErrUnknownRole)
	}
}

// ExternalLinks points at off-ledger resources describing the token.
type ExternalLinks struct {
	Image      string  `json:"image" yaml:"image" toml:"Image"`
	Website    *string `json:"website,omitempty" yaml:"website,omitempty" toml:"Website,omitempty"`
	Telegram   *string `json:"telegram,omitempty" yaml:"telegram,omitempty" toml:"Telegram,omitempty"`
	Twitter    *string `json:"twitter,omitempty" yaml:"twitter,omitempty" toml:"Twitter,omitempty"`
	Discord    *string `json:"discord,omitempty" yaml:"discord,omitempty" toml:"Discord,omitempty"`
	Tokenomics *string `json:"tokenomics,omitempty" yaml:"tokenomics,omitempty" toml:"Tokenomics,omitempty"`
}

// AdditionalMeta is fixed at initialisation.
type AdditionalMeta struct {
	Description   string
	ExternalLinks ExternalLinks
	MaxSupply     *uint256.Int
}

// Init carries the construction parameters supplied by the bootstrap layer.
type Init struct {
	Name             string
	Symbol           string
	Decimals         uint8
	Description      string
	ExternalLinks    ExternalLinks
	InitialSupply    *uint256.Int
	MaxSupply        *uint256.Int
	Admin            crypto.ActorID
	EnableSetBalance bool
}

// Validate checks the construction-time invariants. Failures wrap
// ErrInvalidConfig and must abort initialisation.
func (i Init) Validate() error {
	if i.MaxSupply == nil {
		return fmt.Errorf("%w: max supply required", ledgererrors.ErrInvalidConfig)
	}
	if i.InitialSupply != nil && i.InitialSupply.Gt(i.MaxSupply) {
		return fmt.Errorf("%w: %w (%s > %s)", ledgererrors.ErrInvalidConfig, ledgererrors.ErrSupplyExceedsCap,
			i.InitialSupply.Dec(), i.MaxSupply.Dec())
	}
	if n := utf8.RuneCountInString(i.Description); n > MaxDescriptionLength {
		return fmt.Errorf("%w: %w (%d > %d characters)", ledgererrors.ErrInvalidConfig, ledgererrors.ErrDescriptionTooLong,
			n, MaxDescriptionLength)
	}
	return nil
}
