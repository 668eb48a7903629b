package core

import (
	"fmt"
	"log/slog"
	"math/big"

	"github.com/holiman/uint256"

	"tokenledger/core/state"
	"tokenledger/crypto"
	"tokenledger/native/admin"
	"tokenledger/native/pausable"
	"tokenledger/native/token"
)

// Snapshot captures the complete program state, including the terminal state
// left by Kill.
func (p *Program) Snapshot() (*state.Snapshot, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	extra, err := p.admin.Meta()
	if err != nil {
		return nil, err
	}
	meta := p.store.Meta()
	allowanceStats, balanceStats := token.MapsData(p.store.Allowances(), p.store.Balances())
	snap := &state.Snapshot{
		Name:               meta.Name,
		Symbol:             meta.Symbol,
		Decimals:           meta.Decimals,
		Description:        extra.Description,
		Image:              extra.ExternalLinks.Image,
		Links:              linksToState(extra.ExternalLinks),
		MaxSupply:          extra.MaxSupply.ToBig(),
		TotalSupply:        p.store.TotalSupply().ToBig(),
		SetBalanceEnabled:  p.store.SetBalanceEnabled(),
		BalancesCapacity:   uint64(balanceStats.Capacity),
		AllowancesCapacity: uint64(allowanceStats.Capacity),
		Paused:             p.pause.IsPaused(),
		Killed:             p.killed,
	}
	for _, h := range p.store.Balances().Holdings() {
		snap.Balances = append(snap.Balances, state.Balance{Actor: h.Actor.Bytes(), Amount: h.Amount.ToBig()})
	}
	for _, a := range p.store.Allowances().Entries() {
		snap.Allowances = append(snap.Allowances, state.Allowance{
			Owner:   a.Owner.Bytes(),
			Spender: a.Spender.Bytes(),
			Amount:  a.Amount.ToBig(),
		})
	}
	for _, actor := range p.roles.Holders() {
		snap.Roles = append(snap.Roles, state.RoleGrant{Actor: actor.Bytes(), Roles: p.roles.RolesOf(actor)})
	}
	if p.killed {
		snap.Inheritor = p.inheritor.Bytes()
	}
	return snap, nil
}

// Restore rebuilds a program from snap. The balances must sum to the total
// supply and no entry may be zero. Restoring emits no events.
func Restore(snap *state.Snapshot, opts ...Option) (*Program, error) {
	if snap == nil {
		return nil, fmt.Errorf("core: restore: snapshot must not be nil")
	}
	p := newProgram(opts)
	p.events.muted = true
	defer func() { p.events.muted = false }()

	meta := token.Meta{Name: snap.Name, Symbol: snap.Symbol, Decimals: snap.Decimals}
	p.wire(token.NewStoreSized(meta, restoredCapacity(snap.BalancesCapacity), restoredCapacity(snap.AllowancesCapacity)))

	holdings := make([]token.Holding, 0, len(snap.Balances))
	for _, b := range snap.Balances {
		actor, err := crypto.ActorIDFromBytes(b.Actor)
		if err != nil {
			return nil, fmt.Errorf("core: restore: balance: %w", err)
		}
		amount, err := amountFromBig(b.Amount)
		if err != nil {
			return nil, fmt.Errorf("core: restore: balance of %s: %w", actor, err)
		}
		holdings = append(holdings, token.Holding{Actor: actor, Amount: amount})
	}
	allowances := make([]token.AllowanceEntry, 0, len(snap.Allowances))
	for _, a := range snap.Allowances {
		owner, err := crypto.ActorIDFromBytes(a.Owner)
		if err != nil {
			return nil, fmt.Errorf("core: restore: allowance owner: %w", err)
		}
		spender, err := crypto.ActorIDFromBytes(a.Spender)
		if err != nil {
			return nil, fmt.Errorf("core: restore: allowance spender: %w", err)
		}
		amount, err := amountFromBig(a.Amount)
		if err != nil {
			return nil, fmt.Errorf("core: restore: allowance %s/%s: %w", owner, spender, err)
		}
		allowances = append(allowances, token.AllowanceEntry{Owner: owner, Spender: spender, Amount: amount})
	}
	total, err := amountFromBig(snap.TotalSupply)
	if err != nil {
		return nil, fmt.Errorf("core: restore: total supply: %w", err)
	}
	if err := p.store.Import(holdings, allowances, total); err != nil {
		return nil, fmt.Errorf("core: restore: %w", err)
	}
	p.store.EnableSetBalance(snap.SetBalanceEnabled)

	maxSupply, err := amountFromBig(snap.MaxSupply)
	if err != nil {
		return nil, fmt.Errorf("core: restore: max supply: %w", err)
	}
	links := linksFromState(snap.Links)
	links.Image = snap.Image
	if err := p.roles.RegisterRole(pausable.PauseAdmin); err != nil {
		return nil, err
	}
	if err := p.admin.Restore(admin.AdditionalMeta{
		Description:   snap.Description,
		ExternalLinks: links,
		MaxSupply:     maxSupply,
	}); err != nil {
		return nil, err
	}
	for _, grant := range snap.Roles {
		actor, err := crypto.ActorIDFromBytes(grant.Actor)
		if err != nil {
			return nil, fmt.Errorf("core: restore: role holder: %w", err)
		}
		for _, name := range grant.Roles {
			if _, err := p.roles.GrantRoleByName(actor, name); err != nil {
				return nil, fmt.Errorf("core: restore: role %q: %w", name, err)
			}
		}
	}
	if snap.Paused {
		p.pause.Restore(pausable.Paused)
	}
	if snap.Killed {
		inheritor, err := crypto.ActorIDFromBytes(snap.Inheritor)
		if err != nil {
			return nil, fmt.Errorf("core: restore: inheritor: %w", err)
		}
		p.killed = true
		p.inheritor = inheritor
	}

	p.publishState()
	p.logger.Info("ledger restored",
		slog.String("symbol", snap.Symbol),
		slog.Int("holders", p.store.Balances().Len()),
		slog.Bool("killed", p.killed))
	return p, nil
}

// restoredCapacity clamps a persisted reservation to token.MaxCapacity. Zero
// selects the default.
func restoredCapacity(v uint64) int {
	if v > token.MaxCapacity {
		return token.MaxCapacity
	}
	return int(v)
}

func amountFromBig(v *big.Int) (*uint256.Int, error) {
	if v == nil {
		return new(uint256.Int), nil
	}
	if v.Sign() < 0 {
		return nil, fmt.Errorf("negative amount %s", v)
	}
	out, overflow := uint256.FromBig(v)
	if overflow {
		return nil, fmt.Errorf("amount %s exceeds 256 bits", v)
	}
	return out, nil
}

var linkNames = []string{"website", "telegram", "twitter", "discord", "tokenomics"}

func linkFields(links *admin.ExternalLinks) []**string {
	return []**string{&links.Website, &links.Telegram, &links.Twitter, &links.Discord, &links.Tokenomics}
}

func linksToState(links admin.ExternalLinks) []state.Link {
	var out []state.Link
	for i, field := range linkFields(&links) {
		if *field != nil {
			out = append(out, state.Link{Name: linkNames[i], URL: **field})
		}
	}
	return out
}

func linksFromState(stored []state.Link) admin.ExternalLinks {
	var links admin.ExternalLinks
	fields := linkFields(&links)
	for _, link := range stored {
		for i, name := range linkNames {
			if link.Name == name {
				url := link.URL
				*fields[i] = &url
			}
		}
	}
	return links
}
