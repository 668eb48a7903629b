package core

import (
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/holiman/uint256"

	ledgererrors "tokenledger/core/errors"
	"tokenledger/core/events"
	"tokenledger/crypto"
	"tokenledger/native/admin"
	"tokenledger/native/pausable"
	"tokenledger/native/roles"
	"tokenledger/native/token"
	"tokenledger/observability/metrics"
)

// Program is the single owner of the ledger. Every call takes the program
// lock, so concurrent callers observe a strictly serial history.
type Program struct {
	mu sync.Mutex

	store  *token.Store
	roles  *roles.Service
	pause  *pausable.Service
	token  *token.Service
	admin  *admin.Service
	events *gatedEmitter

	logger   *slog.Logger
	metrics  *metrics.LedgerMetrics
	capacity int

	// delivering is set while one goroutine forwards buffered events to the
	// sink with mu released.
	delivering bool

	killed    bool
	inheritor crypto.ActorID
}

// Option customises a Program at construction.
type Option func(*Program)

// WithLogger sets the logger used for per-call records.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Program) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// WithEmitter sets the notification sink. Events are buffered under the
// program lock and delivered after it is released, in call order, so the sink
// may read from or call back into the Program. When several goroutines call
// concurrently, one of them may deliver events produced by the others.
func WithEmitter(emitter events.Emitter) Option {
	return func(p *Program) { p.events.target = events.OrNoop(emitter) }
}

// WithMetrics enables Prometheus accounting of calls and ledger shape.
func WithMetrics(m *metrics.LedgerMetrics) Option {
	return func(p *Program) { p.metrics = m }
}

// WithCapacity sets the initial reserved size of both maps.
func WithCapacity(capacity int) Option {
	return func(p *Program) { p.capacity = capacity }
}

func newProgram(opts []Option) *Program {
	p := &Program{
		events:   &gatedEmitter{target: events.NoopEmitter{}},
		logger:   slog.New(slog.NewJSONHandler(io.Discard, nil)),
		capacity: token.DefaultCapacity,
	}
	for _, opt := range opts {
		opt(p)
	}
	p.logger = p.logger.With(slog.String("component", "ledger"))
	return p
}

func (p *Program) wire(store *token.Store) {
	p.store = store
	p.roles = roles.NewService(p.events)
	p.pause = pausable.NewService(p.roles, p.events)
	p.token = token.NewService(p.store, p.pause, p.events)
	p.admin = admin.NewService(p.store, p.roles, p.pause, p.events)
}

// New validates params and builds a seeded program: the admin holds every
// role and the initial supply.
func New(params admin.Init, opts ...Option) (*Program, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	p := newProgram(opts)
	p.wire(token.NewStore(token.Meta{Name: params.Name, Symbol: params.Symbol, Decimals: params.Decimals}, p.capacity))
	if err := p.pause.Seed(params.Admin); err != nil {
		return nil, err
	}
	if err := p.admin.Seed(params); err != nil {
		return nil, err
	}
	p.publishState()
	p.deliver()
	p.logger.Info("ledger initialised",
		slog.String("symbol", params.Symbol),
		slog.String("admin", params.Admin.String()),
		slog.String("total_supply", p.store.TotalSupply().Dec()))
	return p, nil
}

// run executes one mutating call under the program lock and records its
// outcome.
func (p *Program) run(op string, caller crypto.ActorID, fn func() (bool, error)) (bool, error) {
	mutated, err := p.runLocked(op, caller, fn)
	p.deliver()
	return mutated, err
}

func (p *Program) runLocked(op string, caller crypto.ActorID, fn func() (bool, error)) (bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	start := time.Now()
	buffered := len(p.events.pending)
	var (
		mutated bool
		err     error
	)
	if p.killed {
		err = ledgererrors.ErrTerminated
	} else {
		mutated, err = fn()
	}
	result := ledgererrors.Kind(err)
	p.metrics.ObserveOperation(op, result, time.Since(start))

	attrs := []any{
		slog.String("op", op),
		slog.String("op_id", uuid.NewString()),
		slog.String("caller", caller.String()),
		slog.String("result", result),
	}
	if err != nil {
		p.events.pending = p.events.pending[:buffered]
		p.logger.Warn("ledger call rejected", append(attrs, slog.Any("error", err))...)
		return false, err
	}
	if mutated {
		p.publishState()
	}
	p.logger.Debug("ledger call", append(attrs, slog.Bool("mutated", mutated))...)
	return mutated, nil
}

// read executes a query under the program lock.
func (p *Program) read(fn func() error) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.killed {
		return ledgererrors.ErrTerminated
	}
	return fn()
}

// deliver forwards buffered events to the sink with the lock released. Only
// one goroutine delivers at a time; it keeps going until the buffer is empty.
func (p *Program) deliver() {
	p.mu.Lock()
	if p.delivering {
		p.mu.Unlock()
		return
	}
	p.delivering = true
	for len(p.events.pending) > 0 {
		batch := p.events.pending
		p.events.pending = nil
		p.mu.Unlock()
		for _, e := range batch {
			p.events.target.Emit(e)
		}
		p.mu.Lock()
	}
	p.delivering = false
	p.mu.Unlock()
}

func (p *Program) publishState() {
	if p.metrics == nil {
		return
	}
	total := p.store.TotalSupply()
	p.metrics.SetLedgerState(total.ToBig(), p.store.Balances().Len(), p.store.Allowances().Len(), p.pause.IsPaused())
}

func (p *Program) Approve(caller, spender crypto.ActorID, value *uint256.Int) (bool, error) {
	return p.run("approve", caller, func() (bool, error) {
		return p.token.Approve(caller, spender, value)
	})
}

func (p *Program) Transfer(caller, to crypto.ActorID, value *uint256.Int) (bool, error) {
	return p.run("transfer", caller, func() (bool, error) {
		return p.token.Transfer(caller, to, value)
	})
}

// TransferFrom moves value from owner to to, spending the allowance owner
// granted the caller.
func (p *Program) TransferFrom(caller, owner, to crypto.ActorID, value *uint256.Int) (bool, error) {
	return p.run("transfer_from", caller, func() (bool, error) {
		return p.token.TransferFrom(caller, owner, to, value)
	})
}

// SetBalance overwrites the caller's own balance. It bypasses the supply cap
// and only works when enabled at initialisation.
func (p *Program) SetBalance(caller crypto.ActorID, value *uint256.Int) (bool, error) {
	return p.run("set_balance", caller, func() (bool, error) {
		return p.token.SetBalance(caller, value)
	})
}

func (p *Program) Mint(caller, to crypto.ActorID, value *uint256.Int) (bool, error) {
	return p.run("mint", caller, func() (bool, error) {
		return p.admin.Mint(caller, to, value)
	})
}

func (p *Program) Burn(caller, from crypto.ActorID, value *uint256.Int) (bool, error) {
	return p.run("burn", caller, func() (bool, error) {
		return p.admin.Burn(caller, from, value)
	})
}

func (p *Program) TransferToUsers(caller crypto.ActorID, to []crypto.ActorID, value *uint256.Int) (bool, error) {
	return p.run("transfer_to_users", caller, func() (bool, error) {
		return p.admin.TransferToUsers(caller, to, value)
	})
}

func (p *Program) GrantRole(caller, to crypto.ActorID, role admin.RoleName) (bool, error) {
	return p.run("grant_role", caller, func() (bool, error) {
		return p.admin.GrantRole(caller, to, role)
	})
}

func (p *Program) RemoveRole(caller, from crypto.ActorID, role admin.RoleName) (bool, error) {
	return p.run("remove_role", caller, func() (bool, error) {
		return p.admin.RemoveRole(caller, from, role)
	})
}

func (p *Program) Pause(caller crypto.ActorID) (bool, error) {
	return p.run("pause", caller, func() (bool, error) {
		return p.pause.Pause(caller)
	})
}

func (p *Program) Unpause(caller crypto.ActorID) (bool, error) {
	return p.run("unpause", caller, func() (bool, error) {
		return p.pause.Unpause(caller)
	})
}

// DelegateAdmin hands the pause-admin role from the caller to actor.
func (p *Program) DelegateAdmin(caller, actor crypto.ActorID) (bool, error) {
	return p.run("delegate_admin", caller, func() (bool, error) {
		return p.pause.DelegateAdmin(caller, actor)
	})
}

func (p *Program) AllowancesReserve(caller crypto.ActorID, additional int) error {
	_, err := p.run("allowances_reserve", caller, func() (bool, error) {
		return false, p.admin.AllowancesReserve(additional)
	})
	return err
}

func (p *Program) BalancesReserve(caller crypto.ActorID, additional int) error {
	_, err := p.run("balances_reserve", caller, func() (bool, error) {
		return false, p.admin.BalancesReserve(additional)
	})
	return err
}

// Kill terminates the program in favour of inheritor. Every later call fails
// with ErrTerminated. Snapshot and Inheritor stay available.
func (p *Program) Kill(caller, inheritor crypto.ActorID) error {
	_, err := p.run("kill", caller, func() (bool, error) {
		if err := p.admin.Kill(caller, inheritor); err != nil {
			return false, err
		}
		p.killed = true
		p.inheritor = inheritor
		return true, nil
	})
	return err
}

// Inheritor reports the heir named by Kill and whether the program is
// terminated.
func (p *Program) Inheritor() (crypto.ActorID, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.inheritor, p.killed
}

func (p *Program) BalanceOf(account crypto.ActorID) (*uint256.Int, error) {
	var out *uint256.Int
	err := p.read(func() (err error) {
		out, err = p.token.BalanceOf(account)
		return err
	})
	return out, err
}

func (p *Program) Allowance(owner, spender crypto.ActorID) (*uint256.Int, error) {
	var out *uint256.Int
	err := p.read(func() (err error) {
		out, err = p.token.Allowance(owner, spender)
		return err
	})
	return out, err
}

func (p *Program) TotalSupply() (*uint256.Int, error) {
	var out *uint256.Int
	err := p.read(func() (err error) {
		out, err = p.token.TotalSupply()
		return err
	})
	return out, err
}

func (p *Program) IsPaused() (bool, error) {
	var out bool
	err := p.read(func() error {
		out = p.pause.IsPaused()
		return nil
	})
	return out, err
}

// HasRole looks a role up by its registered name.
func (p *Program) HasRole(actor crypto.ActorID, name string) (bool, error) {
	var out bool
	err := p.read(func() (err error) {
		out, err = p.roles.HasRoleByName(actor, name)
		return err
	})
	return out, err
}

// Roles lists every registered role name.
func (p *Program) Roles() ([]string, error) {
	var out []string
	err := p.read(func() error {
		out = p.roles.Roles()
		return nil
	})
	return out, err
}

func (p *Program) RolesOf(actor crypto.ActorID) ([]string, error) {
	var out []string
	err := p.read(func() error {
		out = p.roles.RolesOf(actor)
		return nil
	})
	return out, err
}

// MapsData reports allowances and balances map statistics, in that order.
func (p *Program) MapsData() (token.MapStats, token.MapStats, error) {
	var allowances, balances token.MapStats
	err := p.read(func() (err error) {
		allowances, balances, err = p.admin.MapsData()
		return err
	})
	return allowances, balances, err
}

func (p *Program) Balances(skip, take int) ([]token.Holding, error) {
	var out []token.Holding
	err := p.read(func() (err error) {
		out, err = p.admin.Balances(skip, take)
		return err
	})
	return out, err
}

func (p *Program) Allowances(skip, take int) ([]token.AllowanceEntry, error) {
	var out []token.AllowanceEntry
	err := p.read(func() (err error) {
		out, err = p.admin.Allowances(skip, take)
		return err
	})
	return out, err
}

// Info describes the token and the live ledger totals.
type Info struct {
	Name          string
	Symbol        string
	Decimals      uint8
	Description   string
	ExternalLinks admin.ExternalLinks
	MaxSupply     *uint256.Int
	TotalSupply   *uint256.Int
	Holders       int
	Paused        bool
}

func (p *Program) Info() (Info, error) {
	var out Info
	err := p.read(func() error {
		meta := p.store.Meta()
		extra, err := p.admin.Meta()
		if err != nil {
			return err
		}
		out = Info{
			Name:          meta.Name,
			Symbol:        meta.Symbol,
			Decimals:      meta.Decimals,
			Description:   extra.Description,
			ExternalLinks: extra.ExternalLinks,
			MaxSupply:     extra.MaxSupply,
			TotalSupply:   p.store.TotalSupply(),
			Holders:       p.store.Balances().Len(),
			Paused:        p.pause.IsPaused(),
		}
		return nil
	})
	return out, err
}

// gatedEmitter buffers events for deliver unless muted. Restore mutes it
// while replaying role grants. pending is guarded by the program lock.
type gatedEmitter struct {
	target  events.Emitter
	muted   bool
	pending []events.Event
}

func (g *gatedEmitter) Emit(e events.Event) {
	if g.muted {
		return
	}
	g.pending = append(g.pending, e)
}
