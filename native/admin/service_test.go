package admin

import (
	"strings"
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/require"

	ledgererrors "tokenledger/core/errors"
	"tokenledger/core/events"
	"tokenledger/crypto"
	"tokenledger/native/pausable"
	"tokenledger/native/roles"
	"tokenledger/native/token"
)

var (
	owner   = crypto.ActorIDFromUint64(1)
	alice   = crypto.ActorIDFromUint64(2)
	bob     = crypto.ActorIDFromUint64(3)
	charlie = crypto.ActorIDFromUint64(4)
)

func u(v uint64) *uint256.Int { return uint256.NewInt(v) }

type fixture struct {
	admin *Service
	store *token.Store
	roles *roles.Service
	pause *pausable.Service
	rec   *events.Recorder
}

func testInit() Init {
	website := "https://vara.network"
	return Init{
		Name:          "Vara Network",
		Symbol:        "VARA",
		Decimals:      12,
		Description:   "Description",
		ExternalLinks: ExternalLinks{Image: "image", Website: &website},
		InitialSupply: u(100),
		MaxSupply:     u(1000),
		Admin:         owner,
	}
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	rec := &events.Recorder{}
	params := testInit()
	store := token.NewStore(token.Meta{Name: params.Name, Symbol: params.Symbol, Decimals: params.Decimals}, 16)
	rolesService := roles.NewService(rec)
	pause := pausable.NewService(rolesService, rec)
	require.NoError(t, pause.Seed(owner))
	svc := NewService(store, rolesService, pause, rec)
	require.NoError(t, svc.Seed(params))
	rec.Reset()
	return &fixture{admin: svc, store: store, roles: rolesService, pause: pause, rec: rec}
}

func TestInitValidate(t *testing.T) {
	params := testInit()
	require.NoError(t, params.Validate())

	params.InitialSupply = u(1001)
	err := params.Validate()
	require.ErrorIs(t, err, ledgererrors.ErrInvalidConfig)
	require.ErrorIs(t, err, ledgererrors.ErrSupplyExceedsCap)

	params = testInit()
	params.Description = strings.Repeat("ж", MaxDescriptionLength)
	require.NoError(t, params.Validate(), "length is counted in characters, not bytes")
	params.Description += "x"
	require.ErrorIs(t, params.Validate(), ledgererrors.ErrDescriptionTooLong)

	params = testInit()
	params.MaxSupply = nil
	require.ErrorIs(t, params.Validate(), ledgererrors.ErrInvalidConfig)
}

func TestSeedCreditsInitialSupply(t *testing.T) {
	f := newFixture(t)

	require.Equal(t, "100", token.BalanceOf(f.store.Balances(), owner).Dec())
	require.Equal(t, "100", f.store.TotalSupply().Dec())
	for _, name := range []string{"FungibleAdmin", "FungibleBurner", "FungibleMinter", "PauseAdmin"} {
		has, err := f.roles.HasRoleByName(owner, name)
		require.NoError(t, err)
		require.True(t, has, name)
	}
	require.ErrorIs(t, f.admin.Seed(testInit()), ledgererrors.ErrAlreadyInitialized)

	meta, err := f.admin.Meta()
	require.NoError(t, err)
	require.Equal(t, "Description", meta.Description)
	require.Equal(t, "1000", meta.MaxSupply.Dec())
	require.Equal(t, "https://vara.network", *meta.ExternalLinks.Website)
}

func TestMintBurnAuthorization(t *testing.T) {
	f := newFixture(t)

	_, err := f.admin.Mint(alice, alice, u(10))
	require.ErrorIs(t, err, ledgererrors.ErrBadOrigin)
	_, err = f.admin.Burn(alice, owner, u(10))
	require.ErrorIs(t, err, ledgererrors.ErrBadOrigin)

	mutated, err := f.admin.Mint(owner, alice, u(0))
	require.NoError(t, err)
	require.False(t, mutated)

	mutated, err = f.admin.Mint(owner, alice, u(400))
	require.NoError(t, err)
	require.True(t, mutated)

	_, err = f.admin.Mint(owner, alice, u(501))
	require.ErrorIs(t, err, ledgererrors.ErrMaxSupplyReached)
	require.Equal(t, "500", f.store.TotalSupply().Dec())

	mutated, err = f.admin.Burn(owner, alice, u(150))
	require.NoError(t, err)
	require.True(t, mutated)
	require.Equal(t, "250", token.BalanceOf(f.store.Balances(), alice).Dec())
	require.Equal(t, "350", f.store.TotalSupply().Dec())

	got := f.rec.Events()
	require.Len(t, got, 2)
	require.Equal(t, events.TypeMinted, got[0].EventType())
	require.Equal(t, events.TypeBurned, got[1].EventType())
}

func TestPausedAdminOperations(t *testing.T) {
	f := newFixture(t)
	_, err := f.pause.Pause(owner)
	require.NoError(t, err)
	f.rec.Reset()

	_, err = f.admin.Mint(owner, alice, u(1))
	require.ErrorIs(t, err, ledgererrors.ErrPaused)
	_, err = f.admin.Burn(owner, owner, u(1))
	require.ErrorIs(t, err, ledgererrors.ErrPaused)
	_, err = f.admin.TransferToUsers(owner, []crypto.ActorID{alice}, u(1))
	require.ErrorIs(t, err, ledgererrors.ErrPaused)
	_, err = f.admin.GrantRole(owner, alice, RoleMinter)
	require.ErrorIs(t, err, ledgererrors.ErrPaused)
	require.ErrorIs(t, f.admin.BalancesReserve(10), ledgererrors.ErrPaused)
	require.ErrorIs(t, f.admin.AllowancesReserve(10), ledgererrors.ErrPaused)
	require.Empty(t, f.rec.Events())

	require.NoError(t, f.admin.Kill(owner, alice), "kill is allowed while paused")
}

func TestTransferToUsers(t *testing.T) {
	f := newFixture(t)

	_, err := f.admin.TransferToUsers(alice, []crypto.ActorID{bob}, u(1))
	require.ErrorIs(t, err, ledgererrors.ErrBadOrigin)

	_, err = f.admin.TransferToUsers(owner, []crypto.ActorID{alice, bob, charlie}, u(40))
	require.ErrorIs(t, err, ledgererrors.ErrInsufficientBalance)
	require.Equal(t, 1, f.store.Balances().Len())

	mutated, err := f.admin.TransferToUsers(owner, []crypto.ActorID{alice, bob, charlie}, u(30))
	require.NoError(t, err)
	require.True(t, mutated)
	require.Equal(t, "10", token.BalanceOf(f.store.Balances(), owner).Dec())
	require.Equal(t, "100", f.store.TotalSupply().Dec())

	page, err := f.admin.Balances(0, 10)
	require.NoError(t, err)
	require.Len(t, page, 4)

	evt, ok := f.rec.Events()[0].(events.TransferredToUsers)
	require.True(t, ok)
	require.Len(t, evt.To, 3)
}

func TestRoleManagement(t *testing.T) {
	f := newFixture(t)

	_, err := f.admin.GrantRole(alice, bob, RoleMinter)
	require.ErrorIs(t, err, ledgererrors.ErrBadOrigin)
	_, err = f.admin.GrantRole(owner, bob, RoleName("Oracle"))
	require.ErrorIs(t, err, ledgererrors.ErrUnknownRole)

	granted, err := f.admin.GrantRole(owner, alice, RoleMinter)
	require.NoError(t, err)
	require.True(t, granted)
	granted, err = f.admin.GrantRole(owner, alice, RoleMinter)
	require.NoError(t, err)
	require.False(t, granted)

	mutated, err := f.admin.Mint(alice, bob, u(5))
	require.NoError(t, err)
	require.True(t, mutated)

	removed, err := f.admin.RemoveRole(owner, alice, RoleMinter)
	require.NoError(t, err)
	require.True(t, removed)
	_, err = f.admin.Mint(alice, bob, u(5))
	require.ErrorIs(t, err, ledgererrors.ErrBadOrigin)
}

func TestKillRequiresAdmin(t *testing.T) {
	f := newFixture(t)

	require.ErrorIs(t, f.admin.Kill(alice, alice), ledgererrors.ErrBadOrigin)
	require.NoError(t, f.admin.Kill(owner, bob))

	got := f.rec.Events()
	require.Len(t, got, 1)
	require.Equal(t, events.Killed{Inheritor: bob}, got[0])
}

func TestReserveAndMapsData(t *testing.T) {
	f := newFixture(t)

	require.NoError(t, f.admin.BalancesReserve(100))
	require.NoError(t, f.admin.AllowancesReserve(50))
	allowances, balances, err := f.admin.MapsData()
	require.NoError(t, err)
	require.Equal(t, token.MapStats{Len: 0, Capacity: 50}, allowances)
	require.Equal(t, token.MapStats{Len: 1, Capacity: 101}, balances)

	require.ErrorIs(t, f.admin.BalancesReserve(token.MaxCapacity), ledgererrors.ErrCapacityExceeded)
	require.ErrorIs(t, f.admin.AllowancesReserve(1<<40), ledgererrors.ErrCapacityExceeded)
	allowances, balances, err = f.admin.MapsData()
	require.NoError(t, err)
	require.Equal(t, 50, allowances.Capacity)
	require.Equal(t, 101, balances.Capacity)
}

func TestRestoreRequiresMaxSupply(t *testing.T) {
	rolesService := roles.NewService(nil)
	svc := NewService(token.NewStore(token.Meta{}, 1), rolesService, nil, nil)

	err := svc.Restore(AdditionalMeta{Description: "no cap"})
	require.ErrorIs(t, err, ledgererrors.ErrInvalidConfig)
	_, err = svc.Meta()
	require.ErrorIs(t, err, ledgererrors.ErrNotInitialized)
	require.Empty(t, rolesService.Roles(), "rejected restore registers nothing")

	require.NoError(t, svc.Restore(AdditionalMeta{MaxSupply: u(7)}))
	meta, err := svc.Meta()
	require.NoError(t, err)
	require.Equal(t, "7", meta.MaxSupply.Dec())
}

func TestUnseededService(t *testing.T) {
	svc := NewService(token.NewStore(token.Meta{}, 1), roles.NewService(nil), nil, nil)
	_, err := svc.Mint(owner, owner, u(1))
	require.ErrorIs(t, err, ledgererrors.ErrNotInitialized)
	_, _, err = svc.MapsData()
	require.ErrorIs(t, err, ledgererrors.ErrNotInitialized)
}
