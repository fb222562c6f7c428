package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/jose-valero/hybrid-guild-bot/internal/app/dispatch"
	"github.com/jose-valero/hybrid-guild-bot/internal/app/service"
	"github.com/jose-valero/hybrid-guild-bot/internal/app/service/mocks"
	"github.com/jose-valero/hybrid-guild-bot/internal/domain"
	"github.com/jose-valero/hybrid-guild-bot/internal/infra/storage"
)

type fixedLatency time.Duration

func (f fixedLatency) HeartbeatLatency() time.Duration { return time.Duration(f) }

type harness struct {
	router   *dispatch.Router
	registry *dispatch.ComponentRegistry
	store    *storage.GuildStateRepo
	economy  *storage.EconomyRepo
	db       *storage.DB
	locker   *mocks.MockChannelLocker
	api      *fakeCommandAPI
}

type harnessOpts struct {
	dir        string
	adminRoles map[string][]string
	devGuild   string
}

// newHarness builds the same object graph the bot binary builds at startup.
func newHarness(t *testing.T, o harnessOpts) *harness {
	t.Helper()
	if o.dir == "" {
		o.dir = t.TempDir()
	}
	ctx := context.Background()
	db, err := storage.Open(ctx, o.dir, "")
	require.NoError(t, err)
	require.NoError(t, db.Migrate(ctx))
	t.Cleanup(func() { _ = db.Close() })

	h := &harness{
		router:   dispatch.NewRouter(nil, nil),
		registry: dispatch.NewComponentRegistry(),
		store:    storage.NewGuildStateRepo(db, nil, nil),
		economy:  storage.NewEconomyRepo(db, nil, nil),
		db:       db,
		locker:   mocks.NewMockChannelLocker(gomock.NewController(t)),
		api:      newFakeCommandAPI(),
	}
	syncer, err := service.NewSyncService(h.api, service.CommandDefinitions(), o.devGuild, nil, nil)
	require.NoError(t, err)
	handlers := service.NewHandlerSet(h.store, h.economy, service.NewGate(o.adminRoles), h.locker, syncer,
		fixedLatency(42*time.Millisecond),
		service.HandlerOptions{Prefix: "!", DevGuildID: o.devGuild}, nil)
	require.NoError(t, handlers.Register(h.router, h.registry))
	h.registry.Seal()
	return h
}

func (h *harness) text(t *testing.T, a dispatch.Actor, content string) (domain.Response, bool, error) {
	t.Helper()
	inv, ok := dispatch.FromText(a, "!", content)
	require.True(t, ok, "not a prefixed command: %q", content)
	return h.router.Dispatch(context.Background(), inv)
}

func (h *harness) slash(t *testing.T, a dispatch.Actor, name string, opts ...dispatch.NamedArg) (domain.Response, bool, error) {
	t.Helper()
	def, ok := h.router.Definition(name)
	require.True(t, ok)
	return h.router.Dispatch(context.Background(), dispatch.FromStructured(a, def, opts))
}

func (h *harness) click(t *testing.T, a dispatch.Actor, id string) (domain.Response, error) {
	t.Helper()
	fn, err := h.registry.Resolve(id)
	require.NoError(t, err)
	return fn(context.Background(), dispatch.Click{Actor: a, ComponentID: id})
}

var member = dispatch.Actor{UserID: "u1", GuildID: "42", ChannelID: "c1", Roles: []string{"member"}}

func TestCounterSharedAcrossSurfaces(t *testing.T) {
	h := newHarness(t, harnessOpts{})

	resp, handled, err := h.text(t, member, "!counter")
	require.NoError(t, err)
	require.True(t, handled)
	assert.Equal(t, "Counter incremented to `1` for this server.", resp.Content)

	resp, handled, err = h.slash(t, member, service.CmdCounter)
	require.NoError(t, err)
	require.True(t, handled)
	assert.Equal(t, "Counter incremented to `2` for this server.", resp.Content)

	other := member
	other.GuildID = "7"
	resp, _, err = h.text(t, other, "!counter")
	require.NoError(t, err)
	assert.Equal(t, "Counter incremented to `1` for this server.", resp.Content)
}

func TestCounterOutsideGuild(t *testing.T) {
	h := newHarness(t, harnessOpts{})
	dm := dispatch.Actor{UserID: "u1", ChannelID: "dm"}

	resp, handled, err := h.text(t, dm, "!counter")
	require.NoError(t, err)
	assert.True(t, handled)
	assert.True(t, resp.Ephemeral)
	assert.Equal(t, "This command is only available in servers.", resp.Content)
}

func TestLockdownDeniedForNonAdmin(t *testing.T) {
	h := newHarness(t, harnessOpts{adminRoles: map[string][]string{"42": {"admin"}}})
	// no SetChannelLocked expectation: any call fails the test

	for _, run := range []func() (domain.Response, bool, error){
		func() (domain.Response, bool, error) { return h.text(t, member, "!lockdown") },
		func() (domain.Response, bool, error) { return h.slash(t, member, service.CmdLockdown) },
	} {
		resp, handled, err := run()
		require.NoError(t, err)
		assert.True(t, handled)
		assert.True(t, resp.Ephemeral)
		assert.Equal(t, "You need an admin role to run this command.", resp.Content)
	}

	st, err := h.store.Get(context.Background(), "42")
	require.NoError(t, err)
	assert.False(t, st.Locked)
}

func TestLockdownAndUnlockByAdmin(t *testing.T) {
	h := newHarness(t, harnessOpts{adminRoles: map[string][]string{"42": {"admin"}}})
	admin := member
	admin.Roles = []string{"admin"}

	gomock.InOrder(
		h.locker.EXPECT().SetChannelLocked(gomock.Any(), "42", "c1", true).Return(nil),
		h.locker.EXPECT().SetChannelLocked(gomock.Any(), "42", "c1", false).Return(nil),
	)

	resp, _, err := h.text(t, admin, "!lockdown")
	require.NoError(t, err)
	assert.Equal(t, "Channel has been locked down for @everyone.", resp.Content)
	st, err := h.store.Get(context.Background(), "42")
	require.NoError(t, err)
	assert.True(t, st.Locked)

	resp, _, err = h.slash(t, admin, service.CmdUnlockdown)
	require.NoError(t, err)
	assert.Equal(t, "Channel has been unlocked for @everyone.", resp.Content)
	st, err = h.store.Get(context.Background(), "42")
	require.NoError(t, err)
	assert.False(t, st.Locked)
}

func TestLockdownPlatformFailureLeavesStateAlone(t *testing.T) {
	h := newHarness(t, harnessOpts{})
	owner := member
	owner.CanManageGuild = true

	h.locker.EXPECT().SetChannelLocked(gomock.Any(), "42", "c1", true).Return(errors.New("missing permissions"))

	resp, handled, err := h.slash(t, owner, service.CmdLockdown)
	assert.Error(t, err)
	assert.True(t, handled)
	assert.True(t, resp.Ephemeral)

	st, err := h.store.Get(context.Background(), "42")
	require.NoError(t, err)
	assert.False(t, st.Locked)
}

func TestPanelIsStructuredOnly(t *testing.T) {
	h := newHarness(t, harnessOpts{})

	_, handled, err := h.text(t, member, "!panel")
	require.NoError(t, err)
	assert.False(t, handled)

	resp, handled, err := h.slash(t, member, service.CmdPanel)
	require.NoError(t, err)
	assert.True(t, handled)
	assert.Equal(t, "Counter value: `0`", resp.Content)
	require.Len(t, resp.Components, 3)
	assert.Equal(t, service.PanelIncrementID, resp.Components[1].ID)
}

func TestPanelSurvivesRestart(t *testing.T) {
	dir := t.TempDir()

	first := newHarness(t, harnessOpts{dir: dir})
	resp, _, err := first.slash(t, member, service.CmdPanel)
	require.NoError(t, err)
	posted := resp.Components
	require.NoError(t, first.db.Close())

	// a new process: fresh registry, same data dir
	second := newHarness(t, harnessOpts{dir: dir})
	resp, err = second.click(t, member, posted[1].ID)
	require.NoError(t, err)
	assert.True(t, resp.UpdateMessage)
	assert.Equal(t, "Counter value: `1`", resp.Content)

	st, err := second.store.Get(context.Background(), "42")
	require.NoError(t, err)
	assert.EqualValues(t, 1, st.Counter)
}

func TestUnknownComponentIsNotFound(t *testing.T) {
	h := newHarness(t, harnessOpts{})
	_, err := h.registry.Resolve("panel:retired")
	assert.ErrorIs(t, err, domain.ErrComponentNotFound)
}

func TestInfoAndConfirmClicks(t *testing.T) {
	h := newHarness(t, harnessOpts{adminRoles: map[string][]string{"42": {"555"}}, devGuild: "99"})

	resp, err := h.click(t, member, service.PanelConfirmID)
	require.NoError(t, err)
	assert.Equal(t, domain.Ephemeral("Confirmed!"), resp)

	resp, err = h.click(t, member, service.PanelInfoID)
	require.NoError(t, err)
	assert.True(t, resp.Ephemeral)
	assert.Equal(t, "Prefix: `!`\nAdmin roles: <@&555>\nDev guild: `99`", resp.Content)
}

func TestSyncSurfacesAreEquivalent(t *testing.T) {
	h := newHarness(t, harnessOpts{devGuild: "99"})
	admin := member
	admin.CanManageGuild = true

	resp, _, err := h.text(t, admin, "!sync true")
	require.NoError(t, err)
	assert.Equal(t, "Synced 15 commands to guild 99 (15 added, 0 updated, 0 removed).", resp.Content)

	resp, _, err = h.slash(t, admin, service.CmdSync, dispatch.NamedArg{Name: "guild_only", Value: domain.BoolArg(true)})
	require.NoError(t, err)
	assert.Equal(t, "Synced 15 commands to guild 99 (0 added, 0 updated, 0 removed).", resp.Content)

	assert.Empty(t, h.api.names(domain.GlobalScope))
}

func TestSyncGlobalAndMissingDevGuild(t *testing.T) {
	h := newHarness(t, harnessOpts{})
	admin := member
	admin.CanManageGuild = true

	resp, _, err := h.text(t, admin, "!sync yes")
	require.NoError(t, err)
	assert.Equal(t, "No dev_guild_id configured; cannot sync to guild.", resp.Content)

	resp, _, err = h.slash(t, admin, service.CmdSync)
	require.NoError(t, err)
	assert.Equal(t, "Globally synced 15 commands (15 added, 0 updated, 0 removed). Global sync can take a while to propagate.", resp.Content)
}

func TestPingReportsSurface(t *testing.T) {
	h := newHarness(t, harnessOpts{})

	resp, _, err := h.text(t, member, "!PING")
	require.NoError(t, err)
	assert.Equal(t, "Pong! `42 ms` (invoked via prefix command)", resp.Content)

	resp, _, err = h.slash(t, member, service.CmdPing)
	require.NoError(t, err)
	assert.Equal(t, "Pong! `42 ms` (invoked via slash command)", resp.Content)
}

func TestStoreFailureAsksToRetry(t *testing.T) {
	h := newHarness(t, harnessOpts{})
	require.NoError(t, h.db.Close())

	resp, handled, err := h.text(t, member, "!counter")
	assert.True(t, handled)
	assert.ErrorIs(t, err, domain.ErrStoreCommit)
	assert.True(t, resp.Ephemeral)
	assert.Equal(t, "Could not save that change right now. Please try again.", resp.Content)
}

func TestStateReportsCounterAndLock(t *testing.T) {
	h := newHarness(t, harnessOpts{})
	_, _, err := h.text(t, member, "!counter")
	require.NoError(t, err)

	resp, _, err := h.slash(t, member, service.CmdState)
	require.NoError(t, err)
	assert.Equal(t, "Counter: `1` | Locked: no", resp.Content)
}
