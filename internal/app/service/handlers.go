package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/jose-valero/hybrid-guild-bot/internal/app/dispatch"
	"github.com/jose-valero/hybrid-guild-bot/internal/domain"
)

const (
	msgDenied        = "You need an admin role to run this command."
	msgStoreFailed   = "Could not save that change right now. Please try again."
	aboutDescription = "A guild bot supporting prefix, slash and hybrid commands, and persistent UI components."
)

type HandlerOptions struct {
	Prefix     string
	DevGuildID string
}

// HandlerSet holds the business logic behind every command and component.
type HandlerSet struct {
	store   GuildStateStore
	economy EconomyStore
	gate    *Gate
	locker  ChannelLocker
	sync    *SyncService
	latency LatencyProbe
	opts    HandlerOptions
	log     *zap.Logger
}

func NewHandlerSet(store GuildStateStore, economy EconomyStore, gate *Gate, locker ChannelLocker, sync *SyncService, latency LatencyProbe, opts HandlerOptions, log *zap.Logger) *HandlerSet {
	if log == nil {
		log = zap.NewNop()
	}
	return &HandlerSet{
		store:   store,
		economy: economy,
		gate:    gate,
		locker:  locker,
		sync:    sync,
		latency: latency,
		opts:    opts,
		log:     log.Named("handlers"),
	}
}

// Register wires every command into r and every panel button into reg. It
// must run once at startup, before any event is dispatched.
func (h *HandlerSet) Register(r *dispatch.Router, reg *dispatch.ComponentRegistry) error {
	handlers := map[string]dispatch.Handler{
		CmdPing:       h.ping,
		CmdAbout:      h.about,
		CmdCounter:    h.counter,
		CmdPanel:      h.panel,
		CmdLockdown:   h.lockdown,
		CmdUnlockdown: h.unlockdown,
		CmdSync:       h.syncCommands,
		CmdState:      h.state,

		CmdWhitelist:     h.whitelist,
		CmdBalance:       h.balance,
		CmdPay:           h.pay,
		CmdResetBalance:  h.changeBalance(opReset),
		CmdSetBalance:    h.changeBalance(opSet),
		CmdAddBalance:    h.changeBalance(opAdd),
		CmdRemoveBalance: h.changeBalance(opRemove),
	}
	for _, def := range CommandDefinitions() {
		fn, ok := handlers[def.Name]
		if !ok {
			return fmt.Errorf("no handler for command %q", def.Name)
		}
		if def.AdminOnly {
			fn = h.requireAdmin(fn)
		}
		if err := r.Register(def, fn); err != nil {
			return err
		}
	}

	components := map[domain.ComponentAction]dispatch.ComponentHandler{
		domain.ActionConfirm:   h.confirmClicked,
		domain.ActionIncrement: h.incrementClicked,
		domain.ActionInfo:      h.infoClicked,
	}
	for _, desc := range PanelComponents() {
		if err := reg.Register(desc, components[desc.Action]); err != nil {
			return err
		}
	}
	return nil
}

// requireAdmin is the single authorization point for admin-tagged commands.
func (h *HandlerSet) requireAdmin(next dispatch.Handler) dispatch.Handler {
	return func(ctx context.Context, inv domain.Invocation) (domain.Response, error) {
		if !h.gate.IsAuthorized(inv.ActorID, inv.GuildID, inv.Roles, inv.CanManageGuild) {
			h.log.Info("denied",
				zap.String("command", inv.Command),
				zap.String("actor", inv.ActorID),
				zap.String("guild", inv.GuildID),
			)
			return domain.Ephemeral(msgDenied), nil
		}
		return next(ctx, inv)
	}
}

func (h *HandlerSet) ping(_ context.Context, inv domain.Invocation) (domain.Response, error) {
	var ms int64
	if h.latency != nil {
		ms = h.latency.HeartbeatLatency().Milliseconds()
	}
	style := "slash"
	if inv.Surface == domain.SurfacePrefix {
		style = "prefix"
	}
	return domain.Reply(fmt.Sprintf("Pong! `%d ms` (invoked via %s command)", ms, style)), nil
}

func (h *HandlerSet) about(context.Context, domain.Invocation) (domain.Response, error) {
	return domain.Reply(aboutDescription), nil
}

func (h *HandlerSet) counter(ctx context.Context, inv domain.Invocation) (domain.Response, error) {
	st, err := h.store.Update(ctx, inv.GuildID, incrementCounter)
	if err != nil {
		return storeFailure(err)
	}
	return domain.Reply(fmt.Sprintf("Counter incremented to `%d` for this server.", st.Counter)), nil
}

func (h *HandlerSet) panel(ctx context.Context, inv domain.Invocation) (domain.Response, error) {
	st, err := h.store.Get(ctx, inv.GuildID)
	if err != nil {
		return domain.Response{}, err
	}
	return domain.Response{
		Content:    panelContent(st.Counter),
		Components: PanelComponents(),
	}, nil
}

func (h *HandlerSet) lockdown(ctx context.Context, inv domain.Invocation) (domain.Response, error) {
	return h.setLocked(ctx, inv, true)
}

func (h *HandlerSet) unlockdown(ctx context.Context, inv domain.Invocation) (domain.Response, error) {
	return h.setLocked(ctx, inv, false)
}

func (h *HandlerSet) setLocked(ctx context.Context, inv domain.Invocation, locked bool) (domain.Response, error) {
	if inv.ChannelID == "" {
		return domain.Ephemeral("This command must be used in a text channel."), nil
	}
	if err := h.locker.SetChannelLocked(ctx, inv.GuildID, inv.ChannelID, locked); err != nil {
		return domain.Ephemeral("Could not change channel permissions."), fmt.Errorf("set channel locked: %w", err)
	}
	if _, err := h.store.Update(ctx, inv.GuildID, func(st *domain.GuildState) error {
		st.Locked = locked
		return nil
	}); err != nil {
		return storeFailure(err)
	}
	state := "unlocked"
	if locked {
		state = "locked down"
	}
	return domain.Reply(fmt.Sprintf("Channel has been %s for @everyone.", state)), nil
}

func (h *HandlerSet) syncCommands(ctx context.Context, inv domain.Invocation) (domain.Response, error) {
	devGuild := h.sync.DevGuildID()
	guildOnly, ok := inv.Arg(0).Bool()
	if !ok {
		guildOnly = devGuild != ""
	}

	scope := domain.GlobalScope
	if guildOnly {
		if devGuild == "" {
			return domain.Ephemeral("No dev_guild_id configured; cannot sync to guild."), nil
		}
		scope = domain.GuildScope(devGuild)
	}

	res, err := h.sync.Sync(ctx, scope)
	if err != nil {
		return domain.Ephemeral("Failed to sync application commands."), err
	}
	total := len(h.sync.Local(scope))
	msg := fmt.Sprintf("Synced %d commands to guild %s (%s).", total, devGuild, summarize(res))
	if scope.IsGlobal() {
		msg = fmt.Sprintf("Globally synced %d commands (%s). Global sync can take a while to propagate.", total, summarize(res))
	}
	return domain.Ephemeral(msg), nil
}

func (h *HandlerSet) state(ctx context.Context, inv domain.Invocation) (domain.Response, error) {
	st, err := h.store.Get(ctx, inv.GuildID)
	if err != nil {
		return domain.Response{}, err
	}
	lock := "no"
	if st.Locked {
		lock = "yes"
	}
	return domain.Ephemeral(fmt.Sprintf("Counter: `%d` | Locked: %s", st.Counter, lock)), nil
}

func (h *HandlerSet) confirmClicked(context.Context, dispatch.Click) (domain.Response, error) {
	return domain.Ephemeral("Confirmed!"), nil
}

func (h *HandlerSet) incrementClicked(ctx context.Context, c dispatch.Click) (domain.Response, error) {
	if c.GuildID == "" {
		return domain.Ephemeral("This action is only available in servers."), nil
	}
	st, err := h.store.Update(ctx, c.GuildID, incrementCounter)
	if err != nil {
		return storeFailure(err)
	}
	return domain.Response{
		Content:       panelContent(st.Counter),
		Components:    PanelComponents(),
		UpdateMessage: true,
	}, nil
}

func (h *HandlerSet) infoClicked(_ context.Context, c dispatch.Click) (domain.Response, error) {
	roles := "Not set"
	if ids := h.gate.AdminRoles(c.GuildID); len(ids) > 0 {
		sort.Strings(ids)
		mentions := make([]string, len(ids))
		for i, id := range ids {
			mentions[i] = "<@&" + id + ">"
		}
		roles = strings.Join(mentions, ", ")
	}
	dev := "Global sync"
	if h.opts.DevGuildID != "" {
		dev = h.opts.DevGuildID
	}
	return domain.Ephemeral(fmt.Sprintf("Prefix: `%s`\nAdmin roles: %s\nDev guild: `%s`", h.opts.Prefix, roles, dev)), nil
}

func incrementCounter(st *domain.GuildState) error {
	st.Counter++
	return nil
}

func panelContent(counter int64) string {
	return fmt.Sprintf("Counter value: `%d`", counter)
}

// storeFailure keeps the error for logging and tells the actor to retry
// themselves; the mutation is never retried here.
func storeFailure(err error) (domain.Response, error) {
	if errors.Is(err, domain.ErrStoreCommit) {
		return domain.Ephemeral(msgStoreFailed), err
	}
	return domain.Response{}, err
}

func summarize(r SyncResult) string {
	return fmt.Sprintf("%d added, %d updated, %d removed", len(r.Added), len(r.Updated), len(r.Removed))
}
