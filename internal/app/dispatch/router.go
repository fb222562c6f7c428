package dispatch

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/jose-valero/hybrid-guild-bot/internal/domain"
	"github.com/jose-valero/hybrid-guild-bot/internal/infra/metrics"
)

type Handler func(ctx context.Context, inv domain.Invocation) (domain.Response, error)

type route struct {
	def     domain.CommandDefinition
	handler Handler
}

// Router maps command names to handlers. Both surfaces dispatch through it
// once their payload has been turned into a domain.Invocation.
type Router struct {
	log     *zap.Logger
	metrics *metrics.Metrics
	routes  map[string]route
}

func NewRouter(log *zap.Logger, m *metrics.Metrics) *Router {
	if log == nil {
		log = zap.NewNop()
	}
	return &Router{
		log:     log.Named("dispatch"),
		metrics: m,
		routes:  make(map[string]route),
	}
}

func (r *Router) Register(def domain.CommandDefinition, h Handler) error {
	name := strings.ToLower(def.Name)
	if _, dup := r.routes[name]; dup {
		return fmt.Errorf("%w: command %q registered twice", domain.ErrSyncConflict, name)
	}
	r.routes[name] = route{def: def, handler: h}
	return nil
}

func (r *Router) Definition(name string) (domain.CommandDefinition, bool) {
	rt, ok := r.routes[strings.ToLower(name)]
	return rt.def, ok
}

// Definitions returns every registered definition sorted by name.
func (r *Router) Definitions() []domain.CommandDefinition {
	defs := make([]domain.CommandDefinition, 0, len(r.routes))
	for _, rt := range r.routes {
		defs = append(defs, rt.def)
	}
	sort.Slice(defs, func(i, j int) bool { return defs[i].Name < defs[j].Name })
	return defs
}

// Dispatch runs the handler for inv. handled is false for unknown commands and
// for structured-only commands reached through the prefix surface; the caller
// must not reply in that case.
func (r *Router) Dispatch(ctx context.Context, inv domain.Invocation) (resp domain.Response, handled bool, err error) {
	rt, ok := r.routes[inv.Command]
	if !ok || (rt.def.StructuredOnly && inv.Surface == domain.SurfacePrefix) {
		r.log.Debug("ignored", zap.String("command", inv.Command), zap.String("surface", string(inv.Surface)))
		return domain.Response{}, false, nil
	}
	if rt.def.GuildOnly && !inv.InGuild() {
		r.metrics.Command(inv.Surface, inv.Command, "guild_only")
		return domain.Ephemeral("This command is only available in servers."), true, nil
	}

	start := time.Now()
	resp, err = rt.handler(ctx, inv)
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	r.metrics.Command(inv.Surface, inv.Command, outcome)
	r.log.Info("dispatched",
		zap.String("trace_id", inv.TraceID),
		zap.String("command", inv.Command),
		zap.String("surface", string(inv.Surface)),
		zap.String("guild", inv.GuildID),
		zap.String("actor", inv.ActorID),
		zap.Duration("dur", time.Since(start)),
		zap.Error(err),
	)
	return resp, true, err
}
