package discord

import (
	"context"
	"time"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"

	"github.com/jose-valero/hybrid-guild-bot/internal/app/dispatch"
	"github.com/jose-valero/hybrid-guild-bot/internal/infra/metrics"
)

const (
	ackTimeout       = 2 * time.Second
	commandTimeout   = 12 * time.Second
	componentTimeout = 8 * time.Second
)

type Options struct {
	Prefix      string
	ClickWindow time.Duration
	// State es opcional; si es nil todo se consulta por REST
	State *discordgo.State
}

// Router traduce eventos del gateway a invocaciones y las despacha. Los
// eventos de un mismo guild se procesan en orden de llegada.
type Router struct {
	s       Session
	state   *discordgo.State
	prefix  string
	log     *zap.Logger
	metrics *metrics.Metrics

	commands     *dispatch.Router
	components   *dispatch.ComponentRegistry
	intake       *intake
	clickLimiter *userLimiter
}

func NewRouter(
	s Session,
	commands *dispatch.Router,
	components *dispatch.ComponentRegistry,
	opts Options,
	log *zap.Logger,
	m *metrics.Metrics,
) *Router {
	if log == nil {
		log = zap.NewNop()
	}
	return &Router{
		s:            s,
		state:        opts.State,
		prefix:       opts.Prefix,
		log:          log.Named("discord"),
		metrics:      m,
		commands:     commands,
		components:   components,
		intake:       newIntake(),
		clickLimiter: newUserLimiter(opts.ClickWindow),
	}
}

// Handlers registra los handlers del gateway. La sesión debe tener
// SyncEvents=true para que el orden de llegada se conserve hasta Submit.
func (r *Router) Handlers() {
	r.s.AddHandler(func(_ *discordgo.Session, m *discordgo.MessageCreate) {
		r.onMessage(m)
	})
	r.s.AddHandler(func(_ *discordgo.Session, ic *discordgo.InteractionCreate) {
		r.onInteraction(ic)
	})
}

func (r *Router) onMessage(m *discordgo.MessageCreate) {
	if m.Author == nil || m.Author.Bot {
		return
	}
	r.submit(orderKey(m.GuildID, m.ChannelID), "message", func() { r.handleMessage(m) })
}

// onInteraction answers or acknowledges on the gateway goroutine; only the
// handler itself waits in the guild's queue.
func (r *Router) onInteraction(ic *discordgo.InteractionCreate) {
	if r.intake.Closed() {
		r.log.Debug("dropped interaction during shutdown", zap.String("interaction", ic.ID))
		return
	}
	switch ic.Type {
	case discordgo.InteractionApplicationCommand:
		r.acceptCommand(ic)
	case discordgo.InteractionMessageComponent:
		r.acceptComponent(ic)
	}
}

// acknowledge defers ic before it is queued. A failed ack drops the event.
func (r *Router) acknowledge(ic *discordgo.InteractionCreate, private bool) bool {
	ctx, cancel := context.WithTimeout(context.Background(), ackTimeout)
	defer cancel()
	if err := Acknowledge(ctx, r.s, ic, private); err != nil {
		r.log.Warn("acknowledge failed", zap.String("interaction", ic.ID), zap.Error(err))
		return false
	}
	return true
}

func (r *Router) submit(key, kind string, job func()) {
	ok := r.intake.Submit(key, func() {
		defer func() {
			if rec := recover(); rec != nil {
				r.log.Error("panic in handler", zap.String("kind", kind), zap.Any("panic", rec), zap.Stack("stack"))
			}
		}()
		job()
	})
	if !ok {
		r.log.Debug("dropped event during shutdown", zap.String("kind", kind))
	}
}

// Close deja de aceptar eventos y espera a que terminen los encolados.
func (r *Router) Close(ctx context.Context) error {
	return r.intake.Close(ctx)
}

// orderKey: por guild; los DMs se ordenan por canal
func orderKey(guildID, channelID string) string {
	if guildID != "" {
		return guildID
	}
	return "dm:" + channelID
}
