package discord

import (
	"context"
	"errors"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"

	"github.com/jose-valero/hybrid-guild-bot/internal/app/dispatch"
	"github.com/jose-valero/hybrid-guild-bot/internal/domain"
)

const (
	msgStaleComponent = "This button is no longer active."
	msgSlowDown       = "⏳ Slow down a second…"
)

// acceptComponent contesta en el acto los clicks que no llegan al handler
// (botón viejo o rate limit) y encola el resto.
func (r *Router) acceptComponent(ic *discordgo.InteractionCreate) {
	id := ic.MessageComponentData().CustomID
	log := r.log.With(zap.String("component", id))

	handler, err := r.components.Resolve(id)
	if err != nil {
		if errors.Is(err, domain.ErrComponentNotFound) {
			log.Warn("unknown component")
			r.metrics.Component(id, "not_found")
			_ = Respond(r.s, log, ic, domain.Ephemeral(msgStaleComponent))
			return
		}
		log.Error("resolve component", zap.Error(err))
		return
	}

	actor := interactionActor(ic)
	if !r.clickLimiter.Allow(actor.UserID) {
		r.metrics.Component(id, "rate_limited")
		_ = Respond(r.s, log, ic, domain.Ephemeral(msgSlowDown))
		return
	}
	if !r.acknowledge(ic, false) {
		return
	}
	r.submit(orderKey(ic.GuildID, ic.ChannelID), "component", func() {
		r.runComponent(ic, dispatch.Click{Actor: actor, ComponentID: id}, handler)
	})
}

func (r *Router) runComponent(ic *discordgo.InteractionCreate, click dispatch.Click, handler dispatch.ComponentHandler) {
	log := r.log.With(zap.String("trace_id", click.TraceID), zap.String("component", click.ComponentID))
	defer step(log, "component.total")()

	ctx, cancel := context.WithTimeout(context.Background(), componentTimeout)
	defer cancel()

	resp, err := handler(ctx, click)
	outcome := "ok"
	if err != nil {
		outcome = "error"
		log.Error("component failed", zap.Error(err))
		if resp.Content == "" {
			resp = domain.Ephemeral(msgUnexpected)
		}
	}
	r.metrics.Component(click.ComponentID, outcome)
	Complete(r.s, log, ic, resp, false)
}
