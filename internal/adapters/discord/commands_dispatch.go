// aqui solo vamos a manejar la interaccion del usuario y despachar al router
// del dominio; la logica vive en internal/app/service
package discord

import (
	"context"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"

	"github.com/jose-valero/hybrid-guild-bot/internal/app/dispatch"
	"github.com/jose-valero/hybrid-guild-bot/internal/domain"
)

const (
	msgUnexpected  = "Something went wrong while running that command."
	msgUnavailable = "This command is not available right now."
)

func (r *Router) acceptCommand(ic *discordgo.InteractionCreate) {
	name := ic.ApplicationCommandData().Name
	def, ok := r.commands.Definition(name)
	if !ok {
		// registrado en Discord pero no en este proceso (sync pendiente)
		r.log.Warn("unknown slash command", zap.String("command", name))
		_ = Respond(r.s, r.log, ic, domain.Ephemeral(msgUnavailable))
		return
	}
	if !r.acknowledge(ic, def.Private) {
		return
	}
	r.submit(orderKey(ic.GuildID, ic.ChannelID), "command", func() { r.runCommand(ic, def) })
}

func (r *Router) runCommand(ic *discordgo.InteractionCreate, def domain.CommandDefinition) {
	data := ic.ApplicationCommandData()
	actor := interactionActor(ic)
	log := r.log.With(zap.String("trace_id", actor.TraceID), zap.String("command", data.Name))
	defer step(log, "slash.total")()

	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	inv := dispatch.FromStructured(actor, def, namedArgs(data.Options))
	resp, _, err := r.commands.Dispatch(ctx, inv)
	if err != nil {
		log.Error("command failed", zap.Error(err))
		if resp.Content == "" {
			resp = domain.Ephemeral(msgUnexpected)
		}
	}
	Complete(r.s, log, ic, resp, def.Private)
}
