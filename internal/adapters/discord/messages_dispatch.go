package discord

import (
	"context"

	"github.com/bwmarrin/discordgo"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jose-valero/hybrid-guild-bot/internal/app/dispatch"
	"github.com/jose-valero/hybrid-guild-bot/internal/domain"
)

func (r *Router) handleMessage(m *discordgo.MessageCreate) {
	actor := dispatch.Actor{
		UserID:    m.Author.ID,
		GuildID:   m.GuildID,
		ChannelID: m.ChannelID,
		TraceID:   uuid.NewString(),
	}
	if m.Member != nil {
		actor.Roles = m.Member.Roles
	}

	inv, ok := dispatch.FromText(actor, r.prefix, m.Content)
	if !ok {
		return
	}
	log := r.log.With(zap.String("trace_id", actor.TraceID), zap.String("command", inv.Command))
	defer step(log, "prefix.total")()

	def, known := r.commands.Definition(inv.Command)
	if !known || def.StructuredOnly {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	// solo los comandos que consultan el gate necesitan permisos calculados
	if def.NeedsPermissions() {
		inv.CanManageGuild = r.canManageGuild(ctx, m.GuildID, m.Author.ID, inv.Roles)
	}

	resp, handled, err := r.commands.Dispatch(ctx, inv)
	if !handled {
		return
	}
	if err != nil {
		log.Error("command failed", zap.Error(err))
		if resp.Content == "" {
			resp = domain.Reply(msgUnexpected)
		}
	}
	if resp.Content == "" && len(resp.Components) == 0 {
		return
	}
	_ = SendReply(r.s, log, m, resp)
}
