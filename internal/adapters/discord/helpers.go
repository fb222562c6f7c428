package discord

import (
	"github.com/bwmarrin/discordgo"
	"github.com/google/uuid"

	"github.com/jose-valero/hybrid-guild-bot/internal/app/dispatch"
	"github.com/jose-valero/hybrid-guild-bot/internal/domain"
)

// namedArgs convierte las opciones del slash command a argumentos del dominio
func namedArgs(opts []*discordgo.ApplicationCommandInteractionDataOption) []dispatch.NamedArg {
	out := make([]dispatch.NamedArg, 0, len(opts))
	for _, o := range opts {
		var v domain.Arg
		switch o.Type {
		case discordgo.ApplicationCommandOptionString:
			v = domain.StringArg(o.StringValue())
		case discordgo.ApplicationCommandOptionInteger:
			v = domain.IntArg(o.IntValue())
		case discordgo.ApplicationCommandOptionBoolean:
			v = domain.BoolArg(o.BoolValue())
		case discordgo.ApplicationCommandOptionRole:
			// el valor llega como id; RoleValue necesitaría sesión
			id, _ := o.Value.(string)
			v = domain.StringArg(id)
		default:
			continue
		}
		out = append(out, dispatch.NamedArg{Name: o.Name, Value: v})
	}
	return out
}

// interactionActor arma el actor desde la interacción. Discord ya manda los
// permisos calculados del miembro, así que no hace falta consultar roles.
func interactionActor(ic *discordgo.InteractionCreate) dispatch.Actor {
	a := dispatch.Actor{
		GuildID:   ic.GuildID,
		ChannelID: ic.ChannelID,
		TraceID:   uuid.NewString(),
	}
	switch {
	case ic.Member != nil:
		if ic.Member.User != nil {
			a.UserID = ic.Member.User.ID
		}
		a.Roles = ic.Member.Roles
		a.CanManageGuild = ic.Member.Permissions&(discordgo.PermissionAdministrator|discordgo.PermissionManageGuild) != 0
	case ic.User != nil:
		a.UserID = ic.User.ID
	}
	return a
}

// scopeGuild maps a command scope to the guild id discordgo expects; empty
// means global.
func scopeGuild(scope domain.Scope) string { return scope.GuildID }
