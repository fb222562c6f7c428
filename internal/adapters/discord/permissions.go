package discord

import (
	"context"
	"fmt"

	"github.com/bwmarrin/discordgo"

	"github.com/jose-valero/hybrid-guild-bot/internal/app/service"
)

const manageGuildBits = discordgo.PermissionAdministrator | discordgo.PermissionManageGuild

// canManageGuild resuelve owner + bits de roles para mensajes de texto, que
// (a diferencia de las interacciones) no traen permisos calculados.
func (r *Router) canManageGuild(ctx context.Context, guildID, userID string, memberRoles []string) bool {
	if guildID == "" || userID == "" {
		return false
	}

	// Owner
	g := r.guild(ctx, guildID)
	if g != nil && g.OwnerID == userID {
		return true
	}

	var roles []*discordgo.Role
	if g != nil && len(g.Roles) > 0 {
		roles = g.Roles
	} else {
		rs, err := r.s.GuildRoles(guildID, discordgo.WithContext(ctx))
		if err != nil {
			return false
		}
		roles = rs
	}

	has := make(map[string]struct{}, len(memberRoles)+1)
	for _, rid := range memberRoles {
		has[rid] = struct{}{}
	}
	has[guildID] = struct{}{} // @everyone

	var perms int64
	for _, ro := range roles {
		if _, ok := has[ro.ID]; ok {
			perms |= ro.Permissions
		}
	}
	return perms&manageGuildBits != 0
}

func (r *Router) guild(ctx context.Context, guildID string) *discordgo.Guild {
	if r.state != nil {
		if g, err := r.state.Guild(guildID); err == nil && g != nil {
			return g
		}
	}
	g, err := r.s.Guild(guildID, discordgo.WithContext(ctx))
	if err != nil {
		return nil
	}
	return g
}

// ChannelLocker toggles the @everyone send-messages overwrite of a channel.
// Other bits of the overwrite are preserved.
type ChannelLocker struct {
	s Session
}

func NewChannelLocker(s Session) *ChannelLocker { return &ChannelLocker{s: s} }

var _ service.ChannelLocker = (*ChannelLocker)(nil)

func (l *ChannelLocker) SetChannelLocked(ctx context.Context, guildID, channelID string, locked bool) error {
	ch, err := l.s.Channel(channelID, discordgo.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("get channel %s: %w", channelID, err)
	}

	// el rol @everyone tiene el mismo id que el guild
	var (
		allow, deny int64
		found       bool
	)
	for _, ow := range ch.PermissionOverwrites {
		if ow.ID == guildID && ow.Type == discordgo.PermissionOverwriteTypeRole {
			allow, deny, found = ow.Allow, ow.Deny, true
			break
		}
	}

	allow &^= discordgo.PermissionSendMessages
	if locked {
		deny |= discordgo.PermissionSendMessages
	} else {
		deny &^= discordgo.PermissionSendMessages
	}

	switch {
	case allow == 0 && deny == 0 && !found:
		return nil
	case allow == 0 && deny == 0:
		err = l.s.ChannelPermissionDelete(channelID, guildID, discordgo.WithContext(ctx))
	default:
		err = l.s.ChannelPermissionSet(channelID, guildID, discordgo.PermissionOverwriteTypeRole, allow, deny, discordgo.WithContext(ctx))
	}
	if err != nil {
		return fmt.Errorf("set overwrite on %s: %w", channelID, err)
	}
	return nil
}
