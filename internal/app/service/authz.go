package service

import "github.com/jose-valero/hybrid-guild-bot/internal/domain"

// Gate decides whether an actor may run admin-tagged actions. It does no I/O;
// the caller supplies the actor's roles and manage-guild permission.
type Gate struct {
	adminRoles map[string]map[string]struct{}
}

func NewGate(adminRoles map[string][]string) *Gate {
	g := &Gate{adminRoles: make(map[string]map[string]struct{}, len(adminRoles))}
	for guildID, ids := range adminRoles {
		set := make(map[string]struct{}, len(ids))
		for _, id := range ids {
			if id != "" {
				set[id] = struct{}{}
			}
		}
		g.adminRoles[guildID] = set
	}
	return g
}

func (g *Gate) rolesFor(guildID string) map[string]struct{} {
	if set, ok := g.adminRoles[guildID]; ok {
		return set
	}
	return g.adminRoles[domain.AllGuilds]
}

// IsAuthorized grants access when the actor holds any configured admin role of
// the guild. With no roles configured it falls back to canManageGuild.
func (g *Gate) IsAuthorized(actorID, guildID string, roles []string, canManageGuild bool) bool {
	want := g.rolesFor(guildID)
	if len(want) == 0 {
		return canManageGuild
	}
	for _, r := range roles {
		if _, ok := want[r]; ok {
			return true
		}
	}
	return false
}

// AdminRoles lists the configured admin role ids for guildID.
func (g *Gate) AdminRoles(guildID string) []string {
	set := g.rolesFor(guildID)
	out := make([]string, 0, len(set))
	for id := range set {
		out = append(out, id)
	}
	return out
}
