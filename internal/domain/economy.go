package domain

import (
	"maps"
	"slices"
)

// Economy is a guild's team-role ledger. A role is whitelisted while it has an
// entry; removing it from the whitelist drops its balance.
type Economy struct {
	GuildID  string
	Balances map[string]int64
}

func NewEconomy(guildID string) Economy {
	return Economy{GuildID: guildID, Balances: map[string]int64{}}
}

func (e Economy) Clone() Economy {
	return Economy{GuildID: e.GuildID, Balances: maps.Clone(e.Balances)}
}

func (e Economy) Whitelisted(roleID string) bool {
	_, ok := e.Balances[roleID]
	return ok
}

// Whitelist adds roleID with a zero balance. It is false when already present.
func (e *Economy) Whitelist(roleID string) bool {
	if e.Whitelisted(roleID) {
		return false
	}
	if e.Balances == nil {
		e.Balances = map[string]int64{}
	}
	e.Balances[roleID] = 0
	return true
}

func (e *Economy) Unwhitelist(roleID string) bool {
	if !e.Whitelisted(roleID) {
		return false
	}
	delete(e.Balances, roleID)
	return true
}

func (e Economy) Balance(roleID string) int64 { return e.Balances[roleID] }

func (e *Economy) SetBalance(roleID string, amount int64) {
	if e.Balances == nil {
		e.Balances = map[string]int64{}
	}
	e.Balances[roleID] = amount
}

// Roles lists the whitelisted role ids in ascending order.
func (e Economy) Roles() []string {
	return slices.Sorted(maps.Keys(e.Balances))
}

// TeamRoles returns the whitelisted roles among memberRoles, in member order.
func (e Economy) TeamRoles(memberRoles []string) []string {
	var out []string
	for _, r := range memberRoles {
		if e.Whitelisted(r) && !slices.Contains(out, r) {
			out = append(out, r)
		}
	}
	return out
}
