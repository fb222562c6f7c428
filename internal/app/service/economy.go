package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"

	"go.uber.org/zap"

	"github.com/jose-valero/hybrid-guild-bot/internal/app/dispatch"
	"github.com/jose-valero/hybrid-guild-bot/internal/domain"
)

const (
	msgNoTeamRole    = "You don't have any whitelisted team roles. Please contact an admin to be added."
	msgMissingRole   = "Please mention a team role."
	msgMissingAmount = "Please provide a whole-number amount."
)

// declined aborts a ledger update without writing anything. The text is
// shown to the actor privately.
type declined string

func (d declined) Error() string { return string(d) }

func mention(roleID string) string { return "<@&" + roleID + ">" }

func notWhitelisted(roleID string) declined {
	return declined(mention(roleID) + " is not in the whitelisted team roles. Please whitelist it first.")
}

// ledgerFailure turns a declined update into a private reply and anything
// else into the store failure path.
func ledgerFailure(err error) (domain.Response, error) {
	var d declined
	if errors.As(err, &d) {
		return domain.Ephemeral(string(d)), nil
	}
	return storeFailure(err)
}

// teamRole resolves the single whitelisted team role the actor holds.
func teamRole(e domain.Economy, roles []string) (string, error) {
	teams := e.TeamRoles(roles)
	switch len(teams) {
	case 1:
		return teams[0], nil
	case 0:
		return "", declined(msgNoTeamRole)
	}
	mentions := make([]string, len(teams))
	for i, id := range teams {
		mentions[i] = mention(id)
	}
	return "", declined("You have multiple whitelisted team roles: " + strings.Join(mentions, ", ") + ". Please keep only one.")
}

func balanceLine(roleID string, balance int64) string {
	return fmt.Sprintf("%s balance: **$%d**", mention(roleID), balance)
}

func (h *HandlerSet) whitelist(ctx context.Context, inv domain.Invocation) (domain.Response, error) {
	action := strings.ToLower(inv.Arg(0).String())
	if action == "list" {
		e, err := h.economy.Get(ctx, inv.GuildID)
		if err != nil {
			return domain.Response{}, err
		}
		roles := e.Roles()
		if len(roles) == 0 {
			return domain.Reply("No team roles have been whitelisted yet."), nil
		}
		lines := make([]string, len(roles))
		for i, id := range roles {
			lines[i] = mention(id)
		}
		return domain.Reply(fmt.Sprintf("Whitelisted team roles:\n%s\nTotal: %d", strings.Join(lines, "\n"), len(roles))), nil
	}
	if action != "add" && action != "remove" {
		return domain.Ephemeral("Usage: whitelist <add|remove|list> [role]"), nil
	}

	role, ok := inv.Arg(1).RoleID()
	if !ok {
		return domain.Ephemeral(msgMissingRole), nil
	}
	var changed bool
	if _, err := h.economy.Update(ctx, inv.GuildID, func(e *domain.Economy) error {
		if action == "add" {
			changed = e.Whitelist(role)
		} else {
			changed = e.Unwhitelist(role)
		}
		return nil
	}); err != nil {
		return storeFailure(err)
	}

	switch {
	case action == "add" && changed:
		h.log.Info("team role whitelisted", zap.String("guild", inv.GuildID), zap.String("role", role))
		return domain.Reply(mention(role) + " has been added to the team economy."), nil
	case action == "add":
		return domain.Reply(mention(role) + " is already in the whitelist."), nil
	case changed:
		h.log.Info("team role removed", zap.String("guild", inv.GuildID), zap.String("role", role))
		return domain.Reply(mention(role) + " has been removed from the whitelist."), nil
	}
	return domain.Reply(mention(role) + " was not in the whitelist."), nil
}

func (h *HandlerSet) balance(ctx context.Context, inv domain.Invocation) (domain.Response, error) {
	e, err := h.economy.Get(ctx, inv.GuildID)
	if err != nil {
		return domain.Response{}, err
	}

	if arg := inv.Arg(0); arg.Kind != domain.ArgNull {
		if !h.gate.IsAuthorized(inv.ActorID, inv.GuildID, inv.Roles, inv.CanManageGuild) {
			return domain.Ephemeral("You need an admin role to view other teams."), nil
		}
		role, ok := arg.RoleID()
		if !ok {
			return domain.Ephemeral(msgMissingRole), nil
		}
		if !e.Whitelisted(role) {
			return domain.Ephemeral(string(notWhitelisted(role))), nil
		}
		return domain.Ephemeral(balanceLine(role, e.Balance(role))), nil
	}

	role, err := teamRole(e, inv.Roles)
	if err != nil {
		return ledgerFailure(err)
	}
	return domain.Reply(balanceLine(role, e.Balance(role))), nil
}

func (h *HandlerSet) pay(ctx context.Context, inv domain.Invocation) (domain.Response, error) {
	amount, ok := inv.Arg(0).Int()
	if !ok {
		return domain.Ephemeral(msgMissingAmount), nil
	}
	if amount <= 0 {
		return domain.Ephemeral("Please provide a positive amount to transfer."), nil
	}
	to, ok := inv.Arg(1).RoleID()
	if !ok {
		return domain.Ephemeral(msgMissingRole), nil
	}

	if _, err := h.economy.Update(ctx, inv.GuildID, func(e *domain.Economy) error {
		from, err := teamRole(*e, inv.Roles)
		if err != nil {
			return err
		}
		if !e.Whitelisted(to) {
			return notWhitelisted(to)
		}
		if e.Balance(from) < amount {
			return declined("Your team role does not have enough funds for this transfer.")
		}
		e.SetBalance(from, e.Balance(from)-amount)
		if e.Balance(to) > math.MaxInt64-amount {
			return declined("That transfer would overflow the recipient's balance.")
		}
		e.SetBalance(to, e.Balance(to)+amount)
		return nil
	}); err != nil {
		return ledgerFailure(err)
	}
	return domain.Reply(fmt.Sprintf("Transferred **$%d** to %s", amount, mention(to))), nil
}

type balanceOp string

const (
	opReset  balanceOp = "reset"
	opSet    balanceOp = "set"
	opAdd    balanceOp = "add"
	opRemove balanceOp = "remove"
)

// apply returns the new balance or the reason the change is refused.
func (op balanceOp) apply(old, amount int64) (int64, error) {
	switch op {
	case opReset, opSet:
		if amount < 0 {
			return 0, declined("Amount must be greater than or equal to zero.")
		}
		return amount, nil
	case opAdd:
		if amount <= 0 {
			return 0, declined("Please provide a positive amount to add.")
		}
		if old > math.MaxInt64-amount {
			return 0, declined("That amount would overflow the balance.")
		}
		return old + amount, nil
	case opRemove:
		if amount <= 0 {
			return 0, declined("Please provide a positive amount to remove.")
		}
		if amount > old {
			return 0, declined("Insufficient funds to remove that amount.")
		}
		return old - amount, nil
	}
	return 0, fmt.Errorf("unknown balance operation %q", op)
}

func (h *HandlerSet) changeBalance(op balanceOp) dispatch.Handler {
	return func(ctx context.Context, inv domain.Invocation) (domain.Response, error) {
		role, ok := inv.Arg(0).RoleID()
		if !ok {
			return domain.Ephemeral(msgMissingRole), nil
		}
		amount, ok := inv.Arg(1).Int()
		if !ok {
			return domain.Ephemeral(msgMissingAmount), nil
		}
		show, _ := inv.Arg(2).Bool()

		var old int64
		e, err := h.economy.Update(ctx, inv.GuildID, func(e *domain.Economy) error {
			if !e.Whitelisted(role) {
				return notWhitelisted(role)
			}
			old = e.Balance(role)
			next, err := op.apply(old, amount)
			if err != nil {
				return err
			}
			e.SetBalance(role, next)
			return nil
		})
		if err != nil {
			return ledgerFailure(err)
		}

		next := e.Balance(role)
		h.log.Info("balance changed",
			zap.String("guild", inv.GuildID),
			zap.String("role", role),
			zap.String("op", string(op)),
			zap.Int64("old", old),
			zap.Int64("new", next),
		)
		delta := next - old
		sign := "+"
		if delta < 0 {
			sign, delta = "-", -delta
		}
		msg := fmt.Sprintf("Balance updated\nTeam: %s\nOld: **$%d**\nNew: **$%d**\nChange: %s$%d", mention(role), old, next, sign, delta)
		if show {
			return domain.Reply(msg), nil
		}
		return domain.Ephemeral(msg), nil
	}
}
