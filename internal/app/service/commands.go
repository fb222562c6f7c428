package service

import "github.com/jose-valero/hybrid-guild-bot/internal/domain"

const (
	CmdPing       = "ping"
	CmdAbout      = "about"
	CmdCounter    = "counter"
	CmdPanel      = "panel"
	CmdLockdown   = "lockdown"
	CmdUnlockdown = "unlockdown"
	CmdSync       = "sync"
	CmdState      = "state"

	CmdWhitelist     = "whitelist"
	CmdBalance       = "balance"
	CmdPay           = "pay"
	CmdResetBalance  = "reset_balance"
	CmdSetBalance    = "set_balance"
	CmdAddBalance    = "add_balance"
	CmdRemoveBalance = "remove_balance"
)

// Component ids are persisted inside posted messages. Never rename them.
const (
	PanelConfirmID   = "panel:confirm"
	PanelIncrementID = "panel:increment"
	PanelInfoID      = "panel:info"
)

// CommandDefinitions is the declared command set. Every command is global;
// the dev guild receives a mirror at sync time.
func CommandDefinitions() []domain.CommandDefinition {
	return []domain.CommandDefinition{
		{Name: CmdPing, Description: "Check the bot's latency"},
		{Name: CmdAbout, Description: "Learn about this bot"},
		{Name: CmdCounter, Description: "Increment the per-guild counter", GuildOnly: true},
		{Name: CmdPanel, Description: "Display an interactive control panel", GuildOnly: true, StructuredOnly: true},
		{Name: CmdLockdown, Description: "Prevent @everyone from sending messages in this channel", GuildOnly: true, AdminOnly: true},
		{Name: CmdUnlockdown, Description: "Allow @everyone to send messages again", GuildOnly: true, AdminOnly: true},
		{
			Name:        CmdSync,
			Description: "Sync application commands",
			AdminOnly:   true,
			Private:     true,
			Options: []domain.OptionDef{{
				Name:        "guild_only",
				Description: "Sync only to the configured dev guild",
				Type:        domain.OptionBoolean,
			}},
		},
		{Name: CmdState, Description: "Show this server's counter and lockdown state", GuildOnly: true},
		{
			Name:        CmdWhitelist,
			Description: "Manage whitelisted team roles",
			GuildOnly:   true,
			AdminOnly:   true,
			Options: []domain.OptionDef{
				{Name: "action", Description: "What to do", Type: domain.OptionString, Required: true, Choices: []string{"add", "remove", "list"}},
				{Name: "role", Description: "Team role to add or remove", Type: domain.OptionRole},
			},
		},
		{
			Name:        CmdBalance,
			Description: "Check a team role balance",
			GuildOnly:   true,
			AdminArgs:   true,
			Options: []domain.OptionDef{
				{Name: "team_role", Description: "Team role to inspect (admin only)", Type: domain.OptionRole},
			},
		},
		{
			Name:        CmdPay,
			Description: "Transfer funds to another team role",
			GuildOnly:   true,
			Options: []domain.OptionDef{
				{Name: "amount", Description: "Amount to transfer", Type: domain.OptionInteger, Required: true},
				{Name: "team_role", Description: "Recipient team role", Type: domain.OptionRole, Required: true},
			},
		},
		balanceCommand(CmdResetBalance, "Reset a team role balance", "Amount to reset to"),
		balanceCommand(CmdSetBalance, "Set a team role balance", "Amount to set"),
		balanceCommand(CmdAddBalance, "Add funds to a team role balance", "Amount to add"),
		balanceCommand(CmdRemoveBalance, "Remove funds from a team role balance", "Amount to remove"),
	}
}

func balanceCommand(name, description, amount string) domain.CommandDefinition {
	return domain.CommandDefinition{
		Name:        name,
		Description: description,
		GuildOnly:   true,
		AdminOnly:   true,
		Options: []domain.OptionDef{
			{Name: "team_role", Description: "Team role to change", Type: domain.OptionRole, Required: true},
			{Name: "amount", Description: amount, Type: domain.OptionInteger, Required: true},
			{Name: "show", Description: "Show publicly", Type: domain.OptionBoolean},
		},
	}
}

// PanelComponents are the buttons attached to a posted panel.
func PanelComponents() []domain.ComponentDescriptor {
	return []domain.ComponentDescriptor{
		{ID: PanelConfirmID, Action: domain.ActionConfirm, Label: "✅ Confirm", Style: domain.StyleSuccess},
		{ID: PanelIncrementID, Action: domain.ActionIncrement, Label: "🔁 Increment Counter", Style: domain.StylePrimary},
		{ID: PanelInfoID, Action: domain.ActionInfo, Label: "🧾 Show Info", Style: domain.StyleSecondary},
	}
}
