package discord

import (
	"fmt"

	"github.com/bwmarrin/discordgo"

	"github.com/jose-valero/hybrid-guild-bot/internal/domain"
)

var optionTypes = map[domain.OptionType]discordgo.ApplicationCommandOptionType{
	domain.OptionString:  discordgo.ApplicationCommandOptionString,
	domain.OptionInteger: discordgo.ApplicationCommandOptionInteger,
	domain.OptionBoolean: discordgo.ApplicationCommandOptionBoolean,
	domain.OptionRole:    discordgo.ApplicationCommandOptionRole,
}

// applicationCommand traduce la definición del dominio al payload de Discord
func applicationCommand(def domain.CommandDefinition) *discordgo.ApplicationCommand {
	cmd := &discordgo.ApplicationCommand{
		Name:        def.Name,
		Description: def.Description,
	}
	if def.GuildOnly {
		dm := false
		cmd.DMPermission = &dm
	}
	for _, o := range def.Options {
		opt := &discordgo.ApplicationCommandOption{
			Type:        optionTypes[o.Type],
			Name:        o.Name,
			Description: o.Description,
			Required:    o.Required,
		}
		for _, c := range o.Choices {
			opt.Choices = append(opt.Choices, &discordgo.ApplicationCommandOptionChoice{Name: c, Value: c})
		}
		cmd.Options = append(cmd.Options, opt)
	}
	return cmd
}

// commandDefinition is the inverse of applicationCommand for what the
// platform hands back. Option types it does not know are skipped.
func commandDefinition(scope domain.Scope, cmd *discordgo.ApplicationCommand) domain.CommandDefinition {
	def := domain.CommandDefinition{
		Name:        cmd.Name,
		Description: cmd.Description,
		Scope:       scope,
	}
	for _, o := range cmd.Options {
		for t, dt := range optionTypes {
			if dt == o.Type {
				opt := domain.OptionDef{
					Name:        o.Name,
					Description: o.Description,
					Type:        t,
					Required:    o.Required,
				}
				for _, c := range o.Choices {
					opt.Choices = append(opt.Choices, fmt.Sprint(c.Value))
				}
				def.Options = append(def.Options, opt)
				break
			}
		}
	}
	return def
}
