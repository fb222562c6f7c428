package discord

import (
	"context"

	"github.com/bwmarrin/discordgo"

	"github.com/jose-valero/hybrid-guild-bot/internal/app/service"
	"github.com/jose-valero/hybrid-guild-bot/internal/domain"
)

// CommandAPI exposes the application's registered commands per scope.
type CommandAPI struct {
	s     Session
	appID string
}

func NewCommandAPI(s Session, appID string) *CommandAPI {
	return &CommandAPI{s: s, appID: appID}
}

var _ service.CommandAPI = (*CommandAPI)(nil)

func (a *CommandAPI) List(ctx context.Context, scope domain.Scope) ([]service.RemoteCommand, error) {
	cmds, err := a.s.ApplicationCommands(a.appID, scopeGuild(scope), discordgo.WithContext(ctx))
	if err != nil {
		return nil, err
	}
	out := make([]service.RemoteCommand, 0, len(cmds))
	for _, c := range cmds {
		out = append(out, service.RemoteCommand{ID: c.ID, Def: commandDefinition(scope, c)})
	}
	return out, nil
}

func (a *CommandAPI) Create(ctx context.Context, scope domain.Scope, def domain.CommandDefinition) error {
	_, err := a.s.ApplicationCommandCreate(a.appID, scopeGuild(scope), applicationCommand(def), discordgo.WithContext(ctx))
	return err
}

func (a *CommandAPI) Edit(ctx context.Context, scope domain.Scope, id string, def domain.CommandDefinition) error {
	_, err := a.s.ApplicationCommandEdit(a.appID, scopeGuild(scope), id, applicationCommand(def), discordgo.WithContext(ctx))
	return err
}

func (a *CommandAPI) Delete(ctx context.Context, scope domain.Scope, id string) error {
	return a.s.ApplicationCommandDelete(a.appID, scopeGuild(scope), id, discordgo.WithContext(ctx))
}
