package discord

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/bwmarrin/discordgo"
)

// fakeSession records what the adapter sends. Zero value is ready to use.
type fakeSession struct {
	mu sync.Mutex

	handlers  []interface{}
	responses []*discordgo.InteractionResponse
	edits     []*discordgo.WebhookEdit
	deletes   int
	followups []*discordgo.WebhookParams
	sent      []*discordgo.MessageSend

	commands map[string]map[string]*discordgo.ApplicationCommand // guild -> id -> cmd
	nextID   int

	channels  map[string]*discordgo.Channel
	permSets  []permCall
	permDels  []string
	guilds    map[string]*discordgo.Guild
	roleCalls int
}

type permCall struct {
	channelID, targetID string
	allow, deny         int64
}

func (f *fakeSession) AddHandler(h interface{}) func() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.handlers = append(f.handlers, h)
	return func() {}
}

func (f *fakeSession) HeartbeatLatency() time.Duration { return 25 * time.Millisecond }

func (f *fakeSession) InteractionRespond(_ *discordgo.Interaction, resp *discordgo.InteractionResponse, _ ...discordgo.RequestOption) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.responses = append(f.responses, resp)
	return nil
}

func (f *fakeSession) InteractionResponseEdit(_ *discordgo.Interaction, edit *discordgo.WebhookEdit, _ ...discordgo.RequestOption) (*discordgo.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.edits = append(f.edits, edit)
	return &discordgo.Message{Content: *edit.Content}, nil
}

func (f *fakeSession) InteractionResponseDelete(_ *discordgo.Interaction, _ ...discordgo.RequestOption) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deletes++
	return nil
}

// responseTypes is safe to call while handlers are still running.
func (f *fakeSession) responseTypes() []discordgo.InteractionResponseType {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]discordgo.InteractionResponseType, len(f.responses))
	for i, r := range f.responses {
		out[i] = r.Type
	}
	return out
}

func (f *fakeSession) editCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.edits)
}

func (f *fakeSession) FollowupMessageCreate(_ *discordgo.Interaction, _ bool, data *discordgo.WebhookParams, _ ...discordgo.RequestOption) (*discordgo.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.followups = append(f.followups, data)
	return &discordgo.Message{Content: data.Content}, nil
}

func (f *fakeSession) ChannelMessageSendComplex(channelID string, data *discordgo.MessageSend, _ ...discordgo.RequestOption) (*discordgo.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, data)
	return &discordgo.Message{ChannelID: channelID, Content: data.Content}, nil
}

func (f *fakeSession) scope(guildID string) map[string]*discordgo.ApplicationCommand {
	if f.commands == nil {
		f.commands = map[string]map[string]*discordgo.ApplicationCommand{}
	}
	m, ok := f.commands[guildID]
	if !ok {
		m = map[string]*discordgo.ApplicationCommand{}
		f.commands[guildID] = m
	}
	return m
}

func (f *fakeSession) ApplicationCommands(_, guildID string, _ ...discordgo.RequestOption) ([]*discordgo.ApplicationCommand, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*discordgo.ApplicationCommand
	for _, c := range f.scope(guildID) {
		out = append(out, c)
	}
	return out, nil
}

func (f *fakeSession) ApplicationCommandCreate(appID, guildID string, cmd *discordgo.ApplicationCommand, _ ...discordgo.RequestOption) (*discordgo.ApplicationCommand, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	c := *cmd
	c.ID = fmt.Sprint(f.nextID)
	c.ApplicationID = appID
	c.GuildID = guildID
	f.scope(guildID)[c.ID] = &c
	return &c, nil
}

func (f *fakeSession) ApplicationCommandEdit(_, guildID, cmdID string, cmd *discordgo.ApplicationCommand, _ ...discordgo.RequestOption) (*discordgo.ApplicationCommand, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.scope(guildID)[cmdID]; !ok {
		return nil, errors.New("unknown command")
	}
	c := *cmd
	c.ID = cmdID
	f.scope(guildID)[cmdID] = &c
	return &c, nil
}

func (f *fakeSession) ApplicationCommandDelete(_, guildID, cmdID string, _ ...discordgo.RequestOption) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.scope(guildID), cmdID)
	return nil
}

func (f *fakeSession) Channel(channelID string, _ ...discordgo.RequestOption) (*discordgo.Channel, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	ch, ok := f.channels[channelID]
	if !ok {
		return nil, errors.New("unknown channel")
	}
	return ch, nil
}

func (f *fakeSession) ChannelPermissionSet(channelID, targetID string, _ discordgo.PermissionOverwriteType, allow, deny int64, _ ...discordgo.RequestOption) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.permSets = append(f.permSets, permCall{channelID: channelID, targetID: targetID, allow: allow, deny: deny})
	return nil
}

func (f *fakeSession) ChannelPermissionDelete(channelID, targetID string, _ ...discordgo.RequestOption) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.permDels = append(f.permDels, channelID+"/"+targetID)
	return nil
}

func (f *fakeSession) Guild(guildID string, _ ...discordgo.RequestOption) (*discordgo.Guild, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	g, ok := f.guilds[guildID]
	if !ok {
		return nil, errors.New("unknown guild")
	}
	return g, nil
}

func (f *fakeSession) GuildRoles(guildID string, _ ...discordgo.RequestOption) ([]*discordgo.Role, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.roleCalls++
	g, ok := f.guilds[guildID]
	if !ok {
		return nil, errors.New("unknown guild")
	}
	return g.Roles, nil
}
