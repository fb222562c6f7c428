package discord

import (
	"context"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"

	"github.com/jose-valero/hybrid-guild-bot/internal/domain"
)

var noMentions = &discordgo.MessageAllowedMentions{}

// componentRows reparte los botones en filas de 5
func componentRows(descs []domain.ComponentDescriptor) []discordgo.MessageComponent {
	if len(descs) == 0 {
		return nil
	}
	var rows []discordgo.MessageComponent
	for start := 0; start < len(descs); start += 5 {
		end := min(start+5, len(descs))
		row := discordgo.ActionsRow{}
		for _, d := range descs[start:end] {
			row.Components = append(row.Components, discordgo.Button{
				Label:    d.Label,
				Style:    discordgo.ButtonStyle(d.Style),
				CustomID: d.ID,
			})
		}
		rows = append(rows, row)
	}
	return rows
}

// Respond contesta una interacción al instante, sin pasar por la cola.
func Respond(s Session, log *zap.Logger, ic *discordgo.InteractionCreate, resp domain.Response) error {
	data := &discordgo.InteractionResponseData{
		Content:         resp.Content,
		Components:      componentRows(resp.Components),
		AllowedMentions: noMentions,
	}
	if resp.Ephemeral {
		data.Flags = discordgo.MessageFlagsEphemeral
	}
	err := s.InteractionRespond(ic.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: data,
	})
	if err != nil {
		log.Warn("respond failed", zap.Error(err))
	}
	return err
}

// Acknowledge defers an interaction. Clicks defer an update of the message
// that carries the button; commands defer a new message, ephemeral when
// private is set.
func Acknowledge(ctx context.Context, s Session, ic *discordgo.InteractionCreate, private bool) error {
	resp := &discordgo.InteractionResponse{Type: discordgo.InteractionResponseDeferredChannelMessageWithSource}
	switch {
	case ic.Type == discordgo.InteractionMessageComponent:
		resp.Type = discordgo.InteractionResponseDeferredMessageUpdate
	case private:
		resp.Data = &discordgo.InteractionResponseData{Flags: discordgo.MessageFlagsEphemeral}
	}
	return s.InteractionRespond(ic.Interaction, resp, discordgo.WithContext(ctx))
}

// Complete delivers the result of an acknowledged interaction. private must
// match what was passed to Acknowledge.
func Complete(s Session, log *zap.Logger, ic *discordgo.InteractionCreate, resp domain.Response, private bool) {
	click := ic.Type == discordgo.InteractionMessageComponent
	var err error
	switch {
	case click && resp.UpdateMessage:
		_, err = s.InteractionResponseEdit(ic.Interaction, webhookEdit(resp))
	case click:
		if resp.Content == "" && len(resp.Components) == 0 {
			return
		}
		_, err = s.FollowupMessageCreate(ic.Interaction, true, webhookParams(resp))
	case resp.Ephemeral && !private:
		// el placeholder público no puede volverse efímero: se borra y se
		// manda el follow-up privado
		if derr := s.InteractionResponseDelete(ic.Interaction); derr != nil {
			log.Warn("delete deferred response failed", zap.Error(derr))
		}
		_, err = s.FollowupMessageCreate(ic.Interaction, true, webhookParams(resp))
	default:
		_, err = s.InteractionResponseEdit(ic.Interaction, webhookEdit(resp))
	}
	if err != nil {
		log.Warn("deliver failed", zap.Error(err))
	}
}

func webhookEdit(resp domain.Response) *discordgo.WebhookEdit {
	content := resp.Content
	edit := &discordgo.WebhookEdit{Content: &content, AllowedMentions: noMentions}
	if rows := componentRows(resp.Components); rows != nil {
		edit.Components = &rows
	}
	return edit
}

func webhookParams(resp domain.Response) *discordgo.WebhookParams {
	p := &discordgo.WebhookParams{
		Content:         resp.Content,
		Components:      componentRows(resp.Components),
		AllowedMentions: noMentions,
	}
	if resp.Ephemeral {
		p.Flags = discordgo.MessageFlagsEphemeral
	}
	return p
}

// SendReply answers a prefixed message in its channel. There is no private
// variant on this surface.
func SendReply(s Session, log *zap.Logger, m *discordgo.MessageCreate, resp domain.Response) error {
	_, err := s.ChannelMessageSendComplex(m.ChannelID, &discordgo.MessageSend{
		Content:         resp.Content,
		Components:      componentRows(resp.Components),
		Reference:       m.Reference(),
		AllowedMentions: noMentions,
	})
	if err != nil {
		log.Warn("send reply failed", zap.String("channel", m.ChannelID), zap.Error(err))
	}
	return err
}
