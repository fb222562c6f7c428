package main

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"strings"

	"github.com/aws/aws-lambda-go/events"
	"go.uber.org/zap"

	"github.com/jose-valero/hybrid-guild-bot/internal/app/service"
	"github.com/jose-valero/hybrid-guild-bot/internal/domain"
)

type (
	eventsRequest  = events.APIGatewayV2HTTPRequest
	eventsResponse = events.APIGatewayV2HTTPResponse
)

type syncer interface {
	Sync(ctx context.Context, scope domain.Scope) (service.SyncResult, error)
	DevGuildID() string
}

type handler struct {
	syncer    syncer
	secretHdr string
	secret    string
	log       *zap.Logger
}

type syncReply struct {
	Scope   string   `json:"scope"`
	Added   []string `json:"added"`
	Updated []string `json:"updated"`
	Removed []string `json:"removed"`
	Error   string   `json:"error,omitempty"`
}

func (h *handler) readSecret(req eventsRequest) string {
	// API Gateway v2 manda los headers en minúscula, pero por las dudas
	k := strings.ToLower(h.secretHdr)
	if v := req.Headers[k]; v != "" {
		return v
	}
	for name, v := range req.Headers {
		if strings.EqualFold(name, k) {
			return v
		}
	}
	return ""
}

// handle corre un sync. ?scope=guild apunta al dev guild, ?scope=global (o sin
// parámetro) al set global.
func (h *handler) handle(ctx context.Context, req eventsRequest) (eventsResponse, error) {
	h.log.Info("sync hit",
		zap.String("path", req.RawPath),
		zap.String("method", req.RequestContext.HTTP.Method),
		zap.String("ip", req.RequestContext.HTTP.SourceIP),
	)

	got := h.readSecret(req)
	if h.secret == "" || subtle.ConstantTimeCompare([]byte(got), []byte(h.secret)) != 1 {
		h.log.Warn("unauthorized sync request")
		return reply(401, syncReply{Error: "unauthorized"}), nil
	}

	scope := domain.GlobalScope
	switch strings.ToLower(req.QueryStringParameters["scope"]) {
	case "", "global":
	case "guild":
		if h.syncer.DevGuildID() == "" {
			return reply(400, syncReply{Error: "no dev_guild_id configured"}), nil
		}
		scope = domain.GuildScope(h.syncer.DevGuildID())
	default:
		return reply(400, syncReply{Error: "scope must be global or guild"}), nil
	}

	res, err := h.syncer.Sync(ctx, scope)
	out := syncReply{Scope: scope.String(), Added: res.Added, Updated: res.Updated, Removed: res.Removed}
	if err != nil {
		h.log.Error("sync failed", zap.Stringer("scope", scope), zap.Error(err))
		out.Error = err.Error()
		return reply(502, out), nil
	}
	return reply(200, out), nil
}

func reply(status int, body syncReply) eventsResponse {
	raw, _ := json.Marshal(body)
	return eventsResponse{
		StatusCode: status,
		Headers:    map[string]string{"Content-Type": "application/json"},
		Body:       string(raw),
	}
}
