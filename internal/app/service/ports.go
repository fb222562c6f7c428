package service

import (
	"context"
	"time"

	"github.com/jose-valero/hybrid-guild-bot/internal/domain"
)

//go:generate mockgen -destination=mocks/mock_ports.go -package=mocks . ChannelLocker,CommandAPI

// Lo implementa internal/infra/storage.GuildStateRepo
type GuildStateStore interface {
	Get(ctx context.Context, guildID string) (domain.GuildState, error)
	Update(ctx context.Context, guildID string, fn func(*domain.GuildState) error) (domain.GuildState, error)
}

// EconomyStore keeps each guild's team-role ledger. Lo implementa
// internal/infra/storage.EconomyRepo.
type EconomyStore interface {
	Get(ctx context.Context, guildID string) (domain.Economy, error)
	Update(ctx context.Context, guildID string, fn func(*domain.Economy) error) (domain.Economy, error)
}

// ChannelLocker denies or restores the default send permission in a channel.
// Lo implementa internal/adapters/discord.
type ChannelLocker interface {
	SetChannelLocked(ctx context.Context, guildID, channelID string, locked bool) error
}

// RemoteCommand is a command as currently registered on the platform.
type RemoteCommand struct {
	ID  string
	Def domain.CommandDefinition
}

// CommandAPI is the platform's registered-command set for one scope at a time.
type CommandAPI interface {
	List(ctx context.Context, scope domain.Scope) ([]RemoteCommand, error)
	Create(ctx context.Context, scope domain.Scope, def domain.CommandDefinition) error
	Edit(ctx context.Context, scope domain.Scope, id string, def domain.CommandDefinition) error
	Delete(ctx context.Context, scope domain.Scope, id string) error
}

type LatencyProbe interface {
	HeartbeatLatency() time.Duration
}
