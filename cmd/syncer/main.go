// cmd/syncer: Lambda detrás de API Gateway que sincroniza los slash commands
// sin levantar el gateway del bot.
package main

import (
	"os"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"

	discordrouter "github.com/jose-valero/hybrid-guild-bot/internal/adapters/discord"
	"github.com/jose-valero/hybrid-guild-bot/internal/app/service"
	"github.com/jose-valero/hybrid-guild-bot/internal/infra/config"
	"github.com/jose-valero/hybrid-guild-bot/internal/infra/logging"
)

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func main() {
	cfg, err := config.Load(os.Getenv("CONFIG_PATH"))
	if err != nil {
		println("config:", err.Error())
		os.Exit(1)
	}
	log, err := logging.New(logging.Options{Level: cfg.LogLevel, JSON: true})
	if err != nil {
		println("logging:", err.Error())
		os.Exit(1)
	}

	// solo REST: no hace falta Open()
	s, err := discordgo.New(cfg.BotAuth())
	if err != nil {
		log.Fatal("discord session", zap.Error(err))
	}
	appID := cfg.AppID
	if appID == "" {
		me, err := s.User("@me")
		if err != nil {
			log.Fatal("resolve application id", zap.Error(err))
		}
		appID = me.ID
	}

	syncer, err := service.NewSyncService(discordrouter.NewCommandAPI(s, appID), service.CommandDefinitions(), cfg.DevGuildID, log, nil)
	if err != nil {
		log.Fatal("invalid command set", zap.Error(err))
	}

	h := &handler{
		syncer:    syncer,
		secretHdr: getenv("SYNC_HEADER_NAME", "x-sync-secret"),
		secret:    os.Getenv("SYNC_SECRET"),
		log:       log,
	}
	lambda.Start(h.handle)
}
