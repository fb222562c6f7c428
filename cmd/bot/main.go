package main

import (
	"context"
	"errors"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	discordrouter "github.com/jose-valero/hybrid-guild-bot/internal/adapters/discord"
	"github.com/jose-valero/hybrid-guild-bot/internal/adapters/httpapi"
	"github.com/jose-valero/hybrid-guild-bot/internal/app/dispatch"
	"github.com/jose-valero/hybrid-guild-bot/internal/app/service"
	"github.com/jose-valero/hybrid-guild-bot/internal/domain"
	"github.com/jose-valero/hybrid-guild-bot/internal/infra/config"
	"github.com/jose-valero/hybrid-guild-bot/internal/infra/logging"
	"github.com/jose-valero/hybrid-guild-bot/internal/infra/metrics"
	"github.com/jose-valero/hybrid-guild-bot/internal/infra/storage"
)

const drainTimeout = 15 * time.Second

func main() {
	configPath := flag.String("config", "config.yml", "path to config.yml")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		// todavía no hay logger
		println("config:", err.Error())
		os.Exit(1)
	}

	log, err := logging.New(logging.Options{Level: cfg.LogLevel, JSON: cfg.LogJSON, File: cfg.LogFile})
	if err != nil {
		println("logging:", err.Error())
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	if err := run(cfg, log); err != nil {
		log.Fatal("bot stopped", zap.Error(err))
	}
}

func run(cfg config.Config, log *zap.Logger) error {
	ctx := context.Background()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	// DB
	db, err := storage.Open(ctx, cfg.DataDir, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer db.Close()
	if err := db.Migrate(ctx); err != nil {
		return err
	}
	log.Info("store ready", zap.String("data_dir", cfg.DataDir), zap.Bool("postgres", cfg.DatabaseURL != ""))
	store := storage.NewGuildStateRepo(db, log, m)
	economy := storage.NewEconomyRepo(db, log, m)

	// Discord session
	s, err := discordgo.New(cfg.BotAuth())
	if err != nil {
		return err
	}
	s.SyncEvents = true
	s.Identify.Intents = discordgo.IntentsGuilds |
		discordgo.IntentsGuildMessages |
		discordgo.IntentsDirectMessages |
		discordgo.IntentMessageContent

	appID := cfg.AppID
	if appID == "" {
		// para bots el id de aplicación coincide con el del usuario
		me, err := s.User("@me")
		if err != nil {
			return err
		}
		appID = me.ID
	}

	// Services
	syncer, err := service.NewSyncService(discordrouter.NewCommandAPI(s, appID), service.CommandDefinitions(), cfg.DevGuildID, log, m)
	if err != nil {
		return err
	}
	commands := dispatch.NewRouter(log, m)
	components := dispatch.NewComponentRegistry()
	handlers := service.NewHandlerSet(store, economy, service.NewGate(cfg.AdminRoleIDs), discordrouter.NewChannelLocker(s), syncer, s,
		service.HandlerOptions{Prefix: cfg.Prefix, DevGuildID: cfg.DevGuildID}, log)
	if err := handlers.Register(commands, components); err != nil {
		return err
	}
	components.Seal()
	log.Info("handlers registered", zap.Int("commands", len(commands.Definitions())), zap.Strings("components", components.IDs()))

	// Router (antes de Open para no perder eventos)
	router := discordrouter.NewRouter(s, commands, components, discordrouter.Options{
		Prefix:      cfg.Prefix,
		ClickWindow: cfg.ClickWindow,
		State:       s.State,
	}, log, m)
	router.Handlers()

	if err := s.Open(); err != nil {
		return err
	}
	defer s.Close()
	log.Info("connected", zap.String("user", s.State.User.Username), zap.String("id", s.State.User.ID))

	startupSync(ctx, syncer, cfg.DevGuildID, log)

	var web *httpapi.Server
	if cfg.HTTPAddr != "" {
		web = httpapi.New(cfg.HTTPAddr, db, reg, log)
		go func() {
			if err := web.Start(); err != nil {
				log.Error("http server", zap.Error(err))
			}
		}()
	}

	// Esperar señal
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	sig := <-stop
	log.Info("shutting down", zap.String("signal", sig.String()))

	dctx, cancel := context.WithTimeout(context.Background(), drainTimeout)
	defer cancel()
	if web != nil {
		_ = web.Shutdown(dctx)
	}
	// primero vaciamos la cola, después se cierran sesión y DB (defers)
	if err := router.Close(dctx); err != nil {
		if !errors.Is(err, context.DeadlineExceeded) {
			return err
		}
		log.Warn("drain timed out; pending events dropped")
	}
	return nil
}

// startupSync sincroniza al dev guild si está configurado, si no global. Un
// fallo no detiene el bot.
func startupSync(ctx context.Context, syncer *service.SyncService, devGuildID string, log *zap.Logger) {
	scope := domain.GlobalScope
	if devGuildID != "" {
		scope = domain.GuildScope(devGuildID)
	}
	sctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	res, err := syncer.Sync(sctx, scope)
	if err != nil {
		log.Error("startup command sync failed", zap.Stringer("scope", scope), zap.Error(err))
		return
	}
	log.Info("startup command sync", zap.Stringer("scope", scope), zap.Int("changed", res.Changed()))
}
