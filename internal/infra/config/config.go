package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"

	"github.com/jose-valero/hybrid-guild-bot/internal/domain"
)

// AdminRoles maps a guild id to the role ids that may run admin commands.
// In YAML it is either a plain list (stored under domain.AllGuilds) or a map.
type AdminRoles map[string][]string

func (a *AdminRoles) UnmarshalYAML(n *yaml.Node) error {
	switch n.Kind {
	case yaml.SequenceNode:
		var ids []string
		if err := n.Decode(&ids); err != nil {
			return err
		}
		*a = AdminRoles{domain.AllGuilds: ids}
	case yaml.MappingNode:
		var m map[string][]string
		if err := n.Decode(&m); err != nil {
			return err
		}
		*a = m
	case yaml.ScalarNode:
		if n.Tag == "!!null" || n.Value == "" {
			*a = nil
			return nil
		}
		return fmt.Errorf("admin_role_ids: expected list or map, got %q", n.Value)
	default:
		return errors.New("admin_role_ids: expected list or map")
	}
	return nil
}

type Config struct {
	Token        string        `yaml:"-" env:"DISCORD_TOKEN"`
	AppID        string        `yaml:"app_id" env:"DISCORD_APP_ID"`
	Prefix       string        `yaml:"prefix" env:"BOT_PREFIX"`
	AdminRoleIDs AdminRoles    `yaml:"admin_role_ids"`
	DataDir      string        `yaml:"data_dir" env:"DATA_DIR"`
	DevGuildID   string        `yaml:"dev_guild_id" env:"DEV_GUILD_ID"`
	DatabaseURL  string        `yaml:"database_url" env:"DATABASE_URL"`
	LogLevel     string        `yaml:"log_level" env:"LOG_LEVEL"`
	LogFile      string        `yaml:"log_file" env:"LOG_FILE"`
	LogJSON      bool          `yaml:"log_json" env:"LOG_JSON"`
	HTTPAddr     string        `yaml:"http_addr" env:"HTTP_ADDR"` // vacío = sin servidor HTTP
	ClickWindow  time.Duration `yaml:"click_window" env:"CLICK_WINDOW"`
}

func Defaults() Config {
	return Config{
		Prefix:      "!",
		DataDir:     "data",
		LogLevel:    "info",
		HTTPAddr:    ":8080",
		ClickWindow: time.Second,
	}
}

// Load lee .env (si existe), luego el YAML en path (si existe) y por último
// las variables de entorno, que siempre ganan.
func Load(path string) (Config, error) {
	_ = godotenv.Load()

	cfg := Defaults()
	if path != "" {
		raw, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return Config{}, fmt.Errorf("read %s: %w", path, err)
		default:
			if err := yaml.Unmarshal(raw, &cfg); err != nil {
				return Config{}, fmt.Errorf("parse %s: %w", path, err)
			}
		}
	}

	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("env: %w", err)
	}
	// GUILD_ID tiene prioridad sobre DEV_GUILD_ID
	if v := os.Getenv("GUILD_ID"); v != "" {
		cfg.DevGuildID = v
	}
	cfg.normalize()

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) normalize() {
	c.Token = strings.TrimSpace(c.Token)
	c.DevGuildID = strings.TrimSpace(c.DevGuildID)
	for guild, ids := range c.AdminRoleIDs {
		kept := ids[:0]
		for _, id := range ids {
			if id = strings.TrimSpace(id); id != "" {
				kept = append(kept, id)
			}
		}
		c.AdminRoleIDs[guild] = kept
	}
}

func (c Config) Validate() error {
	var errs []error
	if c.Token == "" {
		errs = append(errs, errors.New("DISCORD_TOKEN is required in environment or .env file"))
	}
	if c.Prefix == "" {
		errs = append(errs, errors.New("prefix must not be empty"))
	}
	if c.DataDir == "" && c.DatabaseURL == "" {
		errs = append(errs, errors.New("data_dir or database_url is required"))
	}
	if c.DevGuildID != "" && !isSnowflake(c.DevGuildID) {
		errs = append(errs, fmt.Errorf("dev_guild_id must be an integer, got %q", c.DevGuildID))
	}
	for guild, ids := range c.AdminRoleIDs {
		if guild != domain.AllGuilds && !isSnowflake(guild) {
			errs = append(errs, fmt.Errorf("admin_role_ids: invalid guild id %q", guild))
		}
		for _, id := range ids {
			if !isSnowflake(id) {
				errs = append(errs, fmt.Errorf("admin_role_ids: invalid role id %q", id))
			}
		}
	}
	if _, err := zapcore.ParseLevel(c.LogLevel); err != nil {
		errs = append(errs, fmt.Errorf("log_level: %w", err))
	}
	if c.ClickWindow < 0 {
		errs = append(errs, errors.New("click_window must not be negative"))
	}
	return errors.Join(errs...)
}

// BotAuth devuelve el token con el prefijo "Bot " que espera discordgo.
func (c Config) BotAuth() string {
	if strings.HasPrefix(strings.ToLower(c.Token), "bot ") {
		return c.Token
	}
	return "Bot " + c.Token
}

func isSnowflake(s string) bool {
	_, err := strconv.ParseUint(s, 10, 64)
	return err == nil
}
