package storage

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"github.com/jose-valero/hybrid-guild-bot/internal/domain"
	"github.com/jose-valero/hybrid-guild-bot/internal/infra/metrics"
)

//go:embed migrations/*.sql
var migrations embed.FS

const sqliteFile = "guild_state.db"

type dialect struct {
	goose goose.Dialect
	// numbered placeholders ($1) for postgres, ? for sqlite
	numbered bool
}

func (d dialect) ph(i int) string {
	if d.numbered {
		return fmt.Sprintf("$%d", i)
	}
	return "?"
}

// DB is an open SQL backend plus the dialect its queries need.
type DB struct {
	*sql.DB
	dialect dialect
}

// Open picks PostgreSQL when databaseURL is set and the SQLite file under
// dataDir otherwise.
func Open(ctx context.Context, dataDir, databaseURL string) (*DB, error) {
	if strings.TrimSpace(databaseURL) != "" {
		return OpenPostgres(ctx, databaseURL)
	}
	return OpenSQLite(ctx, dataDir)
}

// OpenPostgres abre la conexión (pgx stdlib) y verifica health.
func OpenPostgres(ctx context.Context, url string) (*DB, error) {
	db, err := sql.Open("pgx", url)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(1 * time.Hour)
	return ping(ctx, db, dialect{goose: goose.DialectPostgres, numbered: true})
}

func OpenSQLite(ctx context.Context, dataDir string) (*DB, error) {
	if strings.TrimSpace(dataDir) == "" {
		return nil, fmt.Errorf("data dir is required")
	}
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	path := filepath.Join(filepath.Clean(dataDir), sqliteFile)
	dsn := path +
		"?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=synchronous(FULL)&_txlock=immediate"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	db.SetMaxOpenConns(4)
	return ping(ctx, db, dialect{goose: goose.DialectSQLite3})
}

func ping(ctx context.Context, db *sql.DB, d dialect) (*DB, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("db ping: %w", err)
	}
	return &DB{DB: db, dialect: d}, nil
}

// Migrate aplica todas las migraciones embebidas.
func (db *DB) Migrate(ctx context.Context) error {
	sub, err := fs.Sub(migrations, "migrations")
	if err != nil {
		return err
	}
	p, err := goose.NewProvider(db.dialect.goose, db.DB, sub)
	if err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	if _, err := p.Up(ctx); err != nil {
		return fmt.Errorf("migrate up: %w", err)
	}
	return nil
}

type queryer interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

// recordUpdate counts the outcome of one repo update. Only commit failures
// are logged; aborts come from the caller's own mutation.
func recordUpdate(m *metrics.Metrics, log *zap.Logger, table, guildID string, err error) {
	switch {
	case err == nil:
		m.StoreUpdate(table, "ok")
	case errors.Is(err, domain.ErrStoreCommit):
		m.StoreUpdate(table, "commit_failed")
		log.Error("commit failed", zap.String("table", table), zap.String("guild", guildID), zap.Error(err))
	default:
		m.StoreUpdate(table, "aborted")
	}
}
