package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/jose-valero/hybrid-guild-bot/internal/domain"
	"github.com/jose-valero/hybrid-guild-bot/internal/infra/metrics"
)

// GuildStateRepo is the only writer of guild_state. Updates for one guild are
// serialized in call order and committed before Update returns.
type GuildStateRepo struct {
	db      *DB
	locks   *keyedFIFO
	log     *zap.Logger
	metrics *metrics.Metrics
}

func NewGuildStateRepo(db *DB, log *zap.Logger, m *metrics.Metrics) *GuildStateRepo {
	if log == nil {
		log = zap.NewNop()
	}
	return &GuildStateRepo{db: db, locks: newKeyedFIFO(), log: log.Named("state"), metrics: m}
}

// Get returns the stored state or the defaults. It never creates a record.
func (r *GuildStateRepo) Get(ctx context.Context, guildID string) (domain.GuildState, error) {
	return r.read(ctx, r.db.DB, guildID)
}

func (r *GuildStateRepo) read(ctx context.Context, q queryer, guildID string) (domain.GuildState, error) {
	st := domain.DefaultGuildState(guildID)
	err := q.QueryRowContext(ctx, `
SELECT counter, locked
  FROM guild_state
 WHERE guild_id = `+r.db.dialect.ph(1), guildID).Scan(&st.Counter, &st.Locked)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.DefaultGuildState(guildID), nil
	}
	if err != nil {
		return domain.GuildState{}, fmt.Errorf("read guild state %s: %w", guildID, err)
	}
	return st, nil
}

// Update applies fn to the current state and commits the result. An error
// from fn aborts without writing and is returned as is.
func (r *GuildStateRepo) Update(ctx context.Context, guildID string, fn func(*domain.GuildState) error) (domain.GuildState, error) {
	unlock, err := r.locks.lock(ctx, guildID)
	if err != nil {
		return domain.GuildState{}, err
	}
	defer unlock()

	st, err := r.update(ctx, guildID, fn)
	recordUpdate(r.metrics, r.log, "guild_state", guildID, err)
	return st, err
}

func (r *GuildStateRepo) update(ctx context.Context, guildID string, fn func(*domain.GuildState) error) (domain.GuildState, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return domain.GuildState{}, fmt.Errorf("%w: begin: %v", domain.ErrStoreCommit, err)
	}
	defer func() { _ = tx.Rollback() }()

	cur, err := r.read(ctx, tx, guildID)
	if err != nil {
		return domain.GuildState{}, fmt.Errorf("%w: %v", domain.ErrStoreCommit, err)
	}
	next := cur
	if err := fn(&next); err != nil {
		return cur, err
	}
	next.GuildID = guildID
	if next.Counter < 0 {
		return cur, fmt.Errorf("counter for guild %s would become negative", guildID)
	}

	d := r.db.dialect
	_, err = tx.ExecContext(ctx, `
INSERT INTO guild_state (guild_id, counter, locked, updated_at)
VALUES (`+d.ph(1)+`, `+d.ph(2)+`, `+d.ph(3)+`, CURRENT_TIMESTAMP)
ON CONFLICT (guild_id) DO UPDATE SET
  counter    = excluded.counter,
  locked     = excluded.locked,
  updated_at = excluded.updated_at
`, guildID, next.Counter, next.Locked)
	if err != nil {
		return cur, fmt.Errorf("%w: upsert: %v", domain.ErrStoreCommit, err)
	}
	if err := tx.Commit(); err != nil {
		return cur, fmt.Errorf("%w: commit: %v", domain.ErrStoreCommit, err)
	}
	return next, nil
}
