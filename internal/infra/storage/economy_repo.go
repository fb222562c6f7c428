package storage

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/jose-valero/hybrid-guild-bot/internal/domain"
	"github.com/jose-valero/hybrid-guild-bot/internal/infra/metrics"
)

// EconomyRepo owns team_balances. A row is a whitelisted team role; deleting
// the row drops the role and its balance together.
type EconomyRepo struct {
	db      *DB
	locks   *keyedFIFO
	log     *zap.Logger
	metrics *metrics.Metrics
}

func NewEconomyRepo(db *DB, log *zap.Logger, m *metrics.Metrics) *EconomyRepo {
	if log == nil {
		log = zap.NewNop()
	}
	return &EconomyRepo{db: db, locks: newKeyedFIFO(), log: log.Named("economy"), metrics: m}
}

func (r *EconomyRepo) Get(ctx context.Context, guildID string) (domain.Economy, error) {
	return r.read(ctx, r.db.DB, guildID)
}

func (r *EconomyRepo) read(ctx context.Context, q queryer, guildID string) (domain.Economy, error) {
	rows, err := q.QueryContext(ctx, `
SELECT role_id, balance
  FROM team_balances
 WHERE guild_id = `+r.db.dialect.ph(1), guildID)
	if err != nil {
		return domain.Economy{}, fmt.Errorf("read economy %s: %w", guildID, err)
	}
	defer rows.Close()

	e := domain.NewEconomy(guildID)
	for rows.Next() {
		var (
			role    string
			balance int64
		)
		if err := rows.Scan(&role, &balance); err != nil {
			return domain.Economy{}, fmt.Errorf("scan economy %s: %w", guildID, err)
		}
		e.Balances[role] = balance
	}
	if err := rows.Err(); err != nil {
		return domain.Economy{}, fmt.Errorf("read economy %s: %w", guildID, err)
	}
	return e, nil
}

// Update applies fn to a copy of the guild's ledger and writes the difference
// in one transaction. An error from fn aborts without writing and is returned
// as is.
func (r *EconomyRepo) Update(ctx context.Context, guildID string, fn func(*domain.Economy) error) (domain.Economy, error) {
	unlock, err := r.locks.lock(ctx, guildID)
	if err != nil {
		return domain.Economy{}, err
	}
	defer unlock()

	e, err := r.update(ctx, guildID, fn)
	recordUpdate(r.metrics, r.log, "team_balances", guildID, err)
	return e, err
}

func (r *EconomyRepo) update(ctx context.Context, guildID string, fn func(*domain.Economy) error) (domain.Economy, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return domain.Economy{}, fmt.Errorf("%w: begin: %v", domain.ErrStoreCommit, err)
	}
	defer func() { _ = tx.Rollback() }()

	cur, err := r.read(ctx, tx, guildID)
	if err != nil {
		return domain.Economy{}, fmt.Errorf("%w: %v", domain.ErrStoreCommit, err)
	}
	next := cur.Clone()
	if err := fn(&next); err != nil {
		return cur, err
	}
	next.GuildID = guildID
	for role, balance := range next.Balances {
		if balance < 0 {
			return cur, fmt.Errorf("balance of role %s in guild %s would become negative", role, guildID)
		}
	}

	d := r.db.dialect
	for role := range cur.Balances {
		if next.Whitelisted(role) {
			continue
		}
		if _, err := tx.ExecContext(ctx, `
DELETE FROM team_balances
 WHERE guild_id = `+d.ph(1)+` AND role_id = `+d.ph(2), guildID, role); err != nil {
			return cur, fmt.Errorf("%w: delete: %v", domain.ErrStoreCommit, err)
		}
	}
	for role, balance := range next.Balances {
		if old, ok := cur.Balances[role]; ok && old == balance {
			continue
		}
		if _, err := tx.ExecContext(ctx, `
INSERT INTO team_balances (guild_id, role_id, balance, updated_at)
VALUES (`+d.ph(1)+`, `+d.ph(2)+`, `+d.ph(3)+`, CURRENT_TIMESTAMP)
ON CONFLICT (guild_id, role_id) DO UPDATE SET
  balance    = excluded.balance,
  updated_at = excluded.updated_at
`, guildID, role, balance); err != nil {
			return cur, fmt.Errorf("%w: upsert: %v", domain.ErrStoreCommit, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return cur, fmt.Errorf("%w: commit: %v", domain.ErrStoreCommit, err)
	}
	return next, nil
}
