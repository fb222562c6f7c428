package service

import (
	"context"
	"crypto/sha1"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/jose-valero/hybrid-guild-bot/internal/domain"
	"github.com/jose-valero/hybrid-guild-bot/internal/infra/metrics"
)

type SyncResult struct {
	Scope   domain.Scope
	Added   []string
	Updated []string
	Removed []string
}

func (r SyncResult) Changed() int { return len(r.Added) + len(r.Updated) + len(r.Removed) }

// SyncService reconciles the declared command set of one scope with what the
// platform has registered for that scope. It never reads or writes another scope.
type SyncService struct {
	api        CommandAPI
	declared   []domain.CommandDefinition
	devGuildID string
	log        *zap.Logger
	metrics    *metrics.Metrics
}

// NewSyncService validates the declared definitions; a conflict is a
// configuration bug and must stop startup.
func NewSyncService(api CommandAPI, declared []domain.CommandDefinition, devGuildID string, log *zap.Logger, m *metrics.Metrics) (*SyncService, error) {
	if err := ValidateDefinitions(declared); err != nil {
		return nil, err
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &SyncService{
		api:        api,
		declared:   declared,
		devGuildID: devGuildID,
		log:        log.Named("sync"),
		metrics:    m,
	}, nil
}

func (s *SyncService) DevGuildID() string { return s.devGuildID }

// ValidateDefinitions rejects two definitions with the same name in one scope.
func ValidateDefinitions(defs []domain.CommandDefinition) error {
	seen := make(map[string]struct{}, len(defs))
	for _, d := range defs {
		if strings.TrimSpace(d.Name) == "" {
			return fmt.Errorf("%w: command without name", domain.ErrSyncConflict)
		}
		if _, dup := seen[d.Key()]; dup {
			return fmt.Errorf("%w: %s declared twice", domain.ErrSyncConflict, d.Key())
		}
		seen[d.Key()] = struct{}{}
	}
	return nil
}

// Local returns the definitions that belong to scope. The dev guild also gets
// a copy of every global definition so changes show up without global
// propagation delay.
func (s *SyncService) Local(scope domain.Scope) []domain.CommandDefinition {
	var out []domain.CommandDefinition
	names := map[string]struct{}{}
	for _, d := range s.declared {
		if d.Scope == scope {
			out = append(out, d)
			names[strings.ToLower(d.Name)] = struct{}{}
		}
	}
	if !scope.IsGlobal() && scope.GuildID == s.devGuildID {
		for _, d := range s.declared {
			if !d.Scope.IsGlobal() {
				continue
			}
			if _, taken := names[strings.ToLower(d.Name)]; taken {
				continue
			}
			d.Scope = scope
			out = append(out, d)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Sync creates missing commands, edits changed ones and deletes stale ones.
// On error the result holds what was applied before the failure.
func (s *SyncService) Sync(ctx context.Context, scope domain.Scope) (SyncResult, error) {
	res := SyncResult{Scope: scope}
	defer func() {
		s.metrics.SyncChanges(scope, "added", len(res.Added))
		s.metrics.SyncChanges(scope, "updated", len(res.Updated))
		s.metrics.SyncChanges(scope, "removed", len(res.Removed))
	}()

	remote, err := s.api.List(ctx, scope)
	if err != nil {
		return res, fmt.Errorf("list %s commands: %w", scope, err)
	}
	remoteByName := make(map[string]RemoteCommand, len(remote))
	var dupes []RemoteCommand
	for _, rc := range remote {
		name := strings.ToLower(rc.Def.Name)
		if _, dup := remoteByName[name]; dup {
			dupes = append(dupes, rc)
			continue
		}
		remoteByName[name] = rc
	}

	local := s.Local(scope)
	localNames := make(map[string]struct{}, len(local))
	for _, d := range local {
		name := strings.ToLower(d.Name)
		localNames[name] = struct{}{}
		rc, exists := remoteByName[name]
		switch {
		case !exists:
			if err := s.api.Create(ctx, scope, d); err != nil {
				return res, fmt.Errorf("create %s: %w", d.Name, err)
			}
			res.Added = append(res.Added, d.Name)
		case hashDefinition(rc.Def) != hashDefinition(d):
			if err := s.api.Edit(ctx, scope, rc.ID, d); err != nil {
				return res, fmt.Errorf("edit %s: %w", d.Name, err)
			}
			res.Updated = append(res.Updated, d.Name)
		}
	}

	stale := dupes
	for name, rc := range remoteByName {
		if _, keep := localNames[name]; !keep {
			stale = append(stale, rc)
		}
	}
	sort.Slice(stale, func(i, j int) bool { return stale[i].Def.Name < stale[j].Def.Name })
	for _, rc := range stale {
		if err := s.api.Delete(ctx, scope, rc.ID); err != nil {
			return res, fmt.Errorf("delete %s: %w", rc.Def.Name, err)
		}
		res.Removed = append(res.Removed, rc.Def.Name)
	}

	s.log.Info("synced",
		zap.Stringer("scope", scope),
		zap.Strings("added", res.Added),
		zap.Strings("updated", res.Updated),
		zap.Strings("removed", res.Removed),
	)
	return res, nil
}

// hashDefinition covers only what the platform stores: name, description and
// option shape. Scope and local flags are not part of it.
func hashDefinition(d domain.CommandDefinition) string {
	type opt struct {
		Name        string            `json:"name"`
		Description string            `json:"description"`
		Type        domain.OptionType `json:"type"`
		Required    bool              `json:"required"`
		Choices     []string          `json:"choices,omitempty"`
	}
	opts := make([]opt, len(d.Options))
	for i, o := range d.Options {
		opts[i] = opt{Name: o.Name, Description: o.Description, Type: o.Type, Required: o.Required, Choices: o.Choices}
	}
	data, _ := json.Marshal(struct {
		Name        string `json:"name"`
		Description string `json:"description"`
		Options     []opt  `json:"options"`
	}{strings.ToLower(d.Name), d.Description, opts})
	sum := sha1.Sum(data)
	return fmt.Sprintf("%x", sum)
}
