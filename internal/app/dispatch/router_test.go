package dispatch

import (
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/jose-valero/hybrid-guild-bot/internal/domain"
	"github.com/jose-valero/hybrid-guild-bot/internal/infra/metrics"
)

func echo(ctx context.Context, inv domain.Invocation) (domain.Response, error) {
	return domain.Reply(inv.Command), nil
}

func TestRouterDuplicateRegistration(t *testing.T) {
	r := NewRouter(nil, nil)
	require.NoError(t, r.Register(domain.CommandDefinition{Name: "ping"}, echo))
	err := r.Register(domain.CommandDefinition{Name: "PING"}, echo)
	assert.ErrorIs(t, err, domain.ErrSyncConflict)
}

func TestRouterUnknownCommandIsIgnored(t *testing.T) {
	r := NewRouter(nil, nil)
	resp, handled, err := r.Dispatch(context.Background(), domain.Invocation{Command: "nope", Surface: domain.SurfacePrefix})
	require.NoError(t, err)
	assert.False(t, handled)
	assert.Equal(t, domain.Response{}, resp)
}

func TestRouterStructuredOnly(t *testing.T) {
	r := NewRouter(nil, nil)
	require.NoError(t, r.Register(domain.CommandDefinition{Name: "panel", StructuredOnly: true}, echo))

	_, handled, err := r.Dispatch(context.Background(), domain.Invocation{Command: "panel", Surface: domain.SurfacePrefix, GuildID: "1"})
	require.NoError(t, err)
	assert.False(t, handled)

	resp, handled, err := r.Dispatch(context.Background(), domain.Invocation{Command: "panel", Surface: domain.SurfaceStructured, GuildID: "1"})
	require.NoError(t, err)
	assert.True(t, handled)
	assert.Equal(t, "panel", resp.Content)
}

func TestRouterGuildOnlyInDirectMessage(t *testing.T) {
	called := false
	r := NewRouter(nil, nil)
	require.NoError(t, r.Register(domain.CommandDefinition{Name: "counter", GuildOnly: true}, func(context.Context, domain.Invocation) (domain.Response, error) {
		called = true
		return domain.Response{}, nil
	}))

	resp, handled, err := r.Dispatch(context.Background(), domain.Invocation{Command: "counter", Surface: domain.SurfacePrefix})
	require.NoError(t, err)
	assert.True(t, handled)
	assert.True(t, resp.Ephemeral)
	assert.False(t, called)
}

func TestRouterLogsAndCountsOutcome(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	r := NewRouter(zap.New(core), m)
	boom := errors.New("boom")
	require.NoError(t, r.Register(domain.CommandDefinition{Name: "fail"}, func(context.Context, domain.Invocation) (domain.Response, error) {
		return domain.Response{}, boom
	}))

	_, handled, err := r.Dispatch(context.Background(), domain.Invocation{Command: "fail", Surface: domain.SurfaceStructured, TraceID: "abc"})
	assert.True(t, handled)
	assert.ErrorIs(t, err, boom)

	entries := logs.FilterMessage("dispatched").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "abc", entries[0].ContextMap()["trace_id"])
	n, err := testutil.GatherAndCount(reg, "guildbot_commands_total")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestDefinitionsSorted(t *testing.T) {
	r := NewRouter(nil, nil)
	for _, n := range []string{"b", "c", "a"} {
		require.NoError(t, r.Register(domain.CommandDefinition{Name: n}, echo))
	}
	var names []string
	for _, d := range r.Definitions() {
		names = append(names, d.Name)
	}
	assert.Equal(t, []string{"a", "b", "c"}, names)
}
