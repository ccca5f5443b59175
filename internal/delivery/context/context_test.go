package context

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"

	"marketplace/internal/domain/entity"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeRequestID(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		keep bool
	}{
		{name: "client id", raw: "req-123", keep: true},
		{name: "max length", raw: strings.Repeat("a", MaxRequestIDLength), keep: true},
		{name: "empty", raw: ""},
		{name: "too long", raw: strings.Repeat("a", MaxRequestIDLength+1)},
		{name: "spaces", raw: "req 123"},
		{name: "control", raw: "req\n123"},
		{name: "non ascii", raw: "req-été"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NormalizeRequestID(tt.raw)
			if tt.keep {
				assert.Equal(t, tt.raw, got)

				return
			}
			_, err := uuid.Parse(got)
			assert.NoError(t, err)
		})
	}
}

func TestRequestIDFromContext(t *testing.T) {
	assert.Empty(t, GetRequestIDFromContext(context.Background()))
	assert.Equal(t, "req-9", GetRequestIDFromContext(WithRequestID(context.Background(), "req-9")))
}

func TestWithActor_ScopesLogger(t *testing.T) {
	var buf bytes.Buffer
	base := slog.New(slog.NewTextHandler(&buf, nil))
	actor := entity.Actor{AccountID: uuid.New(), Role: entity.RoleDeliveryAgent}

	ctx := WithActor(WithLogger(context.Background(), base), actor)

	got, ok := ActorFromContext(ctx)
	require.True(t, ok)
	assert.Equal(t, actor, got)

	GetLoggerOrDefault(ctx, nil).Info("order moved")
	assert.Contains(t, buf.String(), "actor_id="+actor.AccountID.String())
	assert.Contains(t, buf.String(), "actor_role=delivery_agent")
}

func TestWithActor_WithoutLogger(t *testing.T) {
	fallback := slog.Default()
	ctx := WithActor(context.Background(), entity.Actor{AccountID: uuid.New(), Role: entity.RoleClient})

	assert.Same(t, fallback, GetLoggerOrDefault(ctx, fallback))
	_, ok := ActorFromContext(context.Background())
	assert.False(t, ok)
}
