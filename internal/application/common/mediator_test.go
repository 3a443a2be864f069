package common_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/andrescamacho/neonrails-go/internal/application/common"
)

type pingQuery struct{ Value string }

type pingHandler struct{ fail bool }

func (h *pingHandler) Handle(ctx context.Context, request common.Request) (common.Response, error) {
	q := request.(*pingQuery)
	if h.fail {
		return nil, errors.New("boom")
	}
	return "pong:" + q.Value, nil
}

func TestMediator_DispatchesToRegisteredHandler(t *testing.T) {
	// Arrange
	m := common.NewMediator()
	require.NoError(t, common.RegisterHandler[*pingQuery](m, &pingHandler{}))

	// Act
	resp, err := m.Send(context.Background(), &pingQuery{Value: "a"})

	// Assert
	require.NoError(t, err)
	assert.Equal(t, "pong:a", resp)
}

func TestMediator_RejectsDuplicateAndUnknown(t *testing.T) {
	m := common.NewMediator()
	require.NoError(t, common.RegisterHandler[*pingQuery](m, &pingHandler{}))

	assert.Error(t, common.RegisterHandler[*pingQuery](m, &pingHandler{}))

	_, err := m.Send(context.Background(), &struct{}{})
	assert.Error(t, err)

	_, err = m.Send(context.Background(), nil)
	assert.Error(t, err)
}

func TestMediator_MiddlewareOrder(t *testing.T) {
	m := common.NewMediator()
	require.NoError(t, common.RegisterHandler[*pingQuery](m, &pingHandler{}))

	var calls []string
	tag := func(name string) common.Middleware {
		return func(ctx context.Context, request common.Request, next common.HandlerFunc) (common.Response, error) {
			calls = append(calls, name+":in")
			resp, err := next(ctx, request)
			calls = append(calls, name+":out")
			return resp, err
		}
	}
	m.Use(tag("outer"))
	m.Use(tag("inner"))

	_, err := m.Send(context.Background(), &pingQuery{})

	require.NoError(t, err)
	assert.Equal(t, []string{"outer:in", "inner:in", "inner:out", "outer:out"}, calls)
}

func TestLoggingMiddleware_LogsFailures(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	m := common.NewMediator()
	m.Use(common.LoggingMiddleware(zap.New(core)))
	require.NoError(t, common.RegisterHandler[*pingQuery](m, &pingHandler{fail: true}))

	_, err := m.Send(context.Background(), &pingQuery{})

	require.Error(t, err)
	entries := logs.FilterMessage("request failed").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "pingQuery", entries[0].ContextMap()["request"])
}

func TestLoggerFromContext_DefaultsToNop(t *testing.T) {
	assert.NotNil(t, common.LoggerFromContext(context.Background()))
}
