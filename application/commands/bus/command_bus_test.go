package bus

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

type pingCommand struct {
	Value string
}

func (c pingCommand) Validate() error {
	if c.Value == "" {
		return errors.New("value is required")
	}
	return nil
}

type otherCommand struct{}

func (otherCommand) Validate() error { return nil }

func echoHandler() CommandHandler {
	return CommandHandlerFunc(func(_ context.Context, cmd Command) (interface{}, error) {
		p := cmd.(pingCommand)
		if p.Value == "fail" {
			return "partial", errors.New("handler failed")
		}
		if p.Value == "panic" {
			panic("boom")
		}
		return "pong:" + p.Value, nil
	})
}

func TestCommandBus_Send(t *testing.T) {
	ctx := context.Background()
	b := NewCommandBus(RecoveryMiddleware(zap.NewNop()))
	require.NoError(t, b.Register(pingCommand{}, echoHandler()))

	t.Run("success", func(t *testing.T) {
		res, err := b.Send(ctx, pingCommand{Value: "a"})
		require.NoError(t, err)
		assert.True(t, res.Success)
		assert.Equal(t, "pong:a", res.Data)
	})

	t.Run("validation error is returned as is", func(t *testing.T) {
		res, err := b.Send(ctx, pingCommand{})
		assert.Nil(t, res)
		assert.EqualError(t, err, "value is required")
	})

	t.Run("handler error keeps data", func(t *testing.T) {
		res, err := b.Send(ctx, pingCommand{Value: "fail"})
		require.Error(t, err)
		assert.False(t, res.Success)
		assert.Equal(t, "partial", res.Data)
		assert.Equal(t, err, res.Error)
	})

	t.Run("panic is recovered", func(t *testing.T) {
		_, err := b.Send(ctx, pingCommand{Value: "panic"})
		assert.ErrorIs(t, err, ErrExecutionFailed)
	})

	t.Run("unregistered command", func(t *testing.T) {
		_, err := b.Send(ctx, otherCommand{})
		assert.ErrorIs(t, err, ErrHandlerNotFound)
	})

	t.Run("nil command", func(t *testing.T) {
		_, err := b.Send(ctx, nil)
		assert.ErrorIs(t, err, ErrValidationFailed)
	})
}

func TestCommandBus_RegisterTwice(t *testing.T) {
	b := NewCommandBus()
	require.NoError(t, b.Register(pingCommand{}, echoHandler()))
	assert.Error(t, b.Register(pingCommand{}, echoHandler()))
}

func TestPipeline_Order(t *testing.T) {
	var order []string
	tag := func(name string) Middleware {
		return func(next CommandHandler) CommandHandler {
			return CommandHandlerFunc(func(ctx context.Context, cmd Command) (interface{}, error) {
				order = append(order, name)
				return next.Handle(ctx, cmd)
			})
		}
	}

	handler := NewPipeline(tag("first"), tag("second")).Execute(echoHandler())
	_, err := handler.Handle(context.Background(), pingCommand{Value: "x"})

	require.NoError(t, err)
	assert.Equal(t, []string{"first", "second"}, order)
}

func TestLoggingMiddleware(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	handler := LoggingMiddleware(zap.New(core))(echoHandler())

	_, _ = handler.Handle(context.Background(), pingCommand{Value: "ok"})
	_, _ = handler.Handle(context.Background(), pingCommand{Value: "fail"})

	assert.Equal(t, 1, logs.FilterMessage("Command succeeded").Len())
	failed := logs.FilterMessage("Command failed").All()
	require.Len(t, failed, 1)
	assert.Equal(t, "pingCommand", failed[0].ContextMap()["type"])
}
