package bus

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type echoQuery struct {
	Value string
}

func (q echoQuery) Validate() error {
	if q.Value == "" {
		return errors.New("value is required")
	}
	return nil
}

type recordingObserver struct {
	queryType string
	err       error
	calls     int
}

func (o *recordingObserver) ObserveQuery(queryType string, _ time.Duration, err error) {
	o.queryType = queryType
	o.err = err
	o.calls++
}

func TestQueryBus(t *testing.T) {
	observer := &recordingObserver{}
	bus := NewQueryBus(MetricsMiddleware(observer))

	require.NoError(t, bus.Register(echoQuery{}, QueryHandlerFunc(func(ctx context.Context, q Query) (interface{}, error) {
		return "echo:" + q.(echoQuery).Value, nil
	})))

	t.Run("dispatches by type", func(t *testing.T) {
		result, err := bus.Ask(context.Background(), echoQuery{Value: "hi"})

		require.NoError(t, err)
		assert.Equal(t, "echo:hi", result)
		assert.Equal(t, "echoQuery", observer.queryType)
		assert.Equal(t, 1, observer.calls)
	})

	t.Run("validation runs before dispatch", func(t *testing.T) {
		_, err := bus.Ask(context.Background(), echoQuery{})

		require.Error(t, err)
		assert.Contains(t, err.Error(), "value is required")
		assert.Equal(t, 1, observer.calls)
	})

	t.Run("duplicate registration rejected", func(t *testing.T) {
		err := bus.Register(echoQuery{}, QueryHandlerFunc(func(context.Context, Query) (interface{}, error) { return nil, nil }))
		assert.Error(t, err)
	})

	t.Run("handler errors are wrapped", func(t *testing.T) {
		boom := errors.New("boom")
		b := NewQueryBus()
		require.NoError(t, b.Register(echoQuery{}, QueryHandlerFunc(func(context.Context, Query) (interface{}, error) {
			return nil, boom
		})))

		_, err := b.Ask(context.Background(), echoQuery{Value: "x"})
		assert.ErrorIs(t, err, boom)
	})
}

type otherQuery struct{}

func (otherQuery) Validate() error { return nil }

func TestQueryBus_Unregistered(t *testing.T) {
	_, err := NewQueryBus().Ask(context.Background(), otherQuery{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no handler registered")
}
