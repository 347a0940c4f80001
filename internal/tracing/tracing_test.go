package tracing

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStartTracing(t *testing.T) {
	t.Run("disabled", func(t *testing.T) {
		// when
		ctx, span := StartTracing(context.Background(), "Add", false)

		// then
		require.NotNil(t, ctx)
		assert.Nil(t, span)

		EndTracing(span, errors.New("ignored"))
	})

	t.Run("enabled", func(t *testing.T) {
		// when
		_, span := StartTracing(context.Background(), "Add", true, Attributes(map[string]string{"network": "regtest"})...)

		// then
		require.NotNil(t, span)
		EndTracing(span, nil)
	})
}

func TestEnable(t *testing.T) {
	_, err := Enable(slog.Default(), "chainstore", "", 100)
	require.ErrorIs(t, err, ErrTracingAddressEmpty)
}
