package tracing

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hexsyn/intake/internal/config"
	"github.com/hexsyn/intake/internal/logger"
)

func TestInit_Disabled(t *testing.T) {
	shutdown, err := Init(context.Background(), config.TracingConfig{Enabled: false}, logger.Nop())
	require.NoError(t, err)
	assert.NoError(t, shutdown(context.Background()))
}

func TestInit_UnsupportedProtocolDegrades(t *testing.T) {
	t.Setenv("OTEL_SDK_DISABLED", "")
	shutdown, err := Init(context.Background(), config.TracingConfig{
		Enabled:     true,
		ServiceName: "intake-test",
		Protocol:    "carrier-pigeon",
		SampleRatio: 1,
	}, logger.Nop())
	require.NoError(t, err)
	assert.NoError(t, shutdown(context.Background()))
}

func TestSampler(t *testing.T) {
	assert.Contains(t, Sampler(1).Description(), "AlwaysOnSampler")
	assert.Contains(t, Sampler(0).Description(), "AlwaysOffSampler")
	assert.Contains(t, Sampler(0.25).Description(), "TraceIDRatioBased{0.25}")
}
