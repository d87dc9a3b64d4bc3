package caclogger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, -4, int(ParseLevel("debug")))
	assert.Equal(t, 0, int(ParseLevel("info")))
	assert.Equal(t, 0, int(ParseLevel("")))
	assert.Equal(t, 4, int(ParseLevel("warn")))
	assert.Equal(t, 8, int(ParseLevel("error")))
	assert.Equal(t, 0, int(ParseLevel("unknown")))
}

func TestCorrelationIDRoundTrip(t *testing.T) {
	ctx := WithCorrelationID(context.Background(), "abc-123")
	assert.Equal(t, "abc-123", CorrelationID(ctx))
	assert.Equal(t, "", CorrelationID(context.Background()))
}

func TestNew_DoesNotPanic(t *testing.T) {
	logger := New(Config{Level: "debug", Format: "text"})
	assert.NotNil(t, logger)
	logger.Info("hello")
}
