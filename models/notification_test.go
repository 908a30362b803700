package models

import (
	"bytes"
	"context"
	"testing"

	"bitbucket.org/mmdatafocus/cafepos_backend/config"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// The logrus sink emits at Warn; the default logger level must not swallow it.
func TestLogrusSinkEmitsAtDefaultLevel(t *testing.T) {
	logger := config.GetLogger()
	require.NotNil(t, logger)

	var buf bytes.Buffer
	out := logger.Out
	logger.SetOutput(&buf)
	defer logger.SetOutput(out)

	sink := LogrusSink{Logger: logger}
	sink.LowStock(context.Background(), 11, "milk", decimal.RequireFromString("3"))

	logged := buf.String()
	assert.Contains(t, logged, "low stock")
	assert.Contains(t, logged, `"consumable_id":11`)
	assert.Contains(t, logged, `"name":"milk"`)
	assert.Contains(t, logged, `"remaining":"3"`)
}
