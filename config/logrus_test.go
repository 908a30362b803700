package config

import (
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
)

func TestLogLevelDefaultsToWarn(t *testing.T) {
	t.Setenv("LOG_LEVEL", "")
	assert.Equal(t, logrus.WarnLevel, logLevelFromEnv())
}

func TestLogLevelFromEnv(t *testing.T) {
	t.Setenv("LOG_LEVEL", "debug")
	assert.Equal(t, logrus.DebugLevel, logLevelFromEnv())
}

func TestLogLevelBadValueFallsBackToWarn(t *testing.T) {
	t.Setenv("LOG_LEVEL", "shout")
	assert.Equal(t, logrus.WarnLevel, logLevelFromEnv())
}
