package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPasswordRoundTrip(t *testing.T) {
	hash, err := HashPassword("espresso#1")
	require.NoError(t, err)

	assert.NoError(t, ComparePassword(string(hash), "espresso#1"))
	assert.Error(t, ComparePassword(string(hash), "latte#1"))
}
