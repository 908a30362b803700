package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type cachedThing struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

func TestGetTypeName(t *testing.T) {
	assert.Equal(t, "cachedThing", GetTypeName[cachedThing]())
}

func TestGetCacheLifespan(t *testing.T) {
	t.Setenv("CACHE_LIFESPAN", "")
	assert.Equal(t, time.Hour, GetCacheLifespan())

	t.Setenv("CACHE_LIFESPAN", "6")
	assert.Equal(t, 6*time.Hour, GetCacheLifespan())

	t.Setenv("CACHE_LIFESPAN", "soon")
	assert.Equal(t, time.Hour, GetCacheLifespan())
}

// The cache is best effort: with no redis configured a store or remove is a
// no-op and a fetch is a plain miss, never an error.
func TestCacheHelpersWithoutRedis(t *testing.T) {
	thing := cachedThing{ID: 7, Name: "espresso"}

	assert.NoError(t, StoreRedis[cachedThing](&thing, thing.ID))

	got, found := FetchRedis[cachedThing](thing.ID)
	assert.False(t, found)
	assert.Nil(t, got)

	assert.NoError(t, RemoveRedis[cachedThing](thing.ID))
}
