package utils

import (
	"fmt"
	"os"
	"reflect"
	"strconv"
	"time"

	"bitbucket.org/mmdatafocus/cafepos_backend/config"
)

func GetCacheLifespan() time.Duration {
	lifespan, err := strconv.Atoi(os.Getenv("CACHE_LIFESPAN"))
	if err != nil {
		lifespan = 1
	}
	return time.Duration(lifespan) * time.Hour
}

// get type name of struct
func GetTypeName[T any]() string {
	var v T
	return reflect.TypeOf(v).Name()
}

/* Redis read-through cache, keyed Type:id. Best effort: every helper is a
no-op or a miss when redis is not configured. */

// store instance, obj should be a pointer
func StoreRedis[T any](obj any, id any) error {
	key := GetTypeName[T]() + ":" + fmt.Sprint(id)
	return config.SetRedisObject(key, obj, GetCacheLifespan())
}

// fetch instance; false on miss
func FetchRedis[T any](id any) (*T, bool) {
	key := GetTypeName[T]() + ":" + fmt.Sprint(id)
	var out T
	found, err := config.GetRedisObject(key, &out)
	if err != nil || !found {
		return nil, false
	}
	return &out, true
}

// drop cached instance
func RemoveRedis[T any](id any) error {
	key := GetTypeName[T]() + ":" + fmt.Sprint(id)
	return config.RemoveRedisKey(key)
}
