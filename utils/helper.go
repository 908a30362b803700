package utils

import (
	"context"
	"errors"
	"fmt"
	"time"

	"bitbucket.org/mmdatafocus/cafepos_backend/config"
	"github.com/bsm/redislock"
)

func NewTrue() *bool {
	b := true
	return &b
}

func NewFalse() *bool {
	b := false
	return &b
}

func UniqueSlice[T comparable](slice []T) []T {
	inResult := make(map[T]bool)
	var result []T
	for _, elm := range slice {
		if _, ok := inResult[elm]; !ok {
			inResult[elm] = true
			result = append(result, elm)
		}
	}
	return result
}

// SaleLock obtains a coarse per-register redis lock for the duration of a
// sale. The row locks taken inside the sale transaction are the correctness
// mechanism; this lock only shortens lock-wait chains under bursty load.
// Returns a release func. When redis is not configured it is a no-op.
func SaleLock(ctx context.Context, cashRegisterId int, moduleName string, functionName string) (func(), error) {
	locker := config.GetRedisLock()
	if locker == nil || !config.SaleLockEnabled() {
		return func() {}, nil
	}

	lockKey := fmt.Sprintf("saleLock:%d", cashRegisterId)
	lock, err := locker.Obtain(ctx, lockKey, 30*time.Second, &redislock.Options{
		RetryStrategy: redislock.LimitRetry(redislock.LinearBackoff(100*time.Millisecond), 50),
	})
	if errors.Is(err, redislock.ErrNotObtained) {
		config.LogError(config.GetLogger(), moduleName, functionName, "Could not obtain sale lock", cashRegisterId, err)
		return nil, errors.New("could not obtain sale lock for cash register")
	} else if err != nil {
		config.LogError(config.GetLogger(), moduleName, functionName, "Error obtaining sale lock", cashRegisterId, err)
		return nil, err
	}

	return func() { _ = lock.Release(context.WithoutCancel(ctx)) }, nil
}
