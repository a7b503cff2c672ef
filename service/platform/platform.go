package platform

import (
	"sync"
	"time"

	"posbridge.GO/config"
	"posbridge.GO/core/lock"
	"posbridge.GO/model/entity"
	"posbridge.GO/remote"
)

// APIFor returns a platform client for the merchant, falling back to the
// application-level token when the merchant row carries none.
func APIFor(m *entity.Merchant) remote.API {
	token := m.AccessToken
	if token == "" {
		token = config.AppConfig.PlatformToken
	}
	return remote.NewClient(config.AppConfig.PlatformBaseURL, token, config.AppConfig.PlatformTimeout)
}

var (
	lockerOnce sync.Once
	locker     *lock.Locker
)

// SharedLocker returns the process-wide locker, redis-backed when redis is
// configured.
func SharedLocker() *lock.Locker {
	lockerOnce.Do(func() {
		locker = lock.New(config.RedisClient, 2*time.Minute)
	})
	return locker
}
