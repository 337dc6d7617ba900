package middleware

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/redis/go-redis/v9"
	"github.com/ulule/limiter/v3"
	mhttp "github.com/ulule/limiter/v3/drivers/middleware/stdlib"
	"github.com/ulule/limiter/v3/drivers/store/memory"
	sredis "github.com/ulule/limiter/v3/drivers/store/redis"
)

type RateLimitConfig struct {
	RequestsPerPeriod int
	Period            time.Duration
	Store             limiter.Store
	KeyFunc           func(r *http.Request) string
}

// NewMemoryStore keeps counters in process memory, the single-instance
// default.
func NewMemoryStore() limiter.Store {
	return memory.NewStore()
}

// NewRedisStore shares counters across instances through Redis.
func NewRedisStore(redisURL string) (limiter.Store, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, err
	}
	client := redis.NewClient(opts)
	return sredis.NewStoreWithOptions(client, limiter.StoreOptions{
		Prefix: "fieldops:ratelimit",
	})
}

// RateLimit applies a global requests-per-period budget backed by the
// configured store.
func RateLimit(config RateLimitConfig) mux.MiddlewareFunc {
	period := config.Period
	if period == 0 {
		period = time.Second
	}
	store := config.Store
	if store == nil {
		store = NewMemoryStore()
	}
	rate := limiter.Rate{
		Period: period,
		Limit:  int64(config.RequestsPerPeriod),
	}
	instance := limiter.New(store, rate)
	middlewareHandler := mhttp.NewMiddleware(instance)
	return middlewareHandler.Handler
}
