package middleware

import (
	"context"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/m04kA/SMC-SchedulingService/internal/api/handlers"
)

const (
	msgRateLimited        = "слишком много запросов, попробуйте позже"
	msgRateLimiterFailure = "сервис временно недоступен"

	defaultRateLimitPrefix = "rl:appointments"
)

// Счетчик окна: первый INCR задает TTL, поэтому окно фиксировано от первого запроса
var fixedWindowScript = redis.NewScript(`
local current = redis.call("INCR", KEYS[1])
if current == 1 then
  redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
return current
`)

// RateLimitRecorder счетчик отклоненных запросов (*metrics.Metrics)
type RateLimitRecorder interface {
	RateLimitRejected()
}

// RateLimiter ограничение частоты запросов с одного адреса (fixed window в Redis)
type RateLimiter struct {
	client   redis.Scripter
	limit    int64
	window   time.Duration
	prefix   string
	failOpen bool
	recorder RateLimitRecorder
	logger   Logger
}

// Logger интерфейс для логирования
type Logger interface {
	Warn(format string, v ...interface{})
}

// NewRateLimiter создает ограничитель. При failOpen ошибки Redis пропускают запрос.
func NewRateLimiter(client redis.Scripter, limit int, window time.Duration, failOpen bool, recorder RateLimitRecorder, logger Logger) *RateLimiter {
	if limit <= 0 {
		limit = 10
	}
	if window <= 0 {
		window = time.Minute
	}
	return &RateLimiter{
		client:   client,
		limit:    int64(limit),
		window:   window,
		prefix:   defaultRateLimitPrefix,
		failOpen: failOpen,
		recorder: recorder,
		logger:   logger,
	}
}

// Middleware возвращает mux-совместимый middleware
func (rl *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		count, err := rl.incr(r.Context(), rl.prefix+":"+clientKey(r))
		if err != nil {
			rl.logger.Warn("rate limiter: redis error: %v", err)
			if rl.failOpen {
				next.ServeHTTP(w, r)
				return
			}
			handlers.RespondError(w, http.StatusServiceUnavailable, msgRateLimiterFailure)
			return
		}

		if count > rl.limit {
			if rl.recorder != nil {
				rl.recorder.RateLimitRejected()
			}
			w.Header().Set("Retry-After", strconv.Itoa(int(rl.window.Seconds())))
			handlers.RespondError(w, http.StatusTooManyRequests, msgRateLimited)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (rl *RateLimiter) incr(ctx context.Context, key string) (int64, error) {
	return fixedWindowScript.Run(ctx, rl.client, []string{key}, rl.window.Milliseconds()).Int64()
}

func clientKey(r *http.Request) string {
	if ip := r.Header.Get("X-Forwarded-For"); ip != "" {
		parts := strings.Split(ip, ",")
		return strings.TrimSpace(parts[0])
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err == nil {
		return host
	}
	return r.RemoteAddr
}
