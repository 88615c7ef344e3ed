package middleware

import (
	"context"
	"net/http"
	"strconv"
	"sync"
	"time"

	"casitas/internal/apierror"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// contador counts hits of a key within a fixed window and reports the count
// after this hit plus the time left in the window.
type contador interface {
	hit(ctx context.Context, key string, ventana time.Duration) (int64, time.Duration, error)
}

// contadorRedis shares the window across every replica of the API.
type contadorRedis struct{ rdb *redis.Client }

func (r contadorRedis) hit(ctx context.Context, key string, ventana time.Duration) (int64, time.Duration, error) {
	pipe := r.rdb.TxPipeline()
	incr := pipe.Incr(ctx, key)
	pipe.ExpireNX(ctx, key, ventana)
	ttl := pipe.PTTL(ctx, key)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, 0, err
	}
	return incr.Val(), ttl.Val(), nil
}

// contadorMemoria is used when no Redis client is configured (tests, local).
type contadorMemoria struct {
	mu       sync.Mutex
	entradas map[string]*ventanaIP
	purga    time.Time
}

type ventanaIP struct {
	count int64
	fin   time.Time
}

func newContadorMemoria() *contadorMemoria {
	return &contadorMemoria{entradas: make(map[string]*ventanaIP)}
}

func (m *contadorMemoria) hit(_ context.Context, key string, ventana time.Duration) (int64, time.Duration, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now()
	if now.After(m.purga) {
		for k, e := range m.entradas {
			if now.After(e.fin) {
				delete(m.entradas, k)
			}
		}
		m.purga = now.Add(5 * time.Minute)
	}

	e, ok := m.entradas[key]
	if !ok || now.After(e.fin) {
		e = &ventanaIP{fin: now.Add(ventana)}
		m.entradas[key] = e
	}
	e.count++
	return e.count, e.fin.Sub(now), nil
}

func nuevoContador(rdb *redis.Client) contador {
	if rdb == nil {
		return newContadorMemoria()
	}
	return contadorRedis{rdb: rdb}
}

// limitar rejects a client IP with 429 after limite requests per ventana.
// A Redis failure lets the request through.
func limitar(c contador, nombre string, limite int, ventana time.Duration, msg string) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		key := "ratelimit:" + nombre + ":" + ctx.ClientIP()
		n, resta, err := c.hit(ctx.Request.Context(), key, ventana)
		if err != nil {
			log.Warn().Err(err).Str("limiter", nombre).Msg("rate limiter unavailable, allowing request")
			ctx.Next()
			return
		}
		if n > int64(limite) {
			segs := int(resta.Seconds())
			if segs < 1 {
				segs = 1
			}
			ctx.Header("Retry-After", strconv.Itoa(segs))
			ctx.AbortWithStatusJSON(http.StatusTooManyRequests, apierror.New(msg))
			return
		}
		ctx.Next()
	}
}

// LoginRateLimiter allows limite login attempts per minute per IP.
func LoginRateLimiter(rdb *redis.Client, limite int) gin.HandlerFunc {
	return limitar(nuevoContador(rdb), "login", limite, time.Minute,
		"Demasiados intentos de login. Intente en 1 minuto.")
}

// RateLimiter is the general API limiter.
func RateLimiter(rdb *redis.Client, limite int, ventana time.Duration) gin.HandlerFunc {
	return limitar(nuevoContador(rdb), "api", limite, ventana,
		"Demasiadas solicitudes. Intente nuevamente en un momento.")
}
