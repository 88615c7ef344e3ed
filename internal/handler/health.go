package handler

import (
	"context"
	"net/http"
	"time"

	"casitas/internal/infra"
	"casitas/internal/worker"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Health checks DB and Redis connectivity and reports the SMTP breaker state
// and email DLQ size. Never exposes credentials or internals.
func Health(db *gorm.DB, rdb *redis.Client, smtpCB *infra.CircuitBreaker) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
		defer cancel()

		dbStatus := "connected"
		sqlDB, err := db.DB()
		if err != nil || sqlDB.PingContext(ctx) != nil {
			dbStatus = "error"
		}

		redisStatus := "connected"
		var dlq int64
		if rdb == nil || rdb.Ping(ctx).Err() != nil {
			redisStatus = "error"
		} else {
			dlq, _ = worker.DLQLength(ctx, rdb, worker.QueueEmail)
		}

		status := http.StatusOK
		if dbStatus != "connected" || redisStatus != "connected" {
			status = http.StatusServiceUnavailable
		}

		body := gin.H{
			"ok":        status == http.StatusOK,
			"db":        dbStatus,
			"redis":     redisStatus,
			"email_dlq": dlq,
		}
		if smtpCB != nil {
			body["smtp"] = smtpCB.State().String()
		}
		c.JSON(status, body)
	}
}
