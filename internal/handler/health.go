package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/Afa-Tecnologia/alfa360-sub004/internal/worker"
)

// Health probes the store and redis, and reports the dead-letter depth so
// a stuck event consumer is visible without shell access. Never exposes
// credentials or driver errors.
func Health(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
		defer cancel()

		postgres := "up"
		sqlDB, err := db.DB()
		if err != nil || sqlDB.PingContext(ctx) != nil {
			postgres = "down"
		}

		redisStatus := "up"
		var dlqDepth int64
		if rdb.Ping(ctx).Err() != nil {
			redisStatus = "down"
		} else {
			dlqDepth, _ = worker.DLQLength(ctx, rdb, worker.QueueCaixaEvents)
		}

		status := http.StatusOK
		if postgres == "down" || redisStatus == "down" {
			status = http.StatusServiceUnavailable
		}

		c.JSON(status, gin.H{
			"ok":       status == http.StatusOK,
			"postgres": postgres,
			"redis":    redisStatus,
			"dlqDepth": dlqDepth,
		})
	}
}
