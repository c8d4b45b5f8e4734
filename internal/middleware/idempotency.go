package middleware

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go-leaveflow/internal/shared/apperror"
	"go-leaveflow/internal/shared/response"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	IdempotencyHeader         = "Idempotency-Key"
	IdempotencyReplayedHeader = "Idempotency-Replayed"

	idempotencyLockTTL = 30 * time.Second
)

// IdempotencyTTL is how long a stored response is replayed for.
var IdempotencyTTL = 24 * time.Hour

var ErrIdempotencyInProgress = apperror.New(
	apperror.CodeConflict,
	"A request with this idempotency key is still being processed",
	http.StatusConflict,
)

type storedResponse struct {
	Status int             `json:"status"`
	Body   json.RawMessage `json:"body"`
}

// bodyRecorder tees everything the handler writes so it can be cached.
type bodyRecorder struct {
	gin.ResponseWriter
	buf bytes.Buffer
}

func (w *bodyRecorder) Write(b []byte) (int, error) {
	w.buf.Write(b)
	return w.ResponseWriter.Write(b)
}

func (w *bodyRecorder) WriteString(s string) (int, error) {
	w.buf.WriteString(s)
	return w.ResponseWriter.WriteString(s)
}

// Idempotency replays the stored response for a repeated POST carrying the
// same Idempotency-Key from the same user. Only 2xx responses are stored, so a
// failed attempt may be retried with the same key.
func Idempotency(rdb *redis.Client, logger ...*zap.Logger) gin.HandlerFunc {
	log := zap.L().Named("middleware.idempotency")
	if len(logger) > 0 && logger[0] != nil {
		log = logger[0].Named("middleware.idempotency")
	}

	return func(c *gin.Context) {
		idempKey := c.GetHeader(IdempotencyHeader)
		if idempKey == "" || c.Request.Method != http.MethodPost || rdb == nil {
			c.Next()
			return
		}

		ctx := c.Request.Context()
		userID := c.GetString(ContextUserID)
		cacheKey := fmt.Sprintf("idemp:%s:%s:%s", c.FullPath(), userID, idempKey)
		lockKey := cacheKey + ":lock"

		// 1. Replay kalau response sudah tersimpan
		if replayStored(c, rdb, cacheKey) {
			return
		}

		// 2. Atomic lock supaya request ganda tidak diproses bersamaan
		isNew, err := rdb.SetNX(ctx, lockKey, "locked", idempotencyLockTTL).Result()
		if err != nil {
			log.Warn("idempotency lock failed, continuing without it", zap.String("key", cacheKey), zap.Error(err))
			c.Next()
			return
		}
		if !isNew {
			response.Abort(c, ErrIdempotencyInProgress.HTTPStatus, ErrIdempotencyInProgress.Code, ErrIdempotencyInProgress.Message)
			return
		}
		defer rdb.Del(ctx, lockKey)

		// 3. Cek ulang: request pertama bisa selesai di antara Get dan SetNX
		if replayStored(c, rdb, cacheKey) {
			return
		}

		rec := &bodyRecorder{ResponseWriter: c.Writer}
		c.Writer = rec

		c.Next()

		status := rec.Status()
		if status < 200 || status >= 300 || rec.buf.Len() == 0 {
			return
		}

		payload, err := json.Marshal(storedResponse{Status: status, Body: rec.buf.Bytes()})
		if err != nil {
			return
		}
		if err := rdb.Set(ctx, cacheKey, payload, IdempotencyTTL).Err(); err != nil {
			log.Warn("idempotency store failed", zap.String("key", cacheKey), zap.Error(err))
		}
	}
}

// replayStored writes the cached response for cacheKey and aborts the chain.
// It reports false when nothing usable is stored.
func replayStored(c *gin.Context, rdb *redis.Client, cacheKey string) bool {
	val, err := rdb.Get(c.Request.Context(), cacheKey).Bytes()
	if err != nil {
		return false
	}
	var stored storedResponse
	if json.Unmarshal(val, &stored) != nil {
		return false
	}
	c.Header(IdempotencyReplayedHeader, "true")
	c.Data(stored.Status, "application/json; charset=utf-8", stored.Body)
	c.Abort()
	return true
}
