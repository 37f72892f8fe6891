package middleware

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

// idempotencyHeader is the client-supplied request key. Browsers retrying a
// booking POST (double click, flaky network) reuse the same key.
const idempotencyHeader = "Idempotency-Key"

// idempOpTimeout bounds each Redis operation. A var so tests can shrink it.
var idempOpTimeout = 2 * time.Second

// idempEntry records an in-flight or completed request under a key.
type idempEntry struct {
	InProgress bool   `json:"in_progress"`
	Code       int    `json:"code"`
	Body       []byte `json:"body"`
	BodySHA256 string `json:"body_sha256"`
}

// bodyWriter captures the response so it can be replayed for a retry.
type bodyWriter struct {
	gin.ResponseWriter
	buf *bytes.Buffer
}

func (w *bodyWriter) Write(b []byte) (int, error) {
	w.buf.Write(b)
	return w.ResponseWriter.Write(b)
}

func idempKey(method, path, userID, reqKey string) string {
	return fmt.Sprintf("idemp:%s:%s:%s:%s", method, path, userID, reqKey)
}

func bodyHash(body []byte) string {
	sum := sha256.Sum256(body)
	return hex.EncodeToString(sum[:])
}

// Idempotency de-duplicates mutating requests carrying an Idempotency-Key
// header: the first request takes a provisional lock in Redis, concurrent
// duplicates get 409, and completed duplicates get the recorded response
// replayed. Requests without the header pass through untouched.
func Idempotency(rdb *redis.Client, ttl time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method == http.MethodGet || c.Request.Method == http.MethodHead {
			c.Next()
			return
		}

		reqKey := c.GetHeader(idempotencyHeader)
		if reqKey == "" {
			c.Next()
			return
		}

		userID, err := GetUserID(c)
		if err != nil {
			userID = "anonymous"
		}

		var body []byte
		if c.Request.Body != nil {
			body, _ = io.ReadAll(c.Request.Body)
		}
		c.Request.Body = io.NopCloser(bytes.NewBuffer(body))
		hash := bodyHash(body)

		key := idempKey(c.Request.Method, c.FullPath(), userID, reqKey)
		ctx, cancel := context.WithTimeout(c.Request.Context(), idempOpTimeout)
		defer cancel()

		entry, _ := json.Marshal(idempEntry{InProgress: true, BodySHA256: hash})
		ok, err := rdb.SetNX(ctx, key, entry, ttl).Result()
		if err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "IDEMPOTENCY_UNAVAILABLE",
					"message": "Idempotency store unavailable",
				},
			})
			c.Abort()
			return
		}

		if !ok {
			// Key exists: body must match, and a finished request replays.
			var cur idempEntry
			if raw, loadErr := rdb.Get(ctx, key).Bytes(); loadErr == nil {
				_ = json.Unmarshal(raw, &cur)
			}
			if cur.BodySHA256 != "" && cur.BodySHA256 != hash {
				c.JSON(http.StatusConflict, gin.H{
					"success": false,
					"error": gin.H{
						"code":    "IDEMPOTENCY_KEY_REUSED",
						"message": "Idempotency key reused with a different body",
					},
				})
				c.Abort()
				return
			}
			if !cur.InProgress && cur.Code != 0 && len(cur.Body) > 0 {
				c.Data(cur.Code, "application/json; charset=utf-8", cur.Body)
				c.Abort()
				return
			}
			c.JSON(http.StatusConflict, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "REQUEST_IN_PROGRESS",
					"message": "An identical request is already in progress",
				},
			})
			c.Abort()
			return
		}

		// First time through: run the handler and record the response.
		writer := &bodyWriter{ResponseWriter: c.Writer, buf: &bytes.Buffer{}}
		c.Writer = writer
		c.Next()

		final, _ := json.Marshal(idempEntry{
			Code:       writer.Status(),
			Body:       writer.buf.Bytes(),
			BodySHA256: hash,
		})
		// The request-scoped ctx may be past its deadline after a slow
		// handler; the completion write must still land or the key stays
		// stuck in progress until the TTL expires.
		writeCtx, writeCancel := context.WithTimeout(context.Background(), idempOpTimeout)
		defer writeCancel()
		rdb.Set(writeCtx, key, final, ttl)
	}
}
