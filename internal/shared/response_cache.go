package shared

import (
	"bytes"
	"crypto/md5"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"

	"taskapi/pkg/config"
)

// ResponseCache shields the store from identical GET bursts with a short
// per-path TTL. Mutating verbs invalidate the whole path so listings never
// serve deleted or stale rows past the TTL boundary.
type ResponseCache struct {
	cache   *cache.Cache
	configs map[string]config.ResponseCacheConfig
	metrics *AppMetrics
}

type cachedResponse struct {
	StatusCode  int
	ContentType string
	Body        []byte
	Timestamp   time.Time
}

type bodyCaptureWriter struct {
	gin.ResponseWriter
	body *bytes.Buffer
}

func (w *bodyCaptureWriter) Write(b []byte) (int, error) {
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}

func NewResponseCache(configs map[string]config.ResponseCacheConfig, metrics *AppMetrics) *ResponseCache {
	if configs == nil {
		configs = config.GetDefaultConfig().CacheConfigs
	}

	return &ResponseCache{
		cache:   cache.New(5*time.Minute, 10*time.Minute),
		configs: configs,
		metrics: metrics,
	}
}

func (rc *ResponseCache) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		// Mutations run first: DELETE /tasks/5/ must drop the cached
		// /tasks/ listing even though only /tasks/ carries a cache config.
		if c.Request.Method != http.MethodGet {
			c.Next()

			if c.Writer.Status() < http.StatusBadRequest {
				rc.invalidateFamily(c.Request.URL.Path)
			}
			return
		}

		path := c.FullPath()

		if path == "" {
			path = c.Request.URL.Path
		}

		cfg, exists := rc.configs[path]

		if !exists || !cfg.Enabled {
			c.Next()
			return
		}

		key := rc.cacheKey(c, path)

		if cached, found := rc.cache.Get(key); found {
			resp := cached.(cachedResponse)

			if time.Since(resp.Timestamp) < cfg.TTL {
				if rc.metrics != nil {
					rc.metrics.RecordCacheHit(path)
				}

				c.Header("X-Cache", "HIT")
				c.Data(resp.StatusCode, resp.ContentType, resp.Body)
				c.Abort()
				return
			}
		}

		if rc.metrics != nil {
			rc.metrics.RecordCacheMiss(path)
		}

		writer := &bodyCaptureWriter{ResponseWriter: c.Writer, body: &bytes.Buffer{}}
		c.Writer = writer

		c.Next()

		if c.Writer.Status() == http.StatusOK {
			rc.cache.Set(key, cachedResponse{
				StatusCode:  c.Writer.Status(),
				ContentType: c.Writer.Header().Get("Content-Type"),
				Body:        writer.body.Bytes(),
				Timestamp:   time.Now(),
			}, cfg.TTL)
		}
	}
}

func (rc *ResponseCache) cacheKey(c *gin.Context, path string) string {
	sum := md5.Sum([]byte(c.Request.URL.Path + "?" + c.Request.URL.RawQuery))
	return fmt.Sprintf("%s|%x", path, sum)
}

// invalidateFamily drops the entries of every configured path that prefixes
// the mutated URL.
func (rc *ResponseCache) invalidateFamily(requestPath string) {
	for cfgPath := range rc.configs {
		if strings.HasPrefix(requestPath, cfgPath) {
			rc.invalidate(cfgPath)
		}
	}
}

func (rc *ResponseCache) invalidate(path string) {
	for key := range rc.cache.Items() {
		if len(key) >= len(path) && key[:len(path)] == path {
			rc.cache.Delete(key)
		}
	}
}
