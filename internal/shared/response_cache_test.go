package shared

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	. "github.com/onsi/gomega"

	"taskapi/pkg/config"
)

func cachedRouter(items *[]string, deleteStatus int) *gin.Engine {
	gin.SetMode(gin.TestMode)

	responseCache := NewResponseCache(map[string]config.ResponseCacheConfig{
		"/tasks/": {TTL: time.Minute, Enabled: true},
	}, nil)

	router := gin.New()
	router.Use(responseCache.Middleware())

	router.GET("/tasks/", func(c *gin.Context) {
		c.JSON(http.StatusOK, *items)
	})
	router.DELETE("/tasks/:id/", func(c *gin.Context) {
		if deleteStatus >= http.StatusBadRequest {
			c.JSON(deleteStatus, gin.H{"error": "nope"})
			return
		}

		*items = []string{}
		c.JSON(http.StatusOK, gin.H{"message": "deleted"})
	})

	return router
}

func performRequest(router *gin.Engine, method, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(method, path, nil))
	return w
}

func TestResponseCacheServesRepeatedGets(t *testing.T) {
	RegisterTestingT(t)

	items := []string{"task-1"}
	router := cachedRouter(&items, http.StatusOK)

	first := performRequest(router, http.MethodGet, "/tasks/")
	Expect(first.Header().Get("X-Cache")).To(BeEmpty())

	second := performRequest(router, http.MethodGet, "/tasks/")
	Expect(second.Header().Get("X-Cache")).To(Equal("HIT"))
	Expect(second.Body.String()).To(Equal(first.Body.String()))
}

func TestResponseCacheInvalidatesListingOnDelete(t *testing.T) {
	RegisterTestingT(t)

	items := []string{"task-1"}
	router := cachedRouter(&items, http.StatusOK)

	performRequest(router, http.MethodGet, "/tasks/")
	performRequest(router, http.MethodDelete, "/tasks/1/")

	w := performRequest(router, http.MethodGet, "/tasks/")

	Expect(w.Header().Get("X-Cache")).To(BeEmpty())
	Expect(w.Body.String()).To(MatchJSON("[]"))
}

func TestResponseCacheKeepsEntriesOnFailedMutation(t *testing.T) {
	RegisterTestingT(t)

	items := []string{"task-1"}
	router := cachedRouter(&items, http.StatusNotFound)

	performRequest(router, http.MethodGet, "/tasks/")
	performRequest(router, http.MethodDelete, "/tasks/1/")

	w := performRequest(router, http.MethodGet, "/tasks/")

	Expect(w.Header().Get("X-Cache")).To(Equal("HIT"))
	Expect(w.Body.String()).To(MatchJSON(`["task-1"]`))
}
