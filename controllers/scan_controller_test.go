package controllers

import (
	"net/http"
	"testing"
	"time"

	"slidelab/scanner"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newScanRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	sc := NewScanController(&Srv{Scans: scanner.NewSessionStore(rdb, time.Minute)})
	r := gin.New()
	g := r.Group("/api/scan", func(c *gin.Context) {
		c.Set("userID", "u1")
		c.Set("username", "alice")
	})
	g.POST("/sessions", sc.Start)
	g.POST("/sessions/:sid/observations", sc.Observe)
	g.DELETE("/sessions/:sid", sc.Stop)
	return r
}

func TestScanObserveUnknownSessionIs404(t *testing.T) {
	r := newScanRouter(t)
	w, out := doJSON(t, r, http.MethodPost, "/api/scan/sessions/no-such/observations",
		`{"code":"654321","confidence":80}`)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, out["error"], "not found")
}

func TestScanObservePending(t *testing.T) {
	r := newScanRouter(t)

	w, out := doJSON(t, r, http.MethodPost, "/api/scan/sessions", "")
	require.Equal(t, http.StatusCreated, w.Code)
	sid, _ := out["sessionId"].(string)
	require.NotEmpty(t, sid)

	w, out = doJSON(t, r, http.MethodPost, "/api/scan/sessions/"+sid+"/observations",
		`{"code":"654321","confidence":80}`)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "pending", out["status"])
}
