package metrics

import (
	"errors"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KaramelBytes/spendboard/internal/memo"
)

func TestCollectorsCount(t *testing.T) {
	c := New()
	c.ObserveLookup("tables", memo.Miss)
	c.ObserveLookup("tables", memo.Hit)
	c.ObserveLookup("tables", memo.Hit)
	c.ObserveRender(10*time.Millisecond, nil)
	c.ObserveRender(time.Millisecond, errors.New("boom"))
	c.ObserveRequest("GET", "/", 200, time.Millisecond)

	rec := httptest.NewRecorder()
	c.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	require.Equal(t, 200, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `spendboard_cache_lookups_total{cache="tables",outcome="hit"} 2`)
	assert.Contains(t, body, `spendboard_renders_total{result="fatal"} 1`)
	assert.Contains(t, body, `spendboard_http_requests_total{code="200",method="GET",route="/"} 1`)
	assert.Contains(t, body, "go_goroutines")
}

func TestNilCollectorsIsNoop(t *testing.T) {
	var c *Collectors
	assert.NotPanics(t, func() {
		c.ObserveLookup("models", memo.Error)
		c.ObserveRender(time.Second, nil)
		c.ObserveRequest("GET", "/", 500, time.Second)
	})
}
