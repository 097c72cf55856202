package http

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/chainguard-dev/clog/slogtest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"
)

func TestFetch(t *testing.T) {
	ctx := slogtest.Context(t)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/libfoo2-2.0-r0.apk" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte("apk bytes"))
	}))
	defer srv.Close()

	c := NewClient(rate.NewLimiter(rate.Every(time.Millisecond), 2))

	body, err := c.Fetch(ctx, srv.URL+"/libfoo2-2.0-r0.apk")
	require.NoError(t, err)
	data, err := io.ReadAll(body)
	require.NoError(t, err)
	require.NoError(t, body.Close())
	assert.Equal(t, "apk bytes", string(data))

	_, err = c.Fetch(ctx, srv.URL+"/missing.apk")
	require.ErrorContains(t, err, "404 when getting")
}

func TestUnlimited(t *testing.T) {
	c := Unlimited()
	assert.Equal(t, rate.Inf, c.Ratelimiter.Limit())
}
