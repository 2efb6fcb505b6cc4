package httpserver

import (
	"context"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNewEngineRecoversAndLogs(t *testing.T) {
	router, err := NewEngine(gin.TestMode, "test", zap.NewNop(), nil, nil)
	require.NoError(t, err)
	router.GET("/panic", func(c *gin.Context) { panic("boom") })

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/panic", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}

func TestNewEngineClientIP(t *testing.T) {
	tests := []struct {
		name    string
		trusted []string
		remote  string
		want    string
	}{
		{"forwarded header ignored by default", nil, "203.0.113.7:51000", "203.0.113.7"},
		{"untrusted peer", []string{"10.0.0.0/8"}, "203.0.113.7:51000", "203.0.113.7"},
		{"trusted load balancer", []string{"10.0.0.0/8"}, "10.1.2.3:51000", "198.51.100.9"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router, err := NewEngine(gin.TestMode, "test", zap.NewNop(), nil, tt.trusted)
			require.NoError(t, err)
			router.GET("/ip", func(c *gin.Context) { c.String(http.StatusOK, c.ClientIP()) })

			req := httptest.NewRequest(http.MethodGet, "/ip", nil)
			req.RemoteAddr = tt.remote
			req.Header.Set("X-Forwarded-For", "198.51.100.9")
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)
			assert.Equal(t, tt.want, w.Body.String())
		})
	}
}

func TestNewEngineRejectsBadTrustedProxy(t *testing.T) {
	_, err := NewEngine(gin.TestMode, "test", zap.NewNop(), nil, []string{"not-a-cidr"})
	assert.Error(t, err)
}

func TestServeShutsDownOnCancel(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	router, err := NewEngine(gin.TestMode, "test", zap.NewNop(), nil, nil)
	require.NoError(t, err)
	router.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- Serve(ctx, ln, router, zap.NewNop()) }()

	var resp *http.Response
	require.Eventually(t, func() bool {
		resp, err = http.Get("http://" + ln.Addr().String() + "/ping")
		return err == nil
	}, 2*time.Second, 20*time.Millisecond)
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.Equal(t, "pong", string(body))

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}

func TestRunRejectsBadAddress(t *testing.T) {
	err := Run(context.Background(), "256.0.0.1:http", http.NotFoundHandler(), zap.NewNop())
	assert.Error(t, err)
}
