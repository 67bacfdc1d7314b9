package log

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func lines(t *testing.T, buf *bytes.Buffer) []map[string]interface{} {
	t.Helper()
	var out []map[string]interface{}
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var m map[string]interface{}
		require.NoError(t, json.Unmarshal([]byte(line), &m))
		out = append(out, m)
	}
	return out
}

func TestNewAppliesLevelAndService(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Level: "warn", ServiceName: "graph"}, WithWriter(&buf))

	l.Info().Msg("dropped")
	l.Warn().Msg("kept")

	got := lines(t, &buf)
	require.Len(t, got, 1)
	assert.Equal(t, "kept", got[0]["message"])
	assert.Equal(t, "graph", got[0][FieldService])
}

func TestParseLevel(t *testing.T) {
	for name, want := range map[string]zerolog.Level{
		"":         zerolog.InfoLevel,
		" DEBUG ":  zerolog.DebugLevel,
		"warning":  zerolog.WarnLevel,
		"warn":     zerolog.WarnLevel,
		"trace":    zerolog.TraceLevel,
		"off":      zerolog.Disabled,
		"disabled": zerolog.Disabled,
		"shouting": zerolog.InfoLevel,
		"error":    zerolog.ErrorLevel,
	} {
		assert.Equal(t, want, ParseLevel(name), "level %q", name)
	}
}

func TestPrettyWritesConsoleLines(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Pretty: true, ServiceName: "graph"}, WithWriter(&buf))
	l.Info().Str(FieldUserID, "u1").Msg("hello")

	out := buf.String()
	assert.Contains(t, out, "hello")
	assert.Contains(t, out, "u1")
	assert.False(t, json.Valid(bytes.TrimSpace(buf.Bytes())))
}

func TestCtxFallsBackToGlobal(t *testing.T) {
	var buf bytes.Buffer
	ctx := WithLogger(context.Background(), New(Config{}, WithWriter(&buf)))
	ctx = WithUserID(ctx, "u1")

	l := Ctx(ctx)
	l.Info().Msg("hello")
	assert.Equal(t, "u1", lines(t, &buf)[0][FieldUserID])

	assert.NotPanics(t, func() {
		l := Ctx(context.Background())
		l.Debug().Msg("global")
	})
}

func TestGinMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	var buf bytes.Buffer

	r := gin.New()
	r.Use(GinMiddleware(New(Config{}, WithWriter(&buf)), "/health"))
	r.GET("/health", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/boom", func(c *gin.Context) {
		c.Set(FieldUserID, "u1")
		c.Status(http.StatusInternalServerError)
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.NotEmpty(t, w.Header().Get(headerRequestID))
	assert.Zero(t, buf.Len())

	req := httptest.NewRequest(http.MethodGet, "/boom", nil)
	req.Header.Set(headerRequestID, "req-1")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "req-1", w.Header().Get(headerRequestID))

	got := lines(t, &buf)
	require.Len(t, got, 1)
	assert.Equal(t, "error", got[0]["level"])
	assert.Equal(t, "req-1", got[0][FieldRequestID])
	assert.Equal(t, "u1", got[0][FieldUserID])
	assert.EqualValues(t, 500, got[0][FieldStatus])
}
