package logger

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestLevel(t *testing.T) {
	tests := []struct {
		name     string
		flag     string
		level    string
		expected zerolog.Level
	}{
		{"default", "", "", zerolog.ErrorLevel},
		{"log flag", "1", "", zerolog.InfoLevel},
		{"debug", "", "debug", zerolog.DebugLevel},
		{"info upper", "", " INFO ", zerolog.InfoLevel},
		{"off wins over flag", "1", "off", zerolog.Disabled},
		{"unknown", "", "verbose", zerolog.ErrorLevel},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Level(tt.flag, tt.level))
		})
	}
}

func TestMiddleware(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf, "", "debug")

	h := Middleware(log)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/projects", nil))

	assert.Equal(t, http.StatusTeapot, rec.Code)
	out := buf.String()
	assert.Contains(t, out, `"path":"/projects"`)
	assert.Contains(t, out, `"status":418`)
}

func TestMiddlewareQuietAtErrorLevel(t *testing.T) {
	var buf bytes.Buffer
	h := Middleware(New(&buf, "", ""))(http.NotFoundHandler())
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Empty(t, buf.String())
}
