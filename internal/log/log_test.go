package log_test

import (
	"bytes"
	"encoding/json"
	"errors"
	stdlog "log"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	applog "ecomapp/internal/log"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func capture(t *testing.T, fn func()) []map[string]any {
	t.Helper()
	var buf bytes.Buffer
	oldW, oldFlags := stdlog.Writer(), stdlog.Flags()
	stdlog.SetOutput(&buf)
	stdlog.SetFlags(0)
	defer func() {
		stdlog.SetOutput(oldW)
		stdlog.SetFlags(oldFlags)
	}()

	fn()

	var out []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		var m map[string]any
		require.NoError(t, json.Unmarshal([]byte(line), &m), line)
		out = append(out, m)
	}
	return out
}

func TestRequestEntriesCarryContext(t *testing.T) {
	app := fiber.New()
	app.Use(applog.Timing())
	app.Get("/slow", func(c *fiber.Ctx) error {
		c.Locals(applog.UserIDKey, "u-1")
		time.Sleep(15 * time.Millisecond)
		applog.Audit(c, "thing.done", map[string]any{"n": 2})
		return c.SendStatus(fiber.StatusNoContent)
	})

	entries := capture(t, func() {
		_, err := app.Test(httptest.NewRequest("GET", "/slow", nil))
		require.NoError(t, err)
	})
	require.Len(t, entries, 1)
	e := entries[0]
	assert.Equal(t, "audit", e["level"])
	assert.Equal(t, "thing.done", e["action"])
	assert.Equal(t, "GET", e["method"])
	assert.Equal(t, "/slow", e["path"])
	assert.Equal(t, "u-1", e["user_id"])
	assert.GreaterOrEqual(t, e["latency_ms"], float64(15))
	assert.EqualValues(t, 2, e["fields"].(map[string]any)["n"])
}

func TestBackgroundEntries(t *testing.T) {
	entries := capture(t, func() {
		applog.Error(nil, "notify.send", errors.New("broker down"), nil)
		applog.Security(nil, "rate.hit", map[string]any{"bad": func() {}})
	})
	require.Len(t, entries, 2)
	assert.Equal(t, "error", entries[0]["level"])
	assert.Equal(t, "broker down", entries[0]["err"])
	assert.NotContains(t, entries[0], "path")
	assert.NotContains(t, entries[0], "latency_ms")

	assert.Equal(t, "warn", entries[1]["level"])
	assert.Equal(t, "rate.hit", entries[1]["action"])
	assert.Contains(t, entries[1]["fields"], "marshal_error")
}
