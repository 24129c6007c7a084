package log

import (
	"bytes"
	"encoding/json"
	"errors"
	"log"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func capture(t *testing.T, fn func()) []entry {
	t.Helper()
	var buf bytes.Buffer
	oldW, oldFlags := log.Writer(), log.Flags()
	log.SetOutput(&buf)
	log.SetFlags(0)
	defer func() {
		log.SetOutput(oldW)
		log.SetFlags(oldFlags)
	}()

	fn()

	var out []entry
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		var e entry
		if err := json.Unmarshal([]byte(line), &e); err == nil {
			out = append(out, e)
		}
	}
	return out
}

func TestWriteWithoutRequest(t *testing.T) {
	entries := capture(t, func() {
		Error(nil, "notify.send.fail", errors.New("smtp down"), map[string]any{"order_id": "o-1"})
	})
	require.Len(t, entries, 1)
	e := entries[0]
	assert.Equal(t, "error", e.Level)
	assert.Equal(t, "notify.send.fail", e.Action)
	assert.Equal(t, "smtp down", e.Err)
	assert.Equal(t, "o-1", e.Fields["order_id"])
	assert.Empty(t, e.Path)
}

func TestWriteWithRequest(t *testing.T) {
	app := fiber.New()
	app.Use(requestid.New())
	app.Get("/ping", func(c *fiber.Ctx) error {
		Audit(c, "ping", nil)
		return c.SendStatus(fiber.StatusNoContent)
	})

	entries := capture(t, func() {
		_, err := app.Test(httptest.NewRequest("GET", "/ping", nil))
		require.NoError(t, err)
	})
	require.Len(t, entries, 1)
	assert.Equal(t, "audit", entries[0].Level)
	assert.Equal(t, "/ping", entries[0].Path)
	assert.Equal(t, "GET", entries[0].Method)
	assert.NotEmpty(t, entries[0].ReqID)
}

func TestTeeFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "storefront.log")
	oldW := log.Writer()
	defer log.SetOutput(oldW)

	closer, err := TeeFile(path)
	require.NoError(t, err)
	Info(nil, "boot", nil)
	require.NoError(t, closer.Close())

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(b), `"action":"boot"`)
}
