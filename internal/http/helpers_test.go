package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"ecomapp/internal/config"
	"ecomapp/internal/domain"
	"ecomapp/internal/http/handlers"
	"ecomapp/internal/notify"
	"ecomapp/internal/repos"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type logEntry struct {
	Level  string         `json:"level"`
	Action string         `json:"action"`
	UserID string         `json:"user_id"`
	Fields map[string]any `json:"fields"`
}

type lockedBuf struct {
	b  bytes.Buffer
	mu sync.Mutex
}

func (l *lockedBuf) Write(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.b.Write(p)
}

func captureLogs(t *testing.T, fn func()) []logEntry {
	t.Helper()
	buf := &lockedBuf{}
	oldW, oldFlags := log.Writer(), log.Flags()
	log.SetOutput(buf)
	log.SetFlags(0)
	defer func() {
		log.SetOutput(oldW)
		log.SetFlags(oldFlags)
	}()

	fn()

	var entries []logEntry
	for _, line := range strings.Split(strings.TrimSpace(buf.b.String()), "\n") {
		var e logEntry
		if err := json.Unmarshal([]byte(strings.TrimSpace(line)), &e); err == nil && e.Action != "" {
			entries = append(entries, e)
		}
	}
	return entries
}

func findLog(entries []logEntry, action string) (logEntry, bool) {
	for _, e := range entries {
		if e.Action == action {
			return e, true
		}
	}
	return logEntry{}, false
}

type recorder struct {
	mu   sync.Mutex
	msgs []notify.Message
}

func (r *recorder) Dispatch(m notify.Message) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.msgs = append(r.msgs, m)
}

func (r *recorder) last() notify.Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.msgs) == 0 {
		return notify.Message{}
	}
	return r.msgs[len(r.msgs)-1]
}

type testEnv struct {
	app  *fiber.App
	db   *sqlx.DB
	mail *recorder
}

func newEnv(t *testing.T) *testEnv {
	t.Helper()
	db, err := repos.OpenDB(repos.DriverSQLite, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	cfg := config.Defaults()
	cfg.BaseURL = "http://shop.test"
	cfg.BcryptCost = bcrypt.MinCost
	mail := &recorder{}
	deps := handlers.NewDeps(db, cfg, mail)
	return &testEnv{app: handlers.NewApp(deps, true), db: db, mail: mail}
}

// user creates an active account and a session for it, returning the bearer token.
func (e *testEnv) user(t *testing.T, email, role string) (*domain.User, string) {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("Passw0rd!"), bcrypt.MinCost)
	require.NoError(t, err)
	u := &domain.User{Email: email, FirstName: "Test", Hash: string(hash), Role: role, IsActive: true}
	r := repos.NewUserRepo(e.db)
	require.NoError(t, r.Create(context.Background(), u))
	sid := uuid.NewString()
	require.NoError(t, r.CreateSession(context.Background(), sid, u.ID))
	return u, sid
}

func (e *testEnv) product(t *testing.T, name, price string, stock int) domain.Product {
	t.Helper()
	p := domain.Product{Name: name, Price: decimal.RequireFromString(price), StockCount: stock}
	require.NoError(t, repos.NewProductRepo(e.db).Create(context.Background(), &p))
	return p
}

func (e *testEnv) stock(t *testing.T, id string) int {
	t.Helper()
	n, err := repos.NewInventoryRepo(e.db).Stock(context.Background(), id)
	require.NoError(t, err)
	return n
}

// do sends a JSON request and returns the status and raw body.
func (e *testEnv) do(t *testing.T, method, path, token string, body any) (int, []byte) {
	t.Helper()
	var rd io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		rd = strings.NewReader(b)
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		rd = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, rd)
	if rd != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := e.app.Test(req, int((5 * time.Second).Milliseconds()))
	require.NoError(t, err)
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, raw
}

func decode(t *testing.T, raw []byte) map[string]any {
	t.Helper()
	var m map[string]any
	require.NoError(t, json.Unmarshal(raw, &m), string(raw))
	return m
}

func orderBody(items ...map[string]any) map[string]any {
	return map[string]any{
		"order_items":    items,
		"payment_method": "PayPal",
		"shipping_price": "0.00",
		"total_price":    "20.00",
	}
}

func line(productID string, qty int, price string) map[string]any {
	return map[string]any{"product_id": productID, "quantity": qty, "price": price}
}

func decodeList(t *testing.T, raw []byte) []map[string]any {
	t.Helper()
	var out []map[string]any
	require.NoError(t, json.Unmarshal(raw, &out), string(raw))
	return out
}
