package services_test

import (
	"context"
	"sync"
	"testing"

	"ecomapp/internal/domain"
	"ecomapp/internal/notify"
	"ecomapp/internal/repos"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func memdb(t *testing.T) *sqlx.DB {
	t.Helper()
	db, err := repos.OpenDB(repos.DriverSQLite, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func mkUser(t *testing.T, db *sqlx.DB, email, role string) *domain.User {
	t.Helper()
	u := &domain.User{Email: email, FirstName: "Test", Hash: "x", Role: role, IsActive: true}
	require.NoError(t, repos.NewUserRepo(db).Create(context.Background(), u))
	return u
}

func mkProduct(t *testing.T, db *sqlx.DB, name, price string, stock int) domain.Product {
	t.Helper()
	p := domain.Product{Name: name, Price: decimal.RequireFromString(price), StockCount: stock}
	require.NoError(t, repos.NewProductRepo(db).Create(context.Background(), &p))
	return p
}

func stockOf(t *testing.T, db *sqlx.DB, id string) int {
	t.Helper()
	n, err := repos.NewInventoryRepo(db).Stock(context.Background(), id)
	require.NoError(t, err)
	return n
}

func countRows(t *testing.T, db *sqlx.DB, table string) int {
	t.Helper()
	var n int
	require.NoError(t, db.Get(&n, `SELECT COUNT(*) FROM `+table))
	return n
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

// recorder is a Notifier that keeps what it was given.
type recorder struct {
	mu   sync.Mutex
	msgs []notify.Message
}

func (r *recorder) Dispatch(m notify.Message) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.msgs = append(r.msgs, m)
}

func (r *recorder) all() []notify.Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]notify.Message(nil), r.msgs...)
}
