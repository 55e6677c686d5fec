package handlers_test

import (
	"net/http"
	"testing"

	"ecomapp/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAdminRoutesRequireAdmin(t *testing.T) {
	env := newEnv(t)
	_, userTok := env.user(t, "user@example.com", domain.RoleUser)

	paths := []string{"/api/users", "/api/orders", "/api/admin/inventory", "/api/admin/reports/status"}
	for _, p := range paths {
		status, _ := env.do(t, http.MethodGet, p, "", nil)
		assert.Equal(t, http.StatusUnauthorized, status, p)
	}

	var status int
	var raw []byte
	logs := captureLogs(t, func() {
		status, raw = env.do(t, http.MethodGet, "/api/users", userTok, nil)
	})
	require.Equal(t, http.StatusForbidden, status)
	assert.Equal(t, "You do not have permission to perform this action.", decode(t, raw)["detail"])
	e, ok := findLog(logs, "access.denied.admin")
	require.True(t, ok)
	assert.Equal(t, "USER", e.Fields["role"])
}

func TestAdminCatalogAndRestock(t *testing.T) {
	env := newEnv(t)
	_, tok := env.user(t, "admin@example.com", domain.RoleAdmin)

	status, raw := env.do(t, http.MethodPost, "/api/admin/categories", tok, map[string]any{"name": "Games"})
	require.Equal(t, http.StatusCreated, status, string(raw))
	catID := decode(t, raw)["_id"].(string)

	status, _ = env.do(t, http.MethodPost, "/api/admin/categories", tok, map[string]any{"name": "Games"})
	assert.Equal(t, http.StatusConflict, status)

	status, raw = env.do(t, http.MethodPost, "/api/admin/products", tok, map[string]any{
		"productName": "Cartridge", "category": catID, "price": "19.99", "stockCount": 0,
	})
	require.Equal(t, http.StatusCreated, status, string(raw))
	prodID := decode(t, raw)["_id"].(string)

	status, raw = env.do(t, http.MethodGet, "/api/products/"+prodID+"/availability", "", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "OUT_OF_STOCK", decode(t, raw)["status"])

	logs := captureLogs(t, func() {
		status, raw = env.do(t, http.MethodPut, "/api/admin/products/"+prodID+"/stock", tok, map[string]any{"stock": 3})
	})
	require.Equal(t, http.StatusOK, status, string(raw))
	assert.Equal(t, "LOW_STOCK", decode(t, raw)["status"])
	e, ok := findLog(logs, "admin.inventory.update")
	require.True(t, ok)
	assert.Equal(t, "audit", e.Level)
	assert.EqualValues(t, 3, e.Fields["stock"])

	status, _ = env.do(t, http.MethodPut, "/api/admin/products/"+prodID+"/stock", tok, map[string]any{"stock": -1})
	assert.Equal(t, http.StatusBadRequest, status)

	status, raw = env.do(t, http.MethodGet, "/api/products/"+prodID, "", nil)
	require.Equal(t, http.StatusOK, status)
	body := decode(t, raw)
	assert.Equal(t, "RESTOCKED", body["arrival_status"])
	assert.Equal(t, "19.99", body["price"])
}

func TestAdminOrderStatusAndReports(t *testing.T) {
	env := newEnv(t)
	_, admin := env.user(t, "admin@example.com", domain.RoleAdmin)
	_, buyer := env.user(t, "buyer@example.com", domain.RoleUser)
	p := env.product(t, "Keyboard", "10.00", 10)

	status, raw := env.do(t, http.MethodPost, "/api/orders/create", buyer, orderBody(line(p.ID, 2, "10.00")))
	require.Equal(t, http.StatusCreated, status)
	id := decode(t, raw)["id"].(string)

	status, raw = env.do(t, http.MethodGet, "/api/orders?limit=10", admin, nil)
	require.Equal(t, http.StatusOK, status, string(raw))
	listed := decodeList(t, raw)
	require.Len(t, listed, 1)
	assert.Equal(t, id, listed[0]["id"])

	status, _ = env.do(t, http.MethodGet, "/api/orders", buyer, nil)
	assert.Equal(t, http.StatusForbidden, status)

	status, raw = env.do(t, http.MethodPut, "/api/orders/"+id+"/status", admin, map[string]any{"status": "Delivered"})
	assert.Equal(t, http.StatusBadRequest, status, string(raw))

	status, raw = env.do(t, http.MethodPut, "/api/orders/"+id+"/status", admin, map[string]any{"status": "Paid"})
	require.Equal(t, http.StatusOK, status, string(raw))
	body := decode(t, raw)
	assert.Equal(t, "Paid", body["status"])
	assert.Equal(t, true, body["is_paid"])

	status, raw = env.do(t, http.MethodGet, "/api/admin/reports/top-products?limit=3", admin, nil)
	require.Equal(t, http.StatusOK, status)
	rows := decode(t, raw)["rows"].([]any)
	require.Len(t, rows, 1)
	top := rows[0].(map[string]any)
	assert.Equal(t, "Keyboard", top["productName"])
	assert.EqualValues(t, 2, top["units"])
	assert.Equal(t, "20.00", top["revenue"])

	status, raw = env.do(t, http.MethodGet, "/api/admin/reports/sales?period=month", admin, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, decode(t, raw)["rows"], 1)

	status, _ = env.do(t, http.MethodGet, "/api/admin/reports/sales?period=fortnight", admin, nil)
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestAdminDeleteUser(t *testing.T) {
	env := newEnv(t)
	adminUser, admin := env.user(t, "admin@example.com", domain.RoleAdmin)
	victim, _ := env.user(t, "victim@example.com", domain.RoleUser)

	status, _ := env.do(t, http.MethodDelete, "/api/users/"+adminUser.ID, admin, nil)
	assert.Equal(t, http.StatusBadRequest, status)

	status, _ = env.do(t, http.MethodDelete, "/api/users/"+victim.ID, admin, nil)
	require.Equal(t, http.StatusNoContent, status)

	status, _ = env.do(t, http.MethodDelete, "/api/users/"+victim.ID, admin, nil)
	assert.Equal(t, http.StatusNotFound, status)
}
