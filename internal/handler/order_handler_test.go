package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gaelxxl34/alsabil-service/internal/domain"
	"github.com/gaelxxl34/alsabil-service/pkg/middleware"
)

func login(t *testing.T, f *fixture, email string) []*http.Cookie {
	t.Helper()

	body, _ := json.Marshal(map[string]string{"email": email, "password": testPassword})
	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	cookies := rec.Result().Cookies()
	require.NotEmpty(t, cookies)
	return cookies
}

func doJSON(f *fixture, method, path string, payload interface{}, cookies []*http.Cookie) *httptest.ResponseRecorder {
	var body *bytes.Reader
	if payload != nil {
		data, _ := json.Marshal(payload)
		body = bytes.NewReader(data)
	} else {
		body = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, body)
	req.Header.Set("Content-Type", "application/json")
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) Response {
	t.Helper()
	var env Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	return env
}

func orderPayload(customerID, sellerID string, subtotal float64) map[string]interface{} {
	return map[string]interface{}{
		"customerId": customerID,
		"sellerId":   sellerID,
		"subtotal":   subtotal,
		"items": []map[string]interface{}{
			{"productId": "p1", "name": "Rice 10kg", "unit": "bag", "quantity": 2, "price": subtotal / 2},
		},
	}
}

func TestUnauthenticatedRequestsGet401(t *testing.T) {
	f := newFixture(t)

	for _, path := range []string{"/api/orders", "/api/auth/me", "/api/users", "/api/events/orders"} {
		rec := doJSON(f, http.MethodGet, path, nil, nil)
		require.Equal(t, http.StatusUnauthorized, rec.Code, path)

		env := decodeEnvelope(t, rec)
		assert.False(t, env.Success)
		assert.Nil(t, env.Data, "401 body must not leak data for %s", path)
	}
}

func TestLoginSetsSessionAndRoleCookies(t *testing.T) {
	f := newFixture(t)
	cookies := login(t, f, "seller1@alsabil.test")

	var session, role *http.Cookie
	for _, c := range cookies {
		switch c.Name {
		case middleware.SessionCookie:
			session = c
		case middleware.RoleCookie:
			role = c
		}
	}
	require.NotNil(t, session)
	require.NotNil(t, role)

	assert.True(t, session.HttpOnly)
	assert.False(t, role.HttpOnly)
	assert.Equal(t, "seller", role.Value)
}

func TestLoginBadPassword(t *testing.T) {
	f := newFixture(t)

	rec := doJSON(f, http.MethodPost, "/api/auth/login",
		map[string]string{"email": "seller1@alsabil.test", "password": "nope"}, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	env := decodeEnvelope(t, rec)
	assert.False(t, env.Success)
	assert.Nil(t, env.Data)
}

func TestCreateOrderEndToEnd(t *testing.T) {
	f := newFixture(t)
	cookies := login(t, f, "cust1@alsabil.test")

	rec := doJSON(f, http.MethodPost, "/api/orders", orderPayload("cust-1", "seller-1", 120), cookies)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	env := decodeEnvelope(t, rec)
	require.True(t, env.Success)

	data, _ := json.Marshal(env.Data)
	var order domain.Order
	require.NoError(t, json.Unmarshal(data, &order))

	assert.Equal(t, 0.0, order.DeliveryFee)
	assert.Equal(t, 120.0, order.Total)
	assert.Equal(t, 120.0, order.RemainingAmount)
	assert.Equal(t, domain.PaymentStatusPending, order.PaymentStatus)
}

func TestCreateOrderValidation(t *testing.T) {
	f := newFixture(t)
	cookies := login(t, f, "cust1@alsabil.test")

	// Missing subtotal.
	rec := doJSON(f, http.MethodPost, "/api/orders", map[string]interface{}{
		"customerId": "cust-1",
		"sellerId":   "seller-1",
		"items":      []map[string]interface{}{{"productId": "p1", "quantity": 1, "price": 10}},
	}, cookies)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// Non-numeric subtotal.
	rec = doJSON(f, http.MethodPost, "/api/orders", map[string]interface{}{
		"customerId": "cust-1",
		"sellerId":   "seller-1",
		"subtotal":   "forty",
		"items":      []map[string]interface{}{{"productId": "p1", "quantity": 1, "price": 10}},
	}, cookies)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// Empty items.
	rec = doJSON(f, http.MethodPost, "/api/orders", map[string]interface{}{
		"customerId": "cust-1",
		"sellerId":   "seller-1",
		"subtotal":   40,
		"items":      []map[string]interface{}{},
	}, cookies)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreateOrderForeignCustomerForbidden(t *testing.T) {
	f := newFixture(t)
	cookies := login(t, f, "cust2@alsabil.test")

	rec := doJSON(f, http.MethodPost, "/api/orders", orderPayload("cust-1", "seller-1", 120), cookies)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestRecordPaymentFlow(t *testing.T) {
	f := newFixture(t)
	custCookies := login(t, f, "cust1@alsabil.test")

	rec := doJSON(f, http.MethodPost, "/api/orders", orderPayload("cust-1", "seller-1", 40), custCookies)
	require.Equal(t, http.StatusCreated, rec.Code)
	env := decodeEnvelope(t, rec)
	data, _ := json.Marshal(env.Data)
	var order domain.Order
	require.NoError(t, json.Unmarshal(data, &order))
	require.Equal(t, 45.0, order.Total)

	sellerCookies := login(t, f, "seller1@alsabil.test")
	rec = doJSON(f, http.MethodPut, "/api/orders/"+order.ID, map[string]interface{}{
		"payment": map[string]interface{}{"amount": 45, "method": "cash"},
	}, sellerCookies)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	env = decodeEnvelope(t, rec)
	data, _ = json.Marshal(env.Data)
	require.NoError(t, json.Unmarshal(data, &order))
	assert.Equal(t, 45.0, order.TotalPaid)
	assert.Equal(t, 0.0, order.RemainingAmount)
	assert.Equal(t, domain.PaymentStatusPaid, order.PaymentStatus)
}

func TestSellerListNeverLeaksForeignOrders(t *testing.T) {
	f := newFixture(t)

	for _, c := range []struct{ email, customer, seller string }{
		{"cust1@alsabil.test", "cust-1", "seller-1"},
		{"cust2@alsabil.test", "cust-2", "seller-2"},
	} {
		cookies := login(t, f, c.email)
		rec := doJSON(f, http.MethodPost, "/api/orders", orderPayload(c.customer, c.seller, 100), cookies)
		require.Equal(t, http.StatusCreated, rec.Code)
	}

	sellerCookies := login(t, f, "seller1@alsabil.test")

	// Even asking explicitly for the other seller's orders.
	for _, q := range []string{"", "?sellerId=seller-2", "?customerId=cust-2&sellerId=seller-2"} {
		rec := doJSON(f, http.MethodGet, "/api/orders"+q, nil, sellerCookies)
		require.Equal(t, http.StatusOK, rec.Code)

		env := decodeEnvelope(t, rec)
		data, _ := json.Marshal(env.Data)
		var orders []domain.Order
		require.NoError(t, json.Unmarshal(data, &orders))
		for _, o := range orders {
			assert.Equal(t, "seller-1", o.SellerID, "query %q leaked a foreign order", q)
		}
	}
}

func TestGetOrderNotFound(t *testing.T) {
	f := newFixture(t)
	cookies := login(t, f, "seller1@alsabil.test")

	rec := doJSON(f, http.MethodGet, "/api/orders/does-not-exist", nil, cookies)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAdminDeleteUserCascades(t *testing.T) {
	f := newFixture(t)

	custCookies := login(t, f, "cust1@alsabil.test")
	rec := doJSON(f, http.MethodPost, "/api/orders", orderPayload("cust-1", "seller-1", 100), custCookies)
	require.Equal(t, http.StatusCreated, rec.Code)

	adminCookies := login(t, f, "admin@alsabil.test")
	rec = doJSON(f, http.MethodDelete, "/api/users/cust-1", nil, adminCookies)
	require.Equal(t, http.StatusOK, rec.Code)

	remaining, err := f.orders.ListByCustomer(context.Background(), "cust-1")
	require.NoError(t, err)
	assert.Empty(t, remaining)

	// Deleting is admin-only.
	sellerCookies := login(t, f, "seller1@alsabil.test")
	rec = doJSON(f, http.MethodDelete, "/api/users/cust-2", nil, sellerCookies)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestMeReturnsCallerWithoutHash(t *testing.T) {
	f := newFixture(t)
	cookies := login(t, f, "seller1@alsabil.test")

	rec := doJSON(f, http.MethodGet, "/api/auth/me", nil, cookies)
	require.Equal(t, http.StatusOK, rec.Code)

	assert.NotContains(t, rec.Body.String(), "passwordHash")
	env := decodeEnvelope(t, rec)
	data, _ := json.Marshal(env.Data)
	var user domain.User
	require.NoError(t, json.Unmarshal(data, &user))
	assert.Equal(t, "seller-1", user.ID)
}
