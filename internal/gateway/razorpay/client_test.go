package razorpay

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateOrder(t *testing.T) {
	var gotAuth string
	var gotBody CreateOrderRequest

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/v1/orders", r.URL.Path)
		gotAuth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"order_abc","amount":25000,"currency":"USD","receipt":"rcpt_1","status":"created"}`))
	}))
	defer srv.Close()

	client, err := NewClient("key_id", "key_secret", srv.URL)
	require.NoError(t, err)

	order, err := client.CreateOrder(context.Background(), CreateOrderRequest{
		Amount:   25000,
		Currency: "USD",
		Receipt:  "rcpt_1",
	})
	require.NoError(t, err)

	assert.Equal(t, "order_abc", order.ID)
	assert.EqualValues(t, 25000, order.Amount)
	assert.Equal(t, "created", order.Status)
	assert.EqualValues(t, 25000, gotBody.Amount)

	expectedAuth := "Basic " + base64.StdEncoding.EncodeToString([]byte("key_id:key_secret"))
	assert.Equal(t, expectedAuth, gotAuth)
}

func TestCreateOrderSurfacesAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":{"code":"BAD_REQUEST_ERROR","description":"amount too small"}}`))
	}))
	defer srv.Close()

	client, err := NewClient("key_id", "key_secret", srv.URL)
	require.NoError(t, err)

	_, err = client.CreateOrder(context.Background(), CreateOrderRequest{Amount: 1})
	require.Error(t, err)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
	assert.Equal(t, "BAD_REQUEST_ERROR", apiErr.Code)
}

func TestFetchOrderNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":{"code":"BAD_REQUEST_ERROR","description":"order does not exist"}}`))
	}))
	defer srv.Close()

	client, err := NewClient("key_id", "key_secret", srv.URL)
	require.NoError(t, err)

	_, err = client.FetchOrder(context.Background(), "order_missing")
	assert.ErrorIs(t, err, ErrOrderNotFound)
}

func TestNewClientRequiresCredentials(t *testing.T) {
	_, err := NewClient("", "secret", "")
	assert.ErrorIs(t, err, ErrMissingCredentials)

	_, err = NewClient("key", " ", "")
	assert.ErrorIs(t, err, ErrMissingCredentials)
}
