package paymentprovider

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func signFor(secret, orderID, paymentID string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(orderID + "|" + paymentID))
	return hex.EncodeToString(mac.Sum(nil))
}

func TestVerifySignature(t *testing.T) {
	client := NewClient("key", "secret", "")

	tests := []struct {
		name      string
		orderID   string
		paymentID string
		signature string
		want      bool
	}{
		{
			name:      "корректная подпись",
			orderID:   "order_123",
			paymentID: "pay_456",
			signature: signFor("secret", "order_123", "pay_456"),
			want:      true,
		},
		{
			name:      "подпись на чужом ключе",
			orderID:   "order_123",
			paymentID: "pay_456",
			signature: signFor("wrong", "order_123", "pay_456"),
			want:      false,
		},
		{
			name:      "подпись другого платежа",
			orderID:   "order_123",
			paymentID: "pay_456",
			signature: signFor("secret", "order_123", "pay_999"),
			want:      false,
		},
		{
			name:      "пустая подпись",
			orderID:   "order_123",
			paymentID: "pay_456",
			signature: "",
			want:      false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := client.VerifySignature(tt.orderID, tt.paymentID, tt.signature)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCreateOrder(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "POST", r.Method)
		assert.Equal(t, "/orders", r.URL.Path)

		user, pass, ok := r.BasicAuth()
		require.True(t, ok)
		assert.Equal(t, "key", user)
		assert.Equal(t, "secret", pass)

		var req CreateOrderRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, int64(29900), req.Amount)
		assert.Equal(t, "INR", req.Currency)

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(CreateOrderResponse{
			ID:       "order_test1",
			Amount:   req.Amount,
			Currency: req.Currency,
			Status:   "created",
		})
	}))
	defer server.Close()

	client := NewClient("key", "secret", server.URL)
	resp, err := client.CreateOrder(CreateOrderRequest{
		Amount:   29900,
		Currency: "INR",
		Receipt:  "rcpt_1",
	})
	require.NoError(t, err)
	assert.Equal(t, "order_test1", resp.ID)
	assert.Equal(t, "created", resp.Status)
}

func TestCreateOrderBadStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	client := NewClient("key", "wrong", server.URL)
	resp, err := client.CreateOrder(CreateOrderRequest{Amount: 100, Currency: "INR"})
	assert.Nil(t, resp)
	assert.Error(t, err)
}
