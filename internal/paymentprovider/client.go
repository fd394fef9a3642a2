// Package paymentprovider реализует клиент платёжного шлюза Razorpay:
// создание заказов, проверку подписи платежа и получение сведений о платеже.
package paymentprovider

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"net/http"
	"time"
)

type Client struct {
	keyID      string
	keySecret  string
	apiURL     string
	httpClient *http.Client
}

// NewClient создаёт новый клиент платёжного шлюза.
func NewClient(keyID, keySecret, apiURL string) *Client {
	if apiURL == "" {
		apiURL = "https://api.razorpay.com/v1"
	}
	return &Client{
		keyID:      keyID,
		keySecret:  keySecret,
		apiURL:     apiURL,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

func (c *Client) newRequest(method, path string, body interface{}) (*http.Request, error) {
	url := c.apiURL + path
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return nil, err
		}
	}
	req, err := http.NewRequest(method, url, &buf)
	if err != nil {
		return nil, err
	}
	req.SetBasicAuth(c.keyID, c.keySecret)
	req.Header.Set("Content-Type", "application/json")
	return req, nil
}

// CreateOrder отправляет запрос на создание заказа в шлюзе.
func (c *Client) CreateOrder(reqParams CreateOrderRequest) (*CreateOrderResponse, error) {
	req, err := c.newRequest("POST", "/orders", reqParams)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return nil, errors.New("unexpected status: " + resp.Status)
	}

	var orderResp CreateOrderResponse
	if err := json.NewDecoder(resp.Body).Decode(&orderResp); err != nil {
		return nil, err
	}
	return &orderResp, nil
}

// FetchPayment получает сведения о платеже по его идентификатору.
func (c *Client) FetchPayment(paymentID string) (*PaymentDetails, error) {
	req, err := c.newRequest("GET", "/payments/"+paymentID, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, errors.New("unexpected status: " + resp.Status)
	}

	var details PaymentDetails
	if err := json.NewDecoder(resp.Body).Decode(&details); err != nil {
		return nil, err
	}
	return &details, nil
}

// VerifySignature проверяет подпись платежа: HMAC-SHA256 от строки
// "orderID|paymentID" на секретном ключе шлюза.
func (c *Client) VerifySignature(orderID, paymentID, signature string) bool {
	mac := hmac.New(sha256.New, []byte(c.keySecret))
	mac.Write([]byte(orderID + "|" + paymentID))
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}
