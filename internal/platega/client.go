// Package platega is the client side of the Platega SBP payment gateway.
package platega

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// paymentMethodSBP is Platega's code for the SBP payment rail.
const paymentMethodSBP = 2

type Client struct {
	baseURL     string
	merchantID  string
	secret      string
	returnURL   string
	failedURL   string
	amount      int
	currency    string
	description string
	httpClient  *http.Client
	logger      *zap.Logger
}

type Options struct {
	BaseURL     string
	MerchantID  string
	Secret      string
	ReturnURL   string
	FailedURL   string
	Amount      int
	Currency    string
	Description string
	Timeout     time.Duration
}

func NewClient(opts Options, logger *zap.Logger) *Client {
	return &Client{
		baseURL:     opts.BaseURL,
		merchantID:  opts.MerchantID,
		secret:      opts.Secret,
		returnURL:   opts.ReturnURL,
		failedURL:   opts.FailedURL,
		amount:      opts.Amount,
		currency:    opts.Currency,
		description: opts.Description,
		httpClient: &http.Client{
			Timeout: opts.Timeout,
		},
		logger: logger,
	}
}

// Payment is the result of a created payment attempt.
type Payment struct {
	OrderID       string
	TransactionID string
	RedirectURL   string
}

// CreatePaymentError reports that the gateway was unreachable or
// rejected the transaction. StatusCode is zero on transport failures.
type CreatePaymentError struct {
	StatusCode int
	Err        error
}

func (e *CreatePaymentError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("create payment: unexpected status %d", e.StatusCode)
	}
	return fmt.Sprintf("create payment: %v", e.Err)
}

func (e *CreatePaymentError) Unwrap() error { return e.Err }

type paymentDetails struct {
	Amount   int    `json:"amount"`
	Currency string `json:"currency"`
}

type transactionRequest struct {
	PaymentMethod  int            `json:"paymentMethod"`
	ID             string         `json:"id"`
	PaymentDetails paymentDetails `json:"paymentDetails"`
	Description    string         `json:"description"`
	Return         string         `json:"return"`
	FailedURL      string         `json:"failedUrl"`
	Payload        string         `json:"payload"`
}

type transactionResponse struct {
	Redirect      string `json:"redirect"`
	Status        string `json:"status"`
	TransactionID string `json:"transactionId"`
}

// CreatePayment registers a pending SBP transaction and returns the
// redirect URL the buyer must open. The payload echoes the chat ID
// verbatim so the confirmation webhook can be mapped back without
// guessing. Transport failures are retried once, then surfaced as
// *CreatePaymentError.
func (c *Client) CreatePayment(ctx context.Context, chatID int64) (*Payment, error) {
	transactionID := uuid.NewString()
	orderID := fmt.Sprintf("order_%d_%d", chatID, time.Now().UnixMilli())

	body, err := json.Marshal(transactionRequest{
		PaymentMethod: paymentMethodSBP,
		ID:            transactionID,
		PaymentDetails: paymentDetails{
			Amount:   c.amount,
			Currency: c.currency,
		},
		Description: c.description,
		Return:      c.returnURL,
		FailedURL:   c.failedURL,
		Payload:     strconv.FormatInt(chatID, 10),
	})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	var result transactionResponse
	op := func() error {
		req, err := http.NewRequestWithContext(
			ctx,
			http.MethodPost,
			fmt.Sprintf("%s/transaction/process", c.baseURL),
			bytes.NewReader(body),
		)
		if err != nil {
			return backoff.Permanent(fmt.Errorf("create request: %w", err))
		}

		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("X-MerchantId", c.merchantID)
		req.Header.Set("X-Secret", c.secret)

		resp, err := c.httpClient.Do(req)
		if err != nil {
			// Transient: timeout or connection failure, retried once.
			return fmt.Errorf("do request: %w", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			return backoff.Permanent(&CreatePaymentError{StatusCode: resp.StatusCode})
		}

		if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
			return backoff.Permanent(fmt.Errorf("decode response: %w", err))
		}
		return nil
	}

	err = backoff.Retry(op, backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewConstantBackOff(500*time.Millisecond), 1), ctx))
	if err != nil {
		var cpe *CreatePaymentError
		if !errors.As(err, &cpe) {
			err = &CreatePaymentError{Err: err}
		}
		c.logger.Error("Payment creation failed",
			zap.Int64("chat_id", chatID),
			zap.String("order_id", orderID),
			zap.Error(err))
		return nil, err
	}

	if result.Redirect == "" {
		return nil, &CreatePaymentError{Err: fmt.Errorf("gateway returned no redirect URL")}
	}

	c.logger.Info("Payment created",
		zap.Int64("chat_id", chatID),
		zap.String("order_id", orderID),
		zap.String("transaction_id", transactionID))

	return &Payment{
		OrderID:       orderID,
		TransactionID: transactionID,
		RedirectURL:   result.Redirect,
	}, nil
}
