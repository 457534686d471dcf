package pixclient

import (
	"context"
	"net/url"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"thunderbet_pix_back/internal/deposit"
)

const qrServerURL = "https://api.qrserver.com/v1/create-qr-code/"

// PixHTTPClient talks to the PIX acquirer's REST API. It satisfies
// deposit.Gateway.
type PixHTTPClient struct {
	client  *resty.Client
	baseURL string
}

func NewPixHTTPClient(baseURL, apiKey string, timeout time.Duration) *PixHTTPClient {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	client := resty.New().
		SetTimeout(timeout).
		SetHeader("Accept", "application/json").
		SetHeader("Authorization", "Bearer "+apiKey)

	return &PixHTTPClient{
		client:  client,
		baseURL: baseURL,
	}
}

type payerRequest struct {
	Name     string `json:"name,omitempty"`
	Document string `json:"document,omitempty"`
	Email    string `json:"email,omitempty"`
}

type createChargeRequest struct {
	Amount        int64        `json:"amount"` // integer minor units (centavos)
	PaymentMethod string       `json:"payment_method"`
	Payer         payerRequest `json:"payer"`
}

type chargeResponse struct {
	ID        string `json:"id"`
	PixCode   string `json:"pix_code"`
	QRCodeURL string `json:"qr_code_url"`
	Status    string `json:"status"`
}

type errorResponse struct {
	Message string `json:"message"`
}

// CreateCharge registers a new PIX charge for the given amount in centavos.
// The returned pix code may be empty when the acquirer generates it
// asynchronously.
func (c *PixHTTPClient) CreateCharge(ctx context.Context, amountCents int64, payer deposit.Payer) (deposit.Charge, error) {
	body := createChargeRequest{
		Amount:        amountCents,
		PaymentMethod: "pix",
		Payer: payerRequest{
			Name:     payer.Name,
			Document: payer.Document,
			Email:    payer.Email,
		},
	}

	var result chargeResponse
	var apiErr errorResponse
	resp, err := c.client.R().
		SetContext(ctx).
		SetBody(body).
		SetResult(&result).
		SetError(&apiErr).
		Post(c.baseURL + "/v1/charges")
	if err != nil {
		return deposit.Charge{}, errors.Wrap(err, "pix gateway create charge request failed")
	}
	if resp.IsError() {
		logrus.Errorf("pix gateway create charge returned %d: %s", resp.StatusCode(), apiErr.Message)
		return deposit.Charge{}, errors.Errorf("pix gateway create charge returned status %d", resp.StatusCode())
	}
	if result.ID == "" {
		return deposit.Charge{}, errors.New("pix gateway create charge returned no transaction id")
	}

	return deposit.Charge{
		ID:        result.ID,
		PixCode:   result.PixCode,
		QRCodeURL: qrCodeURL(result.QRCodeURL, result.PixCode),
		Status:    result.Status,
	}, nil
}

// GetChargeStatus returns the current payment status of a charge, plus the
// pix code once the acquirer has generated it.
func (c *PixHTTPClient) GetChargeStatus(ctx context.Context, chargeID string) (deposit.ChargeStatus, error) {
	var result chargeResponse
	var apiErr errorResponse
	resp, err := c.client.R().
		SetContext(ctx).
		SetResult(&result).
		SetError(&apiErr).
		Get(c.baseURL + "/v1/charges/" + url.PathEscape(chargeID))
	if err != nil {
		return deposit.ChargeStatus{}, errors.Wrap(err, "pix gateway status request failed")
	}
	if resp.IsError() {
		return deposit.ChargeStatus{}, errors.Errorf("pix gateway status returned status %d", resp.StatusCode())
	}

	return deposit.ChargeStatus{
		Status:    result.Status,
		PixCode:   result.PixCode,
		QRCodeURL: qrCodeURL(result.QRCodeURL, result.PixCode),
	}, nil
}

// qrCodeURL prefers the acquirer's rendered QR image and falls back to a
// generic QR renderer encoding the copy-paste code.
func qrCodeURL(fromGateway, pixCode string) string {
	if fromGateway != "" {
		return fromGateway
	}
	if pixCode == "" {
		return ""
	}
	return qrServerURL + "?size=300x300&data=" + url.QueryEscape(pixCode)
}
