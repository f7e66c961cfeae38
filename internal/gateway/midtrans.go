package gateway

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/Freeeeeet/streamer_booking/internal/service"
	"github.com/midtrans/midtrans-go"
	"github.com/midtrans/midtrans-go/coreapi"
	"github.com/midtrans/midtrans-go/snap"
	"go.uber.org/zap"
)

// Midtrans создаёт Snap-транзакции и запрашивает их статус в платёжном шлюзе Midtrans
type Midtrans struct {
	client snap.Client
	core   coreapi.Client
	logger *zap.Logger
}

// NewMidtrans создаёт клиента Snap. env: "production" или "sandbox".
func NewMidtrans(serverKey, env string, logger *zap.Logger) *Midtrans {
	environment := midtrans.Sandbox
	if env == "production" {
		environment = midtrans.Production
	}

	m := &Midtrans{logger: logger}
	m.client.New(serverKey, environment)
	m.core.New(serverKey, environment)

	return m
}

// CreateTransaction регистрирует заказ и возвращает Snap-токен
func (m *Midtrans) CreateTransaction(ctx context.Context, req service.TransactionRequest) (*service.TransactionToken, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	request := &snap.Request{
		TransactionDetails: midtrans.TransactionDetails{
			OrderID:  req.OrderID,
			GrossAmt: req.Amount,
		},
		CustomerDetail: &midtrans.CustomerDetails{
			FName: req.ClientName,
			Email: req.ClientEmail,
		},
		Items: &[]midtrans.ItemDetails{
			{
				ID:    req.OrderID,
				Name:  itemName(req.Description),
				Price: req.Amount,
				Qty:   1,
			},
		},
	}

	resp, snapErr := m.client.CreateTransaction(request)
	if snapErr != nil {
		return nil, fmt.Errorf("midtrans create transaction: %s", snapErr.GetMessage())
	}

	if resp == nil {
		return nil, fmt.Errorf("midtrans create transaction: empty response")
	}

	m.logger.Debug("Midtrans transaction created", zap.String("order_id", req.OrderID))

	return &service.TransactionToken{
		Token:       resp.Token,
		RedirectURL: resp.RedirectURL,
	}, nil
}

// CheckTransaction получает статус заказа через Core API
func (m *Midtrans) CheckTransaction(ctx context.Context, orderID string) (*service.TransactionStatus, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	resp, coreErr := m.core.CheckTransaction(orderID)
	if coreErr != nil {
		return nil, fmt.Errorf("midtrans check transaction %s: %s", orderID, coreErr.GetMessage())
	}
	if resp == nil {
		return nil, fmt.Errorf("midtrans check transaction %s: empty response", orderID)
	}

	amount, err := ParseGrossAmount(resp.GrossAmount)
	if err != nil {
		return nil, fmt.Errorf("midtrans check transaction %s: %w", orderID, err)
	}

	m.logger.Debug("Midtrans transaction status",
		zap.String("order_id", orderID),
		zap.String("transaction_status", resp.TransactionStatus),
	)

	return &service.TransactionStatus{
		OrderID:           resp.OrderID,
		TransactionID:     resp.TransactionID,
		TransactionStatus: resp.TransactionStatus,
		FraudStatus:       resp.FraudStatus,
		GrossAmount:       amount,
	}, nil
}

// ParseGrossAmount разбирает сумму шлюза вида "80000.00" в целые рупии
func ParseGrossAmount(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}

	whole, frac, _ := strings.Cut(s, ".")
	if strings.Trim(frac, "0") != "" {
		return 0, fmt.Errorf("gross amount %q has a fractional part", s)
	}

	amount, err := strconv.ParseInt(whole, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parse gross amount %q: %w", s, err)
	}
	return amount, nil
}

// Midtrans ограничивает название позиции 50 символами
func itemName(description string) string {
	runes := []rune(description)
	if len(runes) > 50 {
		return string(runes[:50])
	}
	if len(runes) == 0 {
		return "Livestream booking"
	}
	return description
}
