package storesdk

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/uuid"
)

// Checkout places an order for the given items. The response carries the
// WhatsApp handoff URL the customer completes the purchase through.
//
// An Idempotency-Key header is attached so a retried checkout (flaky
// connection, impatient double-submit) cannot place a second order.
func (c *Client) Checkout(ctx context.Context, req CheckoutRequest) (*CheckoutResponse, error) {
	if len(req.Products) == 0 {
		return nil, newValidationError("cart is empty")
	}
	if strings.TrimSpace(req.CustomerName) == "" ||
		strings.TrimSpace(req.CustomerPhone) == "" ||
		strings.TrimSpace(req.CustomerAddress) == "" {
		return nil, newValidationError("customer name, phone and address are required")
	}
	for _, item := range req.Products {
		if item.Quantity <= 0 {
			return nil, newValidationError(fmt.Sprintf("invalid quantity for product %d", item.ID))
		}
	}

	var resp CheckoutResponse
	err := c.doWithHeaders(ctx, http.MethodPost, "/orders/checkout/", req, &resp, map[string]string{
		"Idempotency-Key": uuid.NewString(),
	})
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

// Orders lists the authenticated user's orders, newest first.
func (c *Client) Orders(ctx context.Context) (Page[Order], error) {
	var page Page[Order]
	err := c.get(ctx, "/orders/", &page)
	return page, err
}

// Order fetches a single order by id.
func (c *Client) Order(ctx context.Context, id int64) (*Order, error) {
	var order Order
	if err := c.get(ctx, fmt.Sprintf("/orders/%d/", id), &order); err != nil {
		return nil, err
	}
	return &order, nil
}
