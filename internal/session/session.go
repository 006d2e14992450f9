// Package session keeps the single pending checkout of each browsing session.
package session

import "context"

// PendingOrders maps a session token to the order awaiting payment for it.
// Each token holds at most one order; Set overwrites any previous value.
type PendingOrders interface {
	Get(ctx context.Context, token string) (orderID string, ok bool, err error)
	Set(ctx context.Context, token, orderID string) error
	Delete(ctx context.Context, token string) error
}
