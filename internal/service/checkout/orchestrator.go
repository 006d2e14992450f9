package checkout

import (
	"context"
	"errors"
	"io"
	"log"
	"net/url"
	"strings"
	"time"

	"eshop/internal/domain"
	"eshop/internal/events"
	"eshop/internal/notify"
	"eshop/internal/session"
)

// State is a step of the checkout flow.
type State string

const (
	StateInitiated       State = "initiated"
	StateOrderCreated    State = "order_created"
	StateAwaitingPayment State = "awaiting_payment"
	StatePaid            State = "paid"
	StateCancelled       State = "cancelled"
	StateDirectComplete  State = "direct_complete"
)

const (
	SuccessPath = "/orders/payment-success"
	CancelPath  = "/orders/payment-cancelled"
	// sessionTokenPlaceholder is substituted by the payment provider.
	sessionTokenPlaceholder = "{CHECKOUT_SESSION_ID}"
)

type orderService interface {
	CreateFromCart(ctx context.Context, sessionID, customerName, customerEmail string) (*domain.Order, error)
	Get(ctx context.Context, id string) (*domain.Order, error)
	SetStatus(ctx context.Context, id string, status domain.OrderStatus) error
}

type cartService interface {
	Clear(ctx context.Context, sessionID string) error
}

// Deps are the collaborators of the Orchestrator. Pending, Notifier and Events
// may be nil; Pending then falls back to an in-memory store with a one hour TTL.
type Deps struct {
	Orders   orderService
	Carts    cartService
	Pending  session.PendingOrders
	Mode     PaymentMode
	Notifier notify.Sender
	Events   events.Publisher
	Logger   *log.Logger
}

// Orchestrator ties order creation to the optional hosted payment step.
type Orchestrator struct {
	orders   orderService
	carts    cartService
	pending  session.PendingOrders
	mode     PaymentMode
	notifier notify.Sender
	events   events.Publisher
	logger   *log.Logger
	now      func() time.Time
}

func New(deps Deps) *Orchestrator {
	o := &Orchestrator{
		orders:   deps.Orders,
		carts:    deps.Carts,
		pending:  deps.Pending,
		mode:     deps.Mode,
		notifier: deps.Notifier,
		events:   deps.Events,
		logger:   deps.Logger,
		now:      time.Now,
	}
	if o.logger == nil {
		o.logger = log.New(io.Discard, "", 0)
	}
	if o.pending == nil {
		o.pending = session.NewMemory(time.Hour)
	}
	if o.mode == nil {
		o.mode = NoGateway{}
	}
	if o.notifier == nil {
		o.notifier = notify.NewDisabled(o.logger)
	}
	if o.events == nil {
		o.events = events.Noop{}
	}
	return o
}

// Input is a validated checkout submission.
type Input struct {
	SessionID string
	Customer  domain.Customer
	// RequestBaseURL is used for callbacks when the hosted gateway has no BaseURL.
	RequestBaseURL string
}

// Outcome reports where the checkout ended up.
type Outcome struct {
	State       State
	OrderID     string
	Order       *domain.Order
	RedirectURL string
}

// Finalized reports whether the order needs no further payment step.
func (o Outcome) Finalized() bool {
	return o.State == StateDirectComplete || o.State == StatePaid
}

// GatewayEnabled reports whether checkouts go through a hosted payment page.
func (o *Orchestrator) GatewayEnabled() bool {
	_, ok := o.mode.(HostedGateway)
	return ok
}

// Checkout creates the order from the session cart and either hands it to the
// hosted payment page or completes it directly. domain.ErrEmptyCart is the only
// expected failure; once the order exists, later integration failures never
// undo it.
func (o *Orchestrator) Checkout(ctx context.Context, in Input) (Outcome, error) {
	order, err := o.orders.CreateFromCart(ctx, in.SessionID, in.Customer.Name, in.Customer.Email)
	if err != nil {
		return Outcome{State: StateInitiated}, err
	}
	o.logger.Printf("checkout: order created session_id=%s order_id=%s mode=%s", in.SessionID, order.ID, ModeName(o.mode))

	switch m := o.mode.(type) {
	case HostedGateway:
		outcome, err := o.startHostedPayment(ctx, in, order, m)
		if err == nil {
			return outcome, nil
		}
		o.logger.Printf("checkout: hosted payment unavailable order_id=%s error=%v, completing directly", order.ID, err)
		return o.completeDirect(ctx, in.SessionID, order), nil
	case NoGateway:
		return o.completeDirect(ctx, in.SessionID, order), nil
	default:
		return o.completeDirect(ctx, in.SessionID, order), nil
	}
}

func (o *Orchestrator) startHostedPayment(ctx context.Context, in Input, order *domain.Order, m HostedGateway) (Outcome, error) {
	if m.Gateway == nil {
		return Outcome{}, errors.New("hosted gateway not set")
	}
	base := strings.TrimRight(m.BaseURL, "/")
	if base == "" {
		base = strings.TrimRight(in.RequestBaseURL, "/")
	}
	successURL := base + SuccessPath + "?session_id=" + sessionTokenPlaceholder
	cancelURL := base + CancelPath + "?orderId=" + url.QueryEscape(order.ID)

	redirect, err := m.Gateway.CreateCheckoutSession(ctx, *order, successURL, cancelURL)
	if err != nil {
		return Outcome{}, err
	}
	if err := o.pending.Set(ctx, in.SessionID, order.ID); err != nil {
		return Outcome{}, err
	}
	o.markStatus(ctx, order, domain.OrderStatusAwaitingPayment)
	o.logger.Printf("checkout: awaiting payment session_id=%s order_id=%s", in.SessionID, order.ID)
	return Outcome{State: StateAwaitingPayment, OrderID: order.ID, Order: order, RedirectURL: redirect}, nil
}

func (o *Orchestrator) completeDirect(ctx context.Context, sessionID string, order *domain.Order) Outcome {
	if err := o.carts.Clear(ctx, sessionID); err != nil {
		o.logFailure("clear cart", order.ID, err)
	}
	o.markStatus(ctx, order, domain.OrderStatusCompleted)
	o.finalize(ctx, order)
	return Outcome{State: StateDirectComplete, OrderID: order.ID, Order: order}
}

// PaymentSucceeded finalizes the pending order of the session. found is false
// when the session has no pending order, e.g. for a replayed callback; nothing
// is changed in that case.
func (o *Orchestrator) PaymentSucceeded(ctx context.Context, sessionID, gatewayToken string) (outcome Outcome, found bool, err error) {
	orderID, ok, err := o.pending.Get(ctx, sessionID)
	if err != nil {
		return Outcome{}, false, err
	}
	if !ok {
		o.logger.Printf("checkout: payment success without pending order session_id=%s token=%s", sessionID, gatewayToken)
		return Outcome{}, false, nil
	}

	if err := o.carts.Clear(ctx, sessionID); err != nil {
		o.logFailure("clear cart", orderID, err)
	}
	if err := o.pending.Delete(ctx, sessionID); err != nil {
		o.logFailure("delete pending order", orderID, err)
	}
	o.logger.Printf("checkout: payment succeeded session_id=%s order_id=%s token=%s", sessionID, orderID, gatewayToken)

	order, err := o.orders.Get(ctx, orderID)
	if err != nil {
		o.logFailure("load paid order", orderID, err)
		if err := o.orders.SetStatus(ctx, orderID, domain.OrderStatusPaid); err != nil {
			o.logFailure("mark paid", orderID, err)
		}
		return Outcome{State: StatePaid, OrderID: orderID}, true, nil
	}
	o.markStatus(ctx, order, domain.OrderStatusPaid)
	o.finalize(ctx, order)
	return Outcome{State: StatePaid, OrderID: orderID, Order: order}, true, nil
}

// PaymentCancelled drops the session's pending reference. The order row is
// kept and marked cancelled when it is the session's pending order.
func (o *Orchestrator) PaymentCancelled(ctx context.Context, sessionID, orderID string) (Outcome, error) {
	pendingID, ok, err := o.pending.Get(ctx, sessionID)
	if err != nil {
		o.logFailure("read pending order", orderID, err)
	}
	if err := o.pending.Delete(ctx, sessionID); err != nil {
		return Outcome{}, err
	}
	if ok && pendingID != "" && pendingID == orderID {
		if err := o.orders.SetStatus(ctx, orderID, domain.OrderStatusCancelled); err != nil {
			o.logFailure("mark cancelled", orderID, err)
		}
	}
	o.logger.Printf("checkout: payment cancelled session_id=%s order_id=%s", sessionID, orderID)
	return Outcome{State: StateCancelled, OrderID: orderID}, nil
}

func (o *Orchestrator) markStatus(ctx context.Context, order *domain.Order, status domain.OrderStatus) {
	if err := o.orders.SetStatus(ctx, order.ID, status); err != nil {
		o.logFailure("mark "+string(status), order.ID, err)
		return
	}
	order.Status = status
}

// finalize sends the receipt and the order event. Neither may fail the checkout.
func (o *Orchestrator) finalize(ctx context.Context, order *domain.Order) {
	if err := o.notifier.SendOrderConfirmation(ctx, *order); err != nil {
		o.logFailure("send receipt", order.ID, err)
	}
	if err := o.events.OrderFinalized(ctx, events.NewOrderEvent(*order, o.now())); err != nil {
		o.logFailure("publish order event", order.ID, err)
	}
}

func (o *Orchestrator) logFailure(op, orderID string, err error) {
	o.logger.Printf("checkout: %s failed order_id=%s error=%v", op, orderID, err)
}
