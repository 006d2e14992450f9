package httpserver

import (
	"errors"
	"net/http"
	"net/url"
	"strings"

	"eshop/internal/domain"
	"eshop/internal/service/checkout"
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

const paymentCancelledMessage = "Payment was cancelled. Your order has not been processed."

type checkoutRequest struct {
	CustomerName  string `form:"customerName" json:"customerName" binding:"required,max=100"`
	CustomerEmail string `form:"customerEmail" json:"customerEmail" binding:"required,email,max=254"`
}

type createOrderRequest struct {
	SessionID     string `json:"sessionId" binding:"required"`
	CustomerName  string `json:"customerName" binding:"required,max=100"`
	CustomerEmail string `json:"customerEmail" binding:"required,email,max=254"`
}

func (h *handlers) checkoutForm(c *gin.Context) {
	summary, err := h.deps.CartSvc.Summary(c.Request.Context(), sessionFrom(c))
	if err != nil {
		h.writeError(c, "checkout form", err)
		return
	}
	c.JSON(http.StatusOK, checkoutFormResponse{
		Fields:         []string{"customerName", "customerEmail"},
		GatewayEnabled: h.deps.CheckoutSvc.GatewayEnabled(),
		PublishableKey: h.deps.StripePublishableKey,
		Cart:           toCartResponse(summary),
	})
}

func (h *handlers) submitCheckout(c *gin.Context) {
	var req checkoutRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "invalid checkout details", "fields": fieldErrors(err)})
		return
	}

	out, err := h.deps.CheckoutSvc.Checkout(c.Request.Context(), checkout.Input{
		SessionID:      sessionFrom(c),
		Customer:       domain.Customer{Name: strings.TrimSpace(req.CustomerName), Email: strings.TrimSpace(req.CustomerEmail)},
		RequestBaseURL: requestBaseURL(c),
	})
	if err != nil {
		if errors.Is(err, domain.ErrEmptyCart) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Your cart is empty."})
			return
		}
		h.writeError(c, "checkout", err)
		return
	}

	if out.State == checkout.StateAwaitingPayment {
		c.Redirect(http.StatusSeeOther, out.RedirectURL)
		return
	}
	c.Redirect(http.StatusSeeOther, "/orders/"+out.OrderID)
}

func (h *handlers) paymentSuccess(c *gin.Context) {
	out, found, err := h.deps.CheckoutSvc.PaymentSucceeded(c.Request.Context(), sessionFrom(c), c.Query("session_id"))
	if err != nil {
		h.logger.Printf("http: payment success error=%v", err)
		c.Redirect(http.StatusSeeOther, "/")
		return
	}
	if !found {
		c.Redirect(http.StatusSeeOther, "/")
		return
	}
	c.Redirect(http.StatusSeeOther, "/orders/"+out.OrderID)
}

func (h *handlers) paymentCancelled(c *gin.Context) {
	if _, err := h.deps.CheckoutSvc.PaymentCancelled(c.Request.Context(), sessionFrom(c), c.Query("orderId")); err != nil {
		h.logger.Printf("http: payment cancelled error=%v", err)
	}
	c.Redirect(http.StatusSeeOther, "/cart?error="+url.QueryEscape(paymentCancelledMessage))
}

func (h *handlers) getOrder(c *gin.Context) {
	order, err := h.deps.OrderSvc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.writeError(c, "get order", err)
		return
	}
	c.JSON(http.StatusOK, toOrderResponse(*order))
}

// createOrder builds an order for an explicit session id without payment or
// notification side effects.
func (h *handlers) createOrder(c *gin.Context) {
	var req createOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid order request", "fields": fieldErrors(err)})
		return
	}
	order, err := h.deps.OrderSvc.CreateFromCart(c.Request.Context(), strings.TrimSpace(req.SessionID),
		strings.TrimSpace(req.CustomerName), strings.TrimSpace(req.CustomerEmail))
	if err != nil {
		h.writeError(c, "create order", err)
		return
	}
	c.JSON(http.StatusOK, toOrderResponse(*order))
}

func requestBaseURL(c *gin.Context) string {
	scheme := "http"
	if c.Request.TLS != nil {
		scheme = "https"
	}
	if proto := c.GetHeader("X-Forwarded-Proto"); proto != "" {
		scheme = strings.TrimSpace(strings.Split(proto, ",")[0])
	}
	return scheme + "://" + c.Request.Host
}

// fieldErrors lists the request fields that failed validation.
func fieldErrors(err error) map[string]string {
	out := map[string]string{}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		for _, fe := range verrs {
			out[lowerFirst(fe.Field())] = fe.Tag()
		}
		return out
	}
	out["body"] = "malformed"
	return out
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToLower(s[:1]) + s[1:]
}
