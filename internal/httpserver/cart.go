package httpserver

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
)

type addCartItemRequest struct {
	ProductID string `form:"productId" json:"productId" binding:"required"`
	Quantity  string `form:"quantity" json:"quantity"`
}

func (h *handlers) getCart(c *gin.Context) {
	summary, err := h.deps.CartSvc.Summary(c.Request.Context(), sessionFrom(c))
	if err != nil {
		h.writeError(c, "get cart", err)
		return
	}
	resp := toCartResponse(summary)
	resp.Error = c.Query("error")
	c.JSON(http.StatusOK, resp)
}

// addCartItem adds a product and redirects to the cart. Missing or
// unparsable quantities count as one.
func (h *handlers) addCartItem(c *gin.Context) {
	var req addCartItemRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "productId is required"})
		return
	}
	qty, err := strconv.Atoi(strings.TrimSpace(req.Quantity))
	if err != nil {
		qty = 1
	}
	if err := h.deps.CartSvc.Add(c.Request.Context(), sessionFrom(c), req.ProductID, qty); err != nil {
		h.writeError(c, "add cart item", err)
		return
	}
	c.Redirect(http.StatusSeeOther, "/cart")
}

func (h *handlers) removeCartItem(c *gin.Context) {
	if err := h.deps.CartSvc.Remove(c.Request.Context(), sessionFrom(c), c.Param("id")); err != nil {
		h.writeError(c, "remove cart item", err)
		return
	}
	c.Redirect(http.StatusSeeOther, "/cart")
}
