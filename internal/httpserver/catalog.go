package httpserver

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (h *handlers) listProducts(c *gin.Context) {
	products, err := h.deps.ProductSvc.List(c.Request.Context(), c.Query("categoryId"))
	if err != nil {
		h.writeError(c, "list products", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"categoryId": c.Query("categoryId"),
		"results":    toProductResponses(products),
	})
}

func (h *handlers) featuredProducts(c *gin.Context) {
	products, err := h.deps.ProductSvc.Featured(c.Request.Context())
	if err != nil {
		h.writeError(c, "featured products", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"results": toProductResponses(products)})
}

func (h *handlers) getProduct(c *gin.Context) {
	p, err := h.deps.ProductSvc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.writeError(c, "get product", err)
		return
	}
	c.JSON(http.StatusOK, toProductResponse(*p))
}

func (h *handlers) listCategories(c *gin.Context) {
	categories, err := h.deps.CategorySvc.List(c.Request.Context())
	if err != nil {
		h.writeError(c, "list categories", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"results": categories})
}
