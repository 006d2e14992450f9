package httpserver

import (
	"crypto/subtle"
	"net/http"
	"path/filepath"
	"strings"

	productsvc "eshop/internal/service/product"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

const (
	adminKeyHeader = "X-API-KEY"
	maxUploadBytes = 10 << 20
)

var allowedImageExt = map[string]bool{".png": true, ".jpg": true, ".jpeg": true, ".webp": true, ".gif": true}

// adminGuard requires the X-API-KEY header to match key. With no key
// configured the admin routes are closed.
func adminGuard(key string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if key == "" {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "admin api disabled"})
			return
		}
		got := c.GetHeader(adminKeyHeader)
		if subtle.ConstantTimeCompare([]byte(got), []byte(key)) != 1 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid api key"})
			return
		}
		c.Next()
	}
}

type productRequest struct {
	Name        string          `json:"name" form:"name"`
	Description string          `json:"description" form:"description"`
	Price       decimal.Decimal `json:"price"`
	CategoryID  string          `json:"categoryId" form:"categoryId"`
}

func (r productRequest) input() productsvc.Input {
	return productsvc.Input{Name: r.Name, Description: r.Description, Price: r.Price, CategoryID: r.CategoryID}
}

func (h *handlers) adminListProducts(c *gin.Context) {
	products, err := h.deps.ProductSvc.List(c.Request.Context(), "")
	if err != nil {
		h.writeError(c, "admin list products", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"results": toProductResponses(products)})
}

func (h *handlers) adminCreateProduct(c *gin.Context) {
	var req productRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid product body"})
		return
	}
	p, err := h.deps.ProductSvc.Create(c.Request.Context(), req.input())
	if err != nil {
		h.writeError(c, "admin create product", err)
		return
	}
	c.JSON(http.StatusCreated, toProductResponse(*p))
}

func (h *handlers) adminUpdateProduct(c *gin.Context) {
	var req productRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid product body"})
		return
	}
	p, err := h.deps.ProductSvc.Update(c.Request.Context(), c.Param("id"), req.input())
	if err != nil {
		h.writeError(c, "admin update product", err)
		return
	}
	c.JSON(http.StatusOK, toProductResponse(*p))
}

// adminUploadImage stores the multipart "file" field, runs it through the
// image processor and points the product at the result.
func (h *handlers) adminUploadImage(c *gin.Context) {
	if h.deps.Images == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "image uploads disabled"})
		return
	}
	ctx := c.Request.Context()
	id := c.Param("id")
	if _, err := h.deps.ProductSvc.Get(ctx, id); err != nil {
		h.writeError(c, "admin upload image", err)
		return
	}

	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxUploadBytes)
	fh, err := c.FormFile("file")
	if err != nil || fh.Size == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Please select an image to upload."})
		return
	}
	if !allowedImageExt[strings.ToLower(filepath.Ext(fh.Filename))] {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unsupported image type"})
		return
	}
	f, err := fh.Open()
	if err != nil {
		h.writeError(c, "admin upload image", err)
		return
	}
	defer f.Close()

	original, err := h.deps.Images.SaveOriginal(id, fh.Filename, f)
	if err != nil {
		h.writeError(c, "admin save image", err)
		return
	}
	imageURL, err := h.deps.Images.ProcessProductImage(ctx, original, id)
	if err != nil {
		h.writeError(c, "admin process image", err)
		return
	}
	if err := h.deps.ProductSvc.SetImage(ctx, id, imageURL); err != nil {
		h.writeError(c, "admin set image", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": id, "imageUrl": imageURL})
}

func (h *handlers) adminApplyImages(c *gin.Context) {
	if h.deps.Images == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "image uploads disabled"})
		return
	}
	files, err := h.deps.Images.ListFiles()
	if err != nil {
		h.writeError(c, "admin list images", err)
		return
	}
	n, err := h.deps.ProductSvc.ApplyImages(c.Request.Context(), files, h.deps.ImageRules)
	if err != nil {
		h.writeError(c, "admin apply images", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"applied": n})
}
