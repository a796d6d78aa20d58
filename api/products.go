package api

import (
	"fmt"
	"net/http"

	"github.com/Domenick1991/bookshop/internal/domain"
	"github.com/Domenick1991/bookshop/internal/service/product"
	"github.com/gin-gonic/gin"
)

type ProductHandler struct {
	service product.ProductUseCase
}

type productRequest struct {
	Name        string  `json:"name" binding:"required,min=5,max=100"`
	Description string  `json:"description" binding:"omitempty,min=10,max=500"`
	Author      string  `json:"author" binding:"omitempty,min=5,max=50"`
	Price       float64 `json:"price" binding:"gte=0"`
	ImageURL    string  `json:"image_url" binding:"omitempty,url,min=10,max=1000"`
}

type productResponse struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description,omitempty"`
	Author      string  `json:"author,omitempty"`
	Price       float64 `json:"price"`
	ImageURL    string  `json:"image_url,omitempty"`
	BookingID   string  `json:"booking_id,omitempty"`
}

type productListResponse struct {
	Items      []productResponse `json:"items"`
	Page       int               `json:"page"`
	PageSize   int               `json:"page_size"`
	TotalCount int               `json:"total_count"`
}

func NewProductHandler(service product.ProductUseCase) *ProductHandler {
	return &ProductHandler{service: service}
}

func (h *ProductHandler) Register(router *gin.RouterGroup) {
	router.POST("/", h.create)
	router.GET("/", h.list)
	router.GET("/:id", h.get)
	router.PUT("/:id", h.update)
	router.DELETE("/:id", h.delete)
	router.POST("/:id/image", h.uploadImage)
}

func (h *ProductHandler) create(c *gin.Context) {
	var req productRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	created, err := h.service.CreateProduct(c.Request.Context(), product.ProductInput{
		Name:        req.Name,
		Description: req.Description,
		Author:      req.Author,
		Price:       req.Price,
		ImageURL:    req.ImageURL,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toProductResponse(created))
}

func (h *ProductHandler) list(c *gin.Context) {
	var req listRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	items, total, err := h.service.ListProducts(c.Request.Context(), product.ListQuery{
		Name:     req.Name,
		Page:     req.Page,
		PageSize: req.PageSize,
	})
	if err != nil {
		writeError(c, err)
		return
	}

	resp := productListResponse{
		Items:      make([]productResponse, 0, len(items)),
		Page:       req.Page,
		PageSize:   req.PageSize,
		TotalCount: total,
	}
	for i := range items {
		resp.Items = append(resp.Items, toProductResponse(&items[i]))
	}
	c.JSON(http.StatusOK, resp)
}

func (h *ProductHandler) get(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	found, err := h.service.GetProduct(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toProductResponse(found))
}

func (h *ProductHandler) update(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	var req productRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	updated, err := h.service.UpdateProduct(c.Request.Context(), id, product.ProductInput{
		Name:        req.Name,
		Description: req.Description,
		Author:      req.Author,
		Price:       req.Price,
		ImageURL:    req.ImageURL,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toProductResponse(updated))
}

func (h *ProductHandler) delete(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	count, err := h.service.DeleteProduct(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	if count == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": fmt.Sprintf("Product not found by id: '%s'", id)})
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": count})
}

func (h *ProductHandler) uploadImage(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	file, err := c.FormFile("image")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "image file is required"})
		return
	}
	src, err := file.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	defer src.Close()

	updated, err := h.service.SaveImage(c.Request.Context(), id, file.Filename, src)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toProductResponse(updated))
}

func toProductResponse(p *domain.Product) productResponse {
	resp := productResponse{
		ID:          p.ID.String(),
		Name:        p.Name,
		Description: p.Description,
		Author:      p.Author,
		Price:       p.Price,
		ImageURL:    p.ImageURL,
	}
	if p.BookingID != nil {
		resp.BookingID = p.BookingID.String()
	}
	return resp
}
