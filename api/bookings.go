package api

import (
	"fmt"
	"net/http"
	"time"

	"github.com/Domenick1991/bookshop/internal/domain"
	"github.com/Domenick1991/bookshop/internal/service/booking"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type BookingHandler struct {
	service booking.BookingUseCase
}

type bookingDraftRequest struct {
	Name            string `json:"name" binding:"required,min=5,max=100"`
	DeliveryAddress string `json:"delivery_address" binding:"required,min=6,max=200"`
	CustomerEmail   string `json:"customer_email" binding:"required,email,min=6,max=128"`
	DeliveryDate    string `json:"delivery_date" binding:"required,datetime=2006-01-02"`
}

type createBookingRequest struct {
	bookingDraftRequest
	Products []productRequest `json:"products" binding:"required,min=1,max=100,dive"`
}

type createBookingWithIDsRequest struct {
	bookingDraftRequest
	Products []uuid.UUID `json:"products" binding:"required,min=1,max=100"`
}

type updateBookingRequest struct {
	bookingDraftRequest
	Products []uuid.UUID `json:"products" binding:"omitempty,max=100"`
}

type updateStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

type bookingResponse struct {
	ID              string            `json:"id"`
	Name            string            `json:"name"`
	DeliveryAddress string            `json:"delivery_address"`
	CustomerEmail   string            `json:"customer_email"`
	DeliveryDate    string            `json:"delivery_date"`
	Status          string            `json:"status"`
	CreatedAt       string            `json:"created_at"`
	Products        []productResponse `json:"products"`
}

type bookingListResponse struct {
	Items      []bookingResponse `json:"items"`
	Page       int               `json:"page"`
	PageSize   int               `json:"page_size"`
	TotalCount int               `json:"total_count"`
}

func NewBookingHandler(service booking.BookingUseCase) *BookingHandler {
	return &BookingHandler{service: service}
}

func (h *BookingHandler) Register(router *gin.RouterGroup) {
	router.POST("/", h.create)
	router.POST("/with-existing-products", h.createWithExistingProducts)
	router.GET("/", h.list)
	router.GET("/:id", h.get)
	router.PUT("/:id", h.update)
	router.PATCH("/:id/status", h.updateStatus)
}

func (h *BookingHandler) create(c *gin.Context) {
	var req createBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	draft, err := toDraft(req.bookingDraftRequest)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	products := make([]booking.NewProductInput, 0, len(req.Products))
	for _, p := range req.Products {
		products = append(products, booking.NewProductInput{
			Name:        p.Name,
			Description: p.Description,
			Author:      p.Author,
			Price:       p.Price,
			ImageURL:    p.ImageURL,
		})
	}

	created, err := h.service.CreateBooking(c.Request.Context(), booking.CreateBookingInput{
		BookingDraft: draft,
		Products:     products,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toBookingResponse(created))
}

func (h *BookingHandler) createWithExistingProducts(c *gin.Context) {
	var req createBookingWithIDsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	draft, err := toDraft(req.bookingDraftRequest)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	created, err := h.service.CreateBookingWithProducts(c.Request.Context(), booking.CreateBookingWithProductsInput{
		BookingDraft: draft,
		ProductIDs:   req.Products,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toBookingResponse(created))
}

func (h *BookingHandler) list(c *gin.Context) {
	var req listRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	items, total, err := h.service.ListBookings(c.Request.Context(), booking.ListQuery{
		Name:     req.Name,
		Page:     req.Page,
		PageSize: req.PageSize,
	})
	if err != nil {
		writeError(c, err)
		return
	}

	resp := bookingListResponse{
		Items:      make([]bookingResponse, 0, len(items)),
		Page:       req.Page,
		PageSize:   req.PageSize,
		TotalCount: total,
	}
	for i := range items {
		resp.Items = append(resp.Items, toBookingResponse(&items[i]))
	}
	c.JSON(http.StatusOK, resp)
}

func (h *BookingHandler) get(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	found, err := h.service.GetBooking(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toBookingResponse(found))
}

func (h *BookingHandler) update(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	var req updateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	draft, err := toDraft(req.bookingDraftRequest)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	updated, err := h.service.UpdateBooking(c.Request.Context(), id, booking.UpdateBookingInput{
		BookingDraft: draft,
		ProductIDs:   req.Products,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toBookingResponse(updated))
}

func (h *BookingHandler) updateStatus(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	var req updateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	status, ok := domain.ParseBookingStatus(req.Status)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("unknown booking status '%s'", req.Status)})
		return
	}

	updated, err := h.service.UpdateBookingStatus(c.Request.Context(), id, status)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toBookingResponse(updated))
}

func toDraft(req bookingDraftRequest) (booking.BookingDraft, error) {
	deliveryDate, err := time.Parse("2006-01-02", req.DeliveryDate)
	if err != nil {
		return booking.BookingDraft{}, err
	}
	return booking.BookingDraft{
		Name:            req.Name,
		DeliveryAddress: req.DeliveryAddress,
		CustomerEmail:   req.CustomerEmail,
		DeliveryDate:    deliveryDate,
	}, nil
}

func toBookingResponse(b *domain.Booking) bookingResponse {
	resp := bookingResponse{
		ID:              b.ID.String(),
		Name:            b.Name,
		DeliveryAddress: b.DeliveryAddress,
		CustomerEmail:   b.CustomerEmail,
		DeliveryDate:    b.DeliveryDate.Format("2006-01-02"),
		Status:          string(b.Status),
		CreatedAt:       b.CreatedAt.Format(time.RFC3339),
		Products:        make([]productResponse, 0, len(b.Products)),
	}
	for i := range b.Products {
		resp.Products = append(resp.Products, toProductResponse(&b.Products[i]))
	}
	return resp
}
