package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Domenick1991/bookshop/internal/domain"
	"github.com/Domenick1991/bookshop/internal/service/product"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type MockProductUseCase struct {
	mock.Mock
}

func (m *MockProductUseCase) CreateProduct(ctx context.Context, input product.ProductInput) (*domain.Product, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Product), args.Error(1)
}

func (m *MockProductUseCase) GetProduct(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Product), args.Error(1)
}

func (m *MockProductUseCase) ListProducts(ctx context.Context, query product.ListQuery) ([]domain.Product, int, error) {
	args := m.Called(ctx, query)
	return args.Get(0).([]domain.Product), args.Int(1), args.Error(2)
}

func (m *MockProductUseCase) UpdateProduct(ctx context.Context, id uuid.UUID, input product.ProductInput) (*domain.Product, error) {
	args := m.Called(ctx, id, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Product), args.Error(1)
}

func (m *MockProductUseCase) DeleteProduct(ctx context.Context, id uuid.UUID) (int64, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockProductUseCase) SaveImage(ctx context.Context, id uuid.UUID, filename string, image io.Reader) (*domain.Product, error) {
	args := m.Called(ctx, id, filename, image)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Product), args.Error(1)
}

func newProductRouter(service product.ProductUseCase) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	NewProductHandler(service).Register(router.Group("/products"))
	return router
}

func TestProductHandler_Create_Success(t *testing.T) {
	mockService := &MockProductUseCase{}
	router := newProductRouter(mockService)

	created := &domain.Product{ID: uuid.New(), Name: "The Three Musketeers", Price: 19.99}

	mockService.On("CreateProduct", mock.Anything, product.ProductInput{
		Name:   "The Three Musketeers",
		Author: "Alexandre Dumas",
		Price:  19.99,
	}).Return(created, nil).Once()

	w := doJSON(t, router, http.MethodPost, "/products/", map[string]interface{}{
		"name":   "The Three Musketeers",
		"author": "Alexandre Dumas",
		"price":  19.99,
	})

	assert.Equal(t, http.StatusCreated, w.Code)

	var resp productResponse
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, created.ID.String(), resp.ID)
	assert.Empty(t, resp.BookingID)

	mockService.AssertExpectations(t)
}

func TestProductHandler_Create_BindingErrors(t *testing.T) {
	mockService := &MockProductUseCase{}
	router := newProductRouter(mockService)

	testCases := []struct {
		name string
		body map[string]interface{}
	}{
		{name: "name too short", body: map[string]interface{}{"name": "abc", "price": 1}},
		{name: "negative price", body: map[string]interface{}{"name": "Valid name", "price": -1}},
		{name: "author too short", body: map[string]interface{}{"name": "Valid name", "price": 1, "author": "Bob"}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			w := doJSON(t, router, http.MethodPost, "/products/", tc.body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
		})
	}

	mockService.AssertNotCalled(t, "CreateProduct")
}

func TestProductHandler_Get_LinkedProduct(t *testing.T) {
	mockService := &MockProductUseCase{}
	router := newProductRouter(mockService)

	productID := uuid.New()
	owner := uuid.New()

	mockService.On("GetProduct", mock.Anything, productID).
		Return(&domain.Product{ID: productID, Name: "The Three Musketeers", BookingID: &owner}, nil).Once()

	w := doJSON(t, router, http.MethodGet, "/products/"+productID.String(), nil)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp productResponse
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, owner.String(), resp.BookingID)
}

func TestProductHandler_Get_NotFound(t *testing.T) {
	mockService := &MockProductUseCase{}
	router := newProductRouter(mockService)

	missing := uuid.New()
	mockService.On("GetProduct", mock.Anything, missing).
		Return(nil, &domain.NotFoundError{Entity: "Product", ID: missing}).Once()

	w := doJSON(t, router, http.MethodGet, "/products/"+missing.String(), nil)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestProductHandler_List_Defaults(t *testing.T) {
	mockService := &MockProductUseCase{}
	router := newProductRouter(mockService)

	products := []domain.Product{{ID: uuid.New(), Name: "Musketeers volume one"}}

	mockService.On("ListProducts", mock.Anything, product.ListQuery{Page: 1, PageSize: 10}).
		Return(products, 1, nil).Once()

	w := doJSON(t, router, http.MethodGet, "/products/", nil)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp productListResponse
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 1, resp.Page)
	assert.Equal(t, 10, resp.PageSize)
	assert.Equal(t, 1, resp.TotalCount)

	mockService.AssertExpectations(t)
}

func TestProductHandler_List_NameFilter(t *testing.T) {
	mockService := &MockProductUseCase{}
	router := newProductRouter(mockService)

	mockService.On("ListProducts", mock.Anything, product.ListQuery{Name: "Musketeers", Page: 3, PageSize: 20}).
		Return([]domain.Product{}, 0, nil).Once()

	w := doJSON(t, router, http.MethodGet, "/products/?name=Musketeers&page=3&page_size=20", nil)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp productListResponse
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Empty(t, resp.Items)
	assert.Equal(t, 0, resp.TotalCount)
}

func TestProductHandler_Delete(t *testing.T) {
	mockService := &MockProductUseCase{}
	router := newProductRouter(mockService)

	productID := uuid.New()
	mockService.On("DeleteProduct", mock.Anything, productID).Return(int64(1), nil).Once()

	w := doJSON(t, router, http.MethodDelete, "/products/"+productID.String(), nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"deleted":1`)
}

func TestProductHandler_Delete_NotFound(t *testing.T) {
	mockService := &MockProductUseCase{}
	router := newProductRouter(mockService)

	missing := uuid.New()
	mockService.On("DeleteProduct", mock.Anything, missing).Return(int64(0), nil).Once()

	w := doJSON(t, router, http.MethodDelete, "/products/"+missing.String(), nil)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), missing.String())
}

func TestProductHandler_UploadImage(t *testing.T) {
	mockService := &MockProductUseCase{}
	router := newProductRouter(mockService)

	productID := uuid.New()
	updated := &domain.Product{ID: productID, ImageURL: "/uploads/" + productID.String() + ".png"}

	mockService.On("SaveImage", mock.Anything, productID, "cover.png", mock.Anything).
		Return(updated, nil).Once()

	var buf bytes.Buffer
	form := multipart.NewWriter(&buf)
	part, err := form.CreateFormFile("image", "cover.png")
	assert.NoError(t, err)
	_, err = part.Write([]byte("png bytes"))
	assert.NoError(t, err)
	assert.NoError(t, form.Close())

	req := httptest.NewRequest(http.MethodPost, "/products/"+productID.String()+"/image", &buf)
	req.Header.Set("Content-Type", form.FormDataContentType())
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp productResponse
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, updated.ImageURL, resp.ImageURL)

	mockService.AssertExpectations(t)
}

func TestProductHandler_UploadImage_MissingFile(t *testing.T) {
	mockService := &MockProductUseCase{}
	router := newProductRouter(mockService)

	w := doJSON(t, router, http.MethodPost, "/products/"+uuid.New().String()+"/image", nil)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	mockService.AssertNotCalled(t, "SaveImage")
}
