package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"

	"catalog-admin/internal/domain"
	"catalog-admin/internal/store"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
)

// HTTPHandler serves the development catalog API.
type HTTPHandler struct {
	productStore store.ProductStorer
	validate     *validator.Validate
	logger       *log.Logger
}

// NewHTTPHandler creates a new HTTPHandler with dependencies.
func NewHTTPHandler(ps store.ProductStorer, logger *log.Logger) *HTTPHandler {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &HTTPHandler{
		productStore: ps,
		validate:     domain.NewValidator(),
		logger:       logger,
	}
}

// --- Helpers ---

// ErrorResponse defines the structure for JSON error responses.
type ErrorResponse struct {
	Error string `json:"error"`
}

// ProductListResponse is the body of GET /products.
type ProductListResponse struct {
	Count    int              `json:"count"`
	Products []domain.Product `json:"products"`
}

// DeleteResponse is the body of a successful DELETE.
type DeleteResponse struct {
	Message string `json:"message"`
	ID      string `json:"id"`
}

func (h *HTTPHandler) respondWithError(w http.ResponseWriter, code int, message string) {
	h.respondWithJSON(w, code, ErrorResponse{Error: message})
}

func (h *HTTPHandler) respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if payload != nil {
		if err := json.NewEncoder(w).Encode(payload); err != nil {
			h.logger.Printf("ERROR: Failed to encode JSON response: %v", err)
		}
	}
}

func (h *HTTPHandler) respondWithStoreError(w http.ResponseWriter, op, id string, err error) {
	if errors.Is(err, store.ErrProductNotFound) {
		h.logger.Printf("WARN: %s: product %s not found", op, id)
		h.respondWithError(w, http.StatusNotFound, "Product not found")
		return
	}
	h.logger.Printf("ERROR: %s store operation for ID %s failed: %v", op, id, err)
	h.respondWithError(w, http.StatusInternalServerError, "Error: "+err.Error())
}

// validDraft reports whether d may be stored, answering 400 when it may not.
func (h *HTTPHandler) validDraft(w http.ResponseWriter, op string, d domain.ProductDraft) bool {
	err := h.validate.Struct(d)
	if err == nil {
		return true
	}
	h.logger.Printf("WARN: %s: validation error: %v", op, err)
	h.respondWithError(w, http.StatusBadRequest, validationMessage(err))
	return false
}

// validationMessage lists the failing fields, e.g.
// "Invalid data: name is required; stock must be >= 0".
func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return "Invalid data: " + err.Error()
	}
	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		switch fe.Tag() {
		case "required":
			parts = append(parts, fe.Field()+" is required")
		case "gte":
			parts = append(parts, fmt.Sprintf("%s must be >= %s", fe.Field(), fe.Param()))
		case "max":
			parts = append(parts, fmt.Sprintf("%s must be at most %s characters", fe.Field(), fe.Param()))
		default:
			parts = append(parts, fe.Field()+" is invalid")
		}
	}
	return "Invalid data: " + strings.Join(parts, "; ")
}

// --- Product Handlers ---

func (h *HTTPHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.productStore.ListProducts(r.Context())
	if err != nil {
		h.logger.Printf("ERROR: ListProducts store operation failed: %v", err)
		h.respondWithError(w, http.StatusInternalServerError, "Error: "+err.Error())
		return
	}
	if products == nil {
		products = []domain.Product{}
	}
	h.logger.Printf("INFO: Listing %d products", len(products))
	h.respondWithJSON(w, http.StatusOK, ProductListResponse{Count: len(products), Products: products})
}

func (h *HTTPHandler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()
	var input domain.ProductDraft
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		h.respondWithError(w, http.StatusBadRequest, "Invalid JSON format")
		return
	}
	if !h.validDraft(w, "CreateProduct", input) {
		return
	}

	created, err := h.productStore.CreateProduct(r.Context(), input)
	if err != nil {
		h.logger.Printf("ERROR: CreateProduct store operation failed: %v", err)
		h.respondWithError(w, http.StatusInternalServerError, "Error: "+err.Error())
		return
	}
	h.logger.Printf("INFO: Product created: %s - %s", created.ID, created.Name)
	h.respondWithJSON(w, http.StatusCreated, created)
}

func (h *HTTPHandler) GetProductByID(w http.ResponseWriter, r *http.Request) {
	productID := chi.URLParam(r, "productId")

	product, err := h.productStore.GetProductByID(r.Context(), productID)
	if err != nil {
		h.respondWithStoreError(w, "GetProductByID", productID, err)
		return
	}
	h.respondWithJSON(w, http.StatusOK, product)
}

// UpdateProduct applies a partial update: fields absent from the body keep their value.
// The patched product must still be a valid draft.
func (h *HTTPHandler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()
	productID := chi.URLParam(r, "productId")

	var patch store.ProductPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		h.respondWithError(w, http.StatusBadRequest, "Invalid JSON format")
		return
	}

	current, err := h.productStore.GetProductByID(r.Context(), productID)
	if err != nil {
		h.respondWithStoreError(w, "UpdateProduct", productID, err)
		return
	}
	if !h.validDraft(w, "UpdateProduct", patch.Apply(*current).Draft()) {
		return
	}

	updated, err := h.productStore.UpdateProduct(r.Context(), productID, patch)
	if err != nil {
		h.respondWithStoreError(w, "UpdateProduct", productID, err)
		return
	}
	h.logger.Printf("INFO: Product updated: %s", productID)
	h.respondWithJSON(w, http.StatusOK, updated)
}

func (h *HTTPHandler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	productID := chi.URLParam(r, "productId")

	if err := h.productStore.DeleteProduct(r.Context(), productID); err != nil {
		h.respondWithStoreError(w, "DeleteProduct", productID, err)
		return
	}
	h.logger.Printf("INFO: Product deleted: %s", productID)
	h.respondWithJSON(w, http.StatusOK, DeleteResponse{Message: "Product deleted successfully", ID: productID})
}

func (h *HTTPHandler) Health(w http.ResponseWriter, r *http.Request) {
	h.respondWithJSON(w, http.StatusOK, map[string]string{
		"status":  "healthy",
		"service": "Products API",
		"version": "1.0.0",
	})
}

// --- Route Registration ---

// RegisterRoutes sets up the API routes relative to the router it is given;
// mount it under the base path with r.Route.
func (h *HTTPHandler) RegisterRoutes(r chi.Router) {
	r.Get("/health", h.Health)
	r.Route("/products", func(r chi.Router) {
		r.Get("/", h.ListProducts)
		r.Post("/", h.CreateProduct)
		r.Route("/{productId}", func(r chi.Router) {
			r.Get("/", h.GetProductByID)
			r.Put("/", h.UpdateProduct)
			r.Delete("/", h.DeleteProduct)
		})
	})
}
