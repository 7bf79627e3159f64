package handlers

import (
	"net/http"

	"marketplace/internal/middleware"
	"marketplace/internal/models"
	"marketplace/internal/services"

	"github.com/rs/zerolog"
)

type ProductHandler struct {
	productService *services.ProductService
	logger         zerolog.Logger
}

func NewProductHandler(productService *services.ProductService, logger zerolog.Logger) *ProductHandler {
	return &ProductHandler{
		productService: productService,
		logger:         logger,
	}
}

func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	products, err := h.productService.List(r.Context())
	if err != nil {
		respondWithServiceError(w, h.logger, err)
		return
	}
	respondWithJSON(w, http.StatusOK, products)
}

func (h *ProductHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "product")
	if err != nil {
		respondWithServiceError(w, h.logger, err)
		return
	}

	product, err := h.productService.Get(r.Context(), id)
	if err != nil {
		respondWithServiceError(w, h.logger, err)
		return
	}
	respondWithJSON(w, http.StatusOK, product)
}

func (h *ProductHandler) Create(w http.ResponseWriter, r *http.Request) {
	actor, _ := middleware.GetActor(r)

	var in models.ProductInput
	if err := decodeJSON(r, &in); err != nil {
		respondWithServiceError(w, h.logger, err)
		return
	}

	product, err := h.productService.Create(r.Context(), actor, &in)
	if err != nil {
		respondWithServiceError(w, h.logger, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, product)
}

func (h *ProductHandler) Update(w http.ResponseWriter, r *http.Request) {
	actor, _ := middleware.GetActor(r)
	id, err := pathID(r, "product")
	if err != nil {
		respondWithServiceError(w, h.logger, err)
		return
	}

	var in models.ProductInput
	if err := decodeJSON(r, &in); err != nil {
		respondWithServiceError(w, h.logger, err)
		return
	}

	product, err := h.productService.Update(r.Context(), actor, id, &in)
	if err != nil {
		respondWithServiceError(w, h.logger, err)
		return
	}
	respondWithJSON(w, http.StatusOK, product)
}

func (h *ProductHandler) Delete(w http.ResponseWriter, r *http.Request) {
	actor, _ := middleware.GetActor(r)
	id, err := pathID(r, "product")
	if err != nil {
		respondWithServiceError(w, h.logger, err)
		return
	}

	if err := h.productService.Delete(r.Context(), actor, id); err != nil {
		respondWithServiceError(w, h.logger, err)
		return
	}
	respondWithJSON(w, http.StatusOK, MessageResponse{Message: "Product deleted successfully"})
}
