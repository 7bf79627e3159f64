package handlers

import (
	"net/http"

	"marketplace/internal/middleware"
	"marketplace/internal/models"
	"marketplace/internal/services"

	"github.com/rs/zerolog"
)

type OrderHandler struct {
	orderService *services.OrderService
	logger       zerolog.Logger
}

func NewOrderHandler(orderService *services.OrderService, logger zerolog.Logger) *OrderHandler {
	return &OrderHandler{
		orderService: orderService,
		logger:       logger,
	}
}

func (h *OrderHandler) List(w http.ResponseWriter, r *http.Request) {
	actor, _ := middleware.GetActor(r)

	orders, err := h.orderService.List(r.Context(), actor)
	if err != nil {
		respondWithServiceError(w, h.logger, err)
		return
	}
	respondWithJSON(w, http.StatusOK, orders)
}

func (h *OrderHandler) Get(w http.ResponseWriter, r *http.Request) {
	actor, _ := middleware.GetActor(r)
	id, err := pathID(r, "order")
	if err != nil {
		respondWithServiceError(w, h.logger, err)
		return
	}

	order, err := h.orderService.Get(r.Context(), actor, id)
	if err != nil {
		respondWithServiceError(w, h.logger, err)
		return
	}
	respondWithJSON(w, http.StatusOK, order)
}

func (h *OrderHandler) Create(w http.ResponseWriter, r *http.Request) {
	actor, _ := middleware.GetActor(r)

	var in models.OrderInput
	if err := decodeJSON(r, &in); err != nil {
		respondWithServiceError(w, h.logger, err)
		return
	}

	order, err := h.orderService.Create(r.Context(), actor, &in)
	if err != nil {
		respondWithServiceError(w, h.logger, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, order)
}

func (h *OrderHandler) Update(w http.ResponseWriter, r *http.Request) {
	actor, _ := middleware.GetActor(r)
	id, err := pathID(r, "order")
	if err != nil {
		respondWithServiceError(w, h.logger, err)
		return
	}

	var in models.OrderInput
	if err := decodeJSON(r, &in); err != nil {
		respondWithServiceError(w, h.logger, err)
		return
	}

	order, err := h.orderService.Update(r.Context(), actor, id, &in)
	if err != nil {
		respondWithServiceError(w, h.logger, err)
		return
	}
	respondWithJSON(w, http.StatusOK, order)
}

func (h *OrderHandler) Delete(w http.ResponseWriter, r *http.Request) {
	actor, _ := middleware.GetActor(r)
	id, err := pathID(r, "order")
	if err != nil {
		respondWithServiceError(w, h.logger, err)
		return
	}

	if err := h.orderService.Delete(r.Context(), actor, id); err != nil {
		respondWithServiceError(w, h.logger, err)
		return
	}
	respondWithJSON(w, http.StatusOK, MessageResponse{Message: "Order deleted successfully"})
}
