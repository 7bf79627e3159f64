package handlers

import (
	"net/http"

	"marketplace/internal/middleware"
	"marketplace/internal/models"
	"marketplace/internal/services"

	"github.com/rs/zerolog"
)

type TransactionHandler struct {
	transactionService *services.TransactionService
	logger             zerolog.Logger
}

func NewTransactionHandler(transactionService *services.TransactionService, logger zerolog.Logger) *TransactionHandler {
	return &TransactionHandler{
		transactionService: transactionService,
		logger:             logger,
	}
}

func (h *TransactionHandler) List(w http.ResponseWriter, r *http.Request) {
	actor, _ := middleware.GetActor(r)

	transactions, err := h.transactionService.List(r.Context(), actor)
	if err != nil {
		respondWithServiceError(w, h.logger, err)
		return
	}
	respondWithJSON(w, http.StatusOK, transactions)
}

func (h *TransactionHandler) Get(w http.ResponseWriter, r *http.Request) {
	actor, _ := middleware.GetActor(r)
	id, err := pathID(r, "transaction")
	if err != nil {
		respondWithServiceError(w, h.logger, err)
		return
	}

	transaction, err := h.transactionService.Get(r.Context(), actor, id)
	if err != nil {
		respondWithServiceError(w, h.logger, err)
		return
	}
	respondWithJSON(w, http.StatusOK, transaction)
}

func (h *TransactionHandler) Create(w http.ResponseWriter, r *http.Request) {
	actor, _ := middleware.GetActor(r)

	var req models.TransactionRequest
	if err := decodeJSON(r, &req); err != nil {
		respondWithServiceError(w, h.logger, err)
		return
	}

	transaction, err := h.transactionService.Create(r.Context(), actor, &req)
	if err != nil {
		respondWithServiceError(w, h.logger, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, transaction)
}

func (h *TransactionHandler) Delete(w http.ResponseWriter, r *http.Request) {
	actor, _ := middleware.GetActor(r)
	id, err := pathID(r, "transaction")
	if err != nil {
		respondWithServiceError(w, h.logger, err)
		return
	}

	if err := h.transactionService.Delete(r.Context(), actor, id); err != nil {
		respondWithServiceError(w, h.logger, err)
		return
	}
	respondWithJSON(w, http.StatusOK, MessageResponse{Message: "Transaction deleted successfully"})
}
