package http

import (
	"net/http"

	"grana/internal/core"
	"grana/internal/services"
)

type installmentsPayload struct {
	Current int `json:"current" validate:"required,min=1"`
	Total   int `json:"total" validate:"required,min=1"`
}

type transactionRequest struct {
	Description  string               `json:"description" validate:"required,max=200"`
	Amount       string               `json:"amount" validate:"required"`
	Kind         string               `json:"kind" validate:"required,oneof=income expense"`
	Date         string               `json:"date" validate:"required"`
	Category     string               `json:"category" validate:"required,max=100"`
	Installments *installmentsPayload `json:"installments,omitempty"`
}

// transactionPatchRequest carries partial updates. Absent fields keep the
// stored value; clear_installments removes an existing plan.
type transactionPatchRequest struct {
	Description       *string              `json:"description,omitempty" validate:"omitempty,max=200"`
	Amount            *string              `json:"amount,omitempty"`
	Kind              *string              `json:"kind,omitempty" validate:"omitempty,oneof=income expense"`
	Date              *string              `json:"date,omitempty"`
	Category          *string              `json:"category,omitempty" validate:"omitempty,max=100"`
	Installments      *installmentsPayload `json:"installments,omitempty"`
	ClearInstallments bool                 `json:"clear_installments,omitempty"`
}

type transactionResponse struct {
	ID           int64                `json:"id"`
	Description  string               `json:"description"`
	Amount       string               `json:"amount"`
	Kind         string               `json:"kind"`
	Date         string               `json:"date"`
	Category     string               `json:"category"`
	Installments *installmentsPayload `json:"installments,omitempty"`
}

func toTransactionResponse(tx core.Transaction) transactionResponse {
	resp := transactionResponse{
		ID:          tx.ID,
		Description: tx.Description,
		Amount:      tx.Amount.String(),
		Kind:        string(tx.Kind),
		Date:        tx.Date.String(),
		Category:    tx.Category,
	}
	if tx.Installments != nil {
		resp.Installments = &installmentsPayload{
			Current: tx.Installments.Current,
			Total:   tx.Installments.Total,
		}
	}
	return resp
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	var req transactionRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := s.validateStruct(req); err != nil {
		respondError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	cents, err := core.ParseDecimalToCents(req.Amount)
	if err != nil {
		respondError(w, http.StatusUnprocessableEntity, "invalid amount")
		return
	}
	date, err := core.ParseDate(req.Date)
	if err != nil {
		respondError(w, http.StatusUnprocessableEntity, "invalid date, expected YYYY-MM-DD")
		return
	}

	tx := core.Transaction{
		OwnerID:     ownerIDFromRequest(r),
		Description: sanitizeInput(req.Description),
		Amount:      core.Money{Cents: cents},
		Kind:        core.TransactionKind(req.Kind),
		Date:        date,
		Category:    sanitizeInput(req.Category),
	}
	if req.Installments != nil {
		tx.Installments = &core.Installments{
			Current: req.Installments.Current,
			Total:   req.Installments.Total,
		}
	}

	id, err := s.transactions.Create(r.Context(), tx)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	tx.ID = id
	s.invalidateProjections(tx.OwnerID)
	respondJSON(w, http.StatusCreated, toTransactionResponse(tx))
}

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	txs, err := s.transactions.List(r.Context(), ownerIDFromRequest(r))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	resp := make([]transactionResponse, 0, len(txs))
	for _, tx := range txs {
		resp = append(resp, toTransactionResponse(tx))
	}
	respondJSON(w, http.StatusOK, resp)
}

func (s *Server) handleGetTransaction(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	tx, err := s.transactions.Get(r.Context(), ownerIDFromRequest(r), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, toTransactionResponse(tx))
}

func (s *Server) handleUpdateTransaction(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	var req transactionPatchRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := s.validateStruct(req); err != nil {
		respondError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	patch := services.TransactionPatch{ClearInstallments: req.ClearInstallments}
	if req.Description != nil {
		desc := sanitizeInput(*req.Description)
		patch.Description = &desc
	}
	if req.Amount != nil {
		cents, err := core.ParseDecimalToCents(*req.Amount)
		if err != nil {
			respondError(w, http.StatusUnprocessableEntity, "invalid amount")
			return
		}
		patch.Amount = &core.Money{Cents: cents}
	}
	if req.Kind != nil {
		kind := core.TransactionKind(*req.Kind)
		patch.Kind = &kind
	}
	if req.Date != nil {
		date, err := core.ParseDate(*req.Date)
		if err != nil {
			respondError(w, http.StatusUnprocessableEntity, "invalid date, expected YYYY-MM-DD")
			return
		}
		patch.Date = &date
	}
	if req.Category != nil {
		category := sanitizeInput(*req.Category)
		patch.Category = &category
	}
	if req.Installments != nil {
		patch.Installments = &core.Installments{
			Current: req.Installments.Current,
			Total:   req.Installments.Total,
		}
	}

	ownerID := ownerIDFromRequest(r)
	tx, err := s.transactions.Update(r.Context(), ownerID, id, patch)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	s.invalidateProjections(ownerID)
	respondJSON(w, http.StatusOK, toTransactionResponse(tx))
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	ownerID := ownerIDFromRequest(r)
	if err := s.transactions.Delete(r.Context(), ownerID, id); err != nil {
		writeServiceError(w, r, err)
		return
	}
	s.invalidateProjections(ownerID)
	respondJSON(w, http.StatusNoContent, nil)
}
