package http

import (
	"net/http"

	"grana/internal/core"
	"grana/internal/services"
)

type fixedExpenseRequest struct {
	Description string `json:"description" validate:"required,max=200"`
	Amount      string `json:"amount" validate:"required"`
	DayOfMonth  int    `json:"day_of_month" validate:"required,min=1,max=31"`
	Category    string `json:"category" validate:"required,max=100"`
	Active      *bool  `json:"active,omitempty"`
}

type fixedExpensePatchRequest struct {
	Description *string `json:"description,omitempty" validate:"omitempty,max=200"`
	Amount      *string `json:"amount,omitempty"`
	DayOfMonth  *int    `json:"day_of_month,omitempty" validate:"omitempty,min=1,max=31"`
	Category    *string `json:"category,omitempty" validate:"omitempty,max=100"`
	Active      *bool   `json:"active,omitempty"`
}

type fixedExpenseResponse struct {
	ID          int64  `json:"id"`
	Description string `json:"description"`
	Amount      string `json:"amount"`
	DayOfMonth  int    `json:"day_of_month"`
	Category    string `json:"category"`
	Active      bool   `json:"active"`
}

func toFixedExpenseResponse(fe core.FixedExpense) fixedExpenseResponse {
	return fixedExpenseResponse{
		ID:          fe.ID,
		Description: fe.Description,
		Amount:      fe.Amount.String(),
		DayOfMonth:  fe.DayOfMonth,
		Category:    fe.Category,
		Active:      fe.Active,
	}
}

func (s *Server) handleCreateFixedExpense(w http.ResponseWriter, r *http.Request) {
	var req fixedExpenseRequest
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

	// New fixed expenses are active unless the client says otherwise.
	active := true
	if req.Active != nil {
		active = *req.Active
	}

	fe := core.FixedExpense{
		OwnerID:     ownerIDFromRequest(r),
		Description: sanitizeInput(req.Description),
		Amount:      core.Money{Cents: cents},
		DayOfMonth:  req.DayOfMonth,
		Category:    sanitizeInput(req.Category),
		Active:      active,
	}

	id, err := s.fixedExpenses.Create(r.Context(), fe)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	fe.ID = id
	s.invalidateProjections(fe.OwnerID)
	respondJSON(w, http.StatusCreated, toFixedExpenseResponse(fe))
}

func (s *Server) handleListFixedExpenses(w http.ResponseWriter, r *http.Request) {
	fes, err := s.fixedExpenses.List(r.Context(), ownerIDFromRequest(r))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	resp := make([]fixedExpenseResponse, 0, len(fes))
	for _, fe := range fes {
		resp = append(resp, toFixedExpenseResponse(fe))
	}
	respondJSON(w, http.StatusOK, resp)
}

func (s *Server) handleUpdateFixedExpense(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	var req fixedExpensePatchRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := s.validateStruct(req); err != nil {
		respondError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	patch := services.FixedExpensePatch{
		DayOfMonth: req.DayOfMonth,
		Active:     req.Active,
	}
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
	if req.Category != nil {
		category := sanitizeInput(*req.Category)
		patch.Category = &category
	}

	ownerID := ownerIDFromRequest(r)
	fe, err := s.fixedExpenses.Update(r.Context(), ownerID, id, patch)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	s.invalidateProjections(ownerID)
	respondJSON(w, http.StatusOK, toFixedExpenseResponse(fe))
}

func (s *Server) handleDeleteFixedExpense(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	ownerID := ownerIDFromRequest(r)
	if err := s.fixedExpenses.Delete(r.Context(), ownerID, id); err != nil {
		writeServiceError(w, r, err)
		return
	}
	s.invalidateProjections(ownerID)
	respondJSON(w, http.StatusNoContent, nil)
}
