package http

import (
	"net/http"

	"grana/internal/core"
	"grana/internal/services"
)

type categoryRequest struct {
	Name  string `json:"name" validate:"required,max=100"`
	Color string `json:"color" validate:"omitempty,hexcolor"`
}

type categoryPatchRequest struct {
	Name  *string `json:"name,omitempty" validate:"omitempty,max=100"`
	Color *string `json:"color,omitempty" validate:"omitempty,hexcolor"`
}

type categoryResponse struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color"`
}

func toCategoryResponse(c core.Category) categoryResponse {
	return categoryResponse{ID: c.ID, Name: c.Name, Color: c.Color}
}

func (s *Server) handleCreateCategory(w http.ResponseWriter, r *http.Request) {
	var req categoryRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := s.validateStruct(req); err != nil {
		respondError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	c := core.Category{
		OwnerID: ownerIDFromRequest(r),
		Name:    sanitizeInput(req.Name),
		Color:   req.Color,
	}
	id, err := s.categories.Create(r.Context(), c)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	c.ID = id
	s.invalidateProjections(c.OwnerID)
	respondJSON(w, http.StatusCreated, toCategoryResponse(c))
}

func (s *Server) handleListCategories(w http.ResponseWriter, r *http.Request) {
	cats, err := s.categories.List(r.Context(), ownerIDFromRequest(r))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	resp := make([]categoryResponse, 0, len(cats))
	for _, c := range cats {
		resp = append(resp, toCategoryResponse(c))
	}
	respondJSON(w, http.StatusOK, resp)
}

func (s *Server) handleUpdateCategory(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	var req categoryPatchRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := s.validateStruct(req); err != nil {
		respondError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	patch := services.CategoryPatch{Color: req.Color}
	if req.Name != nil {
		name := sanitizeInput(*req.Name)
		patch.Name = &name
	}

	ownerID := ownerIDFromRequest(r)
	c, err := s.categories.Update(r.Context(), ownerID, id, patch)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	s.invalidateProjections(ownerID)
	respondJSON(w, http.StatusOK, toCategoryResponse(c))
}

func (s *Server) handleDeleteCategory(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	ownerID := ownerIDFromRequest(r)
	if err := s.categories.Delete(r.Context(), ownerID, id); err != nil {
		writeServiceError(w, r, err)
		return
	}
	s.invalidateProjections(ownerID)
	respondJSON(w, http.StatusNoContent, nil)
}
