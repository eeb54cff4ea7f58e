package handlers

import (
	"errors"
	"net/http"

	"github.com/senshuken/championship-system/middleware"
	"github.com/senshuken/championship-system/models"
	"github.com/senshuken/championship-system/pagination"
	"github.com/senshuken/championship-system/repositories"
	"github.com/senshuken/championship-system/services"
)

type ChampionshipHandler struct {
	championshipService services.ChampionshipService
}

func NewChampionshipHandler(championshipService services.ChampionshipService) *ChampionshipHandler {
	return &ChampionshipHandler{championshipService: championshipService}
}

// List — GET /championships?status=&sort=&page=&limit=
func (h *ChampionshipHandler) List(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	params, err := pagination.Parse(query)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	input := services.ListChampionshipsInput{
		Params: params,
		Sort:   repositories.ChampionshipSortNewest,
	}

	if raw := query.Get("status"); raw != "" {
		status := models.ComputedStatus(raw)
		switch status {
		case models.StatusRecruiting, models.StatusSelecting, models.StatusAnnounced:
			input.Status = &status
		default:
			badRequestResponse(w, r, errors.New("status must be one of: recruiting, selecting, announced"))
			return
		}
	}

	if raw := query.Get("sort"); raw != "" {
		sort := repositories.ChampionshipSort(raw)
		switch sort {
		case repositories.ChampionshipSortNewest, repositories.ChampionshipSortPopular:
			input.Sort = sort
		default:
			badRequestResponse(w, r, errors.New("sort must be one of: newest, popular"))
			return
		}
	}

	result, err := h.championshipService.List(r.Context(), input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, result); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// GetByID — GET /championships/{championshipID}
func (h *ChampionshipHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "championshipID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	championship, err := h.championshipService.GetByID(r.Context(), id)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, championship); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// Create — POST /championships
func (h *ChampionshipHandler) Create(w http.ResponseWriter, r *http.Request) {
	caller, ok := middleware.UserFromContext(r.Context())
	if !ok {
		unauthorizedResponse(w, r)
		return
	}

	var input services.CreateChampionshipInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	championship, err := h.championshipService.Create(r.Context(), caller.ID, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, championship); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// ForceEnd — PUT /championships/{championshipID}/force-end
func (h *ChampionshipHandler) ForceEnd(w http.ResponseWriter, r *http.Request) {
	caller, ok := middleware.UserFromContext(r.Context())
	if !ok {
		unauthorizedResponse(w, r)
		return
	}

	id, err := getIDFromURL(r, "championshipID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	championship, err := h.championshipService.ForceEnd(r.Context(), caller.ID, id)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, championship); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// PublishResult — PUT /championships/{championshipID}/publish-result
func (h *ChampionshipHandler) PublishResult(w http.ResponseWriter, r *http.Request) {
	caller, ok := middleware.UserFromContext(r.Context())
	if !ok {
		unauthorizedResponse(w, r)
		return
	}

	id, err := getIDFromURL(r, "championshipID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input services.PublishResultInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	championship, err := h.championshipService.PublishResult(r.Context(), caller.ID, id, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, championship); err != nil {
		serverErrorResponse(w, r, err)
	}
}
