package handlers

import (
	"net/http"

	"github.com/senshuken/championship-system/middleware"
	"github.com/senshuken/championship-system/pagination"
	"github.com/senshuken/championship-system/services"
)

type UserHandler struct {
	userService         services.UserService
	championshipService services.ChampionshipService
	answerService       services.AnswerService
}

func NewUserHandler(
	userService services.UserService,
	championshipService services.ChampionshipService,
	answerService services.AnswerService,
) *UserHandler {
	return &UserHandler{
		userService:         userService,
		championshipService: championshipService,
		answerService:       answerService,
	}
}

// GetByID — GET /users/{userID}
func (h *UserHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "userID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	user, err := h.userService.GetByID(r.Context(), id)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, user); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// UpdateMe — PATCH /users/me
func (h *UserHandler) UpdateMe(w http.ResponseWriter, r *http.Request) {
	caller, ok := middleware.UserFromContext(r.Context())
	if !ok {
		unauthorizedResponse(w, r)
		return
	}

	var input services.UpdateProfileInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	user, err := h.userService.UpdateProfile(r.Context(), caller.ID, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, user); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// ListChampionships — GET /users/{userID}/championships?page=&limit=
func (h *UserHandler) ListChampionships(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "userID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	params, err := pagination.Parse(r.URL.Query())
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	result, err := h.championshipService.ListByUser(r.Context(), id, params)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, result); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// ListAnswers — GET /users/{userID}/answers?page=&limit=
func (h *UserHandler) ListAnswers(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "userID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	params, err := pagination.Parse(r.URL.Query())
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	result, err := h.answerService.ListByUser(r.Context(), id, params)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, result); err != nil {
		serverErrorResponse(w, r, err)
	}
}
