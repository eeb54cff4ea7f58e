package handlers

import (
	"net/http"

	"github.com/senshuken/championship-system/middleware"
	"github.com/senshuken/championship-system/pagination"
	"github.com/senshuken/championship-system/services"
)

type InteractionHandler struct {
	interactionService services.InteractionService
}

func NewInteractionHandler(interactionService services.InteractionService) *InteractionHandler {
	return &InteractionHandler{interactionService: interactionService}
}

// Like — POST /answers/{answerID}/like
func (h *InteractionHandler) Like(w http.ResponseWriter, r *http.Request) {
	caller, ok := middleware.UserFromContext(r.Context())
	if !ok {
		unauthorizedResponse(w, r)
		return
	}

	answerID, err := getIDFromURL(r, "answerID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	like, err := h.interactionService.LikeAnswer(r.Context(), caller.ID, answerID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, like); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// ListComments — GET /answers/{answerID}/comments?page=&limit=
func (h *InteractionHandler) ListComments(w http.ResponseWriter, r *http.Request) {
	answerID, err := getIDFromURL(r, "answerID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	params, err := pagination.Parse(r.URL.Query())
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	result, err := h.interactionService.ListComments(r.Context(), answerID, params)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, result); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// CreateComment — POST /answers/{answerID}/comments
func (h *InteractionHandler) CreateComment(w http.ResponseWriter, r *http.Request) {
	caller, ok := middleware.UserFromContext(r.Context())
	if !ok {
		unauthorizedResponse(w, r)
		return
	}

	answerID, err := getIDFromURL(r, "answerID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input services.CreateCommentInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	comment, err := h.interactionService.CreateComment(r.Context(), caller, answerID, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, comment); err != nil {
		serverErrorResponse(w, r, err)
	}
}
