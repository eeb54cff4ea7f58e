package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/senshuken/championship-system/pagination"
	"github.com/senshuken/championship-system/services"
)

// errorBody — единый конверт ошибки: {"error":{code,message,details?}}.
type errorBody struct {
	Code    string              `json:"code"`
	Message string              `json:"message"`
	Details map[string][]string `json:"details,omitempty"`
}

func readJSON(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	maxBytes := 1_048_576 // 1MB
	r.Body = http.MaxBytesReader(w, r.Body, int64(maxBytes))

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	err := dec.Decode(dst)
	if err != nil {
		var syntaxError *json.SyntaxError
		var unmarshalTypeError *json.UnmarshalTypeError
		var invalidUnmarshalError *json.InvalidUnmarshalError

		switch {
		case errors.As(err, &syntaxError):
			return fmt.Errorf("body contains badly-formed JSON (at character %d)", syntaxError.Offset)
		case errors.Is(err, io.ErrUnexpectedEOF):
			return errors.New("body contains badly-formed JSON")
		case errors.As(err, &unmarshalTypeError):
			if unmarshalTypeError.Field != "" {
				return fmt.Errorf("body contains incorrect JSON type for field %q", unmarshalTypeError.Field)
			}
			return fmt.Errorf("body contains incorrect JSON type (at character %d)", unmarshalTypeError.Offset)
		case errors.Is(err, io.EOF):
			return errors.New("body must not be empty")
		case strings.HasPrefix(err.Error(), "json: unknown field "):
			fieldName := strings.TrimPrefix(err.Error(), "json: unknown field ")
			return fmt.Errorf("body contains unknown key %s", fieldName)
		case err.Error() == "http: request body too large":
			return fmt.Errorf("body must not be larger than %d bytes", maxBytes)
		case errors.As(err, &invalidUnmarshalError):
			panic(err)
		default:
			return err
		}
	}

	err = dec.Decode(&struct{}{})
	if !errors.Is(err, io.EOF) {
		return errors.New("body must only contain a single JSON value")
	}

	return nil
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) error {
	js, err := json.Marshal(data)
	if err != nil {
		return err
	}
	js = append(js, '\n')

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, err = w.Write(js)
	return err
}

func errorResponse(w http.ResponseWriter, r *http.Request, status int, code, message string, details map[string][]string) {
	body := map[string]errorBody{"error": {Code: code, Message: message, Details: details}}
	if err := writeJSON(w, status, body); err != nil {
		slog.Error("failed to write error response", slog.Any("error", err))
		w.WriteHeader(http.StatusInternalServerError)
	}
}

func serverErrorResponse(w http.ResponseWriter, r *http.Request, err error) {
	slog.Error("internal server error",
		slog.String("method", r.Method),
		slog.String("path", r.URL.Path),
		slog.Any("error", err),
	)
	// Детали внутренней ошибки клиенту не раскрываются.
	errorResponse(w, r, http.StatusInternalServerError, "INTERNAL_ERROR", "an internal server error occurred", nil)
}

func badRequestResponse(w http.ResponseWriter, r *http.Request, err error) {
	errorResponse(w, r, http.StatusBadRequest, "VALIDATION_ERROR", err.Error(), nil)
}

func unauthorizedResponse(w http.ResponseWriter, r *http.Request) {
	errorResponse(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "authentication required", nil)
}

// mapServiceErrorToHTTP преобразует ошибки бизнес-слоя в коды конверта.
func mapServiceErrorToHTTP(w http.ResponseWriter, r *http.Request, err error) {
	var verr *services.ValidationError
	var perr *pagination.ErrInvalidParams

	switch {
	case errors.As(err, &verr):
		errorResponse(w, r, http.StatusBadRequest, "VALIDATION_ERROR", "invalid input", verr.Fields)

	case errors.As(err, &perr):
		details := map[string][]string{perr.Field: {perr.Message}}
		errorResponse(w, r, http.StatusBadRequest, "VALIDATION_ERROR", "invalid input", details)

	case errors.Is(err, services.ErrUserNotFound):
		errorResponse(w, r, http.StatusNotFound, "USER_NOT_FOUND", err.Error(), nil)
	case errors.Is(err, services.ErrChampionshipNotFound):
		errorResponse(w, r, http.StatusNotFound, "CHAMPIONSHIP_NOT_FOUND", err.Error(), nil)
	case errors.Is(err, services.ErrAnswerNotFound):
		errorResponse(w, r, http.StatusNotFound, "ANSWER_NOT_FOUND", err.Error(), nil)

	case errors.Is(err, services.ErrNotOwner), errors.Is(err, services.ErrNotAuthor):
		errorResponse(w, r, http.StatusForbidden, "NOT_OWNER", err.Error(), nil)

	case errors.Is(err, services.ErrInvalidStatus):
		errorResponse(w, r, http.StatusBadRequest, "INVALID_STATUS", err.Error(), nil)

	case errors.Is(err, services.ErrAlreadyLiked):
		errorResponse(w, r, http.StatusConflict, "ALREADY_LIKED", err.Error(), nil)

	default:
		serverErrorResponse(w, r, err)
	}
}

func getIDFromURL(r *http.Request, paramName string) (int, error) {
	idStr := chi.URLParam(r, paramName)
	id, err := strconv.Atoi(idStr)
	if err != nil || id < 1 {
		return 0, fmt.Errorf("invalid %s URL parameter", paramName)
	}
	return id, nil
}
