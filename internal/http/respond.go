package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/nisrj10/yieldly/internal/assistant"
	"github.com/nisrj10/yieldly/internal/core"
	"github.com/nisrj10/yieldly/internal/services"
	"github.com/nisrj10/yieldly/internal/storage"
)

const maxBodyBytes = 1 << 20

type errorBody struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorBody{Error: msg})
}

// writeServiceError maps domain errors onto HTTP statuses. Unknown
// errors become opaque 500s so storage details never leak to clients.
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, storage.ErrNotFound), errors.Is(err, services.ErrNoBudget):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, assistant.ErrUnknownTool):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, assistant.ErrMissingParameter),
		errors.Is(err, assistant.ErrInvalidParameter):
		writeError(w, http.StatusBadRequest, err.Error())
	case isValidationError(err):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func isValidationError(err error) bool {
	for _, target := range []error{
		core.ErrEmptyName,
		core.ErrNegativeAmount,
		core.ErrInvalidAmount,
		core.ErrInvalidPercent,
		core.ErrInvalidCategoryType,
		core.ErrInvalidSplitType,
		core.ErrInvalidMonth,
		core.ErrInvalidPortfolioType,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

// pathID parses the {id} wildcard of the matched route.
func pathID(r *http.Request) (int64, error) {
	return strconv.ParseInt(r.PathValue("id"), 10, 64)
}

// parseAsOf reads the optional as_of query parameter (YYYY-MM-DD),
// defaulting to today. The derivation engine takes the date as input;
// the clock read happens only here at the edge.
func parseAsOf(r *http.Request) (time.Time, error) {
	v := r.URL.Query().Get("as_of")
	if v == "" {
		return time.Now(), nil
	}
	return time.Parse(time.DateOnly, v)
}
