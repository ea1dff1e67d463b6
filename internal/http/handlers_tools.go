package http

import (
	"errors"
	"io"
	"net/http"

	"github.com/nisrj10/yieldly/internal/assistant"
	applog "github.com/nisrj10/yieldly/internal/log"
)

func (s *Server) handleListTools(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.tools.List())
}

func (s *Server) handleCallTool(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")

	// An empty body means a call with no parameters.
	params := assistant.Params{}
	if err := decodeJSON(r, &params); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := s.tools.Call(r.Context(), name, params)
	if err != nil {
		s.logger.WarnContext(r.Context(), "Tool call failed",
			applog.FieldTool, name, applog.FieldError, err)
		writeServiceError(w, err)
		return
	}

	// Some registered tools mutate state, so every call drops the
	// report cache.
	s.invalidateReports()
	writeJSON(w, http.StatusOK, struct {
		Tool   string `json:"tool"`
		Result any    `json:"result"`
	}{name, result})
}
