package http

import (
	"net/http"
	"time"

	"github.com/shopspring/decimal"
)

func (s *Server) handleListPortfolios(w http.ResponseWriter, r *http.Request) {
	includeInactive := r.URL.Query().Get("include_inactive") == "true"

	portfolios, err := s.portfolios.ListPortfolios(r.Context(), includeInactive)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, portfoliosFromDomain(portfolios))
}

func (s *Server) handleCreatePortfolio(w http.ResponseWriter, r *http.Request) {
	var p portfolioPayload
	if err := decodeJSON(r, &p); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	created, err := s.portfolios.CreatePortfolio(r.Context(), p.toDomain())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	s.invalidateReports()
	writeJSON(w, http.StatusCreated, portfolioFromDomain(created))
}

func (s *Server) handleGetPortfolio(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid portfolio id")
		return
	}

	p, err := s.portfolios.GetPortfolio(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, portfolioFromDomain(p))
}

func (s *Server) handleUpdatePortfolio(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid portfolio id")
		return
	}

	var p portfolioPayload
	if err := decodeJSON(r, &p); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	domain := p.toDomain()
	domain.ID = id

	if err := s.portfolios.UpdatePortfolio(r.Context(), domain); err != nil {
		writeServiceError(w, err)
		return
	}
	s.invalidateReports()
	writeJSON(w, http.StatusOK, portfolioFromDomain(domain))
}

func (s *Server) handleDeactivatePortfolio(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid portfolio id")
		return
	}

	if err := s.portfolios.Deactivate(r.Context(), id); err != nil {
		writeServiceError(w, err)
		return
	}
	s.invalidateReports()
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleUpdatePortfolioValue(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid portfolio id")
		return
	}

	var req struct {
		Value decimal.Decimal `json:"value"`
		Notes string          `json:"notes"`
		AsOf  string          `json:"as_of"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	asOf := time.Now()
	if req.AsOf != "" {
		if asOf, err = time.Parse(time.DateOnly, req.AsOf); err != nil {
			writeError(w, http.StatusBadRequest, "as_of must be YYYY-MM-DD")
			return
		}
	}

	updated, err := s.portfolios.UpdateValue(r.Context(), id, req.Value, req.Notes, asOf)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	s.invalidateReports()
	writeJSON(w, http.StatusOK, portfolioFromDomain(updated))
}

func (s *Server) handleListSnapshots(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid portfolio id")
		return
	}

	snaps, err := s.portfolios.ListSnapshots(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snapshotsFromDomain(snaps))
}
