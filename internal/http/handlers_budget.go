package http

import (
	"net/http"
	"strconv"

	applog "github.com/nisrj10/yieldly/internal/log"
)

func (s *Server) handleListBudgets(w http.ResponseWriter, r *http.Request) {
	budgets, err := s.budgets.ListBudgets(r.Context())
	if err != nil {
		s.logger.ErrorContext(r.Context(), "List budgets failed", applog.FieldError, err)
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, budgetsFromDomain(budgets))
}

func (s *Server) handleCreateBudget(w http.ResponseWriter, r *http.Request) {
	var p budgetPayload
	if err := decodeJSON(r, &p); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	created, err := s.budgets.CreateBudget(r.Context(), p.toDomain())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	s.invalidateReports()
	writeJSON(w, http.StatusCreated, budgetFromDomain(created))
}

func (s *Server) handleGetBudget(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid budget id")
		return
	}

	budget, err := s.budgets.GetBudget(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	items, err := s.budgets.ListLineItems(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, struct {
		budgetPayload
		Items []lineItemPayload `json:"items"`
	}{budgetFromDomain(budget), lineItemsFromDomain(items)})
}

func (s *Server) handleUpdateBudget(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid budget id")
		return
	}

	var p budgetPayload
	if err := decodeJSON(r, &p); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	b := p.toDomain()
	b.ID = id

	if err := s.budgets.UpdateBudget(r.Context(), b); err != nil {
		writeServiceError(w, err)
		return
	}
	s.invalidateReports()
	writeJSON(w, http.StatusOK, budgetFromDomain(b))
}

func (s *Server) handleDeleteBudget(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid budget id")
		return
	}

	if err := s.budgets.DeleteBudget(r.Context(), id); err != nil {
		writeServiceError(w, err)
		return
	}
	s.invalidateReports()
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleDuplicateBudget(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid budget id")
		return
	}

	var req struct {
		Name  string `json:"name"`
		Year  int    `json:"year"`
		Month int    `json:"month"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	created, err := s.budgets.DuplicateBudget(r.Context(), id, req.Name, req.Year, req.Month)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	s.invalidateReports()
	writeJSON(w, http.StatusCreated, budgetFromDomain(created))
}

func (s *Server) handleListChanges(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid budget id")
		return
	}

	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		if limit, err = strconv.Atoi(v); err != nil || limit < 0 {
			writeError(w, http.StatusBadRequest, "invalid limit")
			return
		}
	}

	changes, err := s.budgets.ListChanges(r.Context(), id, limit)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, changesFromDomain(changes))
}

func (s *Server) handleListLineItems(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid budget id")
		return
	}

	items, err := s.budgets.ListLineItems(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, lineItemsFromDomain(items))
}

func (s *Server) handleAddLineItem(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid budget id")
		return
	}

	var p lineItemPayload
	if err := decodeJSON(r, &p); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	li := p.toDomain()
	li.BudgetID = id

	created, err := s.budgets.AddLineItem(r.Context(), li)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	s.invalidateReports()
	writeJSON(w, http.StatusCreated, lineItemFromDomain(created))
}

func (s *Server) handleUpdateLineItem(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid item id")
		return
	}

	var p lineItemPayload
	if err := decodeJSON(r, &p); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	li := p.toDomain()
	li.ID = id

	if err := s.budgets.UpdateLineItem(r.Context(), li); err != nil {
		writeServiceError(w, err)
		return
	}
	s.invalidateReports()
	writeJSON(w, http.StatusOK, lineItemFromDomain(li))
}

func (s *Server) handleDeleteLineItem(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid item id")
		return
	}

	if err := s.budgets.DeleteLineItem(r.Context(), id); err != nil {
		writeServiceError(w, err)
		return
	}
	s.invalidateReports()
	w.WriteHeader(http.StatusNoContent)
}
