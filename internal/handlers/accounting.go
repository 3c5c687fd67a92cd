package handlers

import (
	"net/http"

	"tendercrm/db"
	"tendercrm/internal/accounting"
	"tendercrm/internal/apperr"
	"tendercrm/models"
)

var revenueStatuses = []models.Status{models.StatusWon, models.StatusInProgress, models.StatusCompleted}

// GetAccountingHandler: сводка по выигранным тендерам с фильтром и поиском.
func (h *Handler) GetAccountingHandler(w http.ResponseWriter, r *http.Request) {
	f, err := accounting.ParseFilter(r.URL.Query().Get("filter"))
	if err != nil {
		writeError(w, r, apperr.Validation("Некорректный фильтр"))
		return
	}

	tenders, err := h.Store.GetTenders(r.Context(), db.TenderFilter{Statuses: revenueStatuses})
	if err != nil {
		writeError(w, r, storageError(err, msgTenderNotFound))
		return
	}
	ids := make([]int, 0, len(tenders))
	for _, t := range tenders {
		ids = append(ids, t.ID)
	}
	totals, err := h.Store.ExpenseTotals(r.Context(), ids)
	if err != nil {
		writeError(w, r, storageError(err, msgExpenseNotFound))
		return
	}

	writeJSON(w, http.StatusOK, h.Accounting.Report(tenders, totals, f, r.URL.Query().Get("q")))
}

type accountingDetail struct {
	accounting.Row
	Expenses []models.Expense `json:"expenses"`
}

func (h *Handler) GetTenderAccountingHandler(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "tenderId")
	if err != nil {
		writeError(w, r, err)
		return
	}
	t, err := h.Store.GetTender(r.Context(), id)
	if err != nil {
		writeError(w, r, storageError(err, msgTenderNotFound))
		return
	}
	if !t.Status.Revenue() {
		writeError(w, r, apperr.Validation("Тендер не выигран"))
		return
	}

	expenses, err := h.Store.GetExpensesByTender(r.Context(), id)
	if err != nil {
		writeError(w, r, storageError(err, msgExpenseNotFound))
		return
	}
	total := 0.0
	for _, e := range expenses {
		total += e.Amount
	}
	writeJSON(w, http.StatusOK, accountingDetail{Row: h.Accounting.Row(*t, total), Expenses: expenses})
}
