package handlers

import (
	"net/http"

	"tendercrm/db"
	"tendercrm/internal/apperr"
	"tendercrm/models"
)

type ExpensePatch struct {
	TenderID    models.Optional[int]             `json:"tender_id"`
	Amount      models.Optional[float64]         `json:"amount"`
	Description models.Optional[string]          `json:"description"`
	Category    models.Optional[string]          `json:"category"`
	Date        models.Optional[models.DateTime] `json:"date"`
}

func (p *ExpensePatch) validate() error {
	return firstErr(
		notNull("tender_id", p.TenderID),
		notNull("amount", p.Amount),
		notNull("date", p.Date),
		nonNegative("amount", p.Amount),
	)
}

// GetExpensesHandler: расходы тендера, новые сверху.
func (h *Handler) GetExpensesHandler(w http.ResponseWriter, r *http.Request) {
	tenderID, err := parseID(r, "tenderId")
	if err != nil {
		writeError(w, r, err)
		return
	}
	if _, err := h.Store.GetTender(r.Context(), tenderID); err != nil {
		writeError(w, r, storageError(err, msgTenderNotFound))
		return
	}
	expenses, err := h.Store.GetExpensesByTender(r.Context(), tenderID)
	if err != nil {
		writeError(w, r, storageError(err, msgExpenseNotFound))
		return
	}
	writeJSON(w, http.StatusOK, expenses)
}

func (h *Handler) CreateExpenseHandler(w http.ResponseWriter, r *http.Request) {
	var p ExpensePatch
	if err := decodeJSON(w, r, &p); err != nil {
		writeError(w, r, err)
		return
	}
	if err := p.validate(); err != nil {
		writeError(w, r, err)
		return
	}
	missing := map[string]string{}
	if !p.TenderID.Present() || p.TenderID.Value <= 0 {
		missing["tender_id"] = "required"
	}
	if !p.Amount.Present() {
		missing["amount"] = "required"
	}
	if len(missing) > 0 {
		writeError(w, r, apperr.InvalidFields("Ошибка валидации", missing))
		return
	}

	e := &models.Expense{
		TenderID:    p.TenderID.Value,
		Amount:      models.Round2(p.Amount.Value),
		Description: textPtr(p.Description),
		Category:    textPtr(p.Category),
		Date:        models.NewDateTime(h.now()),
	}
	if p.Date.Present() {
		e.Date = p.Date.Value
	}
	if err := h.Store.CreateExpense(r.Context(), e); err != nil {
		writeError(w, r, storageError(err, msgTenderNotFound))
		return
	}
	writeJSON(w, http.StatusCreated, e)
}

// UpdateExpenseHandler: расход нельзя перенести на другой тендер.
func (h *Handler) UpdateExpenseHandler(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var p ExpensePatch
	if err := decodeJSON(w, r, &p); err != nil {
		writeError(w, r, err)
		return
	}
	if err := p.validate(); err != nil {
		writeError(w, r, err)
		return
	}

	cur, err := h.Store.GetExpense(r.Context(), id)
	if err != nil {
		writeError(w, r, storageError(err, msgExpenseNotFound))
		return
	}
	if p.TenderID.Present() && p.TenderID.Value != cur.TenderID {
		writeError(w, r, apperr.Validation("Расход нельзя перенести на другой тендер"))
		return
	}

	c := db.Changes{}
	if p.Amount.Present() {
		p.Amount.Value = models.Round2(p.Amount.Value)
	}
	setField(c, "amount", p.Amount, &cur.Amount)
	setText(c, "description", p.Description, cur.Description)
	setText(c, "category", p.Category, cur.Category)
	setDate(c, "date", p.Date, &cur.Date)

	e, err := h.Store.UpdateExpense(r.Context(), id, c)
	if err != nil {
		writeError(w, r, storageError(err, msgExpenseNotFound))
		return
	}
	writeJSON(w, http.StatusOK, e)
}

func (h *Handler) DeleteExpenseHandler(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.Store.DeleteExpense(r.Context(), id); err != nil {
		writeError(w, r, storageError(err, msgExpenseNotFound))
		return
	}
	writeJSON(w, http.StatusOK, messageBody{Message: "Расход успешно удален"})
}
