package handlers

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"tendercrm/db"
	"tendercrm/internal/apperr"
	"tendercrm/internal/convert"
	"tendercrm/models"
)

// TenderPatch: тело POST и PUT /api/tenders.
type TenderPatch struct {
	Title                    models.Optional[string]          `json:"title"`
	Link                     models.Optional[string]          `json:"link"`
	Status                   models.Optional[string]          `json:"status"`
	PublishDate              models.Optional[models.DateTime] `json:"publish_date"`
	Deadline                 models.Optional[models.DateTime] `json:"deadline"`
	SubmissionDate           models.Optional[models.DateTime] `json:"submission_date"`
	ReviewDate               models.Optional[models.DateTime] `json:"review_date"`
	CompletionDeadline       models.Optional[models.DateTime] `json:"completion_deadline"`
	Amount                   models.Optional[float64]         `json:"amount"`
	WinAmount                models.Optional[float64]         `json:"win_amount"`
	WinnerPrice              models.Optional[float64]         `json:"winner_price"`
	ContractGuaranteePercent models.Optional[float64]         `json:"contract_guarantee_percent"`
	Comment                  models.Optional[string]          `json:"comment"`
	IsArchived               models.Optional[bool]            `json:"is_archived"`
}

func (p *TenderPatch) validate() error {
	if err := firstErr(
		notNull("title", p.Title),
		notNull("status", p.Status),
		notNull("is_archived", p.IsArchived),
		nonNegative("amount", p.Amount),
		nonNegative("win_amount", p.WinAmount),
		nonNegative("winner_price", p.WinnerPrice),
	); err != nil {
		return err
	}
	if p.Title.Present() {
		if err := checkVar("title", strings.TrimSpace(p.Title.Value), "required,max=1000"); err != nil {
			return err
		}
	}
	if p.ContractGuaranteePercent.Present() {
		if err := checkVar("contract_guarantee_percent", p.ContractGuaranteePercent.Value, "gte=0,lte=100"); err != nil {
			return err
		}
	}
	return nil
}

func (p *TenderPatch) status() (models.Status, error) {
	s, err := convert.ParseStatus(p.Status.Value)
	if err != nil {
		return "", apperr.InvalidFields("Некорректный статус", map[string]string{"status": "oneof"})
	}
	return s, nil
}

func autoReminderText(title string) string {
	return "Дедлайн подачи заявки на тендер: " + title
}

// newTender собирает тендер для вставки. Создать можно только новый тендер;
// при наличии дедлайна к нему прилагается авто-напоминание о подаче.
func newTender(p TenderPatch, ownerID int, now time.Time) (*models.Tender, *models.Reminder, error) {
	if err := p.validate(); err != nil {
		return nil, nil, err
	}
	if !p.Title.Present() {
		return nil, nil, apperr.InvalidFields("Ошибка валидации", map[string]string{"title": "required"})
	}
	if p.Status.Present() {
		s, err := p.status()
		if err != nil {
			return nil, nil, err
		}
		if s != models.StatusNew {
			return nil, nil, apperr.Validation("Тендер создаётся только в статусе «Новый»")
		}
	}

	t := &models.Tender{
		Title:                    strings.TrimSpace(p.Title.Value),
		Link:                     textPtr(p.Link),
		Status:                   models.StatusNew,
		PublishDate:              optPtr(p.PublishDate),
		Deadline:                 optPtr(p.Deadline),
		SubmissionDate:           optPtr(p.SubmissionDate),
		ReviewDate:               optPtr(p.ReviewDate),
		CompletionDeadline:       optPtr(p.CompletionDeadline),
		Amount:                   optPtr(p.Amount),
		WinAmount:                optPtr(p.WinAmount),
		WinnerPrice:              optPtr(p.WinnerPrice),
		ContractGuaranteePercent: optPtr(p.ContractGuaranteePercent),
		Comment:                  textPtr(p.Comment),
		OwnerID:                  &ownerID,
	}
	if p.IsArchived.Present() && p.IsArchived.Value {
		t.IsArchived = true
		at := models.NewDateTime(now)
		t.ArchivedAt = &at
	}

	if t.Deadline == nil {
		return t, nil, nil
	}
	text := autoReminderText(t.Title)
	auto := &models.Reminder{
		Type:        models.ReminderSubmission,
		DateTime:    *t.Deadline,
		Description: &text,
		OwnerID:     &ownerID,
	}
	return t, auto, nil
}

// planTenderUpdate строит изменения тендера по патчу и текущему состоянию:
// проверяет переход статуса, заморозку начальной цены и условия подачи,
// решает, что делать с авто-напоминанием.
func planTenderUpdate(cur models.Tender, p TenderPatch, now time.Time) (db.TenderUpdate, error) {
	var up db.TenderUpdate
	if err := p.validate(); err != nil {
		return up, err
	}

	c := db.Changes{}
	if p.Title.Present() {
		p.Title.Value = strings.TrimSpace(p.Title.Value)
	}
	setField(c, "title", p.Title, &cur.Title)
	setText(c, "link", p.Link, cur.Link)
	setDate(c, "publish_date", p.PublishDate, cur.PublishDate)
	setDate(c, "deadline", p.Deadline, cur.Deadline)
	setDate(c, "submission_date", p.SubmissionDate, cur.SubmissionDate)
	setDate(c, "review_date", p.ReviewDate, cur.ReviewDate)
	setDate(c, "completion_deadline", p.CompletionDeadline, cur.CompletionDeadline)
	setField(c, "amount", p.Amount, cur.Amount)
	setField(c, "win_amount", p.WinAmount, cur.WinAmount)
	setField(c, "winner_price", p.WinnerPrice, cur.WinnerPrice)
	setField(c, "contract_guarantee_percent", p.ContractGuaranteePercent, cur.ContractGuaranteePercent)
	setText(c, "comment", p.Comment, cur.Comment)
	setField(c, "is_archived", p.IsArchived, &cur.IsArchived)

	next := cur.Status
	if p.Status.Present() {
		s, err := p.status()
		if err != nil {
			return up, err
		}
		if !models.CanTransition(cur.Status, s) {
			return up, apperr.Validation(fmt.Sprintf("Недопустимый переход статуса: %s → %s",
				convert.StatusLabel(cur.Status), convert.StatusLabel(s)))
		}
		if s != cur.Status {
			c["status"] = s
			next = s
		}
	}

	if cur.Status == models.StatusLost {
		for col := range c {
			if col != "is_archived" {
				return up, apperr.Validation("Проигранный тендер можно только архивировать")
			}
		}
	}

	if _, ok := c["amount"]; ok && cur.Status != models.StatusNew {
		return up, apperr.Validation("Начальную цену можно менять только у нового тендера")
	}

	if cur.Status == models.StatusNew && next == models.StatusSubmitted {
		submission := cur.SubmissionDate
		if _, ok := c["submission_date"]; ok {
			submission = optPtr(p.SubmissionDate)
		}
		win := cur.WinAmount
		if _, ok := c["win_amount"]; ok {
			win = optPtr(p.WinAmount)
		}
		if submission == nil || win == nil {
			return up, apperr.Validation("Для подачи заявки укажите дату подачи и цену подачи")
		}
	}

	if v, ok := c["is_archived"]; ok {
		if v.(bool) {
			c["archived_at"] = models.NewDateTime(now)
		} else {
			c["archived_at"] = nil
		}
	}

	up.Changes = c
	switch {
	case cur.Status == models.StatusNew && next != models.StatusNew:
		up.Reminder = db.ReminderDrop
	case next == models.StatusNew:
		_, deadlineChanged := c["deadline"]
		_, titleChanged := c["title"]
		deadline := cur.Deadline
		if deadlineChanged {
			deadline = optPtr(p.Deadline)
		}
		title := cur.Title
		if titleChanged {
			title = p.Title.Value
		}
		switch {
		case deadlineChanged && deadline == nil:
			up.Reminder = db.ReminderDrop
		case (deadlineChanged || titleChanged) && deadline != nil:
			up.Reminder = db.ReminderUpsert
			up.ReminderAt = deadline.Time
			up.ReminderText = autoReminderText(title)
		}
	}
	return up, nil
}

// GetTendersHandler возвращает список тендеров с фильтрами
// status (повторяемый, код или подпись), archived, q, limit, offset.
func (h *Handler) GetTendersHandler(w http.ResponseWriter, r *http.Request) {
	f, err := parseTenderFilter(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	tenders, err := h.Store.GetTenders(r.Context(), f)
	if err != nil {
		writeError(w, r, storageError(err, msgTenderNotFound))
		return
	}
	writeJSON(w, http.StatusOK, convert.NewTenderResponses(tenders))
}

func parseTenderFilter(r *http.Request) (db.TenderFilter, error) {
	q := r.URL.Query()
	var f db.TenderFilter

	for _, raw := range q["status"] {
		for _, v := range strings.Split(raw, ",") {
			if strings.TrimSpace(v) == "" {
				continue
			}
			s, err := convert.ParseStatus(v)
			if err != nil {
				return f, apperr.Validation("Некорректный статус: " + v)
			}
			f.Statuses = append(f.Statuses, s)
		}
	}
	if v := q.Get("archived"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return f, apperr.Validation("Некорректное значение archived")
		}
		f.Archived = &b
	}
	f.Query = q.Get("q")

	p, err := parsePaginationParams(r)
	if err != nil {
		return f, err
	}
	f.Limit, f.Offset = p.Limit, p.Offset
	return f, nil
}

type PaginationParams struct {
	Limit  int
	Offset int
}

const maxPageSize = 500

// parsePaginationParams парсит limit и offset из query. Limit 0: без ограничения.
func parsePaginationParams(r *http.Request) (PaginationParams, error) {
	var params PaginationParams
	if v := r.URL.Query().Get("limit"); v != "" {
		l, err := strconv.Atoi(v)
		if err != nil || l < 0 || l > maxPageSize {
			return params, apperr.Validation("Некорректный limit")
		}
		params.Limit = l
	}
	if v := r.URL.Query().Get("offset"); v != "" {
		o, err := strconv.Atoi(v)
		if err != nil || o < 0 {
			return params, apperr.Validation("Некорректный offset")
		}
		params.Offset = o
	}
	return params, nil
}

func (h *Handler) GetTenderHandler(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	t, err := h.Store.GetTender(r.Context(), id)
	if err != nil {
		writeError(w, r, storageError(err, msgTenderNotFound))
		return
	}
	writeJSON(w, http.StatusOK, convert.NewTenderResponse(*t))
}

// CreateTenderHandler обрабатывает POST /api/tenders
func (h *Handler) CreateTenderHandler(w http.ResponseWriter, r *http.Request) {
	s, err := session(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	var p TenderPatch
	if err := decodeJSON(w, r, &p); err != nil {
		writeError(w, r, err)
		return
	}
	t, auto, err := newTender(p, s.UserID, h.now())
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.Store.CreateTender(r.Context(), t, auto); err != nil {
		writeError(w, r, storageError(err, msgTenderNotFound))
		return
	}
	writeJSON(w, http.StatusCreated, convert.NewTenderResponse(*t))
}

// UpdateTenderHandler обрабатывает PUT /api/tenders/{id}. Проверки и побочные
// эффекты выполняются в одной транзакции с обновлением.
func (h *Handler) UpdateTenderHandler(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var p TenderPatch
	if err := decodeJSON(w, r, &p); err != nil {
		writeError(w, r, err)
		return
	}
	now := h.now()
	t, err := h.Store.UpdateTender(r.Context(), id, func(cur *models.Tender) (db.TenderUpdate, error) {
		return planTenderUpdate(*cur, p, now)
	})
	if err != nil {
		writeError(w, r, storageError(err, msgTenderNotFound))
		return
	}
	writeJSON(w, http.StatusOK, convert.NewTenderResponse(*t))
}

// DeleteTenderHandler удаляет тендер вместе с расходами и напоминаниями.
func (h *Handler) DeleteTenderHandler(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.Store.DeleteTender(r.Context(), id); err != nil {
		writeError(w, r, storageError(err, msgTenderNotFound))
		return
	}
	writeJSON(w, http.StatusOK, messageBody{Message: "Тендер успешно удален"})
}
