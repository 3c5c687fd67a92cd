package handlers

import (
	"net/http"
	"strconv"

	"tendercrm/db"
	"tendercrm/internal/apperr"
	"tendercrm/internal/convert"
	"tendercrm/models"
)

const msgAutoReminderLocked = "У авто-напоминания нельзя менять тендер и тип"

type ReminderPatch struct {
	TenderID    models.Optional[int]             `json:"tender_id"`
	Type        models.Optional[string]          `json:"type"`
	DateTime    models.Optional[models.DateTime] `json:"datetime"`
	Description models.Optional[string]          `json:"description"`
	Completed   models.Optional[bool]            `json:"completed"`
}

func (p *ReminderPatch) validate() error {
	if err := firstErr(
		notNull("tender_id", p.TenderID),
		notNull("type", p.Type),
		notNull("datetime", p.DateTime),
		notNull("completed", p.Completed),
	); err != nil {
		return err
	}
	if p.TenderID.Present() {
		if err := checkVar("tender_id", p.TenderID.Value, "gt=0"); err != nil {
			return err
		}
	}
	return nil
}

func (p *ReminderPatch) reminderType() (models.ReminderType, error) {
	t, err := convert.ParseReminderType(p.Type.Value)
	if err != nil {
		return "", apperr.InvalidFields("Некорректный тип напоминания", map[string]string{"type": "oneof"})
	}
	return t, nil
}

type reminderResponse struct {
	models.Reminder
	TypeLabel string `json:"type_label"`
}

func newReminderResponse(r models.Reminder) reminderResponse {
	return reminderResponse{Reminder: r, TypeLabel: convert.ReminderTypeLabel(r.Type)}
}

func newReminderResponses(rs []models.Reminder) []reminderResponse {
	out := make([]reminderResponse, 0, len(rs))
	for _, r := range rs {
		out = append(out, newReminderResponse(r))
	}
	return out
}

// GetRemindersHandler: список с фильтрами tender_id, completed, type.
func (h *Handler) GetRemindersHandler(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	var f db.ReminderFilter
	if v := q.Get("tender_id"); v != "" {
		id, err := strconv.Atoi(v)
		if err != nil || id <= 0 {
			writeError(w, r, apperr.Validation("Некорректный tender_id"))
			return
		}
		f.TenderID = &id
	}
	if v := q.Get("completed"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			writeError(w, r, apperr.Validation("Некорректное значение completed"))
			return
		}
		f.Completed = &b
	}
	if v := q.Get("type"); v != "" {
		t, err := convert.ParseReminderType(v)
		if err != nil {
			writeError(w, r, apperr.Validation("Некорректный тип напоминания"))
			return
		}
		f.Type = &t
	}

	reminders, err := h.Store.GetReminders(r.Context(), f)
	if err != nil {
		writeError(w, r, storageError(err, msgReminderNotFound))
		return
	}
	writeJSON(w, http.StatusOK, newReminderResponses(reminders))
}

func (h *Handler) GetReminderHandler(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	rem, err := h.Store.GetReminder(r.Context(), id)
	if err != nil {
		writeError(w, r, storageError(err, msgReminderNotFound))
		return
	}
	writeJSON(w, http.StatusOK, newReminderResponse(*rem))
}

func (h *Handler) CreateReminderHandler(w http.ResponseWriter, r *http.Request) {
	s, err := session(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	var p ReminderPatch
	if err := decodeJSON(w, r, &p); err != nil {
		writeError(w, r, err)
		return
	}
	if err := p.validate(); err != nil {
		writeError(w, r, err)
		return
	}
	missing := map[string]string{}
	if !p.TenderID.Present() {
		missing["tender_id"] = "required"
	}
	if !p.Type.Present() {
		missing["type"] = "required"
	}
	if !p.DateTime.Present() {
		missing["datetime"] = "required"
	}
	if len(missing) > 0 {
		writeError(w, r, apperr.InvalidFields("Ошибка валидации", missing))
		return
	}
	typ, err := p.reminderType()
	if err != nil {
		writeError(w, r, err)
		return
	}

	rem := &models.Reminder{
		TenderID:    p.TenderID.Value,
		Type:        typ,
		DateTime:    p.DateTime.Value,
		Description: textPtr(p.Description),
		Completed:   p.Completed.Present() && p.Completed.Value,
		OwnerID:     &s.UserID,
	}
	if err := h.Store.CreateReminder(r.Context(), rem); err != nil {
		writeError(w, r, storageError(err, msgTenderNotFound))
		return
	}
	writeJSON(w, http.StatusCreated, newReminderResponse(*rem))
}

func (h *Handler) UpdateReminderHandler(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var p ReminderPatch
	if err := decodeJSON(w, r, &p); err != nil {
		writeError(w, r, err)
		return
	}
	if err := p.validate(); err != nil {
		writeError(w, r, err)
		return
	}
	cur, err := h.Store.GetReminder(r.Context(), id)
	if err != nil {
		writeError(w, r, storageError(err, msgReminderNotFound))
		return
	}

	// авто-напоминание принадлежит своему тендеру и всегда о подаче
	if cur.IsAuto {
		fields := map[string]string{}
		if p.TenderID.Present() && p.TenderID.Value != cur.TenderID {
			fields["tender_id"] = "readonly"
		}
		if p.Type.Present() {
			typ, err := p.reminderType()
			if err != nil {
				writeError(w, r, err)
				return
			}
			if typ != cur.Type {
				fields["type"] = "readonly"
			}
		}
		if len(fields) > 0 {
			writeError(w, r, apperr.InvalidFields(msgAutoReminderLocked, fields))
			return
		}
	}

	c := db.Changes{}
	setField(c, "tender_id", p.TenderID, &cur.TenderID)
	if p.Type.Present() {
		typ, err := p.reminderType()
		if err != nil {
			writeError(w, r, err)
			return
		}
		setField(c, "type", models.Some(typ), &cur.Type)
	}
	setDate(c, "datetime", p.DateTime, &cur.DateTime)
	setText(c, "description", p.Description, cur.Description)
	setField(c, "completed", p.Completed, &cur.Completed)

	rem, err := h.Store.UpdateReminder(r.Context(), id, c)
	if err != nil {
		writeError(w, r, storageError(err, msgReminderNotFound))
		return
	}
	writeJSON(w, http.StatusOK, newReminderResponse(*rem))
}

func (h *Handler) DeleteReminderHandler(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.Store.DeleteReminder(r.Context(), id); err != nil {
		writeError(w, r, storageError(err, msgReminderNotFound))
		return
	}
	writeJSON(w, http.StatusOK, messageBody{Message: "Напоминание успешно удалено"})
}
