package handlers

import (
	"net/http"
	"strings"

	"tendercrm/db"
	"tendercrm/models"
)

type SupplierPatch struct {
	Name          models.Optional[string] `json:"name"`
	ContactPerson models.Optional[string] `json:"contact_person"`
	Phone         models.Optional[string] `json:"phone"`
	Email         models.Optional[string] `json:"email"`
	Address       models.Optional[string] `json:"address"`
	INN           models.Optional[string] `json:"inn"`
	Website       models.Optional[string] `json:"website"`
	Notes         models.Optional[string] `json:"notes"`
}

func (p *SupplierPatch) validate() error {
	if err := notNull("name", p.Name); err != nil {
		return err
	}
	if p.Name.Present() {
		if err := checkVar("name", strings.TrimSpace(p.Name.Value), "required,max=255"); err != nil {
			return err
		}
	}
	if v := textPtr(p.Email); v != nil {
		if err := checkVar("email", *v, "email"); err != nil {
			return err
		}
	}
	if v := textPtr(p.INN); v != nil {
		if err := checkVar("inn", *v, "numeric,min=10,max=12"); err != nil {
			return err
		}
	}
	return nil
}

func (p *SupplierPatch) changes(cur models.Supplier) db.Changes {
	c := db.Changes{}
	if p.Name.Present() {
		p.Name.Value = strings.TrimSpace(p.Name.Value)
	}
	setField(c, "name", p.Name, &cur.Name)
	setText(c, "contact_person", p.ContactPerson, cur.ContactPerson)
	setText(c, "phone", p.Phone, cur.Phone)
	setText(c, "email", p.Email, cur.Email)
	setText(c, "address", p.Address, cur.Address)
	setText(c, "inn", p.INN, cur.INN)
	setText(c, "website", p.Website, cur.Website)
	setText(c, "notes", p.Notes, cur.Notes)
	return c
}

func (h *Handler) GetSuppliersHandler(w http.ResponseWriter, r *http.Request) {
	suppliers, err := h.Store.GetSuppliers(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		writeError(w, r, storageError(err, msgSupplierNotFound))
		return
	}
	writeJSON(w, http.StatusOK, suppliers)
}

func (h *Handler) GetSupplierHandler(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	sp, err := h.Store.GetSupplier(r.Context(), id)
	if err != nil {
		writeError(w, r, storageError(err, msgSupplierNotFound))
		return
	}
	writeJSON(w, http.StatusOK, sp)
}

func (h *Handler) CreateSupplierHandler(w http.ResponseWriter, r *http.Request) {
	s, err := session(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	var p SupplierPatch
	if err := decodeJSON(w, r, &p); err != nil {
		writeError(w, r, err)
		return
	}
	if !p.Name.Set {
		p.Name = models.Some("")
	}
	if err := p.validate(); err != nil {
		writeError(w, r, err)
		return
	}

	sp := &models.Supplier{
		Name:          strings.TrimSpace(p.Name.Value),
		ContactPerson: textPtr(p.ContactPerson),
		Phone:         textPtr(p.Phone),
		Email:         textPtr(p.Email),
		Address:       textPtr(p.Address),
		INN:           textPtr(p.INN),
		Website:       textPtr(p.Website),
		Notes:         textPtr(p.Notes),
		OwnerID:       &s.UserID,
	}
	if err := h.Store.CreateSupplier(r.Context(), sp); err != nil {
		writeError(w, r, storageError(err, msgSupplierNotFound))
		return
	}
	writeJSON(w, http.StatusCreated, sp)
}

func (h *Handler) UpdateSupplierHandler(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var p SupplierPatch
	if err := decodeJSON(w, r, &p); err != nil {
		writeError(w, r, err)
		return
	}
	if err := p.validate(); err != nil {
		writeError(w, r, err)
		return
	}
	cur, err := h.Store.GetSupplier(r.Context(), id)
	if err != nil {
		writeError(w, r, storageError(err, msgSupplierNotFound))
		return
	}
	sp, err := h.Store.UpdateSupplier(r.Context(), id, p.changes(*cur))
	if err != nil {
		writeError(w, r, storageError(err, msgSupplierNotFound))
		return
	}
	writeJSON(w, http.StatusOK, sp)
}

func (h *Handler) DeleteSupplierHandler(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.Store.DeleteSupplier(r.Context(), id); err != nil {
		writeError(w, r, storageError(err, msgSupplierNotFound))
		return
	}
	writeJSON(w, http.StatusOK, messageBody{Message: "Поставщик успешно удален"})
}
