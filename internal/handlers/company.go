package handlers

import (
	"errors"
	"net/http"
	"strings"

	"tendercrm/db"
	"tendercrm/models"
)

type CompanyPatch struct {
	Name                 models.Optional[string] `json:"name"`
	INN                  models.Optional[string] `json:"inn"`
	KPP                  models.Optional[string] `json:"kpp"`
	OGRN                 models.Optional[string] `json:"ogrn"`
	BankName             models.Optional[string] `json:"bank_name"`
	BIK                  models.Optional[string] `json:"bik"`
	CheckingAccount      models.Optional[string] `json:"checking_account"`
	CorrespondentAccount models.Optional[string] `json:"correspondent_account"`
	DirectorName         models.Optional[string] `json:"director_name"`
	Phone                models.Optional[string] `json:"phone"`
	Email                models.Optional[string] `json:"email"`
	Address              models.Optional[string] `json:"address"`
}

// Реквизиты проверяем по длине и составу цифр.
var companyDigits = []struct {
	field string
	tag   string
	get   func(p *CompanyPatch) models.Optional[string]
}{
	{"inn", "numeric,min=10,max=12", func(p *CompanyPatch) models.Optional[string] { return p.INN }},
	{"kpp", "numeric,len=9", func(p *CompanyPatch) models.Optional[string] { return p.KPP }},
	{"ogrn", "numeric,min=13,max=15", func(p *CompanyPatch) models.Optional[string] { return p.OGRN }},
	{"bik", "numeric,len=9", func(p *CompanyPatch) models.Optional[string] { return p.BIK }},
	{"checking_account", "numeric,len=20", func(p *CompanyPatch) models.Optional[string] { return p.CheckingAccount }},
	{"correspondent_account", "numeric,len=20", func(p *CompanyPatch) models.Optional[string] { return p.CorrespondentAccount }},
}

func (p *CompanyPatch) validate() error {
	if err := notNull("name", p.Name); err != nil {
		return err
	}
	for _, d := range companyDigits {
		if v := textPtr(d.get(p)); v != nil {
			if err := checkVar(d.field, *v, d.tag); err != nil {
				return err
			}
		}
	}
	if v := textPtr(p.Email); v != nil {
		if err := checkVar("email", *v, "email"); err != nil {
			return err
		}
	}
	return nil
}

// changes сравнивает с текущей записью; cur == nil, если реквизитов ещё нет.
func (p *CompanyPatch) changes(cur *models.CompanyInfo) db.Changes {
	if cur == nil {
		cur = &models.CompanyInfo{}
	}
	c := db.Changes{}
	if p.Name.Present() {
		p.Name.Value = strings.TrimSpace(p.Name.Value)
	}
	setField(c, "name", p.Name, &cur.Name)
	setText(c, "inn", p.INN, cur.INN)
	setText(c, "kpp", p.KPP, cur.KPP)
	setText(c, "ogrn", p.OGRN, cur.OGRN)
	setText(c, "bank_name", p.BankName, cur.BankName)
	setText(c, "bik", p.BIK, cur.BIK)
	setText(c, "checking_account", p.CheckingAccount, cur.CheckingAccount)
	setText(c, "correspondent_account", p.CorrespondentAccount, cur.CorrespondentAccount)
	setText(c, "director_name", p.DirectorName, cur.DirectorName)
	setText(c, "phone", p.Phone, cur.Phone)
	setText(c, "email", p.Email, cur.Email)
	setText(c, "address", p.Address, cur.Address)
	return c
}

func (h *Handler) GetCompanyHandler(w http.ResponseWriter, r *http.Request) {
	info, err := h.Store.GetCompanyInfo(r.Context())
	if err != nil {
		writeError(w, r, storageError(err, msgCompanyNotFound))
		return
	}
	writeJSON(w, http.StatusOK, info)
}

// UpdateCompanyHandler создаёт реквизиты при первой записи, дальше обновляет.
func (h *Handler) UpdateCompanyHandler(w http.ResponseWriter, r *http.Request) {
	var p CompanyPatch
	if err := decodeJSON(w, r, &p); err != nil {
		writeError(w, r, err)
		return
	}
	if err := p.validate(); err != nil {
		writeError(w, r, err)
		return
	}

	cur, err := h.Store.GetCompanyInfo(r.Context())
	if err != nil && !errors.Is(err, db.ErrNotFound) {
		writeError(w, r, storageError(err, msgCompanyNotFound))
		return
	}
	info, err := h.Store.UpsertCompanyInfo(r.Context(), p.changes(cur))
	if err != nil {
		writeError(w, r, storageError(err, msgCompanyNotFound))
		return
	}
	writeJSON(w, http.StatusOK, info)
}
