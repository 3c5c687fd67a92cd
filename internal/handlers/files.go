package handlers

import (
	"net/http"
	"strings"

	"tendercrm/db"
	"tendercrm/internal/apperr"
	"tendercrm/models"
)

type FilePatch struct {
	Name        models.Optional[string] `json:"name"`
	Description models.Optional[string] `json:"description"`
	URL         models.Optional[string] `json:"url"`
	FileType    models.Optional[string] `json:"file_type"`
	IsDefault   models.Optional[bool]   `json:"is_default"`
}

func (p *FilePatch) validate() error {
	if err := firstErr(
		notNull("name", p.Name),
		notNull("url", p.URL),
		notNull("is_default", p.IsDefault),
	); err != nil {
		return err
	}
	if p.Name.Present() {
		if err := checkVar("name", strings.TrimSpace(p.Name.Value), "required,max=255"); err != nil {
			return err
		}
	}
	if p.URL.Present() {
		if err := checkVar("url", strings.TrimSpace(p.URL.Value), "required,url"); err != nil {
			return err
		}
	}
	return nil
}

func (h *Handler) GetFilesHandler(w http.ResponseWriter, r *http.Request) {
	files, err := h.Store.GetFiles(r.Context())
	if err != nil {
		writeError(w, r, storageError(err, msgFileNotFound))
		return
	}
	writeJSON(w, http.StatusOK, files)
}

func (h *Handler) GetFileHandler(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	f, err := h.Store.GetFile(r.Context(), id)
	if err != nil {
		writeError(w, r, storageError(err, msgFileNotFound))
		return
	}
	writeJSON(w, http.StatusOK, f)
}

func (h *Handler) CreateFileHandler(w http.ResponseWriter, r *http.Request) {
	s, err := session(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	var p FilePatch
	if err := decodeJSON(w, r, &p); err != nil {
		writeError(w, r, err)
		return
	}
	if err := p.validate(); err != nil {
		writeError(w, r, err)
		return
	}
	missing := map[string]string{}
	if !p.Name.Present() {
		missing["name"] = "required"
	}
	if !p.URL.Present() {
		missing["url"] = "required"
	}
	if len(missing) > 0 {
		writeError(w, r, apperr.InvalidFields("Ошибка валидации", missing))
		return
	}

	f := &models.DownloadableFile{
		Name:        strings.TrimSpace(p.Name.Value),
		Description: textPtr(p.Description),
		URL:         strings.TrimSpace(p.URL.Value),
		FileType:    textPtr(p.FileType),
		IsDefault:   p.IsDefault.Present() && p.IsDefault.Value,
		OwnerID:     &s.UserID,
	}
	if err := h.Store.CreateFile(r.Context(), f); err != nil {
		writeError(w, r, storageError(err, msgFileNotFound))
		return
	}
	writeJSON(w, http.StatusCreated, f)
}

func (h *Handler) UpdateFileHandler(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var p FilePatch
	if err := decodeJSON(w, r, &p); err != nil {
		writeError(w, r, err)
		return
	}
	if err := p.validate(); err != nil {
		writeError(w, r, err)
		return
	}
	cur, err := h.Store.GetFile(r.Context(), id)
	if err != nil {
		writeError(w, r, storageError(err, msgFileNotFound))
		return
	}

	if p.Name.Present() {
		p.Name.Value = strings.TrimSpace(p.Name.Value)
	}
	if p.URL.Present() {
		p.URL.Value = strings.TrimSpace(p.URL.Value)
	}
	c := db.Changes{}
	setField(c, "name", p.Name, &cur.Name)
	setText(c, "description", p.Description, cur.Description)
	setField(c, "url", p.URL, &cur.URL)
	setText(c, "file_type", p.FileType, cur.FileType)
	setField(c, "is_default", p.IsDefault, &cur.IsDefault)

	f, err := h.Store.UpdateFile(r.Context(), id, c)
	if err != nil {
		writeError(w, r, storageError(err, msgFileNotFound))
		return
	}
	writeJSON(w, http.StatusOK, f)
}

func (h *Handler) DeleteFileHandler(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.Store.DeleteFile(r.Context(), id); err != nil {
		writeError(w, r, storageError(err, msgFileNotFound))
		return
	}
	writeJSON(w, http.StatusOK, messageBody{Message: "Файл успешно удален"})
}
