package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"reflect"
	"strconv"
	"strings"

	"tendercrm/db"
	"tendercrm/internal/apperr"
	"tendercrm/internal/logger"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
)

// Ограничение размера тела, чтобы избежать DoS
const maxBodyBytes = 1 << 20

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// в ошибках используем имена полей из json
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

type errorBody struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields,omitempty"`
}

type messageBody struct {
	Message string `json:"message"`
}

// writeError отвечает {"error": ...}. Внутренние ошибки логируются,
// клиент видит только общий текст.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	e := apperr.From(err)
	status := apperr.HTTPStatus(e)
	if status >= http.StatusInternalServerError {
		logger.FromRequest(r).WithError(err).WithField("path", r.URL.Path).Error("request failed")
	}
	writeJSON(w, status, errorBody{Error: e.Message, Fields: e.Fields})
}

// decodeJSON читает тело запроса в dst.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	defer r.Body.Close()

	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(dst); err != nil {
		var maxErr *http.MaxBytesError
		switch {
		case errors.As(err, &maxErr):
			return apperr.Validation("Слишком большой запрос")
		case errors.Is(err, io.EOF):
			return apperr.Validation("Пустое тело запроса")
		default:
			return &apperr.Error{Kind: apperr.KindValidation, Message: "Некорректный JSON", Err: err}
		}
	}
	return nil
}

// validateStruct прогоняет теги validate и собирает ошибки по полям.
func validateStruct(v interface{}) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return apperr.Internal(err)
	}
	fields := make(map[string]string, len(ve))
	for _, fe := range ve {
		fields[fe.Field()] = fe.Tag()
	}
	return apperr.InvalidFields("Ошибка валидации", fields)
}

// checkVar проверяет одно значение правилом validator'а.
func checkVar(field string, value interface{}, tag string) error {
	if err := validate.Var(value, tag); err != nil {
		return apperr.InvalidFields("Ошибка валидации", map[string]string{field: tag})
	}
	return nil
}

// parseID достаёт положительный целый параметр пути.
func parseID(r *http.Request, name string) (int, error) {
	id, err := strconv.Atoi(chi.URLParam(r, name))
	if err != nil || id <= 0 {
		return 0, apperr.Validation("Некорректный идентификатор")
	}
	return id, nil
}

// storageError переводит ошибки db в ошибки API.
func storageError(err error, notFound string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, db.ErrNotFound):
		return apperr.NotFound(notFound)
	case errors.Is(err, db.ErrConflict):
		return &apperr.Error{Kind: apperr.KindConflict, Message: "Запись уже существует", Err: err}
	case errors.Is(err, db.ErrForeignKey):
		return &apperr.Error{Kind: apperr.KindNotFound, Message: "Тендер не найден", Err: err}
	}
	var e *apperr.Error
	if errors.As(err, &e) {
		return e
	}
	return apperr.Internal(err)
}

// Сообщения 404 по ресурсам
const (
	msgTenderNotFound   = "Тендер не найден"
	msgSupplierNotFound = "Поставщик не найден"
	msgReminderNotFound = "Напоминание не найдено"
	msgExpenseNotFound  = "Расход не найден"
	msgCompanyNotFound  = "Информация о компании не найдена"
	msgFileNotFound     = "Файл не найден"
	msgUserNotFound     = "Пользователь не найден"
)
