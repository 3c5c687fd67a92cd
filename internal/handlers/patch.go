package handlers

import (
	"strings"

	"tendercrm/db"
	"tendercrm/internal/apperr"
	"tendercrm/models"
)

// Правило частичного обновления одно для всех ресурсов:
// если поля нет в JSON, не трогаем его, явный null очищает.

// setField кладёт в c изменение колонки, если значение отличается от текущего.
// cur == nil означает, что сейчас в колонке NULL.
func setField[T comparable](c db.Changes, col string, o models.Optional[T], cur *T) {
	if !o.Set {
		return
	}
	if o.Null {
		if cur != nil {
			c[col] = nil
		}
		return
	}
	if cur == nil || *cur != o.Value {
		c[col] = o.Value
	}
}

// setDate делает то же для дат, сравнивая моменты времени, а не представление.
func setDate(c db.Changes, col string, o models.Optional[models.DateTime], cur *models.DateTime) {
	if !o.Set {
		return
	}
	if o.Null {
		if cur != nil {
			c[col] = nil
		}
		return
	}
	if cur == nil || !cur.Time.Equal(o.Value.Time) {
		c[col] = o.Value
	}
}

// setText: строковое поле, допускающее NULL. Значение обрезается по краям,
// пустая строка сохраняется как NULL.
func setText(c db.Changes, col string, o models.Optional[string], cur *string) {
	if o.Present() {
		if v := strings.TrimSpace(o.Value); v == "" {
			o = models.Null[string]()
		} else {
			o = models.Some(v)
		}
	}
	setField(c, col, o, cur)
}

// notNull запрещает явный null для обязательного поля.
func notNull[T any](field string, o models.Optional[T]) error {
	if o.Set && o.Null {
		return apperr.InvalidFields("Поле не может быть пустым", map[string]string{field: "required"})
	}
	return nil
}

// nonNegative проверяет денежные поля.
func nonNegative(field string, o models.Optional[float64]) error {
	if o.Present() && o.Value < 0 {
		return apperr.InvalidFields("Сумма не может быть отрицательной", map[string]string{field: "gte"})
	}
	return nil
}

func firstErr(errs ...error) error {
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}

// textPtr возвращает nil для отсутствующего, null или пустого значения.
func textPtr(o models.Optional[string]) *string {
	if !o.Present() || strings.TrimSpace(o.Value) == "" {
		return nil
	}
	v := strings.TrimSpace(o.Value)
	return &v
}

func optPtr[T any](o models.Optional[T]) *T {
	if !o.Present() {
		return nil
	}
	return o.Ptr()
}
