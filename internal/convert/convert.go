// Package convert переводит данные между формой хранилища (коды статусов)
// и формой интерфейса (русские подписи, классы цветов).
package convert

import (
	"fmt"
	"strings"
	"time"

	"tendercrm/models"
)

type statusMeta struct {
	Label string
	Color string
}

var statusInfo = map[models.Status]statusMeta{
	models.StatusNew:        {"Новый", "bg-sky-500 text-white font-semibold shadow-sm"},
	models.StatusSubmitted:  {"Подано", "bg-amber-500 text-white font-semibold shadow-sm"},
	models.StatusReview:     {"Рассмотрение", "bg-orange-500 text-white font-semibold shadow-sm"},
	models.StatusWon:        {"Победа", "bg-emerald-600 text-white font-semibold shadow-sm"},
	models.StatusInProgress: {"В работе", "bg-indigo-600 text-white font-semibold shadow-sm"},
	models.StatusCompleted:  {"Завершён - Оплачен", "bg-[#E8F5E9] text-[#388E3C] font-semibold border border-[#388E3C]"},
	models.StatusLost:       {"Проигран", "bg-[#FFEBEE] text-[#C62828] font-semibold border border-[#C62828]"},
}

const fallbackColor = "bg-gray-500 text-white"

var statusByLabel = func() map[string]models.Status {
	m := make(map[string]models.Status, len(statusInfo))
	for code, meta := range statusInfo {
		m[meta.Label] = code
	}
	return m
}()

func StatusLabel(s models.Status) string {
	if meta, ok := statusInfo[s]; ok {
		return meta.Label
	}
	return string(s)
}

func StatusColor(s models.Status) string {
	if meta, ok := statusInfo[s]; ok {
		return meta.Color
	}
	return fallbackColor
}

// ParseStatus принимает код статуса или русскую подпись.
func ParseStatus(v string) (models.Status, error) {
	v = strings.TrimSpace(v)
	if s := models.Status(v); s.Valid() {
		return s, nil
	}
	if s, ok := statusByLabel[v]; ok {
		return s, nil
	}
	return "", fmt.Errorf("unknown status %q", v)
}

// StatusInfo: элемент справочника статусов для интерфейса.
type StatusInfo struct {
	Code  models.Status   `json:"code"`
	Label string          `json:"label"`
	Color string          `json:"color"`
	Next  []models.Status `json:"next"`
}

// StatusCatalog возвращает все статусы в порядке жизненного цикла.
func StatusCatalog() []StatusInfo {
	out := make([]StatusInfo, 0, len(models.Statuses))
	for _, s := range models.Statuses {
		out = append(out, StatusInfo{
			Code:  s,
			Label: StatusLabel(s),
			Color: StatusColor(s),
			Next:  s.Next(),
		})
	}
	return out
}

var reminderTypeLabels = map[models.ReminderType]string{
	models.ReminderSubmission: "Подача заявки",
	models.ReminderReview:     "Рассмотрение",
	models.ReminderOther:      "Другое",
}

func ReminderTypeLabel(t models.ReminderType) string {
	if l, ok := reminderTypeLabels[t]; ok {
		return l
	}
	return string(t)
}

// ParseReminderType принимает код типа или подпись.
func ParseReminderType(v string) (models.ReminderType, error) {
	v = strings.TrimSpace(v)
	if t := models.ReminderType(v); t.Valid() {
		return t, nil
	}
	for t, l := range reminderTypeLabels {
		if l == v {
			return t, nil
		}
	}
	return "", fmt.Errorf("unknown reminder type %q", v)
}

// TenderView: тендер в форме интерфейса, статус русской подписью,
// сумма обеспечения уже посчитана.
type TenderView struct {
	ID                       int              `json:"id"`
	Title                    string           `json:"title"`
	Link                     *string          `json:"link"`
	Status                   string           `json:"status"`
	StatusColor              string           `json:"status_color"`
	PublishDate              *models.DateTime `json:"publish_date"`
	Deadline                 *models.DateTime `json:"deadline"`
	SubmissionDate           *models.DateTime `json:"submission_date"`
	ReviewDate               *models.DateTime `json:"review_date"`
	CompletionDeadline       *models.DateTime `json:"completion_deadline"`
	Amount                   *float64         `json:"amount"`
	WinAmount                *float64         `json:"win_amount"`
	WinnerPrice              *float64         `json:"winner_price"`
	ContractGuaranteePercent *float64         `json:"contract_guarantee_percent"`
	ContractGuaranteeAmount  *float64         `json:"contract_guarantee_amount"`
	Comment                  *string          `json:"comment"`
	IsArchived               bool             `json:"is_archived"`
	ArchivedAt               *models.DateTime `json:"archived_at"`
	OwnerID                  *int             `json:"owner_id"`
	CreatedAt                time.Time        `json:"created_at"`
	UpdatedAt                time.Time        `json:"updated_at"`
}

func TenderToView(t models.Tender) TenderView {
	return TenderView{
		ID:                       t.ID,
		Title:                    t.Title,
		Link:                     t.Link,
		Status:                   StatusLabel(t.Status),
		StatusColor:              StatusColor(t.Status),
		PublishDate:              t.PublishDate,
		Deadline:                 t.Deadline,
		SubmissionDate:           t.SubmissionDate,
		ReviewDate:               t.ReviewDate,
		CompletionDeadline:       t.CompletionDeadline,
		Amount:                   t.Amount,
		WinAmount:                t.WinAmount,
		WinnerPrice:              t.WinnerPrice,
		ContractGuaranteePercent: t.ContractGuaranteePercent,
		ContractGuaranteeAmount:  t.ContractGuaranteeAmount(),
		Comment:                  t.Comment,
		IsArchived:               t.IsArchived,
		ArchivedAt:               t.ArchivedAt,
		OwnerID:                  t.OwnerID,
		CreatedAt:                t.CreatedAt,
		UpdatedAt:                t.UpdatedAt,
	}
}

// TenderFromView: обратное преобразование. Производные поля отбрасываются.
func TenderFromView(v TenderView) (models.Tender, error) {
	status, err := ParseStatus(v.Status)
	if err != nil {
		return models.Tender{}, err
	}
	return models.Tender{
		ID:                       v.ID,
		Title:                    v.Title,
		Link:                     v.Link,
		Status:                   status,
		PublishDate:              v.PublishDate,
		Deadline:                 v.Deadline,
		SubmissionDate:           v.SubmissionDate,
		ReviewDate:               v.ReviewDate,
		CompletionDeadline:       v.CompletionDeadline,
		Amount:                   v.Amount,
		WinAmount:                v.WinAmount,
		WinnerPrice:              v.WinnerPrice,
		ContractGuaranteePercent: v.ContractGuaranteePercent,
		Comment:                  v.Comment,
		IsArchived:               v.IsArchived,
		ArchivedAt:               v.ArchivedAt,
		OwnerID:                  v.OwnerID,
		CreatedAt:                v.CreatedAt,
		UpdatedAt:                v.UpdatedAt,
	}, nil
}

// TenderResponse: тендер в ответе API: поля хранилища плюс подпись статуса
// и сумма обеспечения.
type TenderResponse struct {
	models.Tender
	StatusLabel             string   `json:"status_label"`
	ContractGuaranteeAmount *float64 `json:"contract_guarantee_amount"`
}

func NewTenderResponse(t models.Tender) TenderResponse {
	return TenderResponse{
		Tender:                  t,
		StatusLabel:             StatusLabel(t.Status),
		ContractGuaranteeAmount: t.ContractGuaranteeAmount(),
	}
}

func NewTenderResponses(ts []models.Tender) []TenderResponse {
	out := make([]TenderResponse, 0, len(ts))
	for _, t := range ts {
		out = append(out, NewTenderResponse(t))
	}
	return out
}
