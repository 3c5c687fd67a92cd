package models

import (
	"strings"
	"time"
)

// Role пользователя
type Role string

const (
	RoleAdmin Role = "admin"
	RoleUser  Role = "user"
)

func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleUser
}

// NormalizeEmail приводит email к виду, в котором он хранится: без пробелов
// по краям и в нижнем регистре.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Сущность Тендера
type Tender struct {
	ID                       int       `db:"id" json:"id"`
	Title                    string    `db:"title" json:"title"`
	Link                     *string   `db:"link" json:"link"`
	Status                   Status    `db:"status" json:"status"`
	PublishDate              *DateTime `db:"publish_date" json:"publish_date"`
	Deadline                 *DateTime `db:"deadline" json:"deadline"`
	SubmissionDate           *DateTime `db:"submission_date" json:"submission_date"`
	ReviewDate               *DateTime `db:"review_date" json:"review_date"`
	CompletionDeadline       *DateTime `db:"completion_deadline" json:"completion_deadline"`
	Amount                   *float64  `db:"amount" json:"amount"`
	WinAmount                *float64  `db:"win_amount" json:"win_amount"`
	WinnerPrice              *float64  `db:"winner_price" json:"winner_price"`
	ContractGuaranteePercent *float64  `db:"contract_guarantee_percent" json:"contract_guarantee_percent"`
	Comment                  *string   `db:"comment" json:"comment"`
	IsArchived               bool      `db:"is_archived" json:"is_archived"`
	ArchivedAt               *DateTime `db:"archived_at" json:"archived_at"`
	OwnerID                  *int      `db:"owner_id" json:"owner_id"`
	CreatedAt                time.Time `db:"created_at" json:"created_at"`
	UpdatedAt                time.Time `db:"updated_at" json:"updated_at"`
}

// ContractGuaranteeAmount считается от цены подачи, а до подачи от начальной цены.
func (t *Tender) ContractGuaranteeAmount() *float64 {
	if t.ContractGuaranteePercent == nil {
		return nil
	}
	base := t.WinAmount
	if base == nil {
		base = t.Amount
	}
	if base == nil {
		return nil
	}
	v := Round2(*base * *t.ContractGuaranteePercent / 100)
	return &v
}

// Сущность Поставщика
type Supplier struct {
	ID            int       `db:"id" json:"id"`
	Name          string    `db:"name" json:"name"`
	ContactPerson *string   `db:"contact_person" json:"contact_person"`
	Phone         *string   `db:"phone" json:"phone"`
	Email         *string   `db:"email" json:"email"`
	Address       *string   `db:"address" json:"address"`
	INN           *string   `db:"inn" json:"inn"`
	Website       *string   `db:"website" json:"website"`
	Notes         *string   `db:"notes" json:"notes"`
	OwnerID       *int      `db:"owner_id" json:"owner_id"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time `db:"updated_at" json:"updated_at"`
}

// Сущность Расхода, всегда принадлежит тендеру
type Expense struct {
	ID          int       `db:"id" json:"id"`
	TenderID    int       `db:"tender_id" json:"tender_id"`
	Amount      float64   `db:"amount" json:"amount"`
	Description *string   `db:"description" json:"description"`
	Category    *string   `db:"category" json:"category"`
	Date        DateTime  `db:"date" json:"date"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

// Сущность Напоминания
type Reminder struct {
	ID          int          `db:"id" json:"id"`
	TenderID    int          `db:"tender_id" json:"tender_id"`
	Type        ReminderType `db:"type" json:"type"`
	DateTime    DateTime     `db:"datetime" json:"datetime"`
	Description *string      `db:"description" json:"description"`
	Completed   bool         `db:"completed" json:"completed"`
	IsAuto      bool         `db:"is_auto" json:"is_auto"`
	OwnerID     *int         `db:"owner_id" json:"owner_id"`
	CreatedAt   time.Time    `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time    `db:"updated_at" json:"updated_at"`
}

// Реквизиты компании (одна строка)
type CompanyInfo struct {
	ID                   int       `db:"id" json:"-"`
	Name                 string    `db:"name" json:"name"`
	INN                  *string   `db:"inn" json:"inn"`
	KPP                  *string   `db:"kpp" json:"kpp"`
	OGRN                 *string   `db:"ogrn" json:"ogrn"`
	BankName             *string   `db:"bank_name" json:"bank_name"`
	BIK                  *string   `db:"bik" json:"bik"`
	CheckingAccount      *string   `db:"checking_account" json:"checking_account"`
	CorrespondentAccount *string   `db:"correspondent_account" json:"correspondent_account"`
	DirectorName         *string   `db:"director_name" json:"director_name"`
	Phone                *string   `db:"phone" json:"phone"`
	Email                *string   `db:"email" json:"email"`
	Address              *string   `db:"address" json:"address"`
	UpdatedAt            time.Time `db:"updated_at" json:"updated_at"`
}

// Пользователь
type User struct {
	ID           int       `db:"id" json:"id"`
	Email        string    `db:"email" json:"email"`
	PasswordHash string    `db:"password_hash" json:"-"`
	Role         Role      `db:"role" json:"role"`
	FullName     *string   `db:"full_name" json:"full_name"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

// Файл для скачивания (шаблоны документов и т.п.)
type DownloadableFile struct {
	ID          int       `db:"id" json:"id"`
	Name        string    `db:"name" json:"name"`
	Description *string   `db:"description" json:"description"`
	URL         string    `db:"url" json:"url"`
	FileType    *string   `db:"file_type" json:"file_type"`
	IsDefault   bool      `db:"is_default" json:"is_default"`
	UploadDate  time.Time `db:"upload_date" json:"upload_date"`
	OwnerID     *int      `db:"owner_id" json:"owner_id"`
}
