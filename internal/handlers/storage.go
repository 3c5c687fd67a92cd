package handlers

import (
	"context"
	"time"

	"tendercrm/db"
	"tendercrm/models"
)

type StorageInterface interface {
	Ping(ctx context.Context) error

	GetTenders(ctx context.Context, f db.TenderFilter) ([]models.Tender, error)
	GetTender(ctx context.Context, id int) (*models.Tender, error)
	CreateTender(ctx context.Context, t *models.Tender, auto *models.Reminder) error
	UpdateTender(ctx context.Context, id int, plan db.TenderPlanner) (*models.Tender, error)
	DeleteTender(ctx context.Context, id int) error
	CountTendersByStatus(ctx context.Context) (map[models.Status]int, error)

	GetSuppliers(ctx context.Context, q string) ([]models.Supplier, error)
	GetSupplier(ctx context.Context, id int) (*models.Supplier, error)
	CreateSupplier(ctx context.Context, s *models.Supplier) error
	UpdateSupplier(ctx context.Context, id int, c db.Changes) (*models.Supplier, error)
	DeleteSupplier(ctx context.Context, id int) error

	GetReminders(ctx context.Context, f db.ReminderFilter) ([]models.Reminder, error)
	UpcomingReminders(ctx context.Context, from time.Time, limit int) ([]models.Reminder, error)
	GetReminder(ctx context.Context, id int) (*models.Reminder, error)
	CreateReminder(ctx context.Context, r *models.Reminder) error
	UpdateReminder(ctx context.Context, id int, c db.Changes) (*models.Reminder, error)
	DeleteReminder(ctx context.Context, id int) error

	GetExpensesByTender(ctx context.Context, tenderID int) ([]models.Expense, error)
	ExpenseTotals(ctx context.Context, tenderIDs []int) (map[int]float64, error)
	GetExpense(ctx context.Context, id int) (*models.Expense, error)
	CreateExpense(ctx context.Context, e *models.Expense) error
	UpdateExpense(ctx context.Context, id int, c db.Changes) (*models.Expense, error)
	DeleteExpense(ctx context.Context, id int) error

	GetCompanyInfo(ctx context.Context) (*models.CompanyInfo, error)
	UpsertCompanyInfo(ctx context.Context, c db.Changes) (*models.CompanyInfo, error)

	CreateUser(ctx context.Context, u *models.User) error
	GetUser(ctx context.Context, id int) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUsers(ctx context.Context) ([]models.User, error)
	UpdateUser(ctx context.Context, id int, c db.Changes) (*models.User, error)
	DeleteUser(ctx context.Context, id int) error

	GetFiles(ctx context.Context) ([]models.DownloadableFile, error)
	CountFiles(ctx context.Context) (int, error)
	GetFile(ctx context.Context, id int) (*models.DownloadableFile, error)
	CreateFile(ctx context.Context, f *models.DownloadableFile) error
	UpdateFile(ctx context.Context, id int, c db.Changes) (*models.DownloadableFile, error)
	DeleteFile(ctx context.Context, id int) error
}

var _ StorageInterface = (*db.Storage)(nil)
