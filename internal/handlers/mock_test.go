package handlers_test

import (
	"context"
	"reflect"
	"sort"
	"strings"
	"sync"
	"time"

	"tendercrm/db"
	"tendercrm/internal/handlers"
	"tendercrm/models"
)

// MockStorage реализует StorageInterface в памяти
// с теми же ошибками, что и db.Storage.
type MockStorage struct {
	mu     sync.Mutex
	nextID int
	now    time.Time

	tenders   map[int]*models.Tender
	suppliers map[int]*models.Supplier
	reminders map[int]*models.Reminder
	expenses  map[int]*models.Expense
	users     map[int]*models.User
	files     map[int]*models.DownloadableFile
	company   *models.CompanyInfo

	pingErr error
}

var _ handlers.StorageInterface = (*MockStorage)(nil)

func NewMockStorage(now time.Time) *MockStorage {
	return &MockStorage{
		now:       now,
		tenders:   map[int]*models.Tender{},
		suppliers: map[int]*models.Supplier{},
		reminders: map[int]*models.Reminder{},
		expenses:  map[int]*models.Expense{},
		users:     map[int]*models.User{},
		files:     map[int]*models.DownloadableFile{},
	}
}

func (m *MockStorage) id() int {
	m.nextID++
	return m.nextID
}

// applyChanges раскладывает Changes по полям с тегом db.
func applyChanges(dst interface{}, c db.Changes) {
	v := reflect.ValueOf(dst).Elem()
	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		val, ok := c[t.Field(i).Tag.Get("db")]
		if !ok {
			continue
		}
		f := v.Field(i)
		if val == nil {
			f.Set(reflect.Zero(f.Type()))
			continue
		}
		rv := reflect.ValueOf(val)
		if f.Kind() == reflect.Ptr {
			p := reflect.New(f.Type().Elem())
			p.Elem().Set(rv.Convert(f.Type().Elem()))
			f.Set(p)
			continue
		}
		f.Set(rv.Convert(f.Type()))
	}
}

func (m *MockStorage) Ping(ctx context.Context) error { return m.pingErr }

// тендеры

func (m *MockStorage) GetTenders(ctx context.Context, f db.TenderFilter) ([]models.Tender, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []models.Tender{}
	for _, t := range m.tenders {
		if len(f.Statuses) > 0 && !containsStatus(f.Statuses, t.Status) {
			continue
		}
		if f.Archived != nil && t.IsArchived != *f.Archived {
			continue
		}
		if q := strings.ToLower(strings.TrimSpace(f.Query)); q != "" && !strings.Contains(strings.ToLower(t.Title), q) {
			continue
		}
		out = append(out, *t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	if f.Offset > 0 {
		if f.Offset >= len(out) {
			return []models.Tender{}, nil
		}
		out = out[f.Offset:]
	}
	if f.Limit > 0 && len(out) > f.Limit {
		out = out[:f.Limit]
	}
	return out, nil
}

func containsStatus(list []models.Status, s models.Status) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func (m *MockStorage) GetTender(ctx context.Context, id int) (*models.Tender, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.tenders[id]
	if !ok {
		return nil, db.ErrNotFound
	}
	cp := *t
	return &cp, nil
}

func (m *MockStorage) CreateTender(ctx context.Context, t *models.Tender, auto *models.Reminder) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	t.ID = m.id()
	t.CreatedAt, t.UpdatedAt = m.now, m.now
	cp := *t
	m.tenders[t.ID] = &cp
	if auto != nil {
		auto.TenderID = t.ID
		auto.IsAuto = true
		m.addReminder(auto)
	}
	return nil
}

func (m *MockStorage) UpdateTender(ctx context.Context, id int, plan db.TenderPlanner) (*models.Tender, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.tenders[id]
	if !ok {
		return nil, db.ErrNotFound
	}
	cur := *t
	up, err := plan(&cur)
	if err != nil {
		return nil, err
	}
	if len(up.Changes) > 0 {
		applyChanges(&cur, up.Changes)
		cur.UpdatedAt = m.now
	}

	switch up.Reminder {
	case db.ReminderUpsert:
		at := models.NewDateTime(up.ReminderAt)
		text := up.ReminderText
		if r := m.autoReminder(id); r != nil {
			r.DateTime, r.Description = at, &text
		} else {
			m.addReminder(&models.Reminder{
				TenderID:    id,
				Type:        models.ReminderSubmission,
				DateTime:    at,
				Description: &text,
				IsAuto:      true,
				OwnerID:     cur.OwnerID,
			})
		}
	case db.ReminderDrop:
		for rid, r := range m.reminders {
			if r.TenderID == id && r.IsAuto {
				delete(m.reminders, rid)
			}
		}
	}

	m.tenders[id] = &cur
	out := cur
	return &out, nil
}

func (m *MockStorage) autoReminder(tenderID int) *models.Reminder {
	for _, r := range m.reminders {
		if r.TenderID == tenderID && r.IsAuto {
			return r
		}
	}
	return nil
}

func (m *MockStorage) DeleteTender(ctx context.Context, id int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.tenders[id]; !ok {
		return db.ErrNotFound
	}
	delete(m.tenders, id)
	for eid, e := range m.expenses {
		if e.TenderID == id {
			delete(m.expenses, eid)
		}
	}
	for rid, r := range m.reminders {
		if r.TenderID == id {
			delete(m.reminders, rid)
		}
	}
	return nil
}

func (m *MockStorage) CountTendersByStatus(ctx context.Context) (map[models.Status]int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	counts := map[models.Status]int{}
	for _, t := range m.tenders {
		if !t.IsArchived {
			counts[t.Status]++
		}
	}
	return counts, nil
}

// поставщики

func (m *MockStorage) GetSuppliers(ctx context.Context, q string) ([]models.Supplier, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	q = strings.ToLower(strings.TrimSpace(q))
	out := []models.Supplier{}
	for _, s := range m.suppliers {
		if q != "" && !strings.Contains(strings.ToLower(s.Name), q) {
			continue
		}
		out = append(out, *s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (m *MockStorage) GetSupplier(ctx context.Context, id int) (*models.Supplier, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.suppliers[id]
	if !ok {
		return nil, db.ErrNotFound
	}
	cp := *s
	return &cp, nil
}

func (m *MockStorage) CreateSupplier(ctx context.Context, s *models.Supplier) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s.ID = m.id()
	s.CreatedAt, s.UpdatedAt = m.now, m.now
	cp := *s
	m.suppliers[s.ID] = &cp
	return nil
}

func (m *MockStorage) UpdateSupplier(ctx context.Context, id int, c db.Changes) (*models.Supplier, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.suppliers[id]
	if !ok {
		return nil, db.ErrNotFound
	}
	if len(c) > 0 {
		applyChanges(s, c)
		s.UpdatedAt = m.now
	}
	cp := *s
	return &cp, nil
}

func (m *MockStorage) DeleteSupplier(ctx context.Context, id int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.suppliers[id]; !ok {
		return db.ErrNotFound
	}
	delete(m.suppliers, id)
	return nil
}

// напоминания

func (m *MockStorage) GetReminders(ctx context.Context, f db.ReminderFilter) ([]models.Reminder, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []models.Reminder{}
	for _, r := range m.reminders {
		if f.TenderID != nil && r.TenderID != *f.TenderID {
			continue
		}
		if f.Completed != nil && r.Completed != *f.Completed {
			continue
		}
		if f.Type != nil && r.Type != *f.Type {
			continue
		}
		out = append(out, *r)
	}
	sortReminders(out)
	return out, nil
}

func sortReminders(rs []models.Reminder) {
	sort.Slice(rs, func(i, j int) bool {
		if rs[i].DateTime.Equal(rs[j].DateTime.Time) {
			return rs[i].ID < rs[j].ID
		}
		return rs[i].DateTime.Before(rs[j].DateTime.Time)
	})
}

func (m *MockStorage) UpcomingReminders(ctx context.Context, from time.Time, limit int) ([]models.Reminder, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []models.Reminder{}
	for _, r := range m.reminders {
		if !r.Completed && r.DateTime.After(from) {
			out = append(out, *r)
		}
	}
	sortReminders(out)
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *MockStorage) GetReminder(ctx context.Context, id int) (*models.Reminder, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.reminders[id]
	if !ok {
		return nil, db.ErrNotFound
	}
	cp := *r
	return &cp, nil
}

func (m *MockStorage) CreateReminder(ctx context.Context, r *models.Reminder) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.tenders[r.TenderID]; !ok {
		return db.ErrForeignKey
	}
	m.addReminder(r)
	return nil
}

func (m *MockStorage) addReminder(r *models.Reminder) {
	r.ID = m.id()
	r.CreatedAt, r.UpdatedAt = m.now, m.now
	cp := *r
	m.reminders[r.ID] = &cp
}

func (m *MockStorage) UpdateReminder(ctx context.Context, id int, c db.Changes) (*models.Reminder, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.reminders[id]
	if !ok {
		return nil, db.ErrNotFound
	}
	if tid, ok := c["tender_id"].(int); ok {
		if _, exists := m.tenders[tid]; !exists {
			return nil, db.ErrForeignKey
		}
	}
	if len(c) > 0 {
		applyChanges(r, c)
		r.UpdatedAt = m.now
	}
	cp := *r
	return &cp, nil
}

func (m *MockStorage) DeleteReminder(ctx context.Context, id int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.reminders[id]; !ok {
		return db.ErrNotFound
	}
	delete(m.reminders, id)
	return nil
}

// расходы

func (m *MockStorage) GetExpensesByTender(ctx context.Context, tenderID int) ([]models.Expense, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []models.Expense{}
	for _, e := range m.expenses {
		if e.TenderID == tenderID {
			out = append(out, *e)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Date.Equal(out[j].Date.Time) {
			return out[i].ID > out[j].ID
		}
		return out[i].Date.After(out[j].Date.Time)
	})
	return out, nil
}

func (m *MockStorage) ExpenseTotals(ctx context.Context, tenderIDs []int) (map[int]float64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	totals := map[int]float64{}
	for _, id := range tenderIDs {
		for _, e := range m.expenses {
			if e.TenderID == id {
				totals[id] += e.Amount
			}
		}
	}
	return totals, nil
}

func (m *MockStorage) GetExpense(ctx context.Context, id int) (*models.Expense, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.expenses[id]
	if !ok {
		return nil, db.ErrNotFound
	}
	cp := *e
	return &cp, nil
}

func (m *MockStorage) CreateExpense(ctx context.Context, e *models.Expense) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.tenders[e.TenderID]; !ok {
		return db.ErrForeignKey
	}
	e.ID = m.id()
	e.CreatedAt = m.now
	cp := *e
	m.expenses[e.ID] = &cp
	return nil
}

func (m *MockStorage) UpdateExpense(ctx context.Context, id int, c db.Changes) (*models.Expense, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.expenses[id]
	if !ok {
		return nil, db.ErrNotFound
	}
	applyChanges(e, c)
	cp := *e
	return &cp, nil
}

func (m *MockStorage) DeleteExpense(ctx context.Context, id int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.expenses[id]; !ok {
		return db.ErrNotFound
	}
	delete(m.expenses, id)
	return nil
}

// компания

func (m *MockStorage) GetCompanyInfo(ctx context.Context) (*models.CompanyInfo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.company == nil {
		return nil, db.ErrNotFound
	}
	cp := *m.company
	return &cp, nil
}

func (m *MockStorage) UpsertCompanyInfo(ctx context.Context, c db.Changes) (*models.CompanyInfo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.company == nil {
		m.company = &models.CompanyInfo{ID: 1}
	}
	applyChanges(m.company, c)
	m.company.UpdatedAt = m.now
	cp := *m.company
	return &cp, nil
}

// пользователи

func (m *MockStorage) CreateUser(ctx context.Context, u *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u.Email = models.NormalizeEmail(u.Email)
	for _, existing := range m.users {
		if existing.Email == u.Email {
			return db.ErrConflict
		}
	}
	u.ID = m.id()
	u.CreatedAt, u.UpdatedAt = m.now, m.now
	cp := *u
	m.users[u.ID] = &cp
	return nil
}

func (m *MockStorage) GetUser(ctx context.Context, id int) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return nil, db.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (m *MockStorage) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	email = models.NormalizeEmail(email)
	for _, u := range m.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, db.ErrNotFound
}

func (m *MockStorage) GetUsers(ctx context.Context) ([]models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []models.User{}
	for _, u := range m.users {
		out = append(out, *u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Email < out[j].Email })
	return out, nil
}

func (m *MockStorage) UpdateUser(ctx context.Context, id int, c db.Changes) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return nil, db.ErrNotFound
	}
	if email, ok := c["email"].(string); ok {
		email = models.NormalizeEmail(email)
		for uid, other := range m.users {
			if uid != id && other.Email == email {
				return nil, db.ErrConflict
			}
		}
		c["email"] = email
	}
	if len(c) > 0 {
		applyChanges(u, c)
		u.UpdatedAt = m.now
	}
	cp := *u
	return &cp, nil
}

func (m *MockStorage) DeleteUser(ctx context.Context, id int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[id]; !ok {
		return db.ErrNotFound
	}
	delete(m.users, id)
	return nil
}

// файлы

func (m *MockStorage) CountFiles(ctx context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.files), nil
}

func (m *MockStorage) GetFiles(ctx context.Context) ([]models.DownloadableFile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []models.DownloadableFile{}
	for _, f := range m.files {
		out = append(out, *f)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].IsDefault != out[j].IsDefault {
			return out[i].IsDefault
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

func (m *MockStorage) GetFile(ctx context.Context, id int) (*models.DownloadableFile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	f, ok := m.files[id]
	if !ok {
		return nil, db.ErrNotFound
	}
	cp := *f
	return &cp, nil
}

func (m *MockStorage) CreateFile(ctx context.Context, f *models.DownloadableFile) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	f.ID = m.id()
	f.UploadDate = m.now
	cp := *f
	m.files[f.ID] = &cp
	return nil
}

func (m *MockStorage) UpdateFile(ctx context.Context, id int, c db.Changes) (*models.DownloadableFile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	f, ok := m.files[id]
	if !ok {
		return nil, db.ErrNotFound
	}
	applyChanges(f, c)
	cp := *f
	return &cp, nil
}

func (m *MockStorage) DeleteFile(ctx context.Context, id int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.files[id]; !ok {
		return db.ErrNotFound
	}
	delete(m.files, id)
	return nil
}

// вспомогательное для тестов: наполнение без HTTP

func (m *MockStorage) putTender(t models.Tender) *models.Tender {
	m.mu.Lock()
	defer m.mu.Unlock()
	t.ID = m.id()
	if t.Status == "" {
		t.Status = models.StatusNew
	}
	t.CreatedAt, t.UpdatedAt = m.now, m.now
	m.tenders[t.ID] = &t
	cp := t
	return &cp
}

func (m *MockStorage) putExpense(tenderID int, amount float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := m.id()
	m.expenses[id] = &models.Expense{ID: id, TenderID: tenderID, Amount: amount, Date: models.NewDateTime(m.now), CreatedAt: m.now}
}

func (m *MockStorage) remindersOf(tenderID int) []models.Reminder {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []models.Reminder{}
	for _, r := range m.reminders {
		if r.TenderID == tenderID {
			out = append(out, *r)
		}
	}
	sortReminders(out)
	return out
}
