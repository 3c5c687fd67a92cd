package client

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"sync"

	"tendercrm/models"
)

func withQuery(path string, q url.Values) string {
	if len(q) == 0 {
		return path
	}
	return path + "?" + q.Encode()
}

type Tenders struct {
	c     *Client
	cache *collection[models.Tender]
}

// TenderQuery: фильтры списка; пустые поля не передаются.
type TenderQuery struct {
	Statuses []models.Status
	Archived *bool
	Q        string
	Limit    int
	Offset   int
}

func (q TenderQuery) values() url.Values {
	v := url.Values{}
	for _, s := range q.Statuses {
		v.Add("status", string(s))
	}
	if q.Archived != nil {
		v.Set("archived", strconv.FormatBool(*q.Archived))
	}
	if q.Q != "" {
		v.Set("q", q.Q)
	}
	if q.Limit > 0 {
		v.Set("limit", strconv.Itoa(q.Limit))
	}
	if q.Offset > 0 {
		v.Set("offset", strconv.Itoa(q.Offset))
	}
	return v
}

// List загружает тендеры. Кеш заменяется только для запроса без фильтров.
func (t *Tenders) List(ctx context.Context, q TenderQuery) ([]models.Tender, error) {
	var out []models.Tender
	if err := t.c.do(ctx, http.MethodGet, withQuery("/tenders", q.values()), nil, &out); err != nil {
		return nil, err
	}
	if len(q.values()) == 0 {
		t.cache.replace(out)
	}
	return out, nil
}

// Cached возвращает локальную копию и признак того, что она загружена.
func (t *Tenders) Cached() ([]models.Tender, bool) {
	return t.cache.list()
}

func (t *Tenders) Get(ctx context.Context, id int) (*models.Tender, error) {
	var out models.Tender
	if err := t.c.do(ctx, http.MethodGet, "/tenders/"+strconv.Itoa(id), nil, &out); err != nil {
		if IsNotFound(err) {
			t.cache.remove(id)
		}
		return nil, err
	}
	t.cache.put(out)
	return &out, nil
}

func (t *Tenders) Create(ctx context.Context, p Patch) (*models.Tender, error) {
	var out models.Tender
	if err := t.c.do(ctx, http.MethodPost, "/tenders", p, &out); err != nil {
		return nil, err
	}
	t.cache.put(out)
	if out.Deadline != nil {
		t.c.Reminders.cache.invalidate()
	}
	return &out, nil
}

// Update отправляет патч. Сервер мог создать или удалить авто-напоминание,
// поэтому кеш напоминаний помечается устаревшим.
func (t *Tenders) Update(ctx context.Context, id int, p Patch) (*models.Tender, error) {
	var out models.Tender
	if err := t.c.do(ctx, http.MethodPut, "/tenders/"+strconv.Itoa(id), p, &out); err != nil {
		return nil, err
	}
	t.cache.put(out)
	t.c.Reminders.cache.invalidate()
	return &out, nil
}

func (t *Tenders) Delete(ctx context.Context, id int) error {
	if err := t.c.do(ctx, http.MethodDelete, "/tenders/"+strconv.Itoa(id), nil, nil); err != nil {
		return err
	}
	t.cache.remove(id)
	t.c.Reminders.cache.removeWhere(func(r models.Reminder) bool { return r.TenderID == id })
	t.c.Expenses.drop(id)
	return nil
}

type Suppliers struct {
	c     *Client
	cache *collection[models.Supplier]
}

func (s *Suppliers) List(ctx context.Context, q string) ([]models.Supplier, error) {
	v := url.Values{}
	if q != "" {
		v.Set("q", q)
	}
	var out []models.Supplier
	if err := s.c.do(ctx, http.MethodGet, withQuery("/suppliers", v), nil, &out); err != nil {
		return nil, err
	}
	if q == "" {
		s.cache.replace(out)
	}
	return out, nil
}

func (s *Suppliers) Cached() ([]models.Supplier, bool) {
	return s.cache.list()
}

func (s *Suppliers) Create(ctx context.Context, p Patch) (*models.Supplier, error) {
	var out models.Supplier
	if err := s.c.do(ctx, http.MethodPost, "/suppliers", p, &out); err != nil {
		return nil, err
	}
	s.cache.put(out)
	return &out, nil
}

func (s *Suppliers) Update(ctx context.Context, id int, p Patch) (*models.Supplier, error) {
	var out models.Supplier
	if err := s.c.do(ctx, http.MethodPut, "/suppliers/"+strconv.Itoa(id), p, &out); err != nil {
		return nil, err
	}
	s.cache.put(out)
	return &out, nil
}

func (s *Suppliers) Delete(ctx context.Context, id int) error {
	if err := s.c.do(ctx, http.MethodDelete, "/suppliers/"+strconv.Itoa(id), nil, nil); err != nil {
		return err
	}
	s.cache.remove(id)
	return nil
}

type Reminders struct {
	c     *Client
	cache *collection[models.Reminder]
}

// List без аргументов загружает все напоминания и обновляет кеш.
func (r *Reminders) List(ctx context.Context, tenderID int) ([]models.Reminder, error) {
	v := url.Values{}
	if tenderID > 0 {
		v.Set("tender_id", strconv.Itoa(tenderID))
	}
	var out []models.Reminder
	if err := r.c.do(ctx, http.MethodGet, withQuery("/reminders", v), nil, &out); err != nil {
		return nil, err
	}
	if tenderID == 0 {
		r.cache.replace(out)
	}
	return out, nil
}

func (r *Reminders) Cached() ([]models.Reminder, bool) {
	return r.cache.list()
}

func (r *Reminders) Create(ctx context.Context, p Patch) (*models.Reminder, error) {
	var out models.Reminder
	if err := r.c.do(ctx, http.MethodPost, "/reminders", p, &out); err != nil {
		return nil, err
	}
	r.cache.put(out)
	return &out, nil
}

func (r *Reminders) Update(ctx context.Context, id int, p Patch) (*models.Reminder, error) {
	var out models.Reminder
	if err := r.c.do(ctx, http.MethodPut, "/reminders/"+strconv.Itoa(id), p, &out); err != nil {
		return nil, err
	}
	r.cache.put(out)
	return &out, nil
}

func (r *Reminders) Delete(ctx context.Context, id int) error {
	if err := r.c.do(ctx, http.MethodDelete, "/reminders/"+strconv.Itoa(id), nil, nil); err != nil {
		return err
	}
	r.cache.remove(id)
	return nil
}

// Expenses кеширует расходы отдельно по каждому тендеру.
type Expenses struct {
	c *Client

	mu       sync.Mutex
	byTender map[int]*collection[models.Expense]
}

func (e *Expenses) forTender(id int) *collection[models.Expense] {
	e.mu.Lock()
	defer e.mu.Unlock()
	col, ok := e.byTender[id]
	if !ok {
		col = newCollection(func(x models.Expense) int { return x.ID })
		e.byTender[id] = col
	}
	return col
}

func (e *Expenses) drop(tenderID int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	delete(e.byTender, tenderID)
}

func (e *Expenses) reset() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.byTender = map[int]*collection[models.Expense]{}
}

func (e *Expenses) ByTender(ctx context.Context, tenderID int) ([]models.Expense, error) {
	var out []models.Expense
	if err := e.c.do(ctx, http.MethodGet, "/expenses/tender/"+strconv.Itoa(tenderID), nil, &out); err != nil {
		return nil, err
	}
	e.forTender(tenderID).replace(out)
	return out, nil
}

func (e *Expenses) Cached(tenderID int) ([]models.Expense, bool) {
	return e.forTender(tenderID).list()
}

func (e *Expenses) Create(ctx context.Context, p Patch) (*models.Expense, error) {
	var out models.Expense
	if err := e.c.do(ctx, http.MethodPost, "/expenses", p, &out); err != nil {
		return nil, err
	}
	e.forTender(out.TenderID).put(out)
	return &out, nil
}

func (e *Expenses) Update(ctx context.Context, id int, p Patch) (*models.Expense, error) {
	var out models.Expense
	if err := e.c.do(ctx, http.MethodPut, "/expenses/"+strconv.Itoa(id), p, &out); err != nil {
		return nil, err
	}
	e.forTender(out.TenderID).put(out)
	return &out, nil
}

func (e *Expenses) Delete(ctx context.Context, id int) error {
	if err := e.c.do(ctx, http.MethodDelete, "/expenses/"+strconv.Itoa(id), nil, nil); err != nil {
		return err
	}
	e.mu.Lock()
	cols := make([]*collection[models.Expense], 0, len(e.byTender))
	for _, col := range e.byTender {
		cols = append(cols, col)
	}
	e.mu.Unlock()
	for _, col := range cols {
		col.remove(id)
	}
	return nil
}

// Company: реквизиты компании, одна запись.
type Company struct {
	c *Client

	mu   sync.RWMutex
	info *models.CompanyInfo
}

// Get возвращает nil без ошибки, если реквизиты ещё не заполнены.
func (co *Company) Get(ctx context.Context) (*models.CompanyInfo, error) {
	var out models.CompanyInfo
	if err := co.c.do(ctx, http.MethodGet, "/company", nil, &out); err != nil {
		if IsNotFound(err) {
			co.set(nil)
			return nil, nil
		}
		return nil, err
	}
	co.set(&out)
	return &out, nil
}

func (co *Company) Update(ctx context.Context, p Patch) (*models.CompanyInfo, error) {
	var out models.CompanyInfo
	if err := co.c.do(ctx, http.MethodPut, "/company", p, &out); err != nil {
		return nil, err
	}
	co.set(&out)
	return &out, nil
}

func (co *Company) Cached() *models.CompanyInfo {
	co.mu.RLock()
	defer co.mu.RUnlock()
	if co.info == nil {
		return nil
	}
	cp := *co.info
	return &cp
}

func (co *Company) set(info *models.CompanyInfo) {
	co.mu.Lock()
	defer co.mu.Unlock()
	co.info = info
}

func (co *Company) reset() { co.set(nil) }
