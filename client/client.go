// Package client: Go-клиент REST API с локальным кешем коллекций.
// Кеш меняется только после того, как сервер подтвердил запись.
package client

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"tendercrm/models"

	"github.com/go-resty/resty/v2"
	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const defaultTimeout = time.Minute

// APIError: ответ сервера с кодом 4xx/5xx.
type APIError struct {
	Status  int
	Message string
	Fields  map[string]string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api: %d %s", e.Status, e.Message)
}

// IsNotFound сообщает, что сервер ответил 404.
func IsNotFound(err error) bool {
	e, ok := err.(*APIError)
	return ok && e.Status == http.StatusNotFound
}

type errorBody struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields"`
}

// Patch это тело частичного обновления. Отсутствующий ключ не меняет поле,
// nil очищает его.
type Patch map[string]interface{}

type Client struct {
	rc *resty.Client

	mu    sync.RWMutex
	token string
	user  *models.User

	Tenders   *Tenders
	Suppliers *Suppliers
	Reminders *Reminders
	Expenses  *Expenses
	Company   *Company
}

type Option func(*resty.Client)

func WithTimeout(d time.Duration) Option {
	return func(rc *resty.Client) { rc.SetTimeout(d) }
}

// New создает клиента для API по адресу baseURL, например http://localhost:3001/api.
func New(baseURL string, opts ...Option) *Client {
	rc := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(defaultTimeout).
		SetHeader("Content-Type", "application/json").
		SetJSONMarshaler(json.Marshal).
		SetJSONUnmarshaler(json.Unmarshal)
	for _, opt := range opts {
		opt(rc)
	}

	c := &Client{rc: rc}
	c.Tenders = &Tenders{c: c, cache: newCollection(func(t models.Tender) int { return t.ID })}
	c.Suppliers = &Suppliers{c: c, cache: newCollection(func(s models.Supplier) int { return s.ID })}
	c.Reminders = &Reminders{c: c, cache: newCollection(func(r models.Reminder) int { return r.ID })}
	c.Expenses = &Expenses{c: c, byTender: map[int]*collection[models.Expense]{}}
	c.Company = &Company{c: c}
	return c
}

// SetToken задаёт токен, например сохранённый с прошлого запуска.
func (c *Client) SetToken(token string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.token = token
}

func (c *Client) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

// User: пользователь последнего входа или Me.
func (c *Client) User() *models.User {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.user == nil {
		return nil
	}
	u := *c.user
	return &u
}

// do выполняет запрос и раскладывает ответ в result.
func (c *Client) do(ctx context.Context, method, path string, body, result interface{}) error {
	req := c.rc.R().SetContext(ctx).SetError(&errorBody{})
	if tok := c.Token(); tok != "" {
		req.SetAuthToken(tok)
	}
	if body != nil {
		req.SetBody(body)
	}
	if result != nil {
		req.SetResult(result)
	}

	resp, err := req.Execute(method, path)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	if resp.IsError() {
		apiErr := &APIError{Status: resp.StatusCode(), Message: resp.Status()}
		if eb, ok := resp.Error().(*errorBody); ok && eb.Error != "" {
			apiErr.Message = eb.Error
			apiErr.Fields = eb.Fields
		}
		return apiErr
	}
	return nil
}

type authResponse struct {
	Token string      `json:"token"`
	User  models.User `json:"user"`
}

func (c *Client) Register(ctx context.Context, email, password, fullName string) (*models.User, error) {
	body := map[string]interface{}{"email": email, "password": password}
	if fullName != "" {
		body["full_name"] = fullName
	}
	return c.authenticate(ctx, "/auth/register", body)
}

func (c *Client) Login(ctx context.Context, email, password string) (*models.User, error) {
	return c.authenticate(ctx, "/auth/login", map[string]interface{}{"email": email, "password": password})
}

func (c *Client) authenticate(ctx context.Context, path string, body interface{}) (*models.User, error) {
	var out authResponse
	if err := c.do(ctx, http.MethodPost, path, body, &out); err != nil {
		return nil, err
	}
	c.mu.Lock()
	c.token = out.Token
	c.user = &out.User
	c.mu.Unlock()
	return &out.User, nil
}

func (c *Client) Me(ctx context.Context) (*models.User, error) {
	var out struct {
		User models.User `json:"user"`
	}
	if err := c.do(ctx, http.MethodGet, "/auth/me", nil, &out); err != nil {
		return nil, err
	}
	c.mu.Lock()
	c.user = &out.User
	c.mu.Unlock()
	return &out.User, nil
}

// Logout отзывает токен на сервере и очищает сессию и кеши.
func (c *Client) Logout(ctx context.Context) error {
	if err := c.do(ctx, http.MethodPost, "/auth/logout", nil, nil); err != nil {
		return err
	}
	c.mu.Lock()
	c.token = ""
	c.user = nil
	c.mu.Unlock()

	c.Tenders.cache.reset()
	c.Suppliers.cache.reset()
	c.Reminders.cache.reset()
	c.Expenses.reset()
	c.Company.reset()
	return nil
}
