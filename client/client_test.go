package client_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"tendercrm/client"

	"github.com/stretchr/testify/require"
)

// fakeAPI отвечает заранее заданными телами и запоминает заголовок Authorization.
func fakeAPI(t *testing.T) (*httptest.Server, *atomic.Value) {
	t.Helper()
	var lastAuth atomic.Value
	lastAuth.Store("")

	mux := http.NewServeMux()
	reply := func(status int, body string) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			lastAuth.Store(r.Header.Get("Authorization"))
			w.Header().Set("Content-Type", "application/json; charset=utf-8")
			w.WriteHeader(status)
			_, _ = io.WriteString(w, body)
		}
	}

	mux.HandleFunc("POST /api/auth/login", func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		if !strings.Contains(string(b), `"password":"secret1"`) {
			reply(http.StatusUnauthorized, `{"error":"Неверный email или пароль"}`)(w, r)
			return
		}
		reply(http.StatusOK, `{"token":"tok-1","user":{"id":1,"email":"a@b.ru","role":"admin"}}`)(w, r)
	})
	mux.HandleFunc("POST /api/auth/logout", reply(http.StatusOK, `{"message":"Выход выполнен"}`))
	mux.HandleFunc("GET /api/tenders", reply(http.StatusOK,
		`[{"id":2,"title":"Второй","status":"accepting","status_label":"Новый"},{"id":1,"title":"Первый","status":"won"}]`))
	mux.HandleFunc("POST /api/tenders", reply(http.StatusCreated, `{"id":3,"title":"Третий","status":"accepting"}`))
	mux.HandleFunc("PUT /api/tenders/1", reply(http.StatusOK, `{"id":1,"title":"Первый (изм.)","status":"won"}`))
	mux.HandleFunc("PUT /api/tenders/2", reply(http.StatusBadRequest,
		`{"error":"Недопустимый переход статуса: Новый → Победа"}`))
	mux.HandleFunc("DELETE /api/tenders/2", reply(http.StatusOK, `{"message":"Тендер успешно удален"}`))
	mux.HandleFunc("DELETE /api/tenders/9", reply(http.StatusNotFound, `{"error":"Тендер не найден"}`))
	mux.HandleFunc("GET /api/reminders", reply(http.StatusOK,
		`[{"id":10,"tender_id":2,"type":"submission","datetime":"2025-03-10T00:00:00Z","is_auto":true},{"id":11,"tender_id":1,"type":"other","datetime":"2025-03-11T00:00:00Z"}]`))
	mux.HandleFunc("GET /api/company", reply(http.StatusNotFound, `{"error":"Информация о компании не найдена"}`))
	mux.HandleFunc("PUT /api/company", reply(http.StatusOK, `{"name":"ООО Ромашка","inn":"7701234567"}`))
	mux.HandleFunc("POST /api/expenses", reply(http.StatusCreated, `{"id":20,"tender_id":1,"amount":500,"date":"2025-03-01T00:00:00Z"}`))

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv, &lastAuth
}

func TestLoginSetsToken(t *testing.T) {
	srv, lastAuth := fakeAPI(t)
	c := client.New(srv.URL + "/api")
	ctx := context.Background()

	_, err := c.Login(ctx, "a@b.ru", "wrong")
	var apiErr *client.APIError
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, http.StatusUnauthorized, apiErr.Status)
	require.Equal(t, "Неверный email или пароль", apiErr.Message)
	require.Empty(t, c.Token())

	u, err := c.Login(ctx, "a@b.ru", "secret1")
	require.NoError(t, err)
	require.Equal(t, 1, u.ID)
	require.Equal(t, "tok-1", c.Token())

	_, err = c.Tenders.List(ctx, client.TenderQuery{})
	require.NoError(t, err)
	require.Equal(t, "Bearer tok-1", lastAuth.Load())
}

func TestTenderCacheFollowsServer(t *testing.T) {
	srv, _ := fakeAPI(t)
	c := client.New(srv.URL + "/api")
	c.SetToken("tok-1")
	ctx := context.Background()

	_, loaded := c.Tenders.Cached()
	require.False(t, loaded)

	list, err := c.Tenders.List(ctx, client.TenderQuery{})
	require.NoError(t, err)
	require.Len(t, list, 2)

	cached, loaded := c.Tenders.Cached()
	require.True(t, loaded)
	require.Len(t, cached, 2)

	created, err := c.Tenders.Create(ctx, client.Patch{"title": "Третий"})
	require.NoError(t, err)
	require.Equal(t, 3, created.ID)
	cached, _ = c.Tenders.Cached()
	require.Len(t, cached, 3)
	require.Equal(t, 3, cached[0].ID)

	_, err = c.Tenders.Update(ctx, 1, client.Patch{"title": "Первый (изм.)", "comment": nil})
	require.NoError(t, err)
	cached, _ = c.Tenders.Cached()
	require.Equal(t, "Первый (изм.)", cached[2].Title)

	// отклонённое сервером изменение кеш не трогает
	_, err = c.Tenders.Update(ctx, 2, client.Patch{"status": "won"})
	require.Error(t, err)
	cached, _ = c.Tenders.Cached()
	require.Equal(t, "accepting", string(cached[1].Status))

	err = c.Tenders.Delete(ctx, 9)
	require.True(t, client.IsNotFound(err))
	cached, _ = c.Tenders.Cached()
	require.Len(t, cached, 3)
}

func TestDeleteTenderDropsDependentCaches(t *testing.T) {
	srv, _ := fakeAPI(t)
	c := client.New(srv.URL + "/api")
	ctx := context.Background()

	_, err := c.Tenders.List(ctx, client.TenderQuery{})
	require.NoError(t, err)
	_, err = c.Reminders.List(ctx, 0)
	require.NoError(t, err)

	require.NoError(t, c.Tenders.Delete(ctx, 2))

	tenders, _ := c.Tenders.Cached()
	require.Len(t, tenders, 1)
	reminders, _ := c.Reminders.Cached()
	require.Len(t, reminders, 1)
	require.Equal(t, 11, reminders[0].ID)
}

func TestUpdateTenderInvalidatesReminders(t *testing.T) {
	srv, _ := fakeAPI(t)
	c := client.New(srv.URL + "/api")
	ctx := context.Background()

	_, err := c.Reminders.List(ctx, 0)
	require.NoError(t, err)
	_, loaded := c.Reminders.Cached()
	require.True(t, loaded)

	_, err = c.Tenders.Update(ctx, 1, client.Patch{"title": "Первый (изм.)"})
	require.NoError(t, err)
	_, loaded = c.Reminders.Cached()
	require.False(t, loaded)
}

func TestCompanyAndExpenses(t *testing.T) {
	srv, _ := fakeAPI(t)
	c := client.New(srv.URL + "/api")
	ctx := context.Background()

	info, err := c.Company.Get(ctx)
	require.NoError(t, err)
	require.Nil(t, info)

	info, err = c.Company.Update(ctx, client.Patch{"name": "ООО Ромашка", "inn": "7701234567"})
	require.NoError(t, err)
	require.Equal(t, "ООО Ромашка", info.Name)
	require.Equal(t, "ООО Ромашка", c.Company.Cached().Name)

	e, err := c.Expenses.Create(ctx, client.Patch{"tender_id": 1, "amount": 500})
	require.NoError(t, err)
	require.Equal(t, 500.0, e.Amount)
	cached, _ := c.Expenses.Cached(1)
	require.Len(t, cached, 1)
}

func TestLogoutClearsSession(t *testing.T) {
	srv, _ := fakeAPI(t)
	c := client.New(srv.URL + "/api")
	ctx := context.Background()

	_, err := c.Login(ctx, "a@b.ru", "secret1")
	require.NoError(t, err)
	_, err = c.Tenders.List(ctx, client.TenderQuery{})
	require.NoError(t, err)

	require.NoError(t, c.Logout(ctx))
	require.Empty(t, c.Token())
	require.Nil(t, c.User())
	_, loaded := c.Tenders.Cached()
	require.False(t, loaded)
}
