package handlers

import (
	"encoding/json"
	"testing"
	"time"

	"tendercrm/db"
	"tendercrm/internal/apperr"
	"tendercrm/models"

	"github.com/stretchr/testify/require"
)

func mustPatch(t *testing.T, raw string) TenderPatch {
	t.Helper()
	var p TenderPatch
	require.NoError(t, json.Unmarshal([]byte(raw), &p))
	return p
}

func TestPlanTenderUpdate_Reminder(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	deadline := models.NewDateTime(time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC))
	base := models.Tender{ID: 7, Title: "Бумага", Status: models.StatusNew, Deadline: &deadline}

	cases := []struct {
		name     string
		cur      models.Tender
		patch    string
		want     db.ReminderSync
		wantText string
	}{
		{"nothing changes", base, `{"comment":"x"}`, db.ReminderKeep, ""},
		{"same deadline", base, `{"deadline":"2025-03-10T00:00:00Z"}`, db.ReminderKeep, ""},
		{"deadline moved", base, `{"deadline":"2025-03-11"}`, db.ReminderUpsert, "Дедлайн подачи заявки на тендер: Бумага"},
		{"title changed", base, `{"title":"Картон"}`, db.ReminderUpsert, "Дедлайн подачи заявки на тендер: Картон"},
		{"deadline cleared", base, `{"deadline":null}`, db.ReminderDrop, ""},
		{"deadline added", models.Tender{ID: 8, Title: "Б", Status: models.StatusNew}, `{"deadline":"2025-04-01"}`, db.ReminderUpsert, "Дедлайн подачи заявки на тендер: Б"},
		{"submitted", base, `{"status":"submitted","submission_date":"2025-03-02","win_amount":10}`, db.ReminderDrop, ""},
		{"later status ignores deadline", models.Tender{Title: "R", Status: models.StatusReview}, `{"deadline":"2025-05-01"}`, db.ReminderKeep, ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			up, err := planTenderUpdate(tc.cur, mustPatch(t, tc.patch), now)
			require.NoError(t, err)
			require.Equal(t, tc.want, up.Reminder)
			require.Equal(t, tc.wantText, up.ReminderText)
		})
	}
}

func TestPlanTenderUpdate_Archive(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	up, err := planTenderUpdate(models.Tender{Title: "T", Status: models.StatusCompleted}, mustPatch(t, `{"is_archived":true}`), now)
	require.NoError(t, err)
	require.Equal(t, true, up.Changes["is_archived"])
	require.Equal(t, models.NewDateTime(now), up.Changes["archived_at"])

	at := models.NewDateTime(now)
	up, err = planTenderUpdate(models.Tender{Title: "T", Status: models.StatusCompleted, IsArchived: true, ArchivedAt: &at}, mustPatch(t, `{"is_archived":false}`), now)
	require.NoError(t, err)
	v, ok := up.Changes["archived_at"]
	require.True(t, ok)
	require.Nil(t, v)
}

func TestPlanTenderUpdate_Rejects(t *testing.T) {
	now := time.Now()
	amount := 100.0

	cases := []struct {
		name  string
		cur   models.Tender
		patch string
	}{
		{"skip a step", models.Tender{Status: models.StatusSubmitted}, `{"status":"won"}`},
		{"back to new", models.Tender{Status: models.StatusReview}, `{"status":"accepting"}`},
		{"out of completed", models.Tender{Status: models.StatusCompleted}, `{"status":"lost"}`},
		{"lost edits", models.Tender{Status: models.StatusLost}, `{"title":"новое"}`},
		{"frozen amount", models.Tender{Status: models.StatusWon, Amount: &amount}, `{"amount":1}`},
		{"cleared amount", models.Tender{Status: models.StatusWon, Amount: &amount}, `{"amount":null}`},
		{"submit without data", models.Tender{Status: models.StatusNew}, `{"status":"submitted"}`},
		{"submit clears price", models.Tender{Status: models.StatusNew, WinAmount: &amount}, `{"status":"submitted","submission_date":"2025-01-01","win_amount":null}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := planTenderUpdate(tc.cur, mustPatch(t, tc.patch), now)
			require.Error(t, err)
			require.Equal(t, 400, apperr.HTTPStatus(err))
		})
	}
}

func TestSetText(t *testing.T) {
	cur := "b"
	cases := []struct {
		name   string
		o      models.Optional[string]
		cur    *string
		want   interface{}
		change bool
	}{
		{"absent", models.Optional[string]{}, &cur, nil, false},
		{"trimmed", models.Some("  a  "), nil, "a", true},
		{"same after trim", models.Some(" b "), &cur, nil, false},
		{"blank clears", models.Some("   "), &cur, nil, true},
		{"null clears", models.Null[string](), &cur, nil, true},
		{"null on null", models.Null[string](), nil, nil, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c := db.Changes{}
			setText(c, "comment", tc.o, tc.cur)
			v, ok := c["comment"]
			require.Equal(t, tc.change, ok)
			require.Equal(t, tc.want, v)
		})
	}
}
