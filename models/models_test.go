package models_test

import (
	"encoding/json"
	"testing"
	"time"

	"tendercrm/models"

	"github.com/stretchr/testify/require"
)

func TestCanTransition(t *testing.T) {
	allowed := map[models.Status][]models.Status{
		models.StatusNew:        {models.StatusSubmitted},
		models.StatusSubmitted:  {models.StatusReview},
		models.StatusReview:     {models.StatusWon, models.StatusLost},
		models.StatusWon:        {models.StatusInProgress},
		models.StatusInProgress: {models.StatusCompleted},
	}

	for _, from := range models.Statuses {
		for _, to := range models.Statuses {
			want := from == to
			for _, s := range allowed[from] {
				if s == to {
					want = true
				}
			}
			require.Equalf(t, want, models.CanTransition(from, to), "%s -> %s", from, to)
		}
	}
}

func TestNoTransitionBackToNew(t *testing.T) {
	for _, from := range models.Statuses {
		if from == models.StatusNew {
			continue
		}
		require.False(t, models.CanTransition(from, models.StatusNew), from)
	}
}

func TestCanTransitionRejectsUnknown(t *testing.T) {
	require.False(t, models.CanTransition("draft", models.StatusSubmitted))
	require.False(t, models.CanTransition(models.StatusNew, "Новый"))
}

func TestTerminalStatuses(t *testing.T) {
	require.True(t, models.StatusLost.Terminal())
	require.True(t, models.StatusCompleted.Terminal())
	require.False(t, models.StatusReview.Terminal())
	require.Empty(t, models.StatusLost.Next())
	require.Equal(t, []models.Status{models.StatusWon, models.StatusLost}, models.StatusReview.Next())
}

func TestOptionalDistinguishesAbsentAndNull(t *testing.T) {
	var in struct {
		Amount  models.Optional[float64] `json:"amount"`
		Comment models.Optional[string]  `json:"comment"`
		Link    models.Optional[string]  `json:"link"`
	}
	err := json.Unmarshal([]byte(`{"amount": 1500.5, "comment": null}`), &in)
	require.NoError(t, err)

	require.True(t, in.Amount.Present())
	require.Equal(t, 1500.5, in.Amount.Value)

	require.True(t, in.Comment.Set)
	require.True(t, in.Comment.Null)
	require.Nil(t, in.Comment.Ptr())

	require.False(t, in.Link.Set)
}

func TestOptionalRejectsWrongType(t *testing.T) {
	var in struct {
		Amount models.Optional[float64] `json:"amount"`
	}
	require.Error(t, json.Unmarshal([]byte(`{"amount": "много"}`), &in))
}

func TestDateTimeAcceptsFrontendFormats(t *testing.T) {
	cases := map[string]time.Time{
		`"2025-03-01"`:                time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC),
		`"2025-03-01T10:30"`:          time.Date(2025, 3, 1, 10, 30, 0, 0, time.UTC),
		`"2025-03-01T10:30:00Z"`:      time.Date(2025, 3, 1, 10, 30, 0, 0, time.UTC),
		`"2025-03-01T10:30:00+03:00"`: time.Date(2025, 3, 1, 7, 30, 0, 0, time.UTC),
	}
	for raw, want := range cases {
		var d models.DateTime
		require.NoError(t, json.Unmarshal([]byte(raw), &d), raw)
		require.True(t, want.Equal(d.Time), raw)
	}

	var d models.DateTime
	require.Error(t, json.Unmarshal([]byte(`"01.03.2025"`), &d))
}

func TestContractGuaranteeAmount(t *testing.T) {
	amount, win, percent := 200000.0, 150000.0, 5.0

	tender := models.Tender{Amount: &amount, ContractGuaranteePercent: &percent}
	require.Equal(t, 10000.0, *tender.ContractGuaranteeAmount())

	tender.WinAmount = &win
	require.Equal(t, 7500.0, *tender.ContractGuaranteeAmount())

	tender.ContractGuaranteePercent = nil
	require.Nil(t, tender.ContractGuaranteeAmount())
}

func TestNormalizeEmail(t *testing.T) {
	require.Equal(t, "ivan@example.com", models.NormalizeEmail("  Ivan@Example.COM "))
	require.Equal(t, "", models.NormalizeEmail("   "))
}
