package handlers

import (
	"net/http"

	"tendercrm/models"
)

const upcomingLimit = 5

type dashboardResponse struct {
	ActiveSubmissions int                   `json:"active_submissions"`
	Wins              int                   `json:"wins"`
	Upcoming          []reminderResponse    `json:"upcoming_reminders"`
	FilesCount        int                   `json:"files_count"`
	ByStatus          map[models.Status]int `json:"by_status"`
}

// DashboardHandler: счётчики главной страницы. Архивные тендеры не считаются.
func (h *Handler) DashboardHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	counts, err := h.Store.CountTendersByStatus(ctx)
	if err != nil {
		writeError(w, r, storageError(err, msgTenderNotFound))
		return
	}
	upcoming, err := h.Store.UpcomingReminders(ctx, h.now(), upcomingLimit)
	if err != nil {
		writeError(w, r, storageError(err, msgReminderNotFound))
		return
	}
	filesCount, err := h.Store.CountFiles(ctx)
	if err != nil {
		writeError(w, r, storageError(err, msgFileNotFound))
		return
	}

	byStatus := make(map[models.Status]int, len(models.Statuses))
	for _, s := range models.Statuses {
		byStatus[s] = counts[s]
	}
	writeJSON(w, http.StatusOK, dashboardResponse{
		ActiveSubmissions: counts[models.StatusNew],
		Wins:              counts[models.StatusWon] + counts[models.StatusInProgress],
		Upcoming:          newReminderResponses(upcoming),
		FilesCount:        filesCount,
		ByStatus:          byStatus,
	})
}
