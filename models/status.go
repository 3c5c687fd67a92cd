package models

// Status тендера в виде кода хранилища
type Status string

const (
	StatusNew        Status = "accepting"
	StatusSubmitted  Status = "submitted"
	StatusReview     Status = "review"
	StatusWon        Status = "won"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
	StatusLost       Status = "lost"
)

// Statuses в порядке жизненного цикла
var Statuses = []Status{
	StatusNew,
	StatusSubmitted,
	StatusReview,
	StatusWon,
	StatusInProgress,
	StatusCompleted,
	StatusLost,
}

// Допустимые переходы вперёд. В accepting вернуться нельзя.
var transitions = map[Status][]Status{
	StatusNew:        {StatusSubmitted},
	StatusSubmitted:  {StatusReview},
	StatusReview:     {StatusWon, StatusLost},
	StatusWon:        {StatusInProgress},
	StatusInProgress: {StatusCompleted},
	StatusCompleted:  nil,
	StatusLost:       nil,
}

func (s Status) Valid() bool {
	_, ok := transitions[s]
	return ok
}

// Terminal: lost и completed
func (s Status) Terminal() bool {
	return s.Valid() && len(transitions[s]) == 0
}

// Next возвращает статусы, в которые можно перейти из s.
func (s Status) Next() []Status {
	next := transitions[s]
	out := make([]Status, len(next))
	copy(out, next)
	return out
}

// Revenue: статусы, по которым считается бухгалтерия.
func (s Status) Revenue() bool {
	return s == StatusWon || s == StatusInProgress || s == StatusCompleted
}

// CanTransition проверяет ребро from -> to. Остаться в том же статусе можно всегда.
func CanTransition(from, to Status) bool {
	if !from.Valid() || !to.Valid() {
		return false
	}
	if from == to {
		return true
	}
	for _, s := range transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// ReminderType напоминания
type ReminderType string

const (
	ReminderSubmission ReminderType = "submission"
	ReminderReview     ReminderType = "review"
	ReminderOther      ReminderType = "other"
)

var ReminderTypes = []ReminderType{ReminderSubmission, ReminderReview, ReminderOther}

func (t ReminderType) Valid() bool {
	switch t {
	case ReminderSubmission, ReminderReview, ReminderOther:
		return true
	default:
		return false
	}
}
