package contest

import (
	"time"

	"github.com/google/uuid"
)

const (
	// KindContest collects file submissions judged by an admin.
	KindContest = "contest"
	// KindSurvey collects answers to the attached questions.
	KindSurvey = "survey"

	// LanguageAll marks contests visible regardless of user language.
	LanguageAll = "all"
)

// Contest is a time-boxed contest or survey.
type Contest struct {
	ID        uuid.UUID  `json:"id"`
	Kind      string     `json:"kind"`
	Title     string     `json:"title"`
	Subtitle  string     `json:"subtitle,omitempty"`
	Language  string     `json:"language"`
	Location  string     `json:"location"`
	StarsJoin int        `json:"starsJoin"`
	StarsWin  int        `json:"starsWin"`
	EndDate   *time.Time `json:"endDate,omitempty"`
	IsActive  bool       `json:"isActive"`
	Questions []Question `json:"questions"`
}

// Question belongs to a survey-kind contest.
type Question struct {
	ID      uuid.UUID `json:"id"`
	Text    string    `json:"text"`
	Options []Option  `json:"options"`
}

// Option is a selectable answer to a question.
type Option struct {
	ID   uuid.UUID `json:"id"`
	Text string    `json:"text"`
}

// DaysLeft returns whole days until the end date, zero when unset or past.
func (c Contest) DaysLeft(now time.Time) int {
	if c.EndDate == nil {
		return 0
	}
	days := int(c.EndDate.Sub(now).Hours() / 24)
	if days < 0 {
		return 0
	}
	return days
}

// Participant is one user's entry into a contest.
type Participant struct {
	ID          uuid.UUID `json:"id"`
	ContestID   uuid.UUID `json:"contestId"`
	UserID      int64     `json:"userId"`
	FileURLs    []string  `json:"files"`
	AnswersJSON string    `json:"answers,omitempty"`
	IsWinner    bool      `json:"isWinner"`
	JoinedAt    time.Time `json:"joinedAt"`
}

// ParticipantInfo is the admin view of a participant, joined with profile data.
type ParticipantInfo struct {
	Participant
	Username  string `json:"userName"`
	AvatarURL string `json:"avatarUrl,omitempty"`
}
