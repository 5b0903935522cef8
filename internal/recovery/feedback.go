package recovery

import "time"

// Feeling is the user reported subjective state of a body part.
type Feeling string

const (
	FeelingGood    Feeling = "GOOD"
	FeelingTight   Feeling = "TIGHT"
	FeelingSore    Feeling = "SORE"
	FeelingInjured Feeling = "INJURED"
)

func (f Feeling) String() string {
	return string(f)
}

func (f Feeling) IsValid() bool {
	switch f {
	case FeelingGood, FeelingTight, FeelingSore, FeelingInjured:
		return true
	default:
		return false
	}
}

// FeedbackEntry is a user submitted subjective report on a body part.
// The most recent entry per body part wins when deriving current status;
// an INJURED entry sets the pain flag for that body part until a later
// non-injured entry resolves it.
type FeedbackEntry struct {
	ID        int       `json:"id"`
	UserID    string    `json:"userId"`
	BodyPart  string    `json:"bodyPart"`
	Feeling   Feeling   `json:"feeling"`
	Intensity *int      `json:"intensity,omitempty"` // 1-5
	Note      string    `json:"note,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}
