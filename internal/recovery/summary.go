package recovery

import (
	"sort"
	"time"
)

// BodyPartInsight is the derived recovery view of a single body part.
// Never persisted, recomputed on every read.
type BodyPartInsight struct {
	BodyPart             BodyPart       `json:"bodyPart"`
	LastWorkout          *time.Time     `json:"lastWorkout"`
	HoursSinceLast       *float64       `json:"hoursSinceLast"`
	RecommendedRestHours int            `json:"recommendedRestHours"`
	Status               Status         `json:"status"`
	SevenDayCount        int            `json:"sevenDayCount"`
	AverageSets          float64        `json:"averageSets"`
	Feedback             *FeedbackEntry `json:"feedback,omitempty"`
	Trend                []TrendPoint   `json:"trend,omitempty"`
}

// Summary is the top level recovery report across all body parts.
type Summary struct {
	StatusCounts map[Status]int `json:"statusCounts"`
	// SuggestedFocus lists READY body parts, most rested first.
	SuggestedFocus []BodyPart `json:"suggestedFocus"`
	// NextEligibleInHours gives, per REST or CAUTION body part, the hours
	// remaining until the rest window is satisfied.
	NextEligibleInHours map[BodyPart]float64 `json:"nextEligibleInHours"`
	PainAlerts          []BodyPart           `json:"painAlerts"`
	Insights            []BodyPartInsight    `json:"insights"`
}

// Summarize folds the per body part insights into a Summary. Pure function
// of its input.
func Summarize(insights []BodyPartInsight) Summary {
	summary := Summary{
		StatusCounts:        make(map[Status]int),
		SuggestedFocus:      make([]BodyPart, 0),
		NextEligibleInHours: make(map[BodyPart]float64),
		PainAlerts:          make([]BodyPart, 0),
		Insights:            insights,
	}

	for _, in := range insights {
		summary.StatusCounts[in.Status]++

		switch in.Status {
		case StatusReady:
			summary.SuggestedFocus = append(summary.SuggestedFocus, in.BodyPart)
		case StatusRest, StatusCaution:
			remaining := float64(in.RecommendedRestHours)
			if in.HoursSinceLast != nil {
				remaining -= *in.HoursSinceLast
			}
			if remaining < 0 {
				remaining = 0
			}
			summary.NextEligibleInHours[in.BodyPart] = remaining
		case StatusPain:
			summary.PainAlerts = append(summary.PainAlerts, in.BodyPart)
		}
	}

	hoursFor := make(map[BodyPart]*float64, len(insights))
	for _, in := range insights {
		hoursFor[in.BodyPart] = in.HoursSinceLast
	}

	// most rested first; never worked parts outrank any finite elapsed
	// time, ties fall back to name order for determinism
	sort.SliceStable(summary.SuggestedFocus, func(i, j int) bool {
		hi, hj := hoursFor[summary.SuggestedFocus[i]], hoursFor[summary.SuggestedFocus[j]]
		switch {
		case hi == nil && hj == nil:
			return summary.SuggestedFocus[i] < summary.SuggestedFocus[j]
		case hi == nil:
			return true
		case hj == nil:
			return false
		case *hi != *hj:
			return *hi > *hj
		default:
			return summary.SuggestedFocus[i] < summary.SuggestedFocus[j]
		}
	})

	sort.Slice(summary.PainAlerts, func(i, j int) bool {
		return summary.PainAlerts[i] < summary.PainAlerts[j]
	})

	return summary
}
