package recovery

import (
	"context"
	"fmt"
	"sort"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/vstojkovic/repforge/internal/telemetry/tracing"
	"github.com/vstojkovic/repforge/internal/workouts"
)

// TrendLookbackDays is the window for set-volume trend buckets and
// seven day counters.
const TrendLookbackDays = 7

//go:generate mockgen -source=$GOFILE -destination=analyzer_mocks_test.go -package=recovery_test

type eventsRepo interface {
	ListEvents(ctx context.Context, params workouts.EventParams) ([]workouts.WorkoutEvent, error)
}

type feedbackRepo interface {
	Add(ctx context.Context, entry FeedbackEntry) (*FeedbackEntry, error)
	ListForUser(ctx context.Context, userID string) ([]FeedbackEntry, error)
	Delete(ctx context.Context, id int) error
}

// TrendPoint is one calendar-day bucket of set volume for a body part.
type TrendPoint struct {
	Date string `json:"date"` // YYYY-MM-DD
	Sets int    `json:"sets"`
}

// partHistory is the aggregated workout history of a single body part.
type partHistory struct {
	lastWorked    *time.Time
	totalSets     int
	sevenDayCount int
	trend         []TrendPoint
}

// Analyzer turns raw workout events and feedback rows into per body part
// recovery insights. All derivation is recomputed per request, nothing is
// cached between calls.
type Analyzer struct {
	events   eventsRepo
	feedback feedbackRepo
	// NowFunc is swappable in tests for a fixed clock
	NowFunc func() time.Time
}

func NewAnalyzer(events eventsRepo, feedback feedbackRepo) *Analyzer {
	return &Analyzer{
		events:   events,
		feedback: feedback,
		NowFunc:  time.Now,
	}
}

// Insights derives the full per body part view for a user. Every body part
// from the rest window catalog is present in the result, never worked parts
// included (with a nil LastWorkout). Worked parts outside the catalog are
// appended as well.
func (a *Analyzer) Insights(ctx context.Context, userID string) (_ []BodyPartInsight, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "recovery.analyzer.insights")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.String("user_id", userID))

	// unbounded lookback, last-worked must see the whole history
	events, err := a.events.ListEvents(ctx, workouts.EventParams{UserID: userID})
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	entries, err := a.feedback.ListForUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list feedback: %w", err)
	}

	return a.buildInsights(events, entries), nil
}

func (a *Analyzer) buildInsights(events []workouts.WorkoutEvent, entries []FeedbackEntry) []BodyPartInsight {
	now := a.NowFunc()
	histories := aggregateHistory(events, now)
	latestFeedback := latestFeedbackPerPart(entries)

	parts := Catalog()
	for bp := range histories {
		if _, known := restWindows[bp]; !known {
			parts = append(parts, bp)
		}
	}
	sort.Slice(parts, func(i, j int) bool { return parts[i] < parts[j] })

	insights := make([]BodyPartInsight, 0, len(parts))
	for _, bp := range parts {
		hist := histories[bp] // zero value for never worked parts
		fb := latestFeedback[bp]

		var hoursSinceLast *float64
		if hist.lastWorked != nil {
			h := now.Sub(*hist.lastWorked).Hours()
			hoursSinceLast = &h
		}

		window := RestWindowHours(bp)
		hasPain := fb != nil && fb.Feeling == FeelingInjured

		var avgSets float64
		if hist.sevenDayCount > 0 {
			avgSets = float64(hist.totalSets) / float64(hist.sevenDayCount)
		}

		insights = append(insights, BodyPartInsight{
			BodyPart:             bp,
			LastWorkout:          hist.lastWorked,
			HoursSinceLast:       hoursSinceLast,
			RecommendedRestHours: window,
			Status:               Classify(hoursSinceLast, window, hasPain),
			SevenDayCount:        hist.sevenDayCount,
			AverageSets:          avgSets,
			Feedback:             fb,
			Trend:                hist.trend,
		})
	}

	return insights
}

// aggregateHistory groups the events by normalized body part: max performedAt
// for last-worked, and per-calendar-day set buckets within the trend window.
func aggregateHistory(events []workouts.WorkoutEvent, now time.Time) map[BodyPart]partHistory {
	since := now.AddDate(0, 0, -TrendLookbackDays)
	histories := make(map[BodyPart]partHistory)
	buckets := make(map[BodyPart]map[string]int)

	for _, ev := range events {
		bp := Normalize(ev.BodyPart)
		hist := histories[bp]

		if hist.lastWorked == nil || ev.PerformedAt.After(*hist.lastWorked) {
			performedAt := ev.PerformedAt
			hist.lastWorked = &performedAt
		}

		if !ev.PerformedAt.Before(since) {
			hist.totalSets += ev.SetCount
			hist.sevenDayCount++
			day := ev.PerformedAt.Format("2006-01-02")
			if buckets[bp] == nil {
				buckets[bp] = make(map[string]int)
			}
			buckets[bp][day] += ev.SetCount
		}

		histories[bp] = hist
	}

	for bp, days := range buckets {
		hist := histories[bp]
		hist.trend = make([]TrendPoint, 0, len(days))
		for day, sets := range days {
			hist.trend = append(hist.trend, TrendPoint{Date: day, Sets: sets})
		}
		sort.Slice(hist.trend, func(i, j int) bool {
			return hist.trend[i].Date < hist.trend[j].Date
		})
		histories[bp] = hist
	}

	return histories
}

// latestFeedbackPerPart keeps only the newest entry per normalized body part,
// the most recent report supersedes the older ones.
func latestFeedbackPerPart(entries []FeedbackEntry) map[BodyPart]*FeedbackEntry {
	latest := make(map[BodyPart]*FeedbackEntry)
	for i := range entries {
		e := entries[i]
		bp := Normalize(e.BodyPart)
		if cur, ok := latest[bp]; ok && !e.CreatedAt.After(cur.CreatedAt) {
			continue
		}
		latest[bp] = &e
	}
	return latest
}
