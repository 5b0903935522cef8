package test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vstojkovic/repforge/internal/recovery"
	"github.com/vstojkovic/repforge/internal/workouts"
)

func (s *IntegrationTestSuite) newFeedbackRequest(
	ctx context.Context, t *testing.T,
	entry recovery.FeedbackEntry,
) (*recovery.FeedbackEntry, int) {
	entryJson, err := json.Marshal(entry)
	require.NoError(t, err)

	req, err := http.NewRequestWithContext(ctx, "POST", fmt.Sprintf("%s/recovery/feedback", serverEndpoint), bytes.NewBuffer(entryJson))
	require.NoError(t, err)
	req.Header.Set("User-Agent", "test-agent")
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-REPFORGE-APP-SECRET", testAppSecret)

	resp, err := s.httpClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		return nil, resp.StatusCode
	}

	respBytes, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var addedEntry recovery.FeedbackEntry
	require.NoError(t, json.Unmarshal(respBytes, &addedEntry))
	require.NotZero(t, addedEntry.ID)

	return &addedEntry, resp.StatusCode
}

func (s *IntegrationTestSuite) listFeedbackRequest(
	ctx context.Context, t *testing.T,
	user string,
) []recovery.FeedbackEntry {
	req, err := http.NewRequestWithContext(ctx, "GET", fmt.Sprintf("%s/recovery/feedback?user=%s", serverEndpoint, user), nil)
	require.NoError(t, err)
	req.Header.Set("User-Agent", "test-agent")
	req.Header.Set("X-REPFORGE-APP-SECRET", testAppSecret)

	resp, err := s.httpClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	respBytes, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var entries []recovery.FeedbackEntry
	require.NoError(t, json.Unmarshal(respBytes, &entries))

	return entries
}

func (s *IntegrationTestSuite) getSummaryRequest(
	ctx context.Context, t *testing.T,
	user string,
) recovery.Summary {
	req, err := http.NewRequestWithContext(ctx, "GET", fmt.Sprintf("%s/recovery/summary?user=%s", serverEndpoint, user), nil)
	require.NoError(t, err)
	req.Header.Set("User-Agent", "test-agent")
	req.Header.Set("X-REPFORGE-APP-SECRET", testAppSecret)

	resp, err := s.httpClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	respBytes, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var summary recovery.Summary
	require.NoError(t, json.Unmarshal(respBytes, &summary))

	return summary
}

func (s *IntegrationTestSuite) TestRecovery() {
	t := s.T()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	user := "recovery-user"

	// one chest session 10 hours ago, well inside the 48h rest window
	s.newSessionRequest(ctx, t, workouts.Session{
		UserID:    user,
		StartedAt: time.Now().Add(-10 * time.Hour),
		Exercises: []workouts.PerformedExercise{
			{Name: "Chest Fly", MuscleGroup: "chest", Sets: 4, Reps: 12, Kilos: 14},
		},
	})

	t.Run("add feedback, invalid feeling", func(t *testing.T) {
		_, statusCode := s.newFeedbackRequest(ctx, t, recovery.FeedbackEntry{
			UserID:   user,
			BodyPart: "chest",
			Feeling:  "MEH",
		})
		assert.Equal(t, http.StatusBadRequest, statusCode)
	})

	t.Run("add feedback, intensity out of range", func(t *testing.T) {
		intensity := 6
		_, statusCode := s.newFeedbackRequest(ctx, t, recovery.FeedbackEntry{
			UserID:    user,
			BodyPart:  "chest",
			Feeling:   recovery.FeelingSore,
			Intensity: &intensity,
		})
		assert.Equal(t, http.StatusBadRequest, statusCode)
	})

	var injuredEntryID int
	t.Run("add and list feedback", func(t *testing.T) {
		intensity := 4
		injuredEntry, statusCode := s.newFeedbackRequest(ctx, t, recovery.FeedbackEntry{
			UserID:    user,
			BodyPart:  "lower back",
			Feeling:   recovery.FeelingInjured,
			Intensity: &intensity,
			Note:      "tweaked it on the last set",
		})
		require.Equal(t, http.StatusCreated, statusCode)
		assert.False(t, injuredEntry.CreatedAt.IsZero())
		injuredEntryID = injuredEntry.ID

		// quads normalizes to quadriceps in derived insights
		soreEntry, statusCode := s.newFeedbackRequest(ctx, t, recovery.FeedbackEntry{
			UserID:   user,
			BodyPart: "quads",
			Feeling:  recovery.FeelingSore,
		})
		require.Equal(t, http.StatusCreated, statusCode)
		assert.Nil(t, soreEntry.Intensity)

		entries := s.listFeedbackRequest(ctx, t, user)
		assert.Len(t, entries, 2)
	})

	t.Run("insights", func(t *testing.T) {
		req, err := http.NewRequestWithContext(ctx, "GET", fmt.Sprintf("%s/recovery/insights?user=%s", serverEndpoint, user), nil)
		require.NoError(t, err)
		req.Header.Set("User-Agent", "test-agent")
		req.Header.Set("X-REPFORGE-APP-SECRET", testAppSecret)

		resp, err := s.httpClient.Do(req)
		require.NoError(t, err)
		defer resp.Body.Close()
		require.Equal(t, http.StatusOK, resp.StatusCode)

		respBytes, err := io.ReadAll(resp.Body)
		require.NoError(t, err)

		var insights []recovery.BodyPartInsight
		require.NoError(t, json.Unmarshal(respBytes, &insights))

		// the full rest window catalog is always present
		require.Len(t, insights, 13)

		byPart := make(map[recovery.BodyPart]recovery.BodyPartInsight, len(insights))
		for _, in := range insights {
			byPart[in.BodyPart] = in
		}

		chest := byPart["chest"]
		assert.Equal(t, recovery.StatusRest, chest.Status)
		assert.Equal(t, 48, chest.RecommendedRestHours)
		assert.Equal(t, 1, chest.SevenDayCount)
		assert.Equal(t, 4.0, chest.AverageSets)
		require.NotNil(t, chest.HoursSinceLast)
		assert.InDelta(t, 10, *chest.HoursSinceLast, 0.5)
		assert.Len(t, chest.Trend, 1)

		lowerBack := byPart["lower back"]
		assert.Equal(t, recovery.StatusPain, lowerBack.Status)
		assert.Nil(t, lowerBack.LastWorkout)
		require.NotNil(t, lowerBack.Feedback)
		assert.Equal(t, recovery.FeelingInjured, lowerBack.Feedback.Feeling)

		quadriceps := byPart["quadriceps"]
		assert.Equal(t, recovery.StatusReady, quadriceps.Status)
		require.NotNil(t, quadriceps.Feedback)
		assert.Equal(t, recovery.FeelingSore, quadriceps.Feedback.Feeling)
	})

	t.Run("summary", func(t *testing.T) {
		summary := s.getSummaryRequest(ctx, t, user)

		assert.Equal(t, 11, summary.StatusCounts[recovery.StatusReady])
		assert.Equal(t, 1, summary.StatusCounts[recovery.StatusRest])
		assert.Equal(t, 1, summary.StatusCounts[recovery.StatusPain])

		assert.Equal(t, []recovery.BodyPart{"lower back"}, summary.PainAlerts)

		chestRemaining, ok := summary.NextEligibleInHours["chest"]
		require.True(t, ok)
		assert.InDelta(t, 38, chestRemaining, 0.5)

		assert.NotContains(t, summary.SuggestedFocus, recovery.BodyPart("chest"))
		assert.NotContains(t, summary.SuggestedFocus, recovery.BodyPart("lower back"))
		assert.Contains(t, summary.SuggestedFocus, recovery.BodyPart("quadriceps"))
	})

	t.Run("delete feedback resolves pain", func(t *testing.T) {
		req, err := http.NewRequestWithContext(ctx, "DELETE", fmt.Sprintf("%s/recovery/feedback/%d", serverEndpoint, injuredEntryID), nil)
		require.NoError(t, err)
		req.Header.Set("User-Agent", "test-agent")
		req.Header.Set("X-REPFORGE-APP-SECRET", testAppSecret)

		resp, err := s.httpClient.Do(req)
		require.NoError(t, err)
		require.Equal(t, http.StatusOK, resp.StatusCode)

		respBytes, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		require.NoError(t, resp.Body.Close())
		assert.JSONEq(t, fmt.Sprintf(`{"deletedId":%d}`, injuredEntryID), string(respBytes))

		entries := s.listFeedbackRequest(ctx, t, user)
		assert.Len(t, entries, 1)

		summary := s.getSummaryRequest(ctx, t, user)
		assert.Empty(t, summary.PainAlerts)
		assert.Zero(t, summary.StatusCounts[recovery.StatusPain])
	})

	t.Run("delete unknown feedback", func(t *testing.T) {
		req, err := http.NewRequestWithContext(ctx, "DELETE", fmt.Sprintf("%s/recovery/feedback/987654", serverEndpoint), nil)
		require.NoError(t, err)
		req.Header.Set("User-Agent", "test-agent")
		req.Header.Set("X-REPFORGE-APP-SECRET", testAppSecret)

		resp, err := s.httpClient.Do(req)
		require.NoError(t, err)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})
}
