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

	"github.com/vstojkovic/repforge/internal/workouts"
)

func (s *IntegrationTestSuite) newSessionRequest(
	ctx context.Context, t *testing.T,
	session workouts.Session,
) workouts.AddSessionResponse {
	sessionJson, err := json.Marshal(session)
	require.NoError(t, err)

	req, err := http.NewRequestWithContext(ctx, "POST", fmt.Sprintf("%s/workouts", serverEndpoint), bytes.NewBuffer(sessionJson))
	require.NoError(t, err)
	req.Header.Set("User-Agent", "test-agent")
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-REPFORGE-APP-SECRET", testAppSecret)

	resp, err := s.httpClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	respBytes, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var addResp workouts.AddSessionResponse
	require.NoError(t, json.Unmarshal(respBytes, &addResp))
	require.NotZero(t, addResp.ID)

	return addResp
}

func (s *IntegrationTestSuite) getSessionRequest(
	ctx context.Context, t *testing.T,
	id int,
) (*workouts.Session, int) {
	req, err := http.NewRequestWithContext(ctx, "GET", fmt.Sprintf("%s/workouts/%d", serverEndpoint, id), nil)
	require.NoError(t, err)
	req.Header.Set("User-Agent", "test-agent")
	req.Header.Set("X-REPFORGE-APP-SECRET", testAppSecret)

	resp, err := s.httpClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, resp.StatusCode
	}

	respBytes, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var session workouts.Session
	require.NoError(t, json.Unmarshal(respBytes, &session))

	return &session, resp.StatusCode
}

func (s *IntegrationTestSuite) listSessionsRequest(
	ctx context.Context, t *testing.T,
	page, size int, user string,
) workouts.ListResponse {
	url := fmt.Sprintf("%s/workouts/list/page/%d/size/%d", serverEndpoint, page, size)
	if user != "" {
		url += "?user=" + user
	}
	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	require.NoError(t, err)
	req.Header.Set("User-Agent", "test-agent")
	req.Header.Set("X-REPFORGE-APP-SECRET", testAppSecret)

	resp, err := s.httpClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	respBytes, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var listResp workouts.ListResponse
	require.NoError(t, json.Unmarshal(respBytes, &listResp))

	return listResp
}

func (s *IntegrationTestSuite) TestWorkoutSessions() {
	t := s.T()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	t.Run("unauthorized without app secret", func(t *testing.T) {
		req, err := http.NewRequestWithContext(ctx, "GET", fmt.Sprintf("%s/workouts/1", serverEndpoint), nil)
		require.NoError(t, err)
		req.Header.Set("User-Agent", "test-agent")

		resp, err := s.httpClient.Do(req)
		require.NoError(t, err)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("unauthorized with invalid app secret", func(t *testing.T) {
		req, err := http.NewRequestWithContext(ctx, "GET", fmt.Sprintf("%s/workouts/1", serverEndpoint), nil)
		require.NoError(t, err)
		req.Header.Set("User-Agent", "test-agent")
		req.Header.Set("X-REPFORGE-APP-SECRET", "wrong-secret")

		resp, err := s.httpClient.Do(req)
		require.NoError(t, err)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("authorized with session token", func(t *testing.T) {
		require.NoError(t, s.redisDataCleanup(ctx))
		token := doLogin(ctx, t)

		req, err := http.NewRequestWithContext(ctx, "GET", fmt.Sprintf("%s/workouts/list/page/1/size/5", serverEndpoint), nil)
		require.NoError(t, err)
		req.Header.Set("User-Agent", "test-agent")
		req.Header.Set("X-REPFORGE-TOKEN", token)

		resp, err := s.httpClient.Do(req)
		require.NoError(t, err)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})

	t.Run("add session, no exercises", func(t *testing.T) {
		sessionJson, err := json.Marshal(workouts.Session{
			UserID:      "crud-user",
			StartedAt:   time.Now(),
			DurationMin: 45,
		})
		require.NoError(t, err)

		req, err := http.NewRequestWithContext(ctx, "POST", fmt.Sprintf("%s/workouts", serverEndpoint), bytes.NewBuffer(sessionJson))
		require.NoError(t, err)
		req.Header.Set("User-Agent", "test-agent")
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("X-REPFORGE-APP-SECRET", testAppSecret)

		resp, err := s.httpClient.Do(req)
		require.NoError(t, err)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("add, get, update, delete", func(t *testing.T) {
		addResp := s.newSessionRequest(ctx, t, workouts.Session{
			UserID:      "crud-user",
			StartedAt:   time.Now().Add(-2 * time.Hour),
			DurationMin: 60,
			Notes:       "morning workout",
			Exercises: []workouts.PerformedExercise{
				{Name: "Deadlift", MuscleGroup: "back", Sets: 5, Reps: 5, Kilos: 120},
				{Name: "Leg Curl", MuscleGroup: "hamstrings", Sets: 3, Reps: 12, Kilos: 40},
			},
		})

		assert.Equal(t, "crud-user", addResp.UserID)
		assert.Equal(t, 1, addResp.CountThisWeek)
		assert.Empty(t, addResp.CompletedNodes)
		require.Len(t, addResp.Exercises, 2)
		assert.Equal(t, addResp.ID, addResp.Exercises[0].SessionID)

		gotSession, statusCode := s.getSessionRequest(ctx, t, addResp.ID)
		require.Equal(t, http.StatusOK, statusCode)
		assert.Equal(t, addResp.ID, gotSession.ID)
		assert.Equal(t, "morning workout", gotSession.Notes)
		assert.Len(t, gotSession.Exercises, 2)

		// update notes and duration
		gotSession.Notes = "morning workout, felt great"
		gotSession.DurationMin = 75
		updatedJson, err := json.Marshal(gotSession)
		require.NoError(t, err)

		updateReq, err := http.NewRequestWithContext(ctx, "PUT", fmt.Sprintf("%s/workouts", serverEndpoint), bytes.NewBuffer(updatedJson))
		require.NoError(t, err)
		updateReq.Header.Set("User-Agent", "test-agent")
		updateReq.Header.Set("Content-Type", "application/json")
		updateReq.Header.Set("X-REPFORGE-APP-SECRET", testAppSecret)

		updateResp, err := s.httpClient.Do(updateReq)
		require.NoError(t, err)
		require.Equal(t, http.StatusOK, updateResp.StatusCode)

		updateRespBytes, err := io.ReadAll(updateResp.Body)
		require.NoError(t, err)
		require.NoError(t, updateResp.Body.Close())

		var updateSessionResp workouts.UpdateSessionResponse
		require.NoError(t, json.Unmarshal(updateRespBytes, &updateSessionResp))
		assert.Equal(t, gotSession.ID, updateSessionResp.UpdatedID)

		gotUpdated, statusCode := s.getSessionRequest(ctx, t, gotSession.ID)
		require.Equal(t, http.StatusOK, statusCode)
		assert.Equal(t, "morning workout, felt great", gotUpdated.Notes)
		assert.Equal(t, 75, gotUpdated.DurationMin)

		deleteReq, err := http.NewRequestWithContext(ctx, "DELETE", fmt.Sprintf("%s/workouts/%d", serverEndpoint, gotSession.ID), nil)
		require.NoError(t, err)
		deleteReq.Header.Set("User-Agent", "test-agent")
		deleteReq.Header.Set("X-REPFORGE-APP-SECRET", testAppSecret)

		deleteResp, err := s.httpClient.Do(deleteReq)
		require.NoError(t, err)
		require.Equal(t, http.StatusOK, deleteResp.StatusCode)

		deleteRespBytes, err := io.ReadAll(deleteResp.Body)
		require.NoError(t, err)
		require.NoError(t, deleteResp.Body.Close())

		var deleteSessionResp workouts.DeleteSessionResponse
		require.NoError(t, json.Unmarshal(deleteRespBytes, &deleteSessionResp))
		assert.Equal(t, gotSession.ID, deleteSessionResp.DeletedID)

		_, statusCode = s.getSessionRequest(ctx, t, gotSession.ID)
		assert.Equal(t, http.StatusNotFound, statusCode)
	})

	t.Run("get unknown session", func(t *testing.T) {
		_, statusCode := s.getSessionRequest(ctx, t, 987654)
		assert.Equal(t, http.StatusNotFound, statusCode)
	})

	t.Run("list with pagination", func(t *testing.T) {
		for i := 0; i < 5; i++ {
			s.newSessionRequest(ctx, t, workouts.Session{
				UserID:    "list-user",
				StartedAt: time.Now().Add(-time.Duration(i) * time.Hour),
				Exercises: []workouts.PerformedExercise{
					{Name: "Face Pull", MuscleGroup: "shoulders", Sets: 3, Reps: 15, Kilos: 20},
				},
			})
		}

		listResp := s.listSessionsRequest(ctx, t, 1, 3, "list-user")
		assert.Equal(t, 5, listResp.Total)
		assert.Len(t, listResp.Sessions, 3)

		listResp = s.listSessionsRequest(ctx, t, 2, 3, "list-user")
		assert.Equal(t, 5, listResp.Total)
		assert.Len(t, listResp.Sessions, 2)
	})

	t.Run("third matching session completes a node", func(t *testing.T) {
		pushSession := func() workouts.Session {
			return workouts.Session{
				UserID:    "push-user",
				StartedAt: time.Now(),
				Exercises: []workouts.PerformedExercise{
					{Name: "Push-Up", MuscleGroup: "chest", Sets: 3, Reps: 20, Kilos: 0},
					{Name: "Bench Press", MuscleGroup: "chest", Sets: 4, Reps: 8, Kilos: 80},
				},
			}
		}

		first := s.newSessionRequest(ctx, t, pushSession())
		assert.Equal(t, 1, first.CountThisWeek)
		assert.Empty(t, first.CompletedNodes)

		second := s.newSessionRequest(ctx, t, pushSession())
		assert.Equal(t, 2, second.CountThisWeek)
		assert.Empty(t, second.CompletedNodes)

		third := s.newSessionRequest(ctx, t, pushSession())
		assert.Equal(t, 3, third.CountThisWeek)
		assert.Equal(t, []string{"push-novice"}, third.CompletedNodes)
	})
}
