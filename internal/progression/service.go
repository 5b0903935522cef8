package progression

import (
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"

	"github.com/vstojkovic/repforge/internal/telemetry/metrics"
	"github.com/vstojkovic/repforge/internal/telemetry/tracing"
	"github.com/vstojkovic/repforge/internal/workouts"
)

//go:generate mockgen -source=$GOFILE -destination=service_mocks_test.go -package=progression_test

type progressRepo interface {
	ListProgress(ctx context.Context, userID string) ([]NodeProgress, error)
	RecordMatch(ctx context.Context, userID, nodeID string, sessionID int) (bool, error)
	IncrementCompletion(ctx context.Context, userID, nodeID string) (int, error)
	MarkCompleted(ctx context.Context, userID, nodeID string) error
	EnsureProfile(ctx context.Context, userID string) (*Profile, error)
	AddReward(ctx context.Context, userID string, xp, crowns int) error
	ListProfiles(ctx context.Context) ([]Profile, error)
}

// Service drives the progression state machine: matches logged sessions
// against the node catalog, advances per-node counters and hands out XP and
// crown rewards on node completion.
type Service struct {
	catalog        *Catalog
	repo           progressRepo
	metricsManager *metrics.Manager
}

func NewService(
	catalog *Catalog,
	repo progressRepo,
	metricsManager *metrics.Manager,
) *Service {
	return &Service{
		catalog:        catalog,
		repo:           repo,
		metricsManager: metricsManager,
	}
}

// ProcessSession matches a freshly logged session against every catalog node
// and advances the matched counters. The (user, node, session) dedup row
// guarantees a session is never counted twice into the same node, so repeated
// processing of the same session is safe. Returns the ids of nodes this
// session completed.
func (s *Service) ProcessSession(ctx context.Context, session workouts.Session) (_ []string, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "progression.processsession")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(
		attribute.String("user_id", session.UserID),
		attribute.Int("session_id", session.ID),
	)

	if _, err := s.repo.EnsureProfile(ctx, session.UserID); err != nil {
		return nil, fmt.Errorf("ensure profile: %w", err)
	}

	progress, err := s.repo.ListProgress(ctx, session.UserID)
	if err != nil {
		return nil, fmt.Errorf("list progress: %w", err)
	}
	alreadyCompleted := make(map[string]bool, len(progress))
	for _, p := range progress {
		if p.Status == StatusCompleted {
			alreadyCompleted[p.NodeID] = true
		}
	}

	var completedNodes []string
	for _, node := range s.catalog.Nodes() {
		if alreadyCompleted[node.ID] {
			continue // terminal, never advanced again
		}
		if !SessionMatchesNode(session, node) {
			continue
		}

		fresh, err := s.repo.RecordMatch(ctx, session.UserID, node.ID, session.ID)
		if err != nil {
			return completedNodes, fmt.Errorf("record match for node %s: %w", node.ID, err)
		}
		if !fresh {
			log.Debugf(
				"session %d already counted for node %s, user %s",
				session.ID, node.ID, session.UserID,
			)
			continue
		}

		count, err := s.repo.IncrementCompletion(ctx, session.UserID, node.ID)
		if err != nil {
			return completedNodes, fmt.Errorf("increment node %s: %w", node.ID, err)
		}

		if count < node.TargetSessions {
			continue
		}

		if err := s.repo.MarkCompleted(ctx, session.UserID, node.ID); err != nil {
			return completedNodes, fmt.Errorf("mark node %s completed: %w", node.ID, err)
		}

		crowns := 0
		if node.Tier == s.catalog.TopTier() {
			crowns = 1
		}
		if err := s.repo.AddReward(ctx, session.UserID, node.XP, crowns); err != nil {
			return completedNodes, fmt.Errorf("reward for node %s: %w", node.ID, err)
		}

		s.metricsManager.CounterNodesCompleted.Inc()
		completedNodes = append(completedNodes, node.ID)
		log.Debugf("user %s completed progression node %s", session.UserID, node.ID)
	}

	return completedNodes, nil
}

// ExperienceState derives the full progression view of a user: node states,
// branch summaries and profile totals.
func (s *Service) ExperienceState(ctx context.Context, userID string) (_ *ExperienceState, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "progression.experiencestate")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.String("user_id", userID))

	profile, err := s.repo.EnsureProfile(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("ensure profile: %w", err)
	}

	progress, err := s.repo.ListProgress(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list progress: %w", err)
	}

	states := Evaluate(s.catalog, progress)
	return &ExperienceState{
		Alias:    profile.Alias,
		TotalXP:  profile.TotalXP,
		Crowns:   profile.Crowns,
		Nodes:    states,
		Branches: SummarizeBranches(states),
	}, nil
}

// Leaderboard ranks all profiles and, when userID is set, resolves that
// user's own rank.
func (s *Service) Leaderboard(ctx context.Context, userID string) (_ Leaderboard, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "progression.leaderboard")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	profiles, err := s.repo.ListProfiles(ctx)
	if err != nil {
		return Leaderboard{}, fmt.Errorf("list profiles: %w", err)
	}

	return BuildLeaderboard(profiles, userID), nil
}
