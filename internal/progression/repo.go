package progression

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel/attribute"

	"github.com/vstojkovic/repforge/internal/telemetry/tracing"
)

var ErrProfileNotFound = errors.New("progression profile not found")

type Repo struct {
	db *pgxpool.Pool
}

func NewRepo(db *pgxpool.Pool) *Repo {
	return &Repo{
		db: db,
	}
}

// ListProgress returns all persisted node progress rows of a user.
func (r *Repo) ListProgress(ctx context.Context, userID string) (_ []NodeProgress, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.progression.listprogress")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.String("user_id", userID))

	rows, err := r.db.Query(
		ctx,
		`SELECT user_id, node_id, completion_count, status
			FROM node_progress
			WHERE user_id = $1;`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	defer rows.Close()

	progress := make([]NodeProgress, 0)
	for rows.Next() {
		var p NodeProgress
		if err := rows.Scan(&p.UserID, &p.NodeID, &p.CompletionCount, &p.Status); err != nil {
			return nil, fmt.Errorf("rows scan: %w", err)
		}
		progress = append(progress, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}

	return progress, nil
}

// RecordMatch inserts the (user, node, session) dedup row. Returns false when
// the row already existed, i.e. this session was processed for this node
// before and must not be counted again.
func (r *Repo) RecordMatch(ctx context.Context, userID, nodeID string, sessionID int) (_ bool, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.progression.recordmatch")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(
		attribute.String("node_id", nodeID),
		attribute.Int("session_id", sessionID),
	)

	tag, err := r.db.Exec(
		ctx,
		`INSERT INTO progression_match (user_id, node_id, session_id)
			VALUES ($1, $2, $3)
		ON CONFLICT (user_id, node_id, session_id) DO NOTHING;`,
		userID, nodeID, sessionID,
	)
	if err != nil {
		return false, fmt.Errorf("insert match: %w", err)
	}

	return tag.RowsAffected() > 0, nil
}

// IncrementCompletion bumps the completion counter for (user, node), creating
// the row on first match, and returns the new count.
func (r *Repo) IncrementCompletion(ctx context.Context, userID, nodeID string) (_ int, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.progression.increment")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.String("node_id", nodeID))

	var count int
	err = r.db.QueryRow(
		ctx,
		`INSERT INTO node_progress (user_id, node_id, completion_count, status)
			VALUES ($1, $2, 1, $3)
		ON CONFLICT (user_id, node_id)
			DO UPDATE SET completion_count = node_progress.completion_count + 1
		RETURNING completion_count;`,
		userID, nodeID, StatusLocked,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("increment completion: %w", err)
	}

	return count, nil
}

// MarkCompleted persists the terminal COMPLETED status for (user, node).
func (r *Repo) MarkCompleted(ctx context.Context, userID, nodeID string) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.progression.markcompleted")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.String("node_id", nodeID))

	_, err = r.db.Exec(
		ctx,
		`UPDATE node_progress SET status = $1
			WHERE user_id = $2 AND node_id = $3;`,
		StatusCompleted, userID, nodeID,
	)
	return err
}

// EnsureProfile returns the user's profile, creating it with a freshly
// derived alias on first touch.
func (r *Repo) EnsureProfile(ctx context.Context, userID string) (_ *Profile, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.progression.ensureprofile")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.String("user_id", userID))

	profile := Profile{UserID: userID}
	err = r.db.QueryRow(
		ctx,
		`INSERT INTO progression_profile (user_id, alias, total_xp, crowns)
			VALUES ($1, $2, 0, 0)
		ON CONFLICT (user_id) DO UPDATE SET alias = progression_profile.alias
		RETURNING alias, total_xp, crowns;`,
		userID, Alias(userID),
	).Scan(&profile.Alias, &profile.TotalXP, &profile.Crowns)
	if err != nil {
		return nil, fmt.Errorf("ensure profile: %w", err)
	}

	return &profile, nil
}

func (r *Repo) GetProfile(ctx context.Context, userID string) (_ *Profile, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.progression.getprofile")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.String("user_id", userID))

	var profile Profile
	err = r.db.QueryRow(
		ctx,
		`SELECT user_id, alias, total_xp, crowns
			FROM progression_profile
			WHERE user_id = $1;`,
		userID,
	).Scan(&profile.UserID, &profile.Alias, &profile.TotalXP, &profile.Crowns)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrProfileNotFound
		}
		return nil, fmt.Errorf("get profile: %w", err)
	}

	return &profile, nil
}

// AddReward adds completed-node XP (and optionally a crown) to the profile.
func (r *Repo) AddReward(ctx context.Context, userID string, xp, crowns int) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.progression.addreward")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(
		attribute.String("user_id", userID),
		attribute.Int("xp", xp),
	)

	_, err = r.db.Exec(
		ctx,
		`UPDATE progression_profile
			SET total_xp = total_xp + $1, crowns = crowns + $2
			WHERE user_id = $3;`,
		xp, crowns, userID,
	)
	return err
}

// ListProfiles returns all progression profiles, e.g. for leaderboard ranking.
func (r *Repo) ListProfiles(ctx context.Context) (_ []Profile, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.progression.listprofiles")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	rows, err := r.db.Query(
		ctx,
		`SELECT user_id, alias, total_xp, crowns FROM progression_profile;`,
	)
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	defer rows.Close()

	profiles := make([]Profile, 0)
	for rows.Next() {
		var p Profile
		if err := rows.Scan(&p.UserID, &p.Alias, &p.TotalXP, &p.Crowns); err != nil {
			return nil, fmt.Errorf("rows scan: %w", err)
		}
		profiles = append(profiles, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}

	return profiles, nil
}
