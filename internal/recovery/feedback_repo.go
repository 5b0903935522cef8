package recovery

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel/attribute"

	"github.com/vstojkovic/repforge/internal/telemetry/tracing"
)

var ErrFeedbackNotFound = errors.New("feedback entry not found")

type FeedbackRepo struct {
	db *pgxpool.Pool
}

func NewFeedbackRepo(db *pgxpool.Pool) *FeedbackRepo {
	return &FeedbackRepo{
		db: db,
	}
}

func (r *FeedbackRepo) Add(ctx context.Context, entry FeedbackEntry) (_ *FeedbackEntry, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.recovery.feedback.add")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	err = r.db.QueryRow(
		ctx,
		`INSERT INTO recovery_feedback (user_id, body_part, feeling, intensity, note, created_at)
			VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id;`,
		entry.UserID, entry.BodyPart, entry.Feeling, entry.Intensity, entry.Note, entry.CreatedAt,
	).Scan(&entry.ID)
	if err != nil {
		return nil, fmt.Errorf("insert feedback: %w", err)
	}

	span.SetAttributes(attribute.Int("feedback.id", entry.ID))

	return &entry, nil
}

// ListForUser returns all feedback entries of a user, newest first.
func (r *FeedbackRepo) ListForUser(ctx context.Context, userID string) (_ []FeedbackEntry, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.recovery.feedback.list")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.String("user_id", userID))

	rows, err := r.db.Query(
		ctx,
		`SELECT id, user_id, body_part, feeling, intensity, note, created_at
			FROM recovery_feedback
			WHERE user_id = $1
			ORDER BY created_at DESC;`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	defer rows.Close()

	entries := make([]FeedbackEntry, 0)
	for rows.Next() {
		var e FeedbackEntry
		if err := rows.Scan(&e.ID, &e.UserID, &e.BodyPart, &e.Feeling, &e.Intensity, &e.Note, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("rows scan: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}

	return entries, nil
}

func (r *FeedbackRepo) Delete(ctx context.Context, id int) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.recovery.feedback.delete")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("id", id))

	tag, err := r.db.Exec(
		ctx,
		`DELETE FROM recovery_feedback WHERE id = $1;`,
		id,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrFeedbackNotFound
	}
	return nil
}
