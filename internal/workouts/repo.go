package workouts

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel/attribute"

	"github.com/vstojkovic/repforge/internal/telemetry/tracing"
)

var ErrSessionNotFound = errors.New("workout session not found")

type SessionParams struct {
	UserID string
	From   *time.Time
	To     *time.Time
}

type ListParams struct {
	SessionParams
	Page int
	Size int
}

type EventParams struct {
	UserID string
	From   *time.Time
}

type Repo struct {
	db *pgxpool.Pool
}

func NewRepo(db *pgxpool.Pool) *Repo {
	return &Repo{
		db: db,
	}
}

func (r *Repo) Add(ctx context.Context, session Session) (_ *Session, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.workouts.add")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	err = tx.QueryRow(
		ctx,
		`INSERT INTO workout_session (user_id, started_at, duration_min, notes)
			VALUES ($1, $2, $3, $4)
		RETURNING id;`,
		session.UserID, session.StartedAt, session.DurationMin, session.Notes,
	).Scan(&session.ID)
	if err != nil {
		return nil, fmt.Errorf("insert session: %w", err)
	}

	for i := range session.Exercises {
		ex := &session.Exercises[i]
		ex.SessionID = session.ID
		err = tx.QueryRow(
			ctx,
			`INSERT INTO session_exercise (session_id, name, muscle_group, sets, reps, kilos)
				VALUES ($1, $2, $3, $4, $5, $6)
			RETURNING id;`,
			ex.SessionID, ex.Name, ex.MuscleGroup, ex.Sets, ex.Reps, ex.Kilos,
		).Scan(&ex.ID)
		if err != nil {
			return nil, fmt.Errorf("insert session exercise [%s]: %w", ex.Name, err)
		}
	}

	if err = tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit tx: %w", err)
	}

	span.SetAttributes(attribute.Int("session.id", session.ID))

	return &session, nil
}

func (r *Repo) Get(ctx context.Context, id int) (_ *Session, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.workouts.get")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("id", id))

	rows, err := r.db.Query(
		ctx,
		`SELECT id, user_id, started_at, duration_min, notes
			FROM workout_session
			WHERE id = $1;`,
		id,
	)
	if err != nil {
		return nil, err
	}

	sessions, err := r.rows2sessions(rows)
	if err != nil {
		return nil, err
	}
	if len(sessions) != 1 {
		return nil, ErrSessionNotFound
	}

	session := &sessions[0]
	if err := r.attachExercises(ctx, session); err != nil {
		return nil, fmt.Errorf("attach exercises: %w", err)
	}

	return session, nil
}

// ListAll returns all sessions matching the given params, newest first.
func (r *Repo) ListAll(ctx context.Context, params SessionParams) (_ []Session, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.workouts.listall")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.String("user_id", params.UserID))

	rows, err := r.db.Query(
		ctx,
		`SELECT id, user_id, started_at, duration_min, notes
			FROM workout_session
			WHERE ($1::text = '' OR user_id = $1)
			AND ($2::timestamp IS NULL OR started_at >= $2)
			AND ($3::timestamp IS NULL OR started_at <= $3)
			ORDER BY started_at DESC;`,
		params.UserID, params.From, params.To,
	)
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}

	sessions, err := r.rows2sessions(rows)
	if err != nil {
		return nil, fmt.Errorf("rows2sessions: %w", err)
	}

	for i := range sessions {
		if err := r.attachExercises(ctx, &sessions[i]); err != nil {
			return nil, fmt.Errorf("attach exercises: %w", err)
		}
	}

	return sessions, nil
}

// List is like ListAll, but returns the specific PAGE of sessions,
// i.e. is used for pagination.
func (r *Repo) List(ctx context.Context, params ListParams) (_ []Session, total int, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.workouts.list")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("page", params.Page))
	span.SetAttributes(attribute.Int("size", params.Size))
	span.SetAttributes(attribute.String("user_id", params.UserID))

	if params.Page < 1 {
		return nil, -1, errors.New("page must be greater than 0")
	}
	if params.Size < 1 {
		return nil, -1, errors.New("size must be greater than 0")
	}

	limit := params.Size
	offset := (params.Page - 1) * params.Size
	countAll, err := r.SessionsCount(ctx, params.SessionParams)
	if err != nil {
		return nil, -1, err
	}

	if countAll <= limit {
		limit = countAll
		offset = 0
	}
	if countAll-offset < limit {
		offset = countAll - limit
	}

	rows, err := r.db.Query(
		ctx,
		`SELECT id, user_id, started_at, duration_min, notes
			FROM workout_session
			WHERE ($1::text = '' OR user_id = $1)
			ORDER BY started_at DESC
			LIMIT $2
			OFFSET $3;`,
		params.UserID, limit, offset,
	)
	if err != nil {
		return nil, -1, err
	}

	sessions, err := r.rows2sessions(rows)
	if err != nil {
		return nil, -1, err
	}

	for i := range sessions {
		if err := r.attachExercises(ctx, &sessions[i]); err != nil {
			return nil, -1, fmt.Errorf("attach exercises: %w", err)
		}
	}

	return sessions, countAll, nil
}

func (r *Repo) SessionsCount(ctx context.Context, params SessionParams) (_ int, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.workouts.count")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	var count int
	err = r.db.QueryRow(
		ctx,
		`SELECT COUNT(*) FROM workout_session
			WHERE ($1::text = '' OR user_id = $1)
			AND ($2::timestamp IS NULL OR started_at >= $2)
			AND ($3::timestamp IS NULL OR started_at <= $3);`,
		params.UserID, params.From, params.To,
	).Scan(&count)
	if err != nil {
		return -1, fmt.Errorf("count sessions: %w", err)
	}

	return count, nil
}

func (r *Repo) Update(ctx context.Context, session *Session) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.workouts.update")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("id", session.ID))

	tag, err := r.db.Exec(
		ctx,
		`UPDATE workout_session SET started_at = $1, duration_min = $2, notes = $3 WHERE id = $4;`,
		session.StartedAt, session.DurationMin, session.Notes, session.ID,
	)
	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		return ErrSessionNotFound
	}

	return nil
}

func (r *Repo) Delete(ctx context.Context, id int) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.workouts.delete")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("id", id))

	tag, err := r.db.Exec(
		ctx,
		`DELETE FROM workout_session WHERE id = $1;`,
		id,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrSessionNotFound
	}
	return nil
}

// ListEvents reconstructs the per-body-part workout events from the
// session / exercise join: one event per (session, muscle group) pair.
func (r *Repo) ListEvents(ctx context.Context, params EventParams) (_ []WorkoutEvent, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.workouts.listevents")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.String("user_id", params.UserID))

	rows, err := r.db.Query(
		ctx,
		`SELECT s.id, e.muscle_group, s.started_at, SUM(e.sets)
			FROM workout_session s
			JOIN session_exercise e ON e.session_id = s.id
			WHERE ($1::text = '' OR s.user_id = $1)
			AND ($2::timestamp IS NULL OR s.started_at >= $2)
			GROUP BY s.id, e.muscle_group, s.started_at
			ORDER BY s.started_at DESC;`,
		params.UserID, params.From,
	)
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	defer rows.Close()

	events := make([]WorkoutEvent, 0)
	for rows.Next() {
		var e WorkoutEvent
		if err := rows.Scan(&e.SessionID, &e.BodyPart, &e.PerformedAt, &e.SetCount); err != nil {
			return nil, fmt.Errorf("rows scan: %w", err)
		}
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}

	return events, nil
}

func (r *Repo) rows2sessions(rows pgx.Rows) ([]Session, error) {
	defer rows.Close()

	sessions := make([]Session, 0)
	for rows.Next() {
		var s Session
		if err := rows.Scan(&s.ID, &s.UserID, &s.StartedAt, &s.DurationMin, &s.Notes); err != nil {
			return nil, err
		}
		sessions = append(sessions, s)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return sessions, nil
}

func (r *Repo) attachExercises(ctx context.Context, session *Session) error {
	rows, err := r.db.Query(
		ctx,
		`SELECT id, session_id, name, muscle_group, sets, reps, kilos
			FROM session_exercise
			WHERE session_id = $1
			ORDER BY id;`,
		session.ID,
	)
	if err != nil {
		return err
	}
	defer rows.Close()

	exercises := make([]PerformedExercise, 0)
	for rows.Next() {
		var ex PerformedExercise
		if err := rows.Scan(&ex.ID, &ex.SessionID, &ex.Name, &ex.MuscleGroup, &ex.Sets, &ex.Reps, &ex.Kilos); err != nil {
			return err
		}
		exercises = append(exercises, ex)
	}
	if err := rows.Err(); err != nil {
		return err
	}

	session.Exercises = exercises
	return nil
}
