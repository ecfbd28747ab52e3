package repository

import (
	"context"
	"errors"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"user-insight/internal/domain"
)

// ErrNotFound se devuelve cuando un registro mandatorio no existe.
var ErrNotFound = errors.New("record not found")

// Tipo de tarea que califica como actividad para la elegibilidad.
const eligibleTaskType = "communication"

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// Warehouse es la frontera hacia el almacén durable: worklist, señales
// crudas por usuario y upsert versionado de predicciones.
type Warehouse interface {
	ListEligibleUserIDs(ctx context.Context) ([]int64, error)
	GetProfile(ctx context.Context, userID int64) (domain.UserProfile, error)
	GetPrompts(ctx context.Context, userID int64) ([]string, error)
	GetFilenames(ctx context.Context, userID int64) ([]string, error)
	UpsertPrediction(ctx context.Context, row domain.Row) error
	ListPredictions(ctx context.Context, version int64) ([]domain.Row, error)
}

type PgWarehouse struct {
	pool         *pgxpool.Pool
	minTaskCount int
	windowDays   int
	timeout      time.Duration
}

func NewPgWarehouse(pool *pgxpool.Pool, minTaskCount, activityWindowDays int, timeout time.Duration) *PgWarehouse {
	return &PgWarehouse{
		pool:         pool,
		minTaskCount: minTaskCount,
		windowDays:   activityWindowDays,
		timeout:      timeout,
	}
}

func (r *PgWarehouse) callCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	if r.timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, r.timeout)
}

// ListEligibleUserIDs arma la worklist: usuarios con actividad calificante en
// la ventana reciente y más de minTaskCount tareas en total.
func (r *PgWarehouse) ListEligibleUserIDs(ctx context.Context) ([]int64, error) {
	ctx, cancel := r.callCtx(ctx)
	defer cancel()

	query, args, err := psql.
		Select("user_id").
		From("tasks").
		Where(sq.Eq{"task_type": eligibleTaskType}).
		GroupBy("user_id").
		Having(sq.Gt{"COUNT(*)": r.minTaskCount}).
		Having(sq.Expr("MAX(created_at) >= now() - make_interval(days => ?)", r.windowDays)).
		OrderBy("user_id").
		ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (r *PgWarehouse) GetProfile(ctx context.Context, userID int64) (domain.UserProfile, error) {
	ctx, cancel := r.callCtx(ctx)
	defer cancel()

	const query = `
		SELECT id, email, given_name, family_name, full_name, image_url, output_language
		FROM users
		WHERE id = $1
	`
	var p domain.UserProfile
	err := r.pool.QueryRow(ctx, query, userID).Scan(
		&p.ID,
		&p.Email,
		&p.GivenName,
		&p.FamilyName,
		&p.FullName,
		&p.ImageURL,
		&p.OutputLanguage,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.UserProfile{}, ErrNotFound
	}
	return p, err
}

// GetPrompts devuelve los prompts históricos del usuario en orden cronológico.
// El prompt vive dentro del JSON task_meta; filas sin prompt se descartan.
func (r *PgWarehouse) GetPrompts(ctx context.Context, userID int64) ([]string, error) {
	ctx, cancel := r.callCtx(ctx)
	defer cancel()

	const query = `
		SELECT COALESCE(task_meta->>'prompt', '')
		FROM tasks
		WHERE task_type = $1 AND user_id = $2
		ORDER BY created_at
	`
	rows, err := r.pool.Query(ctx, query, eligibleTaskType, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var prompts []string
	for rows.Next() {
		var prompt string
		if err := rows.Scan(&prompt); err != nil {
			return nil, err
		}
		if prompt == "" {
			continue
		}
		prompts = append(prompts, prompt)
	}
	return prompts, rows.Err()
}

func (r *PgWarehouse) GetFilenames(ctx context.Context, userID int64) ([]string, error) {
	ctx, cancel := r.callCtx(ctx)
	defer cancel()

	const query = `
		SELECT filename
		FROM files
		WHERE user_id = $1
		ORDER BY created_at DESC
	`
	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		if name == "" {
			continue
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

// UpsertPrediction inserta la fila clave (user_id, version); si ya existe,
// sobreescribe todas las columnas no clave. Corridas repetidas dentro del
// mismo período quedan idempotentes.
func (r *PgWarehouse) UpsertPrediction(ctx context.Context, row domain.Row) error {
	ctx, cancel := r.callCtx(ctx)
	defer cancel()

	const query = `
		INSERT INTO user_predictions (
			user_id, version, occupation, industry, school, primary_language, major, degree_level, gender
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (user_id, version) DO UPDATE SET
			occupation = EXCLUDED.occupation,
			industry = EXCLUDED.industry,
			school = EXCLUDED.school,
			primary_language = EXCLUDED.primary_language,
			major = EXCLUDED.major,
			degree_level = EXCLUDED.degree_level,
			gender = EXCLUDED.gender
	`
	_, err := r.pool.Exec(ctx, query,
		row.UserID,
		row.Version,
		row.Occupation,
		row.Industry,
		row.School,
		row.PrimaryLanguage,
		row.Major,
		row.DegreeLevel,
		row.Gender,
	)
	return err
}

// ListPredictions lista las filas persistidas de una versión, para el export.
func (r *PgWarehouse) ListPredictions(ctx context.Context, version int64) ([]domain.Row, error) {
	ctx, cancel := r.callCtx(ctx)
	defer cancel()

	query, args, err := psql.
		Select("user_id", "version", "occupation", "industry", "school", "primary_language", "major", "degree_level", "gender").
		From("user_predictions").
		Where(sq.Eq{"version": version}).
		OrderBy("user_id").
		ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Row
	for rows.Next() {
		var row domain.Row
		if err := rows.Scan(
			&row.UserID,
			&row.Version,
			&row.Occupation,
			&row.Industry,
			&row.School,
			&row.PrimaryLanguage,
			&row.Major,
			&row.DegreeLevel,
			&row.Gender,
		); err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	return out, rows.Err()
}
