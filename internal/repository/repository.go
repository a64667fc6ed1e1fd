package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	apperr "github.com/Dan9191/money-marathon/internal/errors"
	"github.com/Dan9191/money-marathon/internal/models"
	"github.com/google/uuid"
	"github.com/lib/pq"
)

// Tx is the set of plan operations that run inside one transaction. LockPlan
// takes a row lock, so everything done after it in the same Tx sees and
// writes a consistent snapshot of that plan.
type Tx interface {
	InsertPlan(ctx context.Context, plan *models.Plan) error
	LockPlan(ctx context.Context, id string) (*models.Plan, error)
	LoadDayEntries(ctx context.Context, planID string) ([]models.DayEntry, error)
	InsertDayEntries(ctx context.Context, entries []models.DayEntry) ([]models.DayEntry, error)
	DeleteDayEntriesFromDay(ctx context.Context, planID string, fromDay int) (int64, error)
	UpdateDayResult(ctx context.Context, planID string, day int, result models.DayResult) error
	UpdatePlanStatus(ctx context.Context, planID string, status models.PlanStatus) error
}

// Store provides database operations
type Store interface {
	CreateUser(ctx context.Context, user *models.User) error
	FindUserByEmail(ctx context.Context, email string) (*models.User, error)
	FindUserByID(ctx context.Context, id string) (*models.User, error)
	FindPlan(ctx context.Context, id string) (*models.Plan, error)
	ListPlansByUser(ctx context.Context, userID string) ([]models.Plan, error)
	ListPlansByStatus(ctx context.Context, status models.PlanStatus) ([]models.Plan, error)
	LoadDayEntries(ctx context.Context, planID string) ([]models.DayEntry, error)
	DeletePlan(ctx context.Context, id string) error
	InTx(ctx context.Context, fn func(tx Tx) error) error
}

type queryer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	PrepareContext(ctx context.Context, query string) (*sql.Stmt, error)
}

var _ Store = (*Repository)(nil)

// Repository is the Postgres implementation of Store
type Repository struct {
	db *sql.DB
}

// NewRepository initializes a new repository
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// InTx runs fn in a transaction, committing when it returns nil
func (r *Repository) InTx(ctx context.Context, fn func(tx Tx) error) error {
	sqlTx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	if err := fn(&txRepo{q: sqlTx}); err != nil {
		_ = sqlTx.Rollback()
		return err
	}
	if err := sqlTx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// CreateUser creates a new user in the database
func (r *Repository) CreateUser(ctx context.Context, user *models.User) error {
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	query := `
		INSERT INTO marathon.users (id, name, email, password_hash, created_at)
		VALUES ($1, $2, $3, $4, CURRENT_TIMESTAMP)
		RETURNING created_at`
	err := r.db.QueryRowContext(ctx, query, user.ID, user.Name, user.Email, user.PasswordHash).
		Scan(&user.CreatedAt)
	if isUniqueViolation(err) {
		return fmt.Errorf("email %s already registered: %w", user.Email, apperr.ErrConflict)
	}
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// FindUserByEmail retrieves a user by email
func (r *Repository) FindUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.findUser(ctx, "email", email)
}

// FindUserByID retrieves a user by id
func (r *Repository) FindUserByID(ctx context.Context, id string) (*models.User, error) {
	return r.findUser(ctx, "id", id)
}

func (r *Repository) findUser(ctx context.Context, column, value string) (*models.User, error) {
	user := &models.User{}
	query := `
		SELECT id, name, email, password_hash, created_at
		FROM marathon.users
		WHERE ` + column + ` = $1`
	err := r.db.QueryRowContext(ctx, query, value).
		Scan(&user.ID, &user.Name, &user.Email, &user.PasswordHash, &user.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.NotFound("user", value)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	return user, nil
}

// FindPlan retrieves a plan by id
func (r *Repository) FindPlan(ctx context.Context, id string) (*models.Plan, error) {
	query := `SELECT ` + planColumns + ` FROM marathon.plans WHERE id = $1`
	return scanPlan(r.db.QueryRowContext(ctx, query, id), id)
}

// ListPlansByUser retrieves a user's plans, newest first
func (r *Repository) ListPlansByUser(ctx context.Context, userID string) ([]models.Plan, error) {
	query := `SELECT ` + planColumns + ` FROM marathon.plans WHERE user_id = $1 ORDER BY created_at DESC`
	return queryPlans(ctx, r.db, query, userID)
}

// ListPlansByStatus retrieves every plan in the given status
func (r *Repository) ListPlansByStatus(ctx context.Context, status models.PlanStatus) ([]models.Plan, error) {
	query := `SELECT ` + planColumns + ` FROM marathon.plans WHERE status = $1 ORDER BY created_at`
	return queryPlans(ctx, r.db, query, string(status))
}

// LoadDayEntries retrieves a plan's entries ordered by day
func (r *Repository) LoadDayEntries(ctx context.Context, planID string) ([]models.DayEntry, error) {
	return (&txRepo{q: r.db}).LoadDayEntries(ctx, planID)
}

// DeletePlan deletes a plan; its day entries are removed by the cascade
func (r *Repository) DeletePlan(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM marathon.plans WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete plan: %w", err)
	}
	return expectRows(res, "plan", id)
}

type txRepo struct {
	q queryer
}

func (t *txRepo) InsertPlan(ctx context.Context, plan *models.Plan) error {
	if plan.ID == "" {
		plan.ID = uuid.NewString()
	}
	query := `
		INSERT INTO marathon.plans (id, user_id, name, start_wager, odds, days, status, hmac, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, CURRENT_TIMESTAMP)
		RETURNING created_at`
	err := t.q.QueryRowContext(ctx, query,
		plan.ID, plan.UserID, plan.Name, plan.StartWager, plan.Odds, plan.Days, string(plan.Status), plan.HMAC).
		Scan(&plan.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create plan: %w", err)
	}
	return nil
}

func (t *txRepo) LockPlan(ctx context.Context, id string) (*models.Plan, error) {
	query := `SELECT ` + planColumns + ` FROM marathon.plans WHERE id = $1 FOR UPDATE`
	return scanPlan(t.q.QueryRowContext(ctx, query, id), id)
}

func (t *txRepo) LoadDayEntries(ctx context.Context, planID string) ([]models.DayEntry, error) {
	query := `
		SELECT id, plan_id, day, wager, odds, winnings, result
		FROM marathon.day_entries
		WHERE plan_id = $1
		ORDER BY day`
	rows, err := t.q.QueryContext(ctx, query, planID)
	if err != nil {
		return nil, fmt.Errorf("failed to load day entries: %w", err)
	}
	defer rows.Close()

	var entries []models.DayEntry
	for rows.Next() {
		var e models.DayEntry
		var result string
		if err := rows.Scan(&e.ID, &e.PlanID, &e.Day, &e.Wager, &e.Odds, &e.Winnings, &result); err != nil {
			return nil, fmt.Errorf("failed to scan day entry: %w", err)
		}
		e.Result = models.DayResult(result)
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to load day entries: %w", err)
	}
	return entries, nil
}

// InsertDayEntries streams the entries with COPY, which lib/pq only supports
// inside a transaction.
func (t *txRepo) InsertDayEntries(ctx context.Context, entries []models.DayEntry) ([]models.DayEntry, error) {
	if len(entries) == 0 {
		return nil, nil
	}
	stmt, err := t.q.PrepareContext(ctx, pq.CopyInSchema("marathon", "day_entries",
		"id", "plan_id", "day", "wager", "odds", "winnings", "result"))
	if err != nil {
		return nil, fmt.Errorf("failed to prepare day entry copy: %w", err)
	}
	defer stmt.Close()

	stored := make([]models.DayEntry, len(entries))
	for i, e := range entries {
		if e.ID == "" {
			e.ID = uuid.NewString()
		}
		if _, err := stmt.ExecContext(ctx, e.ID, e.PlanID, e.Day, e.Wager, e.Odds, e.Winnings, string(e.Result)); err != nil {
			return nil, fmt.Errorf("failed to copy day %d: %w", e.Day, err)
		}
		stored[i] = e
	}
	if _, err := stmt.ExecContext(ctx); err != nil {
		if isUniqueViolation(err) {
			return nil, apperr.Inconsistent("duplicate day entries for plan %s", entries[0].PlanID)
		}
		return nil, fmt.Errorf("failed to flush day entries: %w", err)
	}
	return stored, nil
}

func (t *txRepo) DeleteDayEntriesFromDay(ctx context.Context, planID string, fromDay int) (int64, error) {
	res, err := t.q.ExecContext(ctx,
		`DELETE FROM marathon.day_entries WHERE plan_id = $1 AND day >= $2`, planID, fromDay)
	if err != nil {
		return 0, fmt.Errorf("failed to delete day entries: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to count deleted day entries: %w", err)
	}
	return n, nil
}

func (t *txRepo) UpdateDayResult(ctx context.Context, planID string, day int, result models.DayResult) error {
	res, err := t.q.ExecContext(ctx,
		`UPDATE marathon.day_entries SET result = $3 WHERE plan_id = $1 AND day = $2`, planID, day, string(result))
	if err != nil {
		return fmt.Errorf("failed to update day result: %w", err)
	}
	return expectRows(res, "day entry", fmt.Sprintf("%s/%d", planID, day))
}

func (t *txRepo) UpdatePlanStatus(ctx context.Context, planID string, status models.PlanStatus) error {
	res, err := t.q.ExecContext(ctx,
		`UPDATE marathon.plans SET status = $2 WHERE id = $1`, planID, string(status))
	if err != nil {
		return fmt.Errorf("failed to update plan status: %w", err)
	}
	return expectRows(res, "plan", planID)
}

const planColumns = `id, user_id, name, start_wager, odds, days, status, hmac, created_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPlanRow(row rowScanner, plan *models.Plan) error {
	var status string
	if err := row.Scan(&plan.ID, &plan.UserID, &plan.Name, &plan.StartWager, &plan.Odds,
		&plan.Days, &status, &plan.HMAC, &plan.CreatedAt); err != nil {
		return err
	}
	plan.Status = models.PlanStatus(status)
	if !plan.Status.Valid() {
		return apperr.Inconsistent("plan %s has status %q", plan.ID, status)
	}
	return nil
}

func scanPlan(row *sql.Row, id string) (*models.Plan, error) {
	plan := &models.Plan{}
	err := scanPlanRow(row, plan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.NotFound("plan", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find plan: %w", err)
	}
	return plan, nil
}

func queryPlans(ctx context.Context, q queryer, query string, args ...any) ([]models.Plan, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list plans: %w", err)
	}
	defer rows.Close()

	var plans []models.Plan
	for rows.Next() {
		var p models.Plan
		if err := scanPlanRow(rows, &p); err != nil {
			return nil, fmt.Errorf("failed to scan plan: %w", err)
		}
		plans = append(plans, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list plans: %w", err)
	}
	return plans, nil
}

func expectRows(res sql.Result, kind, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if n == 0 {
		return apperr.NotFound(kind, id)
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}
