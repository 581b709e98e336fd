package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"jobtrack/internal/model"
	"jobtrack/internal/mutate"
	"jobtrack/internal/ordering"
	"jobtrack/internal/statusutil"
)

const applicationColumns = `id, user_id, company, position, salary_min, salary_max, status, notes, sort_index,
	created_on_unixms, updated_on_unixms, deleted_on_unixms`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanApplication(row rowScanner) (model.Application, error) {
	var (
		a                model.Application
		status           string
		created, updated int64
		deleted          sql.NullInt64
	)
	if err := row.Scan(&a.ID, &a.UserID, &a.Company, &a.Position, &a.SalaryMin, &a.SalaryMax, &status, &a.Notes, &a.SortIndex,
		&created, &updated, &deleted); err != nil {
		return model.Application{}, err
	}
	a.Status = model.Status(status)
	a.CreatedOn = time.UnixMilli(created).UTC()
	a.UpdatedOn = time.UnixMilli(updated).UTC()
	if deleted.Valid {
		t := time.UnixMilli(deleted.Int64).UTC()
		a.DeletedOn = &t
	}
	return a, nil
}

func notFound(id string) error {
	return mutate.NotFoundError{Kind: "application", ID: id}
}

func requireOwner(owner string) (string, error) {
	owner = strings.TrimSpace(owner)
	if owner == "" {
		return "", errors.New("missing user")
	}
	return owner, nil
}

// CreateApplication validates p and inserts a new application for owner. Without an
// explicit sort index the application is appended to the end of its status column.
func (s Store) CreateApplication(ctx context.Context, owner string, p model.CreateParams) (model.Application, error) {
	owner, err := requireOwner(owner)
	if err != nil {
		return model.Application{}, err
	}
	if err := mutate.ValidateCreate(&p); err != nil {
		return model.Application{}, err
	}

	db, err := s.openSQLite(ctx)
	if err != nil {
		return model.Application{}, err
	}
	defer db.Close()

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return model.Application{}, err
	}
	defer func() { _ = tx.Rollback() }()

	var key float64
	if p.SortIndex != nil {
		key = *p.SortIndex
	} else {
		col, err := loadColumn(ctx, tx, owner, p.Status)
		if err != nil {
			return model.Application{}, err
		}
		key = ordering.NextKey(col)
	}

	id, err := newRandomID("app")
	if err != nil {
		return model.Application{}, err
	}
	now := s.now()
	a := model.Application{
		ID:        id,
		UserID:    owner,
		Company:   p.Company,
		Position:  p.Position,
		SalaryMin: p.SalaryMin,
		SalaryMax: p.SalaryMax,
		Status:    p.Status,
		Notes:     p.Notes,
		SortIndex: key,
		CreatedOn: now.Truncate(time.Millisecond),
		UpdatedOn: now.Truncate(time.Millisecond),
	}
	if _, err := tx.ExecContext(ctx, `INSERT INTO applications(`+applicationColumns+`) VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, NULL)`,
		a.ID, a.UserID, a.Company, a.Position, a.SalaryMin, a.SalaryMax, string(a.Status), a.Notes, a.SortIndex,
		a.CreatedOn.UnixMilli(), a.UpdatedOn.UnixMilli()); err != nil {
		return model.Application{}, err
	}
	if err := tx.Commit(); err != nil {
		return model.Application{}, err
	}
	return a, nil
}

type queryer interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func loadColumn(ctx context.Context, q queryer, owner string, status model.Status) ([]model.Application, error) {
	rows, err := q.QueryContext(ctx, `SELECT `+applicationColumns+` FROM applications
		WHERE user_id = ? AND status = ? AND deleted_on_unixms IS NULL
		ORDER BY sort_index ASC, created_on_unixms ASC, id ASC`, owner, string(status))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.Application
	for rows.Next() {
		a, err := scanApplication(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func findApplication(ctx context.Context, q queryer, owner, id string) (model.Application, error) {
	row := q.QueryRowContext(ctx, `SELECT `+applicationColumns+` FROM applications
		WHERE id = ? AND user_id = ? AND deleted_on_unixms IS NULL`, id, owner)
	a, err := scanApplication(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Application{}, notFound(id)
	}
	return a, err
}

// GetApplication returns one of owner's applications. Applications owned by someone else
// are reported as not found.
func (s Store) GetApplication(ctx context.Context, owner, id string) (model.Application, error) {
	owner, err := requireOwner(owner)
	if err != nil {
		return model.Application{}, err
	}
	id = strings.TrimSpace(id)
	db, err := s.openSQLite(ctx)
	if err != nil {
		return model.Application{}, err
	}
	defer db.Close()
	return findApplication(ctx, db, owner, id)
}

var sortColumns = map[string]string{
	"sortIndex": "sort_index",
	"company":   "company COLLATE NOCASE",
	"position":  "position COLLATE NOCASE",
	"createdOn": "created_on_unixms",
}

func orderBy(fields []model.SortField) (string, error) {
	if len(fields) == 0 {
		fields = model.DefaultSort()
	}
	parts := make([]string, 0, len(fields)+1)
	for _, f := range fields {
		col, ok := sortColumns[f.Field]
		if !ok {
			return "", fmt.Errorf("unknown sort field %q", f.Field)
		}
		dir := "ASC"
		if f.Desc {
			dir = "DESC"
		}
		parts = append(parts, col+" "+dir)
	}
	parts = append(parts, "id ASC")
	return strings.Join(parts, ", "), nil
}

// ListApplications returns owner's applications matching params. Search is a
// case-insensitive substring match over company, position and notes; its characters are
// matched literally.
func (s Store) ListApplications(ctx context.Context, owner string, params model.ListParams) (model.ListResult, error) {
	owner, err := requireOwner(owner)
	if err != nil {
		return model.ListResult{}, err
	}
	order, err := orderBy(params.Sort)
	if err != nil {
		return model.ListResult{}, err
	}

	query := `SELECT ` + applicationColumns + ` FROM applications WHERE user_id = ? AND deleted_on_unixms IS NULL`
	args := []any{owner}
	if q := strings.TrimSpace(params.Search); q != "" {
		query += ` AND (instr(lower(company), lower(?)) > 0 OR instr(lower(position), lower(?)) > 0 OR instr(lower(notes), lower(?)) > 0)`
		args = append(args, q, q, q)
	}
	query += ` ORDER BY ` + order

	db, err := s.openSQLite(ctx)
	if err != nil {
		return model.ListResult{}, err
	}
	defer db.Close()

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return model.ListResult{}, err
	}
	defer rows.Close()

	out := model.ListResult{Results: []model.Application{}}
	for rows.Next() {
		a, err := scanApplication(rows)
		if err != nil {
			return model.ListResult{}, err
		}
		out.Results = append(out.Results, a)
	}
	if err := rows.Err(); err != nil {
		return model.ListResult{}, err
	}
	out.Count = len(out.Results)
	return out, nil
}

// UpdateApplication applies patch to one of owner's applications.
func (s Store) UpdateApplication(ctx context.Context, owner, id string, patch model.Patch) (mutate.UpdateResult, error) {
	owner, err := requireOwner(owner)
	if err != nil {
		return mutate.UpdateResult{}, err
	}
	id = strings.TrimSpace(id)

	db, err := s.openSQLite(ctx)
	if err != nil {
		return mutate.UpdateResult{}, err
	}
	defer db.Close()

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return mutate.UpdateResult{}, err
	}
	defer func() { _ = tx.Rollback() }()

	existing, err := findApplication(ctx, tx, owner, id)
	if err != nil {
		return mutate.UpdateResult{}, err
	}
	res, err := mutate.UpdateApplication(&existing, owner, patch, s.now())
	if err != nil {
		return mutate.UpdateResult{}, err
	}
	if !res.Changed {
		return res, nil
	}
	a := res.Application
	a.UpdatedOn = a.UpdatedOn.Truncate(time.Millisecond)
	res.Application = a
	if _, err := tx.ExecContext(ctx, `UPDATE applications SET company = ?, position = ?, salary_min = ?, salary_max = ?,
		status = ?, notes = ?, sort_index = ?, updated_on_unixms = ? WHERE id = ? AND user_id = ?`,
		a.Company, a.Position, a.SalaryMin, a.SalaryMax, string(a.Status), a.Notes, a.SortIndex,
		a.UpdatedOn.UnixMilli(), a.ID, owner); err != nil {
		return mutate.UpdateResult{}, err
	}
	if err := tx.Commit(); err != nil {
		return mutate.UpdateResult{}, err
	}
	return res, nil
}

// DeleteApplication removes one of owner's applications.
func (s Store) DeleteApplication(ctx context.Context, owner, id string) error {
	owner, err := requireOwner(owner)
	if err != nil {
		return err
	}
	id = strings.TrimSpace(id)
	db, err := s.openSQLite(ctx)
	if err != nil {
		return err
	}
	defer db.Close()

	res, err := db.ExecContext(ctx, `DELETE FROM applications WHERE id = ? AND user_id = ? AND deleted_on_unixms IS NULL`, id, owner)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return notFound(id)
	}
	return nil
}

// DeleteByStatus removes all of owner's applications in status and returns how many
// were removed.
func (s Store) DeleteByStatus(ctx context.Context, owner string, status model.Status) (int64, error) {
	owner, err := requireOwner(owner)
	if err != nil {
		return 0, err
	}
	if !statusutil.Valid(status) {
		return 0, fmt.Errorf("%w: %s", statusutil.ErrInvalidStatus, status)
	}
	db, err := s.openSQLite(ctx)
	if err != nil {
		return 0, err
	}
	defer db.Close()

	res, err := db.ExecContext(ctx, `DELETE FROM applications WHERE user_id = ? AND status = ? AND deleted_on_unixms IS NULL`, owner, string(status))
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// SoftDeleteApplication marks an application deleted without removing the row. Soft-deleted
// rows are invisible to every read.
func (s Store) SoftDeleteApplication(ctx context.Context, owner, id string) error {
	owner, err := requireOwner(owner)
	if err != nil {
		return err
	}
	id = strings.TrimSpace(id)
	db, err := s.openSQLite(ctx)
	if err != nil {
		return err
	}
	defer db.Close()

	res, err := db.ExecContext(ctx, `UPDATE applications SET deleted_on_unixms = ? WHERE id = ? AND user_id = ? AND deleted_on_unixms IS NULL`,
		s.now().UnixMilli(), id, owner)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return notFound(id)
	}
	return nil
}

// RebalanceColumn rewrites the order keys of owner's status column to evenly spaced
// values, keeping the current display order. It returns the keys that changed.
func (s Store) RebalanceColumn(ctx context.Context, owner string, status model.Status) (map[string]float64, error) {
	owner, err := requireOwner(owner)
	if err != nil {
		return nil, err
	}
	if !statusutil.Valid(status) {
		return nil, fmt.Errorf("%w: %s", statusutil.ErrInvalidStatus, status)
	}
	db, err := s.openSQLite(ctx)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback() }()

	col, err := loadColumn(ctx, tx, owner, status)
	if err != nil {
		return nil, err
	}
	plan := ordering.PlanRebalance(col)
	if len(plan) == 0 {
		return plan, nil
	}
	nowMs := s.now().UnixMilli()
	for id, key := range plan {
		if _, err := tx.ExecContext(ctx, `UPDATE applications SET sort_index = ?, updated_on_unixms = ? WHERE id = ? AND user_id = ?`,
			key, nowMs, id, owner); err != nil {
			return nil, err
		}
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return plan, nil
}
