package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/pharmacycle/pharma-cycle/internal/domain"
	"github.com/pharmacycle/pharma-cycle/internal/service/analytics"
	"github.com/pharmacycle/pharma-cycle/internal/service/partner"
)

// DisposalRepo implements analytics.Repository and partner.Repository
// against PostgreSQL.
type DisposalRepo struct{ db *sql.DB }

// NewDisposalRepo creates a Postgres-backed disposal repository.
func NewDisposalRepo(db *sql.DB) *DisposalRepo { return &DisposalRepo{db: db} }

const disposalSelect = `
	SELECT d.id, d.user_id, COALESCE(u.name,''), COALESCE(u.email,''),
	       d.pharmacy_id, p.name, p.city,
	       d.items, d.status, d.disposal_code, d.created_at, d.completed_at
	FROM disposals d
	LEFT JOIN users u ON u.id = d.user_id
	LEFT JOIN pharmacies p ON p.id = d.pharmacy_id`

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanDisposal(row rowScanner) (*domain.DisposalRecord, error) {
	var (
		rec                    domain.DisposalRecord
		userName, userEmail    string
		pharmacyID             sql.NullString
		pharmacyName, pharmCty sql.NullString
		items                  []byte
		completedAt            sql.NullTime
	)
	if err := row.Scan(
		&rec.ID, &rec.UserID, &userName, &userEmail,
		&pharmacyID, &pharmacyName, &pharmCty,
		&items, &rec.Status, &rec.DisposalCode, &rec.CreatedAt, &completedAt,
	); err != nil {
		return nil, err
	}

	if len(items) > 0 {
		if err := json.Unmarshal(items, &rec.Items); err != nil {
			return nil, fmt.Errorf("decode items of disposal %s: %w", rec.ID, err)
		}
	}
	if userName != "" {
		rec.User = &domain.UserRef{ID: rec.UserID, Name: userName, Email: userEmail}
	}
	if pharmacyID.Valid {
		id := pharmacyID.String
		rec.PharmacyID = &id
		if pharmacyName.Valid {
			rec.Pharmacy = &domain.PharmacyRef{ID: id, Name: pharmacyName.String, City: pharmCty.String}
		}
	}
	if completedAt.Valid {
		t := completedAt.Time
		rec.CompletedAt = &t
	}
	return &rec, nil
}

func (r *DisposalRepo) queryDisposals(ctx context.Context, query string, args ...interface{}) ([]domain.DisposalRecord, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.DisposalRecord
	for rows.Next() {
		rec, err := scanDisposal(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *rec)
	}
	return out, rows.Err()
}

// ListCompleted returns Completed disposals created inside rg, oldest first.
func (r *DisposalRepo) ListCompleted(ctx context.Context, rg analytics.Range) ([]domain.DisposalRecord, error) {
	out, err := r.queryDisposals(ctx, disposalSelect+`
		WHERE d.status = $1 AND d.created_at >= $2 AND d.created_at <= $3
		ORDER BY d.created_at
	`, domain.DisposalCompleted, rg.From, rg.To)
	if err != nil {
		return nil, fmt.Errorf("list completed disposals: %w", err)
	}
	return out, nil
}

func (r *DisposalRepo) FindByCode(ctx context.Context, code string) (*domain.DisposalRecord, error) {
	rec, err := scanDisposal(r.db.QueryRowContext(ctx, disposalSelect+`
		WHERE d.disposal_code = $1
	`, code))
	if err == sql.ErrNoRows {
		return nil, partner.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find disposal by code: %w", err)
	}
	return rec, nil
}

// Complete flips a Pending disposal to Completed and applies the user and
// pharmacy side effects in one transaction.
func (r *DisposalRepo) Complete(ctx context.Context, id string, completedAt time.Time, bonusPoints int) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	var userID string
	var pharmacyID sql.NullString
	err = tx.QueryRowContext(ctx, `
		UPDATE disposals SET status = $1, completed_at = $2
		WHERE id = $3 AND status = $4
		RETURNING user_id, pharmacy_id
	`, domain.DisposalCompleted, completedAt, id, domain.DisposalPending).Scan(&userID, &pharmacyID)
	if err == sql.ErrNoRows {
		return partner.ErrAlreadyCompleted
	}
	if err != nil {
		return fmt.Errorf("complete disposal: %w", err)
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE users SET points = points + $1, updated_at = $2 WHERE id = $3`,
		bonusPoints, completedAt, userID,
	); err != nil {
		return fmt.Errorf("credit user points: %w", err)
	}

	if pharmacyID.Valid {
		if _, err := tx.ExecContext(ctx,
			`UPDATE pharmacies SET disposals_verified = disposals_verified + 1 WHERE id = $1`,
			pharmacyID.String,
		); err != nil {
			return fmt.Errorf("increment pharmacy verified count: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit completion: %w", err)
	}
	return nil
}

func (r *DisposalRepo) CountCompleted(ctx context.Context, from, to time.Time) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM disposals
		WHERE status = $1 AND completed_at >= $2 AND completed_at < $3
	`, domain.DisposalCompleted, from, to).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count completed disposals: %w", err)
	}
	return n, nil
}

func (r *DisposalRepo) CountAllCompleted(ctx context.Context) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM disposals WHERE status = $1`, domain.DisposalCompleted,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count all completed disposals: %w", err)
	}
	return n, nil
}

func (r *DisposalRepo) RecentCompleted(ctx context.Context, limit int) ([]domain.DisposalRecord, error) {
	out, err := r.queryDisposals(ctx, disposalSelect+`
		WHERE d.status = $1
		ORDER BY d.completed_at DESC NULLS LAST
		LIMIT $2
	`, domain.DisposalCompleted, limit)
	if err != nil {
		return nil, fmt.Errorf("recent completed disposals: %w", err)
	}
	return out, nil
}

func (r *DisposalRepo) CountActiveUsers(ctx context.Context, since time.Time) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM users WHERE updated_at >= $1`, since,
	).Scan(&n); err != nil {
		return 0, fmt.Errorf("count active users: %w", err)
	}
	return n, nil
}

// BulkInsert loads disposals with COPY. Missing IDs are generated.
func (r *DisposalRepo) BulkInsert(ctx context.Context, records []domain.DisposalRecord) (int, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, pq.CopyIn(
		"disposals",
		"id", "user_id", "pharmacy_id", "items", "status",
		"disposal_code", "created_at", "completed_at",
	))
	if err != nil {
		return 0, fmt.Errorf("prepare COPY: %w", err)
	}

	for i := range records {
		rec := &records[i]
		if rec.ID == "" {
			rec.ID = uuid.New().String()
		}
		items, err := json.Marshal(rec.Items)
		if err != nil {
			stmt.Close()
			return 0, fmt.Errorf("encode items of disposal %s: %w", rec.ID, err)
		}
		var pharmacyID interface{}
		if rec.PharmacyID != nil {
			pharmacyID = *rec.PharmacyID
		}
		var completedAt interface{}
		if rec.CompletedAt != nil {
			completedAt = *rec.CompletedAt
		}
		if _, err := stmt.ExecContext(ctx,
			rec.ID, rec.UserID, pharmacyID, string(items), string(rec.Status),
			rec.DisposalCode, rec.CreatedAt, completedAt,
		); err != nil {
			stmt.Close()
			return 0, fmt.Errorf("copy disposal %s: %w", rec.ID, err)
		}
	}

	if _, err := stmt.ExecContext(ctx); err != nil {
		stmt.Close()
		return 0, fmt.Errorf("flush COPY: %w", err)
	}
	if err := stmt.Close(); err != nil {
		return 0, fmt.Errorf("close COPY: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit COPY: %w", err)
	}
	return len(records), nil
}
