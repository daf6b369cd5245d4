package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/pharmacycle/pharma-cycle/internal/domain"
)

// DirectoryRepo stores users and partner pharmacies.
type DirectoryRepo struct{ db *sql.DB }

// NewDirectoryRepo creates a Postgres-backed user and pharmacy repository.
func NewDirectoryRepo(db *sql.DB) *DirectoryRepo { return &DirectoryRepo{db: db} }

func (r *DirectoryRepo) CreateUser(ctx context.Context, u *domain.User) error {
	if u.ID == "" {
		u.ID = uuid.New().String()
	}
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO users (id, name, email, points, created_at, updated_at)
		VALUES ($1, $2, $3, $4, NOW(), NOW())
		ON CONFLICT (email) DO UPDATE SET name = EXCLUDED.name, updated_at = NOW()
		RETURNING id, created_at, updated_at
	`, u.ID, u.Name, u.Email, u.Points).Scan(&u.ID, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

func (r *DirectoryRepo) CreatePharmacy(ctx context.Context, p *domain.Pharmacy) error {
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO pharmacies (id, name, address, city, state, partner_code, disposals_verified, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, 0, NOW())
		ON CONFLICT (partner_code) DO UPDATE SET name = EXCLUDED.name
		RETURNING id, created_at
	`, p.ID, p.Name, p.Address, p.City, p.State, p.PartnerCode).Scan(&p.ID, &p.CreatedAt)
	if err != nil {
		return fmt.Errorf("create pharmacy: %w", err)
	}
	return nil
}
