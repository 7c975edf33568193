package auth

import (
	"context"
	"time"

	"github.com/dukapilot/biashara360/internal/postgres"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Admin struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Name         string    `json:"name"`
	Role         Role      `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
}

type AdminStore interface {
	AdminByEmail(ctx context.Context, email string) (Admin, error)
	UpsertAdmin(ctx context.Context, a *Admin) error
}

// AdminRepo is the Postgres AdminStore.
type AdminRepo struct{ DB *pgxpool.Pool }

func (r *AdminRepo) AdminByEmail(ctx context.Context, email string) (Admin, error) {
	var a Admin
	err := r.DB.QueryRow(ctx, `SELECT id, email, password_hash, name, role, created_at FROM admins WHERE email=$1`, email).
		Scan(&a.ID, &a.Email, &a.PasswordHash, &a.Name, &a.Role, &a.CreatedAt)
	if err != nil {
		return Admin{}, postgres.MapError(err, "admin")
	}
	return a, nil
}

// UpsertAdmin creates the admin or replaces name and password of an
// existing one with the same email.
func (r *AdminRepo) UpsertAdmin(ctx context.Context, a *Admin) error {
	err := r.DB.QueryRow(ctx, `
		INSERT INTO admins(id, email, password_hash, name, role)
		VALUES ($1,$2,$3,$4,$5)
		ON CONFLICT (email) DO UPDATE SET password_hash=EXCLUDED.password_hash, name=EXCLUDED.name
		RETURNING id, created_at`,
		a.ID, a.Email, a.PasswordHash, a.Name, string(a.Role),
	).Scan(&a.ID, &a.CreatedAt)
	return postgres.MapError(err, "admin")
}
