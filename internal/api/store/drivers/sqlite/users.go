package sqlite

import (
	"context"
	"database/sql"

	"github.com/slicelab/pizzeria/internal/api/domain"
)

type usersRepo struct {
	db dbtx
}

const userColumns = `id, tenant_id, username, email, password_hash, created_at, last_login`

func scanUser(row *sql.Row) (domain.User, error) {
	var u domain.User
	var lastLogin sql.NullTime
	err := row.Scan(&u.ID, &u.TenantID, &u.Username, &u.Email, &u.PasswordHash, &u.CreatedAt, &lastLogin)
	if err != nil {
		return domain.User{}, mapNotFound(err)
	}
	u.LastLogin = mapNullTimePtr(lastLogin)
	return u, nil
}

func (r *usersRepo) GetUserByID(ctx context.Context, id string) (domain.User, error) {
	return scanUser(r.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = ?`, id))
}

func (r *usersRepo) GetUserByUsername(ctx context.Context, tenant int64, username string) (domain.User, error) {
	return scanUser(r.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE tenant_id = ? AND username = ?`, tenant, username))
}

func (r *usersRepo) CreateUser(ctx context.Context, u domain.User) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO users (id, tenant_id, username, email, password_hash, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		u.ID, u.TenantID, u.Username, u.Email, u.PasswordHash, u.CreatedAt)
	return mapConstraint(err)
}

func (r *usersRepo) TouchLastLogin(ctx context.Context, userID string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE users SET last_login = CURRENT_TIMESTAMP WHERE id = ?`, userID)
	return err
}
