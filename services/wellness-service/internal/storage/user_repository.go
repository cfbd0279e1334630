package storage

import (
	"context"

	"github.com/sharif-mahmud/wellpoint/libs/db"
	"github.com/sharif-mahmud/wellpoint/services/wellness-service/internal/model"
)

type UserRepository struct {
	pool *db.Pool
}

func NewUserRepository(pool *db.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

func (r *UserRepository) Create(ctx context.Context, u *model.User) (int64, error) {
	var id int64
	err := r.pool.QueryRow(ctx, `
		INSERT INTO users (health_id, name, phone_number, phone_verified, password_hash)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`, u.HealthID, u.Name, u.PhoneNumber, u.PhoneVerified, u.PasswordHash).Scan(&id)
	if err != nil {
		return 0, err
	}
	return id, nil
}

func (r *UserRepository) GetByID(ctx context.Context, id int64) (model.User, error) {
	return r.scanOne(ctx, `
		SELECT id, health_id, name, COALESCE(phone_number, ''), phone_verified, COALESCE(password_hash, ''), created_at
		FROM users
		WHERE id = $1
	`, id)
}

func (r *UserRepository) GetByHealthID(ctx context.Context, healthID string) (model.User, error) {
	return r.scanOne(ctx, `
		SELECT id, health_id, name, COALESCE(phone_number, ''), phone_verified, COALESCE(password_hash, ''), created_at
		FROM users
		WHERE health_id = $1
	`, healthID)
}

func (r *UserRepository) scanOne(ctx context.Context, query string, arg any) (model.User, error) {
	var u model.User
	err := r.pool.QueryRow(ctx, query, arg).Scan(
		&u.ID,
		&u.HealthID,
		&u.Name,
		&u.PhoneNumber,
		&u.PhoneVerified,
		&u.PasswordHash,
		&u.CreatedAt,
	)
	if err != nil {
		return model.User{}, err
	}
	return u, nil
}
