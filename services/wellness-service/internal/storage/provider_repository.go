package storage

import (
	"context"

	"github.com/sharif-mahmud/wellpoint/libs/db"
	"github.com/sharif-mahmud/wellpoint/services/wellness-service/internal/model"
)

type ProviderRepository struct {
	pool *db.Pool
}

func NewProviderRepository(pool *db.Pool) *ProviderRepository {
	return &ProviderRepository{pool: pool}
}

func (r *ProviderRepository) Create(ctx context.Context, p *model.Provider) (int64, error) {
	var id int64
	err := r.pool.QueryRow(ctx, `
		INSERT INTO providers (license_number, name, specialty, verified)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`, p.LicenseNumber, p.Name, p.Specialty, p.Verified).Scan(&id)
	if err != nil {
		return 0, err
	}
	return id, nil
}

func (r *ProviderRepository) GetByID(ctx context.Context, id int64) (model.Provider, error) {
	var p model.Provider
	err := r.pool.QueryRow(ctx, `
		SELECT id, license_number, name, COALESCE(specialty, ''), verified, created_at
		FROM providers
		WHERE id = $1
	`, id).Scan(&p.ID, &p.LicenseNumber, &p.Name, &p.Specialty, &p.Verified, &p.CreatedAt)
	if err != nil {
		return model.Provider{}, err
	}
	return p, nil
}

func (r *ProviderRepository) Exists(ctx context.Context, id int64) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `
		SELECT EXISTS (SELECT 1 FROM providers WHERE id = $1)
	`, id).Scan(&exists)
	return exists, err
}
