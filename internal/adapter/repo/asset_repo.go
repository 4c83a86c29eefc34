package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"printstudio/internal/domain"
)

// AssetRepositoryPG implements domain.AssetRepository using PostgreSQL.
type AssetRepositoryPG struct {
	pool *pgxpool.Pool
}

// NewAssetRepository constructs a new asset repository instance.
func NewAssetRepository(pool *pgxpool.Pool) *AssetRepositoryPG {
	return &AssetRepositoryPG{pool: pool}
}

// Insert persists one uploaded asset's metadata.
func (r *AssetRepositoryPG) Insert(ctx context.Context, asset *domain.Asset) error {
	_, err := r.pool.Exec(ctx, `
INSERT INTO assets (id, url, storage_key, mime, bytes, width, height)
VALUES ($1, $2, $3, $4, $5, $6, $7);
`, asset.ID, asset.URL, asset.StorageKey, asset.MIME, asset.Bytes, asset.Width, asset.Height)
	return err
}

// GetByID returns the asset with the given ID.
func (r *AssetRepositoryPG) GetByID(ctx context.Context, id string) (*domain.Asset, error) {
	return r.get(ctx, `
SELECT id, url, storage_key, mime, bytes, width, height, created_at
FROM assets
WHERE id = $1
LIMIT 1;
`, id)
}

// GetByURL returns the asset registered under the given URL.
func (r *AssetRepositoryPG) GetByURL(ctx context.Context, url string) (*domain.Asset, error) {
	return r.get(ctx, `
SELECT id, url, storage_key, mime, bytes, width, height, created_at
FROM assets
WHERE url = $1
LIMIT 1;
`, url)
}

// ListRecent returns the newest assets, newest first.
func (r *AssetRepositoryPG) ListRecent(ctx context.Context, limit int) ([]domain.Asset, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := r.pool.Query(ctx, `
SELECT id, url, storage_key, mime, bytes, width, height, created_at
FROM assets
ORDER BY created_at DESC
LIMIT $1;
`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var assets []domain.Asset
	for rows.Next() {
		var a domain.Asset
		if err := rows.Scan(&a.ID, &a.URL, &a.StorageKey, &a.MIME, &a.Bytes, &a.Width, &a.Height, &a.CreatedAt); err != nil {
			return nil, err
		}
		assets = append(assets, a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return assets, nil
}

func (r *AssetRepositoryPG) get(ctx context.Context, query string, arg any) (*domain.Asset, error) {
	var a domain.Asset
	err := r.pool.QueryRow(ctx, query, arg).
		Scan(&a.ID, &a.URL, &a.StorageKey, &a.MIME, &a.Bytes, &a.Width, &a.Height, &a.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("asset: %w", domain.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

var _ domain.AssetRepository = (*AssetRepositoryPG)(nil)
