package repo

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"printstudio/internal/domain"
)

// CatalogRepositoryPG implements domain.CatalogRepository using PostgreSQL.
// It is the local mirror of the provider's print-file catalog.
type CatalogRepositoryPG struct {
	pool *pgxpool.Pool
}

// NewCatalogRepository constructs a new catalog repository instance.
func NewCatalogRepository(pool *pgxpool.Pool) *CatalogRepositoryPG {
	return &CatalogRepositoryPG{pool: pool}
}

// UpsertPrintFile stores or refreshes one print-file spec.
func (r *CatalogRepositoryPG) UpsertPrintFile(ctx context.Context, printFileID string, width, height, dpi int) error {
	_, err := r.pool.Exec(ctx, `
INSERT INTO print_files (id, width, height, dpi, updated_at)
VALUES ($1, $2, $3, $4, now())
ON CONFLICT (id) DO UPDATE
SET width = EXCLUDED.width, height = EXCLUDED.height, dpi = EXCLUDED.dpi, updated_at = now();
`, printFileID, width, height, dpi)
	return err
}

// UpsertVariantPrintFile stores or refreshes one variant/placement mapping.
func (r *CatalogRepositoryPG) UpsertVariantPrintFile(ctx context.Context, variantID, placementKey, printFileID string) error {
	_, err := r.pool.Exec(ctx, `
INSERT INTO variant_print_files (variant_id, placement_key, print_file_id, updated_at)
VALUES ($1, $2, $3, now())
ON CONFLICT (variant_id, placement_key) DO UPDATE
SET print_file_id = EXCLUDED.print_file_id, updated_at = now();
`, variantID, placementKey, printFileID)
	return err
}

// VariantPrintFiles returns the cached print areas for a variant, keyed
// by placement.
func (r *CatalogRepositoryPG) VariantPrintFiles(ctx context.Context, variantID string) (map[string]domain.PrintArea, error) {
	rows, err := r.pool.Query(ctx, `
SELECT v.placement_key, p.width, p.height, p.dpi
FROM variant_print_files v
JOIN print_files p ON p.id = v.print_file_id
WHERE v.variant_id = $1
ORDER BY v.placement_key;
`, variantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[string]domain.PrintArea)
	for rows.Next() {
		var placementKey string
		var width, height, dpi int
		if err := rows.Scan(&placementKey, &width, &height, &dpi); err != nil {
			return nil, err
		}
		out[placementKey] = domain.PrintArea{
			PlacementKey: placementKey,
			Width:        width,
			Height:       height,
			DPI:          dpi,
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

var _ domain.CatalogRepository = (*CatalogRepositoryPG)(nil)
