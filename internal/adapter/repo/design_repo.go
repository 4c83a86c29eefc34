package repo

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"printstudio/internal/domain"
)

// DesignRepositoryPG implements domain.DesignRepository using PostgreSQL.
// A "draft" is a saved product design: its placement rects survive the
// session so the background worker can re-validate them.
type DesignRepositoryPG struct {
	pool *pgxpool.Pool
}

// NewDesignRepository constructs a new design repository instance.
func NewDesignRepository(pool *pgxpool.Pool) *DesignRepositoryPG {
	return &DesignRepositoryPG{pool: pool}
}

// SavePlacements replaces the draft's stored rects with the given set.
func (r *DesignRepositoryPG) SavePlacements(ctx context.Context, draftID string, rects []domain.PlacementRect) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM design_placements WHERE draft_id = $1;`, draftID); err != nil {
		return err
	}
	for _, rect := range rects {
		if _, err := tx.Exec(ctx, `
INSERT INTO design_placements (
  draft_id, design_id, placement_key,
  area_width, area_height, width, height, top_px, left_px, constrain_to_area
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10);
`, draftID, rect.DesignID, rect.PlacementKey,
			rect.AreaWidth, rect.AreaHeight, rect.Width, rect.Height, rect.Top, rect.Left, rect.ConstrainToArea); err != nil {
			return err
		}
	}
	return tx.Commit(ctx)
}

// ListPlacements loads the draft's rects in stable order.
func (r *DesignRepositoryPG) ListPlacements(ctx context.Context, draftID string) ([]domain.PlacementRect, error) {
	rows, err := r.pool.Query(ctx, `
SELECT design_id, placement_key, area_width, area_height, width, height, top_px, left_px, constrain_to_area
FROM design_placements
WHERE draft_id = $1
ORDER BY placement_key, design_id;
`, draftID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var rects []domain.PlacementRect
	for rows.Next() {
		var rect domain.PlacementRect
		if err := rows.Scan(&rect.DesignID, &rect.PlacementKey,
			&rect.AreaWidth, &rect.AreaHeight, &rect.Width, &rect.Height,
			&rect.Top, &rect.Left, &rect.ConstrainToArea); err != nil {
			return nil, err
		}
		rects = append(rects, rect)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return rects, nil
}

// DeletePlacements removes every stored rect of the draft.
func (r *DesignRepositoryPG) DeletePlacements(ctx context.Context, draftID string) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM design_placements WHERE draft_id = $1;`, draftID)
	return err
}

var _ domain.DesignRepository = (*DesignRepositoryPG)(nil)
