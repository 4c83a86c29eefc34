package domain

import "context"

// AssetRepository handles persistence for uploaded design assets.
type AssetRepository interface {
	Insert(ctx context.Context, asset *Asset) error
	GetByID(ctx context.Context, id string) (*Asset, error)
	GetByURL(ctx context.Context, url string) (*Asset, error)
	ListRecent(ctx context.Context, limit int) ([]Asset, error)
}

// DesignRepository persists the placement rects of a saved product draft.
type DesignRepository interface {
	SavePlacements(ctx context.Context, draftID string, rects []PlacementRect) error
	ListPlacements(ctx context.Context, draftID string) ([]PlacementRect, error)
	DeletePlacements(ctx context.Context, draftID string) error
}

// CatalogRepository mirrors the fulfillment provider's print-file catalog
// locally so print areas resolve while the provider API is unreachable.
type CatalogRepository interface {
	UpsertPrintFile(ctx context.Context, printFileID string, width, height, dpi int) error
	UpsertVariantPrintFile(ctx context.Context, variantID, placementKey, printFileID string) error
	VariantPrintFiles(ctx context.Context, variantID string) (map[string]PrintArea, error)
}
