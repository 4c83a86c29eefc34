// catalogsync mirrors a product's print-file catalog from the fulfillment
// provider into the local database, so the API can resolve print areas
// without a provider round-trip. Run it per product, typically from cron.
package main

import (
	"context"
	"database/sql"
	"flag"
	"time"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"

	"printstudio/internal/infra"
	"printstudio/internal/providers/fulfillment"
	"printstudio/internal/sqlinline"
)

func main() {
	_ = godotenv.Load()

	productID := flag.String("product", "", "provider product id to sync")
	verify := flag.String("verify", "", "variant id to read back after the sync")
	timeout := flag.Duration("timeout", 60*time.Second, "overall sync deadline")
	flag.Parse()

	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv)

	if *productID == "" {
		logger.Fatal().Msg("catalogsync: -product is required")
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	db, err := sql.Open("postgres", cfg.DatabaseURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("catalogsync: open database failed")
	}
	defer db.Close()
	if err := db.PingContext(ctx); err != nil {
		logger.Fatal().Err(err).Msg("catalogsync: database unreachable")
	}

	client := fulfillment.NewClient(fulfillment.Options{
		BaseURL: cfg.FulfillmentBaseURL,
		APIKey:  cfg.FulfillmentAPIKey,
	})
	vc, err := client.ProductPrintFiles(ctx, *productID)
	if err != nil {
		logger.Fatal().Err(err).Str("product_id", *productID).Msg("catalogsync: provider fetch failed")
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		logger.Fatal().Err(err).Msg("catalogsync: begin transaction failed")
	}
	defer tx.Rollback()

	printFiles := 0
	for id, spec := range vc.PrintFiles {
		if _, err := tx.ExecContext(ctx, sqlinline.QUpsertPrintFile, id, spec.Width, spec.Height, spec.DPI); err != nil {
			logger.Fatal().Err(err).Str("print_file_id", id).Msg("catalogsync: upsert print file failed")
		}
		printFiles++
	}
	mappings := 0
	for variantID, placements := range vc.Variants {
		for placementKey, printFileID := range placements {
			if _, err := tx.ExecContext(ctx, sqlinline.QUpsertVariantPrintFile, variantID, placementKey, printFileID); err != nil {
				logger.Fatal().Err(err).Str("variant_id", variantID).Msg("catalogsync: upsert mapping failed")
			}
			mappings++
		}
	}
	if err := tx.Commit(); err != nil {
		logger.Fatal().Err(err).Msg("catalogsync: commit failed")
	}

	logger.Info().
		Str("product_id", *productID).
		Int("print_files", printFiles).
		Int("variant_mappings", mappings).
		Msg("catalogsync: mirror updated")

	if *verify != "" {
		rows, err := db.QueryContext(ctx, sqlinline.QSelectVariantPrintFiles, *verify)
		if err != nil {
			logger.Fatal().Err(err).Str("variant_id", *verify).Msg("catalogsync: verify query failed")
		}
		defer rows.Close()
		found := 0
		for rows.Next() {
			var placementKey, printFileID string
			var width, height, dpi int
			if err := rows.Scan(&placementKey, &printFileID, &width, &height, &dpi); err != nil {
				logger.Fatal().Err(err).Msg("catalogsync: verify scan failed")
			}
			logger.Info().
				Str("variant_id", *verify).
				Str("placement_key", placementKey).
				Str("print_file_id", printFileID).
				Int("width", width).
				Int("height", height).
				Int("dpi", dpi).
				Msg("catalogsync: mirrored placement")
			found++
		}
		if err := rows.Err(); err != nil {
			logger.Fatal().Err(err).Msg("catalogsync: verify rows failed")
		}
		if found == 0 {
			logger.Warn().Str("variant_id", *verify).Msg("catalogsync: no mirrored placements for variant")
		}
	}
}
