// The worker runs queued compliance validations over saved drafts. The
// API enqueues a job per draft; this process claims jobs one at a time,
// revalidates every stored rect against its asset's intrinsic ratio and
// writes the resulting report back onto the job row.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"printstudio/internal/adapter/repo"
	"printstudio/internal/assets"
	"printstudio/internal/compliance"
	"printstudio/internal/domain"
	"printstudio/internal/infra"
	"printstudio/internal/placement"
	"printstudio/internal/sqlinline"
)

const jobPollInterval = 2 * time.Second

type job struct {
	ID               string
	DraftID          string
	TolerancePercent float64
}

type validationWorker struct {
	ctx     context.Context
	runner  *infra.SQLRunner
	logger  infra.Logger
	designs domain.DesignRepository
	assets  domain.AssetRepository
	prober  *assets.RepoProbe
}

var errNoJobAvailable = errors.New("no job available")

func main() {
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := infra.NewDBPool(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("worker: db connection failed")
	}
	defer pool.Close()

	assetRepo := repo.NewAssetRepository(pool)
	worker := &validationWorker{
		ctx:     ctx,
		runner:  infra.NewSQLRunner(pool, logger),
		logger:  logger,
		designs: repo.NewDesignRepository(pool),
		assets:  assetRepo,
		prober:  assets.NewRepoProbe(assetRepo, assets.NewHTTPProbe(nil, cfg.AssetProbeTimeout)),
	}

	if err := worker.Run(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Fatal().Err(err).Msg("worker: stopped with error")
	}
	logger.Info().Msg("worker: stopped")
}

func (w *validationWorker) Run() error {
	w.logger.Info().Msg("worker: started")
	for {
		select {
		case <-w.ctx.Done():
			return w.ctx.Err()
		default:
		}

		j, err := w.claimJob()
		if err != nil {
			if !errors.Is(err, errNoJobAvailable) {
				w.logger.Error().Err(err).Msg("worker: failed to claim job")
			}
			select {
			case <-w.ctx.Done():
				return w.ctx.Err()
			case <-time.After(jobPollInterval):
			}
			continue
		}

		w.handleJob(j)
	}
}

func (w *validationWorker) claimJob() (job, error) {
	row := w.runner.QueryRow(w.ctx, sqlinline.QClaimValidationJob)
	var j job
	if err := row.Scan(&j.ID, &j.DraftID, &j.TolerancePercent); err != nil {
		if infra.IsNoRows(err) {
			return job{}, errNoJobAvailable
		}
		return job{}, err
	}
	return j, nil
}

func (w *validationWorker) handleJob(j job) {
	w.logger.Info().Str("job_id", j.ID).Str("draft_id", j.DraftID).Msg("worker: picked job")
	report, err := w.validateDraft(j)
	if err != nil {
		w.logger.Error().Err(err).Str("job_id", j.ID).Msg("worker: job failed")
		if _, execErr := w.runner.Exec(w.ctx, sqlinline.QFailValidationJob, j.ID, err.Error()); execErr != nil {
			w.logger.Error().Err(execErr).Str("job_id", j.ID).Msg("worker: record failure failed")
		}
		return
	}
	if _, err := w.runner.Exec(w.ctx, sqlinline.QCompleteValidationJob, j.ID, report); err != nil {
		w.logger.Error().Err(err).Str("job_id", j.ID).Msg("worker: record report failed")
	}
}

// validateDraft loads the draft's rects into a scratch store and runs a
// full compliance pass over them.
func (w *validationWorker) validateDraft(j job) ([]byte, error) {
	rects, err := w.designs.ListPlacements(w.ctx, j.DraftID)
	if err != nil {
		return nil, err
	}

	store := placement.NewStore()
	skipped := 0
	for _, rect := range rects {
		if _, err := store.Upsert(rect); err != nil {
			w.logger.Warn().Err(err).
				Str("design_id", rect.DesignID).
				Str("placement", rect.PlacementKey).
				Msg("worker: stored rect rejected")
			skipped++
		}
	}

	orchestrator := compliance.NewOrchestrator(store, compliance.NewValidator(w.prober),
		compliance.AssetResolverFunc(w.assetURL), w.logger)
	results := orchestrator.RunBatch(w.ctx, store.ListAll(), j.TolerancePercent)
	report := compliance.Summarize(results)

	return json.Marshal(map[string]any{
		"draft_id":          j.DraftID,
		"tolerance_percent": j.TolerancePercent,
		"checked":           len(results),
		"skipped":           skipped,
		"critical":          len(report.Critical),
		"informational":     len(report.Informational),
		"unverified":        len(report.Unverified),
		"results":           resultEntries(results),
	})
}

func (w *validationWorker) assetURL(ctx context.Context, designID string) (string, error) {
	asset, err := w.assets.GetByID(ctx, designID)
	if err != nil {
		return "", err
	}
	return asset.URL, nil
}

type resultEntry struct {
	DesignID          string  `json:"design_id"`
	PlacementKey      string  `json:"placement_key"`
	PercentDifference float64 `json:"percent_difference"`
	IsValid           bool    `json:"is_valid"`
	LoadError         string  `json:"load_error,omitempty"`
}

func resultEntries(results []domain.ValidationResult) []resultEntry {
	out := make([]resultEntry, 0, len(results))
	for _, r := range results {
		out = append(out, resultEntry{
			DesignID:          r.DesignID,
			PlacementKey:      r.PlacementKey,
			PercentDifference: r.PercentDifference,
			IsValid:           r.IsValid,
			LoadError:         r.LoadError,
		})
	}
	return out
}
