package services

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"agency-dashboard/models"
	"agency-dashboard/store"
	"agency-dashboard/vault"
	"agency-dashboard/wordpress"
)

const sweepCheckTimeout = 30 * time.Second

// HealthSweeper periodically runs the companion health check against every
// connected website and refreshes the advisory cache fields on the
// credential records. Updates are last-writer-wins; the sweep never blocks
// or fails a user-facing operation.
type HealthSweeper struct {
	store  *store.Store
	vault  *vault.Vault
	logger zerolog.Logger
	cron   *cron.Cron
}

// NewHealthSweeper builds a sweeper over the given store and vault.
func NewHealthSweeper(st *store.Store, vt *vault.Vault, logger zerolog.Logger) *HealthSweeper {
	return &HealthSweeper{store: st, vault: vt, logger: logger}
}

// Start schedules the sweep with the given cron spec and starts the
// scheduler. An empty spec disables the sweep.
func (h *HealthSweeper) Start(spec string) error {
	if spec == "" {
		h.logger.Info().Msg("health sweep disabled")
		return nil
	}
	h.cron = cron.New()
	if _, err := h.cron.AddFunc(spec, h.Sweep); err != nil {
		return err
	}
	h.cron.Start()
	h.logger.Info().Str("spec", spec).Msg("health sweep scheduled")
	return nil
}

// Stop halts the scheduler, waiting for a running sweep to finish.
func (h *HealthSweeper) Stop() {
	if h.cron != nil {
		<-h.cron.Stop().Done()
	}
}

// Sweep runs one pass over all websites.
func (h *HealthSweeper) Sweep() {
	ctx := context.Background()
	websites, err := h.store.ListWebsites(ctx)
	if err != nil {
		h.logger.Error().Err(err).Msg("health sweep: listing websites failed")
		return
	}

	for _, website := range websites {
		h.checkWebsite(ctx, website)
	}
}

func (h *HealthSweeper) checkWebsite(ctx context.Context, website models.Website) {
	conn, err := wordpress.ForWebsite(ctx, h.store, h.vault, h.logger, website.ID)
	if err != nil {
		// Websites without a WordPress connection are expected; skip
		// quietly.
		h.logger.Debug().Err(err).Str("website", website.ID).Msg("health sweep: no connection")
		return
	}

	checkCtx, cancel := context.WithTimeout(ctx, sweepCheckTimeout)
	defer cancel()

	info, err := conn.Client.CompanionStatus(checkCtx)
	if err != nil {
		h.logger.Warn().Err(err).Str("website", website.ID).Msg("health sweep: check failed")
		conn.RecordHealthCheck(ctx, nil, "unhealthy")
		return
	}
	conn.RecordHealthCheck(ctx, info, "healthy")
	h.logger.Info().Str("website", website.ID).Str("version", info.Version).
		Msg("health sweep: companion healthy")
}
