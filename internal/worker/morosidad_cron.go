package worker

import (
	"context"
	"sync"
	"time"

	"casitas/internal/service"

	"github.com/rs/zerolog/log"
)

// MorosidadCron runs the arrears batch on a fixed interval. The batch is
// idempotent, so overlapping replicas only repeat work.
type MorosidadCron struct {
	svc       service.MorosidadService
	intervalo time.Duration
	now       func() time.Time
	wg        sync.WaitGroup
}

func NewMorosidadCron(svc service.MorosidadService, intervalo time.Duration) *MorosidadCron {
	return &MorosidadCron{svc: svc, intervalo: intervalo, now: time.Now}
}

// Start runs one pass immediately and then one per tick until ctx is done.
func (c *MorosidadCron) Start(ctx context.Context) {
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		ticker := time.NewTicker(c.intervalo)
		defer ticker.Stop()

		log.Info().Dur("intervalo", c.intervalo).Msg("morosidad_cron: started")
		c.tick(ctx)
		for {
			select {
			case <-ctx.Done():
				log.Info().Msg("morosidad_cron: shutting down")
				return
			case <-ticker.C:
				c.tick(ctx)
			}
		}
	}()
}

func (c *MorosidadCron) Wait() { c.wg.Wait() }

func (c *MorosidadCron) tick(ctx context.Context) {
	res, err := c.svc.ProcesarAtrasos(ctx, c.now())
	if err != nil {
		if ctx.Err() == nil {
			log.Error().Err(err).Msg("morosidad_cron: batch failed")
		}
		return
	}
	if res.MultasCreadas > 0 {
		log.Info().Int("revisados", res.Revisados).Int("multas", res.MultasCreadas).
			Msg("morosidad_cron: fines issued")
	}
}
