package mock

import (
	"context"
	"math/rand"

	"github.com/lsst-ts/ts-dream-common/internal/dream"
	"github.com/lsst-ts/ts-dream-common/internal/observability"
	"github.com/lsst-ts/ts-dream-common/internal/protocol/schema"
)

// dataProductBatch is the new-data-products telemetry envelope.
type dataProductBatch struct {
	Amount   int                 `json:"amount"`
	Metadata []dream.DataProduct `json:"metadata"`
}

var productWords = [...]string{"Zero", "One", "Two", "Three", "Four", "Five"}

// statusLoop sends the master status immediately and then on every tick
// until cancelled.
func (s *Server) statusLoop(ctx context.Context) {
	s.log.Debug().Msg("status loop started")
	defer s.log.Debug().Msg("status loop stopped")
	for {
		status := s.MasterStatus()
		if err := schema.Validate(schema.MasterServerStatus, status); err != nil {
			s.log.Error().Err(err).Msg("master status failed validation")
			return
		}
		if err := s.write(status); err != nil {
			s.log.Warn().Err(err).Msg("status write failed")
		} else {
			observability.RecordTelemetry("master_status")
		}
		if err := sleepCtx(ctx, s.cfg.StatusInterval()); err != nil {
			return
		}
	}
}

// productsLoop announces 1..6 fresh data products immediately and then on
// every tick until cancelled.
func (s *Server) productsLoop(ctx context.Context) {
	s.log.Debug().Msg("products loop started")
	defer s.log.Debug().Msg("products loop stopped")
	for {
		batch := newDataProductBatch()
		if err := schema.Validate(schema.NewDataProducts, batch); err != nil {
			s.log.Error().Err(err).Msg("data products failed validation")
			return
		}
		if err := s.write(batch); err != nil {
			s.log.Warn().Err(err).Msg("data products write failed")
		} else {
			observability.RecordTelemetry("new_data_products")
		}
		if err := sleepCtx(ctx, s.cfg.DataProductInterval()); err != nil {
			return
		}
	}
}

func newDataProductBatch() dataProductBatch {
	count := rand.Intn(len(productWords)) + 1
	metadata := make([]dream.DataProduct, 0, count)
	for i := 0; i < count; i++ {
		metadata = append(metadata, dream.DataProduct{
			Name:      "NewDataProduct" + productWords[i],
			Location:  "file:///",
			Timestamp: dream.CurrentTAI(),
		})
	}
	return dataProductBatch{
		Amount:   len(metadata),
		Metadata: metadata,
	}
}
