package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"user-insight/internal/analytics"
	"user-insight/internal/domain"
	"user-insight/internal/repository"
)

// Sink materializa un resultado de predicción: upsert versionado en el
// warehouse y sincronización de propiedades hacia analytics. En modo dry
// ambos efectos se saltan.
type Sink struct {
	warehouse repository.Warehouse
	analytics analytics.Client
	threshold float64
	dryRun    bool
	logger    *zap.Logger
}

func NewSink(
	warehouse repository.Warehouse,
	analyticsClient analytics.Client,
	threshold float64,
	dryRun bool,
	logger *zap.Logger,
) *Sink {
	return &Sink{
		warehouse: warehouse,
		analytics: analyticsClient,
		threshold: threshold,
		dryRun:    dryRun,
		logger:    logger,
	}
}

// Persist resuelve la fila con el umbral global y la escribe con clave
// (user_id, version). El upsert hace idempotentes las corridas repetidas
// dentro del mismo período. La sincronización a analytics es best-effort:
// un fallo ahí se registra pero no invalida la fila ya persistida.
func (s *Sink) Persist(ctx context.Context, version int64, prediction *domain.Prediction) (domain.Row, error) {
	row := prediction.RowData(s.threshold)
	row.Version = version

	if s.dryRun {
		return row, nil
	}

	if err := s.warehouse.UpsertPrediction(ctx, row); err != nil {
		return row, fmt.Errorf("upsert prediction: %w", err)
	}

	if err := s.analytics.SetProperties(ctx, prediction.UserID, prediction.Properties(s.threshold)); err != nil {
		s.logger.Warn("persist.analytics_sync failed", zap.Int64("user_id", prediction.UserID), zap.Error(err))
	}
	return row, nil
}
