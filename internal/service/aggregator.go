package service

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"user-insight/internal/analytics"
	"user-insight/internal/domain"
	"user-insight/internal/repository"
)

// ErrProfileNotFound indica que el usuario no tiene perfil en el warehouse.
var ErrProfileNotFound = errors.New("user profile not found")

// Aggregator junta todas las señales de un usuario en un paquete. El perfil
// es mandatorio; el resto de las fuentes degrada a vacío si falla.
type Aggregator struct {
	warehouse repository.Warehouse
	vector    repository.SummarySearcher
	analytics analytics.Client
	topK      int
	logger    *zap.Logger
}

func NewAggregator(
	warehouse repository.Warehouse,
	vector repository.SummarySearcher,
	analyticsClient analytics.Client,
	topK int,
	logger *zap.Logger,
) *Aggregator {
	return &Aggregator{
		warehouse: warehouse,
		vector:    vector,
		analytics: analyticsClient,
		topK:      topK,
		logger:    logger,
	}
}

// Aggregate arma el paquete de señales. Devuelve ErrProfileNotFound cuando el
// perfil no existe; un fallo al traer los prompts también aborta porque son
// la puerta de elegibilidad. Los fetches opcionales nunca abortan.
func (a *Aggregator) Aggregate(ctx context.Context, userID int64) (*domain.Signals, error) {
	profile, err := a.warehouse.GetProfile(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrProfileNotFound
		}
		return nil, fmt.Errorf("load profile: %w", err)
	}

	prompts, err := a.warehouse.GetPrompts(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load prompts: %w", err)
	}

	filenames, err := a.warehouse.GetFilenames(ctx, userID)
	if err != nil {
		a.logger.Warn("aggregate.load_filenames failed", zap.Int64("user_id", userID), zap.Error(err))
		filenames = nil
	}

	summaries, err := a.vector.SearchSummaries(ctx, userID, a.topK)
	if err != nil {
		a.logger.Warn("aggregate.search_summaries failed", zap.Int64("user_id", userID), zap.Error(err))
		summaries = nil
	}

	property, err := a.analytics.GetProperty(ctx, userID)
	if err != nil {
		a.logger.Warn("aggregate.get_property failed", zap.Int64("user_id", userID), zap.Error(err))
		property = nil
	}

	return &domain.Signals{
		Profile: profile,
		Behavior: domain.BehavioralSignals{
			Prompts:   prompts,
			Filenames: filenames,
			Summaries: summaries,
		},
		Property: property,
	}, nil
}
