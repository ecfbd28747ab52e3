package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"user-insight/internal/repository"
)

// Runner recorre la worklist e invoca al predictor por usuario, con
// aislamiento de fallos: un usuario que falla o se salta nunca frena la
// corrida. Con más de un worker los logs quedan ordenados por terminación.
type Runner struct {
	warehouse repository.Warehouse
	predictor *Predictor
	sink      *Sink
	version   int64
	workers   int
	logger    *zap.Logger
}

func NewRunner(
	warehouse repository.Warehouse,
	predictor *Predictor,
	sink *Sink,
	version int64,
	workers int,
	logger *zap.Logger,
) *Runner {
	if workers < 1 {
		workers = 1
	}
	return &Runner{
		warehouse: warehouse,
		predictor: predictor,
		sink:      sink,
		version:   version,
		workers:   workers,
		logger:    logger,
	}
}

// Run procesa la lista explícita, o la worklist elegible del warehouse si la
// lista viene vacía. Devuelve error solo si no se pudo obtener la worklist.
func (r *Runner) Run(ctx context.Context, userIDs []int64) error {
	log := r.logger.With(
		zap.String("run_id", uuid.NewString()),
		zap.Int64("version", r.version),
	)

	if len(userIDs) == 0 {
		var err error
		userIDs, err = r.warehouse.ListEligibleUserIDs(ctx)
		if err != nil {
			return fmt.Errorf("list eligible users: %w", err)
		}
	}
	total := len(userIDs)
	log.Info("user_insight.start", zap.Int("count", total))

	var g errgroup.Group
	g.SetLimit(r.workers)
	for index, userID := range userIDs {
		index, userID := index, userID
		g.Go(func() error {
			r.processUser(ctx, log, index, total, userID)
			return nil
		})
	}
	_ = g.Wait()

	log.Info("user_insight.done", zap.Int("count", total))
	return nil
}

func (r *Runner) processUser(ctx context.Context, log *zap.Logger, index, total int, userID int64) {
	start := time.Now()
	progress := fmt.Sprintf("%d/%d", index+1, total)

	prediction, err := r.predictor.Predict(ctx, userID)
	if err != nil {
		if errors.Is(err, ErrProfileNotFound) || errors.Is(err, ErrInsufficientSignal) {
			log.Info("user_insight.skip",
				zap.String("progress", progress),
				zap.Int64("user_id", userID),
				zap.String("reason", err.Error()),
			)
			return
		}
		log.Warn("user_insight.skip",
			zap.String("progress", progress),
			zap.Int64("user_id", userID),
			zap.Error(err),
		)
		return
	}

	row, err := r.sink.Persist(ctx, r.version, prediction)
	if err != nil {
		log.Error("user_insight.persist failed",
			zap.String("progress", progress),
			zap.Int64("user_id", userID),
			zap.Error(err),
		)
		return
	}

	log.Info("user_insight.predict",
		zap.String("progress", progress),
		zap.Int64("user_id", userID),
		zap.String("occupation", row.Occupation),
		zap.String("industry", row.Industry),
		zap.String("school", row.School),
		zap.String("primary_language", row.PrimaryLanguage),
		zap.String("major", row.Major),
		zap.String("degree_level", row.DegreeLevel),
		zap.String("gender", row.Gender),
		zap.Duration("cost", time.Since(start)),
	)
}
