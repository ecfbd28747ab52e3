package service

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"user-insight/internal/domain"
	"user-insight/internal/llm"
)

// ErrInsufficientSignal indica que el usuario no supera el mínimo de prompts
// históricos. Es un salto normal, no un error operacional.
var ErrInsufficientSignal = errors.New("not enough historical prompts")

// AvatarCache evita repetir la descripción de un mismo avatar entre corridas.
// La implementación redis vive en internal/cache; puede ser nil.
type AvatarCache interface {
	Get(ctx context.Context, imageURL string) (string, bool)
	Put(ctx context.Context, imageURL, description string)
}

// Predictor orquesta una predicción completa para un usuario: agregación,
// prompt, llamada de inferencia, parseo y construcción del resultado.
// Un intento por usuario por corrida; los reintentos no existen por diseño.
type Predictor struct {
	aggregator   *Aggregator
	llmClient    llm.Client
	avatarCache  AvatarCache
	builder      PromptBuilder
	minTaskCount int
	logger       *zap.Logger
}

func NewPredictor(
	aggregator *Aggregator,
	llmClient llm.Client,
	avatarCache AvatarCache,
	minTaskCount int,
	logger *zap.Logger,
) *Predictor {
	return &Predictor{
		aggregator:   aggregator,
		llmClient:    llmClient,
		avatarCache:  avatarCache,
		builder:      PromptBuilder{},
		minTaskCount: minTaskCount,
		logger:       logger,
	}
}

// Predict devuelve la predicción del usuario o un error que explica por qué
// se saltó: ErrProfileNotFound, ErrInsufficientSignal, o un fallo de
// transporte/parseo envuelto. Cada fallo es un retorno temprano limpio.
func (p *Predictor) Predict(ctx context.Context, userID int64) (*domain.Prediction, error) {
	signals, err := p.aggregator.Aggregate(ctx, userID)
	if err != nil {
		return nil, err
	}

	// La puerta exige estrictamente más que el mínimo.
	if len(signals.Behavior.Prompts) <= p.minTaskCount {
		return nil, fmt.Errorf("%w: %d prompts", ErrInsufficientSignal, len(signals.Behavior.Prompts))
	}

	imageDescription := p.describeAvatar(ctx, userID, signals.Profile.ImageURL)

	prompt := p.builder.BuildUserPrompt(signals.Profile, signals.Property, signals.Behavior, imageDescription)

	reply, err := p.llmClient.Complete(ctx, insightSystemPrompt, prompt)
	if err != nil {
		return nil, fmt.Errorf("llm complete: %w", err)
	}

	prediction, err := domain.ParsePrediction(userID, cleanJSONReply(reply))
	if err != nil {
		p.logger.Error("predict.unmarshal failed",
			zap.Int64("user_id", userID),
			zap.String("reply", reply),
			zap.Error(err),
		)
		return nil, err
	}
	return prediction, nil
}

// describeAvatar pide una descripción de una oración del avatar. Cualquier
// fallo degrada a cadena vacía y nunca aborta la predicción.
func (p *Predictor) describeAvatar(ctx context.Context, userID int64, imageURL string) string {
	if imageURL == "" {
		return ""
	}
	if p.avatarCache != nil {
		if cached, ok := p.avatarCache.Get(ctx, imageURL); ok {
			return cached
		}
	}

	description, err := p.llmClient.DescribeImage(ctx, imageURL)
	if err != nil {
		p.logger.Warn("predict.describe_image failed",
			zap.Int64("user_id", userID),
			zap.String("image_url", imageURL),
			zap.Error(err),
		)
		return ""
	}
	if p.avatarCache != nil {
		p.avatarCache.Put(ctx, imageURL, description)
	}
	return description
}
