package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/studydrops/backend/internal/logger"
	"github.com/studydrops/backend/internal/repos"
	"github.com/studydrops/backend/internal/types"
)

// TelemetryService ingests the raw samples the inference engine reads back.
type TelemetryService interface {
	RecordCognitive(ctx context.Context, sample *types.CognitiveSample) error
	RecordEmotional(ctx context.Context, sample *types.EmotionalSample) error
}

type telemetryService struct {
	log       *logger.Logger
	telemetry repos.TelemetryRepo
}

func NewTelemetryService(log *logger.Logger, telemetry repos.TelemetryRepo) TelemetryService {
	return &telemetryService{
		log:       log.With("service", "TelemetryService"),
		telemetry: telemetry,
	}
}

func (s *telemetryService) RecordCognitive(ctx context.Context, sample *types.CognitiveSample) error {
	if sample == nil || sample.UserID == uuid.Nil {
		return fmt.Errorf("sample with user id is required")
	}
	for name, v := range map[string]int{
		"focus":          sample.Focus,
		"energy":         sample.Energy,
		"energy_level":   sample.EnergyLevel,
		"attention_load": sample.AttentionLoad,
	} {
		if v < 0 || v > 100 {
			return fmt.Errorf("%s %d outside 0..100", name, v)
		}
	}
	if sample.ReadingSpeed < 0 {
		return fmt.Errorf("reading speed must be >= 0")
	}
	return s.telemetry.CreateCognitive(ctx, nil, sample)
}

func (s *telemetryService) RecordEmotional(ctx context.Context, sample *types.EmotionalSample) error {
	if sample == nil || sample.UserID == uuid.Nil {
		return fmt.Errorf("sample with user id is required")
	}
	if sample.Mood < 1 || sample.Mood > 5 {
		return fmt.Errorf("mood %d outside 1..5", sample.Mood)
	}
	return s.telemetry.CreateEmotional(ctx, nil, sample)
}
