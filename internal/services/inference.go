package services

import (
	"context"
	"encoding/json"
	"math"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"gorm.io/datatypes"

	"github.com/studydrops/backend/internal/logger"
	"github.com/studydrops/backend/internal/repos"
	"github.com/studydrops/backend/internal/types"
)

const inferenceWindow = 10

// InferenceService turns raw telemetry and per-topic performance into one
// StateSnapshot per call and appends the audit row.
type InferenceService interface {
	InferState(ctx context.Context, userID uuid.UUID) (*types.StateSnapshot, error)
}

type inferenceService struct {
	log        *logger.Logger
	telemetry  repos.TelemetryRepo
	topicStats repos.TopicStatRepo
	history    repos.StateHistoryRepo
}

func NewInferenceService(log *logger.Logger, telemetry repos.TelemetryRepo, topicStats repos.TopicStatRepo, history repos.StateHistoryRepo) InferenceService {
	return &inferenceService{
		log:        log.With("service", "InferenceService"),
		telemetry:  telemetry,
		topicStats: topicStats,
		history:    history,
	}
}

func (s *inferenceService) InferState(ctx context.Context, userID uuid.UUID) (*types.StateSnapshot, error) {
	var (
		cognitiveRows []*types.CognitiveSample
		emotionalRows []*types.EmotionalSample
		statRows      []*types.TopicStat
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		rows, err := s.telemetry.ListRecentCognitive(gctx, nil, userID, inferenceWindow)
		cognitiveRows = rows
		return err
	})
	g.Go(func() error {
		rows, err := s.telemetry.ListRecentEmotional(gctx, nil, userID, inferenceWindow)
		emotionalRows = rows
		return err
	})
	g.Go(func() error {
		rows, err := s.topicStats.ListByUser(gctx, nil, userID)
		statRows = rows
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	cognitive := inferCognitive(cognitiveRows)
	emotional := inferEmotional(emotionalRows)
	pedagogical := inferPedagogical(statRows)

	snapshot := &types.StateSnapshot{
		Cognitive:        cognitive,
		Emotional:        emotional,
		Pedagogical:      pedagogical,
		CognitiveLabel:   classifyCognitive(cognitive),
		EmotionalLabel:   classifyEmotional(emotional),
		PedagogicalLabel: classifyPedagogical(pedagogical),
		Timestamp:        time.Now().UTC(),
	}
	snapshot.ProbCorrect = probCorrect(cognitive, emotional, pedagogical)
	snapshot.ProbRetention = probRetention(cognitive, pedagogical)
	snapshot.ProbSaturation = probSaturation(cognitive, emotional)
	snapshot.OptimalStudyMinutes = optimalStudyMinutes(cognitive, emotional, snapshot.ProbSaturation)
	snapshot.Recommendation = recommend(snapshot)

	raw, err := json.Marshal(snapshot)
	if err != nil {
		return nil, err
	}
	row := &types.StateHistory{
		UserID:              userID,
		CognitiveLabel:      snapshot.CognitiveLabel,
		EmotionalLabel:      snapshot.EmotionalLabel,
		PedagogicalLabel:    snapshot.PedagogicalLabel,
		ProbCorrect:         snapshot.ProbCorrect,
		ProbRetention:       snapshot.ProbRetention,
		ProbSaturation:      snapshot.ProbSaturation,
		OptimalStudyMinutes: snapshot.OptimalStudyMinutes,
		Recommendation:      snapshot.Recommendation,
		Snapshot:            datatypes.JSON(raw),
		CreatedAt:           snapshot.Timestamp,
	}
	if err := s.history.Append(ctx, nil, row); err != nil {
		return nil, err
	}
	return snapshot, nil
}

// inferCognitive takes a recency-weighted average of the window: the newest
// sample carries weight n, the oldest weight 1. No samples means neutral
// defaults.
func inferCognitive(rows []*types.CognitiveSample) types.CognitiveState {
	if len(rows) == 0 {
		return types.CognitiveState{
			Focus:         50,
			Energy:        50,
			EnergyLevel:   50,
			AttentionLoad: 50,
			ReadingSpeed:  200,
		}
	}

	n := len(rows)
	var focus, energy, energyLevel, load, speed, totalWeight float64
	for i, row := range rows {
		// rows arrive newest first
		w := float64(n - i)
		focus += float64(row.Focus) * w
		energy += float64(row.Energy) * w
		energyLevel += float64(row.EnergyLevel) * w
		load += float64(row.AttentionLoad) * w
		speed += float64(row.ReadingSpeed) * w
		totalWeight += w
	}

	state := types.CognitiveState{
		Focus:         int(math.Round(focus / totalWeight)),
		Energy:        int(math.Round(energy / totalWeight)),
		EnergyLevel:   int(math.Round(energyLevel / totalWeight)),
		AttentionLoad: int(math.Round(load / totalWeight)),
		ReadingSpeed:  int(math.Round(speed / totalWeight)),
	}
	state.Saturated = state.EnergyLevel < 40 && state.AttentionLoad > 70
	return state
}

// inferEmotional averages mood and takes a strict majority vote for each
// flag. No samples means a neutral but motivated learner.
func inferEmotional(rows []*types.EmotionalSample) types.EmotionalState {
	if len(rows) == 0 {
		return types.EmotionalState{Mood: 3, Motivated: true, Confidence: 50}
	}

	n := len(rows)
	var mood float64
	var anxious, frustrated, motivated int
	for _, row := range rows {
		mood += float64(row.Mood)
		if row.Anxious {
			anxious++
		}
		if row.Frustrated {
			frustrated++
		}
		if row.Motivated {
			motivated++
		}
	}

	state := types.EmotionalState{
		Mood:       mood / float64(n),
		Anxious:    anxious*2 > n,
		Frustrated: frustrated*2 > n,
		Motivated:  motivated*2 > n,
	}
	state.Confidence = int(math.Round(state.Mood / 5 * 100))
	if state.Anxious {
		state.Confidence -= 15
	}
	if state.Confidence < 0 {
		state.Confidence = 0
	}
	return state
}

func inferPedagogical(stats []*types.TopicStat) types.PedagogicalState {
	state := types.PedagogicalState{AverageLevel: 1}
	if len(stats) == 0 {
		return state
	}

	var totalCorrect, totalAttempts int
	var masterySum float64
	for _, stat := range stats {
		attempts := stat.Attempts()
		totalCorrect += stat.CorrectCount
		totalAttempts += attempts
		masterySum += stat.Mastery

		switch {
		case attempts == 0:
			state.IgnoredTopics++
		case stat.Mastery >= 80:
			state.MasteredTopics++
		case stat.ErrorRate() > 0.4 && attempts >= 3:
			state.FragileTopics++
		}
	}

	if totalAttempts > 0 {
		state.OverallAccuracy = float64(totalCorrect) / float64(totalAttempts)
	}
	state.OverallProgress = masterySum / float64(len(stats))
	state.AverageLevel = 1 + state.OverallProgress/100*4
	return state
}

func classifyCognitive(c types.CognitiveState) string {
	if c.Saturated {
		return types.CognitiveSaturated
	}
	score := (c.Focus + c.Energy) / 2
	switch {
	case score >= 70:
		return types.CognitiveHigh
	case score >= 40:
		return types.CognitiveMedium
	default:
		return types.CognitiveLow
	}
}

func classifyEmotional(e types.EmotionalState) string {
	switch {
	case e.Anxious:
		return types.EmotionalAnxious
	case e.Frustrated:
		return types.EmotionalFrustrated
	case e.Motivated:
		return types.EmotionalMotivated
	default:
		return types.EmotionalNeutral
	}
}

func classifyPedagogical(p types.PedagogicalState) string {
	switch {
	case p.FragileTopics > p.MasteredTopics && p.OverallAccuracy < 0.5 && p.FragileTopics > 0:
		return types.PedagogicalStuck
	case p.OverallAccuracy >= 0.8 && p.OverallProgress >= 70:
		return types.PedagogicalAdvanced
	case p.OverallProgress < 30:
		return types.PedagogicalBeginner
	default:
		return types.PedagogicalIntermediate
	}
}

func probCorrect(c types.CognitiveState, e types.EmotionalState, p types.PedagogicalState) float64 {
	emotionalTerm := 0.5
	if e.Motivated && !e.Anxious {
		emotionalTerm = 0.8
	}
	v := 0.4*float64(c.EnergyLevel+c.Focus)/200 + 0.3*emotionalTerm + 0.3*p.OverallAccuracy
	return clamp01(v)
}

func probRetention(c types.CognitiveState, p types.PedagogicalState) float64 {
	v := 0.5*float64(c.Energy)/100 + 0.3*p.OverallProgress/100 + 0.2*float64(c.Focus)/100
	return clamp01(v)
}

func probSaturation(c types.CognitiveState, e types.EmotionalState) float64 {
	var v float64
	if c.EnergyLevel < 50 {
		v += 0.3
	}
	if c.AttentionLoad > 70 {
		v += 0.3
	}
	if e.Frustrated {
		v += 0.2
	}
	if e.Anxious {
		v += 0.2
	}
	return clamp01(v)
}

// optimalStudyMinutes starts from a 25 minute block and adjusts in a fixed
// order: energy extremes, saturation, then anxiety caps the result.
func optimalStudyMinutes(c types.CognitiveState, e types.EmotionalState, probSat float64) int {
	minutes := 25
	if c.Energy < 40 {
		minutes = 15
	}
	if c.Energy > 80 {
		minutes = 45
	}
	if probSat > 0.6 {
		minutes = 10
	}
	if e.Anxious && minutes > 20 {
		minutes = 20
	}
	return minutes
}

// recommend walks the decision list from most to least severe and returns
// the first matching guidance.
func recommend(s *types.StateSnapshot) string {
	switch {
	case s.ProbSaturation > 0.6 || s.Cognitive.Saturated:
		return "Take a break before continuing; cognitive saturation detected."
	case s.Emotional.Anxious && s.Cognitive.Energy < 40:
		return "Do a short, light review session; avoid new material for now."
	case s.Cognitive.Energy > 80 && s.Emotional.Motivated:
		return "Great moment for challenging content; tackle your hardest topics."
	case s.Pedagogical.FragileTopics > s.Pedagogical.MasteredTopics && s.Pedagogical.FragileTopics > 0:
		return "Reinforce fragile topics before introducing new content."
	default:
		return "Continue with the planned trail."
	}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
