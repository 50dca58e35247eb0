package services

import (
	"github.com/google/uuid"

	"github.com/studydrops/backend/internal/config"
	"github.com/studydrops/backend/internal/types"
)

const answerWindowSize = 10

// NewAdaptiveState seeds the accumulator at the configured starting
// difficulty.
func NewAdaptiveState(cfg config.AdaptiveConfig) types.AdaptiveState {
	return types.AdaptiveState{
		CurrentDifficulty:       cfg.InitialDifficulty,
		PerformanceByDifficulty: make(map[int]types.DifficultyBucket),
	}
}

// NextDifficulty applies the streak rules first; fine-tuning only runs when
// neither streak fired, so a single answer can never move the difficulty
// twice.
func NextDifficulty(cfg config.AdaptiveConfig, state types.AdaptiveState) int {
	difficulty := state.CurrentDifficulty

	switch {
	case state.ConsecutiveCorrect >= cfg.IncreaseThreshold:
		difficulty += cfg.DifficultyStep
	case state.ConsecutiveWrong >= cfg.DecreaseThreshold:
		difficulty -= cfg.DifficultyStep
	default:
		if len(state.LastAnswers) >= cfg.FineTuneWindow {
			acc := windowAccuracy(state.LastAnswers)
			if acc >= cfg.FineTuneHighAccuracy {
				difficulty++
			} else if acc <= cfg.FineTuneLowAccuracy {
				difficulty--
			}
		}
	}

	if difficulty > cfg.MaxDifficulty {
		difficulty = cfg.MaxDifficulty
	}
	if difficulty < cfg.MinDifficulty {
		difficulty = cfg.MinDifficulty
	}
	return difficulty
}

// UpdateState folds one answer into the accumulator and returns a new copy.
// The consecutive counter for the opposite outcome always resets.
func UpdateState(cfg config.AdaptiveConfig, state types.AdaptiveState, answer types.AnswerSample) types.AdaptiveState {
	next := state
	next.PerformanceByDifficulty = make(map[int]types.DifficultyBucket, len(state.PerformanceByDifficulty))
	for k, v := range state.PerformanceByDifficulty {
		next.PerformanceByDifficulty[k] = v
	}

	if answer.Correct {
		next.TotalCorrect++
		next.ConsecutiveCorrect++
		next.ConsecutiveWrong = 0
	} else {
		next.TotalWrong++
		next.ConsecutiveWrong++
		next.ConsecutiveCorrect = 0
	}

	bucket := next.PerformanceByDifficulty[answer.Difficulty]
	bucket.Total++
	if answer.Correct {
		bucket.Correct++
	}
	next.PerformanceByDifficulty[answer.Difficulty] = bucket

	total := float64(next.TotalAnswered())
	next.AverageTime = (state.AverageTime*(total-1) + answer.TimeSpent) / total

	next.LastAnswers = append(append([]types.AnswerSample(nil), state.LastAnswers...), answer)
	if len(next.LastAnswers) > answerWindowSize {
		next.LastAnswers = next.LastAnswers[len(next.LastAnswers)-answerWindowSize:]
	}
	next.AnsweredQuestionIDs = append(append([]uuid.UUID(nil), state.AnsweredQuestionIDs...), answer.QuestionID)

	next.CurrentDifficulty = NextDifficulty(cfg, next)

	// A fired streak is consumed: the next adjustment needs a fresh run.
	if next.ConsecutiveCorrect >= cfg.IncreaseThreshold {
		next.ConsecutiveCorrect = 0
	}
	if next.ConsecutiveWrong >= cfg.DecreaseThreshold {
		next.ConsecutiveWrong = 0
	}
	return next
}

func windowAccuracy(window []types.AnswerSample) float64 {
	if len(window) == 0 {
		return 0
	}
	correct := 0
	for _, a := range window {
		if a.Correct {
			correct++
		}
	}
	return float64(correct) / float64(len(window))
}
