package services

import (
	"testing"

	"github.com/google/uuid"

	"github.com/studydrops/backend/internal/config"
	"github.com/studydrops/backend/internal/types"
)

func adaptiveCfg() config.AdaptiveConfig {
	return config.Default().Adaptive
}

func answer(correct bool, difficulty int) types.AnswerSample {
	return types.AnswerSample{
		QuestionID: uuid.New(),
		Correct:    correct,
		Difficulty: difficulty,
		TimeSpent:  30,
	}
}

func TestCorrectStreakRaisesDifficulty(t *testing.T) {
	cfg := adaptiveCfg()
	state := NewAdaptiveState(cfg)

	for i := 0; i < 2; i++ {
		state = UpdateState(cfg, state, answer(true, state.CurrentDifficulty))
		if state.CurrentDifficulty != cfg.InitialDifficulty {
			t.Fatalf("difficulty moved after %d correct answers: got %d", i+1, state.CurrentDifficulty)
		}
	}

	state = UpdateState(cfg, state, answer(true, state.CurrentDifficulty))
	if state.CurrentDifficulty != cfg.InitialDifficulty+cfg.DifficultyStep {
		t.Fatalf("third correct answer: got difficulty %d, want %d", state.CurrentDifficulty, cfg.InitialDifficulty+cfg.DifficultyStep)
	}
	if state.ConsecutiveCorrect != 0 {
		t.Fatalf("fired streak must reset: got %d", state.ConsecutiveCorrect)
	}
}

func TestWrongStreakLowersDifficulty(t *testing.T) {
	cfg := adaptiveCfg()
	state := NewAdaptiveState(cfg)

	for i := 0; i < 3; i++ {
		state = UpdateState(cfg, state, answer(false, state.CurrentDifficulty))
	}
	if state.CurrentDifficulty != cfg.InitialDifficulty-cfg.DifficultyStep {
		t.Fatalf("three wrong answers: got difficulty %d, want %d", state.CurrentDifficulty, cfg.InitialDifficulty-cfg.DifficultyStep)
	}
	if state.ConsecutiveWrong != 0 {
		t.Fatalf("fired streak must reset: got %d", state.ConsecutiveWrong)
	}
}

func TestDifficultyBounds(t *testing.T) {
	cfg := adaptiveCfg()
	state := NewAdaptiveState(cfg)

	// Long perfect run must cap at max, never beyond.
	for i := 0; i < 12; i++ {
		state = UpdateState(cfg, state, answer(true, state.CurrentDifficulty))
		if state.CurrentDifficulty > cfg.MaxDifficulty {
			t.Fatalf("difficulty exceeded max: %d", state.CurrentDifficulty)
		}
	}
	if state.CurrentDifficulty != cfg.MaxDifficulty {
		t.Fatalf("got %d, want max %d", state.CurrentDifficulty, cfg.MaxDifficulty)
	}

	// And a long wrong run must floor at min.
	for i := 0; i < 15; i++ {
		state = UpdateState(cfg, state, answer(false, state.CurrentDifficulty))
		if state.CurrentDifficulty < cfg.MinDifficulty {
			t.Fatalf("difficulty below min: %d", state.CurrentDifficulty)
		}
	}
	if state.CurrentDifficulty != cfg.MinDifficulty {
		t.Fatalf("got %d, want min %d", state.CurrentDifficulty, cfg.MinDifficulty)
	}
}

func TestOppositeStreakResets(t *testing.T) {
	cfg := adaptiveCfg()
	state := NewAdaptiveState(cfg)

	state = UpdateState(cfg, state, answer(true, 3))
	state = UpdateState(cfg, state, answer(true, 3))
	state = UpdateState(cfg, state, answer(false, 3))
	if state.ConsecutiveCorrect != 0 {
		t.Fatalf("wrong answer must reset correct streak: got %d", state.ConsecutiveCorrect)
	}
	if state.ConsecutiveWrong != 1 {
		t.Fatalf("wrong streak: got %d, want 1", state.ConsecutiveWrong)
	}
}

func TestFineTuneHighAccuracy(t *testing.T) {
	cfg := adaptiveCfg()
	state := NewAdaptiveState(cfg)
	state.CurrentDifficulty = 3
	for i := 0; i < 10; i++ {
		state.LastAnswers = append(state.LastAnswers, answer(i != 0, 3))
	}
	// 9/10 in the window, no active streak
	if got := NextDifficulty(cfg, state); got != 4 {
		t.Fatalf("fine-tune up: got %d, want 4", got)
	}
}

func TestFineTuneLowAccuracy(t *testing.T) {
	cfg := adaptiveCfg()
	state := NewAdaptiveState(cfg)
	state.CurrentDifficulty = 3
	for i := 0; i < 10; i++ {
		state.LastAnswers = append(state.LastAnswers, answer(i >= 7, 3))
	}
	// 3/10 in the window
	if got := NextDifficulty(cfg, state); got != 2 {
		t.Fatalf("fine-tune down: got %d, want 2", got)
	}
}

func TestFineTuneSkippedWhenStreakFires(t *testing.T) {
	cfg := adaptiveCfg()
	state := NewAdaptiveState(cfg)
	state.CurrentDifficulty = 3
	state.ConsecutiveCorrect = cfg.IncreaseThreshold
	for i := 0; i < 10; i++ {
		state.LastAnswers = append(state.LastAnswers, answer(true, 3))
	}
	// Streak and fine-tune both qualify; only the streak may move it.
	if got := NextDifficulty(cfg, state); got != 4 {
		t.Fatalf("streak precedence: got %d, want 4", got)
	}
}

func TestFineTuneNeedsFullWindow(t *testing.T) {
	cfg := adaptiveCfg()
	state := NewAdaptiveState(cfg)
	state.CurrentDifficulty = 3
	for i := 0; i < 5; i++ {
		state.LastAnswers = append(state.LastAnswers, answer(true, 3))
	}
	state.ConsecutiveCorrect = 2
	if got := NextDifficulty(cfg, state); got != 3 {
		t.Fatalf("short window must not fine-tune: got %d", got)
	}
}

func TestUpdateStateAccounting(t *testing.T) {
	cfg := adaptiveCfg()
	state := NewAdaptiveState(cfg)

	a := answer(true, 3)
	a.TimeSpent = 10
	state = UpdateState(cfg, state, a)
	b := answer(false, 4)
	b.TimeSpent = 30
	state = UpdateState(cfg, state, b)

	if state.TotalCorrect != 1 || state.TotalWrong != 1 {
		t.Fatalf("totals: got %d/%d, want 1/1", state.TotalCorrect, state.TotalWrong)
	}
	if !floatEq(state.AverageTime, 20) {
		t.Fatalf("average time: got %.2f, want 20", state.AverageTime)
	}
	if got := state.PerformanceByDifficulty[3]; got.Correct != 1 || got.Total != 1 {
		t.Fatalf("bucket 3: got %+v", got)
	}
	if got := state.PerformanceByDifficulty[4]; got.Correct != 0 || got.Total != 1 {
		t.Fatalf("bucket 4: got %+v", got)
	}
	if !floatEq(state.Accuracy(), 0.5) {
		t.Fatalf("accuracy: got %.2f, want 0.5", state.Accuracy())
	}
}

func TestAnswerWindowCapped(t *testing.T) {
	cfg := adaptiveCfg()
	state := NewAdaptiveState(cfg)
	for i := 0; i < 15; i++ {
		state = UpdateState(cfg, state, answer(i%2 == 0, 3))
	}
	if len(state.LastAnswers) != answerWindowSize {
		t.Fatalf("window size: got %d, want %d", len(state.LastAnswers), answerWindowSize)
	}
}

func TestAnsweredIDsNeverDropOff(t *testing.T) {
	cfg := adaptiveCfg()
	state := NewAdaptiveState(cfg)

	first := answer(true, 3)
	state = UpdateState(cfg, state, first)
	for i := 0; i < 10; i++ {
		state = UpdateState(cfg, state, answer(i%2 == 0, 3))
	}

	// the window has rotated the first answer out
	for _, a := range state.LastAnswers {
		if a.QuestionID == first.QuestionID {
			t.Fatalf("first answer still inside the bounded window")
		}
	}

	// but the full answered list keeps it, so it can never be served again
	if len(state.AnsweredQuestionIDs) != 11 {
		t.Fatalf("answered ids: got %d, want 11", len(state.AnsweredQuestionIDs))
	}
	found := false
	for _, id := range state.AnsweredQuestionIDs {
		if id == first.QuestionID {
			found = true
		}
	}
	if !found {
		t.Fatalf("question answered 11 answers ago missing from the answered list")
	}
}
