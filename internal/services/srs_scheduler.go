package services

import (
	"math"
	"time"

	"github.com/studydrops/backend/internal/types"
)

// ScheduleInput is everything the scheduler needs to reschedule one card.
// Grade is 0..5; below 3 counts as a lapse.
type ScheduleInput struct {
	IntervalDays       int
	EaseFactor         float64
	Repetition         int
	Grade              int
	MemoryStrength     types.MemoryStrength
	LearningStyle      types.LearningStyle
	BaseIntervalDays   int
	IntervalMultiplier float64
	EaseMultiplier     float64
	Now                time.Time
}

type ScheduleResult struct {
	IntervalDays int
	EaseFactor   float64
	Repetition   int
	NextReviewAt time.Time
}

func strengthBias(s types.MemoryStrength) float64 {
	switch s {
	case types.MemoryStrong:
		return 1.25
	case types.MemoryWeak:
		return 0.65
	default:
		return 1.0
	}
}

func styleBias(s types.LearningStyle) float64 {
	switch s {
	case types.StyleVisual:
		return 1.05
	case types.StyleAuditory:
		return 0.95
	default:
		return 1.0
	}
}

// Schedule applies the SM-2 variant. Lapses (grade < 3) reset the repetition
// count and fall back to the base interval without touching the ease factor.
// The per-subtopic interval multiplier is applied last, on every call.
func Schedule(in ScheduleInput) ScheduleResult {
	base := in.BaseIntervalDays
	if base < 1 {
		base = 1
	}
	intervalMult := in.IntervalMultiplier
	if intervalMult <= 0 {
		intervalMult = 1.0
	}
	easeMult := in.EaseMultiplier
	if easeMult <= 0 {
		easeMult = 1.0
	}

	strength := strengthBias(in.MemoryStrength)
	style := styleBias(in.LearningStyle)

	interval := in.IntervalDays
	ease := in.EaseFactor
	repetition := in.Repetition

	if in.Grade < 3 {
		repetition = 0
		interval = base
	} else {
		switch {
		case repetition == 0:
			interval = base
		case repetition == 1:
			interval = int(math.Max(2, math.Round(6*strength)))
		default:
			interval = int(math.Round(float64(interval) * ease * strength * style))
		}
		repetition++

		q := float64(5 - in.Grade)
		ease += 0.1 - q*(0.08+q*0.02)
		ease *= easeMult
		if ease < 1.3 {
			ease = 1.3
		}
	}

	interval = int(math.Round(float64(interval) * intervalMult))
	if interval < base {
		interval = base
	}

	now := in.Now
	if now.IsZero() {
		now = time.Now().UTC()
	}

	return ScheduleResult{
		IntervalDays: interval,
		EaseFactor:   ease,
		Repetition:   repetition,
		NextReviewAt: now.Add(time.Duration(interval) * 24 * time.Hour),
	}
}
