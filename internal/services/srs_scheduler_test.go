package services

import (
	"testing"
	"time"

	"github.com/studydrops/backend/internal/types"
)

func baseInput() ScheduleInput {
	return ScheduleInput{
		IntervalDays:       1,
		EaseFactor:         2.5,
		Repetition:         0,
		Grade:              5,
		MemoryStrength:     types.MemoryNormal,
		LearningStyle:      types.StyleMixed,
		BaseIntervalDays:   1,
		IntervalMultiplier: 1.0,
		EaseMultiplier:     1.0,
		Now:                time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestScheduleProgression(t *testing.T) {
	in := baseInput()

	first := Schedule(in)
	if first.IntervalDays != 1 || first.Repetition != 1 {
		t.Fatalf("first review: got interval=%d rep=%d, want 1/1", first.IntervalDays, first.Repetition)
	}
	if got, want := first.EaseFactor, 2.6; !floatEq(got, want) {
		t.Fatalf("first review ease: got %.3f, want %.3f", got, want)
	}

	in.IntervalDays = first.IntervalDays
	in.EaseFactor = first.EaseFactor
	in.Repetition = first.Repetition
	second := Schedule(in)
	if second.IntervalDays != 6 || second.Repetition != 2 {
		t.Fatalf("second review: got interval=%d rep=%d, want 6/2", second.IntervalDays, second.Repetition)
	}

	in.IntervalDays = second.IntervalDays
	in.EaseFactor = second.EaseFactor
	in.Repetition = second.Repetition
	third := Schedule(in)
	// round(6 * 2.7) = 16
	if third.IntervalDays != 16 {
		t.Fatalf("third review: got interval=%d, want 16", third.IntervalDays)
	}
	wantNext := in.Now.Add(16 * 24 * time.Hour)
	if !third.NextReviewAt.Equal(wantNext) {
		t.Fatalf("next review at %v, want %v", third.NextReviewAt, wantNext)
	}
}

func TestScheduleLapse(t *testing.T) {
	in := baseInput()
	in.IntervalDays = 30
	in.EaseFactor = 2.2
	in.Repetition = 5
	in.Grade = 2

	got := Schedule(in)
	if got.Repetition != 0 {
		t.Fatalf("lapse repetition: got %d, want 0", got.Repetition)
	}
	if got.IntervalDays != 1 {
		t.Fatalf("lapse interval: got %d, want base 1", got.IntervalDays)
	}
	if !floatEq(got.EaseFactor, 2.2) {
		t.Fatalf("lapse must not change ease: got %.3f", got.EaseFactor)
	}
}

func TestScheduleEaseFloor(t *testing.T) {
	in := baseInput()
	in.EaseFactor = 1.35
	in.Repetition = 2
	in.Grade = 3 // delta is -0.14

	got := Schedule(in)
	if !floatEq(got.EaseFactor, 1.3) {
		t.Fatalf("ease floor: got %.3f, want 1.3", got.EaseFactor)
	}
}

func TestScheduleGradeDeltas(t *testing.T) {
	cases := []struct {
		name     string
		grade    int
		wantEase float64
	}{
		{name: "grade_5", grade: 5, wantEase: 2.6},
		{name: "grade_4", grade: 4, wantEase: 2.5},
		{name: "grade_3", grade: 3, wantEase: 2.36},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			in := baseInput()
			in.Grade = tc.grade
			got := Schedule(in)
			if !floatEq(got.EaseFactor, tc.wantEase) {
				t.Fatalf("grade %d ease: got %.4f, want %.4f", tc.grade, got.EaseFactor, tc.wantEase)
			}
		})
	}
}

func TestScheduleStrengthBias(t *testing.T) {
	cases := []struct {
		name         string
		strength     types.MemoryStrength
		wantInterval int
	}{
		{name: "strong", strength: types.MemoryStrong, wantInterval: 8}, // round(6*1.25)
		{name: "weak", strength: types.MemoryWeak, wantInterval: 4},     // round(6*0.65)
		{name: "normal", strength: types.MemoryNormal, wantInterval: 6},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			in := baseInput()
			in.Repetition = 1
			in.MemoryStrength = tc.strength
			got := Schedule(in)
			if got.IntervalDays != tc.wantInterval {
				t.Fatalf("strength %s interval: got %d, want %d", tc.strength, got.IntervalDays, tc.wantInterval)
			}
		})
	}
}

func TestScheduleStyleBias(t *testing.T) {
	in := baseInput()
	in.IntervalDays = 10
	in.Repetition = 2
	in.LearningStyle = types.StyleVisual

	got := Schedule(in)
	// round(10 * 2.5 * 1.0 * 1.05) = 26
	if got.IntervalDays != 26 {
		t.Fatalf("visual style interval: got %d, want 26", got.IntervalDays)
	}
}

func TestScheduleSubtopicMultipliers(t *testing.T) {
	in := baseInput()
	in.IntervalMultiplier = 2.0

	got := Schedule(in)
	if got.IntervalDays != 2 {
		t.Fatalf("interval multiplier: got %d, want 2", got.IntervalDays)
	}

	in = baseInput()
	in.Repetition = 2
	in.EaseMultiplier = 0.5
	got = Schedule(in)
	// (2.5 + 0.1) * 0.5 = 1.3, exactly at the floor
	if !floatEq(got.EaseFactor, 1.3) {
		t.Fatalf("ease multiplier: got %.3f, want 1.3", got.EaseFactor)
	}
}

func TestScheduleZeroValueDefaults(t *testing.T) {
	in := baseInput()
	in.IntervalMultiplier = 0
	in.EaseMultiplier = 0
	in.BaseIntervalDays = 0

	got := Schedule(in)
	if got.IntervalDays != 1 {
		t.Fatalf("zero-value config: got interval %d, want 1", got.IntervalDays)
	}
}

func floatEq(a, b float64) bool {
	d := a - b
	if d < 0 {
		d = -d
	}
	return d < 1e-9
}
