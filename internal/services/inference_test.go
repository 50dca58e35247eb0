package services

import (
	"testing"

	"github.com/studydrops/backend/internal/types"
)

func TestInferCognitiveDefaults(t *testing.T) {
	got := inferCognitive(nil)
	if got.Focus != 50 || got.Energy != 50 || got.EnergyLevel != 50 || got.AttentionLoad != 50 {
		t.Fatalf("neutral defaults: got %+v", got)
	}
	if got.ReadingSpeed != 200 {
		t.Fatalf("default reading speed: got %d", got.ReadingSpeed)
	}
	if got.Saturated {
		t.Fatal("default state must not be saturated")
	}
}

func TestInferCognitiveRecencyWeighting(t *testing.T) {
	rows := []*types.CognitiveSample{
		{Focus: 100, Energy: 100, EnergyLevel: 100, AttentionLoad: 0, ReadingSpeed: 300}, // newest, weight 2
		{Focus: 40, Energy: 40, EnergyLevel: 40, AttentionLoad: 60, ReadingSpeed: 150},   // weight 1
	}
	got := inferCognitive(rows)
	// (100*2 + 40*1) / 3 = 80
	if got.Focus != 80 {
		t.Fatalf("weighted focus: got %d, want 80", got.Focus)
	}
	if got.AttentionLoad != 20 {
		t.Fatalf("weighted load: got %d, want 20", got.AttentionLoad)
	}
	if got.ReadingSpeed != 250 {
		t.Fatalf("weighted speed: got %d, want 250", got.ReadingSpeed)
	}
}

func TestInferCognitiveSaturation(t *testing.T) {
	rows := []*types.CognitiveSample{
		{Focus: 50, Energy: 50, EnergyLevel: 30, AttentionLoad: 80, ReadingSpeed: 200},
	}
	got := inferCognitive(rows)
	if !got.Saturated {
		t.Fatal("low energy with high load must be saturated")
	}
}

func TestInferEmotionalDefaults(t *testing.T) {
	got := inferEmotional(nil)
	if got.Mood != 3 || !got.Motivated || got.Anxious || got.Frustrated {
		t.Fatalf("neutral defaults: got %+v", got)
	}
}

func TestInferEmotionalMajorityVote(t *testing.T) {
	rows := []*types.EmotionalSample{
		{Mood: 2, Anxious: true, Motivated: true},
		{Mood: 4, Anxious: true, Motivated: false},
		{Mood: 3, Anxious: false, Motivated: false},
	}
	got := inferEmotional(rows)
	if !got.Anxious {
		t.Fatal("two of three anxious samples must set the flag")
	}
	if got.Motivated {
		t.Fatal("one of three motivated samples must not set the flag")
	}
	if !floatEq(got.Mood, 3) {
		t.Fatalf("mood average: got %.2f, want 3", got.Mood)
	}
}

func TestInferPedagogicalCounts(t *testing.T) {
	stats := []*types.TopicStat{
		{TopicCode: "a", CorrectCount: 9, WrongCount: 1, Mastery: 90}, // mastered
		{TopicCode: "b", CorrectCount: 2, WrongCount: 4, Mastery: 30}, // fragile
		{TopicCode: "c", Mastery: 0},                                  // ignored
	}
	got := inferPedagogical(stats)
	if got.MasteredTopics != 1 || got.FragileTopics != 1 || got.IgnoredTopics != 1 {
		t.Fatalf("topic counts: got %+v", got)
	}
	if !floatEq(got.OverallAccuracy, 11.0/16.0) {
		t.Fatalf("accuracy: got %.3f", got.OverallAccuracy)
	}
	if !floatEq(got.OverallProgress, 40) {
		t.Fatalf("progress: got %.1f, want 40", got.OverallProgress)
	}
}

func TestProbSaturation(t *testing.T) {
	cases := []struct {
		name      string
		cognitive types.CognitiveState
		emotional types.EmotionalState
		want      float64
	}{
		{
			name:      "calm_and_fresh",
			cognitive: types.CognitiveState{EnergyLevel: 80, AttentionLoad: 30},
			want:      0,
		},
		{
			name:      "everything_elevated",
			cognitive: types.CognitiveState{EnergyLevel: 20, AttentionLoad: 90},
			emotional: types.EmotionalState{Frustrated: true, Anxious: true},
			want:      1,
		},
		{
			name:      "only_low_energy",
			cognitive: types.CognitiveState{EnergyLevel: 40, AttentionLoad: 50},
			want:      0.3,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := probSaturation(tc.cognitive, tc.emotional)
			if !floatEq(got, tc.want) {
				t.Fatalf("got %.2f, want %.2f", got, tc.want)
			}
		})
	}
}

func TestProbCorrect(t *testing.T) {
	c := types.CognitiveState{EnergyLevel: 60, Focus: 80}
	e := types.EmotionalState{Motivated: true}
	p := types.PedagogicalState{OverallAccuracy: 0.7}
	// 0.4*(140/200) + 0.3*0.8 + 0.3*0.7 = 0.28 + 0.24 + 0.21 = 0.73
	if got := probCorrect(c, e, p); !floatEq(got, 0.73) {
		t.Fatalf("got %.3f, want 0.73", got)
	}

	e.Anxious = true
	// anxious removes the motivated bonus: 0.28 + 0.15 + 0.21 = 0.64
	if got := probCorrect(c, e, p); !floatEq(got, 0.64) {
		t.Fatalf("anxious: got %.3f, want 0.64", got)
	}
}

func TestProbRetention(t *testing.T) {
	c := types.CognitiveState{Energy: 80, Focus: 60}
	p := types.PedagogicalState{OverallProgress: 50}
	// 0.5*0.8 + 0.3*0.5 + 0.2*0.6 = 0.67
	if got := probRetention(c, p); !floatEq(got, 0.67) {
		t.Fatalf("got %.3f, want 0.67", got)
	}
}

func TestOptimalStudyMinutes(t *testing.T) {
	cases := []struct {
		name      string
		cognitive types.CognitiveState
		emotional types.EmotionalState
		probSat   float64
		want      int
	}{
		{name: "baseline", cognitive: types.CognitiveState{Energy: 60}, want: 25},
		{name: "low_energy", cognitive: types.CognitiveState{Energy: 30}, want: 15},
		{name: "high_energy", cognitive: types.CognitiveState{Energy: 90}, want: 45},
		{name: "saturation_wins", cognitive: types.CognitiveState{Energy: 90}, probSat: 0.7, want: 10},
		{name: "anxiety_caps", cognitive: types.CognitiveState{Energy: 90}, emotional: types.EmotionalState{Anxious: true}, want: 20},
		{name: "anxiety_keeps_shorter_value", cognitive: types.CognitiveState{Energy: 30}, emotional: types.EmotionalState{Anxious: true}, want: 15},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := optimalStudyMinutes(tc.cognitive, tc.emotional, tc.probSat)
			if got != tc.want {
				t.Fatalf("got %d, want %d", got, tc.want)
			}
		})
	}
}

func TestRecommendSeverityOrder(t *testing.T) {
	saturated := &types.StateSnapshot{
		ProbSaturation: 0.8,
		Cognitive:      types.CognitiveState{Energy: 90},
		Emotional:      types.EmotionalState{Motivated: true},
	}
	if got := recommend(saturated); got != "Take a break before continuing; cognitive saturation detected." {
		t.Fatalf("saturation must dominate: got %q", got)
	}

	anxiousLow := &types.StateSnapshot{
		Cognitive: types.CognitiveState{Energy: 30},
		Emotional: types.EmotionalState{Anxious: true},
	}
	if got := recommend(anxiousLow); got != "Do a short, light review session; avoid new material for now." {
		t.Fatalf("anxious low energy: got %q", got)
	}

	fresh := &types.StateSnapshot{
		Cognitive: types.CognitiveState{Energy: 90},
		Emotional: types.EmotionalState{Motivated: true},
	}
	if got := recommend(fresh); got != "Great moment for challenging content; tackle your hardest topics." {
		t.Fatalf("fresh and motivated: got %q", got)
	}

	neutral := &types.StateSnapshot{Cognitive: types.CognitiveState{Energy: 60}}
	if got := recommend(neutral); got != "Continue with the planned trail." {
		t.Fatalf("neutral: got %q", got)
	}
}

func TestClassifyCognitive(t *testing.T) {
	cases := []struct {
		name  string
		state types.CognitiveState
		want  string
	}{
		{name: "high", state: types.CognitiveState{Focus: 80, Energy: 70}, want: types.CognitiveHigh},
		{name: "medium", state: types.CognitiveState{Focus: 50, Energy: 50}, want: types.CognitiveMedium},
		{name: "low", state: types.CognitiveState{Focus: 20, Energy: 30}, want: types.CognitiveLow},
		{name: "saturated_overrides", state: types.CognitiveState{Focus: 80, Energy: 80, Saturated: true}, want: types.CognitiveSaturated},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := classifyCognitive(tc.state); got != tc.want {
				t.Fatalf("got %s, want %s", got, tc.want)
			}
		})
	}
}
