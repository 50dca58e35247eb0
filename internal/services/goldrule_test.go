package services

import (
	"testing"
	"time"

	"github.com/studydrops/backend/internal/types"
)

func TestGoldRuleScoreBounds(t *testing.T) {
	now := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	asked := now
	maxTopic := &types.Topic{
		ExamFrequency:  100,
		SyllabusWeight: 10,
		BoardTrend:     10,
		LastAskedAt:    &asked,
	}
	maxStat := &types.TopicStat{WrongCount: 10}
	if got := GoldRuleScore(maxTopic, maxStat, now); !floatEq(got, 10) {
		t.Fatalf("all criteria maxed: got %.3f, want 10", got)
	}

	if got := GoldRuleScore(nil, nil, now); got != 0 {
		t.Fatalf("nil topic: got %.3f, want 0", got)
	}
}

func TestGoldRuleScoreWeights(t *testing.T) {
	now := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	// Only frequency set: never-asked recency contributes its neutral 5.
	topic := &types.Topic{ExamFrequency: 100}
	want := 0.35*10 + 0.10*5
	if got := GoldRuleScore(topic, nil, now); !floatEq(got, want) {
		t.Fatalf("frequency only: got %.3f, want %.3f", got, want)
	}

	// Error rate is the learner's contribution.
	stat := &types.TopicStat{CorrectCount: 5, WrongCount: 5}
	want += 0.25 * 5
	if got := GoldRuleScore(topic, stat, now); !floatEq(got, want) {
		t.Fatalf("with error rate: got %.3f, want %.3f", got, want)
	}
}

func TestGoldRuleRecencyDecay(t *testing.T) {
	now := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	recent := now.Add(-30 * 24 * time.Hour)
	old := now.Add(-6 * 365 * 24 * time.Hour)

	recentTopic := &types.Topic{LastAskedAt: &recent}
	oldTopic := &types.Topic{LastAskedAt: &old}

	if GoldRuleScore(recentTopic, nil, now) <= GoldRuleScore(oldTopic, nil, now) {
		t.Fatal("recently asked topics must outrank stale ones")
	}
	// 6 years out the recency term bottoms out at 0.
	if got := GoldRuleScore(oldTopic, nil, now); !floatEq(got, 0) {
		t.Fatalf("stale topic with no other criteria: got %.3f, want 0", got)
	}
}
