package services

import (
	"time"

	"github.com/studydrops/backend/internal/types"
)

// Gold rule criteria weights. They sum to 1 so the composite stays on the
// same 0..10 scale as its inputs.
const (
	goldWeightFrequency = 0.35
	goldWeightSyllabus  = 0.25
	goldWeightErrorRate = 0.25
	goldWeightRecency   = 0.10
	goldWeightTrend     = 0.05
)

// GoldRuleScore ranks a topic by how profitable it is to study right now:
// how often the board asks it, how much the syllabus weighs it, how badly
// the learner performs on it, how recently the board asked it, and the
// board's trend.
func GoldRuleScore(topic *types.Topic, stat *types.TopicStat, now time.Time) float64 {
	if topic == nil {
		return 0
	}

	frequency := clampRange(topic.ExamFrequency/10, 0, 10)
	syllabus := clampRange(topic.SyllabusWeight, 0, 10)
	trend := clampRange(topic.BoardTrend, 0, 10)

	var errorRate float64
	if stat != nil {
		errorRate = stat.ErrorRate() * 10
	}

	recency := 5.0
	if topic.LastAskedAt != nil {
		years := now.Sub(*topic.LastAskedAt).Hours() / (24 * 365)
		recency = clampRange(10-years*2, 0, 10)
	}

	return goldWeightFrequency*frequency +
		goldWeightSyllabus*syllabus +
		goldWeightErrorRate*errorRate +
		goldWeightRecency*recency +
		goldWeightTrend*trend
}

func clampRange(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
