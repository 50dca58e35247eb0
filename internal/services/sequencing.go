package services

import (
	"math"
	"sort"
	"time"

	"github.com/studydrops/backend/internal/config"
	"github.com/studydrops/backend/internal/types"
)

// SequenceInput is one trail build. BudgetMinutes <= 0 falls back to the
// configured default.
type SequenceInput struct {
	Priorities    []types.Priority
	Snapshot      *types.StateSnapshot
	BudgetMinutes int
	Date          time.Time
}

// BuildTrail turns ranked priorities into an ordered trail that fits the
// time budget. Due reviews are placed ahead of everything else; the
// remaining items are arranged along the difficulty curve chosen from the
// learner's state. Pure: no I/O, same input gives the same trail.
func BuildTrail(cfg config.SequencingConfig, in SequenceInput) *types.TrailOfDay {
	budget := in.BudgetMinutes
	if budget <= 0 {
		budget = cfg.DefaultBudgetMinutes
	}

	scale := durationScale(in.Snapshot)

	var reviews, rest []types.TrailItem
	for _, p := range in.Priorities {
		item := types.TrailItem{
			Type:            itemTypeFor(p.Type),
			ContentID:       p.ContentID,
			DurationMinutes: scaledDuration(cfg, p.Type, scale),
			Difficulty:      p.Difficulty,
			Reason:          p.Reason,
			Status:          types.TrailItemPending,
		}
		if p.Type == types.PriorityReview {
			reviews = append(reviews, item)
		} else {
			rest = append(rest, item)
		}
	}

	ordered := make([]types.TrailItem, 0, len(reviews)+len(rest))
	ordered = append(ordered, reviews...)
	ordered = append(ordered, rest...)

	// Greedy best-fit over the ranked list: too-large items are skipped,
	// later smaller items may still fit.
	var picked []types.TrailItem
	remaining := budget
	for _, item := range ordered {
		if item.DurationMinutes <= remaining {
			picked = append(picked, item)
			remaining -= item.DurationMinutes
		}
	}

	// Soft overflow: a non-empty priority list always yields at least the
	// smallest single item, even when it exceeds the budget.
	if len(picked) == 0 && len(ordered) > 0 {
		smallest := ordered[0]
		for _, item := range ordered[1:] {
			if item.DurationMinutes < smallest.DurationMinutes {
				smallest = item
			}
		}
		picked = append(picked, smallest)
	}

	curve := selectCurve(in.Snapshot)
	picked = applyCurve(picked, curve)

	total := 0
	for i := range picked {
		picked[i].Order = i
		total += picked[i].DurationMinutes
	}

	date := in.Date
	if date.IsZero() {
		date = time.Now().UTC()
	}

	return &types.TrailOfDay{
		Date:                 date,
		Items:                picked,
		TotalDurationMinutes: total,
		DifficultyCurve:      curve,
		GeneratedAt:          time.Now().UTC(),
	}
}

func itemTypeFor(p types.PriorityType) types.TrailItemType {
	switch p {
	case types.PriorityQuestion:
		return types.TrailItemQuestion
	case types.PriorityReview:
		return types.TrailItemSrsReview
	case types.PriorityExam:
		return types.TrailItemExam
	default:
		return types.TrailItemDrop
	}
}

func baseDuration(cfg config.SequencingConfig, p types.PriorityType) int {
	switch p {
	case types.PriorityQuestion:
		return cfg.QuestionMinutes
	case types.PriorityReview:
		return cfg.ReviewMinutes
	case types.PriorityExam:
		return cfg.ExamMinutes
	default:
		return cfg.DropMinutes
	}
}

func scaledDuration(cfg config.SequencingConfig, p types.PriorityType, scale float64) int {
	d := int(math.Round(float64(baseDuration(cfg, p)) * scale))
	if d < 1 {
		d = 1
	}
	return d
}

// durationScale shortens items when energy is low and stretches them when
// energy is high.
func durationScale(snapshot *types.StateSnapshot) float64 {
	if snapshot == nil {
		return 1.0
	}
	switch {
	case snapshot.Cognitive.Energy < 40:
		return 0.6
	case snapshot.Cognitive.Energy > 80:
		return 1.2
	default:
		return 1.0
	}
}

func selectCurve(snapshot *types.StateSnapshot) types.DifficultyCurve {
	if snapshot == nil {
		return types.CurveProgressive
	}
	switch {
	case snapshot.ProbSaturation > 0.6 || snapshot.Cognitive.Saturated:
		return types.CurveFlat
	case snapshot.Cognitive.Energy > 80 && snapshot.Emotional.Motivated:
		return types.CurveInverse
	default:
		return types.CurveProgressive
	}
}

// applyCurve reorders only the non-review portion; due reviews keep their
// position at the head of the trail. The flat curve keeps the priority
// order untouched.
func applyCurve(items []types.TrailItem, curve types.DifficultyCurve) []types.TrailItem {
	head := 0
	for head < len(items) && items[head].Type == types.TrailItemSrsReview {
		head++
	}
	tail := items[head:]

	switch curve {
	case types.CurveProgressive:
		sort.SliceStable(tail, func(i, j int) bool {
			return tail[i].Difficulty < tail[j].Difficulty
		})
	case types.CurveInverse:
		sort.SliceStable(tail, func(i, j int) bool {
			return tail[i].Difficulty > tail[j].Difficulty
		})
	}
	return items
}
