package services

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/studydrops/backend/internal/logger"
	"github.com/studydrops/backend/internal/repos"
	"github.com/studydrops/backend/internal/types"
)

// PrioritizationInput is one ranking run. ExamDate is optional; without it
// exam proximity contributes its lowest tier.
type PrioritizationInput struct {
	UserID   uuid.UUID
	Snapshot *types.StateSnapshot
	ExamDate *time.Time
	Now      time.Time
}

// CriteriaScores are the per-run global signals the ranking was derived
// from, reported next to the ranked list.
type CriteriaScores struct {
	ExamProximity      float64 `json:"exam_proximity"`
	SrsBacklog         int     `json:"srs_backlog"`
	OverdueCards       int     `json:"overdue_cards"`
	SyllabusUrgency    float64 `json:"syllabus_urgency"`
	BoardWeight        float64 `json:"board_weight"`
	CriticalWeaknesses int     `json:"critical_weaknesses"`
}

type PrioritizationResult struct {
	Priorities []types.Priority `json:"priorities"`
	Criteria   CriteriaScores   `json:"criteria"`
}

type PrioritizationService interface {
	ComputePriorities(ctx context.Context, in PrioritizationInput) (*PrioritizationResult, error)
}

type prioritizationService struct {
	log    *logger.Logger
	topics repos.TopicRepo
	stats  repos.TopicStatRepo
	drops  repos.DropRepo
	cards  repos.SrsCardRepo
	trails repos.TrailRepo
}

func NewPrioritizationService(
	log *logger.Logger,
	topics repos.TopicRepo,
	stats repos.TopicStatRepo,
	drops repos.DropRepo,
	cards repos.SrsCardRepo,
	trails repos.TrailRepo,
) PrioritizationService {
	return &prioritizationService{
		log:    log.With("service", "PrioritizationService"),
		topics: topics,
		stats:  stats,
		drops:  drops,
		cards:  cards,
		trails: trails,
	}
}

const (
	topicListLimit = 200
	dueCardLimit   = 50
)

func (s *prioritizationService) ComputePriorities(ctx context.Context, in PrioritizationInput) (*PrioritizationResult, error) {
	if in.UserID == uuid.Nil {
		return nil, fmt.Errorf("user id is required")
	}
	now := in.Now
	if now.IsZero() {
		now = time.Now().UTC()
	}

	topics, err := s.topics.List(ctx, nil, topicListLimit)
	if err != nil {
		return nil, err
	}
	statRows, err := s.stats.ListByUser(ctx, nil, in.UserID)
	if err != nil {
		return nil, err
	}
	statsByTopic := make(map[string]*types.TopicStat, len(statRows))
	for _, row := range statRows {
		statsByTopic[row.TopicCode] = row
	}

	dueCards, err := s.cards.ListDue(ctx, nil, in.UserID, now, dueCardLimit)
	if err != nil {
		return nil, err
	}
	overdueCount, err := s.cards.CountOverdue(ctx, nil, in.UserID, now.Truncate(24*time.Hour))
	if err != nil {
		return nil, err
	}

	completed, err := s.trails.CompletedContentIDs(ctx, nil, in.UserID, now)
	if err != nil {
		return nil, err
	}
	done := make(map[string]struct{}, len(completed))
	for _, id := range completed {
		done[id] = struct{}{}
	}

	proximity := examProximity(in.ExamDate, now)
	backlogUrgency := srsBacklogUrgency(int(overdueCount))

	var priorities []types.Priority

	startOfToday := now.Truncate(24 * time.Hour)
	for _, card := range dueCards {
		contentID := card.DropID.String()
		if _, ok := done[contentID]; ok {
			continue
		}
		score := 5.0 + 4 // due review bonus
		urgency := backlogUrgency
		if card.NextReviewAt.Before(startOfToday) {
			// an overdue card is maximally urgent no matter the backlog size
			score += 1
			urgency = 10
		}
		priorities = append(priorities, types.Priority{
			Action:     "Review due card",
			Type:       types.PriorityReview,
			Score:      clampScore(score),
			Urgency:    urgency,
			Reason:     "spaced repetition review is due",
			ContentID:  contentID,
			Difficulty: 3,
		})
	}

	topicDrops, err := s.candidateDrops(ctx, topics)
	if err != nil {
		return nil, err
	}

	for _, topic := range topics {
		stat := statsByTopic[topic.Code]
		score, reason := s.scoreTopic(topic, stat, proximity, in.Snapshot)

		drop := topicDrops[topic.Code]
		contentID := ""
		difficulty := 3
		if drop != nil {
			contentID = drop.ID.String()
			difficulty = drop.Difficulty
		}
		if contentID != "" {
			if _, ok := done[contentID]; ok {
				continue
			}
		}

		score += difficultyAffinity(difficulty, in.Snapshot)

		priorities = append(priorities, types.Priority{
			Action:     fmt.Sprintf("Study %s", topic.Name),
			Type:       types.PriorityDrop,
			Score:      clampScore(score),
			Urgency:    int(math.Round(clampScore(score))),
			Reason:     reason,
			ContentID:  contentID,
			TopicCode:  topic.Code,
			Difficulty: difficulty,
		})

		if stat != nil && stat.Attempts() > 0 && stat.ErrorRate() > 0.3 {
			priorities = append(priorities, types.Priority{
				Action:     fmt.Sprintf("Practice questions on %s", topic.Name),
				Type:       types.PriorityQuestion,
				Score:      clampScore(score - 0.5),
				Urgency:    int(math.Round(clampScore(score - 0.5))),
				Reason:     "error rate above 30%, practice needed",
				TopicCode:  topic.Code,
				Difficulty: difficulty,
			})
		}
	}

	rankPriorities(priorities)

	return &PrioritizationResult{
		Priorities: priorities,
		Criteria: CriteriaScores{
			ExamProximity:      proximity,
			SrsBacklog:         backlogUrgency,
			OverdueCards:       int(overdueCount),
			SyllabusUrgency:    syllabusUrgency(topics, statsByTopic),
			BoardWeight:        boardWeight(statRows),
			CriticalWeaknesses: criticalWeaknessCount(statRows),
		},
	}, nil
}

// rankPriorities orders by score, then urgency, then topic code, so equal
// inputs always produce the same list.
func rankPriorities(priorities []types.Priority) {
	sort.SliceStable(priorities, func(i, j int) bool {
		if priorities[i].Score != priorities[j].Score {
			return priorities[i].Score > priorities[j].Score
		}
		if priorities[i].Urgency != priorities[j].Urgency {
			return priorities[i].Urgency > priorities[j].Urgency
		}
		return priorities[i].TopicCode < priorities[j].TopicCode
	})
}

// syllabusUrgency is the syllabus-weighted share of topics never attempted,
// on a 0..10 scale. A fully covered syllabus scores 0.
func syllabusUrgency(topics []*types.Topic, statsByTopic map[string]*types.TopicStat) float64 {
	var total, uncovered float64
	for _, topic := range topics {
		weight := clampRange(topic.SyllabusWeight, 0, 10)
		total += weight
		stat := statsByTopic[topic.Code]
		if stat == nil || stat.Attempts() == 0 {
			uncovered += weight
		}
	}
	if total == 0 {
		return 0
	}
	return uncovered / total * 10
}

// boardWeight inverts the learner's overall accuracy onto 0..10; neutral 5
// until there is at least one attempt.
func boardWeight(stats []*types.TopicStat) float64 {
	var correct, attempts int
	for _, stat := range stats {
		correct += stat.CorrectCount
		attempts += stat.Attempts()
	}
	if attempts == 0 {
		return 5
	}
	return (1 - float64(correct)/float64(attempts)) * 10
}

// criticalWeaknessCount is the number of topics failing badly enough to need
// targeted practice: error rate above 30% over at least 3 attempts.
func criticalWeaknessCount(stats []*types.TopicStat) int {
	count := 0
	for _, stat := range stats {
		if stat.Attempts() >= 3 && stat.ErrorRate() > 0.3 {
			count++
		}
	}
	return count
}

// scoreTopic combines the syllabus criteria, the learner's error rate and
// the gold rule composite into one 1..10 score.
func (s *prioritizationService) scoreTopic(topic *types.Topic, stat *types.TopicStat, proximity float64, snapshot *types.StateSnapshot) (float64, string) {
	score := 5.0
	reason := "baseline priority"

	score += clampRange(topic.SyllabusWeight, 0, 10) / 10 * 2
	score += proximity / 10 * 1.5
	score += clampRange(topic.ExamFrequency/10, 0, 10) / 10 * 1

	switch {
	case stat == nil || stat.Attempts() == 0:
		score += 2
		reason = "topic never studied"
	case stat.ErrorRate() > 0.3:
		score += stat.ErrorRate() * 3
		reason = fmt.Sprintf("error rate at %.0f%%", stat.ErrorRate()*100)
	case topic.ExamFrequency >= 70:
		reason = "frequently asked by the board"
	}

	gold := GoldRuleScore(topic, stat, time.Now().UTC())
	if gold >= 7 {
		score += 0.5
		if reason == "baseline priority" {
			reason = "high gold-rule relevance"
		}
	}
	return score, reason
}

// difficultyAffinity nudges candidates toward the learner's current
// capacity: challenging content while fresh, lighter content while drained.
func difficultyAffinity(difficulty int, snapshot *types.StateSnapshot) float64 {
	if snapshot == nil {
		return 0
	}
	switch snapshot.CognitiveLabel {
	case types.CognitiveHigh:
		if difficulty >= 4 {
			return 1
		}
	case types.CognitiveLow, types.CognitiveSaturated:
		if difficulty >= 4 {
			return -1
		}
		if difficulty <= 2 {
			return 1
		}
	}
	return 0
}

func (s *prioritizationService) candidateDrops(ctx context.Context, topics []*types.Topic) (map[string]*types.Drop, error) {
	codes := make([]string, 0, len(topics))
	for _, t := range topics {
		codes = append(codes, t.Code)
	}
	rows, err := s.drops.ListByTopics(ctx, nil, codes, topicListLimit)
	if err != nil {
		return nil, err
	}
	// first (easiest) active drop per topic
	byTopic := make(map[string]*types.Drop, len(rows))
	for _, row := range rows {
		if _, ok := byTopic[row.TopicCode]; !ok {
			byTopic[row.TopicCode] = row
		}
	}
	return byTopic, nil
}

// examProximity maps days until the exam onto the urgency tiers.
func examProximity(examDate *time.Time, now time.Time) float64 {
	if examDate == nil {
		return 2
	}
	days := examDate.Sub(now).Hours() / 24
	switch {
	case days <= 7:
		return 10
	case days <= 30:
		return 8
	case days <= 60:
		return 6
	case days <= 90:
		return 4
	default:
		return 2
	}
}

// srsBacklogUrgency maps the overdue-card count onto 1..10.
func srsBacklogUrgency(overdue int) int {
	switch {
	case overdue == 0:
		return 1
	case overdue <= 5:
		return 3
	case overdue <= 10:
		return 6
	case overdue <= 20:
		return 8
	default:
		return 10
	}
}

func clampScore(v float64) float64 {
	if v < 1 {
		return 1
	}
	if v > 10 {
		return 10
	}
	return v
}
