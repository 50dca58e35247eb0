package services

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/studydrops/backend/internal/logger"
	"github.com/studydrops/backend/internal/repos"
	"github.com/studydrops/backend/internal/types"
)

type stubTopicRepo struct {
	repos.TopicRepo
	topics []*types.Topic
}

func (r *stubTopicRepo) List(context.Context, *gorm.DB, int) ([]*types.Topic, error) {
	return r.topics, nil
}

type stubStatRepo struct {
	repos.TopicStatRepo
	rows []*types.TopicStat
}

func (r *stubStatRepo) ListByUser(context.Context, *gorm.DB, uuid.UUID) ([]*types.TopicStat, error) {
	return r.rows, nil
}

type stubDropRepo struct {
	repos.DropRepo
	rows []*types.Drop
}

func (r *stubDropRepo) ListByTopics(context.Context, *gorm.DB, []string, int) ([]*types.Drop, error) {
	return r.rows, nil
}

type stubCardRepo struct {
	repos.SrsCardRepo
	due     []*types.SrsCard
	overdue int64
}

func (r *stubCardRepo) ListDue(context.Context, *gorm.DB, uuid.UUID, time.Time, int) ([]*types.SrsCard, error) {
	return r.due, nil
}

func (r *stubCardRepo) CountOverdue(context.Context, *gorm.DB, uuid.UUID, time.Time) (int64, error) {
	return r.overdue, nil
}

type stubTrailRepo struct {
	repos.TrailRepo
	completed []string
}

func (r *stubTrailRepo) CompletedContentIDs(context.Context, *gorm.DB, uuid.UUID, time.Time) ([]string, error) {
	return r.completed, nil
}

func rankingService(topics []*types.Topic, stats []*types.TopicStat, drops []*types.Drop, due []*types.SrsCard, overdue int64, completed []string) *prioritizationService {
	return &prioritizationService{
		log:    logger.NewNop(),
		topics: &stubTopicRepo{topics: topics},
		stats:  &stubStatRepo{rows: stats},
		drops:  &stubDropRepo{rows: drops},
		cards:  &stubCardRepo{due: due, overdue: overdue},
		trails: &stubTrailRepo{completed: completed},
	}
}

func TestExamProximityTiers(t *testing.T) {
	now := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	cases := []struct {
		name string
		days int
		want float64
	}{
		{name: "this_week", days: 5, want: 10},
		{name: "this_month", days: 25, want: 8},
		{name: "two_months", days: 55, want: 6},
		{name: "three_months", days: 85, want: 4},
		{name: "far_away", days: 200, want: 2},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			date := now.Add(time.Duration(tc.days) * 24 * time.Hour)
			if got := examProximity(&date, now); got != tc.want {
				t.Fatalf("%d days out: got %.0f, want %.0f", tc.days, got, tc.want)
			}
		})
	}

	if got := examProximity(nil, now); got != 2 {
		t.Fatalf("no exam date: got %.0f, want 2", got)
	}
}

func TestSrsBacklogUrgencyTiers(t *testing.T) {
	cases := []struct {
		overdue int
		want    int
	}{
		{overdue: 0, want: 1},
		{overdue: 3, want: 3},
		{overdue: 8, want: 6},
		{overdue: 15, want: 8},
		{overdue: 40, want: 10},
	}
	for _, tc := range cases {
		if got := srsBacklogUrgency(tc.overdue); got != tc.want {
			t.Fatalf("%d overdue: got %d, want %d", tc.overdue, got, tc.want)
		}
	}
}

func TestScoreTopicNeverSeenBonus(t *testing.T) {
	s := &prioritizationService{}
	topic := &types.Topic{Code: "dir-admin", Name: "Direito Administrativo", SyllabusWeight: 5, ExamFrequency: 50}

	fresh, freshReason := s.scoreTopic(topic, nil, 2, nil)
	seen, _ := s.scoreTopic(topic, &types.TopicStat{CorrectCount: 8, WrongCount: 2}, 2, nil)

	if fresh <= seen {
		t.Fatalf("never-seen topic must outrank a well-known one: %.2f vs %.2f", fresh, seen)
	}
	if freshReason != "topic never studied" {
		t.Fatalf("reason: got %q", freshReason)
	}
}

func TestScoreTopicErrorRateRaisesScore(t *testing.T) {
	s := &prioritizationService{}
	topic := &types.Topic{Code: "const", Name: "Constitucional", SyllabusWeight: 5, ExamFrequency: 50}

	weak, _ := s.scoreTopic(topic, &types.TopicStat{CorrectCount: 2, WrongCount: 8}, 2, nil)
	strong, _ := s.scoreTopic(topic, &types.TopicStat{CorrectCount: 9, WrongCount: 1}, 2, nil)

	if weak <= strong {
		t.Fatalf("high error rate must raise the score: %.2f vs %.2f", weak, strong)
	}
}

func TestDifficultyAffinity(t *testing.T) {
	high := &types.StateSnapshot{CognitiveLabel: types.CognitiveHigh}
	low := &types.StateSnapshot{CognitiveLabel: types.CognitiveLow}

	if got := difficultyAffinity(5, high); got != 1 {
		t.Fatalf("hard content while fresh: got %.0f, want +1", got)
	}
	if got := difficultyAffinity(5, low); got != -1 {
		t.Fatalf("hard content while drained: got %.0f, want -1", got)
	}
	if got := difficultyAffinity(1, low); got != 1 {
		t.Fatalf("easy content while drained: got %.0f, want +1", got)
	}
	if got := difficultyAffinity(3, high); got != 0 {
		t.Fatalf("medium content: got %.0f, want 0", got)
	}
	if got := difficultyAffinity(5, nil); got != 0 {
		t.Fatalf("nil snapshot: got %.0f, want 0", got)
	}
}

func TestClampScore(t *testing.T) {
	if got := clampScore(14); got != 10 {
		t.Fatalf("upper clamp: got %.1f", got)
	}
	if got := clampScore(-2); got != 1 {
		t.Fatalf("lower clamp: got %.1f", got)
	}
	if got := clampScore(6.5); got != 6.5 {
		t.Fatalf("in range: got %.1f", got)
	}
}

func TestRankPrioritiesDeterministicTieBreak(t *testing.T) {
	a := types.Priority{TopicCode: "alpha", Score: 7, Urgency: 5}
	b := types.Priority{TopicCode: "bravo", Score: 7, Urgency: 5}
	c := types.Priority{TopicCode: "charlie", Score: 7, Urgency: 8}
	d := types.Priority{TopicCode: "delta", Score: 9, Urgency: 1}

	first := []types.Priority{b, d, c, a}
	second := []types.Priority{c, a, d, b}
	rankPriorities(first)
	rankPriorities(second)

	want := []string{"delta", "charlie", "alpha", "bravo"}
	for i := range want {
		if first[i].TopicCode != want[i] {
			t.Fatalf("position %d: got %q, want %q", i, first[i].TopicCode, want[i])
		}
		if second[i].TopicCode != first[i].TopicCode {
			t.Fatalf("position %d differs across permutations: %q vs %q", i, second[i].TopicCode, first[i].TopicCode)
		}
	}
}

func TestComputePrioritiesDedupesCompletedContent(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	topics := []*types.Topic{
		{Code: "const", Name: "Constitucional", SyllabusWeight: 5, ExamFrequency: 50},
		{Code: "penal", Name: "Penal", SyllabusWeight: 5, ExamFrequency: 50},
	}
	doneDrop := &types.Drop{ID: uuid.New(), TopicCode: "const", Difficulty: 2, Status: types.ContentStatusActive}
	freshDrop := &types.Drop{ID: uuid.New(), TopicCode: "penal", Difficulty: 2, Status: types.ContentStatusActive}

	doneCard := &types.SrsCard{ID: uuid.New(), DropID: doneDrop.ID, NextReviewAt: now}
	freshCard := &types.SrsCard{ID: uuid.New(), DropID: uuid.New(), NextReviewAt: now}

	svc := rankingService(
		topics, nil,
		[]*types.Drop{doneDrop, freshDrop},
		[]*types.SrsCard{doneCard, freshCard},
		0,
		[]string{doneDrop.ID.String()},
	)

	result, err := svc.ComputePriorities(context.Background(), PrioritizationInput{
		UserID: uuid.New(),
		Now:    now,
	})
	if err != nil {
		t.Fatalf("compute: %v", err)
	}

	sawFreshDrop, sawFreshCard := false, false
	for _, p := range result.Priorities {
		if p.ContentID == doneDrop.ID.String() {
			t.Fatalf("content completed earlier today was scheduled again: %+v", p)
		}
		if p.ContentID == freshDrop.ID.String() {
			sawFreshDrop = true
		}
		if p.Type == types.PriorityReview && p.ContentID == freshCard.DropID.String() {
			sawFreshCard = true
		}
	}
	if !sawFreshDrop || !sawFreshCard {
		t.Fatalf("non-completed content missing from the ranking: drop=%v card=%v", sawFreshDrop, sawFreshCard)
	}
}

func TestComputePrioritiesOverdueCardUrgency(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	overdueCard := &types.SrsCard{ID: uuid.New(), DropID: uuid.New(), NextReviewAt: now.Add(-36 * time.Hour)}
	todayCard := &types.SrsCard{ID: uuid.New(), DropID: uuid.New(), NextReviewAt: now.Add(-time.Hour)}

	svc := rankingService(nil, nil, nil, []*types.SrsCard{overdueCard, todayCard}, 2, nil)
	result, err := svc.ComputePriorities(context.Background(), PrioritizationInput{
		UserID: uuid.New(),
		Now:    now,
	})
	if err != nil {
		t.Fatalf("compute: %v", err)
	}
	if len(result.Priorities) != 2 {
		t.Fatalf("priorities: got %d, want 2", len(result.Priorities))
	}

	byContent := make(map[string]types.Priority, 2)
	for _, p := range result.Priorities {
		byContent[p.ContentID] = p
	}
	if got := byContent[overdueCard.DropID.String()].Urgency; got != 10 {
		t.Fatalf("overdue card urgency: got %d, want 10", got)
	}
	if got := byContent[todayCard.DropID.String()].Urgency; got != 3 {
		t.Fatalf("due-today card urgency: got %d, want backlog tier 3", got)
	}
	if got := byContent[overdueCard.DropID.String()].Score; got != 10 {
		t.Fatalf("overdue card score: got %.1f, want 10", got)
	}
}

func TestComputePrioritiesCriteriaScores(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	examDate := now.Add(5 * 24 * time.Hour)
	topics := []*types.Topic{
		{Code: "const", Name: "Constitucional", SyllabusWeight: 5, ExamFrequency: 50},
		{Code: "penal", Name: "Penal", SyllabusWeight: 5, ExamFrequency: 50},
	}
	stats := []*types.TopicStat{
		{TopicCode: "const", CorrectCount: 6, WrongCount: 4},
	}

	svc := rankingService(topics, stats, nil, nil, 3, nil)
	result, err := svc.ComputePriorities(context.Background(), PrioritizationInput{
		UserID:   uuid.New(),
		ExamDate: &examDate,
		Now:      now,
	})
	if err != nil {
		t.Fatalf("compute: %v", err)
	}

	crit := result.Criteria
	if crit.ExamProximity != 10 {
		t.Fatalf("exam proximity: got %.0f, want 10", crit.ExamProximity)
	}
	if crit.SrsBacklog != 3 {
		t.Fatalf("srs backlog tier: got %d, want 3", crit.SrsBacklog)
	}
	if crit.OverdueCards != 3 {
		t.Fatalf("overdue cards: got %d, want 3", crit.OverdueCards)
	}
	// half the syllabus weight was never attempted
	if !floatEq(crit.SyllabusUrgency, 5) {
		t.Fatalf("syllabus urgency: got %.2f, want 5", crit.SyllabusUrgency)
	}
	// overall accuracy 60% inverts to board weight 4
	if !floatEq(crit.BoardWeight, 4) {
		t.Fatalf("board weight: got %.2f, want 4", crit.BoardWeight)
	}
	if crit.CriticalWeaknesses != 1 {
		t.Fatalf("critical weaknesses: got %d, want 1", crit.CriticalWeaknesses)
	}
}
