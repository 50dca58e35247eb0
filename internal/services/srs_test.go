package services

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/studydrops/backend/internal/logger"
	"github.com/studydrops/backend/internal/repos"
	"github.com/studydrops/backend/internal/types"
)

type fakeIntervalRepo struct {
	repos.SrsIntervalRepo
	rows map[string]*types.SrsUserInterval
}

func newFakeIntervalRepo() *fakeIntervalRepo {
	return &fakeIntervalRepo{rows: make(map[string]*types.SrsUserInterval)}
}

func (r *fakeIntervalRepo) Get(_ context.Context, _ *gorm.DB, userID uuid.UUID, subtopic string) (*types.SrsUserInterval, error) {
	row, ok := r.rows[userID.String()+"/"+subtopic]
	if !ok {
		return nil, nil
	}
	copied := *row
	return &copied, nil
}

func (r *fakeIntervalRepo) List(_ context.Context, _ *gorm.DB, userID uuid.UUID) ([]*types.SrsUserInterval, error) {
	var out []*types.SrsUserInterval
	for _, row := range r.rows {
		if row.UserID == userID {
			out = append(out, row)
		}
	}
	return out, nil
}

func (r *fakeIntervalRepo) Upsert(_ context.Context, _ *gorm.DB, row *types.SrsUserInterval) error {
	if row.ID == uuid.Nil {
		row.ID = uuid.New()
	}
	copied := *row
	r.rows[row.UserID.String()+"/"+row.Subtopic] = &copied
	return nil
}

type spyCache struct {
	deleted []string
}

func (c *spyCache) Get(context.Context, string, any) (bool, error) { return false, nil }
func (c *spyCache) Set(context.Context, string, any, time.Duration) error {
	return nil
}
func (c *spyCache) DelPattern(_ context.Context, pattern string) error {
	c.deleted = append(c.deleted, pattern)
	return nil
}
func (c *spyCache) Close() error { return nil }

func intervalTestService(intervals repos.SrsIntervalRepo, cache *spyCache) *srsService {
	return &srsService{
		log:       logger.NewNop(),
		intervals: intervals,
		cache:     cache,
		cardLocks: newKeyedMutex(8),
	}
}

func TestUpdateIntervalUpsertsAndInvalidates(t *testing.T) {
	repo := newFakeIntervalRepo()
	cache := &spyCache{}
	svc := intervalTestService(repo, cache)
	userID := uuid.New()

	row, err := svc.UpdateInterval(context.Background(), userID, "const", 1.4, 0.9)
	if err != nil {
		t.Fatalf("update interval: %v", err)
	}
	if row.IntervalMultiplier != 1.4 || row.EaseMultiplier != 0.9 {
		t.Fatalf("multipliers: got %.2f/%.2f, want 1.40/0.90", row.IntervalMultiplier, row.EaseMultiplier)
	}

	stored, err := repo.Get(context.Background(), nil, userID, "const")
	if err != nil || stored == nil {
		t.Fatalf("stored row missing: %v", err)
	}
	if stored.IntervalMultiplier != 1.4 {
		t.Fatalf("stored multiplier: got %.2f, want 1.40", stored.IntervalMultiplier)
	}

	wantPatterns := []string{
		fmt.Sprintf("srs:queue:%s:*", userID),
		fmt.Sprintf("srs:summary:%s", userID),
	}
	if len(cache.deleted) != len(wantPatterns) {
		t.Fatalf("invalidated patterns: got %v", cache.deleted)
	}
	for i, want := range wantPatterns {
		if cache.deleted[i] != want {
			t.Fatalf("pattern %d: got %q, want %q", i, cache.deleted[i], want)
		}
	}
}

func TestUpdateIntervalOverwritesExisting(t *testing.T) {
	repo := newFakeIntervalRepo()
	svc := intervalTestService(repo, &spyCache{})
	userID := uuid.New()

	if _, err := svc.UpdateInterval(context.Background(), userID, "const", 1.2, 1.0); err != nil {
		t.Fatalf("first upsert: %v", err)
	}
	row, err := svc.UpdateInterval(context.Background(), userID, "const", 0.8, 1.1)
	if err != nil {
		t.Fatalf("second upsert: %v", err)
	}
	if row.IntervalMultiplier != 0.8 || row.EaseMultiplier != 1.1 {
		t.Fatalf("multipliers after overwrite: got %.2f/%.2f", row.IntervalMultiplier, row.EaseMultiplier)
	}

	rows, err := svc.ListIntervals(context.Background(), userID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("rows: got %d, want 1", len(rows))
	}
}

func TestUpdateIntervalRejectsBadInput(t *testing.T) {
	svc := intervalTestService(newFakeIntervalRepo(), &spyCache{})
	userID := uuid.New()

	cases := []struct {
		name         string
		userID       uuid.UUID
		subtopic     string
		intervalMult float64
		easeMult     float64
	}{
		{name: "nil_user", userID: uuid.Nil, subtopic: "const", intervalMult: 1, easeMult: 1},
		{name: "empty_subtopic", userID: userID, subtopic: "", intervalMult: 1, easeMult: 1},
		{name: "zero_interval", userID: userID, subtopic: "const", intervalMult: 0, easeMult: 1},
		{name: "negative_ease", userID: userID, subtopic: "const", intervalMult: 1, easeMult: -0.5},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := svc.UpdateInterval(context.Background(), tc.userID, tc.subtopic, tc.intervalMult, tc.easeMult); err == nil {
				t.Fatalf("expected rejection")
			}
		})
	}
}
