package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/studydrops/backend/internal/logger"
	"github.com/studydrops/backend/internal/services"
	"github.com/studydrops/backend/internal/types"
)

type stubSrsService struct {
	services.SrsService
	updated *types.SrsUserSettings
}

func (s *stubSrsService) UpdateSettings(_ context.Context, settings *types.SrsUserSettings) error {
	s.updated = settings
	return nil
}

func settingsRouter(svc services.SrsService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewSrsHandler(logger.NewNop(), svc)
	router := gin.New()
	router.PUT("/api/users/:userId/srs/settings", h.UpdateSettings)
	return router
}

func TestUpdateSettingsRejectsUnknownValues(t *testing.T) {
	cases := []struct {
		name string
		body string
	}{
		{name: "memory_strength", body: `{"memory_strength":"superhuman"}`},
		{name: "learning_style", body: `{"learning_style":"osmosis"}`},
		{name: "negative_limit", body: `{"max_new_cards_per_day":-5}`},
		{name: "negative_interval", body: `{"base_interval_days":-1}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc := &stubSrsService{}
			router := settingsRouter(svc)

			req := httptest.NewRequest(http.MethodPut, "/api/users/"+uuid.NewString()+"/srs/settings", strings.NewReader(tc.body))
			req.Header.Set("Content-Type", "application/json")
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			if rec.Code != http.StatusBadRequest {
				t.Fatalf("status: got %d, want 400", rec.Code)
			}
			if svc.updated != nil {
				t.Fatalf("invalid input reached the service: %+v", svc.updated)
			}
		})
	}
}

func TestUpdateSettingsAcceptsKnownValues(t *testing.T) {
	svc := &stubSrsService{}
	router := settingsRouter(svc)

	body := `{"memory_strength":"strong","learning_style":"visual","max_new_cards_per_day":10}`
	req := httptest.NewRequest(http.MethodPut, "/api/users/"+uuid.NewString()+"/srs/settings", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d, want 200", rec.Code)
	}
	if svc.updated == nil {
		t.Fatalf("settings never reached the service")
	}
	if svc.updated.MemoryStrength != types.MemoryStrong || svc.updated.LearningStyle != types.StyleVisual {
		t.Fatalf("settings: got %s/%s", svc.updated.MemoryStrength, svc.updated.LearningStyle)
	}
	if svc.updated.MaxNewCardsPerDay != 10 {
		t.Fatalf("max new cards: got %d, want 10", svc.updated.MaxNewCardsPerDay)
	}
}
