package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	redisclient "github.com/studydrops/backend/internal/clients/redis"
	"github.com/studydrops/backend/internal/config"
	"github.com/studydrops/backend/internal/logger"
	"github.com/studydrops/backend/internal/repos"
	"github.com/studydrops/backend/internal/types"
)

type StartExamInput struct {
	UserID        uuid.UUID
	Discipline    string
	ExamBoard     string
	QuestionCount int
}

type AnswerInput struct {
	ExecutionID uuid.UUID
	UserID      uuid.UUID
	QuestionID  uuid.UUID
	Correct     bool
	TimeSpent   float64
}

type AnswerResult struct {
	Execution      *types.ExamExecution `json:"execution"`
	State          types.AdaptiveState  `json:"state"`
	NextDifficulty int                  `json:"next_difficulty"`
	Finished       bool                 `json:"finished"`
}

type ExamReport struct {
	Execution   *types.ExamExecution           `json:"execution"`
	State       types.AdaptiveState            `json:"state"`
	Accuracy    float64                        `json:"accuracy"`
	Performance map[int]types.DifficultyBucket `json:"performance_by_difficulty"`
}

type ExamService interface {
	StartExam(ctx context.Context, in StartExamInput) (*types.ExamExecution, error)
	NextQuestion(ctx context.Context, executionID uuid.UUID) (*types.Question, error)
	ProcessAnswer(ctx context.Context, in AnswerInput) (*AnswerResult, error)
	FinishExam(ctx context.Context, executionID uuid.UUID) (*ExamReport, error)
	Report(ctx context.Context, executionID uuid.UUID) (*ExamReport, error)
}

type examService struct {
	log        *logger.Logger
	db         *gorm.DB
	cfg        config.AdaptiveConfig
	executions repos.ExamExecutionRepo
	questions  repos.QuestionRepo
	topicStats repos.TopicStatRepo
	srs        SrsService
	events     redisclient.EventBus
	execLocks  *keyedMutex
}

func NewExamService(
	log *logger.Logger,
	db *gorm.DB,
	cfg config.AdaptiveConfig,
	executions repos.ExamExecutionRepo,
	questions repos.QuestionRepo,
	topicStats repos.TopicStatRepo,
	srs SrsService,
	events redisclient.EventBus,
) ExamService {
	return &examService{
		log:        log.With("service", "ExamService"),
		db:         db,
		cfg:        cfg,
		executions: executions,
		questions:  questions,
		topicStats: topicStats,
		srs:        srs,
		events:     events,
		execLocks:  newKeyedMutex(128),
	}
}

func (s *examService) StartExam(ctx context.Context, in StartExamInput) (*types.ExamExecution, error) {
	if in.UserID == uuid.Nil {
		return nil, fmt.Errorf("user id is required")
	}
	if in.QuestionCount <= 0 {
		return nil, fmt.Errorf("question count must be > 0")
	}

	state := NewAdaptiveState(s.cfg)
	raw, err := json.Marshal(state)
	if err != nil {
		return nil, err
	}

	execution := &types.ExamExecution{
		UserID:        in.UserID,
		Status:        types.ExamRunning,
		Discipline:    in.Discipline,
		ExamBoard:     in.ExamBoard,
		QuestionCount: in.QuestionCount,
		Adaptive:      datatypes.JSON(raw),
	}
	if err := s.executions.Create(ctx, nil, execution); err != nil {
		return nil, err
	}
	return execution, nil
}

// NextQuestion picks a candidate at the execution's current difficulty,
// excluding every question already answered in this execution.
func (s *examService) NextQuestion(ctx context.Context, executionID uuid.UUID) (*types.Question, error) {
	execution, err := s.executions.Get(ctx, nil, executionID)
	if err != nil {
		return nil, err
	}
	if execution == nil {
		return nil, fmt.Errorf("execution %s not found", executionID)
	}
	if execution.Status != types.ExamRunning {
		return nil, fmt.Errorf("execution %s is %s", executionID, execution.Status)
	}

	state, err := decodeAdaptive(execution, s.cfg)
	if err != nil {
		return nil, err
	}

	exclude := append([]uuid.UUID(nil), state.AnsweredQuestionIDs...)

	question, err := s.questions.SelectCandidate(ctx, nil, repos.QuestionFilter{
		Discipline: execution.Discipline,
		ExamBoard:  execution.ExamBoard,
		Difficulty: state.CurrentDifficulty,
		ExcludeIDs: exclude,
	})
	if err != nil {
		return nil, err
	}
	if question == nil {
		return nil, fmt.Errorf("no candidate question at difficulty %d", state.CurrentDifficulty)
	}
	return question, nil
}

// ProcessAnswer folds one answer into the execution. Calls for the same
// execution are serialized so each answer is counted exactly once.
func (s *examService) ProcessAnswer(ctx context.Context, in AnswerInput) (*AnswerResult, error) {
	if in.ExecutionID == uuid.Nil || in.QuestionID == uuid.Nil {
		return nil, fmt.Errorf("execution and question ids are required")
	}

	unlock := s.execLocks.lock(in.ExecutionID.String())
	defer unlock()

	var (
		result   *AnswerResult
		question *types.Question
	)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		execution, err := s.executions.GetForUpdate(ctx, tx, in.ExecutionID)
		if err != nil {
			return err
		}
		if execution == nil {
			return fmt.Errorf("execution %s not found", in.ExecutionID)
		}
		if in.UserID != uuid.Nil && execution.UserID != in.UserID {
			return fmt.Errorf("execution %s does not belong to user", in.ExecutionID)
		}
		if execution.Status != types.ExamRunning {
			return fmt.Errorf("execution %s is %s", in.ExecutionID, execution.Status)
		}

		question, err = s.questions.Get(ctx, tx, in.QuestionID)
		if err != nil {
			return err
		}

		state, err := decodeAdaptive(execution, s.cfg)
		if err != nil {
			return err
		}

		difficulty := state.CurrentDifficulty
		if question != nil {
			difficulty = question.Difficulty
		}
		state = UpdateState(s.cfg, state, types.AnswerSample{
			QuestionID: in.QuestionID,
			Correct:    in.Correct,
			Difficulty: difficulty,
			TimeSpent:  in.TimeSpent,
		})

		answered := execution.AnsweredCount + 1
		if err := s.executions.UpdateAdaptive(ctx, tx, execution.ID, state, answered); err != nil {
			return err
		}

		finished := answered >= execution.QuestionCount
		if finished {
			if err := s.executions.SetStatus(ctx, tx, execution.ID, types.ExamFinished); err != nil {
				return err
			}
		}

		if question != nil {
			if err := s.topicStats.RecordAnswer(ctx, tx, execution.UserID, question.TopicCode, in.Correct); err != nil {
				return err
			}
		}

		updated, err := s.executions.Get(ctx, tx, execution.ID)
		if err != nil {
			return err
		}
		result = &AnswerResult{
			Execution:      updated,
			State:          state,
			NextDifficulty: state.CurrentDifficulty,
			Finished:       finished,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	// Post-commit side effects. A wrong answer feeds the review loop; the
	// error review has its own transaction and lock.
	if !in.Correct {
		if _, err := s.srs.RegisterErrorReview(ctx, result.Execution.UserID, types.SrsContentQuestion, in.QuestionID, uuid.Nil); err != nil {
			s.log.Warn("Error review registration failed", "question_id", in.QuestionID, "error", err)
		}
	}
	s.emitAnswerProcessed(ctx, result, in)
	return result, nil
}

func (s *examService) FinishExam(ctx context.Context, executionID uuid.UUID) (*ExamReport, error) {
	unlock := s.execLocks.lock(executionID.String())
	defer unlock()

	execution, err := s.executions.Get(ctx, nil, executionID)
	if err != nil {
		return nil, err
	}
	if execution == nil {
		return nil, fmt.Errorf("execution %s not found", executionID)
	}
	if execution.Status == types.ExamRunning {
		if err := s.executions.SetStatus(ctx, nil, executionID, types.ExamFinished); err != nil {
			return nil, err
		}
		execution.Status = types.ExamFinished
	}
	return s.buildReport(execution)
}

func (s *examService) Report(ctx context.Context, executionID uuid.UUID) (*ExamReport, error) {
	execution, err := s.executions.Get(ctx, nil, executionID)
	if err != nil {
		return nil, err
	}
	if execution == nil {
		return nil, fmt.Errorf("execution %s not found", executionID)
	}
	return s.buildReport(execution)
}

func (s *examService) buildReport(execution *types.ExamExecution) (*ExamReport, error) {
	state, err := decodeAdaptive(execution, s.cfg)
	if err != nil {
		return nil, err
	}
	return &ExamReport{
		Execution:   execution,
		State:       state,
		Accuracy:    state.Accuracy(),
		Performance: state.PerformanceByDifficulty,
	}, nil
}

func (s *examService) emitAnswerProcessed(ctx context.Context, result *AnswerResult, in AnswerInput) {
	evt := redisclient.DomainEvent{
		Name:       redisclient.EventAnswerProcessed,
		UserID:     result.Execution.UserID.String(),
		OccurredAt: time.Now().UTC(),
		Payload: map[string]any{
			"execution_id":    result.Execution.ID.String(),
			"question_id":     in.QuestionID.String(),
			"correct":         in.Correct,
			"next_difficulty": result.NextDifficulty,
			"finished":        result.Finished,
		},
	}
	if err := s.events.Publish(ctx, evt); err != nil {
		s.log.Warn("Event publish failed", "event", evt.Name, "error", err)
	}
}

func decodeAdaptive(execution *types.ExamExecution, cfg config.AdaptiveConfig) (types.AdaptiveState, error) {
	if len(execution.Adaptive) == 0 {
		return NewAdaptiveState(cfg), nil
	}
	var state types.AdaptiveState
	if err := json.Unmarshal(execution.Adaptive, &state); err != nil {
		return state, fmt.Errorf("decode adaptive state: %w", err)
	}
	if state.PerformanceByDifficulty == nil {
		state.PerformanceByDifficulty = make(map[int]types.DifficultyBucket)
	}
	if state.CurrentDifficulty == 0 {
		state.CurrentDifficulty = cfg.InitialDifficulty
	}
	return state, nil
}
