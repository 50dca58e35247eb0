package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/studydrops/backend/internal/logger"
	"github.com/studydrops/backend/internal/utils"
)

// Engine tuning. Loaded once at startup and validated here, so the engines
// can trust every field without re-checking ranges.

type AdaptiveConfig struct {
	InitialDifficulty int `yaml:"initial_difficulty"`
	MinDifficulty     int `yaml:"min_difficulty"`
	MaxDifficulty     int `yaml:"max_difficulty"`
	IncreaseThreshold int `yaml:"increase_threshold"`
	DecreaseThreshold int `yaml:"decrease_threshold"`
	DifficultyStep    int `yaml:"difficulty_step"`
	// Fine-tuning applies only when the streak rule did not already move the
	// difficulty, and only after FineTuneWindow answers.
	FineTuneWindow       int     `yaml:"fine_tune_window"`
	FineTuneHighAccuracy float64 `yaml:"fine_tune_high_accuracy"`
	FineTuneLowAccuracy  float64 `yaml:"fine_tune_low_accuracy"`
}

type SequencingConfig struct {
	DefaultBudgetMinutes int `yaml:"default_budget_minutes"`
	DropMinutes          int `yaml:"drop_minutes"`
	QuestionMinutes      int `yaml:"question_minutes"`
	ReviewMinutes        int `yaml:"review_minutes"`
	BlockMinutes         int `yaml:"block_minutes"`
	ExamMinutes          int `yaml:"exam_minutes"`
}

type SrsConfig struct {
	QueueCacheTTLSeconds int `yaml:"queue_cache_ttl_seconds"`
	QueueLimit           int `yaml:"queue_limit"`
}

type Config struct {
	Adaptive   AdaptiveConfig   `yaml:"adaptive"`
	Sequencing SequencingConfig `yaml:"sequencing"`
	Srs        SrsConfig        `yaml:"srs"`
}

func Default() Config {
	return Config{
		Adaptive: AdaptiveConfig{
			InitialDifficulty:    3,
			MinDifficulty:        1,
			MaxDifficulty:        5,
			IncreaseThreshold:    3,
			DecreaseThreshold:    3,
			DifficultyStep:       1,
			FineTuneWindow:       10,
			FineTuneHighAccuracy: 0.9,
			FineTuneLowAccuracy:  0.3,
		},
		Sequencing: SequencingConfig{
			DefaultBudgetMinutes: 60,
			DropMinutes:          8,
			QuestionMinutes:      3,
			ReviewMinutes:        2,
			BlockMinutes:         15,
			ExamMinutes:          10,
		},
		Srs: SrsConfig{
			QueueCacheTTLSeconds: 60,
			QueueLimit:           50,
		},
	}
}

// Load reads ENGINE_CONFIG_PATH when set, layered over Default. A missing
// file is not an error; a malformed or out-of-range file is.
func Load(log *logger.Logger) (Config, error) {
	cfg := Default()

	path := utils.GetEnv("ENGINE_CONFIG_PATH", "", log)
	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			if os.IsNotExist(err) {
				log.Warn("Engine config file not found, using defaults", "path", path)
			} else {
				return cfg, fmt.Errorf("read engine config: %w", err)
			}
		} else if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return cfg, fmt.Errorf("parse engine config: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	a := c.Adaptive
	if a.MinDifficulty < 1 || a.MaxDifficulty > 5 || a.MinDifficulty > a.MaxDifficulty {
		return fmt.Errorf("adaptive difficulty bounds [%d,%d] outside 1..5", a.MinDifficulty, a.MaxDifficulty)
	}
	if a.InitialDifficulty < a.MinDifficulty || a.InitialDifficulty > a.MaxDifficulty {
		return fmt.Errorf("adaptive initial difficulty %d outside [%d,%d]", a.InitialDifficulty, a.MinDifficulty, a.MaxDifficulty)
	}
	if a.IncreaseThreshold < 1 || a.DecreaseThreshold < 1 || a.DifficultyStep < 1 {
		return fmt.Errorf("adaptive thresholds and step must be >= 1")
	}
	if a.FineTuneWindow < 1 {
		return fmt.Errorf("adaptive fine-tune window must be >= 1")
	}
	if a.FineTuneHighAccuracy <= a.FineTuneLowAccuracy {
		return fmt.Errorf("fine-tune high accuracy %.2f must exceed low accuracy %.2f", a.FineTuneHighAccuracy, a.FineTuneLowAccuracy)
	}
	if a.FineTuneHighAccuracy > 1 || a.FineTuneLowAccuracy < 0 {
		return fmt.Errorf("fine-tune accuracies must stay within [0,1]")
	}

	s := c.Sequencing
	for name, v := range map[string]int{
		"default_budget_minutes": s.DefaultBudgetMinutes,
		"drop_minutes":           s.DropMinutes,
		"question_minutes":       s.QuestionMinutes,
		"review_minutes":         s.ReviewMinutes,
		"block_minutes":          s.BlockMinutes,
		"exam_minutes":           s.ExamMinutes,
	} {
		if v <= 0 {
			return fmt.Errorf("sequencing %s must be > 0", name)
		}
	}

	if c.Srs.QueueCacheTTLSeconds < 0 {
		return fmt.Errorf("srs queue cache ttl must be >= 0")
	}
	if c.Srs.QueueLimit <= 0 {
		return fmt.Errorf("srs queue limit must be > 0")
	}
	return nil
}
