// Package cfg loads optimizer tunables from an optional YAML file with
// environment-variable overrides.
package cfg

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/genes3e7/Closed-Loop-Leverage-Grid-Bot-Optimizer/internal/common"
)

// Settings holds every tunable of the optimization pipeline. All of them
// have sane defaults; none are secret.
type Settings struct {
	HistoryDays     int
	ConfidenceZ     float64
	WinRate         float64
	KellyFraction   float64
	SafetyBuffer    float64
	MinProfitShare  float64
	MinOrderSize    float64
	ATRStopMultiple float64
	QuoteAsset      string
	RESTTimeout     time.Duration
}

type configFile struct {
	Strategy struct {
		ConfidenceZ     float64 `yaml:"confidenceZ"`
		WinRate         float64 `yaml:"winRate"`
		KellyFraction   float64 `yaml:"kellyFraction"`
		SafetyBuffer    float64 `yaml:"safetyBuffer"`
		MinProfitShare  float64 `yaml:"minProfitShare"`
		MinOrderSize    float64 `yaml:"minOrderSize"`
		ATRStopMultiple float64 `yaml:"atrStopMultiple"`
	} `yaml:"strategy"`

	History struct {
		Days       int    `yaml:"days"`
		QuoteAsset string `yaml:"quoteAsset"`
	} `yaml:"history"`

	System struct {
		RESTTimeout string `yaml:"restTimeout"`
	} `yaml:"system"`
}

// Load builds Settings from defaults, an optional YAML file named by
// CONFIG_FILE, and environment variables, in increasing precedence.
func Load() (Settings, error) {
	s := defaults()

	if path := os.Getenv(common.EnvConfigFile); path != "" {
		if err := applyYAML(&s, path); err != nil {
			return Settings{}, err
		}
	}
	applyEnv(&s)

	if err := validate(&s); err != nil {
		return Settings{}, fmt.Errorf("configuration validation failed: %w", err)
	}
	return s, nil
}

func defaults() Settings {
	timeout, _ := time.ParseDuration(common.DefaultRESTTimeout)
	return Settings{
		HistoryDays:     common.DefaultHistoryDays,
		ConfidenceZ:     common.DefaultConfidenceZ,
		WinRate:         common.DefaultWinRate,
		KellyFraction:   common.DefaultKellyFraction,
		SafetyBuffer:    common.DefaultSafetyBuffer,
		MinProfitShare:  common.DefaultMinProfitShare,
		MinOrderSize:    common.DefaultMinOrderSize,
		ATRStopMultiple: common.DefaultATRStopMult,
		QuoteAsset:      common.DefaultQuoteAsset,
		RESTTimeout:     timeout,
	}
}

func applyYAML(s *Settings, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var f configFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}

	setFloat(&s.ConfidenceZ, f.Strategy.ConfidenceZ)
	setFloat(&s.WinRate, f.Strategy.WinRate)
	setFloat(&s.KellyFraction, f.Strategy.KellyFraction)
	setFloat(&s.SafetyBuffer, f.Strategy.SafetyBuffer)
	setFloat(&s.MinProfitShare, f.Strategy.MinProfitShare)
	setFloat(&s.MinOrderSize, f.Strategy.MinOrderSize)
	setFloat(&s.ATRStopMultiple, f.Strategy.ATRStopMultiple)
	if f.History.Days != 0 {
		s.HistoryDays = f.History.Days
	}
	if f.History.QuoteAsset != "" {
		s.QuoteAsset = f.History.QuoteAsset
	}
	if f.System.RESTTimeout != "" {
		if d, err := time.ParseDuration(f.System.RESTTimeout); err == nil {
			s.RESTTimeout = d
		}
	}
	return nil
}

func applyEnv(s *Settings) {
	s.HistoryDays = getIntOrDefault(common.EnvHistoryDays, s.HistoryDays)
	s.ConfidenceZ = getFloatOrDefault(common.EnvConfidenceZ, s.ConfidenceZ)
	s.WinRate = getFloatOrDefault(common.EnvWinRate, s.WinRate)
	s.KellyFraction = getFloatOrDefault(common.EnvKellyFraction, s.KellyFraction)
	s.SafetyBuffer = getFloatOrDefault(common.EnvSafetyBuffer, s.SafetyBuffer)
	s.MinProfitShare = getFloatOrDefault(common.EnvMinProfitShare, s.MinProfitShare)
	s.MinOrderSize = getFloatOrDefault(common.EnvMinOrderSize, s.MinOrderSize)
	s.ATRStopMultiple = getFloatOrDefault(common.EnvATRStopMult, s.ATRStopMultiple)
	s.QuoteAsset = getEnvOrDefault(common.EnvQuoteAsset, s.QuoteAsset)
	s.RESTTimeout = getDurationOrDefault(common.EnvRESTTimeout, s.RESTTimeout)
}

func setFloat(dst *float64, v float64) {
	if v != 0 {
		*dst = v
	}
}

func getEnvOrDefault(key, defaultValue string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultValue
}

func getDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return defaultValue
}

func getIntOrDefault(key string, defaultValue int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return defaultValue
}

func getFloatOrDefault(key string, defaultValue float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func validate(s *Settings) error {
	if s.HistoryDays < common.MinHistoryDays || s.HistoryDays > common.MaxHistoryDays {
		return fmt.Errorf("history days must be between %d and %d, got %d",
			common.MinHistoryDays, common.MaxHistoryDays, s.HistoryDays)
	}
	if s.ConfidenceZ < common.MinConfidenceZ || s.ConfidenceZ > common.MaxConfidenceZ {
		return fmt.Errorf("confidence z must be between %v and %v, got %f",
			common.MinConfidenceZ, common.MaxConfidenceZ, s.ConfidenceZ)
	}
	if s.WinRate <= 0 || s.WinRate >= 1 {
		return fmt.Errorf("win rate must be strictly between 0 and 1, got %f", s.WinRate)
	}
	if s.KellyFraction <= 0 || s.KellyFraction > common.MaxKellyFraction {
		return fmt.Errorf("kelly fraction must be in (0, 1], got %f", s.KellyFraction)
	}
	if s.SafetyBuffer <= 0 || s.SafetyBuffer >= 1 {
		return fmt.Errorf("safety buffer must be strictly between 0 and 1, got %f", s.SafetyBuffer)
	}
	if s.MinProfitShare <= 0 || s.MinProfitShare >= 1 {
		return fmt.Errorf("min profit share must be strictly between 0 and 1, got %f", s.MinProfitShare)
	}
	if s.MinOrderSize <= 0 {
		return fmt.Errorf("min order size must be positive, got %f", s.MinOrderSize)
	}
	if s.ATRStopMultiple < 0 {
		return fmt.Errorf("ATR stop multiple cannot be negative, got %f", s.ATRStopMultiple)
	}
	if s.QuoteAsset == "" {
		return fmt.Errorf("quote asset cannot be empty")
	}
	if s.RESTTimeout < time.Second || s.RESTTimeout > time.Minute {
		return fmt.Errorf("REST timeout must be between 1s and 1m, got %v", s.RESTTimeout)
	}
	return nil
}
