package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds everything the evolutionary signal engine consumes.
// Historical revisions of the regime-boost and jury-quorum thresholds disagree,
// so the tuning values live here instead of being hard-coded.
type Config struct {
	Environment string
	LogLevel    string

	Population struct {
		Cap            int
		EliteFraction  float64
		MinElites      int
		BaselineEquity float64
		NotionalScale  float64
	}

	Evolution struct {
		Interval           time.Duration
		FreshnessThreshold time.Duration
		DecayFactorRecent  float64
		DecayFactorStale   float64
		SnapshotPath       string
	}

	Jury struct {
		PanelSize          int
		ScoutProbability   float64
		ConfidenceFloor    float64
		LoneVoteConfidence float64
	}

	Scoring struct {
		TrendBoost      float64
		RangeBoost      float64
		MismatchPenalty float64
		StreakBonus2    float64
		StreakBonus3    float64
		StreakBonus5    float64
	}

	Regime struct {
		TrendingHurst  float64
		RevertingHurst float64
		EntropyBins    int
	}

	Monitoring struct {
		PrometheusPort int
	}
}

// Load builds the config from the environment with production defaults.
func Load() *Config {
	cfg := &Config{
		Environment: getEnv("ENV", "development"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
	}

	cfg.Population.Cap = getEnvInt("POPULATION_CAP", 24)
	cfg.Population.EliteFraction = getEnvFloat("ELITE_FRACTION", 0.20)
	cfg.Population.MinElites = getEnvInt("MIN_ELITES", 2)
	cfg.Population.BaselineEquity = getEnvFloat("BASELINE_EQUITY", 10000.0)
	cfg.Population.NotionalScale = getEnvFloat("NOTIONAL_SCALE", 1000.0)

	cfg.Evolution.Interval = getEnvDuration("EVOLUTION_INTERVAL", 24*time.Hour)
	cfg.Evolution.FreshnessThreshold = getEnvDuration("FRESHNESS_THRESHOLD", 24*time.Hour)
	cfg.Evolution.DecayFactorRecent = getEnvFloat("DECAY_FACTOR_RECENT", 0.95)
	cfg.Evolution.DecayFactorStale = getEnvFloat("DECAY_FACTOR_STALE", 0.50)
	cfg.Evolution.SnapshotPath = getEnv("SNAPSHOT_PATH", "state/population.json")

	cfg.Jury.PanelSize = getEnvInt("JURY_PANEL_SIZE", 5)
	cfg.Jury.ScoutProbability = getEnvFloat("SCOUT_PROBABILITY", 0.10)
	cfg.Jury.ConfidenceFloor = getEnvFloat("CONFIDENCE_FLOOR", 0.60)
	cfg.Jury.LoneVoteConfidence = getEnvFloat("LONE_VOTE_CONFIDENCE", 0.62)

	cfg.Scoring.TrendBoost = getEnvFloat("TREND_BOOST", 1.2)
	cfg.Scoring.RangeBoost = getEnvFloat("RANGE_BOOST", 1.2)
	cfg.Scoring.MismatchPenalty = getEnvFloat("MISMATCH_PENALTY", 0.85)
	cfg.Scoring.StreakBonus2 = getEnvFloat("STREAK_BONUS_2", 1.05)
	cfg.Scoring.StreakBonus3 = getEnvFloat("STREAK_BONUS_3", 1.10)
	cfg.Scoring.StreakBonus5 = getEnvFloat("STREAK_BONUS_5", 1.20)

	cfg.Regime.TrendingHurst = getEnvFloat("TRENDING_HURST", 0.55)
	cfg.Regime.RevertingHurst = getEnvFloat("REVERTING_HURST", 0.45)
	cfg.Regime.EntropyBins = getEnvInt("ENTROPY_BINS", 20)

	cfg.Monitoring.PrometheusPort = getEnvInt("PROMETHEUS_PORT", 8080)

	return cfg
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return defaultVal
}

func getEnvFloat(key string, defaultVal float64) float64 {
	if val := os.Getenv(key); val != "" {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			return f
		}
	}
	return defaultVal
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			return d
		}
	}
	return defaultVal
}
