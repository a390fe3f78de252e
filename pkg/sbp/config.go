package sbp

import (
	"os"
	"runtime"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/viper"
)

// Algorithm tuning parameters.
const (
	minClusterCount  = 1
	binarySplitCount = 2

	// Accept a split when h_after < h_before + 5% of |h_before|.
	splitToleranceFactor = 0.05
	// 10*N MCMC iterations after each committed split.
	mcmcRefinementMultiplier = 10

	// Bottom-up schedule: refine once K <= N/5, 50*K iterations capped
	// at 2000, 100*K after a forced merge, doubled near the target.
	bottomUpMCMCMultiplier    = 50
	maxBottomUpMCMCIters      = 2000
	mergeBatchSizeFactor      = 0.5
	mcmcThresholdDivisor      = 5
	forcedMergeMCMCMultiplier = 100
)

// Config manages engine configuration using Viper.
type Config struct {
	v *viper.Viper
}

// NewConfig creates a configuration with defaults. The worker count is
// bound to the SBP_NUM_WORKERS environment variable; one worker makes a
// fixed-seed run fully reproducible.
func NewConfig() *Config {
	v := viper.New()

	v.SetDefault("algorithm.proposals_per_split", 50)
	v.SetDefault("algorithm.random_seed", time.Now().UnixNano())

	v.SetDefault("performance.num_workers", runtime.NumCPU())
	v.BindEnv("performance.num_workers", "SBP_NUM_WORKERS")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.enable_progress", true)

	return &Config{v: v}
}

// LoadFromFile loads configuration overrides from a file.
func (c *Config) LoadFromFile(path string) error {
	c.v.SetConfigFile(path)
	return c.v.ReadInConfig()
}

func (c *Config) ProposalsPerSplit() int { return c.v.GetInt("algorithm.proposals_per_split") }

func (c *Config) RandomSeed() int64 { return c.v.GetInt64("algorithm.random_seed") }

func (c *Config) NumWorkers() int {
	workers := c.v.GetInt("performance.num_workers")
	if workers < 1 {
		return 1
	}
	return workers
}

func (c *Config) LogLevel() string     { return c.v.GetString("logging.level") }
func (c *Config) EnableProgress() bool { return c.v.GetBool("logging.enable_progress") }

// Set allows dynamic configuration changes.
func (c *Config) Set(key string, value interface{}) {
	c.v.Set(key, value)
}

// CreateLogger creates a zerolog logger based on config.
func (c *Config) CreateLogger() zerolog.Logger {
	level, err := zerolog.ParseLevel(c.LogLevel())
	if err != nil {
		level = zerolog.InfoLevel
	}

	return zerolog.New(zerolog.ConsoleWriter{
		Out:        os.Stdout,
		TimeFormat: "15:04:05",
	}).Level(level).With().Timestamp().Str("service", "sbp").Logger()
}
