package errors

import "errors"

// Configuration loading errors (§6).
var (
	ErrConfigMissingPath      = errors.New("config: strategy_config_path is empty")
	ErrConfigInvalidYAML      = errors.New("config: invalid yaml document")
	ErrConfigMissingMarket    = errors.New("config: markets.quote and markets.hedge are required")
	ErrConfigInvalidLadder    = errors.New("config: ladder offsets/sizes must be positive")
	ErrConfigInvalidThreshold = errors.New("config: recon thresholds must be non-negative")
	ErrConfigLogDirUnwritable = errors.New("config: strategy_log_dir is not writable")
)
