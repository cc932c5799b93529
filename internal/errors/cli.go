package errors

import "errors"

// cmd/trader argument and bootstrap-file errors (§6 "CLI surface").
var (
	ErrCLIMissingBootstrapArg = errors.New("cli: one positional argument (bootstrap json path) is required")
	ErrCLIInvalidBootstrapJSON = errors.New("cli: bootstrap file is not valid json")
	ErrCLIMissingConfigPath   = errors.New("cli: bootstrap json strategy_config_path is empty")
	ErrCLIMissingLogDir       = errors.New("cli: bootstrap json strategy_log_dir is empty")
)
