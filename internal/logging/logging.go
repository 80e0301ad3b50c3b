// Package logging builds the demo's zap logger. The terminal belongs to the
// editor, so logs go to a file or nowhere.
package logging

import (
	"fmt"

	"go.uber.org/zap"
)

// New returns a production logger when env is "production" and a
// development logger otherwise, writing to path. An empty path disables
// logging.
func New(env, level, path string) (*zap.Logger, error) {
	if path == "" {
		return zap.NewNop(), nil
	}

	var cfg zap.Config
	if env == "production" {
		cfg = zap.NewProductionConfig()
	} else {
		cfg = zap.NewDevelopmentConfig()
	}
	if level != "" {
		lvl, err := zap.ParseAtomicLevel(level)
		if err != nil {
			return nil, fmt.Errorf("logging: %w", err)
		}
		cfg.Level = lvl
	}
	cfg.OutputPaths = []string{path}
	cfg.ErrorOutputPaths = []string{path}

	return cfg.Build()
}
