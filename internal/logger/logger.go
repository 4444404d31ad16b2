package logger

import (
	"fmt"

	"go.uber.org/zap"
)

// New builds a named logger: JSON output in production, console output otherwise
func New(production bool, name string) (*zap.Logger, error) {
	var (
		log *zap.Logger
		err error
	)
	if production {
		log, err = zap.NewProduction()
	} else {
		log, err = zap.NewDevelopment()
	}
	if err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}
	return log.Named(name), nil
}
