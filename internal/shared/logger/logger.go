package logger

import (
	"sync"

	"github.com/cristianortiz/numismaticMarket/internal/shared/config"
	"go.uber.org/zap"
)

var (
	logger *zap.Logger
	once   sync.Once
)

// GetLogger returns the process wide zap.Logger, built once.
// Development config by default, production config when APP_ENV=production.
func GetLogger() *zap.Logger {
	once.Do(func() {
		config.LoadEnv()
		var err error
		if config.GetEnv("APP_ENV", "development") == "production" {
			logger, err = zap.NewProduction()
		} else {
			logger, err = zap.NewDevelopment()
		}
		if err != nil {
			panic("failed logger setup : " + err.Error())
		}
	})
	return logger
}
