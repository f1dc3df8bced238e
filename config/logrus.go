package config

import (
	"context"
	"os"
	"strings"

	"github.com/mmdatafocus/kvk_backend/appctx"
	"github.com/sirupsen/logrus"
)

var (
	logg *logrus.Logger
)

func GetLogger() *logrus.Logger {
	return logg
}

func init() {
	logg = logrus.New()
	logg.SetFormatter(&logrus.JSONFormatter{})
	logg.SetLevel(levelFromEnv())
	logg.SetOutput(os.Stdout)
}

func levelFromEnv() logrus.Level {
	if v := strings.TrimSpace(os.Getenv("LOG_LEVEL")); v != "" {
		if lvl, err := logrus.ParseLevel(v); err == nil {
			return lvl
		}
	}
	if IsProduction() {
		return logrus.ErrorLevel
	}
	return logrus.InfoLevel
}

func LogError(logger *logrus.Logger, moduleName string, funcName string, context string, data any, err error) {
	if logger == nil {
		logger = logg
	}
	logger.WithFields(errorFields(moduleName, funcName, context, data)).Error(err.Error())
}

// LogErrorCtx is LogError tagged with the request's correlation id.
func LogErrorCtx(ctx context.Context, moduleName string, funcName string, step string, data any, err error) {
	fields := errorFields(moduleName, funcName, step, data)
	if id, ok := appctx.GetString(ctx, appctx.ContextKeyCorrelationId); ok {
		fields["correlationId"] = id
	}
	logg.WithFields(fields).Error(err.Error())
}

func errorFields(moduleName string, funcName string, context string, data any) logrus.Fields {
	fields := logrus.Fields{
		"module":   moduleName,
		"funcName": funcName,
		"context":  context,
	}
	if data != nil {
		fields["data"] = data
	}
	return fields
}
