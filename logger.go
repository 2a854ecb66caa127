package main

import (
	"context"
	"log"
	"os"

	"go.elastic.co/apm"
	"go.elastic.co/apm/module/apmzap"
	"go.uber.org/zap"
)

var (
	zapLogger *zap.Logger
	appEnv    string = os.Getenv("APP_ENV")
	appName   string = os.Getenv("APP_NAME")
	apmActive string = os.Getenv("ELASTIC_APM_ACTIVE")
)

func init() {

	// Set logging configuration
	var err error
	zapLogger, err = zap.NewProduction(zap.WrapCore((&apmzap.Core{}).WrapCore))
	if err != nil {
		log.Fatalf("Can't initialize zap logger: %v", err)
	}

	// Flushes buffer if it exists
	defer zapLogger.Sync()
}

// initAPM conditionally enables tracing based on the "ELASTIC_APM_ACTIVE"
// environment variable. Stage transactions and client spans all hang off the
// default tracer; remaining options come from the standard APM env vars.
func initAPM() {
	if apmActive != "true" {
		zapLogger.Info("Disable default APM tracer")
		apm.DefaultTracer.Close()
		return
	}

	zapLogger.Info("APM tracing active",
		zap.String("ServiceName", appName),
		zap.String("ServiceEnvironment", appEnv))
}

func logger(c context.Context, err error) {
	zapLogger.Error(err.Error())
	if apmActive == "true" {
		apm.CaptureError(c, err).Send()
	}
}
