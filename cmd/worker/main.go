package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	cfg "github.com/digibhoomi/record-translator/config"
	"github.com/digibhoomi/record-translator/internal/service/translation"
	"github.com/digibhoomi/record-translator/pkg/logger"
	"github.com/digibhoomi/record-translator/pkg/metrics"
	"github.com/digibhoomi/record-translator/pkg/worker"
)

func main() {
	log, err := logger.NewLogger(
		logger.WithLevel("info"),
		logger.WithEncoding("json"),
		logger.WithOutputPaths([]string{"stdout", "logs/worker.log"}),
	)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	m := metrics.New()

	svc, err := translation.GetService(log, m)
	if err != nil {
		log.Error("Failed to create translation service", logger.Error(err))
		os.Exit(1)
	}

	redisCfg := cfg.GetRedisConfig()
	workerCfg := &worker.Config{
		RedisAddr:     redisCfg.Addr,
		RedisPassword: redisCfg.Password,
		RedisDB:       redisCfg.DB,
		Concurrency:   10,
		Queues: map[string]int{
			"critical": 6,
			"default":  3,
			"low":      1,
		},
	}

	translationWorker, err := worker.NewTranslationWorker(workerCfg, svc, log)
	if err != nil {
		log.Error("Failed to create translation worker", logger.Error(err))
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := translationWorker.Start(ctx); err != nil {
		log.Error("Failed to start worker", logger.Error(err))
		os.Exit(1)
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	log.Info("Shutting down worker...")
	translationWorker.Stop()
	log.Info("Worker stopped")
}
