package cron

import (
	"context"
	"log"
	"time"

	"superbryn/config"
	"superbryn/services/scheduling"

	"github.com/go-redis/redis/v8"
	"github.com/hibiken/asynq"
)

const TypeAppointmentSweep = "appointments:sweep"

// InitSweepWorker runs the async worker and scheduler for the periodic
// completion sweep in the background.
func InitSweepWorker(ledger scheduling.Ledger) {
	redisOpts := asynq.RedisClientOpt{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisSweepJobDB,
	}

	srv := asynq.NewServer(
		redisOpts,
		asynq.Config{
			Concurrency: 2,
			Queues: map[string]int{
				"default": 1,
			},
		},
	)

	mux := asynq.NewServeMux()
	mux.HandleFunc(TypeAppointmentSweep, handleSweepTask(ledger))

	// Start Redis health monitor
	go monitorRedisConnection()

	// Start async worker with retry logic
	go func() {
		log.Println("[SweepWorker] 🚀 Starting async worker...")
		const maxAttempts = 5

		for attempts := 1; attempts <= maxAttempts; attempts++ {
			if err := srv.Run(mux); err != nil {
				log.Printf("[SweepWorker] ❌ Attempt %d/%d failed to start worker: %v", attempts, maxAttempts, err)

				if attempts == maxAttempts {
					log.Fatal("[SweepWorker] ❗ Max retry attempts reached. Exiting.")
				}
				time.Sleep(time.Duration(attempts*2) * time.Second) // Exponential backoff
			} else {
				break
			}
		}
	}()

	// Enqueue the sweep on a fixed cadence. The sweep is idempotent, so a
	// doubled or missed tick is harmless.
	go func() {
		interval := time.Duration(config.AppConfig.SweepIntervalMin) * time.Minute
		if interval <= 0 {
			interval = 10 * time.Minute
		}
		scheduler := asynq.NewScheduler(redisOpts, &asynq.SchedulerOpts{})
		entry := "@every " + interval.String()
		if _, err := scheduler.Register(entry, asynq.NewTask(TypeAppointmentSweep, nil)); err != nil {
			log.Printf("[SweepWorker] ❌ Failed to register sweep schedule: %v", err)
			return
		}
		if err := scheduler.Run(); err != nil {
			log.Printf("[SweepWorker] ❌ Scheduler stopped: %v", err)
		}
	}()
}

func handleSweepTask(ledger scheduling.Ledger) asynq.HandlerFunc {
	return func(ctx context.Context, task *asynq.Task) error {
		n, err := ledger.SweepCompleted(ctx, time.Now().UTC())
		if err != nil {
			log.Printf("[SweepHandler] ❌ Sweep failed: %v", err)
			return err
		}
		if n > 0 {
			log.Printf("[SweepHandler] ✅ Marked %d appointments completed", n)
		}
		return nil
	}
}

// monitorRedisConnection pings Redis periodically to detect failures at runtime.
func monitorRedisConnection() {
	client := redis.NewClient(&redis.Options{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisSweepJobDB,
	})

	ctx := context.Background()

	for {
		if err := client.Ping(ctx).Err(); err != nil {
			log.Printf("[SweepWorker] ⚠️ Redis connection lost: %v", err)
		}
		time.Sleep(10 * time.Second)
	}
}
