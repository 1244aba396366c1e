package main

import (
	"github.com/DataDog/datadog-go/statsd"
	"github.com/hibiken/asynq"
	"github.com/sirupsen/logrus"

	"github.com/quorumvault/custodian/config"
	"github.com/quorumvault/custodian/internal/events"
	"github.com/quorumvault/custodian/internal/tasks"
	"github.com/quorumvault/custodian/service"
	"github.com/quorumvault/custodian/storage"
	"github.com/quorumvault/custodian/storage/postgres"
)

func main() {
	logger := logrus.WithField("service", "worker").Logger

	cfg, err := config.ReadConfig("config")
	if err != nil {
		logger.Fatal(err)
	}

	sdClient, err := statsd.New("127.0.0.1:8125")
	if err != nil {
		logger.Fatal(err)
	}

	db, err := postgres.NewPostgresBackend(cfg.Database.DSN)
	if err != nil {
		logger.Fatalf("fail to connect to database, err: %v", err)
	}
	defer db.Close()

	var publisher events.Publisher = events.Discard{}
	if cfg.Kafka.Broker != "" {
		kafkaPublisher := events.NewKafkaPublisher(cfg.Kafka.Broker, cfg.Kafka.Topic)
		defer func() {
			if err := kafkaPublisher.Close(); err != nil {
				logger.Errorf("fail to close kafka writer, err: %v", err)
			}
		}()
		publisher = kafkaPublisher
	}

	var archive *storage.ArchiveStorage
	if cfg.BlockStorage.Bucket != "" {
		archive, err = storage.NewArchiveStorage(cfg)
		if err != nil {
			logger.Fatalf("fail to initialize archive storage, err: %v", err)
		}
	}

	worker, err := service.NewWorker(cfg, db, publisher, archive, sdClient)
	if err != nil {
		logger.Fatalf("fail to initialize worker service, err: %v", err)
	}

	redisAddr := cfg.Redis.Host + ":" + cfg.Redis.Port
	srv := asynq.NewServer(
		asynq.RedisClientOpt{
			Addr:     redisAddr,
			Username: cfg.Redis.User,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		},
		asynq.Config{
			Concurrency: 10,
			Queues: map[string]int{
				tasks.QUEUE_NAME: 10,
			},
		},
	)

	logger.WithFields(logrus.Fields{
		"redis": redisAddr,
	}).Info("Starting worker")

	mux := asynq.NewServeMux()
	mux.HandleFunc(tasks.TypeAuditRecord, worker.HandleAuditRecord)
	mux.HandleFunc(tasks.TypeStatementArchive, worker.HandleStatementArchive)

	if err := srv.Run(mux); err != nil {
		logger.Fatalf("could not run worker: %v", err)
	}
}
