package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/DataDog/datadog-go/statsd"
	gcommon "github.com/ethereum/go-ethereum/common"
	"github.com/hibiken/asynq"
	"github.com/sirupsen/logrus"

	"github.com/quorumvault/custodian/config"
	"github.com/quorumvault/custodian/contexthelper"
	"github.com/quorumvault/custodian/internal/events"
	"github.com/quorumvault/custodian/internal/tasks"
	"github.com/quorumvault/custodian/internal/types"
	"github.com/quorumvault/custodian/storage"
)

// statementPageSize bounds one archival read from the audit table.
const statementPageSize = 500

// WorkerService consumes audit tasks: it persists events, republishes them
// to the event stream, and archives wallet statements.
type WorkerService struct {
	cfg       config.Config
	db        storage.DatabaseStorage
	publisher events.Publisher
	archive   *storage.ArchiveStorage
	sdClient  *statsd.Client
	logger    *logrus.Logger
}

// NewWorker creates a new worker service.
func NewWorker(cfg config.Config, db storage.DatabaseStorage, publisher events.Publisher, archive *storage.ArchiveStorage, sdClient *statsd.Client) (*WorkerService, error) {
	if db == nil {
		return nil, fmt.Errorf("database storage cannot be nil")
	}
	return &WorkerService{
		cfg:       cfg,
		db:        db,
		publisher: publisher,
		archive:   archive,
		sdClient:  sdClient,
		logger:    logrus.WithField("service", "worker").Logger,
	}, nil
}

func (s *WorkerService) incCounter(name string, tags []string) {
	if s.sdClient == nil {
		return
	}
	if err := s.sdClient.Count(name, 1, tags, 1); err != nil {
		s.logger.Errorf("fail to count metric, err: %v", err)
	}
}

func (s *WorkerService) measureTime(name string, start time.Time, tags []string) {
	if s.sdClient == nil {
		return
	}
	if err := s.sdClient.Timing(name, time.Since(start), tags, 1); err != nil {
		s.logger.Errorf("fail to measure time metric, err: %v", err)
	}
}

// HandleAuditRecord persists one audit event and republishes it downstream.
func (s *WorkerService) HandleAuditRecord(ctx context.Context, t *asynq.Task) error {
	if err := contexthelper.CheckCancellation(ctx); err != nil {
		return err
	}
	defer s.measureTime("worker.audit.record.latency", time.Now(), []string{})

	var event types.Event
	if err := json.Unmarshal(t.Payload(), &event); err != nil {
		return fmt.Errorf("json.Unmarshal failed: %v: %w", err, asynq.SkipRetry)
	}

	s.logger.WithFields(logrus.Fields{
		"kind":   event.Kind,
		"wallet": event.Wallet.Hex(),
		"actor":  event.Actor.Hex(),
	}).Info("Recording audit event")

	if err := s.db.InsertEvent(ctx, event); err != nil {
		return fmt.Errorf("fail to persist audit event, err: %w", err)
	}
	if s.publisher != nil {
		if err := s.publisher.Publish(ctx, event); err != nil {
			// persisted already; the stream is best-effort
			s.logger.Errorf("fail to publish audit event, err: %v", err)
		}
	}
	s.incCounter("worker.audit.record", []string{"kind:" + string(event.Kind)})
	return nil
}

// HandleStatementArchive compresses a wallet's audit history into an S3
// statement object.
func (s *WorkerService) HandleStatementArchive(ctx context.Context, t *asynq.Task) error {
	if err := contexthelper.CheckCancellation(ctx); err != nil {
		return err
	}
	defer s.measureTime("worker.statement.archive.latency", time.Now(), []string{})

	var p tasks.StatementArchivePayload
	if err := json.Unmarshal(t.Payload(), &p); err != nil {
		return fmt.Errorf("json.Unmarshal failed: %v: %w", err, asynq.SkipRetry)
	}
	if s.archive == nil {
		s.logger.Warn("statement archive storage not configured, skipping")
		return nil
	}

	wallet := gcommon.HexToAddress(p.WalletAddress)
	var history []types.Event
	for offset := 0; ; offset += statementPageSize {
		page, err := s.db.GetEventsByWallet(ctx, wallet, offset, statementPageSize)
		if err != nil {
			return fmt.Errorf("fail to read audit history, err: %w", err)
		}
		history = append(history, page...)
		if len(page) < statementPageSize {
			break
		}
	}

	content, err := json.Marshal(history)
	if err != nil {
		return fmt.Errorf("json.Marshal failed: %v: %w", err, asynq.SkipRetry)
	}
	name := fmt.Sprintf("%s-%s.statement.json.xz", wallet.Hex(), time.Now().UTC().Format("20060102"))
	if err := s.archive.UploadStatement(ctx, content, name); err != nil {
		return fmt.Errorf("fail to upload statement, err: %w", err)
	}

	s.logger.WithFields(logrus.Fields{
		"wallet": wallet.Hex(),
		"events": len(history),
		"object": name,
	}).Info("Statement archived")
	s.incCounter("worker.statement.archive", []string{})
	return nil
}
