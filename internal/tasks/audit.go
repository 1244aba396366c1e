package tasks

import (
	"encoding/json"

	"github.com/hibiken/asynq"

	"github.com/quorumvault/custodian/internal/types"
)

// NewAuditRecord wraps an audit event in a task for the worker.
func NewAuditRecord(event types.Event) (*asynq.Task, error) {
	payload, err := json.Marshal(event)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TypeAuditRecord, payload), nil
}

// NewStatementArchive requests archival of one wallet's statement.
func NewStatementArchive(walletAddress string) (*asynq.Task, error) {
	payload, err := json.Marshal(StatementArchivePayload{WalletAddress: walletAddress})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TypeStatementArchive, payload), nil
}
