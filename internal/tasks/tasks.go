package tasks

const (
	// TypeAuditRecord persists one audit event to postgres and kafka.
	TypeAuditRecord = "audit:record"
	// TypeStatementArchive compresses and archives a wallet statement.
	TypeStatementArchive = "statement:archive"

	QUEUE_NAME = "custody"
)

// StatementArchivePayload names the wallet whose statement should be
// archived.
type StatementArchivePayload struct {
	WalletAddress string
}
