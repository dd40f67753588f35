package services

import (
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/caps-platform/scheduling-backend/internal/database"
)

// Audit actions recorded for scheduling state transitions.
const (
	AuditSlotOpened       = "slot_opened"
	AuditSlotBooked       = "slot_booked"
	AuditSlotCancelled    = "slot_cancelled"
	AuditSlotCompleted    = "slot_completed"
	AuditSlotAssigned     = "slot_assigned"
	AuditRequestCreated   = "request_created"
	AuditRequestWaitlist  = "request_waitlisted"
	AuditRequestRejected  = "request_rejected"
	AuditSweepRun         = "sweep_run"
	AuditSubmissionExpand = "submission_expanded"
	AuditCancellation     = "cancellation_processed"
)

// AuditEntry is one row of the append-only scheduling audit log.
type AuditEntry struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	Action    string    `json:"action"`
	SlotID    string    `json:"slot_id,omitempty"`
	RequestID string    `json:"request_id,omitempty"`
	ActorID   string    `json:"actor_id,omitempty"`
	ActorRole string    `json:"actor_role,omitempty"`
	Detail    string    `json:"detail,omitempty"`
}

// RecordAudit appends a scheduling event to PostgreSQL. Best-effort: failures
// are logged and swallowed so auditing never fails the request it decorates.
func RecordAudit(action, slotID, requestID, actorID, actorRole, detail string) {
	if database.PostgresDB == nil {
		return
	}
	_, err := database.PostgresDB.Exec(`
		INSERT INTO scheduling_audit (id, created_at, action, slot_id, request_id, actor_id, actor_role, detail)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, uuid.New(), time.Now(), action, nullable(slotID), nullable(requestID), nullable(actorID), nullable(actorRole), nullable(detail))
	if err != nil {
		log.Printf("audit write failed (%s): %v", action, err)
	}
}

// ListAudit returns the most recent audit rows, newest first.
func ListAudit(limit int) ([]AuditEntry, error) {
	if database.PostgresDB == nil {
		return []AuditEntry{}, nil
	}
	if limit <= 0 || limit > 500 {
		limit = 100
	}

	rows, err := database.PostgresDB.Query(`
		SELECT id, created_at, action,
			COALESCE(slot_id, ''), COALESCE(request_id, ''),
			COALESCE(actor_id, ''), COALESCE(actor_role, ''), COALESCE(detail, '')
		FROM scheduling_audit
		ORDER BY created_at DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := []AuditEntry{}
	for rows.Next() {
		var e AuditEntry
		if err := rows.Scan(&e.ID, &e.CreatedAt, &e.Action, &e.SlotID, &e.RequestID, &e.ActorID, &e.ActorRole, &e.Detail); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func nullable(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
