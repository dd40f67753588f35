package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Auditing is best-effort on both the write and read side: neither may blow
// up when PostgreSQL was never connected.
func TestAuditWithoutPostgres(t *testing.T) {
	RecordAudit(AuditSlotOpened, "slot1", "", "t1", "therapist", "")

	entries, err := ListAudit(10)
	require.NoError(t, err)
	assert.Empty(t, entries)
	assert.NotNil(t, entries)
}
