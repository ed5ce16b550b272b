// internal/domain/models/audit.go
package models

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Audit actions recorded in the ledger.
const (
	AuditEmergencyOverride   = "emergency_override"
	AuditStrategicOverride   = "strategic_override"
	AuditConsensusEscalation = "consensus_escalation"
	AuditQuorumTimeout       = "quorum_timeout"
	AuditAutoEscalation      = "auto_escalation"
	AuditStatusTransition    = "status_transition"
)

// AuditEntry is one append-only record of an override or escalation
// decision. Entries are keyed by (selection_id, seq) and carry a checksum
// over their own content for tamper-evidence; an entry whose stored
// checksum no longer matches its recomputed one has been altered.
type AuditEntry struct {
	ID          primitive.ObjectID `bson:"_id" json:"id"`
	SelectionID primitive.ObjectID `bson:"selection_id" json:"selection_id"`
	Seq         int64              `bson:"seq" json:"seq"`

	Action  string             `bson:"action" json:"action"`
	ActorID primitive.ObjectID `bson:"actor_id" json:"actor_id"`
	Tier    SelectionTier      `bson:"tier" json:"tier"`

	// Which normal approval steps the action bypassed, and why.
	BypassedSteps []string `bson:"bypassed_steps,omitempty" json:"bypassed_steps,omitempty"`
	Justification string   `bson:"justification,omitempty" json:"justification,omitempty"`

	// ReportDue is the mandatory reporting deadline for emergency
	// overrides. Strategic overrides report on a board cadence instead
	// and leave this nil.
	ReportDue *time.Time `bson:"report_due,omitempty" json:"report_due,omitempty"`

	Details map[string]string `bson:"details,omitempty" json:"details,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	Checksum  string    `bson:"checksum" json:"checksum"`
}

// ComputeChecksum hashes the entry's content (everything except the stored
// checksum itself) into a hex digest. The same content always yields the
// same digest, so Verify can recompute and compare. Timestamps are hashed
// at millisecond precision, the resolution BSON datetimes survive storage
// with, so an entry read back from the store hashes identically.
func (e AuditEntry) ComputeChecksum() string {
	var b strings.Builder
	b.WriteString(e.SelectionID.Hex())
	b.WriteString("|")
	fmt.Fprintf(&b, "%d", e.Seq)
	b.WriteString("|")
	b.WriteString(e.Action)
	b.WriteString("|")
	b.WriteString(e.ActorID.Hex())
	b.WriteString("|")
	b.WriteString(string(e.Tier))
	b.WriteString("|")
	b.WriteString(strings.Join(e.BypassedSteps, ","))
	b.WriteString("|")
	b.WriteString(e.Justification)
	b.WriteString("|")
	if e.ReportDue != nil {
		b.WriteString(e.ReportDue.UTC().Truncate(time.Millisecond).Format(time.RFC3339Nano))
	}
	b.WriteString("|")

	keys := make([]string, 0, len(e.Details))
	for k := range e.Details {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		b.WriteString(k)
		b.WriteString("=")
		b.WriteString(e.Details[k])
		b.WriteString(";")
	}
	b.WriteString("|")
	b.WriteString(e.CreatedAt.UTC().Truncate(time.Millisecond).Format(time.RFC3339Nano))

	sum := sha256.Sum256([]byte(b.String()))
	return hex.EncodeToString(sum[:])
}

// ChecksumValid reports whether the stored checksum matches the entry's
// content.
func (e AuditEntry) ChecksumValid() bool {
	return e.Checksum != "" && e.Checksum == e.ComputeChecksum()
}
