package models

import (
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func sampleEntry() AuditEntry {
	due := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
	return AuditEntry{
		ID:            primitive.NewObjectID(),
		SelectionID:   primitive.NewObjectID(),
		Seq:           1,
		Action:        AuditEmergencyOverride,
		ActorID:       primitive.NewObjectID(),
		Tier:          TierEmergency,
		BypassedSteps: []string{StatusPendingApproval, StatusApproved},
		Justification: "ward flooding, staffing the response team immediately",
		ReportDue:     &due,
		Details: map[string]string{
			"emergency_type": EmergencyNaturalDisaster,
			"urgency_level":  UrgencyCritical,
		},
		CreatedAt: time.Date(2026, 3, 12, 9, 0, 0, 0, time.UTC),
	}
}

func TestComputeChecksum_Deterministic(t *testing.T) {
	e := sampleEntry()
	first := e.ComputeChecksum()
	if first == "" {
		t.Fatal("expected a non-empty checksum")
	}
	if second := e.ComputeChecksum(); second != first {
		t.Errorf("same content produced different checksums: %s vs %s", first, second)
	}
}

func TestChecksumValid(t *testing.T) {
	e := sampleEntry()
	e.Checksum = e.ComputeChecksum()
	if !e.ChecksumValid() {
		t.Fatal("freshly computed checksum should validate")
	}
}

func TestChecksumValid_EmptyChecksum(t *testing.T) {
	e := sampleEntry()
	if e.ChecksumValid() {
		t.Error("entry without a stored checksum must not validate")
	}
}

func TestChecksumValid_DetectsTamper(t *testing.T) {
	e := sampleEntry()
	e.Checksum = e.ComputeChecksum()

	tampered := e
	tampered.Justification = "routine staffing change"
	if tampered.ChecksumValid() {
		t.Error("altered justification should invalidate the checksum")
	}

	tampered = e
	tampered.Seq = 2
	if tampered.ChecksumValid() {
		t.Error("altered seq should invalidate the checksum")
	}

	tampered = e
	tampered.Details = map[string]string{"emergency_type": EmergencyOutbreak}
	if tampered.ChecksumValid() {
		t.Error("altered details should invalidate the checksum")
	}

	tampered = e
	tampered.ReportDue = nil
	if tampered.ChecksumValid() {
		t.Error("dropped report deadline should invalidate the checksum")
	}
}

func TestChecksumValid_AfterBSONRoundTrip(t *testing.T) {
	// BSON datetimes store milliseconds, so a stamp with sub-millisecond
	// digits must still hash to the same digest after a store round trip.
	e := sampleEntry()
	e.CreatedAt = time.Date(2026, 3, 12, 9, 0, 24, 703242303, time.UTC)
	due := time.Date(2026, 3, 14, 9, 0, 24, 703242303, time.UTC)
	e.ReportDue = &due
	e.Checksum = e.ComputeChecksum()

	raw, err := bson.Marshal(e)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var stored AuditEntry
	if err := bson.Unmarshal(raw, &stored); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	if stored.CreatedAt.Nanosecond()%int(time.Millisecond) != 0 {
		t.Fatalf("expected the round trip to drop sub-millisecond digits, got %v", stored.CreatedAt)
	}
	if !stored.ChecksumValid() {
		t.Errorf("entry loaded from BSON no longer validates: created_at %v", stored.CreatedAt)
	}
}

func TestComputeChecksum_DetailsOrderIndependent(t *testing.T) {
	e := sampleEntry()
	e.Details = map[string]string{"b": "2", "a": "1", "c": "3"}
	want := e.ComputeChecksum()

	// Rebuild the map in a different insertion order; the digest must not
	// depend on map iteration.
	e.Details = map[string]string{"c": "3", "a": "1", "b": "2"}
	if got := e.ComputeChecksum(); got != want {
		t.Errorf("details insertion order changed the checksum: %s vs %s", got, want)
	}
}
