// internal/testutil/doubles.go
package testutil

import (
	"context"
	"strings"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/dalemusser/selecthub/internal/app/selection"
	"github.com/dalemusser/selecthub/internal/domain/models"
)

// MemoryDirectory is an in-memory selection.Directory over a fixed pool.
type MemoryDirectory struct {
	Profiles []models.CandidateProfile
}

func (d *MemoryDirectory) Query(ctx context.Context, filter selection.ScopeFilter) ([]models.CandidateProfile, error) {
	var out []models.CandidateProfile
	for _, p := range d.Profiles {
		if filter.Department != "" && p.Department != filter.Department {
			continue
		}
		if filter.Facility != "" && p.Facility != filter.Facility {
			continue
		}
		if filter.OnlyAvailable && !p.IsAvailable() {
			continue
		}
		if len(filter.Skills) > 0 {
			any := false
			for _, s := range filter.Skills {
				if p.HasSkill(s) {
					any = true
					break
				}
			}
			if !any {
				continue
			}
		}
		out = append(out, p)
	}
	return out, nil
}

func (d *MemoryDirectory) GetByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.CandidateProfile, error) {
	want := make(map[primitive.ObjectID]bool, len(ids))
	for _, id := range ids {
		want[id] = true
	}
	var out []models.CandidateProfile
	for _, p := range d.Profiles {
		if want[p.UserID] {
			out = append(out, p)
		}
	}
	return out, nil
}

// StaticAuthority is an in-memory selection.Authority with fixed tiers.
type StaticAuthority struct {
	Tiers          map[primitive.ObjectID]models.AuthorityLevel
	EmergencyTypes map[primitive.ObjectID][]string
}

func (a *StaticAuthority) TierOf(ctx context.Context, actorID primitive.ObjectID) (models.AuthorityLevel, error) {
	return a.Tiers[actorID], nil
}

func (a *StaticAuthority) AuthorizedEmergencyTypes(ctx context.Context, actorID primitive.ObjectID) ([]string, error) {
	return a.EmergencyTypes[actorID], nil
}

// MemoryRepo is an in-memory selection.Repository with the same
// optimistic-concurrency behavior as the Mongo store.
type MemoryRepo struct {
	mu   sync.Mutex
	sels map[primitive.ObjectID]*models.MemberSelection

	// ConflictNextSaves makes the next n Save calls fail with
	// ErrVersionConflict before applying, to exercise retry loops.
	ConflictNextSaves int
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{sels: make(map[primitive.ObjectID]*models.MemberSelection)}
}

func cloneSelection(sel *models.MemberSelection) *models.MemberSelection {
	raw, err := bson.Marshal(sel)
	if err != nil {
		panic(err)
	}
	var out models.MemberSelection
	if err := bson.Unmarshal(raw, &out); err != nil {
		panic(err)
	}
	return &out
}

func (r *MemoryRepo) Create(ctx context.Context, sel *models.MemberSelection) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if sel.ID.IsZero() {
		sel.ID = primitive.NewObjectID()
	}
	now := time.Now().UTC()
	if sel.CreatedAt.IsZero() {
		sel.CreatedAt = now
	}
	sel.UpdatedAt = now
	sel.Version = 1
	r.sels[sel.ID] = cloneSelection(sel)
	return nil
}

func (r *MemoryRepo) Get(ctx context.Context, id primitive.ObjectID) (*models.MemberSelection, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	sel, ok := r.sels[id]
	if !ok {
		return nil, selection.ErrSelectionNotFound
	}
	return cloneSelection(sel), nil
}

func (r *MemoryRepo) Save(ctx context.Context, sel *models.MemberSelection) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.ConflictNextSaves > 0 {
		r.ConflictNextSaves--
		return selection.ErrVersionConflict
	}

	stored, ok := r.sels[sel.ID]
	if !ok {
		return selection.ErrSelectionNotFound
	}
	if stored.Version != sel.Version {
		return selection.ErrVersionConflict
	}
	sel.Version++
	sel.UpdatedAt = time.Now().UTC()
	r.sels[sel.ID] = cloneSelection(sel)
	return nil
}

func (r *MemoryRepo) ListByProject(ctx context.Context, projectID primitive.ObjectID, limit int64) ([]models.MemberSelection, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []models.MemberSelection
	for _, sel := range r.sels {
		if sel.ProjectID == projectID {
			out = append(out, *cloneSelection(sel))
		}
	}
	return out, nil
}

func (r *MemoryRepo) ListByStatus(ctx context.Context, status string, limit int64) ([]models.MemberSelection, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []models.MemberSelection
	for _, sel := range r.sels {
		if sel.Status == status {
			out = append(out, *cloneSelection(sel))
		}
	}
	return out, nil
}

// MemoryLedger is an in-memory selection.Ledger. Appends assign sequence
// numbers and checksums the way the Mongo store does.
type MemoryLedger struct {
	mu      sync.Mutex
	Entries []models.AuditEntry

	// FailAppends makes the next n Append calls fail.
	FailAppends int
}

func (l *MemoryLedger) Append(ctx context.Context, entry *models.AuditEntry) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.FailAppends > 0 {
		l.FailAppends--
		return context.DeadlineExceeded
	}

	var seq int64 = 1
	for _, e := range l.Entries {
		if e.SelectionID == entry.SelectionID && e.Seq >= seq {
			seq = e.Seq + 1
		}
	}

	e := *entry
	if e.ID.IsZero() {
		e.ID = primitive.NewObjectID()
	}
	e.Seq = seq
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC().Truncate(time.Millisecond)
	}
	e.Checksum = e.ComputeChecksum()

	l.Entries = append(l.Entries, e)
	*entry = e
	return nil
}

func (l *MemoryLedger) BySelection(ctx context.Context, selectionID primitive.ObjectID) ([]models.AuditEntry, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	var out []models.AuditEntry
	for _, e := range l.Entries {
		if e.SelectionID == selectionID {
			out = append(out, e)
		}
	}
	return out, nil
}

// ByAction returns the recorded entries with the given action.
func (l *MemoryLedger) ByAction(action string) []models.AuditEntry {
	l.mu.Lock()
	defer l.mu.Unlock()

	var out []models.AuditEntry
	for _, e := range l.Entries {
		if e.Action == action {
			out = append(out, e)
		}
	}
	return out
}

// RecordingNotifier is an in-memory selection.Notifier that records every
// payload it is asked to deliver.
type RecordingNotifier struct {
	mu    sync.Mutex
	Sent  []selection.Payload
	Recip [][]primitive.ObjectID
}

func (n *RecordingNotifier) Notify(ctx context.Context, recipients []primitive.ObjectID, payload selection.Payload) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.Sent = append(n.Sent, payload)
	n.Recip = append(n.Recip, recipients)
}

// Kinds returns the payload kinds in delivery order.
func (n *RecordingNotifier) Kinds() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	kinds := make([]string, 0, len(n.Sent))
	for _, p := range n.Sent {
		kinds = append(kinds, p.Kind)
	}
	return kinds
}

// FakeScheduler is an in-memory selection.Scheduler. Nothing fires on its
// own; tests call Fire to run a pending job.
type FakeScheduler struct {
	mu   sync.Mutex
	jobs map[string]fakeJob
}

type fakeJob struct {
	at time.Time
	fn func(context.Context)
}

func NewFakeScheduler() *FakeScheduler {
	return &FakeScheduler{jobs: make(map[string]fakeJob)}
}

func (s *FakeScheduler) Schedule(tag string, at time.Time, fn func(context.Context)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs[tag] = fakeJob{at: at, fn: fn}
	return nil
}

func (s *FakeScheduler) Cancel(tag string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.jobs[tag]; !ok {
		return false
	}
	delete(s.jobs, tag)
	return true
}

// Pending reports whether a job with the tag is scheduled.
func (s *FakeScheduler) Pending(tag string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.jobs[tag]
	return ok
}

// PendingWithPrefix reports whether any scheduled tag starts with prefix.
func (s *FakeScheduler) PendingWithPrefix(prefix string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for tag := range s.jobs {
		if strings.HasPrefix(tag, prefix) {
			return true
		}
	}
	return false
}

// At returns the scheduled time for the tag.
func (s *FakeScheduler) At(tag string) (time.Time, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	j, ok := s.jobs[tag]
	return j.at, ok
}

// Fire runs and removes the job with the tag, returning false if none is
// scheduled.
func (s *FakeScheduler) Fire(ctx context.Context, tag string) bool {
	s.mu.Lock()
	j, ok := s.jobs[tag]
	if ok {
		delete(s.jobs, tag)
	}
	s.mu.Unlock()
	if !ok {
		return false
	}
	j.fn(ctx)
	return true
}
