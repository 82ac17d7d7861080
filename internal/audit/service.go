// AngelaMos | 2026
// service.go

package audit

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/carterperez-dev/templates/slip-market/internal/core"
	"github.com/carterperez-dev/templates/slip-market/internal/storage"
)

const (
	logsKey          = "audit_logs"
	DefaultRetention = 5000
)

// Recorder appends audit events. Services that change privileged state
// take one.
type Recorder interface {
	Record(ctx context.Context, ev Event) (*Entry, error)
}

type Service struct {
	logs      *storage.Collection[Entry]
	retention int
	now       func() time.Time
}

func NewService(store storage.Store, retention int) *Service {
	if retention < 1 {
		retention = DefaultRetention
	}
	return &Service{
		logs:      storage.NewCollection[Entry](store, logsKey),
		retention: retention,
		now:       time.Now,
	}
}

// Record appends ev on behalf of the caller on ctx, linking it to the
// previous entry. Only the newest retention entries are kept.
func (s *Service) Record(ctx context.Context, ev Event) (*Entry, error) {
	if ev.Action == "" || !ev.TargetType.Valid() {
		return nil, fmt.Errorf("record audit: %w", core.ErrInvalidInput)
	}

	actor := ActorFrom(ctx)
	entry := Entry{
		ID:         "audit_" + uuid.New().String(),
		AdminID:    actor.ID,
		AdminEmail: actor.Email,
		AdminRole:  actor.Role,
		Action:     ev.Action,
		TargetID:   ev.TargetID,
		TargetType: ev.TargetType,
		Details:    ev.Details,
		Timestamp:  s.now().UTC(),
	}

	err := s.logs.Mutate(ctx, func(entries []Entry) ([]Entry, error) {
		entry.PrevHash = ""
		if n := len(entries); n > 0 {
			entry.PrevHash = entries[n-1].Hash
		}
		entry.Hash = entry.digest()

		entries = append(entries, entry)
		if over := len(entries) - s.retention; over > 0 {
			entries = slices.Delete(entries, 0, over)
		}
		return entries, nil
	})
	if err != nil {
		return nil, fmt.Errorf("record audit: %w", err)
	}
	return &entry, nil
}

// List returns entries matching f, newest first, with the total match count.
func (s *Service) List(ctx context.Context, f Filter) ([]Entry, int, error) {
	entries, err := s.logs.All(ctx)
	if err != nil {
		return nil, 0, err
	}

	entries = slices.DeleteFunc(entries, func(e Entry) bool {
		return !f.matches(e)
	})
	slices.Reverse(entries)

	total := len(entries)
	start, end := f.Page.Bounds(total)
	return entries[start:end], total, nil
}

func (s *Service) Get(ctx context.Context, id string) (*Entry, error) {
	entries, err := s.logs.All(ctx)
	if err != nil {
		return nil, err
	}

	i := slices.IndexFunc(entries, func(e Entry) bool { return e.ID == id })
	if i < 0 {
		return nil, fmt.Errorf("get audit entry: %w", core.ErrNotFound)
	}
	return &entries[i], nil
}

// Stats summarizes the log with its ten newest entries.
func (s *Service) Stats(ctx context.Context) (*Stats, error) {
	entries, err := s.logs.All(ctx)
	if err != nil {
		return nil, err
	}

	stats := &Stats{
		Total:    len(entries),
		ByAction: make(map[Action]int),
		Recent:   slices.Clone(entries[max(0, len(entries)-10):]),
	}
	for _, e := range entries {
		stats.ByAction[e.Action]++
	}
	slices.Reverse(stats.Recent)
	return stats, nil
}

// VerifyChain recomputes every hash and link. The oldest retained entry
// anchors the chain, since trimming drops its predecessor.
func (s *Service) VerifyChain(ctx context.Context) (*ChainReport, error) {
	entries, err := s.logs.All(ctx)
	if err != nil {
		return nil, err
	}

	report := &ChainReport{Entries: len(entries), Valid: true}
	for i := range entries {
		e := &entries[i]
		linked := i == 0 || e.PrevHash == entries[i-1].Hash
		if !linked || e.digest() != e.Hash {
			report.Valid = false
			report.BrokenAt = e.ID
			return report, nil
		}
		report.Head = e.Hash
	}
	return report, nil
}
