package leads

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/lead-dashboard/internal/model"
)

// Loader yields raw lead records.
type Loader interface {
	Load(ctx context.Context) ([]Record, error)
}

// Snapshot is a read-only view of the lead collection, built once before
// serving starts. It is safe for concurrent use.
type Snapshot struct {
	leads    []model.Lead
	index    map[int]int
	loadedAt time.Time
}

// NewSnapshot builds a snapshot over a private copy of leads.
func NewSnapshot(leads []model.Lead) *Snapshot {
	s := &Snapshot{
		leads:    make([]model.Lead, len(leads)),
		index:    make(map[int]int, len(leads)),
		loadedAt: time.Now().UTC(),
	}
	copy(s.leads, leads)
	for i, l := range s.leads {
		s.index[l.ID] = i
	}
	return s
}

// Load reads records from src and normalizes them into a snapshot.
func Load(ctx context.Context, src Loader) (*Snapshot, error) {
	records, err := src.Load(ctx)
	if err != nil {
		return nil, eris.Wrap(err, "leads: load records")
	}
	snap := NewSnapshot(Normalize(records))
	zap.L().Info("lead snapshot loaded", zap.Int("leads", snap.Len()))
	return snap, nil
}

// All returns every lead in load order. The slice is a fresh copy.
func (s *Snapshot) All() []model.Lead {
	out := make([]model.Lead, len(s.leads))
	copy(out, s.leads)
	return out
}

// Get returns the lead with the given id.
func (s *Snapshot) Get(id int) (model.Lead, bool) {
	i, ok := s.index[id]
	if !ok {
		return model.Lead{}, false
	}
	return s.leads[i], true
}

// Subset returns the leads whose ids appear in ids, in load order.
func (s *Snapshot) Subset(ids []int) []model.Lead {
	want := make(map[int]struct{}, len(ids))
	for _, id := range ids {
		want[id] = struct{}{}
	}
	out := make([]model.Lead, 0, len(want))
	for _, l := range s.leads {
		if _, ok := want[l.ID]; ok {
			out = append(out, l)
		}
	}
	return out
}

// Len returns the number of leads.
func (s *Snapshot) Len() int { return len(s.leads) }

// LoadedAt returns when the snapshot was built.
func (s *Snapshot) LoadedAt() time.Time { return s.loadedAt }
