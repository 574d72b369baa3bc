package skygroup

import (
	"slices"

	"github.com/rs/zerolog"
	"gonum.org/v1/gonum/stat"
)

// Ungrouped is the group ID of points that belong to no group.
const Ungrouped = -1

// ConflictPolicy decides what happens when a batch finds a group whose
// already-grouped members carry more than one global group ID.
type ConflictPolicy string

const (
	// ConflictWarn logs a warning and folds the new members into the group
	// of the first already-grouped member. The other IDs are left as they
	// are, so the physical group stays split.
	ConflictWarn ConflictPolicy = "warn"

	// ConflictUnion relabels every member of all implicated groups to the
	// smallest implicated ID. The other IDs are retired, never reused, so
	// group IDs may have gaps.
	ConflictUnion ConflictPolicy = "union"
)

// groupState is the global group assignment accumulated across batches.
type groupState struct {
	ids       []int
	next      int
	conflicts int
	policy    ConflictPolicy
	log       zerolog.Logger
}

func newGroupState(n int, policy ConflictPolicy, log zerolog.Logger) *groupState {
	ids := make([]int, n)
	for i := range ids {
		ids[i] = Ungrouped
	}
	return &groupState{ids: ids, policy: policy, log: log}
}

// update records the local groups of one batch. indices maps batch-local
// point indices to global ones. Returns the number of new groups created.
func (s *groupState) update(local [][]int, indices []int) int {
	before := s.next

	for _, group := range local {
		var fresh, existing []int
		for _, li := range group {
			gi := indices[li]
			if s.ids[gi] == Ungrouped {
				fresh = append(fresh, gi)
			} else {
				existing = append(existing, gi)
			}
		}

		if len(existing) == 0 {
			s.assign(fresh, s.next)
			s.next++
			continue
		}

		target := s.ids[existing[0]]
		if implicated := s.distinctIDs(existing); len(implicated) > 1 {
			s.conflicts++
			switch s.policy {
			case ConflictUnion:
				target = implicated[0]
				s.relabel(implicated[1:], target)
				s.log.Warn().
					Ints("group_ids", implicated).
					Int("merged_into", target).
					Msg("Grouped objects belong to different groups; merging them")
			default:
				s.log.Warn().
					Ints("group_ids", implicated).
					Msg("Grouped objects seem to belong to different groups; possibly everything is grouped together (sep too big?)")
			}
		}

		s.assign(fresh, target)
	}

	return s.next - before
}

func (s *groupState) assign(members []int, id int) {
	for _, gi := range members {
		s.ids[gi] = id
	}
}

// distinctIDs returns the sorted distinct group IDs of members.
func (s *groupState) distinctIDs(members []int) []int {
	ids := make([]int, 0, len(members))
	for _, gi := range members {
		ids = append(ids, s.ids[gi])
	}
	slices.Sort(ids)
	return slices.Compact(ids)
}

func (s *groupState) relabel(from []int, to int) {
	for i, id := range s.ids {
		if slices.Contains(from, id) {
			s.ids[i] = to
		}
	}
}

// numGroups counts distinct group IDs in use.
func (s *groupState) numGroups() int {
	seen := make(map[int]struct{})
	for _, id := range s.ids {
		if id != Ungrouped {
			seen[id] = struct{}{}
		}
	}
	return len(seen)
}

// collapse moves every grouped point to the mean position of its group.
// Ungrouped points are untouched.
func collapse(x, y []float64, ids []int) {
	members := make(map[int][]int)
	for i, id := range ids {
		if id >= 0 {
			members[id] = append(members[id], i)
		}
	}

	for _, idx := range members {
		gx := make([]float64, len(idx))
		gy := make([]float64, len(idx))
		for k, i := range idx {
			gx[k] = x[i]
			gy[k] = y[i]
		}
		xc := stat.Mean(gx, nil)
		yc := stat.Mean(gy, nil)
		for _, i := range idx {
			x[i] = xc
			y[i] = yc
		}
	}
}
