// Package reservation implements the space-time reservation table: a
// mapping of (cell, discrete time) to the robot that owns it. The table
// itself performs no locking; callers (the fleet store) serialize access
// through a single coarse mutex.
package reservation

import "fleetplanner/roadnet"

// RobotID identifies the owner of a reservation.
type RobotID string

// Key is a single (cell, time) reservation slot. Discrete time is an
// integer count of seconds since epoch.
type Key struct {
	Cell roadnet.Cell
	Time int64
}

// Table is a plain map of reservation ownership. The zero value is ready to
// use.
type Table struct {
	owners map[Key]RobotID
}

// NewTable returns an empty reservation table.
func NewTable() *Table {
	return &Table{owners: make(map[Key]RobotID)}
}

func (t *Table) ensure() {
	if t.owners == nil {
		t.owners = make(map[Key]RobotID)
	}
}

// CanReserve reports whether every (cells[i], t0+i) slot is either free or
// already owned by rid, i.e. whether reserving the whole trajectory would
// not conflict with another robot.
func (t *Table) CanReserve(cells []roadnet.Cell, t0 int64, rid RobotID) bool {
	t.ensure()
	for i, c := range cells {
		key := Key{Cell: c, Time: t0 + int64(i)}
		if owner, ok := t.owners[key]; ok && owner != rid {
			return false
		}
	}
	return true
}

// Reserve unconditionally writes (cells[i], t0+i) -> rid for every i.
// Callers must have already confirmed CanReserve; duplicate writes by the
// same owner are idempotent.
func (t *Table) Reserve(cells []roadnet.Cell, t0 int64, rid RobotID) {
	t.ensure()
	for i, c := range cells {
		t.owners[Key{Cell: c, Time: t0 + int64(i)}] = rid
	}
}

// Owner returns the robot owning (cell, at), if any.
func (t *Table) Owner(cell roadnet.Cell, at int64) (RobotID, bool) {
	t.ensure()
	rid, ok := t.owners[Key{Cell: cell, Time: at}]
	return rid, ok
}

// ReleaseOwner removes every reservation held by rid.
func (t *Table) ReleaseOwner(rid RobotID) {
	t.ensure()
	for k, owner := range t.owners {
		if owner == rid {
			delete(t.owners, k)
		}
	}
}

// ReleaseBeforeTime removes every reservation whose time is strictly before
// cutoff — garbage collection of the past, run once per allocator tick.
func (t *Table) ReleaseBeforeTime(cutoff int64) {
	t.ensure()
	for k := range t.owners {
		if k.Time < cutoff {
			delete(t.owners, k)
		}
	}
}

// SwapOwner reassigns every reservation held by oldRid to newRid. Unused by
// the current allocator; kept for forward compatibility with a future robot
// hand-off feature.
func (t *Table) SwapOwner(oldRid, newRid RobotID) {
	t.ensure()
	for k, owner := range t.owners {
		if owner == oldRid {
			t.owners[k] = newRid
		}
	}
}

// Len returns the number of live reservation entries, for metrics/tests.
func (t *Table) Len() int {
	return len(t.owners)
}
