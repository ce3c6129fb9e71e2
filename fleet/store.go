package fleet

import (
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"fleetplanner/broadcast"
	"fleetplanner/command"
	"fleetplanner/heading"
	"fleetplanner/metrics"
	"fleetplanner/planner"
	"fleetplanner/reservation"
	"fleetplanner/roadnet"
)

// Store is the single authoritative holder of fleet state. Every exported
// method that reads or changes fleet state holds mu for the whole of that
// work, including the broadcast emission, so observers never see a
// partially-applied mutation. Stats takes no lock; its gauges are lock-free.
type Store struct {
	mu sync.Mutex

	graph *roadnet.Graph
	table *reservation.Table
	pub   broadcast.Publisher

	searchMaxDepth int
	waitPenalty    float64
	stats          *metrics.Stats

	robots     map[RobotID]*Robot
	robotOrder []RobotID
	jobs       map[string]*Job
	queue      []string

	nextInsertion int
	genID         func() string
	now           func() int64
}

// NewStore builds an empty Store over graph, backed by table for space-time
// reservations and pub for change notifications. searchMaxDepth bounds every
// A* search the store performs; zero means planner.DefaultMaxSteps.
// waitPenalty is the extra cost A* assigns to waiting in place; zero means
// planner.DefaultWaitPenalty.
func NewStore(graph *roadnet.Graph, table *reservation.Table, pub broadcast.Publisher, searchMaxDepth int, waitPenalty float64) *Store {
	if pub == nil {
		pub = broadcast.Discard{}
	}
	return &Store{
		graph:          graph,
		table:          table,
		pub:            pub,
		searchMaxDepth: searchMaxDepth,
		waitPenalty:    waitPenalty,
		stats:          &metrics.Stats{},
		robots:         make(map[RobotID]*Robot),
		jobs:           make(map[string]*Job),
		genID:          newShortID,
		now:            func() int64 { return time.Now().Unix() },
	}
}

// Stats returns the store's live operational gauges, updated once per
// allocator tick.
func (s *Store) Stats() *metrics.Stats {
	return s.stats
}

func newShortID() string {
	return uuid.New().String()[:8]
}

// idleRobotBlockers adapts the store's robot table to planner.Blockers: an
// idle robot parked on a cell is a static obstacle for everyone else's
// search.
type idleRobotBlockers struct{ s *Store }

func (b idleRobotBlockers) IdleRobotAt(cell roadnet.Cell, self reservation.RobotID) bool {
	for id, r := range b.s.robots {
		if id == self {
			continue
		}
		if r.Status == Idle && r.CurrentCell == cell {
			return true
		}
	}
	return false
}

// RegisterRobot creates or refreshes a robot record. If id is empty, a
// fresh one is generated. A previously-registered robot keeps its color.
func (s *Store) RegisterRobot(id string, cell roadnet.Cell, h heading.Heading) (RobotID, string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rid := RobotID(id)
	if rid == "" {
		rid = RobotID(s.genID())
	}

	color := randomColor()
	if existing, ok := s.robots[rid]; ok && existing.Color != "" {
		color = existing.Color
	} else {
		s.robotOrder = append(s.robotOrder, rid)
	}

	r := &Robot{
		ID:           rid,
		CurrentCell:  cell,
		Heading:      h,
		Status:       Idle,
		LastSeenUnix: s.now(),
		Color:        color,
		CurrentPath:  nil,
		insertion:    s.nextInsertion,
	}
	s.nextInsertion++
	s.robots[rid] = r

	s.pub.Publish(broadcast.Event{Kind: broadcast.RobotUpdate, Payload: snapshotRobot(r)})
	return rid, color
}

// SubmitJob enqueues a new queued job and returns its id.
func (s *Store) SubmitJob(pickup, drop roadnet.Cell) (string, error) {
	if pickup == "" || drop == "" {
		return "", ErrInvalidRequest
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	jid := s.genID()
	j := &Job{
		ID:            jid,
		Pickup:        pickup,
		Drop:          drop,
		Status:        Queued,
		SubmittedUnix: s.now(),
	}
	s.jobs[jid] = j
	s.queue = append(s.queue, jid)

	s.pub.Publish(broadcast.Event{Kind: broadcast.JobUpdate, Payload: snapshotJob(j)})
	return jid, nil
}

// PollTask refreshes the robot's last-seen time and returns its currently
// assigned job, if any.
func (s *Store) PollTask(rid RobotID) (*Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.robots[rid]
	if !ok {
		return nil, ErrUnknownRobot
	}
	r.LastSeenUnix = s.now()

	if r.AssignedJobID == "" {
		return nil, nil
	}
	j, ok := s.jobs[r.AssignedJobID]
	if !ok {
		return nil, nil
	}
	cp := *j
	return &cp, nil
}

// UpdateLocation applies a robot's self-reported position (and optionally
// heading and plan-step progress), and handles job-completion / auto-park
// when status reports job_done.
func (s *Store) UpdateLocation(rid RobotID, cell roadnet.Cell, h *heading.Heading, stepIndex *int, jobDone bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.robots[rid]
	if !ok {
		return ErrUnknownRobot
	}

	r.CurrentCell = cell
	r.LastSeenUnix = s.now()
	if h != nil {
		r.Heading = *h
	}

	// Shrink the robot's recorded path to start at its reported cell, if
	// present in it — mirrors the source's path-trimming on location report.
	if idx := indexOfCell(r.CurrentPath, cell); idx >= 0 {
		r.CurrentPath = r.CurrentPath[idx:]
	}

	if stepIndex != nil && r.AssignedJobID != "" {
		if j, ok := s.jobs[r.AssignedJobID]; ok {
			si := *stepIndex
			j.ProgressIndex = &si
			j.ProgressTrace = append(j.ProgressTrace, ProgressEntry{
				StepIndex: si,
				Cell:      cell,
				Heading:   r.Heading,
				AtUnix:    s.now(),
			})
			s.pub.Publish(broadcast.Event{Kind: broadcast.JobUpdate, Payload: snapshotJob(j)})
		}
	}

	if jobDone {
		s.completeCurrentJob(r)
		if !s.graph.IsParking(cell) {
			s.autoPark(r)
		}
	}

	s.pub.Publish(broadcast.Event{Kind: broadcast.RobotUpdate, Payload: snapshotRobot(r)})
	return nil
}

// completeCurrentJob marks the robot's assigned job done, clears the
// assignment, and releases the robot's reservations. Safe to call when the
// robot has no assignment.
func (s *Store) completeCurrentJob(r *Robot) {
	if r.AssignedJobID != "" {
		if j, ok := s.jobs[r.AssignedJobID]; ok && j.Status != Done {
			j.Status = Done
			s.pub.Publish(broadcast.Event{Kind: broadcast.JobUpdate, Payload: snapshotJob(j)})
		}
	}
	r.Status = Idle
	r.CurrentPath = nil
	r.AssignedJobID = ""
	s.table.ReleaseOwner(reservation.RobotID(r.ID))
}

// autoPark synthesizes and commits a parking job for an idle robot standing
// on a non-parking cell, choosing the nearest unoccupied parking cell. If no
// path can be found, the synthesized job is marked failed and the robot
// stays idle.
func (s *Store) autoPark(r *Robot) {
	target, ok := s.nearestFreeParking(r.CurrentCell, r.ID)
	if !ok {
		return
	}

	now := s.now()
	path, err := planner.FindPath(planner.Request{
		Graph: s.graph, Table: s.table, Blockers: idleRobotBlockers{s},
		Start: r.CurrentCell, Goal: target, T0: now,
		Robot: reservation.RobotID(r.ID), MaxSteps: s.searchMaxDepth, WaitPenalty: s.waitPenalty,
	})

	jid := s.genID()
	j := &Job{
		ID:              jid,
		Pickup:          r.CurrentCell,
		Drop:            target,
		AssignedRobotID: r.ID,
		SubmittedUnix:   now,
	}
	s.jobs[jid] = j

	if err != nil {
		j.Status = Failed
		s.pub.Publish(broadcast.Event{Kind: broadcast.JobUpdate, Payload: snapshotJob(j)})
		return
	}

	s.table.ReleaseOwner(reservation.RobotID(r.ID))
	s.table.Reserve(path, now, reservation.RobotID(r.ID))

	instrs, _ := command.Translate(s.graph, path, r.Heading)
	j.Status = Assigned
	j.Plan = command.BuildPlan(path, instrs)
	j.FullPath = path

	r.Status = Busy
	r.AssignedJobID = jid
	r.CurrentPath = path

	s.pub.Publish(broadcast.Event{Kind: broadcast.JobUpdate, Payload: snapshotJob(j)})
}

// nearestFreeParking returns the unoccupied parking cell closest to from by
// Manhattan distance, excluding self from occupancy checks.
func (s *Store) nearestFreeParking(from roadnet.Cell, self RobotID) (roadnet.Cell, bool) {
	best := roadnet.Cell("")
	bestDist := -1
	found := false
	for _, p := range sortedCells(s.graph.ParkingCells()) {
		if (idleRobotBlockers{s}).IdleRobotAt(p, reservation.RobotID(self)) {
			continue
		}
		d := s.graph.ManhattanDistance(from, p)
		if !found || d < bestDist {
			best, bestDist, found = p, d, true
		}
	}
	return best, found
}

// ReportExecution records a robot's execution report against a job, marks
// the job done if not already, and clears the robot's assignment. Idempotent
// with a prior job_done update.
func (s *Store) ReportExecution(rid RobotID, jobID string, lastCell *roadnet.Cell, lastHeading *heading.Heading) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.robots[rid]
	if !ok {
		return ErrUnknownRobot
	}

	if lastCell != nil {
		r.CurrentCell = *lastCell
	}
	if lastHeading != nil {
		r.Heading = *lastHeading
	}

	if jobID != "" {
		if j, ok := s.jobs[jobID]; ok {
			j.Reports = append(j.Reports, ExecutionReport{RobotID: rid, AtUnix: s.now()})
			if j.Status != Done {
				j.Status = Done
				s.pub.Publish(broadcast.Event{Kind: broadcast.JobUpdate, Payload: snapshotJob(j)})
			}
		}
	}

	s.completeCurrentJob(r)
	s.pub.Publish(broadcast.Event{Kind: broadcast.RobotUpdate, Payload: snapshotRobot(r)})
	return nil
}

// RequestPath performs an ad-hoc two-leg plan for a robot, immediately
// committing it (bypassing the queue), and returns the resulting job.
func (s *Store) RequestPath(rid RobotID, cell roadnet.Cell, h heading.Heading, pickup, drop roadnet.Cell) (*Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.robots[rid]
	if !ok {
		return nil, ErrUnknownRobot
	}

	r.CurrentCell = cell
	r.Heading = h
	r.LastSeenUnix = s.now()
	now := s.now()

	leg1, leg2, err := s.planTwoLegs(r.ID, cell, pickup, drop, now)
	if err != nil {
		return nil, err
	}

	fullPath := append(append([]roadnet.Cell{}, leg1...), leg2[1:]...)
	s.table.ReleaseOwner(reservation.RobotID(r.ID))
	s.table.Reserve(fullPath, now, reservation.RobotID(r.ID))

	instr1, headingAfterPickup := command.Translate(s.graph, leg1, h)
	instr2, _ := command.Translate(s.graph, leg2, headingAfterPickup)
	fullInstr := command.ConcatLegs(instr1, instr2)

	jid := s.genID()
	j := &Job{
		ID:              jid,
		Pickup:          pickup,
		Drop:            drop,
		Status:          Assigned,
		AssignedRobotID: r.ID,
		Plan:            command.BuildPlan(fullPath, fullInstr),
		FullPath:        fullPath,
		SubmittedUnix:   now,
	}
	s.jobs[jid] = j

	r.Status = Busy
	r.AssignedJobID = jid
	r.CurrentPath = fullPath

	s.pub.Publish(broadcast.Event{Kind: broadcast.JobUpdate, Payload: snapshotJob(j)})
	s.pub.Publish(broadcast.Event{Kind: broadcast.RobotUpdate, Payload: snapshotRobot(r)})
	return j, nil
}

// planTwoLegs runs the pickup-leg then drop-leg A* searches rooted at t0,
// chaining the second search's start time from the first leg's arrival.
func (s *Store) planTwoLegs(rid RobotID, start, pickup, drop roadnet.Cell, t0 int64) (leg1, leg2 []roadnet.Cell, err error) {
	leg1, err = planner.FindPath(planner.Request{
		Graph: s.graph, Table: s.table, Blockers: idleRobotBlockers{s},
		Start: start, Goal: pickup, T0: t0, Robot: reservation.RobotID(rid),
		MaxSteps: s.searchMaxDepth, WaitPenalty: s.waitPenalty,
	})
	if err != nil {
		return nil, nil, ErrNoPathToPickup
	}

	t1 := t0 + int64(len(leg1)-1)
	leg2, err = planner.FindPath(planner.Request{
		Graph: s.graph, Table: s.table, Blockers: idleRobotBlockers{s},
		Start: pickup, Goal: drop, T0: t1, Robot: reservation.RobotID(rid),
		MaxSteps: s.searchMaxDepth, WaitPenalty: s.waitPenalty,
	})
	if err != nil {
		return nil, nil, ErrNoPathPickupToDrop
	}
	return leg1, leg2, nil
}

// Reset clears the queue and all reservations, fails any in-flight assigned
// job, and returns every robot to idle.
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.queue = nil
	*s.table = *reservation.NewTable()

	for _, j := range s.jobs {
		if j.Status == Assigned {
			j.Status = Failed
			s.pub.Publish(broadcast.Event{Kind: broadcast.JobUpdate, Payload: snapshotJob(j)})
		}
	}
	for _, id := range s.robotOrder {
		r := s.robots[id]
		r.Status = Idle
		r.CurrentPath = nil
		r.AssignedJobID = ""
		s.pub.Publish(broadcast.Event{Kind: broadcast.RobotUpdate, Payload: snapshotRobot(r)})
	}
}

// Snapshot returns a point-in-time copy of every robot and job, for the
// state_snapshot broadcast sent to newly-connected observers.
func (s *Store) Snapshot() ([]Robot, []Job) {
	s.mu.Lock()
	defer s.mu.Unlock()

	robots := make([]Robot, 0, len(s.robots))
	for _, id := range s.robotOrder {
		robots = append(robots, *s.robots[id])
	}
	jobs := make([]Job, 0, len(s.jobs))
	for _, j := range s.jobs {
		jobs = append(jobs, *j)
	}
	return robots, jobs
}

// sortedCells returns cells in a deterministic (lexicographic) order, since
// roadnet.Graph.ParkingCells draws from Go map iteration.
func sortedCells(cells []roadnet.Cell) []roadnet.Cell {
	out := append([]roadnet.Cell{}, cells...)
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func indexOfCell(path []roadnet.Cell, cell roadnet.Cell) int {
	for i, c := range path {
		if c == cell {
			return i
		}
	}
	return -1
}

func snapshotRobot(r *Robot) Robot { return *r }
func snapshotJob(j *Job) Job       { return *j }
