package fleet

import (
	"time"

	"fleetplanner/broadcast"
	"fleetplanner/command"
	"fleetplanner/planner"
	"fleetplanner/reservation"
	"fleetplanner/roadnet"
)

// Tick runs one allocator iteration: garbage-collect reservations older
// than now, then drain the job queue in submission order, assigning each
// queued job to the nearest idle robot it can reach. A job that cannot
// currently be planned (NoPath) is left queued for the next tick rather
// than failed. Tick duration and resulting queue/robot counts are recorded
// to the store's Stats before returning.
func (s *Store) Tick(now int64) {
	started := time.Now()
	s.mu.Lock()
	defer s.mu.Unlock()
	defer s.recordTickStats(started)

	s.table.ReleaseBeforeTime(now)

	remaining := s.queue[:0:0]
	for i, jid := range s.queue {
		j, ok := s.jobs[jid]
		if !ok || j.Status != Queued {
			continue
		}

		rid, ok := s.nearestIdleRobot(j.Pickup)
		if !ok {
			// No idle robot at all: nothing later in the queue can be
			// assigned this tick either, since idle-robot count only
			// shrinks as jobs are assigned. Keep the rest queued as-is.
			remaining = append(remaining, s.queue[i:]...)
			break
		}

		if !s.tryAssign(j, rid, now) {
			remaining = append(remaining, jid)
		}
	}
	s.queue = remaining
}

// recordTickStats updates the store's gauges with this tick's duration and
// the resulting queue/robot counts. Called with s.mu still held, so counts
// reflect the state exactly as Tick left it.
func (s *Store) recordTickStats(started time.Time) {
	s.stats.RecordAllocatorTick(float64(time.Since(started).Microseconds()))

	busy, idle := 0, 0
	for _, id := range s.robotOrder {
		if s.robots[id].Status == Busy {
			busy++
		} else {
			idle++
		}
	}
	s.stats.SetFleetCounts(len(s.queue), busy, idle)
}

// nearestIdleRobot returns the idle robot with smallest Manhattan distance
// to target, ties broken by insertion order in the robot table.
func (s *Store) nearestIdleRobot(target roadnet.Cell) (RobotID, bool) {
	best := RobotID("")
	bestDist := -1
	bestInsertion := -1
	found := false

	for _, id := range s.robotOrder {
		r := s.robots[id]
		if r.Status != Idle {
			continue
		}
		d := s.graph.ManhattanDistance(r.CurrentCell, target)
		if !found || d < bestDist || (d == bestDist && r.insertion < bestInsertion) {
			best, bestDist, bestInsertion, found = id, d, r.insertion, true
		}
	}
	return best, found
}

// tryAssign plans and commits a two-leg trajectory for job j using robot
// rid, starting at time now. Returns false (leaving j queued) if no path
// could be found for either leg.
func (s *Store) tryAssign(j *Job, rid RobotID, now int64) bool {
	r := s.robots[rid]

	leg1, err := planner.FindPath(planner.Request{
		Graph: s.graph, Table: s.table, Blockers: idleRobotBlockers{s},
		Start: r.CurrentCell, Goal: j.Pickup, T0: now,
		Robot: reservation.RobotID(rid), MaxSteps: s.searchMaxDepth, WaitPenalty: s.waitPenalty,
	})
	if err != nil {
		return false
	}

	t1 := now + int64(len(leg1)-1)
	leg2, err := planner.FindPath(planner.Request{
		Graph: s.graph, Table: s.table, Blockers: idleRobotBlockers{s},
		Start: j.Pickup, Goal: j.Drop, T0: t1,
		Robot: reservation.RobotID(rid), MaxSteps: s.searchMaxDepth, WaitPenalty: s.waitPenalty,
	})
	if err != nil {
		return false
	}

	fullPath := append(append([]roadnet.Cell{}, leg1...), leg2[1:]...)

	s.table.ReleaseOwner(reservation.RobotID(rid))
	s.table.Reserve(fullPath, now, reservation.RobotID(rid))

	instr1, headingAfterPickup := command.Translate(s.graph, leg1, r.Heading)
	instr2, _ := command.Translate(s.graph, leg2, headingAfterPickup)
	fullInstr := command.ConcatLegs(instr1, instr2)

	j.Status = Assigned
	j.AssignedRobotID = rid
	j.FullPath = fullPath
	j.Plan = command.BuildPlan(fullPath, fullInstr)

	r.Status = Busy
	r.AssignedJobID = j.ID
	r.CurrentPath = fullPath

	s.pub.Publish(broadcast.Event{Kind: broadcast.JobUpdate, Payload: snapshotJob(j)})
	s.pub.Publish(broadcast.Event{Kind: broadcast.RobotUpdate, Payload: snapshotRobot(r)})
	return true
}
