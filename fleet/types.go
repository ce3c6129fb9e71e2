// Package fleet is the authoritative in-memory state store: robot table,
// job table, job queue, and reservation table, all guarded by one coarse
// mutex. It is the only package that mutates shared fleet state.
package fleet

import (
	"fleetplanner/command"
	"fleetplanner/heading"
	"fleetplanner/reservation"
	"fleetplanner/roadnet"
)

// RobotStatus is one of the two states a robot can be in.
type RobotStatus string

const (
	Idle RobotStatus = "idle"
	Busy RobotStatus = "busy"
)

// RobotID identifies a registered robot. It is an alias of
// reservation.RobotID, so robot ids pass between the fleet store and the
// reservation table without conversion.
type RobotID = reservation.RobotID

// Robot is the authoritative record of one fleet member. CurrentCell and
// Heading are the last values the robot self-reported.
type Robot struct {
	ID            RobotID
	CurrentCell   roadnet.Cell
	Heading       heading.Heading
	Status        RobotStatus
	LastSeenUnix  int64
	AssignedJobID string
	CurrentPath   []roadnet.Cell
	Color         string
	insertion     int
}

// JobStatus is one of the four states a job can be in. Transitions are
// monotonic except assigned -> failed, which only a reset may perform.
type JobStatus string

const (
	Queued   JobStatus = "queued"
	Assigned JobStatus = "assigned"
	Done     JobStatus = "done"
	Failed   JobStatus = "failed"
)

// ProgressEntry is one step of a job's execution trace, appended as the
// assigned robot reports its step index along the plan.
type ProgressEntry struct {
	StepIndex int
	Cell      roadnet.Cell
	Heading   heading.Heading
	AtUnix    int64
}

// ExecutionReport is a single report_execution submission against a job.
type ExecutionReport struct {
	RobotID RobotID
	AtUnix  int64
}

// Job is the authoritative record of one transport request: a pickup cell,
// a drop cell, and (once assigned) the plan a robot is executing to satisfy
// it.
type Job struct {
	ID              string
	Pickup          roadnet.Cell
	Drop            roadnet.Cell
	Status          JobStatus
	AssignedRobotID RobotID
	Plan            command.Plan
	FullPath        []roadnet.Cell
	SubmittedUnix   int64
	ProgressIndex   *int
	ProgressTrace   []ProgressEntry
	Reports         []ExecutionReport
}
