// Package httpapi is the thin HTTP/WebSocket adapter over the fleet store:
// JSON request/response shapes and routing only, no planning or state logic
// of its own.
package httpapi

import (
	"fleetplanner/command"
	"fleetplanner/fleet"
	"fleetplanner/roadnet"
)

// planStepDTO is one [cell, command] pair in a published plan.
type planStepDTO [2]string

func planDTO(p command.Plan) []planStepDTO {
	out := make([]planStepDTO, len(p))
	for i, s := range p {
		out[i] = planStepDTO{string(s.Cell), string(s.Instr)}
	}
	return out
}

type progressEntryDTO struct {
	StepIndex int    `json:"step_index"`
	Node      string `json:"node"`
	Dir       string `json:"dir"`
	Ts        int64  `json:"ts"`
}

type executionReportDTO struct {
	RobotID string `json:"robot_id"`
	Ts      int64  `json:"ts"`
}

type jobDTO struct {
	ID             string               `json:"id"`
	Pickup         string               `json:"pickup"`
	Drop           string               `json:"drop"`
	Status         string               `json:"status"`
	AssignedRobot  string               `json:"assigned_robot,omitempty"`
	Path           []string             `json:"path,omitempty"`
	Plan           []planStepDTO        `json:"plan,omitempty"`
	PlanStr        string               `json:"plan_str,omitempty"`
	ProgressIndex  *int                 `json:"progress_index,omitempty"`
	ProgressTraces []progressEntryDTO   `json:"progress_trace,omitempty"`
	Reports        []executionReportDTO `json:"reports,omitempty"`
	SubmittedTs    int64                `json:"submitted_ts"`
}

func toJobDTO(j *fleet.Job) *jobDTO {
	if j == nil {
		return nil
	}
	dto := &jobDTO{
		ID:            j.ID,
		Pickup:        string(j.Pickup),
		Drop:          string(j.Drop),
		Status:        string(j.Status),
		AssignedRobot: string(j.AssignedRobotID),
		Plan:          planDTO(j.Plan),
		PlanStr:       j.Plan.String(),
		ProgressIndex: j.ProgressIndex,
		SubmittedTs:   j.SubmittedUnix,
	}
	for _, c := range j.FullPath {
		dto.Path = append(dto.Path, string(c))
	}
	for _, p := range j.ProgressTrace {
		dto.ProgressTraces = append(dto.ProgressTraces, progressEntryDTO{
			StepIndex: p.StepIndex,
			Node:      string(p.Cell),
			Dir:       p.Heading.String(),
			Ts:        p.AtUnix,
		})
	}
	for _, rep := range j.Reports {
		dto.Reports = append(dto.Reports, executionReportDTO{
			RobotID: string(rep.RobotID),
			Ts:      rep.AtUnix,
		})
	}
	return dto
}

type robotDTO struct {
	ID       string   `json:"robot_id"`
	Node     string   `json:"node"`
	Dir      string   `json:"dir"`
	Status   string   `json:"status"`
	Color    string   `json:"color"`
	LastSeen int64    `json:"last_seen"`
	Path     []string `json:"current_path,omitempty"`
	JobID    string   `json:"current_job,omitempty"`
}

func toRobotDTO(r *fleet.Robot) *robotDTO {
	dto := &robotDTO{
		ID:       string(r.ID),
		Node:     string(r.CurrentCell),
		Dir:      r.Heading.String(),
		Status:   string(r.Status),
		Color:    r.Color,
		LastSeen: r.LastSeenUnix,
		JobID:    r.AssignedJobID,
	}
	for _, c := range r.CurrentPath {
		dto.Path = append(dto.Path, string(c))
	}
	return dto
}

type layoutDTO struct {
	Cells map[string]map[string]int `json:"coords"`
}

func toLayoutDTO(g *roadnet.Graph) layoutDTO {
	coords := make(map[string]map[string]int)
	for _, c := range g.Cells() {
		p, _ := g.Coordinates(c)
		coords[string(c)] = map[string]int{"x": p.X, "y": p.Y}
	}
	return layoutDTO{Cells: coords}
}

type stateSnapshotDTO struct {
	Robots []*robotDTO `json:"robots"`
	Jobs   []*jobDTO   `json:"jobs"`
}
