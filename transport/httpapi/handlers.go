package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"fleetplanner/broadcast"
	"fleetplanner/fleet"
	"fleetplanner/heading"
	"fleetplanner/roadnet"
)

// Server wires the fleet store and broadcast hub into HTTP handlers. It
// holds no state of its own beyond these collaborators.
type Server struct {
	store *fleet.Store
	hub   *broadcast.Hub
	graph *roadnet.Graph
}

// NewServer builds a Server over an already-constructed store, hub, and
// road graph.
func NewServer(store *fleet.Store, hub *broadcast.Hub, graph *roadnet.Graph) *Server {
	return &Server{store: store, hub: hub, graph: graph}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

type registerRobotRequest struct {
	RobotID string `json:"robot_id"`
	Node    string `json:"node"`
	Dir     string `json:"dir"`
	Facing  string `json:"facing"`
}

func (s *Server) RegisterRobot(w http.ResponseWriter, r *http.Request) {
	var req registerRobotRequest
	_ = json.NewDecoder(r.Body).Decode(&req)

	node := req.Node
	if node == "" {
		node = "81"
	}
	code := req.Dir
	if code == "" {
		code = req.Facing
	}
	if code == "" {
		code = "s"
	}
	h, ok := heading.Parse(code)
	if !ok {
		h = heading.South
	}

	rid, color := s.store.RegisterRobot(req.RobotID, roadnet.Cell(node), h)
	writeJSON(w, http.StatusOK, map[string]string{"robot_id": string(rid), "color": color})
}

type submitJobRequest struct {
	Pickup string `json:"pickup"`
	Drop   string `json:"drop"`
}

func (s *Server) SubmitJob(w http.ResponseWriter, r *http.Request) {
	var req submitJobRequest
	_ = json.NewDecoder(r.Body).Decode(&req)

	jid, err := s.store.SubmitJob(roadnet.Cell(req.Pickup), roadnet.Cell(req.Drop))
	if err != nil {
		writeError(w, http.StatusBadRequest, "required")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"job_id": jid})
}

func (s *Server) PollTask(w http.ResponseWriter, r *http.Request) {
	rid := fleet.RobotID(r.URL.Query().Get("robot_id"))
	job, err := s.store.PollTask(rid)
	if err != nil {
		writeError(w, http.StatusBadRequest, "unknown")
		return
	}
	writeJSON(w, http.StatusOK, map[string]*jobDTO{"job": toJobDTO(job)})
}

type updateLocationRequest struct {
	RobotID   string `json:"robot_id"`
	Node      string `json:"node"`
	Dir       string `json:"dir"`
	Facing    string `json:"facing"`
	StepIndex *int   `json:"step_index"`
	Status    string `json:"status"`
}

func (s *Server) UpdateLocation(w http.ResponseWriter, r *http.Request) {
	var req updateLocationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "required")
		return
	}

	var h *heading.Heading
	code := req.Dir
	if code == "" {
		code = req.Facing
	}
	if code != "" {
		if parsed, ok := heading.Parse(code); ok {
			h = &parsed
		}
	}

	err := s.store.UpdateLocation(
		fleet.RobotID(req.RobotID),
		roadnet.Cell(req.Node),
		h,
		req.StepIndex,
		req.Status == "job_done",
	)
	if err != nil {
		mapStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

type nodeWithDir struct {
	Node string `json:"node"`
	Dir  string `json:"dir"`
}

type reportExecutionRequest struct {
	RobotID      string        `json:"robot_id"`
	JobID        string        `json:"job_id"`
	NodesWithDir []nodeWithDir `json:"nodes_with_dir"`
}

func (s *Server) ReportExecution(w http.ResponseWriter, r *http.Request) {
	var req reportExecutionRequest
	_ = json.NewDecoder(r.Body).Decode(&req)

	var lastCell *roadnet.Cell
	var lastHeading *heading.Heading
	if n := len(req.NodesWithDir); n > 0 {
		last := req.NodesWithDir[n-1]
		c := roadnet.Cell(last.Node)
		lastCell = &c
		if h, ok := heading.Parse(last.Dir); ok {
			lastHeading = &h
		}
	}

	if err := s.store.ReportExecution(fleet.RobotID(req.RobotID), req.JobID, lastCell, lastHeading); err != nil {
		mapStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

type requestPathRequest struct {
	RobotID string `json:"robot_id"`
	Node    string `json:"node"`
	Dir     string `json:"dir"`
	Facing  string `json:"facing"`
	Pickup  string `json:"pickup"`
	Drop    string `json:"drop"`
}

func (s *Server) RequestPath(w http.ResponseWriter, r *http.Request) {
	var req requestPathRequest
	_ = json.NewDecoder(r.Body).Decode(&req)

	code := req.Dir
	if code == "" {
		code = req.Facing
	}
	if code == "" {
		code = "s"
	}
	h, ok := heading.Parse(code)
	if !ok {
		h = heading.South
	}

	job, err := s.store.RequestPath(fleet.RobotID(req.RobotID), roadnet.Cell(req.Node), h, roadnet.Cell(req.Pickup), roadnet.Cell(req.Drop))
	if err != nil {
		mapStoreError(w, err)
		return
	}
	dto := toJobDTO(job)
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"ok": true, "plan": dto.Plan, "plan_str": dto.PlanStr, "job_id": dto.ID,
	})
}

func (s *Server) ResetSim(w http.ResponseWriter, r *http.Request) {
	s.store.Reset()
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

// DebugStats reports the allocator's live operational gauges: last tick
// duration and current queue/robot counts.
func (s *Server) DebugStats(w http.ResponseWriter, r *http.Request) {
	stats := s.store.Stats()
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"allocator_tick_micros": stats.AllocatorTickMicros(),
		"queue_depth":           stats.QueueDepth(),
		"busy_robots":           stats.BusyRobots(),
		"idle_robots":           stats.IdleRobots(),
	})
}

func mapStoreError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, fleet.ErrUnknownRobot), errors.Is(err, fleet.ErrUnknownJob):
		writeError(w, http.StatusBadRequest, "unknown")
	case errors.Is(err, fleet.ErrInvalidRequest):
		writeError(w, http.StatusBadRequest, "required")
	case errors.Is(err, fleet.ErrNoPath):
		writeError(w, http.StatusInternalServerError, noPathMessage(err))
	default:
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func noPathMessage(err error) string {
	if errors.Is(err, fleet.ErrNoPathPickupToDrop) {
		return "no path pickup->drop"
	}
	return "no path to pickup"
}
