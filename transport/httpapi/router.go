package httpapi

import (
	"github.com/gorilla/mux"
)

// NewRouter registers every REST endpoint and the observer websocket on a
// fresh mux.Router.
func NewRouter(s *Server) *mux.Router {
	r := mux.NewRouter()

	r.HandleFunc("/register_robot", s.RegisterRobot).Methods("POST")
	r.HandleFunc("/submit_job", s.SubmitJob).Methods("POST")
	r.HandleFunc("/poll_task", s.PollTask).Methods("GET")
	r.HandleFunc("/update_location", s.UpdateLocation).Methods("POST")
	r.HandleFunc("/report_execution", s.ReportExecution).Methods("POST")
	r.HandleFunc("/request_path", s.RequestPath).Methods("POST")
	r.HandleFunc("/reset_sim", s.ResetSim).Methods("POST")
	r.HandleFunc("/debug/stats", s.DebugStats).Methods("GET")
	r.HandleFunc("/ws", s.ServeWebsocket)

	return r
}
