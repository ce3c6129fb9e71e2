package httpapi

import (
	"net/http"

	"fleetplanner/broadcast"
)

// ServeWebsocket upgrades an observer connection and seeds it with the
// current layout and a full state snapshot before streaming incremental
// robot/job update events.
func (s *Server) ServeWebsocket(w http.ResponseWriter, r *http.Request) {
	s.hub.ServeWebsocket(w, r, func(send func(broadcast.Event)) {
		send(broadcast.Event{Kind: broadcast.Layout, Payload: toLayoutDTO(s.graph)})

		robots, jobs := s.store.Snapshot()
		snapshot := stateSnapshotDTO{}
		for i := range robots {
			snapshot.Robots = append(snapshot.Robots, toRobotDTO(&robots[i]))
		}
		for i := range jobs {
			snapshot.Jobs = append(snapshot.Jobs, toJobDTO(&jobs[i]))
		}
		send(broadcast.Event{Kind: broadcast.StateSnapshot, Payload: snapshot})
	})
}
