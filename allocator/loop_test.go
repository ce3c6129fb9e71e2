package allocator

import (
	"testing"
	"time"

	"fleetplanner/broadcast"
	"fleetplanner/fleet"
	"fleetplanner/heading"
	"fleetplanner/reservation"
	"fleetplanner/roadnet"
)

func testGraph(t *testing.T) *roadnet.Graph {
	t.Helper()
	g, err := roadnet.NewGraph(roadnet.AdjacencySpec{
		Cells: map[roadnet.Cell]map[heading.Heading]roadnet.Cell{
			"81": {heading.North: "71"},
			"71": {heading.South: "81", heading.East: "72"},
			"72": {heading.West: "71"},
		},
		Parking: []roadnet.Cell{"81"},
	})
	if err != nil {
		t.Fatalf("NewGraph: %v", err)
	}
	return g
}

func TestRunDrainsQueueOnEachTick(t *testing.T) {
	store := fleet.NewStore(testGraph(t), reservation.NewTable(), broadcast.Discard{}, 0, 0)
	rid, _ := store.RegisterRobot("r1", "71", heading.South)
	jid, _ := store.SubmitJob("72", "71")

	done := make(chan struct{})
	fixedNow := time.Now().Unix()
	go Run(done, store, func() int64 { return fixedNow }, 10*time.Millisecond)

	deadline := time.After(2 * time.Second)
	for {
		j, err := store.PollTask(rid)
		if err != nil {
			t.Fatalf("PollTask: %v", err)
		}
		if j != nil && j.ID == jid {
			break
		}
		select {
		case <-deadline:
			t.Fatal("allocator did not assign the queued job in time")
		case <-time.After(5 * time.Millisecond):
		}
	}

	close(done)
}

func TestRunStopsOnDoneClose(t *testing.T) {
	store := fleet.NewStore(testGraph(t), reservation.NewTable(), broadcast.Discard{}, 0, 0)
	done := make(chan struct{})
	stopped := make(chan struct{})

	go func() {
		Run(done, store, func() int64 { return 0 }, 5*time.Millisecond)
		close(stopped)
	}()

	close(done)
	select {
	case <-stopped:
	case <-time.After(2 * time.Second):
		t.Fatal("allocator loop did not stop after done was closed")
	}
}
