package reservation

import (
	"testing"

	"fleetplanner/roadnet"
)

func TestCanReserveConflict(t *testing.T) {
	tbl := NewTable()
	path := []roadnet.Cell{"81", "71", "72"}
	tbl.Reserve(path, 100, "robot-a")

	if tbl.CanReserve([]roadnet.Cell{"71"}, 101, "robot-b") {
		t.Fatal("expected conflict at (71,101) held by robot-a")
	}
	if !tbl.CanReserve([]roadnet.Cell{"71"}, 101, "robot-a") {
		t.Fatal("same owner re-reserving its own slot should not conflict")
	}
	if !tbl.CanReserve([]roadnet.Cell{"99"}, 101, "robot-b") {
		t.Fatal("unoccupied cell should be reservable")
	}
}

func TestReleaseOwner(t *testing.T) {
	tbl := NewTable()
	tbl.Reserve([]roadnet.Cell{"81", "71"}, 0, "robot-a")
	tbl.ReleaseOwner("robot-a")

	if tbl.Len() != 0 {
		t.Fatalf("Len() = %d, want 0 after ReleaseOwner", tbl.Len())
	}
	if !tbl.CanReserve([]roadnet.Cell{"81"}, 0, "robot-b") {
		t.Fatal("expected slot to be free after owner release")
	}
}

func TestReleaseBeforeTime(t *testing.T) {
	tbl := NewTable()
	tbl.Reserve([]roadnet.Cell{"81"}, 0, "robot-a")
	tbl.Reserve([]roadnet.Cell{"81"}, 10, "robot-a")

	tbl.ReleaseBeforeTime(5)

	if _, ok := tbl.Owner("81", 0); ok {
		t.Fatal("expected reservation at t=0 to be garbage collected")
	}
	if _, ok := tbl.Owner("81", 10); !ok {
		t.Fatal("expected reservation at t=10 to survive")
	}
}

func TestSwapOwner(t *testing.T) {
	tbl := NewTable()
	tbl.Reserve([]roadnet.Cell{"81", "71"}, 0, "robot-a")
	tbl.SwapOwner("robot-a", "robot-b")

	owner, ok := tbl.Owner("81", 0)
	if !ok || owner != "robot-b" {
		t.Fatalf("Owner(81,0) = (%v,%v), want (robot-b,true)", owner, ok)
	}
	if tbl.CanReserve([]roadnet.Cell{"71"}, 1, "robot-a") {
		t.Fatal("robot-a should no longer hold (71,1) after swap; robot-b owns it")
	}
}

func TestZeroValueTableUsable(t *testing.T) {
	var tbl Table
	if !tbl.CanReserve([]roadnet.Cell{"81"}, 0, "robot-a") {
		t.Fatal("zero-value table should treat every slot as free")
	}
	tbl.Reserve([]roadnet.Cell{"81"}, 0, "robot-a")
	if tbl.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", tbl.Len())
	}
}
