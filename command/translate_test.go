package command

import (
	"testing"

	"fleetplanner/heading"
	"fleetplanner/roadnet"
)

func lineGraph(t *testing.T) *roadnet.Graph {
	t.Helper()
	g, err := roadnet.NewGraph(roadnet.AdjacencySpec{
		Cells: map[roadnet.Cell]map[heading.Heading]roadnet.Cell{
			"71": {heading.South: "81", heading.East: "72"},
			"81": {heading.North: "71"},
			"72": {heading.West: "71", heading.East: "73"},
			"73": {heading.West: "72"},
		},
	})
	if err != nil {
		t.Fatalf("NewGraph: %v", err)
	}
	return g
}

func TestTranslateStraight(t *testing.T) {
	g := lineGraph(t)
	// 71 -> 72 -> 73 is two East moves; starting heading East should yield
	// Straight, Straight.
	toks, final := Translate(g, []roadnet.Cell{"71", "72", "73"}, heading.East)
	want := []Token{Straight, Straight}
	if !equalTokens(toks, want) {
		t.Fatalf("tokens = %v, want %v", toks, want)
	}
	if final != heading.East {
		t.Fatalf("final heading = %v, want East", final)
	}
}

func TestTranslateTurns(t *testing.T) {
	g := lineGraph(t)
	// starting heading North, first edge 71->81 is South: that's a U-turn.
	toks, final := Translate(g, []roadnet.Cell{"71", "81"}, heading.North)
	if len(toks) != 1 || toks[0] != UTurn {
		t.Fatalf("tokens = %v, want [U]", toks)
	}
	if final != heading.South {
		t.Fatalf("final heading = %v, want South", final)
	}

	// starting heading North, edge 71->72 is East: a Right turn.
	toks, final = Translate(g, []roadnet.Cell{"71", "72"}, heading.North)
	if len(toks) != 1 || toks[0] != Right {
		t.Fatalf("tokens = %v, want [R]", toks)
	}
	if final != heading.East {
		t.Fatalf("final heading = %v, want East", final)
	}

	// starting heading South, edge 71->72 is East: a Left turn.
	toks, final = Translate(g, []roadnet.Cell{"71", "72"}, heading.South)
	if len(toks) != 1 || toks[0] != Left {
		t.Fatalf("tokens = %v, want [L]", toks)
	}
	if final != heading.East {
		t.Fatalf("final heading = %v, want East", final)
	}
}

func TestBuildPlanAppendsDone(t *testing.T) {
	path := []roadnet.Cell{"71", "72", "73"}
	instrs := []Token{Straight, Straight}
	plan := BuildPlan(path, instrs)

	if len(plan) != 3 {
		t.Fatalf("len(plan) = %d, want 3", len(plan))
	}
	if plan[2].Instr != Done || plan[2].Cell != "73" {
		t.Fatalf("final step = %+v, want {73 D}", plan[2])
	}
	if plan[0].Instr != Straight || plan[1].Instr != Straight {
		t.Fatalf("plan = %+v", plan)
	}
}

func TestConcatLegsFullLength(t *testing.T) {
	g := lineGraph(t)
	leg1 := []roadnet.Cell{"81", "71"}
	leg2 := []roadnet.Cell{"71", "72", "73"}

	instr1, headingAfterLeg1 := Translate(g, leg1, heading.North)
	instr2, _ := Translate(g, leg2, headingAfterLeg1)

	full := ConcatLegs(instr1, instr2)

	fullPath := append(append([]roadnet.Cell{}, leg1...), leg2[1:]...)
	if len(full) != len(fullPath)-1 {
		t.Fatalf("len(full instr) = %d, want %d (len(fullPath)-1)", len(full), len(fullPath)-1)
	}
}

func equalTokens(a, b []Token) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
