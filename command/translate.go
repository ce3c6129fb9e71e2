// Package command translates a cell path plus an initial heading into the
// sequence of heading-relative motion tokens a line-following robot
// executes to traverse it.
package command

import (
	"fleetplanner/heading"
	"fleetplanner/roadnet"
)

// Token is a single motion instruction.
type Token string

const (
	Straight Token = "S"
	Right    Token = "R"
	Left     Token = "L"
	UTurn    Token = "U"
	Done     Token = "D"
)

// Step pairs the cell a robot is at with the instruction to execute from
// there.
type Step struct {
	Cell  roadnet.Cell
	Instr Token
}

// Plan is a full zipped path+instruction sequence, ending with a Done step
// at the final cell.
type Plan []Step

// fromHeadings maps a current heading and a target edge heading to the
// token that rotates/advances the robot from one to the other.
func fromHeadings(cur, target heading.Heading) Token {
	switch {
	case cur == target:
		return Straight
	case cur.Clockwise() == target:
		return Right
	case cur.CounterClockwise() == target:
		return Left
	case cur.Opposite() == target:
		return UTurn
	default:
		return Straight
	}
}

// Translate walks path, emitting one token per step starting from initial
// heading, and returns the resulting heading after the last step. A wait
// step (the same cell twice in a row) emits Straight and leaves the heading
// unchanged. If an edge in path does not exist in graph (a malformed path),
// it emits UTurn and flips the heading as a best-effort recovery — callers
// should treat this as an internal assertion failure, never an expected case.
func Translate(graph *roadnet.Graph, path []roadnet.Cell, initial heading.Heading) ([]Token, heading.Heading) {
	cur := initial
	instrs := make([]Token, 0, len(path))
	for i := 0; i < len(path)-1; i++ {
		if path[i] == path[i+1] {
			instrs = append(instrs, Straight)
			continue
		}
		target, ok := graph.DirectionBetween(path[i], path[i+1])
		if !ok {
			instrs = append(instrs, UTurn)
			cur = cur.Opposite()
			continue
		}
		tok := fromHeadings(cur, target)
		instrs = append(instrs, tok)
		switch tok {
		case Right:
			cur = cur.Clockwise()
		case Left:
			cur = cur.CounterClockwise()
		case UTurn:
			cur = cur.Opposite()
		}
	}
	return instrs, cur
}

// ConcatLegs joins the instruction sequences of two consecutive path legs
// (e.g. pickup-leg then drop-leg) into one. The second leg's instructions
// are appended whole, not with its first element dropped: leg one already
// ends at the leg's shared cell, and leg two's first token is the move away
// from it, so the combined length matches len(fullPath)-1 exactly.
func ConcatLegs(leg1, leg2 []Token) []Token {
	out := make([]Token, 0, len(leg1)+len(leg2))
	out = append(out, leg1...)
	out = append(out, leg2...)
	return out
}

// BuildPlan zips path and instrs into a Plan, appending a final Done step at
// the last cell. len(instrs) must equal len(path)-1.
func BuildPlan(path []roadnet.Cell, instrs []Token) Plan {
	plan := make(Plan, 0, len(path))
	for i := 0; i < len(path)-1; i++ {
		plan = append(plan, Step{Cell: path[i], Instr: instrs[i]})
	}
	if len(path) > 0 {
		plan = append(plan, Step{Cell: path[len(path)-1], Instr: Done})
	}
	return plan
}

// String renders a plan as "cell instr cell instr ... cell D", matching the
// wire format robots poll for.
func (p Plan) String() string {
	out := ""
	for i, s := range p {
		if i > 0 {
			out += " "
		}
		out += string(s.Cell) + " " + string(s.Instr)
	}
	return out
}
