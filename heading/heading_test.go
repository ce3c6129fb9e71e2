package heading

import "testing"

func TestRotationTables(t *testing.T) {
	cases := []struct {
		start Heading
		cw    Heading
		ccw   Heading
		opp   Heading
	}{
		{North, East, West, South},
		{East, South, North, West},
		{South, West, East, North},
		{West, North, South, East},
	}

	for _, c := range cases {
		if got := c.start.Clockwise(); got != c.cw {
			t.Errorf("%v.Clockwise() = %v, want %v", c.start, got, c.cw)
		}
		if got := c.start.CounterClockwise(); got != c.ccw {
			t.Errorf("%v.CounterClockwise() = %v, want %v", c.start, got, c.ccw)
		}
		if got := c.start.Opposite(); got != c.opp {
			t.Errorf("%v.Opposite() = %v, want %v", c.start, got, c.opp)
		}
		// Two opposites is a no-op; four clockwise turns is a no-op.
		if got := c.start.Opposite().Opposite(); got != c.start {
			t.Errorf("opposite is not involutive for %v", c.start)
		}
		if got := c.start.Clockwise().Clockwise().Clockwise().Clockwise(); got != c.start {
			t.Errorf("four clockwise turns is not identity for %v", c.start)
		}
	}
}

func TestParse(t *testing.T) {
	for _, tc := range []struct {
		in   string
		want Heading
		ok   bool
	}{
		{"n", North, true},
		{"E", East, true},
		{"s", South, true},
		{"w", West, true},
		{"x", North, false},
		{"", North, false},
	} {
		got, ok := Parse(tc.in)
		if ok != tc.ok || (ok && got != tc.want) {
			t.Errorf("Parse(%q) = (%v,%v), want (%v,%v)", tc.in, got, ok, tc.want, tc.ok)
		}
	}
}
