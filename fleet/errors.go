package fleet

import (
	"errors"
	"fmt"
)

// ErrUnknownRobot is returned whenever an operation references a robot id
// the store has not registered.
var ErrUnknownRobot = errors.New("fleet: unknown robot")

// ErrUnknownJob is returned whenever an operation references a job id the
// store does not hold.
var ErrUnknownJob = errors.New("fleet: unknown job")

// ErrInvalidRequest is returned for malformed input: missing required
// fields on submission.
var ErrInvalidRequest = errors.New("fleet: invalid request")

// ErrNoPath is returned by ad-hoc path requests when the planner cannot
// find a route within the configured search depth. ErrNoPathToPickup and
// ErrNoPathPickupToDrop wrap it so callers can test for either the general
// failure or the specific leg via errors.Is.
var ErrNoPath = errors.New("fleet: no path")

var ErrNoPathToPickup = fmt.Errorf("fleet: no path to pickup: %w", ErrNoPath)
var ErrNoPathPickupToDrop = fmt.Errorf("fleet: no path pickup to drop: %w", ErrNoPath)
