package session

import (
	"fmt"
	"strings"
)

// State is the lifecycle of a paper trading session.
//
//	Idle --Start--> Running --Pause--> Paused --Start--> Running
//	any --Reset--> Idle
type State int

const (
	Idle State = iota
	Running
	Paused
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Running:
		return "running"
	case Paused:
		return "paused"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *State) UnmarshalText(b []byte) error {
	switch strings.ToLower(string(b)) {
	case "idle":
		*s = Idle
	case "running":
		*s = Running
	case "paused":
		*s = Paused
	default:
		return fmt.Errorf("unknown session state %q", b)
	}
	return nil
}
