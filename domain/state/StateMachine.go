package state

import (
	"fmt"
	"primor/bizerror"
)

// StateMachine is stateless, it only validates transitions.
type StateMachine struct {
	States      []State      `json:"states"`
	Transitions []Transition `json:"transitions"`
}

type Category uint

const (
	InProcess Category = iota
	Done
)

type State struct {
	Name     string   `json:"name"`
	Category Category `json:"category"`
}

type Transition struct {
	Name string `json:"name"`
	From State  `json:"from"`
	To   State  `json:"to"`
}

func NewStateMachine(states []State, transitions []Transition) *StateMachine {
	return &StateMachine{States: states, Transitions: transitions}
}

// AvailableTransitions matches any state when fromState or toState is empty.
func (sm *StateMachine) AvailableTransitions(fromState string, toState string) []Transition {
	r := []Transition{}
	for _, transition := range sm.Transitions {
		if (fromState == "" || fromState == transition.From.Name) && (toState == "" || toState == transition.To.Name) {
			r = append(r, transition)
		}
	}
	return r
}

// Fire returns the target state of the named transition from fromState.
func (sm *StateMachine) Fire(fromState string, transitionName string) (State, error) {
	for _, transition := range sm.Transitions {
		if transition.From.Name == fromState && transition.Name == transitionName {
			return transition.To, nil
		}
	}
	return State{}, fmt.Errorf("%w: %s from %s", bizerror.ErrInvalidState, transitionName, fromState)
}

func (sm *StateMachine) IsTerminal(stateName string) bool {
	for _, s := range sm.States {
		if s.Name == stateName {
			return s.Category == Done
		}
	}
	return false
}
