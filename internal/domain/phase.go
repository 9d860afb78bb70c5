package domain

import "fmt"

// Phase is the single state variable of a quiz session.
type Phase string

const (
	PhaseLoading      Phase = "LOADING"
	PhaseRulesReview  Phase = "RULES_REVIEW"
	PhaseActive       Phase = "ACTIVE"
	PhaseSubmitted    Phase = "SUBMITTED"
	PhaseDisqualified Phase = "DISQUALIFIED"
)

// Transition is an event that moves a session between phases.
type Transition string

const (
	TransitionLoaded     Transition = "loaded"
	TransitionStart      Transition = "start"
	TransitionComplete   Transition = "complete"
	TransitionDisqualify Transition = "disqualify"
)

// Terminal reports whether no transition can leave the phase.
func (p Phase) Terminal() bool {
	return p == PhaseSubmitted || p == PhaseDisqualified
}

// Apply returns the phase reached by t, or ErrInvalidTransition when t is not
// allowed from p. Terminal phases reject everything.
func (p Phase) Apply(t Transition) (Phase, error) {
	switch {
	case p == PhaseLoading && t == TransitionLoaded:
		return PhaseRulesReview, nil
	case p == PhaseRulesReview && t == TransitionStart:
		return PhaseActive, nil
	case p == PhaseActive && t == TransitionComplete:
		return PhaseSubmitted, nil
	case p == PhaseActive && t == TransitionDisqualify:
		return PhaseDisqualified, nil
	}
	return p, fmt.Errorf("%w: %s from %s", ErrInvalidTransition, t, p)
}
