package domain

import "errors"

var (
	// ErrUnauthenticated is returned when the caller has no bearer token.
	ErrUnauthenticated = errors.New("authentication required to take the quiz")
	// ErrJobNotFound indicates the job post does not exist.
	ErrJobNotFound = errors.New("job not found")
	// ErrNoQuiz indicates the job has neither fixed questions nor sampleable skills.
	ErrNoQuiz = errors.New("no quiz available for this job")
	// ErrMalformedQuestion indicates question content failed shape validation.
	ErrMalformedQuestion = errors.New("malformed quiz question")
	// ErrInvalidSession is returned when a session id does not match the tab's stored token.
	ErrInvalidSession = errors.New("invalid quiz session")
	// ErrConsentRequired is returned when the rules were not acknowledged before start.
	ErrConsentRequired = errors.New("rules must be accepted before starting the quiz")
	// ErrInvalidTransition indicates an action that the current phase does not allow.
	ErrInvalidTransition = errors.New("action not allowed in current phase")
	// ErrQuestionNotFound indicates a submitted question ID is invalid.
	ErrQuestionNotFound = errors.New("question not found")
	// ErrOptionOutOfRange indicates an option index outside 0..3.
	ErrOptionOutOfRange = errors.New("option index out of range")
	// ErrAlreadyAttempted is returned when the learner already has a recorded attempt for the job.
	ErrAlreadyAttempted = errors.New("quiz already attempted for this job")
	// ErrAttemptInProgress is returned when another view already started the learner's attempt.
	ErrAttemptInProgress = errors.New("quiz attempt already in progress for this job")
)
