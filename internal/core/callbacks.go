package core

// Callbacks is how an engine talks to whoever hosts it.
// Engines never touch balances, services or storage.
type Callbacks struct {
	// OnScoreUpdate receives every new score while the game runs.
	OnScoreUpdate func(score int)
	// OnGameEnd receives the final score exactly once per run.
	OnGameEnd func(score int)
}

// Reporter delivers Callbacks on behalf of an engine and enforces their
// contract: scores are reported only when they change, nothing is reported
// after the end, and the end fires at most once.
type Reporter struct {
	cb    Callbacks
	last  int
	ended bool
}

// NewReporter wraps cb. Nil callbacks are allowed.
func NewReporter(cb Callbacks) Reporter {
	return Reporter{cb: cb}
}

// Score reports score if it differs from the last reported value.
func (r *Reporter) Score(score int) {
	if r.ended || score == r.last {
		return
	}
	r.last = score
	if r.cb.OnScoreUpdate != nil {
		r.cb.OnScoreUpdate(score)
	}
}

// End reports the final score. It returns false if the end was already reported.
func (r *Reporter) End(score int) bool {
	if r.ended {
		return false
	}
	r.ended = true
	if r.cb.OnGameEnd != nil {
		r.cb.OnGameEnd(score)
	}
	return true
}

// Ended reports whether End has fired.
func (r *Reporter) Ended() bool {
	return r.ended
}
