package services

// State is a step of the login sequence.
type State int

const (
	StateIdle State = iota
	StateSubmitting
	StateLoginFailed
	StateLoginSucceeded
	StateFetchingProfile
	StateProfileFetched
	StateProfileFetchFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateSubmitting:
		return "submitting"
	case StateLoginFailed:
		return "login_failed"
	case StateLoginSucceeded:
		return "login_succeeded"
	case StateFetchingProfile:
		return "fetching_profile"
	case StateProfileFetched:
		return "profile_fetched"
	case StateProfileFetchFailed:
		return "profile_fetch_failed"
	default:
		return "unknown"
	}
}

// InFlight reports whether a submit is still running in this state.
func (s State) InFlight() bool {
	return s == StateSubmitting || s == StateLoginSucceeded || s == StateFetchingProfile
}
