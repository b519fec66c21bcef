package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestState_String(t *testing.T) {
	assert.Equal(t, "idle", StateIdle.String())
	assert.Equal(t, "profile_fetch_failed", StateProfileFetchFailed.String())
	assert.Equal(t, "unknown", State(99).String())
}

func TestState_InFlight(t *testing.T) {
	inFlight := map[State]bool{
		StateIdle:               false,
		StateSubmitting:         true,
		StateLoginFailed:        false,
		StateLoginSucceeded:     true,
		StateFetchingProfile:    true,
		StateProfileFetched:     false,
		StateProfileFetchFailed: false,
	}
	for s, want := range inFlight {
		assert.Equal(t, want, s.InFlight(), s.String())
	}
}
