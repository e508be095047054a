package player

import (
	"errors"

	"github.com/chaezuha/Discord-MP3-Bot/internal/library"
)

var (
	ErrNoVoiceConnection = errors.New("no voice connection")
	ErrNotInChannel      = errors.New("user is not in a reachable voice channel")
	ErrNotConnected      = errors.New("not connected to a voice channel")
	ErrNothingPlaying    = errors.New("no track is currently playing")
	ErrNothingPaused     = errors.New("no track is currently paused")
	ErrSessionActive     = errors.New("a playback session is already active")
	ErrSessionStart      = errors.New("failed to start playback session")
	ErrConnect           = errors.New("failed to connect to voice channel")
)

// Kind groups errors by how the command layer should surface them.
type Kind int

const (
	KindUnknown Kind = iota
	// KindInput covers empty or ambiguous searches.
	KindInput
	// KindPrecondition covers missing voice context or nothing to act on.
	KindPrecondition
	// KindTransport covers connection and session start failures.
	KindTransport
	// KindRuntime covers errors reported mid-playback.
	KindRuntime
)

func (k Kind) String() string {
	switch k {
	case KindInput:
		return "input"
	case KindPrecondition:
		return "precondition"
	case KindTransport:
		return "transport"
	case KindRuntime:
		return "runtime"
	default:
		return "unknown"
	}
}

// RuntimeError is reported by a session that failed mid-playback.
type RuntimeError struct {
	Track library.Track
	Err   error
}

func (e *RuntimeError) Error() string { return "playback of " + e.Track.Title + " failed: " + e.Err.Error() }
func (e *RuntimeError) Unwrap() error { return e.Err }

// KindOf classifies err. None of the kinds is fatal to a guild.
func KindOf(err error) Kind {
	var rt *RuntimeError
	switch {
	case err == nil:
		return KindUnknown
	case errors.As(err, &rt):
		return KindRuntime
	case errors.Is(err, library.ErrNoMatches), errors.Is(err, library.ErrAmbiguous):
		return KindInput
	case errors.Is(err, ErrSessionStart), errors.Is(err, ErrConnect):
		return KindTransport
	case errors.Is(err, ErrNoVoiceConnection), errors.Is(err, ErrNotInChannel),
		errors.Is(err, ErrNotConnected), errors.Is(err, ErrNothingPlaying),
		errors.Is(err, ErrNothingPaused), errors.Is(err, ErrSessionActive):
		return KindPrecondition
	default:
		return KindUnknown
	}
}
