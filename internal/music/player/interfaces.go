package player

import (
	"context"

	"github.com/chaezuha/Discord-MP3-Bot/internal/library"
)

// VoiceProvider opens voice connections for a guild.
type VoiceProvider interface {
	// Connect joins channelID in guildID. It fails with ErrNotInChannel when
	// the channel cannot be reached.
	Connect(ctx context.Context, guildID, channelID string) (VoiceConn, error)
}

// VoiceConn is a live voice connection handle.
type VoiceConn interface {
	ChannelID() string
	MoveTo(ctx context.Context, channelID string) error
	IsConnected() bool
	Disconnect() error
}

// SessionFactory begins playback of one file over a voice connection.
// onEnd must be called exactly once, from any goroutine, when playback
// finishes, fails or is stopped.
type SessionFactory interface {
	Begin(conn VoiceConn, location string, onEnd func(error)) (Session, error)
}

// Session controls one running playback. Stop must not wait for the
// playback goroutine to exit.
type Session interface {
	Stop()
	Pause()
	Resume()
	IsPlaying() bool
	IsPaused() bool
}

// Notifier delivers asynchronous status text to a channel.
type Notifier interface {
	Send(channelID, text string) error
}

// Recorder is told about every track that starts playing.
type Recorder interface {
	TrackStarted(guildID string, track library.Track)
}
