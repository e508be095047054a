// Package player schedules playback per guild: one FIFO queue, one active
// session, advanced automatically when a session ends.
package player

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sort"
	"sync"

	"github.com/chaezuha/Discord-MP3-Bot/internal/library"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// Outcome tells a caller of EnqueueOrStart what happened to the track.
type Outcome int

const (
	OutcomeNotStarted Outcome = iota
	OutcomeStarted
	OutcomeQueued
)

func (o Outcome) String() string {
	switch o {
	case OutcomeStarted:
		return "started"
	case OutcomeQueued:
		return "queued"
	default:
		return "not started"
	}
}

// Snapshot is a copy of one guild's playback state.
type Snapshot struct {
	GuildID            string          `json:"guild_id"`
	Current            *library.Track  `json:"current,omitempty"`
	Queue              []library.Track `json:"queue"`
	Paused             bool            `json:"paused"`
	Connected          bool            `json:"connected"`
	VoiceChannelID     string          `json:"voice_channel_id,omitempty"`
	NotificationTarget string          `json:"notification_channel_id,omitempty"`
}

// Engine owns the playback state of every guild. Guild state is created on
// first use and kept for the life of the process.
type Engine struct {
	voice    VoiceProvider
	sessions SessionFactory
	notifier Notifier
	recorder Recorder

	mu     sync.Mutex
	guilds map[string]*guildPlayer
}

type Option func(*Engine)

// WithRecorder reports every started track to r.
func WithRecorder(r Recorder) Option {
	return func(e *Engine) { e.recorder = r }
}

// New creates an Engine. notifier may be nil.
func New(voice VoiceProvider, sessions SessionFactory, notifier Notifier, opts ...Option) *Engine {
	e := &Engine{
		voice:    voice,
		sessions: sessions,
		notifier: notifier,
		guilds:   make(map[string]*guildPlayer),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *Engine) guild(guildID string) *guildPlayer {
	e.mu.Lock()
	defer e.mu.Unlock()

	if g, ok := e.guilds[guildID]; ok {
		return g
	}
	g := newGuildPlayer(guildID)
	e.guilds[guildID] = g
	return g
}

// Guilds returns the IDs of guilds that have state, sorted.
func (e *Engine) Guilds() []string {
	e.mu.Lock()
	defer e.mu.Unlock()

	ids := make([]string, 0, len(e.guilds))
	for id := range e.guilds {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// SetNotificationTarget directs asynchronous status messages for the guild
// to channelID.
func (e *Engine) SetNotificationTarget(guildID, channelID string) {
	_ = e.guild(guildID).call(func(st *guildState) error {
		st.notify = channelID
		return nil
	})
}

// EnsureVoice makes sure the guild has a live voice connection in
// channelID, joining or moving as needed.
func (e *Engine) EnsureVoice(ctx context.Context, guildID, channelID string) error {
	return e.guild(guildID).call(func(st *guildState) error {
		if st.conn != nil && st.conn.IsConnected() {
			if st.conn.ChannelID() == channelID {
				return nil
			}
			if err := st.conn.MoveTo(ctx, channelID); err != nil {
				return fmt.Errorf("%w: %w", ErrConnect, err)
			}
			log.Info().Str("guild", guildID).Str("channel", channelID).Msg("[Player] Moved voice connection")
			return nil
		}

		conn, err := e.voice.Connect(ctx, guildID, channelID)
		if err != nil {
			if errors.Is(err, ErrNotInChannel) {
				return err
			}
			return fmt.Errorf("%w: %w", ErrConnect, err)
		}
		st.conn = conn
		log.Info().Str("guild", guildID).Str("channel", channelID).Msg("[Player] Joined voice channel")
		return nil
	})
}

// EnqueueOrStart plays track right away when the guild is idle and
// appends it to the queue otherwise.
func (e *Engine) EnqueueOrStart(guildID string, track library.Track) (Outcome, error) {
	outcome := OutcomeNotStarted
	g := e.guild(guildID)
	err := g.call(func(st *guildState) error {
		if st.current == nil && st.session == nil {
			if err := e.start(g, st, track); err != nil {
				return err
			}
			outcome = OutcomeStarted
			return nil
		}
		st.queue = append(st.queue, track)
		outcome = OutcomeQueued
		log.Info().Str("guild", guildID).Str("track", track.Title).Int("queue_len", len(st.queue)).Msg("[Player] Track added to queue")
		return nil
	})
	return outcome, err
}

// Start begins playback of track. The guild must be connected and must not
// have a live session.
func (e *Engine) Start(guildID string, track library.Track) error {
	g := e.guild(guildID)
	return g.call(func(st *guildState) error {
		return e.start(g, st, track)
	})
}

// Advance starts the next queued track, if any. announce sends a now
// playing message to the notification target.
func (e *Engine) Advance(guildID string, announce bool) error {
	g := e.guild(guildID)
	return g.call(func(st *guildState) error {
		return e.advance(g, st, announce)
	})
}

// Skip stops the current session; the queue advances as if it had ended.
func (e *Engine) Skip(guildID string) error {
	return e.guild(guildID).call(func(st *guildState) error {
		if st.session == nil {
			return ErrNothingPlaying
		}
		log.Info().Str("guild", guildID).Str("track", titleOf(st.current)).Msg("[Player] Skipping track")
		st.session.Stop()
		return nil
	})
}

func (e *Engine) Pause(guildID string) error {
	return e.guild(guildID).call(func(st *guildState) error {
		if st.session == nil || !st.session.IsPlaying() {
			return ErrNothingPlaying
		}
		st.session.Pause()
		return nil
	})
}

func (e *Engine) Resume(guildID string) error {
	return e.guild(guildID).call(func(st *guildState) error {
		if st.session == nil || !st.session.IsPaused() {
			return ErrNothingPaused
		}
		st.session.Resume()
		return nil
	})
}

// Stop clears the queue, ends playback and leaves the voice channel.
func (e *Engine) Stop(guildID string) error {
	return e.guild(guildID).call(func(st *guildState) error {
		if st.conn == nil && st.session == nil {
			return ErrNotConnected
		}

		st.queue = nil
		st.current = nil
		sess := st.session
		st.session, st.sessionID = nil, uuid.Nil
		if sess != nil {
			sess.Stop()
		}

		if st.conn != nil {
			if err := st.conn.Disconnect(); err != nil {
				log.Warn().Err(err).Str("guild", guildID).Msg("[Player] Voice disconnect failed")
			}
			st.conn = nil
		}
		log.Info().Str("guild", guildID).Msg("[Player] Playback stopped, voice connection released")
		return nil
	})
}

// Snapshot returns a copy of the guild's state.
func (e *Engine) Snapshot(guildID string) Snapshot {
	snap := Snapshot{GuildID: guildID}
	_ = e.guild(guildID).call(func(st *guildState) error {
		if st.current != nil {
			t := *st.current
			snap.Current = &t
		}
		snap.Queue = slices.Clone(st.queue)
		if snap.Queue == nil {
			snap.Queue = []library.Track{}
		}
		snap.Paused = st.session != nil && st.session.IsPaused()
		if st.conn != nil {
			snap.Connected = st.conn.IsConnected()
			snap.VoiceChannelID = st.conn.ChannelID()
		}
		snap.NotificationTarget = st.notify
		return nil
	})
	return snap
}

// Shutdown stops every guild that is connected or playing.
func (e *Engine) Shutdown() {
	for _, id := range e.Guilds() {
		if err := e.Stop(id); err != nil && !errors.Is(err, ErrNotConnected) {
			log.Warn().Err(err).Str("guild", id).Msg("[Player] Shutdown stop failed")
		}
	}
}

func (e *Engine) start(g *guildPlayer, st *guildState, track library.Track) error {
	if st.conn == nil || !st.conn.IsConnected() {
		st.current = nil
		return ErrNoVoiceConnection
	}
	if st.session != nil {
		return ErrSessionActive
	}

	id := uuid.New()
	sess, err := e.sessions.Begin(st.conn, track.Location, func(err error) {
		e.sessionEnded(g, id, track, err)
	})
	if err != nil {
		st.current = nil
		log.Error().Err(err).Str("guild", g.id).Str("track", track.Title).Msg("[Player] Failed to start session")
		return fmt.Errorf("%w: %w", ErrSessionStart, err)
	}

	t := track
	st.session, st.sessionID, st.current = sess, id, &t
	log.Info().Str("guild", g.id).Str("track", track.Title).Str("session", id.String()).Msg("[Player] Now playing")

	if e.recorder != nil {
		e.recorder.TrackStarted(g.id, track)
	}
	return nil
}

func (e *Engine) advance(g *guildPlayer, st *guildState, announce bool) error {
	if st.session != nil {
		return ErrSessionActive
	}
	if len(st.queue) == 0 {
		st.current = nil
		return nil
	}

	next := st.queue[0]
	st.queue = slices.Delete(st.queue, 0, 1)
	if err := e.start(g, st, next); err != nil {
		return err
	}

	if announce {
		e.notify(g, st, fmt.Sprintf("Now playing: **%s**", next.Title))
	}
	return nil
}

// sessionEnded hands a session's completion to the guild loop. Ends from a
// session that is no longer the guild's current one are ignored.
func (e *Engine) sessionEnded(g *guildPlayer, id uuid.UUID, track library.Track, err error) {
	g.post(func(st *guildState) {
		if st.sessionID != id {
			log.Debug().Str("guild", g.id).Str("session", id.String()).Msg("[Player] Ignoring end of stale session")
			return
		}

		if err != nil {
			rt := &RuntimeError{Track: track, Err: err}
			log.Warn().Err(rt).Str("guild", g.id).Msg("[Player] Session ended with error")
			e.notify(g, st, fmt.Sprintf("Playback error: `%v`", err))
		} else {
			log.Info().Str("guild", g.id).Str("track", track.Title).Msg("[Player] Track finished")
		}

		st.current, st.session, st.sessionID = nil, nil, uuid.Nil
		if err := e.advance(g, st, true); err != nil {
			log.Warn().Err(err).Str("guild", g.id).Msg("[Player] Could not advance queue")
			e.notify(g, st, fmt.Sprintf("Could not start the next song: %v", err))
		}
	})
}

func (e *Engine) notify(g *guildPlayer, st *guildState, text string) {
	if e.notifier == nil || st.notify == "" {
		return
	}
	if err := e.notifier.Send(st.notify, text); err != nil {
		log.Warn().Err(err).Str("guild", g.id).Msg("[Player] Notification dropped")
	}
}

func titleOf(t *library.Track) string {
	if t == nil {
		return ""
	}
	return t.Title
}
