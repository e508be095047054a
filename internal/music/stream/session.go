package stream

import (
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/chaezuha/Discord-MP3-Bot/internal/music/player"
	"github.com/rs/zerolog/log"
)

var ErrNoSink = errors.New("voice connection cannot send audio")

// Factory starts playback sessions on voice connections that implement Sink.
type Factory struct {
	Source     Source
	NewEncoder func() (Encoder, error)
}

// NewFactory returns a Factory decoding with the ffmpeg binary at path.
func NewFactory(ffmpegPath string) *Factory {
	return &Factory{
		Source:     FFmpeg{Path: ffmpegPath},
		NewEncoder: NewOpusEncoder,
	}
}

// Begin opens location and starts streaming it in the background. onEnd is
// called exactly once, with nil after a natural end or Stop.
func (f *Factory) Begin(conn player.VoiceConn, location string, onEnd func(error)) (player.Session, error) {
	sink, ok := conn.(Sink)
	if !ok {
		return nil, ErrNoSink
	}

	enc, err := f.NewEncoder()
	if err != nil {
		return nil, err
	}

	src, err := f.Source.Open(location)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", location, err)
	}

	s := &Session{
		src:    src,
		stop:   make(chan struct{}),
		done:   make(chan struct{}),
		resume: make(chan struct{}),
	}
	go s.run(enc, sink, onEnd)
	return s, nil
}

// Session is one track being streamed.
type Session struct {
	src io.ReadCloser

	mu     sync.Mutex
	paused bool
	ended  bool
	resume chan struct{}

	stopOnce sync.Once
	stop     chan struct{}
	done     chan struct{}
}

func (s *Session) run(enc Encoder, sink Sink, onEnd func(error)) {
	defer close(s.done)

	if err := sink.Speaking(true); err != nil {
		log.Debug().Err(err).Msg("[Stream] Could not set speaking state")
	}

	err := pump(s.src, enc, sink, s.wait, s.stop)
	closeErr := s.src.Close()

	if err := sink.Speaking(false); err != nil {
		log.Debug().Err(err).Msg("[Stream] Could not clear speaking state")
	}

	s.mu.Lock()
	s.ended = true
	s.mu.Unlock()

	if s.stopped() || errors.Is(err, errStopped) {
		err = nil
	} else if err == nil {
		err = closeErr
	}
	onEnd(err)
}

// wait blocks while the session is paused.
func (s *Session) wait() error {
	for {
		s.mu.Lock()
		paused, resume := s.paused, s.resume
		s.mu.Unlock()

		if !paused {
			select {
			case <-s.stop:
				return errStopped
			default:
				return nil
			}
		}

		select {
		case <-resume:
		case <-s.stop:
			return errStopped
		}
	}
}

func (s *Session) stopped() bool {
	select {
	case <-s.stop:
		return true
	default:
		return false
	}
}

// Stop ends the session without waiting for the stream goroutine.
func (s *Session) Stop() {
	s.stopOnce.Do(func() {
		close(s.stop)
		// Unblocks a pending read.
		_ = s.src.Close()
	})
}

func (s *Session) Pause() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.paused || s.ended {
		return
	}
	s.paused = true
	s.resume = make(chan struct{})
}

func (s *Session) Resume() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.paused {
		return
	}
	s.paused = false
	close(s.resume)
}

func (s *Session) IsPlaying() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return !s.ended && !s.paused
}

func (s *Session) IsPaused() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return !s.ended && s.paused
}

// Done is closed after the session has ended.
func (s *Session) Done() <-chan struct{} {
	return s.done
}
