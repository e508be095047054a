package player

import (
	"context"
	"errors"
	"sync"

	"github.com/chaezuha/Discord-MP3-Bot/internal/library"
)

type fakeConn struct {
	mu           sync.Mutex
	channelID    string
	connected    bool
	moves        []string
	disconnected int
}

func (c *fakeConn) ChannelID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.channelID
}

func (c *fakeConn) MoveTo(_ context.Context, channelID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.channelID = channelID
	c.moves = append(c.moves, channelID)
	return nil
}

func (c *fakeConn) IsConnected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.connected
}

func (c *fakeConn) Disconnect() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.connected = false
	c.disconnected++
	return nil
}

func (c *fakeConn) setConnected(v bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.connected = v
}

type fakeVoice struct {
	mu    sync.Mutex
	conns []*fakeConn
	err   error
}

func (v *fakeVoice) Connect(_ context.Context, _, channelID string) (VoiceConn, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.err != nil {
		return nil, v.err
	}
	c := &fakeConn{channelID: channelID, connected: true}
	v.conns = append(v.conns, c)
	return c, nil
}

func (v *fakeVoice) last() *fakeConn {
	v.mu.Lock()
	defer v.mu.Unlock()
	if len(v.conns) == 0 {
		return nil
	}
	return v.conns[len(v.conns)-1]
}

func (v *fakeVoice) count() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return len(v.conns)
}

type fakeSession struct {
	mu       sync.Mutex
	location string
	playing  bool
	paused   bool
	stopped  bool
	onEnd    func(error)
	endOnce  sync.Once
}

// finish simulates the transport reporting the end of playback.
func (s *fakeSession) finish(err error) {
	s.mu.Lock()
	s.playing, s.paused = false, false
	s.mu.Unlock()
	s.endOnce.Do(func() { s.onEnd(err) })
}

func (s *fakeSession) Stop() {
	s.mu.Lock()
	s.stopped = true
	s.mu.Unlock()
	s.finish(nil)
}

func (s *fakeSession) Pause() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.playing, s.paused = false, true
}

func (s *fakeSession) Resume() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.playing, s.paused = true, false
}

func (s *fakeSession) IsPlaying() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.playing
}

func (s *fakeSession) IsPaused() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.paused
}

func (s *fakeSession) isStopped() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stopped
}

type fakeFactory struct {
	mu       sync.Mutex
	sessions []*fakeSession
	failNext error
}

func (f *fakeFactory) Begin(_ VoiceConn, location string, onEnd func(error)) (Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failNext != nil {
		err := f.failNext
		f.failNext = nil
		return nil, err
	}
	s := &fakeSession{location: location, playing: true, onEnd: onEnd}
	f.sessions = append(f.sessions, s)
	return s, nil
}

func (f *fakeFactory) session(i int) *fakeSession {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.sessions[i]
}

func (f *fakeFactory) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.sessions)
}

func (f *fakeFactory) fail(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failNext = err
}

type sentMessage struct {
	channelID string
	text      string
}

type fakeNotifier struct {
	mu   sync.Mutex
	sent []sentMessage
}

func (n *fakeNotifier) Send(channelID, text string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, sentMessage{channelID, text})
	return nil
}

func (n *fakeNotifier) texts() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]string, len(n.sent))
	for i, m := range n.sent {
		out[i] = m.text
	}
	return out
}

type fakeRecorder struct {
	mu      sync.Mutex
	started []string
}

func (r *fakeRecorder) TrackStarted(_ string, t library.Track) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.started = append(r.started, t.Title)
}

var errBoom = errors.New("boom")
