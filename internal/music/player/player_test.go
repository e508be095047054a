package player

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/chaezuha/Discord-MP3-Bot/internal/library"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	guildA = "guild-a"
	guildB = "guild-b"
	textCh = "text-1"
	voiceA = "voice-1"
)

var (
	trackA = library.Track{Location: "/music/a.mp3", Title: "A"}
	trackB = library.Track{Location: "/music/b.mp3", Title: "B"}
	trackC = library.Track{Location: "/music/c.mp3", Title: "C"}
)

type harness struct {
	engine   *Engine
	voice    *fakeVoice
	factory  *fakeFactory
	notifier *fakeNotifier
	recorder *fakeRecorder
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	h := &harness{
		voice:    &fakeVoice{},
		factory:  &fakeFactory{},
		notifier: &fakeNotifier{},
		recorder: &fakeRecorder{},
	}
	h.engine = New(h.voice, h.factory, h.notifier, WithRecorder(h.recorder))
	return h
}

// connected joins guildA's voice channel and sets the text target.
func (h *harness) connected(t *testing.T) {
	t.Helper()
	h.engine.SetNotificationTarget(guildA, textCh)
	require.NoError(t, h.engine.EnsureVoice(context.Background(), guildA, voiceA))
}

func (h *harness) playing(t *testing.T, tracks ...library.Track) {
	t.Helper()
	h.connected(t)
	for _, tr := range tracks {
		_, err := h.engine.EnqueueOrStart(guildA, tr)
		require.NoError(t, err)
	}
}

func TestEnqueueOnIdleStarts(t *testing.T) {
	h := newHarness(t)
	h.connected(t)

	outcome, err := h.engine.EnqueueOrStart(guildA, trackA)
	require.NoError(t, err)
	assert.Equal(t, OutcomeStarted, outcome)

	snap := h.engine.Snapshot(guildA)
	require.NotNil(t, snap.Current)
	assert.Equal(t, trackA, *snap.Current)
	assert.Empty(t, snap.Queue)
	assert.True(t, snap.Connected)
	assert.Equal(t, voiceA, snap.VoiceChannelID)
	assert.Equal(t, textCh, snap.NotificationTarget)

	require.Equal(t, 1, h.factory.count())
	assert.Equal(t, trackA.Location, h.factory.session(0).location)
	assert.Empty(t, h.notifier.texts(), "the requester is answered directly, not through notifications")
}

func TestEnqueueWhilePlayingAppends(t *testing.T) {
	h := newHarness(t)
	h.playing(t, trackA)

	outcome, err := h.engine.EnqueueOrStart(guildA, trackB)
	require.NoError(t, err)
	assert.Equal(t, OutcomeQueued, outcome)

	outcome, err = h.engine.EnqueueOrStart(guildA, trackC)
	require.NoError(t, err)
	assert.Equal(t, OutcomeQueued, outcome)

	snap := h.engine.Snapshot(guildA)
	assert.Equal(t, trackA, *snap.Current)
	assert.Equal(t, []library.Track{trackB, trackC}, snap.Queue)
	assert.Equal(t, 1, h.factory.count())
}

func TestEnqueueWithoutVoiceConnection(t *testing.T) {
	h := newHarness(t)

	outcome, err := h.engine.EnqueueOrStart(guildA, trackA)
	assert.Equal(t, OutcomeNotStarted, outcome)
	assert.ErrorIs(t, err, ErrNoVoiceConnection)
	assert.Equal(t, KindPrecondition, KindOf(err))

	snap := h.engine.Snapshot(guildA)
	assert.Nil(t, snap.Current)
	assert.Empty(t, snap.Queue)
	assert.Zero(t, h.factory.count())
}

func TestSessionStartFailureLeavesGuildUsable(t *testing.T) {
	h := newHarness(t)
	h.connected(t)
	h.factory.fail(errors.New("transport refused"))

	outcome, err := h.engine.EnqueueOrStart(guildA, trackA)
	assert.Equal(t, OutcomeNotStarted, outcome)
	assert.ErrorIs(t, err, ErrSessionStart)
	assert.Equal(t, KindTransport, KindOf(err))
	assert.Nil(t, h.engine.Snapshot(guildA).Current)

	outcome, err = h.engine.EnqueueOrStart(guildA, trackB)
	require.NoError(t, err)
	assert.Equal(t, OutcomeStarted, outcome)
	assert.Equal(t, trackB, *h.engine.Snapshot(guildA).Current)
}

func TestStartRefusesLiveSession(t *testing.T) {
	h := newHarness(t)
	h.playing(t, trackA)

	err := h.engine.Start(guildA, trackB)
	assert.ErrorIs(t, err, ErrSessionActive)
	assert.Equal(t, trackA, *h.engine.Snapshot(guildA).Current)
	assert.Equal(t, 1, h.factory.count())
}

func TestSessionEndAdvancesQueue(t *testing.T) {
	h := newHarness(t)
	h.playing(t, trackA, trackB)

	h.factory.session(0).finish(nil)

	snap := h.engine.Snapshot(guildA)
	require.NotNil(t, snap.Current)
	assert.Equal(t, trackB, *snap.Current)
	assert.Empty(t, snap.Queue)
	assert.Equal(t, []string{"Now playing: **B**"}, h.notifier.texts())
	assert.Equal(t, textCh, h.notifier.sent[0].channelID)
}

func TestSessionEndWithErrorNotifiesAndAdvances(t *testing.T) {
	h := newHarness(t)
	h.playing(t, trackA, trackB)

	h.factory.session(0).finish(errBoom)

	snap := h.engine.Snapshot(guildA)
	assert.Equal(t, trackB, *snap.Current)
	assert.Equal(t, []string{"Playback error: `boom`", "Now playing: **B**"}, h.notifier.texts())
}

func TestSessionEndOnEmptyQueueGoesIdle(t *testing.T) {
	h := newHarness(t)
	h.playing(t, trackA)

	h.factory.session(0).finish(nil)

	snap := h.engine.Snapshot(guildA)
	assert.Nil(t, snap.Current)
	assert.Empty(t, snap.Queue)
	assert.True(t, snap.Connected, "natural end keeps the voice connection")
	assert.Empty(t, h.notifier.texts())

	outcome, err := h.engine.EnqueueOrStart(guildA, trackC)
	require.NoError(t, err)
	assert.Equal(t, OutcomeStarted, outcome)
}

func TestAdvanceAfterDroppedConnection(t *testing.T) {
	h := newHarness(t)
	h.playing(t, trackA, trackB, trackC)
	h.voice.last().setConnected(false)

	h.factory.session(0).finish(nil)

	snap := h.engine.Snapshot(guildA)
	assert.Nil(t, snap.Current)
	assert.Equal(t, []library.Track{trackC}, snap.Queue, "the failed track is not retried")
	require.Len(t, h.notifier.texts(), 1)
	assert.Contains(t, h.notifier.texts()[0], "Could not start the next song")

	h.voice.last().setConnected(true)
	require.NoError(t, h.engine.Advance(guildA, false))

	snap = h.engine.Snapshot(guildA)
	assert.Equal(t, trackC, *snap.Current)
	assert.Empty(t, snap.Queue)
	assert.Len(t, h.notifier.texts(), 1, "advance without announce sends nothing")
}

func TestAdvance(t *testing.T) {
	h := newHarness(t)

	require.NoError(t, h.engine.Advance(guildA, true), "empty queue is a no-op")
	assert.Nil(t, h.engine.Snapshot(guildA).Current)

	h.playing(t, trackA, trackB)
	assert.ErrorIs(t, h.engine.Advance(guildA, true), ErrSessionActive)
	assert.Equal(t, []library.Track{trackB}, h.engine.Snapshot(guildA).Queue, "queue untouched while playing")
}

func TestStopThenLateSessionEnd(t *testing.T) {
	h := newHarness(t)
	h.playing(t, trackA, trackB)
	first := h.factory.session(0)
	conn := h.voice.last()

	require.NoError(t, h.engine.Stop(guildA))
	assert.True(t, first.isStopped())

	snap := h.engine.Snapshot(guildA)
	assert.Nil(t, snap.Current)
	assert.Empty(t, snap.Queue)
	assert.False(t, snap.Connected)
	assert.Equal(t, 1, conn.disconnected)

	// A late completion from the stopped session must not resurrect anything.
	first.onEnd(nil)
	first.onEnd(errBoom)

	snap = h.engine.Snapshot(guildA)
	assert.Nil(t, snap.Current)
	assert.Empty(t, snap.Queue)
	assert.Equal(t, 1, h.factory.count())
	assert.Empty(t, h.notifier.texts())
}

func TestStopWhenNotConnected(t *testing.T) {
	h := newHarness(t)
	err := h.engine.Stop(guildA)
	assert.ErrorIs(t, err, ErrNotConnected)
	assert.Equal(t, KindPrecondition, KindOf(err))
}

func TestStopWhileIdleButConnected(t *testing.T) {
	h := newHarness(t)
	h.connected(t)

	require.NoError(t, h.engine.Stop(guildA))
	assert.Equal(t, 1, h.voice.last().disconnected)
	assert.ErrorIs(t, h.engine.Stop(guildA), ErrNotConnected)
}

func TestSkip(t *testing.T) {
	t.Run("nothing playing", func(t *testing.T) {
		h := newHarness(t)
		h.connected(t)

		err := h.engine.Skip(guildA)
		assert.ErrorIs(t, err, ErrNothingPlaying)
		assert.Equal(t, KindPrecondition, KindOf(err))

		snap := h.engine.Snapshot(guildA)
		assert.Nil(t, snap.Current)
		assert.Empty(t, snap.Queue)
		assert.True(t, snap.Connected)
	})

	t.Run("advances like a natural end", func(t *testing.T) {
		h := newHarness(t)
		h.playing(t, trackA, trackB)

		require.NoError(t, h.engine.Skip(guildA))
		assert.True(t, h.factory.session(0).isStopped())

		snap := h.engine.Snapshot(guildA)
		assert.Equal(t, trackB, *snap.Current)
		assert.Empty(t, snap.Queue)
		assert.Equal(t, []string{"Now playing: **B**"}, h.notifier.texts())
	})

	t.Run("works while paused", func(t *testing.T) {
		h := newHarness(t)
		h.playing(t, trackA)
		require.NoError(t, h.engine.Pause(guildA))

		require.NoError(t, h.engine.Skip(guildA))
		assert.Nil(t, h.engine.Snapshot(guildA).Current)
	})
}

func TestPauseResume(t *testing.T) {
	h := newHarness(t)
	assert.ErrorIs(t, h.engine.Pause(guildA), ErrNothingPlaying)
	assert.ErrorIs(t, h.engine.Resume(guildA), ErrNothingPaused)

	h.playing(t, trackA, trackB)
	assert.ErrorIs(t, h.engine.Resume(guildA), ErrNothingPaused)

	require.NoError(t, h.engine.Pause(guildA))
	snap := h.engine.Snapshot(guildA)
	assert.True(t, snap.Paused)
	assert.Equal(t, trackA, *snap.Current)
	assert.Equal(t, []library.Track{trackB}, snap.Queue)
	assert.ErrorIs(t, h.engine.Pause(guildA), ErrNothingPlaying)

	require.NoError(t, h.engine.Resume(guildA))
	snap = h.engine.Snapshot(guildA)
	assert.False(t, snap.Paused)
	assert.Equal(t, trackA, *snap.Current)
	assert.True(t, h.factory.session(0).IsPlaying())
}

func TestEnsureVoice(t *testing.T) {
	ctx := context.Background()

	t.Run("connects once and moves between channels", func(t *testing.T) {
		h := newHarness(t)
		require.NoError(t, h.engine.EnsureVoice(ctx, guildA, voiceA))
		require.NoError(t, h.engine.EnsureVoice(ctx, guildA, voiceA))
		assert.Equal(t, 1, h.voice.count())

		require.NoError(t, h.engine.EnsureVoice(ctx, guildA, "voice-2"))
		assert.Equal(t, 1, h.voice.count())
		assert.Equal(t, []string{"voice-2"}, h.voice.last().moves)
		assert.Equal(t, "voice-2", h.engine.Snapshot(guildA).VoiceChannelID)
	})

	t.Run("reconnects a dropped handle", func(t *testing.T) {
		h := newHarness(t)
		require.NoError(t, h.engine.EnsureVoice(ctx, guildA, voiceA))
		h.voice.last().setConnected(false)

		require.NoError(t, h.engine.EnsureVoice(ctx, guildA, voiceA))
		assert.Equal(t, 2, h.voice.count())
	})

	t.Run("passes not in channel through", func(t *testing.T) {
		h := newHarness(t)
		h.voice.err = fmt.Errorf("lookup: %w", ErrNotInChannel)

		err := h.engine.EnsureVoice(ctx, guildA, voiceA)
		assert.ErrorIs(t, err, ErrNotInChannel)
		assert.NotErrorIs(t, err, ErrConnect)
	})

	t.Run("wraps transport failures", func(t *testing.T) {
		h := newHarness(t)
		h.voice.err = errors.New("gateway timeout")

		err := h.engine.EnsureVoice(ctx, guildA, voiceA)
		assert.ErrorIs(t, err, ErrConnect)
		assert.Equal(t, KindTransport, KindOf(err))
		assert.False(t, h.engine.Snapshot(guildA).Connected)
	})
}

func TestGuildsAreIndependent(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	for _, g := range []string{guildA, guildB} {
		require.NoError(t, h.engine.EnsureVoice(ctx, g, voiceA))
	}

	const perGuild = 40
	var wg sync.WaitGroup
	for _, g := range []string{guildA, guildB} {
		for i := range perGuild {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, err := h.engine.EnqueueOrStart(g, library.Track{Location: fmt.Sprintf("/%s/%d.mp3", g, i), Title: fmt.Sprint(i)})
				assert.NoError(t, err)
			}()
		}
	}
	wg.Wait()

	for _, g := range []string{guildA, guildB} {
		snap := h.engine.Snapshot(g)
		require.NotNil(t, snap.Current)
		assert.Len(t, snap.Queue, perGuild-1)
		for _, tr := range snap.Queue {
			assert.NotEqual(t, *snap.Current, tr, "the queue never holds the current track")
		}
	}
	assert.Equal(t, 2, h.factory.count())
	assert.Equal(t, []string{guildA, guildB}, h.engine.Guilds())
}

func TestRecorderSeesStartedTracks(t *testing.T) {
	h := newHarness(t)
	h.playing(t, trackA, trackB)
	h.factory.session(0).finish(nil)
	_ = h.engine.Snapshot(guildA)

	h.recorder.mu.Lock()
	defer h.recorder.mu.Unlock()
	assert.Equal(t, []string{"A", "B"}, h.recorder.started)
}

func TestShutdownStopsAllGuilds(t *testing.T) {
	h := newHarness(t)
	h.playing(t, trackA)
	_ = h.engine.Snapshot(guildB)

	h.engine.Shutdown()

	assert.True(t, h.factory.session(0).isStopped())
	assert.False(t, h.engine.Snapshot(guildA).Connected)
}

func TestKindOf(t *testing.T) {
	tests := []struct {
		err  error
		want Kind
	}{
		{nil, KindUnknown},
		{library.ErrAmbiguous, KindInput},
		{fmt.Errorf("search: %w", library.ErrNoMatches), KindInput},
		{ErrNothingPaused, KindPrecondition},
		{ErrNotInChannel, KindPrecondition},
		{fmt.Errorf("%w: refused", ErrSessionStart), KindTransport},
		{&RuntimeError{Track: trackA, Err: errBoom}, KindRuntime},
		{errors.New("other"), KindUnknown},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, KindOf(tt.err), "%v", tt.err)
	}
}
