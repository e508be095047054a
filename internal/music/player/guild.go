package player

import (
	"errors"

	"github.com/chaezuha/Discord-MP3-Bot/internal/library"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

const mailboxSize = 64

var errTaskPanicked = errors.New("player task panicked")

// guildState is only ever touched from its guild's loop goroutine.
type guildState struct {
	queue     []library.Track
	current   *library.Track
	session   Session
	sessionID uuid.UUID
	conn      VoiceConn
	notify    string
}

// guildPlayer serializes every operation on one guild through a mailbox
// drained by a single goroutine.
type guildPlayer struct {
	id    string
	inbox chan func(*guildState)
	state guildState
}

func newGuildPlayer(id string) *guildPlayer {
	g := &guildPlayer{
		id:    id,
		inbox: make(chan func(*guildState), mailboxSize),
	}
	go g.run()
	return g
}

func (g *guildPlayer) run() {
	for fn := range g.inbox {
		g.exec(fn)
	}
}

func (g *guildPlayer) exec(fn func(*guildState)) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Str("guild", g.id).Interface("panic", r).Msg("[Player] Recovered from panic in guild task")
		}
	}()
	fn(&g.state)
}

// call runs fn on the guild loop and waits for its result. It must not be
// used from inside the loop.
func (g *guildPlayer) call(fn func(*guildState) error) error {
	done := make(chan error, 1)
	g.inbox <- func(st *guildState) {
		err := errTaskPanicked
		defer func() { done <- err }()
		err = fn(st)
	}
	return <-done
}

// post queues fn without waiting. It never blocks the caller, including
// the loop itself.
func (g *guildPlayer) post(fn func(*guildState)) {
	select {
	case g.inbox <- fn:
	default:
		log.Warn().Str("guild", g.id).Msg("[Player] Mailbox full, deferring task")
		go func() { g.inbox <- fn }()
	}
}
