package discord

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/chaezuha/Discord-MP3-Bot/pkg/retrylimit"
	"github.com/rs/zerolog/log"
)

const (
	notifyQueueSize   = 128
	notifyMaxAttempts = 3
	notifyTimeout     = 30 * time.Second
)

var (
	ErrNotifierClosed = errors.New("notifier is closed")
	ErrNotifierFull   = errors.New("notification queue is full")
)

// SendFunc posts text to a channel.
type SendFunc func(channelID, text string) error

type notification struct {
	channelID string
	text      string
}

// Notifier posts channel messages in order from a single worker, so
// playback never waits on the REST API.
type Notifier struct {
	send  SendFunc
	lim   *retrylimit.AdaptiveLimiter
	retry retrylimit.RetryConfig

	mu     sync.Mutex
	closed bool
	queue  chan notification
	done   chan struct{}
}

func NewNotifier(send SendFunc) *Notifier {
	cfg := retrylimit.DefaultRetryConfig()
	cfg.MaxAttempts = notifyMaxAttempts
	return newNotifier(send, retrylimit.NewAdaptiveLimiter(5, 1, 10, 1, 0.5), cfg)
}

// lim may be nil.
func newNotifier(send SendFunc, lim *retrylimit.AdaptiveLimiter, cfg retrylimit.RetryConfig) *Notifier {
	n := &Notifier{
		send:  send,
		lim:   lim,
		retry: cfg,
		queue: make(chan notification, notifyQueueSize),
		done:  make(chan struct{}),
	}
	go n.run()
	return n
}

// Send queues a message. It does not block.
func (n *Notifier) Send(channelID, text string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.closed {
		return ErrNotifierClosed
	}
	select {
	case n.queue <- notification{channelID: channelID, text: text}:
		return nil
	default:
		return ErrNotifierFull
	}
}

// Close stops accepting messages and waits for queued ones to go out.
func (n *Notifier) Close() {
	n.mu.Lock()
	if !n.closed {
		n.closed = true
		close(n.queue)
	}
	n.mu.Unlock()
	<-n.done
}

func (n *Notifier) run() {
	defer close(n.done)
	for msg := range n.queue {
		n.deliver(msg)
	}
}

func (n *Notifier) deliver(msg notification) {
	ctx, cancel := context.WithTimeout(context.Background(), notifyTimeout)
	defer cancel()

	err := retrylimit.WithRetryConfig(ctx, func() error {
		return wrapRESTError(n.send(msg.channelID, msg.text))
	}, n.lim, n.retry)
	if err != nil {
		log.Error().Err(err).Str("channel", msg.channelID).Msg("[Notifier] Failed to send message")
	}
}

// restError exposes the HTTP status of a discordgo REST failure.
type restError struct {
	*discordgo.RESTError
}

func (e restError) Unwrap() error { return e.RESTError }

func (e restError) StatusCode() int {
	if e.Response == nil {
		return 0
	}
	return e.Response.StatusCode
}

func wrapRESTError(err error) error {
	var re *discordgo.RESTError
	if errors.As(err, &re) {
		return restError{re}
	}
	return err
}
