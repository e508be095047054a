package stream

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"layeh.com/gopus"
)

// Encoder turns one frame of interleaved PCM into an opus packet.
// *gopus.Encoder satisfies it.
type Encoder interface {
	Encode(pcm []int16, frameSize, maxDataBytes int) ([]byte, error)
}

// Sink is the sending side of a voice connection.
type Sink interface {
	Opus() chan<- []byte
	Speaking(speaking bool) error
}

// NewOpusEncoder returns a gopus encoder for 48kHz stereo music.
func NewOpusEncoder() (Encoder, error) {
	enc, err := gopus.NewEncoder(sampleRate, channels, gopus.Audio)
	if err != nil {
		return nil, fmt.Errorf("encoder error: %w", err)
	}
	return enc, nil
}

// errStopped is returned by the pump when the session was told to stop.
var errStopped = errors.New("stopped")

// pump reads PCM frames from r until it runs dry, encodes them and sends
// the packets to sink. wait is called before every frame and returns
// errStopped once the session is stopped.
func pump(r io.Reader, enc Encoder, sink Sink, wait func() error, stop <-chan struct{}) error {
	pcmBuf := make([]byte, frameSize*channels*2)
	intBuf := make([]int16, frameSize*channels)
	out := sink.Opus()

	for {
		if err := wait(); err != nil {
			return err
		}

		if _, err := io.ReadFull(r, pcmBuf); err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
				return nil
			}
			return fmt.Errorf("read error: %w", err)
		}

		for i := range intBuf {
			intBuf[i] = int16(binary.LittleEndian.Uint16(pcmBuf[i*2 : i*2+2]))
		}

		opus, err := enc.Encode(intBuf, frameSize, len(pcmBuf))
		if err != nil {
			return fmt.Errorf("encode error: %w", err)
		}

		select {
		case out <- opus:
		case <-stop:
			return errStopped
		}
	}
}
