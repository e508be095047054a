// Package stream decodes local audio files with ffmpeg and pushes opus
// frames to a voice connection.
package stream

import (
	"bytes"
	"fmt"
	"io"
	"os/exec"
	"strconv"
	"sync"
	"sync/atomic"
)

const (
	channels   = 2
	sampleRate = 48000
	frameSize  = 960 // 20ms at 48kHz

	maxStderr = 4 << 10
)

// Source opens a PCM stream (s16le, 48kHz, stereo) for a file.
type Source interface {
	Open(location string) (io.ReadCloser, error)
}

// FFmpeg decodes files by running an ffmpeg binary.
type FFmpeg struct {
	Path string
}

func (f FFmpeg) Open(location string) (io.ReadCloser, error) {
	path := f.Path
	if path == "" {
		path = "ffmpeg"
	}

	cmd := exec.Command(path,
		"-nostdin",
		"-i", location,
		"-vn",
		"-f", "s16le",
		"-ar", strconv.Itoa(sampleRate),
		"-ac", strconv.Itoa(channels),
		"-loglevel", "warning",
		"pipe:1",
	)

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("stdout pipe error: %w", err)
	}
	p := &process{cmd: cmd, stdout: stdout}
	cmd.Stderr = &limitedBuffer{max: maxStderr, buf: &p.stderr}

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("command start error: %w", err)
	}
	return p, nil
}

// process is the stdout of a running ffmpeg. Close kills the process
// unless its output was read to the end, then reports the exit status.
type process struct {
	cmd    *exec.Cmd
	stdout io.ReadCloser
	stderr bytes.Buffer
	eof    atomic.Bool

	once sync.Once
	err  error
}

func (p *process) Read(b []byte) (int, error) {
	n, err := p.stdout.Read(b)
	if err == io.EOF {
		p.eof.Store(true)
	}
	return n, err
}

func (p *process) Close() error {
	p.once.Do(func() {
		if !p.eof.Load() {
			_ = p.cmd.Process.Kill()
		}
		if err := p.cmd.Wait(); err != nil && p.eof.Load() {
			p.err = fmt.Errorf("ffmpeg: %w: %s", err, bytes.TrimSpace(p.stderr.Bytes()))
		}
	})
	return p.err
}

type limitedBuffer struct {
	mu  sync.Mutex
	max int
	buf *bytes.Buffer
}

func (l *limitedBuffer) Write(b []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if room := l.max - l.buf.Len(); room > 0 {
		l.buf.Write(b[:min(room, len(b))])
	}
	return len(b), nil
}
