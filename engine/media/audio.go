package media

import (
	"bytes"
	"fmt"
	"io"
	"sync"

	"github.com/faiface/beep"
	"github.com/faiface/beep/mp3"
	"github.com/faiface/beep/speaker"
	"github.com/faiface/beep/vorbis"
	"github.com/faiface/beep/wav"
	"github.com/h2non/filetype"
)

// AudioHandle plays a decoded audio payload as an endless loop through the
// process speaker. Without speaker initialization the handle still tracks play
// state, it just produces no sound.
type AudioHandle struct {
	mu      sync.Mutex
	playing bool
	started bool

	ctrl   *beep.Ctrl
	format beep.Format
}

// NewAudioHandle decodes the payload and prepares a paused, endlessly looping
// stream. MP3, WAV, and Ogg Vorbis containers are recognized.
//
// Parameters:
//   - data: the raw audio payload
//
// Returns:
//   - *AudioHandle: the new handle, paused
//   - error: any error sniffing or decoding the payload
func NewAudioHandle(data []byte) (*AudioHandle, error) {
	kind, err := filetype.Match(data)
	if err != nil {
		return nil, fmt.Errorf("sniff audio container: %w", err)
	}

	rc := io.NopCloser(bytes.NewReader(data))
	var (
		streamer beep.StreamSeekCloser
		format   beep.Format
	)
	switch kind.Extension {
	case "mp3":
		streamer, format, err = mp3.Decode(rc)
	case "wav":
		streamer, format, err = wav.Decode(rc)
	case "ogg":
		streamer, format, err = vorbis.Decode(rc)
	default:
		return nil, fmt.Errorf("unsupported audio container %q", kind.Extension)
	}
	if err != nil {
		return nil, fmt.Errorf("decode audio: %w", err)
	}

	return &AudioHandle{
		ctrl:   &beep.Ctrl{Streamer: beep.Loop(-1, streamer), Paused: true},
		format: format,
	}, nil
}

// Play starts or resumes the loop. The stream is handed to the speaker on the
// first call only. Idempotent.
func (a *AudioHandle) Play() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if !a.started {
		speaker.Play(a.ctrl)
		a.started = true
	}
	speaker.Lock()
	a.ctrl.Paused = false
	speaker.Unlock()
	a.playing = true
}

// Pause suspends the loop without rewinding it. Idempotent.
func (a *AudioHandle) Pause() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.started {
		speaker.Lock()
		a.ctrl.Paused = true
		speaker.Unlock()
	}
	a.playing = false
}

// Playing reports whether the loop is currently marked playing.
//
// Returns:
//   - bool: true when playing
func (a *AudioHandle) Playing() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.playing
}

// Format returns the decoded stream's sample format.
//
// Returns:
//   - beep.Format: the sample rate and channel layout
func (a *AudioHandle) Format() beep.Format {
	return a.format
}
