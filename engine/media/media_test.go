package media

import (
	"bytes"
	"encoding/binary"
	"image"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// box frames a payload as an MP4 box.
func box(name string, payload []byte) []byte {
	b := make([]byte, 8+len(payload))
	binary.BigEndian.PutUint32(b, uint32(len(b)))
	copy(b[4:8], name)
	copy(b[8:], payload)
	return b
}

// mp4Fixture builds the minimal box tree ProbeVideo needs: an ftyp box for
// container sniffing and a moov/trak/tkhd chain carrying the dimensions.
func mp4Fixture(version byte, width, height uint32) []byte {
	size := 84
	offset := 76
	if version == 1 {
		size = 96
		offset = 88
	}
	tkhd := make([]byte, size)
	tkhd[0] = version
	binary.BigEndian.PutUint32(tkhd[offset:], width<<16)
	binary.BigEndian.PutUint32(tkhd[offset+4:], height<<16)

	ftyp := box("ftyp", []byte("isom\x00\x00\x00\x00"))
	moov := box("moov", box("trak", box("tkhd", tkhd)))
	return append(ftyp, moov...)
}

func TestProbeVideoV0(t *testing.T) {
	dims, err := ProbeVideo(mp4Fixture(0, 640, 360))
	require.NoError(t, err)
	assert.Equal(t, 640, dims.Width)
	assert.Equal(t, 360, dims.Height)
}

func TestProbeVideoV1(t *testing.T) {
	dims, err := ProbeVideo(mp4Fixture(1, 1920, 1080))
	require.NoError(t, err)
	assert.Equal(t, 1920, dims.Width)
	assert.Equal(t, 1080, dims.Height)
}

func TestProbeVideoRejectsNonMP4(t *testing.T) {
	_, err := ProbeVideo([]byte("definitely not a video payload"))
	assert.Error(t, err)
}

func TestProbeVideoMissingTrackHeader(t *testing.T) {
	ftyp := box("ftyp", []byte("isom\x00\x00\x00\x00"))
	moov := box("moov", box("trak", nil))
	_, err := ProbeVideo(append(ftyp, moov...))
	assert.ErrorContains(t, err, "tkhd")
}

func pngFixture(t *testing.T, w, h int) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, w, h))))
	return buf.Bytes()
}

func TestProbeImage(t *testing.T) {
	dims, err := ProbeImage(pngFixture(t, 320, 240))
	require.NoError(t, err)
	assert.Equal(t, 320, dims.Width)
	assert.Equal(t, 240, dims.Height)
	assert.InDelta(t, 320.0/240.0, dims.Aspect(), 1e-9)
}

func TestProbeImageGarbage(t *testing.T) {
	_, err := ProbeImage([]byte{0xde, 0xad, 0xbe, 0xef})
	assert.Error(t, err)
}

func TestVideoHandleDefaults(t *testing.T) {
	v, err := NewVideoHandle(mp4Fixture(0, 640, 360))
	require.NoError(t, err)

	assert.True(t, v.Loop)
	assert.True(t, v.Muted)
	assert.True(t, v.Inline)
	assert.False(t, v.Playing())
	assert.InDelta(t, 640.0/360.0, v.AspectRatio(), 1e-9)

	v.Play()
	assert.True(t, v.Playing())
	v.Play()
	assert.True(t, v.Playing())
	v.Pause()
	assert.False(t, v.Playing())
}

// wavFixture builds a minimal 16-bit mono PCM WAV payload.
func wavFixture(samples int) []byte {
	dataLen := samples * 2
	var buf bytes.Buffer
	buf.WriteString("RIFF")
	_ = binary.Write(&buf, binary.LittleEndian, uint32(36+dataLen))
	buf.WriteString("WAVE")
	buf.WriteString("fmt ")
	_ = binary.Write(&buf, binary.LittleEndian, uint32(16))
	_ = binary.Write(&buf, binary.LittleEndian, uint16(1))     // PCM
	_ = binary.Write(&buf, binary.LittleEndian, uint16(1))     // mono
	_ = binary.Write(&buf, binary.LittleEndian, uint32(8000))  // sample rate
	_ = binary.Write(&buf, binary.LittleEndian, uint32(16000)) // byte rate
	_ = binary.Write(&buf, binary.LittleEndian, uint16(2))     // block align
	_ = binary.Write(&buf, binary.LittleEndian, uint16(16))    // bits per sample
	buf.WriteString("data")
	_ = binary.Write(&buf, binary.LittleEndian, uint32(dataLen))
	buf.Write(make([]byte, dataLen))
	return buf.Bytes()
}

func TestAudioHandleWav(t *testing.T) {
	a, err := NewAudioHandle(wavFixture(64))
	require.NoError(t, err)

	assert.False(t, a.Playing())
	assert.Equal(t, 1, a.Format().NumChannels)

	a.Play()
	assert.True(t, a.Playing())
	a.Pause()
	assert.False(t, a.Playing())
	a.Pause()
	assert.False(t, a.Playing())
}

func TestAudioHandleUnsupportedContainer(t *testing.T) {
	_, err := NewAudioHandle([]byte("plain text, not audio"))
	assert.Error(t, err)
}
