// package media decodes enough of image, video, and audio payloads to size and
// drive them: intrinsic dimensions for planar surfaces, and playback handles
// for video and looped audio.
package media

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"image"

	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/h2non/filetype"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"

	"github.com/Carmen-Shannon/arc-go/common"
)

// ProbeImage decodes an image header and returns its intrinsic dimensions.
// PNG, JPEG, GIF, WebP, and BMP are recognized.
//
// Parameters:
//   - data: the raw image payload
//
// Returns:
//   - common.Dimensions: the intrinsic width and height in pixels
//   - error: any error decoding the image header
func ProbeImage(data []byte) (common.Dimensions, error) {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return common.Dimensions{}, fmt.Errorf("decode image header: %w", err)
	}
	return common.Dimensions{Width: cfg.Width, Height: cfg.Height}, nil
}

// ProbeVideo reads the track header of an MP4 payload and returns the video's
// intrinsic dimensions. Only the MP4 container is supported.
//
// Parameters:
//   - data: the raw video payload
//
// Returns:
//   - common.Dimensions: the intrinsic width and height in pixels
//   - error: any error sniffing the container or walking its boxes
func ProbeVideo(data []byte) (common.Dimensions, error) {
	kind, err := filetype.Match(data)
	if err != nil {
		return common.Dimensions{}, fmt.Errorf("sniff video container: %w", err)
	}
	if kind.Extension != "mp4" {
		return common.Dimensions{}, fmt.Errorf("unsupported video container %q", kind.Extension)
	}

	moov, err := findBox(data, "moov")
	if err != nil {
		return common.Dimensions{}, err
	}
	trak, err := findBox(moov, "trak")
	if err != nil {
		return common.Dimensions{}, err
	}
	tkhd, err := findBox(trak, "tkhd")
	if err != nil {
		return common.Dimensions{}, err
	}

	// width and height are 16.16 fixed point at the end of the track header,
	// after the matrix. Their offset depends on the box version.
	offset := 76
	if len(tkhd) > 0 && tkhd[0] == 1 {
		offset = 88
	}
	if len(tkhd) < offset+8 {
		return common.Dimensions{}, fmt.Errorf("track header truncated at %d bytes", len(tkhd))
	}
	width := binary.BigEndian.Uint32(tkhd[offset:]) >> 16
	height := binary.BigEndian.Uint32(tkhd[offset+4:]) >> 16
	if width == 0 || height == 0 {
		return common.Dimensions{}, fmt.Errorf("track header reports degenerate size %dx%d", width, height)
	}
	return common.Dimensions{Width: int(width), Height: int(height)}, nil
}

// findBox scans a sibling run of MP4 boxes for the first box with the given
// type and returns its payload.
func findBox(data []byte, boxType string) ([]byte, error) {
	for len(data) >= 8 {
		size := uint64(binary.BigEndian.Uint32(data))
		name := string(data[4:8])
		header := uint64(8)
		if size == 1 {
			if len(data) < 16 {
				break
			}
			size = binary.BigEndian.Uint64(data[8:16])
			header = 16
		} else if size == 0 {
			size = uint64(len(data))
		}
		if size < header || size > uint64(len(data)) {
			return nil, fmt.Errorf("malformed %q box of size %d", name, size)
		}
		if name == boxType {
			return data[header:size], nil
		}
		data = data[size:]
	}
	return nil, fmt.Errorf("box %q not found", boxType)
}
