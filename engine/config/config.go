// package config reads the experience document that drives the runtime: which
// tracking modes exist, the target file and tracks per mode, every scene and
// asset declaration, and optional settings such as the assistant overlay.
// Documents load from JSON or YAML and keep their raw form so the asset
// scanner can sweep vendor-specific corners without schema updates.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/Carmen-Shannon/arc-go/common"
	"github.com/Carmen-Shannon/arc-go/engine/asset"
)

// defaultTargetPage mirrors the document's fallback experience page.
const defaultTargetPage = "image.html"

// ErrInvalidDocument is returned when a document is missing its info block.
var ErrInvalidDocument = errors.New("invalid configuration document: missing info")

// Document is one experience configuration.
type Document struct {
	// TargetPage names the experience page to route to.
	TargetPage string `json:"targetPage,omitempty" yaml:"targetPage,omitempty"`

	// Info holds the tracking mode configurations.
	Info Info `json:"info" yaml:"info"`

	raw any
}

// Info groups the document's tracking modes.
type Info struct {
	// TrackingModes holds one entry per supported experience kind.
	TrackingModes TrackingModes `json:"tracking_modes" yaml:"tracking_modes"`
}

// TrackingModes enumerates the experience kinds a document can configure.
type TrackingModes struct {
	// Image is the plain image-tracking experience.
	Image *Mode `json:"image,omitempty" yaml:"image,omitempty"`

	// Slot is the slot game experience.
	Slot *Mode `json:"slot,omitempty" yaml:"slot,omitempty"`
}

// Mode configures one experience kind: its target file, its tracks, and
// optional settings.
type Mode struct {
	// MindFile locates the compiled tracking target data.
	MindFile MindFile `json:"mindFile" yaml:"mindFile"`

	// Tracks holds one entry per tracked target, in anchor-index order.
	Tracks []Track `json:"tracks" yaml:"tracks"`

	// Setting holds optional per-mode settings.
	Setting *Setting `json:"setting,omitempty" yaml:"setting,omitempty"`
}

// MindFile locates compiled tracking target data.
type MindFile struct {
	// MindSrc is the target data URL.
	MindSrc string `json:"mind_src" yaml:"mind_src"`
}

// Track is the scene set bound to one tracked target.
type Track struct {
	// Scenes are the track's switchable scenes. The first is mounted on start.
	Scenes []asset.SceneDescriptor `json:"scenes" yaml:"scenes"`
}

// Setting holds optional per-mode settings.
type Setting struct {
	// AIAssistance configures the assistant overlay, nil to disable it.
	AIAssistance *AIAssistance `json:"ai_assistance,omitempty" yaml:"ai_assistance,omitempty"`
}

// AIAssistance configures the assistant overlay.
type AIAssistance struct {
	// AssetModel declares the assistant's model asset.
	AssetModel *asset.Descriptor `json:"asset_model,omitempty" yaml:"asset_model,omitempty"`
}

// Load reads a document from disk, choosing the decoder by file extension
// (.yaml/.yml for YAML, anything else JSON).
//
// Parameters:
//   - path: the document path
//
// Returns:
//   - *Document: the parsed document
//   - error: any error reading or decoding the file
func Load(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %q: %w", path, err)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return ParseYAML(data)
	default:
		return ParseJSON(data)
	}
}

// ParseJSON decodes a JSON document. A top-level array is accepted and its
// first element used, matching how published configurations are batched.
//
// Parameters:
//   - data: the raw JSON
//
// Returns:
//   - *Document: the parsed document
//   - error: any error decoding or validating it
func ParseJSON(data []byte) (*Document, error) {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse config JSON: %w", err)
	}
	raw, err := firstElement(raw)
	if err != nil {
		return nil, err
	}

	canonical, err := json.Marshal(raw)
	if err != nil {
		return nil, fmt.Errorf("normalize config: %w", err)
	}
	var doc Document
	if err := json.Unmarshal(canonical, &doc); err != nil {
		return nil, fmt.Errorf("parse config JSON: %w", err)
	}
	doc.raw = raw
	return validated(&doc)
}

// ParseYAML decodes a YAML document, with the same top-level array handling
// as ParseJSON.
//
// Parameters:
//   - data: the raw YAML
//
// Returns:
//   - *Document: the parsed document
//   - error: any error decoding or validating it
func ParseYAML(data []byte) (*Document, error) {
	var raw any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse config YAML: %w", err)
	}
	raw, err := firstElement(raw)
	if err != nil {
		return nil, err
	}

	canonical, err := yaml.Marshal(raw)
	if err != nil {
		return nil, fmt.Errorf("normalize config: %w", err)
	}
	var doc Document
	if err := yaml.Unmarshal(canonical, &doc); err != nil {
		return nil, fmt.Errorf("parse config YAML: %w", err)
	}
	doc.raw = raw
	return validated(&doc)
}

func firstElement(raw any) (any, error) {
	arr, ok := raw.([]any)
	if !ok {
		return raw, nil
	}
	if len(arr) == 0 {
		return nil, errors.New("config array is empty")
	}
	return arr[0], nil
}

func validated(doc *Document) (*Document, error) {
	if doc.Info.TrackingModes.Image == nil && doc.Info.TrackingModes.Slot == nil {
		return nil, ErrInvalidDocument
	}
	return doc, nil
}

// Target returns the experience page, falling back to the default when the
// document leaves it out.
//
// Returns:
//   - string: the target page
func (d *Document) Target() string {
	return common.Coalesce(d.TargetPage, defaultTargetPage)
}

// Mode returns the named tracking mode configuration.
//
// Parameters:
//   - name: "image" or "slot"
//
// Returns:
//   - *Mode: the mode, nil when the document does not configure it
func (d *Document) Mode(name string) *Mode {
	switch name {
	case "image":
		return d.Info.TrackingModes.Image
	case "slot":
		return d.Info.TrackingModes.Slot
	default:
		return nil
	}
}
