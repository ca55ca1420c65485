package config

import "strings"

// assetURLKeys are the document fields whose string values reference
// downloadable assets.
var assetURLKeys = map[string]struct{}{
	"src":         {},
	"asset_image": {},
	"mind_src":    {},
	"background":  {},
	"icon":        {},
	"src_left":    {},
	"src_right":   {},
	"loop_sound":  {},
}

// mindImageKey holds a map of tracked-image previews. Every string value under
// it is an asset URL regardless of key name.
const mindImageKey = "mind_image"

// AssetURLs sweeps the document's raw form and collects every asset URL it
// references, deduplicated in discovery order. Unknown vendor fields nested
// anywhere in the document are covered as long as they use the known key names.
//
// Returns:
//   - []string: the referenced asset URLs
func (d *Document) AssetURLs() []string {
	seen := make(map[string]struct{})
	var urls []string
	add := func(v string) {
		v = strings.TrimSpace(v)
		if v == "" {
			return
		}
		if _, ok := seen[v]; ok {
			return
		}
		seen[v] = struct{}{}
		urls = append(urls, v)
	}
	scanValue(d.raw, add)
	return urls
}

func scanValue(v any, add func(string)) {
	switch node := v.(type) {
	case map[string]any:
		for key, val := range node {
			if key == mindImageKey {
				if images, ok := val.(map[string]any); ok {
					for _, img := range images {
						if s, ok := img.(string); ok {
							add(s)
						}
					}
					continue
				}
			}
			if _, ok := assetURLKeys[key]; ok {
				if s, ok := val.(string); ok {
					add(s)
					continue
				}
			}
			scanValue(val, add)
		}
	case []any:
		for _, item := range node {
			scanValue(item, add)
		}
	}
}
