package config

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Carmen-Shannon/arc-go/engine/cache"
)

const sampleJSON = `[
	{
		"targetPage": "slot.html",
		"info": {
			"tracking_modes": {
				"image": {
					"mindFile": {"mind_src": "https://cdn.example/targets.mind"},
					"tracks": [
						{
							"scenes": [
								{
									"scene_id": "intro",
									"assets": [
										{
											"asset_id": "poster",
											"type": "Image",
											"src": "https://cdn.example/poster.png",
											"scale": [0.5, 0.5, 0.5]
										},
										{
											"asset_id": "mascot",
											"type": "3D Model",
											"src": "https://cdn.example/mascot.glb",
											"action": {
												"asset_animation": "Wave",
												"loop_sound": "https://cdn.example/chime.mp3"
											}
										}
									]
								},
								{
									"scene_id": "detail",
									"assets": [
										{
											"asset_id": "poster",
											"type": "Image",
											"src": "https://cdn.example/poster.png"
										}
									]
								}
							]
						}
					]
				},
				"slot": {
					"mindFile": {"mind_src": "https://cdn.example/slot.mind"},
					"tracks": [{"scenes": []}],
					"setting": {
						"ai_assistance": {
							"asset_model": {
								"asset_id": "assistant",
								"type": "3D Model",
								"src": "https://cdn.example/assistant.glb"
							}
						}
					}
				}
			}
		},
		"branding": {
			"mind_image": {
				"0": "https://cdn.example/preview_a.png",
				"1": "https://cdn.example/preview_b.png"
			},
			"icon": "https://cdn.example/icon.png"
		}
	}
]`

const sampleYAML = `
info:
  tracking_modes:
    image:
      mindFile:
        mind_src: https://cdn.example/targets.mind
      tracks:
        - scenes:
            - scene_id: intro
              assets:
                - asset_id: poster
                  type: Image
                  src: https://cdn.example/poster.png
`

func TestParseJSONTopLevelArray(t *testing.T) {
	doc, err := ParseJSON([]byte(sampleJSON))
	require.NoError(t, err)

	assert.Equal(t, "slot.html", doc.Target())

	image := doc.Mode("image")
	require.NotNil(t, image)
	assert.Equal(t, "https://cdn.example/targets.mind", image.MindFile.MindSrc)
	require.Len(t, image.Tracks, 1)
	require.Len(t, image.Tracks[0].Scenes, 2)
	assert.Equal(t, "intro", image.Tracks[0].Scenes[0].SceneID)
	require.Len(t, image.Tracks[0].Scenes[0].Assets, 2)
	assert.Equal(t, "Wave", image.Tracks[0].Scenes[0].Assets[1].Action.AssetAnimation)

	slot := doc.Mode("slot")
	require.NotNil(t, slot)
	require.NotNil(t, slot.Setting)
	require.NotNil(t, slot.Setting.AIAssistance)
	require.NotNil(t, slot.Setting.AIAssistance.AssetModel)
	assert.Equal(t, "assistant", slot.Setting.AIAssistance.AssetModel.AssetID)

	assert.Nil(t, doc.Mode("face"))
}

func TestParseYAML(t *testing.T) {
	doc, err := ParseYAML([]byte(sampleYAML))
	require.NoError(t, err)

	require.NotNil(t, doc.Mode("image"))
	assert.Equal(t, "https://cdn.example/targets.mind", doc.Mode("image").MindFile.MindSrc)
	assert.Nil(t, doc.Mode("slot"))
}

func TestTargetDefault(t *testing.T) {
	doc, err := ParseYAML([]byte(sampleYAML))
	require.NoError(t, err)
	assert.Equal(t, "image.html", doc.Target())
}

func TestParseRejectsMissingInfo(t *testing.T) {
	_, err := ParseJSON([]byte(`{"targetPage": "image.html"}`))
	assert.ErrorIs(t, err, ErrInvalidDocument)

	_, err = ParseJSON([]byte(`[]`))
	assert.Error(t, err)

	_, err = ParseJSON([]byte(`not json`))
	assert.Error(t, err)
}

func TestLoadByExtension(t *testing.T) {
	dir := t.TempDir()

	jsonPath := filepath.Join(dir, "config.json")
	require.NoError(t, os.WriteFile(jsonPath, []byte(sampleJSON), 0o644))
	doc, err := Load(jsonPath)
	require.NoError(t, err)
	assert.Equal(t, "slot.html", doc.Target())

	yamlPath := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(yamlPath, []byte(sampleYAML), 0o644))
	doc, err = Load(yamlPath)
	require.NoError(t, err)
	assert.NotNil(t, doc.Mode("image"))

	_, err = Load(filepath.Join(dir, "missing.json"))
	assert.Error(t, err)
}

func TestAssetURLsSweep(t *testing.T) {
	doc, err := ParseJSON([]byte(sampleJSON))
	require.NoError(t, err)

	urls := doc.AssetURLs()
	assert.ElementsMatch(t, []string{
		"https://cdn.example/targets.mind",
		"https://cdn.example/poster.png",
		"https://cdn.example/mascot.glb",
		"https://cdn.example/chime.mp3",
		"https://cdn.example/slot.mind",
		"https://cdn.example/assistant.glb",
		"https://cdn.example/preview_a.png",
		"https://cdn.example/preview_b.png",
		"https://cdn.example/icon.png",
	}, urls)

	// the poster src appears twice in the document but once in the sweep
	count := 0
	for _, u := range urls {
		if u == "https://cdn.example/poster.png" {
			count++
		}
	}
	assert.Equal(t, 1, count)
}

type countingFetcher struct {
	payloads map[string][]byte
	fetches  atomic.Int64
}

func (f *countingFetcher) Fetch(_ context.Context, url string) ([]byte, error) {
	f.fetches.Add(1)
	data, ok := f.payloads[url]
	if !ok {
		return nil, &cache.FetchError{URL: url, Status: 404}
	}
	return data, nil
}

func TestPreloadWarmsCache(t *testing.T) {
	fetcher := &countingFetcher{payloads: map[string][]byte{
		"https://cdn.example/a.png": []byte("a"),
		"https://cdn.example/b.png": []byte("b"),
	}}
	c, err := cache.New(cache.WithFetcher(fetcher))
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })

	var progress atomic.Int64
	p := NewPreloader(
		WithCache(c),
		WithWorkers(2),
		WithOnProgress(func(done, total int, _ string) {
			progress.Add(1)
		}),
	)

	loaded := p.Preload(context.Background(), []string{
		"https://cdn.example/a.png",
		"https://cdn.example/b.png",
		"https://cdn.example/broken.png",
	})
	assert.Equal(t, 2, loaded)
	assert.Equal(t, int64(3), progress.Load())

	assert.True(t, c.Contains(context.Background(), "https://cdn.example/a.png"))

	// a second pass serves from the cache without refetching
	before := fetcher.fetches.Load()
	loaded = p.Preload(context.Background(), []string{
		"https://cdn.example/a.png",
		"https://cdn.example/b.png",
	})
	assert.Equal(t, 2, loaded)
	assert.Equal(t, before, fetcher.fetches.Load())
}

func TestPreloadDocument(t *testing.T) {
	fetcher := &countingFetcher{payloads: map[string][]byte{
		"https://cdn.example/targets.mind": []byte("mind"),
		"https://cdn.example/poster.png":   []byte("poster"),
	}}
	c, err := cache.New(cache.WithFetcher(fetcher))
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })

	doc, err := ParseYAML([]byte(sampleYAML))
	require.NoError(t, err)

	p := NewPreloader(WithCache(c))
	assert.Equal(t, 2, p.PreloadDocument(context.Background(), doc))
}

func TestPreloadWithoutCache(t *testing.T) {
	p := NewPreloader()
	assert.Zero(t, p.Preload(context.Background(), []string{"https://cdn.example/a.png"}))
}
