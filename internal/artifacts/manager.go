// Package artifacts caches expensive intermediate results (downloaded
// audio, audio chunks) under a content-addressed directory layout so
// repeated or resumed jobs skip recomputation.
package artifacts

import (
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/jchen-labs/media-summary/internal/models"
)

// Manager stores pipeline artifacts under a root directory:
//
//	<root>/downloads/<key>/metadata.json  (plus the audio file itself)
//	<root>/chunks/<N>min/<audioKey>/      (chunk scratch space)
//
// Concurrent writers for the same key race last-write-wins; both compute
// the same key from the same inputs and produce equivalent content.
type Manager struct {
	root string
}

// New creates a Manager rooted at dir and ensures the layout exists.
func New(dir string) (*Manager, error) {
	m := &Manager{root: dir}
	for _, sub := range []string{"downloads", "chunks"} {
		if err := os.MkdirAll(filepath.Join(dir, sub), 0755); err != nil {
			return nil, fmt.Errorf("create artifacts dir: %w", err)
		}
	}
	return m, nil
}

// Key derives a deterministic artifact key from a parameter set. The hash
// is computed over parameter names in sorted order, so identical inputs
// always produce the identical key regardless of map iteration order.
func (m *Manager) Key(params map[string]interface{}) string {
	names := make([]string, 0, len(params))
	for name := range params {
		names = append(names, name)
	}
	sort.Strings(names)

	var b strings.Builder
	for _, name := range names {
		fmt.Fprintf(&b, "%s=%v;", name, params[name])
	}

	sum := md5.Sum([]byte(b.String()))
	return hex.EncodeToString(sum[:])[:16]
}

// AudioFolder returns the download folder for a key.
func (m *Manager) AudioFolder(key string) string {
	return filepath.Join(m.root, "downloads", key)
}

// GetAudio reads the cached metadata for a prior download. A missing
// entry is a normal not-found result: (nil, nil).
func (m *Manager) GetAudio(key string) (*models.AudioResult, error) {
	metaPath := filepath.Join(m.AudioFolder(key), "metadata.json")
	data, err := os.ReadFile(metaPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read audio metadata: %w", err)
	}

	var result models.AudioResult
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, fmt.Errorf("parse audio metadata: %w", err)
	}
	return &result, nil
}

// SaveAudio persists download metadata for later GetAudio lookups.
func (m *Manager) SaveAudio(key string, result *models.AudioResult) error {
	folder := m.AudioFolder(key)
	if err := os.MkdirAll(folder, 0755); err != nil {
		return fmt.Errorf("create audio folder: %w", err)
	}

	data, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("marshal audio metadata: %w", err)
	}

	if err := os.WriteFile(filepath.Join(folder, "metadata.json"), data, 0644); err != nil {
		return fmt.Errorf("write audio metadata: %w", err)
	}
	return nil
}

// ChunkFolder returns the deterministic chunk directory for an audio
// asset and chunk size. The key is derived from the audio file's full
// path, never from a job id, so repeated runs land in the same place.
func (m *Manager) ChunkFolder(audio *models.AudioResult, chunkSizeMinutes int) string {
	sum := md5.Sum([]byte(audio.FilePath))
	audioKey := hex.EncodeToString(sum[:])[:16]
	return filepath.Join(m.root, "chunks", fmt.Sprintf("%dmin", chunkSizeMinutes), audioKey)
}

// RemoveChunks deletes the chunk folder for an audio/size pair. Chunk
// files are scratch space; the downloaded audio stays cached.
func (m *Manager) RemoveChunks(audio *models.AudioResult, chunkSizeMinutes int) error {
	return os.RemoveAll(m.ChunkFolder(audio, chunkSizeMinutes))
}

// Root returns the artifacts root directory.
func (m *Manager) Root() string {
	return m.root
}
