package adapter

import (
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/mouse-blink/blockscan/internal/domain"
	m "github.com/mouse-blink/blockscan/internal/model"
)

const analysisFileExt = ".json"

// LoadedAnalysis pairs a stored wire form with its reconstructed template
// descriptor.
type LoadedAnalysis struct {
	Template domain.TemplateInfo
	Wire     m.SerializedAnalysis
}

// AnalysisStore persists canonical analyses for cross-process caching.
type AnalysisStore interface {
	SaveAnalyses(dir m.Path, analyses []m.SerializedAnalysis) error
	LoadAnalyses(dir m.Path, factory *domain.TemplateInfoFactory) ([]LoadedAnalysis, error)
}

// LocalAnalysisStore stores each analysis as one JSON file named by a hash
// of its canonical bytes. Because the wire form is byte-stable, the file
// name is a content address: re-analyzing an unchanged template writes the
// same file.
type LocalAnalysisStore struct{}

// NewLocalAnalysisStore constructs a LocalAnalysisStore.
func NewLocalAnalysisStore() *LocalAnalysisStore {
	return &LocalAnalysisStore{}
}

// SaveAnalyses writes one canonical JSON file per analysis into dir,
// creating it if needed.
func (s *LocalAnalysisStore) SaveAnalyses(dir m.Path, analyses []m.SerializedAnalysis) error {
	if err := os.MkdirAll(string(dir), 0o750); err != nil {
		return fmt.Errorf("failed to create analysis dir: %w", err)
	}

	for _, analysis := range analyses {
		data, err := canonicalBytes(analysis)
		if err != nil {
			return err
		}

		name := contentAddress(data) + analysisFileExt
		path := filepath.Join(string(dir), name)

		if err := os.WriteFile(path, data, 0o600); err != nil {
			return fmt.Errorf("failed to write analysis %s: %w", name, err)
		}
	}

	return nil
}

// LoadAnalyses reads every stored analysis from dir, reconstructing each
// template descriptor through the factory. Results are ordered by file
// name so repeated loads are deterministic.
func (s *LocalAnalysisStore) LoadAnalyses(dir m.Path, factory *domain.TemplateInfoFactory) ([]LoadedAnalysis, error) {
	entries, err := os.ReadDir(string(dir))
	if err != nil {
		return nil, fmt.Errorf("failed to read analysis dir: %w", err)
	}

	names := make([]string, 0, len(entries))

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), analysisFileExt) {
			continue
		}

		names = append(names, entry.Name())
	}

	sort.Strings(names)

	loaded := make([]LoadedAnalysis, 0, len(names))

	for _, name := range names {
		data, err := os.ReadFile(filepath.Join(string(dir), name))
		if err != nil {
			return nil, fmt.Errorf("failed to read analysis %s: %w", name, err)
		}

		var wire m.SerializedAnalysis
		if err := json.Unmarshal(data, &wire); err != nil {
			return nil, fmt.Errorf("failed to decode analysis %s: %w", name, err)
		}

		template, err := factory.FromSerialized(wire.Template)
		if err != nil {
			return nil, fmt.Errorf("failed to reconstruct template of %s: %w", name, err)
		}

		loaded = append(loaded, LoadedAnalysis{Template: template, Wire: wire})
	}

	return loaded, nil
}

// canonicalBytes marshals the wire form. encoding/json keeps struct field
// order and sorts map keys, so the result is byte-stable.
func canonicalBytes(analysis m.SerializedAnalysis) ([]byte, error) {
	data, err := json.Marshal(analysis)
	if err != nil {
		return nil, fmt.Errorf("failed to encode analysis: %w", err)
	}

	return data, nil
}

// contentAddress returns the first 16 hex chars of the SHA-256 of data.
func contentAddress(data []byte) string {
	sum := sha256.Sum256(data)
	return fmt.Sprintf("%x", sum)[:16]
}
