package classify

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
)

// Model kinds. Distribution models produce scores summing to 1 over the
// vocabulary; tag models produce independent per-label probabilities.
const (
	KindDistribution = "distribution"
	KindTags         = "tags"
)

// FeatureDim is the length of the feature vector the models consume:
// [rms, zero-crossing rate, centroid, bandwidth, rolloff, flatness].
const FeatureDim = 6

// Centroid is one labeled reference point in feature space.
type Centroid struct {
	Label  string    `json:"label"`
	Vector []float64 `json:"vector"`
}

// Model is a loaded inference artifact: a set of labeled centroids plus the
// scoring kind. Immutable once loaded; shared read-only across requests.
type Model struct {
	Name      string     `json:"name"`
	Kind      string     `json:"kind"`
	Centroids []Centroid `json:"centroids"`
}

// LoadModel reads and validates a model artifact for the given dimension.
// Validation failures are returned as errors so the caller can mark the
// dimension unavailable.
func LoadModel(path, dimension string) (*Model, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var m Model
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parsing model %s: %w", path, err)
	}

	if m.Kind != KindDistribution && m.Kind != KindTags {
		return nil, fmt.Errorf("model %s: unknown kind %q", path, m.Kind)
	}
	if len(m.Centroids) == 0 {
		return nil, fmt.Errorf("model %s: no centroids", path)
	}

	vocabulary := VocabularyFor(dimension)
	if vocabulary == nil {
		return nil, fmt.Errorf("unknown classification dimension %q", dimension)
	}
	known := make(map[string]bool, len(vocabulary))
	for _, l := range vocabulary {
		known[l] = true
	}
	seen := make(map[string]bool, len(m.Centroids))
	for _, c := range m.Centroids {
		if !known[c.Label] {
			return nil, fmt.Errorf("model %s: label %q not in the %s vocabulary", path, c.Label, dimension)
		}
		if seen[c.Label] {
			return nil, fmt.Errorf("model %s: duplicate label %q", path, c.Label)
		}
		seen[c.Label] = true
		if len(c.Vector) != FeatureDim {
			return nil, fmt.Errorf("model %s: label %q has %d-dim vector, want %d", path, c.Label, len(c.Vector), FeatureDim)
		}
	}
	if len(seen) != len(vocabulary) {
		return nil, fmt.Errorf("model %s: %d labels, want the full %d-label vocabulary", path, len(seen), len(vocabulary))
	}

	return &m, nil
}

// Infer scores a feature vector against every centroid. Distribution models
// return a softmax over negative distances scaled by temperature; tag models
// return independent probabilities 1/(1+distance).
func (m *Model) Infer(features []float64, temperature float64) map[string]float64 {
	if temperature <= 0 {
		temperature = 1
	}

	distances := make([]float64, len(m.Centroids))
	minDist := math.Inf(1)
	for i, c := range m.Centroids {
		var sum float64
		for d := 0; d < FeatureDim && d < len(features); d++ {
			diff := features[d] - c.Vector[d]
			sum += diff * diff
		}
		distances[i] = math.Sqrt(sum)
		if distances[i] < minDist {
			minDist = distances[i]
		}
	}

	scores := make(map[string]float64, len(m.Centroids))
	if m.Kind == KindTags {
		for i, c := range m.Centroids {
			scores[c.Label] = 1 / (1 + distances[i])
		}
		return scores
	}

	// Shift by the minimum distance before exponentiating for stability.
	var total float64
	weights := make([]float64, len(distances))
	for i, dist := range distances {
		weights[i] = math.Exp(-(dist - minDist) / temperature)
		total += weights[i]
	}
	for i, c := range m.Centroids {
		scores[c.Label] = weights[i] / total
	}
	return scores
}
