package predictor

import (
	"context"
	"delivery-route-optimizer/internal/ports"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
)

const (
	modelLinear = "linear"
	modelTrees  = "trees"
)

var ErrModelNotFound = errors.New("delivery model file not found")

// Model is a regression model exported to JSON from the training pipeline.
// It is read-only after loading and safe for concurrent use.
type Model struct {
	kind         string
	intercept    float64
	coefficients []float64
	baseScore    float64
	learningRate float64
	trees        []tree
}

type modelFile struct {
	Type         string     `json:"type"`
	Intercept    float64    `json:"intercept"`
	Coefficients []float64  `json:"coefficients"`
	BaseScore    float64    `json:"base_score"`
	LearningRate float64    `json:"learning_rate"`
	Trees        []treeFile `json:"trees"`
}

type treeFile struct {
	Nodes []node `json:"nodes"`
}

// node is one split or leaf of a regression tree. Samples with
// feature value < Threshold go Left.
type node struct {
	Feature   int     `json:"feature"`
	Threshold float64 `json:"threshold"`
	Left      int     `json:"left"`
	Right     int     `json:"right"`
	Leaf      bool    `json:"leaf"`
	Value     float64 `json:"value"`
}

type tree struct {
	nodes []node
}

// LoadFile reads a model from path. A missing file yields ErrModelNotFound.
func LoadFile(path string) (*Model, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("load model %q: %w", path, ErrModelNotFound)
		}
		return nil, fmt.Errorf("load model %q: %w", path, err)
	}

	var f modelFile
	if err := json.Unmarshal(b, &f); err != nil {
		return nil, fmt.Errorf("load model %q: parse json: %w", path, err)
	}

	m, err := newModel(f)
	if err != nil {
		return nil, fmt.Errorf("load model %q: %w", path, err)
	}
	return m, nil
}

func newModel(f modelFile) (*Model, error) {
	switch f.Type {
	case modelLinear:
		if len(f.Coefficients) != ports.FeatureCount {
			return nil, fmt.Errorf("linear model has %d coefficients, want %d", len(f.Coefficients), ports.FeatureCount)
		}
		return &Model{kind: modelLinear, intercept: f.Intercept, coefficients: f.Coefficients}, nil

	case modelTrees:
		if len(f.Trees) == 0 {
			return nil, errors.New("tree model has no trees")
		}
		lr := f.LearningRate
		if lr == 0 {
			lr = 1
		}
		m := &Model{kind: modelTrees, baseScore: f.BaseScore, learningRate: lr}
		for i, tf := range f.Trees {
			if err := validateTree(tf.Nodes); err != nil {
				return nil, fmt.Errorf("tree %d: %w", i, err)
			}
			m.trees = append(m.trees, tree{nodes: tf.Nodes})
		}
		return m, nil
	}

	return nil, fmt.Errorf("unknown model type %q", f.Type)
}

// validateTree checks node references so evaluation always terminates.
// Children must come after their parent.
func validateTree(nodes []node) error {
	if len(nodes) == 0 {
		return errors.New("empty tree")
	}
	for i, n := range nodes {
		if n.Leaf {
			continue
		}
		if n.Feature < 0 || n.Feature >= ports.FeatureCount {
			return fmt.Errorf("node %d: feature %d out of range", i, n.Feature)
		}
		if n.Left <= i || n.Left >= len(nodes) || n.Right <= i || n.Right >= len(nodes) {
			return fmt.Errorf("node %d: invalid children %d/%d", i, n.Left, n.Right)
		}
	}
	return nil
}

func (t tree) eval(x []float64) float64 {
	i := 0
	for {
		n := t.nodes[i]
		if n.Leaf {
			return n.Value
		}
		if x[n.Feature] < n.Threshold {
			i = n.Left
		} else {
			i = n.Right
		}
	}
}

// Predict returns the predicted duration in seconds.
func (m *Model) Predict(ctx context.Context, f ports.Features) (float64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	x := f.Vector()
	var y float64

	switch m.kind {
	case modelLinear:
		y = m.intercept
		for i, c := range m.coefficients {
			y += c * x[i]
		}
	case modelTrees:
		y = m.baseScore
		for _, t := range m.trees {
			y += m.learningRate * t.eval(x)
		}
	default:
		return 0, fmt.Errorf("predict: unknown model type %q", m.kind)
	}

	if math.IsNaN(y) || math.IsInf(y, 0) {
		return 0, fmt.Errorf("predict: non-finite prediction %v", y)
	}
	return y, nil
}
