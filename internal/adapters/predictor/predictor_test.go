package predictor

import (
	"context"
	"delivery-route-optimizer/internal/ports"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeModel(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "model.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLinearModel(t *testing.T) {
	path := writeModel(t, `{"type":"linear","intercept":60,"coefficients":[0,0,0,0,10,0,0,0.1]}`)

	m, err := LoadFile(path)
	require.NoError(t, err)

	got, err := m.Predict(context.Background(), ports.Features{Weight: 2, ShippingDistance: 1000})
	require.NoError(t, err)
	assert.InDelta(t, 60+20+100, got, 1e-9)
}

func TestTreeModel(t *testing.T) {
	// One stump on shippingDistance (feature 7) and one on weight (feature 4).
	path := writeModel(t, `{
		"type": "trees",
		"base_score": 100,
		"learning_rate": 0.5,
		"trees": [
			{"nodes": [
				{"feature": 7, "threshold": 500, "left": 1, "right": 2},
				{"leaf": true, "value": 20},
				{"leaf": true, "value": 200}
			]},
			{"nodes": [
				{"feature": 4, "threshold": 1, "left": 1, "right": 2},
				{"leaf": true, "value": 0},
				{"leaf": true, "value": 40}
			]}
		]
	}`)

	m, err := LoadFile(path)
	require.NoError(t, err)

	short, err := m.Predict(context.Background(), ports.Features{ShippingDistance: 100, Weight: 0.5})
	require.NoError(t, err)
	assert.InDelta(t, 110, short, 1e-9)

	long, err := m.Predict(context.Background(), ports.Features{ShippingDistance: 5000, Weight: 3})
	require.NoError(t, err)
	assert.InDelta(t, 220, long, 1e-9)
}

func TestLoadFileMissing(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "absent.json"))
	if !errors.Is(err, ErrModelNotFound) {
		t.Fatalf("err = %v, want ErrModelNotFound", err)
	}
}

func TestLoadFileRejectsMalformedModels(t *testing.T) {
	cases := map[string]string{
		"bad json":         `{`,
		"unknown type":     `{"type":"svm"}`,
		"short linear":     `{"type":"linear","coefficients":[1,2]}`,
		"no trees":         `{"type":"trees","trees":[]}`,
		"cyclic tree":      `{"type":"trees","trees":[{"nodes":[{"feature":0,"left":0,"right":0}]}]}`,
		"feature overflow": `{"type":"trees","trees":[{"nodes":[{"feature":9,"left":1,"right":1},{"leaf":true}]}]}`,
	}
	for name, content := range cases {
		if _, err := LoadFile(writeModel(t, content)); err == nil {
			t.Errorf("%s: expected error", name)
		}
	}
}

func TestHTTPPredictor(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req predictRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if req.Features.Hour != 9 || req.Features.ShippingDistance != 1200 {
			t.Errorf("features = %+v", req.Features)
		}
		w.Write([]byte(`{"duration": 321.5}`))
	}))
	defer server.Close()

	p, err := NewHTTPPredictor(server.URL, 0)
	require.NoError(t, err)

	got, err := p.Predict(context.Background(), ports.Features{Hour: 9, ShippingDistance: 1200})
	require.NoError(t, err)
	assert.Equal(t, 321.5, got)
}

func TestHTTPPredictorErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model offline", http.StatusBadGateway)
	}))
	defer server.Close()

	p, err := NewHTTPPredictor(server.URL, 0)
	require.NoError(t, err)

	_, err = p.Predict(context.Background(), ports.Features{})
	assert.Error(t, err)
}

func TestFeatureJSONNames(t *testing.T) {
	b, err := json.Marshal(ports.Features{OriginLat: 1, DestinationLng: 2, Day: 3})
	require.NoError(t, err)
	assert.JSONEq(t, `{"senderLat":1,"senderLng":0,"receiverLat":0,"receiverLng":2,"weight":0,"order_hour":0,"order_day":3,"shippingDistance":0}`, string(b))
}
