package charts

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/virelia/pancrisk/internal/explain"
	"github.com/virelia/pancrisk/internal/model"
)

func decomposition(t *testing.T) *explain.Decomposition {
	t.Helper()
	vector := model.RebuildVector(map[string]float64{"glucose": 7.2, "bilirubin": 24})
	_, probability := model.PredictRisk(vector)
	d := explain.Decompose(model.Attribute(vector), nil, &probability)
	require.NotNil(t, d)
	return d
}

func TestRenderAllKinds(t *testing.T) {
	d := decomposition(t)
	for _, kind := range Kinds {
		t.Run(kind, func(t *testing.T) {
			html, err := Render(kind, d)
			require.NoError(t, err)
			assert.Contains(t, string(html), "<html")
			assert.Contains(t, string(html), "echarts")
		})
	}
}

func TestRenderUnknownKind(t *testing.T) {
	_, err := Render("pie", decomposition(t))
	assert.Error(t, err)
}

func TestRenderNilDecomposition(t *testing.T) {
	_, err := Render("bar", nil)
	assert.Error(t, err)
}
