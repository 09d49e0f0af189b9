package refdata

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/steelfab-ops/fitpo/internal/config"
	"github.com/steelfab-ops/fitpo/internal/model"
)

func TestLoadSample(t *testing.T) {
	s, err := LoadSample()
	require.NoError(t, err)

	assert.Len(t, s.Items, 8)
	assert.Len(t, s.Reviews, 6)
	assert.NotEmpty(t, s.Prices)
	assert.Len(t, s.Drawings, 2)

	d, ok := s.Drawing("D-1013")
	require.True(t, ok)
	assert.Equal(t, "KZ-70013", d.MaterialNo)

	_, ok = s.Drawing("D-9999")
	assert.False(t, ok)
}

func TestLoad_EmptyDirUsesSample(t *testing.T) {
	s, err := Load(context.Background(), config.DataConfig{})
	require.NoError(t, err)
	assert.Len(t, s.Items, 8)
}

func TestLoad_FromDir(t *testing.T) {
	dir := t.TempDir()
	files := map[string]string{
		"items.yaml": `
- material_no: X-1
  pr_no: PR-1
  description: FLAT BAR
  attribute_group: G1
  grade: SS400
  type_code: B
  fabricator: F1
  paint_code: T0
`,
		"reviews.yaml": `
- material_no: X-1
  disposition: unchanged
`,
		"prices.yaml": `
- type_code: B
  attribute_group: G1
  unit_price: 100
`,
		"drawings.yaml": `[]`,
	}
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
	}

	s, err := Load(context.Background(), config.DataConfig{Dir: dir})
	require.NoError(t, err)
	require.Len(t, s.Items, 1)
	assert.Equal(t, "X-1", s.Items[0].MaterialNo)
	assert.Equal(t, model.DispositionUnchanged, s.Reviews[0].Disposition)
}

func TestLoad_MissingFile(t *testing.T) {
	dir := t.TempDir()
	_, err := Load(context.Background(), config.DataConfig{Dir: dir})
	assert.Error(t, err)
}

func TestReviewsFor(t *testing.T) {
	s, err := LoadSample()
	require.NoError(t, err)

	targets := map[string]bool{"KZ-70012": true, "KZ-70014": true}
	reviews := s.ReviewsFor(targets)
	require.Len(t, reviews, 2)
	assert.Equal(t, "KZ-70012", reviews[0].MaterialNo)
	assert.Equal(t, "KZ-70014", reviews[1].MaterialNo)
}

func TestPricesForType(t *testing.T) {
	s, err := LoadSample()
	require.NoError(t, err)

	prices := s.PricesForType("M", 10)
	require.Len(t, prices, 3)
	for _, p := range prices {
		assert.Equal(t, "M", p.TypeCode)
	}

	assert.Len(t, s.PricesForType("M", 2), 2)
	assert.Empty(t, s.PricesForType("Z", 10))
}
