// Package refdata loads the four read-only reference datasets: PR line
// items, supplier review responses, the contract price table, and drawing
// records. Datasets are loaded once at startup and never written back.
package refdata

import (
	"context"
	"embed"
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"

	"github.com/steelfab-ops/fitpo/internal/config"
	"github.com/steelfab-ops/fitpo/internal/model"
)

//go:embed sample/*.yaml
var sampleFS embed.FS

// Set is the loaded, immutable reference dataset for a process.
type Set struct {
	Items    []model.PRLineItem
	Reviews  []model.ReviewResponse
	Prices   []model.PriceEntry
	Drawings map[string]model.DrawingRecord
}

// Load reads the datasets from cfg.Dir. An empty Dir selects the embedded
// sample dataset so the demo run works without any local files. The four
// files are read concurrently.
func Load(ctx context.Context, cfg config.DataConfig) (*Set, error) {
	if cfg.Dir == "" {
		return LoadSample()
	}

	s := &Set{}
	g, _ := errgroup.WithContext(ctx)

	g.Go(func() error {
		itemsFile := cfg.ItemsFile
		if itemsFile == "" {
			itemsFile = "items.yaml"
		}
		path := filepath.Join(cfg.Dir, itemsFile)
		if strings.EqualFold(filepath.Ext(path), ".xlsx") {
			items, err := LoadItemsXLSX(path)
			if err != nil {
				return err
			}
			s.Items = items
			return nil
		}
		return readYAML(path, &s.Items)
	})
	g.Go(func() error {
		return readYAML(filepath.Join(cfg.Dir, "reviews.yaml"), &s.Reviews)
	})
	g.Go(func() error {
		return readYAML(filepath.Join(cfg.Dir, "prices.yaml"), &s.Prices)
	})
	g.Go(func() error {
		var drawings []model.DrawingRecord
		if err := readYAML(filepath.Join(cfg.Dir, "drawings.yaml"), &drawings); err != nil {
			return err
		}
		s.Drawings = indexDrawings(drawings)
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return s, nil
}

// LoadSample parses the embedded demo dataset.
func LoadSample() (*Set, error) {
	s := &Set{}
	var drawings []model.DrawingRecord

	for _, f := range []struct {
		name string
		dst  any
	}{
		{"items.yaml", &s.Items},
		{"reviews.yaml", &s.Reviews},
		{"prices.yaml", &s.Prices},
		{"drawings.yaml", &drawings},
	} {
		raw, err := sampleFS.ReadFile("sample/" + f.name)
		if err != nil {
			return nil, eris.Wrap(err, "refdata: read embedded "+f.name)
		}
		if err := yaml.Unmarshal(raw, f.dst); err != nil {
			return nil, eris.Wrap(err, "refdata: parse embedded "+f.name)
		}
	}

	s.Drawings = indexDrawings(drawings)
	return s, nil
}

func readYAML(path string, dst any) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return eris.Wrap(err, "refdata: read "+path)
	}
	if err := yaml.Unmarshal(raw, dst); err != nil {
		return eris.Wrap(err, "refdata: parse "+path)
	}
	return nil
}

func indexDrawings(drawings []model.DrawingRecord) map[string]model.DrawingRecord {
	m := make(map[string]model.DrawingRecord, len(drawings))
	for _, d := range drawings {
		m[d.DrawingNo] = d
	}
	return m
}

// ReviewsFor returns the review responses whose material numbers appear in
// the given set, preserving dataset order.
func (s *Set) ReviewsFor(materialNos map[string]bool) []model.ReviewResponse {
	var out []model.ReviewResponse
	for _, r := range s.Reviews {
		if materialNos[r.MaterialNo] {
			out = append(out, r)
		}
	}
	return out
}

// PricesForType returns up to max price entries carrying the given type
// code, used as negotiation reference prices.
func (s *Set) PricesForType(typeCode string, max int) []model.PriceEntry {
	var out []model.PriceEntry
	for _, e := range s.Prices {
		if e.TypeCode == typeCode {
			out = append(out, e)
			if len(out) == max {
				break
			}
		}
	}
	return out
}

// Drawing looks up a drawing record by drawing number.
func (s *Set) Drawing(no string) (model.DrawingRecord, bool) {
	d, ok := s.Drawings[no]
	return d, ok
}
