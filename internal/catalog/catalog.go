// Package catalog builds the read-only brand → model → year index the
// selection dialogue browses.
package catalog

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/kapu/carfinder-bot-go/internal/util"
	"github.com/kapu/carfinder-bot-go/pkg/errors"
	"go.uber.org/zap"
)

// Record is one row of tabular input. Line is the 1-based source line (or row
// number for SQL sources) and is only used for diagnostics.
type Record struct {
	Line  int
	Make  string
	Model string
	Year  string
}

// Validate reports the first required field that is empty.
func (r Record) Validate() error {
	switch {
	case strings.TrimSpace(r.Make) == "":
		return errors.NewRecordError(r.Line, "make")
	case strings.TrimSpace(r.Model) == "":
		return errors.NewRecordError(r.Line, "model")
	case strings.TrimSpace(r.Year) == "":
		return errors.NewRecordError(r.Line, "year")
	}
	return nil
}

// Stats summarizes catalog contents.
type Stats struct {
	Brands  int `json:"brands"`
	Models  int `json:"models"`
	Trims   int `json:"trims"`
	Records int `json:"records"`
	Skipped int `json:"skipped"`
}

type modelEntry struct {
	name  string
	years map[string]string
	order []string
}

type brandEntry struct {
	name   string
	models map[string]*modelEntry
	order  []string
}

// Catalog is immutable once built and safe for concurrent readers.
type Catalog struct {
	brands map[string]*brandEntry
	order  []string
	stats  Stats
}

// Build indexes records. Malformed records are skipped and logged; Build only
// fails when no usable record remains.
func Build(records []Record, logger *zap.Logger) (*Catalog, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	c := &Catalog{brands: make(map[string]*brandEntry)}
	var lastErr error

	for _, rec := range records {
		if err := rec.Validate(); err != nil {
			lastErr = err
			c.stats.Skipped++
			logger.Warn("Skipping malformed catalog record",
				zap.Int("line", rec.Line),
				zap.Error(err),
			)
			continue
		}
		c.add(rec)
		c.stats.Records++
	}

	if c.stats.Records == 0 {
		if lastErr != nil {
			return nil, fmt.Errorf("all %d catalog records malformed: %w", c.stats.Skipped, lastErr)
		}
		return nil, errors.ErrEmptyCatalog
	}

	c.finalize()

	logger.Info("Vehicle catalog built",
		zap.Int("brands", c.stats.Brands),
		zap.Int("models", c.stats.Models),
		zap.Int("trims", c.stats.Trims),
		zap.Int("skipped", c.stats.Skipped),
	)
	return c, nil
}

func (c *Catalog) add(rec Record) {
	brandName := strings.TrimSpace(rec.Make)
	modelName := strings.TrimSpace(rec.Model)
	year := strings.TrimSpace(rec.Year)

	bk := util.Normalize(brandName)
	brand, ok := c.brands[bk]
	if !ok {
		brand = &brandEntry{name: brandName, models: make(map[string]*modelEntry)}
		c.brands[bk] = brand
	}

	mk := util.Normalize(modelName)
	model, ok := brand.models[mk]
	if !ok {
		model = &modelEntry{name: modelName, years: make(map[string]string)}
		brand.models[mk] = model
	}

	yk := util.Normalize(year)
	if _, ok := model.years[yk]; !ok {
		model.years[yk] = year
	}
}

func (c *Catalog) finalize() {
	c.order = make([]string, 0, len(c.brands))
	for _, brand := range c.brands {
		c.order = append(c.order, brand.name)

		brand.order = make([]string, 0, len(brand.models))
		for _, model := range brand.models {
			brand.order = append(brand.order, model.name)

			model.order = make([]string, 0, len(model.years))
			for _, year := range model.years {
				model.order = append(model.order, year)
			}
			sortYears(model.order)
			c.stats.Trims += len(model.order)
		}
		sortNames(brand.order)
		c.stats.Models += len(brand.order)
	}
	sortNames(c.order)
	c.stats.Brands = len(c.order)
}

// Brands returns all brands in display order.
func (c *Catalog) Brands() []string {
	return clone(c.order)
}

// Models returns the models of brand, matched case-insensitively.
func (c *Catalog) Models(brand string) ([]string, bool) {
	b, ok := c.brands[util.Normalize(brand)]
	if !ok {
		return nil, false
	}
	return clone(b.order), true
}

// Years returns the years recorded for brand/model.
func (c *Catalog) Years(brand, model string) ([]string, bool) {
	m, ok := c.model(brand, model)
	if !ok {
		return nil, false
	}
	return clone(m.order), true
}

// Brand returns the canonical spelling of a brand.
func (c *Catalog) Brand(text string) (string, bool) {
	b, ok := c.brands[util.Normalize(text)]
	if !ok {
		return "", false
	}
	return b.name, true
}

// Model returns the canonical spelling of a model under brand.
func (c *Catalog) Model(brand, text string) (string, bool) {
	m, ok := c.model(brand, text)
	if !ok {
		return "", false
	}
	return m.name, true
}

// Year returns the canonical spelling of a year under brand/model.
func (c *Catalog) Year(brand, model, text string) (string, bool) {
	m, ok := c.model(brand, model)
	if !ok {
		return "", false
	}
	year, ok := m.years[util.Normalize(text)]
	return year, ok
}

// Skipped returns the number of malformed records dropped during Build.
func (c *Catalog) Skipped() int {
	return c.stats.Skipped
}

// Stats returns catalog counters.
func (c *Catalog) Stats() Stats {
	return c.stats
}

func (c *Catalog) model(brand, model string) (*modelEntry, bool) {
	b, ok := c.brands[util.Normalize(brand)]
	if !ok {
		return nil, false
	}
	m, ok := b.models[util.Normalize(model)]
	return m, ok
}

func sortNames(names []string) {
	sort.Slice(names, func(i, j int) bool {
		li, lj := strings.ToLower(names[i]), strings.ToLower(names[j])
		if li != lj {
			return li < lj
		}
		return names[i] < names[j]
	})
}

// sortYears puts integer years first in numeric order, then everything else
// in lexical order.
func sortYears(years []string) {
	sort.Slice(years, func(i, j int) bool {
		yi, errI := strconv.Atoi(years[i])
		yj, errJ := strconv.Atoi(years[j])
		switch {
		case errI == nil && errJ == nil:
			if yi != yj {
				return yi < yj
			}
		case errI == nil:
			return true
		case errJ == nil:
			return false
		}
		return years[i] < years[j]
	})
}

func clone(src []string) []string {
	out := make([]string, len(src))
	copy(out, src)
	return out
}
