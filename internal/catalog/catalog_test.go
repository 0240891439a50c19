package catalog

import (
	stderrors "errors"
	"reflect"
	"testing"

	"github.com/kapu/carfinder-bot-go/pkg/errors"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func sampleRecords() []Record {
	return []Record{
		{Line: 2, Make: "Honda", Model: "Civic", Year: "2021"},
		{Line: 3, Make: "Honda", Model: "Civic", Year: "2020"},
		{Line: 4, Make: "honda ", Model: "Accord", Year: "2019"},
		{Line: 5, Make: "Toyota", Model: "Corolla", Year: "2020"},
		{Line: 6, Make: "Acura", Model: "MDX", Year: "2022"},
		{Line: 7, Make: "Honda", Model: "Civic", Year: "2020"},
	}
}

func TestBuildIndexesBrandsModelsYears(t *testing.T) {
	c, err := Build(sampleRecords(), zap.NewNop())
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if got, want := c.Brands(), []string{"Acura", "Honda", "Toyota"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("brands = %v, want %v", got, want)
	}

	models, ok := c.Models("HONDA")
	if !ok {
		t.Fatalf("expected Honda to be found case-insensitively")
	}
	if want := []string{"Accord", "Civic"}; !reflect.DeepEqual(models, want) {
		t.Fatalf("models = %v, want %v", models, want)
	}

	years, ok := c.Years("honda", "civic")
	if !ok {
		t.Fatalf("expected Honda Civic years")
	}
	if want := []string{"2020", "2021"}; !reflect.DeepEqual(years, want) {
		t.Fatalf("years = %v, want %v", years, want)
	}

	stats := c.Stats()
	if stats.Brands != 3 || stats.Models != 4 || stats.Trims != 5 || stats.Records != 6 {
		t.Fatalf("unexpected stats %+v", stats)
	}
}

func TestCanonicalLookups(t *testing.T) {
	c, err := Build(sampleRecords(), zap.NewNop())
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if brand, ok := c.Brand("  toyota "); !ok || brand != "Toyota" {
		t.Fatalf("Brand() = %q, %v", brand, ok)
	}
	if model, ok := c.Model("Honda", "ACCORD"); !ok || model != "Accord" {
		t.Fatalf("Model() = %q, %v", model, ok)
	}
	if year, ok := c.Year("Honda", "Civic", " 2021 "); !ok || year != "2021" {
		t.Fatalf("Year() = %q, %v", year, ok)
	}
	if _, ok := c.Year("Honda", "Civic", "1999"); ok {
		t.Fatalf("expected unknown year to miss")
	}
	if _, ok := c.Models("Tesla"); ok {
		t.Fatalf("expected unknown brand to miss")
	}
}

func TestBuildReturnsCopies(t *testing.T) {
	c, err := Build(sampleRecords(), zap.NewNop())
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	brands := c.Brands()
	brands[0] = "Mutated"
	if c.Brands()[0] != "Acura" {
		t.Fatalf("catalog must not expose internal slices")
	}
}

func TestBuildSkipsMalformedRecords(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	records := append(sampleRecords(),
		Record{Line: 8, Make: "", Model: "Civic", Year: "2020"},
		Record{Line: 9, Make: "Ford", Model: " ", Year: "2020"},
		Record{Line: 10, Make: "Ford", Model: "Focus", Year: ""},
	)

	c, err := Build(records, zap.New(core))
	if err != nil {
		t.Fatalf("expected malformed rows to be skipped, got %v", err)
	}
	if c.Skipped() != 3 {
		t.Fatalf("expected 3 skipped records, got %d", c.Skipped())
	}
	if _, ok := c.Brand("Ford"); ok {
		t.Fatalf("malformed Ford rows must not create a brand")
	}
	if n := logs.FilterMessage("Skipping malformed catalog record").Len(); n != 3 {
		t.Fatalf("expected 3 warnings, got %d", n)
	}
}

func TestBuildFailsWhenNothingUsable(t *testing.T) {
	_, err := Build([]Record{{Line: 2, Make: "Honda"}}, nil)
	if !stderrors.Is(err, errors.ErrMalformedRecord) {
		t.Fatalf("expected ErrMalformedRecord, got %v", err)
	}

	var recErr *errors.RecordError
	if !stderrors.As(err, &recErr) || recErr.Line != 2 || recErr.Field != "model" {
		t.Fatalf("expected RecordError for line 2 model, got %v", err)
	}

	_, err = Build(nil, nil)
	if !stderrors.Is(err, errors.ErrEmptyCatalog) {
		t.Fatalf("expected ErrEmptyCatalog, got %v", err)
	}
}

func TestYearsOrderIntegersBeforeOtherValues(t *testing.T) {
	want := []string{"999", "2020", "2021", "2020a", "MY2019"}
	inputs := [][]string{
		{"2020a", "999", "2020", "MY2019", "2021"},
		{"MY2019", "2021", "2020a", "2020", "999"},
		{"2020", "2020a", "2021", "999", "MY2019"},
	}

	for _, years := range inputs {
		records := make([]Record, len(years))
		for i, y := range years {
			records[i] = Record{Line: i + 2, Make: "Mazda", Model: "MX-5", Year: y}
		}
		c, err := Build(records, zap.NewNop())
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		got, _ := c.Years("Mazda", "MX-5")
		if !reflect.DeepEqual(got, want) {
			t.Fatalf("years from %v = %v, want %v", years, got, want)
		}
	}
}
