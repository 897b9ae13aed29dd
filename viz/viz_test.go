package viz

import (
	"image/png"
	"math"
	"os"
	"path/filepath"
	"testing"
)

func TestSaveNullDistributionWritesPNG(t *testing.T) {
	samples := make([]float64, 200)
	for i := range samples {
		samples[i] = math.Sin(float64(i)) + 0.01*float64(i)
	}

	path := filepath.Join(t.TempDir(), "null.png")
	if err := SaveNullDistribution(path, samples, 1.5,
		WithTitle("test"),
		WithBins(20),
	); err != nil {
		t.Fatalf("SaveNullDistribution failed: %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if _, err := png.Decode(f); err != nil {
		t.Errorf("output is not a decodable PNG: %v", err)
	}
}

func TestSaveNullDistributionValidation(t *testing.T) {
	path := filepath.Join(t.TempDir(), "null.png")

	if err := SaveNullDistribution(path, nil, 0); err == nil {
		t.Error("empty samples must be rejected")
	}
	if err := SaveNullDistribution(path, []float64{1, math.NaN()}, 0); err == nil {
		t.Error("NaN samples must be rejected")
	}
	if err := SaveNullDistribution(path, []float64{1, 2, 3}, math.Inf(1)); err == nil {
		t.Error("non-finite observed statistic must be rejected")
	}
}
