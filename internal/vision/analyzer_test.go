package vision

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/jpeg"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"viaggi/internal/core"
)

func testImage(w, h int) []byte {
	var buf bytes.Buffer
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	if err := jpeg.Encode(&buf, img, nil); err != nil {
		panic(err)
	}
	return buf.Bytes()
}

func stubAnalyzer(gen generateFunc) *Analyzer {
	return &Analyzer{generate: gen, maxAttempts: 3, backoffBase: time.Millisecond}
}

func TestAnalyzeParsesFields(t *testing.T) {
	a := stubAnalyzer(func(ctx context.Context, img []byte) (string, error) {
		return `{"date":"2025-03-11","merchant":"Curry 36","amount":"12.50","currency":"eur","category":"Meal"}`, nil
	})

	ex, err := a.Analyze(context.Background(), testImage(40, 40))
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	if ex.Merchant != "Curry 36" {
		t.Fatalf("merchant = %q", ex.Merchant)
	}
	if !ex.Amount.Equal(decimal.NewFromFloat(12.50)) {
		t.Fatalf("amount = %s", ex.Amount)
	}
	if ex.Currency != "EUR" {
		t.Fatalf("currency = %q", ex.Currency)
	}
	if ex.Category != core.CategoryMeal {
		t.Fatalf("category = %q", ex.Category)
	}
	if ex.Date.Format("2006-01-02") != "2025-03-11" {
		t.Fatalf("date = %s", ex.Date)
	}
}

func TestAnalyzeUnknownCategoryDefaultsToOther(t *testing.T) {
	a := stubAnalyzer(func(ctx context.Context, img []byte) (string, error) {
		return `{"category":"souvenirs"}`, nil
	})
	ex, err := a.Analyze(context.Background(), testImage(10, 10))
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	if ex.Category != core.CategoryOther {
		t.Fatalf("category = %q, want other", ex.Category)
	}
}

func TestAnalyzeStripsMarkdownFence(t *testing.T) {
	a := stubAnalyzer(func(ctx context.Context, img []byte) (string, error) {
		return "```json\n{\"merchant\":\"BVG\"}\n```", nil
	})
	ex, err := a.Analyze(context.Background(), testImage(10, 10))
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	if ex.Merchant != "BVG" {
		t.Fatalf("merchant = %q", ex.Merchant)
	}
}

func TestAnalyzeRetriesOverload(t *testing.T) {
	calls := 0
	a := stubAnalyzer(func(ctx context.Context, img []byte) (string, error) {
		calls++
		if calls < 3 {
			return "", ErrOverloaded
		}
		return `{"merchant":"ok"}`, nil
	})
	if _, err := a.Analyze(context.Background(), testImage(10, 10)); err != nil {
		t.Fatalf("analyze: %v", err)
	}
	if calls != 3 {
		t.Fatalf("calls = %d, want 3", calls)
	}
}

func TestAnalyzeBoundedRetries(t *testing.T) {
	calls := 0
	a := stubAnalyzer(func(ctx context.Context, img []byte) (string, error) {
		calls++
		return "", ErrOverloaded
	})
	_, err := a.Analyze(context.Background(), testImage(10, 10))
	if !errors.Is(err, ErrOverloaded) {
		t.Fatalf("err = %v, want ErrOverloaded", err)
	}
	if calls != 3 {
		t.Fatalf("calls = %d, want bounded at 3", calls)
	}
}

func TestAnalyzeDoesNotRetryQuota(t *testing.T) {
	calls := 0
	a := stubAnalyzer(func(ctx context.Context, img []byte) (string, error) {
		calls++
		return "", ErrQuotaExceeded
	})
	_, err := a.Analyze(context.Background(), testImage(10, 10))
	if !errors.Is(err, ErrQuotaExceeded) {
		t.Fatalf("err = %v, want ErrQuotaExceeded", err)
	}
	if calls != 1 {
		t.Fatalf("calls = %d, want 1", calls)
	}
}

func TestAnalyzeInvalidJSON(t *testing.T) {
	a := stubAnalyzer(func(ctx context.Context, img []byte) (string, error) {
		return "not json", nil
	})
	_, err := a.Analyze(context.Background(), testImage(10, 10))
	if !errors.Is(err, ErrInvalidResponse) {
		t.Fatalf("err = %v, want ErrInvalidResponse", err)
	}
}

func TestNewRequiresCredential(t *testing.T) {
	if _, err := New(context.Background(), "", ""); !errors.Is(err, ErrMissingCredential) {
		t.Fatalf("err = %v, want ErrMissingCredential", err)
	}
}

func TestPrepareImageDownscales(t *testing.T) {
	out, err := PrepareImage(testImage(2048, 512))
	if err != nil {
		t.Fatalf("prepare: %v", err)
	}
	img, _, err := image.Decode(bytes.NewReader(out))
	if err != nil {
		t.Fatalf("decode output: %v", err)
	}
	if w := img.Bounds().Dx(); w != 1024 {
		t.Fatalf("width = %d, want 1024", w)
	}
	if h := img.Bounds().Dy(); h != 256 {
		t.Fatalf("height = %d, want 256", h)
	}
}

func TestPrepareImageKeepsSmall(t *testing.T) {
	out, err := PrepareImage(testImage(100, 80))
	if err != nil {
		t.Fatalf("prepare: %v", err)
	}
	img, _, err := image.Decode(bytes.NewReader(out))
	if err != nil {
		t.Fatalf("decode output: %v", err)
	}
	if img.Bounds().Dx() != 100 || img.Bounds().Dy() != 80 {
		t.Fatalf("size = %dx%d, want 100x80", img.Bounds().Dx(), img.Bounds().Dy())
	}
}
