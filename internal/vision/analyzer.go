// Package vision extracts structured expense fields from receipt photos
// using the Gemini API.
package vision

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"google.golang.org/genai"

	"viaggi/internal/core"
)

const defaultModel = "gemini-2.0-flash"

const extractionPrompt = `Extract the following fields from this receipt image and answer with a single JSON object, nothing else:
{"date": "YYYY-MM-DD", "merchant": "...", "amount": "total amount as decimal string", "currency": "ISO 4217 code", "category": "one of meal, transport, lodging, flight, supplies, entertainment, other"}
Use null for fields that are not readable.`

// Extraction is the structured result of a receipt analysis.
type Extraction struct {
	Date     time.Time
	Merchant string
	Amount   decimal.Decimal
	Currency string
	Category core.Category
}

// generateFunc produces the raw model output for an image.
// Factored out so tests can stub the Gemini call.
type generateFunc func(ctx context.Context, jpeg []byte) (string, error)

type Analyzer struct {
	generate    generateFunc
	maxAttempts int
	backoffBase time.Duration
}

// New creates an Analyzer backed by the Gemini API. The API key comes from
// the GEMINI_API_KEY environment variable read by the genai client config.
func New(ctx context.Context, apiKey, model string) (*Analyzer, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, ErrMissingCredential
	}
	if model == "" {
		model = defaultModel
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: apiKey})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}

	gen := func(ctx context.Context, img []byte) (string, error) {
		contents := []*genai.Content{{Parts: []*genai.Part{
			{InlineData: &genai.Blob{MIMEType: "image/jpeg", Data: img}},
			{Text: extractionPrompt},
		}}}
		resp, err := client.Models.GenerateContent(ctx, model, contents, &genai.GenerateContentConfig{
			ResponseMIMEType: "application/json",
		})
		if err != nil {
			return "", classifyAPIError(err)
		}
		if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil ||
			len(resp.Candidates[0].Content.Parts) == 0 {
			return "", ErrInvalidResponse
		}
		return resp.Candidates[0].Content.Parts[0].Text, nil
	}

	return &Analyzer{generate: gen, maxAttempts: 3, backoffBase: time.Second}, nil
}

// Analyze prepares the image and asks the model for structured fields.
// Transient overload is retried with exponential backoff up to the attempt
// bound; every other failure is returned immediately.
func (a *Analyzer) Analyze(ctx context.Context, imageBytes []byte) (Extraction, error) {
	img, err := PrepareImage(imageBytes)
	if err != nil {
		return Extraction{}, err
	}

	var raw string
	for attempt := 1; ; attempt++ {
		raw, err = a.generate(ctx, img)
		if err == nil {
			break
		}
		if !errors.Is(err, ErrOverloaded) || attempt >= a.maxAttempts {
			return Extraction{}, err
		}
		delay := a.backoffBase << (attempt - 1)
		slog.WarnContext(ctx, "Vision service overloaded, retrying",
			"attempt", attempt, "delay", delay)
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return Extraction{}, ctx.Err()
		}
	}

	return parseExtraction(raw)
}

func parseExtraction(raw string) (Extraction, error) {
	raw = strings.TrimSpace(raw)
	// Models occasionally wrap JSON in a markdown fence despite instructions.
	raw = strings.TrimPrefix(raw, "```json")
	raw = strings.TrimPrefix(raw, "```")
	raw = strings.TrimSuffix(raw, "```")

	var payload struct {
		Date     *string `json:"date"`
		Merchant *string `json:"merchant"`
		Amount   *string `json:"amount"`
		Currency *string `json:"currency"`
		Category *string `json:"category"`
	}
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		return Extraction{}, fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}

	var ex Extraction
	if payload.Date != nil {
		d, err := time.Parse("2006-01-02", *payload.Date)
		if err == nil {
			ex.Date = d
		}
	}
	if payload.Merchant != nil {
		ex.Merchant = strings.TrimSpace(*payload.Merchant)
	}
	if payload.Amount != nil {
		amount, err := core.ParseAmount(*payload.Amount)
		if err != nil {
			return Extraction{}, fmt.Errorf("%w: bad amount %q", ErrInvalidResponse, *payload.Amount)
		}
		ex.Amount = amount
	}
	if payload.Currency != nil {
		ex.Currency = strings.ToUpper(strings.TrimSpace(*payload.Currency))
	}
	if payload.Category != nil {
		ex.Category = core.ParseCategory(*payload.Category)
	} else {
		ex.Category = core.CategoryOther
	}
	return ex, nil
}

func classifyAPIError(err error) error {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		switch {
		case apiErr.Code == 429:
			return fmt.Errorf("%w: %s", ErrQuotaExceeded, apiErr.Message)
		case apiErr.Code == 503 || apiErr.Code >= 500:
			return fmt.Errorf("%w: %s", ErrOverloaded, apiErr.Message)
		case apiErr.Code == 401 || apiErr.Code == 403:
			return fmt.Errorf("%w: %s", ErrMissingCredential, apiErr.Message)
		}
	}
	return err
}
