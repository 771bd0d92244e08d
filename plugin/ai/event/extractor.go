// Package event turns free-form PT-BR text into a resolved calendar event:
// the LLM proposes a baseline, then the deterministic temporal engine in
// ptime corrects its date and time.
package event

import (
	"context"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/pkg/errors"

	"github.com/hrygo/agenda/plugin/ai"
	"github.com/hrygo/agenda/plugin/ai/cache"
	"github.com/hrygo/agenda/plugin/ai/ptime"
	"github.com/hrygo/agenda/plugin/ai/timeout"
)

// MaxInputLength bounds the text sent to the model, in characters.
const MaxInputLength = 500

var (
	// ErrEmptyInput is returned for blank text.
	ErrEmptyInput = errors.New("empty input")
	// ErrInputTooLong is returned when the text exceeds MaxInputLength.
	ErrInputTooLong = errors.New("input too long")
	// ErrInvalidLLMResponse is returned when the model reply holds no JSON object.
	ErrInvalidLLMResponse = errors.New("invalid LLM response")
	// ErrIncompleteBaseline is returned when a required field is missing.
	ErrIncompleteBaseline = errors.New("incomplete baseline")
	// ErrLLMUnavailable wraps failures of the LLM call itself.
	ErrLLMUnavailable = errors.New("LLM unavailable")
)

// Extractor runs the LLM extraction followed by temporal resolution.
type Extractor struct {
	llm      ai.LLMService
	cache    cache.CacheService
	cacheTTL time.Duration
	model    string

	timezone string
	tzOffset string
	location *time.Location
	now      func() time.Time
}

// Option configures an Extractor.
type Option func(*Extractor)

// WithCache caches raw model replies per prompt.
func WithCache(c cache.CacheService, ttl time.Duration) Option {
	return func(e *Extractor) {
		e.cache = c
		e.cacheTTL = ttl
	}
}

// WithModel sets the model name used as cache namespace.
func WithModel(model string) Option {
	return func(e *Extractor) { e.model = model }
}

// WithTimezone sets the IANA zone written into events, its location and the
// offset suffix of resolved timestamps.
func WithTimezone(timezone string, loc *time.Location, tzOffset string) Option {
	return func(e *Extractor) {
		e.timezone = timezone
		e.location = loc
		e.tzOffset = tzOffset
	}
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(e *Extractor) { e.now = now }
}

// NewExtractor creates an Extractor. Defaults: America/Sao_Paulo, -03:00.
func NewExtractor(llm ai.LLMService, opts ...Option) *Extractor {
	e := &Extractor{
		llm:      llm,
		model:    "default",
		timezone: "America/Sao_Paulo",
		tzOffset: "-03:00",
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.location == nil {
		loc, err := time.LoadLocation(e.timezone)
		if err != nil {
			slog.Warn("unknown timezone, falling back to fixed offset",
				slog.String("timezone", e.timezone),
				slog.String("offset", e.tzOffset))
			loc = fixedZone(e.tzOffset)
		}
		e.location = loc
	}
	return e
}

// Request is one extraction. Zero fields take the Extractor defaults.
type Request struct {
	Text     string
	BaseDate time.Time
	Timezone string
	Location *time.Location
	TZOffset string
}

// Result is a resolved event plus how it was obtained.
type Result struct {
	Event      ptime.Event
	Baseline   ptime.Event
	Signal     ptime.Signal
	Normalized string
	BaseDate   time.Time
	Cached     bool
}

// Extract resolves text against the current time.
func (e *Extractor) Extract(ctx context.Context, text string) (*Result, error) {
	return e.Parse(ctx, Request{Text: text})
}

// Parse runs the full pipeline for req.
func (e *Extractor) Parse(ctx context.Context, req Request) (*Result, error) {
	text := strings.TrimSpace(req.Text)
	if text == "" {
		return nil, ErrEmptyInput
	}
	if n := utf8.RuneCountInString(text); n > MaxInputLength {
		return nil, errors.Wrapf(ErrInputTooLong, "maximum %d characters, got %d", MaxInputLength, n)
	}

	timezone, loc, tzOffset := e.timezone, e.location, e.tzOffset
	if req.Timezone != "" {
		timezone = req.Timezone
	}
	if req.Location != nil {
		loc = req.Location
	}
	if req.TZOffset != "" {
		tzOffset = req.TZOffset
	}

	base := req.BaseDate
	if base.IsZero() {
		base = e.now()
	}
	base = base.In(loc)

	normalized := ptime.Normalize(text)
	messages := buildPrompt(normalized, ptime.Format(base, tzOffset), timezone, tzOffset)

	raw, cached, err := e.chat(ctx, messages)
	if err != nil {
		return nil, err
	}

	baseline, err := decodeBaseline(raw)
	if err != nil {
		slog.Warn("discarding LLM reply", slog.String("error", err.Error()), slog.String("reply", timeout.Truncate(raw)))
		return nil, err
	}
	baseline.Timezone = timezone

	res, err := ptime.Resolve(text, base, baseline, tzOffset)
	if err != nil {
		return nil, err
	}

	if !cached && e.cache != nil {
		key := cache.Key(e.model, messages[0].Content, messages[1].Content)
		if err := e.cache.Set(ctx, key, []byte(raw), e.cacheTTL); err != nil {
			slog.Warn("failed to cache LLM reply", slog.String("error", err.Error()))
		}
	}

	slog.Debug("event resolved",
		slog.String("signal", res.Signal.Kind.String()),
		slog.String("start", res.Event.Start),
		slog.String("end", res.Event.End),
		slog.Bool("cached", cached))

	return &Result{
		Event:      res.Event.Tidy(),
		Baseline:   baseline,
		Signal:     res.Signal,
		Normalized: normalized,
		BaseDate:   base,
		Cached:     cached,
	}, nil
}

func (e *Extractor) chat(ctx context.Context, messages []ai.Message) (string, bool, error) {
	var key string
	if e.cache != nil {
		key = cache.Key(e.model, messages[0].Content, messages[1].Content)
		if raw, ok := e.cache.Get(ctx, key); ok {
			return string(raw), true, nil
		}
	}

	raw, err := e.llm.Chat(ctx, messages)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", false, errors.Wrap(ctxErr, "LLM call")
		}
		return "", false, errors.Wrapf(ErrLLMUnavailable, "%v", err)
	}
	return raw, false, nil
}

// PurgeCache drops every cached reply of the extractor's model.
func (e *Extractor) PurgeCache(ctx context.Context) error {
	if e.cache == nil {
		return nil
	}
	return e.cache.Invalidate(ctx, e.model+":*")
}

func fixedZone(offset string) *time.Location {
	t, err := time.Parse("-07:00", offset)
	if err != nil {
		return time.UTC
	}
	_, secs := t.Zone()
	return time.FixedZone(offset, secs)
}
