// Package finder answers "where is the closest X" questions: it loads a
// dataset, ranks its addresses by driving distance from the caller, and
// renders the winning record into speech.
package finder

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"text/template"

	"go.uber.org/zap"

	"mycity/internal/location"
	"mycity/internal/records"
)

// RecordFormatter rewrites fields of the winning record before rendering.
type RecordFormatter func(fields map[string]string)

// Failure describes a lookup that ended without a closest feature. It never
// carries the caller's address.
type Failure struct {
	FeatureType string
	Reason      error
}

type FailureReporter interface {
	ReportFailure(ctx context.Context, f Failure)
}

type Resolver interface {
	ClosestFeature(ctx context.Context, origin string, addressIndex int, featureType, errorMessage string, features [][]string) (*location.Closest, error)
}

type Config struct {
	Source     Source
	AddressKey string
	Speech     *template.Template
	Format     RecordFormatter
	City       string
	State      string
	// ErrorMessage is logged when no feature is found.
	ErrorMessage string
}

type Finder struct {
	cfg      Config
	resolver Resolver
	reporter FailureReporter
	log      *zap.Logger
}

type Option func(*Finder)

func WithReporter(r FailureReporter) Option {
	return func(f *Finder) { f.reporter = r }
}

func WithLogger(l *zap.Logger) Option {
	return func(f *Finder) { f.log = l }
}

func New(cfg Config, resolver Resolver, opts ...Option) *Finder {
	f := &Finder{cfg: cfg, resolver: resolver, log: zap.NewNop()}
	for _, o := range opts {
		o(f)
	}
	if f.cfg.ErrorMessage == "" {
		f.cfg.ErrorMessage = fmt.Sprintf("Could not find closest %s", cfg.AddressKey)
	}
	return f
}

// Find returns the rendered speech for the feature closest to origin. It
// returns "" and a nil error when nothing could be resolved; dataset and
// template errors are returned.
func (f *Finder) Find(ctx context.Context, origin string) (string, error) {
	_, recs, err := f.cfg.Source.Load(ctx)
	if err != nil {
		return "", fmt.Errorf("load dataset: %w", err)
	}

	recs = withAddress(recs, f.cfg.AddressKey)
	byAddress, err := records.MapAddressesToRecords(recs, f.cfg.AddressKey, f.cfg.City, f.cfg.State)
	if err != nil {
		return "", err
	}
	addresses, err := records.AddCityAndState(recs, f.cfg.AddressKey, f.cfg.City, f.cfg.State)
	if err != nil {
		return "", err
	}
	addresses = uniqueAddresses(addresses)

	features := make([][]string, len(addresses))
	for i, a := range addresses {
		features[i] = []string{a}
	}

	f.log.Debug("finding closest feature",
		zap.String("origin", origin),
		zap.String("feature_type", f.cfg.AddressKey),
		zap.Int("candidates", len(features)))

	closest, err := f.resolver.ClosestFeature(ctx, origin, 0, f.cfg.AddressKey, f.cfg.ErrorMessage, features)
	if err != nil {
		if errors.Is(err, location.ErrNotFound) {
			f.report(ctx, err)
			return "", nil
		}
		return "", err
	}

	rec, ok := byAddress[closest.Address]
	if !ok {
		return "", fmt.Errorf("closest address %q has no record", closest.Address)
	}

	fields := rec.Fields()
	for k, v := range closest.Fields() {
		fields[k] = v
	}
	if f.cfg.Format != nil {
		f.cfg.Format(fields)
	}

	var b strings.Builder
	if err := f.cfg.Speech.Execute(&b, fields); err != nil {
		return "", fmt.Errorf("render speech: %w", err)
	}
	return strings.TrimSpace(b.String()), nil
}

func (f *Finder) report(ctx context.Context, reason error) {
	if f.reporter == nil {
		return
	}
	f.reporter.ReportFailure(ctx, Failure{
		FeatureType: f.cfg.AddressKey,
		Reason:      reason,
	})
}

// withAddress drops records whose address field is blank. Records missing
// the field are kept so enrichment reports the schema mismatch.
func withAddress(recs []records.Record, field string) []records.Record {
	out := recs[:0:0]
	for _, r := range recs {
		v, ok := r.Get(field)
		if ok && strings.TrimSpace(v) == "" {
			continue
		}
		out = append(out, r)
	}
	return out
}

// uniqueAddresses keeps the first occurrence of each address, compared
// case-insensitively.
func uniqueAddresses(in []string) []string {
	seen := map[string]bool{}
	out := make([]string, 0, len(in))
	for _, v := range in {
		k := strings.ToLower(strings.TrimSpace(v))
		if seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, v)
	}
	return out
}

// MustSpeech parses a speech template. Missing keys are an error at render
// time.
func MustSpeech(name, text string) *template.Template {
	return template.Must(template.New(name).Option("missingkey=error").Parse(text))
}
