// Package classifier turns raw activity samples into categorized records.
//
// Classification is rule-first: idle samples and samples from known work or
// private applications never leave the process. Only browser activity with a
// window title is sent to the AI labeler, and every failure on that path
// degrades to Private so that no ambiguous detail is ever retained.
package classifier

import (
	"context"
	"strings"

	"github.com/rs/zerolog"

	"github.com/Ashish-Ram0906/remote-work-tracker-backend/internal/domain"
)

// Labeler decides between Work and Private for browser activity that the
// rule tables cannot resolve. Implementations must not return any category
// other than Work or Private and must absorb their own failures.
type Labeler interface {
	Label(ctx context.Context, app, title string) domain.Category
}

// Config carries the rule tables. Matching is case-insensitive substring
// matching against the reported application name.
type Config struct {
	WorkApps    []string
	PrivateApps []string
	BrowserApps []string
}

// Classifier maps one raw sample to a classification.
type Classifier struct {
	workApps    []string
	privateApps []string
	browserApps []string
	labeler     Labeler
	logger      zerolog.Logger
}

// New constructs a Classifier. The rule tables are normalized once here so
// Classify only does lowercase substring checks.
func New(cfg Config, labeler Labeler, logger zerolog.Logger) *Classifier {
	return &Classifier{
		workApps:    lowerAll(cfg.WorkApps),
		privateApps: lowerAll(cfg.PrivateApps),
		browserApps: lowerAll(cfg.BrowserApps),
		labeler:     labeler,
		logger:      logger.With().Str("component", "classifier").Logger(),
	}
}

// Classify applies the rule tables in order, falling back to the AI labeler
// only for recognized browsers with a non-empty title. It never fails:
// malformed or missing fields resolve to Private.
func (c *Classifier) Classify(ctx context.Context, sample domain.RawSample) domain.Classification {
	// Idle time must never reach the AI labeler.
	if sample.State == domain.StateIdle {
		recordClassified(domain.CategoryIdle, branchIdle)
		return domain.Classification{Category: domain.CategoryIdle}
	}

	app := strings.ToLower(strings.TrimSpace(sample.App))

	if matchAny(app, c.workApps) {
		recordClassified(domain.CategoryWork, branchRule)
		return domain.Classification{Category: domain.CategoryWork, Details: workDetails(sample)}
	}

	if matchAny(app, c.privateApps) {
		// Details are dropped unconditionally here, whatever the title says.
		recordClassified(domain.CategoryPrivate, branchRule)
		return domain.Classification{Category: domain.CategoryPrivate}
	}

	if matchAny(app, c.browserApps) {
		if strings.TrimSpace(sample.Title) == "" {
			// Not enough signal to justify a network call; fail closed.
			recordClassified(domain.CategoryPrivate, branchRule)
			return domain.Classification{Category: domain.CategoryPrivate}
		}
		if c.labeler.Label(ctx, sample.App, sample.Title) == domain.CategoryWork {
			recordClassified(domain.CategoryWork, branchAI)
			return domain.Classification{Category: domain.CategoryWork, Details: workDetails(sample)}
		}
		recordClassified(domain.CategoryPrivate, branchAI)
		return domain.Classification{Category: domain.CategoryPrivate}
	}

	// Unrecognized application: default-deny.
	recordClassified(domain.CategoryPrivate, branchDefault)
	return domain.Classification{Category: domain.CategoryPrivate}
}

// workDetails composes the retained detail text for a Work sample:
// "app - title" when both are present, else whichever exists.
func workDetails(sample domain.RawSample) *string {
	app := strings.TrimSpace(sample.App)
	title := strings.TrimSpace(sample.Title)

	var details string
	switch {
	case app != "" && title != "":
		details = app + " - " + title
	case title != "":
		details = title
	case app != "":
		details = app
	default:
		return nil
	}
	return &details
}

func matchAny(app string, rules []string) bool {
	if app == "" {
		return false
	}
	for _, rule := range rules {
		if strings.Contains(app, rule) {
			return true
		}
	}
	return false
}

func lowerAll(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		v = strings.ToLower(strings.TrimSpace(v))
		if v != "" {
			out = append(out, v)
		}
	}
	return out
}
