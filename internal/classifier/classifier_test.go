package classifier

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/Ashish-Ram0906/remote-work-tracker-backend/internal/domain"
)

type stubLabeler struct {
	category domain.Category
	calls    int
}

func (s *stubLabeler) Label(ctx context.Context, app, title string) domain.Category {
	s.calls++
	return s.category
}

func newTestClassifier(labeler Labeler) *Classifier {
	return New(Config{
		WorkApps:    []string{"code", "terminal", "slack"},
		PrivateApps: []string{"spotify", "netflix"},
		BrowserApps: []string{"chrome", "firefox"},
	}, labeler, zerolog.Nop())
}

func TestClassifyIdleNeverCallsLabeler(t *testing.T) {
	labeler := &stubLabeler{category: domain.CategoryWork}
	c := newTestClassifier(labeler)

	out := c.Classify(context.Background(), domain.RawSample{
		State: domain.StateIdle,
		App:   "Chrome",
		Title: "github.com - pull requests",
	})

	require.Equal(t, domain.CategoryIdle, out.Category)
	require.Nil(t, out.Details)
	require.Zero(t, labeler.calls)
}

func TestClassifyWorkAppKeepsDetails(t *testing.T) {
	labeler := &stubLabeler{}
	c := newTestClassifier(labeler)

	out := c.Classify(context.Background(), domain.RawSample{
		State: domain.StateActive,
		App:   "Visual Studio Code",
		Title: "service.go",
	})

	require.Equal(t, domain.CategoryWork, out.Category)
	require.NotNil(t, out.Details)
	require.Equal(t, "Visual Studio Code - service.go", *out.Details)
	require.Zero(t, labeler.calls)
}

func TestClassifyPrivateAppDropsDetails(t *testing.T) {
	c := newTestClassifier(&stubLabeler{})

	out := c.Classify(context.Background(), domain.RawSample{
		State: domain.StateActive,
		App:   "Spotify",
		Title: "Deep Focus playlist",
	})

	require.Equal(t, domain.CategoryPrivate, out.Category)
	require.Nil(t, out.Details)
}

func TestClassifyBrowserWithoutTitleSkipsLabeler(t *testing.T) {
	labeler := &stubLabeler{category: domain.CategoryWork}
	c := newTestClassifier(labeler)

	out := c.Classify(context.Background(), domain.RawSample{
		State: domain.StateActive,
		App:   "Google Chrome",
		Title: "   ",
	})

	require.Equal(t, domain.CategoryPrivate, out.Category)
	require.Nil(t, out.Details)
	require.Zero(t, labeler.calls)
}

func TestClassifyBrowserDelegatesToLabeler(t *testing.T) {
	labeler := &stubLabeler{category: domain.CategoryWork}
	c := newTestClassifier(labeler)

	out := c.Classify(context.Background(), domain.RawSample{
		State: domain.StateActive,
		App:   "Firefox",
		Title: "Jira - WRK-113",
	})

	require.Equal(t, domain.CategoryWork, out.Category)
	require.NotNil(t, out.Details)
	require.Equal(t, "Firefox - Jira - WRK-113", *out.Details)
	require.Equal(t, 1, labeler.calls)
}

func TestClassifyBrowserPrivateLabelDropsDetails(t *testing.T) {
	labeler := &stubLabeler{category: domain.CategoryPrivate}
	c := newTestClassifier(labeler)

	out := c.Classify(context.Background(), domain.RawSample{
		State: domain.StateActive,
		App:   "Chrome",
		Title: "YouTube - cat videos",
	})

	require.Equal(t, domain.CategoryPrivate, out.Category)
	require.Nil(t, out.Details)
	require.Equal(t, 1, labeler.calls)
}

func TestClassifyUnknownAppDefaultsToPrivate(t *testing.T) {
	labeler := &stubLabeler{category: domain.CategoryWork}
	c := newTestClassifier(labeler)

	out := c.Classify(context.Background(), domain.RawSample{
		State: domain.StateActive,
		App:   "Some Obscure Tool",
		Title: "anything",
	})

	require.Equal(t, domain.CategoryPrivate, out.Category)
	require.Nil(t, out.Details)
	require.Zero(t, labeler.calls)
}

func TestClassifyMatchesAppSubstring(t *testing.T) {
	c := newTestClassifier(&stubLabeler{})

	out := c.Classify(context.Background(), domain.RawSample{
		State: domain.StateActive,
		App:   "iTerm Terminal",
		Title: "make lint",
	})

	require.Equal(t, domain.CategoryWork, out.Category)
}
