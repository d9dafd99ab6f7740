package playback

import "github.com/budokan/backend/domain"

// ResultKind tags what the rendering shell should do with a page result.
type ResultKind int

const (
	KindRender ResultKind = iota
	KindRedirect
	KindUpgradePrompt
)

// Result is the outcome of a page controller: render a view, send the
// viewer elsewhere, or show an upgrade prompt in place. Navigation is data
// here, not a side effect.
type Result struct {
	Kind     ResultKind
	Redirect string
	Live     *LiveView
	VOD      *VODView
	Upgrade  *UpgradeInfo
}

// LiveView is everything the realtime interface needs.
type LiveView struct {
	Session     *domain.TrainingSession `json:"session"`
	Viewer      domain.Viewer           `json:"viewer"`
	ViewerCount int                     `json:"viewer_count"`
}

// VODView is everything the playback page needs. Related sessions and
// progress are best-effort: empty when their lookups fail.
type VODView struct {
	Session   *domain.TrainingSession  `json:"session"`
	Viewer    domain.Viewer            `json:"viewer"`
	StreamURL string                   `json:"stream_url"`
	Progress  domain.WatchProgress     `json:"progress"`
	Related   []domain.TrainingSession `json:"related,omitempty"`
}

// UpgradeInfo backs the in-place upgrade prompt shown when the viewer's
// tier is too low for a recording. Tier is recoverable by the viewer, so
// it renders rather than redirecting.
type UpgradeInfo struct {
	Session      *domain.TrainingSession `json:"session"`
	CurrentTier  string                  `json:"current_tier"`
	RequiredTier string                  `json:"required_tier"`
	UpgradeURL   string                  `json:"upgrade_url"`
}

func redirect(target string) Result {
	return Result{Kind: KindRedirect, Redirect: target}
}
