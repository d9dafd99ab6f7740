package domain

// Viewer represents the requesting identity as derived from a verified token.
// A zero Viewer is an anonymous visitor.
type Viewer struct {
	ID            string `json:"id,omitempty"`
	DisplayName   string `json:"display_name,omitempty"`
	Tier          string `json:"tier,omitempty"`
	Authenticated bool   `json:"authenticated"`
}

func (v Viewer) IsAuthenticated() bool {
	return v.Authenticated && v.ID != ""
}
