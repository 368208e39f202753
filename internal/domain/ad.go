package domain

import "time"

// AdType discriminates how an ad's content is rendered.
type AdType string

const (
	AdTypeText  AdType = "text"
	AdTypeImage AdType = "image"
	AdTypeVideo AdType = "video"
)

// ValidAdType reports whether t is one of the known ad types.
func ValidAdType(t AdType) bool {
	switch t {
	case AdTypeText, AdTypeImage, AdTypeVideo:
		return true
	}
	return false
}

// AdContent holds the renderable payload of an ad. MediaKey and MediaURL are
// empty for text ads.
type AdContent struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	MediaKey    string `json:"mediaKey,omitempty"`
	MediaURL    string `json:"src,omitempty"`
}

// Ad is a single advertisement record. CreatedAt is written once on first
// save and never overwritten; UpdatedAt is refreshed on every save.
type Ad struct {
	AdID      string            `json:"adId"`
	Type      AdType            `json:"type"`
	Content   AdContent         `json:"content"`
	Styles    map[string]string `json:"styles"`
	CreatedAt time.Time         `json:"createdAt"`
	UpdatedAt time.Time         `json:"updatedAt"`
}
