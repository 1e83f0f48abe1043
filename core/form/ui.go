package form

import (
	"regexp"
	"strings"
	"time"
)

// Scroll and banner thresholds, in pixels and time.
const (
	ScrollSpyOffset       = 100
	NavbarOffset          = 80
	NavbarShadowThreshold = 50
	BackToTopThreshold    = 300
	BannerTimeout         = 5 * time.Second
)

// Section is a page section as laid out by the renderer.
type Section struct {
	ID     string
	Top    int
	Height int
}

// ActiveSection returns the ID of the section the nav should highlight at scroll position y,
// or "" when none matches. Later sections win on overlap.
func ActiveSection(sections []Section, y int) string {
	var current string
	for _, s := range sections {
		top := s.Top - ScrollSpyOffset
		if y >= top && y < top+s.Height {
			current = s.ID
		}
	}
	return current
}

// ScrollTarget is where an anchor link scrolls to, leaving room for the fixed navbar.
func ScrollTarget(top int) int {
	return top - NavbarOffset
}

func NavbarShadow(y int) bool     { return y > NavbarShadowThreshold }
func BackToTopVisible(y int) bool { return y > BackToTopThreshold }

type BannerKind string

const (
	BannerSuccess BannerKind = "success"
	BannerError   BannerKind = "danger"
	BannerInfo    BannerKind = "info"
)

// Banner is an alert shown above a form. Every banner can be dismissed; success banners also expire.
type Banner struct {
	Kind    BannerKind `json:"kind"`
	Message string     `json:"message"`
	ShownAt time.Time  `json:"shown_at"`
}

func NewBanner(kind BannerKind, msg string, now time.Time) Banner {
	return Banner{Kind: kind, Message: msg, ShownAt: now}
}

func (b Banner) AutoDismiss() bool { return b.Kind == BannerSuccess }

// Expired reports whether an auto-dismissing banner should be gone at now.
func (b Banner) Expired(now time.Time) bool {
	return b.AutoDismiss() && !now.Before(b.ShownAt.Add(BannerTimeout))
}

func (b Banner) Class() string { return "alert alert-" + string(b.Kind) + " alert-dismissible" }

var nonDigits = regexp.MustCompile(`\D`)

// FormatPhone normalises a Nigerian number as it is typed: digits only, with a +234 prefix.
func FormatPhone(raw string) string {
	v := nonDigits.ReplaceAllString(raw, "")
	switch {
	case strings.HasPrefix(v, "234"):
		return "+" + v
	case strings.HasPrefix(v, "0"):
		return "+234" + v[1:]
	case len(v) == 10:
		return "+234" + v
	}
	return v
}
