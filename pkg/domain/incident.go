package domain

import (
	"strings"
	"time"
	"unicode/utf8"
)

// Category classifies an incident by the kind of response it calls for.
type Category string

const (
	CategorySOS     Category = "SOS"     // people in danger, immediate help needed
	CategoryShelter Category = "SHELTER" // shelters, aid centers, resources
	CategoryInfo    Category = "INFO"    // advisories, closures, general updates
	CategoryOther   Category = "OTHER"
)

// Categories lists every valid category value.
var Categories = []Category{CategorySOS, CategoryShelter, CategoryInfo, CategoryOther}

// ParseCategory coerces a raw classifier label to a valid category.
// Labels are matched case-insensitively; anything unrecognized becomes
// CategoryOther, and raw labels are never stored.
func ParseCategory(raw string) Category {
	switch c := Category(strings.ToUpper(strings.TrimSpace(raw))); c {
	case CategorySOS, CategoryShelter, CategoryInfo, CategoryOther:
		return c
	default:
		return CategoryOther
	}
}

// Status tracks an incident's lifecycle.
type Status string

const (
	StatusActive   Status = "active"
	StatusResolved Status = "resolved"
)

// MaxContentLength bounds the article content kept on a stored incident.
const MaxContentLength = 1000

// Incident is a structured, geolocated record derived from one news article.
// URL is the natural key: at most one incident per distinct URL exists at
// any time. ID and CreatedAt are assigned by the store on first insert and
// survive subsequent upserts of the same URL.
type Incident struct {
	ID           string    `bson:"_id,omitempty" json:"id"`
	URL          string    `bson:"url" json:"url"`
	Title        string    `bson:"title" json:"title"`
	Content      string    `bson:"content" json:"content"`
	Category     Category  `bson:"category" json:"category"`
	Description  string    `bson:"description" json:"description"`
	LocationName string    `bson:"locationName" json:"locationName"`
	Region       string    `bson:"region" json:"region"`
	Topic        string    `bson:"topic" json:"topic"`
	Location     GeoPoint  `bson:"location" json:"location"`
	Status       Status    `bson:"status" json:"status"`
	CreatedAt    time.Time `bson:"createdAt" json:"createdAt"`
}

// TruncateContent returns s capped at MaxContentLength bytes. The cut backs
// up to a rune boundary so the stored content stays valid UTF-8.
func TruncateContent(s string) string {
	return TruncateString(s, MaxContentLength)
}

// TruncateString caps s at max bytes without splitting a multibyte rune.
func TruncateString(s string, max int) string {
	if len(s) <= max {
		return s
	}
	cut := max
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}
