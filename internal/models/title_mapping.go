package models

// TitleMapping aliases a raw statement description to a canonical title.
// Many sources may map to the same canonical title; lookups during
// ingestion are exact, case-sensitive string matches.
type TitleMapping struct {
	Base
	SourceTitle    string `gorm:"uniqueIndex;not null" json:"source_title"`
	CanonicalTitle string `gorm:"not null" json:"canonical_title"`
}
