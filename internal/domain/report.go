package domain

// SyncReport summarizes one sync of the source data file with the catalog.
type SyncReport struct {
	Total    int            `json:"total"`
	Found    int            `json:"found"`
	NotFound []MissingEntry `json:"not_found"`
	Updates  []EntryUpdate  `json:"updates"`
}

// MissingEntry is a source entry without a catalog match. Suggestion fields
// are filled when a close but unaccepted record exists.
type MissingEntry struct {
	ID              string  `json:"id"`
	Name            string  `json:"name"`
	NameEn          string  `json:"nameEn"`
	SuggestedID     int     `json:"suggestedId,omitempty"`
	SuggestedName   string  `json:"suggestedName,omitempty"`
	SuggestionScore float64 `json:"suggestionScore,omitempty"`
}

// EntryUpdate records which catalog record fed a source entry.
type EntryUpdate struct {
	FishID             string `json:"fishId"`
	FishName           string `json:"fishName"`
	CatalogID          int    `json:"catalogId"`
	CatalogName        string `json:"catalogName"`
	MatchedBy          string `json:"matchedBy"`
	HasImage           bool   `json:"hasImage"`
	HasDescription     bool   `json:"hasDescription"`
	ImageUpdated       bool   `json:"imageUpdated"`
	DescriptionUpdated bool   `json:"descriptionUpdated"`
}

// CatalogStats are the counts shown by the stats command.
type CatalogStats struct {
	Records          int
	Fish             int
	Marine           int
	Freshwater       int
	WithImage        int
	PlaceholderImage int
	WithoutImage     int
}
