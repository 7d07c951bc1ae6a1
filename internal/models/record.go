package models

import "strings"

// Origin identifies the site a posting was collected from.
type Origin string

const OriginLinkedIn Origin = "LinkedIn"

type WorkArrangement string

const (
	WorkRemote WorkArrangement = "remote"
	WorkHybrid WorkArrangement = "hybrid"
	WorkOnSite WorkArrangement = "on-site"
)

// Demand buckets the number of applicants a posting has attracted.
type Demand string

const (
	Demand0To50    Demand = "0-50"
	Demand51To200  Demand = "51-200"
	Demand201To500 Demand = "201-500"
	DemandOver500  Demand = "500+"
)

// Match is the reviewer's own fit rating. It is never scraped.
type Match string

const (
	MatchLow    Match = "low"
	MatchMedium Match = "medium"
	MatchHigh   Match = "high"
)

// JobRecord is the structured posting produced by extraction and edited by
// the reviewer. A zero value field means the field is absent.
type JobRecord struct {
	Position        string          `json:"position,omitempty" validate:"required,max=500"`
	Company         string          `json:"company,omitempty" validate:"required,max=200"`
	PostingURL      string          `json:"posting_url,omitempty" validate:"required,linkedin_job_url"`
	Origin          Origin          `json:"origin,omitempty" validate:"required,eq=LinkedIn"`
	JobDescription  string          `json:"job_description,omitempty" validate:"max=50000"`
	WorkArrangement WorkArrangement `json:"work_arrangement,omitempty" validate:"omitempty,oneof=remote hybrid on-site"`
	Demand          Demand          `json:"demand,omitempty" validate:"omitempty,oneof=0-50 51-200 201-500 500+"`
	City            string          `json:"city,omitempty" validate:"max=200"`
	Country         string          `json:"country,omitempty" validate:"max=200"`
	Match           Match           `json:"match,omitempty" validate:"omitempty,oneof=low medium high"`
	Budget          *float64        `json:"budget,omitempty" validate:"omitempty,gte=0"`
}

// NewJobRecord returns a record carrying only the fields that never need a
// DOM lookup.
func NewJobRecord(postingURL string) JobRecord {
	return JobRecord{
		PostingURL: postingURL,
		Origin:     OriginLinkedIn,
	}
}

// MissingRequired lists the display names of required fields that are blank
// after trimming, in form order.
func (r JobRecord) MissingRequired() []string {
	var missing []string
	if strings.TrimSpace(r.Position) == "" {
		missing = append(missing, "Position")
	}
	if strings.TrimSpace(r.Company) == "" {
		missing = append(missing, "Company")
	}
	if strings.TrimSpace(r.PostingURL) == "" {
		missing = append(missing, "Posting URL")
	}
	return missing
}

// ExistingRecordRef points at a record already stored for a posting URL.
type ExistingRecordRef struct {
	ID  string `json:"id"`
	URL string `json:"url,omitempty"`
}

// ChunkText splits text into pieces of at most size runes.
func ChunkText(text string, size int) []string {
	if text == "" || size <= 0 {
		return nil
	}
	runes := []rune(text)
	chunks := make([]string, 0, len(runes)/size+1)
	for start := 0; start < len(runes); start += size {
		end := start + size
		if end > len(runes) {
			end = len(runes)
		}
		chunks = append(chunks, string(runes[start:end]))
	}
	return chunks
}
