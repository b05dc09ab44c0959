// Package models defines the shared record types of shajara.
package models

import "time"

// SourceMetadata describes one GEDCOM file in the sources directory.
type SourceMetadata struct {
	Path      string    `json:"path"`
	Checksum  string    `json:"checksum"`
	Size      int64     `json:"size"`
	UpdatedAt time.Time `json:"updated_at"`
}

// SourceStatus is the load state of one source as reported by the library.
type SourceStatus struct {
	SourceMetadata
	Generation  string    `json:"generation,omitempty"`
	Individuals int       `json:"individuals"`
	Families    int       `json:"families"`
	LoadedAt    time.Time `json:"loaded_at,omitempty"`
	Error       string    `json:"error,omitempty"`
}

// PersonSummary is one row of the person index.
type PersonSummary struct {
	Source    string `json:"source"`
	ID        string `json:"id"`
	Name      string `json:"name"`
	Nasab     string `json:"nasab"`
	Birth     string `json:"birth,omitempty"`
	Death     string `json:"death,omitempty"`
	Sex       string `json:"sex"`
	IsPrivate bool   `json:"-"`
}
