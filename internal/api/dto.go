package api

import (
	"github.com/starford/shajara/internal/gedcom"
	"github.com/starford/shajara/internal/models"
	"github.com/starford/shajara/internal/treeservice"
)

// FamilyInfo is a configured family (aliased from the domain layer).
type FamilyInfo = treeservice.FamilyInfo

// FamilyDetail is a family with its root and stats (aliased from the domain layer).
type FamilyDetail = treeservice.FamilyDetail

// PersonDetail is a person with relatives (aliased from the domain layer).
type PersonDetail = treeservice.PersonDetail

// FamilyListResponse wraps the family listing.
type FamilyListResponse struct {
	Families []FamilyInfo `json:"families" validate:"required"`
}

// RootsResponse wraps root-selector candidates.
type RootsResponse struct {
	Strategy gedcom.RootStrategy   `json:"strategy" example:"descendants" validate:"required"`
	Roots    []gedcom.RootAncestor `json:"roots" validate:"required"`
}

// VisibleResponse lists the ids shown for a root.
type VisibleResponse struct {
	RootID string   `json:"root_id,omitempty" example:"@I1@"`
	IDs    []string `json:"ids" validate:"required"`
}

// SearchResponse wraps family search results.
type SearchResponse struct {
	Results []treeservice.SearchHit `json:"results" validate:"required"`
}

// PeopleResponse wraps cross-source search results.
type PeopleResponse struct {
	Results []models.PersonSummary `json:"results" validate:"required"`
}

// SourcesResponse wraps the source listing.
type SourcesResponse struct {
	Sources []models.SourceStatus `json:"sources" validate:"required"`
}
