package api

import (
	"context"

	"github.com/starford/shajara/internal/gedcom"
	"github.com/starford/shajara/internal/models"
	"github.com/starford/shajara/internal/treeservice"
	"github.com/starford/shajara/internal/treeview"
)

// Service is the tree service as seen by the HTTP layer.
type Service interface {
	Families(ctx context.Context) []treeservice.FamilyInfo
	Family(ctx context.Context, slug string) (*treeservice.FamilyDetail, error)
	Roots(ctx context.Context, slug string, strategy gedcom.RootStrategy) ([]gedcom.RootAncestor, error)
	Tree(ctx context.Context, slug string, req treeservice.TreeRequest) (*treeview.View, error)
	Visible(ctx context.Context, slug, rootID string) ([]string, error)
	Person(ctx context.Context, slug, id string) (*treeservice.PersonDetail, error)
	Lineage(ctx context.Context, slug, id string) (*treeservice.LineageView, error)
	Search(ctx context.Context, slug, query string, limit int) ([]treeservice.SearchHit, error)
	SearchAll(ctx context.Context, query string, limit int) ([]models.PersonSummary, error)
	Sources() []models.SourceStatus
}

var _ Service = (*treeservice.Service)(nil)
