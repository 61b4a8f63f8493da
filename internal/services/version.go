package services

import (
	"context"
	"fmt"

	"github.com/huangang/lvepanel/internal/datastore"
	"github.com/huangang/lvepanel/internal/models"
	"github.com/huangang/lvepanel/pkg/logger"
)

// VersionBuckets holds the version labels of each category.
type VersionBuckets struct {
	PHP        []string `json:"php"`
	NodeJS     []string `json:"nodejs"`
	MySQL      []string `json:"mysql"`
	PostgreSQL []string `json:"postgresql"`
}

func (b *VersionBuckets) add(c Category, version string) {
	switch c {
	case CategoryPHP:
		b.PHP = append(b.PHP, version)
	case CategoryNodeJS:
		b.NodeJS = append(b.NodeJS, version)
	case CategoryMySQL:
		b.MySQL = append(b.MySQL, version)
	case CategoryPostgreSQL:
		b.PostgreSQL = append(b.PostgreSQL, version)
	}
}

// For returns the bucket of c.
func (b VersionBuckets) For(c Category) []string {
	switch c {
	case CategoryPHP:
		return b.PHP
	case CategoryNodeJS:
		return b.NodeJS
	case CategoryMySQL:
		return b.MySQL
	case CategoryPostgreSQL:
		return b.PostgreSQL
	default:
		return nil
	}
}

// VersionLookup is the grouped set of active versions used to fill the
// create form's choice lists.
type VersionLookup struct {
	Buckets VersionBuckets `json:"buckets"`
	// Defaults holds the first version of every non-empty bucket.
	Defaults map[Category]string `json:"defaults"`
}

// Default returns the pre-selected version of c, if its bucket is non-empty.
func (l *VersionLookup) Default(c Category) (string, bool) {
	if l == nil {
		return "", false
	}
	v, ok := l.Defaults[c]
	return v, ok
}

// GroupVersions buckets rows by category, keeping the order they came in.
func GroupVersions(rows []models.AvailableVersion) *VersionLookup {
	lookup := &VersionLookup{Defaults: make(map[Category]string)}
	for _, row := range rows {
		c, ok := ParseCategory(row.SoftwareType)
		if !ok {
			continue
		}
		lookup.Buckets.add(c, row.Version)
	}
	for _, c := range AllCategories() {
		if bucket := lookup.Buckets.For(c); len(bucket) > 0 {
			lookup.Defaults[c] = bucket[0]
		}
	}
	return lookup
}

type VersionService struct {
	store *datastore.Client
}

func NewVersionService(store *datastore.Client) *VersionService {
	return &VersionService{store: store}
}

// Lookup reads every active version and groups it for the create form.
func (s *VersionService) Lookup(ctx context.Context) (*VersionLookup, error) {
	var rows []models.AvailableVersion
	err := s.store.From(models.TableAvailableVersions).
		Select("*").
		Eq("is_active", true).
		Find(ctx, &rows)
	if err != nil {
		logger.Error().Err(err).Msg("Error loading versions")
		return nil, err
	}
	return GroupVersions(rows), nil
}

// Browse reads every version, active or not, sorted by category.
func (s *VersionService) Browse(ctx context.Context) ([]models.AvailableVersion, error) {
	var rows []models.AvailableVersion
	err := s.store.From(models.TableAvailableVersions).
		Select("*").
		Order("software_type", true).
		Find(ctx, &rows)
	if err != nil {
		logger.Error().Err(err).Msg("Error loading versions")
		return nil, err
	}
	return rows, nil
}

type catalogRow struct {
	SoftwareType string `json:"software_type"`
	Version      string `json:"version"`
	IsActive     bool   `json:"is_active"`
}

// SeedCatalog writes the default catalog when available_versions is empty
// and returns the number of rows written.
func (s *VersionService) SeedCatalog(ctx context.Context) (int, error) {
	var existing []models.AvailableVersion
	if err := s.store.From(models.TableAvailableVersions).Select("id").Find(ctx, &existing); err != nil {
		return 0, fmt.Errorf("check versions: %w", err)
	}
	if len(existing) > 0 {
		return 0, nil
	}

	catalog := models.DefaultVersionCatalog()
	rows := make([]catalogRow, 0, len(catalog))
	for _, v := range catalog {
		rows = append(rows, catalogRow{SoftwareType: v.SoftwareType, Version: v.Version, IsActive: v.IsActive})
	}
	if err := s.store.From(models.TableAvailableVersions).Insert(ctx, rows); err != nil {
		return 0, fmt.Errorf("seed versions: %w", err)
	}
	return len(rows), nil
}

// FilterVersions keeps the rows of one software_type. An empty filter keeps
// everything.
func FilterVersions(rows []models.AvailableVersion, filter string) []models.AvailableVersion {
	if filter == "" {
		return rows
	}
	filtered := make([]models.AvailableVersion, 0, len(rows))
	for _, row := range rows {
		if row.SoftwareType == filter {
			filtered = append(filtered, row)
		}
	}
	return filtered
}

// Categories returns the software types present in rows, first seen first.
func Categories(rows []models.AvailableVersion) []string {
	seen := make(map[string]bool)
	var types []string
	for _, row := range rows {
		if !seen[row.SoftwareType] {
			seen[row.SoftwareType] = true
			types = append(types, row.SoftwareType)
		}
	}
	return types
}

// VersionCard is one row of the versions browser.
type VersionCard struct {
	models.AvailableVersion
	Presentation Presentation `json:"presentation"`
	StatusLabel  string       `json:"status_label"`
	// Hidden marks a card outside the active filter on a page that keeps
	// every card.
	Hidden bool `json:"hidden,omitempty"`
}

// FilterChip is a filter button above the versions browser.
type FilterChip struct {
	Value  string `json:"value"`
	Label  string `json:"label"`
	Active bool   `json:"active"`
}

// VersionBrowser is everything the versions page draws.
type VersionBrowser struct {
	Filter     string        `json:"filter"`
	Chips      []FilterChip  `json:"chips"`
	Cards      []VersionCard `json:"cards"`
	LoadFailed bool          `json:"load_failed"`
}

const allVersionsLabel = "Все"

// BuildVersionBrowser applies filter to rows already fetched. No new fetch
// happens when only the filter changes.
func BuildVersionBrowser(rows []models.AvailableVersion, filter string) *VersionBrowser {
	view := &VersionBrowser{Filter: filter}

	view.Chips = append(view.Chips, FilterChip{Value: "", Label: allVersionsLabel, Active: filter == ""})
	for _, t := range Categories(rows) {
		view.Chips = append(view.Chips, FilterChip{Value: t, Label: PresentationFor(t).Label, Active: filter == t})
	}

	for _, row := range FilterVersions(rows, filter) {
		view.Cards = append(view.Cards, newVersionCard(row))
	}
	return view
}

// BuildVersionPage keeps every row and hides the ones outside filter, so the
// page switches filters in the browser without fetching again.
func BuildVersionPage(rows []models.AvailableVersion, filter string) *VersionBrowser {
	view := BuildVersionBrowser(rows, "")
	view.Filter = filter
	for i := range view.Chips {
		view.Chips[i].Active = view.Chips[i].Value == filter
	}
	for i := range view.Cards {
		view.Cards[i].Hidden = filter != "" && view.Cards[i].SoftwareType != filter
	}
	return view
}

func newVersionCard(row models.AvailableVersion) VersionCard {
	status := "Неактивна"
	if row.IsActive {
		status = "Активна"
	}
	return VersionCard{
		AvailableVersion: row,
		Presentation:     PresentationFor(row.SoftwareType),
		StatusLabel:      status,
	}
}
