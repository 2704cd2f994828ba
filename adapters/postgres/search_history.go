package postgres

import (
	"context"

	"github.com/jmoiron/sqlx"
	"github.com/jmoiron/sqlx/types"

	"github.com/konturio/insights-llm-api/ports"
)

// SearchHistoryRepository persists user search selections for relevance
// tuning.
type SearchHistoryRepository struct {
	db *sqlx.DB
}

// NewSearchHistoryRepository creates a new PostgreSQL search history repository
func NewSearchHistoryRepository(db *sqlx.DB) *SearchHistoryRepository {
	return &SearchHistoryRepository{db: db}
}

type searchChoiceRow struct {
	AppID               string         `db:"app_id"`
	Query               string         `db:"query"`
	SearchResults       types.JSONText `db:"search_results"`
	SelectedFeature     types.JSONText `db:"selected_feature"`
	SelectedFeatureType string         `db:"selected_feature_type"`
}

// RecordChoice records which search result the user picked.
func (r *SearchHistoryRepository) RecordChoice(ctx context.Context, choice *ports.SearchChoice) error {
	row := searchChoiceRow{
		AppID:               choice.AppID,
		Query:               choice.Query,
		SearchResults:       types.JSONText(choice.SearchResults),
		SelectedFeature:     types.JSONText(choice.SelectedFeature),
		SelectedFeatureType: choice.SelectedFeatureType,
	}
	_, err := r.db.NamedExecContext(ctx, `
		INSERT INTO search_history (
			app_id, query, search_results, selected_feature, selected_feature_type
		) VALUES (
			:app_id, :query, :search_results, :selected_feature, :selected_feature_type
		)
	`, row)
	return err
}
