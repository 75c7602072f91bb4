package content

import (
	"fmt"

	"github.com/lumenworks/vision-cms-backend/internal/ingest"
	"github.com/lumenworks/vision-cms-backend/pkg/db/models"
	pkgerrors "github.com/lumenworks/vision-cms-backend/pkg/errors"
	"github.com/shopspring/decimal"
)

// Section describes one media-backed content section: how its uploads become
// rows, which fields an update may touch, and whether it can be truncated.
type Section struct {
	// Name is the route segment and the object-key namespace.
	Name string
	// Table and Columns feed the batch insert builder; Columns in insert order.
	Table   string
	Columns []string
	Policy  ingest.Policy
	// Truncatable gates the section-wide DELETE route.
	Truncatable bool
	// MapRow combines a staged upload with the shared form fields.
	MapRow func(staged ingest.StagedFile, fields map[string]string) ([]any, error)
	// FieldColumns maps updatable form fields to their columns.
	FieldColumns map[string]string
	// NewList allocates the typed slice reads decode into.
	NewList func() any
}

// Batch renders the section as an ingestion batch description.
func (s Section) Batch() ingest.EntityBatch {
	return ingest.EntityBatch{
		Entity:  s.Name,
		Table:   s.Table,
		Columns: s.Columns,
		Policy:  s.Policy,
		MapRow:  s.MapRow,
	}
}

func field(fields map[string]string, key string) string {
	if fields == nil {
		return ""
	}
	return fields[key]
}

// parsePrice validates a product price as a non-negative decimal.
func parsePrice(raw string) (decimal.Decimal, error) {
	if raw == "" {
		return decimal.Decimal{}, pkgerrors.New(pkgerrors.CodeValidation, "price is required")
	}
	price, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Decimal{}, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid price %q", raw))
	}
	if price.IsNegative() {
		return decimal.Decimal{}, pkgerrors.New(pkgerrors.CodeValidation, "price must not be negative")
	}
	return price, nil
}

// Sections returns the static registry of media-backed content sections,
// keyed by route segment.
func Sections() map[string]Section {
	// home, showcase, mission, and partners all persist
	// (derived title, description, image) in that order.
	titleDescriptionImage := func(staged ingest.StagedFile, fields map[string]string) ([]any, error) {
		return []any{staged.Title, field(fields, "description"), staged.SecureURL}, nil
	}

	sections := []Section{
		{
			Name:         "home",
			Table:        "home",
			Columns:      []string{"title", "description", "image"},
			Policy:       ingest.PolicyLenient,
			Truncatable:  true,
			MapRow:       titleDescriptionImage,
			FieldColumns: map[string]string{"description": "description"},
			NewList:      func() any { return &[]models.HomeItem{} },
		},
		{
			Name:        "showcase",
			Table:       "showcase",
			Columns:     []string{"title", "description", "image"},
			Policy:      ingest.PolicyLenient,
			Truncatable: true,
			MapRow:      titleDescriptionImage,
			FieldColumns: map[string]string{
				"title":       "title",
				"description": "description",
			},
			NewList: func() any { return &[]models.ShowcaseItem{} },
		},
		{
			Name:         "mission",
			Table:        "mission",
			Columns:      []string{"title_of_section", "description", "image"},
			Policy:       ingest.PolicyLenient,
			MapRow:       titleDescriptionImage,
			FieldColumns: map[string]string{"description": "description"},
			NewList:      func() any { return &[]models.MissionItem{} },
		},
		{
			Name:    "team",
			Table:   "team",
			Columns: []string{"image", "team_member", "role"},
			Policy:  ingest.PolicyLenient,
			MapRow: func(staged ingest.StagedFile, fields map[string]string) ([]any, error) {
				return []any{staged.SecureURL, staged.Title, field(fields, "role")}, nil
			},
			FieldColumns: map[string]string{"role": "role"},
			NewList:      func() any { return &[]models.TeamMember{} },
		},
		{
			Name:         "partners",
			Table:        "partners",
			Columns:      []string{"title_name", "description", "image"},
			Policy:       ingest.PolicyLenient,
			MapRow:       titleDescriptionImage,
			FieldColumns: map[string]string{"description": "description"},
			NewList:      func() any { return &[]models.Partner{} },
		},
		{
			Name:    "values",
			Table:   "value_cards",
			Columns: []string{"image", "description"},
			Policy:  ingest.PolicyLenient,
			MapRow: func(staged ingest.StagedFile, fields map[string]string) ([]any, error) {
				description := field(fields, "description")
				if description == "" {
					return nil, pkgerrors.New(pkgerrors.CodeValidation, "Description is required")
				}
				return []any{staged.SecureURL, description}, nil
			},
			FieldColumns: map[string]string{"description": "description"},
			NewList:      func() any { return &[]models.ValueCard{} },
		},
		{
			Name:        "products",
			Table:       "products",
			Columns:     []string{"image", "title", "description", "price", "features", "style", "quantity", "category"},
			Policy:      ingest.PolicyLenient,
			Truncatable: true,
			MapRow: func(staged ingest.StagedFile, fields map[string]string) ([]any, error) {
				price, err := parsePrice(field(fields, "price"))
				if err != nil {
					return nil, err
				}
				return []any{
					staged.SecureURL,
					staged.Title,
					field(fields, "description"),
					price,
					field(fields, "features"),
					field(fields, "style"),
					field(fields, "quantity"),
					field(fields, "category"),
				}, nil
			},
			FieldColumns: map[string]string{
				"description": "description",
				"price":       "price",
				"category":    "category",
			},
			NewList: func() any { return &[]models.Product{} },
		},
	}

	byName := make(map[string]Section, len(sections))
	for _, s := range sections {
		byName[s.Name] = s
	}
	return byName
}
