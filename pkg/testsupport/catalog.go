package testsupport

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"time"

	"github.com/goliatone/go-scholarship-catalog/store"
)

// Dataset sizes of the standard catalog.
const (
	EngineeringScholarships = 12
	TotalScholarships       = 15
	PublishedStories        = 2
	PublishedPosts          = 2
)

// Seeder is satisfied by store/memstore.
type Seeder interface {
	Seed(table string, rows ...store.Row)
}

// Catalog returns the standard dataset keyed by table. Rows alternate
// between snake_case, camelCase and legacy "_id" shapes so every consumer
// sees the key conventions found in production data.
func Catalog() map[string][]store.Row {
	return map[string][]store.Row{
		"categories":      Categories(),
		"countries":       Countries(),
		"levels":          Levels(),
		"scholarships":    Scholarships(),
		"success_stories": Stories(),
		"posts":           Posts(),
	}
}

// SeedCatalog loads Catalog into s.
func SeedCatalog(s Seeder) {
	data := Catalog()
	for _, table := range store.Tables {
		s.Seed(table, data[table]...)
	}
}

func Categories() []store.Row {
	return []store.Row{
		{"id": int64(1), "name": "STEM", "slug": "stem", "description": "Science, technology, engineering and mathematics"},
		{"id": int64(2), "name": "Arts", "slug": "arts", "description": "Humanities and fine arts"},
		{"_id": "3", "name": "Business", "slug": "business"},
	}
}

func Countries() []store.Row {
	return []store.Row{
		{"id": int64(1), "name": "Germany", "slug": "germany", "flag_url": "/flags/de.svg"},
		{"id": int64(2), "name": "Canada", "slug": "canada", "flagUrl": "/flags/ca.svg"},
	}
}

func Levels() []store.Row {
	return []store.Row{
		{"id": int64(1), "name": "Masters", "slug": "masters"},
		{"id": int64(2), "name": "PhD", "slug": "phd"},
	}
}

// Scholarships returns EngineeringScholarships rows matching "engineering"
// followed by three that do not. The last one references a category that
// does not exist.
func Scholarships() []store.Row {
	rows := make([]store.Row, 0, TotalScholarships)
	for i := 1; i <= EngineeringScholarships; i++ {
		category := int64(2)
		if i%2 == 0 {
			category = 1
		}
		country := int64(1)
		if i%3 == 0 {
			country = 2
		}
		created := Epoch.Add(time.Duration(i) * time.Hour)
		slug := fmt.Sprintf("engineering-scholarship-%02d", i)
		title := fmt.Sprintf("Engineering Scholarship %02d", i)

		if i%2 == 0 {
			rows = append(rows, store.Row{
				"id":              int64(i),
				"title":           title,
				"slug":            slug,
				"description":     "Funding for engineering students",
				"category_id":     category,
				"country_id":      country,
				"level_id":        int64(1),
				"is_fully_funded": i%4 == 0,
				"is_featured":     i <= 3,
				"is_published":    true,
				"deadline":        Epoch.AddDate(0, 6, i),
				"created_at":      created,
			})
			continue
		}
		rows = append(rows, store.Row{
			"id":            int64(i),
			"title":         title,
			"slug":          slug,
			"description":   "Funding for engineering students",
			"categoryId":    category,
			"countryId":     country,
			"levelId":       int64(1),
			"isFullyFunded": false,
			"isFeatured":    i <= 3,
			"isPublished":   true,
			"deadline":      Epoch.AddDate(0, 6, i).Format(time.RFC3339),
			"createdAt":     created,
		})
	}

	rows = append(rows,
		store.Row{
			"id": int64(13), "title": "Medicine Award", "slug": "medicine-award",
			"description": "For future doctors", "category_id": int64(1), "country_id": int64(2),
			"level_id": int64(2), "is_fully_funded": true, "is_published": true,
			"created_at": Epoch.Add(13 * time.Hour),
		},
		store.Row{
			"id": int64(14), "title": "Art History Grant", "slug": "art-history-grant",
			"description": "Museum studies", "categoryId": int64(2),
			"isFullyFunded": false, "isPublished": false,
			"createdAt": Epoch.Add(14 * time.Hour),
		},
		store.Row{
			"id": int64(15), "title": "Business Fellowship", "slug": "business-fellowship",
			"description": "Leadership programme", "category_id": int64(99),
			"is_fully_funded": false, "is_published": true,
			"created_at": Epoch.Add(15 * time.Hour),
		},
	)
	return rows
}

func Stories() []store.Row {
	return []store.Row{
		{
			"id": int64(1), "title": "From Accra to Berlin", "slug": "accra-to-berlin",
			"student_name": "Ama Mensah", "content": "<p>Ama won a full scholarship.</p>",
			"is_published": true, "created_at": Epoch.Add(time.Hour),
		},
		{
			"id": int64(2), "title": "A PhD in Toronto", "slug": "phd-in-toronto",
			"name": "Omar Haddad", "content": "Omar studied physics.", "excerpt": "Physics in Canada",
			"isPublished": true, "createdAt": Epoch.Add(2 * time.Hour),
		},
		{
			"id": int64(3), "title": "Draft story", "slug": "draft-story",
			"name": "Hidden", "is_published": false, "created_at": Epoch.Add(3 * time.Hour),
		},
	}
}

func Posts() []store.Row {
	return []store.Row{
		{
			"id": int64(1), "title": "How to write a motivation letter", "slug": "motivation-letter",
			"content": "Start early.", "status": "published", "category_id": int64(1),
			"is_featured": true, "created_at": Epoch.Add(time.Hour),
		},
		{
			"id": int64(2), "title": "Visa checklist", "slug": "visa-checklist",
			"content": "Bring documents.", "status": "published", "createdAt": Epoch.Add(2 * time.Hour),
		},
		{
			"id": int64(3), "title": "Unfinished", "slug": "unfinished",
			"content": "", "status": "draft", "created_at": Epoch.Add(3 * time.Hour),
		},
	}
}

//go:embed testdata/legacy_documents.json
var legacyDocuments []byte

// LegacyDocuments returns scholarship documents exported from the old
// document store: "_id" keys, camelCase fields and string dates.
func LegacyDocuments() []store.Row {
	var docs []store.Row
	if err := json.Unmarshal(legacyDocuments, &docs); err != nil {
		panic(fmt.Sprintf("testsupport: legacy documents: %v", err))
	}
	return docs
}
