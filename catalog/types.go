package catalog

import (
	"regexp"
	"strings"

	"github.com/goliatone/go-scholarship-catalog/normalize"
)

// ExcerptLength is the number of runes kept when an excerpt is derived from
// content.
const ExcerptLength = 150

// RelationSummary is the display projection of a related record.
type RelationSummary struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug"`
}

// Related holds the resolved relations of one row keyed by relation name
// ("category", "country", "level"). A nil value means unresolved.
type Related map[string]*RelationSummary

// Pagination is the page metadata of a list response.
type Pagination struct {
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	Total      int `json:"total"`
	TotalPages int `json:"totalPages"`
}

// Envelope is the single response shape of every list endpoint. Degraded
// marks an empty page served after a store failure.
type Envelope struct {
	Data       []any      `json:"data"`
	Pagination Pagination `json:"pagination"`
	Degraded   bool       `json:"-"`
}

// EmptyEnvelope returns a page with no items and a total of zero.
func EmptyEnvelope(page, limit int) Envelope {
	return Envelope{
		Data:       []any{},
		Pagination: Pagination{Page: page, Limit: limit, Total: 0, TotalPages: 1},
	}
}

type Scholarship struct {
	ID              string           `json:"id"`
	Title           string           `json:"title"`
	Slug            string           `json:"slug"`
	Description     string           `json:"description"`
	Content         string           `json:"content"`
	Deadline        *string          `json:"deadline"`
	Amount          string           `json:"amount"`
	Currency        string           `json:"currency"`
	University      string           `json:"university"`
	Department      string           `json:"department"`
	Website         string           `json:"website"`
	StartDate       *string          `json:"startDate"`
	EndDate         *string          `json:"endDate"`
	IsFeatured      bool             `json:"isFeatured"`
	IsFullyFunded   bool             `json:"isFullyFunded"`
	IsPublished     bool             `json:"isPublished"`
	CategoryID      *string          `json:"categoryId"`
	CountryID       *string          `json:"countryId"`
	LevelID         *string          `json:"levelId"`
	Requirements    string           `json:"requirements"`
	ApplicationLink string           `json:"applicationLink"`
	ImageURL        string           `json:"imageUrl"`
	Views           int              `json:"views"`
	SeoTitle        string           `json:"seoTitle"`
	SeoDescription  string           `json:"seoDescription"`
	SeoKeywords     string           `json:"seoKeywords"`
	FocusKeyword    string           `json:"focusKeyword"`
	CreatedAt       *string          `json:"createdAt"`
	UpdatedAt       *string          `json:"updatedAt"`
	Category        *RelationSummary `json:"category"`
	Country         *RelationSummary `json:"country"`
	Level           *RelationSummary `json:"level"`
}

type Category struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Slug        string `json:"slug"`
	Description string `json:"description"`
}

type Country struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Slug    string `json:"slug"`
	FlagURL string `json:"flagUrl"`
}

type Level struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Slug        string `json:"slug"`
	Description string `json:"description"`
}

type SuccessStory struct {
	ID              string  `json:"id"`
	Name            string  `json:"name"`
	Title           string  `json:"title"`
	Slug            string  `json:"slug"`
	Content         string  `json:"content"`
	Excerpt         string  `json:"excerpt"`
	University      string  `json:"university"`
	Country         string  `json:"country"`
	Degree          string  `json:"degree"`
	GraduationYear  string  `json:"graduationYear"`
	ThumbnailURL    string  `json:"thumbnailUrl"`
	StudentName     string  `json:"studentName"`
	ScholarshipName string  `json:"scholarshipName"`
	ImageURL        string  `json:"imageUrl"`
	IsPublished     bool    `json:"isPublished"`
	CreatedAt       *string `json:"createdAt"`
}

type Post struct {
	ID              string           `json:"id"`
	Title           string           `json:"title"`
	Slug            string           `json:"slug"`
	Content         string           `json:"content"`
	Excerpt         string           `json:"excerpt"`
	AuthorID        string           `json:"authorId"`
	Status          string           `json:"status"`
	ImageURL        string           `json:"imageUrl"`
	IsFeatured      bool             `json:"isFeatured"`
	Views           int              `json:"views"`
	CategoryID      *string          `json:"categoryId"`
	ReadTime        int              `json:"readTime"`
	MetaTitle       string           `json:"metaTitle"`
	MetaDescription string           `json:"metaDescription"`
	CreatedAt       *string          `json:"createdAt"`
	UpdatedAt       *string          `json:"updatedAt"`
	Category        *RelationSummary `json:"category"`
}

// FilterOptions feeds the filter controls of list pages.
type FilterOptions struct {
	Categories []Category `json:"categories"`
	Countries  []Country  `json:"countries"`
	Levels     []Level    `json:"levels"`
}

// ToScholarship normalizes a raw row. Identifiers are never defaulted.
func ToScholarship(r normalize.Record, rel Related) Scholarship {
	id, _ := r.ID("id")
	return Scholarship{
		ID:              id,
		Title:           r.String("title", "", "name"),
		Slug:            r.String("slug", ""),
		Description:     r.String("description", ""),
		Content:         r.String("content", ""),
		Deadline:        r.Date("deadline"),
		Amount:          r.String("amount", ""),
		Currency:        r.String("currency", ""),
		University:      r.String("university", ""),
		Department:      r.String("department", ""),
		Website:         r.String("website", ""),
		StartDate:       r.Date("startDate"),
		EndDate:         r.Date("endDate"),
		IsFeatured:      r.Bool("isFeatured", false),
		IsFullyFunded:   r.Bool("isFullyFunded", false),
		IsPublished:     r.Bool("isPublished", true),
		CategoryID:      r.OptionalID("categoryId"),
		CountryID:       r.OptionalID("countryId"),
		LevelID:         r.OptionalID("levelId"),
		Requirements:    r.String("requirements", ""),
		ApplicationLink: r.String("applicationLink", "", "application_url"),
		ImageURL:        r.String("imageUrl", "", "image"),
		Views:           r.Int("views", 0),
		SeoTitle:        r.String("seoTitle", ""),
		SeoDescription:  r.String("seoDescription", ""),
		SeoKeywords:     r.String("seoKeywords", ""),
		FocusKeyword:    r.String("focusKeyword", ""),
		CreatedAt:       r.Date("createdAt"),
		UpdatedAt:       r.Date("updatedAt"),
		Category:        rel["category"],
		Country:         rel["country"],
		Level:           rel["level"],
	}
}

func ToCategory(r normalize.Record, _ Related) Category {
	id, _ := r.ID("id")
	return Category{
		ID:          id,
		Name:        r.String("name", "", "title"),
		Slug:        r.String("slug", ""),
		Description: r.String("description", ""),
	}
}

func ToCountry(r normalize.Record, _ Related) Country {
	id, _ := r.ID("id")
	return Country{
		ID:      id,
		Name:    r.String("name", ""),
		Slug:    r.String("slug", ""),
		FlagURL: r.String("flagUrl", "", "flag", "flagImage"),
	}
}

func ToLevel(r normalize.Record, _ Related) Level {
	id, _ := r.ID("id")
	return Level{
		ID:          id,
		Name:        r.String("name", "", "title"),
		Slug:        r.String("slug", ""),
		Description: r.String("description", ""),
	}
}

// ToSuccessStory normalizes a story row. The student's name is stored as
// either name or studentName; each falls back to the other.
func ToSuccessStory(r normalize.Record, _ Related) SuccessStory {
	id, _ := r.ID("id")
	name := r.String("name", "")
	student := r.String("studentName", "")
	if name == "" {
		name = student
	}
	if student == "" {
		student = name
	}
	content := r.String("content", "")
	excerpt := r.String("excerpt", "")
	if excerpt == "" {
		excerpt = Excerpt(content, ExcerptLength)
	}
	return SuccessStory{
		ID:              id,
		Name:            name,
		Title:           r.String("title", ""),
		Slug:            r.String("slug", ""),
		Content:         content,
		Excerpt:         excerpt,
		University:      r.String("university", ""),
		Country:         r.String("country", ""),
		Degree:          r.String("degree", ""),
		GraduationYear:  r.String("graduationYear", ""),
		ThumbnailURL:    r.String("thumbnailUrl", "", "image_url", "imageUrl"),
		StudentName:     student,
		ScholarshipName: r.String("scholarshipName", ""),
		ImageURL:        r.String("imageUrl", "", "thumbnail_url", "thumbnailUrl"),
		IsPublished:     r.Bool("isPublished", true),
		CreatedAt:       r.Date("createdAt"),
	}
}

func ToPost(r normalize.Record, rel Related) Post {
	id, _ := r.ID("id")
	return Post{
		ID:              id,
		Title:           r.String("title", ""),
		Slug:            r.String("slug", ""),
		Content:         r.String("content", ""),
		Excerpt:         r.String("excerpt", ""),
		AuthorID:        r.String("authorId", ""),
		Status:          r.String("status", "draft"),
		ImageURL:        r.String("imageUrl", "", "image"),
		IsFeatured:      r.Bool("isFeatured", false),
		Views:           r.Int("views", 0),
		CategoryID:      r.OptionalID("categoryId"),
		ReadTime:        r.Int("readTime", 0),
		MetaTitle:       r.String("metaTitle", ""),
		MetaDescription: r.String("metaDescription", ""),
		CreatedAt:       r.Date("createdAt"),
		UpdatedAt:       r.Date("updatedAt"),
		Category:        rel["category"],
	}
}

var tagPattern = regexp.MustCompile(`<[^>]*>`)

// Excerpt strips markup from s and keeps its first n runes.
func Excerpt(s string, n int) string {
	s = strings.TrimSpace(tagPattern.ReplaceAllString(s, ""))
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return strings.TrimSpace(string(runes[:n]))
}
