package bunstore

import (
	"time"

	"github.com/uptrace/bun"
)

// The models only describe the schema; reads and writes go through map rows
// so that columns added by later migrations do not break older code.

type categoryModel struct {
	bun.BaseModel `bun:"table:categories"`

	ID          int64     `bun:"id,pk,autoincrement"`
	Name        string    `bun:"name,notnull"`
	Slug        string    `bun:"slug,notnull,unique"`
	Description string    `bun:"description"`
	CreatedAt   time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp"`
	UpdatedAt   time.Time `bun:"updated_at,nullzero,notnull,default:current_timestamp"`
}

type countryModel struct {
	bun.BaseModel `bun:"table:countries"`

	ID        int64     `bun:"id,pk,autoincrement"`
	Name      string    `bun:"name,notnull"`
	Slug      string    `bun:"slug,notnull,unique"`
	FlagURL   string    `bun:"flag_url"`
	CreatedAt time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp"`
	UpdatedAt time.Time `bun:"updated_at,nullzero,notnull,default:current_timestamp"`
}

type levelModel struct {
	bun.BaseModel `bun:"table:levels"`

	ID          int64     `bun:"id,pk,autoincrement"`
	Name        string    `bun:"name,notnull"`
	Slug        string    `bun:"slug,notnull,unique"`
	Description string    `bun:"description"`
	CreatedAt   time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp"`
	UpdatedAt   time.Time `bun:"updated_at,nullzero,notnull,default:current_timestamp"`
}

type scholarshipModel struct {
	bun.BaseModel `bun:"table:scholarships"`

	ID              int64      `bun:"id,pk,autoincrement"`
	Title           string     `bun:"title,notnull"`
	Slug            string     `bun:"slug,notnull,unique"`
	Description     string     `bun:"description"`
	Content         string     `bun:"content"`
	Deadline        *time.Time `bun:"deadline"`
	Amount          string     `bun:"amount"`
	Currency        string     `bun:"currency"`
	University      string     `bun:"university"`
	Department      string     `bun:"department"`
	Website         string     `bun:"website"`
	StartDate       *time.Time `bun:"start_date"`
	EndDate         *time.Time `bun:"end_date"`
	IsFeatured      bool       `bun:"is_featured,notnull,default:false"`
	IsFullyFunded   bool       `bun:"is_fully_funded,notnull,default:false"`
	IsPublished     bool       `bun:"is_published,notnull,default:true"`
	SeoTitle        string     `bun:"seo_title"`
	SeoDescription  string     `bun:"seo_description"`
	SeoKeywords     string     `bun:"seo_keywords"`
	FocusKeyword    string     `bun:"focus_keyword"`
	CategoryID      *int64     `bun:"category_id"`
	CountryID       *int64     `bun:"country_id"`
	LevelID         *int64     `bun:"level_id"`
	Requirements    string     `bun:"requirements"`
	ApplicationLink string     `bun:"application_link"`
	ImageURL        string     `bun:"image_url"`
	Views           int        `bun:"views,notnull,default:0"`
	CreatedAt       time.Time  `bun:"created_at,nullzero,notnull,default:current_timestamp"`
	UpdatedAt       time.Time  `bun:"updated_at,nullzero,notnull,default:current_timestamp"`
}

type successStoryModel struct {
	bun.BaseModel `bun:"table:success_stories"`

	ID              int64     `bun:"id,pk,autoincrement"`
	Name            string    `bun:"name"`
	Title           string    `bun:"title,notnull"`
	Slug            string    `bun:"slug,notnull,unique"`
	Content         string    `bun:"content"`
	University      string    `bun:"university"`
	Country         string    `bun:"country"`
	Degree          string    `bun:"degree"`
	GraduationYear  string    `bun:"graduation_year"`
	ThumbnailURL    string    `bun:"thumbnail_url"`
	StudentName     string    `bun:"student_name"`
	ScholarshipName string    `bun:"scholarship_name"`
	ImageURL        string    `bun:"image_url"`
	IsPublished     bool      `bun:"is_published,notnull,default:true"`
	CreatedAt       time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp"`
	UpdatedAt       time.Time `bun:"updated_at,nullzero,notnull,default:current_timestamp"`
}

type postModel struct {
	bun.BaseModel `bun:"table:posts"`

	ID              int64     `bun:"id,pk,autoincrement"`
	Title           string    `bun:"title,notnull"`
	Slug            string    `bun:"slug,notnull,unique"`
	Content         string    `bun:"content"`
	Excerpt         string    `bun:"excerpt"`
	AuthorID        string    `bun:"author_id"`
	Status          string    `bun:"status,notnull,default:'draft'"`
	ImageURL        string    `bun:"image_url"`
	IsFeatured      bool      `bun:"is_featured,notnull,default:false"`
	Views           int       `bun:"views,notnull,default:0"`
	MetaTitle       string    `bun:"meta_title"`
	MetaDescription string    `bun:"meta_description"`
	MetaKeywords    string    `bun:"meta_keywords"`
	FocusKeyword    string    `bun:"focus_keyword"`
	CategoryID      *int64    `bun:"category_id"`
	ReadTime        int       `bun:"read_time"`
	CreatedAt       time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp"`
	UpdatedAt       time.Time `bun:"updated_at,nullzero,notnull,default:current_timestamp"`
}

func schemaModels() []any {
	return []any{
		(*categoryModel)(nil),
		(*countryModel)(nil),
		(*levelModel)(nil),
		(*scholarshipModel)(nil),
		(*successStoryModel)(nil),
		(*postModel)(nil),
	}
}
