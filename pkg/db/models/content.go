package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// HomeItem is a hero image shown on the landing page.
type HomeItem struct {
	ID          int64     `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	Title       string    `gorm:"column:title;not null" json:"title"`
	Description string    `gorm:"column:description" json:"description"`
	Image       string    `gorm:"column:image;not null" json:"image"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

func (HomeItem) TableName() string { return "home" }

// ShowcaseItem is a gallery entry on the showcase page.
type ShowcaseItem struct {
	ID          int64     `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	Title       string    `gorm:"column:title;not null" json:"title"`
	Description string    `gorm:"column:description" json:"description"`
	Image       string    `gorm:"column:image;not null" json:"image"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

func (ShowcaseItem) TableName() string { return "showcase" }

// MissionItem is a section of the mission statement page.
type MissionItem struct {
	ID             int64     `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	TitleOfSection string    `gorm:"column:title_of_section;not null" json:"title_of_section"`
	Description    string    `gorm:"column:description" json:"description"`
	Image          string    `gorm:"column:image;not null" json:"image"`
	CreatedAt      time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

func (MissionItem) TableName() string { return "mission" }

// TeamMember is a staff portrait with a role caption.
type TeamMember struct {
	ID        int64     `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	Image     string    `gorm:"column:image;not null" json:"image"`
	Name      string    `gorm:"column:team_member;not null" json:"team_member"`
	Role      string    `gorm:"column:role" json:"role"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

func (TeamMember) TableName() string { return "team" }

// Partner is a partner or customer logo entry.
type Partner struct {
	ID          int64     `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	TitleName   string    `gorm:"column:title_name;not null" json:"title_name"`
	Description string    `gorm:"column:description" json:"description"`
	Image       string    `gorm:"column:image;not null" json:"image"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

func (Partner) TableName() string { return "partners" }

// ValueCard is a company-values card; image plus blurb, no title.
type ValueCard struct {
	ID          int64     `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	Image       string    `gorm:"column:image;not null" json:"image"`
	Description string    `gorm:"column:description" json:"description"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

func (ValueCard) TableName() string { return "value_cards" }

// Product is a listed product with its cover image.
type Product struct {
	ID          int64           `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	Image       string          `gorm:"column:image;not null" json:"image"`
	Title       string          `gorm:"column:title;not null" json:"title"`
	Description string          `gorm:"column:description" json:"description"`
	Price       decimal.Decimal `gorm:"column:price;type:numeric(12,2)" json:"price"`
	Features    string          `gorm:"column:features" json:"features"`
	Style       string          `gorm:"column:style" json:"style"`
	Quantity    string          `gorm:"column:quantity" json:"quantity"`
	Category    string          `gorm:"column:category" json:"category"`
	CreatedAt   time.Time       `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

func (Product) TableName() string { return "products" }

// Internship is a careers posting; the only section without media.
type Internship struct {
	ID          int64     `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	Title       string    `gorm:"column:title;not null" json:"title"`
	Description string    `gorm:"column:description" json:"description"`
	Requirement string    `gorm:"column:requirement" json:"requirement"`
	Duration    string    `gorm:"column:duration" json:"duration"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

func (Internship) TableName() string { return "internship" }

// Category labels products. The table keeps its legacy column layout:
// cat_id is the row key, id holds the label.
type Category struct {
	CatID int64  `gorm:"column:cat_id;primaryKey;autoIncrement" json:"cat_id"`
	Label string `gorm:"column:id;not null" json:"id"`
}

func (Category) TableName() string { return "category" }
