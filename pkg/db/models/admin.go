package models

import "time"

// AdminAccount is the single operator account guarding mutating routes.
type AdminAccount struct {
	ID         int64     `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	FirstName  string    `gorm:"column:fname;not null" json:"firstname"`
	LastName   string    `gorm:"column:lname;not null" json:"lastname"`
	Email      string    `gorm:"column:email;not null;unique" json:"email"`
	Password   string    `gorm:"column:password;not null" json:"-"`
	AccessCode string    `gorm:"column:access_code" json:"-"`
	IsLocked   bool      `gorm:"column:is_locked;not null;default:false" json:"is_locked"`
	CreatedAt  time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

func (AdminAccount) TableName() string { return "admin" }
