package models

import "time"

// PendingUpload marks a remote object whose database row has not landed yet.
// Rows are written before the batch insert and cleared after it commits;
// anything left behind is an orphan candidate for the cleanup job.
type PendingUpload struct {
	ID        int64     `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	Entity    string    `gorm:"column:entity;not null" json:"entity"`
	ObjectKey string    `gorm:"column:object_key;not null;unique" json:"object_key"`
	SecureURL string    `gorm:"column:secure_url;not null" json:"secure_url"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

func (PendingUpload) TableName() string { return "pending_uploads" }
