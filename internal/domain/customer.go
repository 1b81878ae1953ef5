package domain

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Customer struct {
	ID           int64                       `json:"id" gorm:"primaryKey"`
	UserID       int64                       `json:"user_id" gorm:"not null;index"`
	Name         string                      `json:"name" gorm:"not null"`
	Phone        string                      `json:"phone" gorm:"not null"`
	Tags         datatypes.JSONSlice[string] `json:"tags" gorm:"type:jsonb"`
	Notes        string                      `json:"notes"`
	FollowUpDate *datatypes.Date             `json:"follow_up_date" gorm:"type:date;index"`
	CreatedAt    time.Time                   `json:"created_at"`
	UpdatedAt    time.Time                   `json:"updated_at"`
	DeletedAt    gorm.DeletedAt              `json:"-" gorm:"index"`
}

// TagCount is one row of the per-owner tag histogram.
type TagCount struct {
	Tag   string `json:"tag"`
	Count int64  `json:"count"`
}

// DateLayout is the wire format for follow-up dates.
const DateLayout = "2006-01-02"

// FollowUpDay renders the follow-up date, or "" when unset.
func (c *Customer) FollowUpDay() string {
	if c.FollowUpDate == nil {
		return ""
	}
	return time.Time(*c.FollowUpDate).Format(DateLayout)
}
