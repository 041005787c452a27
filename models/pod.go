package models

import "time"

// Pod is a single public-restroom unit. IDs are assigned by the store on
// creation and never change; pods are never deleted.
type Pod struct {
	ID           uint      `gorm:"column:id;primaryKey" json:"id"`
	Name         string    `gorm:"column:name" json:"name"`
	Lat          float64   `gorm:"column:lat" json:"lat"`
	Lng          float64   `gorm:"column:lng" json:"lng"`
	Cleanliness  int       `gorm:"column:cleanliness" json:"cleanliness"`
	Available    bool      `gorm:"column:available" json:"available"`
	LastCleaned  time.Time `gorm:"column:last_cleaned" json:"last_cleaned"`
	SelfCleaning bool      `gorm:"column:self_cleaning" json:"self_cleaning"`
}

func (Pod) TableName() string { return "pods" }
