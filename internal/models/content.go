package models

import "time"

// Faq is a frequently asked question shown on the public site. The
// question doubles as the resource's display name for list filtering.
type Faq struct {
	ID       uint   `gorm:"primaryKey" json:"id"`
	Name     string `gorm:"size:512;not null" json:"name" validate:"required,max=512"`
	Answer   string `gorm:"type:text;not null" json:"answer" validate:"required"`
	Position int    `gorm:"index" json:"position"`
	AuditRef
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// ResourceID implements Resource.
func (f Faq) ResourceID() uint { return f.ID }

// SetResourceID implements Identifiable.
func (f *Faq) SetResourceID(id uint) { f.ID = id }

// SiteContent is an editable block of site copy addressed by a stable key.
type SiteContent struct {
	ID   uint   `gorm:"primaryKey" json:"id"`
	Key  string `gorm:"size:128;uniqueIndex;not null" json:"key" validate:"required,max=128"`
	Name string `gorm:"size:255;not null" json:"name" validate:"required,max=255"`
	Body string `gorm:"type:text;not null" json:"body" validate:"required"`
	AuditRef
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// ResourceID implements Resource.
func (s SiteContent) ResourceID() uint { return s.ID }

// SetResourceID implements Identifiable.
func (s *SiteContent) SetResourceID(id uint) { s.ID = id }
