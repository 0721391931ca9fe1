package models

import "time"

// Subject classifies books into browsable categories.
type Subject struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	Name        string `gorm:"size:255;uniqueIndex;not null" json:"name" validate:"required,max=255"`
	Description string `gorm:"type:text" json:"description"`
	FileID      string `gorm:"size:255" json:"-"`
	FileURL     string `gorm:"size:512" json:"imageUrl,omitempty"`
	AuditRef
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// ResourceID implements Resource.
func (s Subject) ResourceID() uint { return s.ID }

// SetResourceID implements Identifiable.
func (s *Subject) SetResourceID(id uint) { s.ID = id }

// BlobID implements BlobOwner.
func (s Subject) BlobID() string { return s.FileID }

// AssignBlob attaches an uploaded subject image.
func (s *Subject) AssignBlob(fileID, url string) {
	s.FileID = fileID
	s.FileURL = url
}

// Translator holds a book translator's public record.
type Translator struct {
	ID      uint   `gorm:"primaryKey" json:"id"`
	Name    string `gorm:"size:255;uniqueIndex;not null" json:"name" validate:"required,max=255"`
	Bio     string `gorm:"type:text" json:"bio"`
	FileID  string `gorm:"size:255" json:"-"`
	FileURL string `gorm:"size:512" json:"imageUrl,omitempty"`
	AuditRef
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// ResourceID implements Resource.
func (t Translator) ResourceID() uint { return t.ID }

// SetResourceID implements Identifiable.
func (t *Translator) SetResourceID(id uint) { t.ID = id }

// BlobID implements BlobOwner.
func (t Translator) BlobID() string { return t.FileID }

// AssignBlob attaches an uploaded portrait.
func (t *Translator) AssignBlob(fileID, url string) {
	t.FileID = fileID
	t.FileURL = url
}

// Publication is a publishing house referenced by books.
type Publication struct {
	ID      uint   `gorm:"primaryKey" json:"id"`
	Name    string `gorm:"size:255;uniqueIndex;not null" json:"name" validate:"required,max=255"`
	Address string `gorm:"size:512" json:"address"`
	URL     string `gorm:"size:512" json:"url"`
	AuditRef
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// ResourceID implements Resource.
func (p Publication) ResourceID() uint { return p.ID }

// SetResourceID implements Identifiable.
func (p *Publication) SetResourceID(id uint) { p.ID = id }

// Pronoun is a selectable pronoun set offered on user profiles.
type Pronoun struct {
	ID   uint   `gorm:"primaryKey" json:"id"`
	Name string `gorm:"size:64;uniqueIndex;not null" json:"name" validate:"required,max=64"`
	AuditRef
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// ResourceID implements Resource.
func (p Pronoun) ResourceID() uint { return p.ID }

// SetResourceID implements Identifiable.
func (p *Pronoun) SetResourceID(id uint) { p.ID = id }
