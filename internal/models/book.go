package models

import "time"

// Book is the central catalog entity.
type Book struct {
	ID            uint         `gorm:"primaryKey" json:"id"`
	Name          string       `gorm:"size:255;not null;uniqueIndex:idx_books_name_isbn" json:"name" validate:"required,max=255"`
	ISBN          string       `gorm:"size:32;uniqueIndex:idx_books_name_isbn" json:"isbn" validate:"omitempty,max=32"`
	Description   string       `gorm:"type:text" json:"description"`
	Language      string       `gorm:"size:64" json:"language"`
	PublishedYear int          `json:"publishedYear" validate:"omitempty,gte=0"`
	SubjectID     *uint        `json:"subjectId,omitempty"`
	Subject       *Subject     `gorm:"foreignKey:SubjectID" json:"subject,omitempty"`
	TranslatorID  *uint        `json:"translatorId,omitempty"`
	Translator    *Translator  `gorm:"foreignKey:TranslatorID" json:"translator,omitempty"`
	PublicationID *uint        `json:"publicationId,omitempty"`
	Publication   *Publication `gorm:"foreignKey:PublicationID" json:"publication,omitempty"`
	FileID        string       `gorm:"size:255" json:"-"`
	FileURL       string       `gorm:"size:512" json:"imageUrl,omitempty"`
	AuditRef
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// ResourceID implements Resource.
func (b Book) ResourceID() uint { return b.ID }

// SetResourceID implements Identifiable.
func (b *Book) SetResourceID(id uint) { b.ID = id }

// BlobID implements BlobOwner for the cover image.
func (b Book) BlobID() string { return b.FileID }

// AssignBlob attaches an uploaded cover image.
func (b *Book) AssignBlob(fileID, url string) {
	b.FileID = fileID
	b.FileURL = url
}
