package models

import (
	"time"

	"gorm.io/datatypes"
)

// Profile visibility tiers stored per user. An unset value is treated as
// public.
const (
	VisibilityPublic  = "public"
	VisibilityFriends = "friends"
	VisibilityPrivate = "private"
)

// User represents a library member or administrator account.
type User struct {
	ID                uint                         `gorm:"primaryKey" json:"id"`
	Name              string                       `gorm:"size:255;not null" json:"name"`
	Username          string                       `gorm:"size:64;uniqueIndex;not null" json:"username"`
	Bio               string                       `gorm:"type:text" json:"bio"`
	DateOfBirth       *time.Time                   `json:"dateOfBirth,omitempty"`
	Pronouns          string                       `gorm:"size:64" json:"pronouns"`
	Company           string                       `gorm:"size:255" json:"company"`
	URL               string                       `gorm:"size:512" json:"url"`
	SocialAccounts    datatypes.JSONMap            `gorm:"type:json" json:"socialAccounts"`
	Emails            datatypes.JSONSlice[string]  `gorm:"type:json" json:"emails"`
	Mobiles           datatypes.JSONSlice[string]  `gorm:"type:json" json:"mobiles"`
	Address           string                       `gorm:"size:512" json:"address"`
	TwoFactorEnabled  bool                         `json:"twoFactorEnabled"`
	PrivacySettings   datatypes.JSONMap            `gorm:"type:json" json:"privacySettings"`
	ProfileVisibility string                       `gorm:"size:16;default:public" json:"profileVisibility"`
	IsAdmin           bool                         `gorm:"index" json:"isAdmin"`
	PasswordHash      string                       `gorm:"size:128" json:"-"`
	FileID            string                       `gorm:"size:255" json:"-"`
	FileURL           string                       `gorm:"size:512" json:"imageUrl,omitempty"`
	AuditRef
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// ResourceID implements Resource.
func (u User) ResourceID() uint { return u.ID }

// SetResourceID implements Identifiable.
func (u *User) SetResourceID(id uint) { u.ID = id }

// BlobID implements BlobOwner for the avatar image.
func (u User) BlobID() string { return u.FileID }

// AssignBlob attaches an uploaded avatar.
func (u *User) AssignBlob(fileID, url string) {
	u.FileID = fileID
	u.FileURL = url
}

// Visibility returns the stored tier, defaulting to public when unset.
func (u User) Visibility() string {
	if u.ProfileVisibility == "" {
		return VisibilityPublic
	}
	return u.ProfileVisibility
}
