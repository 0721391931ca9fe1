package service

import (
	"strconv"

	"github.com/noah-isme/libris-api/internal/models"
)

// Tier is a privacy visibility level governing profile field disclosure.
type Tier string

// Visibility tiers ordered from least to most disclosure. Each maps to an
// explicit allow-list of field names; admin is a wildcard and private is
// the empty set.
const (
	TierPublic  Tier = "public"
	TierFriends Tier = "friends"
	TierPrivate Tier = "private"
	TierSelf    Tier = "self"
	TierAdmin   Tier = "admin"
)

var publicFields = []string{"name", "username", "bio", "image"}

var friendsFields = append(append([]string{}, publicFields...),
	"dateOfBirth", "pronouns", "company", "socialAccounts", "url")

var selfFields = append(append([]string{}, friendsFields...),
	"emails", "mobiles", "address", "twoFactorEnabled", "privacySettings")

// tierFields maps each tier to its allow-list. "*" means every field,
// including the raw identifier.
var tierFields = map[Tier][]string{
	TierPublic:  publicFields,
	TierFriends: friendsFields,
	TierPrivate: {},
	TierSelf:    selfFields,
	TierAdmin:   {"*"},
}

// fieldExtractors resolves an allow-listed field name into its value on
// the user record.
var fieldExtractors = map[string]func(models.User) interface{}{
	"name":     func(u models.User) interface{} { return u.Name },
	"username": func(u models.User) interface{} { return u.Username },
	"bio":      func(u models.User) interface{} { return u.Bio },
	"image": func(u models.User) interface{} {
		if u.FileID == "" && u.FileURL == "" {
			return nil
		}
		return map[string]string{"fileId": u.FileID, "url": u.FileURL}
	},
	"dateOfBirth":      func(u models.User) interface{} { return u.DateOfBirth },
	"pronouns":         func(u models.User) interface{} { return u.Pronouns },
	"company":          func(u models.User) interface{} { return u.Company },
	"socialAccounts":   func(u models.User) interface{} { return u.SocialAccounts },
	"url":              func(u models.User) interface{} { return u.URL },
	"emails":           func(u models.User) interface{} { return u.Emails },
	"mobiles":          func(u models.User) interface{} { return u.Mobiles },
	"address":          func(u models.User) interface{} { return u.Address },
	"twoFactorEnabled": func(u models.User) interface{} { return u.TwoFactorEnabled },
	"privacySettings":  func(u models.User) interface{} { return u.PrivacySettings },
}

// adminExtras are disclosed only through the wildcard tier.
var adminExtras = map[string]func(models.User) interface{}{
	"id":                func(u models.User) interface{} { return u.ID },
	"isAdmin":           func(u models.User) interface{} { return u.IsAdmin },
	"profileVisibility": func(u models.User) interface{} { return u.Visibility() },
	"createdAt":         func(u models.User) interface{} { return u.CreatedAt },
	"updatedAt":         func(u models.User) interface{} { return u.UpdatedAt },
}

// ResolveTier computes the visibility tier a requester is granted on a
// target profile. The private short-circuit runs before tier selection:
// a private profile discloses nothing to anyone but its owner or an
// admin. Precedence is fixed: self > admin > authenticated > public.
// Identity comparison is string-normalized on both sides so no typed-id
// mismatch can silently defeat the self check.
func ResolveTier(requester *Actor, target models.User) (Tier, bool) {
	isSelf := requester != nil && sameIdentity(requester.ID, target.ID)
	isAdmin := requester != nil && requester.IsAdmin()
	isAuthenticated := requester != nil && requester.Authenticated

	if target.Visibility() == models.VisibilityPrivate && !isSelf && !isAdmin {
		return TierPrivate, false
	}

	switch {
	case isSelf:
		return TierSelf, true
	case isAdmin:
		return TierAdmin, true
	case isAuthenticated:
		return TierFriends, true
	default:
		return TierPublic, true
	}
}

// Project produces the redacted view of a user containing exactly the
// fields allow-listed for the tier. The raw identifier is excluded unless
// the wildcard tier applies.
func Project(user models.User, tier Tier) map[string]interface{} {
	allowed, ok := tierFields[tier]
	if !ok {
		allowed = tierFields[TierPublic]
	}

	view := make(map[string]interface{}, len(allowed))
	for _, field := range allowed {
		if field == "*" {
			for name, extract := range fieldExtractors {
				view[name] = extract(user)
			}
			for name, extract := range adminExtras {
				view[name] = extract(user)
			}
			return view
		}
		if extract, ok := fieldExtractors[field]; ok {
			view[field] = extract(user)
		}
	}
	return view
}

func sameIdentity(requesterID, targetID uint) bool {
	if requesterID == 0 {
		return false
	}
	return strconv.FormatUint(uint64(requesterID), 10) == strconv.FormatUint(uint64(targetID), 10)
}
