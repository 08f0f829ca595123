package domain

import "time"

// Folder groups documents for filtering. Ingestion attaches folder IDs as
// opaque tags and only bumps DocumentCount.
type Folder struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Description   string    `json:"description,omitempty"`
	OwnerID       string    `json:"userId"`
	IsAdmin       bool      `json:"isAdmin"`
	DocumentCount int       `json:"documentCount"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// VisibleTo reports whether the folder is listed for the requester.
// Admins see the admin folders; agents see their own plus the admin ones.
func (f Folder) VisibleTo(ownerID string, isAdmin bool) bool {
	if f.IsAdmin {
		return true
	}
	return !isAdmin && f.OwnerID == ownerID
}

// ManageableBy reports whether the requester may rename or delete the folder.
func (f Folder) ManageableBy(ownerID string, isAdmin bool) bool {
	if f.IsAdmin {
		return isAdmin
	}
	return f.OwnerID == ownerID
}
