package models

// Resource is implemented by every entity managed through the generic
// CRUD stack.
type Resource interface {
	ResourceID() uint
}

// Identifiable entities can have their primary key anchored onto an
// incoming update payload.
type Identifiable interface {
	SetResourceID(id uint)
}

// AuditInfo exposes the stored creating actor so updates can carry it
// forward.
type AuditInfo interface {
	CreatedByActor() string
}

// Auditable entities record which actor created and last modified them.
// Implemented with pointer receivers so the service layer can stamp the
// references before persisting.
type Auditable interface {
	StampCreatedBy(actor string)
	StampUpdatedBy(actor string)
}

// BlobOwner exposes the externally stored blob reference, if any. The
// delete cascade attempts to remove the blob before the record.
type BlobOwner interface {
	BlobID() string
}

// BlobAssignable entities can have an uploaded blob attached to them.
type BlobAssignable interface {
	AssignBlob(fileID, url string)
}

// AuditRef holds the createdBy/updatedBy actor references shared by all
// managed resources. These are weak references used for audit and
// filtering, not lifecycle ownership.
type AuditRef struct {
	CreatedBy string `gorm:"size:64;index" json:"createdBy,omitempty"`
	UpdatedBy string `gorm:"size:64" json:"updatedBy,omitempty"`
}

// CreatedByActor implements AuditInfo.
func (a AuditRef) CreatedByActor() string { return a.CreatedBy }

// StampCreatedBy records the creating actor.
func (a *AuditRef) StampCreatedBy(actor string) {
	if actor == "" {
		return
	}
	a.CreatedBy = actor
}

// StampUpdatedBy records the last modifying actor.
func (a *AuditRef) StampUpdatedBy(actor string) {
	if actor == "" {
		return
	}
	a.UpdatedBy = actor
}
