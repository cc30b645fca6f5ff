package models

import "time"

// Link binds a short code to the URL it redirects to.
// A link is immutable after creation except for ClickCount,
// which only the redirect path mutates.
type Link struct {
	// ID is the surrogate key of the link record.
	ID int64
	// Code is the short alias assigned at creation, unique across all links.
	Code string
	// TargetURL is the original, full-length URL the code resolves to.
	TargetURL string
	// OwnerID is the opaque identifier of the creating user, issued by the auth layer.
	OwnerID string
	// ClickCount tracks how many times the code has been resolved.
	ClickCount int64
	// CreatedAt is the timestamp indicating when the link was created.
	CreatedAt time.Time
}
