package app

import "context"

// AuthorizationGate answers whether a user has an active role on a firm.
// Membership management itself lives outside this core.
type AuthorizationGate interface {
	IsAuthorized(ctx context.Context, actorID, firmID string) (bool, error)
}

// ApplicationRef is the slice of an application the setup flow needs: its
// firm (resolved through the originating form, required for authorization)
// and its household (denormalized onto the holding request).
type ApplicationRef struct {
	FirmID      string
	HouseholdID string
}

// FirmResolver resolves an application's firm through its originating form.
type FirmResolver interface {
	ResolveFirmForApplication(ctx context.Context, appID string) (ApplicationRef, error)
}
