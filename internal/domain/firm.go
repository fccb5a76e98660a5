package domain

import "time"

// Firm is a landlord organization that reviews applications.
type Firm struct {
	ID        string
	Name      string
	CreatedAt time.Time
}

// Form is a firm-owned application form; applications reference their firm
// through it rather than storing the firm id redundantly.
type Form struct {
	ID        string
	FirmID    string
	Name      string
	CreatedAt time.Time
}

// FirmMember grants a user an active role on a firm.
type FirmMember struct {
	FirmID    string
	UserID    string
	Role      string
	Active    bool
	CreatedAt time.Time
}
