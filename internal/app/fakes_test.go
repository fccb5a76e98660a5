package app

import (
	"context"
	"time"

	"github.com/Andrew-C-BOS/WilsonTool-sub004/internal/domain"
)

// fakeHoldingRepo mirrors the store's conditional-write semantics in memory
// so service tests exercise the same convergence behavior the SQL layer
// provides.
type fakeHoldingRepo struct {
	holds     map[string]domain.HoldingRequest
	cancelErr error
}

func newFakeHoldingRepo(holds ...domain.HoldingRequest) *fakeHoldingRepo {
	m := make(map[string]domain.HoldingRequest, len(holds))
	for _, h := range holds {
		m[h.Token] = h
	}
	return &fakeHoldingRepo{holds: m}
}

func (f *fakeHoldingRepo) findActive(appID, firmID string) *domain.HoldingRequest {
	for token := range f.holds {
		h := f.holds[token]
		if h.ApplicationID == appID && h.FirmID == firmID &&
			(h.Status == domain.HoldingStatusPending || h.Status == domain.HoldingStatusPaid) {
			return &h
		}
	}
	return nil
}

func (f *fakeHoldingRepo) FindActive(_ context.Context, appID, firmID string) (*domain.HoldingRequest, error) {
	return f.findActive(appID, firmID), nil
}

func (f *fakeHoldingRepo) UpsertActive(_ context.Context, hold domain.HoldingRequest) (domain.HoldingRequest, error) {
	if existing := f.findActive(hold.ApplicationID, hold.FirmID); existing != nil {
		if existing.Status == domain.HoldingStatusPaid {
			return domain.HoldingRequest{}, domain.ErrHoldingAlreadyPaid
		}
		updated := *existing
		updated.HouseholdID = hold.HouseholdID
		updated.Amounts = hold.Amounts
		updated.MonthlyRent = hold.MonthlyRent
		updated.Total = hold.Total
		updated.MinimumDue = hold.MinimumDue
		updated.UpdatedAt = hold.UpdatedAt
		f.holds[updated.Token] = updated
		return updated, nil
	}
	f.holds[hold.Token] = hold
	return hold, nil
}

func (f *fakeHoldingRepo) CancelPending(_ context.Context, appID, firmID string, at time.Time) error {
	if f.cancelErr != nil {
		return f.cancelErr
	}
	for token := range f.holds {
		h := f.holds[token]
		if h.ApplicationID == appID && h.FirmID == firmID && h.Status == domain.HoldingStatusPending {
			h.Status = domain.HoldingStatusCanceled
			h.CanceledAt = &at
			h.UpdatedAt = at
			f.holds[token] = h
		}
	}
	return nil
}

func (f *fakeHoldingRepo) MarkPaid(_ context.Context, token string, amount int64, at time.Time) (domain.HoldingRequest, bool, error) {
	h, ok := f.holds[token]
	if !ok {
		return domain.HoldingRequest{}, false, domain.ErrHoldingNotFound
	}
	switch h.Status {
	case domain.HoldingStatusPaid:
		return h, false, nil
	case domain.HoldingStatusCanceled:
		return domain.HoldingRequest{}, false, domain.ErrHoldingCanceled
	}
	h.Status = domain.HoldingStatusPaid
	h.PaidAmount = amount
	h.PaidAt = &at
	h.UpdatedAt = at
	f.holds[token] = h
	return h, true, nil
}

func (f *fakeHoldingRepo) GetByToken(_ context.Context, token string) (domain.HoldingRequest, error) {
	h, ok := f.holds[token]
	if !ok {
		return domain.HoldingRequest{}, domain.ErrHoldingNotFound
	}
	return h, nil
}

type fakeApplicationRepo struct {
	statuses  map[string]domain.ApplicationStatus
	timelines map[string][]domain.TimelineEntry
}

func newFakeApplicationRepo(statuses map[string]domain.ApplicationStatus) *fakeApplicationRepo {
	if statuses == nil {
		statuses = map[string]domain.ApplicationStatus{}
	}
	return &fakeApplicationRepo{
		statuses:  statuses,
		timelines: map[string][]domain.TimelineEntry{},
	}
}

func (f *fakeApplicationRepo) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func (f *fakeApplicationRepo) AdvanceStatus(_ context.Context, appID string, expected []domain.ApplicationStatus, to domain.ApplicationStatus, _ time.Time) (bool, error) {
	current, ok := f.statuses[appID]
	if !ok {
		return false, domain.ErrApplicationNotFound
	}
	for _, s := range expected {
		if current == s {
			f.statuses[appID] = to
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeApplicationRepo) AppendTimeline(_ context.Context, appID string, entry domain.TimelineEntry) error {
	if _, ok := f.statuses[appID]; !ok {
		return domain.ErrApplicationNotFound
	}
	f.timelines[appID] = append(f.timelines[appID], entry)
	return nil
}

type fakeDirectory struct {
	refs    map[string]ApplicationRef
	members map[string]map[string]bool
}

func (f *fakeDirectory) ResolveFirmForApplication(_ context.Context, appID string) (ApplicationRef, error) {
	ref, ok := f.refs[appID]
	if !ok {
		return ApplicationRef{}, domain.ErrApplicationNotFound
	}
	return ref, nil
}

func (f *fakeDirectory) IsAuthorized(_ context.Context, actorID, firmID string) (bool, error) {
	return f.members[firmID][actorID], nil
}
