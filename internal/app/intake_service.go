package app

import (
	"context"

	"github.com/Andrew-C-BOS/WilsonTool-sub004/internal/clock"
	"github.com/Andrew-C-BOS/WilsonTool-sub004/internal/domain"
)

type IntakeRepository interface {
	CreateFirm(ctx context.Context, firm domain.Firm) error
	AddFirmMember(ctx context.Context, member domain.FirmMember) error
	CreateForm(ctx context.Context, form domain.Form) error
	CreateApplication(ctx context.Context, app domain.Application, entry domain.TimelineEntry) error
}

// IntakeService creates the upstream records the workflow runs against:
// firms, their members and forms, and submitted applications.
type IntakeService struct {
	repo  IntakeRepository
	clock clock.Clock
}

func NewIntakeService(repo IntakeRepository, clk clock.Clock) *IntakeService {
	return &IntakeService{
		repo:  repo,
		clock: clk,
	}
}

func (s *IntakeService) CreateFirm(ctx context.Context, name string) (domain.Firm, error) {
	if name == "" {
		return domain.Firm{}, domain.ErrFirmNameRequired
	}
	firm := domain.Firm{
		ID:        newID(),
		Name:      name,
		CreatedAt: s.clock.Now(),
	}
	if err := s.repo.CreateFirm(ctx, firm); err != nil {
		return domain.Firm{}, err
	}
	return firm, nil
}

func (s *IntakeService) AddFirmMember(ctx context.Context, firmID, userID, role string) (domain.FirmMember, error) {
	if firmID == "" {
		return domain.FirmMember{}, domain.ErrInvalidID
	}
	if userID == "" {
		return domain.FirmMember{}, domain.ErrMemberUserRequired
	}
	if role == "" {
		role = "agent"
	}
	member := domain.FirmMember{
		FirmID:    firmID,
		UserID:    userID,
		Role:      role,
		Active:    true,
		CreatedAt: s.clock.Now(),
	}
	if err := s.repo.AddFirmMember(ctx, member); err != nil {
		return domain.FirmMember{}, err
	}
	return member, nil
}

func (s *IntakeService) CreateForm(ctx context.Context, firmID, name string) (domain.Form, error) {
	if firmID == "" {
		return domain.Form{}, domain.ErrInvalidID
	}
	if name == "" {
		return domain.Form{}, domain.ErrFormNameRequired
	}
	form := domain.Form{
		ID:        newID(),
		FirmID:    firmID,
		Name:      name,
		CreatedAt: s.clock.Now(),
	}
	if err := s.repo.CreateForm(ctx, form); err != nil {
		return domain.Form{}, err
	}
	return form, nil
}

// SubmitApplication creates the application in submitted status with its
// first timeline entry. Review and approval happen through hold setup.
func (s *IntakeService) SubmitApplication(ctx context.Context, formID, householdID string) (domain.Application, error) {
	if formID == "" {
		return domain.Application{}, domain.ErrInvalidID
	}
	if householdID == "" {
		return domain.Application{}, domain.ErrHouseholdRequired
	}

	now := s.clock.Now()
	application := domain.Application{
		ID:          newID(),
		FormID:      formID,
		HouseholdID: householdID,
		Status:      domain.ApplicationStatusSubmitted,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	entry := domain.TimelineEntry{
		At:    now,
		By:    householdID,
		Event: domain.TimelineEventSubmitted,
		Meta:  map[string]any{"form_id": formID},
	}

	if err := s.repo.CreateApplication(ctx, application, entry); err != nil {
		return domain.Application{}, err
	}
	return application, nil
}
