package service

import (
	"context"
	"errors"
	"fmt"
	"log"

	"nismah/internal/models"
	"nismah/internal/repository"
)

var (
	ErrIncidentIncomplete = errors.New("category, location and description are required")
	ErrAlertNotFound      = errors.New("alert not found")
	ErrNotAuthorized      = errors.New("not authorized")
)

// AlertService handles incident reporting and alert lifecycle
type AlertService struct {
	incidentRepo *repository.IncidentRepository
	accountRepo  *repository.AccountRepository
	emailService *EmailService
}

// NewAlertService creates a new alert service
func NewAlertService(incidentRepo *repository.IncidentRepository, accountRepo *repository.AccountRepository, emailService *EmailService) *AlertService {
	return &AlertService{
		incidentRepo: incidentRepo,
		accountRepo:  accountRepo,
		emailService: emailService,
	}
}

// ReportIncident records an incident and its paired alert. When the reporter
// is a signed-in account with a family code, the alert is scoped to that
// family and its guardians are notified by email; otherwise the alert is
// public. Email failures are logged, never surfaced to the reporter.
func (s *AlertService) ReportIncident(ctx context.Context, incident *models.Incident, reporter *models.Account) (*models.AlertWithIncident, error) {
	if incident.Category == "" || incident.Location == "" || incident.Description == "" {
		return nil, ErrIncidentIncomplete
	}

	var familyCode *string
	if reporter != nil {
		incident.ReporterID = &reporter.ID
		if incident.ReporterName == nil {
			incident.ReporterName = &reporter.Name
		}
		familyCode = reporter.FamilyCode
	}

	entry, err := s.incidentRepo.CreateWithAlert(incident, familyCode)
	if err != nil {
		return nil, err
	}

	if familyCode != nil {
		s.notifyGuardians(ctx, *familyCode, &entry.Incident)
	}
	return entry, nil
}

// notifyGuardians emails every guardian of a family about a new incident
func (s *AlertService) notifyGuardians(ctx context.Context, familyCode string, incident *models.Incident) {
	guardians, err := s.accountRepo.ListGuardiansByFamilyCode(familyCode)
	if err != nil {
		log.Printf("Failed to look up guardians for alert notification: %v", err)
		return
	}
	for _, guardian := range guardians {
		if err := s.emailService.SendAlertEmail(ctx, guardian.Email, guardian.Name, incident); err != nil {
			log.Printf("Failed to send alert email to %s: %v", guardian.Email, err)
		}
	}
}

// ListAlerts retrieves the unresolved alerts visible to the viewer: public
// alerts for everyone, plus the viewer's family alerts when signed in.
func (s *AlertService) ListAlerts(viewer *models.Account) ([]models.AlertWithIncident, error) {
	var familyCode *string
	if viewer != nil {
		familyCode = viewer.FamilyCode
	}
	return s.incidentRepo.ListUnresolved(familyCode)
}

// ResolveAlert marks an alert resolved. Only admins may resolve alerts.
func (s *AlertService) ResolveAlert(alertID int64, actor *models.Account) error {
	if actor == nil || !actor.IsAdmin {
		return ErrNotAuthorized
	}
	resolved, err := s.incidentRepo.ResolveAlert(alertID)
	if err != nil {
		return fmt.Errorf("failed to resolve alert: %w", err)
	}
	if !resolved {
		return ErrAlertNotFound
	}
	return nil
}
