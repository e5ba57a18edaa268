// Package intake turns a reported incident into a managed case. Reporting
// runs a fixed pipeline: validate the request, pick assignees, persist the
// incident (and case, when an assignee exists) atomically, then notify the
// involved users best-effort.
package intake

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/ohs/ohs/internal/domain/assignment"
	"github.com/ohs/ohs/internal/domain/cases"
	"github.com/ohs/ohs/internal/domain/directory"
	"github.com/ohs/ohs/internal/domain/incident"
	"github.com/ohs/ohs/internal/domain/notification"
)

// notifyTimeout bounds the detached notification pass that runs after the
// report transaction commits.
const notifyTimeout = 10 * time.Second

// TxRunner executes fn atomically. The production runner is db.WithTx bound
// to the connection pool; repositories join the transaction through their
// context check.
type TxRunner func(ctx context.Context, fn func(ctx context.Context) error) error

// Notifier is the slice of the notification service the pipeline needs.
type Notifier interface {
	Create(ctx context.Context, n *notification.Notification) (*notification.Notification, error)
}

// ReportRequest is a validated-on-entry incident report.
type ReportRequest struct {
	ReporterID   uuid.UUID         `json:"-"`
	WorkerID     uuid.UUID         `json:"worker_id"`
	EmployerID   *uuid.UUID        `json:"employer_id,omitempty"`
	IncidentType incident.Type     `json:"incident_type"`
	Severity     incident.Severity `json:"severity"`
	Description  string            `json:"description"`
	IncidentDate time.Time         `json:"incident_date"`
	PhotoURLs    []string          `json:"photo_urls,omitempty"`
}

// ReportResult is the pipeline outcome. Case is nil on the unassigned
// branch; the report still succeeds.
type ReportResult struct {
	Incident *incident.Incident `json:"incident"`
	Case     *cases.Case        `json:"case,omitempty"`
}

// deliveryResult records one notification attempt of the post-commit pass.
type deliveryResult struct {
	recipient uuid.UUID
	role      string
	err       error
}

type Service struct {
	incidents incident.Repository
	cases     cases.Repository
	selector  *assignment.Selector
	notifier  Notifier
	runTx     TxRunner
	logger    zerolog.Logger

	// afterNotify, when set, runs once the detached notification pass
	// finishes.
	afterNotify func()
}

func NewService(incidents incident.Repository, caseRepo cases.Repository, selector *assignment.Selector, notifier Notifier, runTx TxRunner, logger zerolog.Logger) *Service {
	return &Service{
		incidents: incidents,
		cases:     caseRepo,
		selector:  selector,
		notifier:  notifier,
		runTx:     runTx,
		logger:    logger.With().Str("component", "intake").Logger(),
	}
}

func validateReport(req *ReportRequest) error {
	if req.WorkerID == uuid.Nil {
		return &incident.ValidationError{Field: "worker_id", Reason: "required"}
	}
	if !req.IncidentType.Valid() {
		return &incident.ValidationError{Field: "incident_type", Reason: fmt.Sprintf("unknown type %q", req.IncidentType)}
	}
	if !req.Severity.Valid() {
		return &incident.ValidationError{Field: "severity", Reason: fmt.Sprintf("unknown severity %q", req.Severity)}
	}
	if req.Description == "" {
		return &incident.ValidationError{Field: "description", Reason: "required"}
	}
	if req.IncidentDate.IsZero() {
		return &incident.ValidationError{Field: "incident_date", Reason: "required"}
	}
	if req.IncidentDate.After(time.Now().Add(24 * time.Hour)) {
		return &incident.ValidationError{Field: "incident_date", Reason: "cannot be in the future"}
	}
	return nil
}

// Report runs the intake pipeline. Assignment failure is not an error: when
// no case manager is available the incident is stored as reported and the
// report succeeds without a case. Notification failures never unwind the
// committed writes.
func (s *Service) Report(ctx context.Context, req *ReportRequest) (*ReportResult, error) {
	if err := validateReport(req); err != nil {
		return nil, err
	}

	in := &incident.Incident{
		ReporterID:   req.ReporterID,
		WorkerID:     req.WorkerID,
		EmployerID:   req.EmployerID,
		IncidentType: req.IncidentType,
		Severity:     req.Severity,
		Description:  req.Description,
		IncidentDate: req.IncidentDate,
		PhotoURLs:    req.PhotoURLs,
		Status:       incident.StatusReported,
	}

	manager, err := s.selector.SelectCaseManager(ctx)
	if errors.Is(err, assignment.ErrNoEligibleUser) {
		if err := s.incidents.Create(ctx, in); err != nil {
			return nil, fmt.Errorf("create incident: %w", err)
		}
		s.logger.Warn().Str("incident_id", in.ID.String()).
			Msg("no case manager available, incident left unassigned")
		s.notifyAsync(in, nil)
		return &ReportResult{Incident: in}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("select case manager: %w", err)
	}

	clinician, err := s.selector.SelectClinician(ctx)
	if err != nil && !errors.Is(err, assignment.ErrNoEligibleUser) {
		s.logger.Error().Err(err).Msg("clinician lookup failed, proceeding without one")
	}

	newCase := &cases.Case{
		WorkerID:         req.WorkerID,
		EmployerID:       req.EmployerID,
		CaseManagerID:    manager.ID,
		Priority:         assignment.PriorityFor(req.Severity, req.IncidentType),
		WorkRestrictions: assignment.RestrictionsFor(req.Severity, req.IncidentType),
		Status:           cases.StatusNew,
	}
	if clinician != nil {
		id := clinician.ID
		newCase.ClinicianID = &id
	}

	err = s.runTx(ctx, func(txCtx context.Context) error {
		if err := s.incidents.Create(txCtx, in); err != nil {
			return fmt.Errorf("create incident: %w", err)
		}
		newCase.IncidentID = in.ID
		if err := s.cases.Create(txCtx, newCase); err != nil {
			return fmt.Errorf("create case: %w", err)
		}
		if err := s.incidents.UpdateStatus(txCtx, in.ID, incident.StatusClosed); err != nil {
			return fmt.Errorf("close incident: %w", err)
		}
		in.Status = incident.StatusClosed
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info().Str("incident_id", in.ID.String()).Str("case_id", newCase.ID.String()).
		Str("case_manager_id", manager.ID.String()).Str("priority", string(newCase.Priority)).
		Msg("case auto-created from incident")

	s.notifyAsync(in, newCase)
	return &ReportResult{Incident: in, Case: newCase}, nil
}

// notifyAsync runs the notification pass detached from the request. The
// report response never waits on, or fails because of, delivery.
func (s *Service) notifyAsync(in *incident.Incident, c *cases.Case) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), notifyTimeout)
		defer cancel()
		s.notify(ctx, in, c)
		if s.afterNotify != nil {
			s.afterNotify()
		}
	}()
}

func (s *Service) notify(ctx context.Context, in *incident.Incident, c *cases.Case) {
	var planned []*notification.Notification
	var roles []string

	if c == nil {
		planned = append(planned, &notification.Notification{
			RecipientID: in.WorkerID,
			Type:        notification.TypeIncidentReported,
			Title:       "Incident reported",
			Message:     fmt.Sprintf("Your %s incident was recorded and is awaiting assignment", in.IncidentType),
			Priority:    notification.PriorityNormal,
			RelatedEntity: &notification.RelatedEntity{
				Type: "incident", ID: in.ID,
			},
		})
		roles = append(roles, "worker")
	} else {
		related := &notification.RelatedEntity{Type: "case", ID: c.ID}
		planned = append(planned, &notification.Notification{
			RecipientID:   in.WorkerID,
			Type:          notification.TypeCaseCreated,
			Title:         "Case opened",
			Message:       fmt.Sprintf("A %s priority case was opened for your incident", c.Priority),
			Priority:      notification.PriorityNormal,
			RelatedEntity: related,
		})
		roles = append(roles, "worker")

		planned = append(planned, &notification.Notification{
			RecipientID:   c.CaseManagerID,
			Type:          notification.TypeCaseAssigned,
			Title:         "Case assigned to you",
			Message:       fmt.Sprintf("You were assigned a %s priority case", c.Priority),
			Priority:      notification.PriorityHigh,
			RelatedEntity: related,
		})
		roles = append(roles, "case_manager")

		if c.ClinicianID != nil {
			planned = append(planned, &notification.Notification{
				RecipientID:   *c.ClinicianID,
				Type:          notification.TypeCaseAssigned,
				Title:         "Case assigned to you",
				Message:       fmt.Sprintf("You were assigned a %s priority case as clinician", c.Priority),
				Priority:      notification.PriorityHigh,
				RelatedEntity: related,
			})
			roles = append(roles, "clinician")
		}
	}

	results := make([]deliveryResult, 0, len(planned))
	for i, n := range planned {
		_, err := s.notifier.Create(ctx, n)
		results = append(results, deliveryResult{recipient: n.RecipientID, role: roles[i], err: err})
	}

	failed := 0
	for _, r := range results {
		if r.err != nil {
			failed++
			s.logger.Error().Err(r.err).Str("recipient_id", r.recipient.String()).
				Str("recipient_role", r.role).Str("incident_id", in.ID.String()).
				Msg("intake notification failed")
		}
	}
	evt := s.logger.Info()
	if failed > 0 {
		evt = s.logger.Warn()
	}
	evt.Str("incident_id", in.ID.String()).Int("attempted", len(results)).
		Int("failed", failed).Msg("intake notifications dispatched")
}

// GetIncident returns one incident by id.
func (s *Service) GetIncident(ctx context.Context, id uuid.UUID) (*incident.Incident, error) {
	return s.incidents.GetByID(ctx, id)
}

// ListIncidents returns incidents visible to the caller. Workers only see
// incidents where they are the injured worker.
func (s *Service) ListIncidents(ctx context.Context, callerID uuid.UUID, callerRole string, limit, offset int) ([]*incident.Incident, int, error) {
	if callerRole == string(directory.RoleWorker) {
		return s.incidents.ListByWorker(ctx, callerID, limit, offset)
	}
	return s.incidents.List(ctx, limit, offset)
}
