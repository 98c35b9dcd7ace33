package service

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/pixelift/internal/config"
	"github.com/smallbiznis/pixelift/internal/identity/domain"
	"github.com/smallbiznis/pixelift/internal/identity/webhook"
	userdomain "github.com/smallbiznis/pixelift/internal/user/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const provider = "clerk"

type Params struct {
	fx.In

	DB      *gorm.DB
	Log     *zap.Logger
	GenID   *snowflake.Node
	Repo    domain.Repository
	UserSvc userdomain.Service
	Cfg     config.Config
}

type Service struct {
	db      *gorm.DB
	log     *zap.Logger
	genID   *snowflake.Node
	repo    domain.Repository
	userSvc userdomain.Service

	verifier *webhook.Verifier
	relaxed  bool
}

func New(p Params) domain.Service {
	svc := &Service{
		db:      p.DB,
		log:     p.Log.Named("identity.service"),
		genID:   p.GenID,
		repo:    p.Repo,
		userSvc: p.UserSvc,
		relaxed: p.Cfg.IdentityWebhookRelaxed,
	}

	verifier, err := webhook.NewVerifier(p.Cfg.IdentityWebhookSecret)
	if err != nil {
		svc.log.Warn("identity webhook secret not configured", zap.Error(err))
	} else {
		svc.verifier = verifier
	}

	return svc
}

type clerkEnvelope struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

type clerkUser struct {
	ID             string `json:"id"`
	Username       string `json:"username"`
	ImageURL       string `json:"image_url"`
	FirstName      string `json:"first_name"`
	LastName       string `json:"last_name"`
	EmailAddresses []struct {
		EmailAddress string `json:"email_address"`
	} `json:"email_addresses"`
}

func (s *Service) ProcessWebhook(ctx context.Context, payload []byte, headers http.Header) error {
	eventID, err := s.verify(payload, headers)
	if err != nil {
		return err
	}

	event, err := parseEvent(eventID, payload)
	if err != nil {
		return err
	}

	stored, err := s.recordDelivery(ctx, event, payload)
	if err != nil {
		return err
	}

	if err := s.apply(ctx, event); err != nil {
		return err
	}

	return s.repo.MarkProcessed(ctx, s.db, stored.ID, time.Now().UTC())
}

func (s *Service) verify(payload []byte, headers http.Header) (string, error) {
	if s.verifier == nil {
		if s.relaxed {
			s.log.Warn("accepting unverified identity webhook (relaxed mode)")
			return strings.TrimSpace(headers.Get("svix-id")), nil
		}
		return "", domain.ErrSecretMissing
	}

	id, err := s.verifier.Verify(payload, headers)
	if err != nil {
		if s.relaxed {
			s.log.Warn("accepting identity webhook with failed verification (relaxed mode)", zap.Error(err))
			return strings.TrimSpace(headers.Get("svix-id")), nil
		}
		return "", err
	}
	return id, nil
}

func parseEvent(eventID string, payload []byte) (*domain.UserEvent, error) {
	var envelope clerkEnvelope
	if err := json.Unmarshal(payload, &envelope); err != nil {
		return nil, domain.ErrInvalidPayload
	}

	eventType := strings.TrimSpace(envelope.Type)
	switch eventType {
	case domain.EventTypeUserCreated, domain.EventTypeUserUpdated, domain.EventTypeUserDeleted:
	default:
		return nil, domain.ErrEventIgnored
	}

	var data clerkUser
	if err := json.Unmarshal(envelope.Data, &data); err != nil {
		return nil, domain.ErrInvalidPayload
	}
	if strings.TrimSpace(data.ID) == "" {
		return nil, domain.ErrInvalidEvent
	}

	event := &domain.UserEvent{
		EventID:   strings.TrimSpace(eventID),
		Type:      eventType,
		ClerkID:   strings.TrimSpace(data.ID),
		Username:  strings.TrimSpace(data.Username),
		Photo:     strings.TrimSpace(data.ImageURL),
		FirstName: strings.TrimSpace(data.FirstName),
		LastName:  strings.TrimSpace(data.LastName),
	}
	if len(data.EmailAddresses) > 0 {
		event.Email = strings.TrimSpace(data.EmailAddresses[0].EmailAddress)
	}
	if event.EventID == "" {
		// Relaxed deliveries may lack a svix-id; fall back to a
		// type-scoped key so redelivery detection still works.
		event.EventID = eventType + ":" + event.ClerkID
	}
	return event, nil
}

func (s *Service) recordDelivery(ctx context.Context, event *domain.UserEvent, payload []byte) (*domain.EventRecord, error) {
	record := domain.EventRecord{
		ID:         s.genID.Generate(),
		Provider:   provider,
		EventID:    event.EventID,
		EventType:  event.Type,
		ClerkID:    event.ClerkID,
		Payload:    datatypes.JSON(payload),
		ReceivedAt: time.Now().UTC(),
	}

	inserted, err := s.repo.InsertEvent(ctx, s.db, &record)
	if err != nil {
		return nil, err
	}
	if inserted {
		return &record, nil
	}

	stored, err := s.repo.FindEvent(ctx, s.db, provider, event.EventID)
	if err != nil {
		return nil, err
	}
	if stored == nil {
		return nil, domain.ErrInvalidEvent
	}
	if stored.ProcessedAt != nil {
		return nil, domain.ErrEventAlreadyProcessed
	}
	return stored, nil
}

func (s *Service) apply(ctx context.Context, event *domain.UserEvent) error {
	switch event.Type {
	case domain.EventTypeUserCreated:
		_, err := s.userSvc.Create(ctx, userdomain.CreateUserRequest{
			ClerkID:   event.ClerkID,
			Email:     event.Email,
			Username:  event.Username,
			Photo:     event.Photo,
			FirstName: event.FirstName,
			LastName:  event.LastName,
		})
		return err
	case domain.EventTypeUserUpdated:
		return s.userSvc.UpdateProfile(ctx, userdomain.UpdateProfileRequest{
			ClerkID:   event.ClerkID,
			Email:     event.Email,
			Username:  event.Username,
			Photo:     event.Photo,
			FirstName: event.FirstName,
			LastName:  event.LastName,
		})
	case domain.EventTypeUserDeleted:
		return s.userSvc.Delete(ctx, event.ClerkID)
	default:
		return domain.ErrEventIgnored
	}
}
