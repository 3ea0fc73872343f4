package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/insurecare/feedback-portal/internal/access"
	"github.com/insurecare/feedback-portal/internal/domain"
	"github.com/insurecare/feedback-portal/internal/events"
	"github.com/insurecare/feedback-portal/internal/qr"
	"github.com/insurecare/feedback-portal/internal/storage"
	apperrors "github.com/insurecare/feedback-portal/pkg/util/errorutil"
)

// QRImage is a rendered QR code ready for download.
type QRImage struct {
	Target      domain.Target
	URI         string
	Filename    string
	ContentType string
	Data        []byte
}

// PublishedQR points at a QR image uploaded to object storage.
type PublishedQR struct {
	Target    domain.Target `json:"target"`
	Key       string        `json:"key"`
	URI       string        `json:"uri"`
	URL       string        `json:"url"`
	ExpiresAt time.Time     `json:"expires_at"`
}

// QRService renders and resolves the rating deep links printed on profile QR codes.
type QRService struct {
	publisher
	profiles   *ProfileService
	baseURL    string
	store      storage.ObjectStore
	presignTTL time.Duration
	now        func() time.Time
}

// QRDependencies bundles collaborators for the QR service. Store may be nil when
// object storage is not configured.
type QRDependencies struct {
	Profiles   *ProfileService
	BaseURL    string
	Store      storage.ObjectStore
	PresignTTL time.Duration
	Dispatcher events.Dispatcher
	Logger     *zap.Logger
}

// NewQRService constructs the service.
func NewQRService(deps QRDependencies) *QRService {
	return &QRService{
		publisher:  newPublisher(deps.Dispatcher, deps.Logger),
		profiles:   deps.Profiles,
		baseURL:    deps.BaseURL,
		store:      deps.Store,
		presignTTL: deps.PresignTTL,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// RenderProfile renders the QR image of a profile. Staff may only render their own.
func (s *QRService) RenderProfile(ctx context.Context, caller access.Caller, target domain.Target) (*QRImage, error) {
	if err := access.Authorize(caller, access.DownloadQR); err != nil {
		return nil, err
	}
	if err := access.RequireTarget(caller, target); err != nil {
		return nil, err
	}
	image, err := s.render(ctx, target)
	if err != nil {
		return nil, err
	}
	s.publishEvent(ctx, events.Event{
		Type:   events.EventProfileQRRendered,
		Target: target,
		Actor:  actorOf(caller),
	})
	return image, nil
}

// OwnCode renders the QR image of the caller's linked profile.
func (s *QRService) OwnCode(ctx context.Context, caller access.Caller) (*QRImage, error) {
	target, err := access.OwnTarget(caller)
	if err != nil {
		return nil, err
	}
	return s.RenderProfile(ctx, caller, target)
}

// Scan resolves a scanned payload to the public summary of its profile.
func (s *QRService) Scan(ctx context.Context, caller access.Caller, payload string) (domain.ProfileSummary, error) {
	if err := access.Authorize(caller, access.ResolveCode); err != nil {
		return domain.ProfileSummary{}, err
	}
	target, err := qr.Resolve(payload)
	if err != nil {
		return domain.ProfileSummary{}, apperrors.NewInvalidCode(payload)
	}
	return s.profiles.Summary(ctx, caller, target)
}

// Publish uploads the QR image of a profile to object storage and returns a
// presigned download link.
func (s *QRService) Publish(ctx context.Context, caller access.Caller, target domain.Target) (*PublishedQR, error) {
	if err := access.Authorize(caller, access.PublishQR); err != nil {
		return nil, err
	}
	if s.store == nil {
		return nil, apperrors.NewUnavailable("object storage is not configured")
	}
	image, err := s.render(ctx, target)
	if err != nil {
		return nil, err
	}

	key := fmt.Sprintf("qr/%s/%d.png", target.Kind(), target.ID())
	if err := s.store.Put(ctx, key, image.ContentType, image.Data); err != nil {
		return nil, apperrors.NewInternalError(fmt.Errorf("upload qr image: %w", err))
	}
	url, err := s.store.PresignGet(ctx, key, s.presignTTL)
	if err != nil {
		return nil, apperrors.NewInternalError(fmt.Errorf("presign qr image: %w", err))
	}
	s.logger.Info("qr image published", zap.String("target", target.String()), zap.String("key", key))
	return &PublishedQR{
		Target:    target,
		Key:       key,
		URI:       image.URI,
		URL:       url,
		ExpiresAt: s.now().Add(s.presignTTL),
	}, nil
}

func (s *QRService) render(ctx context.Context, target domain.Target) (*QRImage, error) {
	name, err := s.profileName(ctx, target)
	if err != nil {
		return nil, err
	}
	uri := qr.Payload(s.baseURL, target.Kind(), target.ID())
	data, err := qr.Render(uri)
	if err != nil {
		return nil, apperrors.NewInternalError(fmt.Errorf("render qr: %w", err))
	}
	return &QRImage{
		Target:      target,
		URI:         uri,
		Filename:    qr.Filename(name),
		ContentType: qr.ContentType,
		Data:        data,
	}, nil
}

func (s *QRService) profileName(ctx context.Context, target domain.Target) (string, error) {
	switch target.Kind() {
	case domain.KindAgent:
		agent, err := s.profiles.loadAgent(ctx, target.ID())
		if err != nil {
			return "", err
		}
		return agent.Name, nil
	case domain.KindEmployee:
		employee, err := s.profiles.loadEmployee(ctx, target.ID())
		if err != nil {
			return "", err
		}
		return employee.Name, nil
	}
	return "", apperrors.NewNotFound("profile", nil)
}
