package account

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/kavya-apps/userhub/internal/auth"
	"github.com/kavya-apps/userhub/internal/models"
	"github.com/kavya-apps/userhub/internal/store"
)

// UserStore defines the interface for account persistence.
type UserStore interface {
	Insert(ctx context.Context, u *models.User) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByID(ctx context.Context, id string) (*models.User, error)
	UpdateProfile(ctx context.Context, id, username, email string, phone int64, image *string) (*models.User, error)
	Delete(ctx context.Context, id string) (*models.User, error)
	ListOthers(ctx context.Context, id string) ([]models.User, error)
}

// AssetStore defines the interface for the remote asset host.
type AssetStore interface {
	UploadFile(ctx context.Context, localPath string) (url, key string, err error)
}

// UserCache defines the read-through cache for public profile reads.
type UserCache interface {
	Get(ctx context.Context, id string) (*models.User, error)
	Set(ctx context.Context, u *models.User) error
	Invalidate(ctx context.Context, id string) error
}

// AuditStore defines the account event trail.
type AuditStore interface {
	Record(ctx context.Context, event, userID, email string) error
	Recent(ctx context.Context, limit int) ([]store.Event, error)
}

// ProfileUpdate carries the mutable profile fields. AvatarPath is the
// locally staged avatar file, empty when no avatar was sent.
type ProfileUpdate struct {
	Username   string
	Email      string
	Phone      int64
	AvatarPath string
}

// Service orchestrates registration, login, profile mutation and listing
// across the account store, the asset host, the cache and the audit trail.
type Service struct {
	users  UserStore
	assets AssetStore
	cache  UserCache
	audit  AuditStore
	tokens *auth.TokenService
}

func NewService(users UserStore, assets AssetStore, cache UserCache, audit AuditStore, tokens *auth.TokenService) *Service {
	return &Service{users: users, assets: assets, cache: cache, audit: audit, tokens: tokens}
}

// Register creates an account and logs the user straight in. Duplicate
// emails are caught both by the pre-check and, for the racing case, by the
// unique index on insert.
func (s *Service) Register(ctx context.Context, req models.RegisterRequest) (string, models.Summary, error) {
	if _, err := s.users.FindByEmail(ctx, req.Email); err == nil {
		return "", models.Summary{}, ErrEmailTaken
	} else if !errors.Is(err, store.ErrNoUser) {
		return "", models.Summary{}, err
	}

	hashed, err := auth.HashPassword(req.Password)
	if err != nil {
		return "", models.Summary{}, fmt.Errorf("hash password: %w", err)
	}

	saved, err := s.users.Insert(ctx, &models.User{
		Username:     req.Username,
		Email:        req.Email,
		Phone:        req.Phone,
		PasswordHash: hashed,
		Role:         req.Role,
	})
	if err != nil {
		if errors.Is(err, store.ErrDuplicateEmail) {
			return "", models.Summary{}, ErrEmailTaken
		}
		return "", models.Summary{}, err
	}

	token, err := s.tokens.Issue(saved)
	if err != nil {
		return "", models.Summary{}, fmt.Errorf("issue token: %w", err)
	}

	s.recordEvent(ctx, "register", saved.ID.Hex(), saved.Email)
	return token, saved.Summary(), nil
}

// Login verifies credentials and issues a token.
func (s *Service) Login(ctx context.Context, email, password string) (string, models.Summary, error) {
	u, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNoUser) {
			return "", models.Summary{}, ErrNotFound
		}
		return "", models.Summary{}, err
	}

	if !auth.CheckPassword(password, u.PasswordHash) {
		return "", models.Summary{}, ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(u)
	if err != nil {
		return "", models.Summary{}, fmt.Errorf("issue token: %w", err)
	}

	s.recordEvent(ctx, "login", u.ID.Hex(), u.Email)
	return token, u.Summary(), nil
}

// UpdateProfile overwrites the caller's mutable fields. When an avatar was
// staged it is forwarded to the asset host first and the profile gets its
// public URL; without an avatar the image field is cleared to null, even if
// a prior image existed. That clearing mirrors the long-standing behavior
// clients depend on.
func (s *Service) UpdateProfile(ctx context.Context, callerID string, req ProfileUpdate) (models.Summary, error) {
	var image *string
	if req.AvatarPath != "" {
		url, _, err := s.assets.UploadFile(ctx, req.AvatarPath)
		if err != nil {
			return models.Summary{}, fmt.Errorf("%w: %v", ErrAssetUpload, err)
		}
		image = &url
	}

	u, err := s.users.UpdateProfile(ctx, callerID, req.Username, req.Email, req.Phone, image)
	if err != nil {
		if errors.Is(err, store.ErrNoUser) {
			return models.Summary{}, ErrNotFound
		}
		return models.Summary{}, err
	}

	if err := s.cache.Invalidate(ctx, callerID); err != nil {
		log.Printf("cache invalidate %s: %v", callerID, err)
	}
	s.recordEvent(ctx, "profile_update", u.ID.Hex(), u.Email)
	return u.Summary(), nil
}

// DeleteProfile removes the target account. Callers may delete their own
// account; deleting anyone else requires the admin role. Deleting an id
// that no longer exists still succeeds, returning a nil summary.
func (s *Service) DeleteProfile(ctx context.Context, callerID, callerRole, targetID string) (*models.Summary, error) {
	if callerID != targetID && callerRole != "admin" {
		return nil, ErrForbidden
	}

	u, err := s.users.Delete(ctx, targetID)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, nil
	}

	if err := s.cache.Invalidate(ctx, targetID); err != nil {
		log.Printf("cache invalidate %s: %v", targetID, err)
	}
	s.recordEvent(ctx, "profile_delete", u.ID.Hex(), u.Email)
	sum := u.Summary()
	return &sum, nil
}

// ListUsers returns every account except the caller's. Admin only.
func (s *Service) ListUsers(ctx context.Context, callerID, callerRole string) ([]models.Summary, error) {
	if callerRole != "admin" {
		return nil, ErrForbidden
	}

	users, err := s.users.ListOthers(ctx, callerID)
	if err != nil {
		return nil, err
	}

	summaries := make([]models.Summary, 0, len(users))
	for i := range users {
		summaries = append(summaries, users[i].Summary())
	}
	return summaries, nil
}

// GetUser serves the public profile read through the cache.
func (s *Service) GetUser(ctx context.Context, id string) (models.Summary, error) {
	cached, err := s.cache.Get(ctx, id)
	if err != nil {
		log.Printf("cache get %s: %v", id, err)
	}
	if cached != nil {
		return cached.Summary(), nil
	}

	u, err := s.users.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNoUser) {
			return models.Summary{}, ErrNotFound
		}
		return models.Summary{}, err
	}

	if err := s.cache.Set(ctx, u); err != nil {
		log.Printf("cache set %s: %v", id, err)
	}
	return u.Summary(), nil
}

// UploadImage forwards a staged file to the asset host and returns its
// public URL.
func (s *Service) UploadImage(ctx context.Context, stagedPath string) (string, error) {
	url, _, err := s.assets.UploadFile(ctx, stagedPath)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrAssetUpload, err)
	}
	return url, nil
}

// RecentEvents returns the newest audit entries. Admin only.
func (s *Service) RecentEvents(ctx context.Context, callerRole string, limit int) ([]store.Event, error) {
	if callerRole != "admin" {
		return nil, ErrForbidden
	}
	return s.audit.Recent(ctx, limit)
}

// recordEvent appends to the audit trail; failures are logged, never fatal.
func (s *Service) recordEvent(ctx context.Context, event, userID, email string) {
	if err := s.audit.Record(ctx, event, userID, email); err != nil {
		log.Printf("audit %s %s: %v", event, userID, err)
	}
}
