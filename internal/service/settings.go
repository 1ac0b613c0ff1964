package service

import (
	"context"

	"github.com/gumusqr/backend/internal/db"
	"github.com/gumusqr/backend/internal/model"
)

const logoImageFolder = "logos"

type SettingsRepo interface {
	GetSettings(ctx context.Context) (model.Settings, error)
	GetSetting(ctx context.Context, key string) (string, error)
	UpsertSetting(ctx context.Context, key, value string) error
}

type SettingsService struct {
	repo   SettingsRepo
	images ImageStore
}

func NewSettingsService(repo SettingsRepo, images ImageStore) *SettingsService {
	return &SettingsService{repo: repo, images: images}
}

// Get returns all settings, seeding the defaults on a fresh installation.
func (s *SettingsService) Get(ctx context.Context) (model.Settings, error) {
	settings, err := s.repo.GetSettings(ctx)
	if err != nil {
		return nil, err
	}
	if len(settings) > 0 {
		return settings, nil
	}

	defaults := model.DefaultSettings()
	for key, value := range defaults {
		if err := s.repo.UpsertSetting(ctx, key, value); err != nil {
			return nil, err
		}
	}
	return defaults, nil
}

// PublicGet is the unauthenticated read: defaults are returned but not
// persisted when the table is empty.
func (s *SettingsService) PublicGet(ctx context.Context) (model.Settings, error) {
	settings, err := s.repo.GetSettings(ctx)
	if err != nil {
		return nil, err
	}
	if len(settings) == 0 {
		return model.DefaultSettings(), nil
	}
	return settings, nil
}

// Update applies the logo replacement protocol, then upserts the remaining
// key/value pairs and returns the merged result.
func (s *SettingsService) Update(ctx context.Context, req model.SettingsUpdateRequest) (model.Settings, error) {
	if req.Logo != "" || req.RemoveLogo {
		currentLogo, err := s.repo.GetSetting(ctx, model.SettingLogoURL)
		if err != nil && !db.IsNoRows(err) {
			return nil, err
		}

		logoURL, err := replaceImage(ctx, s.images, currentLogo, req.Logo, logoImageFolder, req.RemoveLogo)
		if err != nil {
			return nil, err
		}
		if err := s.repo.UpsertSetting(ctx, model.SettingLogoURL, logoURL); err != nil {
			return nil, err
		}
	}

	for key, value := range req.Values {
		// logo_url is derived from the upload flow above, never written
		// directly by clients.
		if key == model.SettingLogoURL {
			continue
		}
		if err := s.repo.UpsertSetting(ctx, key, value); err != nil {
			return nil, err
		}
	}

	return s.repo.GetSettings(ctx)
}
