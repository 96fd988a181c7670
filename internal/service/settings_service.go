package service

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/fleetops/payroll-sync/internal/config"
	"github.com/fleetops/payroll-sync/internal/deel"
	"github.com/fleetops/payroll-sync/internal/repository"
)

const (
	settingKeyAPIToken = "deel_api_token"
	settingKeyBaseURL  = "deel_api_base_url"
	settingKeyAutoSync = "deel_auto_sync_enabled"
)

// SettingsService resolves Deel configuration with the precedence
// stored row > environment config > hardcoded default.
type SettingsService struct {
	store SettingsStore
	cfg   *config.Config
}

func NewSettingsService(store SettingsStore, cfg *config.Config) *SettingsService {
	return &SettingsService{store: store, cfg: cfg}
}

func (s *SettingsService) ResolveDeelConfig(ctx context.Context) (deel.Config, error) {
	token := s.cfg.Deel.APIToken
	baseURL := s.cfg.Deel.BaseURL

	stored, err := s.store.Get(ctx, settingKeyAPIToken)
	if err != nil {
		return deel.Config{}, fmt.Errorf("reading stored token: %w", err)
	}
	if stored != nil && *stored != "" {
		token = *stored
	}

	stored, err = s.store.Get(ctx, settingKeyBaseURL)
	if err != nil {
		return deel.Config{}, fmt.Errorf("reading stored base url: %w", err)
	}
	if stored != nil && *stored != "" {
		baseURL = *stored
	}

	if token == "" {
		return deel.Config{}, ErrTokenNotConfigured
	}
	return deel.Config{BaseURL: baseURL, APIToken: token}, nil
}

func (s *SettingsService) AutoSyncEnabled(ctx context.Context) (bool, error) {
	stored, err := s.store.Get(ctx, settingKeyAutoSync)
	if err != nil {
		return false, err
	}
	return stored != nil && *stored == "true", nil
}

// SettingsView is the masked settings read model. The token is never
// returned whole; only its last four characters survive.
type SettingsView struct {
	HasToken        bool    `json:"hasToken"`
	TokenPreview    *string `json:"tokenPreview"`
	BaseURL         string  `json:"baseUrl"`
	AutoSyncEnabled bool    `json:"autoSyncEnabled"`
	IsProduction    bool    `json:"isProduction"`
}

func (s *SettingsService) View(ctx context.Context) (*SettingsView, error) {
	storedToken, err := s.store.Get(ctx, settingKeyAPIToken)
	if err != nil {
		return nil, err
	}
	storedBaseURL, err := s.store.Get(ctx, settingKeyBaseURL)
	if err != nil {
		return nil, err
	}
	autoSync, err := s.AutoSyncEnabled(ctx)
	if err != nil {
		return nil, err
	}

	view := &SettingsView{AutoSyncEnabled: autoSync}

	switch {
	case storedToken != nil && *storedToken != "":
		view.HasToken = true
		preview := maskToken(*storedToken)
		view.TokenPreview = &preview
	case s.cfg.Deel.APIToken != "":
		view.HasToken = true
		preview := "(from environment)"
		view.TokenPreview = &preview
	}

	view.BaseURL = s.cfg.Deel.BaseURL
	if storedBaseURL != nil && *storedBaseURL != "" {
		view.BaseURL = *storedBaseURL
	}
	view.IsProduction = strings.Contains(view.BaseURL, "letsdeel.com")

	return view, nil
}

// UpdateSettingsInput carries partial updates; nil fields are untouched and
// an empty string clears the stored row so resolution falls back to the
// environment value.
type UpdateSettingsInput struct {
	APIToken        *string
	BaseURL         *string
	AutoSyncEnabled *bool
}

func (s *SettingsService) Update(ctx context.Context, input UpdateSettingsInput) error {
	var changes []repository.SettingChange

	if input.APIToken != nil {
		token := strings.TrimSpace(*input.APIToken)
		if token == "" {
			changes = append(changes, repository.SettingChange{Key: settingKeyAPIToken})
		} else {
			changes = append(changes, repository.SettingChange{
				Key:         settingKeyAPIToken,
				Value:       &token,
				Description: "Deel API authentication token",
			})
		}
	}

	if input.BaseURL != nil {
		baseURL := strings.TrimSpace(*input.BaseURL)
		if baseURL == "" {
			changes = append(changes, repository.SettingChange{Key: settingKeyBaseURL})
		} else {
			parsed, err := url.Parse(baseURL)
			if err != nil || parsed.Scheme == "" || parsed.Host == "" {
				return fmt.Errorf("%w: base url must be a valid absolute URL", ErrInvalidInput)
			}
			changes = append(changes, repository.SettingChange{
				Key:         settingKeyBaseURL,
				Value:       &baseURL,
				Description: "Deel API base URL",
			})
		}
	}

	if input.AutoSyncEnabled != nil {
		value := "false"
		if *input.AutoSyncEnabled {
			value = "true"
		}
		changes = append(changes, repository.SettingChange{
			Key:         settingKeyAutoSync,
			Value:       &value,
			Description: "Whether the cron endpoint may run sync and submission",
		})
	}

	if len(changes) == 0 {
		return nil
	}
	return s.store.Apply(ctx, changes)
}

func maskToken(token string) string {
	if len(token) <= 4 {
		return "***"
	}
	return "***" + token[len(token)-4:]
}
