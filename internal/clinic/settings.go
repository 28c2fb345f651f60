// Package clinic provides per-tenant operating settings for the engine.
package clinic

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/redis/go-redis/v9"
)

// Mode is the clinic operating configuration.
type Mode string

const (
	// ModeSingle means the tenant has structurally one professional: the owner.
	ModeSingle Mode = "single"
	// ModeMulti means the tenant has a staff of professionals.
	ModeMulti Mode = "multi"
)

// Settings holds clinic-specific configuration read by the engine.
type Settings struct {
	OwnerID string `json:"owner_id"`
	Name    string `json:"name"`
	Mode    Mode   `json:"mode"`
	// OwnerProfessionalID is the professional record of the clinic owner,
	// used as the implicit attribution target in single mode.
	OwnerProfessionalID string `json:"owner_professional_id"`
	// OwnerEmail receives unmapped-calendar alerts.
	OwnerEmail string `json:"owner_email,omitempty"`
	Timezone   string `json:"timezone"`
	// WritebackEnabled gates calendar status tagging for the tenant.
	WritebackEnabled bool `json:"writeback_enabled"`
}

// IsSingleProfessional reports whether the clinic runs in single mode.
func (s *Settings) IsSingleProfessional() bool {
	return s != nil && Mode(strings.ToLower(string(s.Mode))) == ModeSingle
}

// DefaultSettings returns a sensible default configuration.
func DefaultSettings(ownerID string) *Settings {
	return &Settings{
		OwnerID:             ownerID,
		Name:                "Clinic",
		Mode:                ModeSingle,
		OwnerProfessionalID: ownerID,
		Timezone:            "America/Sao_Paulo",
		WritebackEnabled:    true,
	}
}

// Store provides persistence for clinic settings.
type Store struct {
	redis *redis.Client
}

// NewStore creates a new clinic settings store.
func NewStore(redisClient *redis.Client) *Store {
	return &Store{redis: redisClient}
}

func (s *Store) key(ownerID string) string {
	return fmt.Sprintf("clinic:settings:%s", ownerID)
}

// Get retrieves clinic settings, returning defaults if not found.
func (s *Store) Get(ctx context.Context, ownerID string) (*Settings, error) {
	data, err := s.redis.Get(ctx, s.key(ownerID)).Bytes()
	if err == redis.Nil {
		return DefaultSettings(ownerID), nil
	}
	if err != nil {
		return nil, fmt.Errorf("clinic: get settings: %w", err)
	}

	var settings Settings
	if err := json.Unmarshal(data, &settings); err != nil {
		return nil, fmt.Errorf("clinic: unmarshal settings: %w", err)
	}

	return &settings, nil
}

// Set saves clinic settings.
func (s *Store) Set(ctx context.Context, settings *Settings) error {
	if settings == nil || settings.OwnerID == "" {
		return fmt.Errorf("clinic: settings with owner id required")
	}
	data, err := json.Marshal(settings)
	if err != nil {
		return fmt.Errorf("clinic: marshal settings: %w", err)
	}

	if err := s.redis.Set(ctx, s.key(settings.OwnerID), data, 0).Err(); err != nil {
		return fmt.Errorf("clinic: set settings: %w", err)
	}

	return nil
}
