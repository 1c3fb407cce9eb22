package config

import (
	"fmt"
	"time"
)

// DomainConfig holds all configurable business rules and constraints
type DomainConfig struct {
	// Traversal limits
	MaxTreeNodes     int
	MaxTreeDepth     int
	MaxEdgesPerQuery int

	// Person constraints
	MaxNameLength         int
	MaxNotesLength        int
	MaxManualMembersPerAccount int

	// Time constraints
	TreeCacheTTL      time.Duration
	SessionTimeout    time.Duration
	ConnectionTimeout time.Duration

	// Validation settings
	AllowFutureDateOfBirth bool

	// Feature flags
	EnablePlaceholderParents bool
	EnableLinkSuggestions    bool
	EnableTreeNotifications  bool
}

// DefaultDomainConfig returns the default domain configuration
func DefaultDomainConfig() *DomainConfig {
	return &DomainConfig{
		// Traversal limits
		MaxTreeNodes:     5000,
		MaxTreeDepth:     50,
		MaxEdgesPerQuery: 1000,

		// Person constraints
		MaxNameLength:              120,
		MaxNotesLength:             2000,
		MaxManualMembersPerAccount: 500,

		// Time constraints
		TreeCacheTTL:      30 * time.Second,
		SessionTimeout:    24 * time.Hour,
		ConnectionTimeout: 30 * time.Second,

		// Validation settings
		AllowFutureDateOfBirth: false,

		// Feature flags
		EnablePlaceholderParents: true,
		EnableLinkSuggestions:    true,
		EnableTreeNotifications:  true,
	}
}

// ProductionDomainConfig returns production-specific configuration
func ProductionDomainConfig() *DomainConfig {
	config := DefaultDomainConfig()

	// Tighter limits for production
	config.MaxTreeNodes = 2000
	config.MaxManualMembersPerAccount = 200

	return config
}

// DevelopmentDomainConfig returns development-specific configuration
func DevelopmentDomainConfig() *DomainConfig {
	config := DefaultDomainConfig()

	// More permissive for development
	config.MaxTreeNodes = 50000
	config.MaxManualMembersPerAccount = 10000
	config.AllowFutureDateOfBirth = true

	return config
}

// LoadDomainConfig loads domain configuration based on environment
func LoadDomainConfig(environment string) *DomainConfig {
	switch environment {
	case "production":
		return ProductionDomainConfig()
	case "development":
		return DevelopmentDomainConfig()
	default:
		return DefaultDomainConfig()
	}
}

// Validate checks if the configuration is valid
func (c *DomainConfig) Validate() error {
	if c.MaxTreeNodes <= 0 {
		return fmt.Errorf("MaxTreeNodes must be positive, got %d", c.MaxTreeNodes)
	}
	if c.MaxNameLength <= 0 {
		return fmt.Errorf("MaxNameLength must be positive, got %d", c.MaxNameLength)
	}
	return nil
}
