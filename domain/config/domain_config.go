package config

import "fmt"

// DomainConfig holds all configurable business rules and constraints
type DomainConfig struct {
	// Placeholder labels
	DefaultRootLabel  string
	NewNodeLabel      string
	UnknownTopicLabel string
	LoadFailedLabel   string
	UntitledTitle     string

	// Envelope metadata written on save
	EnvelopeAuthor  string
	EnvelopeVersion string

	// History constraints
	MaxHistoryLength int

	// Node constraints
	MaxLabelLength    int
	MaxNodesPerMap    int
	GeneratedIDPrefix string
}

// DefaultDomainConfig returns the default domain configuration
func DefaultDomainConfig() *DomainConfig {
	return &DomainConfig{
		DefaultRootLabel:  "Central Topic",
		NewNodeLabel:      "New Node",
		UnknownTopicLabel: "Unknown Topic",
		LoadFailedLabel:   "Failed to Load",
		UntitledTitle:     "Untitled Mind Map",

		EnvelopeAuthor:  "User",
		EnvelopeVersion: "1.0",

		MaxHistoryLength: 50,

		MaxLabelLength:    500,
		MaxNodesPerMap:    10000,
		GeneratedIDPrefix: "node-",
	}
}

// ProductionDomainConfig returns production-specific configuration
func ProductionDomainConfig() *DomainConfig {
	config := DefaultDomainConfig()

	// Tighter bounds for shared deployments
	config.MaxNodesPerMap = 5000
	config.MaxLabelLength = 200

	return config
}

// DevelopmentDomainConfig returns development-specific configuration
func DevelopmentDomainConfig() *DomainConfig {
	config := DefaultDomainConfig()

	config.MaxNodesPerMap = 100000
	config.MaxLabelLength = 5000

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
	if c.MaxHistoryLength < 1 {
		return fmt.Errorf("invalid domain config: MaxHistoryLength must be at least 1")
	}
	if c.DefaultRootLabel == "" || c.LoadFailedLabel == "" {
		return fmt.Errorf("invalid domain config: placeholder labels cannot be empty")
	}
	if c.GeneratedIDPrefix == "" {
		return fmt.Errorf("invalid domain config: GeneratedIDPrefix cannot be empty")
	}
	return nil
}
