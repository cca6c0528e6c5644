package config

import (
	"os"
	"strings"
)

// Environment selects validation strictness and defaults
type Environment string

const (
	Development Environment = "development"
	Test        Environment = "test"
	CI          Environment = "ci"
	Production  Environment = "production"
)

// GetEnvironment reads ENV. CI=true wins over ENV.
func GetEnvironment() Environment {
	if os.Getenv("CI") == "true" {
		return CI
	}
	return ParseEnvironment(os.Getenv("ENV"))
}

// ParseEnvironment maps a name to an Environment, defaulting to Development
func ParseEnvironment(name string) Environment {
	switch env := Environment(strings.ToLower(strings.TrimSpace(name))); env {
	case Production, Test, CI:
		return env
	default:
		return Development
	}
}

func (e Environment) IsDevelopment() bool { return e == Development }
func (e Environment) IsProduction() bool  { return e == Production }

// IsStrict reports whether secrets must meet production requirements
func (e Environment) IsStrict() bool {
	return e == Production || e == CI
}

// DefaultLogFormat is console for local development, json elsewhere
func (e Environment) DefaultLogFormat() string {
	if e.IsDevelopment() {
		return "console"
	}
	return "json"
}
