package config

import (
	"fmt"
	"strings"
)

// ValidationError represents a configuration validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// minJWTSecretLength applies outside development and test
const minJWTSecretLength = 32

// ValidateConfig checks if the configuration meets the requirements for its environment
func ValidateConfig(cfg *Config) error {
	var errs []string

	if cfg.ServerPort == "" {
		errs = append(errs, ValidationError{"SERVER_PORT", "is required"}.Error())
	}

	switch cfg.DBDriver {
	case "postgres":
		if cfg.DBHost == "" || cfg.DBName == "" {
			errs = append(errs, ValidationError{"DB_HOST", "host and database name are required for postgres"}.Error())
		}
	case "sqlite":
		if cfg.Env.IsProduction() {
			errs = append(errs, ValidationError{"DB_DRIVER", "sqlite is not allowed in production"}.Error())
		}
	default:
		errs = append(errs, ValidationError{"DB_DRIVER", fmt.Sprintf("unsupported driver %q", cfg.DBDriver)}.Error())
	}

	if cfg.JWTSecret == "" {
		errs = append(errs, ValidationError{"JWT_SECRET", "jwt_secret secret is required"}.Error())
	} else if cfg.Env.IsStrict() && len(cfg.JWTSecret) < minJWTSecretLength {
		errs = append(errs, ValidationError{"JWT_SECRET", fmt.Sprintf("must be at least %d characters", minJWTSecretLength)}.Error())
	}

	if cfg.Env.IsProduction() && cfg.DBDriver == "postgres" && cfg.DBPassword == "" {
		errs = append(errs, ValidationError{"DB_PASSWORD", "db_password secret is required"}.Error())
	}

	if cfg.AccessTokenTTL <= 0 || cfg.RefreshTokenTTL <= 0 {
		errs = append(errs, ValidationError{"ACCESS_TOKEN_TTL", "token lifetimes must be positive"}.Error())
	}
	if cfg.RefreshTokenTTL < cfg.AccessTokenTTL {
		errs = append(errs, ValidationError{"REFRESH_TOKEN_TTL", "must not be shorter than ACCESS_TOKEN_TTL"}.Error())
	}

	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "\n"))
	}

	return nil
}
