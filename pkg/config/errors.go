package config

import "errors"

// Common errors returned by the config package.
var (
	// ErrMissingAPIURL is returned when an API base URL is empty.
	ErrMissingAPIURL = errors.New("api base_url and card_base_url must be set")

	// ErrInvalidAPITimeout is returned when the API timeout is <= 0.
	ErrInvalidAPITimeout = errors.New("invalid api timeout: must be > 0")

	// ErrInvalidStorageDriver is returned when the storage driver is not recognized.
	ErrInvalidStorageDriver = errors.New("invalid storage driver: must be bolt, file, redis, or memory")

	// ErrMissingStorageLocation is returned when the selected driver has no path, dir or URL.
	ErrMissingStorageLocation = errors.New("storage location not set for driver")

	// ErrInvalidStorageTimeout is returned when the storage timeout is <= 0.
	ErrInvalidStorageTimeout = errors.New("invalid storage timeout: must be > 0")

	// ErrInvalidHistorySize is returned when history size is out of range.
	ErrInvalidHistorySize = errors.New("invalid history size: must be between 1 and 50")

	// ErrInvalidDisplayFormat is returned when display format is not recognized.
	ErrInvalidDisplayFormat = errors.New("invalid display format: must be table, json, or simple")

	// ErrInvalidLogLevel is returned when log level is not recognized.
	ErrInvalidLogLevel = errors.New("invalid log level: must be debug, info, warn, or error")

	// ErrInvalidLogFormat is returned when log format is not recognized.
	ErrInvalidLogFormat = errors.New("invalid log format: must be text or json")

	// ErrConfigNotFound is returned when config file is not found.
	ErrConfigNotFound = errors.New("config file not found")

	// ErrInvalidYAML is returned when config file has invalid YAML syntax.
	ErrInvalidYAML = errors.New("invalid YAML syntax in config file")
)
