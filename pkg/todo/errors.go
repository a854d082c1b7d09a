package todo

import "fmt"

// ConfigError reports a missing backend setting, e.g. an unset spreadsheet id.
type ConfigError struct {
	Setting string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("missing required setting %s", e.Setting)
}

// ValidationError reports malformed caller input, e.g. empty text or an id
// that cannot address any row.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Reason
}

// NotFoundError reports an id that matched no item under the backend's
// addressing scheme.
type NotFoundError struct {
	ID string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("no todo item with id %q", e.ID)
}
