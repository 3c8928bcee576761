package selfrag

import (
	"errors"
	"fmt"
)

// ErrRetrievalLimit is returned when a completion exceeds the configured
// number of retrieval rounds without the model ending its turn.
var ErrRetrievalLimit = errors.New("retrieval round limit exceeded")

// ConfigError reports an invalid generation configuration, raised before
// any backend call is made.
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config error on field %s: %s", e.Field, e.Message)
}
