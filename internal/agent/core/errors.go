package core

import (
	"errors"
	"fmt"
)

// ErrNoToolDispatcher is returned when a model requests a tool but the
// engine was constructed without a dispatcher.
var ErrNoToolDispatcher = errors.New("model requested tool use but no tool dispatcher is configured")

// ErrToolRoundsExceeded is returned when a model keeps requesting tools past
// the configured round cap instead of producing a final answer.
var ErrToolRoundsExceeded = errors.New("tool round limit exceeded without a final answer")

// UnknownToolError is returned by a tool dispatcher when the model asks for
// a tool that is not registered.
type UnknownToolError struct {
	Name string
}

func (e *UnknownToolError) Error() string {
	return fmt.Sprintf("unknown tool: %s", e.Name)
}
