package script

import (
	"time"
)

// ErrorType categorizes script errors.
type ErrorType string

const (
	ErrorTypeCompilation ErrorType = "compilation"
	ErrorTypeExecution   ErrorType = "execution"
	ErrorTypeTimeout     ErrorType = "timeout"
	ErrorTypeNotFound    ErrorType = "not_found"
	ErrorTypeManifest    ErrorType = "manifest"
)

// Script is a tengo source file that implements one transformer.
type Script struct {
	Type    string // model type the script transforms
	Variant string
	Path    string
	Content string
}

// Name identifies the script in logs and errors.
func (s *Script) Name() string {
	return s.Type + "/" + s.Variant + " (" + s.Path + ")"
}

// Limits constrains script execution.
type Limits struct {
	MaxExecutionTime time.Duration
	MaxAllocs        int64    // object allocations per run; 0 means unlimited
	AllowedModules   []string // tengo stdlib modules scripts may import
}

// ScriptError represents script-related errors with context.
type ScriptError struct {
	Type      ErrorType
	Script    string
	Message   string
	Cause     error
	Timestamp time.Time
}

func (e *ScriptError) Error() string {
	msg := e.Message
	if e.Script != "" {
		msg = e.Script + ": " + msg
	}
	if e.Cause != nil {
		return msg + ": " + e.Cause.Error()
	}
	return msg
}

func (e *ScriptError) Unwrap() error {
	return e.Cause
}

// NewScriptError creates a new ScriptError with the given parameters.
func NewScriptError(errorType ErrorType, script, message string, cause error) *ScriptError {
	return &ScriptError{
		Type:      errorType,
		Script:    script,
		Message:   message,
		Cause:     cause,
		Timestamp: time.Now(),
	}
}
