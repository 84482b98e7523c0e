package script

import "time"

// DefaultLimits provides safe default constraints for script execution.
var DefaultLimits = Limits{
	MaxExecutionTime: 2 * time.Second,
	MaxAllocs:        100000,
	AllowedModules: []string{
		"fmt",
		"strings",
		"math",
		"text",
		"times",
		"enum",
	},
}

// GetDefaultLimits returns a copy of the default limits.
func GetDefaultLimits() Limits {
	limits := DefaultLimits
	limits.AllowedModules = append([]string(nil), DefaultLimits.AllowedModules...)
	return limits
}
