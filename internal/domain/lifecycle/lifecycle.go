// Package lifecycle holds shared start/stop parameters for long-running components.
package lifecycle

import "time"

// DefaultTimeout bounds every start and shutdown hook.
const DefaultTimeout = 10 * time.Second
