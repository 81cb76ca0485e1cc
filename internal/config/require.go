package config

import "log"

// MustNonEmpty aborts startup when a required setting is absent.
// Secrets load as []byte, everything else as string.
func MustNonEmpty[T ~string | ~[]byte](value T, envName string) {
	if len(value) == 0 {
		log.Fatalf("config: %s is required, refusing to start without it", envName)
	}
}
