// Package features holds the behaviour scenarios for the mood mapper.
package features
