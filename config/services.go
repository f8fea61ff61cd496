package config

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

// ServiceMode names one long-running component of the portal binary.
type ServiceMode string

const (
	ServiceModeHTTP   ServiceMode = "http"
	ServiceModeWarmer ServiceMode = "warmer" // refreshes the degrading proxy cache
)

// ValidServiceModes lists every mode SERVICES may name.
func ValidServiceModes() []ServiceMode {
	return []ServiceMode{ServiceModeHTTP, ServiceModeWarmer}
}

var errNoServices = errors.New("at least one service must be specified")

// ParseServices turns a comma separated SERVICES value into a set. Blank
// entries are skipped; an unknown name fails the whole value.
func ParseServices(raw string) (map[ServiceMode]bool, error) {
	valid := ValidServiceModes()
	enabled := make(map[ServiceMode]bool, len(valid))
	for _, field := range strings.Split(raw, ",") {
		name := strings.TrimSpace(field)
		if name == "" {
			continue
		}
		mode := ServiceMode(name)
		if !slices.Contains(valid, mode) {
			return nil, fmt.Errorf("invalid service name %q (valid options: %s)", name, joinModes(valid))
		}
		enabled[mode] = true
	}
	if len(enabled) == 0 {
		return nil, errNoServices
	}
	return enabled, nil
}

func joinModes(modes []ServiceMode) string {
	names := make([]string, len(modes))
	for i, m := range modes {
		names[i] = string(m)
	}
	return strings.Join(names, ", ")
}
