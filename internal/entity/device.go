package entity

import (
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"github.com/Masterminds/semver/v3"
)

// Domain is the identifier namespace used for devices and entities.
const Domain = "gatus"

// Attribution is attached to every entity state.
const Attribution = "Data provided by Gatus"

// DeviceInfo describes the Gatus server that all entities of one instance
// belong to. It is a value attached to each entity.
type DeviceInfo struct {
	// Identifiers are (domain, id) pairs; one pair per instance.
	Identifiers [][2]string `json:"identifiers"`

	Name             string `json:"name"`
	Manufacturer     string `json:"manufacturer"`
	Model            string `json:"model"`
	ConfigurationURL string `json:"configuration_url"`

	// SWVersion is the bridge version, omitted when it is not a valid version.
	SWVersion string `json:"sw_version,omitempty"`
}

// NewDeviceInfo builds the device for instance entryID served at serverURL.
//
// version is the running bridge version; anything whose string form does not
// parse as a version (for example "dev" or "main") is dropped.
func NewDeviceInfo(entryID, serverURL string, version any, logger *slog.Logger) DeviceInfo {
	if logger == nil {
		logger = slog.Default()
	}
	return DeviceInfo{
		Identifiers:      [][2]string{{Domain, entryID}},
		Name:             fmt.Sprintf("Gatus (%s)", hostOf(serverURL)),
		Manufacturer:     "Gatus",
		Model:            "Health Monitor",
		ConfigurationURL: serverURL,
		SWVersion:        NormalizeSWVersion(version, logger),
	}
}

// NormalizeSWVersion returns the trimmed string form of v when it parses as
// a version, and "" otherwise.
func NormalizeSWVersion(v any, logger *slog.Logger) string {
	if v == nil {
		return ""
	}

	var s string
	switch x := v.(type) {
	case string:
		s = x
	case fmt.Stringer:
		s = x.String()
	default:
		s = fmt.Sprint(x)
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}

	if _, err := semver.NewVersion(s); err != nil {
		if logger != nil {
			logger.Debug("skipping invalid version for sw_version", "version", s)
		}
		return ""
	}
	return s
}

// hostOf returns the host[:port] of rawURL, or rawURL itself when it has none.
func hostOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return rawURL
	}
	return u.Host
}
