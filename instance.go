package gatusbridge

import (
	"errors"
	"net/url"
	"strings"
	"time"

	"github.com/jpalmerr/gatusbridge/internal/flow"
)

const (
	defaultScanInterval = flow.DefaultScanInterval * time.Second
	defaultBadgeWindow  = "24h"
)

// BadgeWindows are the uptime windows Gatus renders badges for.
var BadgeWindows = []string{"1h", "24h", "7d", "30d"}

// Instance is one configured Gatus server.
//
// Instance is immutable after creation via [NewInstance]. Its unique id is
// the slugified URL, so two instances pointing at the same server cannot be
// added to one [Bridge].
type Instance struct {
	url          string
	title        string
	uniqueID     string
	entryID      string
	scanInterval time.Duration
	images       bool
	badgeWindow  string
}

// URL returns the Gatus server URL as configured.
func (i Instance) URL() string {
	return i.url
}

// Title returns the display title. Defaults to the URL.
func (i Instance) Title() string {
	return i.title
}

// UniqueID returns the slugified URL used for deduplication.
func (i Instance) UniqueID() string {
	return i.uniqueID
}

// EntryID returns the id that prefixes every entity unique id of this
// instance. Defaults to [Instance.UniqueID].
func (i Instance) EntryID() string {
	return i.entryID
}

// ScanInterval returns the time between scheduled polls.
func (i Instance) ScanInterval() time.Duration {
	return i.scanInterval
}

// Images reports whether an uptime badge image entity is created per endpoint.
func (i Instance) Images() bool {
	return i.images
}

// BadgeWindow returns the uptime window of badge images, such as "24h".
func (i Instance) BadgeWindow() string {
	return i.badgeWindow
}

// Entry returns the instance as a configuration entry.
func (i Instance) Entry() flow.Entry {
	e := flow.NewEntry(i.url, i.title)
	e.EntryID = i.entryID
	e.Options[flow.ConfScanInterval] = int(i.scanInterval / time.Second)
	return e
}

// NewInstance creates an [Instance] for the Gatus server at rawURL.
//
// rawURL is trimmed and must start with http:// or https://. Options are
// applied in order; see [WithScanInterval], [WithInstanceTitle],
// [WithEntryID], [WithImages] and [WithBadgeWindow].
//
// Example:
//
//	inst, err := gatusbridge.NewInstance("http://gatus.lan:8080",
//	    gatusbridge.WithInstanceTitle("LAN"),
//	    gatusbridge.WithScanInterval(30*time.Second),
//	)
func NewInstance(rawURL string, opts ...InstanceOption) (Instance, error) {
	rawURL = strings.TrimSpace(rawURL)
	if !strings.HasPrefix(rawURL, "http://") && !strings.HasPrefix(rawURL, "https://") {
		return Instance{}, errors.New("URL must start with http:// or https://")
	}
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return Instance{}, errors.New("invalid URL: " + err.Error())
	}
	if parsed.Host == "" {
		return Instance{}, errors.New("URL must include a host")
	}

	cfg := &instanceConfig{
		scanInterval: defaultScanInterval,
		badgeWindow:  defaultBadgeWindow,
	}
	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return Instance{}, err
		}
	}

	uniqueID := flow.UniqueID(rawURL)
	title := cfg.title
	if title == "" {
		title = rawURL
	}
	entryID := cfg.entryID
	if entryID == "" {
		entryID = uniqueID
	}

	return Instance{
		url:          rawURL,
		title:        title,
		uniqueID:     uniqueID,
		entryID:      entryID,
		scanInterval: cfg.scanInterval,
		images:       cfg.images,
		badgeWindow:  cfg.badgeWindow,
	}, nil
}
