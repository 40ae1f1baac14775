package flow

import (
	"strings"
	"time"

	"github.com/gosimple/slug"
)

// Domain names the integration in entries and device identifiers.
const Domain = "gatus"

// Keys of an entry's Data and Options maps.
const (
	ConfURL          = "url"
	ConfScanInterval = "scan_interval"
)

// Scan interval bounds in seconds.
const (
	DefaultScanInterval = 60
	MinScanInterval     = 10
	MaxScanInterval     = 3600
	ScanIntervalStep    = 10
)

// Entry is one configured Gatus server.
type Entry struct {
	EntryID  string         `json:"entry_id"`
	Domain   string         `json:"domain"`
	Title    string         `json:"title"`
	UniqueID string         `json:"unique_id"`
	Version  int            `json:"version"`
	Data     map[string]any `json:"data"`
	Options  map[string]any `json:"options"`
}

// NewEntry builds the entry for a validated URL.
func NewEntry(url, title string) Entry {
	id := UniqueID(url)
	if title == "" {
		title = url
	}
	return Entry{
		EntryID:  id,
		Domain:   Domain,
		Title:    title,
		UniqueID: id,
		Version:  1,
		Data:     map[string]any{ConfURL: url},
		Options:  map[string]any{},
	}
}

// URL returns the configured server URL.
func (e Entry) URL() string {
	s, _ := e.Data[ConfURL].(string)
	return s
}

// ScanInterval returns the configured interval, or the default when unset.
func (e Entry) ScanInterval() time.Duration {
	if n, ok := toInt(e.Options[ConfScanInterval]); ok && n > 0 {
		return time.Duration(n) * time.Second
	}
	return DefaultScanInterval * time.Second
}

// AsMap returns the entry as a generic map, deep copying Data and Options.
func (e Entry) AsMap() map[string]any {
	return map[string]any{
		"entry_id":  e.EntryID,
		"domain":    e.Domain,
		"title":     e.Title,
		"unique_id": e.UniqueID,
		"version":   e.Version,
		"data":      copyMap(e.Data),
		"options":   copyMap(e.Options),
	}
}

// UniqueID returns the slugified form of url used to detect duplicates.
func UniqueID(url string) string {
	return slug.Make(strings.TrimSpace(url))
}

func copyMap(m map[string]any) map[string]any {
	cp := make(map[string]any, len(m))
	for k, v := range m {
		if nested, ok := v.(map[string]any); ok {
			v = copyMap(nested)
		}
		cp[k] = v
	}
	return cp
}

// toInt accepts the numeric types an options map holds after JSON or YAML
// decoding.
func toInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case float64:
		if n != float64(int(n)) {
			return 0, false
		}
		return int(n), true
	}
	return 0, false
}
