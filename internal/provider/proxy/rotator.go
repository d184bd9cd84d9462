// Package proxy implements round-robin selection over the configured proxy
// endpoints. A single Rotator is shared by the API gateway and the image URL
// rewriter so both advance the same counter.
package proxy

import (
	"net/url"
	"sync/atomic"

	"github.com/Digital-Shane/media-resolver/internal/provider"
)

// Rotator owns the process-wide rotation counter.
type Rotator struct {
	prefs provider.Preferences
	index atomic.Uint64
}

// New creates a rotator reading endpoints from prefs. A nil prefs disables
// proxying entirely.
func New(prefs provider.Preferences) *Rotator {
	return &Rotator{prefs: prefs}
}

// Next returns endpoints[index % len] and advances the counter. The counter
// moves on every call, even when no endpoint is configured.
func (r *Rotator) Next() (string, bool) {
	n := r.index.Add(1) - 1
	if r.prefs == nil {
		return "", false
	}
	urls := r.prefs.ProxyURLs()
	if len(urls) == 0 {
		return "", false
	}
	return urls[n%uint64(len(urls))], true
}

// Index reports how many selections have been made.
func (r *Rotator) Index() uint64 {
	return r.index.Load()
}

// Enabled reports whether the user has proxying switched on.
func (r *Rotator) Enabled() bool {
	return r.prefs != nil && r.prefs.ProxyEnabled()
}

// Rewrite routes target through the next proxy when proxying is enabled.
// It is a display-time rewrite, no request is made.
func (r *Rotator) Rewrite(target string) string {
	if target == "" || !r.Enabled() {
		return target
	}
	endpoint, ok := r.Next()
	if !ok {
		return target
	}
	return Destination(endpoint, target)
}

// Destination encodes target as the destination parameter of a proxy request.
// The endpoint is used as configured, path included.
func Destination(endpoint, target string) string {
	return endpoint + "?destination=" + url.QueryEscape(target)
}
