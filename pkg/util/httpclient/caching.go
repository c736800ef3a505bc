// SPDX-License-Identifier: Apache-2.0

package httpclient

import (
	"context"
	"net/http"
	"path/filepath"

	"github.com/gregjones/httpcache"
	"github.com/gregjones/httpcache/diskcache"
	"github.com/peterbourgon/diskv"
	"golang.org/x/oauth2"
)

// NewCachingClient builds an HTTP client backed by a disk-persisted response
// cache under cacheDir, so repeat provisioning runs against an unchanged
// catalog revalidate via HTTP caching semantics instead of re-downloading.
// When accessToken is non-empty, outbound requests carry it as an OAuth2
// bearer token (a GitHub personal access token, typically), letting the
// provisioner reach rate-limited or private resource repositories.
func NewCachingClient(ctx context.Context, cacheDir, accessToken string) *http.Client {
	base := http.DefaultTransport
	if accessToken != "" {
		ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: accessToken})
		base = oauth2.NewClient(ctx, ts).Transport
	}

	flatTransform := func(s string) []string { return []string{} }
	d := diskv.New(diskv.Options{
		BasePath:     filepath.Join(cacheDir, "httpcache"),
		Transform:    flatTransform,
		CacheSizeMax: 1024 * 1024 * 1024,
	})

	cacheTransport := &httpcache.Transport{
		Transport:           base,
		Cache:               diskcache.NewWithDiskv(d),
		MarkCachedResponses: true,
	}
	return cacheTransport.Client()
}
