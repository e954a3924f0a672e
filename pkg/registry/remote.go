// SPDX-License-Identifier: MPL-2.0

package registry

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/pelletier/go-toml/v2"

	"github.com/skillhub/skillhub/pkg/skillpkg"
)

const (
	// IndexFileName is the TOML index a remote registry serves at its root.
	IndexFileName = "index.toml"

	defaultRemoteTimeout = 30 * time.Second
	defaultMaxRetries    = 5
)

// ErrRemoteNotFound is returned when the remote registry responds 404.
var ErrRemoteNotFound = errors.New("not found on remote registry")

type (
	// RemoteIndex is the decoded index.toml of a remote registry: one entry
	// per published (namespace, name, version).
	RemoteIndex struct {
		Packages []RemoteEntry `toml:"packages"`
	}

	// RemoteEntry describes a single remotely published package version.
	RemoteEntry struct {
		Namespace   string `toml:"namespace"`
		Name        string `toml:"name"`
		Version     string `toml:"version"`
		Kind        string `toml:"kind"`
		Description string `toml:"description,omitempty"`
		License     string `toml:"license,omitempty"`
	}

	// RemoteClient fetches a read-only remote registry over HTTP. Transient
	// failures (timeouts, 429, 5xx) are retried with exponential backoff;
	// other HTTP errors fail immediately.
	RemoteClient struct {
		baseURL    string
		httpClient *http.Client
		maxRetries uint64
	}

	// RemoteOption configures a RemoteClient.
	RemoteOption func(*RemoteClient)
)

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(c *http.Client) RemoteOption {
	return func(rc *RemoteClient) { rc.httpClient = c }
}

// WithMaxRetries sets the maximum number of retries per request.
func WithMaxRetries(n uint64) RemoteOption {
	return func(rc *RemoteClient) { rc.maxRetries = n }
}

// NewRemoteClient creates a client for a remote registry served at baseURL.
func NewRemoteClient(baseURL string, opts ...RemoteOption) *RemoteClient {
	rc := &RemoteClient{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: defaultRemoteTimeout},
		maxRetries: defaultMaxRetries,
	}
	for _, opt := range opts {
		opt(rc)
	}
	return rc
}

// Metadata converts a remote entry to package metadata.
func (e RemoteEntry) Metadata() *skillpkg.Metadata {
	kind := e.Kind
	if kind == "" {
		kind = skillpkg.KindSkill
	}
	return &skillpkg.Metadata{
		Namespace:   e.Namespace,
		Name:        e.Name,
		Version:     e.Version,
		Kind:        kind,
		Description: e.Description,
		License:     e.License,
	}
}

// FetchIndex downloads and decodes the remote registry index.
func (rc *RemoteClient) FetchIndex(ctx context.Context) (*RemoteIndex, error) {
	data, err := rc.get(ctx, rc.baseURL+"/"+IndexFileName)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch remote index: %w", err)
	}

	var index RemoteIndex
	if err := toml.Unmarshal(data, &index); err != nil {
		return nil, fmt.Errorf("failed to decode remote index: %w", err)
	}
	return &index, nil
}

// FetchContent downloads the content blob for one remote package version.
func (rc *RemoteClient) FetchContent(ctx context.Context, id skillpkg.PackageID, version string) ([]byte, error) {
	url := fmt.Sprintf("%s/%s/%s/%s/%s", rc.baseURL, id.Namespace, id.Name, version, skillpkg.ContentFileName)
	data, err := rc.get(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch content for %s@%s: %w", id, version, err)
	}
	return data, nil
}

// get performs a GET with retry. Responses of 429 and 5xx are retried;
// other non-200 statuses are permanent failures.
func (rc *RemoteClient) get(ctx context.Context, url string) ([]byte, error) {
	var body []byte

	operation := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return backoff.Permanent(err)
		}

		resp, err := rc.httpClient.Do(req)
		if err != nil {
			return err
		}
		defer func() { _ = resp.Body.Close() }()

		switch {
		case resp.StatusCode == http.StatusOK:
			body, err = io.ReadAll(resp.Body)
			return err
		case resp.StatusCode == http.StatusNotFound:
			return backoff.Permanent(fmt.Errorf("%w: %s", ErrRemoteNotFound, url))
		case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
			return fmt.Errorf("HTTP %d: %s", resp.StatusCode, url)
		default:
			return backoff.Permanent(fmt.Errorf("HTTP %d: %s", resp.StatusCode, url))
		}
	}

	policy := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewExponentialBackOff(), rc.maxRetries), ctx)
	if err := backoff.Retry(operation, policy); err != nil {
		return nil, err
	}
	return body, nil
}

// Sync copies every remote package version missing from the local store.
// Versions already published locally are skipped; the local write-once
// invariant is never violated. Returns the records that were added.
func Sync(ctx context.Context, store *Store, rc *RemoteClient) ([]*Record, error) {
	index, err := rc.FetchIndex(ctx)
	if err != nil {
		return nil, err
	}

	var added []*Record
	for _, entry := range index.Packages {
		select {
		case <-ctx.Done():
			return added, ctx.Err()
		default:
		}

		meta := entry.Metadata()
		id := meta.ID()
		if !id.IsValid() {
			store.logger.Warn("skipping remote entry with invalid identity", "namespace", entry.Namespace, "name", entry.Name)
			continue
		}

		if existing, err := store.Versions(id); err == nil {
			already := false
			for _, v := range existing {
				if v.String() == entry.Version {
					already = true
					break
				}
			}
			if already {
				continue
			}
		}

		content, err := rc.FetchContent(ctx, id, entry.Version)
		if err != nil {
			return added, err
		}

		rec, err := store.Publish(meta, content)
		if err != nil {
			if errors.Is(err, ErrDuplicateVersion) {
				continue
			}
			return added, err
		}
		added = append(added, rec)
	}

	return added, nil
}
