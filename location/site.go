package location

import (
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/shelfhq/shelf-cli/api"
	"github.com/shelfhq/shelf-cli/cache"
	"github.com/shelfhq/shelf-cli/cookbook"
	"github.com/shelfhq/shelf-cli/errors"
	"github.com/shelfhq/shelf-cli/files"
)

// A Site location serves cookbooks from a plain HTTP index. The index
// answers GET <index>/cookbooks/<name> with a JSON document mapping
// version strings to tarball URLs. No authentication is used.
type Site struct {
	IndexURL string

	http *api.Client
	base *url.URL
}

// NewSite constructs a Site location for the given index endpoint.
func NewSite(indexURL string, httpClient *api.Client) (*Site, error) {
	// A trailing slash keeps relative references under the full index
	// path.
	normalized := indexURL
	if !strings.HasSuffix(normalized, "/") {
		normalized += "/"
	}
	base, err := url.Parse(normalized)
	if err != nil {
		return nil, fmt.Errorf("invalid site index URL %q: %s", indexURL, err.Error())
	}
	return &Site{IndexURL: indexURL, http: httpClient, base: base}, nil
}

// siteIndexEntry is the index's answer for one cookbook.
type siteIndexEntry struct {
	Name     string            `json:"name"`
	Versions map[string]string `json:"versions"`
}

func (s *Site) Fetch(name string, constraint cookbook.Constraint) ([]Candidate, error) {
	endpoint, err := s.base.Parse("cookbooks/" + name)
	if err != nil {
		return nil, err
	}

	var entry siteIndexEntry
	code, err := s.http.GetJSON(endpoint, "", nil, &entry)
	if err != nil {
		return nil, &errors.Error{
			Type:    errors.DownloadFailure,
			Cause:   err,
			Message: "could not query " + s.IndexURL,
		}
	}
	if code == 404 {
		return nil, errNotFound(name, s)
	}
	if code != 200 {
		return nil, &errors.Error{
			Type:    errors.DownloadFailure,
			Message: fmt.Sprintf("index request for %s failed with HTTP %d", name, code),
		}
	}
	if len(entry.Versions) == 0 {
		return nil, errNotFound(name, s)
	}

	var candidates []Candidate
	for raw, downloadURL := range entry.Versions {
		version, err := cookbook.ParseVersion(raw)
		if err != nil {
			continue
		}
		if !constraint.SatisfiedBy(version) {
			continue
		}
		candidates = append(candidates, Candidate{
			Name:    name,
			Version: version,
			URL:     downloadURL,
		})
	}
	if len(candidates) == 0 {
		return nil, errNoSatisfyingVersion(name, constraint, s)
	}

	sortCandidates(candidates)
	return candidates, nil
}

func (s *Site) Install(candidate Candidate, store *cache.Store) (*cookbook.Cookbook, error) {
	key := cache.Key{
		Name:        candidate.Name,
		Version:     candidate.Version.String(),
		Fingerprint: s.Fingerprint(),
	}
	return store.GetOrInstall(key, func(dest string) error {
		endpoint, err := s.base.Parse(candidate.URL)
		if err != nil {
			return err
		}
		pr, pw := io.Pipe()
		// Closing the read side unblocks the writer if extraction
		// fails before the stream is drained.
		defer pr.Close()
		go func() {
			err := s.http.Download(endpoint, pw)
			if err != nil {
				err = &errors.Error{
					Type:    errors.DownloadFailure,
					Cause:   err,
					Message: "could not download " + endpoint.String(),
				}
			}
			pw.CloseWithError(err)
		}()
		return files.ExtractTarGz(pr, dest)
	})
}

func (s *Site) Fingerprint() string {
	return s.Descriptor().Fingerprint()
}

func (s *Site) Descriptor() Descriptor {
	return Descriptor{Type: TypeSite, URL: s.IndexURL}
}

func (s *Site) String() string {
	return s.Descriptor().String()
}
