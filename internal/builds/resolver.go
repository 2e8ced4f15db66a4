package builds

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/raysh454/dccdev/internal/logging"
	"github.com/raysh454/dccdev/internal/slots"
	"github.com/raysh454/dccdev/internal/webclient"
)

var (
	// ErrBuildStatusNotFound means no status in the PR's feed was posted by
	// the configured build account.
	ErrBuildStatusNotFound = errors.New("build status not found")
	// ErrMalformedBuildLink means a build number could not be taken from the
	// status target URL.
	ErrMalformedBuildLink = errors.New("malformed build link")
	// ErrAPIStatus wraps non-2xx responses from the review API.
	ErrAPIStatus = errors.New("unexpected review API status")
)

// Resolver produces build descriptors for slots.
type Resolver struct {
	cfg    Config
	client webclient.WebClient
	logger logging.Logger
}

// NewResolver returns a Resolver using client for all API traffic.
func NewResolver(cfg Config, client webclient.WebClient, logger logging.Logger) (*Resolver, error) {
	if client == nil {
		return nil, fmt.Errorf("webclient is nil")
	}
	if cfg.APIURL == "" || cfg.Repo == "" {
		return nil, fmt.Errorf("api url and repo are required")
	}
	cfg.APIURL = strings.TrimRight(cfg.APIURL, "/")
	return &Resolver{
		cfg:    cfg,
		client: client,
		logger: logger.With(logging.Field{Key: "component", Value: "builds"}),
	}, nil
}

// ResolveExisting returns the build already recorded on slot. It never
// touches the network.
func (r *Resolver) ResolveExisting(slot slots.Slot) slots.Build {
	return slot.Build()
}

// ResolveNew looks up pr and the build the build account posted for its head.
func (r *Resolver) ResolveNew(ctx context.Context, pr int) (slots.Build, error) {
	var p PullRequest
	if err := r.getJSON(ctx, r.pullsURL()+"/"+strconv.Itoa(pr), &p); err != nil {
		return slots.Build{}, fmt.Errorf("fetching pull request %d: %w", pr, err)
	}

	var statuses []Status
	if err := r.getJSON(ctx, p.StatusesURL, &statuses); err != nil {
		return slots.Build{}, fmt.Errorf("fetching statuses for pull request %d: %w", pr, err)
	}

	st, ok := firstBy(statuses, r.cfg.BuildUser)
	if !ok {
		return slots.Build{}, fmt.Errorf("%w: pull request %d has no status from %q", ErrBuildStatusNotFound, pr, r.cfg.BuildUser)
	}

	buildNumber, err := BuildNumberFromURL(st.TargetURL)
	if err != nil {
		return slots.Build{}, fmt.Errorf("pull request %d: %w", pr, err)
	}

	r.logger.Info("resolved build",
		logging.Field{Key: "pr", Value: pr},
		logging.Field{Key: "commit", Value: p.Head.SHA},
		logging.Field{Key: "build_number", Value: buildNumber})

	return slots.Build{
		PR:          pr,
		PRTitle:     p.Title,
		PRAuthor:    p.User.Login,
		AvatarURL:   p.User.AvatarURL,
		Branch:      p.Head.Ref,
		CommitID:    p.Head.SHA,
		BuildNumber: buildNumber,
	}, nil
}

// ListAvailablePRs returns the repository's open pull requests in API order.
func (r *Resolver) ListAvailablePRs(ctx context.Context) ([]PullRequest, error) {
	var prs []PullRequest
	if err := r.getJSON(ctx, r.pullsURL(), &prs); err != nil {
		return nil, fmt.Errorf("listing pull requests: %w", err)
	}
	return prs, nil
}

// firstBy returns the first status created by login, in feed order. Later
// postings from the same account (retriggers) are not considered.
func firstBy(statuses []Status, login string) (Status, bool) {
	for _, st := range statuses {
		if st.Creator.Login == login {
			return st, true
		}
	}
	return Status{}, false
}

// BuildNumberFromURL returns the second-to-last "/" separated segment of a
// CI link, e.g. ".../job/portal/137/console" -> "137".
func BuildNumberFromURL(target string) (string, error) {
	parts := strings.Split(target, "/")
	if len(parts) < 2 {
		return "", fmt.Errorf("%w: %q", ErrMalformedBuildLink, target)
	}
	return parts[len(parts)-2], nil
}

func (r *Resolver) pullsURL() string {
	return r.cfg.APIURL + "/repos/" + r.cfg.Repo + "/pulls"
}

func (r *Resolver) getJSON(ctx context.Context, url string, v any) error {
	req := &webclient.Request{
		Method:  http.MethodGet,
		URL:     url,
		Headers: http.Header{"Accept": {"application/vnd.github+json"}},
	}
	if r.cfg.Token != "" {
		req.Headers.Set("Authorization", "token "+r.cfg.Token)
	}

	resp, err := r.client.Do(ctx, req)
	if err != nil {
		return err
	}
	if !resp.OK() {
		return fmt.Errorf("%w: GET %s returned %d", ErrAPIStatus, url, resp.StatusCode)
	}
	if err := json.Unmarshal(resp.Body, v); err != nil {
		return fmt.Errorf("decoding %s: %w", url, err)
	}
	return nil
}
