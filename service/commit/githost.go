package commit

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/go-github/v66/github"

	"dappstore.GO/core/errs"
)

// GitHost is the versioned document store changes are proposed through.
// WriteFile must reject a stale sha with errs.KindConflict.
type GitHost interface {
	Fork(ctx context.Context, sub Submitter) error
	ReadFile(ctx context.Context, sub Submitter, path string) (content []byte, sha string, err error)
	WriteFile(ctx context.Context, sub Submitter, path string, content []byte, sha, message string) error
}

// GitHub implements GitHost on the GitHub REST API. Every call is made with
// the submitter's own token against their fork of Owner/Repo.
type GitHub struct {
	Owner string
	Repo  string
	// Host is "github.com" or a GitHub Enterprise host.
	Host string
	// BaseURL overrides the API endpoint derived from Host.
	BaseURL    string
	HTTPClient *http.Client
	// ForkWait bounds how long ReadFile waits for a fresh fork to appear.
	ForkWait time.Duration
}

func (g *GitHub) client(sub Submitter) (*github.Client, error) {
	c := github.NewClient(g.HTTPClient).WithAuthToken(sub.AccessToken)
	if g.BaseURL != "" {
		u, err := url.Parse(strings.TrimSuffix(g.BaseURL, "/") + "/")
		if err != nil {
			return nil, err
		}
		c.BaseURL = u
		return c, nil
	}
	host := g.Host
	if host == "" || host == DefaultHost {
		return c, nil
	}
	base := "https://" + strings.TrimSuffix(host, "/")
	return c.WithEnterpriseURLs(base+"/api/v3/", base+"/api/uploads/")
}

// Fork makes sure the submitter has a fork; an existing fork is not an error.
func (g *GitHub) Fork(ctx context.Context, sub Submitter) error {
	c, err := g.client(sub)
	if err != nil {
		return errs.Wrap(errs.KindInternal, "commit.fork", err, "building github client")
	}
	_, _, err = c.Repositories.CreateFork(ctx, g.Owner, g.Repo, &github.RepositoryCreateForkOptions{
		Organization:      sub.Org,
		Name:              g.Repo,
		DefaultBranchOnly: true,
	})
	var accepted *github.AcceptedError
	if err == nil || errors.As(err, &accepted) {
		return nil
	}
	return githubError("commit.fork", err)
}

func (g *GitHub) ReadFile(ctx context.Context, sub Submitter, path string) ([]byte, string, error) {
	c, err := g.client(sub)
	if err != nil {
		return nil, "", errs.Wrap(errs.KindInternal, "commit.read", err, "building github client")
	}
	deadline := time.Now().Add(g.ForkWait)
	for {
		file, _, _, err := c.Repositories.GetContents(ctx, sub.ForkOwner(), g.Repo, path, nil)
		if err == nil {
			if file == nil {
				return nil, "", errs.E(errs.KindNotFound, "commit.read", "%s is a directory", path)
			}
			content, err := file.GetContent()
			if err != nil {
				return nil, "", errs.Wrap(errs.KindUpstream, "commit.read", err, "decoding %s", path)
			}
			return []byte(content), file.GetSHA(), nil
		}
		e := githubError("commit.read", err)
		// forks are created asynchronously
		if errs.KindOf(e) != errs.KindNotFound || time.Now().After(deadline) {
			return nil, "", e
		}
		select {
		case <-ctx.Done():
			return nil, "", errs.Wrap(errs.KindUpstream, "commit.read", ctx.Err(), "waiting for fork")
		case <-time.After(time.Second):
		}
	}
}

func (g *GitHub) WriteFile(ctx context.Context, sub Submitter, path string, content []byte, sha, message string) error {
	c, err := g.client(sub)
	if err != nil {
		return errs.Wrap(errs.KindInternal, "commit.write", err, "building github client")
	}
	_, _, err = c.Repositories.UpdateFile(ctx, sub.ForkOwner(), g.Repo, path, &github.RepositoryContentFileOptions{
		Message: github.String(message),
		Content: content,
		SHA:     github.String(sha),
		Committer: &github.CommitAuthor{
			Name:  github.String(sub.Name),
			Email: github.String(sub.Email),
		},
	})
	if err != nil {
		return githubError("commit.write", err)
	}
	return nil
}

// Identify resolves the account behind token. Accounts without a public
// email get their no-reply address.
func (g *GitHub) Identify(ctx context.Context, token string) (Submitter, error) {
	c, err := g.client(Submitter{AccessToken: token})
	if err != nil {
		return Submitter{}, errs.Wrap(errs.KindInternal, "commit.identify", err, "building github client")
	}
	u, _, err := c.Users.Get(ctx, "")
	if err != nil {
		return Submitter{}, githubError("commit.identify", err)
	}
	sub := Submitter{
		ID:          u.GetLogin(),
		Name:        u.GetName(),
		Email:       u.GetEmail(),
		AccessToken: token,
	}
	if sub.Name == "" {
		sub.Name = sub.ID
	}
	if sub.Email == "" {
		sub.Email = fmt.Sprintf("%d+%s@users.noreply.%s", u.GetID(), sub.ID, hostOr(g.Host))
	}
	return sub, nil
}

func hostOr(host string) string {
	if host == "" {
		return DefaultHost
	}
	return host
}

// githubError maps GitHub API failures onto the error kinds.
func githubError(op string, err error) error {
	var resp *github.ErrorResponse
	if !errors.As(err, &resp) || resp.Response == nil {
		return errs.Wrap(errs.KindUpstream, op, err, "github unavailable")
	}
	switch code := resp.Response.StatusCode; {
	case code == http.StatusConflict || code == http.StatusUnprocessableEntity:
		return errs.Wrap(errs.KindConflict, op, err, "file changed since it was read, re-read and retry")
	case code == http.StatusUnauthorized || code == http.StatusForbidden:
		return errs.Wrap(errs.KindAuthorization, op, err, "github rejected the access token")
	case code == http.StatusNotFound:
		return errs.Wrap(errs.KindNotFound, op, err, "not found on github")
	default:
		return errs.Wrap(errs.KindUpstream, op, err, "github returned %d", code)
	}
}

var _ GitHost = (*GitHub)(nil)
