// Package notify delivers scan findings to downstream webhooks.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/camel-leaked/camel-leaked/internal/git"
	"github.com/camel-leaked/camel-leaked/internal/types"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// EnvWebhook names an extra recipient taken from the environment.
const EnvWebhook = "CAMEL_LEAKED_WEBHOOK"

const (
	SchemaVersion  = "1"
	DefaultTimeout = 10 * time.Second
)

// Envelope is the JSON body posted to every recipient.
type Envelope struct {
	Tool     string          `json:"tool"`
	Version  string          `json:"version"`
	Schema   string          `json:"schema_version"`
	Repo     string          `json:"repo,omitempty"`
	Commit   string          `json:"commit,omitempty"`
	Branch   string          `json:"branch,omitempty"`
	Findings []types.Finding `json:"findings"`
}

// NewEnvelope wraps findings, adding best-effort git metadata for root
// unless root is empty.
func NewEnvelope(root, version string, findings []types.Finding) Envelope {
	if findings == nil {
		findings = []types.Finding{}
	}
	env := Envelope{Tool: "camel-leaked", Version: version, Schema: SchemaVersion, Findings: findings}
	if root != "" {
		env.Repo, env.Commit, env.Branch = git.RepoMetadata(root)
	}
	return env
}

// Recipients merges configured URLs with CAMEL_LEAKED_WEBHOOK, dropping
// blanks and duplicates while keeping order.
func Recipients(urls ...string) []string {
	all := append(append([]string{}, urls...), os.Getenv(EnvWebhook))
	seen := map[string]bool{}
	var out []string
	for _, u := range all {
		u = strings.TrimSpace(u)
		if u == "" || seen[u] {
			continue
		}
		seen[u] = true
		out = append(out, u)
	}
	return out
}

type Notifier struct {
	Client *http.Client
	Token  string
	Log    *zap.Logger
}

func New(token string, log *zap.Logger) *Notifier {
	if log == nil {
		log = zap.NewNop()
	}
	return &Notifier{
		Client: &http.Client{Timeout: DefaultTimeout},
		Token:  token,
		Log:    log,
	}
}

// Send posts env to every recipient. Nothing is sent when there are no
// findings. Failures do not stop delivery to later recipients; they are
// combined into the returned error.
func (n *Notifier) Send(ctx context.Context, recipients []string, env Envelope) error {
	if len(env.Findings) == 0 || len(recipients) == 0 {
		return nil
	}
	body, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("encode envelope: %w", err)
	}
	var errs error
	for _, url := range recipients {
		if err := n.post(ctx, url, body); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("notify %s: %w", url, err))
			continue
		}
		n.Log.Debug("notification delivered", zap.String("url", url), zap.Int("findings", len(env.Findings)))
	}
	return errs
}

func (n *Notifier) post(ctx context.Context, url string, body []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if n.Token != "" {
		req.Header.Set("Authorization", "Bearer "+n.Token)
	}
	resp, err := n.Client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("status %d", resp.StatusCode)
	}
	return nil
}
