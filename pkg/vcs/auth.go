// SPDX-License-Identifier: MPL-2.0

package vcs

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/go-git/go-git/v5/plumbing/transport"
	"github.com/go-git/go-git/v5/plumbing/transport/http"
	"github.com/go-git/go-git/v5/plumbing/transport/ssh"
)

// discoverAuth picks credentials matching the transport of url: an SSH key
// from ~/.ssh for SSH remotes, a token from the environment for HTTP(S)
// remotes, and nothing for local paths.
func discoverAuth(url string) transport.AuthMethod {
	switch {
	case isSSHURL(url):
		if auth := trySSHAuth(); auth != nil {
			return auth
		}
	case strings.HasPrefix(url, "https://"), strings.HasPrefix(url, "http://"):
		if auth := tryHTTPAuth(); auth != nil {
			return auth
		}
	}
	return nil
}

func isSSHURL(url string) bool {
	return strings.HasPrefix(url, "ssh://") || strings.HasPrefix(url, "git@")
}

// trySSHAuth loads the first usable private key from the common locations.
func trySSHAuth() transport.AuthMethod {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil
	}

	for _, name := range []string{"id_ed25519", "id_rsa", "id_ecdsa"} {
		keyPath := filepath.Join(homeDir, ".ssh", name)
		if _, err := os.Stat(keyPath); err != nil {
			continue
		}
		if auth, err := ssh.NewPublicKeysFromFile("git", keyPath, ""); err == nil {
			return auth
		}
	}
	return nil
}

// tryHTTPAuth reads a token from GITHUB_TOKEN, GITLAB_TOKEN or GIT_TOKEN.
func tryHTTPAuth() transport.AuthMethod {
	tokens := []struct {
		env      string
		username string
	}{
		{"GITHUB_TOKEN", "x-access-token"},
		{"GITLAB_TOKEN", "gitlab-ci-token"},
		{"GIT_TOKEN", "git"},
	}
	for _, tok := range tokens {
		if token := os.Getenv(tok.env); token != "" {
			return &http.BasicAuth{Username: tok.username, Password: token}
		}
	}
	return nil
}
