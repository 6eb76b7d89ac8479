package process

import (
	"context"
	"fmt"
	"os/exec"
	"regexp"
	"strings"

	"github.com/aretw0/decomp/pkg/ports"
	"golang.org/x/mod/semver"
)

// checkVersion runs the configured probe and rejects runtimes older than MinVersion.
func checkVersion(ctx context.Context, cfg Config) error {
	if len(cfg.VersionCommand) == 0 {
		return nil
	}

	probe := exec.CommandContext(ctx, cfg.VersionCommand[0], cfg.VersionCommand[1:]...)
	probe.Env = cfg.environ()
	probe.Dir = cfg.Dir
	out, err := probe.CombinedOutput()
	if err != nil {
		return &ports.ConfigurationError{
			Reason: fmt.Sprintf("version probe %q failed: %v", strings.Join(cfg.VersionCommand, " "), err),
		}
	}

	found, err := extractVersion(string(out), cfg.VersionPattern)
	if err != nil {
		return &ports.ConfigurationError{Reason: err.Error()}
	}
	if cfg.MinVersion == "" {
		return nil
	}
	required := canonical(cfg.MinVersion)
	if !semver.IsValid(required) {
		return &ports.ConfigurationError{Reason: fmt.Sprintf("invalid min_version %q", cfg.MinVersion)}
	}
	if semver.Compare(found, required) < 0 {
		return &ports.ConfigurationError{
			Reason:  fmt.Sprintf("%s %s or later is required", cfg.language(), strings.TrimPrefix(required, "v")),
			Version: strings.TrimPrefix(found, "v"),
		}
	}
	return nil
}

func extractVersion(output, pattern string) (string, error) {
	if pattern == "" {
		pattern = DefaultVersionPattern
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return "", fmt.Errorf("invalid version_pattern: %w", err)
	}
	m := re.FindStringSubmatch(output)
	if m == nil {
		return "", fmt.Errorf("no version found in %q", strings.TrimSpace(output))
	}
	v := m[0]
	if len(m) > 1 {
		v = m[1]
	}
	v = canonical(v)
	if !semver.IsValid(v) {
		return "", fmt.Errorf("unparsable version %q", v)
	}
	return v, nil
}

func canonical(v string) string {
	v = strings.TrimSpace(v)
	if !strings.HasPrefix(v, "v") {
		v = "v" + v
	}
	return semver.Canonical(v)
}
