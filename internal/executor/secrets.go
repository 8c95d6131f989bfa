package executor

import (
	"fmt"
	"regexp"

	"github.com/aidf-dev/aidf/internal/aidferr"
	"github.com/aidf-dev/aidf/internal/types"
)

// secretPatterns is the closed set of plaintext-secret signatures PreFlight
// checks for before ever handing context to a provider. This is
// deliberately narrower than the skill loader's broader security scan
// (spec §4.9): it looks for credential material, not prompt-injection text.
var secretPatterns = []*regexp.Regexp{
	regexp.MustCompile(`AKIA[0-9A-Z]{16}`),                  // AWS access key ID
	regexp.MustCompile(`-----BEGIN [A-Z ]*PRIVATE KEY-----`), // PEM private key
	regexp.MustCompile(`(?i)(api[_-]?key|secret|token)\s*[:=]\s*['"][A-Za-z0-9_\-]{20,}['"]`),
	regexp.MustCompile(`sk-[A-Za-z0-9]{20,}`), // OpenAI/Anthropic-style API key
	regexp.MustCompile(`ghp_[A-Za-z0-9]{30,}`), // GitHub personal access token
}

// validateNoSecrets renders every free-text layer of ctx and fails hard if
// any matches a known secret signature, per spec §4.5 PreFlight.
func validateNoSecrets(ctx types.LoadedContext) error {
	texts := []string{
		ctx.Agents.ProjectOverview,
		ctx.Agents.Architecture,
		ctx.Agents.TechnologyStack,
		ctx.Agents.Conventions,
		ctx.Agents.QualityStandards,
		ctx.Role.Identity,
		ctx.Role.OutputFormat,
		ctx.Task.Goal,
		ctx.Task.Requirements,
	}
	if ctx.Plan != nil {
		texts = append(texts, *ctx.Plan)
	}
	for _, s := range ctx.Skills {
		texts = append(texts, s.Body)
	}

	for _, text := range texts {
		for _, pattern := range secretPatterns {
			if pattern.MatchString(text) {
				return aidferr.ConfigInvalid(fmt.Sprintf("context contains what appears to be a plaintext secret (pattern %q)", pattern.String()))
			}
		}
	}
	return nil
}
