package skill

import (
	"fmt"
	"strings"

	"github.com/aidf-dev/aidf/internal/types"
)

var xmlEscaper = strings.NewReplacer(
	`&`, "&amp;",
	`<`, "&lt;",
	`>`, "&gt;",
	`"`, "&quot;",
)

// RenderPromptBlock renders the given skills into the
// `<available_skills>...</available_skills>` block injected into the
// initial prompt (spec §4.9).
func RenderPromptBlock(skills []types.Skill) string {
	if len(skills) == 0 {
		return ""
	}

	var b strings.Builder
	b.WriteString("<available_skills>\n")
	for _, s := range skills {
		fmt.Fprintf(&b, "<skill name=\"%s\">%s</skill>\n", xmlEscaper.Replace(s.Name), xmlEscaper.Replace(s.Description))
	}
	b.WriteString("</available_skills>")
	return b.String()
}
