package generation

import (
	"fmt"
	"strings"
)

// promptTemplate frames the tailoring request. The first slot is the master
// resume LaTeX source, the second is the captured job description.
const promptTemplate = `You are an expert technical resume strategist and LaTeX specialist.

INPUT DATA:
1. MASTER TEMPLATE (LaTeX):
%s

2. TARGET JOB DESCRIPTION:
%s

YOUR MISSION:
Tailor the resume content to align with the target role while maintaining 100%% syntactically correct LaTeX structure.

STRICT OUTPUT RULES:
1. Return only the raw LaTeX code. No markdown blocks. No explanations.
2. Must start with \documentclass.
3. Must end with \end{document}.
4. Escape special LaTeX characters (%%, $, &, #) correctly in the content.`

// BuildPrompt combines the master template with a job description.
func BuildPrompt(masterTemplate, description string) string {
	return fmt.Sprintf(promptTemplate, masterTemplate, description)
}

// StripFences removes the markdown code fences the model sometimes wraps
// its output in, despite being told not to.
func StripFences(s string) string {
	s = strings.ReplaceAll(s, "```latex", "")
	s = strings.ReplaceAll(s, "```", "")
	return strings.TrimSpace(s)
}
