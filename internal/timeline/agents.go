package timeline

import "strings"

// agentGlyph is the leading spinner glyph coding agents put in the terminal
// title while they are working.
const agentGlyph = "✳"

// agentSignatures maps title substrings to agent names, checked in order.
var agentSignatures = []struct {
	substr string
	agent  string
}{
	{"claude", "claude"},
	{"codex", "codex"},
	{"aider", "aider"},
	{"cursor-agent", "cursor"},
	{"copilot", "copilot"},
}

// TagAgents marks terminal-like segments whose titles carry an AI coding
// agent signature. Only AIAssisted and Agent are set; category and weight
// are never touched.
func TagAgents(segments []Segment, terminalApps []string) {
	terms := make(map[string]bool, len(terminalApps))
	for _, a := range terminalApps {
		terms[a] = true
	}

	for i := range segments {
		if !terms[segments[i].App] {
			continue
		}
		if agent, ok := detectAgent(segments[i].Title); ok {
			segments[i].AIAssisted = true
			segments[i].Agent = agent
		}
	}
}

// detectAgent returns the agent name for a terminal title, if any.
func detectAgent(title string) (string, bool) {
	trimmed := strings.TrimSpace(title)
	lower := strings.ToLower(trimmed)

	for _, sig := range agentSignatures {
		if strings.Contains(lower, sig.substr) {
			return sig.agent, true
		}
	}

	// A bare glyph with no recognizable command name still counts.
	if strings.HasPrefix(trimmed, agentGlyph) {
		return "claude", true
	}

	return "", false
}
