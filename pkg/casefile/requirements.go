package casefile

import (
	"bufio"
	"strings"
)

// Requirements is the structured reading of a document-requirements answer.
type Requirements struct {
	Plaintiff string   `json:"plaintiff,omitempty"`
	Defendant string   `json:"defendant,omitempty"`
	Documents []string `json:"documents"`
}

const documentsHeader = "REQUIRED DOCUMENTS FOR DEFENDANT:"

// ParseRequirements reads the PLAINTIFF/DEFENDANT/bullet layout requested by
// DocumentsPrompt. Lines outside the layout are ignored. Bracketed
// placeholders such as "[Document 1]" are dropped.
func ParseRequirements(text string) Requirements {
	var req Requirements
	inList := false

	sc := bufio.NewScanner(strings.NewReader(text))
	for sc.Scan() {
		line := strings.TrimSpace(strings.ReplaceAll(sc.Text(), "**", ""))
		if line == "" {
			continue
		}
		upper := strings.ToUpper(line)

		switch {
		case strings.HasPrefix(upper, "PLAINTIFF:"):
			req.Plaintiff = strings.TrimSpace(line[len("PLAINTIFF:"):])
			inList = false
		case strings.HasPrefix(upper, "DEFENDANT:"):
			req.Defendant = strings.TrimSpace(line[len("DEFENDANT:"):])
			inList = false
		case strings.HasPrefix(upper, documentsHeader):
			inList = true
		case inList:
			item, ok := bulletText(line)
			if !ok {
				continue
			}
			if strings.HasPrefix(item, "[") && strings.HasSuffix(item, "]") {
				continue
			}
			if strings.EqualFold(item, "etc.") || strings.EqualFold(item, "etc") {
				continue
			}
			req.Documents = append(req.Documents, item)
		}
	}
	return req
}

func bulletText(line string) (string, bool) {
	for _, p := range []string{"- ", "* ", "• "} {
		if strings.HasPrefix(line, p) {
			return strings.TrimSpace(line[len(p):]), true
		}
	}
	// numbered list: "1. Foo" / "1) Foo"
	i := 0
	for i < len(line) && line[i] >= '0' && line[i] <= '9' {
		i++
	}
	if i > 0 && i+1 < len(line) && (line[i] == '.' || line[i] == ')') {
		return strings.TrimSpace(line[i+1:]), true
	}
	return "", false
}

// PanelDocuments returns the checklist for the document panel: parsed from
// the model's answer, or the fixed list for the case type when nothing
// usable was found.
func PanelDocuments(caseType, requirementsText string) []string {
	if docs := ParseRequirements(requirementsText).Documents; len(docs) > 0 {
		return docs
	}
	return DefaultDocuments(caseType)
}
