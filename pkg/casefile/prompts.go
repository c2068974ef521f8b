package casefile

import (
	"fmt"
	"strings"
)

// DocumentRef is the metadata of an uploaded document that may be quoted in
// prompts. File content is never available here.
type DocumentRef struct {
	Id      string `json:"id"`
	Name    string `json:"name"`
	Summary string `json:"summary,omitempty"`
}

const AssessmentSystemPrompt = "You are an expert litigation assistant. Return strict JSON only."

func StatementPrompt(caseType, statement string, docs []DocumentRef, lang string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "You are a legal assistant. The user has a %s case and said: %q. \n\n", Label(caseType), statement)
	b.WriteString("Provide a helpful, empathetic response in 2-3 sentences that:\n")
	b.WriteString("1. Acknowledges their situation\n")
	b.WriteString("2. Gives practical legal advice\n")
	b.WriteString("3. Suggests next steps\n\n")
	b.WriteString("Keep it conversational and supportive.")
	writeDocs(&b, docs)
	writeLang(&b, lang)
	return b.String()
}

func DocumentsPrompt(caseType, statement string, docs []DocumentRef, lang string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Based on this %s case statement: %q\n\n", Label(caseType), statement)
	b.WriteString("Determine:\n")
	b.WriteString("1. Who is the plaintiff (person filing the case) and who is the defendant (person being sued)\n")
	b.WriteString("2. Generate a specific list of required documents for the defendant in this case\n\n")
	b.WriteString("Format your response as:\n")
	b.WriteString("PLAINTIFF: [name/role]\n")
	b.WriteString("DEFENDANT: [name/role]\n\n")
	b.WriteString("REQUIRED DOCUMENTS FOR DEFENDANT:\n")
	b.WriteString("- [Document 1]\n- [Document 2]\n- [Document 3]\n- etc.\n\n")
	b.WriteString("Be specific to this case and include documents that would help the defendant defend their position.")
	writeDocs(&b, docs)
	writeLang(&b, lang)
	return b.String()
}

func AssessmentPrompt(caseType, statement string, docs []DocumentRef) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Case type: %s.\nStatement: %s\n", Label(caseType), statement)
	writeDocs(&b, docs)
	b.WriteString("\n\nReturn JSON with exactly these keys: ")
	b.WriteString("admissibility{status:'admissible'|'inadmissible'|'partial',reasons[]}, ")
	b.WriteString("winProbability(0..1), missingDocuments[], suggestions[]")
	return b.String()
}

func writeDocs(b *strings.Builder, docs []DocumentRef) {
	if len(docs) == 0 {
		return
	}
	b.WriteString("\n\nDocuments:\n")
	for i, d := range docs {
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(b, "Filename: %s\nSummary: %s\n", d.Name, d.Summary)
	}
}

func writeLang(b *strings.Builder, lang string) {
	if name := Languages[lang]; name != "" {
		fmt.Fprintf(b, "\n\nReply in %s.", name)
	}
}
