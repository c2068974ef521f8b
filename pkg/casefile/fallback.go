package casefile

const (
	GenericReply = "I understand your concern. Let me help you with your legal situation."

	genericDocuments = "Based on your case, you may need relevant documents such as contracts, communications, and evidence."

	divorceReply = "I understand you're going through a difficult time with your marriage. I'm here to help you navigate this legal process."

	divorceDocuments = "PLAINTIFF: [To be determined based on your case details]\n" +
		"DEFENDANT: [To be determined based on your case details]\n\n" +
		"REQUIRED DOCUMENTS FOR DEFENDANT:\n" +
		"- Marriage certificate\n" +
		"- Financial statements\n" +
		"- Property documents\n" +
		"- Communication records\n" +
		"- Any relevant evidence"

	DefaultWinProbability = 0.5
)

// Fallback returns the deterministic statement/requirements pair used when
// any upstream call fails.
func Fallback(caseType string) (statement, documents string) {
	if IsDivorce(caseType) {
		return divorceReply, divorceDocuments
	}
	return GenericReply, genericDocuments
}

var defaultDocuments = map[string][]string{
	CaseTypeDivorce: {
		"Marriage certificate",
		"Financial statements",
		"Property documents",
		"Communication records",
		"Any relevant evidence",
	},
	CaseTypeRentalLoan: {
		"Rental or lease agreement",
		"Loan agreement or promissory note",
		"Payment receipts and bank statements",
		"Communication records with the other party",
		"Property ownership or possession documents",
	},
}

// DefaultDocuments is the fixed per-case-type checklist shown when the
// model's requirements cannot be read.
func DefaultDocuments(caseType string) []string {
	key := caseType
	if IsDivorce(caseType) {
		key = CaseTypeDivorce
	}
	if docs, ok := defaultDocuments[key]; ok {
		out := make([]string, len(docs))
		copy(out, docs)
		return out
	}
	return []string{"Contracts", "Communications", "Evidence supporting your account"}
}
