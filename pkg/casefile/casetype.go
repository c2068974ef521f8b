package casefile

import "strings"

const (
	CaseTypeDivorce    = "divorce"
	CaseTypeRentalLoan = "rental_loan"
	CaseTypeGeneral    = "general"

	NatureCivil    = "civil"
	NatureCriminal = "criminal"
)

// Choice is a selectable option rendered by the client as a button.
type Choice struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

var CaseTypeChoices = []Choice{
	{Value: CaseTypeDivorce, Label: "Divorce"},
	{Value: CaseTypeRentalLoan, Label: "Property / Rental / Loan"},
}

var NatureChoices = []Choice{
	{Value: NatureCivil, Label: "Civil"},
	{Value: NatureCriminal, Label: "Criminal"},
}

// Languages accepted for replies; "auto" leaves the choice to the model.
var Languages = map[string]string{
	"auto": "",
	"en":   "English",
	"hi":   "Hindi",
	"bn":   "Bengali",
	"ta":   "Tamil",
}

func IsValidChoice(choices []Choice, value string) bool {
	for _, c := range choices {
		if c.Value == value {
			return true
		}
	}
	return false
}

// IsDivorce matches any case type mentioning divorce, case-insensitively.
func IsDivorce(caseType string) bool {
	return strings.Contains(strings.ToLower(caseType), "divorce")
}

// Label returns the human label for a case type, or the raw value.
func Label(caseType string) string {
	for _, c := range CaseTypeChoices {
		if c.Value == caseType {
			return c.Label
		}
	}
	if caseType == "" {
		return CaseTypeGeneral
	}
	return caseType
}
