// internal/scoring/applicant/mapper.go
package applicant

import (
	"regexp"
	"strconv"
	"strings"
)

// numberRe pulls the numeric token out of currency-formatted strings,
// ignoring prefixes like "Rs." and suffixes like "/-".
var numberRe = regexp.MustCompile(`-?\d[\d,]*(?:\.\d+)?`)

// Map normalizes a raw draft record into canonical applicant Data. Drafts
// come from the report-entry UI as loosely shaped JSON, so every field gets
// a coercion with a defined "absent" fallback; Map never fails, it only
// degrades. A nil draft yields an all-absent snapshot.
func Map(draft map[string]interface{}) *Data {
	if draft == nil {
		draft = map[string]interface{}{}
	}

	p := section(draft, "personal")
	b := section(draft, "business")
	bk := section(draft, "banking")
	nw := section(draft, "networth")
	d := section(draft, "debt")
	eu := section(draft, "endUse")
	r := section(draft, "references")

	data := &Data{
		Personal: Personal{
			DateOfBirth:      str(p, "dateOfBirth"),
			SelfEducation:    str(p, "selfEducation"),
			SpouseName:       str(p, "spouseName"),
			SpouseEducation:  str(p, "spouseEducation"),
			Dependents:       num(p, "dependents"),
			YearsAtResidence: num(p, "yearsAtResidence"),
			ContactNumber:    str(p, "contactNumber"),
			ResidenceStatus:  str(p, "residenceStatus"),
			MonthlyRent:      num(p, "monthlyRent"),
		},
		Business: Business{
			Name:                 str(b, "name"),
			Address:              str(b, "address"),
			Nature:               str(b, "nature"),
			YearsInBusiness:      num(b, "yearsInBusiness"),
			OwnershipType:        str(b, "ownershipType"),
			EmployeeCount:        num(b, "employeeCount"),
			MonthlySales:         num(b, "monthlySales"),
			MonthlyExpenses:      num(b, "monthlyExpenses"),
			AnnualTurnover:       num(b, "annualTurnover"),
			ProfitMargin:         num(b, "profitMargin"),
			TaxRegistration:      str(b, "taxRegistration"),
			SourceOfWork:         str(b, "sourceOfWork"),
			ProposedEMI:          num(b, "proposedEmi"),
			Machinery:            str(b, "machinery"),
			RawMaterialSuppliers: str(b, "rawMaterialSuppliers"),
			ProductionCapacity:   str(b, "productionCapacity"),
			SupplierList:         str(b, "supplierList"),
			InventoryTurnover:    str(b, "inventoryTurnover"),
			ServiceContracts:     str(b, "serviceContracts"),
			ClientList:           str(b, "clientList"),
		},
		Banking: Banking{
			BankName:            str(bk, "bankName"),
			AverageBalance:      num(bk, "averageBalance"),
			TurnoverCreditedPct: num(bk, "turnoverCreditedPct"),
			TenureMonths:        num(bk, "tenureMonths"),
			StatementsProvided:  boolish(bk, "statementsProvided"),
		},
		Networth: Networth{
			PropertiesOwned:    num(nw, "propertiesOwned"),
			VehiclesOwned:      num(nw, "vehiclesOwned"),
			OtherInvestments:   boolish(nw, "otherInvestments"),
			BusinessPlaceOwned: boolish(nw, "businessPlaceOwned"),
		},
		Debt: Debt{
			ExistingLoans:  ParseTriState(d["existingLoans"]),
			LoanList:       boolish(d, "loanListAvailable"),
			RepaymentTrack: ClassifyRepaymentTrack(str(d, "repaymentTrack")),
			LoanSource:     str(d, "loanSource"),
		},
		EndUse: EndUse{
			Purpose:        str(eu, "purpose"),
			AgreementValue: num(eu, "agreementValue"),
			WillOccupy:     boolish(eu, "willOccupy"),
		},
		References: References{
			PersonalVerified: boolish(r, "personalVerified"),
			BusinessVerified: boolish(r, "businessVerified"),
			InvoiceVerified:  boolish(r, "invoiceVerified"),
		},
	}

	data.Personal.ResidenceOwned = ClassifyOwnership(data.Personal.ResidenceStatus)

	// An explicit flag wins; otherwise derive serviceability from monthly
	// surplus when the draft states a proposed EMI.
	data.Business.CanServiceEMI = boolish(b, "canServiceEmi")
	if !data.Business.CanServiceEMI && data.Business.ProposedEMI > 0 {
		surplus := data.Business.MonthlySales - data.Business.MonthlyExpenses
		data.Business.CanServiceEMI = surplus >= data.Business.ProposedEMI
	}

	return data
}

// section returns the nested sub-record if present, otherwise the draft
// itself so flat drafts keep working.
func section(draft map[string]interface{}, key string) map[string]interface{} {
	if raw, ok := draft[key]; ok {
		if m, ok := raw.(map[string]interface{}); ok {
			return m
		}
	}
	return draft
}

// absent sentinels accepted from drafts and free text alike.
func isAbsentToken(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "n/a", "na", "not available":
		return true
	}
	return false
}

func str(m map[string]interface{}, key string) string {
	raw, ok := m[key]
	if !ok {
		return ""
	}
	s, ok := raw.(string)
	if !ok {
		return ""
	}
	s = strings.TrimSpace(s)
	if isAbsentToken(s) {
		return ""
	}
	return s
}

// num coerces a draft value to a float64, extracting the numeric token from
// currency strings ("Rs. 12,500/-" -> 12500). Unparsable input is 0, never
// an error.
func num(m map[string]interface{}, key string) float64 {
	raw, ok := m[key]
	if !ok {
		return 0
	}
	return ParseNumber(raw)
}

// ParseNumber applies the numeric coercion rule to a single raw value.
func ParseNumber(raw interface{}) float64 {
	switch v := raw.(type) {
	case float64:
		return v
	case int:
		return float64(v)
	case int64:
		return float64(v)
	case bool:
		if v {
			return 1
		}
		return 0
	case string:
		if isAbsentToken(v) {
			return 0
		}
		tok := numberRe.FindString(v)
		if tok == "" {
			return 0
		}
		tok = strings.ReplaceAll(tok, ",", "")
		f, err := strconv.ParseFloat(tok, 64)
		if err != nil {
			return 0
		}
		return f
	default:
		return 0
	}
}

// boolish coerces a draft value to a bool: booleans directly, nonzero
// numbers, and non-empty non-absent strings other than negative synonyms.
func boolish(m map[string]interface{}, key string) bool {
	raw, ok := m[key]
	if !ok {
		return false
	}
	return HasValue(raw)
}

// HasValue is the presence test: true for boolean true, nonzero numbers and
// non-empty strings that aren't absence sentinels or negative synonyms.
func HasValue(raw interface{}) bool {
	switch v := raw.(type) {
	case bool:
		return v
	case float64:
		return v != 0
	case int:
		return v != 0
	case int64:
		return v != 0
	case string:
		if isAbsentToken(v) {
			return false
		}
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "no", "none", "nil", "false", "0":
			return false
		}
		return true
	default:
		return false
	}
}

// ClassifyOwnership reports whether a residence description means "owned".
// Everything that doesn't mention ownership is treated as rented.
func ClassifyOwnership(status string) bool {
	s := strings.ToLower(status)
	return strings.Contains(s, "own") || strings.Contains(s, "self")
}

// ParseTriState coerces the existing-loans field. Negative synonyms map to
// an explicit no; absence synonyms map to unknown, never to no. Conflating
// the two would credit undocumented applicants as debt-free.
func ParseTriState(raw interface{}) TriState {
	switch v := raw.(type) {
	case nil:
		return TriUnknown
	case bool:
		if v {
			return TriYes
		}
		return TriNo
	case string:
		s := strings.ToLower(strings.TrimSpace(v))
		switch s {
		case "", "n/a", "na", "not available", "unknown":
			return TriUnknown
		case "no", "none", "nil", "false":
			return TriNo
		}
		return TriYes
	case float64:
		if v == 0 {
			return TriNo
		}
		return TriYes
	case int:
		if v == 0 {
			return TriNo
		}
		return TriYes
	default:
		return TriUnknown
	}
}

// ClassifyRepaymentTrack buckets free-text repayment descriptions into
// "good", "poor" or "" (unknown, excluded from scoring).
func ClassifyRepaymentTrack(track string) string {
	s := strings.ToLower(track)
	// "irregular" contains "regular", so negatives go first.
	for _, kw := range []string{"poor", "bad", "irregular", "default"} {
		if strings.Contains(s, kw) {
			return "poor"
		}
	}
	for _, kw := range []string{"good", "excellent", "regular", "clean"} {
		if strings.Contains(s, kw) {
			return "good"
		}
	}
	return ""
}
