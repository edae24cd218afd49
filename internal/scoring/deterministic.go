// internal/scoring/deterministic.go
package scoring

import (
	"context"
	"fmt"

	"verification-workers/internal/common/logger"
	"verification-workers/internal/scoring/applicant"
	"verification-workers/internal/scoring/rubric"
)

// RuleScorer evaluates the mapped applicant record field by field against
// the rubric. It is the default strategy: fully deterministic, no external
// calls, same input always produces the same breakdown.
type RuleScorer struct {
	logger logger.Logger
}

func NewRuleScorer(log logger.Logger) *RuleScorer {
	return &RuleScorer{
		logger: log.WithFields(map[string]interface{}{"scorer": "deterministic"}),
	}
}

func (s *RuleScorer) Name() string { return "deterministic" }

func (s *RuleScorer) Score(_ context.Context, subject Subject) *Result {
	data := subject.Applicant
	if data == nil {
		data = applicant.Map(nil)
	}

	result := NewResult()

	result.Scores.Personal = s.scorePersonal(data, result.Matches[rubric.CategoryPersonal])
	result.Scores.Business = s.scoreBusiness(data, result.Matches[rubric.CategoryBusiness])
	result.Scores.Banking = s.scoreBanking(data, result.Matches[rubric.CategoryBanking])
	result.Scores.Networth = s.scoreNetworth(data, result.Matches[rubric.CategoryNetworth])
	result.Scores.Debt = s.scoreDebt(data, result.Matches[rubric.CategoryDebt])
	result.Scores.EndUse = s.scoreEndUse(data, result.Matches[rubric.CategoryEndUse])
	result.Scores.References = s.scoreReferences(data, result.Matches[rubric.CategoryReferences])

	for _, name := range rubric.CategoryNames() {
		if result.Scores.Get(name) == 0 {
			result.Warnings = append(result.Warnings, "no evidence found for category: "+name)
		}
	}

	matched := 0
	for _, mm := range result.Matches {
		for _, ok := range mm {
			if ok {
				matched++
			}
		}
	}
	result.Rationale = fmt.Sprintf("field evaluation matched %d rubric items", matched)

	s.logger.Debug("deterministic score computed", map[string]interface{}{
		"total":        result.Total(),
		"matchedItems": matched,
		"warnings":     len(result.Warnings),
	})

	return result
}

func (s *RuleScorer) scorePersonal(d *applicant.Data, matches MatchMap) float64 {
	p := d.Personal

	matches[rubric.ItemDateOfBirth] = p.DateOfBirth != ""
	matches[rubric.ItemSelfEducation] = p.SelfEducation != ""
	matches[rubric.ItemSpouseName] = p.SpouseName != ""
	matches[rubric.ItemSpouseEducation] = p.SpouseEducation != ""
	matches[rubric.ItemDependents] = p.Dependents > 0
	matches[rubric.ItemYearsAtResidence] = p.YearsAtResidence > 0
	matches[rubric.ItemContactVerified] = p.ContactNumber != ""

	// An applicant either owns the residence or rents it, never both as base
	// items. The flat ownership-documented credit applies on either branch
	// once the status is evidenced.
	matches[rubric.ItemResidenceOwned] = p.ResidenceOwned
	matches[rubric.ItemRentDocumented] = !p.ResidenceOwned && p.MonthlyRent > 0
	matches[rubric.ItemOwnershipDocumented] = (p.ResidenceOwned && p.ResidenceStatus != "") ||
		(!p.ResidenceOwned && p.MonthlyRent > 0)

	return sumMatched(rubric.CategoryPersonal, matches)
}

func (s *RuleScorer) scoreBusiness(d *applicant.Data, matches MatchMap) float64 {
	b := d.Business

	matches[rubric.ItemBusinessName] = b.Name != ""
	matches[rubric.ItemBusinessAddress] = b.Address != ""
	matches[rubric.ItemNatureOfBusiness] = b.Nature != ""
	matches[rubric.ItemYearsInBusiness] = b.YearsInBusiness > 0
	matches[rubric.ItemOwnershipType] = b.OwnershipType != ""
	matches[rubric.ItemEmployeeCount] = b.EmployeeCount > 0
	matches[rubric.ItemMonthlySales] = b.MonthlySales > 0
	matches[rubric.ItemMonthlyExpenses] = b.MonthlyExpenses > 0
	matches[rubric.ItemAnnualTurnover] = b.AnnualTurnover > 0
	matches[rubric.ItemProfitMargin] = b.ProfitMargin > 0
	matches[rubric.ItemTaxRegistration] = b.TaxRegistration != ""
	matches[rubric.ItemSourceOfBusiness] = b.SourceOfWork != ""
	matches[rubric.ItemCanServiceEMI] = b.CanServiceEMI

	core := sumItemsCapped(coreBusinessItems(), matches, rubric.BusinessCoreCap)

	bt := rubric.DetectType(b.Nature)
	evidence := map[string]string{
		rubric.ItemMachinery:            b.Machinery,
		rubric.ItemRawMaterialSuppliers: b.RawMaterialSuppliers,
		rubric.ItemProductionCapacity:   b.ProductionCapacity,
		rubric.ItemSupplierList:         b.SupplierList,
		rubric.ItemInventoryTurnover:    b.InventoryTurnover,
		rubric.ItemServiceContracts:     b.ServiceContracts,
		rubric.ItemClientList:           b.ClientList,
	}
	for _, it := range rubric.ConditionalItems(bt) {
		matches[it.Name] = evidence[it.Name] != ""
	}
	conditional := sumItemsCapped(rubric.ConditionalItems(bt), matches, rubric.ConditionalCap(bt))

	return clamp(core+conditional, 0, rubric.CapOf(rubric.CategoryBusiness))
}

func (s *RuleScorer) scoreBanking(d *applicant.Data, matches MatchMap) float64 {
	bk := d.Banking

	matches[rubric.ItemBankAccount] = bk.BankName != ""
	matches[rubric.ItemAvgBalance] = bk.AverageBalance > 0
	matches[rubric.ItemTurnoverCredited] = bk.TurnoverCreditedPct >= 50
	matches[rubric.ItemBankingTenure] = bk.TenureMonths >= 12
	matches[rubric.ItemStatements] = bk.StatementsProvided

	return sumMatched(rubric.CategoryBanking, matches)
}

func (s *RuleScorer) scoreNetworth(d *applicant.Data, matches MatchMap) float64 {
	nw := d.Networth

	matches[rubric.ItemPropertiesOwned] = nw.PropertiesOwned > 0
	matches[rubric.ItemVehiclesOwned] = nw.VehiclesOwned > 0
	matches[rubric.ItemOtherInvestments] = nw.OtherInvestments
	matches[rubric.ItemBusinessPlaceOwned] = nw.BusinessPlaceOwned

	score := sumMatched(rubric.CategoryNetworth, matches)

	// Display-only flag, carries no points of its own.
	matches[rubric.ItemTotalNetworth] = score > 0

	return score
}

func (s *RuleScorer) scoreDebt(d *applicant.Data, matches MatchMap) float64 {
	dt := d.Debt

	// Loan status counts when it is explicitly documented either way. The
	// remaining items only make sense when loans actually exist, so an
	// unknown status forfeits the whole category rather than guessing.
	matches[rubric.ItemLoanStatus] = dt.ExistingLoans.Known()

	hasLoans := dt.ExistingLoans == applicant.TriYes
	matches[rubric.ItemLoanList] = hasLoans && dt.LoanList
	matches[rubric.ItemRepaymentTrack] = hasLoans && dt.RepaymentTrack != ""
	matches[rubric.ItemLoanSourceBanks] = hasLoans && dt.LoanSource != ""

	return sumMatched(rubric.CategoryDebt, matches)
}

func (s *RuleScorer) scoreEndUse(d *applicant.Data, matches MatchMap) float64 {
	eu := d.EndUse

	matches[rubric.ItemPurpose] = eu.Purpose != ""
	matches[rubric.ItemAgreementValue] = eu.AgreementValue > 0
	matches[rubric.ItemWillOccupy] = eu.WillOccupy

	return sumMatched(rubric.CategoryEndUse, matches)
}

func (s *RuleScorer) scoreReferences(d *applicant.Data, matches MatchMap) float64 {
	r := d.References

	matches[rubric.ItemPersonalRef] = r.PersonalVerified
	matches[rubric.ItemBusinessRef] = r.BusinessVerified
	matches[rubric.ItemInvoiceRef] = r.InvoiceVerified

	return sumMatched(rubric.CategoryReferences, matches)
}

// coreBusinessItems is the business category minus the conditional
// sub-blocks, which are scored under their own cap.
func coreBusinessItems() []rubric.Item {
	cat, _ := rubric.ByName(rubric.CategoryBusiness)
	return cat.Items
}
