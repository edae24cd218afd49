// internal/scoring/pattern.go
package scoring

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"verification-workers/internal/common/logger"
	"verification-workers/internal/scoring/applicant"
	"verification-workers/internal/scoring/rubric"
)

// TextScorer evaluates the raw verification report text against the rubric
// with per-item regular expressions. It is the fallback strategy for drafts
// that were never mapped into structured fields, so every pattern errs on
// the side of recognizing how field officers actually phrase findings.
type TextScorer struct {
	logger logger.Logger
}

func NewTextScorer(log logger.Logger) *TextScorer {
	return &TextScorer{
		logger: log.WithFields(map[string]interface{}{"scorer": "pattern"}),
	}
}

func (s *TextScorer) Name() string { return "pattern" }

// itemPatterns maps each rubric item to the expressions that count as
// evidence of it in report prose. Compiled once at package init.
var itemPatterns = map[string]*regexp.Regexp{
	rubric.ItemDateOfBirth:      reI(`date of birth|\bdob\b|born (on|in)`),
	rubric.ItemSelfEducation:    reI(`(applicant|borrower).{0,40}(educat|qualif|graduate|diploma|degree)|education(al)? qualification`),
	rubric.ItemSpouseName:       reI(`(spouse|wife|husband).{0,30}name|name of (spouse|wife|husband)`),
	rubric.ItemSpouseEducation:  reI(`(spouse|wife|husband).{0,40}(educat|qualif|graduate|degree)`),
	rubric.ItemDependents:       reI(`\bdependent`),
	rubric.ItemYearsAtResidence: reI(`(residing|staying|living|at (the )?residence).{0,30}(year|month)|years? at (current )?(residence|address)`),
	rubric.ItemContactVerified:  reI(`contact (number|no\.?)|mobile (number|no\.?)|phone (number|no\.?)|\btelephone\b`),
	rubric.ItemResidenceOwned:   reI(`(residence|house|home|flat).{0,20}(self.?owned|owned)|own(s|ed)? (the )?(residence|house|home|flat)|self.?owned (residence|house|home|flat)`),
	rubric.ItemRentDocumented:   reI(`(monthly )?rent (of|is|paid|amount)|rented (residence|house|home|flat|accommodation)|paying rent`),
	// Ownership proof only counts alongside the owned residence pattern.
	rubric.ItemOwnershipDocumented: reI(`ownership (proof|document|deed)|(sale|title) deed|property (papers|documents)`),

	rubric.ItemBusinessName:     reI(`(business|firm|shop|concern|enterprise).{0,20}name|name of (the )?(business|firm|shop|concern)|(m/s|m\.s\.)\s+\S`),
	rubric.ItemBusinessAddress:  reI(`(business|firm|shop|office).{0,20}(address|premises|located|situated)`),
	rubric.ItemNatureOfBusiness: reI(`nature of (the )?business|line of business|engaged in|deals? in|business of`),
	rubric.ItemYearsInBusiness:  reI(`(in (this |the )?business|established|running).{0,30}(year|since)|years? (in|of) business|vintage`),
	rubric.ItemOwnershipType:    reI(`proprietor|partnership|private limited|pvt\.? ltd|\bllp\b|sole owner`),
	rubric.ItemEmployeeCount:    reI(`employee|workers?\b|staff|labour|labor`),
	rubric.ItemMonthlySales:     reI(`monthly (sales|turnover|revenue|income)|sales per month`),
	rubric.ItemMonthlyExpenses:  reI(`monthly expens|expenses per month|monthly (outgo|cost)`),
	rubric.ItemAnnualTurnover:   reI(`annual turnover|yearly turnover|turnover (of|is|around|approx)`),
	rubric.ItemProfitMargin:     reI(`profit margin|margin of|net (profit|margin)`),
	rubric.ItemTaxRegistration:  reI(`\bgst\b|gstin|tax registration|\bvat\b|\bpan\b|udyam|shop act`),
	rubric.ItemSourceOfBusiness: reI(`source of (work|business|orders)|orders? (from|received)|work (from|through)|customer base`),
	rubric.ItemCanServiceEMI:    reI(`(can|able to|capacity to) (service|pay|repay|afford).{0,20}(emi|instal)|surplus.{0,30}emi|emi.{0,30}(serviceable|comfortable|affordable)`),

	rubric.ItemMachinery:            reI(`machin|equipment|plant\b`),
	rubric.ItemRawMaterialSuppliers: reI(`raw material|supplier of (raw )?material`),
	rubric.ItemProductionCapacity:   reI(`production capacity|capacity of|units per (day|month)`),
	rubric.ItemSupplierList:         reI(`supplier list|list of suppliers|purchases? from`),
	rubric.ItemInventoryTurnover:    reI(`inventory|stock (rotation|turnover|level)`),
	rubric.ItemServiceContracts:     reI(`service contract|annual maintenance|\bamc\b|contract with`),
	rubric.ItemClientList:           reI(`client (list|base)|list of clients|major clients|customers? includ`),

	rubric.ItemBankAccount: reI(`bank account|account (with|at|in)|current account|savings account|banks? with`),
	rubric.ItemAvgBalance:  reI(`average (bank )?balance|avg\.? balance|balance maintained`),
	rubric.ItemStatements:  reI(`bank statement|statements? (provided|submitted|verified|enclosed)|passbook`),

	rubric.ItemLoanList:        reI(`loan (list|details|schedule)|list of loans|details of (existing )?loans`),
	rubric.ItemLoanSourceBanks: reI(`loan (from|availed|taken)|borrowed from|financed by`),

	rubric.ItemPurpose:        reI(`purpose of (the )?loan|loan (is )?(for|towards)|end.?use`),
	rubric.ItemAgreementValue: reI(`agreement value|sale agreement|agreement (for|of)|consideration (value|amount)`),
	rubric.ItemWillOccupy:     reI(`(will|shall|intends? to) occupy|self.?occup|own use|occupied by (the )?(applicant|borrower)`),

	rubric.ItemPersonalRef: reI(`personal reference|reference.{0,30}(verified|confirmed|contacted)|neighbou?r.{0,30}(verified|confirmed)`),
	rubric.ItemBusinessRef: reI(`(business|trade|market) (reference|enquir).{0,30}(verified|confirmed|positive|satisfactory)|market (opinion|reputation).{0,20}(good|positive|satisfactory)`),
	rubric.ItemInvoiceRef:  reI(`invoice.{0,30}(verified|confirmed|checked|produced)|bills?.{0,20}(verified|produced)`),
}

// Numeric thresholds get a dedicated extraction pass: the percentage near a
// turnover-credit mention and the tenure near a banking mention. When a
// number cannot be pulled out, presence of the phrasing still counts.
var (
	turnoverCreditedRe = reI(`(\d{1,3})\s*%.{0,40}(credit|rout|bank)|(?:credit|rout).{0,40}?(\d{1,3})\s*%`)
	turnoverPresenceRe = reI(`turnover.{0,40}(credited|routed|through (the )?bank)|(credited|routed).{0,40}(bank|account)`)
	tenureYearsRe      = reI(`(?:bank|account).{0,60}?(\d{1,2}(?:\.\d+)?)\s*years?|(\d{1,2}(?:\.\d+)?)\s*years?.{0,40}(?:bank|account)`)
	tenureMonthsRe     = reI(`(?:bank|account).{0,60}?(\d{1,3})\s*months?|(\d{1,3})\s*months?.{0,40}(?:bank|account)`)
	tenurePresenceRe   = reI(`banking\s*(relation|tenure|since)|long[- ]standing.{0,20}bank`)

	noLoansRe  = reI(`no (existing |other |outstanding )?loans?|free (of|from) (debt|loans?)|no (borrow|liabilit)|debt.?free`)
	hasLoansRe = reI(`(existing|outstanding|running|current) loans?|loan (from|availed|taken|outstanding)|borrowed from|\bemi of\b`)

	goodTrackRe = reI(`(repayment|track|payment).{0,30}(good|regular|excellent|clean|satisfactory)|(good|regular|clean) (repayment|track|payment)`)
	poorTrackRe = reI(`(repayment|track|payment).{0,30}(poor|bad|irregular|default)|(poor|bad|irregular) (repayment|track|payment)|defaulted`)

	rentedRe = reI(`rented (residence|house|home|flat|accommodation)|(residence|house).{0,20}(is )?(on )?rent(ed)?`)
)

func reI(expr string) *regexp.Regexp {
	return regexp.MustCompile(`(?i)` + expr)
}

func (s *TextScorer) Score(_ context.Context, subject Subject) *Result {
	text := subject.Text
	if strings.TrimSpace(text) == "" {
		r := ZeroResult("")
		r.Rationale = "no report text to evaluate"
		return r
	}

	result := NewResult()

	match := func(category, item string) bool {
		re, ok := itemPatterns[item]
		hit := ok && re.MatchString(text)
		result.Matches[category][item] = hit
		return hit
	}

	// personal, with the owned/rented exclusion resolved from the text
	owned := match(rubric.CategoryPersonal, rubric.ItemResidenceOwned)
	rented := !owned && rentedRe.MatchString(text) && itemPatterns[rubric.ItemRentDocumented].MatchString(text)
	result.Matches[rubric.CategoryPersonal][rubric.ItemRentDocumented] = rented
	ownershipDoc := (owned && itemPatterns[rubric.ItemOwnershipDocumented].MatchString(text)) || rented
	result.Matches[rubric.CategoryPersonal][rubric.ItemOwnershipDocumented] = ownershipDoc
	for _, item := range []string{
		rubric.ItemDateOfBirth, rubric.ItemSelfEducation, rubric.ItemSpouseName,
		rubric.ItemSpouseEducation, rubric.ItemDependents, rubric.ItemYearsAtResidence,
		rubric.ItemContactVerified,
	} {
		match(rubric.CategoryPersonal, item)
	}
	result.Scores.Personal = sumMatched(rubric.CategoryPersonal, result.Matches[rubric.CategoryPersonal])

	// business core plus the type-conditional block
	for _, it := range coreBusinessItems() {
		match(rubric.CategoryBusiness, it.Name)
	}
	core := sumItemsCapped(coreBusinessItems(), result.Matches[rubric.CategoryBusiness], rubric.BusinessCoreCap)

	bt := rubric.DetectType(text)
	for _, it := range rubric.ConditionalItems(bt) {
		match(rubric.CategoryBusiness, it.Name)
	}
	conditional := sumItemsCapped(rubric.ConditionalItems(bt), result.Matches[rubric.CategoryBusiness], rubric.ConditionalCap(bt))
	result.Scores.Business = clamp(core+conditional, 0, rubric.CapOf(rubric.CategoryBusiness))

	// banking, with numeric extraction for the threshold items
	match(rubric.CategoryBanking, rubric.ItemBankAccount)
	match(rubric.CategoryBanking, rubric.ItemAvgBalance)
	match(rubric.CategoryBanking, rubric.ItemStatements)
	result.Matches[rubric.CategoryBanking][rubric.ItemTurnoverCredited] = s.turnoverCredited(text)
	result.Matches[rubric.CategoryBanking][rubric.ItemBankingTenure] = s.bankingTenure(text)
	result.Scores.Banking = sumMatched(rubric.CategoryBanking, result.Matches[rubric.CategoryBanking])

	// networth
	result.Matches[rubric.CategoryNetworth][rubric.ItemPropertiesOwned] = reI(`propert(y|ies)|house(s)? owned|plot\b|land (owned|holding)`).MatchString(text)
	result.Matches[rubric.CategoryNetworth][rubric.ItemVehiclesOwned] = reI(`vehicle|car\b|two.?wheeler|truck|tempo`).MatchString(text)
	result.Matches[rubric.CategoryNetworth][rubric.ItemOtherInvestments] = reI(`investment|fixed deposit|\bfd\b|mutual fund|shares\b|\blic\b|gold\b`).MatchString(text)
	result.Matches[rubric.CategoryNetworth][rubric.ItemBusinessPlaceOwned] = reI(`(business|shop|office) (place|premises).{0,20}own|own(s|ed)? (the )?(shop|office|premises|godown)`).MatchString(text)
	result.Scores.Networth = sumMatched(rubric.CategoryNetworth, result.Matches[rubric.CategoryNetworth])
	result.Matches[rubric.CategoryNetworth][rubric.ItemTotalNetworth] = result.Scores.Networth > 0

	// debt, with the tri-state inferred from the text
	tri := s.loanStatus(text)
	dm := result.Matches[rubric.CategoryDebt]
	dm[rubric.ItemLoanStatus] = tri.Known()
	hasLoans := tri == applicant.TriYes
	dm[rubric.ItemLoanList] = hasLoans && itemPatterns[rubric.ItemLoanList].MatchString(text)
	dm[rubric.ItemRepaymentTrack] = hasLoans && (goodTrackRe.MatchString(text) || poorTrackRe.MatchString(text))
	dm[rubric.ItemLoanSourceBanks] = hasLoans && itemPatterns[rubric.ItemLoanSourceBanks].MatchString(text)
	result.Scores.Debt = sumMatched(rubric.CategoryDebt, dm)

	// end use and references
	for _, item := range []string{rubric.ItemPurpose, rubric.ItemAgreementValue, rubric.ItemWillOccupy} {
		match(rubric.CategoryEndUse, item)
	}
	result.Scores.EndUse = sumMatched(rubric.CategoryEndUse, result.Matches[rubric.CategoryEndUse])

	for _, item := range []string{rubric.ItemPersonalRef, rubric.ItemBusinessRef, rubric.ItemInvoiceRef} {
		match(rubric.CategoryReferences, item)
	}
	result.Scores.References = sumMatched(rubric.CategoryReferences, result.Matches[rubric.CategoryReferences])

	for _, name := range rubric.CategoryNames() {
		if result.Scores.Get(name) == 0 {
			result.Warnings = append(result.Warnings, "no evidence found for category: "+name)
		}
	}
	result.Rationale = fmt.Sprintf("pattern evaluation over %d characters of report text", len(text))

	s.logger.Debug("pattern score computed", map[string]interface{}{
		"total":    result.Total(),
		"warnings": len(result.Warnings),
	})

	return result
}

// turnoverCredited looks for an explicit percentage first; phrasing without
// a number falls back to presence.
func (s *TextScorer) turnoverCredited(text string) bool {
	if m := turnoverCreditedRe.FindStringSubmatch(text); m != nil {
		for _, g := range m[1:] {
			if g == "" {
				continue
			}
			if pct, err := strconv.ParseFloat(g, 64); err == nil {
				return pct >= 50
			}
		}
	}
	return turnoverPresenceRe.MatchString(text)
}

// bankingTenure accepts years or months near a banking mention; when no
// duration is extractable, an explicit banking-relationship phrase still
// counts as presence-only evidence.
func (s *TextScorer) bankingTenure(text string) bool {
	if m := tenureYearsRe.FindStringSubmatch(text); m != nil {
		for _, g := range m[1:] {
			if g == "" {
				continue
			}
			if years, err := strconv.ParseFloat(g, 64); err == nil {
				return years*12 >= 12
			}
		}
	}
	if m := tenureMonthsRe.FindStringSubmatch(text); m != nil {
		for _, g := range m[1:] {
			if g == "" {
				continue
			}
			if months, err := strconv.ParseFloat(g, 64); err == nil {
				return months >= 12
			}
		}
	}
	return tenurePresenceRe.MatchString(text)
}

// loanStatus infers the existing-loans tri-state from the text. Explicit
// denial wins over incidental loan mentions; silence stays unknown.
func (s *TextScorer) loanStatus(text string) applicant.TriState {
	if noLoansRe.MatchString(text) {
		return applicant.TriNo
	}
	if hasLoansRe.MatchString(text) {
		return applicant.TriYes
	}
	return applicant.TriUnknown
}
