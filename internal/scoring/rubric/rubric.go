// internal/scoring/rubric/rubric.go
package rubric

import (
	"fmt"
	"strings"
)

// Category names. These are the keys of every match map a scorer emits and
// the field names the holistic reasoning service is asked to return.
const (
	CategoryPersonal   = "personal"
	CategoryBusiness   = "business"
	CategoryBanking    = "banking"
	CategoryNetworth   = "networth"
	CategoryDebt       = "debt"
	CategoryEndUse     = "endUse"
	CategoryReferences = "references"
)

// Personal items (1.5 each, cap 15). ItemResidenceOwned and ItemRentDocumented
// are mutually exclusive; ItemOwnershipDocumented is the flat bonus awarded
// when residence status is documented either way.
const (
	ItemDateOfBirth         = "dateOfBirthDocumented"
	ItemSelfEducation       = "selfEducationDocumented"
	ItemSpouseName          = "spouseNameDocumented"
	ItemSpouseEducation     = "spouseEducationDocumented"
	ItemDependents          = "dependentsDocumented"
	ItemYearsAtResidence    = "yearsAtResidenceDocumented"
	ItemContactVerified     = "contactNumberVerified"
	ItemResidenceOwned      = "residenceOwned"
	ItemRentDocumented      = "rentDocumented"
	ItemOwnershipDocumented = "ownershipStatusDocumented"
)

// Business core items (2 each, core cap 26). ItemSourceOfBusiness and
// ItemCanServiceEMI are scored here rather than under references/debt so the
// total never double counts them; ItemCanServiceEMI is mirrored into the debt
// match map as a display flag.
const (
	ItemBusinessName     = "businessNameDocumented"
	ItemBusinessAddress  = "businessAddressDocumented"
	ItemNatureOfBusiness = "natureOfBusinessDocumented"
	ItemYearsInBusiness  = "yearsInBusinessDocumented"
	ItemOwnershipType    = "ownershipTypeDocumented"
	ItemEmployeeCount    = "employeeCountDocumented"
	ItemMonthlySales     = "monthlySalesDocumented"
	ItemMonthlyExpenses  = "monthlyExpensesDocumented"
	ItemAnnualTurnover   = "annualTurnoverDocumented"
	ItemProfitMargin     = "profitMarginDocumented"
	ItemTaxRegistration  = "taxRegistrationDocumented"
	ItemSourceOfBusiness = "sourceOfBusinessDocumented"
	ItemCanServiceEMI    = "canServiceNewEMI"
)

// Business conditional items, one block per detected business type.
const (
	ItemMachinery            = "machineryDocumented"
	ItemRawMaterialSuppliers = "rawMaterialSuppliersDocumented"
	ItemProductionCapacity   = "productionCapacityDocumented"
	ItemSupplierList         = "supplierListDocumented"
	ItemInventoryTurnover    = "inventoryTurnoverDocumented"
	ItemServiceContracts     = "serviceContractsDocumented"
	ItemClientList           = "clientListDocumented"
)

// Banking items (3 each, cap 15). Turnover-credited and tenure carry numeric
// thresholds, not mere presence.
const (
	ItemBankAccount      = "bankAccountDocumented"
	ItemAvgBalance       = "averageBalanceDocumented"
	ItemTurnoverCredited = "turnoverCreditedAtLeastHalf"
	ItemBankingTenure    = "bankingTenureAtLeastYear"
	ItemStatements       = "statementsProvided"
)

// Networth items (2.5 each, cap 10). ItemTotalNetworth is derivative: true
// iff properties or vehicles already matched, and it never adds points.
const (
	ItemPropertiesOwned    = "propertiesOwned"
	ItemVehiclesOwned      = "vehiclesOwned"
	ItemOtherInvestments   = "otherInvestments"
	ItemBusinessPlaceOwned = "businessPlaceOwned"
	ItemTotalNetworth      = "totalNetworthAvailable"
)

// Debt items (2.5 each, cap 10). ItemLoanStatus matches iff the loan
// tri-state is known (explicit yes OR no); the other three score only when
// loans are explicitly present.
const (
	ItemLoanStatus      = "loanStatusDocumented"
	ItemLoanList        = "loanListAvailable"
	ItemRepaymentTrack  = "repaymentHistoryQuality"
	ItemLoanSourceBanks = "loansSourceBankNature"
)

// End-use items (cap 10).
const (
	ItemPurpose        = "purposeDocumented"
	ItemAgreementValue = "agreementValueDocumented"
	ItemWillOccupy     = "willOccupyPremises"
)

// Reference items (cap 10).
const (
	ItemPersonalRef = "personalReferenceVerified"
	ItemBusinessRef = "businessReferenceVerified"
	ItemInvoiceRef  = "invoiceVerified"
)

// BusinessType selects which conditional sub-block applies.
type BusinessType string

const (
	TypeManufacturing BusinessType = "manufacturing"
	TypeTrading       BusinessType = "trading"
	TypeService       BusinessType = "service"
	TypeUnknown       BusinessType = ""
)

// Item is a single testable fact with a point weight.
type Item struct {
	Name   string
	Weight float64
}

// Category is a named, capped, ordered set of items. Item weights may sum
// past the cap; scorers truncate, they never scale down.
type Category struct {
	Name  string
	Cap   float64
	Items []Item
}

const (
	PersonalItemWeight = 1.5
	BusinessItemWeight = 2.0
	BankingItemWeight  = 3.0
	NetworthItemWeight = 2.5
	DebtItemWeight     = 2.5

	BusinessCoreCap        = 26.0
	BusinessConditionalCap = 6.0

	// TotalCap is the structural upper bound on an aggregated score.
	TotalCap = 100.0
)

var categories = []Category{
	{
		Name: CategoryPersonal,
		Cap:  15,
		Items: []Item{
			{ItemDateOfBirth, PersonalItemWeight},
			{ItemSelfEducation, PersonalItemWeight},
			{ItemSpouseName, PersonalItemWeight},
			{ItemSpouseEducation, PersonalItemWeight},
			{ItemDependents, PersonalItemWeight},
			{ItemYearsAtResidence, PersonalItemWeight},
			{ItemContactVerified, PersonalItemWeight},
			{ItemResidenceOwned, PersonalItemWeight},
			{ItemRentDocumented, PersonalItemWeight},
			{ItemOwnershipDocumented, PersonalItemWeight},
		},
	},
	{
		Name: CategoryBusiness,
		Cap:  30,
		Items: []Item{
			{ItemBusinessName, BusinessItemWeight},
			{ItemBusinessAddress, BusinessItemWeight},
			{ItemNatureOfBusiness, BusinessItemWeight},
			{ItemYearsInBusiness, BusinessItemWeight},
			{ItemOwnershipType, BusinessItemWeight},
			{ItemEmployeeCount, BusinessItemWeight},
			{ItemMonthlySales, BusinessItemWeight},
			{ItemMonthlyExpenses, BusinessItemWeight},
			{ItemAnnualTurnover, BusinessItemWeight},
			{ItemProfitMargin, BusinessItemWeight},
			{ItemTaxRegistration, BusinessItemWeight},
			{ItemSourceOfBusiness, BusinessItemWeight},
			{ItemCanServiceEMI, BusinessItemWeight},
		},
	},
	{
		Name: CategoryBanking,
		Cap:  15,
		Items: []Item{
			{ItemBankAccount, BankingItemWeight},
			{ItemAvgBalance, BankingItemWeight},
			{ItemTurnoverCredited, BankingItemWeight},
			{ItemBankingTenure, BankingItemWeight},
			{ItemStatements, BankingItemWeight},
		},
	},
	{
		Name: CategoryNetworth,
		Cap:  10,
		Items: []Item{
			{ItemPropertiesOwned, NetworthItemWeight},
			{ItemVehiclesOwned, NetworthItemWeight},
			{ItemOtherInvestments, NetworthItemWeight},
			{ItemBusinessPlaceOwned, NetworthItemWeight},
			{ItemTotalNetworth, 0}, // derived display flag, no independent points
		},
	},
	{
		Name: CategoryDebt,
		Cap:  10,
		Items: []Item{
			{ItemLoanStatus, DebtItemWeight},
			{ItemLoanList, DebtItemWeight},
			{ItemRepaymentTrack, DebtItemWeight},
			{ItemLoanSourceBanks, DebtItemWeight},
		},
	},
	{
		Name: CategoryEndUse,
		Cap:  10,
		Items: []Item{
			{ItemPurpose, 3},
			{ItemAgreementValue, 3},
			{ItemWillOccupy, 4},
		},
	},
	{
		Name: CategoryReferences,
		Cap:  10,
		Items: []Item{
			{ItemPersonalRef, 4},
			{ItemBusinessRef, 3},
			{ItemInvoiceRef, 3},
		},
	},
}

var typeKeywords = map[BusinessType][]string{
	TypeManufacturing: {"manufactur", "factory", "production", "fabricat", "mill", "workshop"},
	TypeTrading:       {"trad", "wholesale", "retail", "shop", "dealer", "distribut", "merchant"},
	TypeService:       {"service", "consult", "repair", "agency", "contractor", "salon", "transport"},
}

// DetectType classifies a free-text nature-of-business description.
// Manufacturing is checked first so "manufacturing and trading" resolves to
// the block with the larger cap. Unrecognized text stays TypeUnknown.
func DetectType(nature string) BusinessType {
	s := strings.ToLower(nature)
	for _, bt := range []BusinessType{TypeManufacturing, TypeTrading, TypeService} {
		for _, kw := range typeKeywords[bt] {
			if strings.Contains(s, kw) {
				return bt
			}
		}
	}
	return TypeUnknown
}

var conditionalBlocks = map[BusinessType][]Item{
	TypeManufacturing: {
		{ItemMachinery, BusinessItemWeight},
		{ItemRawMaterialSuppliers, BusinessItemWeight},
		{ItemProductionCapacity, BusinessItemWeight},
	},
	TypeTrading: {
		{ItemSupplierList, BusinessItemWeight},
		{ItemInventoryTurnover, BusinessItemWeight},
	},
	TypeService: {
		{ItemServiceContracts, BusinessItemWeight},
		{ItemClientList, BusinessItemWeight},
	},
}

// Table returns the seven scoring categories in report order.
func Table() []Category {
	return categories
}

// CategoryNames returns the seven category names in report order.
func CategoryNames() []string {
	names := make([]string, 0, len(categories))
	for _, c := range categories {
		names = append(names, c.Name)
	}
	return names
}

// ByName looks up a category; ok is false for unknown names.
func ByName(name string) (Category, bool) {
	for _, c := range categories {
		if c.Name == name {
			return c, true
		}
	}
	return Category{}, false
}

// CapOf returns the cap for a category, or 0 for unknown names.
func CapOf(name string) float64 {
	c, ok := ByName(name)
	if !ok {
		return 0
	}
	return c.Cap
}

// ConditionalItems returns the conditional business sub-block for the given
// type. For TypeUnknown it returns all three blocks concatenated: the
// scorers deliberately evaluate every block when the type cannot be
// detected (permissive fallback, flagged for product review).
func ConditionalItems(bt BusinessType) []Item {
	if items, ok := conditionalBlocks[bt]; ok {
		return items
	}
	all := make([]Item, 0, 7)
	all = append(all, conditionalBlocks[TypeManufacturing]...)
	all = append(all, conditionalBlocks[TypeTrading]...)
	all = append(all, conditionalBlocks[TypeService]...)
	return all
}

// ConditionalCap returns the cap on the conditional block's contribution.
// The manufacturing block carries the largest weight sum (6); the unknown
// fallback shares it so evaluating every block can never exceed it.
func ConditionalCap(bt BusinessType) float64 {
	switch bt {
	case TypeTrading, TypeService:
		return 4
	default:
		return BusinessConditionalCap
	}
}

// Validate enforces the structural invariants the scorers assume: category
// caps sum to exactly 100, every item weight is non-negative, and names are
// unique within a category. A violation here is a programming error, the
// only error class in this engine that is allowed to be fatal.
func Validate() error {
	total := 0.0
	for _, c := range categories {
		if c.Cap <= 0 {
			return fmt.Errorf("category %q has non-positive cap %v", c.Name, c.Cap)
		}
		total += c.Cap
		seen := make(map[string]bool, len(c.Items))
		for _, it := range c.Items {
			if it.Weight < 0 {
				return fmt.Errorf("item %q in %q has negative weight %v", it.Name, c.Name, it.Weight)
			}
			if seen[it.Name] {
				return fmt.Errorf("duplicate item %q in category %q", it.Name, c.Name)
			}
			seen[it.Name] = true
		}
	}
	if total != TotalCap {
		return fmt.Errorf("category caps sum to %v, want %v", total, TotalCap)
	}
	for bt, items := range conditionalBlocks {
		sum := 0.0
		for _, it := range items {
			sum += it.Weight
		}
		if sum > BusinessConditionalCap {
			return fmt.Errorf("conditional block %q weighs %v, exceeds cap %v", bt, sum, BusinessConditionalCap)
		}
	}
	return nil
}
