// internal/scoring/applicant/applicant.go
package applicant

// TriState is a three-valued flag for facts where absence of evidence must
// never be conflated with evidence of absence, such as existing loans.
type TriState int

const (
	TriUnknown TriState = iota
	TriYes
	TriNo
)

// Known reports whether the fact is documented either way.
func (t TriState) Known() bool { return t != TriUnknown }

func (t TriState) String() string {
	switch t {
	case TriYes:
		return "yes"
	case TriNo:
		return "no"
	default:
		return "unknown"
	}
}

// Data is the canonical, immutable snapshot of a verification subject.
// Every field is either a concrete typed value or its zero value meaning
// "absent"; Debt.ExistingLoans is the one tri-state exception.
type Data struct {
	Personal   Personal   `json:"personal"`
	Business   Business   `json:"business"`
	Banking    Banking    `json:"banking"`
	Networth   Networth   `json:"networth"`
	Debt       Debt       `json:"debt"`
	EndUse     EndUse     `json:"endUse"`
	References References `json:"references"`
}

type Personal struct {
	DateOfBirth      string  `json:"dateOfBirth"`
	SelfEducation    string  `json:"selfEducation"`
	SpouseName       string  `json:"spouseName"`
	SpouseEducation  string  `json:"spouseEducation"`
	Dependents       float64 `json:"dependents"`
	YearsAtResidence float64 `json:"yearsAtResidence"`
	ContactNumber    string  `json:"contactNumber"`
	// ResidenceStatus is the raw residence description; ResidenceOwned is
	// its classification ("own"/"self"/"owned" substrings, anything else
	// counts as rented).
	ResidenceStatus string  `json:"residenceStatus"`
	ResidenceOwned  bool    `json:"residenceOwned"`
	MonthlyRent     float64 `json:"monthlyRent"`
}

type Business struct {
	Name            string  `json:"name"`
	Address         string  `json:"address"`
	Nature          string  `json:"nature"`
	YearsInBusiness float64 `json:"yearsInBusiness"`
	OwnershipType   string  `json:"ownershipType"`
	EmployeeCount   float64 `json:"employeeCount"`
	MonthlySales    float64 `json:"monthlySales"`
	MonthlyExpenses float64 `json:"monthlyExpenses"`
	AnnualTurnover  float64 `json:"annualTurnover"`
	ProfitMargin    float64 `json:"profitMargin"`
	TaxRegistration string  `json:"taxRegistration"`
	SourceOfWork    string  `json:"sourceOfWork"`
	ProposedEMI     float64 `json:"proposedEmi"`
	CanServiceEMI   bool    `json:"canServiceEmi"`

	// Conditional sub-rubric evidence.
	Machinery            string `json:"machinery"`
	RawMaterialSuppliers string `json:"rawMaterialSuppliers"`
	ProductionCapacity   string `json:"productionCapacity"`
	SupplierList         string `json:"supplierList"`
	InventoryTurnover    string `json:"inventoryTurnover"`
	ServiceContracts     string `json:"serviceContracts"`
	ClientList           string `json:"clientList"`
}

type Banking struct {
	BankName            string  `json:"bankName"`
	AverageBalance      float64 `json:"averageBalance"`
	TurnoverCreditedPct float64 `json:"turnoverCreditedPct"`
	TenureMonths        float64 `json:"tenureMonths"`
	StatementsProvided  bool    `json:"statementsProvided"`
}

type Networth struct {
	PropertiesOwned    float64 `json:"propertiesOwned"`
	VehiclesOwned      float64 `json:"vehiclesOwned"`
	OtherInvestments   bool    `json:"otherInvestments"`
	BusinessPlaceOwned bool    `json:"businessPlaceOwned"`
}

type Debt struct {
	ExistingLoans  TriState `json:"existingLoans"`
	LoanList       bool     `json:"loanListAvailable"`
	RepaymentTrack string   `json:"repaymentTrack"` // "good", "poor" or "" (unknown)
	LoanSource     string   `json:"loanSource"`
}

type EndUse struct {
	Purpose        string  `json:"purpose"`
	AgreementValue float64 `json:"agreementValue"`
	WillOccupy     bool    `json:"willOccupy"`
}

type References struct {
	PersonalVerified bool `json:"personalVerified"`
	BusinessVerified bool `json:"businessVerified"`
	InvoiceVerified  bool `json:"invoiceVerified"`
}
