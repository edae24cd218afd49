package scoring

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"verification-workers/internal/common/logger"
	"verification-workers/internal/scoring/applicant"
	"verification-workers/internal/scoring/rubric"
)

func newTestRuleScorer(t *testing.T) *RuleScorer {
	return NewRuleScorer(logger.NewTestLogger(t))
}

func TestRuleScorerNilApplicant(t *testing.T) {
	s := newTestRuleScorer(t)

	result := s.Score(context.Background(), Subject{})
	require.NotNil(t, result)
	assert.Equal(t, 0.0, result.Total())
	assert.Len(t, result.Warnings, 7)
	assert.Empty(t, result.ErrorTag)
}

func TestRuleScorerPersonalPartial(t *testing.T) {
	s := newTestRuleScorer(t)
	data := &applicant.Data{}
	data.Personal.SelfEducation = "B.Com"
	data.Personal.SpouseName = "Asha"

	result := s.Score(context.Background(), Subject{Applicant: data})

	assert.Equal(t, 3.0, result.Scores.Personal)
	assert.True(t, result.Matches[rubric.CategoryPersonal][rubric.ItemSelfEducation])
	assert.True(t, result.Matches[rubric.CategoryPersonal][rubric.ItemSpouseName])
	assert.False(t, result.Matches[rubric.CategoryPersonal][rubric.ItemDateOfBirth])
}

func TestRuleScorerResidenceMutualExclusion(t *testing.T) {
	s := newTestRuleScorer(t)

	// Owned residence with a rent figure: the rent item must not count and
	// the ownership credit applies.
	data := &applicant.Data{}
	data.Personal.ResidenceStatus = "Self owned"
	data.Personal.ResidenceOwned = true
	data.Personal.MonthlyRent = 8000

	result := s.Score(context.Background(), Subject{Applicant: data})
	pm := result.Matches[rubric.CategoryPersonal]
	assert.True(t, pm[rubric.ItemResidenceOwned])
	assert.False(t, pm[rubric.ItemRentDocumented])
	assert.True(t, pm[rubric.ItemOwnershipDocumented])
	assert.Equal(t, 3.0, result.Scores.Personal)

	// Rented residence with rent on record: the rent item counts and the
	// documented-status credit still applies.
	data = &applicant.Data{}
	data.Personal.ResidenceStatus = "Rented"
	data.Personal.MonthlyRent = 8000

	result = s.Score(context.Background(), Subject{Applicant: data})
	pm = result.Matches[rubric.CategoryPersonal]
	assert.False(t, pm[rubric.ItemResidenceOwned])
	assert.True(t, pm[rubric.ItemRentDocumented])
	assert.True(t, pm[rubric.ItemOwnershipDocumented])
	assert.Equal(t, 3.0, result.Scores.Personal)

	// Rented with no rent figure: nothing on the residence items.
	data = &applicant.Data{}
	data.Personal.ResidenceStatus = "Rented"

	result = s.Score(context.Background(), Subject{Applicant: data})
	pm = result.Matches[rubric.CategoryPersonal]
	assert.False(t, pm[rubric.ItemRentDocumented])
	assert.False(t, pm[rubric.ItemOwnershipDocumented])
	assert.Equal(t, 0.0, result.Scores.Personal)
}

func TestRuleScorerPersonalCapTruncates(t *testing.T) {
	s := newTestRuleScorer(t)
	data := &applicant.Data{}
	data.Personal = applicant.Personal{
		DateOfBirth:      "1985-04-12",
		SelfEducation:    "B.Com",
		SpouseName:       "Asha",
		SpouseEducation:  "B.A.",
		Dependents:       2,
		YearsAtResidence: 8,
		ContactNumber:    "9876543210",
		ResidenceStatus:  "Owned",
		ResidenceOwned:   true,
	}

	result := s.Score(context.Background(), Subject{Applicant: data})

	// 9 matched items at 1.5 would be 13.5; all ten can never co-match
	// because of the residence exclusion, but the cap still binds the sum.
	assert.LessOrEqual(t, result.Scores.Personal, 15.0)
	assert.Equal(t, 13.5, result.Scores.Personal)
}

func TestRuleScorerBankingThresholds(t *testing.T) {
	tests := []struct {
		name     string
		banking  applicant.Banking
		expected float64
	}{
		{
			name:     "thresholds met",
			banking:  applicant.Banking{BankName: "SBI", TurnoverCreditedPct: 50, TenureMonths: 12},
			expected: 9.0,
		},
		{
			name:     "just below thresholds",
			banking:  applicant.Banking{BankName: "SBI", TurnoverCreditedPct: 49.9, TenureMonths: 11},
			expected: 3.0,
		},
		{
			name: "all five items",
			banking: applicant.Banking{
				BankName: "SBI", AverageBalance: 50000,
				TurnoverCreditedPct: 80, TenureMonths: 48, StatementsProvided: true,
			},
			expected: 15.0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestRuleScorer(t)
			data := &applicant.Data{Banking: tt.banking}
			result := s.Score(context.Background(), Subject{Applicant: data})
			assert.Equal(t, tt.expected, result.Scores.Banking)
		})
	}
}

func TestRuleScorerNetworthThreeOfFour(t *testing.T) {
	s := newTestRuleScorer(t)
	data := &applicant.Data{}
	data.Networth = applicant.Networth{
		PropertiesOwned:  1,
		VehiclesOwned:    2,
		OtherInvestments: true,
	}

	result := s.Score(context.Background(), Subject{Applicant: data})

	assert.Equal(t, 7.5, result.Scores.Networth)
	assert.True(t, result.Matches[rubric.CategoryNetworth][rubric.ItemTotalNetworth])
}

func TestRuleScorerNetworthDerivedFlagStaysFalseAtZero(t *testing.T) {
	s := newTestRuleScorer(t)

	result := s.Score(context.Background(), Subject{Applicant: &applicant.Data{}})

	assert.Equal(t, 0.0, result.Scores.Networth)
	assert.False(t, result.Matches[rubric.CategoryNetworth][rubric.ItemTotalNetworth])
}

func TestRuleScorerDebtGating(t *testing.T) {
	tests := []struct {
		name     string
		debt     applicant.Debt
		expected float64
	}{
		{
			name:     "unknown status forfeits even a good track",
			debt:     applicant.Debt{ExistingLoans: applicant.TriUnknown, RepaymentTrack: "good"},
			expected: 0,
		},
		{
			name:     "explicit no loans scores the status item only",
			debt:     applicant.Debt{ExistingLoans: applicant.TriNo, RepaymentTrack: "good", LoanList: true},
			expected: 2.5,
		},
		{
			name: "loans present unlocks the detail items",
			debt: applicant.Debt{
				ExistingLoans:  applicant.TriYes,
				LoanList:       true,
				RepaymentTrack: "good",
				LoanSource:     "HDFC Bank term loan",
			},
			expected: 10,
		},
		{
			name:     "loans present but undocumented",
			debt:     applicant.Debt{ExistingLoans: applicant.TriYes},
			expected: 2.5,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestRuleScorer(t)
			data := &applicant.Data{Debt: tt.debt}
			result := s.Score(context.Background(), Subject{Applicant: data})
			assert.Equal(t, tt.expected, result.Scores.Debt)
		})
	}
}

func TestRuleScorerBusinessConditionalBlocks(t *testing.T) {
	base := applicant.Business{
		Name:   "Sharma Industries",
		Nature: "Manufacturing of auto components",
	}

	t.Run("manufacturing block counts its items", func(t *testing.T) {
		s := newTestRuleScorer(t)
		b := base
		b.Machinery = "2 CNC machines"
		b.RawMaterialSuppliers = "3 steel suppliers"
		b.SupplierList = "ignored for manufacturing"
		data := &applicant.Data{Business: b}

		result := s.Score(context.Background(), Subject{Applicant: data})

		bm := result.Matches[rubric.CategoryBusiness]
		assert.True(t, bm[rubric.ItemMachinery])
		assert.True(t, bm[rubric.ItemRawMaterialSuppliers])
		// trading evidence is not evaluated for a detected manufacturer
		_, evaluated := bm[rubric.ItemSupplierList]
		assert.False(t, evaluated)
		// name(2) + nature(2) core, machinery(2) + suppliers(2) conditional
		assert.Equal(t, 8.0, result.Scores.Business)
	})

	t.Run("unknown type evaluates every block under the shared cap", func(t *testing.T) {
		s := newTestRuleScorer(t)
		b := applicant.Business{
			Name:                 "Verma Enterprises",
			Machinery:            "lathe",
			RawMaterialSuppliers: "listed",
			SupplierList:         "listed",
			InventoryTurnover:    "monthly",
		}
		data := &applicant.Data{Business: b}

		result := s.Score(context.Background(), Subject{Applicant: data})

		// 4 conditional items matched at 2 each would be 8; the shared
		// conditional cap truncates to 6. Plus name core item.
		assert.Equal(t, 8.0, result.Scores.Business)
	})
}

func TestRuleScorerBusinessTotalCap(t *testing.T) {
	s := newTestRuleScorer(t)
	data := &applicant.Data{Business: applicant.Business{
		Name: "Full Marks Mfg", Address: "Plot 4, MIDC", Nature: "manufacturing",
		YearsInBusiness: 12, OwnershipType: "proprietorship", EmployeeCount: 9,
		MonthlySales: 500000, MonthlyExpenses: 350000, AnnualTurnover: 6000000,
		ProfitMargin: 20, TaxRegistration: "GSTIN-27X", SourceOfWork: "OEM orders",
		CanServiceEMI: true,
		Machinery:     "press shop", RawMaterialSuppliers: "two", ProductionCapacity: "1000 units",
	}}

	result := s.Score(context.Background(), Subject{Applicant: data})

	// 13 core items at 2 each is 26, conditional block adds 6; the
	// category cap holds the sum at 30.
	assert.Equal(t, 30.0, result.Scores.Business)
}

func TestRuleScorerEndUseAndReferences(t *testing.T) {
	s := newTestRuleScorer(t)
	data := &applicant.Data{}
	data.EndUse = applicant.EndUse{Purpose: "Shop purchase", AgreementValue: 2500000, WillOccupy: true}
	data.References = applicant.References{PersonalVerified: true, InvoiceVerified: true}

	result := s.Score(context.Background(), Subject{Applicant: data})

	assert.Equal(t, 10.0, result.Scores.EndUse)
	assert.Equal(t, 7.0, result.Scores.References)
}

func TestRuleScorerDeterministic(t *testing.T) {
	s := newTestRuleScorer(t)
	data := applicant.Map(map[string]interface{}{
		"personal": map[string]interface{}{"selfEducation": "MBA", "contactNumber": "98765"},
		"banking":  map[string]interface{}{"bankName": "Axis", "tenureMonths": 24.0},
	})

	first := s.Score(context.Background(), Subject{Applicant: data})
	second := s.Score(context.Background(), Subject{Applicant: data})

	assert.Equal(t, first.Scores, second.Scores)
	assert.Equal(t, first.Matches, second.Matches)
}

func TestRuleScorerTotalNeverExceedsHundred(t *testing.T) {
	s := newTestRuleScorer(t)
	data := applicant.Map(nil)
	data.Personal = applicant.Personal{
		DateOfBirth: "x", SelfEducation: "x", SpouseName: "x", SpouseEducation: "x",
		Dependents: 1, YearsAtResidence: 1, ContactNumber: "x",
		ResidenceStatus: "owned", ResidenceOwned: true,
	}
	data.Business = applicant.Business{
		Name: "x", Address: "x", Nature: "manufacturing and trading and service",
		YearsInBusiness: 1, OwnershipType: "x", EmployeeCount: 1, MonthlySales: 1,
		MonthlyExpenses: 1, AnnualTurnover: 1, ProfitMargin: 1, TaxRegistration: "x",
		SourceOfWork: "x", CanServiceEMI: true,
		Machinery: "x", RawMaterialSuppliers: "x", ProductionCapacity: "x",
		SupplierList: "x", InventoryTurnover: "x", ServiceContracts: "x", ClientList: "x",
	}
	data.Banking = applicant.Banking{BankName: "x", AverageBalance: 1, TurnoverCreditedPct: 99, TenureMonths: 99, StatementsProvided: true}
	data.Networth = applicant.Networth{PropertiesOwned: 1, VehiclesOwned: 1, OtherInvestments: true, BusinessPlaceOwned: true}
	data.Debt = applicant.Debt{ExistingLoans: applicant.TriYes, LoanList: true, RepaymentTrack: "good", LoanSource: "x"}
	data.EndUse = applicant.EndUse{Purpose: "x", AgreementValue: 1, WillOccupy: true}
	data.References = applicant.References{PersonalVerified: true, BusinessVerified: true, InvoiceVerified: true}

	result := s.Score(context.Background(), Subject{Applicant: data})

	assert.LessOrEqual(t, result.Total(), 100.0)
	assert.Empty(t, result.Warnings)
}
