package fees

import (
	"bytes"
	"testing"

	"github.com/ptgott/housing-society/records"
	"github.com/stretchr/testify/assert"
	"gopkg.in/yaml.v2"
)

func TestRates_Fee(t *testing.T) {
	r := DefaultRates()

	assert.Equal(t, 8200, r.Fee(2, 1, 1))
	assert.Equal(t, 0, r.Fee(0, 0, 0))
	assert.Equal(t, 100, r.Fee(0, 1, 0))
	assert.Equal(t, 12000, r.HouseFee(3))
	assert.Equal(t, 0, r.HouseFee(0))
}

func TestRates_Assess(t *testing.T) {
	testCases := []struct {
		description string
		details     records.HouseholdDetails
		settled     bool
		wantFee     int
		wantStatus  records.PaymentStatus
	}{
		{
			description: "vacant flat",
			details:     records.HouseholdDetails{ResidentName: records.Vacant, OwnerName: "Rao", BHK: 3, Vehicles: 2, Pets: 1, MaintenanceFee: 999, PaymentStatus: records.PaymentUnpaid},
			wantFee:     0,
			wantStatus:  records.PaymentNone,
		},
		{
			description: "vacant flat stays None even when marked paid",
			details:     records.HouseholdDetails{ResidentName: records.Vacant, OwnerName: "Rao", BHK: 3},
			settled:     true,
			wantFee:     0,
			wantStatus:  records.PaymentNone,
		},
		{
			description: "owner occupied skips the BHK charge",
			details:     records.HouseholdDetails{ResidentName: "Rao", OwnerName: "Rao", BHK: 3, Vehicles: 1},
			wantFee:     100,
			wantStatus:  records.PaymentUnpaid,
		},
		{
			description: "tenant pays for the BHK",
			details:     records.HouseholdDetails{ResidentName: "Menon", OwnerName: "Rao", BHK: 2, Vehicles: 1, Pets: 1},
			wantFee:     8200,
			wantStatus:  records.PaymentUnpaid,
		},
		{
			description: "tenant marked as paid",
			details:     records.HouseholdDetails{ResidentName: "Menon", OwnerName: "Rao", BHK: 1},
			settled:     true,
			wantFee:     4000,
			wantStatus:  records.PaymentPaid,
		},
	}
	for _, tc := range testCases {
		t.Run(tc.description, func(t *testing.T) {
			d := tc.details
			DefaultRates().Assess(&d, tc.settled)
			assert.Equal(t, tc.wantFee, d.MaintenanceFee)
			assert.Equal(t, tc.wantStatus, d.PaymentStatus)
		})
	}
}

func TestRates_UnmarshalYAML(t *testing.T) {
	testCases := []struct {
		description   string
		input         string
		want          Rates
		shouldBeError bool
	}{
		{
			description: "all rates",
			input: `bhk: 3500
vehicle: 150
pet: 50`,
			want: Rates{BHK: 3500, Vehicle: 150, Pet: 50},
		},
		{
			description: "missing rates take defaults",
			input:       `vehicle: 0`,
			want:        Rates{BHK: DefaultBHKRate, Vehicle: 0, Pet: DefaultPetRate},
		},
		{
			description:   "not a number",
			input:         `bhk: lots`,
			shouldBeError: true,
		},
		{
			description:   "negative",
			input:         `pet: -5`,
			shouldBeError: true,
		},
		{
			description:   "not a map",
			input:         `[]`,
			shouldBeError: true,
		},
	}
	for _, tc := range testCases {
		t.Run(tc.description, func(t *testing.T) {
			var r Rates
			err := yaml.NewDecoder(bytes.NewBufferString(tc.input)).Decode(&r)
			if (err != nil) != tc.shouldBeError {
				t.Fatalf("expected error status of %v but got %v with error %v", tc.shouldBeError, err != nil, err)
			}
			if err == nil {
				assert.Equal(t, tc.want, r)
			}
		})
	}
}
