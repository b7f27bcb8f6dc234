package fees

import (
	"fmt"
	"strconv"

	"github.com/ptgott/housing-society/records"
)

// Default per-unit rates.
const (
	DefaultBHKRate     = 4000
	DefaultVehicleRate = 100
	DefaultPetRate     = 100
)

// Rates holds the per-unit maintenance charges. They are fixed for the life
// of the process.
type Rates struct {
	BHK     int
	Vehicle int
	Pet     int
}

// DefaultRates returns the rates used when the config doesn't set any.
func DefaultRates() Rates {
	return Rates{
		BHK:     DefaultBHKRate,
		Vehicle: DefaultVehicleRate,
		Pet:     DefaultPetRate,
	}
}

// UnmarshalYAML parses the user-provided fees section. Missing rates take
// their default value.
func (r *Rates) UnmarshalYAML(unmarshal func(interface{}) error) error {
	v := make(map[string]string)
	if err := unmarshal(&v); err != nil {
		return fmt.Errorf("can't parse the fees config: %v", err)
	}

	*r = DefaultRates()
	for name, dst := range map[string]*int{
		"bhk":     &r.BHK,
		"vehicle": &r.Vehicle,
		"pet":     &r.Pet,
	} {
		s, ok := v[name]
		if !ok {
			continue
		}
		n, err := strconv.Atoi(s)
		if err != nil {
			return fmt.Errorf("can't parse the %s rate as an integer: %v", name, err)
		}
		if n < 0 {
			return fmt.Errorf("the %s rate can't be negative, got %d", name, n)
		}
		*dst = n
	}
	return nil
}

// Fee returns bhk*BHK + vehicles*Vehicle + pets*Pet.
func (r Rates) Fee(bhk, vehicles, pets int) int {
	return bhk*r.BHK + vehicles*r.Vehicle + pets*r.Pet
}

// HouseFee is the structural fee of a flat, without any occupancy surcharge.
func (r Rates) HouseFee(bhk int) int {
	return bhk * r.BHK
}

// Assess applies the occupancy rule to d:
//   - a vacant flat owes nothing and has no payment status
//   - an owner living in the flat pays for vehicles and pets only
//   - a tenant also pays for the BHK
//
// Occupied flats are marked Paid when settled is true and Unpaid otherwise.
func (r Rates) Assess(d *records.HouseholdDetails, settled bool) {
	switch {
	case d.IsVacant():
		d.MaintenanceFee = 0
		d.PaymentStatus = records.PaymentNone
		return
	case d.IsOwnerOccupied():
		d.MaintenanceFee = r.Fee(0, d.Vehicles, d.Pets)
	default:
		d.MaintenanceFee = r.Fee(d.BHK, d.Vehicles, d.Pets)
	}

	if settled {
		d.PaymentStatus = records.PaymentPaid
	} else {
		d.PaymentStatus = records.PaymentUnpaid
	}
}
