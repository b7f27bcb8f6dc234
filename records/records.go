package records

// Status tells whether a flat can be let.
type Status string

const (
	Available   Status = "Available"
	Unavailable Status = "Unavailable"
)

// PaymentStatus tracks the maintenance fee of the current cycle.
type PaymentStatus string

const (
	// PaymentNone means nobody lives in the flat and no fee applies.
	PaymentNone   PaymentStatus = "None"
	PaymentUnpaid PaymentStatus = "Unpaid"
	PaymentPaid   PaymentStatus = "Paid"
)

// Vacant is the placeholder used for resident fields of an empty flat.
const Vacant = "NA"

// HouseholdDetails describes a flat and whoever lives in it.
type HouseholdDetails struct {
	FlatNo         string        `json:"flat_no"`
	ResidentName   string        `json:"resident_name"`
	ResidentNumber string        `json:"resident_number"`
	EmailAddress   string        `json:"email_address"`
	OwnerName      string        `json:"owner_name"`
	OwnerNumber    string        `json:"owner_number"`
	Status         Status        `json:"status"`
	Residents      int           `json:"no_of_residents"`
	Vehicles       int           `json:"no_of_vehicles"`
	Pets           int           `json:"no_of_pets"`
	BHK            int           `json:"BHK"`
	MaintenanceFee int           `json:"maintenance_fee"`
	PaymentStatus  PaymentStatus `json:"payment_status"`
}

// IsVacant reports whether nobody lives in the flat.
func (d *HouseholdDetails) IsVacant() bool {
	return d.ResidentName == Vacant
}

// IsOwnerOccupied reports whether the owner lives in the flat.
func (d *HouseholdDetails) IsOwnerOccupied() bool {
	return !d.IsVacant() && d.ResidentName == d.OwnerName
}

// Vacate resets the occupancy fields, keeping the flat number, the owner and
// the BHK.
func (d *HouseholdDetails) Vacate() {
	d.ResidentName = Vacant
	d.ResidentNumber = Vacant
	d.EmailAddress = Vacant
	d.Status = Available
	d.Residents = 0
	d.Vehicles = 0
	d.Pets = 0
	d.MaintenanceFee = 0
	d.PaymentStatus = PaymentNone
}

// UserRecord is the value of the user table, keyed by flat number. The flat
// number doubles as the resident's login name.
type UserRecord struct {
	Details  HouseholdDetails `json:"details"`
	Password string           `json:"password"`
}

// HouseRecord is the value of the house table, keyed by flat number.
type HouseRecord struct {
	Status         Status `json:"status"`
	MaintenanceFee int    `json:"maintenance_fee"`
	BHK            int    `json:"BHK"`
}

// AdminRecord is the value of the admin table, keyed by username.
type AdminRecord struct {
	Password string `json:"password"`
}
