package society

import (
	"crypto/subtle"
	"errors"
	"fmt"
	"strings"

	"github.com/ptgott/housing-society/keyedstore"
	"github.com/ptgott/housing-society/records"
	"github.com/rs/zerolog/log"
)

var (
	// ErrFlatExists is returned when adding a flat number that is already
	// in the user or house table.
	ErrFlatExists = errors.New("flat already exists")
	// ErrAdminExists is returned when adding an admin username that is
	// already taken.
	ErrAdminExists = errors.New("admin already exists")
	// ErrBadCredentials covers both unknown users and wrong passwords.
	ErrBadCredentials = errors.New("wrong credentials")
)

// NewFlat is what an admin supplies to register a flat.
type NewFlat struct {
	FlatNo      string
	Password    string
	OwnerName   string
	OwnerNumber string
	BHK         int
}

// ResidentEdit is the admin's edit of a flat's occupancy. An empty
// ResidentName means the flat is vacant; an empty Password keeps the current
// one.
type ResidentEdit struct {
	Password        string
	OwnerName       string
	OwnerNumber     string
	ResidentName    string
	ResidentNumber  string
	EmailAddress    string
	Residents       int
	Vehicles        int
	Pets            int
	BHK             int
	PaymentReceived bool
}

func (e ResidentEdit) validate() error {
	for name, n := range map[string]int{
		"residents": e.Residents,
		"vehicles":  e.Vehicles,
		"pets":      e.Pets,
		"BHK":       e.BHK,
	} {
		if n < 0 {
			return fmt.Errorf("the number of %s can't be negative, got %d", name, n)
		}
	}
	return nil
}

// AddFlat registers a vacant flat in the user and house tables and saves
// both. The flat starts out billed at its structural fee with no payment
// status.
func (t *Tables) AddFlat(f NewFlat) error {
	f.FlatNo = strings.TrimSpace(f.FlatNo)
	if f.FlatNo == "" {
		return errors.New("a flat number is required")
	}
	if f.BHK < 0 {
		return fmt.Errorf("BHK can't be negative, got %d", f.BHK)
	}

	_, errUser := t.Users.Search(f.FlatNo)
	_, errHouse := t.Houses.Search(f.FlatNo)
	if errUser == nil || errHouse == nil {
		return fmt.Errorf("%w: %s", ErrFlatExists, f.FlatNo)
	}

	fee := t.Rates.HouseFee(f.BHK)
	d := records.HouseholdDetails{
		FlatNo:      f.FlatNo,
		OwnerName:   f.OwnerName,
		OwnerNumber: f.OwnerNumber,
		BHK:         f.BHK,
	}
	d.Vacate()
	d.MaintenanceFee = fee

	t.Users.Insert(f.FlatNo, records.UserRecord{Details: d, Password: f.Password})
	t.Houses.Insert(f.FlatNo, records.HouseRecord{
		Status:         records.Available,
		MaintenanceFee: fee,
		BHK:            f.BHK,
	})

	log.Info().Str("flat", f.FlatNo).Int("bhk", f.BHK).Msg("added a flat")
	return t.SaveResidency()
}

// EditResident replaces the occupancy details of a flat, bills it with the
// same occupancy rule as the monthly cycle, updates the house entry and saves
// both tables.
func (t *Tables) EditResident(flat string, e ResidentEdit) error {
	if err := e.validate(); err != nil {
		return err
	}

	resident := strings.TrimSpace(e.ResidentName)
	if resident == "" {
		resident = records.Vacant
	}

	var status records.Status
	err := t.Users.Update(flat, func(u *records.UserRecord) {
		d := records.HouseholdDetails{
			FlatNo:         flat,
			ResidentName:   resident,
			ResidentNumber: e.ResidentNumber,
			EmailAddress:   e.EmailAddress,
			OwnerName:      e.OwnerName,
			OwnerNumber:    e.OwnerNumber,
			Status:         records.Unavailable,
			Residents:      e.Residents,
			Vehicles:       e.Vehicles,
			Pets:           e.Pets,
			BHK:            e.BHK,
		}
		if d.IsVacant() {
			d.Status = records.Available
		}
		t.Rates.Assess(&d, e.PaymentReceived)

		u.Details = d
		if e.Password != "" {
			u.Password = e.Password
		}
		status = d.Status
	})
	if err != nil {
		return err
	}

	t.updateHouse(flat, func(h *records.HouseRecord) {
		h.Status = status
		h.BHK = e.BHK
	})

	log.Info().Str("flat", flat).Str("status", string(status)).Msg("edited a flat")
	return t.SaveResidency()
}

// RemoveResident marks a flat vacant, keeping its owner and BHK, and saves
// the user and house tables.
func (t *Tables) RemoveResident(flat string) error {
	err := t.Users.Update(flat, func(u *records.UserRecord) {
		u.Details.Vacate()
	})
	if err != nil {
		return err
	}

	t.updateHouse(flat, func(h *records.HouseRecord) {
		h.Status = records.Available
	})

	log.Info().Str("flat", flat).Msg("removed the resident of a flat")
	return t.SaveResidency()
}

// updateHouse applies fn to the house entry of flat. A flat without a house
// entry is only logged.
func (t *Tables) updateHouse(flat string, fn func(h *records.HouseRecord)) {
	err := t.Houses.Update(flat, fn)
	if keyedstore.IsNotFound(err) {
		log.Warn().Str("flat", flat).Msg("flat has no house entry")
	}
}

// Details returns a copy of the household details of flat.
func (t *Tables) Details(flat string) (records.HouseholdDetails, error) {
	var d records.HouseholdDetails
	err := t.Users.Update(flat, func(u *records.UserRecord) {
		d = u.Details
	})
	return d, err
}

// AuthenticateResident checks a resident's login, the username being the
// flat number, and returns the flat's details.
func (t *Tables) AuthenticateResident(username, password string) (records.HouseholdDetails, error) {
	var (
		d  records.HouseholdDetails
		ok bool
	)
	err := t.Users.Update(username, func(u *records.UserRecord) {
		ok = passwordsMatch(u.Password, password)
		d = u.Details
	})
	if err != nil || !ok {
		return records.HouseholdDetails{}, ErrBadCredentials
	}
	return d, nil
}

// AuthenticateAdmin checks an admin's login.
func (t *Tables) AuthenticateAdmin(username, password string) error {
	ok := false
	err := t.Admins.Update(username, func(a *records.AdminRecord) {
		ok = passwordsMatch(a.Password, password)
	})
	if err != nil || !ok {
		return ErrBadCredentials
	}
	return nil
}

// AddAdmin registers an admin and saves the admin table.
func (t *Tables) AddAdmin(username, password string) error {
	if username == "" || password == "" {
		return errors.New("must supply a username and password")
	}
	if _, err := t.Admins.Search(username); err == nil {
		return fmt.Errorf("%w: %s", ErrAdminExists, username)
	}

	t.Admins.Insert(username, records.AdminRecord{Password: password})
	return t.Admins.SaveToFile(t.Paths.Admins)
}

func passwordsMatch(stored, given string) bool {
	return subtle.ConstantTimeCompare([]byte(stored), []byte(given)) == 1
}

// Resident is one row of the residents listing.
type Resident struct {
	Username string
	Details  records.HouseholdDetails
}

// Residents lists every user entry in table order, leaving out exclude when
// it is not empty.
func (t *Tables) Residents(exclude string) []Resident {
	var rs []Resident
	t.Users.Each(func(key string, u *records.UserRecord) {
		if exclude != "" && key == exclude {
			return
		}
		rs = append(rs, Resident{Username: key, Details: u.Details})
	})
	return rs
}

// House is one row of the public house listing.
type House struct {
	FlatNo string
	records.HouseRecord
}

// HouseListing lists every house entry in table order.
func (t *Tables) HouseListing() []House {
	pairs := t.Houses.Pairs()
	hs := make([]House, 0, len(pairs))
	for _, p := range pairs {
		hs = append(hs, House{FlatNo: p.Key, HouseRecord: p.Value})
	}
	return hs
}
