package fees

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/ptgott/housing-society/keyedstore"
	"github.com/ptgott/housing-society/records"
	"github.com/ptgott/housing-society/storage"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// historyPrefix is the key prefix of cycle records in the history database.
const historyPrefix = "cycle/"

// Cycle summarizes one recompute cycle.
type Cycle struct {
	ID       string        `json:"id"`
	At       time.Time     `json:"at"`
	Users    int           `json:"users"`
	Vacant   int           `json:"vacant"`
	Owners   int           `json:"owner_occupied"`
	Tenants  int           `json:"tenant_occupied"`
	Billed   int           `json:"billed"`
	Mirrored int           `json:"houses_mirrored"`
	Duration time.Duration `json:"duration"`
	// Error is set when the cycle could not be persisted.
	Error string `json:"error,omitempty"`
}

// Engine recomputes maintenance fees across the user table and mirrors the
// structural fee onto the house table.
type Engine struct {
	Rates      Rates
	Users      *keyedstore.Store[records.UserRecord]
	Houses     *keyedstore.Store[records.HouseRecord]
	UsersPath  string
	HousesPath string
	// History receives one record per cycle. Optional.
	History storage.KeyValue
	// Metrics is optional.
	Metrics *Metrics
	// Clock defaults to time.Now.
	Clock func() time.Time
}

func (e *Engine) now() time.Time {
	if e.Clock == nil {
		return time.Now()
	}
	return e.Clock()
}

// Check is the scheduled callback. It runs a recompute cycle when the current
// day of the month is the 1st and does nothing on any other day.
func (e *Engine) Check() error {
	now := e.now()
	log.Info().Time("now", now).Msg("maintenance fee update check triggered")

	if now.Day() != 1 {
		e.Metrics.observe(ResultSkipped, Cycle{})
		return nil
	}

	log.Info().Msg("maintenance fee update condition met")
	_, err := e.Recompute(now)
	return err
}

// Recompute runs one cycle unconditionally. Every user entry gets its fee and
// payment status recomputed, the matching house entry (if any) gets its fee
// reset to the structural fee, and then both tables are written to disk.
//
// A write failure is returned and recorded, but the recomputed values stay in
// memory; the next cycle writes them again.
func (e *Engine) Recompute(at time.Time) (Cycle, error) {
	start := time.Now()
	c := Cycle{
		ID: uuid.NewString(),
		At: at,
	}

	var flats []string
	e.Users.Each(func(_ string, u *records.UserRecord) {
		d := &u.Details
		e.Rates.Assess(d, false)

		c.Users++
		c.Billed += d.MaintenanceFee
		switch {
		case d.IsVacant():
			c.Vacant++
		case d.IsOwnerOccupied():
			c.Owners++
		default:
			c.Tenants++
		}
		flats = append(flats, d.FlatNo)
	})

	for _, flat := range flats {
		err := e.Houses.Update(flat, func(h *records.HouseRecord) {
			h.MaintenanceFee = e.Rates.HouseFee(h.BHK)
		})
		if err == nil {
			c.Mirrored++
		} else if !keyedstore.IsNotFound(err) {
			log.Warn().Err(err).Str("flat", flat).Msg("can't mirror the fee onto the house table")
		} else {
			log.Debug().Str("flat", flat).Msg("no house entry to mirror the fee onto")
		}
	}

	err := e.persist()
	c.Duration = time.Since(start)

	var l *zerolog.Event
	result := ResultApplied
	if err != nil {
		c.Error = err.Error()
		result = ResultFailed
		l = log.Error().Err(err)
	} else {
		l = log.Info()
	}
	l.Str("cycle", c.ID).
		Int("users", c.Users).
		Int("vacant", c.Vacant).
		Int("ownerOccupied", c.Owners).
		Int("tenantOccupied", c.Tenants).
		Int("housesMirrored", c.Mirrored).
		Int("billed", c.Billed).
		Dur("duration", c.Duration).
		Msg("maintenance fee recompute cycle finished")

	e.Metrics.observe(result, c)
	e.record(c)

	if err != nil {
		return c, fmt.Errorf("recompute cycle %s could not be saved: %w", c.ID, err)
	}
	return c, nil
}

func (e *Engine) persist() error {
	if err := e.Users.SaveToFile(e.UsersPath); err != nil {
		return err
	}
	if err := e.Houses.SaveToFile(e.HousesPath); err != nil {
		return err
	}
	log.Info().
		Str("users", e.UsersPath).
		Str("houses", e.HousesPath).
		Msg("user and house tables saved to file")
	return nil
}

// record stores c in the history database. Failures are only logged, the
// history is informational.
func (e *Engine) record(c Cycle) {
	if e.History == nil {
		return
	}

	v, err := json.Marshal(c)
	if err != nil {
		log.Error().Err(err).Msg("can't encode the recompute cycle")
		return
	}

	err = e.History.Put(storage.KVEntry{Key: cycleKey(c), Value: v})
	if errors.Is(err, storage.ErrNoOp) {
		return
	}
	if err != nil {
		log.Error().Err(err).Str("cycle", c.ID).Msg("can't record the recompute cycle")
		return
	}

	if err := e.History.Cleanup(); err != nil {
		log.Warn().Err(err).Msg("error cleaning up the history database")
	}
}

func cycleKey(c Cycle) []byte {
	return []byte(fmt.Sprintf("%s%s/%s", historyPrefix, c.At.UTC().Format(time.RFC3339), c.ID))
}

// ReadHistory returns the recorded cycles, oldest first.
func ReadHistory(db storage.KeyValue) ([]Cycle, error) {
	entries, err := db.Scan([]byte(historyPrefix))
	if err != nil {
		return nil, err
	}

	cycles := make([]Cycle, 0, len(entries))
	for _, en := range entries {
		var c Cycle
		if err := json.Unmarshal(en.Value, &c); err != nil {
			return nil, fmt.Errorf("can't decode the history record %s: %v", en.Key, err)
		}
		cycles = append(cycles, c)
	}
	return cycles, nil
}
