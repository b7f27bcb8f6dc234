package userconfig

import (
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/docker/go-units"
	"github.com/ptgott/housing-society/fees"
	"github.com/ptgott/housing-society/keyedstore"
	"github.com/ptgott/housing-society/poller"
	"github.com/ptgott/housing-society/storage"

	yaml "gopkg.in/yaml.v2"
)

// DefaultMaxFileSize bounds the size of a table file accepted at startup.
const DefaultMaxFileSize = "16MiB"

// Meta represents all current config options that the application can use,
// i.e., after validation and parsing
type Meta struct {
	Tables   Tables           `yaml:"tables"`
	Fees     *fees.Rates      `yaml:"fees"`
	Schedule *poller.Config   `yaml:"schedule"`
	History  storage.KVConfig `yaml:"history"`
	Metrics  Metrics          `yaml:"metrics"`
}

// Tables contains config options for the three persisted tables
type Tables struct {
	DataDir string
	// Number of buckets in every table
	Size int
	// Largest table file, in bytes, that we're willing to load
	MaxFileSize int64
}

// Metrics configures the Prometheus scrape endpoint. An empty Address
// disables it.
type Metrics struct {
	Address string `yaml:"address"`
}

// UnmarshalYAML parses the user-provided tables section.
func (t *Tables) UnmarshalYAML(unmarshal func(interface{}) error) error {
	v := make(map[string]string)
	if err := unmarshal(&v); err != nil {
		return fmt.Errorf("can't parse the tables config: %v", err)
	}

	t.DataDir = v["dataDir"]

	s, ok := v["size"]
	if !ok {
		s = strconv.Itoa(keyedstore.DefaultSize)
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return fmt.Errorf("can't parse the table size as an integer: %v", err)
	}
	t.Size = n

	m, ok := v["maxFileSize"]
	if !ok {
		m = DefaultMaxFileSize
	}
	b, err := units.RAMInBytes(m)
	if err != nil {
		return fmt.Errorf("can't parse the maximum table file size: %v", err)
	}
	t.MaxFileSize = b

	return nil
}

// CheckAndSetDefaults validates t and either returns a copy of t with default
// settings applied or returns an error due to an invalid configuration
func (t *Tables) CheckAndSetDefaults() (Tables, error) {
	if t.DataDir == "" {
		return Tables{}, errors.New(
			"user-provided config does not include a data directory for the tables",
		)
	}
	c := *t
	if c.Size == 0 {
		c.Size = keyedstore.DefaultSize
	}
	if c.Size < 0 {
		return Tables{}, fmt.Errorf("the table size must be positive, got %d", c.Size)
	}
	if c.MaxFileSize < 0 {
		return Tables{}, fmt.Errorf("the maximum table file size can't be negative, got %d", c.MaxFileSize)
	}
	return c, nil
}

// CheckAndSetDefaults validates m and either returns a copy of m with default
// settings applied or returns an error due to an invalid configuration
func (m *Meta) CheckAndSetDefaults() (Meta, error) {
	c := Meta{
		History: m.History,
		Metrics: m.Metrics,
	}

	t, err := m.Tables.CheckAndSetDefaults()
	if err != nil {
		return Meta{}, err
	}
	c.Tables = t

	r := fees.DefaultRates()
	if m.Fees != nil {
		r = *m.Fees
	}
	c.Fees = &r

	s := poller.Config{Interval: poller.DefaultInterval}
	if m.Schedule != nil {
		s = *m.Schedule
	}
	c.Schedule = &s

	if c.History.StorageDirPath != "" && c.History.KeyTTLDuration == 0 {
		c.History.KeyTTLDuration = storage.DefaultKeyTTL
	}

	return c, nil
}

// Parse generates usable configurations from possibly arbitrary user input.
// An error indicates a problem with parsing. The Reader r can be either JSON
// or YAML.
func Parse(r io.Reader) (*Meta, error) {
	var m Meta
	err := yaml.NewDecoder(r).Decode(&m)
	if err != nil {
		return &Meta{}, fmt.Errorf("can't read the config file as YAML: %v", err)
	}

	if m.Tables == (Tables{}) {
		return &Meta{}, errors.New("must include a \"tables\" section")
	}

	return &m, nil
}
