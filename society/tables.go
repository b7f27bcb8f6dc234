package society

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/ptgott/housing-society/fees"
	"github.com/ptgott/housing-society/keyedstore"
	"github.com/ptgott/housing-society/records"
	"github.com/ptgott/housing-society/storage"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

// File names of the persisted tables inside the data directory.
const (
	UserTableFile  = "user_table.json"
	AdminTableFile = "admin_table.json"
	HouseTableFile = "house_table.json"
)

// Paths locates the three table files.
type Paths struct {
	Users  string
	Admins string
	Houses string
}

// PathsIn returns the standard table paths inside dir.
func PathsIn(dir string) Paths {
	return Paths{
		Users:  filepath.Join(dir, UserTableFile),
		Admins: filepath.Join(dir, AdminTableFile),
		Houses: filepath.Join(dir, HouseTableFile),
	}
}

func (p Paths) all() []string {
	return []string{p.Users, p.Admins, p.Houses}
}

// Options control how tables are opened.
type Options struct {
	// Size is the bucket count of every table.
	Size int
	// MaxFileSize is the largest table file Open accepts, in bytes. Zero
	// means no limit.
	MaxFileSize int64
	Rates       fees.Rates
}

// Tables is the state shared by request handling and the fee engine: the
// user, admin and house tables and where they live on disk.
type Tables struct {
	Users  *keyedstore.Store[records.UserRecord]
	Admins *keyedstore.Store[records.AdminRecord]
	Houses *keyedstore.Store[records.HouseRecord]
	Paths  Paths
	Rates  fees.Rates
}

// Open loads all three tables. Every file must exist and hold a valid table;
// otherwise an error wrapping keyedstore.FileNotFound or
// keyedstore.MalformedData is returned and no Tables are built.
func Open(paths Paths, opts Options) (*Tables, error) {
	t := &Tables{Paths: paths, Rates: opts.Rates}

	var g errgroup.Group
	g.Go(func() (err error) {
		t.Users, err = load[records.UserRecord](paths.Users, opts)
		return err
	})
	g.Go(func() (err error) {
		t.Admins, err = load[records.AdminRecord](paths.Admins, opts)
		return err
	})
	g.Go(func() (err error) {
		t.Houses, err = load[records.HouseRecord](paths.Houses, opts)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	log.Info().
		Int("users", t.Users.Len()).
		Int("admins", t.Admins.Len()).
		Int("houses", t.Houses.Len()).
		Int("buckets", opts.Size).
		Msg("loaded the society tables")

	return t, nil
}

func load[V any](path string, opts Options) (*keyedstore.Store[V], error) {
	if opts.MaxFileSize > 0 {
		fi, err := os.Stat(path)
		if err == nil && fi.Size() > opts.MaxFileSize {
			return nil, keyedstore.MalformedData{
				Path:   path,
				Reason: fmt.Sprintf("file is %d bytes, more than the %d byte limit", fi.Size(), opts.MaxFileSize),
			}
		}
	}

	s, err := keyedstore.LoadFromFile[V](path, opts.Size, nil)
	if err != nil {
		return nil, err
	}

	longest := 0
	for _, n := range s.Distribution() {
		if n > longest {
			longest = n
		}
	}
	log.Debug().
		Str("path", path).
		Int("entries", s.Len()).
		Int("longestChain", longest).
		Msg("loaded a table")

	return s, nil
}

// Init writes an empty table for every path that doesn't exist yet and
// returns the paths it created. Existing files are left untouched.
func Init(paths Paths) ([]string, error) {
	var created []string
	for _, p := range paths.all() {
		_, err := os.Stat(p)
		if err == nil {
			continue
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return created, err
		}

		if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
			return created, fmt.Errorf("can't create the data directory for %s: %w", p, err)
		}
		empty, err := keyedstore.New[struct{}](1, nil)
		if err != nil {
			return created, err
		}
		if err := empty.SaveToFile(p); err != nil {
			return created, err
		}
		created = append(created, p)
	}
	return created, nil
}

// SaveResidency writes the user and house tables.
func (t *Tables) SaveResidency() error {
	var g errgroup.Group
	g.Go(func() error { return t.Users.SaveToFile(t.Paths.Users) })
	g.Go(func() error { return t.Houses.SaveToFile(t.Paths.Houses) })
	return g.Wait()
}

// Save writes all three tables.
func (t *Tables) Save() error {
	var g errgroup.Group
	g.Go(func() error { return t.Users.SaveToFile(t.Paths.Users) })
	g.Go(func() error { return t.Admins.SaveToFile(t.Paths.Admins) })
	g.Go(func() error { return t.Houses.SaveToFile(t.Paths.Houses) })
	return g.Wait()
}

// FeeEngine returns an engine working on these tables. history and metrics
// may be nil.
func (t *Tables) FeeEngine(history storage.KeyValue, metrics *fees.Metrics) *fees.Engine {
	return &fees.Engine{
		Rates:      t.Rates,
		Users:      t.Users,
		Houses:     t.Houses,
		UsersPath:  t.Paths.Users,
		HousesPath: t.Paths.Houses,
		History:    history,
		Metrics:    metrics,
	}
}
