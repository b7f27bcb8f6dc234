package keyedstore

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type flat struct {
	Owner string `json:"owner_name"`
	BHK   int    `json:"BHK"`
}

// oneBucket sends every key to bucket 0 so chain behavior can be observed.
type oneBucket struct {
	tableSize int64
}

func (o *oneBucket) SetTableSize(tableSize int64) { o.tableSize = tableSize }
func (o *oneBucket) HashFunc1(key []byte) int64   { return 0 }
func (o *oneBucket) GetTableSize() int64          { return o.tableSize }

func TestNew(t *testing.T) {
	t.Run("allocates the requested number of buckets", func(t *testing.T) {
		s, err := New[flat](100, nil)

		require.NoError(t, err)
		assert.Equal(t, 100, s.Size())
		assert.Equal(t, 0, s.Len())
		assert.Len(t, s.Distribution(), 100)
	})

	t.Run("rejects a non-positive size", func(t *testing.T) {
		for _, size := range []int{0, -1} {
			_, err := New[flat](size, nil)
			assert.Error(t, err, "size %d", size)
		}
	})

	t.Run("sets the table size of a custom algorithm", func(t *testing.T) {
		h := &oneBucket{}

		_, err := New[flat](7, h)

		require.NoError(t, err)
		assert.Equal(t, int64(7), h.GetTableSize())
	})
}

func TestStore_InsertSearch(t *testing.T) {
	t.Run("finds inserted values", func(t *testing.T) {
		s, err := New[flat](10, nil)
		require.NoError(t, err)

		s.Insert("A-101", flat{Owner: "Rao", BHK: 2})
		s.Insert("B-202", flat{Owner: "Iyer", BHK: 3})

		v, err := s.Search("A-101")
		require.NoError(t, err)
		assert.Equal(t, flat{Owner: "Rao", BHK: 2}, *v)

		v, err = s.Search("B-202")
		require.NoError(t, err)
		assert.Equal(t, flat{Owner: "Iyer", BHK: 3}, *v)
		assert.Equal(t, 2, s.Len())
	})

	t.Run("signals a missing key", func(t *testing.T) {
		s, err := New[flat](10, nil)
		require.NoError(t, err)

		v, err := s.Search("nope")

		assert.Nil(t, v)
		assert.True(t, IsNotFound(err))
		assert.False(t, IsFileNotFound(err))
	})

	t.Run("keeps edits made through a handle", func(t *testing.T) {
		s, err := New[flat](10, nil)
		require.NoError(t, err)
		s.Insert("A-101", flat{Owner: "Rao", BHK: 2})

		v, err := s.Search("A-101")
		require.NoError(t, err)
		v.BHK = 4

		again, err := s.Search("A-101")
		require.NoError(t, err)
		assert.Equal(t, 4, again.BHK)
		assert.Equal(t, 4, s.Pairs()[0].Value.BHK)
	})

	t.Run("the first inserted duplicate shadows later ones", func(t *testing.T) {
		s, err := New[flat](10, &oneBucket{})
		require.NoError(t, err)

		s.Insert("A-101", flat{Owner: "first"})
		s.Insert("A-101", flat{Owner: "second"})

		v, err := s.Search("A-101")
		require.NoError(t, err)
		assert.Equal(t, "first", v.Owner)
		assert.Equal(t, 2, s.Len())
	})

	t.Run("chains keep insertion order", func(t *testing.T) {
		s, err := New[flat](10, &oneBucket{})
		require.NoError(t, err)

		for _, k := range []string{"c", "a", "b"} {
			s.Insert(k, flat{Owner: k})
		}

		var keys []string
		for _, p := range s.Pairs() {
			keys = append(keys, p.Key)
		}
		assert.Equal(t, []string{"c", "a", "b"}, keys)
		assert.Equal(t, 3, s.Distribution()[0])
	})
}

func TestStore_Update(t *testing.T) {
	s, err := New[flat](10, nil)
	require.NoError(t, err)
	s.Insert("A-101", flat{Owner: "Rao", BHK: 2})

	err = s.Update("A-101", func(v *flat) { v.Owner = "Menon" })
	require.NoError(t, err)

	v, err := s.Search("A-101")
	require.NoError(t, err)
	assert.Equal(t, "Menon", v.Owner)

	err = s.Update("Z-999", func(v *flat) { t.Fatal("called for a missing key") })
	assert.True(t, IsNotFound(err))
}

func TestStore_Each(t *testing.T) {
	s, err := New[flat](5, nil)
	require.NoError(t, err)
	for i := 0; i < 20; i++ {
		s.Insert(fmt.Sprintf("F-%d", i), flat{BHK: i})
	}

	seen := map[string]bool{}
	s.Each(func(key string, v *flat) {
		seen[key] = true
		v.BHK *= 10
	})

	assert.Len(t, seen, 20)
	v, err := s.Search("F-3")
	require.NoError(t, err)
	assert.Equal(t, 30, v.BHK)
}

func TestStore_ConcurrentAccess(t *testing.T) {
	s, err := New[flat](16, nil)
	require.NoError(t, err)

	var wg sync.WaitGroup
	for w := 0; w < 8; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < 50; i++ {
				key := fmt.Sprintf("W%d-%d", w, i)
				s.Insert(key, flat{BHK: i})
				_, err := s.Search(key)
				assert.NoError(t, err)
			}
		}(w)
	}
	wg.Add(1)
	go func() {
		defer wg.Done()
		s.Each(func(string, *flat) {})
	}()
	wg.Wait()

	assert.Equal(t, 400, s.Len())
}

func TestXXHashAlgorithm(t *testing.T) {
	t.Run("is stable for the same key and size", func(t *testing.T) {
		a := NewXXHashAlgorithm(100)
		b := NewXXHashAlgorithm(100)

		for _, k := range []string{"A-101", "B-202", "admin", ""} {
			assert.Equal(t, a.HashFunc1([]byte(k)), a.HashFunc1([]byte(k)))
			assert.Equal(t, a.HashFunc1([]byte(k)), b.HashFunc1([]byte(k)))
		}
	})

	t.Run("stays within the table", func(t *testing.T) {
		h := NewXXHashAlgorithm(7)
		for i := 0; i < 1000; i++ {
			b := h.HashFunc1([]byte(fmt.Sprintf("%d", i)))
			assert.True(t, b >= 0 && b < 7)
		}
	})

	t.Run("spreads flat numbers over every bucket", func(t *testing.T) {
		s, err := New[flat](100, nil)
		require.NoError(t, err)

		for _, tower := range []string{"A", "B", "C", "D"} {
			for floor := 1; floor <= 20; floor++ {
				for unit := 1; unit <= 5; unit++ {
					s.Insert(fmt.Sprintf("%s-%d%02d", tower, floor, unit), flat{})
				}
			}
		}

		// 400 keys over 100 buckets
		used, longest := 0, 0
		for _, n := range s.Distribution() {
			if n > 0 {
				used++
			}
			if n > longest {
				longest = n
			}
		}
		assert.Greater(t, used, 90, "buckets in use")
		assert.Less(t, longest, 16, "longest chain")
	})
}
