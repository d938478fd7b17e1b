package compacthash_test

import (
	"fmt"
	"log"

	"github.com/hupe1980/compacthash"
	"github.com/hupe1980/compacthash/memory"
	"github.com/hupe1980/compacthash/typeutil"
)

// Example demonstrates building a table from pooled memory, replacing records
// and probing by key.
func Example() {
	pool, err := memory.NewPool(32 * 1024)
	if err != nil {
		log.Fatal(err)
	}
	defer pool.Close()

	segs, err := pool.Allocate(64)
	if err != nil {
		log.Fatal(err)
	}

	table, err := compacthash.New[typeutil.Triple](typeutil.TripleSerializer{}, &typeutil.TripleComparator{}, segs)
	if err != nil {
		log.Fatal(err)
	}
	if err := table.Open(); err != nil {
		log.Fatal(err)
	}

	for i := range int64(1000) {
		if err := table.InsertOrReplace(typeutil.Triple{Key: i % 100, Value: i}); err != nil {
			log.Fatal(err)
		}
	}

	prober := compacthash.NewProber[int64, typeutil.Triple](table, typeutil.KeyHasher{}, &typeutil.TripleKeyPairComparator{})
	rec, found, err := prober.GetMatch(42)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println(found, rec.Value)

	if err := table.Close(); err != nil {
		log.Fatal(err)
	}
	segs, err = table.FreeMemory()
	if err != nil {
		log.Fatal(err)
	}
	if err := pool.Release(segs); err != nil {
		log.Fatal(err)
	}

	fmt.Println(len(segs))
	// Output:
	// true 942
	// 64
}

// ExampleTable_BuildTableWithUniqueKey shows a bulk load where the last record
// per key wins.
func ExampleTable_BuildTableWithUniqueKey() {
	table, err := compacthash.New[typeutil.Triple](typeutil.TripleSerializer{}, &typeutil.TripleComparator{},
		memory.NewHeapSegments(compacthash.MinNumSegments, 4096))
	if err != nil {
		log.Fatal(err)
	}
	if err := table.Open(); err != nil {
		log.Fatal(err)
	}
	defer table.Close()

	input := func(yield func(typeutil.Triple, error) bool) {
		for _, r := range []typeutil.Triple{{Key: 1, Value: 10}, {Key: 2, Value: 20}, {Key: 1, Value: 11}} {
			if !yield(r, nil) {
				return
			}
		}
	}
	if err := table.BuildTableWithUniqueKey(input); err != nil {
		log.Fatal(err)
	}

	sum := int64(0)
	for rec, err := range table.All() {
		if err != nil {
			log.Fatal(err)
		}
		sum += rec.Value
	}
	fmt.Println(sum)
	// Output: 31
}

// ExampleTable_Stats prints the memory layout of a freshly opened table.
func ExampleTable_Stats() {
	table, err := compacthash.New[typeutil.Triple](typeutil.TripleSerializer{}, &typeutil.TripleComparator{},
		memory.NewHeapSegments(64, 4096))
	if err != nil {
		log.Fatal(err)
	}
	if err := table.Open(); err != nil {
		log.Fatal(err)
	}
	defer table.Close()

	s := table.Stats()
	fmt.Println(s.Partitions, s.Buckets, s.DirectorySegments, s.FreeSegments)
	// Output: 10 380 12 41
}
