package workload

import (
	"fmt"
	"math/rand"
)

type GenerateOptions struct {
	// Size is the number of keys inserted
	Size int

	// Sorted inserts 0..Size-1 in ascending order instead of random keys
	Sorted bool

	// DeleteRatio is the share of the inserted keys deleted afterwards, in [0, 1]
	DeleteRatio float64

	// Searches is the number of random lookups appended to the script
	Searches int

	Seed int64
}

// Generate builds a script that inserts Size keys, deletes a share of them and
// then searches random keys.
func Generate(options GenerateOptions) *Script {
	rnd := rand.New(rand.NewSource(options.Seed))

	keys := make([]int64, options.Size)
	if options.Sorted {
		for i := range keys {
			keys[i] = int64(i)
		}
	} else {
		// a permutation keeps the keys unique
		for i, k := range rnd.Perm(options.Size) {
			keys[i] = int64(k) * 2
		}
	}

	script := &Script{
		Operations: []Operation{
			{Op: OpInsert, Keys: keys, Value: fmt.Sprintf("seed-%d", options.Seed)},
		},
	}

	numDeletes := int(float64(options.Size) * options.DeleteRatio)
	if numDeletes > 0 {
		deletes := make([]int64, 0, numDeletes)
		for _, i := range rnd.Perm(options.Size)[:min(numDeletes, options.Size)] {
			deletes = append(deletes, keys[i])
		}
		script.Operations = append(script.Operations, Operation{Op: OpDelete, Keys: deletes})
	}

	if options.Searches > 0 {
		searches := make([]int64, options.Searches)
		upper := int64(options.Size)*2 + 1
		for i := range searches {
			searches[i] = rnd.Int63n(upper)
		}
		script.Operations = append(script.Operations, Operation{Op: OpSearch, Keys: searches})
	}

	return script
}
