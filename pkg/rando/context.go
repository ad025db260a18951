package rando

import (
	"slices"

	"go.uber.org/zap"
	"pgregory.net/rand"

	"github.com/drsam94/mmbccr/internal/options"
	"github.com/drsam94/mmbccr/pkg/records"
)

// Context is the state of one run, passed to every pass. It owns the only
// random stream: passes draw from it in a fixed order so a seed reproduces
// a run exactly.
type Context struct {
	Rand    *rand.Rand
	Options options.Options
	Log     *zap.Logger
	Stats   Stats

	// Battle Chip Challenge chip table by library index (0-based), and
	// standard chip indices grouped by exact cost.
	Chips   map[int]*records.ChipBCC
	Buckets map[int][]int

	// Battle Network 2 metadata, rebuilt after the stat passes.
	ChipNames  map[int]string
	VirusNames map[int]string
	ItemNames  map[int]string
	ChipsBN2   map[int]*records.ChipBN2
	BucketsBN2 map[int][]int
}

// NewContext seeds a context. A nil logger discards output.
func NewContext(seed uint64, opts options.Options, logger *zap.Logger) *Context {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Context{
		Rand:    rand.New(seed),
		Options: opts,
		Log:     logger,
	}
}

func (c *Context) maxRejections() int { return c.Options.Engine.MaxRejections }

// bucketStep is the distance between the costs lookDown tries.
const bucketStep = 10

// addToBucket files id under its exact cost, keeping ids ascending.
func addToBucket(buckets map[int][]int, cost, id int) {
	i, _ := slices.BinarySearch(buckets[cost], id)
	buckets[cost] = slices.Insert(buckets[cost], i, id)
}

// lookDown returns the ids of the first cost in target, target-10, ... that
// has any, stopping before zero. It never looks above target.
func lookDown(buckets map[int][]int, target int) []int {
	for cost := target; cost > 0; cost -= bucketStep {
		if ids := buckets[cost]; len(ids) > 0 {
			return ids
		}
	}

	return nil
}
