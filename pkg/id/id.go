package id

import (
	cryptoRand "crypto/rand"
	"encoding/binary"
	"io"
	"math/rand"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

// Generator hands out ULIDs that sort by creation time. IDs generated within
// the same millisecond stay lexicographically increasing.
type Generator struct {
	mu      sync.Mutex
	now     func() time.Time
	entropy io.Reader
}

// NewGenerator returns a Generator stamped by now. A nil now uses time.Now.
func NewGenerator(now func() time.Time) *Generator {
	if now == nil {
		now = time.Now
	}

	var seed int64
	_ = binary.Read(cryptoRand.Reader, binary.LittleEndian, &seed)
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	return &Generator{
		now:     now,
		entropy: ulid.Monotonic(rand.New(rand.NewSource(seed)), 0),
	}
}

// New returns the next ULID string.
func (g *Generator) New() string {
	g.mu.Lock()
	defer g.mu.Unlock()

	id, err := ulid.New(ulid.Timestamp(g.now().UTC()), g.entropy)
	if err != nil {
		// only when the clock runs backwards past the ULID epoch or entropy overflows
		panic(err)
	}
	return id.String()
}

var std = NewGenerator(nil)

// New returns a ULID from the package level generator.
func New() string {
	return std.New()
}

// Time extracts the timestamp embedded in a ULID string.
func Time(s string) (time.Time, error) {
	u, err := ulid.ParseStrict(s)
	if err != nil {
		return time.Time{}, err
	}
	return ulid.Time(u.Time()), nil
}
