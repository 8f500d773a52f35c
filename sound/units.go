package sound

import (
	"fmt"
	"sync"
	"time"
)

// Freq is a frequency in Hz. Keeping frequency a distinct type from
// time.Duration confines time/frequency arithmetic to the conversions
// below.
type Freq float64

// Hz returns the frequency as a plain float64.
func (f Freq) Hz() float64 { return float64(f) }

// Period returns 1/f as a duration.
func (f Freq) Period() time.Duration {
	return time.Duration(float64(time.Second) / float64(f))
}

// FrameCount converts a duration to a sample count at the given rate,
// flooring: ⌊d·rate⌋. This is the only time×rate crossing in the model.
func FrameCount(d time.Duration, rate int) int {
	if d <= 0 {
		return 0
	}
	return int(int64(d) * int64(rate) / int64(time.Second))
}

// One-shot warning store, mirroring the engine's warning discipline:
// warnings never abort, they are kept until the next inspection.
var (
	warnMu      sync.Mutex
	lastWarning string
)

func warnf(format string, args ...any) {
	warnMu.Lock()
	defer warnMu.Unlock()
	lastWarning = fmt.Sprintf(format, args...)
}

// LastWarning returns the most recent warning and clears it. Empty means no
// warning since the previous call.
func LastWarning() string {
	warnMu.Lock()
	defer warnMu.Unlock()
	w := lastWarning
	lastWarning = ""
	return w
}
