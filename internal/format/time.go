package format

import (
	"math"
	"time"
)

// UnixToTime converts a header timestamp to time.Time. Zero means "never written".
func UnixToTime(v uint32) time.Time {
	if v == 0 {
		return time.Time{}
	}
	return time.Unix(int64(v), 0).UTC()
}

// TimeToUnix converts t to a header timestamp, clamping to the uint32 range.
func TimeToUnix(t time.Time) uint32 {
	s := t.Unix()
	switch {
	case s < 0:
		return 0
	case s > math.MaxUint32:
		return math.MaxUint32
	}
	return uint32(s)
}
