package dream

import "time"

// taiOffsetSeconds is the TAI-UTC offset, constant since 2017.
const taiOffsetSeconds = 37

// CurrentTAI returns the current TAI time as unix seconds.
func CurrentTAI() float64 {
	return TAI(time.Now())
}

// TAI converts t to TAI unix seconds.
func TAI(t time.Time) float64 {
	return float64(t.UnixNano())/float64(time.Second) + taiOffsetSeconds
}
