package scene

import "time"

// stopwatchLaps is the number of frame samples retained.
const stopwatchLaps = 120

// Stopwatch records per-frame durations in a fixed ring. The frame
// driver starts and stops it around raster work; layers read the
// aggregates to adapt to sustained load.
type Stopwatch struct {
	laps    [stopwatchLaps]time.Duration
	current int
	filled  int
	started time.Time
	running bool
}

// NewStopwatch creates an empty stopwatch.
func NewStopwatch() *Stopwatch { return &Stopwatch{} }

// Start begins timing a lap.
func (s *Stopwatch) Start() {
	s.started = time.Now()
	s.running = true
}

// Stop ends the current lap and records it.
func (s *Stopwatch) Stop() {
	if !s.running {
		return
	}
	s.running = false
	s.SetLap(time.Since(s.started))
}

// SetLap records an externally measured lap.
func (s *Stopwatch) SetLap(d time.Duration) {
	s.laps[s.current] = d
	s.current = (s.current + 1) % stopwatchLaps
	if s.filled < stopwatchLaps {
		s.filled++
	}
}

// LastLap returns the most recently recorded lap.
func (s *Stopwatch) LastLap() time.Duration {
	if s.filled == 0 {
		return 0
	}
	return s.laps[(s.current+stopwatchLaps-1)%stopwatchLaps]
}

// MaxLap returns the largest retained lap.
func (s *Stopwatch) MaxLap() time.Duration {
	var max time.Duration
	for i := 0; i < s.filled; i++ {
		if s.laps[i] > max {
			max = s.laps[i]
		}
	}
	return max
}

// AverageLap returns the mean of the retained laps.
func (s *Stopwatch) AverageLap() time.Duration {
	if s.filled == 0 {
		return 0
	}
	var sum time.Duration
	for i := 0; i < s.filled; i++ {
		sum += s.laps[i]
	}
	return sum / time.Duration(s.filled)
}
