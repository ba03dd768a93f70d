// Package phases detects the four canonical swing phases (address,
// top, impact, finish) from a captured frame sequence.
//
// Detection is a heuristic state machine over the smoothed mean wrist
// height signal in image coordinates, where a smaller value means the
// hands are higher. The constants below were tuned empirically at
// 30 fps capture; they are named rather than derived.
package phases

import (
	"math"

	"github.com/fairway-data/swing.report/internal/pose"
	"github.com/fairway-data/swing.report/internal/signal"
)

const (
	// MinFrames is the minimum sequence length for detection; shorter
	// sequences yield all-zero phases rather than an error.
	MinFrames = 10

	heightSmoothWindow   = 7
	heightSmoothOrder    = 2
	velocitySmoothWindow = 5
	velocitySmoothOrder  = 2

	// topRiseFraction is the minimum hand rise (as a fraction of the
	// observed height range) for a local minimum to qualify as the top.
	topRiseFraction = 0.08
	// topNeighborhood is the ±frame window a top candidate must be a
	// local minimum over.
	topNeighborhood = 3
	// topFallbackFraction bounds the global-minimum fallback search.
	topFallbackFraction = 0.6

	// addressLookbackSec is how far before the top the address search
	// extends.
	addressLookbackSec = 2.0

	// impactMinOffset and impactWindowSec bound the downswing search
	// window after the top.
	impactMinOffset = 3
	impactWindowSec = 0.5
	// impactAgreementFrames is the maximum disagreement between the
	// position-based and velocity-based impact estimates before the two
	// are blended.
	impactAgreementFrames = 3
	// impactPositionWeight is the blend weight of the position estimate
	// when the two estimates disagree.
	impactPositionWeight = 0.7

	// finishMinOffset: the finish search starts strictly after
	// impact + finishMinOffset.
	finishMinOffset = 3

	// orderingPushFrames is how far a phase violating chronological
	// order is pushed past its predecessor.
	orderingPushFrames = 5
)

// Phases holds the four detected frame indices. After a successful
// detection on a non-trivial sequence they satisfy
// address < top < impact <= finish.
type Phases struct {
	Address int `json:"address_frame"`
	Top     int `json:"top_frame"`
	Impact  int `json:"impact_frame"`
	Finish  int `json:"finish_frame"`
}

// Detect locates the swing phases in seq. Sequences shorter than
// MinFrames return the zero value. Detect never fails: missing
// landmarks are backfilled from the previous frame before smoothing.
func Detect(seq pose.Sequence) Phases {
	n := seq.Len()
	if n < MinFrames {
		return Phases{}
	}
	fps := seq.FPS

	height := signal.SavitzkyGolay(seq.WristHeightSeries(), heightSmoothWindow, heightSmoothOrder)
	velocity := signal.SavitzkyGolay(signal.Gradient(height), velocitySmoothWindow, velocitySmoothOrder)

	top := detectTop(height, velocity)
	address := detectAddress(height, top, fps)
	impact := detectImpact(height, velocity, top, fps)
	finish := detectFinish(height, impact)

	return enforceOrder(address, top, impact, finish, n)
}

// detectTop finds the first qualified local minimum of the height
// signal: the hands must have risen at least topRiseFraction of the
// observed range from frame 0, the velocity must cross from <=0 to >0,
// and the point must be a local minimum over ±topNeighborhood frames.
func detectTop(height, velocity []float64) int {
	n := len(height)
	lo, hi := minMax(height)
	riseThreshold := topRiseFraction * (hi - lo)
	start := height[0]

	for i := topNeighborhood; i < n-topNeighborhood; i++ {
		if !(velocity[i-1] <= 0 && velocity[i] > 0) {
			continue
		}
		if start-height[i] < riseThreshold {
			continue
		}
		if !isLocalMin(height, i, topNeighborhood) {
			continue
		}
		return i
	}

	// Fallback: global minimum of the first 60% of frames.
	end := int(float64(n) * topFallbackFraction)
	if end < 1 {
		end = 1
	}
	best := 0
	for i := 1; i < end; i++ {
		if height[i] < height[best] {
			best = i
		}
	}
	return best
}

// detectAddress finds the lowest hand position (maximum height value)
// in the lookback window preceding the top.
func detectAddress(height []float64, top int, fps float64) int {
	start := top - int(fps*addressLookbackSec)
	if start < 0 {
		start = 0
	}
	address := start
	for i := start; i < top; i++ {
		if height[i] > height[address] {
			address = i
		}
	}
	return address
}

// detectImpact estimates impact within [top+impactMinOffset,
// top+impactWindowSec] from two signals: the frame of maximum height
// (hands lowest) and the frame of peak downward velocity. When they
// disagree by more than impactAgreementFrames the result is blended
// toward the position estimate. A one-frame correction is applied when
// the immediately following frame is lower still.
func detectImpact(height, velocity []float64, top int, fps float64) int {
	n := len(height)
	start := top + impactMinOffset
	end := top + int(fps*impactWindowSec)
	if end >= n {
		end = n - 1
	}
	if start > end {
		start = end
	}
	if start < 0 {
		start = 0
	}

	posEst := start
	velEst := start
	for i := start; i <= end; i++ {
		if height[i] > height[posEst] {
			posEst = i
		}
		// Positive velocity is hands moving down in image coordinates.
		if velocity[i] > velocity[velEst] {
			velEst = i
		}
	}

	impact := posEst
	if abs(posEst-velEst) > impactAgreementFrames {
		impact = int(math.Round(impactPositionWeight*float64(posEst) + (1-impactPositionWeight)*float64(velEst)))
	}

	// Off-by-one correction: take the next frame when the hands are
	// lower still.
	if impact+1 < n && height[impact+1] > height[impact] {
		impact++
	}
	return impact
}

// detectFinish finds the highest hand position strictly after
// impact + finishMinOffset.
func detectFinish(height []float64, impact int) int {
	n := len(height)
	start := impact + finishMinOffset + 1
	if start >= n {
		return n - 1
	}
	finish := start
	for i := start; i < n; i++ {
		if height[i] < height[finish] {
			finish = i
		}
	}
	return finish
}

// enforceOrder pushes any phase violating chronological order forward
// by orderingPushFrames from its predecessor, then clamps everything
// into [0, n-1].
func enforceOrder(address, top, impact, finish, n int) Phases {
	if top <= address {
		top = address + orderingPushFrames
	}
	if impact <= top {
		impact = top + orderingPushFrames
	}
	if finish <= impact {
		finish = impact + orderingPushFrames
	}

	finish = clamp(finish, 0, n-1)
	impact = clamp(impact, 0, finish-1)
	top = clamp(top, 0, impact-1)
	address = clamp(address, 0, top-1)

	return Phases{Address: address, Top: top, Impact: impact, Finish: finish}
}

func isLocalMin(series []float64, i, radius int) bool {
	for j := i - radius; j <= i+radius; j++ {
		if j < 0 || j >= len(series) || j == i {
			continue
		}
		if series[j] < series[i] {
			return false
		}
	}
	return true
}

func minMax(series []float64) (lo, hi float64) {
	lo, hi = series[0], series[0]
	for _, v := range series[1:] {
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	return lo, hi
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func clamp(v, lo, hi int) int {
	if hi < lo {
		hi = lo
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
