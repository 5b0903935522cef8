package recovery

// Status is the derived readiness of a single body part.
type Status string

const (
	StatusReady   Status = "READY"
	StatusCaution Status = "CAUTION"
	StatusRest    Status = "REST"
	StatusPain    Status = "PAIN"
)

// cautionThresholdRatio marks the point of the rest window after which a body
// part moves from REST to CAUTION. Together with the full-window boundary this
// is the core business rule of the recovery feature - do not tune casually.
const cautionThresholdRatio = 0.6

// Classify derives the readiness status of a body part.
//
// A reported pain flag always wins, regardless of elapsed time. A nil
// hoursSinceLast means the body part was never worked and is READY.
func Classify(hoursSinceLast *float64, windowHours int, hasPain bool) Status {
	if hasPain {
		return StatusPain
	}
	if hoursSinceLast == nil {
		return StatusReady
	}

	window := float64(windowHours)
	switch {
	case *hoursSinceLast < cautionThresholdRatio*window:
		return StatusRest
	case *hoursSinceLast < window:
		return StatusCaution
	default:
		return StatusReady
	}
}
