package scoring

// NormalizedScore resolves the [0,1] score of a successful result. Missing
// or malformed score fields resolve to 0.0 rather than failing: a graded
// submission always ends with a definite number.
//
// When the backend sends only a raw value it is mapped onto [0,1] with the
// scale bounds from the response (default 0..1). A non-positive scale span
// yields zero.
func NormalizedScore(result Result) float64 {
	score := result.ScoreObject()
	if score == nil {
		return 0
	}

	if normalized, ok := toFloat(score["normalized"]); ok {
		return normalized
	}

	raw, ok := toFloat(score["raw"])
	if !ok {
		return 0
	}

	scaleMin := 0.0
	if value, ok := toFloat(score["scale_min"]); ok {
		scaleMin = value
	}
	scaleMax := 1.0
	if value, ok := toFloat(score["scale_max"]); ok {
		scaleMax = value
	}

	span := scaleMax - scaleMin
	if span <= 0 {
		return 0
	}

	return (raw - scaleMin) / span
}

// FinalScore is the gradebook value: the normalized score scaled by the
// question weight.
func FinalScore(result Result, weight float64) float64 {
	return NormalizedScore(result) * weight
}
