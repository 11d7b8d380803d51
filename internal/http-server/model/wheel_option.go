package model

type WheelOption struct {
	ID     string  `json:"id"`
	Label  string  `json:"label"`
	Color  string  `json:"color"`
	Weight float64 `json:"weight"`
	Count  int     `json:"count"`
}

// EffectiveWeight is weight multiplied by segment count. Count only
// multiplies apparent slices on the wheel, but both factors feed the
// selection probability. Zero values fall back to 1 so options created
// without explicit weight or count behave as a single plain segment.
func (o WheelOption) EffectiveWeight() float64 {
	weight := o.Weight
	if weight == 0 {
		weight = 1
	}

	count := o.Count
	if count == 0 {
		count = 1
	}

	if weight < 0 || count < 0 {
		return 0
	}

	return weight * float64(count)
}
