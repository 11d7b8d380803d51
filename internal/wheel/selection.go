package wheel

import (
	"errors"
	"math/rand"

	"github.com/Shariar-hash/WheellWise/internal/http-server/model"
)

var ErrInvalidSelectionInput = errors.New("invalid selection input")

// RandomSource yields a uniform draw in [0, 1). Tests pass a fixed
// source so a spin can be forced onto a known option.
type RandomSource interface {
	Float64() float64
}

type lockedSource struct{}

func (lockedSource) Float64() float64 {
	return rand.Float64()
}

// NewRandomSource returns a source backed by the locked top-level
// generator. One instance is shared by every spin request, so a
// rand.Rand of its own would race.
func NewRandomSource() RandomSource {
	return lockedSource{}
}

func TotalEffectiveWeight(options []model.WheelOption) float64 {
	var total float64

	for _, option := range options {
		total += option.EffectiveWeight()
	}

	return total
}

// Select walks the options in insertion order accumulating effective
// weight and returns the first option whose cumulative sum exceeds the
// draw. Identical (options, draw) inputs always yield the identical
// option; every connected client converges on the result computed from
// one draw on the owner's side.
func Select(options []model.WheelOption, draw float64) (model.WheelOption, error) {
	total := TotalEffectiveWeight(options)
	if len(options) == 0 || total <= 0 {
		return model.WheelOption{}, ErrInvalidSelectionInput
	}

	var cumulative float64

	for _, option := range options {
		cumulative += option.EffectiveWeight()

		if cumulative > draw {
			return option, nil
		}
	}

	// Rounding can leave the cumulative sum a hair below the draw when
	// the draw sits at the top of the range. The last option wins then;
	// never fall back to the first one.
	return options[len(options)-1], nil
}

// Spin draws once from rng and selects. The draw is returned alongside
// the winner so it can be stored with the spin event for replay.
func Spin(options []model.WheelOption, rng RandomSource) (model.WheelOption, float64, error) {
	total := TotalEffectiveWeight(options)
	if len(options) == 0 || total <= 0 {
		return model.WheelOption{}, 0, ErrInvalidSelectionInput
	}

	draw := rng.Float64() * total

	winner, err := Select(options, draw)
	if err != nil {
		return model.WheelOption{}, 0, err
	}

	return winner, draw, nil
}
