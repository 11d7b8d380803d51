package wheel

import (
	"math"
	"math/rand"
	"sync"
	"testing"

	"github.com/Shariar-hash/WheellWise/internal/http-server/model"
)

func TestSelect(t *testing.T) {
	options := []model.WheelOption{
		{ID: "1", Label: "Apple", Weight: 1, Count: 1},
		{ID: "2", Label: "Banana", Weight: 2, Count: 1},
		{ID: "3", Label: "Orange", Weight: 1, Count: 3},
	}

	cases := []struct {
		name string
		draw float64
		want string
	}{
		{
			name: "FirstOption",
			draw: 0,
			want: "Apple",
		},
		{
			name: "FirstOptionUpperEdge",
			draw: 0.999,
			want: "Apple",
		},
		{
			name: "SecondOption",
			draw: 1.0,
			want: "Banana",
		},
		{
			name: "ThirdOption",
			draw: 3.5,
			want: "Orange",
		},
		{
			name: "LastOptionFallbackOnTopOfRange",
			draw: 6.0,
			want: "Orange",
		},
	}

	for _, tc := range cases {
		tc := tc

		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			got, err := Select(options, tc.draw)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if got.Label != tc.want {
				t.Errorf("unexpected winner, want: %s, got: %s", tc.want, got.Label)
			}
		})
	}
}

func TestSelectDeterministic(t *testing.T) {
	options := []model.WheelOption{
		{ID: "1", Label: "Yes", Weight: 1, Count: 3},
		{ID: "2", Label: "No", Weight: 1, Count: 3},
	}

	first, err := Select(options, 4.2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for i := 0; i < 100; i++ {
		got, err := Select(options, 4.2)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if got.ID != first.ID {
			t.Fatalf("selection not deterministic, want: %s, got: %s", first.ID, got.ID)
		}
	}
}

func TestSelectInvalidInput(t *testing.T) {
	cases := []struct {
		name    string
		options []model.WheelOption
	}{
		{
			name:    "Empty",
			options: []model.WheelOption{},
		},
		{
			name: "ZeroEffectiveWeight",
			options: []model.WheelOption{
				{ID: "1", Label: "Apple", Weight: -1, Count: 1},
			},
		},
	}

	for _, tc := range cases {
		tc := tc

		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			_, err := Select(tc.options, 0)
			if err != ErrInvalidSelectionInput {
				t.Errorf("unexpected error, want: %v, got: %v", ErrInvalidSelectionInput, err)
			}

			_, _, err = Spin(tc.options, NewRandomSource())
			if err != ErrInvalidSelectionInput {
				t.Errorf("unexpected spin error, want: %v, got: %v", ErrInvalidSelectionInput, err)
			}
		})
	}
}

func TestSpinReturnsMemberOfInput(t *testing.T) {
	options := []model.WheelOption{
		{ID: "1", Label: "Apple", Weight: 1, Count: 1},
		{ID: "2", Label: "Banana", Weight: 3, Count: 2},
		{ID: "3", Label: "Orange", Weight: 0.5, Count: 4},
	}

	rng := rand.New(rand.NewSource(1))

	for i := 0; i < 10000; i++ {
		winner, draw, err := Spin(options, rng)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if draw < 0 || draw >= TotalEffectiveWeight(options) {
			t.Fatalf("draw out of range: %f", draw)
		}

		found := false
		for _, option := range options {
			if option.ID == winner.ID {
				found = true
			}
		}

		if !found {
			t.Fatalf("winner %q is not a member of the input set", winner.Label)
		}
	}
}

// The coordinator holds a single source drawn on by concurrent spin
// requests; it must survive the race detector.
func TestSpinConcurrentDraws(t *testing.T) {
	options := []model.WheelOption{
		{ID: "1", Label: "Apple", Weight: 1, Count: 1},
		{ID: "2", Label: "Banana", Weight: 1, Count: 1},
	}

	rng := NewRandomSource()

	var wg sync.WaitGroup

	for i := 0; i < 8; i++ {
		wg.Add(1)

		go func() {
			defer wg.Done()

			for j := 0; j < 1000; j++ {
				if _, _, err := Spin(options, rng); err != nil {
					t.Errorf("unexpected error: %v", err)

					return
				}
			}
		}()
	}

	wg.Wait()
}

// Options with equal effective weight (1x3 vs 1x3) should win about
// half of the time each; segment count multiplies probability together
// with weight, not instead of it.
func TestSpinDistribution(t *testing.T) {
	options := []model.WheelOption{
		{ID: "yes", Label: "YES", Weight: 1, Count: 3},
		{ID: "no", Label: "NO", Weight: 1, Count: 3},
	}

	const trials = 100000

	rng := rand.New(rand.NewSource(42))
	counts := make(map[string]int)

	for i := 0; i < trials; i++ {
		winner, _, err := Spin(options, rng)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		counts[winner.ID]++
	}

	for id, count := range counts {
		share := float64(count) / float64(trials)

		if math.Abs(share-0.5) > 0.02 {
			t.Errorf("option %s share %f is outside 50%%±2%%", id, share)
		}
	}
}
