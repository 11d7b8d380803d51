package repository

import (
	"testing"

	"github.com/Shariar-hash/WheellWise/internal/http-server/model"
)

func TestOptionsRoundTrip(t *testing.T) {
	cases := []struct {
		name    string
		options []model.WheelOption
	}{
		{
			name: "Success",
			options: []model.WheelOption{
				{ID: "1", Label: "🍎 Apple", Color: "#ef4444", Weight: 1, Count: 1},
				{ID: "2", Label: "🍌 Banana", Color: "#eab308", Weight: 2, Count: 3},
			},
		},
		{
			name:    "Empty",
			options: []model.WheelOption{},
		},
		{
			name:    "Nil",
			options: nil,
		},
	}

	for _, tc := range cases {
		tc := tc

		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			data, err := encodeOptions(tc.options)
			if err != nil {
				t.Fatalf("encode failed: %v", err)
			}

			got, err := decodeOptions(data)
			if err != nil {
				t.Fatalf("decode failed: %v", err)
			}

			if len(got) != len(tc.options) {
				t.Fatalf("unexpected length, want: %d, got: %d", len(tc.options), len(got))
			}

			for i := range tc.options {
				if got[i] != tc.options[i] {
					t.Errorf("option %d mismatch, want: %+v, got: %+v", i, tc.options[i], got[i])
				}
			}
		})
	}
}

func TestParticipantsRoundTrip(t *testing.T) {
	cases := []struct {
		name  string
		names []string
	}{
		{
			name:  "Ordered",
			names: []string{"Alice", "Bob", "Carol"},
		},
		{
			name:  "Empty",
			names: []string{},
		},
		{
			name:  "Nil",
			names: nil,
		},
	}

	for _, tc := range cases {
		tc := tc

		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			data, err := encodeParticipants(tc.names)
			if err != nil {
				t.Fatalf("encode failed: %v", err)
			}

			got, err := decodeParticipants(data)
			if err != nil {
				t.Fatalf("decode failed: %v", err)
			}

			if len(got) != len(tc.names) {
				t.Fatalf("unexpected length, want: %d, got: %d", len(tc.names), len(got))
			}

			for i := range tc.names {
				if got[i] != tc.names[i] {
					t.Errorf("participant %d mismatch, want: %s, got: %s", i, tc.names[i], got[i])
				}
			}
		})
	}
}
