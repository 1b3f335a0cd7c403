package browser

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestStabilityTracker(t *testing.T) {
	testCases := []struct {
		name         string
		required     int
		observations []Fingerprint
		stableAt     int
	}{
		{
			name:     "three identical fingerprints reach the fixed point",
			required: 3,
			observations: []Fingerprint{
				{Top: 100, Height: 2000},
				{Top: 100, Height: 2000},
				{Top: 100, Height: 2000},
			},
			stableAt: 3,
		},
		{
			name:     "growing height keeps resetting the count",
			required: 3,
			observations: []Fingerprint{
				{Top: 100, Height: 2000},
				{Top: 200, Height: 3000},
				{Top: 300, Height: 4000},
				{Top: 300, Height: 4000},
				{Top: 300, Height: 4000},
			},
			stableAt: 5,
		},
		{
			name:     "change after a partial streak starts over",
			required: 3,
			observations: []Fingerprint{
				{Top: 100, Height: 2000},
				{Top: 100, Height: 2000},
				{Top: 100, Height: 2500},
				{Top: 100, Height: 2500},
				{Top: 100, Height: 2500},
			},
			stableAt: 5,
		},
		{
			name:     "required below one clamps to one",
			required: 0,
			observations: []Fingerprint{
				{Top: 0, Height: 1000},
			},
			stableAt: 1,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			tracker := NewStabilityTracker(tc.required)
			stableAt := -1
			for i, fp := range tc.observations {
				if tracker.Observe(fp) {
					stableAt = i + 1
					break
				}
			}
			require.Equal(t, tc.stableAt, stableAt)
		})
	}
}

func TestStabilityTrackerNeverStableWhileChanging(t *testing.T) {
	tracker := NewStabilityTracker(2)
	for i := 0; i < 100; i++ {
		require.False(t, tracker.Observe(Fingerprint{Top: float64(i), Height: float64(i * 10)}))
	}
}

func TestScrollOptionsDefaults(t *testing.T) {
	var opts ScrollOptions
	require.Equal(t, 3, opts.stableRequired())
	require.Equal(t, 50, opts.maxIterations())
	require.Positive(t, opts.pause())
	require.Positive(t, opts.stepTimeout())

	opts = ScrollOptions{StableRequired: 5, MaxIterations: 10}
	require.Equal(t, 5, opts.stableRequired())
	require.Equal(t, 10, opts.maxIterations())
}

func TestJsString(t *testing.T) {
	require.Equal(t, `"div[role='feed']"`, jsString("div[role='feed']"))
	require.Equal(t, `"a\"b"`, jsString(`a"b`))
}
