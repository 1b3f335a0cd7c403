package dedup

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSeenSuppressesExactRepeat(t *testing.T) {
	set := NewSet(Options{})

	k := KeyOf("  Joe's   PIZZA ", "1 Main St")
	require.False(t, set.Seen(k))
	set.Remember(k)

	require.True(t, set.Seen(KeyOf("joe's pizza", "1 main st")))
}

func TestSameNameDifferentAddressKept(t *testing.T) {
	set := NewSet(Options{})

	first := KeyOf("Joe's Pizza", "1 Main St")
	second := KeyOf("Joe's Pizza", "99 Harbor Blvd")

	set.Remember(first)
	require.False(t, set.Seen(second))
}

func TestAllEmptyKeyNeverDeduped(t *testing.T) {
	set := NewSet(Options{})

	k := KeyOf("", "")
	require.True(t, k.Empty())

	require.False(t, set.Seen(k))
	set.Remember(k)
	require.False(t, set.Seen(k))
	require.Equal(t, 0, set.Len())
}

func TestNearDuplicateSuppression(t *testing.T) {
	testCases := []struct {
		threshold float64
		name      string
		expected  bool
	}{
		{0.9, "Joes Pizza", true},
		{0.9, "Harbor Dental", false},
		{0, "Joes Pizza", false},
	}

	for _, test := range testCases {
		set := NewSet(Options{NearThreshold: test.threshold})
		set.Remember(KeyOf("Joe's Pizza", "1 Main St"))

		got := set.Seen(KeyOf(test.name, "1 Main St"))
		require.Equal(t, test.expected, got, "name=%q threshold=%v", test.name, test.threshold)
	}
}

func TestRememberIsIdempotent(t *testing.T) {
	set := NewSet(Options{})
	k := KeyOf("Joe's Pizza", "1 Main St")

	set.Remember(k)
	set.Remember(k)
	require.Equal(t, 1, set.Len())
}
