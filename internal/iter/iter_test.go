package iter

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

type elem struct {
	value int
}

func TestLookahead(t *testing.T) {
	t.Parallel()

	numValues := 10

	for x := 0; x < numValues; x = x + 1 {
		t.Run(fmt.Sprintf("LA(%d)", x), func(t *testing.T) {
			elems := make([]*elem, 0, numValues)
			for y := 0; y < numValues; y = y + 1 {
				elems = append(elems, &elem{value: y})
			}
			look := NewLookahead(NewSlice(elems), uint8(x))
			for y := 0; y < numValues; y = y + 1 {
				val := look.Next()
				require.True(t, val.IsPresent())
				require.Equal(t, y, val.Value().value)

				expectedPeek := y + x
				peek := look.Lookahead(uint8(x))
				if expectedPeek < numValues {
					require.True(t, peek.IsPresent())
					require.Equal(t, expectedPeek, peek.Value().value)
				} else {
					require.False(t, peek.IsPresent())
				}
			}
			require.False(t, look.Next().IsPresent())
		})
	}
}

func TestLookaheadBeyondWindow(t *testing.T) {
	t.Parallel()

	look := NewLookahead(NewSlice([]int{1, 2, 3}), 1)
	require.Equal(t, 1, look.Lookahead(0).Value())
	require.Equal(t, 2, look.Lookahead(1).Value())
	require.False(t, look.Lookahead(2).IsPresent())
}

func TestRunes(t *testing.T) {
	t.Parallel()

	it := NewRunes("a€;")
	var got []rune
	for r := it.Next(); r.IsPresent(); r = it.Next() {
		got = append(got, r.Value())
	}
	require.Equal(t, []rune{'a', '€', ';'}, got)
	require.Equal(t, rune(0), it.Next().ValueOr(0))
}

var benchEscapeValue *elem
var benchEscapeValuePeek *elem

func BenchmarkLookahead(b *testing.B) {
	sliceSize := 1000
	slice := make([]*elem, sliceSize)
	for x := 0; x < sliceSize; x = x + 1 {
		slice[x] = &elem{value: x}
	}
	look := NewLookahead(NewSlice(slice), 1)

	var loopEscapeValue *elem
	var loopEscapeValuePeek *elem
	b.ResetTimer()
	for n := 0; n < b.N; n = n + 1 {
		for x := 0; x < sliceSize; x = x + 1 {
			loopEscapeValue = look.Next().Value()
			loopEscapeValuePeek = look.Lookahead(1).Value()
		}
	}
	benchEscapeValue = loopEscapeValue
	benchEscapeValuePeek = loopEscapeValuePeek
}
