package link

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseArgs(t *testing.T) {
	testCases := []struct {
		name   string
		line   string
		n      int
		expect []int
	}{
		{name: "single", line: "a,5", n: 1, expect: []int{5}},
		{name: "two", line: "s,100,0", n: 2, expect: []int{100, 0}},
		{name: "negative", line: "s,-50,50", n: 2, expect: []int{-50, 50}},
		{name: "multi digits", line: "s,1234,-987", n: 2, expect: []int{1234, -987}},
		{name: "skip slot any byte", line: "sx12,3", n: 2, expect: []int{12, 3}},
		{name: "skip slot digit", line: "a75", n: 1, expect: []int{5}},
		{name: "trailing ignored", line: "a,3,junk", n: 1, expect: []int{3}},
		{name: "trailing comma ignored", line: "s,1,2,", n: 2, expect: []int{1, 2}},
		{name: "second hyphen", line: "s,-5-,6", n: 2, expect: []int{-5, 6}},
		{name: "hyphen after digits", line: "a,7-", n: 1, expect: []int{-7}},
		{name: "stops at NUL", line: "a,4\x00,9", n: 1, expect: []int{4}},
		{name: "wraps at 16 bits", line: "a,32768", n: 1, expect: []int{-32768}},
		{name: "no args", line: "i", n: 0, expect: []int{}},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			args, err := ParseArgs([]byte(tc.line), tc.n)
			require.NoError(t, err)
			require.Equal(t, tc.expect, args)
		})
	}
}

func TestParseArgsMalformed(t *testing.T) {
	testCases := []struct {
		name string
		line string
		n    int
	}{
		{name: "no separator slot", line: "a7", n: 1},
		{name: "empty", line: "", n: 1},
		{name: "opcode only", line: "s", n: 2},
		{name: "too few", line: "s,5", n: 2},
		{name: "empty field", line: "s,,5", n: 2},
		{name: "leading comma", line: "a,,5", n: 1},
		{name: "letters", line: "s,abc,5", n: 2},
		{name: "space", line: "s, 5,5", n: 2},
		{name: "sign only", line: "a,-", n: 1},
		{name: "plus sign", line: "a,+5", n: 1},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			args, err := ParseArgs([]byte(tc.line), tc.n)
			require.Error(t, err)
			require.True(t, errors.Is(err, ErrMalformed))
			require.Nil(t, args)
		})
	}
}

func TestParse(t *testing.T) {
	cmd, err := Parse([]byte("s,10,-20"))
	require.NoError(t, err)
	require.Equal(t, &Command{Opcode: OpSetSpeed, Args: []int{10, -20}}, cmd)
	require.Equal(t, "s,10,-20", cmd.String())

	cmd, err = Parse(nil)
	require.NoError(t, err)
	require.Equal(t, OpPing, cmd.Opcode)
	require.Equal(t, "<ping>", cmd.String())

	cmd, err = Parse([]byte("x,1"))
	require.Equal(t, ErrUnknownOpcode, err)
	require.Equal(t, byte('x'), cmd.Opcode)

	_, err = Parse([]byte("a"))
	require.True(t, errors.Is(err, ErrMalformed))
}

func TestLineOpcode(t *testing.T) {
	require.Equal(t, OpPing, Line{}.Opcode())
	require.Equal(t, OpPing, Line{Data: []byte{0}}.Opcode())
	require.Equal(t, OpIdentify, Line{Data: []byte("i")}.Opcode())
}
