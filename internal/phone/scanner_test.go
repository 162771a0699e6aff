// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package phone

import (
	"bytes"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type expected struct {
	category Category
	raw      string
}

func TestExtract_Scenarios(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []expected
	}{
		{
			name:  "parenthesized area code in text",
			input: "Call me at (123) 456-7890",
			want:  []expected{{FormattedDomestic, "(123) 456-7890"}},
		},
		{
			name:  "two dashed numbers",
			input: "Contact: 123-456-7890 or 987-654-3210",
			want: []expected{
				{FormattedDomestic, "123-456-7890"},
				{FormattedDomestic, "987-654-3210"},
			},
		},
		{
			name:  "international mobile",
			input: "My number is +91 9876543210",
			want:  []expected{{InternationalPlus, "+91 9876543210"}},
		},
		{
			name:  "international and plain mobile",
			input: "Office: +1 234-567-8900, Mobile: 9876543210",
			want: []expected{
				{InternationalPlus, "+1 234-567-8900"},
				{Mobile10Digit, "9876543210"},
			},
		},
		{
			name:  "mixed formats",
			input: "Support: (234) 567-8900, Sales: +1-345-678-9012, India: +91-9123456789",
			want: []expected{
				{FormattedDomestic, "(234) 567-8900"},
				{InternationalPlus, "+1-345-678-9012"},
				{InternationalPlus, "+91-9123456789"},
			},
		},
		{
			name:  "no numbers",
			input: "No phone numbers here!",
			want:  nil,
		},
		{
			name:  "plain ten digits",
			input: "Plain number: 2345678901",
			want:  []expected{{Plain10Digit, "2345678901"}},
		},
		{
			name:  "plain eleven digits",
			input: "Dial 12345678901 now",
			want:  []expected{{Plain11Digit, "12345678901"}},
		},
		{
			name:  "dotted domestic",
			input: "fax 123.456.7890.",
			want:  []expected{{FormattedDomestic, "123.456.7890"}},
		},
		{
			name:  "dashed toll free",
			input: "Toll free 1-800-555-1234 today",
			want:  []expected{{FormattedTollFree, "1-800-555-1234"}},
		},
		{
			name:  "space separated mobile",
			input: "Number with spaces: 99887 76655",
			want:  []expected{{Mobile10Digit, "99887 76655"}},
		},
		{
			name:  "triple spaced mobile",
			input: "Spaced format: 998 877 6655",
			want:  []expected{{Mobile10Digit, "998 877 6655"}},
		},
		{
			name:  "pair spaced mobile",
			input: "Pair spacing: 99 88 77 66 55",
			want:  []expected{{Mobile10Digit, "99 88 77 66 55"}},
		},
		{
			name:  "single digit spacing",
			input: "Single spacing: 9 9 8 8 7 7 6 6 5 5",
			want:  []expected{{Mobile10Digit, "9 9 8 8 7 7 6 6 5 5"}},
		},
		{
			name:  "international single digit spacing",
			input: "International spaced: +123 9 9 8 8 7 7 6 6 5 5",
			want:  []expected{{InternationalPlus, "+123 9 9 8 8 7 7 6 6 5 5"}},
		},
		{
			name:  "international pairs",
			input: "International pairs: +12 99 88 77 66 55",
			want:  []expected{{InternationalPlus, "+12 99 88 77 66 55"}},
		},
		{
			name:  "international groups",
			input: "International group: +91 998 877 6655",
			want:  []expected{{InternationalPlus, "+91 998 877 6655"}},
		},
		{
			name:  "international with parenthesized area",
			input: "UK office +44 (20) 7946 0958 ext",
			want:  []expected{{InternationalPlus, "+44 (20) 7946 0958"}},
		},
		{
			name:  "ten digit run starting with one",
			input: "id 1234567890 end",
			want:  []expected{{Mobile10Digit, "1234567890"}},
		},
		{
			name:  "mixed separators are not one number",
			input: "ref 234-567.8901 x",
			want:  nil,
		},
		{
			name:  "area code starting with zero",
			input: "call (012) 456-7890",
			want:  nil,
		},
		{
			name:  "dash after parenthesized area code",
			input: "call (234)-567-8900 now",
			want:  []expected{{FormattedDomestic, "(234)-567-8900"}},
		},
		{
			name:  "twelve digit run is ignored",
			input: "order 123456789012 shipped",
			want:  nil,
		},
		{
			name:  "plus without digit",
			input: "a + b = 1234",
			want:  nil,
		},
		{
			name:  "too few international digits",
			input: "code +12 345 x",
			want:  nil,
		},
		{
			name:  "adjacent numbers",
			input: "2345678901,9876543210",
			want: []expected{
				{Plain10Digit, "2345678901"},
				{Mobile10Digit, "9876543210"},
			},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := Extract([]byte(tc.input))
			require.Len(t, got, len(tc.want))
			for i, w := range tc.want {
				assert.Equal(t, w.category, got[i].Category, "category of match %d", i)
				assert.Equal(t, w.raw, string(got[i].Raw), "raw of match %d", i)
			}
			assertInvariants(t, []byte(tc.input), got)
		})
	}
}

func TestExtract_Offsets(t *testing.T) {
	input := []byte("Support: (234) 567-8900, Sales: +1-345-678-9012")
	got := Extract(input)
	require.Len(t, got, 2)
	assert.Equal(t, 9, got[0].Offset)
	assert.Equal(t, bytes.Index(input, []byte("+1-345")), got[1].Offset)
	assert.Equal(t, "2345678900", string(got[0].Digits))
	assert.Equal(t, "13456789012", string(got[1].Digits))
}

func TestExtract_ParenthesizedRejectsSeparatorRun(t *testing.T) {
	// Only one separator byte may sit between the trailing seven digits.
	input := []byte("x (234) 567 - 8900")
	got := Extract(input)
	for _, m := range got {
		assert.NotEqual(t, FormattedDomestic, m.Category, "unexpected match %q", m.Raw)
		assert.NotEqual(t, "(234) 567 - 8900", string(m.Raw))
	}
	assertInvariants(t, input, got)
}

func TestExtract_InputLimits(t *testing.T) {
	t.Run("too short", func(t *testing.T) {
		assert.Empty(t, Extract([]byte("+12345")))
	})

	t.Run("exactly minimum length", func(t *testing.T) {
		got := Extract([]byte("+1234567"))
		require.Len(t, got, 1)
		assert.Equal(t, InternationalPlus, got[0].Category)
	})

	t.Run("over size cap", func(t *testing.T) {
		input := bytes.Repeat([]byte("x"), MaxInputSize+1)
		copy(input, "call 9876543210 now")
		assert.Empty(t, Extract(input))
	})

	t.Run("at size cap", func(t *testing.T) {
		input := bytes.Repeat([]byte("x"), MaxInputSize)
		copy(input, "call 9876543210 now")
		got := Extract(input)
		require.Len(t, got, 1)
		assert.Equal(t, Mobile10Digit, got[0].Category)
	})

	t.Run("nil input", func(t *testing.T) {
		assert.Empty(t, Extract(nil))
	})
}

func TestExtract_CandidateCap(t *testing.T) {
	// The plus candidate stops after MaxCandidateLength bytes, leaving too
	// many digits behind it to matter.
	input := []byte("+1 2 3 4 5 6 7 8 9 0 1 2 3 4 5 6 7 8 9")
	got := Extract(input)
	for _, m := range got {
		assert.LessOrEqual(t, len(m.Raw), MaxCandidateLength)
	}
	assertInvariants(t, input, got)
}

func TestExtract_DoesNotMutateInput(t *testing.T) {
	input := []byte("Office: +1 234-567-8900, Mobile: 9876543210")
	original := append([]byte(nil), input...)
	got := Extract(input)
	require.NotEmpty(t, got)
	assert.Equal(t, original, input)

	// Matches own their bytes.
	got[0].Raw[0] = 'X'
	assert.Equal(t, original, input)
}

func TestExtract_NoDigits(t *testing.T) {
	inputs := []string{
		"No phone numbers here!",
		"(((---...   )))+++",
		"\t\t\t\t\t\t\t\t",
		"héllo wörld ünïcode",
	}
	for _, in := range inputs {
		assert.Empty(t, Extract([]byte(in)), in)
	}
}

func TestExtract_RoundTrip(t *testing.T) {
	inputs := []string{
		"Support: (234) 567-8900, Sales: +1-345-678-9012, India: +91-9123456789",
		"Number with spaces: 99887 76655 and 1-800-555-1234",
		"Plain 2345678901 and 12345678901 and 1234567890",
		"+44 (20) 7946 0958 or 123.456.7890",
	}
	for _, in := range inputs {
		for _, m := range Extract([]byte(in)) {
			if len(m.Raw) < MinDigits {
				continue
			}
			again := Extract(m.Raw)
			require.Len(t, again, 1, "re-extracting %q", m.Raw)
			assert.Equal(t, m.Category, again[0].Category, "re-extracting %q", m.Raw)
			assert.Equal(t, 0, again[0].Offset)
		}
	}
}

func TestExtract_RandomInvariants(t *testing.T) {
	alphabet := []byte("0123456789012345678901234567890123456789 -.()+\tabc,\n")
	rng := rand.New(rand.NewSource(42))

	for iter := 0; iter < 2000; iter++ {
		buf := make([]byte, 7+rng.Intn(120))
		for i := range buf {
			buf[i] = alphabet[rng.Intn(len(alphabet))]
		}

		got := Extract(buf)
		assertInvariants(t, buf, got)

		for _, m := range got {
			if len(m.Raw) < MinDigits {
				continue
			}
			again := Extract(m.Raw)
			if assert.Len(t, again, 1, "re-extracting %q from %q", m.Raw, buf) {
				assert.Equal(t, m.Category, again[0].Category, "re-extracting %q from %q", m.Raw, buf)
				assert.Equal(t, 0, again[0].Offset)
			}
		}
	}
}

func TestScanner_ConcurrentUse(t *testing.T) {
	s := NewScanner()
	input := []byte("Office: +1 234-567-8900, Mobile: 9876543210")
	want := s.Extract(input)

	done := make(chan []Match)
	for i := 0; i < 8; i++ {
		go func() {
			done <- s.Extract(input)
		}()
	}
	for i := 0; i < 8; i++ {
		assert.Equal(t, want, <-done)
	}
}

// assertInvariants checks ordering, non-overlap, locality, digit projection
// and category soundness of a result.
func assertInvariants(t *testing.T, text []byte, matches []Match) {
	t.Helper()
	lastEnd := 0
	for i, m := range matches {
		require.GreaterOrEqual(t, m.Offset, lastEnd, "match %d overlaps or is out of order in %q", i, text)
		require.LessOrEqual(t, m.End(), len(text))
		assert.Equal(t, text[m.Offset:m.End()], m.Raw, "locality of match %d", i)
		assert.Equal(t, ExtractDigits(m.Raw), m.Digits, "digit projection of match %d", i)
		assert.True(t, Validate(m.Category, m.Raw), "%s validator rejects %q", m.Category, m.Raw)
		lastEnd = m.End()
	}
}
