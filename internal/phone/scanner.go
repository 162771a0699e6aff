// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package phone

import "sort"

const (
	// MaxInputSize is the largest buffer Extract will scan. Larger inputs
	// yield no matches.
	MaxInputSize = 10 << 20

	// MaxCandidateLength caps the bytes a single candidate may span.
	MaxCandidateLength = 30

	// MinDigits is the fewest digits an international number may carry. It
	// is also the shortest input worth scanning.
	MinDigits = 7

	// MaxDigits is the most digits an international number may carry.
	MaxDigits = 15
)

// Scanner extracts phone numbers from byte buffers. It holds no state, so a
// single value may be shared by any number of goroutines.
type Scanner struct{}

// NewScanner returns a ready to use Scanner.
func NewScanner() *Scanner {
	return &Scanner{}
}

var defaultScanner Scanner

// Extract runs the default scanner over text.
func Extract(text []byte) []Match {
	return defaultScanner.Extract(text)
}

// Extract returns the phone numbers in text ordered by offset. Matches never
// overlap. Inputs shorter than MinDigits or longer than MaxInputSize produce
// no matches. text is never modified.
func (s *Scanner) Extract(text []byte) []Match {
	if len(text) > MaxInputSize || len(text) < MinDigits {
		return nil
	}

	candidates := make([]Match, 0, 16)
	candidates = scanInternational(text, candidates)
	candidates = scanFormatted(text, candidates)
	candidates = scanPlainDigits(text, candidates)

	return mergeCandidates(candidates)
}

// scanInternational finds '+' prefixed numbers. A '+' must be followed by a
// digit; separators and '(' are only taken when another digit or '(' comes
// next, while ')' is taken after any digit.
func scanInternational(text []byte, out []Match) []Match {
	n := len(text)
	for i := 0; i < n; i++ {
		if !IsPlus(text[i]) || i+1 >= n || !IsDigit(text[i+1]) {
			continue
		}

		start := i
		end := i + 1
		digits := 0
	extend:
		for end < n && end-start < MaxCandidateLength {
			c := text[end]
			switch {
			case IsDigit(c):
				digits++
			case c == ')' && digits > 0:
			case IsSeparator(c) && digits > 0 && end+1 < n &&
				(IsDigit(text[end+1]) || text[end+1] == '('):
			default:
				break extend
			}
			end++
		}

		if digits >= MinDigits && digits <= MaxDigits {
			out = append(out, newMatch(InternationalPlus, text, start, end))
			i = end - 1
		}
	}
	return out
}

// scanFormatted finds separated ten and eleven digit numbers: the
// "(DDD) DDD-DDDD" shape and runs that reuse a single separator byte.
func scanFormatted(text []byte, out []Match) []Match {
	n := len(text)
	for i := 0; i < n; i++ {
		if text[i] == '(' {
			if end, ok := parenthesizedAreaCode(text, i); ok {
				out = append(out, newMatch(FormattedDomestic, text, i, end))
				i = end - 1
				continue
			}
		}

		if IsDigit(text[i]) && (i == 0 || !IsDigit(text[i-1])) {
			if category, end, ok := separatedRun(text, i); ok {
				out = append(out, newMatch(category, text, i, end))
				i = end - 1
			}
		}
	}
	return out
}

// parenthesizedAreaCode matches "(DDD) " or "(DDD)-" at start followed by
// seven digits. One separator byte, always the same one, may sit between two
// of those digits. It returns the end offset of the number.
func parenthesizedAreaCode(text []byte, start int) (int, bool) {
	n := len(text)
	if start+6 > n {
		return 0, false
	}
	if !IsDigit(text[start+1]) || !IsDigit(text[start+2]) || !IsDigit(text[start+3]) ||
		text[start+4] != ')' || (text[start+5] != ' ' && text[start+5] != '-') {
		return 0, false
	}

	end := start + 6
	digits := 0
	var sep byte
	for end < n && digits < 7 && end-start < MaxCandidateLength {
		c := text[end]
		if IsDigit(c) {
			digits++
			end++
			continue
		}
		if digits > 0 && IsSeparator(c) && (sep == 0 || c == sep) &&
			end+1 < n && IsDigit(text[end+1]) {
			sep = c
			end++
			continue
		}
		break
	}

	if digits != 7 || !IsFormattedDomestic(text[start:end]) {
		return 0, false
	}
	return end, true
}

// separatedRun extends a digit run that starts at start through single
// '-', '.' or ' ' separators. The first separator seen fixes the byte for
// the rest of the run. Runs without a separator, or without 10 or 11 digits,
// are rejected.
func separatedRun(text []byte, start int) (Category, int, bool) {
	n := len(text)
	end := start
	digits := 0
	var sep byte

	for end < n && end-start < MaxCandidateLength {
		c := text[end]
		if IsDigit(c) {
			digits++
			end++
			continue
		}
		if (c == '-' || c == '.' || c == ' ') && digits < 11 &&
			end+1 < n && IsDigit(text[end+1]) {
			if sep == 0 {
				sep = c
			}
			if c == sep {
				end++
				continue
			}
		}
		break
	}

	if sep == 0 || digits < 10 || digits > 11 {
		return Unknown, 0, false
	}

	d := ExtractDigits(text[start:end])
	switch {
	case digits == 10 && sep == ' ' && d[0] != '0':
		return Mobile10Digit, end, true
	case digits == 10 && d[0] != '0' && d[3] >= '2':
		return FormattedDomestic, end, true
	case digits == 11 && d[0] == '1' && d[1] != '0':
		return FormattedTollFree, end, true
	default:
		return Unknown, 0, false
	}
}

// scanPlainDigits classifies maximal unseparated digit runs of length 10
// and 11.
func scanPlainDigits(text []byte, out []Match) []Match {
	n := len(text)
	for i := 0; i < n; i++ {
		if !IsDigit(text[i]) || (i > 0 && IsDigit(text[i-1])) {
			continue
		}

		start := i
		end := i
		for end < n && IsDigit(text[end]) {
			end++
		}

		if category, ok := classifyPlainRun(text[start:end]); ok {
			out = append(out, newMatch(category, text, start, end))
		}
		i = end
	}
	return out
}

func classifyPlainRun(run []byte) (Category, bool) {
	switch len(run) {
	case 10:
		switch {
		case run[0] >= '6' && run[0] <= '9':
			return Mobile10Digit, true
		case run[0] >= '2' && run[0] <= '5' && run[3] >= '2':
			return Plain10Digit, true
		case run[0] == '1':
			return Mobile10Digit, true
		}
	case 11:
		if run[0] == '1' && run[1] != '0' {
			return Plain11Digit, true
		}
	}
	return Unknown, false
}

// mergeCandidates orders candidates by offset and drops any that overlap an
// earlier kept match. Candidates sharing an offset keep pass order, so the
// more specific pass wins.
func mergeCandidates(candidates []Match) []Match {
	if len(candidates) == 0 {
		return nil
	}

	sort.SliceStable(candidates, func(a, b int) bool {
		return candidates[a].Offset < candidates[b].Offset
	})

	result := make([]Match, 0, len(candidates))
	lastEnd := 0
	for _, m := range candidates {
		if m.Offset >= lastEnd {
			result = append(result, m)
			lastEnd = m.End()
		}
	}
	return result
}

func newMatch(category Category, text []byte, start, end int) Match {
	raw := make([]byte, end-start)
	copy(raw, text[start:end])
	return Match{
		Category: category,
		Raw:      raw,
		Digits:   ExtractDigits(raw),
		Offset:   start,
	}
}
