// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package phone

// Match is a single phone number found in a buffer.
//
// Raw is the exact byte range text[Offset:Offset+len(Raw)] and Digits is its
// digit-only projection. Both are owned by the match; neither aliases the
// scanned buffer.
type Match struct {
	Category Category
	Raw      []byte
	Digits   []byte
	Offset   int
}

// End returns the offset one past the last byte of the match.
func (m Match) End() int {
	return m.Offset + len(m.Raw)
}
