package types

import "strconv"

// UIN is a numeric account identifier on the messaging service.
type UIN int64

// String returns the decimal form of the account number.
func (u UIN) String() string { return strconv.FormatInt(int64(u), 10) }

// GroupCode identifies a group on the messaging service.
type GroupCode int64

// String returns the decimal form of the group code.
func (g GroupCode) String() string { return strconv.FormatInt(int64(g), 10) }

// Fingerprint is a short identifier for public keys presented to users.
type Fingerprint string

// String returns the string form of the fingerprint.
func (f Fingerprint) String() string { return string(f) }
