// Package swpturi encodes and decodes Swaptacular "swpt:" URIs.
//
// A debtor URI has the form "swpt:<unsigned 64-bit decimal>". An account
// URI appends "/<accountID>", where accountID is either a string over the
// URL-safe base64 alphabet (used verbatim), or "!" followed by the
// canonical URL-safe base64 encoding of an arbitrary ASCII string.
package swpturi

import (
	"encoding/base64"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/swaptacular/swptlib/core/errors"
	"github.com/swaptacular/swptlib/core/i64"
)

var (
	debtorURI  = regexp.MustCompile(`^swpt:([0-9]{1,20})$`)
	accountURI = regexp.MustCompile(`^swpt:([0-9]{1,20})/(!?[A-Za-z0-9_=-]{1,100})$`)
	urlsafeB64 = regexp.MustCompile(`^[A-Za-z0-9_=-]*$`)
)

func invalid(field, uri string) error {
	return &errors.ValidationError{Field: field, Value: uri, Message: "malformed swpt URI"}
}

// ParseDebtorURI returns the debtor ID encoded in a SWPT debtor URI.
func ParseDebtorURI(uri string) (int64, error) {
	m := debtorURI.FindStringSubmatch(uri)
	if m == nil {
		return 0, invalid("debtorURI", uri)
	}
	value, err := strconv.ParseUint(m[1], 10, 64)
	if err != nil {
		return 0, invalid("debtorURI", uri)
	}
	return i64.FromU64(value), nil
}

// ParseAccountURI returns the (debtor ID, account ID) pair encoded in a
// SWPT account URI.
func ParseAccountURI(uri string) (int64, string, error) {
	m := accountURI.FindStringSubmatch(uri)
	if m == nil {
		return 0, "", invalid("accountURI", uri)
	}
	value, err := strconv.ParseUint(m[1], 10, 64)
	if err != nil {
		return 0, "", invalid("accountURI", uri)
	}
	debtorID := i64.FromU64(value)
	accountID := m[2]

	if strings.HasPrefix(accountID, "!") {
		encoded := accountID[1:]
		decoded, err := base64.URLEncoding.DecodeString(encoded)
		if err != nil {
			return 0, "", invalid("accountURI", uri)
		}
		// Only the canonical encoding is accepted, so every account
		// has exactly one URI.
		if base64.URLEncoding.EncodeToString(decoded) != encoded {
			return 0, "", invalid("accountURI", uri)
		}
		if !isASCII(decoded) {
			return 0, "", invalid("accountURI", uri)
		}
		accountID = string(decoded)
	}
	return debtorID, accountID, nil
}

// MakeDebtorURI returns the SWPT URI for the given debtor ID.
func MakeDebtorURI(debtorID int64) string {
	return fmt.Sprintf("swpt:%d", i64.ToU64(debtorID))
}

// MakeAccountURI returns the SWPT URI for the given debtor ID and
// account ID. Returns an error if the account ID is not ASCII, or is
// empty, or is too long to encode.
func MakeAccountURI(debtorID int64, accountID string) (string, error) {
	var encoded string
	if urlsafeB64.MatchString(accountID) {
		encoded = accountID
	} else {
		if !isASCII([]byte(accountID)) {
			return "", errors.NewValidation("accountID", "not an ASCII string")
		}
		encoded = base64.URLEncoding.EncodeToString([]byte(accountID))
		accountID = "!" + encoded
	}
	if len(encoded) < 1 || len(encoded) > 100 {
		return "", errors.NewValidation("accountID", "encoded length out of range")
	}
	return fmt.Sprintf("swpt:%d/%s", i64.ToU64(debtorID), accountID), nil
}

func isASCII(b []byte) bool {
	for _, c := range b {
		if c > 0x7f {
			return false
		}
	}
	return true
}
