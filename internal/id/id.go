// Package id defines the display-transaction id scheme. Transactions
// that exist in the ledger carry their numeric ledger id; statement
// lines that are not persisted yet get a deterministic synthetic id
// derived from their position and content, so re-parsing the same
// file yields the same ids.
package id

import (
	"crypto/md5"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

const statementPrefix = "stmt:"

// FromLedger formats a ledger transaction id.
func FromLedger(id int64) string {
	return strconv.FormatInt(id, 10)
}

// FromStatementLine builds a synthetic id like "stmt:3:9e107d9d..."
// for the idx-th statement line. The line is hashed through its JSON
// form so any field change produces a fresh id.
func FromStatementLine(idx int, line any) string {
	raw, err := json.Marshal(line)
	if err != nil {
		// Statement lines are plain data; this cannot happen.
		panic(fmt.Sprintf("marshaling statement line: %v", err))
	}
	return fmt.Sprintf("%s%d:%x", statementPrefix, idx, md5.Sum(raw))
}

// IsLedger reports whether the id refers to a persisted ledger
// transaction.
func IsLedger(id string) bool {
	_, err := ParseLedger(id)
	return err == nil
}

// ParseLedger extracts the numeric ledger id, failing on synthetic
// statement-line ids.
func ParseLedger(id string) (int64, error) {
	if strings.HasPrefix(id, statementPrefix) {
		return 0, fmt.Errorf("not a ledger id: %q", id)
	}
	n, err := strconv.ParseInt(id, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid ledger id %q: %w", id, err)
	}
	return n, nil
}
