package billing

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Invoice numbers follow INV-YYYYMMDD-NNNN: local date at generation time plus
// a 4-digit zero-padded daily sequence starting at 0001. The format is a
// compatibility contract with existing records and must stay bit-exact.

// numberPrefix returns the day prefix, e.g. "INV-20240115-".
func numberPrefix(day time.Time) string {
	return "INV-" + day.Format("20060102") + "-"
}

// formatNumber builds the full number for a day and sequence.
func formatNumber(day time.Time, seq int) string {
	return fmt.Sprintf("%s%04d", numberPrefix(day), seq)
}

// sequenceOf extracts the trailing sequence from an existing number.
// Returns 0 for "" (no invoices yet today).
func sequenceOf(number string) (int, error) {
	if number == "" {
		return 0, nil
	}
	idx := strings.LastIndex(number, "-")
	if idx < 0 || idx == len(number)-1 {
		return 0, fmt.Errorf("malformed invoice number %q", number)
	}
	seq, err := strconv.Atoi(number[idx+1:])
	if err != nil {
		return 0, fmt.Errorf("malformed invoice number %q: %w", number, err)
	}
	return seq, nil
}
