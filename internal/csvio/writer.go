package csvio

import (
	"encoding/csv"
	"fmt"
	"io"
	"sort"
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/example/payments-engine/internal/model"
)

var outputHeader = []string{"client", "available", "held", "total", "locked"}

// WriteAccounts serializes the final balances as CSV, one row per client in
// ascending client id order. Rounding to 4 decimal places happens here only;
// internal arithmetic keeps full precision.
func WriteAccounts(w io.Writer, accounts []model.Account) error {
	sorted := make([]model.Account, len(accounts))
	copy(sorted, accounts)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Client < sorted[j].Client
	})

	cw := csv.NewWriter(w)
	if err := cw.Write(outputHeader); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for _, account := range sorted {
		row := []string{
			strconv.FormatUint(uint64(account.Client), 10),
			formatAmount(account.Available),
			formatAmount(account.Held),
			formatAmount(account.Total),
			strconv.FormatBool(account.Locked),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write client %d: %w", account.Client, err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// formatAmount rounds half away from zero to 4 decimal places.
func formatAmount(v float64) string {
	return decimal.NewFromFloat(v).Round(4).String()
}
