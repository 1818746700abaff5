package analytics

import (
	"encoding/csv"
	"io"
	"strconv"

	"github.com/prizejet/prizejet/internal/domain"
)

// csvHeader matches the dashboard export column order.
var csvHeader = []string{"Name", "Email", "Points", "Referrer", "Date Joined", "IP Address"}

// WriteCSV materializes the entry collection as a CSV export. Referrer is
// reported as Yes/No; dates use "2006-01-02 15:04:05".
func WriteCSV(w io.Writer, entries []domain.Entry) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}
	for i := range entries {
		e := &entries[i]
		referrer := "No"
		if e.IsReferred() {
			referrer = "Yes"
		}
		rec := []string{
			e.Name,
			e.Email,
			strconv.Itoa(e.Points),
			referrer,
			e.CreatedAt.Format("2006-01-02 15:04:05"),
			e.IPAddress,
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
