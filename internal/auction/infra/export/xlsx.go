// Package export renders auction data for back-office tooling.
package export

import (
	"fmt"
	"time"

	"github.com/cristianortiz/numismaticMarket/internal/auction/application"
	"github.com/xuri/excelize/v2"
)

const bidSheet = "Bids"

var bidHeader = []interface{}{"Bid ID", "Bidder ID", "Amount", "Max Auto Bid", "Winning", "Placed At (UTC)"}

// BidHistoryWorkbook writes a listing summary row followed by its bids,
// in the order given, and returns the .xlsx bytes.
func BidHistoryWorkbook(listing application.ListingDTO, bids []application.BidDTO) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", bidSheet); err != nil {
		return nil, fmt.Errorf("export: rename sheet: %w", err)
	}

	summary := []interface{}{
		"Listing", listing.ID.String(),
		"Status", listing.Status,
		"Current Price", listing.CurrentPrice.String(),
		"Ends At (UTC)", listing.EndsAt.UTC().Format(time.RFC3339),
	}
	if err := f.SetSheetRow(bidSheet, "A1", &summary); err != nil {
		return nil, fmt.Errorf("export: summary row: %w", err)
	}
	if err := f.SetSheetRow(bidSheet, "A3", &bidHeader); err != nil {
		return nil, fmt.Errorf("export: header row: %w", err)
	}

	for i, b := range bids {
		ceiling := ""
		if b.MaxAutoBid != nil {
			ceiling = b.MaxAutoBid.String()
		}
		// amounts as text: spreadsheets would round them through float64
		row := []interface{}{
			b.ID.String(),
			b.BidderID.String(),
			b.Amount.String(),
			ceiling,
			b.IsWinning,
			b.CreatedAt.UTC().Format(time.RFC3339),
		}
		cell, err := excelize.CoordinatesToCellName(1, i+4)
		if err != nil {
			return nil, err
		}
		if err := f.SetSheetRow(bidSheet, cell, &row); err != nil {
			return nil, fmt.Errorf("export: bid row %d: %w", i, err)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("export: write workbook: %w", err)
	}
	return buf.Bytes(), nil
}
