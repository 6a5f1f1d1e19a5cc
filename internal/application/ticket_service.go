package application

import (
	"bytes"
	"context"
	"fmt"

	"github.com/phpdave11/gofpdf"

	"github.com/sanosuguru/go-bus-ticket-booking/internal/domain/booking"
)

// TicketService は予約から乗車券PDFを生成する
type TicketService struct {
	bookingRepo booking.Repository
}

func NewTicketService(br booking.Repository) *TicketService {
	return &TicketService{bookingRepo: br}
}

// RenderTicket は予約の乗車券PDFを生成しバイト列とファイル名を返す
func (s *TicketService) RenderTicket(ctx context.Context, bookingID string) ([]byte, string, error) {
	ticket, err := s.bookingRepo.GetTicket(ctx, bookingID)
	if err != nil {
		return nil, "", err
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Bus Ticket", false)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 18)
	pdf.Cell(0, 10, "BUS TICKET")
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "", 11)
	pdf.Cell(0, 7, fmt.Sprintf("Booking ID   : %s", ticket.BookingID))
	pdf.Ln(7)
	pdf.Cell(0, 7, fmt.Sprintf("Booking Date : %s", ticket.BookingDate.Format("2006-01-02 15:04")))
	pdf.Ln(7)
	pdf.Cell(0, 7, fmt.Sprintf("Status       : %s", ticket.Status))
	pdf.Ln(10)

	for i, item := range ticket.Items {
		pdf.SetFont("Helvetica", "B", 12)
		pdf.Cell(0, 7, fmt.Sprintf("Passenger %d", i+1))
		pdf.Ln(8)

		pdf.SetFont("Helvetica", "", 11)
		lines := []string{
			fmt.Sprintf("Name      : %s", item.CustomerName),
			fmt.Sprintf("Route     : %s -> %s", item.StartLocation, item.EndLocation),
			fmt.Sprintf("Bus       : %s", item.BusNumber),
			fmt.Sprintf("Seat      : %s", item.SeatNumber),
			fmt.Sprintf("Departure : %s", item.DepartureTime.Format("2006-01-02 15:04")),
			fmt.Sprintf("Fare      : %s (tax %s)", item.TicketPrice.StringFixed(2), item.TicketTax.StringFixed(2)),
		}
		for _, l := range lines {
			pdf.Cell(0, 6, l)
			pdf.Ln(6)
		}
		pdf.Ln(4)
	}

	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 8, fmt.Sprintf("Total: %s (tax %s)", ticket.TotalAmount.StringFixed(2), ticket.TotalTax.StringFixed(2)))
	pdf.Ln(8)

	if ticket.Status == booking.StatusCancelled && ticket.RefundAmount != nil {
		pdf.SetFont("Helvetica", "I", 11)
		pdf.Cell(0, 7, fmt.Sprintf("Cancelled - refund: %s", ticket.RefundAmount.StringFixed(2)))
		pdf.Ln(7)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, "", fmt.Errorf("PDF生成に失敗: %w", err)
	}
	filename := fmt.Sprintf("ticket_%s.pdf", ticket.BookingID)
	return buf.Bytes(), filename, nil
}
