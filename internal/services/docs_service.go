package services

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/phpdave11/gofpdf"
	"github.com/skip2/go-qrcode"

	"tourdesk/internal/domain"
	"tourdesk/internal/domain/models"
	"tourdesk/internal/utils"
	"tourdesk/internal/wizard"
)

// BookingReader is what the confirmation document needs from the tour backend.
type BookingReader interface {
	GetBooking(ctx context.Context, id int64) (models.Booking, error)
	GetPlan(ctx context.Context, id int64) (models.TourPlan, error)
	ListDates(ctx context.Context, tourID int64) ([]models.TourDate, error)
	ListTimeSlots(ctx context.Context, dateID int64) ([]models.TourTimeSlot, error)
}

// DocsService renders the booking confirmation PDF.
type DocsService struct {
	Tours  BookingReader
	Now    func() time.Time
	Loader func(ctx context.Context, bookingID int64) (confirmationData, error)
}

type confirmationData struct {
	BookingID  int64
	Status     string
	Customer   models.CustomerInfo
	TourTitle  string
	Date       string
	StartTime  string
	EndTime    string
	Quote      wizard.PriceQuote
	TotalPrice string
	Travelers  []models.TravelerDetail
}

func (s DocsService) GenerateConfirmation(ctx context.Context, bookingID int64) ([]byte, string, error) {
	data, err := s.load(ctx, bookingID)
	if err != nil {
		return nil, "", err
	}
	utils.LogEventf(utils.RequestIDFrom(ctx), "docs", "generate_confirmation", "booking_id=%d", bookingID)
	return buildConfirmationPDF(data, s.now())
}

func (s DocsService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s DocsService) load(ctx context.Context, bookingID int64) (confirmationData, error) {
	if s.Loader != nil {
		return s.Loader(ctx, bookingID)
	}
	if s.Tours == nil {
		return confirmationData{}, domain.InternalError{Msg: "tour backend not configured"}
	}
	b, err := s.Tours.GetBooking(ctx, bookingID)
	if err != nil {
		return confirmationData{}, err
	}
	out := confirmationData{
		BookingID:  b.ID,
		Status:     string(b.Status),
		Customer:   b.Customer(),
		TotalPrice: b.TotalPrice.String(),
		Travelers:  b.TravelerDetails,
	}
	if len(b.Items) == 0 {
		return out, nil
	}
	item := b.Items[0]
	plan, err := s.Tours.GetPlan(ctx, item.TourPlan)
	if err != nil {
		return confirmationData{}, err
	}
	out.TourTitle = plan.Title
	out.Quote = wizard.Quote(item.Counts, plan)

	// schedule details are best effort; the document is still useful without them
	dates, err := s.Tours.ListDates(ctx, plan.ID)
	if err != nil {
		return out, nil
	}
	for _, d := range dates {
		slots, err := s.Tours.ListTimeSlots(ctx, d.ID)
		if err != nil {
			continue
		}
		for _, sl := range slots {
			if sl.ID == item.TimeSlot {
				out.Date, _ = utils.DateOnly(d.Date)
				out.StartTime = utils.TimeHM(sl.StartTime)
				out.EndTime = utils.TimeHM(sl.EndTime)
				return out, nil
			}
		}
	}
	return out, nil
}

func confirmationCode(id int64) string {
	return fmt.Sprintf("TD-%06d", id)
}

func buildConfirmationPDF(d confirmationData, now time.Time) ([]byte, string, error) {
	code := confirmationCode(d.BookingID)
	qrPNG, err := qrcode.Encode(code, qrcode.Medium, 256)
	if err != nil {
		return nil, "", domain.InternalError{Msg: "qr encode failed", Err: err}
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Booking confirmation", false)
	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 18)
	pdf.Cell(0, 10, "BOOKING CONFIRMATION")
	pdf.Ln(12)

	imgOpts := gofpdf.ImageOptions{ImageType: "PNG"}
	pdf.RegisterImageOptionsReader("qr", imgOpts, bytes.NewReader(qrPNG))
	pdf.ImageOptions("qr", 160, 12, 36, 36, false, imgOpts, 0, "")

	pdf.SetFont("Helvetica", "", 12)
	schedule := utils.Fallback(d.Date, "-")
	if d.StartTime != "" {
		schedule += " " + d.StartTime
		if d.EndTime != "" {
			schedule += "-" + d.EndTime
		}
	}
	lines := []string{
		"Reference : " + code,
		"Issued    : " + utils.FormatDateTime(now),
		"Status    : " + utils.Fallback(d.Status, "-"),
		"Tour      : " + utils.Fallback(d.TourTitle, "-"),
		"Schedule  : " + schedule,
		"Customer  : " + utils.Fallback(d.Customer.FullName, "-"),
		"Email     : " + utils.Fallback(d.Customer.Email, "-"),
		"Phone     : " + utils.Fallback(d.Customer.Phone, "-"),
		"Country   : " + utils.Fallback(d.Customer.Country, "-"),
	}
	for _, l := range lines {
		pdf.Cell(0, 7, l)
		pdf.Ln(7)
	}

	pdf.Ln(4)
	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 7, "Price breakdown")
	pdf.Ln(8)
	pdf.SetFont("Helvetica", "", 11)
	for _, l := range d.Quote.Lines {
		pdf.CellFormat(90, 6, l.Category.Label(), "", 0, "L", false, 0, "")
		pdf.CellFormat(30, 6, fmt.Sprintf("%d x %s", l.Count, utils.FormatMoney(l.UnitPrice)), "", 0, "R", false, 0, "")
		pdf.CellFormat(40, 6, utils.FormatEuro(l.Amount), "", 1, "R", false, 0, "")
	}
	pdf.SetFont("Helvetica", "B", 12)
	total := utils.FormatEuro(d.Quote.Total)
	if d.TotalPrice != "" {
		if backendTotal, err := utils.ParseMoney(d.TotalPrice); err == nil && !backendTotal.IsZero() {
			total = utils.FormatEuro(backendTotal)
		}
	}
	pdf.CellFormat(160, 8, "Total: "+total, "", 1, "R", false, 0, "")
	pdf.Ln(4)

	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 7, fmt.Sprintf("Travelers (%d)", len(d.Travelers)))
	pdf.Ln(8)
	pdf.SetFont("Helvetica", "", 11)
	for i, t := range d.Travelers {
		line := fmt.Sprintf("%d) %s", i+1, utils.Fallback(t.Name, "-"))
		if t.Email != "" {
			line += " <" + t.Email + ">"
		}
		pdf.Cell(0, 6, line)
		pdf.Ln(6)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, "", err
	}
	filename := fmt.Sprintf("CONFIRMATION_%d_%s.pdf", d.BookingID, utils.SafeFilenamePart(d.Customer.FullName))
	return buf.Bytes(), filename, nil
}
