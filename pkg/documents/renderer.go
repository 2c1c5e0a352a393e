package documents

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"html/template"
	"os"
	"strings"
	"time"

	"hotelops/pkg/dates"
	"hotelops/pkg/model"

	"github.com/yeqown/go-qrcode"
)

const hotelName = "HotelOps"

var funcs = template.FuncMap{
	"day":   dates.Format,
	"money": formatAmount,
	"upper": strings.ToUpper,
}

var (
	confirmationTmpl = template.Must(template.New("confirmation").Funcs(funcs).Parse(`<!DOCTYPE html>
<html><head><meta charset="utf-8"><title>Booking {{.Booking.BookingNumber}}</title></head>
<body>
<h1>{{.Hotel}} booking confirmation</h1>
<p>Booking number: <strong>{{.Booking.BookingNumber}}</strong></p>
<p>Room {{.Room.Number}}, {{day .Booking.StartDate}} to {{day .Booking.EndDate}} ({{.Booking.Nights}} nights)</p>
<p>Payment: {{.Booking.PaymentMethod}}{{if .Booking.CheckoutURL}}, <a href="{{.Booking.CheckoutURL}}">pay online</a>{{end}}</p>
<p>Total: {{money .Booking.TotalAmount .Booking.Currency}}</p>
<img alt="{{.Booking.BookingNumber}}" src="{{.QRCode}}">
</body></html>
`))

	invoiceTmpl = template.Must(template.New("invoice").Funcs(funcs).Parse(`<!DOCTYPE html>
<html><head><meta charset="utf-8"><title>Invoice {{.Booking.BookingNumber}}</title></head>
<body>
<h1>{{.Hotel}} invoice</h1>
<p>Invoice for booking {{.Booking.BookingNumber}}, issued {{.Issued}}</p>
<p>Billed to: {{.Booking.OwnerEmail}}</p>
<table>
<tr><th>Item</th><th>Nights</th><th>Unit price</th><th>Amount</th></tr>
<tr><td>Room {{.Room.Number}}</td><td>{{.Booking.Nights}}</td><td>{{money .Room.PricePerNight .Booking.Currency}}</td><td>{{money .Booking.TotalAmount .Booking.Currency}}</td></tr>
</table>
<p>Status: {{if .Booking.Paid}}paid{{else}}due{{end}}</p>
</body></html>
`))

	cancellationTmpl = template.Must(template.New("cancellation").Funcs(funcs).Parse(`<!DOCTYPE html>
<html><head><meta charset="utf-8"><title>Cancellation {{.Booking.BookingNumber}}</title></head>
<body>
<h1>{{.Hotel}} cancellation notice</h1>
<p>Booking {{.Booking.BookingNumber}} for room {{.Room.Number}} ({{day .Booking.StartDate}} to {{day .Booking.EndDate}}) was cancelled on {{.Cancelled}}.</p>
{{if .Booking.Paid}}<p>A refund of {{money .Booking.TotalAmount .Booking.Currency}} has been requested.</p>{{end}}
</body></html>
`))
)

type view struct {
	Hotel     string
	Booking   *model.Booking
	Room      *model.Room
	QRCode    template.URL
	Issued    string
	Cancelled string
}

type htmlRenderer struct {
	now func() time.Time
}

func NewHTMLRenderer() Renderer {
	return &htmlRenderer{now: time.Now}
}

func (r *htmlRenderer) RenderBookingConfirmation(booking *model.Booking, room *model.Room) (*Document, error) {
	qr, err := qrDataURI(booking.BookingNumber)
	if err != nil {
		return nil, fmt.Errorf("generate qr code: %w", err)
	}
	return r.render(confirmationTmpl, TypeConfirmation, view{Booking: booking, Room: room, QRCode: qr})
}

func (r *htmlRenderer) RenderInvoice(booking *model.Booking, room *model.Room) (*Document, error) {
	return r.render(invoiceTmpl, TypeInvoice, view{
		Booking: booking,
		Room:    room,
		Issued:  r.now().UTC().Format(dates.Layout),
	})
}

func (r *htmlRenderer) RenderCancellationNotice(booking *model.Booking, room *model.Room) (*Document, error) {
	cancelled := r.now().UTC()
	if booking.CancellationDate != nil {
		cancelled = booking.CancellationDate.UTC()
	}
	return r.render(cancellationTmpl, TypeCancellation, view{
		Booking:   booking,
		Room:      room,
		Cancelled: cancelled.Format(dates.Layout),
	})
}

func (r *htmlRenderer) render(tmpl *template.Template, docType Type, v view) (*Document, error) {
	if v.Booking == nil || v.Room == nil {
		return nil, fmt.Errorf("render %s: booking and room are required", docType)
	}
	v.Hotel = hotelName

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, v); err != nil {
		return nil, fmt.Errorf("render %s: %w", docType, err)
	}

	return &Document{
		Type:        docType,
		Name:        fmt.Sprintf("%s-%s.html", v.Booking.BookingNumber, docType),
		ContentType: ContentTypeHTML,
		Content:     buf.Bytes(),
	}, nil
}

// qrDataURI encodes text as a JPEG QR code embedded in a data URI.
func qrDataURI(text string) (template.URL, error) {
	qrc, err := qrcode.New(text)
	if err != nil {
		return "", err
	}

	f, err := os.CreateTemp("", "booking-qr-*.jpeg")
	if err != nil {
		return "", err
	}
	path := f.Name()
	_ = f.Close()
	defer os.Remove(path)

	if err := qrc.Save(path); err != nil {
		return "", err
	}
	img, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}

	return template.URL("data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(img)), nil
}

func formatAmount(minor int64, currency string) string {
	sign := ""
	if minor < 0 {
		sign = "-"
		minor = -minor
	}
	return fmt.Sprintf("%s%d.%02d %s", sign, minor/100, minor%100, strings.ToUpper(currency))
}
