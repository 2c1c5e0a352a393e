package sanitizer

import "hotelops/pkg/model"

// SanitizeProfile normalizes a guest profile in place.
func SanitizeProfile(p *model.GuestProfile) {
	p.FirstName = NormalizeName(p.FirstName)
	p.LastName = NormalizeName(p.LastName)
	p.Nationality = NormalizeCountryCode(p.Nationality)
	p.DocumentType = NormalizeLabel(p.DocumentType)
	p.DocumentNumber = NormalizeDocumentNumber(p.DocumentNumber)
	p.Phone = NormalizePhone(p.Phone)
	p.Address = TrimAndNormalize(p.Address)
}

func SanitizeCheckInRequest(req *model.CheckInRequest) {
	req.BookingID = TrimAndNormalize(req.BookingID)
	req.GuestEmail = NormalizeEmail(req.GuestEmail)
	SanitizeProfile(&req.Profile)
}
