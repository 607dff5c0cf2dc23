package payment

import "net/http"

// UpdateSettingsRequest represents a partial settings update. Nil fields
// are left untouched; empty strings clear the stored value. The QR code
// image arrives as a multipart file, not in this struct.
type UpdateSettingsRequest struct {
	UPIID       *string `json:"upiId,omitempty"`
	PhoneNumber *string `json:"phoneNumber,omitempty"`
	BankName    *string `json:"bankName,omitempty"`
}

// parseUpdateForm builds an UpdateSettingsRequest from multipart form
// fields. Absent fields stay nil so they do not clobber stored values.
func parseUpdateForm(r *http.Request) *UpdateSettingsRequest {
	req := &UpdateSettingsRequest{}
	if r.Form.Has("upiId") {
		v := r.FormValue("upiId")
		req.UPIID = &v
	}
	if r.Form.Has("phoneNumber") {
		v := r.FormValue("phoneNumber")
		req.PhoneNumber = &v
	}
	if r.Form.Has("bankName") {
		v := r.FormValue("bankName")
		req.BankName = &v
	}
	return req
}
