package payment

import "time"

// Settings holds a user's payment collection details: how other trip
// members can pay them back. All string fields default to empty until the
// user fills them in.
type Settings struct {
	UserID      string    `json:"userId"`
	UPIID       string    `json:"upiId"`
	PhoneNumber string    `json:"phoneNumber"`
	BankName    string    `json:"bankName"`
	QRCodeURL   string    `json:"qrCodeUrl"`
	UpdatedAt   time.Time `json:"updatedAt"`
}
