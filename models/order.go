package models

import "time"

// ShippingDetails is the checkout shipping form
type ShippingDetails struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	Address   string `json:"address"`
	City      string `json:"city"`
	State     string `json:"state"`
	ZipCode   string `json:"zipCode"`
	Country   string `json:"country"`
}

// Order is the client-parity order receipt written after checkout. There
// is no server-side order ledger: the receipt is stored under the
// session's lastOrder key for the confirmation page only.
type Order struct {
	OrderID      string          `json:"orderId"`
	Items        []CartItem      `json:"items"`
	Shipping     ShippingDetails `json:"shipping"`
	Subtotal     float64         `json:"subtotal"`
	ShippingFee  float64         `json:"shippingFee"`
	ExpeditedFee float64         `json:"expeditedFee"`
	Total        float64         `json:"total"`
	Date         time.Time       `json:"date"`
}
