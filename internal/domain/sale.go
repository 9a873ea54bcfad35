package domain

import "time"

type Sale struct {
	ID              string     `json:"id"`
	ReceiptNumber   string     `json:"receiptNumber"`
	CustomerID      *string    `json:"customerId,omitempty"`
	SubtotalCents   int64      `json:"subtotalCents"`
	DiscountPercent float64    `json:"discountPercent"`
	DiscountCents   int64      `json:"discountCents"`
	TaxPercent      float64    `json:"taxPercent"`
	TaxCents        int64      `json:"taxCents"`
	TotalCents      int64      `json:"totalCents"`
	Status          string     `json:"status"`
	CreatedAt       time.Time  `json:"createdAt"`
	Items           []SaleItem `json:"items,omitempty"`
}

type SaleItem struct {
	ID             string `json:"id"`
	SaleID         string `json:"saleId"`
	ProductID      string `json:"productId"`
	ProductName    string `json:"productName"`
	Quantity       int    `json:"quantity"`
	UnitPriceCents int64  `json:"unitPriceCents"`
	TotalCents     int64  `json:"totalCents"`
}

// Receipt is the printable view of a completed sale, assembled from the
// sale, its items and the payment row.
type Receipt struct {
	ReceiptNumber string        `json:"receiptNumber"`
	CreatedAt     time.Time     `json:"date"`
	Customer      *Customer     `json:"customer,omitempty"`
	Items         []ReceiptLine `json:"items"`
	SubtotalCents int64         `json:"subtotalCents"`
	DiscountCents int64         `json:"discountCents"`
	TaxCents      int64         `json:"taxCents"`
	TotalCents    int64         `json:"totalCents"`
	Payment       ReceiptPay    `json:"payment"`
}

type ReceiptLine struct {
	Name           string `json:"name"`
	Quantity       int    `json:"quantity"`
	UnitPriceCents int64  `json:"unitPriceCents"`
	TotalCents     int64  `json:"totalCents"`
}

type ReceiptPay struct {
	Method        string `json:"method"`
	AmountCents   int64  `json:"amountCents"`
	TenderedCents *int64 `json:"tenderedCents,omitempty"`
	ChangeCents   *int64 `json:"changeCents,omitempty"`
}
