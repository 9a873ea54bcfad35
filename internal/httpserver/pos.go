package httpserver

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"enterprise-pos/internal/domain"
	"enterprise-pos/internal/hold"
	"enterprise-pos/internal/pos"
	productrepo "enterprise-pos/internal/repository/product"
)

type posHandlers struct {
	catalog           CatalogService
	customers         CustomerService
	checkout          *pos.Checkout
	receipts          ReceiptStore
	refunds           RefundStore
	holds             *hold.Store
	defaultTaxPercent float64
}

type posProduct struct {
	domain.Product
	IsLowStock bool `json:"isLowStock"`
}

func (h *posHandlers) listProducts(c *gin.Context) {
	limit := 0
	if v := c.Query("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be an integer"})
			return
		}
		limit = n
	}

	products, err := h.catalog.List(c.Request.Context(), productrepo.ListFilter{
		CategoryID: c.Query("categoryId"),
		Search:     c.Query("search"),
		Limit:      limit,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list products failed"})
		return
	}

	items := make([]posProduct, 0, len(products))
	for _, p := range products {
		items = append(items, posProduct{Product: p, IsLowStock: p.IsLowStock()})
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

func (h *posHandlers) listCategories(c *gin.Context) {
	categories, err := h.catalog.Categories(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list categories failed"})
		return
	}
	if categories == nil {
		categories = []domain.Category{}
	}
	c.JSON(http.StatusOK, gin.H{"items": categories})
}

type cartItemRequest struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

type cartRequest struct {
	Items               []cartItemRequest `json:"items"`
	DiscountPercent     float64           `json:"discountPercent"`
	TaxPercent          *float64          `json:"taxPercent"`
	PaymentMethod       string            `json:"paymentMethod"`
	AmountTenderedCents int64             `json:"amountTenderedCents"`
	CustomerID          *string           `json:"customerId"`
}

type checkoutResponse struct {
	SaleID         string `json:"saleId"`
	ReceiptNumber  string `json:"receiptNumber"`
	ChangeDueCents int64  `json:"changeDueCents"`
	TotalCents     int64  `json:"totalCents"`
}

func (h *posHandlers) checkoutSale(c *gin.Context) {
	var req cartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	cart, ok := h.buildCart(c, req)
	if !ok {
		return
	}
	total := cart.TotalCents()

	res, err := h.checkout.Submit(c.Request.Context(), cart)
	if err != nil {
		writeCheckoutError(c, err)
		return
	}

	c.JSON(http.StatusCreated, checkoutResponse{
		SaleID:         res.SaleID,
		ReceiptNumber:  res.ReceiptNumber,
		ChangeDueCents: res.ChangeDueCents,
		TotalCents:     total,
	})
}

// buildCart replays the request through the cart aggregator: products are
// looked up so line prices come from the catalog, never from the client.
func (h *posHandlers) buildCart(c *gin.Context, req cartRequest) (*pos.Cart, bool) {
	cart := pos.NewCart(h.defaultTaxPercent)
	for _, item := range req.Items {
		if item.Quantity <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "quantity must be positive", "productId": item.ProductID})
			return nil, false
		}
		product, err := h.catalog.Get(c.Request.Context(), item.ProductID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				c.JSON(http.StatusBadRequest, gin.H{"error": "unknown product", "productId": item.ProductID})
				return nil, false
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "product lookup failed"})
			return nil, false
		}
		cart.AddItem(*product)
		cart.SetQuantity(product.ID, item.Quantity)
	}

	cart.SetDiscountPercent(req.DiscountPercent)
	if req.TaxPercent != nil {
		cart.SetTaxPercent(*req.TaxPercent)
	}
	switch req.PaymentMethod {
	case "", string(pos.PaymentCash):
		cart.SetPaymentMethod(pos.PaymentCash)
	case string(pos.PaymentCard):
		cart.SetPaymentMethod(pos.PaymentCard)
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "unsupported payment method " + req.PaymentMethod})
		return nil, false
	}
	cart.SetAmountTendered(req.AmountTenderedCents)
	cart.SetCustomer(req.CustomerID)
	return cart, true
}

func writeCheckoutError(c *gin.Context, err error) {
	var (
		insufficient *pos.InsufficientPaymentError
		outOfStock   *pos.OutOfStockError
		validation   *pos.ValidationError
	)
	switch {
	case errors.Is(err, pos.ErrEmptyCart):
		c.JSON(http.StatusBadRequest, gin.H{"error": "cart is empty", "code": "EMPTY_CART"})
	case errors.As(err, &insufficient):
		c.JSON(http.StatusBadRequest, gin.H{
			"error":          "insufficient payment",
			"code":           "INSUFFICIENT_PAYMENT",
			"shortfallCents": insufficient.ShortfallCents,
		})
	case errors.As(err, &validation):
		c.JSON(http.StatusBadRequest, gin.H{
			"error": validation.Error(),
			"code":  "VALIDATION",
			"field": validation.Field,
		})
	case errors.Is(err, pos.ErrSubmissionInProgress):
		c.JSON(http.StatusConflict, gin.H{"error": "submission already in progress", "code": "SUBMISSION_IN_PROGRESS"})
	case errors.As(err, &outOfStock):
		c.JSON(http.StatusConflict, gin.H{
			"error":     "out of stock",
			"code":      "OUT_OF_STOCK",
			"productId": outOfStock.ProductID,
			"available": outOfStock.Available,
		})
	case errors.Is(err, pos.ErrServiceUnavailable):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "sale storage unavailable", "code": "SERVICE_UNAVAILABLE"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "checkout failed"})
	}
}

func (h *posHandlers) getReceipt(c *gin.Context) {
	receipt, err := h.receipts.GetReceipt(c.Request.Context(), c.Param("saleID"))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "sale not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "load receipt failed"})
		return
	}
	c.JSON(http.StatusOK, receipt)
}

type refundRequest struct {
	Reason string `json:"reason"`
}

func (h *posHandlers) refundSale(c *gin.Context) {
	var req refundRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}
	}

	res, err := h.refunds.RefundSale(c.Request.Context(), c.Param("saleID"), req.Reason)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "sale not found"})
		case errors.Is(err, pos.ErrAlreadyRefunded):
			c.JSON(http.StatusConflict, gin.H{"error": "sale already refunded", "code": "ALREADY_REFUNDED"})
		case errors.Is(err, pos.ErrServiceUnavailable):
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "sale storage unavailable", "code": "SERVICE_UNAVAILABLE"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "refund failed"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"saleId":        res.SaleID,
		"refundedCents": res.RefundedCents,
		"status":        "refunded",
	})
}

type holdRequest struct {
	cartRequest
	Note string `json:"note"`
}

func (h *posHandlers) holdCart(c *gin.Context) {
	var req holdRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if len(req.Items) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "nothing to hold", "code": "EMPTY_CART"})
		return
	}

	cart, ok := h.buildCart(c, req.cartRequest)
	if !ok {
		return
	}

	held := h.holds.Hold(hold.HeldCart{
		Lines:           cart.Lines(),
		DiscountPercent: cart.DiscountPercent(),
		TaxPercent:      cart.TaxPercent(),
		PaymentMethod:   cart.PaymentMethod(),
		CustomerID:      cart.CustomerID(),
		Note:            req.Note,
	})
	c.JSON(http.StatusCreated, held)
}

func (h *posHandlers) listHolds(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"items": h.holds.List()})
}

func (h *posHandlers) resumeHold(c *gin.Context) {
	held, ok := h.holds.Resume(c.Param("reference"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "hold not found"})
		return
	}
	c.JSON(http.StatusOK, held)
}
