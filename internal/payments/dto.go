package payments

// CaptureIntentResult is what the client needs to open the gateway's
// checkout widget.
type CaptureIntentResult struct {
	GatewayOrderID string `json:"gateway_order_id"`
	Amount         int64  `json:"amount"`
	Currency       string `json:"currency"`
}

// VerificationInput carries the gateway's payment callback fields.
type VerificationInput struct {
	GatewayOrderID   string `json:"razorpay_order_id"`
	GatewayPaymentID string `json:"razorpay_payment_id"`
	Signature        string `json:"razorpay_signature"`
	Method           string `json:"method"`
}
