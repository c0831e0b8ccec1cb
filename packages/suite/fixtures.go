package suite

// OrderItem is one line of an order or return payload
type OrderItem struct {
	ProductID string  `json:"product_id"`
	Quantity  int     `json:"quantity"`
	Price     float64 `json:"price,omitempty"`
	Name      string  `json:"name,omitempty"`
}

type Address struct {
	Street     string `json:"street"`
	City       string `json:"city"`
	State      string `json:"state"`
	PostalCode string `json:"zip"`
	Country    string `json:"country"`
}

type PaymentDetails struct {
	Last4 string `json:"last4"`
	Brand string `json:"brand"`
}

type OrderRequest struct {
	CustomerID      string         `json:"customer_id"`
	CustomerName    string         `json:"customer_name,omitempty"`
	CustomerEmail   string         `json:"customer_email,omitempty"`
	Items           []OrderItem    `json:"items"`
	ShippingAddress Address        `json:"shipping_address"`
	PaymentMethod   string         `json:"payment_method"`
	PaymentDetails  PaymentDetails `json:"payment_details"`
}

type ShipmentInfo struct {
	TrackingNumber string `json:"trackingNumber"`
	Carrier        string `json:"carrier"`
}

type FulfillmentRequest struct {
	Status         string       `json:"status"`
	TrackingNumber string       `json:"tracking_number"`
	Carrier        string       `json:"carrier"`
	ShippedItems   []OrderItem  `json:"shipped_items"`
	ShipmentInfo   ShipmentInfo `json:"shipmentInfo"`
}

// ReturnRequest carries the order reference under both spellings the two
// endpoint profiles accept
type ReturnRequest struct {
	OrderID      string      `json:"order_id"`
	OrderRef     string      `json:"orderId"`
	Reason       string      `json:"reason"`
	Items        []OrderItem `json:"items"`
	RefundAmount float64     `json:"refund_amount"`
	Notes        string      `json:"notes"`
}

type TrackingRequest struct {
	TrackingNumber    string `json:"tracking_number"`
	Carrier           string `json:"carrier"`
	Status            string `json:"status"`
	Location          string `json:"location"`
	EstimatedDelivery string `json:"estimated_delivery"`
}

// OrderTrackingUpdate attaches a tracking number through the order update
// route
type OrderTrackingUpdate struct {
	Status         string `json:"status"`
	TrackingNumber string `json:"tracking_number"`
}

// Filter is one combination of the order list filter sweep
type Filter map[string]string

// Fixtures is the test data sent by the checks
type Fixtures struct {
	Order          OrderRequest
	UpdateStatus   string
	Fulfillment    FulfillmentRequest
	Return         ReturnRequest
	Tracking       TrackingRequest
	ShippedStatus  string
	ListFilters    []Filter
	OrderQuery     string
	CustomerQuery  string
	ProductQuery   string
	ProductFilter  string
	SearchLimit    int
	AnalyticsRange string
}

// DefaultCustomerID owns every order the checks create
const DefaultCustomerID = "test-customer-123"

func DefaultFixtures() Fixtures {
	return Fixtures{
		Order: OrderRequest{
			CustomerID:    DefaultCustomerID,
			CustomerName:  "Test Customer",
			CustomerEmail: "test@example.com",
			Items: []OrderItem{
				{ProductID: "prod-001", Quantity: 2, Price: 29.99, Name: "Test Product 1"},
				{ProductID: "prod-002", Quantity: 1, Price: 49.99, Name: "Test Product 2"},
			},
			ShippingAddress: Address{
				Street:     "123 Test St",
				City:       "Test City",
				State:      "TS",
				PostalCode: "12345",
				Country:    "USA",
			},
			PaymentMethod:  "credit_card",
			PaymentDetails: PaymentDetails{Last4: "4242", Brand: "visa"},
		},
		UpdateStatus: "processing",
		Fulfillment: FulfillmentRequest{
			Status:         "processing",
			TrackingNumber: "TRACK123456",
			Carrier:        "UPS",
			ShippedItems:   []OrderItem{{ProductID: "prod-001", Quantity: 2}},
			ShipmentInfo:   ShipmentInfo{TrackingNumber: "TRACK123456", Carrier: "UPS"},
		},
		Return: ReturnRequest{
			Reason:       "defective",
			Items:        []OrderItem{{ProductID: "prod-001", Quantity: 1}},
			RefundAmount: 29.99,
			Notes:        "Product not working as expected",
		},
		Tracking: TrackingRequest{
			TrackingNumber:    "TRACK123456",
			Carrier:           "UPS",
			Status:            "in_transit",
			Location:          "Distribution Center",
			EstimatedDelivery: "2024-01-25",
		},
		ShippedStatus: "shipped",
		ListFilters: []Filter{
			{},
			{"status": "pending"},
			{"customer_id": DefaultCustomerID},
			{"date_from": "2024-01-01", "date_to": "2024-12-31"},
		},
		OrderQuery:     "test",
		CustomerQuery:  "test",
		ProductQuery:   "product",
		ProductFilter:  "all",
		SearchLimit:    10,
		AnalyticsRange: "monthly",
	}
}
