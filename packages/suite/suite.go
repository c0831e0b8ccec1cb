package suite

import (
	"context"
	"encoding/json"
	"strconv"

	"github.com/abdul-hamid-achik/ordercheck/packages/core/result"
	"github.com/abdul-hamid-achik/ordercheck/packages/core/runctx"
	"github.com/abdul-hamid-achik/ordercheck/packages/http"
)

// Caller issues one normalized HTTP call
type Caller interface {
	Call(ctx context.Context, method, url string, body any, success http.SuccessSet) http.Outcome
}

// Func performs one logical check and returns its records
type Func func(ctx context.Context, c Caller, rc *runctx.Context) []result.Record

// Executor is a named check
type Executor struct {
	Name string
	Run  Func
}

// Dependency names used in Skip details
const (
	DependencyOrderID        = "Order ID"
	DependencyReturnID       = "Return ID"
	DependencyTrackingNumber = "Tracking number"
)

// Check names
const (
	NameOrderCreate       = "Order Create Service"
	NameOrderDetail       = "Order Detail"
	NameOrderUpdate       = "Order Update"
	NameOrderList         = "Order List Service"
	NameOrderSearch       = "Order Search"
	NameFulfillment       = "Order Fulfillment Service"
	NameFulfillmentStatus = "Fulfillment Status"
	NameReturns           = "Order Returns Service"
	NameTracking          = "Order Tracking Service"
	NameSearch            = "Search Services"
	NameAnalytics         = "Order Analytics"
	NameHookIntegration   = "Hook Integration"
)

// idPaths are tried in order when reading an identifier from a response
var idPaths = []string{"id", "data.id", "order.id", "data.order.id"}

// trackingPaths are tried in order when reading a tracking number back
var trackingPaths = []string{
	"tracking_number",
	"trackingNumber",
	"data.tracking_number",
	"data.0.trackingInfo.trackingNumber",
	"data.0.tracking_number",
}

// collectionPaths are tried in order when a list response is an envelope
var collectionPaths = []string{"orders", "data", "data.orders", "items", "results"}

// Suite builds the order checks against one base URL
type Suite struct {
	baseURL   string
	endpoints Endpoints
	fixtures  Fixtures
}

func New(baseURL string, endpoints Endpoints, fixtures Fixtures) *Suite {
	return &Suite{
		baseURL:   baseURL,
		endpoints: endpoints,
		fixtures:  fixtures,
	}
}

// Executors returns the checks in the order they must run. Later checks
// depend on identifiers written by earlier ones.
func (s *Suite) Executors() []Executor {
	return []Executor{
		{NameOrderCreate, s.CreateOrder},
		{NameOrderDetail, s.OrderDetail},
		{NameOrderUpdate, s.UpdateOrder},
		{NameOrderList, s.ListOrders},
		{NameOrderSearch, s.SearchOrders},
		{NameFulfillment, s.Fulfillment},
		{NameFulfillmentStatus, s.FulfillmentStatus},
		{NameReturns, s.Returns},
		{NameTracking, s.Tracking},
		{NameSearch, s.Search},
		{NameAnalytics, s.Analytics},
		{NameHookIntegration, s.HookIntegration},
	}
}

// Select returns the named executors in registration order
func (s *Suite) Select(names ...string) []Executor {
	want := make(map[string]bool, len(names))
	for _, n := range names {
		want[n] = true
	}

	var out []Executor
	for _, e := range s.Executors() {
		if want[e.Name] {
			out = append(out, e)
		}
	}
	return out
}

func extractID(out http.Outcome) (string, bool) {
	for _, path := range idPaths {
		v := out.Get(path)
		if !v.Exists() {
			continue
		}
		if id := v.String(); id != "" {
			return id, true
		}
	}
	return "", false
}

// collectionSize counts the elements of a list response
func collectionSize(out http.Outcome) (int, bool) {
	body := out.JSON()
	if body.IsArray() {
		return len(body.Array()), true
	}
	for _, path := range collectionPaths {
		if v := body.Get(path); v.IsArray() {
			return len(v.Array()), true
		}
	}
	return 0, false
}

// failure renders the detail of an unsuccessful outcome
func failure(out http.Outcome) string {
	if out.Completed() && out.DecodeError != "" {
		return "Status " + strconv.Itoa(out.StatusCode) + ": " + out.DecodeError
	}
	return out.Describe()
}

// field reads a string field from the body, falling back to the data
// envelope and then to def
func field(out http.Outcome, name, def string) string {
	for _, path := range []string{name, "data." + name} {
		if v := out.Get(path); v.Exists() && v.String() != "" {
			return v.String()
		}
	}
	return def
}

func describeFilter(f Filter) string {
	if len(f) == 0 {
		return "no filters"
	}
	data, err := json.Marshal(f)
	if err != nil {
		return "filters"
	}
	return string(data)
}
