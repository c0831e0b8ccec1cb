package suite

import (
	"fmt"
	"net/url"
	"sort"
	"strings"
)

// Route is one endpoint of the order API. Path may contain {id} and
// {tracking} placeholders, in the path or in a query string.
type Route struct {
	Method string
	Path   string
}

// URL joins the route path to baseURL, substituting id for {id}
func (r Route) URL(baseURL, id string) string {
	return r.Expand(baseURL, map[string]string{"id": id})
}

// Expand joins the route to baseURL, substituting values for {key}
// placeholders. Path placeholders are path-escaped, query placeholders
// query-escaped.
func (r Route) Expand(baseURL string, values map[string]string) string {
	path, query, hasQuery := strings.Cut(r.Path, "?")
	for k, v := range values {
		path = strings.ReplaceAll(path, "{"+k+"}", url.PathEscape(v))
		query = strings.ReplaceAll(query, "{"+k+"}", url.QueryEscape(v))
	}

	u := strings.TrimRight(baseURL, "/") + path
	if hasQuery {
		u += "?" + query
	}
	return u
}

// URLWithQuery is URL with params encoded as a sorted query string
func (r Route) URLWithQuery(baseURL string, params map[string]string) string {
	u := r.URL(baseURL, "")
	if len(params) == 0 {
		return u
	}

	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	q := make([]string, 0, len(keys))
	for _, k := range keys {
		q = append(q, url.QueryEscape(k)+"="+url.QueryEscape(params[k]))
	}

	sep := "?"
	if strings.Contains(u, "?") {
		sep = "&"
	}
	return u + sep + strings.Join(q, "&")
}

// Endpoints maps every check to a route of the API under test
type Endpoints struct {
	CreateOrder       Route
	ListOrders        Route
	GetOrder          Route
	UpdateOrder       Route
	SearchOrders      Route
	UpdateFulfillment Route
	GetFulfillment    Route
	CreateReturn      Route
	GetReturn         Route
	UpdateTracking    Route
	GetTracking       Route
	SearchCustomers   Route
	SearchProducts    Route
	Analytics         Route

	// TrackingViaOrder sends the tracking update as an order update
	// (status and tracking_number) instead of a tracking payload
	TrackingViaOrder bool
}

const (
	// ProfileREST names the routes served by the app's /api/orders handlers
	ProfileREST = "rest"
	// ProfileModule names the order-module service routes
	ProfileModule = "module"
)

// RESTEndpoints is the default endpoint set
func RESTEndpoints() Endpoints {
	return Endpoints{
		CreateOrder:       Route{"POST", "/api/orders"},
		ListOrders:        Route{"GET", "/api/orders"},
		GetOrder:          Route{"GET", "/api/orders/{id}"},
		UpdateOrder:       Route{"PUT", "/api/orders/{id}"},
		SearchOrders:      Route{"GET", "/api/orders/search"},
		UpdateFulfillment: Route{"PUT", "/api/orders/{id}/fulfill"},
		GetFulfillment:    Route{"GET", "/api/orders/{id}"},
		CreateReturn:      Route{"POST", "/api/orders/returns"},
		GetReturn:         Route{"GET", "/api/orders/returns/{id}"},
		UpdateTracking:    Route{"PUT", "/api/orders/{id}"},
		GetTracking:       Route{"GET", "/api/orders/tracking?tracking_number={tracking}"},
		SearchCustomers:   Route{"GET", "/api/customers/search"},
		SearchProducts:    Route{"GET", "/api/products/search"},
		Analytics:         Route{"GET", "/api/orders/analytics"},
		TrackingViaOrder:  true,
	}
}

// ModuleEndpoints targets the order-module service routes
func ModuleEndpoints() Endpoints {
	return Endpoints{
		CreateOrder:       Route{"POST", "/api/orders/order-create"},
		ListOrders:        Route{"GET", "/api/orders/order-list"},
		GetOrder:          Route{"GET", "/api/orders/{id}"},
		UpdateOrder:       Route{"PUT", "/api/orders/{id}"},
		SearchOrders:      Route{"GET", "/api/orders/search"},
		UpdateFulfillment: Route{"POST", "/api/orders/order-fulfillment/{id}"},
		GetFulfillment:    Route{"GET", "/api/orders/order-fulfillment/{id}"},
		CreateReturn:      Route{"POST", "/api/orders/order-returns"},
		GetReturn:         Route{"GET", "/api/orders/order-returns/{id}"},
		UpdateTracking:    Route{"POST", "/api/orders/order-tracking/{id}"},
		GetTracking:       Route{"GET", "/api/orders/order-tracking/{id}"},
		SearchCustomers:   Route{"POST", "/api/orders/search-customers"},
		SearchProducts:    Route{"POST", "/api/orders/search-products"},
		Analytics:         Route{"GET", "/api/orders/order-analytics"},
	}
}

// EndpointsFor resolves a profile name
func EndpointsFor(profile string) (Endpoints, error) {
	switch strings.ToLower(profile) {
	case "", ProfileREST:
		return RESTEndpoints(), nil
	case ProfileModule:
		return ModuleEndpoints(), nil
	default:
		return Endpoints{}, fmt.Errorf("unknown endpoints profile %q (use %s or %s)", profile, ProfileREST, ProfileModule)
	}
}

// NamedRoute is a route with the role it plays in the checks
type NamedRoute struct {
	Name string
	Route
}

// Named lists every route in check order
func (e Endpoints) Named() []NamedRoute {
	return []NamedRoute{
		{"create order", e.CreateOrder},
		{"list orders", e.ListOrders},
		{"get order", e.GetOrder},
		{"update order", e.UpdateOrder},
		{"search orders", e.SearchOrders},
		{"update fulfillment", e.UpdateFulfillment},
		{"get fulfillment", e.GetFulfillment},
		{"create return", e.CreateReturn},
		{"get return", e.GetReturn},
		{"update tracking", e.UpdateTracking},
		{"get tracking", e.GetTracking},
		{"search customers", e.SearchCustomers},
		{"search products", e.SearchProducts},
		{"analytics", e.Analytics},
	}
}
