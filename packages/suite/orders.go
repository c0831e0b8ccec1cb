package suite

import (
	"context"
	"fmt"

	"github.com/abdul-hamid-achik/ordercheck/packages/core/result"
	"github.com/abdul-hamid-achik/ordercheck/packages/core/runctx"
	"github.com/abdul-hamid-achik/ordercheck/packages/http"
)

// CreateOrder creates an order and stores its id for the checks that follow
func (s *Suite) CreateOrder(ctx context.Context, c Caller, rc *runctx.Context) []result.Record {
	route := s.endpoints.CreateOrder
	out := c.Call(ctx, route.Method, route.URL(s.baseURL, ""), s.fixtures.Order, http.CreateOK)
	if !out.Succeeded() {
		return []result.Record{result.Failed(NameOrderCreate, failure(out))}
	}

	id, ok := extractID(out)
	if !ok {
		return []result.Record{result.Failed(NameOrderCreate,
			fmt.Sprintf("Status %d: response has no order id", out.StatusCode))}
	}

	rc.SetOrderID(id)
	return []result.Record{result.Passed(NameOrderCreate, "Created order ID: "+id)}
}

func (s *Suite) OrderDetail(ctx context.Context, c Caller, rc *runctx.Context) []result.Record {
	id, ok := rc.OrderID()
	if !ok {
		return []result.Record{result.Unavailable(NameOrderDetail, DependencyOrderID)}
	}

	route := s.endpoints.GetOrder
	out := c.Call(ctx, route.Method, route.URL(s.baseURL, id), nil, http.ReadOK)
	if !out.Succeeded() {
		return []result.Record{result.Failed(NameOrderDetail, failure(out))}
	}
	return []result.Record{result.Passed(NameOrderDetail, "Order status: "+field(out, "status", "unknown"))}
}

func (s *Suite) UpdateOrder(ctx context.Context, c Caller, rc *runctx.Context) []result.Record {
	id, ok := rc.OrderID()
	if !ok {
		return []result.Record{result.Unavailable(NameOrderUpdate, DependencyOrderID)}
	}

	route := s.endpoints.UpdateOrder
	payload := map[string]string{"status": s.fixtures.UpdateStatus}
	out := c.Call(ctx, route.Method, route.URL(s.baseURL, id), payload, http.ReadOK)
	if !out.Succeeded() {
		return []result.Record{result.Failed(NameOrderUpdate, failure(out))}
	}
	return []result.Record{result.Passed(NameOrderUpdate, "Order updated to "+s.fixtures.UpdateStatus)}
}

// ListOrders sweeps the list endpoint once per filter combination. Each
// combination gets its own record so one failing filter does not hide the
// others.
func (s *Suite) ListOrders(ctx context.Context, c Caller, rc *runctx.Context) []result.Record {
	route := s.endpoints.ListOrders
	filters := s.fixtures.ListFilters
	if len(filters) == 0 {
		filters = []Filter{{}}
	}

	records := make([]result.Record, 0, len(filters))
	for _, f := range filters {
		name := result.Label(NameOrderList, describeFilter(f))
		out := c.Call(ctx, route.Method, route.URLWithQuery(s.baseURL, f), nil, http.ReadOK)
		if !out.Succeeded() {
			records = append(records, result.Failed(name, failure(out)))
			continue
		}

		n, ok := collectionSize(out)
		if !ok {
			records = append(records, result.Failed(name, errNotAList.Error()))
			continue
		}
		records = append(records, result.Passed(name, fmt.Sprintf("Found %d orders", n)))
	}
	return records
}

func (s *Suite) SearchOrders(ctx context.Context, c Caller, rc *runctx.Context) []result.Record {
	route := s.endpoints.SearchOrders
	params := map[string]string{"q": s.fixtures.OrderQuery, "query": s.fixtures.OrderQuery}
	out := c.Call(ctx, route.Method, route.URLWithQuery(s.baseURL, params), nil, http.ReadOK)
	if !out.Succeeded() {
		return []result.Record{result.Failed(NameOrderSearch, failure(out))}
	}

	if n, ok := collectionSize(out); ok {
		return []result.Record{result.Passed(NameOrderSearch, fmt.Sprintf("Found %d orders", n))}
	}
	return []result.Record{result.Passed(NameOrderSearch, "Search returned results")}
}

func (s *Suite) Analytics(ctx context.Context, c Caller, rc *runctx.Context) []result.Record {
	route := s.endpoints.Analytics
	params := map[string]string{}
	if s.fixtures.AnalyticsRange != "" {
		params["period"] = s.fixtures.AnalyticsRange
	}

	out := c.Call(ctx, route.Method, route.URLWithQuery(s.baseURL, params), nil, http.ReadOK)
	if !out.Succeeded() {
		return []result.Record{result.Failed(NameAnalytics, failure(out))}
	}
	return []result.Record{result.Passed(NameAnalytics, "Analytics data received")}
}
