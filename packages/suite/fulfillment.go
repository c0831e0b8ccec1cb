package suite

import (
	"context"
	"fmt"

	"github.com/abdul-hamid-achik/ordercheck/packages/core/result"
	"github.com/abdul-hamid-achik/ordercheck/packages/core/runctx"
	"github.com/abdul-hamid-achik/ordercheck/packages/http"
)

func (s *Suite) Fulfillment(ctx context.Context, c Caller, rc *runctx.Context) []result.Record {
	id, ok := rc.OrderID()
	if !ok {
		return []result.Record{result.Unavailable(NameFulfillment, DependencyOrderID)}
	}

	route := s.endpoints.UpdateFulfillment
	out := c.Call(ctx, route.Method, route.URL(s.baseURL, id), s.fixtures.Fulfillment, http.ReadOK)
	if !out.Succeeded() {
		return []result.Record{result.Failed(NameFulfillment, failure(out))}
	}
	return []result.Record{result.Passed(NameFulfillment, "Fulfillment updated successfully")}
}

func (s *Suite) FulfillmentStatus(ctx context.Context, c Caller, rc *runctx.Context) []result.Record {
	id, ok := rc.OrderID()
	if !ok {
		return []result.Record{result.Unavailable(NameFulfillmentStatus, DependencyOrderID)}
	}

	route := s.endpoints.GetFulfillment
	out := c.Call(ctx, route.Method, route.URL(s.baseURL, id), nil, http.ReadOK)
	if !out.Succeeded() {
		return []result.Record{result.Failed(NameFulfillmentStatus, failure(out))}
	}
	return []result.Record{result.Passed(NameFulfillmentStatus, "Status: "+field(out, "status", "unknown"))}
}

// Returns creates a return for the order, stores its id, then reads the
// return back
func (s *Suite) Returns(ctx context.Context, c Caller, rc *runctx.Context) []result.Record {
	orderID, ok := rc.OrderID()
	if !ok {
		return []result.Record{result.Unavailable(NameReturns, DependencyOrderID)}
	}

	payload := s.fixtures.Return
	payload.OrderID = orderID
	payload.OrderRef = orderID

	route := s.endpoints.CreateReturn
	out := c.Call(ctx, route.Method, route.URL(s.baseURL, orderID), payload, http.CreateOK)
	if !out.Succeeded() {
		return []result.Record{result.Failed(NameReturns, failure(out))}
	}

	returnID, ok := extractID(out)
	if !ok {
		return []result.Record{result.Failed(NameReturns,
			fmt.Sprintf("Status %d: response has no return id", out.StatusCode))}
	}
	rc.SetReturnID(returnID)

	return []result.Record{
		result.Passed(NameReturns, "Created return ID: "+returnID),
		s.returnDetails(ctx, c, rc),
	}
}

// returnDetails reads back the return stored in the run context
func (s *Suite) returnDetails(ctx context.Context, c Caller, rc *runctx.Context) result.Record {
	name := result.Label(NameReturns, "Get Details")
	returnID, ok := rc.ReturnID()
	if !ok {
		return result.Unavailable(name, DependencyReturnID)
	}

	route := s.endpoints.GetReturn
	out := c.Call(ctx, route.Method, route.URL(s.baseURL, returnID), nil, http.ReadOK)
	if !out.Succeeded() {
		return result.Failed(name, failure(out))
	}
	return result.Passed(name, "Return status: "+field(out, "status", "unknown"))
}

// Tracking attaches a tracking number to the order, stores it, then reads
// it back
func (s *Suite) Tracking(ctx context.Context, c Caller, rc *runctx.Context) []result.Record {
	id, ok := rc.OrderID()
	if !ok {
		return []result.Record{result.Unavailable(NameTracking, DependencyOrderID)}
	}

	number := s.fixtures.Tracking.TrackingNumber
	var payload any = s.fixtures.Tracking
	if s.endpoints.TrackingViaOrder {
		payload = OrderTrackingUpdate{Status: s.fixtures.ShippedStatus, TrackingNumber: number}
	}

	route := s.endpoints.UpdateTracking
	out := c.Call(ctx, route.Method, route.URL(s.baseURL, id), payload, http.ReadOK)
	if !out.Succeeded() {
		return []result.Record{result.Failed(NameTracking, failure(out))}
	}
	rc.SetTrackingNumber(number)

	return []result.Record{
		result.Passed(NameTracking, "Tracking info updated"),
		s.trackingInfo(ctx, c, rc),
	}
}

// trackingInfo looks the order up by the tracking number in the run context
func (s *Suite) trackingInfo(ctx context.Context, c Caller, rc *runctx.Context) result.Record {
	name := result.Label(NameTracking, "Get Info")
	id, ok := rc.OrderID()
	if !ok {
		return result.Unavailable(name, DependencyOrderID)
	}
	number, ok := rc.TrackingNumber()
	if !ok {
		return result.Unavailable(name, DependencyTrackingNumber)
	}

	route := s.endpoints.GetTracking
	url := route.Expand(s.baseURL, map[string]string{"id": id, "tracking": number})
	out := c.Call(ctx, route.Method, url, nil, http.ReadOK)
	if !out.Succeeded() {
		return result.Failed(name, failure(out))
	}

	for _, path := range trackingPaths {
		if v := out.Get(path); v.Exists() && v.String() != "" {
			return result.Passed(name, "Tracking: "+v.String())
		}
	}
	if n, ok := collectionSize(out); ok && n == 0 {
		return result.Failed(name, fmt.Sprintf("No tracked order for %s", number))
	}
	return result.Passed(name, "Tracking: N/A")
}
