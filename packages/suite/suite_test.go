package suite

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/launchdarkly/go-test-helpers/v2/httphelpers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abdul-hamid-achik/ordercheck/packages/core/result"
	"github.com/abdul-hamid-achik/ordercheck/packages/core/runctx"
	"github.com/abdul-hamid-achik/ordercheck/packages/http"
)

type fakeCall struct {
	Method string
	URL    string
	Body   any
}

// fakeCaller answers every call with respond and remembers what was asked
type fakeCaller struct {
	calls   []fakeCall
	respond func(method, url string) http.Outcome
}

func (f *fakeCaller) Call(ctx context.Context, method, url string, body any, success http.SuccessSet) http.Outcome {
	f.calls = append(f.calls, fakeCall{Method: method, URL: url, Body: body})
	if f.respond == nil {
		return http.Outcome{TransportError: "no responder"}
	}
	return f.respond(method, url)
}

func jsonOutcome(t *testing.T, status int, raw string) http.Outcome {
	t.Helper()
	var body any
	require.NoError(t, json.Unmarshal([]byte(raw), &body))
	return http.Outcome{StatusCode: status, Body: body, Decoded: true, Raw: []byte(raw)}
}

func newTestSuite(baseURL string) *Suite {
	return New(baseURL, RESTEndpoints(), DefaultFixtures())
}

func jsonHeaders() map[string][]string {
	return map[string][]string{"Content-Type": {"application/json"}}
}

func TestExecutors_Order(t *testing.T) {
	s := newTestSuite("http://localhost:3000")

	var names []string
	for _, e := range s.Executors() {
		names = append(names, e.Name)
	}

	assert.Equal(t, []string{
		NameOrderCreate,
		NameOrderDetail,
		NameOrderUpdate,
		NameOrderList,
		NameOrderSearch,
		NameFulfillment,
		NameFulfillmentStatus,
		NameReturns,
		NameTracking,
		NameSearch,
		NameAnalytics,
		NameHookIntegration,
	}, names)
}

func TestSelect_KeepsRegistrationOrder(t *testing.T) {
	s := newTestSuite("http://localhost:3000")

	selected := s.Select(NameFulfillment, NameOrderCreate, "Unknown Check")

	require.Len(t, selected, 2)
	assert.Equal(t, NameOrderCreate, selected[0].Name)
	assert.Equal(t, NameFulfillment, selected[1].Name)
}

func TestDependentChecks_SkipWithoutOrderID(t *testing.T) {
	s := newTestSuite("http://localhost:3000")

	checks := map[string]Func{
		NameOrderDetail:       s.OrderDetail,
		NameOrderUpdate:       s.UpdateOrder,
		NameFulfillment:       s.Fulfillment,
		NameFulfillmentStatus: s.FulfillmentStatus,
		NameReturns:           s.Returns,
		NameTracking:          s.Tracking,
	}

	for name, run := range checks {
		t.Run(name, func(t *testing.T) {
			caller := &fakeCaller{}
			records := run(context.Background(), caller, runctx.New("run-1"))

			require.Len(t, records, 1)
			assert.Equal(t, name, records[0].Name)
			assert.Equal(t, result.Skip, records[0].Status)
			assert.Equal(t, "Order ID unavailable", records[0].Details)
			assert.Empty(t, caller.calls)
		})
	}
}

func TestCreateOrder_StoresID(t *testing.T) {
	handler := httphelpers.HandlerWithResponse(201, jsonHeaders(), []byte(`{"id":"X"}`))
	httphelpers.WithServer(handler, func(server *httptest.Server) {
		s := newTestSuite(server.URL)
		rc := runctx.New("run-1")

		records := s.CreateOrder(context.Background(), http.NewNormalizer(http.NewClient()), rc)

		require.Len(t, records, 1)
		assert.Equal(t, result.Pass, records[0].Status)
		assert.Equal(t, "Created order ID: X", records[0].Details)

		id, ok := rc.OrderID()
		assert.True(t, ok)
		assert.Equal(t, "X", id)
	})
}

func TestCreateOrder_EnvelopeID(t *testing.T) {
	handler := httphelpers.HandlerWithResponse(201, jsonHeaders(),
		[]byte(`{"success":true,"data":{"id":"ord-9","status":"pending"}}`))
	httphelpers.WithServer(handler, func(server *httptest.Server) {
		s := newTestSuite(server.URL)
		rc := runctx.New("run-1")

		records := s.CreateOrder(context.Background(), http.NewNormalizer(http.NewClient()), rc)

		require.Len(t, records, 1)
		assert.Equal(t, result.Pass, records[0].Status)
		id, _ := rc.OrderID()
		assert.Equal(t, "ord-9", id)
	})
}

func TestCreateOrder_RejectedStatus(t *testing.T) {
	handler := httphelpers.HandlerWithResponse(400, jsonHeaders(), []byte(`{"error":"items required"}`))
	httphelpers.WithServer(handler, func(server *httptest.Server) {
		s := newTestSuite(server.URL)
		rc := runctx.New("run-1")

		records := s.CreateOrder(context.Background(), http.NewNormalizer(http.NewClient()), rc)

		require.Len(t, records, 1)
		assert.Equal(t, result.Fail, records[0].Status)
		assert.Contains(t, records[0].Details, "Status 400")
		assert.Contains(t, records[0].Details, "items required")

		_, ok := rc.OrderID()
		assert.False(t, ok)
	})
}

func TestCreateOrder_MissingID(t *testing.T) {
	caller := &fakeCaller{respond: func(method, url string) http.Outcome {
		return jsonOutcome(t, 200, `{"success":true}`)
	}}
	rc := runctx.New("run-1")

	records := newTestSuite("http://api").CreateOrder(context.Background(), caller, rc)

	require.Len(t, records, 1)
	assert.Equal(t, result.Fail, records[0].Status)
	assert.Equal(t, "Status 200: response has no order id", records[0].Details)
	_, ok := rc.OrderID()
	assert.False(t, ok)
}

func TestCreateOrder_TransportError(t *testing.T) {
	server := httptest.NewServer(httphelpers.HandlerWithStatus(200))
	baseURL := server.URL
	server.Close()

	records := newTestSuite(baseURL).CreateOrder(context.Background(),
		http.NewNormalizer(http.NewClient()), runctx.New("run-1"))

	require.Len(t, records, 1)
	assert.Equal(t, result.Fail, records[0].Status)
	assert.NotEmpty(t, records[0].Details)
}

func TestFulfillment_StandaloneSkips(t *testing.T) {
	caller := &fakeCaller{}

	records := newTestSuite("http://api").Fulfillment(context.Background(), caller, runctx.New("run-1"))

	require.Len(t, records, 1)
	assert.Equal(t, result.Skip, records[0].Status)
	assert.Empty(t, caller.calls)
}

func TestCreateThenFulfill(t *testing.T) {
	create := httphelpers.HandlerWithResponse(201, jsonHeaders(), []byte(`{"id":"X"}`))
	fulfill := httphelpers.HandlerWithResponse(200, jsonHeaders(), []byte(`{"status":"processing"}`))
	handler, requests := httphelpers.RecordingHandler(httphelpers.SequentialHandler(create, fulfill))

	httphelpers.WithServer(handler, func(server *httptest.Server) {
		s := newTestSuite(server.URL)
		rc := runctx.New("run-1")
		caller := http.NewNormalizer(http.NewClient())

		var records []result.Record
		records = append(records, s.CreateOrder(context.Background(), caller, rc)...)
		records = append(records, s.Fulfillment(context.Background(), caller, rc)...)

		require.Len(t, records, 2)
		assert.Equal(t, result.Pass, records[0].Status)
		assert.Equal(t, result.Pass, records[1].Status)
		assert.Equal(t, NameFulfillment, records[1].Name)

		id, _ := rc.OrderID()
		assert.Equal(t, "X", id)

		first := <-requests
		assert.Equal(t, "POST", first.Request.Method)
		assert.Equal(t, "/api/orders", first.Request.URL.Path)

		second := <-requests
		assert.Equal(t, "PUT", second.Request.Method)
		assert.Equal(t, "/api/orders/X/fulfill", second.Request.URL.Path)

		var sent map[string]any
		require.NoError(t, json.Unmarshal(second.Body, &sent))
		assert.Equal(t, "processing", sent["status"])
	})
}

func TestOrderDetail_ReadsStatus(t *testing.T) {
	caller := &fakeCaller{respond: func(method, url string) http.Outcome {
		return jsonOutcome(t, 200, `{"success":true,"data":{"id":"X","status":"pending"}}`)
	}}
	rc := runctx.New("run-1")
	rc.SetOrderID("X")

	records := newTestSuite("http://api").OrderDetail(context.Background(), caller, rc)

	require.Len(t, records, 1)
	assert.Equal(t, result.Pass, records[0].Status)
	assert.Equal(t, "Order status: pending", records[0].Details)
	require.Len(t, caller.calls, 1)
	assert.Equal(t, "http://api/api/orders/X", caller.calls[0].URL)
}

func TestListOrders_SweepsFilters(t *testing.T) {
	caller := &fakeCaller{respond: func(method, url string) http.Outcome {
		return jsonOutcome(t, 200, `{"orders":[{"id":"a"},{"id":"b"}]}`)
	}}

	records := newTestSuite("http://api").ListOrders(context.Background(), caller, runctx.New("run-1"))

	require.Len(t, records, 4)
	assert.Equal(t, "Order List Service - no filters", records[0].Name)
	assert.Equal(t, `Order List Service - {"status":"pending"}`, records[1].Name)
	for _, r := range records {
		assert.Equal(t, result.Pass, r.Status)
		assert.Equal(t, "Found 2 orders", r.Details)
	}

	require.Len(t, caller.calls, 4)
	assert.Equal(t, "http://api/api/orders", caller.calls[0].URL)
	assert.Equal(t, "http://api/api/orders?status=pending", caller.calls[1].URL)
	assert.Equal(t, "http://api/api/orders?date_from=2024-01-01&date_to=2024-12-31", caller.calls[3].URL)
}

func TestListOrders_NotAList(t *testing.T) {
	fixtures := DefaultFixtures()
	fixtures.ListFilters = nil
	caller := &fakeCaller{respond: func(method, url string) http.Outcome {
		return jsonOutcome(t, 200, `{"count":3}`)
	}}

	records := New("http://api", RESTEndpoints(), fixtures).ListOrders(context.Background(), caller, runctx.New("run-1"))

	require.Len(t, records, 1)
	assert.Equal(t, result.Fail, records[0].Status)
	assert.Equal(t, "response is not an order list", records[0].Details)
}

func TestReturns_StoresReturnID(t *testing.T) {
	caller := &fakeCaller{respond: func(method, url string) http.Outcome {
		if method == "POST" {
			return jsonOutcome(t, 201, `{"success":true,"data":{"id":"ret-1"}}`)
		}
		return jsonOutcome(t, 200, `{"id":"ret-1","status":"requested"}`)
	}}
	rc := runctx.New("run-1")
	rc.SetOrderID("X")

	records := newTestSuite("http://api").Returns(context.Background(), caller, rc)

	require.Len(t, records, 2)
	assert.Equal(t, result.Pass, records[0].Status)
	assert.Equal(t, "Order Returns Service - Get Details", records[1].Name)
	assert.Equal(t, "Return status: requested", records[1].Details)

	id, ok := rc.ReturnID()
	assert.True(t, ok)
	assert.Equal(t, "ret-1", id)

	payload, ok := caller.calls[0].Body.(ReturnRequest)
	require.True(t, ok)
	assert.Equal(t, "X", payload.OrderID)
	assert.Equal(t, "X", payload.OrderRef)
	assert.Equal(t, "http://api/api/orders/returns/ret-1", caller.calls[1].URL)
}

func TestTracking_RESTUpdatesOrderAndLooksUpNumber(t *testing.T) {
	caller := &fakeCaller{respond: func(method, url string) http.Outcome {
		if method == "PUT" {
			return jsonOutcome(t, 200, `{"success":true,"data":{"id":"X","status":"shipped"}}`)
		}
		return jsonOutcome(t, 200, `{"success":true,"data":[{"id":"X","trackingInfo":{"trackingNumber":"TRACK123456"}}]}`)
	}}
	rc := runctx.New("run-1")
	rc.SetOrderID("X")

	records := newTestSuite("http://api").Tracking(context.Background(), caller, rc)

	require.Len(t, records, 2)
	assert.Equal(t, result.Pass, records[0].Status)
	assert.Equal(t, "Order Tracking Service - Get Info", records[1].Name)
	assert.Equal(t, result.Pass, records[1].Status)
	assert.Equal(t, "Tracking: TRACK123456", records[1].Details)

	number, ok := rc.TrackingNumber()
	assert.True(t, ok)
	assert.Equal(t, "TRACK123456", number)

	require.Len(t, caller.calls, 2)
	assert.Equal(t, "PUT", caller.calls[0].Method)
	assert.Equal(t, "http://api/api/orders/X", caller.calls[0].URL)
	assert.Equal(t, OrderTrackingUpdate{Status: "shipped", TrackingNumber: "TRACK123456"}, caller.calls[0].Body)
	assert.Equal(t, "GET", caller.calls[1].Method)
	assert.Equal(t, "http://api/api/orders/tracking?tracking_number=TRACK123456", caller.calls[1].URL)
}

func TestTracking_RESTNumberNotFound(t *testing.T) {
	caller := &fakeCaller{respond: func(method, url string) http.Outcome {
		if method == "PUT" {
			return jsonOutcome(t, 200, `{"success":true}`)
		}
		return jsonOutcome(t, 200, `{"success":true,"data":[]}`)
	}}
	rc := runctx.New("run-1")
	rc.SetOrderID("X")

	records := newTestSuite("http://api").Tracking(context.Background(), caller, rc)

	require.Len(t, records, 2)
	assert.Equal(t, result.Fail, records[1].Status)
	assert.Equal(t, "No tracked order for TRACK123456", records[1].Details)
}

func TestTracking_ModuleSendsTrackingPayload(t *testing.T) {
	caller := &fakeCaller{respond: func(method, url string) http.Outcome {
		return jsonOutcome(t, 200, `{"tracking_number":"TRACK123456"}`)
	}}
	rc := runctx.New("run-1")
	rc.SetOrderID("X")

	s := New("http://api", ModuleEndpoints(), DefaultFixtures())
	records := s.Tracking(context.Background(), caller, rc)

	require.Len(t, records, 2)
	assert.Equal(t, "Tracking: TRACK123456", records[1].Details)
	assert.Equal(t, "http://api/api/orders/order-tracking/X", caller.calls[0].URL)
	assert.IsType(t, TrackingRequest{}, caller.calls[0].Body)
	assert.Equal(t, "http://api/api/orders/order-tracking/X", caller.calls[1].URL)
}

func TestFollowUpChecks_SkipWithoutStoredIdentifier(t *testing.T) {
	s := newTestSuite("http://api")
	caller := &fakeCaller{}

	rc := runctx.New("run-1")
	r := s.returnDetails(context.Background(), caller, rc)
	assert.Equal(t, result.Skip, r.Status)
	assert.Equal(t, "Order Returns Service - Get Details", r.Name)
	assert.Equal(t, "Return ID unavailable", r.Details)

	rc.SetOrderID("X")
	r = s.trackingInfo(context.Background(), caller, rc)
	assert.Equal(t, result.Skip, r.Status)
	assert.Equal(t, "Tracking number unavailable", r.Details)

	assert.Empty(t, caller.calls)
}

func TestAnalytics_NullBodyPasses(t *testing.T) {
	caller := &fakeCaller{respond: func(method, url string) http.Outcome {
		return jsonOutcome(t, 200, `null`)
	}}

	records := newTestSuite("http://api").Analytics(context.Background(), caller, runctx.New("run-1"))

	require.Len(t, records, 1)
	assert.Equal(t, result.Pass, records[0].Status)
}

func TestSearch_NumericQueryStaysString(t *testing.T) {
	caller := &fakeCaller{respond: func(method, url string) http.Outcome {
		return jsonOutcome(t, 200, `{"results":[]}`)
	}}

	fixtures := DefaultFixtures()
	fixtures.CustomerQuery = "123"
	s := New("http://api", ModuleEndpoints(), fixtures)
	s.Search(context.Background(), caller, runctx.New("run-1"))

	body, ok := caller.calls[0].Body.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "123", body["query"])
	assert.Equal(t, "123", body["q"])
	assert.Equal(t, 10, body["limit"])
}

func TestSearch_ModuleProfileSendsBody(t *testing.T) {
	caller := &fakeCaller{respond: func(method, url string) http.Outcome {
		return jsonOutcome(t, 200, `{"results":[]}`)
	}}

	s := New("http://api", ModuleEndpoints(), DefaultFixtures())
	records := s.Search(context.Background(), caller, runctx.New("run-1"))

	require.Len(t, records, 2)
	assert.Equal(t, "Search Services - Customer Search", records[0].Name)
	assert.Equal(t, "Found 0 customers", records[0].Details)
	assert.Equal(t, "Search Services - Product Search", records[1].Name)

	require.Len(t, caller.calls, 2)
	assert.Equal(t, "http://api/api/orders/search-customers", caller.calls[0].URL)
	body, ok := caller.calls[0].Body.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, 10, body["limit"])
	assert.Equal(t, "test", body["query"])
}

func TestSearch_RESTProfileSendsQuery(t *testing.T) {
	caller := &fakeCaller{respond: func(method, url string) http.Outcome {
		return jsonOutcome(t, 200, `[{"id":"p1"}]`)
	}}

	records := newTestSuite("http://api").Search(context.Background(), caller, runctx.New("run-1"))

	require.Len(t, records, 2)
	assert.Equal(t, "Found 1 products", records[1].Details)
	assert.Nil(t, caller.calls[1].Body)
	assert.Equal(t, "http://api/api/products/search?category=all&limit=10&q=product&query=product", caller.calls[1].URL)
}

func TestHookIntegration(t *testing.T) {
	list := func(n int) []byte {
		items := make([]map[string]string, n)
		for i := range items {
			items[i] = map[string]string{"id": "o"}
		}
		data, _ := json.Marshal(items)
		return data
	}

	tests := []struct {
		name   string
		before int
		after  int
		status result.Status
		detail string
	}{
		{"list grows", 5, 6, result.Pass, "Order list updated after creation (5 -> 6)"},
		{"list unchanged", 5, 5, result.Fail, "Order list not updated (5 -> 5)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := httphelpers.SequentialHandler(
				httphelpers.HandlerWithResponse(200, jsonHeaders(), list(tt.before)),
				httphelpers.HandlerWithResponse(201, jsonHeaders(), []byte(`{"id":"new"}`)),
				httphelpers.HandlerWithResponse(200, jsonHeaders(), list(tt.after)),
			)
			httphelpers.WithServer(handler, func(server *httptest.Server) {
				rc := runctx.New("run-1")
				records := newTestSuite(server.URL).HookIntegration(context.Background(),
					http.NewNormalizer(http.NewClient()), rc)

				require.Len(t, records, 2)
				assert.Equal(t, result.Info, records[0].Status)
				assert.Equal(t, "Hook Integration - State Update", records[1].Name)
				assert.Equal(t, tt.status, records[1].Status)
				assert.Equal(t, tt.detail, records[1].Details)

				_, ok := rc.OrderID()
				assert.False(t, ok)
			})
		})
	}
}

func TestHookIntegration_InitialListFails(t *testing.T) {
	caller := &fakeCaller{respond: func(method, url string) http.Outcome {
		return http.Outcome{StatusCode: 500, Raw: []byte("boom")}
	}}

	records := newTestSuite("http://api").HookIntegration(context.Background(), caller, runctx.New("run-1"))

	require.Len(t, records, 2)
	assert.Equal(t, result.Fail, records[1].Status)
	assert.Equal(t, "initial list: Status 500: boom", records[1].Details)
	assert.Len(t, caller.calls, 1)
}
