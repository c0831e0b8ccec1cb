package suite

import (
	"context"
	"errors"
	"fmt"

	"github.com/abdul-hamid-achik/ordercheck/packages/core/result"
	"github.com/abdul-hamid-achik/ordercheck/packages/core/runctx"
	"github.com/abdul-hamid-achik/ordercheck/packages/http"
)

var errNotAList = errors.New("response is not an order list")

// HookIntegration checks end-to-end consistency: the order list must grow
// after an order is created. It does not touch the run context.
func (s *Suite) HookIntegration(ctx context.Context, c Caller, rc *runctx.Context) []result.Record {
	records := []result.Record{
		result.Noted(NameHookIntegration, "Testing list state after order creation"),
	}
	name := result.Label(NameHookIntegration, "State Update")

	before, err := s.countOrders(ctx, c)
	if err != nil {
		return append(records, result.Failed(name, "initial list: "+err.Error()))
	}

	route := s.endpoints.CreateOrder
	out := c.Call(ctx, route.Method, route.URL(s.baseURL, ""), s.fixtures.Order, http.CreateOK)
	if !out.Completed() || !http.CreateOK.Contains(out.StatusCode) {
		return append(records, result.Failed(name, "create: "+failure(out)))
	}

	after, err := s.countOrders(ctx, c)
	if err != nil {
		return append(records, result.Failed(name, "updated list: "+err.Error()))
	}

	if after > before {
		return append(records, result.Passed(name,
			fmt.Sprintf("Order list updated after creation (%d -> %d)", before, after)))
	}
	return append(records, result.Failed(name,
		fmt.Sprintf("Order list not updated (%d -> %d)", before, after)))
}

func (s *Suite) countOrders(ctx context.Context, c Caller) (int, error) {
	route := s.endpoints.ListOrders
	out := c.Call(ctx, route.Method, route.URL(s.baseURL, ""), nil, http.ReadOK)
	if !out.Succeeded() {
		return 0, errors.New(failure(out))
	}

	n, ok := collectionSize(out)
	if !ok {
		return 0, errNotAList
	}
	return n, nil
}
