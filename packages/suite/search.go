package suite

import (
	"context"
	"fmt"
	"strconv"

	"github.com/abdul-hamid-achik/ordercheck/packages/core/result"
	"github.com/abdul-hamid-achik/ordercheck/packages/core/runctx"
	"github.com/abdul-hamid-achik/ordercheck/packages/http"
)

// limitParam is the only search parameter sent as a number in JSON bodies
const limitParam = "limit"

// Search runs the customer and product lookups. Each lookup is its own
// record.
func (s *Suite) Search(ctx context.Context, c Caller, rc *runctx.Context) []result.Record {
	limit := strconv.Itoa(s.fixtures.SearchLimit)

	customers := map[string]string{"q": s.fixtures.CustomerQuery, "query": s.fixtures.CustomerQuery, limitParam: limit}
	products := map[string]string{"q": s.fixtures.ProductQuery, "query": s.fixtures.ProductQuery, limitParam: limit}
	if s.fixtures.ProductFilter != "" {
		products["category"] = s.fixtures.ProductFilter
	}

	return []result.Record{
		s.lookup(ctx, c, s.endpoints.SearchCustomers, result.Label(NameSearch, "Customer Search"), customers, "customers"),
		s.lookup(ctx, c, s.endpoints.SearchProducts, result.Label(NameSearch, "Product Search"), products, "products"),
	}
}

// lookup sends params as a query string on GET routes and as a JSON body
// otherwise
func (s *Suite) lookup(ctx context.Context, c Caller, route Route, name string, params map[string]string, noun string) result.Record {
	var out http.Outcome
	if route.Method == "GET" {
		out = c.Call(ctx, route.Method, route.URLWithQuery(s.baseURL, params), nil, http.ReadOK)
	} else {
		body := make(map[string]any, len(params))
		for k, v := range params {
			body[k] = v
		}
		if n, err := strconv.Atoi(params[limitParam]); err == nil {
			body[limitParam] = n
		}
		out = c.Call(ctx, route.Method, route.URL(s.baseURL, ""), body, http.ReadOK)
	}

	if !out.Succeeded() {
		return result.Failed(name, failure(out))
	}

	if n, ok := collectionSize(out); ok {
		return result.Passed(name, fmt.Sprintf("Found %d %s", n, noun))
	}
	return result.Passed(name, "Search returned results")
}
