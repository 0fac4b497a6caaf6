package network

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/leengari/memstore/internal/domain/data"
	"github.com/leengari/memstore/internal/query/predicate"
)

// decodeValues converts a JSON object into record values. The column kinds
// only decide how JSON numbers are read; see data.ParseJSON.
func decodeValues(raw map[string]json.RawMessage, kinds map[string]data.Kind) (map[string]data.Value, error) {
	values := make(map[string]data.Value, len(raw))
	for col, b := range raw {
		v, err := data.ParseJSON(b, kinds[col])
		if err != nil {
			return nil, echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("column %s: %v", col, err))
		}
		values[col] = v
	}
	return values, nil
}

// toQuery converts the request body into a predicate query
func toQuery(body QueryReqBody, kinds map[string]data.Kind) (predicate.Query, error) {
	q, err := predicate.QueryJSON(body).Query(kinds)
	if err != nil {
		return predicate.Query{}, echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return q, nil
}
