package network

import (
	"encoding/json"
	"net/http"

	"github.com/leengari/memstore/internal/domain/data"
	"github.com/leengari/memstore/internal/query/predicate"
)

type (
	ValuesReqBody struct {
		Values map[string]json.RawMessage `json:"values" validate:"required"`
	}

	FilterReqBody struct {
		Conditions map[string]json.RawMessage `json:"conditions"`
	}

	QueryReqBody predicate.QueryJSON

	recordsResponse struct {
		Records []*data.Record `json:"records"`
		Count   int            `json:"count"`
	}
)

func records(recs []*data.Record) recordsResponse {
	if recs == nil {
		recs = []*data.Record{}
	}
	return recordsResponse{Records: recs, Count: len(recs)}
}

// bindValues validates the body and decodes its values with the table's column kinds
func (s *HTTPServer) bindValues(c *CustomContext, raw map[string]json.RawMessage) (map[string]data.Value, error) {
	kinds, err := s.engine.ColumnKinds(c.Param("db"), c.Param("table"))
	if err != nil {
		return nil, err
	}
	return decodeValues(raw, kinds)
}

func (s *HTTPServer) SelectAll(c *CustomContext) error {
	recs, err := s.engine.SelectAll(c.Param("db"), c.Param("table"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, records(recs))
}

func (s *HTTPServer) InsertRecord(c *CustomContext) error {
	var reqBody ValuesReqBody
	if err := ValidateRequest(c, &reqBody); err != nil {
		return err
	}
	values, err := s.bindValues(c, reqBody.Values)
	if err != nil {
		return err
	}

	rec, err := s.engine.Insert(c.Param("db"), c.Param("table"), values)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, rec)
}

func (s *HTTPServer) GetRecord(c *CustomContext) error {
	rec, err := s.engine.Get(c.Param("db"), c.Param("table"), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, rec)
}

func (s *HTTPServer) UpdateRecord(c *CustomContext) error {
	var reqBody ValuesReqBody
	if err := ValidateRequest(c, &reqBody); err != nil {
		return err
	}
	values, err := s.bindValues(c, reqBody.Values)
	if err != nil {
		return err
	}

	rec, err := s.engine.Update(c.Param("db"), c.Param("table"), c.Param("id"), values)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, rec)
}

func (s *HTTPServer) DeleteRecord(c *CustomContext) error {
	if err := s.engine.Delete(c.Param("db"), c.Param("table"), c.Param("id")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

func (s *HTTPServer) FilterEquals(c *CustomContext) error {
	var reqBody FilterReqBody
	if err := ValidateRequest(c, &reqBody); err != nil {
		return err
	}
	conditions, err := s.bindValues(c, reqBody.Conditions)
	if err != nil {
		return err
	}

	recs, err := s.engine.FilterEquals(c.Param("db"), c.Param("table"), conditions)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, records(recs))
}

func (s *HTTPServer) SelectWhere(c *CustomContext) error {
	var reqBody QueryReqBody
	if err := ValidateRequest(c, &reqBody); err != nil {
		return err
	}

	db, table := c.Param("db"), c.Param("table")
	kinds, err := s.engine.ColumnKinds(db, table)
	if err != nil {
		return err
	}
	q, err := toQuery(reqBody, kinds)
	if err != nil {
		return err
	}

	recs, err := s.engine.SelectWhere(db, table, q)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, records(recs))
}
