package network

import (
	"encoding/json"
	"net/http"
)

type (
	CreateIndexReqBody struct {
		Column string `json:"column" validate:"required"`
	}

	LookupReqBody struct {
		Value json.RawMessage `json:"value" validate:"required"`
	}
)

func (s *HTTPServer) CreateIndex(c *CustomContext) error {
	var reqBody CreateIndexReqBody
	if err := ValidateRequest(c, &reqBody); err != nil {
		return err
	}

	db, table := c.Param("db"), c.Param("table")
	if err := s.engine.CreateIndex(db, table, reqBody.Column); err != nil {
		return err
	}

	info, err := s.engine.DescribeTable(db, table)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, info)
}

func (s *HTTPServer) DropIndex(c *CustomContext) error {
	if err := s.engine.DropIndex(c.Param("db"), c.Param("table"), c.Param("column")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

func (s *HTTPServer) SelectByIndex(c *CustomContext) error {
	var reqBody LookupReqBody
	if err := ValidateRequest(c, &reqBody); err != nil {
		return err
	}

	db, table, column := c.Param("db"), c.Param("table"), c.Param("column")
	kinds, err := s.engine.ColumnKinds(db, table)
	if err != nil {
		return err
	}
	values, err := decodeValues(map[string]json.RawMessage{column: reqBody.Value}, kinds)
	if err != nil {
		return err
	}

	recs, err := s.engine.SelectByIndex(db, table, column, values[column])
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, records(recs))
}
