package network

import (
	"net/http"

	"github.com/leengari/memstore/internal/domain/schema"
)

type (
	CreateDatabaseReqBody struct {
		Name string `json:"name" validate:"required"`
	}

	ColumnReqBody struct {
		Name string `json:"name" validate:"required"`
		// INT, FLOAT, TEXT or BOOL (case-insensitive)
		Type string `json:"type" validate:"required"`
	}

	CreateTableReqBody struct {
		Name    string          `json:"name" validate:"required"`
		Columns []ColumnReqBody `json:"columns" validate:"required,min=1,dive"`
	}

	namesResponse struct {
		Names []string `json:"names"`
	}
)

func (s *HTTPServer) ListDatabases(c *CustomContext) error {
	return c.JSON(http.StatusOK, namesResponse{Names: s.engine.ListDatabases()})
}

func (s *HTTPServer) CreateDatabase(c *CustomContext) error {
	var reqBody CreateDatabaseReqBody
	if err := ValidateRequest(c, &reqBody); err != nil {
		return err
	}
	if err := s.engine.CreateDatabase(reqBody.Name); err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, reqBody)
}

func (s *HTTPServer) DropDatabase(c *CustomContext) error {
	if err := s.engine.DropDatabase(c.Param("db")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

func (s *HTTPServer) ListTables(c *CustomContext) error {
	names, err := s.engine.ListTables(c.Param("db"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, namesResponse{Names: names})
}

func (s *HTTPServer) CreateTable(c *CustomContext) error {
	var reqBody CreateTableReqBody
	if err := ValidateRequest(c, &reqBody); err != nil {
		return err
	}

	columns := make([]schema.Column, len(reqBody.Columns))
	for i, col := range reqBody.Columns {
		columns[i] = schema.Column{Name: col.Name, Type: schema.ColumnType(col.Type)}
	}

	db := c.Param("db")
	if err := s.engine.CreateTable(db, reqBody.Name, columns); err != nil {
		return err
	}

	info, err := s.engine.DescribeTable(db, reqBody.Name)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, info)
}

func (s *HTTPServer) DescribeTable(c *CustomContext) error {
	info, err := s.engine.DescribeTable(c.Param("db"), c.Param("table"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, info)
}

func (s *HTTPServer) DropTable(c *CustomContext) error {
	if err := s.engine.DropTable(c.Param("db"), c.Param("table")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
