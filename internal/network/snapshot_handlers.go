package network

import (
	"errors"
	"io/fs"
	"net/http"

	"github.com/labstack/echo/v4"

	domainerrors "github.com/leengari/memstore/internal/domain/errors"
)

type (
	SnapshotReqBody struct {
		// Empty means the configured snapshot path
		Path string `json:"path"`
	}

	SnapshotStats struct {
		Path      string   `json:"path"`
		Databases []string `json:"databases"`
	}
)

func (s *HTTPServer) SaveSnapshot(c *CustomContext) error {
	var reqBody SnapshotReqBody
	if err := ValidateRequest(c, &reqBody); err != nil {
		return err
	}

	path, err := s.engine.Save(reqBody.Path)
	if err != nil {
		if path == "" {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		return c.InternalError(err, "error saving snapshot")
	}
	return c.JSON(http.StatusOK, SnapshotStats{Path: path, Databases: s.engine.ListDatabases()})
}

func (s *HTTPServer) LoadSnapshot(c *CustomContext) error {
	var reqBody SnapshotReqBody
	if err := ValidateRequest(c, &reqBody); err != nil {
		return err
	}

	path, err := s.engine.Load(reqBody.Path)
	switch {
	case err == nil:
		return c.JSON(http.StatusOK, SnapshotStats{Path: path, Databases: s.engine.ListDatabases()})
	case path == "":
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case errors.Is(err, fs.ErrNotExist):
		return echo.NewHTTPError(http.StatusNotFound, "snapshot not found: "+path)
	case domainerrors.KindOf(err) != domainerrors.KindInternal:
		return err
	default:
		return c.InternalError(err, "error loading snapshot")
	}
}
