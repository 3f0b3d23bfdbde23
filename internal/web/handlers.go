package web

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"stockroom/internal/domain"
)

type ErrorResponse struct {
	Error string `json:"error"`
}

// writeError maps the domain error taxonomy to transport status codes.
// "item not found" and "attachment not found" stay distinguishable; storage
// and persistence failures are logged but not leaked to the client.
func (s *Server) writeError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, domain.ErrValidation):
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "validation failed: name is required"})
	case errors.Is(err, domain.ErrAttachmentNotFound):
		return c.JSON(http.StatusNotFound, ErrorResponse{Error: "attachment not found"})
	case errors.Is(err, domain.ErrNotFound):
		return c.JSON(http.StatusNotFound, ErrorResponse{Error: "item not found"})
	default:
		s.logger.Error("request failed", "method", c.Request().Method, "uri", c.Request().RequestURI, "error", err)
		return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal error"})
	}
}

func parseID(c echo.Context) (int64, error) {
	return strconv.ParseInt(c.Param("id"), 10, 64)
}

// allowedImageTypes is the set of MIME types accepted for uploaded photos.
// net/http.DetectContentType handles JPEG, PNG, and GIF via magic-byte
// sniffing; WebP is detected separately because the stdlib sniffer has no
// WebP signature.
var allowedImageTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/gif":  true,
}

func isWebP(data []byte) bool {
	return len(data) >= 12 &&
		string(data[0:4]) == "RIFF" &&
		string(data[8:12]) == "WEBP"
}

func allowedImageMIME(data []byte) (string, bool) {
	if isWebP(data) {
		return "image/webp", true
	}
	mime := http.DetectContentType(data)
	if allowedImageTypes[mime] {
		return mime, true
	}
	return "", false
}

// readUpload stages the "photo" multipart part into memory, enforcing the
// size cap and sniffing the image type. A missing part returns (nil, "",
// nil) so callers can treat the attachment as optional.
func (s *Server) readUpload(c echo.Context) ([]byte, string, error) {
	fh, err := c.FormFile("photo")
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
			return nil, "", nil
		}
		return nil, "", echo.NewHTTPError(http.StatusBadRequest, "failed to parse upload")
	}

	if fh.Size > s.maxUploadBytes {
		return nil, "", echo.NewHTTPError(http.StatusBadRequest, "photo too large")
	}

	file, err := fh.Open()
	if err != nil {
		return nil, "", echo.NewHTTPError(http.StatusBadRequest, "failed to open upload")
	}
	defer closeWithLog(file, "upload file", s)

	data, err := io.ReadAll(io.LimitReader(file, s.maxUploadBytes+1))
	if err != nil {
		return nil, "", echo.NewHTTPError(http.StatusInternalServerError, "failed to read upload")
	}
	if int64(len(data)) > s.maxUploadBytes {
		return nil, "", echo.NewHTTPError(http.StatusBadRequest, "photo too large")
	}

	mimeType, ok := allowedImageMIME(data)
	if !ok {
		return nil, "", echo.NewHTTPError(http.StatusBadRequest, "unsupported image format")
	}

	return data, mimeType, nil
}

func (s *Server) handleCreateItem(c echo.Context) error {
	name := c.FormValue("name")
	description := c.FormValue("description")

	photo, mimeType, err := s.readUpload(c)
	if err != nil {
		return err
	}

	item, err := s.svc.CreateItem(c.Request().Context(), name, description, photo, mimeType)
	if err != nil {
		return s.writeError(c, err)
	}

	return c.JSON(http.StatusCreated, item)
}

func (s *Server) handleListItems(c echo.Context) error {
	items, err := s.svc.ListItems(c.Request().Context())
	if err != nil {
		return s.writeError(c, err)
	}
	if items == nil {
		items = []*domain.InventoryItem{}
	}
	return c.JSON(http.StatusOK, items)
}

func (s *Server) handleGetItem(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid item id"})
	}

	item, err := s.svc.GetItem(c.Request().Context(), id)
	if err != nil {
		return s.writeError(c, err)
	}
	return c.JSON(http.StatusOK, item)
}

type updateItemRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
}

// handleUpdateItem applies merge-patch semantics: a field absent from the
// body is left unchanged, an explicit empty description clears it.
func (s *Server) handleUpdateItem(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid item id"})
	}

	var req updateItemRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
	}

	item, err := s.svc.UpdateItem(c.Request().Context(), id, req.Name, req.Description)
	if err != nil {
		return s.writeError(c, err)
	}
	return c.JSON(http.StatusOK, item)
}

func (s *Server) handleDeleteItem(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid item id"})
	}

	if err := s.svc.DeleteItem(c.Request().Context(), id); err != nil {
		return s.writeError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (s *Server) handleReplacePhoto(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid item id"})
	}

	photo, mimeType, err := s.readUpload(c)
	if err != nil {
		return err
	}
	if photo == nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "photo file required"})
	}

	item, err := s.svc.ReplaceAttachment(c.Request().Context(), id, photo, mimeType)
	if err != nil {
		return s.writeError(c, err)
	}
	return c.JSON(http.StatusOK, item)
}

func (s *Server) handleGetPhoto(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid item id"})
	}

	reader, mimeType, err := s.svc.GetAttachment(c.Request().Context(), id)
	if err != nil {
		return s.writeError(c, err)
	}
	defer closeWithLog(reader, "photo reader", s)

	return c.Stream(http.StatusOK, mimeType, reader)
}

func (s *Server) handleRemovePhoto(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid item id"})
	}

	item, err := s.svc.RemoveAttachment(c.Request().Context(), id)
	if err != nil {
		return s.writeError(c, err)
	}
	return c.JSON(http.StatusOK, item)
}

func closeWithLog(c io.Closer, label string, s *Server) {
	if err := c.Close(); err != nil {
		s.logger.Error("failed to close resource", "label", label, "error", err)
	}
}
