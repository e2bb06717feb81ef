package handler

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	apperrors "docvault/internal/errors"
	"docvault/internal/service"
)

// DocumentHandler serves document storage endpoints.
type DocumentHandler struct {
	svc service.DocumentService
}

// NewDocumentHandler creates a new document handler.
func NewDocumentHandler(svc service.DocumentService) *DocumentHandler {
	return &DocumentHandler{svc: svc}
}

// UpdateDocumentRequest carries metadata changes; omitted fields are kept.
type UpdateDocumentRequest struct {
	FileName    *string `json:"fileName"`
	Category    *string `json:"category"`
	Description *string `json:"description"`
}

// Upload godoc
// @Summary Upload a document
// @Tags documents
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "Document content"
// @Param userId formData int true "Owner id"
// @Param category formData string true "Category"
// @Param description formData string false "Description"
// @Success 200 {object} model.Document
// @Failure 400 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Failure 413 {object} errors.ErrorResponse
// @Router /documents/upload [post]
func (h *DocumentHandler) Upload(c echo.Context) error {
	fh, err := c.FormFile("file")
	if err != nil {
		var he *echo.HTTPError
		if errors.As(err, &he) {
			return err
		}
		return respondError(c, apperrors.Wrap(err, apperrors.KindBadInput, "file is required"))
	}
	userID, err := strconv.ParseUint(c.FormValue("userId"), 10, 64)
	if err != nil || userID == 0 {
		return respondError(c, apperrors.BadInput("invalid userId: %s", c.FormValue("userId")))
	}
	category := c.FormValue("category")
	if category == "" {
		return respondError(c, apperrors.BadInput("category is required"))
	}

	f, err := fh.Open()
	if err != nil {
		return respondError(c, apperrors.Internal(err, "open upload"))
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		return respondError(c, apperrors.Internal(err, "read upload"))
	}

	doc, err := h.svc.UploadDocument(c.Request().Context(), service.Upload{
		FileName:    fh.Filename,
		ContentType: fh.Header.Get(echo.HeaderContentType),
		Data:        data,
	}, uint(userID), category, c.FormValue("description"))
	if err != nil {
		return respondError(c, err)
	}

	doc.FileData = nil
	return c.JSON(http.StatusOK, doc)
}

// GetDocument godoc
// @Summary Get document with content
// @Tags documents
// @Produce json
// @Param id path int true "Document ID"
// @Success 200 {object} model.Document
// @Failure 400 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /documents/{id} [get]
func (h *DocumentHandler) GetDocument(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return respondError(c, err)
	}
	doc, err := h.svc.GetDocumentByID(c.Request().Context(), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, doc)
}

// ListAll godoc
// @Summary List every document
// @Tags admin
// @Produce json
// @Success 200 {array} model.Document
// @Failure 500 {object} errors.ErrorResponse
// @Router /documents/admin/all [get]
func (h *DocumentHandler) ListAll(c echo.Context) error {
	docs, err := h.svc.GetAllDocuments(c.Request().Context())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, docs)
}

// Stats godoc
// @Summary Document statistics
// @Tags admin
// @Produce json
// @Success 200 {object} model.DocumentStats
// @Failure 500 {object} errors.ErrorResponse
// @Router /documents/admin/stats [get]
func (h *DocumentHandler) Stats(c echo.Context) error {
	stats, err := h.svc.Stats(c.Request().Context())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, stats)
}

// ListByUser godoc
// @Summary List documents of a user
// @Tags documents
// @Produce json
// @Param userId path int true "Owner id"
// @Success 200 {array} model.Document
// @Failure 400 {object} errors.ErrorResponse
// @Router /documents/user/{userId} [get]
func (h *DocumentHandler) ListByUser(c echo.Context) error {
	userID, err := parseID(c, "userId")
	if err != nil {
		return respondError(c, err)
	}
	docs, err := h.svc.GetAllDocumentsByUserID(c.Request().Context(), userID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, docs)
}

// ListByCategory godoc
// @Summary List documents of a user in a category
// @Tags documents
// @Produce json
// @Param userId path int true "Owner id"
// @Param category path string true "Category"
// @Success 200 {array} model.Document
// @Failure 400 {object} errors.ErrorResponse
// @Router /documents/user/{userId}/category/{category} [get]
func (h *DocumentHandler) ListByCategory(c echo.Context) error {
	userID, err := parseID(c, "userId")
	if err != nil {
		return respondError(c, err)
	}
	docs, err := h.svc.GetDocumentsByUserIDAndCategory(c.Request().Context(), userID, c.Param("category"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, docs)
}

// Search godoc
// @Summary Search documents of a user by file name
// @Tags documents
// @Produce json
// @Param userId path int true "Owner id"
// @Param fileName query string true "File name fragment"
// @Success 200 {array} model.Document
// @Failure 400 {object} errors.ErrorResponse
// @Router /documents/user/{userId}/search [get]
func (h *DocumentHandler) Search(c echo.Context) error {
	userID, err := parseID(c, "userId")
	if err != nil {
		return respondError(c, err)
	}
	if !c.QueryParams().Has("fileName") {
		return respondError(c, apperrors.BadInput("fileName is required"))
	}
	docs, err := h.svc.SearchDocumentsByFileName(c.Request().Context(), userID, c.QueryParam("fileName"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, docs)
}

// DeleteDocument godoc
// @Summary Delete document
// @Tags documents
// @Produce plain
// @Param id path int true "Document ID"
// @Success 200 {string} string "Document deleted successfully"
// @Failure 400 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /documents/{id} [delete]
func (h *DocumentHandler) DeleteDocument(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return respondError(c, err)
	}
	if err := h.svc.DeleteDocument(c.Request().Context(), id); err != nil {
		return respondError(c, err)
	}
	return c.String(http.StatusOK, "Document deleted successfully")
}

// Download godoc
// @Summary Download document content
// @Tags documents
// @Produce octet-stream
// @Param id path int true "Document ID"
// @Success 200 {file} binary
// @Success 304
// @Failure 400 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /documents/download/{id} [get]
func (h *DocumentHandler) Download(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return respondError(c, err)
	}
	doc, err := h.svc.DownloadDocument(c.Request().Context(), id)
	if err != nil {
		return respondError(c, err)
	}

	header := c.Response().Header()
	// rows stored without a checksum get no validator
	if doc.Checksum != "" {
		etag := strconv.Quote(doc.Checksum)
		header.Set("ETag", etag)
		if c.Request().Header.Get("If-None-Match") == etag {
			return c.NoContent(http.StatusNotModified)
		}
	}
	header.Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=document_%d.bin", id))
	return c.Blob(http.StatusOK, echo.MIMEOctetStream, doc.FileData)
}

// UpdateDocument godoc
// @Summary Update document metadata
// @Tags documents
// @Accept json
// @Produce json
// @Param id path int true "Document ID"
// @Param request body UpdateDocumentRequest true "Metadata to change"
// @Success 200 {object} model.Document
// @Failure 400 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /documents/{id} [put]
func (h *DocumentHandler) UpdateDocument(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return respondError(c, err)
	}
	var req UpdateDocumentRequest
	if err := bindAndValidate(c, &req); err != nil {
		return respondError(c, err)
	}

	doc, err := h.svc.UpdateDocument(c.Request().Context(), id, service.DocumentPatch{
		FileName:    req.FileName,
		Category:    req.Category,
		Description: req.Description,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, doc)
}
