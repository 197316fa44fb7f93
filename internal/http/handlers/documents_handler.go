// Document HTTP handlers.
//
// This file exposes read-only endpoints for claim attachments:
//   - GET /claims/{id}/documents   (metadata listing)
//   - GET /documents/{id}          (raw bytes download)
//
// Document bytes are immutable once attached, so downloads stay valid no
// matter how the owning claim's status evolves.
package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/claimsdesk/claims-backend/internal/domain"
	"github.com/claimsdesk/claims-backend/internal/services"
)

// ListClaimDocuments godoc
// @ID          listClaimDocuments
// @Summary     List documents for a claim
// @Description Returns metadata for every document attached to the claim, in attachment order. The claim must exist; a claim without documents yields an empty array.
// @Tags        Documents
// @Produce     json
//
// @Param       id  path  string  true  "Claim ID"  example(CLM-2024-0042)
//
// @Success     200  {array}  domain.Document
// @Failure     404  {object} handlers.ErrorResponse "Claim not found"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /claims/{id}/documents [get]
func (h *Handlers) ListClaimDocuments(c *gin.Context) {
	docs, err := h.docSvc.ListByClaim(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, services.ErrClaimNotFound) {
			fail(c, http.StatusNotFound, ErrCodeNotFound, err.Error())
			return
		}
		failInternal(c, err)
		return
	}
	if docs == nil {
		docs = []domain.Document{}
	}
	ok(c, http.StatusOK, docs)
}

// DownloadDocument godoc
// @ID          downloadDocument
// @Summary     Download a document
// @Description Streams the stored bytes with the original content type and a Content-Disposition carrying the uploaded file name.
// @Tags        Documents
// @Produce     octet-stream
//
// @Param       id  path  string  true  "Document ID (UUID)"  format(uuid)
//
// @Success     200  {file}   file
// @Failure     404  {object} handlers.ErrorResponse "Document not found"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /documents/{id} [get]
func (h *Handlers) DownloadDocument(c *gin.Context) {
	doc, data, err := h.docSvc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, services.ErrDocumentNotFound) {
			fail(c, http.StatusNotFound, ErrCodeNotFound, err.Error())
			return
		}
		failInternal(c, err)
		return
	}

	ct := doc.ContentType
	if ct == "" {
		ct = "application/octet-stream"
	}
	c.Header("Content-Disposition", "attachment; filename="+strconv.Quote(doc.FileName))
	c.Data(http.StatusOK, ct, data)
}
