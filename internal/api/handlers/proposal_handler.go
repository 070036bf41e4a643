// internal/api/handlers/proposal_handler.go
package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/andresuchdata/autopo-proposals/internal/domain"
	"github.com/andresuchdata/autopo-proposals/internal/proposal"
	"github.com/andresuchdata/autopo-proposals/internal/repository"
	"github.com/andresuchdata/autopo-proposals/internal/service"
	"github.com/andresuchdata/autopo-proposals/internal/source"
	"github.com/andresuchdata/autopo-proposals/internal/storage"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// maxSnapshotBytes bounds an inline snapshot posted to /generate.
const maxSnapshotBytes = 32 << 20

type ProposalHandler struct {
	proposalService *service.ProposalService
}

func NewProposalHandler(proposalService *service.ProposalService) *ProposalHandler {
	return &ProposalHandler{proposalService: proposalService}
}

type listProposalsQuery struct {
	Status        string `form:"status" binding:"proposal_status"`
	WarehouseID   int64  `form:"warehouse_id" binding:"omitempty,min=0"`
	Search        string `form:"search"`
	Page          int    `form:"page" binding:"omitempty,min=1"`
	PageSize      int    `form:"page_size" binding:"omitempty,min=1,max=200"`
	SortField     string `form:"sort_field"`
	SortDirection string `form:"sort_direction" binding:"omitempty,oneof=asc desc ASC DESC"`
}

type transitionRequest struct {
	Action string `json:"action" binding:"required,proposal_action"`
}

type bulkTransitionRequest struct {
	IDs    []string `json:"ids" binding:"required,min=1,dive,required"`
	Action string   `json:"action" binding:"required,proposal_action"`
}

type impactRequest struct {
	IDs []string `json:"ids"`
}

type proposalResponse struct {
	Proposal         *domain.Proposal        `json:"proposal"`
	AvailableActions []domain.ProposalAction `json:"available_actions"`
}

// Generate runs a generation from the configured source, or from the snapshot in
// the request body when one is posted.
func (h *ProposalHandler) Generate(c *gin.Context) {
	body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxSnapshotBytes+1))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to read request body"})
		return
	}
	if len(body) > maxSnapshotBytes {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "snapshot is too large"})
		return
	}

	var batch *domain.Batch
	if len(bytes.TrimSpace(body)) == 0 {
		batch, err = h.proposalService.Generate(c.Request.Context())
	} else {
		var raw source.RawSnapshot
		dec := json.NewDecoder(bytes.NewReader(body))
		dec.UseNumber()
		if err := dec.Decode(&raw); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("invalid snapshot: %v", err)})
			return
		}
		batch, err = h.proposalService.GenerateFromSnapshot(c.Request.Context(), raw.Snapshot())
	}

	if err != nil {
		switch {
		case errors.Is(err, source.ErrNotConfigured):
			c.JSON(http.StatusBadRequest, gin.H{"error": "no snapshot source configured; post a snapshot in the request body"})
		default:
			h.internalError(c, err, "failed to generate proposals")
		}
		return
	}

	c.JSON(http.StatusCreated, batch)
}

// GetBatch returns the current batch metadata and warnings without its proposals.
func (h *ProposalHandler) GetBatch(c *gin.Context) {
	batch, err := h.proposalService.CurrentBatch(c.Request.Context())
	if err != nil {
		h.handleError(c, err, "failed to fetch batch")
		return
	}

	batch.Proposals = nil
	c.JSON(http.StatusOK, batch)
}

func (h *ProposalHandler) ListProposals(c *gin.Context) {
	var q listProposalsQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	filter := domain.ProposalFilter{
		WarehouseID:   q.WarehouseID,
		Search:        q.Search,
		SortField:     q.SortField,
		SortDirection: q.SortDirection,
		Page:          q.Page,
		PageSize:      q.PageSize,
	}
	if status, ok := domain.ParseProposalStatus(q.Status); ok {
		filter.Status = status
	}

	resp, err := h.proposalService.ListProposals(c.Request.Context(), filter)
	if err != nil {
		h.internalError(c, err, "failed to fetch proposals")
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (h *ProposalHandler) GetProposal(c *gin.Context) {
	p, err := h.proposalService.GetProposal(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.handleError(c, err, "failed to fetch proposal")
		return
	}

	c.JSON(http.StatusOK, proposalResponse{Proposal: p, AvailableActions: proposal.AvailableActions(p.Status)})
}

func (h *ProposalHandler) Transition(c *gin.Context) {
	var req transitionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	action, _ := domain.ParseProposalAction(req.Action)

	p, err := h.proposalService.Transition(c.Request.Context(), c.Param("id"), action)
	if err != nil {
		h.handleError(c, err, "failed to update proposal status")
		return
	}

	c.JSON(http.StatusOK, proposalResponse{Proposal: p, AvailableActions: proposal.AvailableActions(p.Status)})
}

func (h *ProposalHandler) BulkTransition(c *gin.Context) {
	var req bulkTransitionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	action, _ := domain.ParseProposalAction(req.Action)

	results := h.proposalService.BulkTransition(c.Request.Context(), req.IDs, action)
	succeeded := 0
	for _, r := range results {
		if r.Error == "" {
			succeeded++
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"results":   results,
		"succeeded": succeeded,
		"failed":    len(results) - succeeded,
	})
}

func (h *ProposalHandler) Impact(c *gin.Context) {
	var req impactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	summary, err := h.proposalService.Impact(c.Request.Context(), req.IDs)
	if err != nil {
		h.handleError(c, err, "failed to compute impact")
		return
	}

	c.JSON(http.StatusOK, summary)
}

// ExportCSV streams the current batch as a CSV attachment.
func (h *ProposalHandler) ExportCSV(c *gin.Context) {
	var buf bytes.Buffer
	batchID, err := h.proposalService.ExportCSV(c.Request.Context(), &buf)
	if err != nil {
		h.handleError(c, err, "failed to export proposals")
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=proposals-%s.csv", batchID))
	c.Data(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
}

func (h *ProposalHandler) UploadExport(c *gin.Context) {
	info, err := h.proposalService.UploadExport(c.Request.Context())
	if err != nil {
		h.handleError(c, err, "failed to upload export")
		return
	}

	c.JSON(http.StatusCreated, info)
}

func (h *ProposalHandler) ListExports(c *gin.Context) {
	objects, err := h.proposalService.ListExports(c.Request.Context())
	if err != nil {
		h.handleError(c, err, "failed to list exports")
		return
	}

	c.JSON(http.StatusOK, gin.H{"items": objects})
}

// handleError maps service errors to status codes; anything unknown is a 500.
func (h *ProposalHandler) handleError(c *gin.Context, err error, message string) {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "proposal not found"})
	case errors.Is(err, service.ErrNoBatch):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, proposal.ErrInvalidTransition), errors.Is(err, repository.ErrStatusConflict):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, storage.ErrDisabled):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
	default:
		h.internalError(c, err, message)
	}
}

func (h *ProposalHandler) internalError(c *gin.Context, err error, message string) {
	log.Error().Err(err).Str("path", c.FullPath()).Msg(message)
	_ = c.Error(err)
	c.JSON(http.StatusInternalServerError, gin.H{"error": message})
}
