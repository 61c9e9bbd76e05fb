package controllers

import (
	"log/slog"
	"net/http"

	"venuebooking/internal/delivery/http/helpers"
	"venuebooking/internal/domain"
)

// IssueInvitationRequest is the request body for POST /events/{eventID}/invitations.
// An empty performer_email falls back to the event's performer email.
type IssueInvitationRequest struct {
	PerformerEmail string `json:"performer_email"`
	Send           bool   `json:"send"`
}

// IssueInvitationResponse carries the stored invitation and its shareable link.
// EmailError is set when sending was requested and failed; the invitation stays valid.
type IssueInvitationResponse struct {
	Invitation *domain.Invitation `json:"invitation"`
	Link       string             `json:"link"`
	EmailSent  bool               `json:"email_sent"`
	EmailError string             `json:"email_error,omitempty"`
}

// IssueInvitationSuccessResponse is the success response envelope for POST /events/{eventID}/invitations (201).
type IssueInvitationSuccessResponse struct {
	Data  IssueInvitationResponse `json:"data"`
	Error *helpers.APIError       `json:"error"`
}

// ListEventInvitationsResponse is the response body for GET /events/{eventID}/invitations.
type ListEventInvitationsResponse struct {
	Items      []*domain.Invitation   `json:"items"`
	Pagination helpers.PaginationMeta `json:"pagination"`
}

// ListEventInvitationsSuccessResponse is the success response envelope for GET /events/{eventID}/invitations (200).
type ListEventInvitationsSuccessResponse struct {
	Data  ListEventInvitationsResponse `json:"data"`
	Error *helpers.APIError            `json:"error"`
}

// SignupRequest is the request body for POST /signup.
type SignupRequest struct {
	PerformerName  string `json:"performer_name"`
	PerformerEmail string `json:"performer_email"`
	PerformerID    string `json:"performer_id"`
	Notes          string `json:"notes"`
}

// Validate implements Validator.
func (s SignupRequest) Validate() []string {
	var errs []string
	if s.PerformerName == "" {
		errs = append(errs, "performer_name is required")
	}
	if s.PerformerEmail == "" {
		errs = append(errs, "performer_email is required")
	}
	return errs
}

// BookingSuccessResponse is the success response envelope for POST /signup (201).
type BookingSuccessResponse struct {
	Data  *domain.Booking   `json:"data"`
	Error *helpers.APIError `json:"error"`
}

type InvitationController struct {
	Logger  *slog.Logger
	Service domain.InvitationService
}

func NewInvitationController(logger *slog.Logger, svc domain.InvitationService) *InvitationController {
	return &InvitationController{
		Logger:  logger,
		Service: svc,
	}
}

// IssueInvitation godoc
// @Summary Issue a booking invitation
// @Description Creates a single-use invitation valid for five minutes and returns its signup link. With send=true the link is also emailed.
// @Tags invitations
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID"
// @Param invitation body IssueInvitationRequest true "Performer contact"
// @Success 201 {object} controllers.IssueInvitationSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict (event already booked)"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{eventID}/invitations [post]
func (c *InvitationController) IssueInvitation(w http.ResponseWriter, r *http.Request) {
	eventID := r.PathValue("eventID")
	if eventID == "" {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "missing eventID")
		return
	}
	var req IssueInvitationRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	inv, link, err := c.Service.IssueInvitation(r.Context(), eventID, req.PerformerEmail)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	resp := IssueInvitationResponse{Invitation: inv, Link: link}
	if req.Send {
		if err := c.Service.SendInvitation(r.Context(), inv, link); err != nil {
			c.Logger.WarnContext(r.Context(), "invitation email failed", "invitation_id", inv.ID, "err", err)
			resp.EmailError = err.Error()
		} else {
			resp.EmailSent = true
		}
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, resp)
}

// ListEventInvitations godoc
// @Summary List invitations issued for an event
// @Description Returns invitations newest first. Query params page (default 1) and page_size (default 20, max 100).
// @Tags invitations
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID"
// @Param page query int false "Page number (1-based)"
// @Param page_size query int false "Page size"
// @Success 200 {object} controllers.ListEventInvitationsSuccessResponse
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{eventID}/invitations [get]
func (c *InvitationController) ListEventInvitations(w http.ResponseWriter, r *http.Request) {
	eventID := r.PathValue("eventID")
	if eventID == "" {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "missing eventID")
		return
	}
	params := helpers.ParsePagination(r)
	list, total, err := c.Service.ListEventInvitations(r.Context(), eventID, params)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	meta := helpers.NewPaginationMeta(params.Page, params.PageSize, total)
	helpers.WriteJSONSuccess(w, http.StatusOK, ListEventInvitationsResponse{Items: list, Pagination: meta})
}

// Signup godoc
// @Summary Redeem an invitation
// @Description Claims the invitation named by token and submits a pending booking. Public endpoint.
// @Tags signup
// @Accept json
// @Produce json
// @Param token query string true "Invitation token"
// @Param booking body SignupRequest true "Performer details"
// @Success 201 {object} controllers.BookingSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found (unknown token or event)"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict (already claimed)"
// @Failure 410 {object} helpers.APIResponse "error.code: gone (expired)"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /signup [post]
func (c *InvitationController) Signup(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "missing token")
		return
	}
	var req SignupRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	booking, err := c.Service.RedeemInvitation(r.Context(), token, domain.BookingSubmission{
		PerformerName:  req.PerformerName,
		PerformerEmail: req.PerformerEmail,
		PerformerID:    req.PerformerID,
		Notes:          req.Notes,
	})
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, booking)
}
