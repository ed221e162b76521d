package handlers

import (
	"github.com/spec-kit/helpdesk-portal/internal/api/dto"
	"github.com/spec-kit/helpdesk-portal/internal/domain"
	"github.com/spec-kit/helpdesk-portal/internal/policy"
	"github.com/spec-kit/helpdesk-portal/internal/service"
	"github.com/spec-kit/helpdesk-portal/internal/workflow"
)

// ticketResponse renders a row. Creator and assignee are only included when
// the row's actions permit seeing them.
func ticketResponse(row service.TicketRow) dto.TicketResponse {
	t := row.Ticket
	resp := dto.TicketResponse{
		ID:           t.ID,
		TicketNumber: t.TicketNumber,
		Subject:      t.Subject,
		Description:  t.Description,
		Phone:        t.Phone,
		Category:     t.Category,
		Priority:     t.Priority,
		Status:       t.Status,
		Company:      t.Company.DisplayName(),
		Assigned:     t.Assigned(),
		Attachments:  make([]dto.AttachmentResponse, 0, len(t.Attachments)),
		Actions:      row.Actions,
		CreatedAt:    t.CreatedAt,
		UpdatedAt:    t.UpdatedAt,
	}
	if resp.Actions == nil {
		resp.Actions = []policy.Action{}
	}
	for _, a := range t.Attachments {
		resp.Attachments = append(resp.Attachments, dto.AttachmentResponse{FileName: a.FileName, Path: a.Path})
	}
	if policy.Has(row.Actions, policy.ActionViewCreatorDetails) {
		resp.CreatedBy = creatorSummary(t.CreatedBy)
	}
	if policy.Has(row.Actions, policy.ActionViewAssigneeDetails) && t.Assigned() {
		resp.AssignedTo = &dto.PersonSummary{ID: t.AssignedTo.ID, Name: t.AssignedTo.Name, Email: t.AssignedTo.Email}
		if resp.AssignedTo.Name == "" {
			resp.AssignedTo.Name = "Unknown"
		}
	}
	return resp
}

func creatorSummary(ref domain.UserRef) *dto.PersonSummary {
	switch ref.Kind {
	case domain.RefInline:
		return &dto.PersonSummary{ID: ref.User.ID, Name: ref.User.Name, Email: ref.User.Email}
	case domain.RefID:
		return &dto.PersonSummary{ID: ref.ID, Name: "Unknown"}
	default:
		return nil
	}
}

func ticketResponses(rows []service.TicketRow) []dto.TicketResponse {
	out := make([]dto.TicketResponse, 0, len(rows))
	for _, row := range rows {
		out = append(out, ticketResponse(row))
	}
	return out
}

func listingResponse(listing *service.TicketListing) dto.TicketListResponse {
	resp := dto.TicketListResponse{
		Tickets:  ticketResponses(listing.Rows),
		Total:    listing.Total,
		Shown:    len(listing.Rows),
		LoadedAt: listing.LoadedAt,
		Creation: listing.Creation,
	}
	for _, g := range listing.Groups {
		resp.Groups = append(resp.Groups, dto.TicketGroupResponse{
			Company: g.Company,
			Count:   len(g.Rows),
			Tickets: ticketResponses(g.Rows),
		})
	}
	return resp
}

func assignmentResponse(snap workflow.AssignmentSnapshot) dto.AssignmentResponse {
	resp := dto.AssignmentResponse{
		TicketID:  snap.TicketID,
		State:     snap.State,
		Employees: make([]dto.PersonSummary, 0, len(snap.Employees)),
		Selected:  snap.Selected,
		Error:     snap.Error,
	}
	for _, e := range snap.Employees {
		resp.Employees = append(resp.Employees, dto.PersonSummary{ID: e.ID, Name: e.Name, Email: e.Email})
	}
	return resp
}

func analyticsResponse(sum *service.AnalyticsSummary) dto.AnalyticsResponse {
	resp := dto.AnalyticsResponse{
		Total:      sum.Total,
		Unassigned: sum.Unassigned,
		ByStatus:   sum.ByStatus,
		ByPriority: sum.ByPriority,
		ByCategory: sum.ByCategory,
		ByCompany:  make([]dto.CompanyCountResponse, 0, len(sum.ByCompany)),
		LoadedAt:   sum.LoadedAt,
	}
	for _, c := range sum.ByCompany {
		resp.ByCompany = append(resp.ByCompany, dto.CompanyCountResponse{Company: c.Company, Total: c.Total, Open: c.Open})
	}
	return resp
}

func userResponse(u domain.User, viewer *domain.Session) dto.UserResponse {
	resp := dto.UserResponse{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		Phone:     u.Phone,
		Role:      u.Role,
		Company:   u.Company.DisplayName(),
		Photo:     u.Photo,
		Bio:       u.Bio,
		CreatedAt: u.CreatedAt,
	}
	if u.Company.Kind != domain.RefNone {
		resp.CompanyID = u.Company.ID
	}
	if viewer != nil {
		resp.CanToggle = policy.CanChangeRole(viewer.Role(), viewer.User.ID, u.ID)
	}
	return resp
}

func companyResponse(c domain.Company) dto.CompanyResponse {
	return dto.CompanyResponse{
		ID:           c.ID,
		Name:         c.Name,
		ContactName:  c.ContactName,
		ContactEmail: c.ContactEmail,
		ContactPhone: c.ContactPhone,
		Plan:         c.Plan,
		CreatedAt:    c.CreatedAt,
	}
}

func companyResponses(companies []domain.Company) []dto.CompanyResponse {
	out := make([]dto.CompanyResponse, 0, len(companies))
	for _, c := range companies {
		out = append(out, companyResponse(c))
	}
	return out
}
