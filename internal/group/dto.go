package group

// CreateGroupRequest represents the request to create a group
type CreateGroupRequest struct {
	Name        string  `json:"name" validate:"required,min=1,max=100"`
	Description *string `json:"description,omitempty"`
	MemberIDs   []int64 `json:"member_ids" validate:"required,min=1"`
}

// AddMemberRequest represents the request to add a member to a group
type AddMemberRequest struct {
	UserID int64 `json:"user_id" validate:"required"`
}

// GroupResponse represents the response for a group
type GroupResponse struct {
	ID          int64             `json:"id"`
	Name        string            `json:"name"`
	Description *string           `json:"description,omitempty"`
	CreatedBy   int64             `json:"created_by"`
	CreatedAt   string            `json:"created_at"`
	Members     []*MemberResponse `json:"members,omitempty"`
}

// MemberResponse represents a group member in responses
type MemberResponse struct {
	UserID   int64  `json:"user_id"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	JoinedAt string `json:"joined_at"`
}

// ToResponse converts a Group model to a GroupResponse DTO
func (g *Group) ToResponse() *GroupResponse {
	return &GroupResponse{
		ID:          g.ID,
		Name:        g.Name,
		Description: g.Description,
		CreatedBy:   g.CreatedBy,
		CreatedAt:   g.CreatedAt.Format("2006-01-02T15:04:05Z"),
	}
}

// ToResponse converts a Member model to a MemberResponse DTO
func (m *Member) ToResponse() *MemberResponse {
	return &MemberResponse{
		UserID:   m.UserID,
		Name:     m.Name,
		Email:    m.Email,
		JoinedAt: m.JoinedAt.Format("2006-01-02T15:04:05Z"),
	}
}
