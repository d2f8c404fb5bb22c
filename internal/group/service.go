package group

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// Common errors
var (
	ErrGroupNotFound       = errors.New("group not found")
	ErrMemberNotFound      = errors.New("member not found")
	ErrMemberAlreadyExists = errors.New("user is already a member of this group")
)

// UnknownUsersError reports member IDs that do not correspond to any user
type UnknownUsersError struct {
	UserIDs []int64
}

func (e *UnknownUsersError) Error() string {
	return fmt.Sprintf("users not found: %v", e.UserIDs)
}

// Service handles group business logic
type Service struct {
	repo *Repository
}

// NewService creates a new group service
func NewService(repo *Repository) *Service {
	return &Service{repo: repo}
}

// Create creates a new group with the creator and the requested members.
// Every requested member ID must belong to an existing user.
func (s *Service) Create(ctx context.Context, creatorID int64, req *CreateGroupRequest) (*Group, error) {
	memberIDs := uniqueIDs(append([]int64{creatorID}, req.MemberIDs...))

	existing, err := s.repo.ExistingUserIDs(ctx, memberIDs)
	if err != nil {
		return nil, err
	}
	if missing := missingIDs(memberIDs, existing); len(missing) > 0 {
		return nil, &UnknownUsersError{UserIDs: missing}
	}

	return s.repo.Create(ctx, creatorID, req, memberIDs)
}

// GetByID retrieves a group by its ID
func (s *Service) GetByID(ctx context.Context, id int64) (*Group, error) {
	group, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if group == nil {
		return nil, ErrGroupNotFound
	}
	return group, nil
}

// GetByIDWithMembers retrieves a group with all its members
func (s *Service) GetByIDWithMembers(ctx context.Context, id int64) (*Group, []*Member, error) {
	group, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	members, err := s.repo.GetMembers(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	return group, members, nil
}

// ListByUserID retrieves all groups for a user
func (s *Service) ListByUserID(ctx context.Context, userID int64, page, perPage int) ([]*Group, int, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 || perPage > 100 {
		perPage = 20
	}

	offset := (page - 1) * perPage
	return s.repo.ListByUserID(ctx, userID, perPage, offset)
}

// AddMember adds a user to a group
func (s *Service) AddMember(ctx context.Context, groupID int64, req *AddMemberRequest) (*Member, error) {
	group, err := s.repo.GetByID(ctx, groupID)
	if err != nil {
		return nil, err
	}
	if group == nil {
		return nil, ErrGroupNotFound
	}

	existing, err := s.repo.ExistingUserIDs(ctx, []int64{req.UserID})
	if err != nil {
		return nil, err
	}
	if len(existing) == 0 {
		return nil, &UnknownUsersError{UserIDs: []int64{req.UserID}}
	}

	member, err := s.repo.GetMember(ctx, groupID, req.UserID)
	if err != nil {
		return nil, err
	}
	if member != nil {
		return nil, ErrMemberAlreadyExists
	}

	return s.repo.AddMember(ctx, groupID, req.UserID)
}

// RemoveMember removes a user from a group
func (s *Service) RemoveMember(ctx context.Context, groupID, userID int64) error {
	err := s.repo.RemoveMember(ctx, groupID, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrMemberNotFound
	}
	return err
}

// Delete soft-deletes a group
func (s *Service) Delete(ctx context.Context, id int64) error {
	err := s.repo.SoftDelete(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrGroupNotFound
	}
	return err
}

func uniqueIDs(ids []int64) []int64 {
	seen := make(map[int64]bool, len(ids))
	result := make([]int64, 0, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			result = append(result, id)
		}
	}
	return result
}

func missingIDs(wanted, found []int64) []int64 {
	have := make(map[int64]bool, len(found))
	for _, id := range found {
		have[id] = true
	}
	var missing []int64
	for _, id := range wanted {
		if !have[id] {
			missing = append(missing, id)
		}
	}
	return missing
}
