package service

import (
	"context"
	"fmt"
	"strings"

	"taskhub/models"
	"taskhub/utils"
)

type CreateTeamInput struct {
	Name        string
	Description string
	Members     []uint
}

// UpdateTeamInput changes only the fields that are set.
type UpdateTeamInput struct {
	Name        *string
	Description *string
}

// LeaveResult reports what happened to the team after a leave.
type LeaveResult struct {
	Team    *models.Team
	Deleted bool
}

func (s *Service) CreateTeam(ctx context.Context, actor uint, in CreateTeamInput) (*models.Team, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, validation("team name is required")
	}

	team := &models.Team{
		Name:        name,
		Description: strings.TrimSpace(in.Description),
		OwnerID:     actor,
	}
	for _, id := range in.Members {
		if id != 0 {
			team.AddMember(id)
		}
	}
	team.AddMember(actor)

	if err := s.repo.CreateTeam(ctx, team); err != nil {
		return nil, unavailable(err)
	}
	return s.reloadTeam(ctx, team.ID)
}

func (s *Service) ListTeams(ctx context.Context, actor uint) ([]models.Team, error) {
	teams, err := s.repo.TeamsForUser(ctx, actor)
	if err != nil {
		return nil, unavailable(err)
	}
	return teams, nil
}

func (s *Service) GetTeam(ctx context.Context, id, actor uint) (*models.Team, error) {
	team, err := s.repo.TeamByID(ctx, id)
	if err != nil {
		return nil, lookup(err, "team")
	}
	if !team.CanView(actor) {
		return nil, forbidden("not authorized to view this team")
	}
	return team, nil
}

func (s *Service) UpdateTeam(ctx context.Context, id, actor uint, in UpdateTeamInput) (*models.Team, error) {
	team, err := s.ownedTeam(ctx, id, actor, "update")
	if err != nil {
		return nil, err
	}
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return nil, validation("team name is required")
		}
		team.Name = name
	}
	if in.Description != nil {
		team.Description = strings.TrimSpace(*in.Description)
	}
	if err := s.repo.SaveTeam(ctx, team); err != nil {
		return nil, unavailable(err)
	}
	return s.reloadTeam(ctx, id)
}

func (s *Service) DeleteTeam(ctx context.Context, id, actor uint) error {
	if _, err := s.ownedTeam(ctx, id, actor, "delete"); err != nil {
		return err
	}
	if err := s.repo.DeleteTeam(ctx, id); err != nil {
		return lookup(err, "team")
	}
	return nil
}

// InviteMember adds the user registered under email to the team.
func (s *Service) InviteMember(ctx context.Context, id uint, email string, actor uint) (*models.Team, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return nil, badRequest("email is required")
	}
	// a malformed address cannot belong to any account
	if err := utils.ValidateEmail(email); err != nil {
		return nil, notFound("user")
	}

	user, err := s.repo.UserByEmail(ctx, email)
	if err != nil {
		return nil, lookup(err, "user")
	}
	team, err := s.ownedTeam(ctx, id, actor, "invite members to")
	if err != nil {
		return nil, err
	}
	if !team.AddMember(user.ID) {
		return nil, conflict("user is already a member of this team")
	}
	if err := s.repo.SaveTeam(ctx, team); err != nil {
		return nil, unavailable(err)
	}

	s.notifyQuietly(ctx, user.ID, models.NotificationSystem,
		fmt.Sprintf("You have been added to the team %q", team.Name), team.ID)
	return s.reloadTeam(ctx, id)
}

// RemoveMember lets the owner remove anyone but themselves, and lets a member
// remove themselves.
func (s *Service) RemoveMember(ctx context.Context, id, target, actor uint) (*models.Team, error) {
	team, err := s.repo.TeamByID(ctx, id)
	if err != nil {
		return nil, lookup(err, "team")
	}
	if actor != team.OwnerID && actor != target {
		return nil, forbidden("not authorized to remove this member")
	}
	if target == team.OwnerID {
		return nil, badRequest("the team owner cannot be removed")
	}
	if actor == target && !team.HasMember(actor) {
		return nil, badRequest("you are not a member of this team")
	}
	if team.RemoveMember(target) {
		if err := s.repo.SaveTeam(ctx, team); err != nil {
			return nil, unavailable(err)
		}
	}
	return s.reloadTeam(ctx, id)
}

// LeaveTeam removes the actor. An owner leaving hands the team to a
// successor, or deletes it when nobody is left.
func (s *Service) LeaveTeam(ctx context.Context, id, actor uint) (*LeaveResult, error) {
	team, err := s.repo.TeamByID(ctx, id)
	if err != nil {
		return nil, lookup(err, "team")
	}
	isOwner := team.OwnerID == actor
	if !isOwner && !team.HasMember(actor) {
		return nil, badRequest("you are not a member of this team")
	}

	team.RemoveMember(actor)
	if isOwner {
		remaining := team.MemberIDs()
		if len(remaining) == 0 {
			if err := s.repo.DeleteTeam(ctx, id); err != nil {
				return nil, lookup(err, "team")
			}
			return &LeaveResult{Deleted: true}, nil
		}
		team.OwnerID = s.successor.PickSuccessor(remaining)
	}

	if err := s.repo.SaveTeam(ctx, team); err != nil {
		return nil, unavailable(err)
	}
	team, err = s.reloadTeam(ctx, id)
	if err != nil {
		return nil, err
	}
	return &LeaveResult{Team: team}, nil
}

// LeaveTeamAsMember removes a plain member. Owners must transfer or delete
// the team instead.
func (s *Service) LeaveTeamAsMember(ctx context.Context, id, actor uint) (*models.Team, error) {
	team, err := s.repo.TeamByID(ctx, id)
	if err != nil {
		return nil, lookup(err, "team")
	}
	if !team.HasMember(actor) {
		return nil, badRequest("you are not a member of this team")
	}
	if team.OwnerID == actor {
		return nil, badRequest("team owner cannot leave; transfer ownership or delete the team instead")
	}
	team.RemoveMember(actor)
	if err := s.repo.SaveTeam(ctx, team); err != nil {
		return nil, unavailable(err)
	}
	return s.reloadTeam(ctx, id)
}

func (s *Service) ownedTeam(ctx context.Context, id, actor uint, verb string) (*models.Team, error) {
	team, err := s.repo.TeamByID(ctx, id)
	if err != nil {
		return nil, lookup(err, "team")
	}
	if team.OwnerID != actor {
		return nil, forbidden("only the team owner can " + verb + " this team")
	}
	return team, nil
}

func (s *Service) reloadTeam(ctx context.Context, id uint) (*models.Team, error) {
	team, err := s.repo.TeamByID(ctx, id)
	if err != nil {
		return nil, lookup(err, "team")
	}
	return team, nil
}
