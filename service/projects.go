package service

import (
	"context"
	"fmt"
	"strings"

	"taskhub/models"
)

type CreateProjectInput struct {
	Name        string
	Description string
	Color       string
}

type UpdateProjectInput struct {
	Name        *string
	Description *string
	Color       *string
}

func (s *Service) CreateProject(ctx context.Context, actor uint, in CreateProjectInput) (*models.Project, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, validation("project name is required")
	}
	color := strings.TrimSpace(in.Color)
	if color == "" {
		color = models.DefaultProjectColor
	}

	project := &models.Project{
		Name:        name,
		Description: strings.TrimSpace(in.Description),
		Color:       color,
		OwnerID:     actor,
	}
	project.AddMember(actor)

	if err := s.repo.CreateProject(ctx, project); err != nil {
		return nil, unavailable(err)
	}
	return s.reloadProject(ctx, project.ID)
}

func (s *Service) ListProjects(ctx context.Context, actor uint) ([]models.Project, error) {
	projects, err := s.repo.ProjectsForUser(ctx, actor)
	if err != nil {
		return nil, unavailable(err)
	}
	return projects, nil
}

func (s *Service) GetProject(ctx context.Context, id, actor uint) (*models.Project, error) {
	project, err := s.repo.ProjectByID(ctx, id)
	if err != nil {
		return nil, lookup(err, "project")
	}
	if !project.CanView(actor) {
		return nil, forbidden("not authorized to view this project")
	}
	return project, nil
}

func (s *Service) UpdateProject(ctx context.Context, id, actor uint, in UpdateProjectInput) (*models.Project, error) {
	project, err := s.ownedProject(ctx, id, actor, "update")
	if err != nil {
		return nil, err
	}
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return nil, validation("project name is required")
		}
		project.Name = name
	}
	if in.Description != nil {
		project.Description = strings.TrimSpace(*in.Description)
	}
	if in.Color != nil && strings.TrimSpace(*in.Color) != "" {
		project.Color = strings.TrimSpace(*in.Color)
	}
	if err := s.repo.SaveProject(ctx, project); err != nil {
		return nil, unavailable(err)
	}
	return s.reloadProject(ctx, id)
}

// DeleteProject removes the project. Its tasks keep their dangling project id.
func (s *Service) DeleteProject(ctx context.Context, id, actor uint) error {
	if _, err := s.ownedProject(ctx, id, actor, "delete"); err != nil {
		return err
	}
	if err := s.repo.DeleteProject(ctx, id); err != nil {
		return lookup(err, "project")
	}
	return nil
}

// AddProjectMember is owner-only, whether or not userID already belongs.
func (s *Service) AddProjectMember(ctx context.Context, id, userID, actor uint) (*models.Project, error) {
	project, err := s.ownedProject(ctx, id, actor, "add members to")
	if err != nil {
		return nil, err
	}
	if _, err := s.repo.UserByID(ctx, userID); err != nil {
		return nil, lookup(err, "user")
	}
	if !project.AddMember(userID) {
		return nil, conflict("user is already a member of this project")
	}
	if err := s.repo.SaveProject(ctx, project); err != nil {
		return nil, unavailable(err)
	}

	s.notifyQuietly(ctx, userID, models.NotificationSystem,
		fmt.Sprintf("You have been added to the project %q", project.Name), project.ID)
	return s.reloadProject(ctx, id)
}

func (s *Service) RemoveProjectMember(ctx context.Context, id, userID, actor uint) (*models.Project, error) {
	project, err := s.ownedProject(ctx, id, actor, "remove members from")
	if err != nil {
		return nil, err
	}
	if userID == project.OwnerID {
		return nil, badRequest("the project owner cannot be removed")
	}
	if project.RemoveMember(userID) {
		if err := s.repo.SaveProject(ctx, project); err != nil {
			return nil, unavailable(err)
		}
	}
	return s.reloadProject(ctx, id)
}

func (s *Service) ListProjectTasks(ctx context.Context, id, actor uint) ([]models.Task, error) {
	if _, err := s.GetProject(ctx, id, actor); err != nil {
		return nil, err
	}
	tasks, err := s.repo.TasksByProject(ctx, id)
	if err != nil {
		return nil, unavailable(err)
	}
	return tasks, nil
}

func (s *Service) ownedProject(ctx context.Context, id, actor uint, verb string) (*models.Project, error) {
	project, err := s.repo.ProjectByID(ctx, id)
	if err != nil {
		return nil, lookup(err, "project")
	}
	if project.OwnerID != actor {
		return nil, forbidden("only the project owner can " + verb + " this project")
	}
	return project, nil
}

func (s *Service) reloadProject(ctx context.Context, id uint) (*models.Project, error) {
	project, err := s.repo.ProjectByID(ctx, id)
	if err != nil {
		return nil, lookup(err, "project")
	}
	return project, nil
}
