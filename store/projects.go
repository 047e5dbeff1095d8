package store

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"taskhub/models"
)

func preloadProject(db *gorm.DB) *gorm.DB {
	return db.Preload("Owner").
		Preload("Members", func(db *gorm.DB) *gorm.DB { return db.Order("project_members.id") }).
		Preload("Members.User")
}

func (s *Store) CreateProject(ctx context.Context, p *models.Project) error {
	return wrap(s.conn(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(p).Error; err != nil {
			return err
		}
		return syncProjectMembers(tx, p)
	}))
}

func (s *Store) ProjectByID(ctx context.Context, id uint) (*models.Project, error) {
	var p models.Project
	if err := preloadProject(s.conn(ctx)).First(&p, id).Error; err != nil {
		return nil, wrap(err)
	}
	return &p, nil
}

// ProjectsForUser returns the projects userID owns or is a member of.
func (s *Store) ProjectsForUser(ctx context.Context, userID uint) ([]models.Project, error) {
	var projects []models.Project
	member := s.conn(ctx).Model(&models.ProjectMember{}).Select("project_id").Where("user_id = ?", userID)
	err := preloadProject(s.conn(ctx)).
		Where("owner_id = ? OR id IN (?)", userID, member).
		Order("id").
		Find(&projects).Error
	if err != nil {
		return nil, wrap(err)
	}
	return projects, nil
}

func (s *Store) SaveProject(ctx context.Context, p *models.Project) error {
	return wrap(s.conn(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Project{}).Where("id = ?", p.ID).Updates(map[string]interface{}{
			"name":        p.Name,
			"description": p.Description,
			"color":       p.Color,
			"owner_id":    p.OwnerID,
		})
		if err := affected(res); err != nil {
			return err
		}
		return syncProjectMembers(tx, p)
	}))
}

func (s *Store) DeleteProject(ctx context.Context, id uint) error {
	return wrap(s.conn(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("project_id = ?", id).Delete(&models.ProjectMember{}).Error; err != nil {
			return err
		}
		return affected(tx.Delete(&models.Project{}, id))
	}))
}

func syncProjectMembers(tx *gorm.DB, p *models.Project) error {
	want := p.MemberIDs()
	del := tx.Where("project_id = ?", p.ID)
	if len(want) > 0 {
		del = del.Where("user_id NOT IN ?", want)
	}
	if err := del.Delete(&models.ProjectMember{}).Error; err != nil {
		return err
	}

	var have []uint
	if err := tx.Model(&models.ProjectMember{}).Where("project_id = ?", p.ID).Pluck("user_id", &have).Error; err != nil {
		return err
	}
	present := make(map[uint]bool, len(have))
	for _, id := range have {
		present[id] = true
	}
	for _, id := range want {
		if present[id] {
			continue
		}
		if err := tx.Create(&models.ProjectMember{ProjectID: p.ID, UserID: id}).Error; err != nil {
			return err
		}
		present[id] = true
	}
	return nil
}
