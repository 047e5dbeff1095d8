package store

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"taskhub/models"
)

func preloadTeam(db *gorm.DB) *gorm.DB {
	return db.Preload("Owner").
		Preload("Members", func(db *gorm.DB) *gorm.DB { return db.Order("team_members.id") }).
		Preload("Members.User")
}

// CreateTeam inserts the team and its initial membership rows.
func (s *Store) CreateTeam(ctx context.Context, t *models.Team) error {
	return wrap(s.conn(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(t).Error; err != nil {
			return err
		}
		return syncTeamMembers(tx, t)
	}))
}

func (s *Store) TeamByID(ctx context.Context, id uint) (*models.Team, error) {
	var t models.Team
	if err := preloadTeam(s.conn(ctx)).First(&t, id).Error; err != nil {
		return nil, wrap(err)
	}
	return &t, nil
}

// TeamsForUser returns the teams userID owns or belongs to.
func (s *Store) TeamsForUser(ctx context.Context, userID uint) ([]models.Team, error) {
	var teams []models.Team
	member := s.conn(ctx).Model(&models.TeamMember{}).Select("team_id").Where("user_id = ?", userID)
	err := preloadTeam(s.conn(ctx)).
		Where("owner_id = ? OR id IN (?)", userID, member).
		Order("id").
		Find(&teams).Error
	if err != nil {
		return nil, wrap(err)
	}
	return teams, nil
}

// SaveTeam writes the team's scalar fields and makes the stored membership
// set equal to t.Members.
func (s *Store) SaveTeam(ctx context.Context, t *models.Team) error {
	return wrap(s.conn(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Team{}).Where("id = ?", t.ID).Updates(map[string]interface{}{
			"name":        t.Name,
			"description": t.Description,
			"owner_id":    t.OwnerID,
		})
		if err := affected(res); err != nil {
			return err
		}
		return syncTeamMembers(tx, t)
	}))
}

// DeleteTeam removes the team and every membership row.
func (s *Store) DeleteTeam(ctx context.Context, id uint) error {
	return wrap(s.conn(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("team_id = ?", id).Delete(&models.TeamMember{}).Error; err != nil {
			return err
		}
		return affected(tx.Delete(&models.Team{}, id))
	}))
}

func syncTeamMembers(tx *gorm.DB, t *models.Team) error {
	want := t.MemberIDs()
	del := tx.Where("team_id = ?", t.ID)
	if len(want) > 0 {
		del = del.Where("user_id NOT IN ?", want)
	}
	if err := del.Delete(&models.TeamMember{}).Error; err != nil {
		return err
	}

	var have []uint
	if err := tx.Model(&models.TeamMember{}).Where("team_id = ?", t.ID).Pluck("user_id", &have).Error; err != nil {
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
		if err := tx.Create(&models.TeamMember{TeamID: t.ID, UserID: id}).Error; err != nil {
			return err
		}
		present[id] = true
	}
	return nil
}
