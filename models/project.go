package models

import (
	"time"

	"gorm.io/gorm"
)

const DefaultProjectColor = "#9b87f5"

// Project groups tasks. Only the owner may change it; members may read it.
type Project struct {
	gorm.Model
	Name        string `gorm:"not null" json:"name"`
	Description string `json:"description"`
	Color       string `gorm:"default:'#9b87f5'" json:"color"`
	OwnerID     uint   `gorm:"not null;index" json:"owner_id"`

	// Relations
	Owner   *User           `gorm:"foreignKey:OwnerID" json:"-"`
	Members []ProjectMember `gorm:"foreignKey:ProjectID" json:"-"`
}

// ProjectMember is one row of a project's membership set
type ProjectMember struct {
	ID        uint      `gorm:"primarykey" json:"-"`
	ProjectID uint      `gorm:"not null;uniqueIndex:idx_project_member" json:"project_id"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_project_member;index" json:"user_id"`
	CreatedAt time.Time `json:"created_at"`

	User *User `json:"-"`
}

func (p *Project) MemberIDs() []uint {
	ids := make([]uint, 0, len(p.Members))
	for _, m := range p.Members {
		ids = append(ids, m.UserID)
	}
	return ids
}

func (p *Project) HasMember(userID uint) bool {
	for _, m := range p.Members {
		if m.UserID == userID {
			return true
		}
	}
	return false
}

func (p *Project) AddMember(userID uint) bool {
	if p.HasMember(userID) {
		return false
	}
	p.Members = append(p.Members, ProjectMember{ProjectID: p.ID, UserID: userID})
	return true
}

func (p *Project) RemoveMember(userID uint) bool {
	kept := p.Members[:0]
	removed := false
	for _, m := range p.Members {
		if m.UserID == userID {
			removed = true
			continue
		}
		kept = append(kept, m)
	}
	p.Members = kept
	return removed
}

// CanView reports whether userID is the owner or a member.
func (p *Project) CanView(userID uint) bool {
	return p.OwnerID == userID || p.HasMember(userID)
}

type ProjectView struct {
	ID          uint      `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Color       string    `json:"color"`
	Owner       UserRef   `json:"owner_id"`
	Members     []UserRef `json:"members"`
	CreatedAt   time.Time `json:"created_at"`
}

func (p *Project) View() ProjectView {
	members := make([]UserRef, 0, len(p.Members))
	for _, m := range p.Members {
		members = append(members, RefUser(m.UserID, m.User))
	}
	return ProjectView{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Color:       p.Color,
		Owner:       RefUser(p.OwnerID, p.Owner),
		Members:     members,
		CreatedAt:   p.CreatedAt,
	}
}
