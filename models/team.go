package models

import (
	"time"

	"gorm.io/gorm"
)

// Team represents a group of users collaborating under a single owner
type Team struct {
	gorm.Model
	Name        string `gorm:"not null" json:"name"`
	Description string `json:"description"`
	OwnerID     uint   `gorm:"not null;index" json:"owner_id"`

	// Relations
	Owner   *User        `gorm:"foreignKey:OwnerID" json:"-"`
	Members []TeamMember `gorm:"foreignKey:TeamID" json:"-"`
}

// TeamMember is one row of a team's membership set. Row order is join order.
type TeamMember struct {
	ID        uint      `gorm:"primarykey" json:"-"`
	TeamID    uint      `gorm:"not null;uniqueIndex:idx_team_member" json:"team_id"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_team_member;index" json:"user_id"`
	CreatedAt time.Time `json:"created_at"`

	// Relations
	User *User `json:"-"`
}

// MemberIDs returns the member user ids in join order.
func (t *Team) MemberIDs() []uint {
	ids := make([]uint, 0, len(t.Members))
	for _, m := range t.Members {
		ids = append(ids, m.UserID)
	}
	return ids
}

func (t *Team) HasMember(userID uint) bool {
	for _, m := range t.Members {
		if m.UserID == userID {
			return true
		}
	}
	return false
}

// AddMember appends userID unless already present and reports whether it did.
func (t *Team) AddMember(userID uint) bool {
	if t.HasMember(userID) {
		return false
	}
	t.Members = append(t.Members, TeamMember{TeamID: t.ID, UserID: userID})
	return true
}

// RemoveMember drops userID from the membership set and reports whether it was present.
func (t *Team) RemoveMember(userID uint) bool {
	kept := t.Members[:0]
	removed := false
	for _, m := range t.Members {
		if m.UserID == userID {
			removed = true
			continue
		}
		kept = append(kept, m)
	}
	t.Members = kept
	return removed
}

// CanView reports whether userID may read the team.
func (t *Team) CanView(userID uint) bool {
	return t.OwnerID == userID || t.HasMember(userID)
}

// TeamView is the API representation of a team
type TeamView struct {
	ID          uint      `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Owner       UserRef   `json:"owner_id"`
	Members     []UserRef `json:"members"`
	CreatedAt   time.Time `json:"created_at"`
}

func (t *Team) View() TeamView {
	members := make([]UserRef, 0, len(t.Members))
	for _, m := range t.Members {
		members = append(members, RefUser(m.UserID, m.User))
	}
	return TeamView{
		ID:          t.ID,
		Name:        t.Name,
		Description: t.Description,
		Owner:       RefUser(t.OwnerID, t.Owner),
		Members:     members,
		CreatedAt:   t.CreatedAt,
	}
}
