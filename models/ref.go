package models

import (
	"encoding/json"
)

// UserRef is a reference to a user that is either a bare id or a resolved
// profile. The store decides which once, when it loads the owning record.
type UserRef struct {
	ID      uint
	Profile *UserProfile
}

// RefID builds an unresolved reference.
func RefID(id uint) UserRef {
	return UserRef{ID: id}
}

// RefUser builds a resolved reference from a loaded user. A nil or zero user
// yields an unresolved reference to id.
func RefUser(id uint, u *User) UserRef {
	if u == nil || u.ID == 0 {
		return RefID(id)
	}
	p := u.Profile()
	return UserRef{ID: u.ID, Profile: &p}
}

// Resolved reports whether the profile was loaded.
func (r UserRef) Resolved() bool {
	return r.Profile != nil
}

func (r UserRef) MarshalJSON() ([]byte, error) {
	if r.Profile != nil {
		return json.Marshal(r.Profile)
	}
	return json.Marshal(r.ID)
}

func (r *UserRef) UnmarshalJSON(data []byte) error {
	var id uint
	if err := json.Unmarshal(data, &id); err == nil {
		*r = UserRef{ID: id}
		return nil
	}
	var p UserProfile
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*r = UserRef{ID: p.ID, Profile: &p}
	return nil
}
