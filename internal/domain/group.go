package domain

// Group gathers users searching for a place together. Members are the users
// whose GroupID points to the group; the creator is always a member.
type Group struct {
	BaseModel
	Name        string      `gorm:"size:255;not null"`
	Description string      `gorm:"type:text"`
	Budget      int         `gorm:"not null;default:0;index"`
	Status      GroupStatus `gorm:"size:16;not null;default:OPEN;index"`
	CreatorID   uint        `gorm:"uniqueIndex;not null"`
	Picture     string      `gorm:"size:255"`

	Members []User `gorm:"foreignKey:GroupID"`

	// Creator is resolved from CreatorID when the group is built from a DTO.
	// It is never persisted.
	Creator *User `gorm:"-"`
}

// HasMember reports whether userID belongs to the group.
func (g *Group) HasMember(userID uint) bool {
	for _, m := range g.Members {
		if m.ID == userID {
			return true
		}
	}
	return false
}

// GroupMessage is a message posted in a group conversation.
type GroupMessage struct {
	BaseModel
	GroupID  uint   `gorm:"index;not null"`
	AuthorID uint   `gorm:"index;not null"`
	Content  string `gorm:"type:text;not null"`
}
