package models

// Direction indicates whether a category (and its transactions) tracks
// money going out or coming in.
type Direction string

const (
	DirectionExpense Direction = "expense"
	DirectionEarning Direction = "earning"
)

// Valid reports whether d is one of the known directions.
func (d Direction) Valid() bool {
	return d == DirectionExpense || d == DirectionEarning
}

// TotalType selects how totals for a category are presented.
type TotalType string

const (
	// TotalTypeRegular categories sum their transactions as-is and
	// participate in the monthly totals tree.
	TotalTypeRegular TotalType = "regular"
	// TotalTypeRunning categories are excluded from the totals tree and
	// shown on their own page with sign-inverted amounts.
	TotalTypeRunning TotalType = "running"
)

// Category is a named classification node. Categories form a tree through
// ParentID; deleting a parent clears its children's ParentID rather than
// deleting them.
type Category struct {
	Base
	Name      string    `gorm:"uniqueIndex;not null" json:"name"`
	Slug      string    `gorm:"uniqueIndex;not null" json:"slug"`
	Direction Direction `gorm:"not null;default:expense" json:"direction"`
	Order     int       `gorm:"not null;default:0" json:"order"`
	TotalType TotalType `gorm:"not null;default:regular" json:"total_type"`
	ParentID  *uint     `json:"parent_id,omitempty"`

	// Relationships
	Parent   *Category  `gorm:"foreignKey:ParentID;constraint:OnDelete:SET NULL" json:"parent,omitempty"`
	Children []Category `gorm:"foreignKey:ParentID" json:"children,omitempty"`
}
