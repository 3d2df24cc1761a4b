package model

import "time"

// Lab is one physical laboratory and the contiguous PC range it owns.
// Rows are seeded from configuration at startup; FreeUse is the only
// field mutated at runtime.
type Lab struct {
	ID        int64  `gorm:"primaryKey" json:"id"`
	Name      string `gorm:"size:128;not null" json:"name"`
	FirstPC   int    `gorm:"not null" json:"firstPc"`
	LastPC    int    `gorm:"not null" json:"lastPc"`
	FreeUse   bool   `gorm:"not null;default:false" json:"freeUse"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// OwnsPC reports whether the PC number falls in the lab's range.
func (l Lab) OwnsPC(pc int) bool { return pc >= l.FirstPC && pc <= l.LastPC }
