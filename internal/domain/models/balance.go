// internal/domain/models/balance.go
package models

import "time"

// Profession categories the balance constraint distributes members across.
const (
	ProfessionMedical   = "medical"
	ProfessionNursing   = "nursing"
	ProfessionCare      = "care"
	ProfessionRehab     = "rehab"
	ProfessionAdmin     = "admin"
	ProfessionTechnical = "technical"
)

// ProfessionCategories lists all categories in a stable order.
var ProfessionCategories = []string{
	ProfessionMedical,
	ProfessionNursing,
	ProfessionCare,
	ProfessionRehab,
	ProfessionAdmin,
	ProfessionTechnical,
}

// CategoryBounds configures the allowed member count per profession
// category. Max <= 0 means unbounded.
type CategoryBounds struct {
	Min int `bson:"min" json:"min"`
	Max int `bson:"max" json:"max"`
}

// CategoryBalance is the computed distribution for one category.
type CategoryBalance struct {
	Category string  `bson:"category" json:"category"`
	Count    int     `bson:"count" json:"count"`
	Percent  float64 `bson:"percent" json:"percent"`
	Min      int     `bson:"min" json:"min"`
	Max      int     `bson:"max" json:"max"`
}

// InBounds reports whether the category count satisfies its bounds.
func (c CategoryBalance) InBounds() bool {
	if c.Count < c.Min {
		return false
	}
	if c.Max > 0 && c.Count > c.Max {
		return false
	}
	return true
}

// ProfessionBalance summarizes how the selected members distribute across
// profession categories. ComputedAt records when the underlying member set
// was last evaluated; the snapshot is recomputed whenever the set changes.
type ProfessionBalance struct {
	Categories   []CategoryBalance `bson:"categories" json:"categories"`
	BalanceScore float64           `bson:"balance_score" json:"balance_score"`
	ComputedAt   time.Time         `bson:"computed_at" json:"computed_at"`
}
