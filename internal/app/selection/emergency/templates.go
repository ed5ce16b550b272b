// internal/app/selection/emergency/templates.go
package emergency

import (
	"sort"

	"github.com/dalemusser/selecthub/internal/domain/models"
)

// responseTemplate shapes the team assembled for one emergency type: a
// single commander, a core of responders drawn from the named professions,
// and a support ring. Unknown emergency types use defaultTemplate.
type responseTemplate struct {
	Name               string
	CoreProfessions    []string
	CoreSize           int
	SupportProfessions []string
	SupportSize        int
}

var templates = map[string]responseTemplate{
	models.EmergencyOutbreak: {
		Name:               "outbreak response",
		CoreProfessions:    []string{models.ProfessionMedical, models.ProfessionNursing},
		CoreSize:           4,
		SupportProfessions: []string{models.ProfessionCare, models.ProfessionAdmin},
		SupportSize:        2,
	},
	models.EmergencyNaturalDisaster: {
		Name:               "disaster response",
		CoreProfessions:    []string{models.ProfessionMedical, models.ProfessionNursing, models.ProfessionCare},
		CoreSize:           5,
		SupportProfessions: []string{models.ProfessionTechnical, models.ProfessionAdmin},
		SupportSize:        3,
	},
	models.EmergencyStaffShortage: {
		Name:               "staffing surge",
		CoreProfessions:    []string{models.ProfessionNursing, models.ProfessionCare},
		CoreSize:           4,
		SupportProfessions: []string{models.ProfessionAdmin},
		SupportSize:        1,
	},
	models.EmergencySystemFailure: {
		Name:               "system recovery",
		CoreProfessions:    []string{models.ProfessionTechnical},
		CoreSize:           3,
		SupportProfessions: []string{models.ProfessionAdmin, models.ProfessionNursing},
		SupportSize:        2,
	},
}

var defaultTemplate = responseTemplate{
	Name:               "general emergency response",
	CoreProfessions:    []string{models.ProfessionNursing, models.ProfessionMedical},
	CoreSize:           3,
	SupportProfessions: []string{models.ProfessionAdmin},
	SupportSize:        1,
}

func templateFor(emergencyType string) responseTemplate {
	if t, ok := templates[emergencyType]; ok {
		return t
	}
	return defaultTemplate
}

// assembleTeam fills the template from the pool: the most experienced,
// most available candidate commands; core slots are filled from the core
// professions by readiness, then support slots the same way. Members are
// never double-assigned.
func assembleTeam(pool []models.CandidateProfile, tpl responseTemplate) (commander *models.CandidateProfile, core, support []models.CandidateProfile) {
	ranked := append([]models.CandidateProfile(nil), pool...)
	sort.SliceStable(ranked, func(i, j int) bool {
		ri := models.AvailabilityScore(ranked[i].Availability) + models.ExpertiseScore(ranked[i].ExpertiseLevel)
		rj := models.AvailabilityScore(ranked[j].Availability) + models.ExpertiseScore(ranked[j].ExpertiseLevel)
		if ri != rj {
			return ri > rj
		}
		return ranked[i].ExperienceYears > ranked[j].ExperienceYears
	})

	taken := make(map[string]bool)
	take := func(professions []string, n int) []models.CandidateProfile {
		var out []models.CandidateProfile
		for _, p := range ranked {
			if len(out) == n {
				break
			}
			if taken[p.UserID.Hex()] {
				continue
			}
			if len(professions) > 0 && !contains(professions, p.Profession) {
				continue
			}
			taken[p.UserID.Hex()] = true
			out = append(out, p)
		}
		// professions exhausted: fill remaining slots from anyone left
		for _, p := range ranked {
			if len(out) == n {
				break
			}
			if taken[p.UserID.Hex()] {
				continue
			}
			taken[p.UserID.Hex()] = true
			out = append(out, p)
		}
		return out
	}

	if lead := take(nil, 1); len(lead) == 1 {
		commander = &lead[0]
	}
	core = take(tpl.CoreProfessions, tpl.CoreSize)
	support = take(tpl.SupportProfessions, tpl.SupportSize)
	return commander, core, support
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
