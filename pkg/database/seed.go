package database

import (
	"gorm.io/gorm"

	"github.com/hsik0225/dropthecode/internal/model"
)

// seedSkills maps each bootstrap language to the skills valid under it. This
// is the whole capability catalog: created once, never mutated afterwards.
var seedSkills = map[string][]string{
	"java":       {"spring"},
	"javascript": {"vue", "react", "angular"},
	"python":     {"django"},
	"kotlin":     {"spring"},
	"c":          {},
}

var seedLanguageOrder = []string{"java", "javascript", "python", "kotlin", "c"}

// SeedCatalog inserts the language/skill reference data if it is not there
// yet. Safe to run on every startup.
func SeedCatalog(db *gorm.DB) error {
	return db.Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&model.Language{}).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return nil
		}

		skillByName := make(map[string]*model.Skill)
		for _, languageName := range seedLanguageOrder {
			language := model.Language{Name: languageName}
			if err := tx.Create(&language).Error; err != nil {
				return err
			}

			for _, skillName := range seedSkills[languageName] {
				skill, ok := skillByName[skillName]
				if !ok {
					skill = &model.Skill{Name: skillName}
					if err := tx.Create(skill).Error; err != nil {
						return err
					}
					skillByName[skillName] = skill
				}

				edge := model.LanguageSkill{LanguageID: language.ID, SkillID: skill.ID}
				if err := tx.Create(&edge).Error; err != nil {
					return err
				}
			}
		}

		return nil
	})
}
