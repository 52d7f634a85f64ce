package model

// Language and Skill are reference data created once at bootstrap and never
// mutated afterwards. LanguageSkill fixes which skills are valid under which
// language.

type Language struct {
	ID     uint    `gorm:"primaryKey" json:"id"`
	Name   string  `gorm:"size:50;uniqueIndex;not null" json:"name"`
	Skills []Skill `gorm:"many2many:language_skills" json:"skills,omitempty"`
}

type Skill struct {
	ID   uint   `gorm:"primaryKey" json:"id"`
	Name string `gorm:"size:50;uniqueIndex;not null" json:"name"`
}

type LanguageSkill struct {
	LanguageID uint `gorm:"primaryKey"`
	SkillID    uint `gorm:"primaryKey"`
}
