package dto

type SkillResponse struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
}

type LanguageResponse struct {
	ID     uint            `json:"id"`
	Name   string          `json:"name"`
	Skills []SkillResponse `json:"skills"`
}

type LanguagesResponse struct {
	Languages []LanguageResponse `json:"languages"`
}
