package search

import (
	"context"
	"encoding/json"
	"html"
	"log"
	"strings"

	"github.com/google/uuid"
	"github.com/meilisearch/meilisearch-go"
	"github.com/microcosm-cc/bluemonday"

	"github.com/hsik0225/dropthecode/internal/model"
)

const teacherIndex = "teachers"

// searchLimit caps free-text hits; the capability search handles precise
// matching, this index only powers discovery.
const searchLimit = 20

// MeiliSearchService mirrors teacher profile text into a meilisearch index
// for free-text discovery. It implements the teacher module's ProfileIndexer.
type MeiliSearchService struct {
	client    meilisearch.ServiceManager
	sanitizer *bluemonday.Policy
}

func NewMeiliSearchService(client meilisearch.ServiceManager) *MeiliSearchService {
	s := &MeiliSearchService{
		client:    client,
		sanitizer: bluemonday.StrictPolicy(),
	}
	s.initIndex()
	return s
}

func (s *MeiliSearchService) initIndex() {
	sortableAttrs := []string{"career", "sum_review_count"}
	if _, err := s.client.Index(teacherIndex).UpdateSortableAttributes(&sortableAttrs); err != nil {
		log.Printf("failed to update teacher index sortable attributes: %v", err)
	}
}

type meiliTeacherDoc struct {
	ID             string   `json:"id"`
	Name           string   `json:"name"`
	Title          string   `json:"title"`
	Content        string   `json:"content"`
	Career         int      `json:"career"`
	SumReviewCount int      `json:"sum_review_count"`
	Languages      []string `json:"languages"`
	Skills         []string `json:"skills"`
}

func (s *MeiliSearchService) cleanContentForIndex(content string) string {
	content = strings.ReplaceAll(content, "</p>", " ")
	content = strings.ReplaceAll(content, "<br>", " ")
	content = strings.ReplaceAll(content, "</div>", " ")

	sanitized := s.sanitizer.Sanitize(content)
	cleanText := html.UnescapeString(sanitized)
	return strings.Join(strings.Fields(cleanText), " ")
}

func (s *MeiliSearchService) IndexProfile(ctx context.Context, profile *model.TeacherProfile) error {
	languages := make([]string, 0, len(profile.Languages))
	for _, lang := range profile.Languages {
		languages = append(languages, lang.Name)
	}
	skills := make([]string, 0, len(profile.Skills))
	for _, skill := range profile.Skills {
		skills = append(skills, skill.Name)
	}

	doc := meiliTeacherDoc{
		ID:             profile.ID.String(),
		Name:           profile.Member.Name,
		Title:          profile.Title,
		Content:        s.cleanContentForIndex(profile.Content),
		Career:         profile.Career,
		SumReviewCount: profile.SumReviewCount,
		Languages:      languages,
		Skills:         skills,
	}

	_, err := s.client.Index(teacherIndex).AddDocuments([]meiliTeacherDoc{doc}, strPtr("id"))
	return err
}

func (s *MeiliSearchService) RemoveProfile(ctx context.Context, id uuid.UUID) error {
	_, err := s.client.Index(teacherIndex).DeleteDocument(id.String())
	return err
}

// SearchProfiles returns matching profile ids in relevance order. The caller
// rehydrates them from the database, which stays the source of truth.
func (s *MeiliSearchService) SearchProfiles(ctx context.Context, query string) ([]uuid.UUID, error) {
	resp, err := s.client.Index(teacherIndex).Search(query, &meilisearch.SearchRequest{
		Limit: searchLimit,
	})
	if err != nil {
		return nil, err
	}

	payload, err := json.Marshal(resp.Hits)
	if err != nil {
		return nil, err
	}
	var docs []meiliTeacherDoc
	if err := json.Unmarshal(payload, &docs); err != nil {
		return nil, err
	}

	ids := make([]uuid.UUID, 0, len(docs))
	for _, doc := range docs {
		id, err := uuid.Parse(doc.ID)
		if err != nil {
			continue
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func strPtr(s string) *string {
	return &s
}
