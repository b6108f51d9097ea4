package service

import (
	"encoding/json"
	"fmt"
	"html"
	"log"
	"os"
	"strings"
	"time"

	"anoa.com/nawhoknow/internal/entity"
	"github.com/meilisearch/meilisearch-go"
	"github.com/microcosm-cc/bluemonday"
)

type MeiliSearchService interface {
	IndexPrediction(prediction *entity.Prediction) error
	DeletePrediction(id string) error
	// SearchPredictions queries the index server-side. Members only hit
	// approved and resolved documents; admins search every status.
	SearchPredictions(query string, limit int64, admin bool) ([]PredictionDoc, error)
	GenerateSearchToken(userRole string) (string, error)
}

type meiliSearchService struct {
	client        meilisearch.ServiceManager
	masterKey     string
	signingKeyUID string
	signingKey    string
	sanitizer     *bluemonday.Policy
}

func NewMeiliSearchService(client meilisearch.ServiceManager) MeiliSearchService {
	masterKey := os.Getenv("MEILI_MASTER_KEY")
	if masterKey == "" {
		log.Println("WARNING: MEILI_MASTER_KEY is not set.")
	}

	s := &meiliSearchService{
		client:    client,
		masterKey: masterKey,
		sanitizer: bluemonday.StrictPolicy(),
	}
	s.initIndexes()
	s.initSigningKey()
	return s
}

func (s *meiliSearchService) initSigningKey() {
	resp, err := s.client.GetKeys(&meilisearch.KeysQuery{
		Limit: 20,
	})
	if err != nil {
		log.Printf("Failed to get meilisearch keys: %v", err)
		return
	}

	for _, key := range resp.Results {
		if key.Name == "TenantTokenSigner" {
			s.signingKeyUID = key.UID
			s.signingKey = key.Key
			log.Println("Found existing Meilisearch signing key")
			return
		}
	}

	expiry := time.Now().AddDate(100, 0, 0)

	key, err := s.client.CreateKey(&meilisearch.Key{
		Description: "Key to sign tenant tokens",
		Name:        "TenantTokenSigner",
		Actions:     []string{"search"},
		Indexes:     []string{"predictions"},
		ExpiresAt:   expiry,
	})
	if err != nil {
		log.Printf("Failed to create signing key: %v", err)
		return
	}

	s.signingKeyUID = key.UID
	s.signingKey = key.Key
	log.Println("Created new Meilisearch signing key")
}

func (s *meiliSearchService) initIndexes() {
	filterableAttrs := []string{"status", "category_id", "resolved"}
	filterableInterface := make([]any, len(filterableAttrs))
	for i, v := range filterableAttrs {
		filterableInterface[i] = v
	}
	_, err := s.client.Index("predictions").UpdateFilterableAttributes(&filterableInterface)
	if err != nil {
		log.Printf("Failed to update predictions filterable attributes: %v", err)
	}

	sortableAttrs := []string{"created_at", "expires_at", "upvotes"}
	_, err = s.client.Index("predictions").UpdateSortableAttributes(&sortableAttrs)
	if err != nil {
		log.Printf("Failed to update predictions sortable attributes: %v", err)
	}

	log.Println("Meilisearch indexes initialized")
}

// PredictionDoc is the shape stored in the predictions index and returned
// verbatim from server-side searches.
type PredictionDoc struct {
	ID         string          `json:"id"`
	Topic      string          `json:"topic"`
	Status     string          `json:"status"`
	Resolved   bool            `json:"resolved"`
	CategoryID string          `json:"category_id"`
	Upvotes    int             `json:"upvotes"`
	CreatedAt  int64           `json:"created_at"`
	ExpiresAt  int64           `json:"expires_at"`
	User       meiliUserSubset `json:"user"`
	Category   string          `json:"category"`
}

type meiliUserSubset struct {
	Username  string `json:"username"`
	AvatarURL string `json:"avatar_url"`
}

func (s *meiliSearchService) cleanTopicForIndex(topic string) string {
	sanitized := s.sanitizer.Sanitize(topic)
	cleanText := html.UnescapeString(sanitized)
	return strings.Join(strings.Fields(cleanText), " ")
}

func (s *meiliSearchService) IndexPrediction(prediction *entity.Prediction) error {
	doc := PredictionDoc{
		ID:        prediction.ID.String(),
		Topic:     s.cleanTopicForIndex(prediction.Topic),
		Status:    prediction.Status,
		Resolved:  prediction.IsResolved(),
		Upvotes:   prediction.Upvotes,
		CreatedAt: prediction.CreatedAt.Unix(),
		ExpiresAt: prediction.ExpiresAt.Unix(),
		User: meiliUserSubset{
			Username:  prediction.User.Username,
			AvatarURL: getStringOrEmpty(prediction.User.AvatarURL),
		},
		Category: prediction.Category.Name,
	}

	if prediction.CategoryID != nil {
		doc.CategoryID = prediction.CategoryID.String()
	}

	task, err := s.client.Index("predictions").AddDocuments([]PredictionDoc{doc}, strPtr("id"))
	if err != nil {
		return err
	}
	log.Printf("Indexed prediction %s, task id: %d", prediction.ID, task.TaskUID)
	return nil
}

func getStringOrEmpty(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func (s *meiliSearchService) DeletePrediction(id string) error {
	_, err := s.client.Index("predictions").DeleteDocument(id)
	return err
}

func (s *meiliSearchService) SearchPredictions(query string, limit int64, admin bool) ([]PredictionDoc, error) {
	if limit <= 0 || limit > 50 {
		limit = 20
	}

	req := &meilisearch.SearchRequest{Limit: limit}
	if !admin {
		req.Filter = "status IN ['approved', 'resolved']"
	}

	resp, err := s.client.Index("predictions").Search(query, req)
	if err != nil {
		return nil, err
	}

	// Round-trip through JSON; the client returns hits untyped.
	raw, err := json.Marshal(resp.Hits)
	if err != nil {
		return nil, err
	}

	var docs []PredictionDoc
	if err := json.Unmarshal(raw, &docs); err != nil {
		return nil, err
	}
	return docs, nil
}

func (s *meiliSearchService) GenerateSearchToken(userRole string) (string, error) {
	if s.signingKeyUID == "" || s.signingKey == "" {
		return "", fmt.Errorf("signing key not initialized")
	}

	searchRules := map[string]any{}

	switch userRole {
	case entity.RoleAdmin:
		// Admins can search every status, including pending and rejected.
		searchRules["predictions"] = map[string]any{"filter": nil}
	default:
		searchRules["predictions"] = map[string]any{
			"filter": "status IN ['approved', 'resolved']",
		}
	}

	token, err := s.client.GenerateTenantToken(s.signingKeyUID, searchRules, &meilisearch.TenantTokenOptions{
		APIKey:    s.signingKey,
		ExpiresAt: time.Now().Add(24 * time.Hour),
	})

	if err != nil {
		return "", err
	}

	return token, nil
}

func strPtr(s string) *string {
	return &s
}
