package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/peptidestore/config"
	"github.com/peptidestore/models"
	"github.com/peptidestore/pkg/logger"
)

// Source delivers the current flat catalog. Every call must observe
// fresh data: implementations are required to defeat caches.
type Source interface {
	FetchAll(ctx context.Context) ([]models.VariantRecord, error)
}

// AirtableClient fetches the catalog from the Airtable REST API
type AirtableClient struct {
	cfg    config.CatalogConfig
	client *http.Client
	log    *logger.Logger
}

// NewAirtableClient creates a catalog client for the configured base
func NewAirtableClient(cfg config.CatalogConfig, log *logger.Logger) *AirtableClient {
	return &AirtableClient{
		cfg:    cfg,
		client: &http.Client{},
		log:    log.WithComponent("catalog"),
	}
}

// airtableRecord is one raw row of a list response
type airtableRecord struct {
	ID     string         `json:"id"`
	Fields map[string]any `json:"fields"`
}

// airtableListResponse is one page of a list response
type airtableListResponse struct {
	Records []airtableRecord `json:"records"`
	Offset  string           `json:"offset,omitempty"`
}

// FetchAll retrieves every catalog record, following pagination. The
// request carries a cache-busting timestamp and no-store headers so a
// stale intermediary can never satisfy it.
func (c *AirtableClient) FetchAll(ctx context.Context) ([]models.VariantRecord, error) {
	ctx, cancel := context.WithTimeout(ctx, c.cfg.FetchTimeout)
	defer cancel()

	var records []models.VariantRecord
	offset := ""

	for {
		page, err := c.fetchPage(ctx, offset)
		if err != nil {
			return nil, err
		}
		for _, raw := range page.Records {
			records = append(records, mapRecord(raw))
		}
		if page.Offset == "" {
			break
		}
		offset = page.Offset
	}

	c.log.Debug("catalog fetched", "records", len(records))
	return records, nil
}

func (c *AirtableClient) fetchPage(ctx context.Context, offset string) (*airtableListResponse, error) {
	endpoint := fmt.Sprintf("%s/%s/%s", c.cfg.BaseURL, c.cfg.BaseID, c.cfg.TableID)

	query := url.Values{}
	query.Set("pageSize", "100")
	query.Set("t", fmt.Sprintf("%d", time.Now().UnixMilli())) // cache buster
	if offset != "" {
		query.Set("offset", offset)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint+"?"+query.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build catalog request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	req.Header.Set("Cache-Control", "no-store")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("catalog fetch failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("catalog fetch failed: status %d", resp.StatusCode)
	}

	var page airtableListResponse
	if err := json.NewDecoder(resp.Body).Decode(&page); err != nil {
		return nil, fmt.Errorf("failed to decode catalog response: %w", err)
	}
	return &page, nil
}

// mapRecord maps a raw Airtable row onto a VariantRecord
func mapRecord(raw airtableRecord) models.VariantRecord {
	f := fields(raw.Fields)
	name := f.str("Product_Name")

	slug := f.str("Product_Slug")
	if slug == "" {
		slug = GenerateSlug(name)
	}

	location := f.str("Warehouse_Location")
	if location == "" {
		location = models.LocationBoth
	}

	unitSize := f.str("Unit_Size")
	if unitSize == "" {
		unitSize = "1 Vial"
	}

	return models.VariantRecord{
		ProductID:         f.str("Product_ID"),
		ProductName:       name,
		ProductSlug:       slug,
		VariantStrength:   f.str("Variant_Strength"),
		Category:          f.str("Category"),
		PriceUSD:          f.num("Price_USD"),
		InStock:           f.boolean("In_Stock"),
		WarehouseLocation: location,
		SKUCode:           f.str("SKU_Code"),
		ShortDescription:  f.str("Short_Description"),
		FullDescription:   f.str("Full_Description"),
		ImageURL:          normalizeImageURL(raw.Fields["Image_URL"]),
		Specification:     f.str("Specification"),
		Synonyms:          normalizeSynonyms(raw.Fields["Synonyms"]),
		Featured:          f.boolean("Featured"),
		PopularityScore:   f.num("Popularity_Score"),
		UnitSize:          unitSize,
		IsDiscontinued:    f.boolean("Is_Discontinued"),
		RecordID:          raw.ID,
	}
}

type fields map[string]any

func (f fields) str(key string) string {
	if v, ok := f[key].(string); ok {
		return v
	}
	return ""
}

func (f fields) num(key string) float64 {
	switch v := f[key].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	}
	return 0
}

func (f fields) boolean(key string) bool {
	v, _ := f[key].(bool)
	return v
}

const placeholderImage = "/images/products/placeholder.jpg"

// normalizeImageURL extracts a usable URL from an Airtable attachment
// field. Only id, url and filename are guaranteed on an attachment;
// thumbnails may be absent.
func normalizeImageURL(attachments any) string {
	switch v := attachments.(type) {
	case string:
		if strings.HasPrefix(v, "https://") {
			return v
		}
	case []any:
		if len(v) == 0 {
			return placeholderImage
		}
		return attachmentURL(v[0])
	case map[string]any:
		return attachmentURL(v)
	}
	return placeholderImage
}

func attachmentURL(attachment any) string {
	obj, ok := attachment.(map[string]any)
	if !ok {
		if s, isStr := attachment.(string); isStr && strings.HasPrefix(s, "https://") {
			return s
		}
		return placeholderImage
	}
	if u, ok := obj["url"].(string); ok && strings.HasPrefix(u, "https://") {
		return u
	}
	// Fall back to the full-size thumbnail
	if thumbs, ok := obj["thumbnails"].(map[string]any); ok {
		for _, size := range []string{"full", "large"} {
			if t, ok := thumbs[size].(map[string]any); ok {
				if u, ok := t["url"].(string); ok && strings.HasPrefix(u, "https://") {
					return u
				}
			}
		}
	}
	return placeholderImage
}

// normalizeSynonyms accepts either a list or a comma-separated string
func normalizeSynonyms(value any) []string {
	switch v := value.(type) {
	case []any:
		var out []string
		for _, item := range v {
			if s, ok := item.(string); ok && s != "" {
				out = append(out, s)
			}
		}
		return out
	case string:
		var out []string
		for _, part := range strings.Split(v, ",") {
			if trimmed := strings.TrimSpace(part); trimmed != "" {
				out = append(out, trimmed)
			}
		}
		return out
	}
	return nil
}
