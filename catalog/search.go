package catalog

import (
	"context"
	"sort"
	"strings"

	"github.com/peptidestore/models"
	"github.com/peptidestore/pkg/logger"
)

// searchLimit caps how many results one query returns
const searchLimit = 10

// Article is a blog entry exposed through universal search
type Article struct {
	ID          string
	Slug        string
	Title       string
	Description string
	Category    string
	Keywords    []string
}

// defaultArticles is the static research-article index. The blog itself
// is rendered elsewhere; search only needs titles and keywords.
var defaultArticles = []Article{
	{
		ID:          "peptide-storage-guide",
		Slug:        "peptide-storage-guide",
		Title:       "Proper Storage and Handling of Lyophilized Peptides",
		Description: "Temperature, light and reconstitution considerations for maintaining peptide stability in laboratory settings.",
		Category:    "Laboratory Practice",
		Keywords:    []string{"storage", "lyophilized", "reconstitution", "stability"},
	},
	{
		ID:          "understanding-coa",
		Slug:        "understanding-certificates-of-analysis",
		Title:       "Understanding Certificates of Analysis",
		Description: "How to read HPLC and mass spectrometry results on a certificate of analysis for research compounds.",
		Category:    "Quality",
		Keywords:    []string{"coa", "hplc", "purity", "mass spectrometry"},
	},
	{
		ID:          "research-use-only",
		Slug:        "what-research-use-only-means",
		Title:       "What \"Research Use Only\" Means",
		Description: "The compliance scope of RUO labeling and the responsibilities of purchasing laboratories.",
		Category:    "Compliance",
		Keywords:    []string{"ruo", "compliance", "labeling"},
	},
	{
		ID:          "warehouse-tiers",
		Slug:        "overseas-vs-us-warehouse-tiers",
		Title:       "Overseas vs. US Warehouse Tiers Explained",
		Description: "What the re-tested US tier adds over direct international fulfillment, and when it matters.",
		Category:    "Fulfillment",
		Keywords:    []string{"warehouse", "re-tested", "shipping", "fulfillment"},
	},
}

// SearchService answers universal search queries over the live catalog
// and the article index
type SearchService struct {
	source   Source
	articles []Article
	log      *logger.Logger
}

// NewSearchService creates a search service over the given catalog source
func NewSearchService(source Source, log *logger.Logger) *SearchService {
	return &SearchService{
		source:   source,
		articles: defaultArticles,
		log:      log.WithComponent("search"),
	}
}

// Search returns up to 10 results for the query, products before
// articles, title matches before body matches. Queries shorter than two
// characters yield no results. The second return is the total match
// count before the cap.
func (s *SearchService) Search(ctx context.Context, query string) ([]models.SearchResult, int, error) {
	query = strings.ToLower(strings.TrimSpace(query))
	if len(query) < 2 {
		return []models.SearchResult{}, 0, nil
	}

	records, err := s.source.FetchAll(ctx)
	if err != nil {
		return nil, 0, err
	}
	products := GroupRecords(records)

	var results []models.SearchResult

	for _, p := range products {
		searchable := strings.ToLower(strings.Join(append([]string{
			p.Name, p.ShortDescription, p.Description, p.SKU, p.Category,
		}, p.Synonyms...), " "))
		if !strings.Contains(searchable, query) {
			continue
		}

		description := p.ShortDescription
		if description == "" {
			description = truncate(p.Description, 150)
		}
		results = append(results, models.SearchResult{
			Type:        models.SearchTypeProduct,
			ID:          p.ID,
			Title:       p.Name,
			Description: description,
			URL:         "/products/" + p.Slug,
			Category:    p.Category,
			Price:       p.Price,
			Image:       p.Image,
		})
	}

	for _, a := range s.articles {
		searchable := strings.ToLower(strings.Join(append([]string{
			a.Title, a.Description, a.Category,
		}, a.Keywords...), " "))
		if !strings.Contains(searchable, query) {
			continue
		}
		results = append(results, models.SearchResult{
			Type:        models.SearchTypeArticle,
			ID:          a.ID,
			Title:       a.Title,
			Description: a.Description,
			URL:         "/blog/" + a.Slug,
			Category:    a.Category,
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		a, b := results[i], results[j]
		if a.Type != b.Type {
			return a.Type == models.SearchTypeProduct
		}
		aTitle := strings.Contains(strings.ToLower(a.Title), query)
		bTitle := strings.Contains(strings.ToLower(b.Title), query)
		return aTitle && !bTitle
	})

	total := len(results)
	if total > searchLimit {
		results = results[:searchLimit]
	}
	return results, total, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
