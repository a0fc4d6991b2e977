package services

import (
	"strings"

	"lootmarket/internal/domain"
	"lootmarket/internal/repos"
)

const BlogPageSize = 10

type BlogService struct {
	Repo *repos.BlogRepo
}

func NewBlogService(r *repos.BlogRepo) *BlogService { return &BlogService{Repo: r} }

func (s *BlogService) List(page int) (repos.Paged[domain.BlogPost], error) {
	return s.Repo.Published(repos.NewPage(page, BlogPageSize, BlogPageSize))
}

func (s *BlogService) Post(slug string) (domain.BlogPost, error) {
	return s.Repo.PublishedBySlug(slug)
}

// Keywords splits the comma separated meta keywords into trimmed, non-empty tags.
func Keywords(raw string) []string {
	var out []string
	for _, k := range strings.Split(raw, ",") {
		if k = strings.TrimSpace(k); k != "" {
			out = append(out, k)
		}
	}
	return out
}
