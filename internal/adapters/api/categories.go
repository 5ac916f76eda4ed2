package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/mvaldes/invctl/internal/domain"
)

const categoriesPath = "/api/categories"

type CategoriesClient struct {
	*Client
}

func NewCategoriesClient(client *Client) *CategoriesClient {
	return &CategoriesClient{Client: client}
}

type categorySchema struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

func (c *CategoriesClient) List(ctx context.Context) ([]domain.Category, error) {
	var entries []categorySchema
	if err := c.do(ctx, http.MethodGet, categoriesPath, nil, &entries); err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}

	categories := make([]domain.Category, 0, len(entries))
	for _, entry := range entries {
		categories = append(categories, categoryFromSchema(entry))
	}

	return categories, nil
}

func (c *CategoriesClient) Get(ctx context.Context, id domain.CategoryID) (domain.Category, error) {
	var entry categorySchema
	if err := c.do(ctx, http.MethodGet, categoriesPath+"/"+url.PathEscape(string(id)), nil, &entry); err != nil {
		return domain.Category{}, fmt.Errorf("get category %s: %w", id, err)
	}

	return categoryFromSchema(entry), nil
}

func (c *CategoriesClient) Create(ctx context.Context, category domain.Category) (domain.Category, error) {
	var entry categorySchema
	payload := categorySchema{Name: category.Name, Description: category.Description}
	if err := c.do(ctx, http.MethodPost, categoriesPath, payload, &entry); err != nil {
		return domain.Category{}, fmt.Errorf("create category: %w", err)
	}

	return categoryFromSchema(entry), nil
}

func categoryFromSchema(entry categorySchema) domain.Category {
	return domain.Category{
		ID:          domain.CategoryID(entry.ID),
		Name:        entry.Name,
		Description: entry.Description,
	}
}
