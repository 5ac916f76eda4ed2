package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/mvaldes/invctl/internal/domain"
)

const productsPath = "/api/products"

type ProductsClient struct {
	*Client
}

func NewProductsClient(client *Client) *ProductsClient {
	return &ProductsClient{Client: client}
}

type productSchema struct {
	ID         string  `json:"id"`
	SKU        string  `json:"sku"`
	Name       string  `json:"name"`
	CategoryID string  `json:"categoryId"`
	UnitPrice  float64 `json:"unitPrice"`
	Stock      int64   `json:"stock"`
	MinStock   int64   `json:"minStock"`
	Active     bool    `json:"active"`
	UpdatedAt  string  `json:"updatedAt,omitempty"`
}

type ProductFilter struct {
	CategoryID domain.CategoryID
	LowStock   bool
	Search     string
}

func (f ProductFilter) query() string {
	values := url.Values{}
	if f.CategoryID != "" {
		values.Set("categoryId", string(f.CategoryID))
	}
	if f.LowStock {
		values.Set("lowStock", strconv.FormatBool(true))
	}
	if f.Search != "" {
		values.Set("search", f.Search)
	}
	if len(values) == 0 {
		return ""
	}
	return "?" + values.Encode()
}

func (p *ProductsClient) List(ctx context.Context, filter ProductFilter) ([]domain.Product, error) {
	var entries []productSchema
	if err := p.do(ctx, http.MethodGet, productsPath+filter.query(), nil, &entries); err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}

	products := make([]domain.Product, 0, len(entries))
	for _, entry := range entries {
		products = append(products, productFromSchema(entry))
	}

	return products, nil
}

func (p *ProductsClient) Get(ctx context.Context, id domain.ProductID) (domain.Product, error) {
	var entry productSchema
	if err := p.do(ctx, http.MethodGet, productsPath+"/"+url.PathEscape(string(id)), nil, &entry); err != nil {
		return domain.Product{}, fmt.Errorf("get product %s: %w", id, err)
	}

	return productFromSchema(entry), nil
}

func (p *ProductsClient) Create(ctx context.Context, product domain.Product) (domain.Product, error) {
	var entry productSchema
	if err := p.do(ctx, http.MethodPost, productsPath, productToSchema(product), &entry); err != nil {
		return domain.Product{}, fmt.Errorf("create product: %w", err)
	}

	return productFromSchema(entry), nil
}

func (p *ProductsClient) Update(ctx context.Context, product domain.Product) (domain.Product, error) {
	var entry productSchema
	path := productsPath + "/" + url.PathEscape(string(product.ID))
	if err := p.do(ctx, http.MethodPut, path, productToSchema(product), &entry); err != nil {
		return domain.Product{}, fmt.Errorf("update product %s: %w", product.ID, err)
	}

	return productFromSchema(entry), nil
}

func (p *ProductsClient) Delete(ctx context.Context, id domain.ProductID) error {
	if err := p.do(ctx, http.MethodDelete, productsPath+"/"+url.PathEscape(string(id)), nil, nil); err != nil {
		return fmt.Errorf("delete product %s: %w", id, err)
	}
	return nil
}

func productFromSchema(entry productSchema) domain.Product {
	updatedAt, _ := time.Parse(time.RFC3339, entry.UpdatedAt)
	return domain.Product{
		ID:         domain.ProductID(entry.ID),
		SKU:        entry.SKU,
		Name:       entry.Name,
		CategoryID: domain.CategoryID(entry.CategoryID),
		UnitPrice:  entry.UnitPrice,
		Stock:      entry.Stock,
		MinStock:   entry.MinStock,
		Active:     entry.Active,
		UpdatedAt:  updatedAt,
	}
}

func productToSchema(product domain.Product) productSchema {
	return productSchema{
		ID:         string(product.ID),
		SKU:        product.SKU,
		Name:       product.Name,
		CategoryID: string(product.CategoryID),
		UnitPrice:  product.UnitPrice,
		Stock:      product.Stock,
		MinStock:   product.MinStock,
		Active:     product.Active,
	}
}
