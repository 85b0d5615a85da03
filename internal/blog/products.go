package blog

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"mktdata/internal/fetch"
	"mktdata/internal/transport"
)

// Product is an exchange asset as (symbol, name).
type Product struct {
	Symbol string `json:"symbol"`
	Name   string `json:"name"`
}

type productsResponse struct {
	Data []struct {
		Base      string `json:"b"`
		BaseName  string `json:"an"`
		Quote     string `json:"q"`
		QuoteName string `json:"qn"`
	} `json:"data"`
}

// FetchProducts loads the exchange product catalog and returns the distinct
// base and quote assets, sorted by symbol then name.
func FetchProducts(ctx context.Context, client transport.Getter, url string) ([]Product, error) {
	resp, err := client.Get(ctx, url, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: products: %w", fetch.ErrTransport, err)
	}
	var body productsResponse
	if err := json.Unmarshal(resp.Body, &body); err != nil {
		return nil, fmt.Errorf("%w: products (status %s): %v", fetch.ErrParse, resp.Status, err)
	}

	seen := make(map[Product]bool)
	var products []Product
	add := func(p Product) {
		if p.Symbol == "" && p.Name == "" || seen[p] {
			return
		}
		seen[p] = true
		products = append(products, p)
	}
	for _, d := range body.Data {
		add(Product{Symbol: d.Base, Name: d.BaseName})
		add(Product{Symbol: d.Quote, Name: d.QuoteName})
	}
	sort.Slice(products, func(i, j int) bool {
		if products[i].Symbol != products[j].Symbol {
			return products[i].Symbol < products[j].Symbol
		}
		return products[i].Name < products[j].Name
	})
	return products, nil
}

// Match returns the products whose symbol or name occurs in text.
// Matching is a case-sensitive substring test.
func Match(products []Product, text string) []Product {
	var matched []Product
	for _, p := range products {
		if contains(text, p.Symbol) || contains(text, p.Name) {
			matched = append(matched, p)
		}
	}
	return matched
}

func contains(text, sub string) bool {
	return sub != "" && strings.Contains(text, sub)
}
