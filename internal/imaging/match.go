package imaging

import (
	"os"
	"sort"
	"strings"

	"eshop/internal/domain"
)

// ImageRule links products whose name contains Keyword to files named
// <FilePrefix>*.png.
type ImageRule struct {
	Keyword    string
	FilePrefix string
}

// DefaultRules maps the demo catalog to its generated product shots.
var DefaultRules = []ImageRule{
	{Keyword: "4K Monitor", FilePrefix: "product_4k_monitor"},
	{Keyword: "Wireless Headphones", FilePrefix: "product_wireless_headphones"},
	{Keyword: "Yoga Mat", FilePrefix: "product_yoga_mat"},
	{Keyword: "Coffee Maker", FilePrefix: "product_coffee_maker"},
	{Keyword: "Adjustable Dumbbells", FilePrefix: "product_dumbbells"},
	{Keyword: "Blender Pro", FilePrefix: "product_blender"},
}

type Assignment struct {
	ProductID string
	ImageURL  string
}

// MatchImages assigns at most one image per product. Rules are tried in order
// with a case-insensitive contains on the product name; the first rule with an
// existing file wins, and within a rule the lexically first file is used.
func MatchImages(products []domain.Product, files []string, rules []ImageRule) []Assignment {
	sorted := append([]string(nil), files...)
	sort.Strings(sorted)

	var out []Assignment
	for _, p := range products {
		name := strings.ToLower(p.Name)
		for _, rule := range rules {
			if !strings.Contains(name, strings.ToLower(rule.Keyword)) {
				continue
			}
			if file, ok := firstWithPrefix(sorted, rule.FilePrefix); ok {
				out = append(out, Assignment{ProductID: p.ID, ImageURL: PublicPrefix + file})
				break
			}
		}
	}
	return out
}

func firstWithPrefix(files []string, prefix string) (string, bool) {
	for _, f := range files {
		if strings.HasPrefix(f, prefix) && strings.HasSuffix(strings.ToLower(f), ".png") {
			return f, true
		}
	}
	return "", false
}

// ListFiles returns the names of the regular files in the products directory.
// A missing directory yields no files.
func (p *Processor) ListFiles() ([]string, error) {
	entries, err := os.ReadDir(p.dir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var names []string
	for _, e := range entries {
		if e.Type().IsRegular() {
			names = append(names, e.Name())
		}
	}
	return names, nil
}
