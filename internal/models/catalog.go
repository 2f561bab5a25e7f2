package models

// Product is one entry of the products content file. The core never mutates
// products; price stays display text and is parsed to cents on cart entry.
type Product struct {
	Name        string   `json:"name"        yaml:"name"`
	Slug        string   `json:"slug"        yaml:"slug,omitempty"`
	Tags        []string `json:"tags"        yaml:"tags,omitempty"`
	Price       string   `json:"price"       yaml:"price"`
	Image       string   `json:"image"       yaml:"image,omitempty"`
	Description string   `json:"description" yaml:"description,omitempty"`
}

type Category struct {
	Key   string `json:"key"   yaml:"key"`
	Name  string `json:"name"  yaml:"name"`
	Count int    `json:"count" yaml:"-"`
}

// ProductsDoc mirrors products.yml.
type ProductsDoc struct {
	Categories []Category `json:"categories" yaml:"categories"`
	Products   []Product  `json:"products"   yaml:"products"`
}

type ProductListResponse struct {
	Categories []Category `json:"categories"`
	CurrentCat string     `json:"current_cat"`
	Products   []Product  `json:"products"`
}
