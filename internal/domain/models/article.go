package models

import "strings"

// Article mirrors one row of the Sygemat JSON_PRV payload. Field names follow
// the vendor wire format so the payload round-trips untouched through the proxy.
type Article struct {
	ID        int     `json:"id"`
	Name      string  `json:"name"`
	SkuPrv    string  `json:"sku_prv"`
	Ref       string  `json:"ref"`
	Dep       float64 `json:"dep"`
	Ven       float64 `json:"ven"`
	PdtRec    float64 `json:"pdt_rec"`
	StkCon    float64 `json:"stk_con"`
	StkConVen float64 `json:"stk_con_ven"`
	CosNet    float64 `json:"cos_net"`
	PreNet    float64 `json:"pre_net"`
	Mar       float64 `json:"mar"`
	Prv       int     `json:"prv"`
	FotURL    string  `json:"fot_url,omitempty"`
}

// ImageURLs splits the comma-joined fot_url field into individual trimmed URLs.
func (a Article) ImageURLs() []string {
	if a.FotURL == "" {
		return nil
	}

	var urls []string
	for _, raw := range strings.Split(a.FotURL, ",") {
		if u := strings.TrimSpace(raw); u != "" {
			urls = append(urls, u)
		}
	}
	return urls
}

// PrimaryImageURL returns the position-1 image when present, otherwise the
// first listed URL.
func (a Article) PrimaryImageURL() string {
	urls := a.ImageURLs()
	if len(urls) == 0 {
		return ""
	}
	for _, u := range urls {
		if strings.Contains(u, "_1_") {
			return u
		}
	}
	return urls[0]
}

// ArticlesResult is the vendor response for a provider's catalog.
type ArticlesResult struct {
	Count      int       `json:"count"`
	TotalCount int       `json:"total_count"`
	Articles   []Article `json:"art_prv_web_dis"`
}

// Provider labels a supplier in the admin catalog view.
type Provider struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	EsProveedor bool   `json:"es_proveedor"`
}
