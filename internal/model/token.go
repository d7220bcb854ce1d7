package model

// Token is a supported asset. Loaded once at startup and shared read-only.
type Token struct {
	Symbol   string `json:"symbol"`
	Name     string `json:"name"`
	Address  string `json:"address"` // 0x-prefixed, 40 hex chars
	Decimals int    `json:"decimals"`
	Logo     string `json:"logo"`
}
