package inventory

import (
	"fmt"
	"sync"
	"time"

	"frontoffice/internal/data"
	"frontoffice/internal/logger"
	"frontoffice/internal/money"
)

// Catalog is a name-keyed view of the inventory list with list prices.
type Catalog struct {
	items  map[string]data.InventoryItem
	prices map[string]float64

	lastLoaded time.Time
	mutex      sync.RWMutex
}

func NewCatalog() *Catalog {
	return &Catalog{
		items:  make(map[string]data.InventoryItem),
		prices: make(map[string]float64),
	}
}

// Load replaces the catalog contents.
func (c *Catalog) Load(items []data.InventoryItem) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.items = make(map[string]data.InventoryItem, len(items))
	c.prices = make(map[string]float64, len(items))
	for _, item := range items {
		c.items[item.Name] = item
		c.prices[item.Name] = money.Parse(item.Value)
	}
	c.lastLoaded = time.Now()

	logger.LogDebug("Loaded inventory catalog: %d items", len(c.items))
}

// Validate checks if an asset exists
func (c *Catalog) Validate(name string) bool {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	_, exists := c.items[name]
	return exists
}

// ValidateAssets fails on the first asset name that is not in the catalog.
func (c *Catalog) ValidateAssets(assets []string) error {
	for _, name := range assets {
		if !c.Validate(name) {
			return fmt.Errorf("unknown asset: %s", name)
		}
	}
	return nil
}

// Price returns the list price for an asset
func (c *Catalog) Price(name string) (float64, bool) {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	price, exists := c.prices[name]
	return price, exists
}

// DealBudget sums the list prices of assets and renders whole dollars. Unknown
// assets count as zero.
func (c *Catalog) DealBudget(assets []string) string {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	total := 0.0
	for _, name := range assets {
		total += c.prices[name]
	}
	return money.FormatWhole(total)
}

// GetStats returns catalog statistics
func (c *Catalog) GetStats() map[string]interface{} {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	byCategory := map[string]int{}
	total := 0.0
	for name, item := range c.items {
		byCategory[item.Category]++
		total += c.prices[name]
	}

	return map[string]interface{}{
		"items":       len(c.items),
		"categories":  byCategory,
		"list_value":  money.Round2(total),
		"last_loaded": c.lastLoaded.Format(time.RFC3339),
		"cache_age":   time.Since(c.lastLoaded).String(),
	}
}
