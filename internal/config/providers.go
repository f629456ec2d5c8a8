package config

import (
	"fmt"

	"github.com/ishaan812/farmer/internal/llm"
)

// FindProvider returns the provider with id or name, or nil.
func (c *AIConfig) FindProvider(idOrName string) *llm.Provider {
	for i := range c.Providers {
		if c.Providers[i].ID == idOrName {
			return &c.Providers[i]
		}
	}
	for i := range c.Providers {
		if c.Providers[i].Name == idOrName {
			return &c.Providers[i]
		}
	}
	return nil
}

// AddProvider appends p. IDs must be unique.
func (c *AIConfig) AddProvider(p llm.Provider) error {
	for _, existing := range c.Providers {
		if existing.ID == p.ID {
			return fmt.Errorf("provider '%s' already exists", p.ID)
		}
	}
	c.Providers = append(c.Providers, p)
	return nil
}

// RemoveProvider deletes a provider, clearing the selection if it pointed at it.
func (c *AIConfig) RemoveProvider(idOrName string) error {
	p := c.FindProvider(idOrName)
	if p == nil {
		return fmt.Errorf("provider '%s' not found", idOrName)
	}
	id := p.ID
	for i := range c.Providers {
		if c.Providers[i].ID == id {
			c.Providers = append(c.Providers[:i], c.Providers[i+1:]...)
			break
		}
	}
	if c.SelectedProvider == id {
		c.SelectedProvider = ""
	}
	return nil
}

func (c *AIConfig) SetProviderEnabled(idOrName string, enabled bool) error {
	p := c.FindProvider(idOrName)
	if p == nil {
		return fmt.Errorf("provider '%s' not found", idOrName)
	}
	p.Enabled = enabled
	return nil
}

// SelectProvider makes a provider the selected one, enabling it.
func (c *AIConfig) SelectProvider(idOrName string) error {
	p := c.FindProvider(idOrName)
	if p == nil {
		return fmt.Errorf("provider '%s' not found", idOrName)
	}
	p.Enabled = true
	c.SelectedProvider = p.ID
	return nil
}

// MergeDiscovered adds discovered providers whose IDs are not configured yet and
// returns the ones added.
func (c *AIConfig) MergeDiscovered(discovered []llm.Provider) []llm.Provider {
	var added []llm.Provider
	for _, d := range discovered {
		if c.FindProvider(d.ID) != nil {
			continue
		}
		c.Providers = append(c.Providers, d)
		added = append(added, d)
	}
	return added
}

// Selected resolves the selected provider, reporting configuration errors.
func (c *AIConfig) Selected() (llm.Provider, error) {
	return llm.ResolveProvider(c.Providers, c.SelectedProvider)
}
