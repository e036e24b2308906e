package helm

import "fmt"

// Engine orders step through Config.Tiers like a ship's telegraph.

// TierUp moves the engine order one step ahead.
func (c *Controls) TierUp() {
	if c.tier < len(c.cfg.Tiers)-1 {
		c.tier++
	}
}

// TierDown moves the engine order one step astern.
func (c *Controls) TierDown() {
	if c.tier > 0 {
		c.tier--
	}
}

// SetTier selects an engine order by index.
func (c *Controls) SetTier(i int) error {
	if i < 0 || i >= len(c.cfg.Tiers) {
		return fmt.Errorf("tier %d out of range [0, %d)", i, len(c.cfg.Tiers))
	}
	c.tier = i
	return nil
}

// StopTier returns the engine order to stop.
func (c *Controls) StopTier() {
	c.tier = c.stopIndex()
}

// Tier returns the current engine order index.
func (c *Controls) Tier() int { return c.tier }

// TierFraction returns the current order as a fraction of max speed.
// It reports false when no tiers are configured.
func (c *Controls) TierFraction() (float64, bool) {
	if c.tier < 0 || c.tier >= len(c.cfg.Tiers) {
		return 0, false
	}
	return c.cfg.Tiers[c.tier], true
}

// TierLabel names the current order for a gauge.
func (c *Controls) TierLabel() string {
	frac, ok := c.TierFraction()
	switch {
	case !ok || frac == 0:
		return "STOP"
	case frac < 0:
		return fmt.Sprintf("ASTERN %d%%", int(-frac*100+0.5))
	default:
		return fmt.Sprintf("AHEAD %d%%", int(frac*100+0.5))
	}
}

// stopIndex is the first zero tier, or -1 when none is configured.
func (c *Controls) stopIndex() int {
	for i, f := range c.cfg.Tiers {
		if f == 0 {
			return i
		}
	}
	return -1
}
