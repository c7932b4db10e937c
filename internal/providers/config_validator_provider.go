package providers

import (
	"fmt"
	"shiftwatch/internal/structures"

	"github.com/gookit/validate"
)

type CnfValidator struct {
	conf *structures.Config
}

func NewCnfValidator(conf *structures.Config) *CnfValidator {
	return &CnfValidator{conf: conf}
}

func (c *CnfValidator) Validate() error {
	v := validate.Struct(c.conf)
	if !v.Validate() {
		return v.Errors
	}

	seen := make(map[string]struct{}, len(c.conf.Monitor.Sources))
	for _, src := range c.conf.Monitor.Sources {
		sv := validate.Struct(&src)
		if !sv.Validate() {
			return fmt.Errorf("source %q: %w", src.ID, sv.Errors)
		}
		if _, dup := seen[src.ID]; dup {
			return fmt.Errorf("source %q configured twice", src.ID)
		}
		seen[src.ID] = struct{}{}
		if src.URL != "" && !validate.IsURL(src.URL) {
			return fmt.Errorf("source %q: invalid url %q", src.ID, src.URL)
		}
	}

	if c.conf.Webhook.URL != "" && !validate.IsURL(c.conf.Webhook.URL) {
		return fmt.Errorf("webhook: invalid url %q", c.conf.Webhook.URL)
	}
	if c.conf.Store.Driver != "memory" && c.conf.Store.Path == "" {
		return fmt.Errorf("store: path is required for driver %q", c.conf.Store.Driver)
	}
	return nil
}
