package catalog

import (
	"context"
	_ "embed"
	"fmt"
	"os"
	"sort"
	"sync"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"staging-pro-backend/internal/logger"
	"staging-pro-backend/internal/models"
)

//go:embed plans.yaml
var defaultPlans []byte

// Source reads the hosted plans collection.
type Source interface {
	List(ctx context.Context) ([]models.Plan, error)
}

type planFile struct {
	Plans []models.Plan `yaml:"plans"`
}

var validate = validator.New()

// Catalog holds the current plan set. It starts from compiled-in
// defaults and is replaced wholesale whenever the hosted table returns
// rows.
type Catalog struct {
	source Source

	mu    sync.RWMutex
	plans map[models.PlanType]models.Plan
}

func New(source Source, initial []models.Plan) *Catalog {
	c := &Catalog{source: source}
	c.set(initial)
	return c
}

// Defaults returns the compiled-in plan set.
func Defaults() ([]models.Plan, error) {
	return parse(defaultPlans)
}

// LoadFile reads a plan set in the same YAML layout as the defaults.
func LoadFile(path string) ([]models.Plan, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read plan catalog: %w", err)
	}
	plans, err := parse(data)
	if err != nil {
		return nil, err
	}
	if len(plans) == 0 {
		return nil, fmt.Errorf("plan catalog %s is empty", path)
	}
	return plans, nil
}

func parse(data []byte) ([]models.Plan, error) {
	var f planFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse plan catalog: %w", err)
	}
	for i, p := range f.Plans {
		if err := validate.Struct(p); err != nil {
			return nil, fmt.Errorf("invalid plan at index %d: %w", i, err)
		}
	}
	return f.Plans, nil
}

// Refresh reloads plans from the source. A read failure or an empty
// table keeps the current set.
func (c *Catalog) Refresh(ctx context.Context) error {
	if c.source == nil {
		return nil
	}
	rows, err := c.source.List(ctx)
	if err != nil {
		logger.Warn(ctx, "plan catalog refresh failed, keeping current plans", "error", err)
		return fmt.Errorf("failed to refresh plans: %w", err)
	}

	valid := rows[:0:0]
	for _, p := range rows {
		if err := validate.Struct(p); err != nil {
			logger.Warn(ctx, "skipping invalid plan row", "plan", p.ID, "error", err)
			continue
		}
		valid = append(valid, p)
	}
	if len(valid) == 0 {
		logger.Debug(ctx, "plans table empty, keeping current plans")
		return nil
	}

	c.set(valid)
	logger.Info(ctx, "plan catalog refreshed", "count", len(valid))
	return nil
}

func (c *Catalog) set(plans []models.Plan) {
	next := make(map[models.PlanType]models.Plan, len(plans))
	for _, p := range plans {
		if p.ID == models.PlanFloorPlanCG {
			p.QuoteBased = true
		}
		next[p.ID] = p
	}
	c.mu.Lock()
	c.plans = next
	c.mu.Unlock()
}

func (c *Catalog) Get(id models.PlanType) (models.Plan, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	p, ok := c.plans[id]
	return p, ok
}

// List returns the plans ordered by their display number.
func (c *Catalog) List() []models.Plan {
	c.mu.RLock()
	out := make([]models.Plan, 0, len(c.plans))
	for _, p := range c.plans {
		out = append(out, p)
	}
	c.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].Number != out[j].Number {
			return out[i].Number < out[j].Number
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// IsQuotePlan reports whether id is priced per project. FLOOR_PLAN_CG is
// quote-based even if a stored row gives it an amount.
func (c *Catalog) IsQuotePlan(id models.PlanType) bool {
	if id == models.PlanFloorPlanCG {
		return true
	}
	p, ok := c.Get(id)
	return ok && p.QuoteBased
}
