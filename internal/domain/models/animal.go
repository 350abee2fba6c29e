package models

import (
	"strings"
	"time"
)

// LifecycleState is the inventory state of an animal. It only ever moves from
// in-field to sold.
type LifecycleState string

const (
	LifecycleInField LifecycleState = "en_campo"
	LifecycleSold    LifecycleState = "vendido"
	LifecycleUnknown LifecycleState = "desconocido"
)

// ParseLifecycleState maps a stored label onto a known lifecycle state.
func ParseLifecycleState(raw string) LifecycleState {
	switch LifecycleState(normalizeLabel(raw)) {
	case LifecycleInField:
		return LifecycleInField
	case LifecycleSold:
		return LifecycleSold
	default:
		return LifecycleUnknown
	}
}

// PhysicalState captures the body condition recorded for an animal.
type PhysicalState string

const (
	PhysicalCritical  PhysicalState = "critico"
	PhysicalPoor      PhysicalState = "malo"
	PhysicalGood      PhysicalState = "bueno"
	PhysicalExcellent PhysicalState = "excelente"
	PhysicalUnknown   PhysicalState = "desconocido"
)

// ParsePhysicalState maps a stored label onto a known physical state.
func ParsePhysicalState(raw string) PhysicalState {
	switch PhysicalState(normalizeLabel(raw)) {
	case PhysicalCritical:
		return PhysicalCritical
	case PhysicalPoor:
		return PhysicalPoor
	case PhysicalGood:
		return PhysicalGood
	case PhysicalExcellent:
		return PhysicalExcellent
	default:
		return PhysicalUnknown
	}
}

// NeedsAttention reports whether the condition counts as critical on the dashboard.
func (p PhysicalState) NeedsAttention() bool {
	return p == PhysicalCritical || p == PhysicalPoor
}

// Category is the commercial class of an animal.
type Category string

const (
	CategoryTernero       Category = "ternero"
	CategoryTernera       Category = "ternera"
	CategoryNovillo       Category = "novillo"
	CategoryNovillito     Category = "novillito"
	CategoryVaquillona    Category = "vaquillona"
	CategoryVaca          Category = "vaca"
	CategoryToro          Category = "toro"
	CategoryUncategorized Category = "sin_categoria"
	CategoryOther         Category = "otra"
)

var knownCategories = map[Category]struct{}{
	CategoryTernero:    {},
	CategoryTernera:    {},
	CategoryNovillo:    {},
	CategoryNovillito:  {},
	CategoryVaquillona: {},
	CategoryVaca:       {},
	CategoryToro:       {},
}

// ParseCategory maps a stored label onto a known category. An empty label is
// CategoryUncategorized; a label outside the known set is CategoryOther.
func ParseCategory(raw string) Category {
	c := Category(normalizeLabel(raw))
	if c == "" {
		return CategoryUncategorized
	}
	if _, ok := knownCategories[c]; ok {
		return c
	}
	return CategoryOther
}

// Animal is a single tracked livestock unit.
type Animal struct {
	ID            string
	Tag           string
	Category      Category
	PhysicalState PhysicalState
	Lifecycle     LifecycleState
	EntryDate     *time.Time
	EntryWeight   *float64
	PurchasePrice *float64
	SupplierID    string
	PurchaseID    string
}

// Label returns the ear tag when present, otherwise the record id.
func (a Animal) Label() string {
	if a.Tag != "" {
		return a.Tag
	}
	return a.ID
}

func normalizeLabel(raw string) string {
	return strings.ToLower(strings.TrimSpace(raw))
}
