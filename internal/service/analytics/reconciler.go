package analytics

import "github.com/mamadbah2/ganadero/internal/domain/models"

// Labels substituted when a foreign key does not resolve within the fetched sets.
const (
	UnknownSupplier = "unknown supplier"
	UnknownBuyer    = "unknown buyer"
	UnknownAnimal   = "unknown animal"
)

// Dataset holds independently fetched record sets. A set whose fetch failed is
// passed as nil and treated as empty.
type Dataset struct {
	Animals      []models.Animal
	Purchases    []models.Purchase
	Sales        []models.Sale
	SaleDetails  []models.SaleDetail
	HealthEvents []models.HealthEvent
	Buyers       []models.Buyer
	Suppliers    []models.Supplier
}

// Reconciled is a Dataset joined in memory. Rows are never dropped for an
// unresolved reference; they carry a placeholder label instead.
type Reconciled struct {
	Animals      []models.Animal
	Details      []models.SaleDetail
	Purchases    []models.PurchaseView
	Sales        []models.SaleView
	HealthEvents []models.HealthEventView

	animals   map[string]models.Animal
	sales     map[string]models.Sale
	buyers    map[string]models.Buyer
	suppliers map[string]models.Supplier
}

// Reconcile indexes every set by id and builds the display views. Input order
// is preserved; on duplicate ids the first record wins.
func Reconcile(d Dataset) *Reconciled {
	r := &Reconciled{
		Animals:   d.Animals,
		Details:   d.SaleDetails,
		animals:   index(d.Animals, func(a models.Animal) string { return a.ID }),
		sales:     index(d.Sales, func(s models.Sale) string { return s.ID }),
		buyers:    index(d.Buyers, func(b models.Buyer) string { return b.ID }),
		suppliers: index(d.Suppliers, func(s models.Supplier) string { return s.ID }),
	}

	headsPerPurchase := make(map[string]int)
	for _, a := range d.Animals {
		if a.PurchaseID != "" {
			headsPerPurchase[a.PurchaseID]++
		}
	}
	headsPerSale := make(map[string]int)
	for _, det := range d.SaleDetails {
		if det.SaleID != "" {
			headsPerSale[det.SaleID]++
		}
	}

	r.Purchases = make([]models.PurchaseView, 0, len(d.Purchases))
	for _, p := range d.Purchases {
		r.Purchases = append(r.Purchases, models.PurchaseView{
			ID:           p.ID,
			Date:         p.Date,
			SupplierID:   p.SupplierID,
			SupplierName: r.SupplierName(p.SupplierID),
			TotalPrice:   p.TotalPrice,
			HeadCount:    headsPerPurchase[p.ID],
		})
	}

	r.Sales = make([]models.SaleView, 0, len(d.Sales))
	for _, s := range d.Sales {
		r.Sales = append(r.Sales, models.SaleView{
			ID:        s.ID,
			Date:      s.Date,
			Kind:      s.Kind,
			BuyerID:   s.BuyerID,
			BuyerName: r.BuyerName(s.BuyerID),
			UnitPrice: s.UnitPrice,
			HeadCount: headsPerSale[s.ID],
		})
	}

	r.HealthEvents = make([]models.HealthEventView, 0, len(d.HealthEvents))
	for _, e := range d.HealthEvents {
		r.HealthEvents = append(r.HealthEvents, models.HealthEventView{
			ID:          e.ID,
			Date:        e.Date,
			Type:        e.Type,
			AnimalID:    e.AnimalID,
			AnimalLabel: r.AnimalLabel(e.AnimalID),
			Description: e.Description,
		})
	}

	return r
}

// Animal resolves an animal id.
func (r *Reconciled) Animal(id string) (models.Animal, bool) {
	a, ok := r.animals[id]
	return a, ok
}

// Sale resolves a sale id.
func (r *Reconciled) Sale(id string) (models.Sale, bool) {
	s, ok := r.sales[id]
	return s, ok
}

// AnimalLabel returns the animal's tag or the placeholder.
func (r *Reconciled) AnimalLabel(id string) string {
	if a, ok := r.animals[id]; ok {
		return a.Label()
	}
	return UnknownAnimal
}

// BuyerName returns the buyer's name or the placeholder.
func (r *Reconciled) BuyerName(id string) string {
	if b, ok := r.buyers[id]; ok && b.Name != "" {
		return b.Name
	}
	return UnknownBuyer
}

// SupplierName returns the supplier's name or the placeholder.
func (r *Reconciled) SupplierName(id string) string {
	if s, ok := r.suppliers[id]; ok && s.Name != "" {
		return s.Name
	}
	return UnknownSupplier
}

func index[T any](items []T, id func(T) string) map[string]T {
	out := make(map[string]T, len(items))
	for _, item := range items {
		key := id(item)
		if _, seen := out[key]; seen {
			continue
		}
		out[key] = item
	}
	return out
}
