// Personal inventories. Agents gather, carry, and consume resources; food and
// water spoil over time so hoarding has a cost.
package agents

// ResourceKind names something an agent can carry.
type ResourceKind string

const (
	ResourceFood     ResourceKind = "food"
	ResourceWater    ResourceKind = "water"
	ResourceWood     ResourceKind = "wood"
	ResourceStone    ResourceKind = "stone"
	ResourceHerbs    ResourceKind = "herbs"
	ResourceFurs     ResourceKind = "furs"
	ResourceTools    ResourceKind = "tools"
	ResourceTrinkets ResourceKind = "trinkets"
)

// spoilRates is the per-hour fraction lost per resource. Durable goods keep.
var spoilRates = map[ResourceKind]float64{
	ResourceFood:  0.01,
	ResourceWater: 0.005,
	ResourceHerbs: 0.008,
}

// Inventory is the per-agent stock of each resource.
type Inventory map[ResourceKind]float64

// NewInventory starts an agent with a day or two of provisions.
func NewInventory() Inventory {
	return Inventory{
		ResourceFood:  3,
		ResourceWater: 3,
	}
}

// Gather adds units of a resource.
func (inv Inventory) Gather(kind ResourceKind, units float64) {
	if units <= 0 {
		return
	}
	inv[kind] += units
}

// Consume removes up to units of a resource and returns how much was actually
// taken.
func (inv Inventory) Consume(kind ResourceKind, units float64) float64 {
	have := inv[kind]
	if have <= 0 || units <= 0 {
		return 0
	}
	if units > have {
		units = have
	}
	inv[kind] = have - units
	if inv[kind] < 1e-9 {
		delete(inv, kind)
	}
	return units
}

// Has reports whether at least units of the resource are on hand.
func (inv Inventory) Has(kind ResourceKind, units float64) bool {
	return inv[kind] >= units
}

// Decay applies spoilage for dt hours to perishable resources.
func (inv Inventory) Decay(dtHours float64) {
	for kind, rate := range spoilRates {
		have, ok := inv[kind]
		if !ok {
			continue
		}
		have -= have * rate * dtHours
		if have < 1e-3 {
			delete(inv, kind)
			continue
		}
		inv[kind] = have
	}
}

// Total returns the summed units across all resources.
func (inv Inventory) Total() float64 {
	var sum float64
	for _, v := range inv {
		sum += v
	}
	return sum
}

// Clone deep-copies the inventory for snapshots and death records.
func (inv Inventory) Clone() Inventory {
	out := make(Inventory, len(inv))
	for k, v := range inv {
		out[k] = v
	}
	return out
}
