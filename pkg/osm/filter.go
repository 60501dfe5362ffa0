package osm

// PruneMode selects how aggressively Filter drops nodes that no
// surviving way references.
type PruneMode int

const (
	// Conservative keeps a node if a surviving way references it or it
	// carries at least one tag of its own (a speed camera, a barrier).
	Conservative PruneMode = iota
	// Aggressive keeps only nodes a surviving way references.
	Aggressive
)

// blockedAccessValues are the access-tag values that make an otherwise
// tagged-highway way undriveable.
var blockedAccessValues = map[string]bool{
	"no":           true,
	"agricultural": true,
	"delivery":     true,
}

func isDriveable(tags Tags) bool {
	hw, ok := tags["highway"]
	if !ok {
		return false
	}
	if s, ok := hw.(string); ok && s == "cycleway" {
		return false
	}
	for _, key := range [...]string{"access", "motorcar", "motor_vehicle"} {
		v, ok := tags[key]
		if !ok {
			continue
		}
		if b, ok := v.(bool); ok && !b {
			return false
		}
		if s, ok := v.(string); ok && blockedAccessValues[s] {
			return false
		}
	}
	return true
}

// Filter drops non-driveable ways, prunes nodes per mode, and populates
// node back-references for every surviving way. It mutates the Ways
// field of surviving nodes in place (per the package's lifecycle: nodes
// are loaded once and mutated only here) and returns a Data value scoped
// to the surviving subset.
//
// Filter is idempotent: the driveable predicate and the prune mode are
// both pure functions of tags and reference counts, so filtering an
// already-filtered Data reproduces the same node and way sets.
func Filter(data *Data, mode PruneMode) *Data {
	ways := make(map[int64]*Way, len(data.Ways))
	for id, w := range data.Ways {
		if isDriveable(w.Tags) {
			ways[id] = w
		}
	}

	referenced := make(map[NodeID]bool)
	for _, w := range ways {
		for _, nid := range w.Nodes {
			referenced[nid] = true
		}
	}

	nodes := make(map[NodeID]*Node, len(data.Nodes))
	for id, n := range data.Nodes {
		switch mode {
		case Aggressive:
			if referenced[id] {
				nodes[id] = n
			}
		default:
			if referenced[id] || len(n.Tags) > 0 {
				nodes[id] = n
			}
		}
	}

	for _, n := range nodes {
		n.Ways = nil
	}
	// Walk each way's node list in order so a node a way visits twice
	// (a roundabout rejoining its start) picks up two back-references,
	// not one — len(node.Ways) > 1 is how the builder recognises a
	// junction, and a self-revisit is a junction too.
	for id, w := range ways {
		for _, nid := range w.Nodes {
			if n, ok := nodes[nid]; ok {
				n.Ways = append(n.Ways, id)
			}
		}
	}

	return &Data{Bounds: data.Bounds, Nodes: nodes, Ways: ways}
}
