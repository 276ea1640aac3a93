package derive

import (
	"sort"

	"github.com/dvxtools/dvx/internal/dataverse"
)

// Layer is one solution's contribution to a component, positioned in the
// component's base-to-top customization order.
type Layer struct {
	SolutionName  string
	PublisherName string
	Managed       bool
	Order         int
	Active        bool
}

// OrderLayers sorts a component's customization records from base to top.
// The service's sequence number is the primary key; ties break on solution
// name so repeated computations are deterministic. The last layer is marked
// active: it is the one whose values the platform serves.
func OrderLayers(records []dataverse.LayerRecord) []Layer {
	layers := make([]Layer, 0, len(records))
	for _, rec := range records {
		layers = append(layers, Layer{
			SolutionName:  rec.SolutionName,
			PublisherName: rec.PublisherName,
			Managed:       rec.IsManaged,
			Order:         rec.Order,
		})
	}
	sort.SliceStable(layers, func(i, j int) bool {
		if layers[i].Order != layers[j].Order {
			return layers[i].Order < layers[j].Order
		}
		return layers[i].SolutionName < layers[j].SolutionName
	})
	if len(layers) > 0 {
		layers[len(layers)-1].Active = true
	}
	return layers
}
