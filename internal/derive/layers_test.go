package derive

import (
	"testing"

	"github.com/dvxtools/dvx/internal/dataverse"
)

func TestOrderLayers_SortsBySequence(t *testing.T) {
	records := []dataverse.LayerRecord{
		{SolutionName: "SolutionA", Order: 1},
		{SolutionName: "SolutionB", Order: 3, IsManaged: true},
		{SolutionName: "SolutionC", Order: 2, IsManaged: true},
	}

	layers := OrderLayers(records)
	wantNames := []string{"SolutionA", "SolutionC", "SolutionB"}
	for i, name := range wantNames {
		if layers[i].SolutionName != name {
			t.Fatalf("layers = %v, want order %v", layers, wantNames)
		}
	}
	if !layers[2].Active {
		t.Fatalf("top layer (SolutionB) not marked active")
	}
	if layers[0].Active || layers[1].Active {
		t.Fatalf("non-top layers marked active: %v", layers)
	}
}

func TestOrderLayers_TiesBreakOnSolutionName(t *testing.T) {
	records := []dataverse.LayerRecord{
		{SolutionName: "Zeta", Order: 2},
		{SolutionName: "Alpha", Order: 2},
	}
	first := OrderLayers(records)
	if first[0].SolutionName != "Alpha" || first[1].SolutionName != "Zeta" {
		t.Fatalf("layers = %v, want alphabetical tie break", first)
	}
	for i := 0; i < 5; i++ {
		again := OrderLayers(records)
		if again[0].SolutionName != first[0].SolutionName {
			t.Fatalf("tie break unstable across runs")
		}
	}
}

func TestOrderLayers_Empty(t *testing.T) {
	if layers := OrderLayers(nil); len(layers) != 0 {
		t.Fatalf("layers = %v, want empty", layers)
	}
}
