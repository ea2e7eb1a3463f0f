package circuit

import "fmt"

// TransistorParams holds the one-finger small-signal parameters of a
// transistor: transconductance, output conductance, body
// transconductance and the six junction/overlap capacitances.
type TransistorParams struct {
	Gm  float64 // transconductance, in siemens
	Gds float64 // drain-source output conductance, in siemens
	Gb  float64 // body transconductance, in siemens
	Cgd float64 // gate-drain capacitance, in farads
	Cgs float64 // gate-source capacitance, in farads
	Cgb float64 // gate-body capacitance, in farads
	Cds float64 // drain-source capacitance, in farads
	Cdb float64 // drain-body capacitance, in farads
	Csb float64 // source-body capacitance, in farads
}

var transistorParamKeys = []string{"gm", "gds", "gb", "cgd", "cgs", "cgb", "cds", "cdb", "csb"}

// TransistorParamsFromMap builds transistor parameters from a table
// keyed by parameter name. The table must contain exactly the nine
// keys gm, gds, gb, cgd, cgs, cgb, cds, cdb and csb.
func TransistorParamsFromMap(table map[string]float64) (TransistorParams, error) {
	var params TransistorParams

	if len(table) != len(transistorParamKeys) {
		return params, fmt.Errorf("circuit: transistor parameters: expected %d entries, got %d",
			len(transistorParamKeys), len(table))
	}
	for _, key := range transistorParamKeys {
		if _, ok := table[key]; !ok {
			return params, fmt.Errorf("circuit: transistor parameters: missing %q", key)
		}
	}

	params.Gm = table["gm"]
	params.Gds = table["gds"]
	params.Gb = table["gb"]
	params.Cgd = table["cgd"]
	params.Cgs = table["cgs"]
	params.Cgb = table["cgb"]
	params.Cds = table["cds"]
	params.Cdb = table["cdb"]
	params.Csb = table["csb"]

	return params, nil
}
