package folio

import (
	"bytes"
	"strings"
	"testing"
)

func TestTargetPlan_Validate(t *testing.T) {
	tests := []struct {
		name    string
		targets []TargetAllocation
		wantErr bool
	}{
		{"valid", []TargetAllocation{{"A", 60, 5, 10}, {"B", 40, 5, 10}}, false},
		{"within tolerance", []TargetAllocation{{"A", 33.33, 1, 2}, {"B", 33.33, 1, 2}, {"C", 33.335, 1, 2}}, false},
		{"sum too low", []TargetAllocation{{"A", 60, 5, 10}, {"B", 39, 5, 10}}, true},
		{"sum too high", []TargetAllocation{{"A", 60, 5, 10}, {"B", 40.5, 5, 10}}, true},
		{"lower above upper", []TargetAllocation{{"A", 100, 10, 5}}, true},
		{"negative band", []TargetAllocation{{"A", 100, -1, 5}}, true},
		{"duplicate", []TargetAllocation{{"A", 50, 0, 0}, {"A", 50, 0, 0}}, true},
		{"no symbol", []TargetAllocation{{"", 100, 0, 0}}, true},
		{"empty", nil, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := TargetPlan{Version: 1, Targets: tt.targets}.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestDecodeTargetPlan(t *testing.T) {
	input := `{
  "version": 3,
  "effective": "2024-01-01",
  "targets": [
    {"symbol": "VTI", "target": 60, "bandLower": 5, "bandUpper": 10},
    {"symbol": "BND", "target": 40, "bandLower": 3, "bandUpper": 6}
  ]
}`
	p, err := DecodeTargetPlan(strings.NewReader(input))
	if err != nil {
		t.Fatalf("DecodeTargetPlan() error = %v", err)
	}
	if p.Version != 3 || p.Effective != day("2024-01-01") || len(p.Targets) != 2 {
		t.Fatalf("DecodeTargetPlan() = %+v", p)
	}
	if got, ok := p.Target("BND"); !ok || got.BandUpper != 6 {
		t.Errorf("Target(BND) = %+v, %v", got, ok)
	}

	var buf bytes.Buffer
	if err := EncodeTargetPlan(&buf, p); err != nil {
		t.Fatalf("EncodeTargetPlan() error = %v", err)
	}
	again, err := DecodeTargetPlan(&buf)
	if err != nil {
		t.Fatalf("DecodeTargetPlan(EncodeTargetPlan()) error = %v", err)
	}
	if again.Version != p.Version || len(again.Targets) != len(p.Targets) {
		t.Errorf("re-decoded plan = %+v, want %+v", again, p)
	}
}

func TestDecodeTargetPlan_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"bad sum", `{"version":1,"targets":[{"symbol":"A","target":50}]}`},
		{"unknown field", `{"version":1,"targets":[{"symbol":"A","target":100,"weight":1}]}`},
		{"not json", `targets: A`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := DecodeTargetPlan(strings.NewReader(tt.input)); err == nil {
				t.Errorf("DecodeTargetPlan(%s): expected an error", tt.input)
			}
		})
	}
}
