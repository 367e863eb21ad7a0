package main

import "testing"

func TestOutputFormatter(t *testing.T) {
	defer func(prev string) { outputFormat = prev }(outputFormat)

	tests := []struct {
		format  string
		want    string
		wantErr bool
	}{
		{format: "", want: "table"},
		{format: "json", want: "json"},
		{format: "yaml", want: "yaml"},
		{format: "xml", wantErr: true},
	}

	for _, tt := range tests {
		outputFormat = tt.format
		f, err := outputFormatter()
		if tt.wantErr {
			if err == nil {
				t.Errorf("outputFormatter(%q) expected error", tt.format)
			}
			continue
		}
		if err != nil {
			t.Errorf("outputFormatter(%q) error: %v", tt.format, err)
			continue
		}
		if f.Name() != tt.want {
			t.Errorf("outputFormatter(%q) = %s, want %s", tt.format, f.Name(), tt.want)
		}
	}
}
