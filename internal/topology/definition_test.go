package topology

import (
	"errors"
	"testing"
)

func TestParseDefinition(t *testing.T) {
	tests := []struct {
		name    string
		ref     string
		want    Definition
		wantErr bool
	}{
		{
			name: "plain reference",
			ref:  "create:create",
			want: Definition{Module: "create", Function: "create"},
		},
		{
			name: "distinct names",
			ref:  "wordcount:build_topology",
			want: Definition{Module: "wordcount", Function: "build_topology"},
		},
		{name: "missing separator", ref: "create", wantErr: true},
		{name: "empty module", ref: ":create", wantErr: true},
		{name: "empty function", ref: "create:", wantErr: true},
		{name: "extra separator", ref: "a:b:c", wantErr: true},
		{name: "module with path", ref: "pkg/create:create", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseDefinition(tt.ref)
			if tt.wantErr {
				if !errors.Is(err, ErrConfig) {
					t.Fatalf("ParseDefinition(%q) error = %v, want ErrConfig", tt.ref, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseDefinition(%q) error = %v", tt.ref, err)
			}
			if *got != tt.want {
				t.Errorf("ParseDefinition(%q) = %+v, want %+v", tt.ref, *got, tt.want)
			}
		})
	}
}

func TestDefinitionModuleFile(t *testing.T) {
	d := Definition{Module: "wordcount", Function: "create"}
	if got, want := d.ModuleFile(), "wordcount.py"; got != want {
		t.Errorf("ModuleFile() = %q, want %q", got, want)
	}
	if got, want := d.String(), "wordcount:create"; got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}
