package storm

import (
	"errors"
	"fmt"
	"testing"
)

// fakeRunner serves canned output keyed by the first argument.
type fakeRunner struct {
	outputs map[string]string
	errs    map[string]error
	calls   []string
}

func (f *fakeRunner) Output(dir, name string, args ...string) ([]byte, error) {
	key := name
	if len(args) > 0 {
		key = args[0]
	}
	f.calls = append(f.calls, key)
	if err := f.errs[key]; err != nil {
		return nil, err
	}
	return []byte(f.outputs[key]), nil
}

func (f *fakeRunner) Run(dir, name string, args ...string) error {
	return fmt.Errorf("unexpected Run %s %v", name, args)
}

func TestVersion(t *testing.T) {
	tests := []struct {
		name    string
		output  string
		want    string
		wantErr error
	}{
		{
			name:   "release with build metadata",
			output: "1.2.3 abc123\n",
			want:   "1.2.3",
		},
		{
			name:   "snapshot suffix",
			output: "0.9.2-incubating-SNAPSHOT\n",
			want:   "0.9.2",
		},
		{
			name:   "padded output",
			output: "  2.4.0\n\n",
			want:   "2.4.0",
		},
		{
			name:    "prefixed output rejected",
			output:  "Storm 1.2.3\n",
			wantErr: ErrVersionParse,
		},
		{
			name:    "empty output rejected",
			output:  "\n",
			wantErr: ErrVersionParse,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tool := &Tool{
				Bin:    "storm",
				Runner: &fakeRunner{outputs: map[string]string{"version": tt.output}},
			}
			got, err := tool.Version()
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("Version() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Version() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("Version() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestVersionCommandFailure(t *testing.T) {
	tool := &Tool{
		Bin:    "storm",
		Runner: &fakeRunner{errs: map[string]error{"version": errors.New("exit status 1")}},
	}
	if _, err := tool.Version(); !errors.Is(err, ErrToolInvocation) {
		t.Fatalf("Version() error = %v, want ErrToolInvocation", err)
	}
}

func TestClasspath(t *testing.T) {
	tool := &Tool{
		Bin:    "storm",
		Runner: &fakeRunner{outputs: map[string]string{"classpath": " /opt/storm/lib/a.jar:/opt/storm/lib/b.jar\n"}},
	}
	got, err := tool.Classpath()
	if err != nil {
		t.Fatalf("Classpath() error = %v", err)
	}
	if want := "/opt/storm/lib/a.jar:/opt/storm/lib/b.jar"; got != want {
		t.Errorf("Classpath() = %q, want %q", got, want)
	}
}

func TestClasspathCommandFailure(t *testing.T) {
	tool := &Tool{
		Bin:    "storm",
		Runner: &fakeRunner{errs: map[string]error{"classpath": errors.New("exit status 2")}},
	}
	if _, err := tool.Classpath(); !errors.Is(err, ErrToolInvocation) {
		t.Fatalf("Classpath() error = %v, want ErrToolInvocation", err)
	}
}

func TestHome(t *testing.T) {
	tool := &Tool{
		Bin:      "storm",
		LookPath: func(string) (string, error) { return "/opt/storm/bin/storm", nil },
	}
	got, err := tool.Home()
	if err != nil {
		t.Fatalf("Home() error = %v", err)
	}
	if want := "/opt/storm"; got != want {
		t.Errorf("Home() = %q, want %q", got, want)
	}
}

func TestHomeNotOnPath(t *testing.T) {
	tool := &Tool{
		Bin:      "storm",
		LookPath: func(string) (string, error) { return "", errors.New("not found") },
	}
	if _, err := tool.Home(); !errors.Is(err, ErrToolInvocation) {
		t.Fatalf("Home() error = %v, want ErrToolInvocation", err)
	}
}
