package core

import (
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/JonMunkholm/importparser/internal/actions"
	"github.com/JonMunkholm/importparser/internal/registry"
)

var discardLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

// today is the fixed "now" of every test.
var today = time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)

func fixedNow() time.Time { return today }

func compile(t *testing.T, cfg actions.Config) *actions.Compiled {
	t.Helper()
	c, err := cfg.Compile()
	if err != nil {
		t.Fatalf("Compile() error = %v", err)
	}
	return c
}

func testRecorder() *recorder {
	return &recorder{
		report: NewReport(TypeSynthese),
		logger: discardLogger,
		null:   actions.DefaultNullValue,
	}
}

func testRegistry() *registry.Registry {
	return registry.New().
		Put(registry.Datasets, registry.Mapping{"EXAMPLE": 42}).
		Put(registry.Modules, registry.Mapping{"SYNTHESE": 1}).
		Put(registry.Sources, registry.Mapping{"CBNA": 3}).
		Put(registry.Users, registry.Mapping{"jdoe": 12}).
		Put(registry.Organisms, registry.Mapping{"CBNA": 5}).
		Put(registry.AcquisitionFrameworks, registry.Mapping{"FLORE": 8}).
		Put(registry.Themes, registry.Mapping{"Atlas": 2}).
		Put(registry.Attributes, registry.Mapping{"description": 100, "habitat": 101}).
		Put(registry.Taxa, registry.Mapping{"60612": 60612}).
		Put(registry.Scinames, registry.Mapping{"60612": 60612, "60615": 60612}).
		PutTyped(registry.Nomenclatures, registry.TypedMapping{
			"NAT_OBJ_GEO": {"In": 1, "St": 2},
			"ETA_BIO":     {"1": 10, "2": 11},
		}).
		PutTyped(registry.Areas, registry.TypedMapping{
			"COM": {"38185": 5000},
		})
}

func testPipeline(t *testing.T, typeName string, cfg actions.Config, header []string) (*Pipeline, *Report) {
	t.Helper()
	rt, err := LookupRecordType(typeName)
	if err != nil {
		t.Fatalf("LookupRecordType() error = %v", err)
	}
	report := NewReport(rt.Name)
	p, err := NewPipeline(rt, compile(t, cfg), testRegistry(), header, report,
		PipelineOptions{Logger: discardLogger, Now: fixedNow})
	if err != nil {
		t.Fatalf("NewPipeline() error = %v", err)
	}
	return p, report
}

// get returns a field value or fails the test when absent.
func get(t *testing.T, r Row, name string) string {
	t.Helper()
	v, ok := r.Get(name)
	if !ok {
		t.Fatalf("field %q absent", name)
	}
	return v
}
