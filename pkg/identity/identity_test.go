package identity

import (
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractID(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		ref  string
		want string
	}{
		{"empty", "", ""},
		{"bare", "abc-123", "abc-123"},
		{"absolute", "/api/3/workflow_steps/abc-123", "abc-123"},
		{"relative", "api/3/workflow_steps/abc-123", "abc-123"},
		{"trailing slash", "/api/workflow/playbooks/abc/", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, ExtractID(tt.ref))
		})
	}
}

func TestPriority(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "medium", Priority(nil))
	assert.Equal(t, "medium", Priority(""))
	assert.Equal(t, "medium", Priority("/api/3/picklists/2b563c61-ae2c-41c0-a85a-c9709585e3f2"))
	assert.Equal(t, "high", Priority("high"))
	assert.Equal(t, "medium", Priority(42.0))
}

func TestUUIDGenerator(t *testing.T) {
	t.Parallel()

	gen := UUIDGenerator{}

	id := gen.NewID()
	parsed, err := uuid.Parse(id)
	require.NoError(t, err)
	assert.Equal(t, uuid.Version(4), parsed.Version())
	assert.NotEqual(t, id, gen.NewID())

	for range 100 {
		n := gen.NewNumericID()
		assert.GreaterOrEqual(t, n, 0)
		assert.Less(t, n, 10000)
	}
}

func TestSequence_ConcurrentUse(t *testing.T) {
	t.Parallel()

	seq := NewSequence("id")

	var wg sync.WaitGroup

	seen := sync.Map{}

	for range 50 {
		wg.Add(1)

		go func() {
			defer wg.Done()

			_, loaded := seen.LoadOrStore(seq.NewID(), true)
			assert.False(t, loaded)
		}()
	}

	wg.Wait()

	assert.Equal(t, 51, seq.NewNumericID())
}

func TestIRIs(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "/api/3/workflow_steps/s1", WorkflowStepIRI("s1"))
	assert.Equal(t, "/api/3/workflow_step_types/t1", StepTypeIRI("t1"))
	assert.Equal(t, "/api/workflow/playbooks/p1/", PlaybookIRI("p1"))
	assert.Equal(t, "/api/workflow/playbook-collections/c1/", PlaybookCollectionIRI("c1"))
	assert.Equal(t, "p1", ExtractID(WorkflowStepIRI("p1")))
}
