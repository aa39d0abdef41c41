package search

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorder struct {
	mu    sync.Mutex
	fired []string
}

func (r *recorder) fire(s string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.fired = append(r.fired, s)
}

func (r *recorder) got() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.fired...)
}

func TestParseField(t *testing.T) {
	tests := []struct {
		in      string
		want    FilterField
		wantErr bool
	}{
		{"description", FieldDescription, false},
		{" Reference ", FieldReference, false},
		{"CATEGORIA", FieldCategoria, false},
		{"unidad", FieldUnidad, false},
		{"tax", FieldTax, false},
		{"price", "", true},
		{"", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseField(tt.in)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrUnknownField)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestQuery(t *testing.T) {
	q := NewQuery()
	assert.Equal(t, FieldDescription, q.Field)
	assert.False(t, q.Active())
	q.Text = "  "
	assert.False(t, q.Active())
	q.Text = "mug"
	assert.True(t, q.Active())
}

func TestDebouncer_BurstFiresOnceWithLatest(t *testing.T) {
	r := &recorder{}
	d := NewDebouncer("", 100*time.Millisecond, r.fire)
	defer d.Stop()

	for _, s := range []string{"a", "ab", "abc"} {
		d.Set(s)
		time.Sleep(20 * time.Millisecond)
	}

	require.Eventually(t, func() bool { return len(r.got()) == 1 }, time.Second, 5*time.Millisecond)
	time.Sleep(150 * time.Millisecond)
	assert.Equal(t, []string{"abc"}, r.got())
	assert.False(t, d.Pending())
}

func TestDebouncer_InitialAndUnchangedValueDoNotFire(t *testing.T) {
	r := &recorder{}
	d := NewDebouncer("mug", 20*time.Millisecond, r.fire)
	defer d.Stop()

	d.Set("mug")
	assert.False(t, d.Pending())
	time.Sleep(60 * time.Millisecond)
	assert.Empty(t, r.got())
}

func TestDebouncer_StopCancelsAndIgnoresLaterSets(t *testing.T) {
	r := &recorder{}
	d := NewDebouncer("", 30*time.Millisecond, r.fire)

	d.Set("x")
	d.Stop()
	d.Set("y")
	time.Sleep(80 * time.Millisecond)

	assert.Empty(t, r.got())
	assert.Equal(t, "x", d.Value())
}

func TestDebouncer_FlushFiresNow(t *testing.T) {
	r := &recorder{}
	d := NewDebouncer("", time.Hour, r.fire)
	defer d.Stop()

	assert.False(t, d.Flush())
	d.Set("shoe")
	assert.True(t, d.Flush())
	assert.Equal(t, []string{"shoe"}, r.got())
	assert.False(t, d.Flush())
}

func TestDebouncer_SeparatedChangesFireEach(t *testing.T) {
	r := &recorder{}
	d := NewDebouncer("", 20*time.Millisecond, r.fire)
	defer d.Stop()

	d.Set("a")
	require.Eventually(t, func() bool { return len(r.got()) == 1 }, time.Second, 5*time.Millisecond)
	d.Set("b")
	require.Eventually(t, func() bool { return len(r.got()) == 2 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, []string{"a", "b"}, r.got())
}
