package registry

import (
	"context"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"

	"shopassist/internal/models"
)

func noopLookup(ctx context.Context, params []string) (models.LookupResult, error) {
	return models.LookupResult{}, nil
}

// ==========================
// Registration Tests
// ==========================

func TestRegister_Validation(t *testing.T) {
	tests := []struct {
		name    string
		spec    *Spec
		wantErr string
	}{
		{
			name:    "missing name",
			spec:    &Spec{Arity: 1, Invoke: noopLookup},
			wantErr: "name is required",
		},
		{
			name:    "arity too low",
			spec:    &Spec{Name: "t", Arity: 0, Invoke: noopLookup},
			wantErr: "arity must be 1 or 2",
		},
		{
			name:    "arity too high",
			spec:    &Spec{Name: "t", Arity: 3, Invoke: noopLookup},
			wantErr: "arity must be 1 or 2",
		},
		{
			name:    "missing invoke",
			spec:    &Spec{Name: "t", Arity: 1},
			wantErr: "invoke function is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reg := New()

			err := reg.Register(tt.spec)

			assert.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestRegister_Duplicate(t *testing.T) {
	reg := New()
	spec := &Spec{Name: "t", Arity: 1, Invoke: noopLookup}

	assert.NoError(t, reg.Register(spec))
	err := reg.Register(spec)

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "already registered")
}

// ==========================
// Resolution Tests
// ==========================

func TestResolve(t *testing.T) {
	reg := New()
	assert.NoError(t, reg.Register(&Spec{
		Name:    ToolOrderByID,
		Pattern: regexp.MustCompile(`order`),
		Arity:   1,
		Invoke:  noopLookup,
	}))

	spec, ok := reg.Resolve(ToolOrderByID)
	assert.True(t, ok)
	assert.Equal(t, ToolOrderByID, spec.Name)

	_, ok = reg.Resolve("query_nonexistent")
	assert.False(t, ok)
}

func TestNames_RegistrationOrder(t *testing.T) {
	reg := New()
	for _, name := range []string{"c_tool", "a_tool", "b_tool"} {
		assert.NoError(t, reg.Register(&Spec{Name: name, Arity: 1, Invoke: noopLookup}))
	}

	assert.Equal(t, []string{"c_tool", "a_tool", "b_tool"}, reg.Names())
}

// ==========================
// Default Catalog Tests
// ==========================

type fakeCatalog struct {
	lastTool string
}

func (f *fakeCatalog) record(tool string) (models.LookupResult, error) {
	f.lastTool = tool
	return models.LookupResult{Data: models.Record{"tool": tool}, RowCount: 1}, nil
}

func (f *fakeCatalog) OrderByID(ctx context.Context, id string) (models.LookupResult, error) {
	return f.record(ToolOrderByID)
}
func (f *fakeCatalog) OrdersByUserID(ctx context.Context, id string) (models.LookupResult, error) {
	return f.record(ToolOrdersByUserID)
}
func (f *fakeCatalog) ProductByID(ctx context.Context, id string) (models.LookupResult, error) {
	return f.record(ToolProductByID)
}
func (f *fakeCatalog) ProductByName(ctx context.Context, name string) (models.LookupResult, error) {
	return f.record(ToolProductByName)
}
func (f *fakeCatalog) UserByID(ctx context.Context, id string) (models.LookupResult, error) {
	return f.record(ToolUserByID)
}
func (f *fakeCatalog) UserByEmail(ctx context.Context, email string) (models.LookupResult, error) {
	return f.record(ToolUserByEmail)
}
func (f *fakeCatalog) InventoryByProductID(ctx context.Context, id string) (models.LookupResult, error) {
	return f.record(ToolInventoryByProductID)
}
func (f *fakeCatalog) InventoryItemByID(ctx context.Context, id string) (models.LookupResult, error) {
	return f.record(ToolInventoryItemByID)
}
func (f *fakeCatalog) DistributionCenterByID(ctx context.Context, id string) (models.LookupResult, error) {
	return f.record(ToolDistributionCenter)
}
func (f *fakeCatalog) OrderItems(ctx context.Context, orderID, userID string) (models.LookupResult, error) {
	return f.record(ToolOrderItems)
}
func (f *fakeCatalog) OrderItemByID(ctx context.Context, id string) (models.LookupResult, error) {
	return f.record(ToolOrderItemByID)
}

type fakeSearcher struct {
	called bool
}

func (f *fakeSearcher) ByName(ctx context.Context, name string) (models.LookupResult, error) {
	f.called = true
	return models.LookupResult{Data: models.Record{"name": name}, RowCount: 1}, nil
}

func TestBuildDefault_RegistersAllTools(t *testing.T) {
	reg, err := BuildDefault(&fakeCatalog{}, nil)

	assert.NoError(t, err)
	assert.Len(t, reg.Names(), 11)

	for _, name := range []string{
		ToolOrderByID, ToolOrdersByUserID, ToolProductByID, ToolProductByName,
		ToolUserByID, ToolUserByEmail, ToolInventoryByProductID,
		ToolInventoryItemByID, ToolDistributionCenter, ToolOrderItems,
		ToolOrderItemByID,
	} {
		spec, ok := reg.Resolve(name)
		assert.True(t, ok, name)
		assert.NotNil(t, spec.Invoke, name)
	}

	spec, _ := reg.Resolve(ToolOrderItems)
	assert.Equal(t, 2, spec.Arity)
}

func TestBuildDefault_PrefersSearchForProductName(t *testing.T) {
	catalog := &fakeCatalog{}
	searcher := &fakeSearcher{}
	reg, err := BuildDefault(catalog, searcher)
	assert.NoError(t, err)

	spec, ok := reg.Resolve(ToolProductByName)
	assert.True(t, ok)

	_, err = spec.Invoke(context.Background(), []string{"Nike Air Max"})
	assert.NoError(t, err)
	assert.True(t, searcher.called)
	assert.Empty(t, catalog.lastTool)
}
